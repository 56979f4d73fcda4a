package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

func RegisterRoutes(r *mux.Router, a *API) {
	r.HandleFunc("/healthz", HandleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	lookups := api.PathPrefix("/fipe/{category}").Subrouter()
	lookups.HandleFunc("/brands", a.handleBrands).Methods(http.MethodGet)
	lookups.HandleFunc("/brands/{brand}/models", a.handleModels).Methods(http.MethodGet)
	lookups.HandleFunc("/brands/{brand}/models/{model}/years", a.handleYears).Methods(http.MethodGet)
	lookups.HandleFunc("/brands/{brand}/models/{model}/years/{year}", a.handlePrice).Methods(http.MethodGet)

	api.HandleFunc("/simulations/financing", a.handleFinancing).Methods(http.MethodPost)
	api.HandleFunc("/simulations/valuation", a.handleValuation).Methods(http.MethodPost)

	api.HandleFunc("/listings", a.handleListListings).Methods(http.MethodGet)
	api.HandleFunc("/listings", a.requireUser(a.handleCreateListing)).Methods(http.MethodPost)
	api.HandleFunc("/listings/{id}", a.handleGetListing).Methods(http.MethodGet)
	api.HandleFunc("/listings/{id}", a.requireUser(a.handleUpdateListing)).Methods(http.MethodPatch)
	api.HandleFunc("/listings/{id}", a.requireUser(a.handleDeleteListing)).Methods(http.MethodDelete)
	api.HandleFunc("/listings/{id}/photo", a.handleGetPhoto).Methods(http.MethodGet)
	api.HandleFunc("/listings/{id}/photo", a.requireUser(a.handlePutPhoto)).Methods(http.MethodPut)

	api.HandleFunc("/history", a.requireUser(a.handleListHistory)).Methods(http.MethodGet)
	api.HandleFunc("/history", a.requireUser(a.handleAddHistory)).Methods(http.MethodPost)
}
