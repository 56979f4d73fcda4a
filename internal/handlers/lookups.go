package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sdko-org/fipe-gateway/internal/fipe"
	"github.com/sirupsen/logrus"
)

func (a *API) handleBrands(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	brands, err := a.lookups.ListBrands(r.Context(), &fipe.BrandsQuery{Category: vars["category"]})
	if err != nil {
		respondErr(w, a.lookupLog(vars), err)
		return
	}
	respondJSON(w, http.StatusOK, brands)
}

func (a *API) handleModels(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	models, err := a.lookups.ListModels(r.Context(), &fipe.ModelsQuery{
		Category:  vars["category"],
		BrandCode: vars["brand"],
	})
	if err != nil {
		respondErr(w, a.lookupLog(vars), err)
		return
	}
	respondJSON(w, http.StatusOK, models)
}

func (a *API) handleYears(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	years, err := a.lookups.ListYears(r.Context(), &fipe.YearsQuery{
		Category:  vars["category"],
		BrandCode: vars["brand"],
		ModelCode: vars["model"],
	})
	if err != nil {
		respondErr(w, a.lookupLog(vars), err)
		return
	}
	respondJSON(w, http.StatusOK, years)
}

func (a *API) handlePrice(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	price, err := a.lookups.GetPrice(r.Context(), &fipe.PriceQuery{
		Category:  vars["category"],
		BrandCode: vars["brand"],
		ModelCode: vars["model"],
		YearCode:  vars["year"],
	})
	if err != nil {
		respondErr(w, a.lookupLog(vars), err)
		return
	}
	respondJSON(w, http.StatusOK, price)
}

func (a *API) lookupLog(vars map[string]string) *logrus.Entry {
	fields := logrus.Fields{}
	for k, v := range vars {
		fields[k] = v
	}
	return a.log.WithFields(fields)
}
