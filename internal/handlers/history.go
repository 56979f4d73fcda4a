package handlers

import (
	"net/http"

	"github.com/sdko-org/fipe-gateway/internal/auth"
	"github.com/sdko-org/fipe-gateway/internal/fipe"
	"github.com/sdko-org/fipe-gateway/internal/models"
)

type addHistoryRequest struct {
	VehicleType string `json:"vehicleType"`
	BrandName   string `json:"brandName"`
	ModelName   string `json:"modelName"`
	Year        string `json:"year"`
	Price       string `json:"price"`
}

func (a *API) handleListHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.CurrentUserID(r.Context())
	entries, err := a.history.ListRecent(r.Context(), userID, a.historyLimit)
	if err != nil {
		respondErr(w, a.log, err)
		return
	}
	if entries == nil {
		entries = []models.SearchHistory{}
	}
	respondJSON(w, http.StatusOK, entries)
}

func (a *API) handleAddHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.CurrentUserID(r.Context())
	var req addHistoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	category, err := fipe.ParseCategory(req.VehicleType)
	if err != nil {
		respondErr(w, a.log, err)
		return
	}
	if req.BrandName == "" || req.ModelName == "" || req.Year == "" || req.Price == "" {
		respondError(w, http.StatusBadRequest, "brandName, modelName, year and price are required")
		return
	}

	entry := &models.SearchHistory{
		UserID:      userID,
		VehicleType: string(category),
		BrandName:   req.BrandName,
		ModelName:   req.ModelName,
		Year:        req.Year,
		Price:       req.Price,
	}
	if err := a.history.Add(r.Context(), entry); err != nil {
		respondErr(w, a.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}
