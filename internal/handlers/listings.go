package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sdko-org/fipe-gateway/internal/auth"
	"github.com/sdko-org/fipe-gateway/internal/models"
	"github.com/sdko-org/fipe-gateway/internal/repository"
	"github.com/sdko-org/fipe-gateway/internal/storage"
	"github.com/sirupsen/logrus"
)

const maxPhotoBytes = 10 << 20

type createListingRequest struct {
	ModelName   string          `json:"modelName"`
	BrandName   string          `json:"brandName"`
	Year        string          `json:"year"`
	FuelType    string          `json:"fuelType"`
	FipeCode    string          `json:"fipeCode"`
	Price       float64         `json:"price"`
	Mileage     string          `json:"mileage"`
	Condition   string          `json:"condition"`
	Description string          `json:"description"`
	Optionals   map[string]bool `json:"optionals"`
}

func (a *API) handleListListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	listings, err := a.listings.FindActive(r.Context(), repository.ListingFilter{
		BrandName: q.Get("brand"),
		SellerID:  q.Get("seller"),
		Limit:     limit,
	})
	if err != nil {
		respondErr(w, a.log, err)
		return
	}
	if listings == nil {
		listings = []models.Listing{}
	}
	respondJSON(w, http.StatusOK, listings)
}

func (a *API) handleGetListing(w http.ResponseWriter, r *http.Request) {
	l, err := a.listings.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondErr(w, a.log, err)
		return
	}
	respondJSON(w, http.StatusOK, l)
}

func (a *API) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.CurrentUserID(r.Context())
	var req createListingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	l := &models.Listing{
		SellerID:    userID,
		ModelName:   req.ModelName,
		BrandName:   req.BrandName,
		Year:        req.Year,
		FuelType:    req.FuelType,
		FipeCode:    req.FipeCode,
		Price:       req.Price,
		Mileage:     req.Mileage,
		Condition:   req.Condition,
		Description: req.Description,
		Optionals:   req.Optionals,
	}
	if err := a.listings.Create(r.Context(), l); err != nil {
		respondErr(w, a.log, err)
		return
	}

	a.log.WithFields(logrus.Fields{"listing_id": l.ID, "seller_id": userID}).Info("Listing created")
	respondJSON(w, http.StatusCreated, l)
}

func (a *API) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.CurrentUserID(r.Context())
	var patch repository.ListingPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	l, err := a.listings.Update(r.Context(), mux.Vars(r)["id"], userID, patch)
	if err != nil {
		respondErr(w, a.log, err)
		return
	}
	respondJSON(w, http.StatusOK, l)
}

func (a *API) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.CurrentUserID(r.Context())
	l, err := a.listings.Delete(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		respondErr(w, a.log, err)
		return
	}

	if l.PhotoKey != "" && a.photos != nil {
		if err := a.photos.Delete(r.Context(), l.PhotoKey); err != nil {
			a.log.WithError(err).WithField("key", l.PhotoKey).Warn("Failed to delete listing photo")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handlePutPhoto(w http.ResponseWriter, r *http.Request) {
	if a.photos == nil {
		respondError(w, http.StatusServiceUnavailable, "photo storage not configured")
		return
	}
	userID, _ := auth.CurrentUserID(r.Context())
	id := mux.Vars(r)["id"]

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondError(w, http.StatusUnsupportedMediaType, "photo must be an image")
		return
	}

	l, err := a.listings.FindByID(r.Context(), id)
	if err != nil {
		respondErr(w, a.log, err)
		return
	}
	if l.SellerID != userID {
		respondErr(w, a.log, repository.ErrForbidden)
		return
	}

	photo, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPhotoBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "photo too large")
			return
		}
		respondError(w, http.StatusBadRequest, "failed to read photo")
		return
	}

	key := photoKey(id)
	if err := a.photos.Put(r.Context(), key, bytes.NewReader(photo), contentType); err != nil {
		a.log.WithError(err).WithField("key", key).Error("Failed to store listing photo")
		respondError(w, http.StatusBadGateway, "photo storage unavailable")
		return
	}
	if err := a.listings.SetPhoto(r.Context(), id, userID, key); err != nil {
		respondErr(w, a.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	if a.photos == nil {
		respondError(w, http.StatusServiceUnavailable, "photo storage not configured")
		return
	}
	l, err := a.listings.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondErr(w, a.log, err)
		return
	}
	if l.PhotoKey == "" {
		respondError(w, http.StatusNotFound, "listing has no photo")
		return
	}

	rc, contentType, err := a.photos.Get(r.Context(), l.PhotoKey)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "listing has no photo")
		return
	}
	if err != nil {
		a.log.WithError(err).WithField("key", l.PhotoKey).Error("Failed to read listing photo")
		respondError(w, http.StatusBadGateway, "photo storage unavailable")
		return
	}
	defer rc.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, rc)
}

func photoKey(listingID string) string {
	return fmt.Sprintf("listings/%s/photo", listingID)
}
