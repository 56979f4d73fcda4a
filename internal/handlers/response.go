package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sdko-org/fipe-gateway/internal/auth"
	"github.com/sdko-org/fipe-gateway/internal/fipe"
	"github.com/sdko-org/fipe-gateway/internal/repository"
	"github.com/sdko-org/fipe-gateway/internal/simulator"
	"github.com/sirupsen/logrus"
)

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message})
}

// respondErr maps domain errors to statuses. Upstream failures always carry
// the fixed user-safe message.
func respondErr(w http.ResponseWriter, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, fipe.ErrInvalidCategory),
		errors.Is(err, fipe.ErrInvalidRequest),
		errors.Is(err, repository.ErrInvalidListing),
		errors.Is(err, simulator.ErrInvalidValue),
		errors.Is(err, simulator.ErrInvalidDownPayment),
		errors.Is(err, simulator.ErrInvalidTerm),
		errors.Is(err, simulator.ErrInvalidMileage),
		errors.Is(err, simulator.ErrInvalidCondition):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, fipe.ErrDecodeFailure):
		respondError(w, http.StatusBadGateway, fipe.ErrDecodeFailure.Error())
	case errors.Is(err, fipe.ErrUpstreamUnavailable):
		respondError(w, http.StatusBadGateway, fipe.ErrUpstreamUnavailable.Error())
	case errors.Is(err, repository.ErrListingNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, "authentication required")
	default:
		log.WithError(err).Error("Request failed")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
