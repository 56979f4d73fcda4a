package handlers

import (
	"net/http"

	"github.com/sdko-org/fipe-gateway/internal/simulator"
)

type financingRequest struct {
	Value       string  `json:"value"`
	DownPayment float64 `json:"downPayment"`
	Term        int     `json:"term"`
}

type financingResponse struct {
	simulator.Financing
	MonthlyPaymentFormatted string `json:"monthlyPaymentFormatted"`
}

type valuationRequest struct {
	Value     string          `json:"value"`
	Mileage   string          `json:"mileage"`
	Condition string          `json:"condition"`
	Optionals map[string]bool `json:"optionals"`
}

type valuationResponse struct {
	simulator.Valuation
	SuggestedValueFormatted string `json:"suggestedValueFormatted"`
}

func (a *API) handleFinancing(w http.ResponseWriter, r *http.Request) {
	var req financingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	base, err := simulator.ParseBRL(req.Value)
	if err != nil {
		respondError(w, http.StatusBadRequest, "value must be a formatted price such as R$ 42.367,00")
		return
	}

	f, err := simulator.MonthlyPayment(base, req.DownPayment, req.Term)
	if err != nil {
		respondErr(w, a.log, err)
		return
	}
	respondJSON(w, http.StatusOK, financingResponse{
		Financing:               f,
		MonthlyPaymentFormatted: simulator.FormatBRL(f.MonthlyPayment),
	})
}

func (a *API) handleValuation(w http.ResponseWriter, r *http.Request) {
	var req valuationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	base, err := simulator.ParseBRL(req.Value)
	if err != nil {
		respondError(w, http.StatusBadRequest, "value must be a formatted price such as R$ 42.367,00")
		return
	}

	v, err := simulator.SuggestedValue(base, req.Mileage, req.Condition, req.Optionals)
	if err != nil {
		respondErr(w, a.log, err)
		return
	}
	respondJSON(w, http.StatusOK, valuationResponse{
		Valuation:               v,
		SuggestedValueFormatted: simulator.FormatBRL(v.SuggestedValue),
	})
}
