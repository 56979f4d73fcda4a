package fipe

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Category string

const (
	Cars        Category = "carros"
	Motorcycles Category = "motos"
	Trucks      Category = "caminhoes"
)

// ParseCategory defaults an empty value to Cars.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case "":
		return Cars, nil
	case Cars, Motorcycles, Trucks:
		return Category(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
}

// Code is an upstream identifier. The upstream sends brand and year codes as
// strings but model codes as numbers; both normalise to a string.
type Code string

func (c *Code) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("code is null")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Code(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("code must be a string or number: %w", err)
	}
	*c = Code(n.String())
	return nil
}

// Reference is one brand, model or year entry.
type Reference struct {
	Code Code   `json:"codigo"`
	Name string `json:"nome"`
}

type References []Reference

func (r References) validate() error {
	if r == nil {
		return fmt.Errorf("list is missing")
	}
	for i, ref := range r {
		if ref.Code == "" || ref.Name == "" {
			return fmt.Errorf("entry %d: codigo and nome are required", i)
		}
	}
	return nil
}

type modelsResponse struct {
	Models References `json:"modelos"`
	Years  References `json:"anos"`
}

func (m *modelsResponse) validate() error {
	if m.Models == nil {
		return fmt.Errorf("modelos is missing")
	}
	return m.Models.validate()
}

type priceResponse struct {
	VehicleType    int    `json:"TipoVeiculo"`
	Value          string `json:"Valor"`
	Brand          string `json:"Marca"`
	Model          string `json:"Modelo"`
	ModelYear      int    `json:"AnoModelo"`
	FuelType       string `json:"Combustivel"`
	FipeCode       string `json:"CodigoFipe"`
	ReferenceMonth string `json:"MesReferencia"`
	FuelAcronym    string `json:"SiglaCombustivel"`
}

func (p *priceResponse) validate() error {
	if p.Value == "" || p.FipeCode == "" || p.Brand == "" || p.Model == "" {
		return fmt.Errorf("price is missing one of Valor, CodigoFipe, Marca, Modelo")
	}
	return nil
}

// PriceRecord is the reference price of one brand/model/year combination.
type PriceRecord struct {
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	FuelType       string `json:"fuelType"`
	FuelAcronym    string `json:"fuelAcronym,omitempty"`
	ModelYear      int    `json:"modelYear"`
	FipeCode       string `json:"fipeCode"`
	Value          string `json:"value"`
	ReferenceMonth string `json:"referenceMonth"`
}

func (p priceResponse) record() *PriceRecord {
	return &PriceRecord{
		Brand:          p.Brand,
		Model:          p.Model,
		FuelType:       p.FuelType,
		FuelAcronym:    p.FuelAcronym,
		ModelYear:      p.ModelYear,
		FipeCode:       p.FipeCode,
		Value:          p.Value,
		ReferenceMonth: p.ReferenceMonth,
	}
}

type validator interface {
	validate() error
}
