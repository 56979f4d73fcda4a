// Package simulator holds the financing and resale valuation formulas applied
// on top of a reference price.
package simulator

import (
	"errors"
	"math"
	"strings"
)

// MonthlyInterest is the rate used in the amortization table.
const MonthlyInterest = 0.015

// OptionalBonus is added to a valuation for every optional the vehicle has.
const OptionalBonus = 1000

const (
	MinTerm  = 12
	MaxTerm  = 60
	TermStep = 6
)

var (
	ErrInvalidValue       = errors.New("value must be greater than zero")
	ErrInvalidDownPayment = errors.New("down payment must not be negative")
	ErrInvalidTerm        = errors.New("term must be between 12 and 60 months in steps of 6")
	ErrInvalidMileage     = errors.New("mileage must be one of 10000, 30000, 50000, 100000 or 150000")
	ErrInvalidCondition   = errors.New("condition must be excellent, good, fair or poor")
)

type Financing struct {
	BaseValue      float64 `json:"baseValue"`
	DownPayment    float64 `json:"downPayment"`
	Term           int     `json:"term"`
	InterestRate   float64 `json:"interestRate"`
	FinancedAmount float64 `json:"financedAmount"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalPayment   float64 `json:"totalPayment"`
}

// MonthlyPayment amortizes base minus downPayment over term fixed
// instalments (Price table) and rounds each instalment to whole reais. A
// down payment covering the whole value yields zero.
func MonthlyPayment(base, downPayment float64, term int) (Financing, error) {
	if base <= 0 {
		return Financing{}, ErrInvalidValue
	}
	if downPayment < 0 {
		return Financing{}, ErrInvalidDownPayment
	}
	if !validTerm(term) {
		return Financing{}, ErrInvalidTerm
	}

	f := Financing{BaseValue: base, DownPayment: downPayment, Term: term, InterestRate: MonthlyInterest}
	loan := base - downPayment
	if loan <= 0 {
		return f, nil
	}

	growth := math.Pow(1+MonthlyInterest, float64(term))
	f.FinancedAmount = loan
	f.MonthlyPayment = roundHalfUp(loan * MonthlyInterest * growth / (growth - 1))
	f.TotalPayment = f.MonthlyPayment * float64(term)
	return f, nil
}

type Valuation struct {
	BaseValue           float64 `json:"baseValue"`
	Mileage             string  `json:"mileage"`
	Condition           string  `json:"condition"`
	ConditionMultiplier float64 `json:"conditionMultiplier"`
	MileageMultiplier   float64 `json:"mileageMultiplier"`
	OptionalsBonus      float64 `json:"optionalsBonus"`
	SuggestedValue      float64 `json:"suggestedValue"`
}

var conditionMultiplier = map[string]float64{
	"excellent": 1.0,
	"good":      0.9,
	"fair":      0.8,
	"poor":      0.7,
}

// Mileage bands are keyed by their upper bound in km; 150000 stands for
// anything past 100000.
var mileageMultiplier = map[string]float64{
	"10000":  1.0,
	"30000":  0.95,
	"50000":  0.9,
	"100000": 0.85,
	"150000": 0.75,
}

// SuggestedValue scales base by the condition and mileage multipliers, adds
// OptionalBonus per selected optional and never exceeds base. An empty
// condition or mileage counts as multiplier 1.
func SuggestedValue(base float64, mileage, condition string, optionals map[string]bool) (Valuation, error) {
	if base <= 0 {
		return Valuation{}, ErrInvalidValue
	}
	cm, err := lookup(conditionMultiplier, condition, ErrInvalidCondition)
	if err != nil {
		return Valuation{}, err
	}
	mm, err := lookup(mileageMultiplier, mileage, ErrInvalidMileage)
	if err != nil {
		return Valuation{}, err
	}

	var selected int
	for _, on := range optionals {
		if on {
			selected++
		}
	}
	bonus := float64(selected * OptionalBonus)

	return Valuation{
		BaseValue:           base,
		Mileage:             mileage,
		Condition:           condition,
		ConditionMultiplier: cm,
		MileageMultiplier:   mm,
		OptionalsBonus:      bonus,
		SuggestedValue:      math.Min(roundHalfUp(base*cm*mm+bonus), base),
	}, nil
}

func lookup(table map[string]float64, key string, invalid error) (float64, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return 1, nil
	}
	m, ok := table[key]
	if !ok {
		return 0, invalid
	}
	return m, nil
}

func validTerm(term int) bool {
	return term >= MinTerm && term <= MaxTerm && (term-MinTerm)%TermStep == 0
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
