// Package tax implements the monthly tax estimates for the four Peruvian
// regimes (RUS, RER, MYPE, Régimen General). The estimator is pure
// arithmetic over figures the caller already aggregated; "no data for this
// period" validation belongs to the caller.
package tax

import (
	"fmt"
)

// Regime selects one of the four rule sets. The set is closed: an
// unrecognized regime is a caller programming error and is reported as an
// error from Estimate, never silently defaulted.
type Regime string

const (
	RUS     Regime = "rus"
	RER     Regime = "rer"
	MYPE    Regime = "mype"
	General Regime = "general"
)

// Valid reports whether r names a known regime.
func (r Regime) Valid() bool {
	switch r {
	case RUS, RER, MYPE, General:
		return true
	default:
		return false
	}
}

// DefaultUIT is the 2025 reference unit used by the MYPE bracket test.
// Override per deployment via configuration; SUNAT updates it yearly.
const DefaultUIT = 5150.0

// Method names which term won a max(1.5%, coefficient) comparison.
type Method string

const (
	MethodFlatRate    Method = "1.5%"
	MethodCoefficient Method = "Coeficiente"
)

// Input carries the aggregated figures an estimate is computed from.
// Amounts are in soles. CoefficientPct is the optional coefficient
// percentage ((last year's tax / annual income) * 100); zero means none.
type Input struct {
	MonthlyIncome  float64
	MonthlyExpense float64
	AnnualIncome   float64
	CoefficientPct float64
}

// Detail breaks down a max(1.5%, coefficient) computation.
type Detail struct {
	FlatTax        float64
	CoefficientTax float64
	Method         Method
}

// Result is the discriminated outcome of an estimate. Ineligibility (RUS
// basis over its cap, MYPE over 1700 UIT) is a defined result variant, not
// an error.
type Result struct {
	Regime      Regime
	Eligible    bool
	Tax         float64
	RatePct     float64 // 0 for the RUS flat fees
	Bracket     int     // RUS category or MYPE tramo; 0 when not applicable
	Description string
	Detail      *Detail // set for the max(1.5%, coefficient) regimes
	Reason      string  // ineligibility message
}

// Estimator computes regime estimates against a configured UIT value.
type Estimator struct {
	uit float64
}

// NewEstimator returns an estimator using the given UIT reference value.
// Non-positive values fall back to DefaultUIT.
func NewEstimator(uit float64) Estimator {
	if uit <= 0 {
		uit = DefaultUIT
	}
	return Estimator{uit: uit}
}

// UIT returns the reference value in use.
func (e Estimator) UIT() float64 { return e.uit }

// Estimate dispatches to the selected regime's rule. The switch is
// exhaustive over the closed Regime set.
func (e Estimator) Estimate(r Regime, in Input) (Result, error) {
	switch r {
	case RUS:
		return e.rus(in), nil
	case RER:
		return e.rer(in), nil
	case MYPE:
		return e.mype(in), nil
	case General:
		return e.general(in), nil
	default:
		return Result{}, fmt.Errorf("unknown tax regime: %s", r)
	}
}

// rus applies the tiered flat fees of the Nuevo RUS. The basis is the larger
// of monthly income and monthly expense.
func (e Estimator) rus(in Input) Result {
	basis := in.MonthlyIncome
	if in.MonthlyExpense > basis {
		basis = in.MonthlyExpense
	}

	switch {
	case basis <= 5000:
		return Result{
			Regime:      RUS,
			Eligible:    true,
			Tax:         20,
			Bracket:     1,
			Description: "Categoría 1: Hasta S/ 5,000",
		}
	case basis <= 8000:
		return Result{
			Regime:      RUS,
			Eligible:    true,
			Tax:         50,
			Bracket:     2,
			Description: "Categoría 2: Hasta S/ 8,000",
		}
	default:
		return Result{
			Regime:      RUS,
			Description: "Supera los límites del RUS",
			Reason:      "Tus ingresos o gastos superan S/ 8,000. Debes cambiar a otro régimen.",
		}
	}
}

// rer applies the flat 1.5% of the Régimen Especial. Always eligible.
func (e Estimator) rer(in Input) Result {
	return Result{
		Regime:      RER,
		Eligible:    true,
		Tax:         in.MonthlyIncome * 0.015,
		RatePct:     1.5,
		Description: "1.5% de ingresos netos mensuales",
	}
}

// mype applies the MYPE brackets over annual income measured in UIT.
func (e Estimator) mype(in Input) Result {
	basis := in.AnnualIncome / e.uit

	switch {
	case basis <= 300:
		return Result{
			Regime:      MYPE,
			Eligible:    true,
			Tax:         in.MonthlyIncome * 0.01,
			RatePct:     1.0,
			Bracket:     1,
			Description: "Hasta 300 UIT anuales: 1% de ingresos netos",
		}
	case basis <= 1700:
		res := maxOfFlatAndCoefficient(in)
		res.Regime = MYPE
		res.Bracket = 2
		res.Description = "De 300 a 1700 UIT anuales: 1.5% o coeficiente (el mayor)"
		return res
	default:
		return Result{
			Regime:      MYPE,
			Description: "Supera 1700 UIT anuales",
			Reason:      "Tus ingresos superan 1700 UIT anuales. Debes usar el Régimen General.",
		}
	}
}

// general applies the Régimen General rule. Always eligible.
func (e Estimator) general(in Input) Result {
	res := maxOfFlatAndCoefficient(in)
	res.Regime = General
	res.Description = "1.5% o coeficiente (el mayor) de ingresos netos mensuales"
	return res
}

// maxOfFlatAndCoefficient picks the larger of the 1.5% term and the
// coefficient term. A tie goes to the flat rate, matching the comparison
// order the regimes are defined with.
func maxOfFlatAndCoefficient(in Input) Result {
	flat := in.MonthlyIncome * 0.015
	coef := in.MonthlyIncome * in.CoefficientPct / 100

	tax := flat
	rate := 1.5
	method := MethodFlatRate
	if coef > flat {
		tax = coef
		rate = in.CoefficientPct
		method = MethodCoefficient
	}

	return Result{
		Eligible: true,
		Tax:      tax,
		RatePct:  rate,
		Detail: &Detail{
			FlatTax:        flat,
			CoefficientTax: coef,
			Method:         method,
		},
	}
}
