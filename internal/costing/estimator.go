package costing

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"massbal/pkg/api"
)

// CostDriver is one capital line item with its O&M and the formula that
// produced it.
type CostDriver struct {
	EquipmentID int    `json:"equipment_id"`
	ProcessArea string `json:"process_area"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`

	CapitalCost decimal.Decimal `json:"capital_cost"`
	AnnualOM    decimal.Decimal `json:"annual_om"`

	Formula  string  `json:"formula"`
	SizeUsed float64 `json:"size_used"`
	SizeUnit string  `json:"size_unit"`

	Confidence float64 `json:"confidence"`
	IsSymbolic bool    `json:"is_symbolic"`
	Reason     string  `json:"reason,omitempty"`
}

// Estimate is the costing output: totals, drivers sorted largest first, and
// quality flags. Symbolic drivers are kept for explainability but excluded
// from totals.
type Estimate struct {
	TotalCapital  decimal.Decimal `json:"total_capital"`
	TotalAnnualOM decimal.Decimal `json:"total_annual_om"`

	Drivers []CostDriver `json:"drivers"`

	Confidence   float64  `json:"confidence"`
	IsIncomplete bool     `json:"is_incomplete"`
	Warnings     []string `json:"warnings"`

	ItemsProcessed int       `json:"items_processed"`
	ItemsEstimated int       `json:"items_estimated"`
	EstimatedAt    time.Time `json:"estimated_at"`
}

// Estimator prices equipment lists against an injected curve table.
type Estimator struct {
	curves map[string]Curve
}

// NewEstimator builds an estimator over the default curves.
func NewEstimator() *Estimator {
	return &Estimator{curves: DefaultCurves()}
}

// WithCurves substitutes a curve table, for tests and alternate cost bases.
func (e *Estimator) WithCurves(curves map[string]Curve) *Estimator {
	e.curves = curves
	return e
}

// Estimate prices every equipment item on the results record. Items with no
// curve or no usable sizing spec become symbolic drivers and mark the
// estimate incomplete; totals cover estimated items only.
func (e *Estimator) Estimate(res *api.Results) *Estimate {
	est := &Estimate{
		TotalCapital:  decimal.Zero,
		TotalAnnualOM: decimal.Zero,
		Drivers:       make([]CostDriver, 0, len(res.Equipment)),
		Confidence:    1.0,
		Warnings:      make([]string, 0),
		EstimatedAt:   time.Now().UTC(),
	}

	minConfidence := 1.0
	symbolic := 0

	for _, item := range res.Equipment {
		est.ItemsProcessed++

		driver, ok := e.priceItem(item)
		if !ok {
			symbolic++
			est.Drivers = append(est.Drivers, driver)
			continue
		}

		est.TotalCapital = est.TotalCapital.Add(driver.CapitalCost)
		est.TotalAnnualOM = est.TotalAnnualOM.Add(driver.AnnualOM)
		if driver.Confidence < minConfidence {
			minConfidence = driver.Confidence
		}
		est.ItemsEstimated++
		est.Drivers = append(est.Drivers, driver)
	}

	est.Confidence = minConfidence
	if symbolic > 0 {
		est.IsIncomplete = true
		est.Confidence = 0
		est.Warnings = append(est.Warnings,
			fmt.Sprintf("%d equipment items could not be priced; totals are incomplete", symbolic))
	}

	sort.Slice(est.Drivers, func(i, j int) bool {
		return est.Drivers[i].CapitalCost.GreaterThan(est.Drivers[j].CapitalCost)
	})

	return est
}

func (e *Estimator) priceItem(item api.EquipmentItem) (CostDriver, bool) {
	driver := CostDriver{
		EquipmentID: item.ID,
		ProcessArea: item.ProcessArea,
		Type:        item.Type,
		Description: item.Description,
		Quantity:    item.Quantity,
		CapitalCost: decimal.Zero,
		AnnualOM:    decimal.Zero,
	}

	curve, ok := e.curves[item.Type]
	if !ok {
		driver.IsSymbolic = true
		driver.Reason = "no cost curve for equipment type"
		return driver, false
	}

	spec, ok := item.Specs[curve.SpecKey]
	if !ok || spec.Value <= 0 {
		driver.IsSymbolic = true
		driver.Reason = fmt.Sprintf("sizing spec %q missing or zero", curve.SpecKey)
		return driver, false
	}

	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}

	perUnit := curve.BaseCost * math.Pow(spec.Value/curve.BaseSize, curve.Exponent)
	capital := perUnit * float64(qty)

	driver.CapitalCost = decimal.NewFromFloat(capital).Round(0)
	driver.AnnualOM = driver.CapitalCost.Mul(decimal.NewFromFloat(curve.OMFraction)).Round(0)
	driver.SizeUsed = spec.Value
	driver.SizeUnit = curve.SizeUnit
	driver.Confidence = curve.Confidence
	driver.Formula = fmt.Sprintf("%d x $%.0f x (%.1f %s / %.1f %s)^%.2f",
		qty, curve.BaseCost, spec.Value, curve.SizeUnit, curve.BaseSize, curve.SizeUnit, curve.Exponent)

	return driver, true
}
