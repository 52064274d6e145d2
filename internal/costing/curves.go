// Package costing turns an equipment list into planning-level capital and
// O&M cost line items using power-law cost curves keyed by equipment type.
package costing

// Curve is a power-law capital cost curve: cost scales as
// base * (size/baseSize)^exponent, per installed unit. Sizing comes from the
// named spec on the equipment record.
type Curve struct {
	SpecKey    string  // which sizing spec drives the curve
	BaseCost   float64 // installed capital at BaseSize, USD
	BaseSize   float64
	SizeUnit   string
	Exponent   float64
	OMFraction float64 // annual O&M as a fraction of capital
	Confidence float64 // class-5 planning estimate quality, 0..1
	Source     string
}

const curveSourceDefault = "parametric cost curve, planning level"

// DefaultCurves maps every equipment type the calculators emit to its cost
// curve. An equipment type missing here prices symbolically and marks the
// estimate incomplete.
func DefaultCurves() map[string]Curve {
	return map[string]Curve{
		// Liquid train.
		"Mechanical Fine Screen": {
			SpecKey: "capacity", BaseCost: 250000, BaseSize: 1000, SizeUnit: "gpm",
			Exponent: 0.64, OMFraction: 0.04, Confidence: 0.6, Source: curveSourceDefault,
		},
		"Vortex Grit Chamber": {
			SpecKey: "volume", BaseCost: 180000, BaseSize: 5000, SizeUnit: "gal",
			Exponent: 0.60, OMFraction: 0.03, Confidence: 0.6, Source: curveSourceDefault,
		},
		"Equalization Basin": {
			SpecKey: "volume", BaseCost: 350000, BaseSize: 250000, SizeUnit: "gal",
			Exponent: 0.70, OMFraction: 0.02, Confidence: 0.6, Source: curveSourceDefault,
		},
		"Primary Clarifier": {
			SpecKey: "surface_area_each", BaseCost: 600000, BaseSize: 1000, SizeUnit: "ft2",
			Exponent: 0.65, OMFraction: 0.03, Confidence: 0.6, Source: curveSourceDefault,
		},
		"Aeration Basin": {
			SpecKey: "volume", BaseCost: 900000, BaseSize: 250000, SizeUnit: "gal",
			Exponent: 0.72, OMFraction: 0.02, Confidence: 0.6, Source: curveSourceDefault,
		},
		"Nitrification Basin": {
			SpecKey: "volume", BaseCost: 950000, BaseSize: 250000, SizeUnit: "gal",
			Exponent: 0.72, OMFraction: 0.02, Confidence: 0.6, Source: curveSourceDefault,
		},
		"Aeration Blower": {
			SpecKey: "power", BaseCost: 150000, BaseSize: 75, SizeUnit: "kW",
			Exponent: 0.68, OMFraction: 0.06, Confidence: 0.6, Source: curveSourceDefault,
		},
		"Secondary Clarifier": {
			SpecKey: "surface_area_each", BaseCost: 550000, BaseSize: 1000, SizeUnit: "ft2",
			Exponent: 0.65, OMFraction: 0.03, Confidence: 0.6, Source: curveSourceDefault,
		},
		"RAS/WAS Pump Station": {
			SpecKey: "ras_capacity", BaseCost: 200000, BaseSize: 500, SizeUnit: "gpm",
			Exponent: 0.60, OMFraction: 0.05, Confidence: 0.6, Source: curveSourceDefault,
		},
		"Membrane Cassette System": {
			SpecKey: "membrane_area", BaseCost: 1800000, BaseSize: 100000, SizeUnit: "ft2",
			Exponent: 0.85, OMFraction: 0.08, Confidence: 0.5, Source: curveSourceDefault,
		},
		"Trickling Filter": {
			SpecKey: "media_volume", BaseCost: 700000, BaseSize: 50000, SizeUnit: "ft3",
			Exponent: 0.68, OMFraction: 0.03, Confidence: 0.6, Source: curveSourceDefault,
		},
		"Tertiary Disk Filter": {
			SpecKey: "filter_area", BaseCost: 450000, BaseSize: 300, SizeUnit: "ft2",
			Exponent: 0.62, OMFraction: 0.05, Confidence: 0.6, Source: curveSourceDefault,
		},
		"Anoxic Basin": {
			SpecKey: "volume", BaseCost: 400000, BaseSize: 100000, SizeUnit: "gal",
			Exponent: 0.70, OMFraction: 0.02, Confidence: 0.6, Source: curveSourceDefault,
		},
		"Alum Feed System": {
			SpecKey: "alum_feed", BaseCost: 120000, BaseSize: 100, SizeUnit: "lb/day",
			Exponent: 0.55, OMFraction: 0.08, Confidence: 0.6, Source: curveSourceDefault,
		},
		"UV Disinfection System": {
			SpecKey: "capacity", BaseCost: 500000, BaseSize: 1000, SizeUnit: "gpm",
			Exponent: 0.66, OMFraction: 0.07, Confidence: 0.6, Source: curveSourceDefault,
		},

		// Digestion train.
		"Receiving & Feed System": {
			SpecKey: "feed_rate", BaseCost: 800000, BaseSize: 100, SizeUnit: "tons/day",
			Exponent: 0.62, OMFraction: 0.05, Confidence: 0.5, Source: curveSourceDefault,
		},
		"Anaerobic Digester": {
			SpecKey: "volume_each", BaseCost: 3500000, BaseSize: 3000, SizeUnit: "m3",
			Exponent: 0.70, OMFraction: 0.03, Confidence: 0.5, Source: curveSourceDefault,
		},
		"Dewatering Centrifuge": {
			SpecKey: "solids_loading", BaseCost: 900000, BaseSize: 1000, SizeUnit: "lb/hr",
			Exponent: 0.60, OMFraction: 0.08, Confidence: 0.6, Source: curveSourceDefault,
		},
		"Filtrate Treatment System": {
			SpecKey: "capacity", BaseCost: 350000, BaseSize: 50, SizeUnit: "gpm",
			Exponent: 0.65, OMFraction: 0.05, Confidence: 0.5, Source: curveSourceDefault,
		},

		// Gas train.
		"H2S Removal Vessel": {
			SpecKey: "gas_flow", BaseCost: 300000, BaseSize: 500, SizeUnit: "scfm",
			Exponent: 0.62, OMFraction: 0.12, Confidence: 0.6, Source: curveSourceDefault,
		},
		"Siloxane Removal Vessel": {
			SpecKey: "gas_flow", BaseCost: 250000, BaseSize: 500, SizeUnit: "scfm",
			Exponent: 0.62, OMFraction: 0.10, Confidence: 0.6, Source: curveSourceDefault,
		},
		"Gas Drying Skid": {
			SpecKey: "gas_flow", BaseCost: 200000, BaseSize: 500, SizeUnit: "scfm",
			Exponent: 0.60, OMFraction: 0.05, Confidence: 0.6, Source: curveSourceDefault,
		},
		"Membrane Upgrading Skid": {
			SpecKey: "inlet_flow", BaseCost: 2500000, BaseSize: 500, SizeUnit: "scfm",
			Exponent: 0.75, OMFraction: 0.06, Confidence: 0.5, Source: curveSourceDefault,
		},
		"Product Gas Compressor": {
			SpecKey: "capacity", BaseCost: 600000, BaseSize: 300, SizeUnit: "scfm",
			Exponent: 0.68, OMFraction: 0.07, Confidence: 0.6, Source: curveSourceDefault,
		},
		"Enclosed Flare / Thermal Oxidizer": {
			SpecKey: "rated_flow", BaseCost: 250000, BaseSize: 500, SizeUnit: "scfm",
			Exponent: 0.60, OMFraction: 0.03, Confidence: 0.6, Source: curveSourceDefault,
		},
	}
}
