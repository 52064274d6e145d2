// Package units provides canonical unit families and conversions for the
// mass-balance engine, plus tolerant parsing of quantities out of loosely
// structured intake records.
package units

// Family groups units that measure the same kind of quantity.
type Family string

const (
	FamilyLiquidFlow    Family = "liquid_flow"   // canonical: MGD
	FamilyGasFlow       Family = "gas_flow"      // canonical: scfm
	FamilySolidsRate    Family = "solids_rate"   // canonical: tons/day
	FamilyConcentration Family = "concentration" // canonical: mg/L
	FamilyPercent       Family = "percent"       // canonical: %
	FamilyRatio         Family = "ratio"         // dimensionless
)

// Conversion constants.
const (
	GallonsPerMG  = 1e6
	MinutesPerDay = 1440.0
	M3PerMG       = 3785.41 // m3 per million gallons
	SCFPerM3      = 35.3147
	LbPerTon      = 2000.0
	LbPerKg       = 2.20462
	LbPerGallon   = 8.34 // water at unit specific gravity
	DaysPerYear   = 365.0
	DaysPerWeek   = 7.0
	BtuPerKWh     = 3412.0
	MethaneHHVBtu = 1012.0 // Btu per scf pure methane
)

// GPDToMGD converts gallons/day to million gallons/day.
func GPDToMGD(gpd float64) float64 { return gpd / GallonsPerMG }

// MGDToGPD converts million gallons/day to gallons/day.
func MGDToGPD(mgd float64) float64 { return mgd * GallonsPerMG }

// GPMToMGD converts gallons/minute to million gallons/day.
func GPMToMGD(gpm float64) float64 { return gpm * MinutesPerDay / GallonsPerMG }

// MGDToGPM converts million gallons/day to gallons/minute.
func MGDToGPM(mgd float64) float64 { return mgd * GallonsPerMG / MinutesPerDay }

// M3PerDayToMGD converts cubic meters/day to million gallons/day.
func M3PerDayToMGD(m3d float64) float64 { return m3d / M3PerMG }

// MGDToM3 converts million gallons/day to cubic meters/day.
func MGDToM3(mgd float64) float64 { return mgd * M3PerMG }

// SCFMToSCFD converts standard cubic feet/minute to /day.
func SCFMToSCFD(scfm float64) float64 { return scfm * MinutesPerDay }

// SCFDToSCFM converts standard cubic feet/day to /minute.
func SCFDToSCFM(scfd float64) float64 { return scfd / MinutesPerDay }

// M3PerHourToSCFM converts cubic meters/hour to scfm.
func M3PerHourToSCFM(m3h float64) float64 { return m3h * SCFPerM3 / 60.0 }

// M3PerDayToSCFM converts cubic meters/day to scfm.
func M3PerDayToSCFM(m3d float64) float64 { return m3d * SCFPerM3 / MinutesPerDay }

// TonsPerYearToTonsPerDay converts tons/year to tons/day.
func TonsPerYearToTonsPerDay(tpy float64) float64 { return tpy / DaysPerYear }

// TonsPerDayToTonsPerYear converts tons/day to tons/year.
func TonsPerDayToTonsPerYear(tpd float64) float64 { return tpd * DaysPerYear }

// TonsPerWeekToTonsPerDay converts tons/week to tons/day.
func TonsPerWeekToTonsPerDay(tpw float64) float64 { return tpw / DaysPerWeek }

// LbPerDayToTonsPerDay converts lb/day to tons/day.
func LbPerDayToTonsPerDay(lbd float64) float64 { return lbd / LbPerTon }

// KgPerDayToTonsPerDay converts kg/day to (short) tons/day.
func KgPerDayToTonsPerDay(kgd float64) float64 { return kgd * LbPerKg / LbPerTon }

// GallonsPerDayToTonsPerDay converts a liquid feed in gallons/day to
// tons/day of material at the given specific gravity.
func GallonsPerDayToTonsPerDay(gpd, specificGravity float64) float64 {
	if specificGravity <= 0 {
		specificGravity = 1.0
	}
	return gpd * LbPerGallon * specificGravity / LbPerTon
}

// MassLoadLbPerDay returns the constituent mass load in lb/day for a flow in
// MGD and a concentration in mg/L (the 8.34 formula).
func MassLoadLbPerDay(flowMGD, concMgL float64) float64 {
	return flowMGD * concMgL * LbPerGallon
}

// Round returns v rounded to the given number of decimal places. Values
// surfaced to reports go through this so repeated runs format identically.
func Round(v float64, places int) float64 {
	scale := 1.0
	for i := 0; i < places; i++ {
		scale *= 10
	}
	if v >= 0 {
		return float64(int64(v*scale+0.5)) / scale
	}
	return float64(int64(v*scale-0.5)) / scale
}
