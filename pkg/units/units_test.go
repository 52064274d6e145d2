package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowRoundTrips(t *testing.T) {
	assert.InDelta(t, 2.5e6, MGDToGPD(GPDToMGD(2.5e6)), 1e-6)
	assert.InDelta(t, 1.0, GPDToMGD(MGDToGPD(1.0)), 1e-12)
	assert.InDelta(t, 700.0, MGDToGPM(GPMToMGD(700.0)), 1e-9)
	assert.InDelta(t, 3785.41, MGDToM3(M3PerDayToMGD(3785.41)), 1e-6)
}

func TestSolidsRateRoundTrips(t *testing.T) {
	assert.InDelta(t, 100000.0, TonsPerDayToTonsPerYear(TonsPerYearToTonsPerDay(100000.0)), 1e-9)
	assert.InDelta(t, 50.0, TonsPerWeekToTonsPerDay(50.0)*DaysPerWeek, 1e-12)
}

func TestGasFlowConversions(t *testing.T) {
	assert.InDelta(t, 600.0, SCFDToSCFM(SCFMToSCFD(600.0)), 1e-9)
	// 1000 m3/h is about 588.6 scfm
	assert.InDelta(t, 588.58, M3PerHourToSCFM(1000.0), 0.05)
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"100,000", 100000, true},
		{" 1.5 ", 1.5, true},
		{"250 mg/L", 250, true},
		{"0.30", 0.30, true},
		{"-3", -3, true},
		{"approx", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		v, ok := ParseNumber(c.in)
		require.Equal(t, c.ok, ok, c.in)
		if ok {
			assert.InDelta(t, c.want, v, 1e-9, c.in)
		}
	}
}

func TestUnitFamily(t *testing.T) {
	assert.Equal(t, FamilyConcentration, UnitFamily("mg/L"))
	assert.Equal(t, FamilyLiquidFlow, UnitFamily("MGD"))
	assert.Equal(t, FamilyLiquidFlow, UnitFamily("gallons per day"))
	assert.Equal(t, FamilyGasFlow, UnitFamily("scfm"))
	assert.Equal(t, FamilySolidsRate, UnitFamily("tons/year"))
	assert.Equal(t, FamilyPercent, UnitFamily("%"))
}

func TestNormalizeSolidsRate(t *testing.T) {
	tpd, ok := NormalizeSolidsRate(100000, "tons/year", 0)
	require.True(t, ok)
	assert.InDelta(t, 273.97, tpd, 0.01)

	tpd, ok = NormalizeSolidsRate(10000, "lb/day", 0)
	require.True(t, ok)
	assert.InDelta(t, 5.0, tpd, 1e-9)

	tpd, ok = NormalizeSolidsRate(10000, "gallons/day", 1.02)
	require.True(t, ok)
	assert.InDelta(t, 10000*8.34*1.02/2000, tpd, 1e-9)

	_, ok = NormalizeSolidsRate(5, "furlongs", 0)
	assert.False(t, ok)
}

func TestExtract(t *testing.T) {
	fields := []Field{
		{Name: "Biochemical Oxygen Demand (BOD5)", Value: "250", Unit: "mg/L"},
		{Name: "Influent Flow", Value: "1,000,000", Unit: "gpd"},
		{Name: "Total Solids", Value: "15", Unit: "%"},
		{Name: "C:N Ratio", Value: "25", Unit: ""},
	}

	v, _, ok := Extract(fields, "bod", FamilyConcentration)
	require.True(t, ok)
	assert.Equal(t, 250.0, v)

	v, unit, ok := Extract(fields, "flow", FamilyLiquidFlow)
	require.True(t, ok)
	assert.Equal(t, 1e6, v)
	mgd, ok := NormalizeLiquidFlow(v, unit)
	require.True(t, ok)
	assert.InDelta(t, 1.0, mgd, 1e-9)

	v, _, ok = Extract(fields, "ts", FamilyPercent)
	require.True(t, ok)
	assert.Equal(t, 15.0, v)

	v, _, ok = Extract(fields, "cn", FamilyRatio)
	require.True(t, ok)
	assert.Equal(t, 25.0, v)

	_, _, ok = Extract(fields, "h2s", FamilyConcentration)
	assert.False(t, ok)
}
