package units

import (
	"strconv"
	"strings"
)

// Field is a loosely typed named value as it arrives from intake: a field
// name, a value string that may carry commas or a trailing unit, and a
// declared unit label that may be empty or free text.
type Field struct {
	Name  string
	Value string
	Unit  string
}

// synonyms maps a canonical constituent key to the field-name fragments that
// identify it in intake records.
var synonyms = map[string][]string{
	"flow":      {"flow", "flowrate", "flow rate", "influent flow", "design flow"},
	"bod":       {"bod", "bod5", "biochemical oxygen demand", "cbod"},
	"cod":       {"cod", "chemical oxygen demand"},
	"tss":       {"tss", "total suspended solids", "suspended solids"},
	"tkn":       {"tkn", "total kjeldahl nitrogen", "kjeldahl"},
	"tn":        {"tn", "total nitrogen"},
	"tp":        {"tp", "total phosphorus", "phosphorus"},
	"fog":       {"fog", "fats oils and grease", "oil and grease", "o&g"},
	"nh3":       {"nh3", "ammonia"},
	"no3":       {"no3", "nitrate"},
	"ts":        {"ts", "total solids", "solids content", "% solids", "percent solids"},
	"vs":        {"vs", "volatile solids", "vs/ts", "volatile solids fraction"},
	"bmp":       {"bmp", "biochemical methane potential", "methane potential", "methane yield"},
	"cn":        {"c:n", "cn", "c/n", "carbon to nitrogen", "carbon:nitrogen"},
	"ch4":       {"ch4", "methane content", "methane %", "methane"},
	"co2":       {"co2", "carbon dioxide"},
	"h2s":       {"h2s", "hydrogen sulfide", "sulfide"},
	"siloxanes": {"siloxane", "siloxanes"},
	"hv":        {"heating value", "btu", "hhv", "lhv"},
	"sg":        {"specific gravity", "density"},
}

// conflicts lists keys whose synonyms are substrings of another key's
// synonyms: a field naming the conflicting key must not match ("VS/TS"
// contains "ts" but is a volatile-solids field).
var conflicts = map[string]string{"ts": "vs"}

// KeyMatches reports whether a field name identifies the given canonical
// key, by case-insensitive containment against the synonym list.
func KeyMatches(key, fieldName string) bool {
	name := strings.ToLower(strings.TrimSpace(fieldName))
	if other, ok := conflicts[key]; ok && matchesAny(other, name) {
		return false
	}
	return matchesAny(key, name)
}

func matchesAny(key, loweredName string) bool {
	for _, syn := range synonyms[key] {
		if strings.Contains(loweredName, syn) {
			return true
		}
	}
	return false
}

// ParseNumber extracts the leading numeric value from a loosely formatted
// string: commas are thousands separators, and trailing text (often a unit)
// is ignored. Returns false when no number is present.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	end := 0
	seenDigit := false
	for i, r := range s {
		if r >= '0' && r <= '9' {
			seenDigit = true
			end = i + 1
			continue
		}
		if (r == '-' || r == '+') && i == 0 {
			end = i + 1
			continue
		}
		if r == '.' {
			end = i + 1
			continue
		}
		break
	}
	if !seenDigit {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimRight(s[:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// UnitFamily classifies a free-text unit label. An empty label is
// unclassified (FamilyRatio): callers decide whether bare numbers are
// acceptable for the quantity they want.
func UnitFamily(label string) Family {
	u := strings.ToLower(strings.TrimSpace(label))
	switch {
	case u == "":
		return FamilyRatio
	case strings.Contains(u, "mg/l") || strings.Contains(u, "ppm") || strings.Contains(u, "ppb"):
		return FamilyConcentration
	case strings.Contains(u, "/kg") || strings.Contains(u, "per kg"):
		// Specific yields such as m3 CH4 per kg VS.
		return FamilyRatio
	case strings.Contains(u, "mgd") || strings.Contains(u, "gpd") || strings.Contains(u, "gpm") ||
		strings.Contains(u, "gallon"):
		return FamilyLiquidFlow
	case strings.Contains(u, "scf") || strings.Contains(u, "nm3") || strings.Contains(u, "nm³"):
		return FamilyGasFlow
	case strings.Contains(u, "m3/h") || strings.Contains(u, "m³/h"):
		return FamilyGasFlow
	case strings.Contains(u, "ton") || strings.Contains(u, "lb") || strings.Contains(u, "kg"):
		return FamilySolidsRate
	case strings.Contains(u, "m3") || strings.Contains(u, "m³"):
		// Bare cubic meters per day: liquid unless a gas marker appeared above.
		return FamilyLiquidFlow
	case strings.Contains(u, "%") || strings.Contains(u, "percent"):
		return FamilyPercent
	default:
		return FamilyRatio
	}
}

// NormalizeLiquidFlow converts a flow in the declared unit to MGD. ok is
// false when the unit is not a recognized liquid-flow unit.
func NormalizeLiquidFlow(value float64, unit string) (float64, bool) {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch {
	case strings.Contains(u, "mgd") || strings.Contains(u, "million gallon"):
		return value, true
	case strings.Contains(u, "gpm"):
		return GPMToMGD(value), true
	case strings.Contains(u, "gpd") || strings.Contains(u, "gallon"):
		return GPDToMGD(value), true
	case strings.Contains(u, "m3") || strings.Contains(u, "m³"):
		return M3PerDayToMGD(value), true
	}
	return 0, false
}

// NormalizeGasFlow converts a gas flow in the declared unit to scfm.
func NormalizeGasFlow(value float64, unit string) (float64, bool) {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch {
	case strings.Contains(u, "scfm"):
		return value, true
	case strings.Contains(u, "scfh"):
		return value / 60.0, true
	case strings.Contains(u, "scfd") || strings.Contains(u, "scf/d"):
		return SCFDToSCFM(value), true
	case strings.Contains(u, "m3/h") || strings.Contains(u, "m³/h") || strings.Contains(u, "nm3/h"):
		return M3PerHourToSCFM(value), true
	case strings.Contains(u, "m3") || strings.Contains(u, "m³") || strings.Contains(u, "nm3"):
		return M3PerDayToSCFM(value), true
	}
	return 0, false
}

// NormalizeSolidsRate converts a feed rate in the declared unit to tons/day.
// Volumetric feeds (gallons/day) convert through density at the given
// specific gravity.
func NormalizeSolidsRate(value float64, unit string, specificGravity float64) (float64, bool) {
	u := strings.ToLower(strings.TrimSpace(unit))
	switch {
	case strings.Contains(u, "ton") && (strings.Contains(u, "year") || strings.Contains(u, "yr") || strings.Contains(u, "annum")):
		return TonsPerYearToTonsPerDay(value), true
	case strings.Contains(u, "ton") && (strings.Contains(u, "week") || strings.Contains(u, "wk")):
		return TonsPerWeekToTonsPerDay(value), true
	case strings.Contains(u, "ton"):
		return value, true
	case strings.Contains(u, "lb"):
		return LbPerDayToTonsPerDay(value), true
	case strings.Contains(u, "kg"):
		return KgPerDayToTonsPerDay(value), true
	case strings.Contains(u, "gal"):
		return GallonsPerDayToTonsPerDay(value, specificGravity), true
	}
	return 0, false
}

// Extract scans candidate fields for the first one whose name matches the
// canonical key and whose declared unit belongs to the wanted family, and
// returns its parsed value with the unit label that matched. Fields with an
// empty unit label are accepted for concentration, percent, and ratio
// families, where intake routinely omits units.
func Extract(fields []Field, key string, want Family) (float64, string, bool) {
	for _, f := range fields {
		if !KeyMatches(key, f.Name) {
			continue
		}
		v, ok := ParseNumber(f.Value)
		if !ok {
			continue
		}
		fam := UnitFamily(f.Unit)
		if f.Unit == "" {
			if want == FamilyConcentration || want == FamilyPercent || want == FamilyRatio {
				return v, f.Unit, true
			}
			continue
		}
		if fam == want || (want == FamilyPercent && fam == FamilyRatio) {
			return v, f.Unit, true
		}
	}
	return 0, "", false
}
