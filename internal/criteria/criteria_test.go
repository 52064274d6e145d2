package criteria

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"massbal/pkg/api"
)

func TestDefaultRemovalsAreFractions(t *testing.T) {
	d := DefaultDesign()
	for stage, removals := range d.Removal {
		for key, frac := range removals {
			assert.GreaterOrEqual(t, frac, 0.0, "%s.%s", stage, key)
			assert.LessOrEqual(t, frac, 1.0, "%s.%s", stage, key)
		}
	}
}

func TestEqualizationAndDisinfectionRemoveNothing(t *testing.T) {
	d := DefaultDesign()
	assert.Empty(t, d.Removal[api.StageEqualization])
	assert.Empty(t, d.Removal[api.StageDisinfection])
}

func TestLoadDesignEmptyPath(t *testing.T) {
	d, err := LoadDesign("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDesign(), d)
}

func TestLoadDesignOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "design.yaml")
	doc := `
removal:
  primary:
    bod: 0.35
    tss: 0.60
digestion:
  hrt_days: 30
  olr_kg_vs_m3_day: 2.5
  vs_destruction: 0.50
  gas_yield_m3_kg_vsd: 0.85
  methane_fraction: 0.62
  two_vessel_thresh_m3: 6000
  headspace_fraction: 0.15
  operating_temp_c: 38
  feed_temp_c: 15
  heat_loss_fraction: 0.10
  mixing_w_per_m3: 7
  receiving_days: 2
  cake_solids_pct: 25
  solids_capture: 0.95
  digestate_bod_mg_l: 2500
  digestate_tss_mg_l: 3000
  filtrate_bod_removal: 0.90
  filtrate_tss_removal: 0.90
  raw_h2s_ppm: 1500
  raw_siloxanes_ppb: 5000
  cn_low: 15
  cn_high: 35
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	d, err := LoadDesign(path)
	require.NoError(t, err)
	assert.Equal(t, 0.35, d.Removal[api.StagePrimary]["bod"])
	assert.Equal(t, 30.0, d.Digestion.HRTDays)
	// Untouched sections keep defaults.
	assert.Equal(t, DefaultDesign().Gas, d.Gas)
}

func TestLoadDesignRejectsBadFraction(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "design.yaml")
	require.NoError(t, os.WriteFile(path, []byte("removal:\n  primary:\n    bod: 1.4\n"), 0o644))

	_, err := LoadDesign(path)
	assert.Error(t, err)
}

func TestLoadDesignRejectsUnknownStage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "design.yaml")
	require.NoError(t, os.WriteFile(path, []byte("removal:\n  lagoon:\n    bod: 0.4\n"), 0o644))

	_, err := LoadDesign(path)
	assert.Error(t, err)
}
