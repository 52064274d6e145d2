package criteria

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"massbal/pkg/api"
)

// Overrides is the YAML shape for substituting an alternate design standard.
// Only the fields present in the file are applied; everything else keeps the
// built-in default. Removal overrides replace the whole table for a stage
// type, not individual constituents, so a file is a complete statement of
// that stage's behavior.
type Overrides struct {
	Removal   map[string]map[string]float64 `yaml:"removal,omitempty"`
	Liquid    *LiquidCriteria               `yaml:"liquid,omitempty"`
	Digestion *DigestionCriteria            `yaml:"digestion,omitempty"`
	Feedstock *FeedstockDefaults            `yaml:"feedstock,omitempty"`
	Gas       *GasCriteria                  `yaml:"gas,omitempty"`
	Influent  *InfluentDefaults             `yaml:"influent,omitempty"`
}

// LoadDesign builds the default design and overlays the YAML file at path.
// An empty path returns the default design unchanged.
func LoadDesign(path string) (*Design, error) {
	d := DefaultDesign()
	if path == "" {
		return d, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading design overrides: %w", err)
	}

	var ov Overrides
	if err := yaml.Unmarshal(raw, &ov); err != nil {
		return nil, fmt.Errorf("parsing design overrides: %w", err)
	}

	for stage, removals := range ov.Removal {
		st := api.StageType(stage)
		if _, known := d.Removal[st]; !known {
			return nil, fmt.Errorf("design overrides: unknown stage type %q", stage)
		}
		for key, frac := range removals {
			if frac < 0 || frac > 1 {
				return nil, fmt.Errorf("design overrides: removal %s.%s = %v outside [0,1]", stage, key, frac)
			}
		}
		d.Removal[st] = removals
	}

	if ov.Liquid != nil {
		d.Liquid = *ov.Liquid
	}
	if ov.Digestion != nil {
		d.Digestion = *ov.Digestion
	}
	if ov.Feedstock != nil {
		d.Feedstock = *ov.Feedstock
	}
	if ov.Gas != nil {
		d.Gas = *ov.Gas
	}
	if ov.Influent != nil {
		d.Influent = *ov.Influent
	}

	return d, nil
}
