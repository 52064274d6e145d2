// Package criteria holds the design-criteria and removal-efficiency
// reference tables the calculators run against. A Design value is built once
// (DefaultDesign, optionally overlaid from YAML) and injected read-only into
// every calculator; nothing in the calculation path mutates it.
package criteria

import (
	"massbal/pkg/api"
)

// Provenance labels cited on assumptions and design-basis narratives.
const (
	SourceMetcalfEddy = "Metcalf & Eddy, Wastewater Engineering, 5th ed."
	SourceMOP8        = "WEF Manual of Practice No. 8"
	SourceTenState    = "Ten State Standards"
	SourceWEF57       = "WEF Manual of Practice No. 57 (Biogas)"
	SourceDefault     = "design default"
)

// Removals maps a constituent key (bod, cod, tss, tkn, tp, fog, nh3, no3) to
// the fractional removal a stage applies. Fractions are in [0,1].
type Removals map[string]float64

// LiquidCriteria holds liquid-train design parameters.
type LiquidCriteria struct {
	PeakingFactor float64 `yaml:"peaking_factor"` // peak/average flow

	RASFraction      float64 `yaml:"ras_fraction"`      // of plant flow
	WASFraction      float64 `yaml:"was_fraction"`      // of plant flow
	BackwashFraction float64 `yaml:"backwash_fraction"` // of plant flow
	MLSSMgL          float64 `yaml:"mlss_mg_l"`         // assumed mixed-liquor solids

	MaxIterations        int     `yaml:"max_iterations"`
	ConvergenceTolerance float64 `yaml:"convergence_tolerance"` // relative

	EqualizationHours   float64 `yaml:"equalization_hours"`
	GritDetentionMin    float64 `yaml:"grit_detention_min"`
	PrimarySORGpdFt2    float64 `yaml:"primary_sor_gpd_ft2"`
	SecondarySORGpdFt2  float64 `yaml:"secondary_sor_gpd_ft2"`
	AerationHRTHours    float64 `yaml:"aeration_hrt_hours"`
	O2LbPerLbBOD        float64 `yaml:"o2_lb_per_lb_bod"`
	O2LbPerLbTKN        float64 `yaml:"o2_lb_per_lb_tkn"`
	AerationKgO2PerKWh  float64 `yaml:"aeration_kg_o2_per_kwh"`
	MBRFluxGFD          float64 `yaml:"mbr_flux_gfd"`
	TFLoadingLbPerKcfD  float64 `yaml:"tf_loading_lb_per_kcf_d"` // lb BOD/1000 ft3/day
	FilterLoadingGpmFt2 float64 `yaml:"filter_loading_gpm_ft2"`
	AlumLbPerLbP        float64 `yaml:"alum_lb_per_lb_p"`
	UVDoseMJCm2         float64 `yaml:"uv_dose_mj_cm2"`
}

// DigestionCriteria holds solids-to-gas design parameters.
type DigestionCriteria struct {
	HRTDays            float64 `yaml:"hrt_days"`
	OLRKgVSM3Day       float64 `yaml:"olr_kg_vs_m3_day"`
	VSDestruction      float64 `yaml:"vs_destruction"`       // fraction of VS load
	GasYieldM3PerKgVSd float64 `yaml:"gas_yield_m3_kg_vsd"`  // biogas per kg VS destroyed
	MethaneFraction    float64 `yaml:"methane_fraction"`     // of biogas
	TwoVesselThreshM3  float64 `yaml:"two_vessel_thresh_m3"` // active volume
	HeadspaceFraction  float64 `yaml:"headspace_fraction"`
	OperatingTempC     float64 `yaml:"operating_temp_c"`
	FeedTempC          float64 `yaml:"feed_temp_c"`
	HeatLossFraction   float64 `yaml:"heat_loss_fraction"`
	MixingWPerM3       float64 `yaml:"mixing_w_per_m3"`
	ReceivingDays      float64 `yaml:"receiving_days"` // feed storage

	CakeSolidsPct    float64 `yaml:"cake_solids_pct"`
	SolidsCapture    float64 `yaml:"solids_capture"`
	DigestateBODMgL  float64 `yaml:"digestate_bod_mg_l"`
	DigestateTSSMgL  float64 `yaml:"digestate_tss_mg_l"`
	FiltrateBODRem   float64 `yaml:"filtrate_bod_removal"`
	FiltrateTSSRem   float64 `yaml:"filtrate_tss_removal"`
	RawH2SPPM        float64 `yaml:"raw_h2s_ppm"`
	RawSiloxanesPPB  float64 `yaml:"raw_siloxanes_ppb"`

	CNLow  float64 `yaml:"cn_low"`
	CNHigh float64 `yaml:"cn_high"`
}

// FeedstockDefaults are applied, with an assumption entry, whenever a
// feedstock arrives without the corresponding measured value.
type FeedstockDefaults struct {
	TotalSolidsPct  float64 `yaml:"total_solids_pct"`
	VSOfTSPct       float64 `yaml:"vs_of_ts_pct"`
	BMPM3PerKgVS    float64 `yaml:"bmp_m3_per_kg_vs"`
	CNRatio         float64 `yaml:"cn_ratio"`
	SpecificGravity float64 `yaml:"specific_gravity"`
}

// GasCriteria holds conditioning/upgrading design parameters, shared by the
// solids-to-gas and gas-only calculators.
type GasCriteria struct {
	H2SRemoval         float64 `yaml:"h2s_removal"`
	SiloxaneRemoval    float64 `yaml:"siloxane_removal"`
	DewpointF          float64 `yaml:"dewpoint_f"`
	ConditioningLoss   float64 `yaml:"conditioning_loss"` // volume fraction
	MethaneRecovery    float64 `yaml:"methane_recovery"`
	ProductPurity      float64 `yaml:"product_purity"`      // CH4 fraction
	UpgradingKWhPerSCF float64 `yaml:"upgrading_kwh_scf"`   // on raw biogas
	CompressionKWhKscf float64 `yaml:"compression_kwh_kscf"` // per 1000 scf product
	MediaEBCTMin       float64 `yaml:"media_ebct_min"`       // H2S vessel empty-bed contact
	DefaultCH4Pct      float64 `yaml:"default_ch4_pct"`      // gas-only intake default
	DefaultCO2Pct      float64 `yaml:"default_co2_pct"`
}

// InfluentDefaults are the medium-strength domestic wastewater values used
// when the liquid-train intake omits a constituent.
type InfluentDefaults struct {
	BODMgL float64 `yaml:"bod_mg_l"`
	CODMgL float64 `yaml:"cod_mg_l"`
	TSSMgL float64 `yaml:"tss_mg_l"`
	TKNMgL float64 `yaml:"tkn_mg_l"`
	TPMgL  float64 `yaml:"tp_mg_l"`
	FOGMgL float64 `yaml:"fog_mg_l"`
}

// Design is the complete, immutable criteria set injected into calculators.
type Design struct {
	Removal   map[api.StageType]Removals
	Liquid    LiquidCriteria
	Digestion DigestionCriteria
	Feedstock FeedstockDefaults
	Gas       GasCriteria
	Influent  InfluentDefaults
}

// DefaultDesign returns the built-in design standard.
func DefaultDesign() *Design {
	return &Design{
		Removal: map[api.StageType]Removals{
			api.StagePreliminary: {"bod": 0.05, "cod": 0.05, "tss": 0.10, "fog": 0.20},
			api.StageEqualization: {},
			api.StagePrimary: {"bod": 0.30, "cod": 0.30, "tss": 0.55, "tkn": 0.10, "tp": 0.10, "fog": 0.60},
			api.StageActivatedSludge: {"bod": 0.92, "cod": 0.85, "tss": 0.88, "tkn": 0.30, "tp": 0.20, "fog": 0.90},
			// Membrane trains nitrify; TKN removal is carried here so a
			// separate nitrification stage is not appended after an MBR.
			api.StageMBR: {"bod": 0.97, "cod": 0.92, "tss": 0.99, "tkn": 0.90, "tp": 0.25, "fog": 0.95},
			api.StageTricklingFilter: {"bod": 0.80, "cod": 0.75, "tss": 0.75, "tkn": 0.20, "tp": 0.10, "fog": 0.70},
			api.StageTertiaryFilter: {"bod": 0.50, "cod": 0.40, "tss": 0.75, "tkn": 0.10, "tp": 0.50, "fog": 0.50},
			api.StageNitrification:   {"tkn": 0.90, "nh3": 0.95, "bod": 0.30},
			api.StageDenitrification: {"no3": 0.85},
			api.StagePhosRemoval:     {"tp": 0.85},
			api.StageDisinfection:    {},
		},
		Liquid: LiquidCriteria{
			PeakingFactor:        2.0,
			RASFraction:          0.50,
			WASFraction:          0.01,
			BackwashFraction:     0.03,
			MLSSMgL:              8000,
			MaxIterations:        10,
			ConvergenceTolerance: 0.01,
			EqualizationHours:    6,
			GritDetentionMin:     3,
			PrimarySORGpdFt2:     1000,
			SecondarySORGpdFt2:   600,
			AerationHRTHours:     6,
			O2LbPerLbBOD:         1.1,
			O2LbPerLbTKN:         4.6,
			AerationKgO2PerKWh:   1.5,
			MBRFluxGFD:           10,
			TFLoadingLbPerKcfD:   40,
			FilterLoadingGpmFt2:  5,
			AlumLbPerLbP:         2.3,
			UVDoseMJCm2:          30,
		},
		Digestion: DigestionCriteria{
			HRTDays:            25,
			OLRKgVSM3Day:       3.0,
			VSDestruction:      0.55,
			GasYieldM3PerKgVSd: 0.90,
			MethaneFraction:    0.60,
			TwoVesselThreshM3:  5000,
			HeadspaceFraction:  0.15,
			OperatingTempC:     38,
			FeedTempC:          15,
			HeatLossFraction:   0.10,
			MixingWPerM3:       7,
			ReceivingDays:      2,
			CakeSolidsPct:      25,
			SolidsCapture:      0.95,
			DigestateBODMgL:    2500,
			DigestateTSSMgL:    3000,
			FiltrateBODRem:     0.90,
			FiltrateTSSRem:     0.90,
			RawH2SPPM:          1500,
			RawSiloxanesPPB:    5000,
			CNLow:              15,
			CNHigh:             35,
		},
		Feedstock: FeedstockDefaults{
			TotalSolidsPct:  15,
			VSOfTSPct:       80,
			BMPM3PerKgVS:    0.30,
			CNRatio:         20,
			SpecificGravity: 1.02,
		},
		Gas: GasCriteria{
			H2SRemoval:         0.995,
			SiloxaneRemoval:    0.98,
			DewpointF:          -40,
			ConditioningLoss:   0.02,
			MethaneRecovery:    0.985,
			ProductPurity:      0.97,
			UpgradingKWhPerSCF: 0.0066,
			CompressionKWhKscf: 4.0,
			MediaEBCTMin:       4,
			DefaultCH4Pct:      60,
			DefaultCO2Pct:      38,
		},
		Influent: InfluentDefaults{
			BODMgL: 250,
			CODMgL: 500,
			TSSMgL: 250,
			TKNMgL: 40,
			TPMgL:  7,
			FOGMgL: 50,
		},
	}
}
