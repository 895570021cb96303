package qed

// RadiationModelKind selects the inverse-Compton radiation model applied
// to a species. MCRadiation.Apply switches on it once per call, never
// through a per-particle interface call: the QED
// hot loop fires millions of times per step and virtual dispatch would
// defeat vectorization (spec.md §9).
type RadiationModelKind int

const (
	// RadiationNone applies no radiation-reaction physics at all.
	RadiationNone RadiationModelKind = iota
	// RadiationContinuousLL applies the classical Landau-Lifshitz damping
	// unconditionally (no stochastic emission, no regime switching).
	RadiationContinuousLL
	// RadiationMC applies the full Monte-Carlo continuous/discontinuous
	// regime-switching core described in spec.md §4.3.
	RadiationMC
)

func (k RadiationModelKind) String() string {
	switch k {
	case RadiationNone:
		return "none"
	case RadiationContinuousLL:
		return "continuous-LL"
	case RadiationMC:
		return "MC"
	default:
		return "unknown"
	}
}

// ParseRadiationModelKind maps the namelist-level model tag (spec.md §6)
// to a RadiationModelKind.
func ParseRadiationModelKind(tag string) (RadiationModelKind, error) {
	switch tag {
	case "none":
		return RadiationNone, nil
	case "continuous-LL":
		return RadiationContinuousLL, nil
	case "MC":
		return RadiationMC, nil
	default:
		return RadiationNone, configErrorf("radiation_model", "unknown tag %q, want one of none|continuous-LL|MC", tag)
	}
}

// SpeciesConfig collects the per-species configuration fixed at
// construction (spec.md §3), plus the radiation-model/Breit-Wheeler
// namelist-level selection (spec.md §6).
type SpeciesConfig struct {
	Name string

	RadiationModel RadiationModelKind
	MultiphotonBW  bool
	Tables         *QEDTables // required when RadiationModel == RadiationMC or MultiphotonBW

	RadiationPhotonSampling       int
	RadiationPhotonGammaThreshold float64
	MBWPairCreationSampling       [2]int // [electron, positron]

	ChiThresholdContinuous    float64
	ChiThresholdDiscontinuous float64
	// ChiThresholdPhoton is the chi_gamma floor below which a photon is
	// never considered for Breit-Wheeler pair production. Mirrored from
	// QEDTables.ChiThresholdPhoton() at construction so MCBreitWheeler
	// does not need a tables pointer just to read one scalar.
	ChiThresholdPhoton float64

	MaxMonteCarloIterations int
	Dt                      float64

	NormESchwinger float64
}

// NewSpeciesConfig validates cfg per spec.md §7's configuration-error
// kinds (MC radiation without loaded tables, inconsistent thresholds,
// samplings < 1) and returns it unchanged on success. Configuration
// errors are returned, never panicked; callers at the CLI boundary turn
// them fatal.
func NewSpeciesConfig(cfg SpeciesConfig) (SpeciesConfig, error) {
	if (cfg.RadiationModel == RadiationMC || cfg.MultiphotonBW) && cfg.Tables == nil {
		return SpeciesConfig{}, configErrorf("tables", "species %q declares MC radiation or multiphoton-BW but has no QED tables loaded", cfg.Name)
	}
	if cfg.RadiationModel == RadiationMC {
		if cfg.RadiationPhotonSampling < 1 {
			return SpeciesConfig{}, configErrorf("radiation_photon_sampling", "must be >= 1, got %d", cfg.RadiationPhotonSampling)
		}
		if cfg.ChiThresholdDiscontinuous <= cfg.ChiThresholdContinuous {
			return SpeciesConfig{}, configErrorf("chi_threshold_discontinuous", "must be > chi_threshold_continuous, got %g <= %g", cfg.ChiThresholdDiscontinuous, cfg.ChiThresholdContinuous)
		}
	}
	if cfg.MultiphotonBW {
		if cfg.MBWPairCreationSampling[0] < 1 || cfg.MBWPairCreationSampling[1] < 1 {
			return SpeciesConfig{}, configErrorf("mBW_pair_creation_sampling", "both entries must be >= 1, got %v", cfg.MBWPairCreationSampling)
		}
	}
	if cfg.MaxMonteCarloIterations < 1 {
		return SpeciesConfig{}, configErrorf("max_monte_carlo_iterations", "must be >= 1, got %d", cfg.MaxMonteCarloIterations)
	}
	if cfg.Dt <= 0 {
		return SpeciesConfig{}, configErrorf("dt", "must be > 0, got %g", cfg.Dt)
	}
	if cfg.NormESchwinger <= 0 {
		return SpeciesConfig{}, configErrorf("norm_E_Schwinger", "must be > 0, got %g", cfg.NormESchwinger)
	}
	return cfg, nil
}
