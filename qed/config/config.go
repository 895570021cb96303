// Package config loads the namelist-level QED configuration surface
// (spec.md §6) from YAML, adapted from the teacher's cmd/default_config.go
// strict-decoding pattern (yaml.v3's KnownFields(true), so a typo'd field
// name is a load error rather than a silently-ignored default).
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/plasma-qed/qed-core/qed"
)

// SpeciesSpec is the on-disk YAML shape of one species' QED namelist
// block (spec.md §6). TablesManifest, when non-empty, is loaded via
// qed.LoadQEDTables; BuildTables, when non-nil, is used instead to
// recompute tables on-demand (qed.BuildQEDTables). At least one of the
// two must be set when RadiationModel is MC or MultiphotonBW is on; when
// both are set, TablesManifest is used and BuildTables is ignored.
type SpeciesSpec struct {
	Name string `yaml:"name"`

	RadiationModel string `yaml:"radiation_model"` // none | continuous-LL | MC
	MultiphotonBW  bool   `yaml:"multiphoton_bw"`

	TablesManifest string               `yaml:"tables_manifest"`
	BuildTables    *qed.TableBuildConfig `yaml:"build_tables"`

	RadiationPhotonSampling       int     `yaml:"radiation_photon_sampling"`
	RadiationPhotonGammaThreshold float64 `yaml:"radiation_photon_gamma_threshold"`
	MBWPairCreationSampling       [2]int  `yaml:"mBW_pair_creation_sampling"`

	ChiThresholdContinuous    float64 `yaml:"chi_threshold_continuous"`
	ChiThresholdDiscontinuous float64 `yaml:"chi_threshold_discontinuous"`

	MaxMonteCarloIterations int     `yaml:"max_monte_carlo_iterations"`
	Dt                      float64 `yaml:"dt"`
	NormESchwinger          float64 `yaml:"norm_E_Schwinger"`
}

// File is the top-level YAML document: a list of species specs, each
// independently resolved into a qed.SpeciesConfig.
type File struct {
	Species []SpeciesSpec `yaml:"species"`
}

// LoadSpeciesConfigs reads path and resolves every species block into a
// validated qed.SpeciesConfig, loading or building its QED tables as
// directed. Configuration errors anywhere in the file abort the whole
// load (spec.md §7: configuration errors are fatal at construction).
func LoadSpeciesConfigs(path string) ([]qed.SpeciesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("qed/config: reading %s: %w", path, err)
	}

	var file File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("qed/config: parsing %s: %w", path, err)
	}

	species := make([]qed.SpeciesConfig, 0, len(file.Species))
	for _, spec := range file.Species {
		cfg, err := resolveSpeciesSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("qed/config: species %q: %w", spec.Name, err)
		}
		species = append(species, cfg)
	}
	return species, nil
}

func resolveSpeciesSpec(spec SpeciesSpec) (qed.SpeciesConfig, error) {
	model, err := qed.ParseRadiationModelKind(spec.RadiationModel)
	if err != nil {
		return qed.SpeciesConfig{}, err
	}

	var tables *qed.QEDTables
	needsTables := model == qed.RadiationMC || spec.MultiphotonBW
	if needsTables {
		switch {
		case spec.TablesManifest != "":
			tables, err = qed.LoadQEDTables(spec.TablesManifest)
		case spec.BuildTables != nil:
			tables, err = qed.BuildQEDTables(*spec.BuildTables)
		default:
			err = fmt.Errorf("radiation model %s or multiphoton_bw requires tables_manifest or build_tables", model)
		}
		if err != nil {
			return qed.SpeciesConfig{}, err
		}
	}

	chiThresholdPhoton := 0.0
	if tables != nil {
		chiThresholdPhoton = tables.ChiThresholdPhoton()
	}

	cfg := qed.SpeciesConfig{
		Name:                          spec.Name,
		RadiationModel:                model,
		MultiphotonBW:                 spec.MultiphotonBW,
		Tables:                        tables,
		RadiationPhotonSampling:       spec.RadiationPhotonSampling,
		RadiationPhotonGammaThreshold: spec.RadiationPhotonGammaThreshold,
		MBWPairCreationSampling:       spec.MBWPairCreationSampling,
		ChiThresholdContinuous:        spec.ChiThresholdContinuous,
		ChiThresholdDiscontinuous:     spec.ChiThresholdDiscontinuous,
		ChiThresholdPhoton:            chiThresholdPhoton,
		MaxMonteCarloIterations:       spec.MaxMonteCarloIterations,
		Dt:                            spec.Dt,
		NormESchwinger:                spec.NormESchwinger,
	}

	return qed.NewSpeciesConfig(cfg)
}
