package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plasma-qed/qed-core/qed"
	"github.com/plasma-qed/qed-core/qed/rng"
)

func buildStagePhotons(n int) *qed.ParticleBlock {
	pb := &qed.ParticleBlock{Dim: 3}
	pb.Weight = make([]float64, n)
	pb.Charge = make([]int8, n)
	pb.Chi = make([]float64, n)
	pb.Tau = make([]float64, n)
	for d := 0; d < 3; d++ {
		pb.Pos[d] = make([]float64, n)
		pb.Mom[d] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		pb.Weight[i] = 1.0
		pb.Mom[0][i] = 1000.0
		pb.Tau[i] = -1
	}
	return pb
}

func TestRunBreitWheelerStage_CompactsDecayedPhotonsOutOfBins(t *testing.T) {
	tables := buildStageTables(t)
	cfg := qed.SpeciesConfig{
		Name:                    "photon",
		MultiphotonBW:           true,
		Tables:                  tables,
		MBWPairCreationSampling: [2]int{1, 1},
		ChiThresholdPhoton:      1e-9,
		MaxMonteCarloIterations: 10000,
		Dt:                      1e-3,
		NormESchwinger:          1.0,
	}
	bw, err := qed.NewMCBreitWheeler(cfg)
	assert.NoError(t, err)

	photons := buildStagePhotons(20)
	fields := buildStageFields(20)
	electrons := &qed.ParticleBlock{Dim: 3}
	positrons := &qed.ParticleBlock{Dim: 3}
	bmin := []int{0, 10}
	bmax := []int{10, 20}

	result := RunBreitWheelerStage(bw, photons, fields, electrons, positrons, bmin, bmax, rng.NewSimulationKey(5), 4)

	for i := 0; i < photons.Len(); i++ {
		assert.Greater(t, photons.Weight[i], 0.0)
	}
	assert.Equal(t, bmax[len(bmax)-1], photons.Len())
	assert.GreaterOrEqual(t, result.Report.PhotonsDecayed, 0)
}

func TestRunBreitWheelerStage_EmptyRangeIsANoOp(t *testing.T) {
	tables := buildStageTables(t)
	cfg := qed.SpeciesConfig{
		MultiphotonBW:           true,
		Tables:                  tables,
		MBWPairCreationSampling: [2]int{1, 1},
		MaxMonteCarloIterations: 10,
		Dt:                      1e-3,
		NormESchwinger:          1.0,
	}
	bw, err := qed.NewMCBreitWheeler(cfg)
	assert.NoError(t, err)

	photons := &qed.ParticleBlock{Dim: 3}
	fields := buildStageFields(0)
	result := RunBreitWheelerStage(bw, photons, fields, nil, nil, nil, nil, rng.NewSimulationKey(1), 4)

	assert.Equal(t, 0, result.Report.ParticlesProcessed)
}
