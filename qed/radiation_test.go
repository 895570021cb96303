package qed

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newRadiationFixture(t *testing.T, n int) (*MCRadiation, *ParticleBlock, *FieldView) {
	t.Helper()
	tables := buildTestTables(t)
	cfg := minimalMCConfig(tables)
	mc, err := NewMCRadiation(cfg)
	assert.NoError(t, err)

	pb := &ParticleBlock{Dim: 3}
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
		pb.Charge[i] = -1
		pb.Mom[0][i] = 500.0
		pb.Tau[i] = -1
	}

	fields := &FieldView{E: make([]float64, 3*n), B: make([]float64, 3*n), IpartRef: 0}
	for i := 0; i < n; i++ {
		fields.E[i] = 0.05
		fields.B[n+i] = 0.05
	}
	return mc, pb, fields
}

func TestNewMCRadiation_RejectsWrongModelKind(t *testing.T) {
	tables := buildTestTables(t)
	cfg := minimalMCConfig(tables)
	cfg.RadiationModel = RadiationNone
	_, err := NewMCRadiation(cfg)
	assert.Error(t, err)
}

func TestNewMCRadiation_ContinuousLLRequiresNoTables(t *testing.T) {
	cfg := minimalMCConfig(nil)
	cfg.RadiationModel = RadiationContinuousLL
	cfg.Tables = nil
	mc, err := NewMCRadiation(cfg)
	assert.NoError(t, err)
	assert.NotNil(t, mc)
}

func TestMCRadiation_ApplyContinuousLL_RadiatesEveryStepWithNoTau(t *testing.T) {
	cfg := minimalMCConfig(nil)
	cfg.RadiationModel = RadiationContinuousLL
	cfg.Tables = nil
	mc, err := NewMCRadiation(cfg)
	assert.NoError(t, err)

	const n = 10
	pb := &ParticleBlock{Dim: 3}
	pb.Weight = make([]float64, n)
	pb.Charge = make([]int8, n)
	pb.Chi = make([]float64, n)
	for d := 0; d < 3; d++ {
		pb.Pos[d] = make([]float64, n)
		pb.Mom[d] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		pb.Weight[i] = 1.0
		pb.Charge[i] = -1
		pb.Mom[0][i] = 500.0
	}
	fields := &FieldView{E: make([]float64, 3*n), B: make([]float64, 3*n), IpartRef: 0}
	for i := 0; i < n; i++ {
		fields.E[i] = 0.05
		fields.B[n+i] = 0.05
	}

	gammaBefore := make([]float64, n)
	for i := range gammaBefore {
		gammaBefore[i] = pb.Gamma(i)
	}

	event := mc.Apply(pb, fields, nil, 0, n, nil)

	assert.Greater(t, event.RadiatedEnergy, 0.0)
	for i := 0; i < n; i++ {
		assert.Less(t, pb.Gamma(i), gammaBefore[i])
	}
}

func TestMCRadiation_ApplyContinuousLL_NeverEmitsPhotons(t *testing.T) {
	cfg := minimalMCConfig(nil)
	cfg.RadiationModel = RadiationContinuousLL
	cfg.Tables = nil
	mc, err := NewMCRadiation(cfg)
	assert.NoError(t, err)

	const n = 5
	pb := &ParticleBlock{Dim: 3}
	pb.Weight = make([]float64, n)
	pb.Charge = make([]int8, n)
	pb.Chi = make([]float64, n)
	for d := 0; d < 3; d++ {
		pb.Pos[d] = make([]float64, n)
		pb.Mom[d] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		pb.Weight[i] = 1.0
		pb.Charge[i] = -1
		pb.Mom[0][i] = 500.0
	}
	fields := &FieldView{E: make([]float64, 3*n), B: make([]float64, 3*n), IpartRef: 0}
	for i := 0; i < n; i++ {
		fields.E[i] = 0.05
		fields.B[n+i] = 0.05
	}

	buf := NewProductBuffer(3, 0)
	mc.Apply(pb, fields, buf, 0, n, nil)

	assert.Equal(t, 0, buf.Len())
}

func TestMCRadiation_Apply_RestParticleIsUntouched(t *testing.T) {
	mc, pb, fields := newRadiationFixture(t, 1)
	pb.Mom[0][0] = 0
	pb.Mom[1][0] = 0
	pb.Mom[2][0] = 0

	rng := rand.New(rand.NewSource(1))
	event := mc.Apply(pb, fields, nil, 0, 1, rng)

	assert.Equal(t, 0.0, event.RadiatedEnergy)
	assert.Equal(t, 0.0, pb.Mom[0][0])
}

// P1: weighted energy before equals weighted energy after plus whatever
// was radiated (scalar accumulator, since photons == nil here folds
// macro-photon energy into RadiatedEnergy per the accounting convention).
func TestMCRadiation_Apply_ConservesEnergyWithNilPhotonSink(t *testing.T) {
	mc, pb, fields := newRadiationFixture(t, 20)
	gammaBefore := make([]float64, pb.Len())
	for i := range gammaBefore {
		gammaBefore[i] = pb.Gamma(i)
	}

	rng := rand.New(rand.NewSource(7))
	event := mc.Apply(pb, fields, nil, 0, pb.Len(), rng)

	sumBefore, sumAfter := 0.0, 0.0
	for i := 0; i < pb.Len(); i++ {
		sumBefore += pb.Weight[i] * gammaBefore[i]
		sumAfter += pb.Weight[i] * pb.Gamma(i)
	}
	assert.InDelta(t, sumBefore, sumAfter+event.RadiatedEnergy, 1e-6*float64(pb.Len()))
}

func TestMCRadiation_Apply_EmitsMacroPhotonsIntoBuffer(t *testing.T) {
	mc, pb, fields := newRadiationFixture(t, 50)
	mc.cfg.ChiThresholdDiscontinuous = 1e-6 // force the discontinuous regime immediately
	mc.cfg.Dt = 1e5                         // long enough for the optical-depth countdown to reach zero

	buf := NewProductBuffer(3, 0)
	rng := rand.New(rand.NewSource(42))
	mc.Apply(pb, fields, buf, 0, pb.Len(), rng)

	assert.Greater(t, buf.Len(), 0)
	for i := 0; i < buf.Len(); i++ {
		assert.Greater(t, buf.weight[i], 0.0)
	}
}

func TestMCRadiation_Apply_RefreshesChiDiagnostic(t *testing.T) {
	mc, pb, fields := newRadiationFixture(t, 5)
	for i := range pb.Chi {
		pb.Chi[i] = -999
	}
	rng := rand.New(rand.NewSource(3))
	mc.Apply(pb, fields, nil, 0, pb.Len(), rng)

	for i := 0; i < pb.Len(); i++ {
		assert.NotEqual(t, -999.0, pb.Chi[i])
		assert.False(t, math.IsNaN(pb.Chi[i]))
	}
}

func TestMCRadiation_Apply_IterationCapIsRespected(t *testing.T) {
	mc, pb, fields := newRadiationFixture(t, 1)
	mc.cfg.MaxMonteCarloIterations = 1
	mc.cfg.ChiThresholdDiscontinuous = 1e-6

	rng := rand.New(rand.NewSource(5))
	event := mc.Apply(pb, fields, nil, 0, 1, rng)

	// The single particle uses its one allowed sub-step and is counted.
	assert.Equal(t, 1, event.IterationCapHits)
}
