package qed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildTestTables(t *testing.T) *QEDTables {
	t.Helper()
	tables, err := BuildQEDTables(TableBuildConfig{
		ChiMin: 1e-3, ChiMax: 10,
		GammaMin: 2, GammaMax: 1000,
		NumChiPoints: 16, NumGammaPoints: 16, NumUPoints: 16,
		MinChiContinuous:    1e-3,
		MinChiDiscontinuous: 1e-2,
		ChiThresholdPhoton:  1e-3,
	})
	assert.NoError(t, err)
	return tables
}

func TestBuildQEDTables_RejectsInvalidBounds(t *testing.T) {
	_, err := BuildQEDTables(TableBuildConfig{
		ChiMin: 1, ChiMax: 0.5,
		GammaMin: 2, GammaMax: 1000,
		NumChiPoints: 4, NumGammaPoints: 4, NumUPoints: 4,
		MinChiContinuous: 0.1, MinChiDiscontinuous: 0.2,
	})
	assert.Error(t, err)
}

func TestBuildQEDTables_RejectsInconsistentThresholds(t *testing.T) {
	_, err := BuildQEDTables(TableBuildConfig{
		ChiMin: 1e-3, ChiMax: 10,
		GammaMin: 2, GammaMax: 1000,
		NumChiPoints: 4, NumGammaPoints: 4, NumUPoints: 4,
		MinChiContinuous: 0.2, MinChiDiscontinuous: 0.1,
	})
	assert.Error(t, err)
}

func TestQEDTables_SampleEmittedChi_ClampsToParent(t *testing.T) {
	tables := buildTestTables(t)
	child, _ := tables.SampleEmittedChi(0.5, 1.0)
	assert.LessOrEqual(t, child, 0.5)
	assert.GreaterOrEqual(t, child, 0.0)
}

// P7: for fixed chi_parent, sampleEmittedChi is non-decreasing in u.
func TestQEDTables_SampleEmittedChi_MonotoneInU(t *testing.T) {
	tables := buildTestTables(t)
	const chiParent = 0.3
	prev, _ := tables.SampleEmittedChi(chiParent, 0.0)
	for _, u := range []float64{0.1, 0.25, 0.4, 0.55, 0.7, 0.85, 1.0} {
		cur, _ := tables.SampleEmittedChi(chiParent, u)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestQEDTables_SamplePairSplitFraction_SumsToOne(t *testing.T) {
	tables := buildTestTables(t)
	xe, xp, _ := tables.SamplePairSplitFraction(0.5, 0.37)
	assert.InDelta(t, 1.0, xe+xp, 1e-12)
	assert.GreaterOrEqual(t, xe, 0.0)
	assert.LessOrEqual(t, xe, 1.0)
}

func TestQEDTables_Yields_ClampOutOfRangeQueries(t *testing.T) {
	tables := buildTestTables(t)

	inRange, inRangeClamped := tables.PhotonProductionYield(1.0, 100)
	belowRange, belowClamped := tables.PhotonProductionYield(1e-6, 100)
	aboveRange, aboveClamped := tables.PhotonProductionYield(1e6, 100)

	assert.False(t, belowRange < 0)
	assert.False(t, aboveRange < 0)
	assert.False(t, inRangeClamped)
	assert.True(t, belowClamped)
	assert.True(t, aboveClamped)
	_ = inRange
}

func TestRidgersG_IsOneAtZeroChiAndDecaysAboveIt(t *testing.T) {
	assert.Equal(t, 1.0, ridgersG(0))
	assert.Less(t, ridgersG(10), ridgersG(0))
}

func TestQEDTables_RidgersCorrectedRadiatedEnergy_ScalesWithDt(t *testing.T) {
	tables := buildTestTables(t)
	e1 := tables.RidgersCorrectedRadiatedEnergy(0.5, 1.0)
	e2 := tables.RidgersCorrectedRadiatedEnergy(0.5, 2.0)
	assert.InDelta(t, e1*2, e2, 1e-12)
}
