package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport_Add_AccumulatesAllFields(t *testing.T) {
	r := Report{Species: "electron", RadiatedEnergy: 1, PairEnergy: 2, ParticlesProcessed: 3, ProductsCreated: 4, PhotonsDecayed: 5, IterationCapHits: 6, TableClampHits: 7}
	r.Add(Report{RadiatedEnergy: 1, PairEnergy: 1, ParticlesProcessed: 1, ProductsCreated: 1, PhotonsDecayed: 1, IterationCapHits: 1, TableClampHits: 1})

	assert.Equal(t, 2.0, r.RadiatedEnergy)
	assert.Equal(t, 3.0, r.PairEnergy)
	assert.Equal(t, 4, r.ParticlesProcessed)
	assert.Equal(t, 5, r.ProductsCreated)
	assert.Equal(t, 6, r.PhotonsDecayed)
	assert.Equal(t, 7, r.IterationCapHits)
	assert.Equal(t, 8, r.TableClampHits)
}

func TestReport_Add_LeavesSpeciesUnchanged(t *testing.T) {
	r := Report{Species: "positron"}
	r.Add(Report{Species: "electron"})
	assert.Equal(t, "positron", r.Species)
}
