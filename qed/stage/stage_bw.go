package stage

import (
	"sync"

	"github.com/plasma-qed/qed-core/qed"
	"github.com/plasma-qed/qed-core/qed/metrics"
	"github.com/plasma-qed/qed-core/qed/rng"
)

// BreitWheelerStageResult is the per-step, per-species outcome of a
// Breit-Wheeler stage.
type BreitWheelerStageResult struct {
	Report metrics.Report
}

// RunBreitWheelerStage forks MCBreitWheeler.Apply across a bounded
// worker pool over photons[0:photons.Len()), joins, flushes every
// worker's electron/positron product buffers into the receiving species
// (either may be nil), and compacts decayed photons (weight <= 0) out of
// photons via CompactBins using bmin/bmax (spec.md §4.5). bmin/bmax must
// describe a complete partition of [0, photons.Len()) and are updated in
// place to reflect the post-compaction bin boundaries.
func RunBreitWheelerStage(bw *qed.MCBreitWheeler, photons *qed.ParticleBlock, fields *qed.FieldView, electronSpecies, positronSpecies *qed.ParticleBlock, bmin, bmax []int, seed rng.SimulationKey, maxWorkers int) BreitWheelerStageResult {
	ranges := partitionRange(photons.Len(), maxWorkers)
	if len(ranges) == 0 {
		return BreitWheelerStageResult{Report: metrics.Report{}}
	}

	partitioned := rng.NewPartitionedRNG(seed)

	events := make([]qed.BreitWheelerEvent, len(ranges))
	electronBuffers := make([]*qed.ProductBuffer, len(ranges))
	positronBuffers := make([]*qed.ProductBuffer, len(ranges))

	var wg sync.WaitGroup
	for w, r := range ranges {
		wg.Add(1)
		workerRNG := partitioned.ForWorker(w)
		workerFields := fields.Slice(r[0], r[1])
		electronBuffers[w] = qed.NewProductBuffer(photons.Dim, r[1]-r[0])
		positronBuffers[w] = qed.NewProductBuffer(photons.Dim, r[1]-r[0])
		go func(w, start, end int, workerFields *qed.FieldView) {
			defer wg.Done()
			events[w] = bw.Apply(photons, workerFields, electronBuffers[w], positronBuffers[w], start, end, workerRNG)
		}(w, r[0], r[1], workerFields)
	}
	wg.Wait()

	report := metrics.Report{}
	productsCreated := 0
	decayed := 0
	for w := range ranges {
		report.PairEnergy += events[w].PairEnergy
		report.IterationCapHits += events[w].IterationCapHits
		report.TableClampHits += events[w].TableClampHits
		report.ParticlesProcessed += ranges[w][1] - ranges[w][0]
		productsCreated += electronBuffers[w].Len() + positronBuffers[w].Len()
	}
	report.ProductsCreated = productsCreated

	logStageWarnings(report.IterationCapHits, report.TableClampHits)

	if electronSpecies != nil {
		qed.FlushBuffers(electronBuffers, electronSpecies)
	}
	if positronSpecies != nil {
		qed.FlushBuffers(positronBuffers, positronSpecies)
	}

	for i := 0; i < photons.Len(); i++ {
		if photons.Weight[i] <= 0 {
			decayed++
		}
	}
	report.PhotonsDecayed = decayed

	qed.CompactBins(photons, bmin, bmax)

	return BreitWheelerStageResult{Report: report}
}
