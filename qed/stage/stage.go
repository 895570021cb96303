// Package stage implements the bounded fork-join scheduler spec.md §5
// describes: particle ranges within a patch are split across a bounded
// worker pool (OpenMP-style fork-join), each worker owning a disjoint
// index range, its own RNG stream, its own field-sample view and its own
// product buffer, with no synchronization inside the per-particle loop
// and a single sync.WaitGroup join at the end.
//
// The fork-join shape is adapted from deepteams-webp's
// internal/lossy/encode_parallel.go encodeFrameParallel: a GOMAXPROCS-
// bounded worker count, one goroutine per worker, joined with
// sync.WaitGroup. Unlike that row-encoder (where row N depends on row
// N-1's progress and workers claim rows from a shared atomic counter),
// particle ranges have no inter-range dependency, so this scheduler uses
// static disjoint slicing instead of dynamic claiming: no row-sync
// machinery is needed, only the final Wait().
package stage

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/plasma-qed/qed-core/qed"
	"github.com/plasma-qed/qed-core/qed/metrics"
	"github.com/plasma-qed/qed-core/qed/rng"
)

// DefaultMaxWorkers bounds worker count when the caller does not override
// it; 0 or negative maxWorkers in the Run* functions falls back to this.
const DefaultMaxWorkers = 16

// partitionRange splits [0, n) into at most maxWorkers contiguous,
// disjoint, non-empty sub-ranges (spec.md §5's "disjoint half-open index
// range [i_start, i_end) within one species' particle array").
func partitionRange(n, maxWorkers int) [][2]int {
	if n == 0 {
		return nil
	}
	if maxWorkers < 1 {
		maxWorkers = DefaultMaxWorkers
	}
	if maxWorkers > n {
		maxWorkers = n
	}
	base := n / maxWorkers
	rem := n % maxWorkers

	ranges := make([][2]int, 0, maxWorkers)
	start := 0
	for w := 0; w < maxWorkers; w++ {
		size := base
		if w < rem {
			size++
		}
		if size == 0 {
			continue
		}
		ranges = append(ranges, [2]int{start, start + size})
		start += size
	}
	return ranges
}

// RadiationStageResult is the per-step, per-species outcome of a
// radiation stage: the report reduced across workers. The worker-local
// product buffers are not kept; RunRadiationStage has already flushed
// them into photonSpecies when that is non-nil.
type RadiationStageResult struct {
	Report metrics.Report
}

// RunRadiationStage forks MCRadiation.Apply across a bounded worker pool
// over particles[0:particles.Len()), each worker operating on its own
// disjoint range with its own RNG stream and field-sample view (sliced
// from fields via FieldView.Slice), and joins before flushing every
// worker's ProductBuffer into photonSpecies (may be nil). maxWorkers <= 0
// uses DefaultMaxWorkers, further capped by runtime.GOMAXPROCS(0) by the
// caller if desired; this package does not read runtime state itself so
// that tests are deterministic regardless of GOMAXPROCS.
func RunRadiationStage(mc *qed.MCRadiation, particles *qed.ParticleBlock, fields *qed.FieldView, photonSpecies *qed.ParticleBlock, seed rng.SimulationKey, maxWorkers int) RadiationStageResult {
	ranges := partitionRange(particles.Len(), maxWorkers)
	if len(ranges) == 0 {
		return RadiationStageResult{Report: metrics.Report{}}
	}

	partitioned := rng.NewPartitionedRNG(seed)

	events := make([]qed.RadiationEvent, len(ranges))
	buffers := make([]*qed.ProductBuffer, len(ranges))

	var wg sync.WaitGroup
	for w, r := range ranges {
		wg.Add(1)
		workerRNG := partitioned.ForWorker(w)
		workerFields := fields.Slice(r[0], r[1])
		buffers[w] = qed.NewProductBuffer(particles.Dim, r[1]-r[0])
		go func(w int, start, end int, workerFields *qed.FieldView) {
			defer wg.Done()
			events[w] = mc.Apply(particles, workerFields, buffers[w], start, end, workerRNG)
		}(w, r[0], r[1], workerFields)
	}
	wg.Wait()

	report := metrics.Report{}
	productsCreated := 0
	for w := range ranges {
		report.RadiatedEnergy += events[w].RadiatedEnergy
		report.IterationCapHits += events[w].IterationCapHits
		report.TableClampHits += events[w].TableClampHits
		report.ParticlesProcessed += ranges[w][1] - ranges[w][0]
		productsCreated += buffers[w].Len()
	}
	report.ProductsCreated = productsCreated

	logStageWarnings(report.IterationCapHits, report.TableClampHits)

	if photonSpecies != nil {
		qed.FlushBuffers(buffers, photonSpecies)
	}

	return RadiationStageResult{Report: report}
}

// logStageWarnings emits at most one debug-level log line for the
// iteration-cap and table-clamp conditions reduced from this stage's
// workers, rather than one per particle hit (spec.md §7's once-per-rank-
// per-step dedup requirement).
func logStageWarnings(iterationCapHits, tableClampHits int) {
	if iterationCapHits == 0 && tableClampHits == 0 {
		return
	}
	logrus.WithFields(logrus.Fields{
		"iteration_cap_hits": iterationCapHits,
		"table_clamp_hits":   tableClampHits,
	}).Debug("stage hit iteration-cap or table-out-of-range conditions")
}
