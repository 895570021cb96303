package qed

import (
	"math"
	"math/rand"
)

// BreitWheelerEvent accumulates the outcome of one Apply call.
type BreitWheelerEvent struct {
	PairEnergy       float64
	IterationCapHits int
	TableClampHits   int
}

// MCBreitWheeler implements the per-photon Monte-Carlo multiphoton
// Breit-Wheeler pair-production core of spec.md §4.4: photons decay into
// electron/positron pairs via the same optical-depth countdown mechanism
// MCRadiation uses for discrete emission, with no continuous analogue
// (pair production has no classical limit).
type MCBreitWheeler struct {
	cfg    SpeciesConfig
	tables *QEDTables
	chi    *ChiEvaluator
}

// NewMCBreitWheeler builds an MCBreitWheeler for a photon species
// configured with MultiphotonBW enabled.
func NewMCBreitWheeler(cfg SpeciesConfig) (*MCBreitWheeler, error) {
	if !cfg.MultiphotonBW {
		return nil, configErrorf("multiphoton_bw", "NewMCBreitWheeler requires MultiphotonBW enabled for species %q", cfg.Name)
	}
	if cfg.Tables == nil {
		return nil, configErrorf("tables", "species %q has no QED tables loaded", cfg.Name)
	}
	chiEval, err := NewChiEvaluator(cfg.NormESchwinger)
	if err != nil {
		return nil, err
	}
	return &MCBreitWheeler{cfg: cfg, tables: cfg.Tables, chi: chiEval}, nil
}

// Apply advances every photon in [iStart, iEnd) of photons through one
// outer timestep. electrons/positrons receive the created lepton pairs
// (either may be nil, in which case their share's energy is still
// accounted into PairEnergy but no macro-particle is materialized,
// spec.md §6). rng is this worker's private random stream.
func (bw *MCBreitWheeler) Apply(photons *ParticleBlock, fields *FieldView, electrons, positrons *ProductBuffer, iStart, iEnd int, rng *rand.Rand) BreitWheelerEvent {
	var event BreitWheelerEvent

	for i := iStart; i < iEnd; i++ {
		if photons.Weight[i] <= 0 {
			continue // already decayed
		}

		tLocal := 0.0
		mcIter := 0
		decayed := false

		for tLocal < bw.cfg.Dt && mcIter < bw.cfg.MaxMonteCarloIterations && !decayed {
			gammaGamma := photons.PhotonGamma(i)
			ex, ey, ez, bx, by, bz := fields.At(i)
			kx, ky, kz := photons.Mom[0][i], photons.Mom[1][i], photons.Mom[2][i]
			chiGamma := bw.chi.PhotonChi(kx, ky, kz, gammaGamma, ex, ey, ez, bx, by, bz)

			if chiGamma <= bw.cfg.ChiThresholdPhoton {
				break
			}

			if photons.Tau[i] <= EpsTau {
				for photons.Tau[i] <= EpsTau {
					u := rng.Float64()
					photons.Tau[i] = -math.Log(1 - u)
				}
			}

			yield, yieldClamped := bw.tables.PairProductionYield(chiGamma, gammaGamma)
			if yieldClamped {
				event.TableClampHits++
			}
			dtEmit := remainingTime(photons.Tau[i], yield, bw.cfg.Dt-tLocal)
			photons.Tau[i] -= yield * dtEmit

			if photons.Tau[i] <= EpsTau {
				energy, splitClamped := bw.pairCreation(photons, electrons, positrons, i, chiGamma, gammaGamma, rng)
				event.PairEnergy += energy
				if splitClamped {
					event.TableClampHits++
				}
				photons.Weight[i] = 0
				decayed = true
			}

			mcIter++
			tLocal += dtEmit
		}
		if mcIter >= bw.cfg.MaxMonteCarloIterations && !decayed {
			event.IterationCapHits++
		}
	}

	return event
}

// pairCreation performs the pair-production event for photon i: samples
// the electron/positron energy split, emits macro-leptons collinear with
// the parent photon, and returns parentWeight*gammaGamma for the caller
// to accumulate into PairEnergy (spec.md §4.4 step 5), plus whether the
// energy-split sample fell outside the table's domain.
func (bw *MCBreitWheeler) pairCreation(photons *ParticleBlock, electrons, positrons *ProductBuffer, i int, chiGamma, gammaGamma float64, rng *rand.Rand) (energy float64, clamped bool) {
	u := rng.Float64()
	xElectron, xPositron, clamped := bw.tables.SamplePairSplitFraction(chiGamma, u)

	weight := photons.Weight[i]
	kx, ky, kz := photons.Mom[0][i], photons.Mom[1][i], photons.Mom[2][i]
	invNormK := 1.0 / gammaGamma

	var pos [3]float64
	for d := 0; d < photons.Dim; d++ {
		pos[d] = photons.Pos[d][i]
	}

	emit := func(buf *ProductBuffer, fraction float64, sampling int, charge int8) {
		if buf == nil || sampling < 1 {
			return
		}
		gammaLepton := fraction * gammaGamma
		mom := [3]float64{gammaLepton * kx * invNormK, gammaLepton * ky * invNormK, gammaLepton * kz * invNormK}
		w := weight / float64(sampling)
		for n := 0; n < sampling; n++ {
			buf.Append(pos, mom, charge, w, 0, -1)
		}
	}

	emit(electrons, xElectron, bw.cfg.MBWPairCreationSampling[0], -1)
	emit(positrons, xPositron, bw.cfg.MBWPairCreationSampling[1], 1)

	return weight * gammaGamma, clamped
}
