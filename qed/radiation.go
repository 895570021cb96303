package qed

import (
	"math"
	"math/rand"
)

// RadiationEvent accumulates the outcome of one Apply call: the scalar
// energy accumulator, the count of particles that hit the iteration safety
// cap, and the count of table lookups that fell outside a table's domain
// and had to be clamped (spec.md §7, both logged once per rank per step by
// the caller).
type RadiationEvent struct {
	RadiatedEnergy   float64
	IterationCapHits int
	TableClampHits   int
}

// MCRadiation implements the per-particle inverse Compton scattering core
// of spec.md §4.3, dispatching once per Apply call on the species'
// RadiationModelKind (resolved at construction, never per-particle —
// spec.md §9's polymorphism-avoidance note): RadiationContinuousLL applies
// the classical Landau-Lifshitz-with-quantum-correction damping
// unconditionally, with no stochastic emission or regime switch;
// RadiationMC additionally switches to discrete stochastic macro-photon
// emission once chi crosses the discontinuous threshold.
type MCRadiation struct {
	cfg    SpeciesConfig
	tables *QEDTables
	chi    *ChiEvaluator
}

// NewMCRadiation builds an MCRadiation for a species configured with
// RadiationModel == RadiationMC or RadiationContinuousLL. RadiationMC
// requires loaded QED tables (sampling/yield lookups); RadiationContinuousLL
// does not, since the Ridgers-corrected damping formula it uses is closed
// form.
func NewMCRadiation(cfg SpeciesConfig) (*MCRadiation, error) {
	switch cfg.RadiationModel {
	case RadiationMC:
		if cfg.Tables == nil {
			return nil, configErrorf("tables", "species %q has no QED tables loaded", cfg.Name)
		}
	case RadiationContinuousLL:
		// No tables required: the continuous damping formula is closed form.
	default:
		return nil, configErrorf("radiation_model", "NewMCRadiation requires RadiationModel == MC or continuous-LL, got %s", cfg.RadiationModel)
	}
	chiEval, err := NewChiEvaluator(cfg.NormESchwinger)
	if err != nil {
		return nil, err
	}
	return &MCRadiation{cfg: cfg, tables: cfg.Tables, chi: chiEval}, nil
}

// Apply advances every particle in [iStart, iEnd) of particles through one
// outer timestep, dispatching on the species' radiation model. fields holds
// the interpolated field samples for this thread's range (offset
// convention via FieldView.At). photons receives emitted macro-photons
// (RadiationMC only; may be nil, in which case their energy is folded into
// the returned RadiatedEnergy instead — spec.md §4.3's photonEmission
// accounting convention). rng is this worker's private random stream,
// unused by the continuous-LL path.
func (r *MCRadiation) Apply(particles *ParticleBlock, fields *FieldView, photons *ProductBuffer, iStart, iEnd int, rng *rand.Rand) RadiationEvent {
	switch r.cfg.RadiationModel {
	case RadiationContinuousLL:
		return r.applyContinuousLL(particles, fields, iStart, iEnd)
	default:
		return r.applyMonteCarlo(particles, fields, photons, iStart, iEnd, rng)
	}
}

// applyContinuousLL applies the classical Landau-Lifshitz-with-quantum-
// correction damping to every particle in range unconditionally: no
// optical-depth countdown, no regime switch, no macro-photon emission —
// just the continuous branch of spec.md §4.3, applied once per particle
// over the whole timestep Dt.
func (r *MCRadiation) applyContinuousLL(particles *ParticleBlock, fields *FieldView, iStart, iEnd int) RadiationEvent {
	var event RadiationEvent
	one := 1.0

	for i := iStart; i < iEnd; i++ {
		gamma := particles.Gamma(i)
		if gamma == one {
			continue
		}

		chargeOverMassSquare := float64(particles.Charge[i])
		ex, ey, ez, bx, by, bz := fields.At(i)
		px, py, pz := particles.Mom[0][i], particles.Mom[1][i], particles.Mom[2][i]
		chi := r.chi.ParticleChi(chargeOverMassSquare, px, py, pz, gamma, ex, ey, ez, bx, by, bz)

		dE := ridgersCorrectedRadiatedEnergy(chi, r.cfg.Dt)
		f := dE * gamma / (gamma*gamma - 1)
		particles.Mom[0][i] *= 1 - f
		particles.Mom[1][i] *= 1 - f
		particles.Mom[2][i] *= 1 - f

		gammaAfter := particles.Gamma(i)
		event.RadiatedEnergy += particles.Weight[i] * (gamma - gammaAfter)
	}

	r.refreshChi(particles, fields, iStart, iEnd)
	return event
}

// applyMonteCarlo is the RadiationMC regime-switching core of spec.md
// §4.3: continuous damping below the discontinuous threshold, discrete
// stochastic macro-photon emission above it, selected per sub-step by
// comparing the current chi against the species' regime thresholds.
func (r *MCRadiation) applyMonteCarlo(particles *ParticleBlock, fields *FieldView, photons *ProductBuffer, iStart, iEnd int, rng *rand.Rand) RadiationEvent {
	var event RadiationEvent
	one := 1.0

	for i := iStart; i < iEnd; i++ {
		gamma := particles.Gamma(i)
		if gamma == one {
			continue
		}

		chargeOverMassSquare := float64(particles.Charge[i])
		tLocal := 0.0
		mcIter := 0

		for tLocal < r.cfg.Dt && mcIter < r.cfg.MaxMonteCarloIterations {
			gamma = particles.Gamma(i)
			if gamma == one {
				break
			}

			ex, ey, ez, bx, by, bz := fields.At(i)
			px, py, pz := particles.Mom[0][i], particles.Mom[1][i], particles.Mom[2][i]
			chi := r.chi.ParticleChi(chargeOverMassSquare, px, py, pz, gamma, ex, ey, ez, bx, by, bz)

			switch {
			case chi > r.cfg.ChiThresholdDiscontinuous && particles.Tau[i] <= EpsTau:
				// Start a new discontinuous event: draw a fresh target
				// optical depth, excluding the singular U=0 draw.
				for particles.Tau[i] <= EpsTau {
					u := rng.Float64()
					particles.Tau[i] = -math.Log(1 - u)
				}
				fallthrough

			case particles.Tau[i] > EpsTau:
				yield, yieldClamped := r.tables.PhotonProductionYield(chi, gamma)
				if yieldClamped {
					event.TableClampHits++
				}
				dtEmit := remainingTime(particles.Tau[i], yield, r.cfg.Dt-tLocal)
				particles.Tau[i] -= yield * dtEmit

				if particles.Tau[i] <= EpsTau {
					energy, emissionClamped := r.photonEmission(particles, fields, photons, i, chi, gamma, rng)
					event.RadiatedEnergy += energy
					if emissionClamped {
						event.TableClampHits++
					}
					particles.Tau[i] = -1
				}
				mcIter++
				tLocal += dtEmit

			case chi > r.cfg.ChiThresholdContinuous && gamma > one:
				dE := r.tables.RidgersCorrectedRadiatedEnergy(chi, r.cfg.Dt-tLocal)
				f := dE * gamma / (gamma*gamma - 1)
				particles.Mom[0][i] *= 1 - f
				particles.Mom[1][i] *= 1 - f
				particles.Mom[2][i] *= 1 - f

				gammaAfter := particles.Gamma(i)
				event.RadiatedEnergy += particles.Weight[i] * (gamma - gammaAfter)
				tLocal = r.cfg.Dt

			default:
				tLocal = r.cfg.Dt
			}
		}
		if mcIter >= r.cfg.MaxMonteCarloIterations {
			event.IterationCapHits++
		}
	}

	r.refreshChi(particles, fields, iStart, iEnd)
	return event
}

// refreshChi is the post-loop diagnostic pass of spec.md §4.3 step 4: it
// recomputes chi[i] from the final momentum for every particle in range,
// kept deliberately separate from the chi used inside the Monte-Carlo
// loop (spec.md §9's open question) so the stored diagnostic is
// bit-reproducible regardless of how many sub-steps each particle took.
func (r *MCRadiation) refreshChi(particles *ParticleBlock, fields *FieldView, iStart, iEnd int) {
	for i := iStart; i < iEnd; i++ {
		gamma := particles.Gamma(i)
		ex, ey, ez, bx, by, bz := fields.At(i)
		px, py, pz := particles.Mom[0][i], particles.Mom[1][i], particles.Mom[2][i]
		chargeOverMassSquare := float64(particles.Charge[i])
		particles.Chi[i] = r.chi.ParticleChi(chargeOverMassSquare, px, py, pz, gamma, ex, ey, ez, bx, by, bz)
	}
}

// photonEmission performs one discrete photon emission for particle i:
// samples the emitted chi, recoils the parent momentum by momentum
// conservation in the emission direction, and either appends macro-
// photons to the product buffer or returns the unresolved radiated
// energy for the caller to accumulate into the scalar (spec.md §4.3's
// photonEmission, §9's accounting convention: macro-photon stored =>
// energy carried by the particle, not the scalar). clamped reports
// whether the inverse-CDF sample fell outside the emission table's domain.
func (r *MCRadiation) photonEmission(particles *ParticleBlock, fields *FieldView, photons *ProductBuffer, i int, chi, gammaBefore float64, rng *rand.Rand) (energy float64, clamped bool) {
	u := rng.Float64()
	chiGamma, clamped := r.tables.SampleEmittedChi(chi, u)

	gammaGamma := (chiGamma / chi) * (gammaBefore - 1)
	if gammaGamma > gammaBefore-1 {
		gammaGamma = gammaBefore - 1 // pathological-table safety clamp, spec.md §4.3
	}

	px, py, pz := particles.Mom[0][i], particles.Mom[1][i], particles.Mom[2][i]
	normP := math.Sqrt(gammaBefore*gammaBefore - 1)

	recoil := gammaGamma / normP
	particles.Mom[0][i] = px - px*recoil
	particles.Mom[1][i] = py - py*recoil
	particles.Mom[2][i] = pz - pz*recoil

	if photons != nil && gammaGamma >= r.cfg.RadiationPhotonGammaThreshold {
		invOldNormP := 1.0 / normP
		weight := particles.Weight[i] / float64(r.cfg.RadiationPhotonSampling)
		var pos [3]float64
		for d := 0; d < particles.Dim; d++ {
			pos[d] = particles.Pos[d][i]
		}
		mom := [3]float64{gammaGamma * px * invOldNormP, gammaGamma * py * invOldNormP, gammaGamma * pz * invOldNormP}
		for n := 0; n < r.cfg.RadiationPhotonSampling; n++ {
			photons.Append(pos, mom, 0, weight, chiGamma, -1)
		}
		return 0, clamped
	}

	gammaAfter := particles.Gamma(i)
	return particles.Weight[i] * (gammaBefore - gammaAfter), clamped
}

// remainingTime computes min(tau/yield, remaining), treating a near-zero
// yield (below which division would blow up or stall) as "no emission
// this sub-step" by consuming the remainder of the timestep instead.
func remainingTime(tau, yield, remaining float64) float64 {
	const yieldFloor = 1e-300
	if yield < yieldFloor {
		return remaining
	}
	dt := tau / yield
	if dt > remaining {
		return remaining
	}
	return dt
}
