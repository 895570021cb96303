package qed

import (
	"math"
	"sort"
)

// axis describes one dimension of a table2D grid: the sorted sample points
// and whether interpolation along this axis is performed in log-space
// (used for chi and gamma axes, which span many decades) or linearly
// (used for the uniform-variate axis of the inverse-CDF tables).
type axis struct {
	vals []float64
	log  bool
}

func newAxis(vals []float64, log bool) axis {
	return axis{vals: vals, log: log}
}

// bracket returns the indices lo<=hi bracketing v (in the axis's own
// value space), the interpolation fraction t in [0,1] between them, and
// whether v fell outside [vals[0], vals[n-1]] and had to be clamped
// before bracketing (spec.md §7's table-out-of-range condition).
func (a axis) bracket(v float64) (lo, hi int, t float64, outOfRange bool) {
	n := len(a.vals)
	if n == 1 {
		return 0, 0, 0, v != a.vals[0]
	}
	clamped := v
	if clamped < a.vals[0] {
		clamped = a.vals[0]
		outOfRange = true
	}
	if clamped > a.vals[n-1] {
		clamped = a.vals[n-1]
		outOfRange = true
	}
	idx := sort.SearchFloat64s(a.vals, clamped)
	if idx >= n {
		idx = n - 1
	}
	if idx == 0 {
		return 0, 0, 0, outOfRange
	}
	if a.vals[idx] == clamped {
		return idx, idx, 0, outOfRange
	}
	lo, hi = idx-1, idx
	var loC, hiC, vC float64
	if a.log {
		loC, hiC, vC = math.Log(a.vals[lo]), math.Log(a.vals[hi]), math.Log(clamped)
	} else {
		loC, hiC, vC = a.vals[lo], a.vals[hi], clamped
	}
	if hiC == loC {
		return lo, hi, 0, outOfRange
	}
	return lo, hi, (vC - loC) / (hiC - loC), outOfRange
}

// table2D is a dense, immutable bilinear-interpolated lookup table over two
// axes. It backs both the yield tables (chi x gamma -> rate) and the
// inverse-CDF tables (chi_parent x u -> chi_child, or chi_photon x u ->
// electron energy fraction). Values outside the axis bounds are clamped to
// the nearest edge, per spec.md's table-out-of-range handling.
type table2D struct {
	x, y axis
	z    [][]float64 // z[i][j] at (x.vals[i], y.vals[j])
}

func newTable2D(x, y axis, z [][]float64) *table2D {
	return &table2D{x: x, y: y, z: z}
}

// at returns the bilinearly-interpolated value at (xv, yv) and whether
// either coordinate had to be clamped to the table's domain to compute it.
func (t *table2D) at(xv, yv float64) (value float64, outOfRange bool) {
	xlo, xhi, tx, xOut := t.x.bracket(xv)
	ylo, yhi, ty, yOut := t.y.bracket(yv)

	z00 := t.z[xlo][ylo]
	z01 := t.z[xlo][yhi]
	z10 := t.z[xhi][ylo]
	z11 := t.z[xhi][yhi]

	z0 := z00 + (z01-z00)*ty
	z1 := z10 + (z11-z10)*ty
	return z0 + (z1-z0)*tx, xOut || yOut
}

// QEDTables holds the four immutable lookup tables spec.md §3/§4.2
// describes: the lepton photon-production yield, the photon pair-
// production yield, and the two inverse-CDF tables used for inverse-
// transform sampling of emitted quanta. Once built or loaded, a
// QEDTables is read-only and safe for concurrent use by every worker.
type QEDTables struct {
	chiMin, chiMax float64

	minChiContinuous    float64
	minChiDiscontinuous float64
	chiThresholdPhoton  float64

	radiationYield  *table2D // (chi, gamma) -> dN/dt
	pairYield       *table2D // (chi_gamma, gamma_gamma) -> dN_pair/dt
	emissionInvCDF  *table2D // (chi_parent, u) -> chi_child
	pairSplitInvCDF *table2D // (chi_photon, u) -> x_electron
}

// MinimumChiContinuous returns the chi threshold above which classical
// radiation-reaction damping (continuous regime) applies.
func (t *QEDTables) MinimumChiContinuous() float64 { return t.minChiContinuous }

// MinimumChiDiscontinuous returns the chi threshold above which discrete
// stochastic photon emission (discontinuous regime) applies.
func (t *QEDTables) MinimumChiDiscontinuous() float64 { return t.minChiDiscontinuous }

// ChiThresholdPhoton returns the photon chi_gamma threshold below which no
// Breit-Wheeler pair-production event is considered.
func (t *QEDTables) ChiThresholdPhoton() float64 { return t.chiThresholdPhoton }

// ChiBounds returns the table's [chi_min, chi_max] domain; callers that
// need to clamp chi before logging an out-of-range condition use this.
func (t *QEDTables) ChiBounds() (min, max float64) { return t.chiMin, t.chiMax }

// PhotonProductionYield returns the instantaneous photon emission rate
// dN/dt for a lepton at quantum parameter chi and Lorentz factor gamma,
// via bilinear interpolation clamped to the table's endpoints. Tables from
// BuildQEDTables interpolate in log(chi) and log(gamma); tables from
// LoadQEDTables interpolate in log(chi) and linearly in gamma.
// clamped reports whether (chi, gamma) fell outside the table's domain
// (spec.md §7's table-out-of-range condition).
func (t *QEDTables) PhotonProductionYield(chi, gamma float64) (yield float64, clamped bool) {
	return t.radiationYield.at(chi, gamma)
}

// PairProductionYield returns the instantaneous pair-production rate
// dN_pair/dt for a photon at quantum parameter chi_gamma and photon
// Lorentz factor gamma_gamma, clamped to the table's endpoints. clamped
// reports whether (chiGamma, gammaGamma) fell outside the table's domain.
func (t *QEDTables) PairProductionYield(chiGamma, gammaGamma float64) (yield float64, clamped bool) {
	return t.pairYield.at(chiGamma, gammaGamma)
}

// SampleEmittedChi draws the emitted photon's quantum parameter chi_child
// given the parent's chi_parent and a uniform variate u in (0,1), via
// inverse-transform lookup. Monotone non-decreasing in u for fixed
// chi_parent because each table row is built non-decreasing in u and
// bilinear interpolation between two non-decreasing rows is itself
// non-decreasing in the interpolation parameter. clamped reports whether
// (chiParent, u) fell outside the table's domain.
//
// Guards against a pathological table returning chi_child >= chi_parent:
// the emitted quantum can never carry more energy than its parent carries
// as chi, so the result is clamped to chi_parent.
func (t *QEDTables) SampleEmittedChi(chiParent, u float64) (chiChild float64, clamped bool) {
	chiChild, clamped = t.emissionInvCDF.at(chiParent, u)
	if chiChild > chiParent {
		chiChild = chiParent
	}
	if chiChild < 0 {
		chiChild = 0
	}
	return chiChild, clamped
}

// SamplePairSplitFraction draws the electron energy fraction x_electron
// (and derived x_positron = 1 - x_electron) for a Breit-Wheeler event at
// photon quantum parameter chiPhoton and uniform variate u in (0,1). The
// table is constructed so x_electron + x_positron = 1 by construction.
// clamped reports whether (chiPhoton, u) fell outside the table's domain.
func (t *QEDTables) SamplePairSplitFraction(chiPhoton, u float64) (xElectron, xPositron float64, clamped bool) {
	xe, clamped := t.pairSplitInvCDF.at(chiPhoton, u)
	if xe < 0 {
		xe = 0
	}
	if xe > 1 {
		xe = 1
	}
	return xe, 1 - xe, clamped
}

// fineStructureConstant is alpha, used by the Ridgers quantum-corrected
// classical radiated-power formula.
const fineStructureConstant = 1.0 / 137.035999084

// ridgersG evaluates the Ridgers (2014) quantum correction factor g(chi)
// applied to the classical (Landau-Lifshitz) radiated power to recover
// the correct quantum yield in both the weak- and strong-field limits.
func ridgersG(chi float64) float64 {
	if chi <= 0 {
		return 1
	}
	inner := 1 + 4.8*(1+chi)*math.Log1p(1.7*chi) + 2.44*chi*chi
	return math.Pow(inner, -2.0/3.0)
}

// ridgersCorrectedRadiatedEnergy is the closed-form continuous-radiation
// energy radiated over a sub-step dt at quantum parameter chi, using the
// classical synchrotron power (2/3) * alpha * chi^2 corrected by Ridgers'
// g(chi). It reads no table data, so both the table-backed Monte-Carlo
// regime switch and the table-free continuous-LL model can call it.
func ridgersCorrectedRadiatedEnergy(chi, dt float64) float64 {
	classicalPower := (2.0 / 3.0) * fineStructureConstant * chi * chi
	return classicalPower * ridgersG(chi) * dt
}

// RidgersCorrectedRadiatedEnergy is the QEDTables-bound entry point to
// ridgersCorrectedRadiatedEnergy, consumed by the continuous regime
// inside MCRadiation's Monte-Carlo loop.
func (t *QEDTables) RidgersCorrectedRadiatedEnergy(chi, dt float64) float64 {
	return ridgersCorrectedRadiatedEnergy(chi, dt)
}
