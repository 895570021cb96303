// Package qed implements the QED radiation-reaction and pair-production
// core: the per-particle Monte-Carlo engine driving nonlinear inverse
// Compton scattering and multiphoton Breit-Wheeler pair creation.
package qed

import "math"

// EpsTau is the optical-depth sentinel below which a particle carries no
// in-progress discontinuous emission and must resample on next need.
const EpsTau = 1e-100

// ParticleBlock is a structure-of-arrays view over one species' particles,
// the layout the QED core reads and writes in place. Pos is read-only here.
type ParticleBlock struct {
	Pos    [3][]float64 // positions (only Dim entries populated)
	Dim    int          // number of position dimensions in use, 1..3
	Mom    [3][]float64 // three-momentum, normalized units (c = 1, m_e c = 1)
	Charge []int8       // signed charge number
	Weight []float64    // macro-particle weight; weight <= 0 marks a decayed photon
	Chi    []float64    // last-computed quantum parameter (diagnostic)
	Tau    []float64    // remaining optical depth; <= EpsTau means idle
}

// Len returns the number of particles in the block.
func (pb *ParticleBlock) Len() int {
	return len(pb.Weight)
}

// Gamma returns the relativistic Lorentz factor of particle i from its
// momentum. For a lepton this is sqrt(1+|p|^2); callers treat a photon's
// analogous quantity (|k|) separately via PhotonGamma.
func (pb *ParticleBlock) Gamma(i int) float64 {
	px, py, pz := pb.Mom[0][i], pb.Mom[1][i], pb.Mom[2][i]
	return math.Sqrt(1.0 + px*px + py*py + pz*pz)
}

// PhotonGamma returns |k|, the photon "Lorentz factor" used throughout the
// Breit-Wheeler core: the photon three-momentum norm.
func (pb *ParticleBlock) PhotonGamma(i int) float64 {
	kx, ky, kz := pb.Mom[0][i], pb.Mom[1][i], pb.Mom[2][i]
	return math.Sqrt(kx*kx + ky*ky + kz*kz)
}

// FieldView wraps the interpolated field-sample arrays delivered by the
// host PIC engine for one thread's particle range, preserving the
// i - ipartRef offset convention: field values for a particle are not
// indexed by its absolute position in the species array but by its offset
// relative to the range the arrays were built for.
//
// Layout: Ex is E[0*N : 1*N], Ey is E[1*N : 2*N], Ez is E[2*N : 3*N], and
// likewise for B, where N = len(E)/3.
type FieldView struct {
	E        []float64
	B        []float64
	IpartRef int
}

// At returns (Ex, Ey, Ez, Bx, By, Bz) for absolute particle index i.
func (fv *FieldView) At(i int) (ex, ey, ez, bx, by, bz float64) {
	n := len(fv.E) / 3
	j := i - fv.IpartRef
	return fv.E[j], fv.E[n+j], fv.E[2*n+j], fv.B[j], fv.B[n+j], fv.B[2*n+j]
}

// Slice extracts the sub-view covering absolute indices [start, end) as
// its own compact FieldView with IpartRef = start, the "explicit view
// that maps absolute to relative indices" spec.md §9 allows as an
// alternative to every worker sharing one patch-wide array under the raw
// offset convention. Used by package stage to hand each worker a
// self-contained field buffer for its assigned particle range.
func (fv *FieldView) Slice(start, end int) *FieldView {
	n := len(fv.E) / 3
	size := end - start
	e := make([]float64, 3*size)
	b := make([]float64, 3*size)
	for d := 0; d < 3; d++ {
		copy(e[d*size:(d+1)*size], fv.E[d*n+start:d*n+end])
		copy(b[d*size:(d+1)*size], fv.B[d*n+start:d*n+end])
	}
	return &FieldView{E: e, B: b, IpartRef: start}
}
