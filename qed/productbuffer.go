package qed

// ProductBuffer is a thread-local, append-only staging area for newly
// created macro-particles (macro-photons from radiation, lepton pairs
// from Breit-Wheeler). It grows in amortized O(1) by geometric doubling
// and is never shared between workers, so reallocation during append is
// safe without synchronization (spec.md §4.5, §5).
type ProductBuffer struct {
	pos    [3][]float64
	dim    int
	mom    [3][]float64
	charge []int8
	weight []float64
	chi    []float64
	tau    []float64
}

// NewProductBuffer creates an empty buffer for particles with dim
// position dimensions, pre-sized to reduce early reallocations.
func NewProductBuffer(dim int, capacityHint int) *ProductBuffer {
	pb := &ProductBuffer{dim: dim}
	for d := 0; d < 3; d++ {
		pb.pos[d] = make([]float64, 0, capacityHint)
		pb.mom[d] = make([]float64, 0, capacityHint)
	}
	pb.charge = make([]int8, 0, capacityHint)
	pb.weight = make([]float64, 0, capacityHint)
	pb.chi = make([]float64, 0, capacityHint)
	pb.tau = make([]float64, 0, capacityHint)
	return pb
}

// Len returns the number of staged particles.
func (pb *ProductBuffer) Len() int {
	return len(pb.weight)
}

// Append stages one new macro-particle. pos must have pb.dim valid
// entries; the remaining slots are ignored.
func (pb *ProductBuffer) Append(pos [3]float64, mom [3]float64, charge int8, weight, chi, tau float64) {
	for d := 0; d < 3; d++ {
		pb.pos[d] = append(pb.pos[d], pos[d])
		pb.mom[d] = append(pb.mom[d], mom[d])
	}
	pb.charge = append(pb.charge, charge)
	pb.weight = append(pb.weight, weight)
	pb.chi = append(pb.chi, chi)
	pb.tau = append(pb.tau, tau)
}

// FlushInto appends every staged particle onto the receiving species'
// ParticleBlock (the single-threaded post-step splice-back of spec.md
// §4.5) and resets the buffer to empty so it can be reused next step.
func (pb *ProductBuffer) FlushInto(dst *ParticleBlock) {
	for d := 0; d < dst.Dim; d++ {
		dst.Pos[d] = append(dst.Pos[d], pb.pos[d]...)
	}
	for d := 0; d < 3; d++ {
		dst.Mom[d] = append(dst.Mom[d], pb.mom[d]...)
	}
	dst.Charge = append(dst.Charge, pb.charge...)
	dst.Weight = append(dst.Weight, pb.weight...)
	dst.Chi = append(dst.Chi, pb.chi...)
	dst.Tau = append(dst.Tau, pb.tau...)
	pb.reset()
}

func (pb *ProductBuffer) reset() {
	for d := 0; d < 3; d++ {
		pb.pos[d] = pb.pos[d][:0]
		pb.mom[d] = pb.mom[d][:0]
	}
	pb.charge = pb.charge[:0]
	pb.weight = pb.weight[:0]
	pb.chi = pb.chi[:0]
	pb.tau = pb.tau[:0]
}

// FlushBuffers concatenates N thread-local buffers into dst in order,
// the end-of-stage reduction spec.md §5 assigns to "the host" — here
// performed by the single-threaded post-stage pass in package stage.
func FlushBuffers(buffers []*ProductBuffer, dst *ParticleBlock) {
	for _, pb := range buffers {
		if pb.Len() == 0 {
			continue
		}
		pb.FlushInto(dst)
	}
}
