package qed

// CompactBins removes decayed photons (weight <= 0) from pb in place,
// one bin at a time, preserving the relative order of survivors within
// each bin and updating the bin boundary arrays bmin/bmax to reflect the
// new counts (spec.md §4.5). bmin/bmax are half-open [bmin[b], bmax[b])
// index ranges into pb, contiguous and non-overlapping across bins, in
// increasing order — the patch-local binning domain the field
// interpolation cache depends on.
//
// Recovered from original_source/MultiphotonBreitWheeler.h's
// removeDecayedPhotons(particles, smpi, ibin, nbin, bmin, bmax, ithread)
// signature (SPEC_FULL.md §4.5): compaction is bin-scoped so a
// parallel-by-bin compaction pass remains possible even though this
// implementation runs it single-threaded.
func CompactBins(pb *ParticleBlock, bmin, bmax []int) {
	write := 0
	for b := range bmin {
		start, end := bmin[b], bmax[b]
		binWrite := write
		for read := start; read < end; read++ {
			if pb.Weight[read] <= 0 {
				continue
			}
			if write != read {
				copyParticle(pb, write, read)
			}
			write++
		}
		bmin[b] = binWrite
		bmax[b] = write
	}
	truncateParticleBlock(pb, write)
}

func copyParticle(pb *ParticleBlock, dst, src int) {
	for d := 0; d < pb.Dim; d++ {
		pb.Pos[d][dst] = pb.Pos[d][src]
	}
	for d := 0; d < 3; d++ {
		pb.Mom[d][dst] = pb.Mom[d][src]
	}
	pb.Charge[dst] = pb.Charge[src]
	pb.Weight[dst] = pb.Weight[src]
	pb.Chi[dst] = pb.Chi[src]
	pb.Tau[dst] = pb.Tau[src]
}

func truncateParticleBlock(pb *ParticleBlock, n int) {
	for d := 0; d < pb.Dim; d++ {
		pb.Pos[d] = pb.Pos[d][:n]
	}
	for d := 0; d < 3; d++ {
		pb.Mom[d] = pb.Mom[d][:n]
	}
	pb.Charge = pb.Charge[:n]
	pb.Weight = pb.Weight[:n]
	pb.Chi = pb.Chi[:n]
	pb.Tau = pb.Tau[:n]
}
