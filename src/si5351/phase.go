package si5351

// Phase selects the CLK1 phase relative to CLK0 on VFO 0.
type Phase uint8

const (
	Phase0 Phase = iota
	Phase90
	Phase180
	Phase270
)

// phaseRegisters maps a quadrature selector onto the CLK1 phase-offset
// register value and the output-invert flag. The offset register counts
// quarter VCO cycles, so one full divider value is exactly 90° of the
// output period; inversion supplies the 180° the offset register cannot,
// and the two combine to cover all four quadrants.
func phaseRegisters(p Phase, div uint8) (offset uint8, invert bool) {
	if p == Phase90 || p == Phase270 {
		offset = div
	}
	return offset, p == Phase180 || p == Phase270
}
