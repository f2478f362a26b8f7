package permutation

// Uniform draws uniform variates in [0, 1]
type Uniform interface {
	Float64() float64
}

// DefaultSeed seeds generators when none is configured
const DefaultSeed uint32 = 123456789

// MWC256 is Marsaglia's lag-256 multiply-with-carry generator.
// Not safe for concurrent use; give each worker its own.
type MWC256 struct {
	q     [256]uint32
	carry uint32
	i     uint8
}

// NewMWC256 seeds the lag table through a 69069 LCG
func NewMWC256(seed uint32) *MWC256 {
	g := &MWC256{carry: 362436, i: 255}
	j := seed
	for k := range g.q {
		j = 69069*j + 12345
		g.q[k] = j
	}
	return g
}

// Uint32 returns the next 32-bit output
func (g *MWC256) Uint32() uint32 {
	const a uint64 = 809430660

	g.i++
	t := a*uint64(g.q[g.i]) + uint64(g.carry)
	g.carry = uint32(t >> 32)
	g.q[g.i] = uint32(t)
	return g.q[g.i]
}

// Float64 maps the next output onto [0, 1]
func (g *MWC256) Float64() float64 {
	return float64(g.Uint32()) * (1.0 / 0xFFFFFFFF)
}
