package philox

import "math/bits"

const (
	m0 = 0xD2511F53
	m1 = 0xCD9E8D57
	w0 = 0x9E3779B9
	w1 = 0xBB67AE85

	rounds = 10
)

// Block computes one Philox4x32-10 block for the given counter and key.
func Block(ctr [4]uint32, key [2]uint32) [4]uint32 {
	for i := 0; i < rounds; i++ {
		if i > 0 {
			key[0] += w0
			key[1] += w1
		}
		hi0, lo0 := bits.Mul32(m0, ctr[0])
		hi1, lo1 := bits.Mul32(m1, ctr[2])
		ctr = [4]uint32{hi1 ^ ctr[1] ^ key[0], lo1, hi0 ^ ctr[3] ^ key[1], lo0}
	}
	return ctr
}

func keyOf(seed uint64) [2]uint32 {
	return [2]uint32{uint32(seed), uint32(seed >> 32)}
}

func counterOf(stream, block uint64) [4]uint32 {
	return [4]uint32{uint32(block), uint32(block >> 32), uint32(stream), uint32(stream >> 32)}
}

// Uint32At returns the index-th 32-bit output of stream under seed.
// It is equal to the index-th call of Next on New(seed, stream).
func Uint32At(seed, stream, index uint64) uint32 {
	out := Block(counterOf(stream, index/4), keyOf(seed))
	return out[index%4]
}

// Generator draws sequential outputs from one (seed, stream) pair.
// A Generator is not safe for concurrent use; give each worker its own.
type Generator struct {
	key    [2]uint32
	stream uint64
	block  uint64
	buf    [4]uint32
	pos    int
}

// New returns a generator positioned at the first output of stream.
func New(seed, stream uint64) *Generator {
	g := &Generator{}
	g.Reset(seed, stream)
	return g
}

// Reset repositions g at the first output of (seed, stream) without allocating.
func (g *Generator) Reset(seed, stream uint64) {
	g.key = keyOf(seed)
	g.stream = stream
	g.block = 0
	g.pos = 4
}

// Next returns the next 32-bit output.
func (g *Generator) Next() uint32 {
	if g.pos == 4 {
		g.buf = Block(counterOf(g.stream, g.block), g.key)
		g.block++
		g.pos = 0
	}
	v := g.buf[g.pos]
	g.pos++
	return v
}

// Intn returns a value in [0, n) by reducing the next output modulo n.
// The modulo bias is accepted; n must be positive.
func (g *Generator) Intn(n int) int {
	return int(uint64(g.Next()) % uint64(n))
}
