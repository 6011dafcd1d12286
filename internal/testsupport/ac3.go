package testsupport

import "math/rand/v2"

// DefaultHeader is a valid AC3 header: frame size 200, sample-rate code 0, bsid 8.
var DefaultHeader = []byte{0x0B, 0x77, 0x00, 0xC8, 0x10, 0x40}

// AC3Builder assembles synthetic container buffers. Noise never contains the
// byte 0x0B, so the only sync words in a built buffer are the ones placed
// explicitly.
type AC3Builder struct {
	buf []byte
	rng *rand.Rand
}

// NewAC3Builder returns a builder whose noise is reproducible for seed.
func NewAC3Builder(seed uint64) *AC3Builder {
	return &AC3Builder{rng: rand.New(rand.NewPCG(seed, seed^0x5bd1e995))}
}

// Zeros appends n zero bytes.
func (b *AC3Builder) Zeros(n int) *AC3Builder {
	b.buf = append(b.buf, make([]byte, n)...)
	return b
}

// Noise appends n pseudo-random bytes without any sync word.
func (b *AC3Builder) Noise(n int) *AC3Builder {
	for range n {
		v := byte(b.rng.IntN(255))
		if v >= 0x0B {
			v++
		}
		b.buf = append(b.buf, v)
	}
	return b
}

// Header appends a six-byte AC3 header with the given fields.
func (b *AC3Builder) Header(frameSize int, sampleRate, bsid byte) *AC3Builder {
	b.buf = append(b.buf,
		0x0B, 0x77,
		byte(frameSize>>8)&0x3F, byte(frameSize),
		sampleRate<<6|0x10,
		bsid<<3,
	)
	return b
}

// ValidHeader appends DefaultHeader.
func (b *AC3Builder) ValidHeader() *AC3Builder {
	return b.Bytes(DefaultHeader...)
}

// Bytes appends raw bytes.
func (b *AC3Builder) Bytes(p ...byte) *AC3Builder {
	b.buf = append(b.buf, p...)
	return b
}

// PadTo appends zeros until the buffer is n bytes long.
func (b *AC3Builder) PadTo(n int) *AC3Builder {
	if n > len(b.buf) {
		b.Zeros(n - len(b.buf))
	}
	return b
}

// Len returns the current buffer length.
func (b *AC3Builder) Len() int {
	return len(b.buf)
}

// Build returns the assembled buffer.
func (b *AC3Builder) Build() []byte {
	return b.buf
}
