package randengine

import "encoding/binary"

// isaacEngine is a 32-bit ISAAC-style generator: generate follows ISAAC's
// result loop, but the seeding mix differs from Bob Jenkins' reference and
// the counter c is never incremented or added into b, so its output does
// not match reference ISAAC. Uint64 packs two consecutive 32-bit outputs.
type isaacEngine struct {
	mem          [256]uint32
	a, b, c      uint32
	result       [256]uint32
	resultCursor int
}

func newISAAC(seed [32]byte) *isaacEngine {
	e := &isaacEngine{}
	var seedWords [256]uint32
	for i := 0; i < 8; i++ {
		seedWords[i] = binary.LittleEndian.Uint32(seed[i*4 : i*4+4])
	}
	e.init(seedWords)
	return e
}

func (e *isaacEngine) init(seed [256]uint32) {
	var a, b, c, d, f, g, h uint32 = 0x9e3779b9, 0x9e3779b9, 0x9e3779b9, 0x9e3779b9, 0x9e3779b9, 0x9e3779b9, 0x9e3779b9, 0x9e3779b9
	mix := func() {
		a ^= b << 11
		d += a
		b += c
		b ^= c >> 2
		c += d
		c ^= a << 8
		d += a
		d += b
		d ^= b >> 16
		a += c
		a += d
		f += g
		g ^= h >> 10
		h += f
		f ^= g << 9
		g += h
		h ^= f >> 11
		f += g
	}
	for i := 0; i < 4; i++ {
		mix()
	}
	for i := 0; i < 256; i += 8 {
		a += seed[i]
		b += seed[i+1]
		c += seed[i+2]
		d += seed[i+3]
		f += seed[i+4]
		g += seed[i+5]
		h += seed[i+6]
		mix()
		e.mem[i] = a
		e.mem[i+1] = b
		e.mem[i+2] = c
		e.mem[i+3] = d
		e.mem[i+4] = f
		e.mem[i+5] = g
		e.mem[i+6] = h
		e.mem[i+7] = seed[i+7]
	}
	for i := 0; i < 256; i += 8 {
		a += e.mem[i]
		b += e.mem[i+1]
		c += e.mem[i+2]
		d += e.mem[i+3]
		f += e.mem[i+4]
		g += e.mem[i+5]
		h += e.mem[i+6]
		mix()
		e.mem[i] = a
		e.mem[i+1] = b
		e.mem[i+2] = c
		e.mem[i+3] = d
		e.mem[i+4] = f
		e.mem[i+5] = g
		e.mem[i+6] = h
		e.mem[i+7] += h
	}
	e.generate()
}

func (e *isaacEngine) generate() {
	for i := 0; i < 256; i++ {
		x := e.mem[i]
		switch i % 4 {
		case 0:
			e.a ^= e.a << 13
		case 1:
			e.a ^= e.a >> 6
		case 2:
			e.a ^= e.a << 2
		case 3:
			e.a ^= e.a >> 16
		}
		e.a += e.mem[(i+128)%256]
		y := e.mem[(x>>2)%256] + e.a + e.b
		e.mem[i] = y
		e.b = e.mem[(y>>10)%256] + x
		e.result[i] = e.b
	}
	e.resultCursor = 0
}

func (e *isaacEngine) next32() uint32 {
	if e.resultCursor >= 256 {
		e.generate()
	}
	v := e.result[e.resultCursor]
	e.resultCursor++
	return v
}

func (e *isaacEngine) Uint64() uint64 {
	hi := uint64(e.next32())
	lo := uint64(e.next32())
	return hi<<32 | lo
}
