package randengine

import "encoding/binary"

// isaac64Engine is an ISAAC-64-style generator: generate follows
// ISAAC-64's result loop, but the seeding mix differs from Bob Jenkins'
// reference and the counter c is never incremented or added into b, so its
// output does not match reference ISAAC-64.
type isaac64Engine struct {
	mem          [256]uint64
	a, b, c      uint64
	result       [256]uint64
	resultCursor int
}

func newISAAC64(seed [32]byte) *isaac64Engine {
	e := &isaac64Engine{}
	var seedWords [256]uint64
	for i := 0; i < 4; i++ {
		seedWords[i] = binary.LittleEndian.Uint64(seed[i*8 : i*8+8])
	}
	e.init(seedWords)
	return e
}

func (e *isaac64Engine) init(seed [256]uint64) {
	var a, b, c, d, f, g, h uint64 = 0x9e3779b97f4a7c13, 0x9e3779b97f4a7c13, 0x9e3779b97f4a7c13, 0x9e3779b97f4a7c13,
		0x9e3779b97f4a7c13, 0x9e3779b97f4a7c13, 0x9e3779b97f4a7c13, 0x9e3779b97f4a7c13
	mix := func() {
		a -= f
		f ^= h >> 9
		h += a
		b -= g
		g ^= a << 9
		a += b
		c -= h
		h ^= b >> 23
		b += c
		d -= a
		a ^= c << 15
		c += d
		f -= b
		b ^= d >> 14
		d += f
		g -= c
		c ^= f << 20
		f += g
		h -= d
		d ^= g >> 17
		g += h
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

func (e *isaac64Engine) generate() {
	var x, y uint64
	for i := 0; i < 256; i++ {
		x = e.mem[i]
		switch i % 4 {
		case 0:
			e.a = ^(e.a ^ (e.a << 21)) + e.mem[(i+128)%256]
		case 1:
			e.a = (e.a ^ (e.a >> 5)) + e.mem[(i+128)%256]
		case 2:
			e.a = (e.a ^ (e.a << 12)) + e.mem[(i+128)%256]
		case 3:
			e.a = (e.a ^ (e.a >> 33)) + e.mem[(i+128)%256]
		}
		y = e.mem[(x>>3)%256] + e.a + e.b
		e.mem[i] = y
		e.b = e.mem[(y>>11)%256] + x
		e.result[i] = e.b
	}
	e.resultCursor = 0
}

func (e *isaac64Engine) Uint64() uint64 {
	if e.resultCursor >= 256 {
		e.generate()
	}
	v := e.result[e.resultCursor]
	e.resultCursor++
	return v
}
