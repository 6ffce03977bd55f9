package randengine

import "encoding/binary"

// pcg32Engine is PCG-XSH-RR-64/32, the classic 32-bit-output PCG variant,
// run twice per Uint64 call to fill both halves.
type pcg32Engine struct {
	state, inc uint64
}

const pcgMultiplier = 6364136223846793005

func newPCG32(seed [32]byte) *pcg32Engine {
	initState := binary.LittleEndian.Uint64(seed[0:8])
	initSeq := binary.LittleEndian.Uint64(seed[8:16])
	e := &pcg32Engine{inc: (initSeq << 1) | 1}
	e.state = 0
	e.step()
	e.state += initState
	e.step()
	return e
}

func (e *pcg32Engine) step() {
	e.state = e.state*pcgMultiplier + e.inc
}

func (e *pcg32Engine) next32() uint32 {
	old := e.state
	e.step()
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

func (e *pcg32Engine) Uint64() uint64 {
	hi := uint64(e.next32())
	lo := uint64(e.next32())
	return hi<<32 | lo
}
