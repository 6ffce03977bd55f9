package randengine

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

// chaChaEngine turns a ChaCha20 keystream into a sequence of uint64s,
// refilling an 8-word buffer whenever it runs dry.
type chaChaEngine struct {
	cipher *chacha20.Cipher
	buf    [64]byte // one ChaCha20 block
	zero   [64]byte
	pos    int
}

func newChaCha(seed [32]byte) (*chaChaEngine, error) {
	var nonce [chacha20.NonceSize]byte // fixed nonce: the key alone carries all the entropy
	c, err := chacha20.NewUnauthenticatedCipher(seed[:], nonce[:])
	if err != nil {
		return nil, err
	}
	e := &chaChaEngine{cipher: c}
	e.refill()
	return e, nil
}

func (e *chaChaEngine) refill() {
	e.cipher.XORKeyStream(e.buf[:], e.zero[:])
	e.pos = 0
}

func (e *chaChaEngine) Uint64() uint64 {
	if e.pos+8 > len(e.buf) {
		e.refill()
	}
	v := binary.LittleEndian.Uint64(e.buf[e.pos:])
	e.pos += 8
	return v
}
