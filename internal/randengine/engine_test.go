package randengine

import "testing"

func allEngineNames() []Name {
	return []Name{ChaCha, HC128, ISAAC, ISAAC64, XorShift, PCG32}
}

func TestEnginesAreDeterministic(t *testing.T) {
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i * 7)
	}
	for _, name := range allEngineNames() {
		name := name
		t.Run(string(name), func(t *testing.T) {
			a, err := New(name, seed)
			if err != nil {
				t.Fatalf("New(%s): %v", name, err)
			}
			b, err := New(name, seed)
			if err != nil {
				t.Fatalf("New(%s): %v", name, err)
			}
			for i := 0; i < 100; i++ {
				x, y := a.Uint64(), b.Uint64()
				if x != y {
					t.Fatalf("draw %d: engines seeded identically diverged: %d != %d", i, x, y)
				}
			}
		})
	}
}

func TestEnginesDifferByEngineAndSeed(t *testing.T) {
	var seedA, seedB [32]byte
	seedB[0] = 1
	for _, name := range allEngineNames() {
		name := name
		t.Run(string(name), func(t *testing.T) {
			a, err := New(name, seedA)
			if err != nil {
				t.Fatalf("New(%s): %v", name, err)
			}
			b, err := New(name, seedB)
			if err != nil {
				t.Fatalf("New(%s): %v", name, err)
			}
			same := true
			for i := 0; i < 20; i++ {
				if a.Uint64() != b.Uint64() {
					same = false
					break
				}
			}
			if same {
				t.Fatalf("%s: different seeds produced identical draws over 20 calls", name)
			}
		})
	}
}

func TestUnknownEngineNameErrors(t *testing.T) {
	var seed [32]byte
	if _, err := New(Name("bogus"), seed); err == nil {
		t.Fatalf("expected an error for an unknown engine name")
	}
}

func TestNewRandProducesValues(t *testing.T) {
	var seed [32]byte
	eng, err := New(ChaCha, seed)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := NewRand(eng)
	// Just exercise the adapter; no particular value is asserted since the
	// underlying algorithm is an implementation detail.
	_ = r.Intn(1000)
	_ = r.Float64()
}
