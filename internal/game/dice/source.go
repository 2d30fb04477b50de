package dice

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

type cryptoSource struct{}

// NewCryptoSource returns the production Source, backed by crypto/rand.
func NewCryptoSource() Source {
	return cryptoSource{}
}

// Intn panics if n <= 0 or the system entropy source fails.
func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("dice: Intn(%d)", n))
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("dice: reading crypto/rand: %v", err))
	}
	return int(v.Int64())
}

// SeededSource is a reproducible PCG stream. Two sources with the same seed
// yield the same sequence.
type SeededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a SeededSource for seed.
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Intn panics if n <= 0.
func (s *SeededSource) Intn(n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("dice: Intn(%d)", n))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// ScriptedSource replays a fixed list of 1-based die faces, one per Intn
// call, so tests can force exact roll sequences.
type ScriptedSource struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewScriptedSource returns a ScriptedSource that yields faces in order.
// Intn(n) returns face-1.
func NewScriptedSource(faces ...int) *ScriptedSource {
	return &ScriptedSource{faces: append([]int(nil), faces...)}
}

// Intn returns the next face minus one.
//
// Precondition: a face remains and 1 <= face <= n. Panics otherwise.
func (s *ScriptedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.faces) {
		panic(fmt.Sprintf("dice: scripted source exhausted after %d rolls", len(s.faces)))
	}
	face := s.faces[s.next]
	if face < 1 || face > n {
		panic(fmt.Sprintf("dice: scripted face %d out of range [1,%d]", face, n))
	}
	s.next++
	return face - 1
}

// Remaining reports how many faces have not been consumed.
func (s *ScriptedSource) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.faces) - s.next
}
