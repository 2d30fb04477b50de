// Package dice provides the randomness used by combat resolution and roster
// generation. Every consumer takes a Roller, so tests can swap in a
// ScriptedSource and replays a SeededSource.
package dice

// DefaultSides is the face count of the standard combat die.
const DefaultSides = 6

// Source yields raw random integers.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns an int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
