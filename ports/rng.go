package ports

import "math/rand"

// RNGPort provides seeded random number generation so Monte Carlo runs are
// reproducible: the same name and seed always yield the same stream.
type RNGPort interface {
	// SeededStream creates a deterministic generator for a named operation.
	SeededStream(name string, seed int64) *rand.Rand
}
