// Package rng implements the RNG port with name-scoped deterministic
// streams: the caller's seed is mixed with the operation name so distinct
// operations under one seed do not share a sequence.
package rng

import (
	"hash/fnv"
	"math/rand"

	"infoworth/ports"
)

// SeededAdapter hands out deterministic streams keyed by operation name.
type SeededAdapter struct{}

// NewSeededAdapter creates the adapter.
func NewSeededAdapter() *SeededAdapter {
	return &SeededAdapter{}
}

// SeededStream mixes the name into the seed via FNV-1a and returns a fresh
// generator.
func (a *SeededAdapter) SeededStream(name string, seed int64) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	mixed := seed ^ int64(h.Sum64())
	return rand.New(rand.NewSource(mixed))
}

var _ ports.RNGPort = (*SeededAdapter)(nil)
