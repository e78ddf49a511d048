// Package random provides seed generation for the game's dice sources.
//
// Production rolls are seeded from crypto/rand so encounters are not
// predictable across process restarts; tests and local reproductions pass an
// explicit seed instead.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ResolveSeed returns configured when it is non-zero, otherwise a fresh
// crypto seed from generate. A nil generate falls back to NewSeed.
func ResolveSeed(configured int64, generate func() (int64, error)) (int64, error) {
	if configured != 0 {
		return configured, nil
	}
	if generate == nil {
		generate = NewSeed
	}
	seed, err := generate()
	if err != nil {
		return 0, fmt.Errorf("resolve seed: %w", err)
	}
	return seed, nil
}
