// Package entropy seeds the game's deterministic rng stream. A session
// seeded explicitly replays identically; otherwise the seed comes from
// crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Seed returns a fresh seed from crypto/rand, falling back to the
// clock if the system source fails.
func Seed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

// Float returns a uniform float64 in [0, 1) from crypto/rand. Used
// outside the seeded stream where replay does not matter.
func Float() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0.5
	}
	// 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}
