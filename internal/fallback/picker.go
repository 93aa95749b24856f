package fallback

import (
	"math/rand/v2"

	"github.com/fairyhunter13/prepio-api/internal/domain"
)

// RandPicker picks uniformly with the runtime's auto-seeded generator.
type RandPicker struct{}

// Intn implements domain.Picker.
func (RandPicker) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// ChallengeID returns a short random base36 id for a generated challenge.
func ChallengeID(p domain.Picker) string {
	b := make([]byte, 7)
	for i := range b {
		b[i] = base36[p.Intn(len(base36))]
	}
	return string(b)
}
