package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Shuffle performs a cryptographically secure shuffle of the slice.
func Shuffle[T any](slice []T) error {
	n := len(slice)
	for i := n - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to generate random number: %w", err)
		}
		j := int(jBig.Int64())
		slice[i], slice[j] = slice[j], slice[i]
	}
	return nil
}

// Sample draws n distinct elements from pool uniformly without replacement.
// It never returns more elements than pool holds and never mutates pool.
func Sample[T any](pool []T, n int) ([]T, error) {
	if n > len(pool) {
		n = len(pool)
	}
	if n <= 0 {
		return nil, nil
	}

	candidates := make([]T, len(pool))
	copy(candidates, pool)

	picked := make([]T, 0, n)
	for len(picked) < n {
		iBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(candidates))))
		if err != nil {
			return nil, fmt.Errorf("failed to generate random number: %w", err)
		}
		i := int(iBig.Int64())
		picked = append(picked, candidates[i])
		candidates = append(candidates[:i], candidates[i+1:]...)
	}
	return picked, nil
}
