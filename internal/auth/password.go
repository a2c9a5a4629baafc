package auth

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultBcryptCost resists brute force at roughly a quarter second per hash.
const DefaultBcryptCost = 12

// Hasher hashes and verifies passwords with bcrypt. Concurrent hashing is bounded so a
// burst of logins cannot starve the rest of the server of CPU.
type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewHasher builds a hasher. concurrency <= 0 means one slot per CPU.
func NewHasher(cost, concurrency int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Hasher{cost: cost, sem: semaphore.NewWeighted(int64(concurrency))}
}

// Hash returns the salted bcrypt hash of plain.
func (h *Hasher) Hash(ctx context.Context, plain string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plain matches hashed. A mismatch is (false, nil); an error is
// returned only when the hash is unusable or ctx ended while waiting for a slot.
func (h *Hasher) Verify(ctx context.Context, plain, hashed string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
