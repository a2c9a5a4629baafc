package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/spec-kit/tour-service/internal/domain"
)

const resetTokenBytes = 32

// HashResetToken returns the stored form of a plaintext reset token.
func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// CreatePasswordResetToken stores the hash of a fresh random token and its expiry on u
// and returns the plaintext for out-of-band delivery.
func CreatePasswordResetToken(u *domain.User, ttl time.Duration, now time.Time) (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	plain := hex.EncodeToString(buf)

	hashed := HashResetToken(plain)
	expires := now.Add(ttl)
	u.PasswordResetToken = &hashed
	u.PasswordResetExpires = &expires
	return plain, nil
}

// MarkPasswordChanged records a password change and voids outstanding reset tokens.
// The timestamp is backdated by skew so a credential minted in the same request is
// still newer than the change.
func MarkPasswordChanged(u *domain.User, hash string, now time.Time, skew time.Duration) {
	changedAt := now.Add(-skew)
	u.PasswordHash = hash
	u.PasswordChangedAt = &changedAt
	u.ClearPasswordReset()
}
