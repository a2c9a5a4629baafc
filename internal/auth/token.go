package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/tour-service/internal/domain"
)

// TokenManager handles issuing and validating JWT credentials.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager. A non-positive ttl falls back to one hour.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the manager reading time from now.
func (tm *TokenManager) WithClock(now func() time.Time) *TokenManager {
	cp := *tm
	cp.now = now
	return &cp
}

// Claims describes the JWT payload.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Issue builds and signs a credential for the subject.
func (tm *TokenManager) Issue(subjectID string) (domain.Credential, error) {
	if subjectID == "" {
		return domain.Credential{}, errors.New("empty subject")
	}
	issuedAt := tm.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(tm.ttl)
	claims := &Claims{
		UserID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return domain.Credential{}, err
	}
	return domain.Credential{
		Token:     tokenString,
		SubjectID: subjectID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Parse validates signature and expiry and returns the claims. Errors wrap the jwt
// sentinel errors (jwt.ErrTokenExpired, jwt.ErrTokenSignatureInvalid, ...).
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" || claims.IssuedAt == nil {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
