// Package seed imports development data from JSON exports into the store.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/tour-service/internal/auth"
	"github.com/spec-kit/tour-service/internal/domain"
	"github.com/spec-kit/tour-service/internal/repository"
)

// Tables lists every table Purge empties, children first.
var Tables = []string{"bookings", "reviews", "tours", "users"}

// TourRecord is one entry of a tours export.
type TourRecord struct {
	Name          string      `json:"name"`
	Duration      int         `json:"duration"`
	MaxGroupSize  int         `json:"maxGroupSize"`
	Difficulty    string      `json:"difficulty"`
	Price         float64     `json:"price"`
	PriceDiscount *float64    `json:"priceDiscount"`
	Summary       string      `json:"summary"`
	Description   string      `json:"description"`
	ImageCover    string      `json:"imageCover"`
	Images        []string    `json:"images"`
	StartDates    []time.Time `json:"startDates"`
	SecretTour    bool        `json:"secretTour"`
}

// UserRecord is one entry of a users export. Password may already be a bcrypt hash, in
// which case it is stored unchanged.
type UserRecord struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Photo    string `json:"photo"`
	Password string `json:"password"`
	Active   *bool  `json:"active"`
}

// Execer runs a statement without returning rows.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Importer writes records through the repositories.
type Importer struct {
	users  repository.UserRepository
	tours  repository.TourRepository
	hasher *auth.Hasher
	logger *zap.Logger
}

// NewImporter constructs an importer.
func NewImporter(users repository.UserRepository, tours repository.TourRepository, hasher *auth.Hasher, logger *zap.Logger) *Importer {
	return &Importer{users: users, tours: tours, hasher: hasher, logger: logger}
}

// ImportTours reads a JSON array of tours and creates each one.
func (im *Importer) ImportTours(ctx context.Context, r io.Reader) (int, error) {
	var records []TourRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, fmt.Errorf("decode tours: %w", err)
	}
	for i, rec := range records {
		tour := &domain.Tour{
			Name:          strings.TrimSpace(rec.Name),
			Slug:          slug.Make(rec.Name),
			Duration:      rec.Duration,
			MaxGroupSize:  rec.MaxGroupSize,
			Difficulty:    domain.Difficulty(rec.Difficulty),
			Price:         rec.Price,
			PriceDiscount: rec.PriceDiscount,
			Summary:       strings.TrimSpace(rec.Summary),
			Description:   strings.TrimSpace(rec.Description),
			ImageCover:    rec.ImageCover,
			Images:        rec.Images,
			StartDates:    rec.StartDates,
			SecretTour:    rec.SecretTour,
		}
		if err := im.tours.Create(ctx, tour); err != nil {
			return i, fmt.Errorf("tour %q: %w", rec.Name, err)
		}
	}
	im.logger.Info("tours imported", zap.Int("count", len(records)))
	return len(records), nil
}

// ImportUsers reads a JSON array of users and creates each one.
func (im *Importer) ImportUsers(ctx context.Context, r io.Reader) (int, error) {
	var records []UserRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return 0, fmt.Errorf("decode users: %w", err)
	}
	for i, rec := range records {
		role := domain.Role(rec.Role)
		if rec.Role == "" {
			role = domain.RoleUser
		}
		if !role.Valid() {
			return i, fmt.Errorf("user %q: invalid role %q", rec.Email, rec.Role)
		}
		hash, err := im.passwordHash(ctx, rec.Password)
		if err != nil {
			return i, fmt.Errorf("user %q: %w", rec.Email, err)
		}

		user := &domain.User{
			Name:         strings.TrimSpace(rec.Name),
			Email:        strings.ToLower(strings.TrimSpace(rec.Email)),
			Role:         role,
			Photo:        rec.Photo,
			PasswordHash: hash,
		}
		if err := im.users.Create(ctx, user); err != nil {
			return i, fmt.Errorf("user %q: %w", rec.Email, err)
		}
		if rec.Active != nil && !*rec.Active {
			user.Active = false
			if err := im.users.Update(ctx, user); err != nil {
				return i, fmt.Errorf("user %q: %w", rec.Email, err)
			}
		}
	}
	im.logger.Info("users imported", zap.Int("count", len(records)))
	return len(records), nil
}

func (im *Importer) passwordHash(ctx context.Context, password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("missing password")
	}
	if _, err := bcrypt.Cost([]byte(password)); err == nil {
		return password, nil
	}
	return im.hasher.Hash(ctx, password)
}

// Purge empties every seeded table.
func Purge(ctx context.Context, db Execer) error {
	_, err := db.Exec(ctx, "TRUNCATE "+strings.Join(Tables, ", ")+" CASCADE")
	return err
}
