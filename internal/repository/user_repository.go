package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tour-service/internal/domain"
	"github.com/spec-kit/tour-service/internal/query"
)

// UserSchema is the listable surface of users. Credentials never appear here.
var UserSchema = query.NewSchema("users", []query.Field{
	{Name: "id", Column: "id", Kind: query.KindUUID},
	{Name: "name", Column: "name", Kind: query.KindText},
	{Name: "email", Column: "email", Kind: query.KindText},
	{Name: "photo", Column: "photo", Kind: query.KindText},
	{Name: "role", Column: "role", Kind: query.KindText},
	{Name: "createdAt", Column: "created_at", Kind: query.KindTime},
	{Name: "__v", Column: "version", Kind: query.KindInt},
}).WithBase("active = TRUE").WithBookkeeping("__v")

// UserRepository defines persistence access for accounts. Inactive accounts are invisible
// to every lookup.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIDWithPassword(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error)
	GetByResetToken(ctx context.Context, hashed string, now time.Time) (*domain.User, error)
	List(ctx context.Context, q query.Query) ([]Document, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, photo, role, password_changed_at, password_reset_token,
        password_reset_expires, active, version, created_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, photo, role, password_hash, password_changed_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, active, version, created_at`

	user.Email = strings.ToLower(user.Email)
	if user.Photo == "" {
		user.Photo = domain.DefaultPhoto
	}
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Photo,
		string(user.Role),
		user.PasswordHash,
		user.PasswordChangedAt,
	).Scan(&user.ID, &user.Active, &user.Version, &user.CreatedAt)
}

// Update writes every mutable field. An empty PasswordHash leaves the stored hash as is.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, photo=$3, role=$4,
            password_hash=COALESCE(NULLIF($5, ''), password_hash),
            password_changed_at=$6, password_reset_token=$7, password_reset_expires=$8,
            active=$9, version=version+1
        WHERE id=$10
        RETURNING version`

	user.Email = strings.ToLower(user.Email)
	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Photo,
		string(user.Role),
		user.PasswordHash,
		user.PasswordChangedAt,
		user.PasswordResetToken,
		user.PasswordResetExpires,
		user.Active,
		user.ID,
	).Scan(&user.Version)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, false, "id=$1", id)
}

func (r *userRepository) GetByIDWithPassword(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, true, "id=$1", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, false, "email=$1", strings.ToLower(email))
}

func (r *userRepository) GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, true, "email=$1", strings.ToLower(email))
}

func (r *userRepository) GetByResetToken(ctx context.Context, hashed string, now time.Time) (*domain.User, error) {
	return r.fetchSingle(ctx, false, "password_reset_token=$1 AND password_reset_expires > $2", hashed, now)
}

func (r *userRepository) List(ctx context.Context, q query.Query) ([]Document, error) {
	return listDocuments(ctx, r.pool, UserSchema, q)
}

func (r *userRepository) fetchSingle(ctx context.Context, withPassword bool, where string, args ...any) (*domain.User, error) {
	cols := userColumns
	if withPassword {
		cols += ", password_hash"
	}
	query := "SELECT " + cols + " FROM users WHERE active = TRUE AND " + where

	var (
		user domain.User
		role string
	)
	dest := []any{
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Photo,
		&role,
		&user.PasswordChangedAt,
		&user.PasswordResetToken,
		&user.PasswordResetExpires,
		&user.Active,
		&user.Version,
		&user.CreatedAt,
	}
	if withPassword {
		dest = append(dest, &user.PasswordHash)
	}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(dest...); err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	return &user, nil
}
