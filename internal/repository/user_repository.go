package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moona-liza/natours/internal/domain"
)

// UserRepository defines persistence access for accounts. The security-field
// mutators touch only their own columns so that a password or reset-token
// update never re-validates or rewrites unrelated profile fields.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdatePassword stores a new credential hash and bumps
	// password_changed_at, invalidating previously issued session tokens.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// SetResetToken stores the reset-token digest and its expiry.
	SetResetToken(ctx context.Context, id, tokenDigest string, expiresAt time.Time) error

	// ClearResetToken removes any pending reset credential.
	ClearResetToken(ctx context.Context, id string) error

	// CompleteReset atomically matches an unexpired reset digest, installs
	// the new credential hash, clears the reset fields and bumps
	// password_changed_at. Returns pgx.ErrNoRows when the digest is unknown,
	// expired, or already consumed.
	CompleteReset(ctx context.Context, tokenDigest, passwordHash string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, photo, role, password_hash,
        password_changed_at, password_reset_token, password_reset_expires_at,
        active, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, photo, role, password_hash)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, active, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Photo,
		user.Role,
		user.PasswordHash,
	).Scan(&user.ID, &user.Active, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=$1 AND active`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email=$1 AND active`
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `
        UPDATE users
        SET password_hash=$1, password_changed_at=NOW(), updated_at=NOW()
        WHERE id=$2`

	cmd, err := r.pool.Exec(ctx, query, passwordHash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) SetResetToken(ctx context.Context, id, tokenDigest string, expiresAt time.Time) error {
	const query = `
        UPDATE users
        SET password_reset_token=$1, password_reset_expires_at=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query, tokenDigest, expiresAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) ClearResetToken(ctx context.Context, id string) error {
	const query = `
        UPDATE users
        SET password_reset_token=NULL, password_reset_expires_at=NULL, updated_at=NOW()
        WHERE id=$1`

	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *userRepository) CompleteReset(ctx context.Context, tokenDigest, passwordHash string) (*domain.User, error) {
	const query = `
        UPDATE users
        SET password_hash=$2,
            password_reset_token=NULL,
            password_reset_expires_at=NULL,
            password_changed_at=NOW(),
            updated_at=NOW()
        WHERE password_reset_token=$1 AND password_reset_expires_at > NOW()
        RETURNING ` + userColumns

	return r.scanOne(r.pool.QueryRow(ctx, query, tokenDigest, passwordHash))
}

func (r *userRepository) scanOne(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Photo,
		&user.Role,
		&user.PasswordHash,
		&user.PasswordChangedAt,
		&user.PasswordResetToken,
		&user.PasswordResetExpiresAt,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
