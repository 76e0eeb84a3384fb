package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/shared"
)

// UserRepository persists [models.User] profiles.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, sequence, email, display_name, provider, password_hash, created_at, updated_at`

// Create inserts a new user with a generated sequence.
// A preset ID is kept (OAuth users have deterministic IDs); otherwise a random one is assigned.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := validateUser(user); err != nil {
		return err
	}

	sequence, err := NextSequence(ctx, r.db, "users")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if user.ID == "" {
		user.ID = shared.GenerateID()
	}
	if user.Provider == "" {
		user.Provider = "password"
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		user.ID, sequence, user.Email, user.DisplayName, user.Provider,
		nullString(user.PasswordHash), user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", shared.ErrEmailInUse, user.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email address, compared case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower(?)`, strings.TrimSpace(email))
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// Update modifies the mutable profile fields of an existing user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if err := validateUser(user); err != nil {
		return err
	}

	now := time.Now().UTC()
	query := `UPDATE users SET email = ?, display_name = ?, password_hash = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, user.Email, user.DisplayName, nullString(user.PasswordHash), now, user.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", shared.ErrEmailInUse, user.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if err := expectOne(result, fmt.Errorf("%w: %s", shared.ErrUserNotFound, user.ID)); err != nil {
		return err
	}

	user.UpdatedAt = now
	return nil
}

func validateUser(user *models.User) error {
	if strings.TrimSpace(user.Email) == "" {
		return fmt.Errorf("%w: email is required", shared.ErrValidation)
	}
	if strings.TrimSpace(user.DisplayName) == "" {
		return fmt.Errorf("%w: display name is required", shared.ErrValidation)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var (
		user     models.User
		sequence int
		hash     sql.NullString
	)

	err := row.Scan(&user.ID, &sequence, &user.Email, &user.DisplayName, &user.Provider, &hash,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = hash.String
	return &user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
