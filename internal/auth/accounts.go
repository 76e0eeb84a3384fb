package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/shared"
)

const (
	MinPasswordLength = 6
	PasswordProvider  = "password"
)

// Users is the user profile collection.
type Users interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Bootstrapper prepares a freshly authenticated user's profile.
type Bootstrapper interface {
	EnsureProfile(ctx context.Context, uid string) (*models.List, error)
}

// Identity is a user as asserted by an external OAuth2 provider.
type Identity struct {
	Provider string `json:"provider"`
	Subject  string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// AccountsOpts configures [Accounts].
type AccountsOpts struct {
	Logger *log.Logger
	Cost   int // bcrypt cost, defaults to [bcrypt.DefaultCost]
}

// Accounts authenticates users against the user collection.
type Accounts struct {
	users    Users
	profiles Bootstrapper
	logger   *log.Logger
	cost     int
}

// NewAccounts creates [Accounts]. profiles may be nil to skip bootstrapping.
func NewAccounts(users Users, profiles Bootstrapper, opts AccountsOpts) *Accounts {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Cost == 0 {
		opts.Cost = bcrypt.DefaultCost
	}
	return &Accounts{users: users, profiles: profiles, logger: opts.Logger, cost: opts.Cost}
}

// SignUp registers a password user and creates their default list.
func (a *Accounts) SignUp(ctx context.Context, email, password, displayName string) (*models.User, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, fmt.Errorf("%w: display name is required", shared.ErrValidation)
	}

	email, err := parseEmail(email)
	if err != nil {
		return nil, err
	}

	if len(password) < MinPasswordLength {
		return nil, shared.ErrWeakPassword
	}

	if _, err := a.users.GetByEmail(ctx, email); err == nil {
		return nil, shared.ErrEmailInUse
	} else if !errors.Is(err, shared.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: %w", shared.ErrStore, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		DisplayName:  displayName,
		Provider:     PasswordProvider,
		PasswordHash: string(hash),
	}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := a.bootstrap(ctx, user); err != nil {
		return nil, err
	}

	a.logger.Info("account created", "uid", user.ID, "email", user.Email)
	return user, nil
}

// SignIn authenticates a password user.
// Unknown emails and wrong passwords both fail with [shared.ErrInvalidCredentials].
func (a *Accounts) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, shared.ErrUserNotFound) {
		return nil, shared.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrStore, err)
	}

	if user.PasswordHash == "" {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	if err := a.bootstrap(ctx, user); err != nil {
		return nil, err
	}

	a.logger.Debug("signed in", "uid", user.ID)
	return user, nil
}

// SignInOAuth finds or creates the user for an external identity.
// The user ID is derived from provider and subject, so repeated sign-ins resolve the same user.
func (a *Accounts) SignInOAuth(ctx context.Context, id Identity) (*models.User, error) {
	if id.Provider == "" || id.Subject == "" {
		return nil, fmt.Errorf("%w: identity is missing provider or subject", shared.ErrAuthFailed)
	}

	uid := shared.ExternalUserID(id.Provider, id.Subject)

	user, err := a.users.Get(ctx, uid)
	switch {
	case errors.Is(err, shared.ErrUserNotFound):
		user, err = a.createExternal(ctx, uid, id)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("%w: %w", shared.ErrStore, err)
	}

	if err := a.bootstrap(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *Accounts) createExternal(ctx context.Context, uid string, id Identity) (*models.User, error) {
	email, err := parseEmail(id.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	name := strings.TrimSpace(id.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	user := &models.User{ID: uid, Email: email, DisplayName: name, Provider: id.Provider}
	if err := a.users.Create(ctx, user); err != nil {
		return nil, err
	}

	a.logger.Info("account created", "uid", uid, "provider", id.Provider)
	return user, nil
}

func (a *Accounts) bootstrap(ctx context.Context, user *models.User) error {
	if a.profiles == nil {
		return nil
	}
	if _, err := a.profiles.EnsureProfile(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to bootstrap profile: %w", err)
	}
	return nil
}

func parseEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidEmail, email)
	}
	return strings.ToLower(addr.Address), nil
}
