package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelist/internal/auth"
	"github.com/desertthunder/reelist/internal/formatter"
	"github.com/desertthunder/reelist/internal/models"
	"github.com/desertthunder/reelist/internal/server"
	"github.com/desertthunder/reelist/internal/shared"
)

// AuthSignUp creates a password account, its default list and a CLI session.
func (r *Runner) AuthSignUp(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.open(); err != nil {
		return err
	}

	user, err := r.accounts.SignUp(ctx, cmd.String("email"), cmd.String("password"), cmd.String("name"))
	if err != nil {
		return err
	}
	return r.signedIn(user)
}

// AuthLogin signs in with email and password and saves the CLI session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.open(); err != nil {
		return err
	}

	user, err := r.accounts.SignIn(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return err
	}
	return r.signedIn(user)
}

// AuthOAuth runs the authorization code flow against the configured provider.
//
// A temporary callback server listens on the configured server address until the browser
// redirects back or the timeout expires.
func (r *Runner) AuthOAuth(ctx context.Context, cmd *cli.Command) error {
	provider, err := auth.NewOAuthProvider(r.config.Credentials.OAuth)
	if err != nil {
		return err
	}
	if _, err := r.open(); err != nil {
		return err
	}

	identity, err := r.doOAuth(ctx, provider, cmd.Duration("timeout"))
	if err != nil {
		return err
	}

	user, err := r.accounts.SignInOAuth(ctx, identity)
	if err != nil {
		return err
	}
	return r.signedIn(user)
}

func (r *Runner) doOAuth(ctx context.Context, provider *auth.OAuthProvider, timeout time.Duration) (auth.Identity, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return auth.Identity{}, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := provider.AuthURL(state)
	oauthHandler := server.NewOAuthHandler(provider, state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(oauthHandler)

	listener, err := net.Listen("tcp", r.config.Server.Addr())
	if err != nil {
		return auth.Identity{}, fmt.Errorf("failed to listen for the OAuth callback: %w", err)
	}

	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", listener.Addr())
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	r.writePlain("→ Opening browser for %s sign-in...\n", provider.Name())
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlain("⚠ Could not open browser automatically.\n")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-oauthHandler.Result():
		if result.Error() != nil {
			return auth.Identity{}, fmt.Errorf("%w: %w", shared.ErrAuthFailed, result.Error())
		}
		return result.Identity, nil
	case err := <-serverErrors:
		return auth.Identity{}, fmt.Errorf("server error: %w", err)
	case <-timer.C:
		return auth.Identity{}, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return auth.Identity{}, ctx.Err()
	}
}

func (r *Runner) signedIn(user *models.User) error {
	if err := r.sessions.Save(auth.NewSession(user)); err != nil {
		return err
	}

	r.logger.Info("signed in", "uid", user.ID, "provider", user.Provider)
	return r.writeBytes(formatter.FormatUser(user))
}

// AuthLogout removes the saved session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.sessions.Clear(); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports the signed-in user from the saved session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	session, err := r.sessions.Load()
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return r.writePlain("✗ Not signed in\n")
	}
	if err != nil {
		return err
	}

	return r.writeBytes(formatter.FormatUser(&models.User{
		ID:          session.UserID,
		Email:       session.Email,
		DisplayName: session.DisplayName,
		Provider:    session.Provider,
	}))
}
