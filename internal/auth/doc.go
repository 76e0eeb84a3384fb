// Package auth signs users in and keeps the signed-in user for the CLI and TUI.
//
// [Accounts] registers and authenticates users with email and password (bcrypt hashes) or with an
// external OAuth2 identity. Every successful sign-up or sign-in bootstraps the user's profile so
// the default list exists before any list operation runs.
//
// [OAuthProvider] drives the authorization code flow against a configurable provider and resolves
// an [Identity] from its userinfo endpoint.
//
// [SessionStore] persists the signed-in user as JSON on an [afero.Fs]. A missing session means no
// list operation is permitted; [SessionStore.Load] reports it as [shared.ErrNotAuthenticated].
package auth
