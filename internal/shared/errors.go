package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed         = fmt.Errorf("authentication failed")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
	ErrEmailInUse         = fmt.Errorf("an account with this email already exists")
	ErrWeakPassword       = fmt.Errorf("password should be at least 6 characters")
	ErrInvalidEmail       = fmt.Errorf("invalid email address")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Movie provider errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrMovieNotFound      = fmt.Errorf("movie not found")

	// List errors
	ErrValidation        = fmt.Errorf("validation failed")
	ErrDuplicateItem     = fmt.Errorf("movie already exists in this list")
	ErrProtectedList     = fmt.Errorf("the default list cannot be deleted")
	ErrListNotFound      = fmt.Errorf("list not found")
	ErrDefaultListExists = fmt.Errorf("user already has a default list")
	ErrItemNotFound      = fmt.Errorf("list item not found")
	ErrUserNotFound      = fmt.Errorf("user not found")
	ErrStore             = fmt.Errorf("document store error")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
