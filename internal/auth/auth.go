// Package auth abstracts the identity provider. The application only ever
// sees the Oracle interface and the sentinel errors below; provider-specific
// failure codes are translated at the boundary and surfaced to users as
// fixed Spanish messages.
package auth

import (
	"context"
	"errors"
)

var (
	ErrEmailInUse    = errors.New("email already registered")
	ErrWeakPassword  = errors.New("password too weak")
	ErrInvalidEmail  = errors.New("invalid email")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
	ErrRateLimited   = errors.New("too many attempts")
	ErrNetwork       = errors.New("network failure")
	ErrDisabled      = errors.New("account disabled")
)

// User is an authenticated identity. ID is the owner key for all records.
type User struct {
	ID    string
	Email string
}

// AuthChange is one sign-in or sign-out observed by the oracle.
type AuthChange struct {
	User     User
	SignedIn bool
}

// AuthChangeFunc receives auth state transitions.
type AuthChangeFunc func(change AuthChange)

// UnsubscribeFunc stops an auth-change subscription. After it returns no
// further changes are delivered.
type UnsubscribeFunc func()

// Oracle answers registration and credential checks and reports auth state
// transitions to observers. Register and Login sign the user in.
type Oracle interface {
	// Register creates a new user. The password must be at least 6
	// characters; shorter ones fail with ErrWeakPassword.
	Register(ctx context.Context, email, password string) (User, error)
	// Login verifies the credentials.
	Login(ctx context.Context, email, password string) (User, error)
	// Logout ends the user's signed-in state and notifies observers.
	// Logging out a user who is not signed in is a no-op.
	Logout(ctx context.Context, userID string) error
	// CurrentUser reports the signed-in user for the owner id, if any.
	CurrentUser(userID string) (User, bool)
	// OnAuthChange registers an observer for sign-in and sign-out events.
	OnAuthChange(fn AuthChangeFunc) UnsubscribeFunc
}

// UserMessage maps an auth error to the Spanish message shown to the user.
// Unknown errors collapse into a generic message so provider internals never
// leak.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmailInUse):
		return "Este email ya está registrado"
	case errors.Is(err, ErrWeakPassword):
		return "La contraseña debe tener al menos 6 caracteres"
	case errors.Is(err, ErrInvalidEmail):
		return "Email inválido"
	case errors.Is(err, ErrUserNotFound):
		return "Usuario no encontrado"
	case errors.Is(err, ErrWrongPassword):
		return "Contraseña incorrecta"
	case errors.Is(err, ErrRateLimited):
		return "Demasiados intentos. Intenta más tarde"
	default:
		return "Error de autenticación"
	}
}
