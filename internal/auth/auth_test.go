package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRegisterAndLogin(t *testing.T) {
	o := NewLocal()
	ctx := context.Background()

	u, err := o.Register(ctx, "Ana@Negocio.PE", "secreto1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "ana@negocio.pe" {
		t.Errorf("email not normalized: %s", u.Email)
	}
	if u.ID == "" {
		t.Error("empty user id")
	}

	got, err := o.Login(ctx, "ana@negocio.pe", "secreto1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("login id = %s, want %s", got.ID, u.ID)
	}
}

func TestRegisterErrors(t *testing.T) {
	o := NewLocal()
	ctx := context.Background()

	if _, err := o.Register(ctx, "no-es-un-email", "secreto1"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("invalid email = %v, want ErrInvalidEmail", err)
	}
	if _, err := o.Register(ctx, "ana@negocio.pe", "corta"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("short password = %v, want ErrWeakPassword", err)
	}

	if _, err := o.Register(ctx, "ana@negocio.pe", "secreto1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := o.Register(ctx, "ANA@negocio.pe", "secreto2"); !errors.Is(err, ErrEmailInUse) {
		t.Errorf("duplicate email = %v, want ErrEmailInUse", err)
	}
}

func TestLoginErrors(t *testing.T) {
	o := NewLocal()
	ctx := context.Background()

	if _, err := o.Login(ctx, "nadie@negocio.pe", "secreto1"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user = %v, want ErrUserNotFound", err)
	}

	if _, err := o.Register(ctx, "ana@negocio.pe", "secreto1"); err != nil {
		t.Fatal(err)
	}
	if _, err := o.Login(ctx, "ana@negocio.pe", "equivocada"); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("wrong password = %v, want ErrWrongPassword", err)
	}
}

func TestLoginLockout(t *testing.T) {
	o := NewLocal()
	now := time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC)
	o.SetClock(func() time.Time { return now })
	ctx := context.Background()

	if _, err := o.Register(ctx, "ana@negocio.pe", "secreto1"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < maxFailedLogins; i++ {
		if _, err := o.Login(ctx, "ana@negocio.pe", "equivocada"); !errors.Is(err, ErrWrongPassword) {
			t.Fatalf("attempt %d = %v", i, err)
		}
	}

	// Even the right password is refused while locked out.
	if _, err := o.Login(ctx, "ana@negocio.pe", "secreto1"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("locked out login = %v, want ErrRateLimited", err)
	}

	// The window expires and a good login clears the record.
	now = now.Add(failureWindow + time.Minute)
	if _, err := o.Login(ctx, "ana@negocio.pe", "secreto1"); err != nil {
		t.Errorf("login after window = %v", err)
	}
}

func TestAuthChangeFanOut(t *testing.T) {
	o := NewLocal()
	ctx := context.Background()

	var changes []AuthChange
	unsub := o.OnAuthChange(func(c AuthChange) { changes = append(changes, c) })

	u, err := o.Register(ctx, "ana@negocio.pe", "secreto1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if len(changes) != 1 || !changes[0].SignedIn || changes[0].User.ID != u.ID {
		t.Fatalf("register change = %+v", changes)
	}
	if got, ok := o.CurrentUser(u.ID); !ok || got.Email != "ana@negocio.pe" {
		t.Errorf("CurrentUser after register = %+v, %v", got, ok)
	}

	if err := o.Logout(ctx, u.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(changes) != 2 || changes[1].SignedIn || changes[1].User.ID != u.ID {
		t.Fatalf("logout change = %+v", changes)
	}
	if _, ok := o.CurrentUser(u.ID); ok {
		t.Error("user still signed in after logout")
	}

	// Logging out a signed-out user is a no-op.
	if err := o.Logout(ctx, u.ID); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if len(changes) != 2 {
		t.Errorf("no-op logout notified observers: %+v", changes)
	}

	unsub()
	if _, err := o.Login(ctx, "ana@negocio.pe", "secreto1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(changes) != 2 {
		t.Errorf("observer notified after unsubscribe: %+v", changes)
	}
}

func TestLoginSignsIn(t *testing.T) {
	o := NewLocal()
	ctx := context.Background()

	u, err := o.Register(ctx, "ana@negocio.pe", "secreto1")
	if err != nil {
		t.Fatal(err)
	}
	if err := o.Logout(ctx, u.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := o.Login(ctx, "ana@negocio.pe", "secreto1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got, ok := o.CurrentUser(u.ID); !ok || got.ID != u.ID {
		t.Errorf("CurrentUser after login = %+v, %v", got, ok)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrEmailInUse, "Este email ya está registrado"},
		{ErrWeakPassword, "La contraseña debe tener al menos 6 caracteres"},
		{ErrInvalidEmail, "Email inválido"},
		{ErrUserNotFound, "Usuario no encontrado"},
		{ErrWrongPassword, "Contraseña incorrecta"},
		{ErrRateLimited, "Demasiados intentos. Intenta más tarde"},
		{errors.New("provider exploded"), "Error de autenticación"},
		{ErrNetwork, "Error de autenticación"},
		{ErrDisabled, "Error de autenticación"},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
