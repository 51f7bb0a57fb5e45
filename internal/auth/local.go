package auth

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 6

	// Failed logins per email before the window closes.
	maxFailedLogins = 5
	failureWindow   = 15 * time.Minute
)

type localUser struct {
	id   string
	hash []byte
}

type failureRecord struct {
	count int
	since time.Time
}

// Local is an in-process Oracle backed by bcrypt hashes. It enforces the
// same rules the hosted provider does: minimum password length, unique
// emails and a lockout after repeated failures. Sign-ins and sign-outs are
// fanned out to OnAuthChange observers.
type Local struct {
	mu        sync.Mutex
	users     map[string]localUser // keyed by normalized email
	failures  map[string]failureRecord
	signedIn  map[string]User // keyed by user id
	observers map[string]AuthChangeFunc
	now       func() time.Time
}

var _ Oracle = (*Local)(nil)

func NewLocal() *Local {
	return &Local{
		users:     map[string]localUser{},
		failures:  map[string]failureRecord{},
		signedIn:  map[string]User{},
		observers: map[string]AuthChangeFunc{},
		now:       time.Now,
	}
}

// SetClock overrides the lockout clock, for tests.
func (l *Local) SetClock(now func() time.Time) { l.now = now }

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (l *Local) Register(ctx context.Context, email, password string) (User, error) {
	norm, err := normalizeEmail(email)
	if err != nil {
		return User{}, err
	}
	if len(password) < minPasswordLen {
		return User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	l.mu.Lock()
	if _, exists := l.users[norm]; exists {
		l.mu.Unlock()
		return User{}, ErrEmailInUse
	}
	u := localUser{id: uuid.NewString(), hash: hash}
	l.users[norm] = u
	user := User{ID: u.id, Email: norm}
	l.signedIn[u.id] = user
	l.mu.Unlock()

	slog.InfoContext(ctx, "User registered", "email", norm)
	l.notify(AuthChange{User: user, SignedIn: true})
	return user, nil
}

func (l *Local) Login(ctx context.Context, email, password string) (User, error) {
	norm, err := normalizeEmail(email)
	if err != nil {
		return User{}, err
	}

	l.mu.Lock()

	if rec, ok := l.failures[norm]; ok {
		if l.now().Sub(rec.since) > failureWindow {
			delete(l.failures, norm)
		} else if rec.count >= maxFailedLogins {
			l.mu.Unlock()
			return User{}, ErrRateLimited
		}
	}

	u, exists := l.users[norm]
	if !exists {
		l.mu.Unlock()
		return User{}, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		rec := l.failures[norm]
		if rec.count == 0 {
			rec.since = l.now()
		}
		rec.count++
		l.failures[norm] = rec
		l.mu.Unlock()
		slog.WarnContext(ctx, "Login failed", "email", norm, "failures", rec.count)
		return User{}, ErrWrongPassword
	}

	delete(l.failures, norm)
	user := User{ID: u.id, Email: norm}
	l.signedIn[u.id] = user
	l.mu.Unlock()

	l.notify(AuthChange{User: user, SignedIn: true})
	return user, nil
}

func (l *Local) Logout(ctx context.Context, userID string) error {
	l.mu.Lock()
	user, ok := l.signedIn[userID]
	delete(l.signedIn, userID)
	l.mu.Unlock()

	if !ok {
		return nil
	}

	slog.InfoContext(ctx, "User signed out", "email", user.Email)
	l.notify(AuthChange{User: user, SignedIn: false})
	return nil
}

func (l *Local) CurrentUser(userID string) (User, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, ok := l.signedIn[userID]
	return u, ok
}

func (l *Local) OnAuthChange(fn AuthChangeFunc) UnsubscribeFunc {
	id := uuid.NewString()
	l.mu.Lock()
	l.observers[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.observers, id)
		l.mu.Unlock()
	}
}

// notify runs the observers outside the lock so a callback may call back
// into the oracle.
func (l *Local) notify(change AuthChange) {
	l.mu.Lock()
	obs := make([]AuthChangeFunc, 0, len(l.observers))
	for _, fn := range l.observers {
		obs = append(obs, fn)
	}
	l.mu.Unlock()

	for _, fn := range obs {
		fn(change)
	}
}
