package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/storefront/internal/activity"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/form"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrCredentialExpired = errors.New("stored credential has expired")
)

// IdentityService is the remote identity provider. Calls that need a
// credential read it from the CredentialStore the service was built with.
type IdentityService interface {
	Login(ctx context.Context, creds Credentials) (AuthResult, error)
	Register(ctx context.Context, reg Registration) (AuthResult, error)
	Logout(ctx context.Context) error
	Verify(ctx context.Context) (User, error)
	Profile(ctx context.Context) (User, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error)
}

// Error is a failed session operation with the message shown to the user
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string       { return e.Message }
func (e *Error) Unwrap() error       { return e.Err }
func (e *Error) UserMessage() string { return e.Message }

// Message extracts a user-facing message from err: the service-provided
// message when there is one, the field messages of a form, or fallback.
func Message(err error, fallback string) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	var fe form.Errors
	if errors.As(err, &fe) && len(fe) > 0 {
		return fe.Error()
	}
	return fallback
}

// Store is the current session. The user is present only after a
// successful login, registration, or restore.
type Store struct {
	mu          sync.RWMutex
	user        *User
	identity    IdentityService
	credentials *CredentialStore
	activity    *activity.Recorder
	now         func() time.Time
}

type Option func(*Store)

// WithActivity publishes session started and ended events
func WithActivity(r *activity.Recorder) Option {
	return func(s *Store) { s.activity = r }
}

// WithClock replaces time.Now for credential expiry checks
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(identity IdentityService, credentials *CredentialStore, opts ...Option) *Store {
	s := &Store{
		identity:    identity,
		credentials: credentials,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login authenticates with email and password. On failure the session is
// left unauthenticated and the error carries a user-facing message.
func (s *Store) Login(ctx context.Context, email, password string) (User, error) {
	creds := Credentials{Email: email, Password: password}
	if err := creds.Validate(); err != nil {
		return User{}, err
	}

	result, err := s.identity.Login(ctx, creds)
	if err != nil {
		return User{}, &Error{Message: Message(err, "Login failed"), Err: err}
	}
	s.start(ctx, result, "login")
	return result.User, nil
}

// Register creates an account and signs in. Field validation runs before
// any remote call.
func (s *Store) Register(ctx context.Context, reg Registration) (User, error) {
	if err := reg.Validate(); err != nil {
		return User{}, err
	}

	result, err := s.identity.Register(ctx, reg)
	if err != nil {
		return User{}, &Error{Message: Message(err, "Registration failed"), Err: err}
	}
	s.start(ctx, result, "register")
	return result.User, nil
}

func (s *Store) start(ctx context.Context, result AuthResult, method string) {
	if err := s.credentials.Save(ctx, result.Token); err != nil {
		log.Printf("[Session] %v", err)
	}

	user := result.User
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	log.Printf("[Session] Signed in %s via %s", user.Email, method)
	s.activity.Record(ctx, activity.EventSessionStarted, activity.SessionStarted{
		UserID: user.ID,
		Email:  user.Email,
		Method: method,
	})
}

// Logout invalidates the credential remotely, then clears local state
// whatever the remote outcome. Success is reported only when the credential
// was invalidated remotely or there was none to invalidate.
func (s *Store) Logout(ctx context.Context) error {
	var remoteErr error
	if token, err := s.credentials.Token(ctx); err != nil {
		log.Printf("[Session] %v", err)
		remoteErr = fmt.Errorf("logout not sent: %w", err)
	} else if token != "" {
		remoteErr = s.identity.Logout(ctx)
	}

	s.end(ctx, "logout")

	if remoteErr != nil {
		return &Error{Message: Message(remoteErr, "Logout failed"), Err: remoteErr}
	}
	return nil
}

func (s *Store) end(ctx context.Context, reason string) {
	if err := s.credentials.Clear(ctx); err != nil {
		log.Printf("[Session] %v", err)
	}

	s.mu.Lock()
	var userID string
	if s.user != nil {
		userID = s.user.ID
	}
	s.user = nil
	s.mu.Unlock()

	s.activity.Record(ctx, activity.EventSessionEnded, activity.SessionEnded{
		UserID: userID,
		Reason: reason,
	})
}

// Restore re-establishes the session from a persisted credential at
// startup. No credential is not an error. An expired JWT is dropped without
// a remote call; anything else is validated with the identity service and
// cleared if that fails.
func (s *Store) Restore(ctx context.Context) error {
	token, err := s.credentials.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	if claims, err := auth.PeekClaims(token); err == nil && claims.ExpiredAt(s.now()) {
		log.Printf("[Session] Dropping expired credential")
		s.end(ctx, "expired_credential")
		return ErrCredentialExpired
	}

	user, err := s.identity.Verify(ctx)
	if err != nil {
		log.Printf("[Session] Credential rejected: %v", err)
		s.end(ctx, "invalid_credential")
		return &Error{Message: Message(err, "Session expired"), Err: err}
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.activity.Record(ctx, activity.EventSessionStarted, activity.SessionStarted{
		UserID: user.ID,
		Email:  user.Email,
		Method: "restore",
	})
	return nil
}

// Profile fetches the full profile and refreshes the in-memory user
func (s *Store) Profile(ctx context.Context) (User, error) {
	if !s.IsAuthenticated() {
		return User{}, ErrNotAuthenticated
	}

	user, err := s.identity.Profile(ctx)
	if err != nil {
		return User{}, &Error{Message: Message(err, "Failed to load profile"), Err: err}
	}
	s.setUser(user)
	return user, nil
}

func (s *Store) UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error) {
	if !s.IsAuthenticated() {
		return User{}, ErrNotAuthenticated
	}
	if err := update.Validate(); err != nil {
		return User{}, err
	}

	user, err := s.identity.UpdateProfile(ctx, update)
	if err != nil {
		return User{}, &Error{Message: Message(err, "Failed to update profile"), Err: err}
	}
	s.setUser(user)
	return user, nil
}

func (s *Store) setUser(user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil {
		s.user = &user
	}
}

// User returns the signed-in user
func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Claims decodes the stored credential when it is a JWT. Opaque
// credentials and an empty session return ok=false.
func (s *Store) Claims(ctx context.Context) (*auth.Claims, bool) {
	token, err := s.credentials.Token(ctx)
	if err != nil || token == "" {
		return nil, false
	}
	claims, err := auth.PeekClaims(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}
