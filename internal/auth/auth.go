// Package auth provides the authentication provider interface and a local
// implementation backed by the data store.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/models"
	"cryptofolio/internal/store"
)

const (
	keySize          = 32
	saltSize         = 16
	pbkdf2Iterations = 100000
)

// Event describes a session change pushed to subscribers.
type Event struct {
	SignedIn bool
	User     *models.User
}

// Provider defines the authentication collaborator. Implementations scope
// every journal operation to the user behind a session token.
type Provider interface {
	SignUp(ctx context.Context, email, password, displayName string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, *models.User, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*models.User, error)
	Subscribe(fn func(Event)) (unsubscribe func())
}

// LocalProvider implements Provider over the data store with pbkdf2-hashed
// passwords and opaque session tokens.
type LocalProvider struct {
	store      store.DataStore
	sessionTTL time.Duration

	mu          sync.Mutex
	subscribers map[int]func(Event)
	nextSubID   int
}

// NewLocalProvider creates a local auth provider.
func NewLocalProvider(dataStore store.DataStore, sessionTTL time.Duration) *LocalProvider {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &LocalProvider{
		store:       dataStore,
		sessionTTL:  sessionTTL,
		subscribers: make(map[int]func(Event)),
	}
}

// SignUp registers a new account.
func (p *LocalProvider) SignUp(ctx context.Context, email, password, displayName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("email", email, "a valid email is required")
	}
	if len(password) < 8 {
		return nil, apperrors.NewValidationError("password", "", "password must be at least 8 characters")
	}

	if _, err := p.store.GetUserByEmail(ctx, email); err == nil {
		return nil, apperrors.ErrUserExists
	} else if !apperrors.Is(err, apperrors.ErrDataNotFound) {
		return nil, apperrors.NewRemoteError("store", "sign up", "could not check account", err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: base64.StdEncoding.EncodeToString(hashPassword(password, salt)),
		PasswordSalt: base64.StdEncoding.EncodeToString(salt),
		CreatedAt:    time.Now(),
	}
	if err := p.store.CreateUser(ctx, user); err != nil {
		return nil, apperrors.NewRemoteError("store", "sign up", "could not create account", err)
	}
	return &user, nil
}

// SignIn verifies credentials and opens a session.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*models.Session, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := p.store.GetUserByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrDataNotFound) {
			return nil, nil, apperrors.NewAuthError("sign in", apperrors.ErrInvalidCredentials)
		}
		return nil, nil, apperrors.NewRemoteError("store", "sign in", "could not load account", err)
	}

	salt, err := base64.StdEncoding.DecodeString(user.PasswordSalt)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding salt: %w", err)
	}
	stored, err := base64.StdEncoding.DecodeString(user.PasswordHash)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding hash: %w", err)
	}
	if !hmac.Equal(stored, hashPassword(password, salt)) {
		return nil, nil, apperrors.NewAuthError("sign in", apperrors.ErrInvalidCredentials)
	}

	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return nil, nil, fmt.Errorf("generating session token: %w", err)
	}
	session := models.Session{
		Token:     base64.RawURLEncoding.EncodeToString(token),
		UserID:    user.ID,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(p.sessionTTL),
	}
	if err := p.store.CreateSession(ctx, session); err != nil {
		return nil, nil, apperrors.NewRemoteError("store", "sign in", "could not open session", err)
	}

	p.notify(Event{SignedIn: true, User: user})
	return &session, user, nil
}

// SignOut closes the session. Unknown tokens are a no-op.
func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	if err := p.store.DeleteSession(ctx, token); err != nil {
		return apperrors.NewRemoteError("store", "sign out", "could not close session", err)
	}
	p.notify(Event{SignedIn: false})
	return nil
}

// CurrentUser resolves a session token to its user, rejecting missing or
// expired sessions.
func (p *LocalProvider) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperrors.NewAuthError("current user", apperrors.ErrNotAuthenticated)
	}
	session, err := p.store.GetSession(ctx, token)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrDataNotFound) {
			return nil, apperrors.NewAuthError("current user", apperrors.ErrNotAuthenticated)
		}
		return nil, apperrors.NewRemoteError("store", "current user", "could not load session", err)
	}
	if time.Now().After(session.ExpiresAt) {
		_ = p.store.DeleteSession(ctx, token)
		return nil, apperrors.NewAuthError("current user", apperrors.ErrSessionExpired)
	}
	user, err := p.store.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, apperrors.NewRemoteError("store", "current user", "could not load user", err)
	}
	return user, nil
}

// Subscribe registers a session-change callback and returns an unsubscribe
// function. Used to drive route gating in clients.
func (p *LocalProvider) Subscribe(fn func(Event)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

func (p *LocalProvider) notify(ev Event) {
	p.mu.Lock()
	subs := make([]func(Event), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

func hashPassword(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, keySize, sha256.New)
}
