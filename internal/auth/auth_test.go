package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cryptofolio/internal/errors"
	"cryptofolio/internal/store"
)

func newTestProvider(t *testing.T, ttl time.Duration) *LocalProvider {
	t.Helper()
	dataStore, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dataStore.Close() })
	return NewLocalProvider(dataStore, ttl)
}

func TestSignUpAndSignIn(t *testing.T) {
	provider := newTestProvider(t, time.Hour)
	ctx := context.Background()

	user, err := provider.SignUp(ctx, "Alice@Example.com", "correct horse", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	session, signedIn, err := provider.SignIn(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, signedIn.ID)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	resolved, err := provider.CurrentUser(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestSignUpValidation(t *testing.T) {
	provider := newTestProvider(t, time.Hour)
	ctx := context.Background()

	var validationErr *apperrors.ValidationError

	_, err := provider.SignUp(ctx, "not-an-email", "long enough password", "")
	assert.ErrorAs(t, err, &validationErr)

	_, err = provider.SignUp(ctx, "alice@example.com", "short", "")
	assert.ErrorAs(t, err, &validationErr)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	provider := newTestProvider(t, time.Hour)
	ctx := context.Background()

	_, err := provider.SignUp(ctx, "alice@example.com", "correct horse", "")
	require.NoError(t, err)

	_, err = provider.SignUp(ctx, "ALICE@example.com", "battery staple", "")
	assert.ErrorIs(t, err, apperrors.ErrUserExists)
}

func TestSignInWrongPassword(t *testing.T) {
	provider := newTestProvider(t, time.Hour)
	ctx := context.Background()

	_, err := provider.SignUp(ctx, "alice@example.com", "correct horse", "")
	require.NoError(t, err)

	_, _, err = provider.SignIn(ctx, "alice@example.com", "wrong password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, _, err = provider.SignIn(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestSignOutInvalidatesSession(t *testing.T) {
	provider := newTestProvider(t, time.Hour)
	ctx := context.Background()

	_, err := provider.SignUp(ctx, "alice@example.com", "correct horse", "")
	require.NoError(t, err)
	session, _, err := provider.SignIn(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)

	require.NoError(t, provider.SignOut(ctx, session.Token))

	_, err = provider.CurrentUser(ctx, session.Token)
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}

func TestExpiredSessionRejected(t *testing.T) {
	provider := newTestProvider(t, time.Millisecond)
	ctx := context.Background()

	_, err := provider.SignUp(ctx, "alice@example.com", "correct horse", "")
	require.NoError(t, err)
	session, _, err := provider.SignIn(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = provider.CurrentUser(ctx, session.Token)
	assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
}

func TestEmptyTokenRejected(t *testing.T) {
	provider := newTestProvider(t, time.Hour)
	_, err := provider.CurrentUser(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
}

func TestSubscribeNotifiesOnSessionChange(t *testing.T) {
	provider := newTestProvider(t, time.Hour)
	ctx := context.Background()

	var events []Event
	unsubscribe := provider.Subscribe(func(ev Event) {
		events = append(events, ev)
	})
	defer unsubscribe()

	_, err := provider.SignUp(ctx, "alice@example.com", "correct horse", "")
	require.NoError(t, err)
	session, _, err := provider.SignIn(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)
	require.NoError(t, provider.SignOut(ctx, session.Token))

	require.Len(t, events, 2)
	assert.True(t, events[0].SignedIn)
	require.NotNil(t, events[0].User)
	assert.False(t, events[1].SignedIn)
}
