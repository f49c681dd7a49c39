package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/showtix/showtix-go/internal/repository/memory"
	"github.com/showtix/showtix-go/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() *auth.Service {
	store := memory.NewStore()
	return auth.New(store, store, nil, auth.Config{
		Secret:     "test-secret",
		SessionTTL: time.Hour,
		BcryptCost: 4, // bcrypt.MinCost, keeps the suite fast
	})
}

func TestRegisterStartsSession(t *testing.T) {
	svc := newService()

	session, err := svc.Register(context.Background(), "alice", "alice@example.com", "s3cret", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "alice", session.User.Username)

	user, err := svc.Verify(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, user.ID)
}

func TestRegisterPasswordMismatch(t *testing.T) {
	svc := newService()

	_, err := svc.Register(context.Background(), "alice", "", "s3cret", "other")
	assert.ErrorIs(t, err, auth.ErrPasswordMismatch)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newService()

	_, err := svc.Register(context.Background(), "alice", "", "s3cret", "s3cret")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "alice", "", "other", "other")
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)
}

func TestLoginWrongCredentialsLookAlike(t *testing.T) {
	svc := newService()

	_, err := svc.Register(context.Background(), "alice", "", "s3cret", "s3cret")
	require.NoError(t, err)

	// unknown user and wrong password must fail identically
	_, errUnknown := svc.Login(context.Background(), "nobody", "whatever", "")
	_, errWrongPw := svc.Login(context.Background(), "alice", "wrong", "")

	assert.ErrorIs(t, errUnknown, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPw, auth.ErrInvalidCredentials)
}

func TestLoginSuccess(t *testing.T) {
	svc := newService()

	_, err := svc.Register(context.Background(), "alice", "", "s3cret", "s3cret")
	require.NoError(t, err)

	session, err := svc.Login(context.Background(), "alice", "s3cret", "")
	require.NoError(t, err)

	user, err := svc.Verify(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc := newService()

	session, err := svc.Register(context.Background(), "alice", "", "s3cret", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), session.Token))

	// the token still parses but its session is gone
	_, err = svc.Verify(context.Background(), session.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)

	// logging out twice is fine
	assert.NoError(t, svc.Logout(context.Background(), session.Token))
}

func TestLogoutKeepsOtherSessions(t *testing.T) {
	svc := newService()

	first, err := svc.Register(context.Background(), "alice", "", "s3cret", "s3cret")
	require.NoError(t, err)

	second, err := svc.Login(context.Background(), "alice", "s3cret", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), first.Token))

	_, err = svc.Verify(context.Background(), first.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)

	_, err = svc.Verify(context.Background(), second.Token)
	assert.NoError(t, err)
}

func TestVerifyGarbageToken(t *testing.T) {
	svc := newService()

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.Verify(context.Background(), token)
		assert.ErrorIs(t, err, auth.ErrInvalidSession)
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	svc := newService()

	store := memory.NewStore()
	other := auth.New(store, store, nil, auth.Config{
		Secret:     "different-secret",
		SessionTTL: time.Hour,
		BcryptCost: 4,
	})

	session, err := other.Register(context.Background(), "mallory", "", "pw", "pw")
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), session.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)
}
