package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DMlogobardi/Quizy-sub001/internal/auth"
	"github.com/DMlogobardi/Quizy-sub001/internal/cache"
	"github.com/DMlogobardi/Quizy-sub001/internal/model"
	"github.com/DMlogobardi/Quizy-sub001/internal/queue"
	"github.com/DMlogobardi/Quizy-sub001/internal/session"
)

type authFixture struct {
	svc      *AuthService
	users    *fakeUserStore
	registry *session.Registry
	codec    *auth.Codec
	quizzes  *cache.QuizCache
	events   *eventRecorder
	store    *fakeQuizStore
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	store := newFakeQuizStore()
	users := newFakeUserStore()
	codec := auth.NewCodec("auth-service-test-secret", time.Hour)
	registry := session.NewRegistry()
	quizzes := cache.NewQuizCache(cache.NewRepoReattacher(store))
	events := &eventRecorder{}
	svc := NewAuthService(users, codec, auth.NewGuard(codec), registry, quizzes, events.publish, testBcryptCost)
	return &authFixture{svc: svc, users: users, registry: registry, codec: codec, quizzes: quizzes, events: events, store: store}
}

func (f *authFixture) register(t *testing.T, username, password string) *model.User {
	t.Helper()
	require.NoError(t, f.svc.Register(context.Background(), RegisterInput{Username: username, Password: password}))
	u, err := f.users.FindByUsername(context.Background(), username)
	require.NoError(t, err)
	return u
}

func TestRegisterAndAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "alice", "s3cret")
	assert.Equal(t, model.RoleCompiler, u.Role)
	assert.True(t, u.IsCompiler)

	cred, err := f.svc.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, cred)

	assert.True(t, f.registry.IsAlive(cred))
	role, err := f.codec.RoleOf(cred)
	require.NoError(t, err)
	assert.Equal(t, model.RoleCompiler, role)
}

func TestAuthenticateRejections(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "s3cret")

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown user", "bob", "s3cret"},
		{"empty password", "alice", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Authenticate(context.Background(), tc.username, tc.password)
			assert.ErrorIs(t, err, ErrLoginFailed)
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture(t)
	assert.ErrorIs(t, f.svc.Register(context.Background(), RegisterInput{Username: "", Password: "x"}), ErrRegisterFailed)
	assert.ErrorIs(t, f.svc.Register(context.Background(), RegisterInput{Username: "x", Password: ""}), ErrRegisterFailed)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "s3cret")
	err := f.svc.Register(context.Background(), RegisterInput{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, ErrRegisterFailed)
}

func TestLogoutRevokesCredential(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "s3cret")
	cred, err := f.svc.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	f.svc.Logout(cred)
	assert.False(t, f.registry.IsAlive(cred))

	// Revoking again is harmless.
	f.svc.Logout(cred)
}

func TestElevateRole(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "alice", "s3cret")
	f.users.allowCreator(u.ID)

	cred, err := f.svc.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	// Seed the cache partition so elevation has something to drop.
	q := f.store.seed(u.ID, "pre-elevation quiz")
	require.NoError(t, f.quizzes.Insert(u.ID, q))

	before, err := f.registry.IdentityOf(cred)
	require.NoError(t, err)

	newCred, err := f.svc.ElevateRole(context.Background(), cred)
	require.NoError(t, err)
	require.NotEqual(t, cred, newCred)

	// The identity registered at login is shared with in-flight requests
	// and must not be written in place by the elevation.
	assert.Equal(t, model.RoleCompiler, before.Role)

	assert.False(t, f.registry.IsAlive(cred), "old credential must be dead")
	assert.True(t, f.registry.IsAlive(newCred))

	role, err := f.codec.RoleOf(newCred)
	require.NoError(t, err)
	assert.Equal(t, model.RoleCreator, role)

	persisted, err := f.users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleCreator, persisted.Role)

	_, err = f.quizzes.GetAll(context.Background(), u.ID)
	assert.ErrorIs(t, err, cache.ErrNotCached, "role-scoped cache partition must be dropped")

	assert.Contains(t, f.events.kinds(), queue.KindRoleElevated)
}

func TestElevateRoleIneligibleUser(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "alice", "s3cret")
	cred, err := f.svc.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	_, err = f.svc.ElevateRole(context.Background(), cred)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
	assert.True(t, f.registry.IsAlive(cred), "failed elevation must not kill the session")
}

func TestElevateRoleReadsEligibilityFromStore(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "alice", "s3cret")
	cred, err := f.svc.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	_, err = f.svc.ElevateRole(context.Background(), cred)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)

	// Eligibility granted after login is honored without a re-login;
	// the check runs against the store, not the login-time snapshot.
	f.users.allowCreator(u.ID)
	newCred, err := f.svc.ElevateRole(context.Background(), cred)
	require.NoError(t, err)

	role, err := f.codec.RoleOf(newCred)
	require.NoError(t, err)
	assert.Equal(t, model.RoleCreator, role)
}

func TestElevateRoleRevokedCredential(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "alice", "s3cret")
	f.users.allowCreator(u.ID)
	cred, err := f.svc.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	f.svc.Logout(cred)
	_, err = f.svc.ElevateRole(context.Background(), cred)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestElevateRoleWrongRole(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, "alice", "s3cret")
	f.users.allowCreator(u.ID)
	cred, err := f.svc.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	newCred, err := f.svc.ElevateRole(context.Background(), cred)
	require.NoError(t, err)

	// The creator credential no longer carries the compiler role, so a
	// second elevation is refused.
	_, err = f.svc.ElevateRole(context.Background(), newCred)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}
