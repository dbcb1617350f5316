package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skipperbent/pecee-legacy-models/internal/auth"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/domain"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/models"
)

// memoryBadLoginRepo implements auth.BadLoginRepo in memory.
type memoryBadLoginRepo struct {
	failures map[string][]time.Time
}

func newMemoryBadLoginRepo() *memoryBadLoginRepo {
	return &memoryBadLoginRepo{failures: make(map[string][]time.Time)}
}

func (r *memoryBadLoginRepo) Track(username, ip string, now time.Time) error {
	r.failures[username] = append(r.failures[username], now)
	return nil
}

func (r *memoryBadLoginRepo) CountSince(username string, since time.Time) (int, error) {
	count := 0
	for _, ts := range r.failures[username] {
		if !ts.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *memoryBadLoginRepo) Reset(username string) error {
	delete(r.failures, username)
	return nil
}

// memoryJar implements auth.CookieJar in memory.
type memoryJar struct {
	values map[string]string
}

func newMemoryJar() *memoryJar {
	return &memoryJar{values: make(map[string]string)}
}

func (j *memoryJar) Exists(name string) bool { _, ok := j.values[name]; return ok }
func (j *memoryJar) Get(name string) string  { return j.values[name] }
func (j *memoryJar) Set(name, value string, expires time.Time) {
	j.values[name] = value
}
func (j *memoryJar) Delete(name string) { delete(j.values, name) }

type sessionFixture struct {
	session *Session
	users   *MockUserRepo
	bad     *memoryBadLoginRepo
	jar     *memoryJar
	clock   *fakeClock
}

func newSessionFixture(t *testing.T, users *MockUserRepo) *sessionFixture {
	t.Helper()
	if users == nil {
		users = &MockUserRepo{}
	}
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	bad := newMemoryBadLoginRepo()
	jar := newMemoryJar()
	tickets, err := auth.NewTicketManager(jar, clock, "test-secret")
	require.NoError(t, err)
	manager := NewUserManager(users, &MockDataRepo{}, &MockResetRepo{}, clock)
	return &sessionFixture{
		session: NewSession(manager, auth.NewLoginTracker(bad, clock), tickets),
		users:   users,
		bad:     bad,
		jar:     jar,
		clock:   clock,
	}
}

func storedUser(t *testing.T, id int64, username, password string) *domain.User {
	t.Helper()
	u := domain.NewUser(username)
	u.ID = id
	require.NoError(t, u.SetPassword(password))
	return u
}

func TestAuthenticateSuccess(t *testing.T) {
	users := &MockUserRepo{}
	fx := newSessionFixture(t, users)
	alice := storedUser(t, 3, "alice", "hunter2")
	users.FindByUsernameFunc = func(username string) (*domain.User, error) {
		if username == "alice" {
			return alice, nil
		}
		return nil, nil
	}

	u, err := fx.session.Authenticate("alice", "hunter2")
	require.NoError(t, err)
	require.Equal(t, int64(3), u.ID)
	require.True(t, fx.jar.Exists("ticket"), "login must issue a ticket")
	require.Equal(t, u, fx.session.CurrentUser(), "authenticated user is memoized")
}

func TestAuthenticateUnknownUser(t *testing.T) {
	fx := newSessionFixture(t, nil)

	_, err := fx.session.Authenticate("ghost", "whatever")
	require.ErrorIs(t, err, models.ErrInvalidLogin)
	require.False(t, fx.jar.Exists("ticket"))
}

func TestAuthenticateWrongPasswordTracksFailure(t *testing.T) {
	users := &MockUserRepo{}
	fx := newSessionFixture(t, users)
	alice := storedUser(t, 3, "alice", "hunter2")
	users.FindByUsernameFunc = func(username string) (*domain.User, error) { return alice, nil }

	_, err := fx.session.Authenticate("alice", "wrong")
	require.ErrorIs(t, err, models.ErrInvalidLogin)
	require.Len(t, fx.bad.failures["alice"], 1)
}

func TestAuthenticateBansAfterRepeatedFailures(t *testing.T) {
	users := &MockUserRepo{}
	fx := newSessionFixture(t, users)
	alice := storedUser(t, 3, "alice", "hunter2")
	users.FindByUsernameFunc = func(username string) (*domain.User, error) { return alice, nil }

	for i := 0; i < 5; i++ {
		_, err := fx.session.Authenticate("alice", "wrong")
		require.ErrorIs(t, err, models.ErrInvalidLogin)
	}

	// the correct password no longer helps while the lock holds
	_, err := fx.session.Authenticate("alice", "hunter2")
	require.ErrorIs(t, err, models.ErrUserBanned)
}

func TestAuthenticateSuccessResetsLockCounter(t *testing.T) {
	users := &MockUserRepo{}
	fx := newSessionFixture(t, users)
	alice := storedUser(t, 3, "alice", "hunter2")
	users.FindByUsernameFunc = func(username string) (*domain.User, error) { return alice, nil }

	for i := 0; i < 4; i++ {
		_, err := fx.session.Authenticate("alice", "wrong")
		require.ErrorIs(t, err, models.ErrInvalidLogin)
	}

	_, err := fx.session.Authenticate("alice", "hunter2")
	require.NoError(t, err)
	require.Empty(t, fx.bad.failures["alice"])
}

func TestCurrentUserFromTicket(t *testing.T) {
	users := &MockUserRepo{}
	fx := newSessionFixture(t, users)
	alice := storedUser(t, 3, "alice", "hunter2")
	users.FindByUsernameFunc = func(username string) (*domain.User, error) { return alice, nil }

	_, err := fx.session.Authenticate("alice", "hunter2")
	require.NoError(t, err)

	// a later request sees only the cookie
	calls := 0
	users.FindByIDFunc = func(id int64) (*domain.User, error) {
		calls++
		require.Equal(t, int64(3), id)
		return alice, nil
	}
	next := newSessionFixture(t, users)
	next.jar.values = fx.jar.values

	u := next.session.CurrentUser()
	require.NotNil(t, u)
	require.Equal(t, "alice", u.Username)

	next.session.CurrentUser()
	require.Equal(t, 1, calls, "resolution happens once per request")
}

func TestCurrentUserTicketForMissingUser(t *testing.T) {
	users := &MockUserRepo{}
	fx := newSessionFixture(t, users)
	alice := storedUser(t, 3, "alice", "hunter2")
	users.FindByUsernameFunc = func(username string) (*domain.User, error) { return alice, nil }

	_, err := fx.session.Authenticate("alice", "hunter2")
	require.NoError(t, err)

	users.FindByIDFunc = func(id int64) (*domain.User, error) { return nil, nil }
	next := newSessionFixture(t, users)
	next.jar.values = fx.jar.values

	require.Nil(t, next.session.CurrentUser())
	require.Nil(t, next.session.CurrentUser(), "the miss is memoized too")
}

func TestCurrentUserWithoutTicket(t *testing.T) {
	fx := newSessionFixture(t, nil)

	require.Nil(t, fx.session.CurrentUser())
	require.False(t, fx.session.IsLoggedIn())
}

func TestSignOut(t *testing.T) {
	users := &MockUserRepo{}
	fx := newSessionFixture(t, users)
	alice := storedUser(t, 3, "alice", "hunter2")
	users.FindByUsernameFunc = func(username string) (*domain.User, error) { return alice, nil }

	_, err := fx.session.Authenticate("alice", "hunter2")
	require.NoError(t, err)

	fx.session.SignOut()
	require.False(t, fx.jar.Exists("ticket"))
	require.Nil(t, fx.session.CurrentUser())
	require.False(t, fx.session.IsLoggedIn())
}

func TestRegisterActivity(t *testing.T) {
	users := &MockUserRepo{}
	fx := newSessionFixture(t, users)
	alice := storedUser(t, 3, "alice", "hunter2")
	users.FindByUsernameFunc = func(username string) (*domain.User, error) { return alice, nil }

	var bumped int64
	users.UpdateLastActivityFunc = func(id int64, ts time.Time) error {
		bumped = id
		return nil
	}

	_, err := fx.session.Authenticate("alice", "hunter2")
	require.NoError(t, err)

	require.NoError(t, fx.session.RegisterActivity())
	require.Equal(t, int64(3), bumped)

	// anonymous sessions are a no-op
	anon := newSessionFixture(t, nil)
	require.NoError(t, anon.session.RegisterActivity())
}
