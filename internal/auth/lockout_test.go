package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// memoryBadLoginRepo implements BadLoginRepo in memory for testing.
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

func newTestTracker() (*LoginTracker, *memoryBadLoginRepo, *fakeClock) {
	repo := newMemoryBadLoginRepo()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return NewLoginTracker(repo, clock), repo, clock
}

func TestCheckBadLoginBelowThreshold(t *testing.T) {
	tracker, _, _ := newTestTracker()

	for i := 0; i < 4; i++ {
		require.NoError(t, tracker.Track("alice", "10.0.0.1"))
	}

	locked, err := tracker.CheckBadLogin("alice")
	require.NoError(t, err)
	require.False(t, locked)
}

func TestCheckBadLoginAtThreshold(t *testing.T) {
	tracker, _, _ := newTestTracker()

	for i := 0; i < 5; i++ {
		require.NoError(t, tracker.Track("alice", "10.0.0.1"))
	}

	locked, err := tracker.CheckBadLogin("alice")
	require.NoError(t, err)
	require.True(t, locked)

	// other identities are unaffected
	locked, err = tracker.CheckBadLogin("bob")
	require.NoError(t, err)
	require.False(t, locked)
}

func TestCheckBadLoginWindowSlides(t *testing.T) {
	tracker, _, clock := newTestTracker()

	for i := 0; i < 5; i++ {
		require.NoError(t, tracker.Track("alice", "10.0.0.1"))
	}

	clock.Advance(16 * time.Minute)

	locked, err := tracker.CheckBadLogin("alice")
	require.NoError(t, err)
	require.False(t, locked, "lock must release once the window passes")
}

func TestResetClearsFailures(t *testing.T) {
	tracker, _, _ := newTestTracker()

	for i := 0; i < 5; i++ {
		require.NoError(t, tracker.Track("alice", "10.0.0.1"))
	}
	require.NoError(t, tracker.Reset("alice"))

	locked, err := tracker.CheckBadLogin("alice")
	require.NoError(t, err)
	require.False(t, locked)
}
