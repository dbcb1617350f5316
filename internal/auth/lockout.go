package auth

import (
	"time"

	"github.com/skipperbent/pecee-legacy-models/internal/config"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/core"
)

// BadLoginRepo defines the interface for failed-login persistence, matching
// repository.BadLoginRepository.
type BadLoginRepo interface {
	Track(username, ip string, now time.Time) error
	CountSince(username string, since time.Time) (int, error)
	Reset(username string) error
}

// LoginTracker decides whether an identity is locked out of login. It runs
// before credential verification so a locked identity never reaches the
// password hash comparison.
type LoginTracker struct {
	repo       BadLoginRepo
	clock      core.Clock
	maxRetries int
	window     time.Duration
}

func NewLoginTracker(repo BadLoginRepo, clock core.Clock) *LoginTracker {
	return &LoginTracker{
		repo:       repo,
		clock:      clock,
		maxRetries: config.GetSystemSettingInteger(config.MAX_LOGIN_RETRIES),
		window:     time.Duration(config.GetSystemSettingInteger(config.LOGIN_RETRY_WINDOW_MINUTES)) * time.Minute,
	}
}

// CheckBadLogin reports whether the identity is currently locked out. The
// lock releases on its own once the window slides past the failures.
func (t *LoginTracker) CheckBadLogin(username string) (bool, error) {
	since := t.clock.Now().Add(-t.window)
	count, err := t.repo.CountSince(username, since)
	if err != nil {
		return false, err
	}
	return count >= t.maxRetries, nil
}

// Track records one failed attempt.
func (t *LoginTracker) Track(username, ip string) error {
	return t.repo.Track(username, ip, t.clock.Now())
}

// Reset clears the failure history after a successful login.
func (t *LoginTracker) Reset(username string) error {
	return t.repo.Reset(username)
}
