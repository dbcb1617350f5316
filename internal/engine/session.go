package engine

import (
	"log/slog"

	"github.com/skipperbent/pecee-legacy-models/internal/auth"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/domain"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/models"
)

// Session is the request-scoped authentication context. It memoizes the
// current user for the lifetime of one request and must never be shared
// across requests.
type Session struct {
	manager *UserManager
	tracker *auth.LoginTracker
	tickets *auth.TicketManager

	// RemoteAddr, when set by the caller, is recorded with failed attempts.
	RemoteAddr string

	loaded bool
	user   *domain.User
}

func NewSession(manager *UserManager, tracker *auth.LoginTracker, tickets *auth.TicketManager) *Session {
	return &Session{manager: manager, tracker: tracker, tickets: tickets}
}

// Authenticate verifies the credentials and issues a session ticket.
//
// The lockout gate runs before any credential work, so a banned identity is
// rejected without touching the password hash. Unknown usernames and wrong
// passwords both fail with models.ErrInvalidLogin so the two cases cannot be
// told apart.
func (s *Session) Authenticate(username, password string) (*domain.User, error) {
	locked, err := s.tracker.CheckBadLogin(username)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, models.ErrUserBanned
	}

	u, err := s.manager.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, models.ErrInvalidLogin
	}
	if !u.CheckPassword(password) {
		if err := s.tracker.Track(username, s.RemoteAddr); err != nil {
			slog.Error("Failed to track bad login", "username", username, "error", err)
		}
		return nil, models.ErrInvalidLogin
	}

	if err := s.tracker.Reset(username); err != nil {
		slog.Error("Failed to reset bad logins", "username", username, "error", err)
	}
	if err := s.tickets.Create(u.ID); err != nil {
		return nil, err
	}

	s.user = u
	s.loaded = true
	return u, nil
}

// CurrentUser resolves the user behind the session ticket, refreshing the
// ticket on success. The result is memoized, including the "no user" case: a
// valid-looking ticket pointing at a missing user yields nil without error.
func (s *Session) CurrentUser() *domain.User {
	if s.loaded {
		return s.user
	}
	s.loaded = true

	if !s.tickets.IsValid() {
		return nil
	}
	ticket, err := s.tickets.Decode()
	if err != nil {
		return nil
	}

	u, err := s.manager.GetByID(ticket.UserID)
	if err != nil {
		slog.Error("Failed to load ticket user", "userId", ticket.UserID, "error", err)
		return nil
	}
	if u == nil {
		return nil
	}

	if err := s.tickets.Refresh(u.ID); err != nil {
		slog.Error("Failed to refresh ticket", "userId", u.ID, "error", err)
	}
	s.user = u
	return u
}

// IsLoggedIn reports whether a live ticket exists. Like every validity check
// it may delete a stale cookie as a side effect.
func (s *Session) IsLoggedIn() bool {
	if s.loaded {
		return s.user != nil
	}
	return s.tickets.IsValid()
}

// RegisterActivity bumps last_activity for the current user, if any.
func (s *Session) RegisterActivity() error {
	u := s.CurrentUser()
	if u == nil {
		return nil
	}
	return s.manager.RegisterActivity(u.ID)
}

// SignOut deletes the ticket cookie and clears the memoized user.
func (s *Session) SignOut() {
	s.tickets.SignOut()
	s.user = nil
	s.loaded = true
}
