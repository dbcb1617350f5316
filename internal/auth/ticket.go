package auth

import (
	"strconv"
	"strings"
	"time"

	"github.com/skipperbent/pecee-legacy-models/internal/config"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/core"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/models"
)

// CookieJar is the cookie transport the ticket lives in. One jar serves one
// request.
type CookieJar interface {
	Exists(name string) bool
	Get(name string) string
	Set(name, value string, expires time.Time)
	Delete(name string)
}

// Ticket is the decoded session ticket. It is never persisted, its only
// durable form is the encrypted cookie value.
type Ticket struct {
	UserID int64
	Expiry time.Time
}

// TicketManager creates, decodes and validates the encrypted session ticket
// cookie. Validity checks are not read-only: any check that finds the ticket
// invalid deletes the cookie.
type TicketManager struct {
	cookies       CookieJar
	clock         core.Clock
	key           []byte
	cookieName    string
	expireMinutes int
}

// NewTicketManager fails when the application secret is empty, there is no
// default secret.
func NewTicketManager(cookies CookieJar, clock core.Clock, secret string) (*TicketManager, error) {
	key, err := DeriveTicketKey(secret)
	if err != nil {
		return nil, err
	}
	return &TicketManager{
		cookies:       cookies,
		clock:         clock,
		key:           key,
		cookieName:    config.GetSystemSettingString(config.TICKET_COOKIE_NAME),
		expireMinutes: config.GetSystemSettingInteger(config.TICKET_EXPIRE_MINUTES),
	}, nil
}

// Create replaces any existing ticket with a fresh one expiring
// TICKET_EXPIRE_MINUTES from now.
func (t *TicketManager) Create(userID int64) error {
	t.cookies.Delete(t.cookieName)

	expiry := t.clock.Now().Add(time.Duration(t.expireMinutes) * time.Minute)
	plain := strconv.FormatInt(userID, 10) + "|" + expiry.UTC().Format(time.RFC3339)
	token, err := Encrypt(t.key, plain)
	if err != nil {
		return err
	}

	t.cookies.Set(t.cookieName, token, expiry)
	return nil
}

// Refresh re-issues the ticket with a new expiry, implementing sliding
// expiration.
func (t *TicketManager) Refresh(userID int64) error {
	return t.Create(userID)
}

// Decode reads and decrypts the ticket cookie. models.ErrNoTicket when the
// cookie is absent, models.ErrTicketDecode when it cannot be decrypted or
// does not carry exactly userId|expiry.
func (t *TicketManager) Decode() (*Ticket, error) {
	if !t.cookies.Exists(t.cookieName) {
		return nil, models.ErrNoTicket
	}

	plain, err := Decrypt(t.key, t.cookies.Get(t.cookieName))
	if err != nil {
		return nil, models.ErrTicketDecode
	}

	parts := strings.Split(plain, "|")
	if len(parts) != 2 {
		return nil, models.ErrTicketDecode
	}
	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, models.ErrTicketDecode
	}
	expiry, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return nil, models.ErrTicketDecode
	}

	return &Ticket{UserID: userID, Expiry: expiry}, nil
}

// IsValid reports whether a live ticket exists. A malformed or expired
// ticket is deleted from the jar as a side effect.
func (t *TicketManager) IsValid() bool {
	ticket, err := t.Decode()
	if err != nil {
		if err != models.ErrNoTicket {
			t.cookies.Delete(t.cookieName)
		}
		return false
	}
	if t.expired(ticket) {
		t.cookies.Delete(t.cookieName)
		return false
	}
	return true
}

// SignOut deletes the ticket cookie unconditionally.
func (t *TicketManager) SignOut() {
	t.cookies.Delete(t.cookieName)
}

// expired compares at minute granularity.
func (t *TicketManager) expired(ticket *Ticket) bool {
	now := t.clock.Now().Truncate(time.Minute)
	return !now.Before(ticket.Expiry.Truncate(time.Minute))
}
