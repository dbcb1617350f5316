package domain

import (
	"database/sql"

	"github.com/google/uuid"
)

// UserReset is a password-reset token row. A user has at most one live token,
// creating a new one replaces the previous.
type UserReset struct {
	ID      int64
	UserID  int64
	Key     string
	Created sql.NullTime
}

func NewUserReset(userID int64) *UserReset {
	return &UserReset{
		UserID: userID,
		Key:    uuid.NewString(),
	}
}
