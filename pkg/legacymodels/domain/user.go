package domain

import (
	"database/sql"

	"golang.org/x/crypto/bcrypt"

	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/models"
)

// UserColumns are the fixed columns of the users table. Overlay attributes
// with one of these names are ignored.
var UserColumns = []string{
	"id",
	"username",
	"password",
	"last_activity",
	"admin_level",
	"deleted",
	"created",
	"updated",
}

// User is a user account row plus its sparse attribute overlay. Deleted is a
// soft flag, deleted users keep their rows and extra data.
type User struct {
	ID           int64
	Username     string
	Password     string // bcrypt hash
	LastActivity sql.NullTime
	AdminLevel   int
	Deleted      bool
	Created      sql.NullTime
	Updated      sql.NullTime

	Data *models.DataCollection
}

func NewUser(username string) *User {
	return &User{
		Username: username,
		Data:     models.NewDataCollection(UserColumns...),
	}
}

// SetPassword hashes the plaintext password with bcrypt and stores the hash.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// CheckPassword verifies the plaintext password against the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

func (u *User) SetEmail(email string) {
	u.Data.Set("email", email)
}

func (u *User) Email() string {
	email, _ := u.Data.Get("email")
	return email
}
