package repository

import (
	"database/sql"

	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/core"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/domain"
)

// UserResetRepository persists password-reset tokens.
type UserResetRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewUserResetRepository(db *sql.DB, clock core.Clock) *UserResetRepository {
	return &UserResetRepository{db: db, clock: clock}
}

// Replace removes any previous token of the user and inserts the new one in
// a single transaction, so a user never holds two live tokens.
func (r *UserResetRepository) Replace(reset *domain.UserReset) error {
	if !reset.Created.Valid {
		reset.Created = sql.NullTime{Time: r.clock.Now().UTC(), Valid: true}
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	cleanQuery := `DELETE FROM user_reset WHERE user_id = ` + placeholder(1)
	if _, err := tx.Exec(cleanQuery, reset.UserID); err != nil {
		return err
	}

	insertQuery := `
        INSERT INTO user_reset (user_id, ` + quoteIdent("key") + `, created)
        VALUES (` + placeholder(1) + `,` + placeholder(2) + `,` + placeholder(3) + `)
    `
	if _, err := tx.Exec(insertQuery, reset.UserID, reset.Key, formatDateInDatabaseNull(reset.Created)); err != nil {
		return err
	}

	return tx.Commit()
}

// FindByKey fetches a reset token by its key. Returns (nil, nil) if not found.
func (r *UserResetRepository) FindByKey(key string) (*domain.UserReset, error) {
	query := `
        SELECT id, user_id, ` + quoteIdent("key") + `, created
        FROM user_reset
        WHERE ` + quoteIdent("key") + ` = ` + placeholder(1) + `
        LIMIT 1
    `
	var reset domain.UserReset
	err := r.db.QueryRow(query, key).Scan(
		&reset.ID,
		&reset.UserID,
		&reset.Key,
		&reset.Created,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reset, nil
}

// DeleteByUser removes every token of the user.
func (r *UserResetRepository) DeleteByUser(userID int64) error {
	query := `DELETE FROM user_reset WHERE user_id = ` + placeholder(1)
	_, err := r.db.Exec(query, userID)
	return err
}
