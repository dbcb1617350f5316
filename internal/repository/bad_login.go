package repository

import (
	"database/sql"
	"time"
)

// BadLoginRepository records failed login attempts per username. Counting is
// done in SQL so concurrent bursts against the same identity serialize in the
// store instead of racing in memory.
type BadLoginRepository struct {
	db *sql.DB
}

func NewBadLoginRepository(db *sql.DB) *BadLoginRepository {
	return &BadLoginRepository{db: db}
}

// Track records one failed attempt for the identity.
func (r *BadLoginRepository) Track(username, ip string, now time.Time) error {
	query := `
        INSERT INTO user_bad_login (username, ip, created)
        VALUES (` + placeholder(1) + `,` + placeholder(2) + `,` + placeholder(3) + `)
    `
	_, err := r.db.Exec(query, username, ip, formatDateInDatabase(now))
	return err
}

// CountSince counts failures for the identity inside the lockout window.
func (r *BadLoginRepository) CountSince(username string, since time.Time) (int, error) {
	query := `
        SELECT COUNT(*)
        FROM user_bad_login
        WHERE username = ` + placeholder(1) + ` AND created >= ` + placeholder(2) + `
    `
	var count int
	err := r.db.QueryRow(query, username, formatDateInDatabase(since)).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Reset clears all recorded failures for the identity.
func (r *BadLoginRepository) Reset(username string) error {
	query := `DELETE FROM user_bad_login WHERE username = ` + placeholder(1)
	_, err := r.db.Exec(query, username)
	return err
}
