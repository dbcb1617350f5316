package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/core"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/domain"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/models"
)

const userSelectColumns = "u.id, u.username, u.password, u.last_activity, u.admin_level, u.deleted, u.created, u.updated"

// UserRepository provides persistence methods for the users table. It only
// touches fixed columns, the extra-attribute rows live in user_data and are
// handled by DataRepository.
type UserRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewUserRepository(db *sql.DB, clock core.Clock) *UserRepository {
	return &UserRepository{db: db, clock: clock}
}

// Save inserts a new user and returns its generated id.
// It will set Created and LastActivity to now if they are not provided.
func (r *UserRepository) Save(u *domain.User) (int64, error) {
	if !u.Created.Valid {
		u.Created = sql.NullTime{Time: r.clock.Now().UTC(), Valid: true}
	}
	if !u.LastActivity.Valid {
		u.LastActivity = u.Created
	}

	base := `
        INSERT INTO users (username, password, last_activity, admin_level, deleted, created)
        VALUES (` + placeholder(1) + `,` + placeholder(2) + `,` + placeholder(3) + `,` + placeholder(4) + `,` + placeholder(5) + `,` + placeholder(6) + `)
    `

	var id int64
	var err error
	if supportsReturning() {
		err = r.db.QueryRow(
			base+" RETURNING id",
			u.Username,
			u.Password,
			formatDateInDatabaseNull(u.LastActivity),
			u.AdminLevel,
			u.Deleted,
			formatDateInDatabaseNull(u.Created),
		).Scan(&id)
	} else {
		res, e := r.db.Exec(base,
			u.Username,
			u.Password,
			formatDateInDatabaseNull(u.LastActivity),
			u.AdminLevel,
			u.Deleted,
			formatDateInDatabaseNull(u.Created),
		)
		if e != nil {
			err = e
		} else {
			newID, e2 := res.LastInsertId()
			if e2 != nil {
				err = e2
			} else {
				id = newID
			}
		}
	}
	if err != nil {
		return 0, err
	}
	u.ID = id
	return id, nil
}

// Update writes the fixed columns of an existing user and bumps updated.
func (r *UserRepository) Update(u *domain.User) error {
	u.Updated = sql.NullTime{Time: r.clock.Now().UTC(), Valid: true}
	query := `
        UPDATE users
        SET username = ` + placeholder(1) + `, password = ` + placeholder(2) + `, last_activity = ` + placeholder(3) + `,
            admin_level = ` + placeholder(4) + `, deleted = ` + placeholder(5) + `, updated = ` + placeholder(6) + `
        WHERE id = ` + placeholder(7) + `
    `
	_, err := r.db.Exec(query,
		u.Username,
		u.Password,
		formatDateInDatabaseNull(u.LastActivity),
		u.AdminLevel,
		u.Deleted,
		formatDateInDatabaseNull(u.Updated),
		u.ID,
	)
	return err
}

// FindByID fetches a non-deleted user by id. Returns (nil, nil) if not found.
func (r *UserRepository) FindByID(id int64) (*domain.User, error) {
	query := `
        SELECT ` + userSelectColumns + `
        FROM users u
        WHERE u.id = ` + placeholder(1) + ` AND u.deleted = ` + placeholder(2) + `
        LIMIT 1
    `
	return r.queryOne(query, id, false)
}

// FindByUsername fetches a non-deleted user by exact username. Returns (nil, nil) if not found.
func (r *UserRepository) FindByUsername(username string) (*domain.User, error) {
	query := `
        SELECT ` + userSelectColumns + `
        FROM users u
        WHERE u.username = ` + placeholder(1) + ` AND u.deleted = ` + placeholder(2) + `
        LIMIT 1
    `
	return r.queryOne(query, username, false)
}

// FindByIDs fetches users by id regardless of the deleted flag.
func (r *UserRepository) FindByIDs(ids []int64) (*[]domain.User, error) {
	if len(ids) == 0 {
		empty := make([]domain.User, 0)
		return &empty, nil
	}
	binds := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		binds = append(binds, placeholder(i+1))
		args = append(args, id)
	}
	query := `
        SELECT ` + userSelectColumns + `
        FROM users u
        WHERE u.id IN (` + strings.Join(binds, ",") + `)
        ORDER BY u.id ASC
    `
	return r.queryMany(query, args...)
}

// FindByKeyValue fetches the first non-deleted user holding the exact
// extra-attribute pair in user_data.
func (r *UserRepository) FindByKeyValue(key, value string) (*domain.User, error) {
	query := `
        SELECT ` + userSelectColumns + `
        FROM users u
        JOIN user_data ud ON ud.user_id = u.id
        WHERE ud.` + quoteIdent("key") + ` = ` + placeholder(1) + ` AND ud.value = ` + placeholder(2) + ` AND u.deleted = ` + placeholder(3) + `
        LIMIT 1
    `
	return r.queryOne(query, key, value, false)
}

// UsernameExists reports whether a non-deleted user with this exact username exists.
func (r *UserRepository) UsernameExists(username string) (bool, error) {
	query := `
        SELECT u.username
        FROM users u
        WHERE u.username = ` + placeholder(1) + ` AND u.deleted = ` + placeholder(2) + `
        LIMIT 1
    `
	var found string
	err := r.db.QueryRow(query, username, false).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SoftDelete flags the user as deleted. The row and its extra data stay.
func (r *UserRepository) SoftDelete(id int64) error {
	query := `
        UPDATE users
        SET deleted = ` + placeholder(1) + `, updated = ` + placeholder(2) + `
        WHERE id = ` + placeholder(3) + `
    `
	_, err := r.db.Exec(query, true, formatDateInDatabase(r.clock.Now()), id)
	return err
}

// UpdateLastActivity bumps last_activity for the user.
func (r *UserRepository) UpdateLastActivity(id int64, ts time.Time) error {
	query := `
        UPDATE users
        SET last_activity = ` + placeholder(1) + `
        WHERE id = ` + placeholder(2) + `
    `
	_, err := r.db.Exec(query, formatDateInDatabase(ts), id)
	return err
}

// Search lists users filtered by admin level, deleted flag and a free-text
// query matching the username or any extra-data value.
func (r *UserRepository) Search(req models.SearchUsersRequest) (*[]domain.User, error) {
	where := []string{"1=1"}
	args := make([]interface{}, 0, 4)
	bind := func(arg interface{}) string {
		args = append(args, arg)
		return placeholder(len(args))
	}

	if req.AdminLevel != nil {
		where = append(where, "u.admin_level = "+bind(*req.AdminLevel))
	}
	if req.Deleted != nil {
		where = append(where, "u.deleted = "+bind(*req.Deleted))
	}
	if req.Query != "" {
		like := "%" + req.Query + "%"
		where = append(where,
			"(u.username LIKE "+bind(like)+
				" OR EXISTS (SELECT 1 FROM user_data ud WHERE ud.user_id = u.id AND ud.value LIKE "+bind(like)+"))")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	query := `
        SELECT ` + userSelectColumns + `
        FROM users u
        WHERE ` + strings.Join(where, " AND ") + `
        ORDER BY ` + req.OrderOrDefault() + `
        ` + fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)

	return r.queryMany(query, args...)
}

func (r *UserRepository) queryOne(query string, args ...interface{}) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(query, args...).Scan(
		&u.ID,
		&u.Username,
		&u.Password,
		&u.LastActivity,
		&u.AdminLevel,
		&u.Deleted,
		&u.Created,
		&u.Updated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) queryMany(query string, args ...interface{}) (*[]domain.User, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID,
			&u.Username,
			&u.Password,
			&u.LastActivity,
			&u.AdminLevel,
			&u.Deleted,
			&u.Created,
			&u.Updated,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &users, nil
}
