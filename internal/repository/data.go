package repository

import (
	"database/sql"

	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/models"
)

// DataRepository persists the extra-attribute rows of one auxiliary table.
// The same type serves user_data and file_data, only the table and owner
// column differ. Owner ids are int64 for users and guid strings for files,
// so they are passed through untyped.
type DataRepository struct {
	db          *sql.DB
	table       string
	ownerColumn string
}

func NewUserDataRepository(db *sql.DB) *DataRepository {
	return &DataRepository{db: db, table: "user_data", ownerColumn: "user_id"}
}

func NewFileDataRepository(db *sql.DB) *DataRepository {
	return &DataRepository{db: db, table: "file_data", ownerColumn: "file_id"}
}

// FindByOwnerID returns all extra-attribute rows of one entity, oldest first.
func (r *DataRepository) FindByOwnerID(ownerID interface{}) ([]models.DataRow, error) {
	query := `
        SELECT id, ` + quoteIdent("key") + `, value
        FROM ` + r.table + `
        WHERE ` + r.ownerColumn + ` = ` + placeholder(1) + `
        ORDER BY id ASC
    `
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.DataRow, 0)
	for rows.Next() {
		var row models.DataRow
		if err := rows.Scan(&row.ID, &row.Key, &row.Value); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Sync applies a reconciliation change set for one entity in a single
// transaction, so a mid-batch failure never leaves the rows half migrated.
func (r *DataRepository) Sync(ownerID interface{}, changes models.ChangeSet) error {
	if changes.Empty() {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	updateQuery := `UPDATE ` + r.table + ` SET value = ` + placeholder(1) + ` WHERE id = ` + placeholder(2)
	for _, row := range changes.Updates {
		if _, err := tx.Exec(updateQuery, row.Value, row.ID); err != nil {
			return err
		}
	}

	insertQuery := `
        INSERT INTO ` + r.table + ` (` + r.ownerColumn + `, ` + quoteIdent("key") + `, value)
        VALUES (` + placeholder(1) + `,` + placeholder(2) + `,` + placeholder(3) + `)
    `
	for _, row := range changes.Inserts {
		if _, err := tx.Exec(insertQuery, ownerID, row.Key, row.Value); err != nil {
			return err
		}
	}

	deleteQuery := `DELETE FROM ` + r.table + ` WHERE id = ` + placeholder(1)
	for _, row := range changes.Deletes {
		if _, err := tx.Exec(deleteQuery, row.ID); err != nil {
			return err
		}
	}

	return tx.Commit()
}
