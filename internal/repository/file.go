package repository

import (
	"database/sql"
	"fmt"

	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/core"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/domain"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/models"
)

const fileSelectColumns = "f.id, f.filename, f.original_filename, f.path, f.type, f.bytes, f.created, f.updated"

// FileRepository provides persistence methods for the files table.
type FileRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewFileRepository(db *sql.DB, clock core.Clock) *FileRepository {
	return &FileRepository{db: db, clock: clock}
}

// Save inserts a new file row. The guid id must already be set.
func (r *FileRepository) Save(f *domain.File) error {
	if !f.Created.Valid {
		f.Created = sql.NullTime{Time: r.clock.Now().UTC(), Valid: true}
	}

	query := `
        INSERT INTO files (id, filename, original_filename, path, type, bytes, created)
        VALUES (` + placeholder(1) + `,` + placeholder(2) + `,` + placeholder(3) + `,` + placeholder(4) + `,` + placeholder(5) + `,` + placeholder(6) + `,` + placeholder(7) + `)
    `
	_, err := r.db.Exec(query,
		f.ID,
		f.Filename,
		f.OriginalFilename,
		f.Path,
		f.Type,
		f.Bytes,
		formatDateInDatabaseNull(f.Created),
	)
	return err
}

// Update writes the fixed columns of an existing file and bumps updated.
func (r *FileRepository) Update(f *domain.File) error {
	f.Updated = sql.NullTime{Time: r.clock.Now().UTC(), Valid: true}
	query := `
        UPDATE files
        SET filename = ` + placeholder(1) + `, original_filename = ` + placeholder(2) + `, path = ` + placeholder(3) + `,
            type = ` + placeholder(4) + `, bytes = ` + placeholder(5) + `, updated = ` + placeholder(6) + `
        WHERE id = ` + placeholder(7) + `
    `
	_, err := r.db.Exec(query,
		f.Filename,
		f.OriginalFilename,
		f.Path,
		f.Type,
		f.Bytes,
		formatDateInDatabaseNull(f.Updated),
		f.ID,
	)
	return err
}

// FindByID fetches a file by guid. Returns (nil, nil) if not found.
func (r *FileRepository) FindByID(id string) (*domain.File, error) {
	query := `
        SELECT ` + fileSelectColumns + `
        FROM files f
        WHERE f.id = ` + placeholder(1) + `
        LIMIT 1
    `
	var f domain.File
	var fileType sql.NullString // the column is nullable
	err := r.db.QueryRow(query, id).Scan(
		&f.ID,
		&f.Filename,
		&f.OriginalFilename,
		&f.Path,
		&fileType,
		&f.Bytes,
		&f.Created,
		&f.Updated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.Type = fileType.String
	return &f, nil
}

// Delete removes the file row and all of its extra data in one transaction.
// Files are hard-deleted, unlike users.
func (r *FileRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM file_data WHERE file_id = `+placeholder(1), id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM files WHERE id = `+placeholder(1), id); err != nil {
		return err
	}

	return tx.Commit()
}

// List returns files ordered by creation date with paging.
func (r *FileRepository) List(order string, limit, offset int64) (*[]domain.File, error) {
	valid := false
	for _, o := range models.FileOrders {
		if order == o {
			valid = true
			break
		}
	}
	if !valid {
		order = models.OrderFileCreatedDesc
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
        SELECT ` + fileSelectColumns + `
        FROM files f
        ORDER BY ` + order + `
        ` + fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]domain.File, 0)
	for rows.Next() {
		var f domain.File
		var fileType sql.NullString
		if err := rows.Scan(
			&f.ID,
			&f.Filename,
			&f.OriginalFilename,
			&f.Path,
			&fileType,
			&f.Bytes,
			&f.Created,
			&f.Updated,
		); err != nil {
			return nil, err
		}
		f.Type = fileType.String
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &files, nil
}
