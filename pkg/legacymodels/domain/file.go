package domain

import (
	"database/sql"
	"mime"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/models"
)

// FileColumns are the fixed columns of the files table.
var FileColumns = []string{
	"id",
	"filename",
	"original_filename",
	"path",
	"type",
	"bytes",
	"created",
	"updated",
}

// File is uploaded-file metadata plus its sparse attribute overlay. The id is
// a generated guid, not an auto-increment.
type File struct {
	ID               string
	Filename         string
	OriginalFilename string
	Path             string
	Type             string
	Bytes            int64
	Created          sql.NullTime
	Updated          sql.NullTime

	Data *models.DataCollection
}

// NewFile builds file metadata from a path on disk. Content type is guessed
// from the extension and size is probed when the file exists.
func NewFile(path string) *File {
	f := &File{
		ID:               uuid.NewString(),
		Filename:         filepath.Base(path),
		OriginalFilename: filepath.Base(path),
		Path:             filepath.Dir(path),
		Type:             mime.TypeByExtension(filepath.Ext(path)),
		Data:             models.NewDataCollection(FileColumns...),
	}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		f.Bytes = info.Size()
	}
	return f
}

func (f *File) FullPath() string {
	return filepath.Join(f.Path, f.Filename)
}
