package engine

import (
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/domain"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/models"
)

// FileManager owns the uploaded-file metadata lifecycle, mirroring
// UserManager but with a guid primary key and hard deletes.
type FileManager struct {
	Files FileRepo
	Data  DataRepo
}

func NewFileManager(files FileRepo, data DataRepo) *FileManager {
	return &FileManager{Files: files, Data: data}
}

// Create inserts the file row and materializes its overlay.
func (m *FileManager) Create(f *domain.File) error {
	if err := m.Files.Save(f); err != nil {
		return err
	}
	return m.Data.Sync(f.ID, models.Reconcile(f.Data, nil))
}

// Update writes the fixed columns and reconciles the overlay against the
// stored file_data rows. A nil overlay, as returned by List, means the extra
// data was never loaded and is left alone.
func (m *FileManager) Update(f *domain.File) error {
	if err := m.Files.Update(f); err != nil {
		return err
	}
	if f.Data == nil {
		return nil
	}
	persisted, err := m.Data.FindByOwnerID(f.ID)
	if err != nil {
		return err
	}
	return m.Data.Sync(f.ID, models.Reconcile(f.Data, persisted))
}

// Delete hard-deletes the file and its extra data.
func (m *FileManager) Delete(f *domain.File) error {
	return m.Files.Delete(f.ID)
}

// GetByID loads a file and its overlay. Returns (nil, nil) if not found.
func (m *FileManager) GetByID(id string) (*domain.File, error) {
	f, err := m.Files.FindByID(id)
	if err != nil || f == nil {
		return nil, err
	}
	rows, err := m.Data.FindByOwnerID(f.ID)
	if err != nil {
		return nil, err
	}
	f.Data = models.NewDataCollection(domain.FileColumns...)
	for _, row := range rows {
		f.Data.Set(row.Key, row.Value)
	}
	return f, nil
}

// List returns files ordered by creation date. Overlays are not fetched per row.
func (m *FileManager) List(order string, limit, offset int64) (*[]domain.File, error) {
	return m.Files.List(order, limit, offset)
}
