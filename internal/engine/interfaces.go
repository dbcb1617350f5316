package engine

import (
	"time"

	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/domain"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/models"
)

// UserRepo defines the interface for user persistence, matching repository.UserRepository.
type UserRepo interface {
	Save(u *domain.User) (int64, error)
	Update(u *domain.User) error
	FindByID(id int64) (*domain.User, error)
	FindByIDs(ids []int64) (*[]domain.User, error)
	FindByUsername(username string) (*domain.User, error)
	FindByKeyValue(key, value string) (*domain.User, error)
	UsernameExists(username string) (bool, error)
	SoftDelete(id int64) error
	UpdateLastActivity(id int64, ts time.Time) error
	Search(req models.SearchUsersRequest) (*[]domain.User, error)
}

// DataRepo defines the interface for extra-attribute persistence, matching
// repository.DataRepository.
type DataRepo interface {
	FindByOwnerID(ownerID interface{}) ([]models.DataRow, error)
	Sync(ownerID interface{}, changes models.ChangeSet) error
}

// ResetRepo defines the interface for password-reset persistence.
type ResetRepo interface {
	Replace(reset *domain.UserReset) error
	FindByKey(key string) (*domain.UserReset, error)
	DeleteByUser(userID int64) error
}

// FileRepo defines the interface for file persistence.
type FileRepo interface {
	Save(f *domain.File) error
	Update(f *domain.File) error
	FindByID(id string) (*domain.File, error)
	Delete(id string) error
	List(order string, limit, offset int64) (*[]domain.File, error)
}
