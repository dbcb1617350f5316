package engine

import (
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/core"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/domain"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/models"
)

// UserManager owns the user lifecycle: fixed columns through UserRepo, the
// attribute overlay through DataRepo, password-reset tokens through ResetRepo.
// Every save reconciles the overlay against the persisted user_data rows.
type UserManager struct {
	Users  UserRepo
	Data   DataRepo
	Resets ResetRepo
	clock  core.Clock
}

func NewUserManager(users UserRepo, data DataRepo, resets ResetRepo, clock core.Clock) *UserManager {
	return &UserManager{Users: users, Data: data, Resets: resets, clock: clock}
}

// Create inserts a new user. A non-deleted user with the same exact username
// fails with models.ErrUserExists before anything is written.
func (m *UserManager) Create(u *domain.User) error {
	exists, err := m.Users.UsernameExists(u.Username)
	if err != nil {
		return err
	}
	if exists {
		return models.ErrUserExists
	}

	id, err := m.Users.Save(u)
	if err != nil {
		return err
	}
	return m.Data.Sync(id, models.Reconcile(u.Data, nil))
}

// Update writes the fixed columns and reconciles the overlay against the
// stored extra-attribute rows. A nil overlay, as returned by Search and
// FindByIDs, means the extra data was never loaded and is left alone.
func (m *UserManager) Update(u *domain.User) error {
	if err := m.Users.Update(u); err != nil {
		return err
	}
	if u.Data == nil {
		return nil
	}
	persisted, err := m.Data.FindByOwnerID(u.ID)
	if err != nil {
		return err
	}
	return m.Data.Sync(u.ID, models.Reconcile(u.Data, persisted))
}

// Delete soft-deletes the user. The row and its extra data stay around.
func (m *UserManager) Delete(u *domain.User) error {
	if err := m.Users.SoftDelete(u.ID); err != nil {
		return err
	}
	u.Deleted = true
	return nil
}

// GetByID loads a non-deleted user and its overlay. Returns (nil, nil) if not found.
func (m *UserManager) GetByID(id int64) (*domain.User, error) {
	u, err := m.Users.FindByID(id)
	if err != nil || u == nil {
		return nil, err
	}
	if err := m.loadData(u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByUsername loads a non-deleted user and its overlay. Returns (nil, nil) if not found.
func (m *UserManager) GetByUsername(username string) (*domain.User, error) {
	u, err := m.Users.FindByUsername(username)
	if err != nil || u == nil {
		return nil, err
	}
	if err := m.loadData(u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetByKeyValue loads the first non-deleted user holding the extra-attribute
// pair, for lookups like email -> user.
func (m *UserManager) GetByKeyValue(key, value string) (*domain.User, error) {
	u, err := m.Users.FindByKeyValue(key, value)
	if err != nil || u == nil {
		return nil, err
	}
	if err := m.loadData(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Search lists users by the request filters. Only fixed columns are loaded,
// the overlays are not fetched per row.
func (m *UserManager) Search(req models.SearchUsersRequest) (*[]domain.User, error) {
	return m.Users.Search(req)
}

// RegisterActivity bumps the user's last_activity to now.
func (m *UserManager) RegisterActivity(userID int64) error {
	return m.Users.UpdateLastActivity(userID, m.clock.Now())
}

// CreateReset issues a password-reset token for the user, replacing any
// previous one.
func (m *UserManager) CreateReset(userID int64) (*domain.UserReset, error) {
	reset := domain.NewUserReset(userID)
	if err := m.Resets.Replace(reset); err != nil {
		return nil, err
	}
	return reset, nil
}

// ConfirmReset consumes a reset key and returns the owning user id. All
// tokens of that user are removed. Unknown keys fail with
// models.ErrResetNotFound.
func (m *UserManager) ConfirmReset(key string) (int64, error) {
	reset, err := m.Resets.FindByKey(key)
	if err != nil {
		return 0, err
	}
	if reset == nil {
		return 0, models.ErrResetNotFound
	}
	if err := m.Resets.DeleteByUser(reset.UserID); err != nil {
		return 0, err
	}
	return reset.UserID, nil
}

func (m *UserManager) loadData(u *domain.User) error {
	rows, err := m.Data.FindByOwnerID(u.ID)
	if err != nil {
		return err
	}
	u.Data = models.NewDataCollection(domain.UserColumns...)
	for _, row := range rows {
		u.Data.Set(row.Key, row.Value)
	}
	return nil
}
