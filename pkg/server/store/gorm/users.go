package gorm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store"
)

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db *gorm.DB
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db}
}

// CreateUser stores a new user.
func (s *UsersStore) CreateUser(ctx context.Context, user *model.User) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", user.Email).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return store.ErrDuplicateEmail
	}
	return s.db.WithContext(ctx).Create(user).Error
}

// FindUser returns a user by id.
func (s *UsersStore) FindUser(ctx context.Context, userID uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByEmail returns a user by email.
func (s *UsersStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListShareableUsers returns users with the user role, other than the actor.
func (s *UsersStore) ListShareableUsers(ctx context.Context, actorID uint) ([]store.UserSummary, error) {
	users := []store.UserSummary{}
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Select("id, name, email").
		Where("role = ? AND id <> ?", model.RoleUser, actorID).
		Order("id").
		Scan(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// MissingUserIDs returns the ids in userIDs that match no user.
func (s *UsersStore) MissingUserIDs(ctx context.Context, userIDs []uint) ([]uint, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	var found []uint
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id IN ?", userIDs).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}

	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}

	var missing []uint
	for _, id := range userIDs {
		if !known[id] {
			missing = append(missing, id)
			known[id] = true
		}
	}
	return missing, nil
}
