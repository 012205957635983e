package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/access"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/identity"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store"
)

// MockPasswordsStore implements store.PasswordsStore for testing using testify/mock
type MockPasswordsStore struct {
	mock.Mock
}

func NewMockPasswordsStore() *MockPasswordsStore {
	return &MockPasswordsStore{}
}

func (m *MockPasswordsStore) ListVisible(ctx context.Context, actor *identity.Identity) (access.View, error) {
	args := m.Called(actor.UserID)
	return args.Get(0).(access.View), args.Error(1)
}

func (m *MockPasswordsStore) PasswordExists(ctx context.Context, passwordID uint) (bool, error) {
	args := m.Called(passwordID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPasswordsStore) FetchPassword(ctx context.Context, actor *identity.Identity, passwordID uint) (*store.PasswordDetail, error) {
	args := m.Called(actor.UserID, passwordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.PasswordDetail), args.Error(1)
}

func (m *MockPasswordsStore) CreatePassword(ctx context.Context, actor *identity.Identity, in store.NewPassword) (*store.CreatedPassword, error) {
	args := m.Called(actor.UserID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.CreatedPassword), args.Error(1)
}

func (m *MockPasswordsStore) UpdatePassword(ctx context.Context, actor *identity.Identity, passwordID uint, in store.PasswordChanges) (*store.UpdatedPassword, error) {
	args := m.Called(actor.UserID, passwordID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.UpdatedPassword), args.Error(1)
}

func (m *MockPasswordsStore) DeletePassword(ctx context.Context, passwordID uint) error {
	args := m.Called(passwordID)
	return args.Error(0)
}

func (m *MockPasswordsStore) ChangeGroup(ctx context.Context, passwordID uint, fromGroupID, toGroupID *uint) error {
	args := m.Called(passwordID, fromGroupID, toGroupID)
	return args.Error(0)
}

func (m *MockPasswordsStore) SetPermitted(ctx context.Context, passwordID, userID uint, permitted bool) (*store.Toggle, error) {
	args := m.Called(passwordID, userID, permitted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Toggle), args.Error(1)
}

func (m *MockPasswordsStore) AllowedUsers(ctx context.Context, actor *identity.Identity, passwordID uint) ([]uint, error) {
	args := m.Called(actor.UserID, passwordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockPasswordsStore) PasswordNameTaken(ctx context.Context, ownerID uint, name string, ignoreID uint) (bool, error) {
	args := m.Called(ownerID, name, ignoreID)
	return args.Bool(0), args.Error(1)
}

// MockGroupsStore implements store.GroupsStore for testing using testify/mock
type MockGroupsStore struct {
	mock.Mock
}

func NewMockGroupsStore() *MockGroupsStore {
	return &MockGroupsStore{}
}

func (m *MockGroupsStore) ListGroups(ctx context.Context, actor *identity.Identity) ([]store.Group, error) {
	args := m.Called(actor.UserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Group), args.Error(1)
}

func (m *MockGroupsStore) GroupExists(ctx context.Context, groupID uint) (bool, error) {
	args := m.Called(groupID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupsStore) FetchGroup(ctx context.Context, groupID uint) (*store.Group, error) {
	args := m.Called(groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Group), args.Error(1)
}

func (m *MockGroupsStore) CreateGroup(ctx context.Context, actor *identity.Identity, name string) (*store.Group, error) {
	args := m.Called(actor.UserID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Group), args.Error(1)
}

func (m *MockGroupsStore) RenameGroup(ctx context.Context, groupID uint, name string) (*store.Group, error) {
	args := m.Called(groupID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Group), args.Error(1)
}

func (m *MockGroupsStore) DeleteGroup(ctx context.Context, groupID uint) error {
	args := m.Called(groupID)
	return args.Error(0)
}

func (m *MockGroupsStore) GroupNameTaken(ctx context.Context, ownerID uint, name string, ignoreID uint) (bool, error) {
	args := m.Called(ownerID, name, ignoreID)
	return args.Bool(0), args.Error(1)
}

// MockUsersStore implements store.UsersStore for testing using testify/mock
type MockUsersStore struct {
	mock.Mock
}

func NewMockUsersStore() *MockUsersStore {
	return &MockUsersStore{}
}

func (m *MockUsersStore) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUsersStore) FindUser(ctx context.Context, userID uint) (*model.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) ListShareableUsers(ctx context.Context, actorID uint) ([]store.UserSummary, error) {
	args := m.Called(actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.UserSummary), args.Error(1)
}

func (m *MockUsersStore) MissingUserIDs(ctx context.Context, userIDs []uint) ([]uint, error) {
	args := m.Called(userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

// MockAuthzStore implements store.AuthzStore for testing using testify/mock
type MockAuthzStore struct {
	mock.Mock
}

func NewMockAuthzStore() *MockAuthzStore {
	return &MockAuthzStore{}
}

func (m *MockAuthzStore) OwnsPassword(ctx context.Context, userID, passwordID uint) bool {
	args := m.Called(userID, passwordID)
	return args.Bool(0)
}

func (m *MockAuthzStore) CanViewPassword(ctx context.Context, actor *identity.Identity, passwordID uint) bool {
	args := m.Called(actor.UserID, passwordID)
	return args.Bool(0)
}

func (m *MockAuthzStore) OwnsGroup(ctx context.Context, userID, groupID uint) bool {
	args := m.Called(userID, groupID)
	return args.Bool(0)
}

func (m *MockAuthzStore) CanChangeGroup(ctx context.Context, userID, passwordID uint, fromGroupID, toGroupID *uint) bool {
	args := m.Called(userID, passwordID, fromGroupID, toGroupID)
	return args.Bool(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func NewMockHealthStore() *MockHealthStore {
	return &MockHealthStore{}
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

var (
	_ store.PasswordsStore = (*MockPasswordsStore)(nil)
	_ store.GroupsStore    = (*MockGroupsStore)(nil)
	_ store.UsersStore     = (*MockUsersStore)(nil)
	_ store.AuthzStore     = (*MockAuthzStore)(nil)
	_ store.HealthStore    = (*MockHealthStore)(nil)
)
