package gorm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/identity"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/ledger"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store"
)

// Ensure GroupsStore implements store.GroupsStore
var _ store.GroupsStore = (*GroupsStore)(nil)

// GroupsStore implements store.GroupsStore using GORM
type GroupsStore struct {
	db     *gorm.DB
	ledger *ledger.Transaction
}

// NewGroupsStore creates a new GroupsStore
func NewGroupsStore(db *gorm.DB, logger *zap.Logger) *GroupsStore {
	return &GroupsStore{db: db, ledger: ledger.NewTransaction(db, logger)}
}

// ListGroups returns the groups the actor is linked to.
func (s *GroupsStore) ListGroups(ctx context.Context, actor *identity.Identity) ([]store.Group, error) {
	groups := []store.Group{}
	err := s.db.WithContext(ctx).
		Model(&model.Group{}).
		Select("groups.id, groups.name").
		Joins("JOIN group_user ON group_user.group_id = groups.id").
		Where("group_user.user_id = ?", actor.UserID).
		Order("groups.id").
		Scan(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// GroupExists checks if a group exists
func (s *GroupsStore) GroupExists(ctx context.Context, groupID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Group{}).Where("id = ?", groupID).Count(&count).Error
	return count > 0, err
}

func (s *GroupsStore) find(ctx context.Context, groupID uint) (*model.Group, error) {
	var g model.Group
	err := s.db.WithContext(ctx).First(&g, groupID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

// FetchGroup returns a group.
func (s *GroupsStore) FetchGroup(ctx context.Context, groupID uint) (*store.Group, error) {
	g, err := s.find(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return &store.Group{ID: g.ID, Name: g.Name}, nil
}

// CreateGroup returns the actor's group called name, creating it first if
// needed.
func (s *GroupsStore) CreateGroup(ctx context.Context, actor *identity.Identity, name string) (*store.Group, error) {
	var existing model.Group
	err := s.db.WithContext(ctx).
		Joins("JOIN group_user ON group_user.group_id = groups.id").
		Where("group_user.user_id = ? AND group_user.owner = ? AND groups.name = ?", actor.UserID, true, name).
		Take(&existing).Error
	if err == nil {
		return &store.Group{ID: existing.ID, Name: existing.Name}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	g := &model.Group{Name: name}
	err = s.ledger.Run(ctx,
		ledger.CreateGroup(g),
		ledger.AttachGroupUser(g, actor.UserID, true, true),
	)
	if err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return &store.Group{ID: g.ID, Name: g.Name}, nil
}

// RenameGroup changes a group's name.
func (s *GroupsStore) RenameGroup(ctx context.Context, groupID uint, name string) (*store.Group, error) {
	g, err := s.find(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.Run(ctx, ledger.UpdateGroup(g, map[string]interface{}{"name": name})); err != nil {
		return nil, fmt.Errorf("rename group %d: %w", groupID, err)
	}
	return &store.Group{ID: g.ID, Name: name}, nil
}

// DeleteGroup removes the group's password links, then each of those
// passwords with its user and remaining group links, then the group's user
// links and the group itself, all in one transaction.
func (s *GroupsStore) DeleteGroup(ctx context.Context, groupID uint) error {
	g, err := s.find(ctx, groupID)
	if err != nil {
		return err
	}

	var passwordIDs []uint
	err = s.db.WithContext(ctx).
		Model(&model.GroupPassword{}).
		Where("group_id = ?", groupID).
		Order("password_id").
		Pluck("password_id", &passwordIDs).Error
	if err != nil {
		return err
	}

	steps := []ledger.Step{ledger.DetachGroupPasswords(g)}
	for _, id := range passwordIDs {
		p := &model.Password{ID: id}
		steps = append(steps,
			ledger.DetachPasswordUsers(p),
			ledger.DetachPasswordGroups(p),
			ledger.DeletePassword(p),
		)
	}
	steps = append(steps,
		ledger.DetachGroupUsers(g),
		ledger.DeleteGroup(g),
	)

	if err := s.ledger.Run(ctx, steps...); err != nil {
		return fmt.Errorf("delete group %d: %w", groupID, err)
	}
	return nil
}

// GroupNameTaken checks the owner's groups for name.
func (s *GroupsStore) GroupNameTaken(ctx context.Context, ownerID uint, name string, ignoreID uint) (bool, error) {
	query := s.db.WithContext(ctx).
		Model(&model.Group{}).
		Joins("JOIN group_user ON group_user.group_id = groups.id").
		Where("group_user.user_id = ? AND group_user.owner = ? AND groups.name = ?", ownerID, true, name)
	if ignoreID > 0 {
		query = query.Where("groups.id <> ?", ignoreID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
