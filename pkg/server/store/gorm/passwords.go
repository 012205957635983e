package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/access"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/identity"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/ledger"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/reassign"
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/server/store"
)

// Ensure PasswordsStore implements store.PasswordsStore
var _ store.PasswordsStore = (*PasswordsStore)(nil)

// PasswordsStore implements store.PasswordsStore using GORM
type PasswordsStore struct {
	db     *gorm.DB
	ledger *ledger.Transaction
	now    func() time.Time
}

// NewPasswordsStore creates a new PasswordsStore
func NewPasswordsStore(db *gorm.DB, logger *zap.Logger) *PasswordsStore {
	return &PasswordsStore{
		db:     db,
		ledger: ledger.NewTransaction(db, logger),
		now:    time.Now,
	}
}

// ListVisible loads the rows the actor's capability covers and resolves
// them into a view.
func (s *PasswordsStore) ListVisible(ctx context.Context, actor *identity.Identity) (access.View, error) {
	capability := access.CapabilityFor(actor.Role)

	var (
		snap access.Snapshot
		err  error
	)
	if capability == access.CapabilityAllAccess {
		snap, err = s.loadAll(ctx)
	} else {
		snap, err = s.loadOwn(ctx, actor.UserID)
	}
	if err != nil {
		return access.View{}, fmt.Errorf("load passwords: %w", err)
	}

	return access.Resolve(capability, actor.UserID, snap, s.now()), nil
}

func (s *PasswordsStore) loadAll(ctx context.Context) (access.Snapshot, error) {
	var snap access.Snapshot
	db := s.db.WithContext(ctx)

	if err := db.Order("id").Find(&snap.Passwords).Error; err != nil {
		return snap, err
	}
	if err := db.Find(&snap.PasswordUsers).Error; err != nil {
		return snap, err
	}
	userIDs := make([]uint, 0, len(snap.PasswordUsers))
	for _, pu := range snap.PasswordUsers {
		userIDs = append(userIDs, pu.UserID)
	}
	if err := db.Where("id IN ?", userIDs).Find(&snap.Users).Error; err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *PasswordsStore) loadOwn(ctx context.Context, userID uint) (access.Snapshot, error) {
	var snap access.Snapshot
	db := s.db.WithContext(ctx)

	if err := db.Where("user_id = ?", userID).Find(&snap.PasswordUsers).Error; err != nil {
		return snap, err
	}
	if err := db.Where("user_id = ?", userID).Find(&snap.GroupUsers).Error; err != nil {
		return snap, err
	}

	passwordIDs := make([]uint, 0, len(snap.PasswordUsers))
	for _, pu := range snap.PasswordUsers {
		passwordIDs = append(passwordIDs, pu.PasswordID)
	}
	groupIDs := make([]uint, 0, len(snap.GroupUsers))
	for _, gu := range snap.GroupUsers {
		groupIDs = append(groupIDs, gu.GroupID)
	}

	if err := db.Where("id IN ?", passwordIDs).Find(&snap.Passwords).Error; err != nil {
		return snap, err
	}
	if err := db.Where("id IN ?", groupIDs).Find(&snap.Groups).Error; err != nil {
		return snap, err
	}
	if err := db.Where("group_id IN ?", groupIDs).Find(&snap.GroupPasswords).Error; err != nil {
		return snap, err
	}
	return snap, nil
}

// PasswordExists checks if a password exists
func (s *PasswordsStore) PasswordExists(ctx context.Context, passwordID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Password{}).Where("id = ?", passwordID).Count(&count).Error
	return count > 0, err
}

func (s *PasswordsStore) find(ctx context.Context, passwordID uint) (*model.Password, error) {
	var p model.Password
	err := s.db.WithContext(ctx).First(&p, passwordID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrPasswordNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FetchPassword returns a password with its secret and groups.
func (s *PasswordsStore) FetchPassword(ctx context.Context, actor *identity.Identity, passwordID uint) (*store.PasswordDetail, error) {
	p, err := s.find(ctx, passwordID)
	if err != nil {
		return nil, err
	}

	var link model.PasswordUser
	owner := false
	err = s.db.WithContext(ctx).
		Where("password_id = ? AND user_id = ?", passwordID, actor.UserID).
		Take(&link).Error
	switch {
	case err == nil:
		owner = link.Owner
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	groups := []store.Group{}
	err = s.db.WithContext(ctx).
		Model(&model.Group{}).
		Select("groups.id, groups.name").
		Joins("JOIN group_password ON group_password.group_id = groups.id").
		Where("group_password.password_id = ?", passwordID).
		Order("groups.id").
		Scan(&groups).Error
	if err != nil {
		return nil, err
	}

	return &store.PasswordDetail{
		ID:          p.ID,
		Name:        p.Name,
		Password:    p.Password,
		Description: p.Description,
		Owner:       owner,
		Updated:     access.Updated(p.UpdatedAt, s.now()),
		Groups:      groups,
	}, nil
}

// CreatePassword creates a password, its owner link, the links of the
// allowed users and the group placement in one transaction.
func (s *PasswordsStore) CreatePassword(ctx context.Context, actor *identity.Identity, in store.NewPassword) (*store.CreatedPassword, error) {
	p := &model.Password{
		Name:        in.Name,
		Password:    in.Password,
		Description: in.Description,
	}

	steps := []ledger.Step{
		ledger.CreatePassword(p),
		ledger.AttachPasswordUser(p, actor.UserID, true, true),
	}
	for _, userID := range reassign.DiffAllowedUsers(nil, in.AllowedUsers, actor.UserID).Attach {
		steps = append(steps, ledger.AttachPasswordUser(p, userID, false, true))
	}

	var group *uint
	if in.GroupID > 0 {
		groupID := in.GroupID
		group = &groupID
		steps = append(steps, ledger.AttachPasswordGroup(p, groupID))
	}

	if err := s.ledger.Run(ctx, steps...); err != nil {
		return nil, fmt.Errorf("create password: %w", err)
	}

	return &store.CreatedPassword{
		ID:          p.ID,
		Name:        p.Name,
		Password:    p.Password,
		Description: p.Description,
		Owner:       true,
		Group:       group,
	}, nil
}

// UpdatePassword applies field changes, the allowed-users diff and the
// group placement in one transaction.
func (s *PasswordsStore) UpdatePassword(ctx context.Context, actor *identity.Identity, passwordID uint, in store.PasswordChanges) (*store.UpdatedPassword, error) {
	p, err := s.find(ctx, passwordID)
	if err != nil {
		return nil, err
	}

	var linked []uint
	err = s.db.WithContext(ctx).
		Model(&model.PasswordUser{}).
		Where("password_id = ? AND user_id <> ?", passwordID, actor.UserID).
		Order("user_id").
		Pluck("user_id", &linked).Error
	if err != nil {
		return nil, err
	}

	current, err := s.currentGroup(ctx, passwordID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"name":        in.Name,
		"description": in.Description,
	}
	if in.Password != "" {
		fields["password"] = in.Password
	}

	steps := []ledger.Step{ledger.UpdatePassword(p, fields)}

	diff := reassign.DiffAllowedUsers(linked, in.AllowedUsers, actor.UserID)
	for _, userID := range diff.Detach {
		steps = append(steps, ledger.DetachPasswordUser(p, userID))
	}
	for _, userID := range diff.Attach {
		steps = append(steps, ledger.AttachPasswordUser(p, userID, false, true))
	}

	placement := reassign.PlanPlacement(current, in.ToGroupID)
	switch placement.Action {
	case reassign.PlacementAttach:
		steps = append(steps, ledger.AttachPasswordGroup(p, placement.GroupID))
	case reassign.PlacementSync:
		steps = append(steps, ledger.SyncPasswordGroup(p, placement.GroupID))
	case reassign.PlacementDetach:
		steps = append(steps, ledger.DetachPasswordGroup(p, placement.GroupID))
	}

	if err := s.ledger.Run(ctx, steps...); err != nil {
		return nil, fmt.Errorf("update password %d: %w", passwordID, err)
	}

	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now()
	}
	return &store.UpdatedPassword{
		ID:          p.ID,
		Name:        in.Name,
		Description: in.Description,
		Updated:     access.Updated(updatedAt, s.now()),
	}, nil
}

func (s *PasswordsStore) currentGroup(ctx context.Context, passwordID uint) (*uint, error) {
	var link model.GroupPassword
	err := s.db.WithContext(ctx).
		Where("password_id = ?", passwordID).
		Order("group_id").
		Take(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link.GroupID, nil
}

// DeletePassword removes a password and all of its links.
func (s *PasswordsStore) DeletePassword(ctx context.Context, passwordID uint) error {
	p, err := s.find(ctx, passwordID)
	if err != nil {
		return err
	}

	err = s.ledger.Run(ctx,
		ledger.DetachPasswordUsers(p),
		ledger.DetachPasswordGroups(p),
		ledger.DeletePassword(p),
	)
	if err != nil {
		return fmt.Errorf("delete password %d: %w", passwordID, err)
	}
	return nil
}

// ChangeGroup moves a password between groups. Attaching always goes
// through a sync so a password never ends up in two groups.
func (s *PasswordsStore) ChangeGroup(ctx context.Context, passwordID uint, fromGroupID, toGroupID *uint) error {
	change, err := reassign.PlanChangeGroup(fromGroupID, toGroupID)
	if err != nil {
		return err
	}

	p := &model.Password{ID: passwordID}
	var steps []ledger.Step
	switch change.Transition {
	case reassign.Move:
		steps = append(steps,
			ledger.DetachPasswordGroup(p, change.From),
			ledger.SyncPasswordGroup(p, change.To),
		)
	case reassign.Attach:
		steps = append(steps, ledger.SyncPasswordGroup(p, change.To))
	case reassign.Detach:
		steps = append(steps, ledger.DetachPasswordGroup(p, change.From))
	}

	if err := s.ledger.Run(ctx, steps...); err != nil {
		return fmt.Errorf("%s password %d: %w", change.Transition, passwordID, err)
	}
	return nil
}

// SetPermitted overwrites the permitted flag of an existing link only.
func (s *PasswordsStore) SetPermitted(ctx context.Context, passwordID, userID uint, permitted bool) (*store.Toggle, error) {
	var link model.PasswordUser
	err := s.db.WithContext(ctx).
		Where("password_id = ? AND user_id = ?", passwordID, userID).
		Take(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	err = s.db.WithContext(ctx).
		Model(&model.PasswordUser{}).
		Where("password_id = ? AND user_id = ?", passwordID, userID).
		Update("permitted", permitted).Error
	if err != nil {
		return nil, err
	}

	return &store.Toggle{PasswordID: passwordID, UserID: userID, Permitted: permitted}, nil
}

// AllowedUsers returns the ids of users linked to a password, other than
// the actor.
func (s *PasswordsStore) AllowedUsers(ctx context.Context, actor *identity.Identity, passwordID uint) ([]uint, error) {
	userIDs := []uint{}
	err := s.db.WithContext(ctx).
		Model(&model.PasswordUser{}).
		Where("password_id = ? AND user_id <> ?", passwordID, actor.UserID).
		Order("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

// PasswordNameTaken checks the owner's passwords for name.
func (s *PasswordsStore) PasswordNameTaken(ctx context.Context, ownerID uint, name string, ignoreID uint) (bool, error) {
	query := s.db.WithContext(ctx).
		Model(&model.Password{}).
		Joins("JOIN password_user ON password_user.password_id = passwords.id").
		Where("password_user.user_id = ? AND password_user.owner = ? AND passwords.name = ?", ownerID, true, name)
	if ignoreID > 0 {
		query = query.Where("passwords.id <> ?", ignoreID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
