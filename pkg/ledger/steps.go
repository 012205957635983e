package ledger

import (
	"github.com/code4-fun/password-storage-Laravel-Vue3/pkg/model"

	"gorm.io/gorm"
)

// CreatePassword inserts p and fills in its ID.
func CreatePassword(p *model.Password) Step {
	return Step{
		Name: "create password",
		Apply: func(tx *gorm.DB) error {
			return tx.Create(p).Error
		},
	}
}

// UpdatePassword writes fields onto the password row and onto p.
func UpdatePassword(p *model.Password, fields map[string]interface{}) Step {
	return Step{
		Name: "update password",
		Apply: func(tx *gorm.DB) error {
			return tx.Model(p).Updates(fields).Error
		},
	}
}

func DeletePassword(p *model.Password) Step {
	return Step{
		Name: "delete password",
		Apply: func(tx *gorm.DB) error {
			return tx.Delete(&model.Password{}, p.ID).Error
		},
	}
}

// AttachPasswordUser links userID to p with the given flags.
func AttachPasswordUser(p *model.Password, userID uint, owner, permitted bool) Step {
	return Step{
		Name: "attach password user",
		Apply: func(tx *gorm.DB) error {
			return tx.Create(&model.PasswordUser{
				PasswordID: p.ID,
				UserID:     userID,
				Owner:      owner,
				Permitted:  permitted,
			}).Error
		},
	}
}

func DetachPasswordUser(p *model.Password, userID uint) Step {
	return Step{
		Name: "detach password user",
		Apply: func(tx *gorm.DB) error {
			return tx.Where("password_id = ? AND user_id = ?", p.ID, userID).
				Delete(&model.PasswordUser{}).Error
		},
	}
}

// DetachPasswordUsers removes every user link of p, the owner's included.
func DetachPasswordUsers(p *model.Password) Step {
	return Step{
		Name: "detach password users",
		Apply: func(tx *gorm.DB) error {
			return tx.Where("password_id = ?", p.ID).Delete(&model.PasswordUser{}).Error
		},
	}
}

func AttachPasswordGroup(p *model.Password, groupID uint) Step {
	return Step{
		Name: "attach password group",
		Apply: func(tx *gorm.DB) error {
			return tx.Create(&model.GroupPassword{GroupID: groupID, PasswordID: p.ID}).Error
		},
	}
}

func DetachPasswordGroup(p *model.Password, groupID uint) Step {
	return Step{
		Name: "detach password group",
		Apply: func(tx *gorm.DB) error {
			return tx.Where("group_id = ? AND password_id = ?", groupID, p.ID).
				Delete(&model.GroupPassword{}).Error
		},
	}
}

func DetachPasswordGroups(p *model.Password) Step {
	return Step{
		Name: "detach password groups",
		Apply: func(tx *gorm.DB) error {
			return tx.Where("password_id = ?", p.ID).Delete(&model.GroupPassword{}).Error
		},
	}
}

// SyncPasswordGroup leaves p in exactly one group, groupID.
func SyncPasswordGroup(p *model.Password, groupID uint) Step {
	return Step{
		Name: "sync password group",
		Apply: func(tx *gorm.DB) error {
			if err := DetachPasswordGroups(p).Apply(tx); err != nil {
				return err
			}
			return AttachPasswordGroup(p, groupID).Apply(tx)
		},
	}
}

func CreateGroup(g *model.Group) Step {
	return Step{
		Name: "create group",
		Apply: func(tx *gorm.DB) error {
			return tx.Create(g).Error
		},
	}
}

func UpdateGroup(g *model.Group, fields map[string]interface{}) Step {
	return Step{
		Name: "update group",
		Apply: func(tx *gorm.DB) error {
			return tx.Model(g).Updates(fields).Error
		},
	}
}

func DeleteGroup(g *model.Group) Step {
	return Step{
		Name: "delete group",
		Apply: func(tx *gorm.DB) error {
			return tx.Delete(&model.Group{}, g.ID).Error
		},
	}
}

func AttachGroupUser(g *model.Group, userID uint, owner, permitted bool) Step {
	return Step{
		Name: "attach group user",
		Apply: func(tx *gorm.DB) error {
			return tx.Create(&model.GroupUser{
				GroupID:   g.ID,
				UserID:    userID,
				Owner:     owner,
				Permitted: permitted,
			}).Error
		},
	}
}

func DetachGroupUsers(g *model.Group) Step {
	return Step{
		Name: "detach group users",
		Apply: func(tx *gorm.DB) error {
			return tx.Where("group_id = ?", g.ID).Delete(&model.GroupUser{}).Error
		},
	}
}

func DetachGroupPasswords(g *model.Group) Step {
	return Step{
		Name: "detach group passwords",
		Apply: func(tx *gorm.DB) error {
			return tx.Where("group_id = ?", g.ID).Delete(&model.GroupPassword{}).Error
		},
	}
}
