package model

import "time"

type Group struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;size:50;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Group) TableName() string {
	return "groups"
}

// GroupUser links a user to a group, flagged the same way as PasswordUser.
type GroupUser struct {
	GroupID   uint `gorm:"column:group_id;primaryKey;autoIncrement:false"`
	UserID    uint `gorm:"column:user_id;primaryKey;autoIncrement:false;index"`
	Owner     bool `gorm:"column:owner;not null"`
	Permitted bool `gorm:"column:permitted;not null"`
}

func (GroupUser) TableName() string {
	return "group_user"
}

// GroupPassword places a password in a group. A password is in at most one
// group, enforced by the unique index on password_id.
type GroupPassword struct {
	GroupID    uint `gorm:"column:group_id;primaryKey;autoIncrement:false"`
	PasswordID uint `gorm:"column:password_id;primaryKey;autoIncrement:false;uniqueIndex:idx_group_password_password_id"`
}

func (GroupPassword) TableName() string {
	return "group_password"
}
