package model

import "time"

// Password is a stored credential. Password holds the secret exactly as it
// was entered; access to it is governed by PasswordUser links.
type Password struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name;size:50;not null"`
	Password    string    `gorm:"column:password;size:50;not null"`
	Description string    `gorm:"column:description;size:500"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Password) TableName() string {
	return "passwords"
}

// PasswordUser links a user to a password. The creator's link has Owner set.
// Permitted=false hides the password from the user without removing the link.
type PasswordUser struct {
	PasswordID uint `gorm:"column:password_id;primaryKey;autoIncrement:false"`
	UserID     uint `gorm:"column:user_id;primaryKey;autoIncrement:false;index"`
	Owner      bool `gorm:"column:owner;not null"`
	Permitted  bool `gorm:"column:permitted;not null"`
}

func (PasswordUser) TableName() string {
	return "password_user"
}
