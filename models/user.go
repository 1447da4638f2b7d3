// models/user.go
package models

import "time"

type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	AuthUID     string `gorm:"uniqueIndex;not null" json:"auth_uid"`
	Email       string `gorm:"index" json:"email"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
	// Set only for accounts registered through the local credential
	// endpoints. Externally verified identities never carry one.
	PasswordHash *string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
