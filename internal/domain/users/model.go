package users

import (
	"tubelens-api/internal/domain/common"
)

const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

type User struct {
	common.BaseModel

	Email        string  `gorm:"not null;uniqueIndex:idx_users_email"`
	Password     *string `gorm:"" json:"-"`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub"`

	IsActive bool `gorm:"not null;default:true"`
	IsStaff  bool `gorm:"not null;default:false"`

	FirstName string `gorm:"type:varchar(50)"`
	LastName  string `gorm:"type:varchar(50)"`
}

func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}
