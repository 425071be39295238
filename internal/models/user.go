package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an employee account: a host who receives visitors, or front-desk
// security / admin staff who see every visitor.
type User struct {
	UserID          uuid.UUID      `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Name            string         `gorm:"column:name;not null" json:"name"`
	Email           string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PhoneNumber     string         `gorm:"column:phone_number" json:"phoneNumber"`
	ProfileImageURL string         `gorm:"column:profile_image_url" json:"profileImageUrl"`
	PasswordHash    string         `gorm:"column:password_hash;not null" json:"-"`
	Role            string         `gorm:"column:role;not null;default:host" json:"role"`
	OrgID           *uint          `gorm:"column:org_id" json:"org_id"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "Users"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.New()
	}
	return nil
}

// Roles. Hosts only see visitors they are hosting; admin and security see all.
const (
	RoleHost     = "host"
	RoleAdmin    = "admin"
	RoleSecurity = "security"
)
