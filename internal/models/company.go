package models

import (
	"time"

	"gorm.io/gorm"
)

// Company is a registered visiting organization. CompanyName is unique; the
// invite flow refuses duplicates case-insensitively before this constraint
// is ever hit.
type Company struct {
	ID          uint           `gorm:"column:id;primaryKey" json:"id"`
	CompanyName string         `gorm:"column:company_name;not null;uniqueIndex" json:"companyName"`
	PhoneNo     string         `gorm:"column:phone_no;not null" json:"phoneNo"`
	Email       string         `gorm:"column:email;not null" json:"email"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Company) TableName() string {
	return "Companies"
}
