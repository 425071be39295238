package models

import (
	"time"

	"gorm.io/gorm"
)

// Org is the workplace tenant. AutoApproveVisitors controls whether a new
// visitor starts PENDING (host must review) or jumps straight to APPROVED.
type Org struct {
	ID                  uint           `gorm:"column:id;primaryKey" json:"id"`
	OrgName             string         `gorm:"column:org_name;not null" json:"org_name"`
	AutoApproveVisitors bool           `gorm:"column:auto_approve_visitors;not null;default:false" json:"auto_approve_visitors"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Org) TableName() string {
	return "Orgs"
}
