package models

import (
	"time"

	"gorm.io/gorm"
)

// CheckinCode is the ephemeral proof-of-identity pair minted per invitation
// cycle: a 6-digit OTP and a QR image encoding the same OTP. One active code
// per visitor per cycle; it is consumed implicitly through the visitor's
// status transition, not by deleting the row.
type CheckinCode struct {
	ID        uint           `gorm:"column:id;primaryKey" json:"id"`
	VisitorID uint           `gorm:"column:visitor_id;not null;index" json:"visitorId"`
	OTP       string         `gorm:"column:otp;type:varchar(6);not null;uniqueIndex" json:"otp"`
	QRCode    string         `gorm:"column:qr_code;type:text" json:"qrCode"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CheckinCode) TableName() string {
	return "CheckinCodes"
}
