package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Visitor is the central record of the check-in lifecycle. One row covers
// the whole visit: invitation, review, check-in and check-out. HostDetails
// is a point-in-time snapshot of the hosting employee, not a foreign key.
type Visitor struct {
	ID              uint           `gorm:"column:id;primaryKey" json:"id"`
	FullName        string         `gorm:"column:full_name;not null" json:"fullName"`
	PhoneNumber     string         `gorm:"column:phone_number;not null" json:"phoneNumber"`
	Gender          *string        `gorm:"column:gender" json:"gender"`
	IDType          *string        `gorm:"column:id_type" json:"idType"`
	IDNumber        *string        `gorm:"column:id_number" json:"idNumber"`
	Date            string         `gorm:"column:date;not null" json:"date"`
	Time            string         `gorm:"column:time;not null" json:"time"`
	ComingFrom      string         `gorm:"column:coming_from;not null;default:company" json:"comingFrom"`
	CompanyName     *string        `gorm:"column:company_name" json:"companyName"`
	Location        *string        `gorm:"column:location" json:"location"`
	PurposeOfVisit  string         `gorm:"column:purpose_of_visit;not null" json:"purposeOfVisit"`
	ImgURL          *string        `gorm:"column:img_url" json:"imgUrl"`
	Status          string         `gorm:"column:status;not null;default:PENDING" json:"status"`
	CheckInTime     *time.Time     `gorm:"column:check_in_time" json:"checkInTime"`
	CheckOutTime    *time.Time     `gorm:"column:check_out_time" json:"checkOutTime"`
	RejectionReason *string        `gorm:"column:rejection_reason" json:"rejectionReason"`
	HostDetails     datatypes.JSON `gorm:"column:host_details;type:jsonb" json:"hostDetails"`
	Assets          datatypes.JSON `gorm:"column:assets;type:jsonb" json:"assets"`
	Guest           datatypes.JSON `gorm:"column:guest;type:jsonb" json:"guest"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Visitor) TableName() string {
	return "Visitors"
}

// HostDetailsShape is the JSON layout stored in Visitor.HostDetails.
type HostDetailsShape struct {
	UserID          string `json:"userId"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	PhoneNumber     string `json:"phoneNumber"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// AssetRecord is one committed entry in Visitor.Assets.
type AssetRecord struct {
	AssetName    string `json:"assetName"`
	SerialNumber string `json:"serialNumber"`
	AssetType    string `json:"assetType"`
	ImgURL       string `json:"imgUrl,omitempty"`
}

// GuestRecord is one committed entry in Visitor.Guest.
type GuestRecord struct {
	GuestName string `json:"guestName"`
	ImgURL    string `json:"imgUrl,omitempty"`
}
