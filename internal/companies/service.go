package companies

import (
	"context"
	"errors"
	"strings"

	"vms-backend/internal/models"
	"vms-backend/internal/pkg/validation"

	"gorm.io/gorm"
)

var (
	ErrInvalidCompanyName   = errors.New("Company name must be 2-50 letters, digits, spaces or hyphens")
	ErrInvalidPhone         = errors.New("Phone number must be 10 digits")
	ErrInvalidEmail         = errors.New("A valid email address is required")
	ErrDuplicateCompanyName = errors.New("Company name already exists")
)

// DuplicateCompanyCode is the structured error code for name collisions.
// Clients switch on this; the message substring is a legacy fallback.
const DuplicateCompanyCode = "DUPLICATE_COMPANY_NAME"

type Service struct {
	DB *gorm.DB
}

// Exists is the existence endpoint backing both the proactive and the
// authoritative duplicate checks. Matching is case-insensitive.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Company{}).
		Where("LOWER(company_name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InviteCompanyInput is the invite form payload.
type InviteCompanyInput struct {
	CompanyName string `json:"companyName"`
	PhoneNo     string `json:"phoneNo"`
	Email       string `json:"email"`
}

// Invite validates the invitation and creates the company. The existence
// check re-runs here even though the form already confirmed it: the
// proactive check may be stale by submit time, and the unique index is the
// final backstop for races the check cannot see.
func (s *Service) Invite(ctx context.Context, in InviteCompanyInput) (*models.Company, error) {
	name := strings.TrimSpace(in.CompanyName)
	if !validation.IsValidCompanyName(name) {
		return nil, ErrInvalidCompanyName
	}
	phone, ok := validation.NormalizePhone(in.PhoneNo)
	if !ok {
		return nil, ErrInvalidPhone
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	exists, err := s.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateCompanyName
	}

	company := &models.Company{
		CompanyName: name,
		PhoneNo:     phone,
		Email:       email,
	}
	if err := s.DB.WithContext(ctx).Create(company).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, ErrDuplicateCompanyName
		}
		return nil, err
	}
	return company, nil
}

// isDuplicateErr recognizes a unique-index violation across the drivers we
// run against (pgx, sqlite).
func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
