package visitors

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"vms-backend/internal/emails"
	"vms-backend/internal/identity"
	"vms-backend/internal/models"
	"vms-backend/internal/roster"
	"vms-backend/internal/status"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrVisitorNotFound         = errors.New("Visitor not found")
	ErrHostNotFound            = errors.New("Host not found")
	ErrRejectionReasonRequired = errors.New("Rejection reason is required")
	ErrNotPending              = errors.New("Visitor is not pending review")
	ErrInvalidStatusChange     = errors.New("Invalid status change")
	ErrMissingRequiredFields   = errors.New("fullName, phoneNumber, date, time and purposeOfVisit are required")
)

type Service struct {
	DB     *gorm.DB
	Mailer emails.Sender
}

// CreateVisitorInput covers both pre-registered invites and walk-in entry.
// Email, when present, is only used to deliver the invite code; it is not
// part of the visitor record.
type CreateVisitorInput struct {
	FullName       string  `json:"fullName"`
	PhoneNumber    string  `json:"phoneNumber"`
	Gender         *string `json:"gender"`
	IDType         *string `json:"idType"`
	IDNumber       *string `json:"idNumber"`
	Date           string  `json:"date"`
	Time           string  `json:"time"`
	ComingFrom     string  `json:"comingFrom"`
	CompanyName    *string `json:"companyName"`
	Location       *string `json:"location"`
	PurposeOfVisit string  `json:"purposeOfVisit"`
	ImgURL         *string `json:"imgUrl"`
	Email          string  `json:"email"`
	HostUserID     string  `json:"hostUserId"`
}

// CreateVisitorResult returns the new record together with the minted proof
// pair so the front desk can surface it immediately.
type CreateVisitorResult struct {
	Visitor *models.Visitor     `json:"visitor"`
	Code    *models.CheckinCode `json:"code"`
}

// CreateVisitor snapshots the host, applies the org's auto-approve policy,
// mints the OTP/QR pair and sends the invite email best-effort.
func (s *Service) CreateVisitor(ctx context.Context, in CreateVisitorInput) (*CreateVisitorResult, error) {
	if in.FullName == "" || in.PhoneNumber == "" || in.Date == "" || in.Time == "" || in.PurposeOfVisit == "" {
		return nil, ErrMissingRequiredFields
	}

	var host models.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", in.HostUserID).First(&host).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHostNotFound
		}
		return nil, err
	}

	// hostDetails is a point-in-time snapshot, not a live link.
	hostJSON, err := json.Marshal(models.HostDetailsShape{
		UserID:          host.UserID.String(),
		Email:           host.Email,
		Name:            host.Name,
		PhoneNumber:     host.PhoneNumber,
		ProfileImageURL: host.ProfileImageURL,
	})
	if err != nil {
		return nil, err
	}

	initial := status.Pending
	if host.OrgID != nil {
		var org models.Org
		if err := s.DB.WithContext(ctx).First(&org, *host.OrgID).Error; err == nil && org.AutoApproveVisitors {
			initial = status.Approved
		}
	}

	comingFrom := in.ComingFrom
	if comingFrom == "" {
		comingFrom = "company"
	}

	visitor := &models.Visitor{
		FullName:       strings.TrimSpace(in.FullName),
		PhoneNumber:    strings.TrimSpace(in.PhoneNumber),
		Gender:         in.Gender,
		IDType:         in.IDType,
		IDNumber:       in.IDNumber,
		Date:           in.Date,
		Time:           in.Time,
		ComingFrom:     comingFrom,
		CompanyName:    in.CompanyName,
		Location:       in.Location,
		PurposeOfVisit: in.PurposeOfVisit,
		ImgURL:         in.ImgURL,
		Status:         initial,
		HostDetails:    datatypes.JSON(hostJSON),
		Assets:         datatypes.JSON([]byte("[]")),
		Guest:          datatypes.JSON([]byte("[]")),
	}
	if err := s.DB.WithContext(ctx).Create(visitor).Error; err != nil {
		return nil, err
	}

	code, err := s.mintCode(ctx, visitor.ID)
	if err != nil {
		return nil, err
	}

	if s.Mailer != nil && in.Email != "" {
		if err := s.Mailer.SendVisitorInvite(ctx, in.Email, visitor.FullName, host.Name, code.OTP, code.QRCode); err != nil {
			log.Warn().Err(err).Uint("visitor_id", visitor.ID).Msg("invite email failed")
		}
	}

	return &CreateVisitorResult{Visitor: visitor, Code: code}, nil
}

// mintCode creates a fresh OTP/QR pair, retrying on the rare OTP collision.
func (s *Service) mintCode(ctx context.Context, visitorID uint) (*models.CheckinCode, error) {
	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		otp, err := identity.GenerateOTP()
		if err != nil {
			return nil, err
		}
		qr, err := identity.GenerateQRDataURI(otp)
		if err != nil {
			return nil, err
		}
		code := &models.CheckinCode{VisitorID: visitorID, OTP: otp, QRCode: qr}
		if err := s.DB.WithContext(ctx).Create(code).Error; err != nil {
			lastErr = err
			continue
		}
		return code, nil
	}
	return nil, lastErr
}

// ResolveByCode finds the visitor behind a validated OTP. found=false is
// the structural not-found outcome; err is reserved for storage failures.
// Implements the scan flow's Resolver contract.
func (s *Service) ResolveByCode(ctx context.Context, otp string) (*models.Visitor, bool, error) {
	var code models.CheckinCode
	err := s.DB.WithContext(ctx).Where("otp = ?", otp).Order("created_at DESC").First(&code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var visitor models.Visitor
	err = s.DB.WithContext(ctx).First(&visitor, code.VisitorID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &visitor, true, nil
}

// ListVisitorsInput scopes the listing. Hosts only see visitors they are
// hosting; admin and security see everything. ExistingOnly surfaces
// visitors with any past check-out, regardless of current status.
type ListVisitorsInput struct {
	ActorUserID  string
	ActorRole    string
	ExistingOnly bool
	Limit        int
	Offset       int
}

func (s *Service) ListVisitors(ctx context.Context, in ListVisitorsInput) ([]models.Visitor, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Visitor{})

	if in.ActorRole != models.RoleAdmin && in.ActorRole != models.RoleSecurity {
		q = q.Where(datatypes.JSONQuery("host_details").Equals(in.ActorUserID, "userId"))
	}
	if in.ExistingOnly {
		q = q.Where("check_out_time IS NOT NULL")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if in.Limit > 0 {
		q = q.Limit(in.Limit).Offset(in.Offset)
	}
	var visitors []models.Visitor
	if err := q.Order("created_at DESC").Find(&visitors).Error; err != nil {
		return nil, 0, err
	}
	return visitors, total, nil
}

func (s *Service) GetVisitor(ctx context.Context, id uint) (*models.Visitor, error) {
	var v models.Visitor
	if err := s.DB.WithContext(ctx).First(&v, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitorNotFound
		}
		return nil, err
	}
	return &v, nil
}

// UpdateVisitorInput is the partial PATCH body. Assets and Guest accept a
// native array or a JSON-encoded string of one; both normalize to an array
// before persisting.
type UpdateVisitorInput struct {
	FullName        *string         `json:"fullName"`
	PhoneNumber     *string         `json:"phoneNumber"`
	Gender          *string         `json:"gender"`
	IDType          *string         `json:"idType"`
	IDNumber        *string         `json:"idNumber"`
	Date            *string         `json:"date"`
	Time            *string         `json:"time"`
	ComingFrom      *string         `json:"comingFrom"`
	CompanyName     *string         `json:"companyName"`
	Location        *string         `json:"location"`
	PurposeOfVisit  *string         `json:"purposeOfVisit"`
	ImgURL          *string         `json:"imgUrl"`
	Status          *string         `json:"status"`
	RejectionReason *string         `json:"rejectionReason"`
	Assets          json.RawMessage `json:"assets"`
	Guest           json.RawMessage `json:"guest"`
}

// UpdateVisitor applies a partial update. Status changes pass the state
// machine; every write is last-writer-wins with no optimistic token.
func (s *Service) UpdateVisitor(ctx context.Context, id uint, in UpdateVisitorInput) (*models.Visitor, error) {
	visitor, err := s.GetVisitor(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		if err := s.applyStatusChange(visitor, *in.Status, in.RejectionReason); err != nil {
			return nil, err
		}
	}

	if in.FullName != nil {
		visitor.FullName = *in.FullName
	}
	if in.PhoneNumber != nil {
		visitor.PhoneNumber = *in.PhoneNumber
	}
	if in.Gender != nil {
		visitor.Gender = in.Gender
	}
	if in.IDType != nil {
		visitor.IDType = in.IDType
	}
	if in.IDNumber != nil {
		visitor.IDNumber = in.IDNumber
	}
	if in.Date != nil {
		visitor.Date = *in.Date
	}
	if in.Time != nil {
		visitor.Time = *in.Time
	}
	if in.ComingFrom != nil {
		visitor.ComingFrom = *in.ComingFrom
	}
	if in.CompanyName != nil {
		visitor.CompanyName = in.CompanyName
	}
	if in.Location != nil {
		visitor.Location = in.Location
	}
	if in.PurposeOfVisit != nil {
		visitor.PurposeOfVisit = *in.PurposeOfVisit
	}
	if in.ImgURL != nil {
		visitor.ImgURL = in.ImgURL
	}

	if in.Assets != nil {
		assets, err := roster.DecodeAssets(in.Assets)
		if err != nil {
			return nil, errors.New("assets must be an array or a JSON-encoded array")
		}
		b, _ := json.Marshal(assets)
		visitor.Assets = datatypes.JSON(b)
	}
	if in.Guest != nil {
		guests, err := roster.DecodeGuests(in.Guest)
		if err != nil {
			return nil, errors.New("guest must be an array or a JSON-encoded array")
		}
		b, _ := json.Marshal(guests)
		visitor.Guest = datatypes.JSON(b)
	}

	if err := s.DB.WithContext(ctx).Save(visitor).Error; err != nil {
		return nil, err
	}
	return visitor, nil
}

// applyStatusChange enforces the transition graph on a PATCHed status and
// stamps the transition timestamps. checkOutTime can never precede
// checkInTime because check-out is only reachable from CHECKED_IN.
func (s *Service) applyStatusChange(visitor *models.Visitor, rawTarget string, reason *string) error {
	target, ok := status.Normalize(rawTarget)
	if !ok {
		return ErrInvalidStatusChange
	}
	now := time.Now()

	switch target {
	case status.CheckedIn:
		if gerr := status.Guard(visitor.Status, status.DirectionCheckIn); gerr != nil {
			return gerr
		}
		visitor.CheckInTime = &now
	case status.CheckedOut:
		if gerr := status.Guard(visitor.Status, status.DirectionCheckOut); gerr != nil {
			return gerr
		}
		visitor.CheckOutTime = &now
	case status.Approved:
		if !status.CanReview(visitor.Status) {
			return ErrNotPending
		}
	case status.Rejected:
		if !status.CanReview(visitor.Status) {
			return ErrNotPending
		}
		if reason == nil || strings.TrimSpace(*reason) == "" {
			return ErrRejectionReasonRequired
		}
		visitor.RejectionReason = reason
	default:
		// PENDING is only reachable through Reinvite.
		return ErrInvalidStatusChange
	}

	visitor.Status = target
	return nil
}

// Approve marks a PENDING visitor APPROVED. Host-initiated; no extra payload.
func (s *Service) Approve(ctx context.Context, id uint) (*models.Visitor, error) {
	return s.UpdateVisitor(ctx, id, UpdateVisitorInput{Status: ptr(status.Approved)})
}

// Reject marks a PENDING visitor REJECTED with a mandatory reason.
func (s *Service) Reject(ctx context.Context, id uint, reason string) (*models.Visitor, error) {
	return s.UpdateVisitor(ctx, id, UpdateVisitorInput{Status: ptr(status.Rejected), RejectionReason: &reason})
}

// Reinvite starts a fresh PENDING cycle on the same record and mints a new
// code. Prior check-out history is retained; the "existing visitors" view
// keys on checkOutTime, not on current status.
func (s *Service) Reinvite(ctx context.Context, id uint, email string) (*CreateVisitorResult, error) {
	visitor, err := s.GetVisitor(ctx, id)
	if err != nil {
		return nil, err
	}

	// Prior checkInTime/checkOutTime stay as history; the new cycle's
	// transitions overwrite them.
	visitor.Status = status.Pending
	visitor.RejectionReason = nil
	if err := s.DB.WithContext(ctx).Save(visitor).Error; err != nil {
		return nil, err
	}

	code, err := s.mintCode(ctx, visitor.ID)
	if err != nil {
		return nil, err
	}

	if s.Mailer != nil && email != "" {
		var host models.HostDetailsShape
		_ = json.Unmarshal(visitor.HostDetails, &host)
		if err := s.Mailer.SendVisitorInvite(ctx, email, visitor.FullName, host.Name, code.OTP, code.QRCode); err != nil {
			log.Warn().Err(err).Uint("visitor_id", visitor.ID).Msg("reinvite email failed")
		}
	}
	return &CreateVisitorResult{Visitor: visitor, Code: code}, nil
}

func ptr(s string) *string { return &s }
