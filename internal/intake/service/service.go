// Package service implements donor intake: registration with duplicate
// detection, phone normalization, and QR registration links.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"bloodlink_backend/internal/events"
	"bloodlink_backend/internal/intake/transport"
	"bloodlink_backend/internal/records"
	"bloodlink_backend/platform/apperr"
	"bloodlink_backend/platform/config"
	"bloodlink_backend/platform/logger"
	"bloodlink_backend/platform/metrics"
	"bloodlink_backend/platform/phone"
	"bloodlink_backend/platform/sanitize"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	birthdateLayout = "2006-01-02"
	defaultChannel  = "PRC Portal"

	minDonorAge = 16
	maxDonorAge = 65
)

// Store is the slice of the record store intake touches.
type Store interface {
	FindDonorFormByIdentity(ctx context.Context, surname, firstName string, birthdate time.Time) (*records.DonorForm, error)
	CreateDonorForm(ctx context.Context, params records.CreateDonorFormParams) (records.DonorForm, error)
	CreateMedicalHistory(ctx context.Context, donorID int64) (records.MedicalHistory, error)
	PatchMedicalHistoryApproval(ctx context.Context, id uuid.UUID, approval string, needsReview bool) error
}

// Service handles donor registration.
type Service struct {
	store Store
	cfg   config.IntakeConfig
	log   *logger.Logger
	met   *metrics.Metrics
	bus   events.Bus
	now   func() time.Time

	mu     sync.Mutex
	tokens map[string]time.Time
}

// New creates an intake service.
func New(store Store, cfg config.IntakeConfig, log *logger.Logger, met *metrics.Metrics, bus events.Bus) *Service {
	return &Service{
		store:  store,
		cfg:    cfg,
		log:    log,
		met:    met,
		bus:    bus,
		now:    time.Now,
		tokens: make(map[string]time.Time),
	}
}

// RegisterDonor validates and stores a new donor form, then seeds the
// pending medical history record so the donor enters the review queue.
func (s *Service) RegisterDonor(ctx context.Context, req transport.RegisterDonorRequest) (transport.DonorResponse, error) {
	birthdate, err := time.Parse(birthdateLayout, req.Birthdate)
	if err != nil {
		return transport.DonorResponse{}, apperr.Validation("birthdate must be formatted YYYY-MM-DD")
	}

	age := ageAt(birthdate, s.now())
	if age < minDonorAge || age > maxDonorAge {
		return transport.DonorResponse{}, apperr.Validation(
			fmt.Sprintf("donor age %d outside the accepted range %d-%d", age, minDonorAge, maxDonorAge))
	}

	if !phone.IsMobile(req.MobileNumber) {
		return transport.DonorResponse{}, apperr.Validation("mobile_number is not a valid mobile number")
	}
	mobile := phone.NormalizeE164(req.MobileNumber)

	if req.RegistrationToken != "" && !s.consumeToken(req.RegistrationToken) {
		return transport.DonorResponse{}, apperr.Validation("registration token expired or unknown")
	}

	existing, err := s.store.FindDonorFormByIdentity(ctx, req.Surname, req.FirstName, birthdate)
	if err != nil {
		return transport.DonorResponse{}, err
	}
	if existing != nil {
		return transport.DonorResponse{}, apperr.Conflict("donor already registered").
			WithDetails(map[string]int64{"donor_id": existing.DonorID})
	}

	channel := req.RegistrationChannel
	if channel == "" {
		channel = defaultChannel
	}

	donor, err := s.store.CreateDonorForm(ctx, records.CreateDonorFormParams{
		Surname:             sanitize.Text(req.Surname),
		FirstName:           sanitize.Text(req.FirstName),
		MiddleName:          sanitize.TextPtr(req.MiddleName),
		Birthdate:           birthdate,
		Age:                 age,
		Sex:                 req.Sex,
		CivilStatus:         req.CivilStatus,
		PermanentAddress:    sanitize.Text(req.PermanentAddress),
		MobileNumber:        mobile,
		Email:               req.Email,
		RegistrationChannel: channel,
	})
	if err != nil {
		return transport.DonorResponse{}, err
	}

	// The medical review queue is driven by pending history rows; seed
	// one so the new donor surfaces to interviewers immediately.
	if _, err := s.store.CreateMedicalHistory(ctx, donor.DonorID); err != nil {
		return transport.DonorResponse{}, err
	}

	s.log.WithDonorID(donor.DonorID).Info("donor registered", "channel", channel)
	if s.met != nil {
		s.met.DonorsRegistered.Inc()
	}
	if s.bus != nil {
		s.bus.Publish(ctx, events.DonorRegistered{
			BaseEvent:           events.NewBaseEvent(),
			DonorID:             donor.DonorID,
			DonorName:           donor.FullName(),
			RegistrationChannel: channel,
		})
	}

	return toDonorResponse(donor), nil
}

// ReviewMedicalHistory records the interviewer's decision on a pending
// medical history. A decision always clears the review flag; only an
// "Approved" outcome lets the donor pass the reconciler's first gate.
func (s *Service) ReviewMedicalHistory(ctx context.Context, historyID string, req transport.ReviewMedicalHistoryRequest) (transport.MedicalReviewResponse, error) {
	id, err := uuid.Parse(historyID)
	if err != nil {
		return transport.MedicalReviewResponse{}, apperr.Validation("medical history id is not a valid uuid")
	}

	if err := s.store.PatchMedicalHistoryApproval(ctx, id, req.Approval, false); err != nil {
		return transport.MedicalReviewResponse{}, err
	}

	s.log.Info("medical history reviewed",
		"medical_history_id", id.String(),
		"approval", req.Approval,
	)

	return transport.MedicalReviewResponse{
		MedicalHistoryID: id.String(),
		Approval:         req.Approval,
		NeedsReview:      false,
	}, nil
}

// RegistrationQR mints a single-use registration token and renders the
// registration link as a QR PNG for on-site posters and kiosk screens.
func (s *Service) RegistrationQR(ctx context.Context) ([]byte, error) {
	token := uuid.NewString()
	expiry := s.now().Add(s.cfg.GetRegistrationTokenTTL())

	s.mu.Lock()
	s.pruneExpiredLocked()
	s.tokens[token] = expiry
	s.mu.Unlock()

	link := fmt.Sprintf("%s/register?token=%s", strings.TrimRight(s.cfg.GetAppBaseURL(), "/"), token)
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to render registration QR", err)
	}
	return png, nil
}

// consumeToken validates and invalidates a registration token.
func (s *Service) consumeToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.tokens[token]
	if !ok {
		return false
	}
	delete(s.tokens, token)
	return s.now().Before(expiry)
}

func (s *Service) pruneExpiredLocked() {
	now := s.now()
	for token, expiry := range s.tokens {
		if now.After(expiry) {
			delete(s.tokens, token)
		}
	}
}

func ageAt(birthdate, now time.Time) int {
	age := now.Year() - birthdate.Year()
	if now.Month() < birthdate.Month() ||
		(now.Month() == birthdate.Month() && now.Day() < birthdate.Day()) {
		age--
	}
	return age
}

func toDonorResponse(d records.DonorForm) transport.DonorResponse {
	return transport.DonorResponse{
		DonorID:             d.DonorID,
		Surname:             d.Surname,
		FirstName:           d.FirstName,
		MiddleName:          d.MiddleName,
		Birthdate:           d.Birthdate.Format(birthdateLayout),
		Age:                 d.Age,
		Sex:                 d.Sex,
		CivilStatus:         d.CivilStatus,
		PermanentAddress:    d.PermanentAddress,
		MobileNumber:        d.MobileNumber,
		Email:               d.Email,
		RegistrationChannel: d.RegistrationChannel,
		SubmittedAt:         d.SubmittedAt,
	}
}
