package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "hopper/internal/bookings/errors"
	"hopper/internal/bookings/pricing"
	"hopper/internal/bookings/repository"
	"hopper/internal/bookings/validator"
	"hopper/pkg/config"
	mongotx "hopper/pkg/db/mongo"
	apperrors "hopper/pkg/errors"
	"hopper/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ResourceFinder resolves the resource an admission request targets.
type ResourceFinder interface {
	FindByID(ctx context.Context, id string) (*model.Resource, error)
}

// CreditLedger is the slice of the credits domain the admission pipeline
// needs: read the balance, debit inside the reservation transaction.
type CreditLedger interface {
	BalanceAt(ctx context.Context, companyID string, at time.Time) (*model.CreditBalance, error)
	Debit(ctx context.Context, entryID string, amount int) error
}

// EventPublisher emits booking lifecycle events. Publishing happens after
// commit and is best-effort; a failed publish never rolls back a booking.
type EventPublisher interface {
	BookingConfirmed(ctx context.Context, booking *model.Booking) error
	BookingCancelled(ctx context.Context, booking *model.Booking) error
}

// AccessPolicy decides whether the requesting user may book at all. A nil
// policy admits everyone.
type AccessPolicy interface {
	AuthorizeUser(ctx context.Context, userID string) error
}

type BookingService interface {
	ReserveMeetingRoom(ctx context.Context, req *model.MeetingRoomReservation) (*model.Booking, error)
	ReserveFlexDesk(ctx context.Context, req *model.FlexDeskReservation) (*model.Booking, error)
	Cancel(ctx context.Context, id, userID string) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByResource(ctx context.Context, resourceID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Booking, int64, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	resources ResourceFinder
	credits   CreditLedger
	access    AccessPolicy
	events    EventPublisher
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	resources ResourceFinder,
	credits CreditLedger,
	access AccessPolicy,
	events EventPublisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		resources: resources,
		credits:   credits,
		access:    access,
		events:    events,
		validator: validator,
		cfg:       cfg,
	}
}

// ReserveMeetingRoom admits a room reservation for the half-open window
// [StartTime, EndTime). Admission order inside the transaction: overlap
// check, balance check, insert, debit. The advisory lock serializes
// concurrent attempts on the same room so the overlap check cannot race.
func (s *bookingService) ReserveMeetingRoom(ctx context.Context, req *model.MeetingRoomReservation) (*model.Booking, error) {
	if err := s.validator.ValidateMeetingRoom(req); err != nil {
		s.cfg.Log.Warn("Meeting room reservation validation failed", "error", err)
		return nil, apperrors.Validation("Invalid reservation request", map[string]any{"error": err.Error()})
	}
	if err := s.authorize(ctx, req.UserID); err != nil {
		return nil, err
	}

	resource, err := s.admittableResource(ctx, req.ResourceID, model.ResourceTypeMeetingRoom)
	if err != nil {
		return nil, err
	}

	cost := pricing.MeetingRoomCost(req.StartTime, req.EndTime, resource.HourlyCreditRate)

	lockID, err := s.acquireAdmissionLock(ctx, admissionLockID(req.ResourceID))
	if err != nil {
		return nil, err
	}
	defer s.releaseAdmissionLock(ctx, lockID)

	booking := &model.Booking{
		ResourceID:  req.ResourceID,
		UserID:      req.UserID,
		CompanyID:   req.CompanyID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		SeatsCount:  1,
		CreditsUsed: cost,
		Status:      model.BookingStatusConfirmed,
	}

	err = s.runAdmission(ctx, "reserve_meeting_room", func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindOverlapping(sessCtx, req.ResourceID, req.StartTime, req.EndTime)
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}
		if len(existing) > 0 {
			return apperrors.Conflict(fmt.Sprintf(
				"Booking time overlaps with existing booking (%s - %s)",
				existing[0].StartTime.Format(time.RFC3339),
				existing[0].EndTime.Format(time.RFC3339),
			))
		}

		return s.debitAndInsert(sessCtx, booking, cost, req.StartTime)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to reserve meeting room",
			"resource_id", req.ResourceID,
			"company_id", req.CompanyID,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Meeting room reserved",
		"id", booking.ID,
		"resource_id", booking.ResourceID,
		"company_id", booking.CompanyID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
		"credits_used", booking.CreditsUsed,
	)
	s.publishConfirmed(ctx, booking)
	return booking, nil
}

// ReserveFlexDesk admits seats on a flex desk for one UTC day bucket. Unlike
// rooms, flex desks admit concurrent bookings until the summed seat count
// reaches the resource capacity.
func (s *bookingService) ReserveFlexDesk(ctx context.Context, req *model.FlexDeskReservation) (*model.Booking, error) {
	if err := s.validator.ValidateFlexDesk(req); err != nil {
		s.cfg.Log.Warn("Flex desk reservation validation failed", "error", err)
		return nil, apperrors.Validation("Invalid reservation request", map[string]any{"error": err.Error()})
	}
	if err := s.authorize(ctx, req.UserID); err != nil {
		return nil, err
	}

	resource, err := s.admittableResource(ctx, req.ResourceID, model.ResourceTypeFlexDesk)
	if err != nil {
		return nil, err
	}
	if resource.Capacity == nil {
		return nil, apperrors.Internal("Flex desk has no capacity configured", nil)
	}
	capacity := *resource.Capacity

	day, _ := time.Parse("2006-01-02", req.Date)
	dayStart := day.UTC()
	dayEnd := dayStart.Add(24 * time.Hour)

	cost := pricing.FlexDeskCost(req.Seats, resource.DailyCreditRate)

	lockID, err := s.acquireAdmissionLock(ctx, admissionLockID(req.ResourceID, req.Date))
	if err != nil {
		return nil, err
	}
	defer s.releaseAdmissionLock(ctx, lockID)

	booking := &model.Booking{
		ResourceID:  req.ResourceID,
		UserID:      req.UserID,
		CompanyID:   req.CompanyID,
		StartTime:   dayStart,
		EndTime:     dayEnd,
		SeatsCount:  req.Seats,
		CreditsUsed: cost,
		Status:      model.BookingStatusConfirmed,
	}

	err = s.runAdmission(ctx, "reserve_flex_desk", func(sessCtx mongo.SessionContext) error {
		occupied, err := s.repo.SumSeats(sessCtx, req.ResourceID, dayStart, dayEnd)
		if err != nil {
			return apperrors.Internal("Failed to check seat occupancy", err)
		}
		if occupied+req.Seats > capacity {
			return apperrors.CapacityExceeded(
				fmt.Sprintf("Only %d of %d seats remain on %s", capacity-occupied, capacity, req.Date),
				req.Seats, occupied, capacity,
			)
		}

		return s.debitAndInsert(sessCtx, booking, cost, dayStart)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to reserve flex desk",
			"resource_id", req.ResourceID,
			"company_id", req.CompanyID,
			"date", req.Date,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Flex desk reserved",
		"id", booking.ID,
		"resource_id", booking.ResourceID,
		"company_id", booking.CompanyID,
		"date", req.Date,
		"seats", booking.SeatsCount,
		"credits_used", booking.CreditsUsed,
	)
	s.publishConfirmed(ctx, booking)
	return booking, nil
}

// Cancel transitions a confirmed booking to cancelled. Credits are not
// refunded and the booking document is kept. Cancelling twice is an error.
// The user ID is recorded for audit only; any user may cancel any booking
// until product defines ownership.
func (s *bookingService) Cancel(ctx context.Context, id, userID string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	now := time.Now().UTC()
	err := s.repo.UpdateStatus(ctx, id, model.BookingStatusConfirmed, model.BookingStatusCancelled, now)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Booking", id)
		case errors.Is(err, bookingserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		case errors.Is(err, bookingserrors.ErrAlreadyCancelled):
			return nil, apperrors.AlreadyCancelled(id)
		default:
			return nil, apperrors.Internal("Failed to cancel booking", err)
		}
	}

	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking cancelled",
		"id", booking.ID,
		"resource_id", booking.ResourceID,
		"cancelled_by", userID,
		"credits_used", booking.CreditsUsed,
	)
	if s.events != nil {
		if pubErr := s.events.BookingCancelled(ctx, booking); pubErr != nil {
			s.cfg.Log.Warn("Failed to publish booking cancelled event", "id", booking.ID, "error", pubErr)
		}
	}
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) ListByResource(ctx context.Context, resourceID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Booking, int64, error) {
	if resourceID == "" {
		return nil, 0, apperrors.InvalidInput("Resource ID is required")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByResource(ctx, resourceID, startTime, endTime)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "resource_id", resourceID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindByResource(ctx, resourceID, startTime, endTime, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "resource_id", resourceID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// --- Helpers ---

func (s *bookingService) authorize(ctx context.Context, userID string) error {
	if s.access == nil {
		return nil
	}
	return s.access.AuthorizeUser(ctx, userID)
}

// admittableResource loads the resource and rejects requests against the
// wrong kind or a resource that is not taking bookings.
func (s *bookingService) admittableResource(ctx context.Context, resourceID, wantType string) (*model.Resource, error) {
	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if resource.Type != wantType {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Resource is a %s, not a %s", resource.Type, wantType))
	}
	if resource.Status != model.ResourceStatusAvailable {
		return nil, apperrors.Conflict(fmt.Sprintf("Resource is %s and cannot be booked", resource.Status))
	}
	return resource, nil
}

// debitAndInsert is the shared tail of both admission paths: resolve the
// ledger period, check the balance, insert the booking, debit the credits.
// Runs inside the transaction, so a failed debit rolls back the insert.
func (s *bookingService) debitAndInsert(sessCtx mongo.SessionContext, booking *model.Booking, cost int, at time.Time) error {
	balance, err := s.credits.BalanceAt(sessCtx, booking.CompanyID, at)
	if err != nil {
		return err
	}
	if balance.Remaining < cost {
		return apperrors.InsufficientCredits(balance.Remaining, cost)
	}

	if err := s.repo.Create(sessCtx, booking); err != nil {
		return apperrors.Internal("Failed to create booking", err)
	}

	if cost > 0 {
		if err := s.credits.Debit(sessCtx, balance.EntryID, cost); err != nil {
			return err
		}
	}
	return nil
}

// runAdmission executes the transactional section with bounded retries for
// transient persistence failures. Domain rejections pass through untouched.
func (s *bookingService) runAdmission(ctx context.Context, op string, fn mongotx.TransactionFunc) error {
	retryCfg := mongotx.RetryConfig{
		MaxAttempts: s.cfg.PersistenceMaxAttempts,
		Backoff:     s.cfg.PersistenceBackoff,
	}
	return mongotx.WithRetry(ctx, retryCfg, s.cfg.Log, op, func(ctx context.Context) error {
		return s.repo.ExecuteTransaction(ctx, fn)
	})
}

func admissionLockID(parts ...string) string {
	id := "admission"
	for _, p := range parts {
		id += "_" + p
	}
	return id
}

// acquireAdmissionLock serializes admission attempts on one resource (rooms)
// or one resource-day (flex desks). The second writer gets a conflict and is
// asked to retry rather than queueing behind the first.
func (s *bookingService) acquireAdmissionLock(ctx context.Context, lockID string) (string, error) {
	lock := &model.BookingLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.BookingLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This resource is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire booking lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseAdmissionLock(ctx context.Context, lockID string) {
	if err := s.lockRepo.Delete(ctx, lockID); err != nil {
		s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", err)
	}
}

func (s *bookingService) publishConfirmed(ctx context.Context, booking *model.Booking) {
	if s.events == nil {
		return
	}
	if err := s.events.BookingConfirmed(ctx, booking); err != nil {
		s.cfg.Log.Warn("Failed to publish booking confirmed event", "id", booking.ID, "error", err)
	}
}
