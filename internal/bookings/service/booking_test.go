package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingserrors "hopper/internal/bookings/errors"
	"hopper/internal/bookings/validator"
	"hopper/pkg/config"
	mongotx "hopper/pkg/db/mongo"
	apperrors "hopper/pkg/errors"
	"hopper/pkg/logger"
	"hopper/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testRoomID    = "64f1b2c3d4e5f6a7b8c9d0e1"
	testDeskID    = "64f1b2c3d4e5f6a7b8c9d0e2"
	testUserID    = "64f1b2c3d4e5f6a7b8c9d0e3"
	testCompanyID = "64f1b2c3d4e5f6a7b8c9d0e4"
	testEntryID   = "64f1b2c3d4e5f6a7b8c9d0e5"
)

// testSessionContext satisfies mongo.SessionContext for transaction mocks.
// The embedded Session is never touched by the service.
type testSessionContext struct {
	context.Context
	mongo.Session
}

// mockBookingRepository keeps confirmed bookings in memory and implements
// the overlap and seat-sum queries over that slice, so interval semantics
// are exercised for real instead of being stubbed per test.
type mockBookingRepository struct {
	mu       sync.Mutex
	bookings []*model.Booking

	createErr error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	booking.ID = primitive.NewObjectID().Hex()
	booking.CreatedAt = time.Now().UTC()
	copied := *booking
	m.bookings = append(m.bookings, &copied)
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID == id {
			copied := *b
			return &copied, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindOverlapping(ctx context.Context, resourceID string, start, end time.Time) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.ResourceID != resourceID || b.Status != model.BookingStatusConfirmed {
			continue
		}
		if b.StartTime.Before(end) && b.EndTime.After(start) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) SumSeats(ctx context.Context, resourceID string, dayStart, dayEnd time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, b := range m.bookings {
		if b.ResourceID != resourceID || b.Status != model.BookingStatusConfirmed {
			continue
		}
		if b.StartTime.Before(dayEnd) && b.EndTime.After(dayStart) {
			total += b.SeatsCount
		}
	}
	return total, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id, fromStatus, toStatus string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bookings {
		if b.ID != id {
			continue
		}
		if b.Status != fromStatus {
			return bookingserrors.ErrAlreadyCancelled
		}
		b.Status = toStatus
		cancelled := at
		b.CancelledAt = &cancelled
		return nil
	}
	return bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindByResource(ctx context.Context, resourceID string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.ResourceID == resourceID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) CountByResource(ctx context.Context, resourceID string, startTime, endTime *time.Time) (int64, error) {
	bookings, _ := m.FindByResource(ctx, resourceID, startTime, endTime, 0, 0)
	return int64(len(bookings)), nil
}

// ExecuteTransaction runs fn and discards any bookings created during a
// failed attempt, mimicking a rollback.
func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.mu.Lock()
	staged := len(m.bookings)
	m.mu.Unlock()

	err := fn(testSessionContext{Context: ctx})
	if err != nil {
		m.mu.Lock()
		m.bookings = m.bookings[:staged]
		m.mu.Unlock()
	}
	return err
}

// mockLockRepository enforces uniqueness over an in-memory set, so two
// concurrent admissions on the same key collide the way the unique index
// makes them collide in Mongo.
type mockLockRepository struct {
	mu    sync.Mutex
	locks map[string]bool
}

func newMockLockRepository() *mockLockRepository {
	return &mockLockRepository{locks: map[string]bool{}}
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.BookingLock) (*model.BookingLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[lock.ID] {
		return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}
	m.locks[lock.ID] = true
	return lock, nil
}

func (m *mockLockRepository) Delete(ctx context.Context, lockID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, lockID)
	return nil
}

type mockResourceFinder struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Resource, error)
}

func (m *mockResourceFinder) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	return m.findByIDFunc(ctx, id)
}

type mockCreditLedger struct {
	mu        sync.Mutex
	remaining int
	debitErr  error
	debited   int
}

func (m *mockCreditLedger) BalanceAt(ctx context.Context, companyID string, at time.Time) (*model.CreditBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &model.CreditBalance{
		EntryID:   testEntryID,
		Remaining: m.remaining,
	}, nil
}

func (m *mockCreditLedger) Debit(ctx context.Context, entryID string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.debitErr != nil {
		return m.debitErr
	}
	if amount > m.remaining {
		return apperrors.InsufficientCredits(m.remaining, amount)
	}
	m.remaining -= amount
	m.debited += amount
	return nil
}

type mockAccessPolicy struct {
	authorizeFunc func(ctx context.Context, userID string) error
}

func (m *mockAccessPolicy) AuthorizeUser(ctx context.Context, userID string) error {
	if m.authorizeFunc != nil {
		return m.authorizeFunc(ctx, userID)
	}
	return nil
}

type mockEventPublisher struct {
	mu        sync.Mutex
	confirmed []string
	cancelled []string
}

func (m *mockEventPublisher) BookingConfirmed(ctx context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmed = append(m.confirmed, booking.ID)
	return nil
}

func (m *mockEventPublisher) BookingCancelled(ctx context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, booking.ID)
	return nil
}

// --- Fixtures ---

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:     "error",
			Format:    logger.JSON,
			AddSource: false,
			Service:   "test",
		}),
		BookingLockTTL:         10 * time.Second,
		PersistenceMaxAttempts: 1,
		PersistenceBackoff:     time.Millisecond,
		ReadTimeout:            5 * time.Second,
		WriteTimeout:           5 * time.Second,
	}
}

func meetingRoom(hourlyRate int) *model.Resource {
	return &model.Resource{
		ID:               testRoomID,
		Name:             "Salle Opera",
		Type:             model.ResourceTypeMeetingRoom,
		HourlyCreditRate: hourlyRate,
		Status:           model.ResourceStatusAvailable,
	}
}

func flexDesk(capacity, dailyRate int) *model.Resource {
	return &model.Resource{
		ID:              testDeskID,
		Name:            "Open Space Bastille",
		Type:            model.ResourceTypeFlexDesk,
		Capacity:        &capacity,
		DailyCreditRate: dailyRate,
		Status:          model.ResourceStatusAvailable,
	}
}

type fixture struct {
	repo    *mockBookingRepository
	locks   *mockLockRepository
	credits *mockCreditLedger
	access  *mockAccessPolicy
	events  *mockEventPublisher
	service BookingService
}

func newFixture(t *testing.T, resource *model.Resource, remainingCredits int) *fixture {
	t.Helper()
	cfg := testConfig()
	f := &fixture{
		repo:    &mockBookingRepository{},
		locks:   newMockLockRepository(),
		credits: &mockCreditLedger{remaining: remainingCredits},
		access:  &mockAccessPolicy{},
		events:  &mockEventPublisher{},
	}
	f.service = NewBookingService(
		f.repo,
		f.locks,
		&mockResourceFinder{findByIDFunc: func(ctx context.Context, id string) (*model.Resource, error) {
			return resource, nil
		}},
		f.credits,
		f.access,
		f.events,
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)
	return f
}

func roomRequest(start, end time.Time) *model.MeetingRoomReservation {
	return &model.MeetingRoomReservation{
		UserID:     testUserID,
		ResourceID: testRoomID,
		CompanyID:  testCompanyID,
		StartTime:  start,
		EndTime:    end,
	}
}

func deskRequest(date string, seats int) *model.FlexDeskReservation {
	return &model.FlexDeskReservation{
		UserID:     testUserID,
		ResourceID: testDeskID,
		CompanyID:  testCompanyID,
		Date:       date,
		Seats:      seats,
	}
}

func expectCode(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
	return appErr
}

func futureSlot(hours int) (time.Time, time.Time) {
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Hour)
	return start, start.Add(time.Duration(hours) * time.Hour)
}

// --- Meeting rooms ---

func TestReserveMeetingRoom_Success(t *testing.T) {
	f := newFixture(t, meetingRoom(2), 10)

	start, end := futureSlot(2)
	booking, err := f.service.ReserveMeetingRoom(context.Background(), roomRequest(start, end))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != model.BookingStatusConfirmed {
		t.Errorf("expected confirmed status, got %s", booking.Status)
	}
	if booking.CreditsUsed != 4 {
		t.Errorf("expected 4 credits used for 2h at rate 2, got %d", booking.CreditsUsed)
	}
	if f.credits.debited != 4 {
		t.Errorf("expected 4 credits debited, got %d", f.credits.debited)
	}
	if len(f.events.confirmed) != 1 {
		t.Errorf("expected 1 confirmed event, got %d", len(f.events.confirmed))
	}
}

func TestReserveMeetingRoom_OverlapRejected(t *testing.T) {
	f := newFixture(t, meetingRoom(2), 100)

	start, end := futureSlot(2)
	if _, err := f.service.ReserveMeetingRoom(context.Background(), roomRequest(start, end)); err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}

	// 30 minutes into the confirmed window
	_, err := f.service.ReserveMeetingRoom(context.Background(),
		roomRequest(start.Add(30*time.Minute), end.Add(30*time.Minute)))
	expectCode(t, err, apperrors.CodeConflict)

	if f.credits.debited != 4 {
		t.Errorf("rejected reservation must not debit credits, debited=%d", f.credits.debited)
	}
}

func TestReserveMeetingRoom_BackToBackAllowed(t *testing.T) {
	f := newFixture(t, meetingRoom(1), 100)

	start, end := futureSlot(1)
	if _, err := f.service.ReserveMeetingRoom(context.Background(), roomRequest(start, end)); err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}

	// Starts exactly when the first ends: half-open windows do not overlap
	booking, err := f.service.ReserveMeetingRoom(context.Background(), roomRequest(end, end.Add(time.Hour)))
	if err != nil {
		t.Fatalf("back-to-back reservation rejected: %v", err)
	}
	if booking.StartTime != end {
		t.Errorf("expected start %v, got %v", end, booking.StartTime)
	}
}

func TestReserveMeetingRoom_InsufficientCredits(t *testing.T) {
	f := newFixture(t, meetingRoom(2), 3)

	// 2 hours at rate 2 costs 4, balance holds 3
	start, end := futureSlot(2)
	_, err := f.service.ReserveMeetingRoom(context.Background(), roomRequest(start, end))
	appErr := expectCode(t, err, apperrors.CodeInsufficientCredits)

	if appErr.Details["available"] != 3 || appErr.Details["required"] != 4 {
		t.Errorf("expected details available=3 required=4, got %v", appErr.Details)
	}
	if len(f.repo.bookings) != 0 {
		t.Errorf("no booking must exist after a rejected admission, got %d", len(f.repo.bookings))
	}
}

func TestReserveMeetingRoom_PartialHourRoundsUp(t *testing.T) {
	f := newFixture(t, meetingRoom(2), 10)

	start, _ := futureSlot(1)
	booking, err := f.service.ReserveMeetingRoom(context.Background(),
		roomRequest(start, start.Add(90*time.Minute)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.CreditsUsed != 4 {
		t.Errorf("90 minutes at rate 2 must cost 4 credits, got %d", booking.CreditsUsed)
	}
}

func TestReserveMeetingRoom_ValidationFailures(t *testing.T) {
	f := newFixture(t, meetingRoom(2), 10)
	start, end := futureSlot(1)

	tests := []struct {
		name string
		req  *model.MeetingRoomReservation
	}{
		{"end before start", roomRequest(end, start)},
		{"start in the past", roomRequest(start.Add(-48*time.Hour), end.Add(-48*time.Hour))},
		{"missing user", &model.MeetingRoomReservation{
			ResourceID: testRoomID, CompanyID: testCompanyID, StartTime: start, EndTime: end,
		}},
		{"malformed resource id", &model.MeetingRoomReservation{
			UserID: testUserID, ResourceID: "not-an-object-id", CompanyID: testCompanyID,
			StartTime: start, EndTime: end,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.ReserveMeetingRoom(context.Background(), tt.req)
			expectCode(t, err, apperrors.CodeValidation)
		})
	}
}

func TestReserveMeetingRoom_ResourceChecks(t *testing.T) {
	start, end := futureSlot(1)

	t.Run("wrong resource type", func(t *testing.T) {
		f := newFixture(t, flexDesk(6, 1), 10)
		req := roomRequest(start, end)
		req.ResourceID = testDeskID
		_, err := f.service.ReserveMeetingRoom(context.Background(), req)
		expectCode(t, err, apperrors.CodeInvalidInput)
	})

	t.Run("resource under maintenance", func(t *testing.T) {
		room := meetingRoom(2)
		room.Status = model.ResourceStatusMaintenance
		f := newFixture(t, room, 10)
		_, err := f.service.ReserveMeetingRoom(context.Background(), roomRequest(start, end))
		expectCode(t, err, apperrors.CodeConflict)
	})
}

func TestReserveMeetingRoom_UnauthorizedUser(t *testing.T) {
	f := newFixture(t, meetingRoom(2), 10)
	f.access.authorizeFunc = func(ctx context.Context, userID string) error {
		return apperrors.Forbidden("Email is not authorized to book")
	}

	start, end := futureSlot(1)
	_, err := f.service.ReserveMeetingRoom(context.Background(), roomRequest(start, end))
	expectCode(t, err, apperrors.CodeForbidden)

	if len(f.repo.bookings) != 0 {
		t.Errorf("no booking must exist for an unauthorized user, got %d", len(f.repo.bookings))
	}
	if f.credits.debited != 0 {
		t.Errorf("no credits must be debited for an unauthorized user, got %d", f.credits.debited)
	}
}

func TestReserveMeetingRoom_DebitFailureRollsBack(t *testing.T) {
	f := newFixture(t, meetingRoom(2), 10)
	f.credits.debitErr = apperrors.Internal("ledger write failed", errors.New("boom"))

	start, end := futureSlot(1)
	_, err := f.service.ReserveMeetingRoom(context.Background(), roomRequest(start, end))
	if err == nil {
		t.Fatal("expected error when debit fails")
	}

	if len(f.repo.bookings) != 0 {
		t.Errorf("booking must be rolled back when the debit fails, found %d", len(f.repo.bookings))
	}
	if len(f.events.confirmed) != 0 {
		t.Errorf("no event must be published for a rolled-back booking")
	}
}

func TestReserveMeetingRoom_ConcurrentAdmission(t *testing.T) {
	f := newFixture(t, meetingRoom(2), 100)
	start, end := futureSlot(1)

	const attempts = 2
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.ReserveMeetingRoom(context.Background(), roomRequest(start, end))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		appErr, ok := err.(*apperrors.AppError)
		if !ok || appErr.Code != apperrors.CodeConflict {
			t.Fatalf("unexpected error: %v", err)
		}
		conflicts++
	}

	if successes != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one success and one conflict, got %d/%d", successes, conflicts)
	}
	if len(f.repo.bookings) != 1 {
		t.Fatalf("expected exactly one confirmed booking, got %d", len(f.repo.bookings))
	}
	if f.credits.debited != 2 {
		t.Errorf("expected one debit of 2 credits, got %d", f.credits.debited)
	}
}

// --- Flex desks ---

func tomorrow() string {
	return time.Now().UTC().Add(48 * time.Hour).Format("2006-01-02")
}

func TestReserveFlexDesk_Success(t *testing.T) {
	f := newFixture(t, flexDesk(6, 1), 10)

	booking, err := f.service.ReserveFlexDesk(context.Background(), deskRequest(tomorrow(), 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.SeatsCount != 3 {
		t.Errorf("expected 3 seats, got %d", booking.SeatsCount)
	}
	if booking.CreditsUsed != 3 {
		t.Errorf("3 seats at rate 1 must cost 3 credits, got %d", booking.CreditsUsed)
	}
	if !booking.EndTime.Equal(booking.StartTime.Add(24 * time.Hour)) {
		t.Errorf("flex booking must span one day bucket, got %v - %v", booking.StartTime, booking.EndTime)
	}
}

func TestReserveFlexDesk_CapacityExceeded(t *testing.T) {
	f := newFixture(t, flexDesk(6, 1), 100)
	date := tomorrow()

	if _, err := f.service.ReserveFlexDesk(context.Background(), deskRequest(date, 5)); err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}

	_, err := f.service.ReserveFlexDesk(context.Background(), deskRequest(date, 2))
	appErr := expectCode(t, err, apperrors.CodeCapacityExceeded)

	if appErr.Details["occupied"] != 5 || appErr.Details["capacity"] != 6 {
		t.Errorf("expected details occupied=5 capacity=6, got %v", appErr.Details)
	}

	// The last remaining seat is still admittable
	if _, err := f.service.ReserveFlexDesk(context.Background(), deskRequest(date, 1)); err != nil {
		t.Fatalf("reservation of last seat failed: %v", err)
	}
}

func TestReserveFlexDesk_ConcurrentLastSeat(t *testing.T) {
	f := newFixture(t, flexDesk(1, 1), 100)
	date := tomorrow()

	const attempts = 2
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.ReserveFlexDesk(context.Background(), deskRequest(date, 1))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, rejections int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		appErr, ok := err.(*apperrors.AppError)
		if !ok || (appErr.Code != apperrors.CodeConflict && appErr.Code != apperrors.CodeCapacityExceeded) {
			t.Fatalf("unexpected error: %v", err)
		}
		rejections++
	}

	if successes != 1 || rejections != 1 {
		t.Fatalf("expected exactly one success and one rejection, got %d/%d", successes, rejections)
	}

	var seats int
	for _, b := range f.repo.bookings {
		if b.Status == model.BookingStatusConfirmed {
			seats += b.SeatsCount
		}
	}
	if seats != 1 {
		t.Fatalf("confirmed seats must not exceed capacity 1, got %d", seats)
	}
	if f.credits.debited != 1 {
		t.Errorf("expected one debit of 1 credit, got %d", f.credits.debited)
	}
}

func TestReserveFlexDesk_OtherDayUnaffected(t *testing.T) {
	f := newFixture(t, flexDesk(2, 1), 100)
	date := tomorrow()
	nextDate := time.Now().UTC().Add(72 * time.Hour).Format("2006-01-02")

	if _, err := f.service.ReserveFlexDesk(context.Background(), deskRequest(date, 2)); err != nil {
		t.Fatalf("first reservation failed: %v", err)
	}

	// Same desk is full for `date` but free the next day
	if _, err := f.service.ReserveFlexDesk(context.Background(), deskRequest(nextDate, 2)); err != nil {
		t.Fatalf("reservation on a different day rejected: %v", err)
	}
}

func TestReserveFlexDesk_InsufficientCredits(t *testing.T) {
	f := newFixture(t, flexDesk(6, 2), 3)

	// 2 seats at rate 2 costs 4, balance holds 3
	_, err := f.service.ReserveFlexDesk(context.Background(), deskRequest(tomorrow(), 2))
	appErr := expectCode(t, err, apperrors.CodeInsufficientCredits)
	if appErr.Details["available"] != 3 || appErr.Details["required"] != 4 {
		t.Errorf("expected details available=3 required=4, got %v", appErr.Details)
	}
}

func TestReserveFlexDesk_InvalidDate(t *testing.T) {
	f := newFixture(t, flexDesk(6, 1), 10)

	tests := []struct {
		name string
		date string
	}{
		{"malformed", "not-a-date"},
		{"wrong layout", "01/09/2026"},
		{"in the past", "2020-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.ReserveFlexDesk(context.Background(), deskRequest(tt.date, 1))
			expectCode(t, err, apperrors.CodeValidation)
		})
	}
}

// --- Cancellation ---

func TestCancel_Success(t *testing.T) {
	f := newFixture(t, meetingRoom(2), 10)
	start, end := futureSlot(1)
	booking, err := f.service.ReserveMeetingRoom(context.Background(), roomRequest(start, end))
	if err != nil {
		t.Fatalf("reservation failed: %v", err)
	}
	debitedBefore := f.credits.debited

	cancelled, err := f.service.Cancel(context.Background(), booking.ID, testUserID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if cancelled.Status != model.BookingStatusCancelled {
		t.Errorf("expected cancelled status, got %s", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Error("expected cancelled_at to be set")
	}
	if f.credits.debited != debitedBefore {
		t.Errorf("cancellation must not refund credits, debited changed %d -> %d", debitedBefore, f.credits.debited)
	}
	if len(f.events.cancelled) != 1 {
		t.Errorf("expected 1 cancelled event, got %d", len(f.events.cancelled))
	}
}

func TestCancel_FreesTheSlot(t *testing.T) {
	f := newFixture(t, meetingRoom(2), 100)
	start, end := futureSlot(1)
	booking, err := f.service.ReserveMeetingRoom(context.Background(), roomRequest(start, end))
	if err != nil {
		t.Fatalf("reservation failed: %v", err)
	}

	if _, err := f.service.Cancel(context.Background(), booking.ID, testUserID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// Cancelled bookings no longer block the window
	if _, err := f.service.ReserveMeetingRoom(context.Background(), roomRequest(start, end)); err != nil {
		t.Fatalf("slot must be free after cancellation: %v", err)
	}
}

func TestCancel_AlreadyCancelled(t *testing.T) {
	f := newFixture(t, meetingRoom(2), 10)
	start, end := futureSlot(1)
	booking, err := f.service.ReserveMeetingRoom(context.Background(), roomRequest(start, end))
	if err != nil {
		t.Fatalf("reservation failed: %v", err)
	}

	if _, err := f.service.Cancel(context.Background(), booking.ID, testUserID); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}

	_, err = f.service.Cancel(context.Background(), booking.ID, testUserID)
	expectCode(t, err, apperrors.CodeAlreadyCancelled)
}

func TestCancel_EmptyID(t *testing.T) {
	f := newFixture(t, meetingRoom(2), 10)
	_, err := f.service.Cancel(context.Background(), "", testUserID)
	expectCode(t, err, apperrors.CodeInvalidInput)
}
