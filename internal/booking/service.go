package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/dates"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

// RoomFinder is the part of the room catalog the booking service reads.
type RoomFinder interface {
	GetByID(ctx context.Context, id string) (*room.Room, error)
	ListBookable(ctx context.Context, minCapacity int) ([]*room.Room, error)
}

// Notifier is told about booking lifecycle events after they are stored.
type Notifier interface {
	BookingCreated(ctx context.Context, b *Booking) error
	BookingStatusChanged(ctx context.Context, b *Booking, from Status) error
}

type CreateRequest struct {
	UserID          string // guest the stay is for; only admins may book for someone else
	RoomID          string
	CheckIn         time.Time
	CheckOut        time.Time
	GuestsCount     int
	SpecialRequests string
}

// Availability is the answer to a single-room availability check.
type Availability struct {
	RoomID     string
	CheckIn    time.Time
	CheckOut   time.Time
	Available  bool
	Nights     int
	TotalPrice float64
}

// Offer is a room that can take a requested stay, with its quoted price.
type Offer struct {
	Room       *room.Room
	Nights     int
	TotalPrice float64
}

type Service interface {
	Create(ctx context.Context, req CreateRequest, actor Actor) (*Booking, error)
	GetByID(ctx context.Context, id string, actor Actor) (*Booking, error)
	GetByNumber(ctx context.Context, number string, actor Actor) (*Booking, error)
	List(ctx context.Context, filter Filter, actor Actor) ([]*Booking, int, error)
	ChangeDates(ctx context.Context, id string, checkIn, checkOut time.Time, actor Actor) (*Booking, error)
	Confirm(ctx context.Context, id string) (*Booking, error)
	Cancel(ctx context.Context, id string, actor Actor) (*Booking, error)
	Complete(ctx context.Context, id string) (*Booking, error)
	MarkNoShow(ctx context.Context, id string) (*Booking, error)

	CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeBookingID string) (*Availability, error)
	Conflicts(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeBookingID string) ([]*Booking, error)
	Calendar(ctx context.Context, roomID string, start, end time.Time) ([]CalendarDay, error)
	SearchAvailableRooms(ctx context.Context, checkIn, checkOut time.Time, guests int) ([]Offer, error)
}

// numberAttempts bounds retries when a generated booking number collides.
const numberAttempts = 3

type service struct {
	repo     Repository
	rooms    RoomFinder
	notifier Notifier
	now      func() time.Time

	newNumber func(now time.Time) string
}

// NewService creates a booking service. notifier may be nil.
func NewService(repo Repository, rooms RoomFinder, notifier Notifier) Service {
	return &service{
		repo:      repo,
		rooms:     rooms,
		notifier:  notifier,
		now:       time.Now,
		newNumber: generateNumber,
	}
}

// generateNumber returns a human-readable reference such as BK-20240610-3F9A2C.
func generateNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("BK-%s-%s", now.UTC().Format("20060102"), suffix)
}

// quote prices a stay at the room's flat nightly rate, rounded to cents.
func quote(rm *room.Room, nights int) float64 {
	return math.Round(rm.PricePerNight*float64(nights)*100) / 100
}

func (s *service) today() time.Time {
	return dates.Normalize(s.now().UTC())
}

// stayRange normalizes a stay and checks it covers between one and MaxStayNights nights.
func stayRange(checkIn, checkOut time.Time) (time.Time, time.Time, error) {
	in, out := dates.Normalize(checkIn), dates.Normalize(checkOut)
	nights := dates.Nights(in, out)
	if nights < 1 {
		return in, out, ErrInvalidDateRange
	}
	if nights > MaxStayNights {
		return in, out, ErrStayTooLong
	}
	return in, out, nil
}

func (s *service) loadRoom(ctx context.Context, id string) (*room.Room, error) {
	rm, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, room.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return rm, nil
}

// ensureAvailable fails unless rm can take [in, out), ignoring excludeBookingID.
func (s *service) ensureAvailable(ctx context.Context, rm *room.Room, in, out time.Time, excludeBookingID string) error {
	if !rm.Bookable() {
		return ErrRoomNotBookable
	}

	existing, err := s.repo.ListConfirmed(ctx, []string{rm.ID}, in, out)
	if err != nil {
		return fmt.Errorf("failed to load bookings for room %s: %w", rm.ID, err)
	}
	if !IsAvailable(rm, in, out, excludeBookingID, existing) {
		return ErrRoomUnavailable
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest, actor Actor) (*Booking, error) {
	in, out, err := stayRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if in.Before(s.today()) {
		return nil, ErrCheckInPast
	}
	if req.GuestsCount < 1 {
		return nil, ErrInvalidGuests
	}

	userID := actor.UserID
	if req.UserID != "" && req.UserID != actor.UserID {
		if !actor.IsAdmin {
			return nil, ErrPermissionDenied
		}
		userID = req.UserID
	}

	rm, err := s.loadRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if req.GuestsCount > rm.Capacity {
		return nil, ErrTooManyGuests
	}
	if err := s.ensureAvailable(ctx, rm, in, out, ""); err != nil {
		return nil, err
	}

	// Front desk bookings are confirmed on the spot; guest requests wait for review.
	status := StatusPending
	if actor.IsAdmin {
		status = StatusConfirmed
	}

	b := &Booking{
		RoomID:          rm.ID,
		UserID:          userID,
		CheckIn:         in,
		CheckOut:        out,
		GuestsCount:     req.GuestsCount,
		TotalPrice:      quote(rm, dates.Nights(in, out)),
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
		Status:          status,
	}

	for attempt := 1; ; attempt++ {
		b.BookingNumber = s.newNumber(s.now())
		err = s.repo.Create(ctx, b)
		if !errors.Is(err, errDuplicateNumber) || attempt == numberAttempts {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	created, err := s.repo.GetByID(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload booking %s: %w", b.ID, err)
	}

	s.notify(created, func() error { return s.notifier.BookingCreated(ctx, created) })
	return created, nil
}

// notify runs a notifier call. Delivery failures never fail the operation.
func (s *service) notify(b *Booking, send func() error) {
	if s.notifier == nil {
		return
	}
	if err := send(); err != nil {
		zap.L().Warn("booking notification failed",
			zap.String("booking_id", b.ID),
			zap.String("booking_number", b.BookingNumber),
			zap.Error(err),
		)
	}
}

// visibleTo filters a loaded booking by ownership. Bookings of other guests are reported as missing.
func visibleTo(b *Booking, err error, actor Actor) (*Booking, error) {
	if err != nil {
		return nil, err
	}
	if !actor.canManage(b) {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string, actor Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	return visibleTo(b, err, actor)
}

func (s *service) GetByNumber(ctx context.Context, number string, actor Actor) (*Booking, error) {
	b, err := s.repo.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	return visibleTo(b, err, actor)
}

func (s *service) List(ctx context.Context, filter Filter, actor Actor) ([]*Booking, int, error) {
	if !actor.IsAdmin {
		if filter.UserID != "" && filter.UserID != actor.UserID {
			return nil, 0, ErrPermissionDenied
		}
		filter.UserID = actor.UserID
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

func (s *service) ChangeDates(ctx context.Context, id string, checkIn, checkOut time.Time, actor Actor) (*Booking, error) {
	b, err := s.GetByID(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return nil, ErrInvalidTransition
	}

	in, out, err := stayRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	// A stay already under way may be extended, but a moved arrival must still be ahead.
	if !in.Equal(dates.Normalize(b.CheckIn)) && in.Before(s.today()) {
		return nil, ErrCheckInPast
	}

	rm, err := s.loadRoom(ctx, b.RoomID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, rm, in, out, b.ID); err != nil {
		return nil, err
	}

	b.CheckIn, b.CheckOut = in, out
	b.TotalPrice = quote(rm, dates.Nights(in, out))
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// transition moves b to next and persists it.
func (s *service) transition(ctx context.Context, b *Booking, next Status) (*Booking, error) {
	if !b.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	from := b.Status
	b.Status = next
	if err := s.repo.Update(ctx, b); err != nil {
		b.Status = from
		return nil, err
	}

	s.notify(b, func() error { return s.notifier.BookingStatusChanged(ctx, b, from) })
	return b, nil
}

func (s *service) Confirm(ctx context.Context, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Status.CanTransitionTo(StatusConfirmed) {
		return nil, ErrInvalidTransition
	}

	// A pending request does not hold the room, so the dates may have been sold meanwhile.
	rm, err := s.loadRoom(ctx, b.RoomID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureAvailable(ctx, rm, b.CheckIn, b.CheckOut, b.ID); err != nil {
		return nil, err
	}

	return s.transition(ctx, b, StatusConfirmed)
}

func (s *service) Cancel(ctx context.Context, id string, actor Actor) (*Booking, error) {
	b, err := s.GetByID(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, b, StatusCancelled)
}

func (s *service) Complete(ctx context.Context, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, b, StatusCompleted)
}

func (s *service) MarkNoShow(ctx context.Context, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, b, StatusNoShow)
}

func (s *service) CheckAvailability(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeBookingID string) (*Availability, error) {
	in, out, err := stayRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	rm, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListConfirmed(ctx, []string{rm.ID}, in, out)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for room %s: %w", rm.ID, err)
	}

	nights := dates.Nights(in, out)
	return &Availability{
		RoomID:     rm.ID,
		CheckIn:    in,
		CheckOut:   out,
		Available:  IsAvailable(rm, in, out, excludeBookingID, existing),
		Nights:     nights,
		TotalPrice: quote(rm, nights),
	}, nil
}

func (s *service) Conflicts(ctx context.Context, roomID string, checkIn, checkOut time.Time, excludeBookingID string) ([]*Booking, error) {
	in, out, err := stayRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	rm, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListConfirmed(ctx, []string{rm.ID}, in, out)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for room %s: %w", rm.ID, err)
	}
	return FindConflicts(rm, in, out, excludeBookingID, existing), nil
}

func (s *service) Calendar(ctx context.Context, roomID string, start, end time.Time) ([]CalendarDay, error) {
	start, end = dates.Normalize(start), dates.Normalize(end)
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}
	if dates.Nights(start, end)+1 > MaxCalendarDays {
		return nil, ErrCalendarTooLong
	}

	rm, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	// The window covers the night starting on end as well.
	existing, err := s.repo.ListConfirmed(ctx, []string{rm.ID}, start, dates.AddDays(end, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for room %s: %w", rm.ID, err)
	}
	return BuildCalendar(rm, start, end, existing), nil
}

func (s *service) SearchAvailableRooms(ctx context.Context, checkIn, checkOut time.Time, guests int) ([]Offer, error) {
	in, out, err := stayRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if guests < 1 {
		return nil, ErrInvalidGuests
	}

	rooms, err := s.rooms.ListBookable(ctx, guests)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return []Offer{}, nil
	}

	ids := make([]string, len(rooms))
	for i, rm := range rooms {
		ids[i] = rm.ID
	}
	existing, err := s.repo.ListConfirmed(ctx, ids, in, out)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for search: %w", err)
	}

	byRoom := make(map[string][]*Booking, len(rooms))
	for _, b := range existing {
		byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
	}

	nights := dates.Nights(in, out)
	offers := make([]Offer, 0, len(rooms))
	for _, rm := range rooms {
		if IsAvailable(rm, in, out, "", byRoom[rm.ID]) {
			offers = append(offers, Offer{Room: rm, Nights: nights, TotalPrice: quote(rm, nights)})
		}
	}
	return offers, nil
}
