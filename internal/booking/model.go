package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/dates"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "booking not found")
	ErrRoomNotFound      = apperror.New(http.StatusNotFound, "room not found")
	ErrUserNotFound      = apperror.New(http.StatusNotFound, "user not found")
	ErrRoomUnavailable   = apperror.New(http.StatusConflict, "room is already booked for these dates")
	ErrRoomNotBookable   = apperror.New(http.StatusConflict, "room is not open for booking")
	ErrInvalidDateRange  = apperror.New(http.StatusBadRequest, "check-out must be at least one night after check-in")
	ErrCheckInPast       = apperror.New(http.StatusBadRequest, "check-in date cannot be in the past")
	ErrInvalidGuests     = apperror.New(http.StatusBadRequest, "guests count must be at least 1")
	ErrTooManyGuests     = apperror.New(http.StatusBadRequest, "guests count exceeds room capacity")
	ErrInvalidStatus     = apperror.New(http.StatusBadRequest, "invalid booking status")
	ErrInvalidTransition = apperror.New(http.StatusConflict, "booking status does not allow this change")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
	ErrCalendarTooLong   = apperror.New(http.StatusBadRequest, "calendar range cannot exceed 366 days")
	ErrStayTooLong       = apperror.New(http.StatusBadRequest, "a stay cannot exceed 366 nights")
	errDuplicateNumber   = apperror.New(http.StatusConflict, "booking number already exists")
)

const (
	// MaxCalendarDays bounds a single calendar request.
	MaxCalendarDays = 366
	// MaxStayNights bounds a single stay.
	MaxStayNights = 366
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// transitions lists the allowed next states. States without an entry are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted, StatusNoShow},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// CanTransitionTo reports whether a booking in state s may move to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Booking is a stay of one room over the nights [CheckIn, CheckOut).
type Booking struct {
	ID              string
	BookingNumber   string
	RoomID          string
	RoomNumber      string
	RoomName        string
	UserID          string
	UserName        string
	CheckIn         time.Time // first night
	CheckOut        time.Time // departure day, not occupied
	GuestsCount     int
	TotalPrice      float64
	SpecialRequests string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (b *Booking) Nights() int {
	return dates.Nights(b.CheckIn, b.CheckOut)
}

// Occupies reports whether the booking holds its room for availability purposes.
// Pending bookings are requests awaiting confirmation and do not block other guests.
func (b *Booking) Occupies() bool {
	return b.Status == StatusConfirmed
}

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID  string
	IsAdmin bool
}

func (a Actor) canManage(b *Booking) bool {
	return a.IsAdmin || (a.UserID != "" && a.UserID == b.UserID)
}

type Filter struct {
	UserID        string
	RoomID        string
	Status        Status
	BookingNumber string
	From          *time.Time // stays that still occupy a night on or after From
	To            *time.Time // stays that start before To
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
