package room

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "room not found")
	ErrNumberTaken     = apperror.New(http.StatusConflict, "room number already exists")
	ErrHasBookings     = apperror.New(http.StatusConflict, "room has bookings and cannot be deleted")
	ErrEmptyNumber     = apperror.New(http.StatusBadRequest, "room number cannot be empty")
	ErrEmptyName       = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidStatus   = apperror.New(http.StatusBadRequest, "invalid room status")
	ErrInvalidCapacity = apperror.New(http.StatusBadRequest, "capacity must be a positive integer")
	ErrInvalidPrice    = apperror.New(http.StatusBadRequest, "price per night cannot be negative")
)

type Status string

const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusMaintenance Status = "maintenance"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusMaintenance:
		return true
	}
	return false
}

// Room is a bookable hotel room.
type Room struct {
	ID            string
	Number        string // e.g. "101", unique
	Name          string
	RoomType      string // free text, e.g. "double", "suite"
	Description   string
	Status        Status
	Capacity      int     // max guests
	PricePerNight float64 // flat nightly rate
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Bookable reports whether new stays may be placed in the room.
func (r *Room) Bookable() bool {
	return r.Status == StatusActive
}

// Filter defines parameters for listing rooms.
type Filter struct {
	Status      Status
	RoomType    string
	MinCapacity int
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
