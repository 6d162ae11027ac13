package http

import (
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/dates"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/request"
	roomHttp "github.com/nekogravitycat/hotel-booking-backend/internal/room/http"
	userHttp "github.com/nekogravitycat/hotel-booking-backend/internal/user/http"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	RoomID        string `form:"room_id" binding:"omitempty,uuid"`
	UserID        string `form:"user_id" binding:"omitempty,uuid"`
	Status        string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled completed no_show"`
	BookingNumber string `form:"booking_number"`
	From          string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To            string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	SortBy        string `form:"sort_by" binding:"omitempty,oneof=check_in check_out created_at total_price"`
}

type CreateBookingRequest struct {
	RoomID          string `json:"room_id" binding:"required,uuid"`
	UserID          string `json:"user_id" binding:"omitempty,uuid"`
	CheckIn         string `json:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut        string `json:"check_out" binding:"required,datetime=2006-01-02"`
	GuestsCount     int    `json:"guests_count" binding:"required,min=1"`
	SpecialRequests string `json:"special_requests" binding:"max=1000"`
}

type ChangeDatesRequest struct {
	CheckIn  string `json:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" binding:"required,datetime=2006-01-02"`
}

// AvailabilityQuery is the public availability check. It cannot exclude a booking,
// so anonymous callers learn nothing about individual bookings.
type AvailabilityQuery struct {
	CheckIn  string `form:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut string `form:"check_out" binding:"required,datetime=2006-01-02"`
}

// StayQuery is the check-in/check-out pair of admin conflict lookups.
type StayQuery struct {
	CheckIn          string `form:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut         string `form:"check_out" binding:"required,datetime=2006-01-02"`
	ExcludeBookingID string `form:"exclude_booking_id" binding:"omitempty,uuid"`
}

type SearchQuery struct {
	CheckIn  string `form:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut string `form:"check_out" binding:"required,datetime=2006-01-02"`
	Guests   int    `form:"guests,default=1" binding:"min=1"`
}

type CalendarQuery struct {
	Start string `form:"start" binding:"required,datetime=2006-01-02"`
	End   string `form:"end" binding:"required,datetime=2006-01-02"`
}

type BookingResponse struct {
	ID              string           `json:"id"`
	BookingNumber   string           `json:"booking_number"`
	Room            roomHttp.RoomTag `json:"room"`
	User            userHttp.UserTag `json:"user"`
	CheckIn         string           `json:"check_in"`
	CheckOut        string           `json:"check_out"`
	Nights          int              `json:"nights"`
	GuestsCount     int              `json:"guests_count"`
	TotalPrice      float64          `json:"total_price"`
	SpecialRequests string           `json:"special_requests"`
	Status          string           `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		BookingNumber:   b.BookingNumber,
		Room:            roomHttp.RoomTag{ID: b.RoomID, Number: b.RoomNumber, Name: b.RoomName},
		User:            userHttp.UserTag{ID: b.UserID, Name: b.UserName},
		CheckIn:         dates.Format(b.CheckIn),
		CheckOut:        dates.Format(b.CheckOut),
		Nights:          b.Nights(),
		GuestsCount:     b.GuestsCount,
		TotalPrice:      b.TotalPrice,
		SpecialRequests: b.SpecialRequests,
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func newBookingResponses(bookings []*booking.Booking) []BookingResponse {
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	return items
}

type AvailabilityResponse struct {
	RoomID     string  `json:"room_id"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	Available  bool    `json:"available"`
	Nights     int     `json:"nights"`
	TotalPrice float64 `json:"total_price"`
}

func NewAvailabilityResponse(a *booking.Availability) AvailabilityResponse {
	return AvailabilityResponse{
		RoomID:     a.RoomID,
		CheckIn:    dates.Format(a.CheckIn),
		CheckOut:   dates.Format(a.CheckOut),
		Available:  a.Available,
		Nights:     a.Nights,
		TotalPrice: a.TotalPrice,
	}
}

type CalendarDayResponse struct {
	Date          string  `json:"date"`
	Available     bool    `json:"available"`
	Price         float64 `json:"price"`
	BookingID     string  `json:"booking_id,omitempty"`
	BookingNumber string  `json:"booking_number,omitempty"`
}

type CalendarResponse struct {
	RoomID string                `json:"room_id"`
	Start  string                `json:"start"`
	End    string                `json:"end"`
	Days   []CalendarDayResponse `json:"days"`
}

func NewCalendarResponse(roomID string, start, end time.Time, days []booking.CalendarDay) CalendarResponse {
	items := make([]CalendarDayResponse, len(days))
	for i, d := range days {
		items[i] = CalendarDayResponse{
			Date:      dates.Format(d.Date),
			Available: d.Available,
			Price:     d.Price,
		}
		if d.Booking != nil {
			items[i].BookingID = d.Booking.ID
			items[i].BookingNumber = d.Booking.BookingNumber
		}
	}
	return CalendarResponse{
		RoomID: roomID,
		Start:  dates.Format(start),
		End:    dates.Format(end),
		Days:   items,
	}
}

type OfferResponse struct {
	Room       roomHttp.RoomResponse `json:"room"`
	Nights     int                   `json:"nights"`
	TotalPrice float64               `json:"total_price"`
}

type SearchResponse struct {
	CheckIn  string          `json:"check_in"`
	CheckOut string          `json:"check_out"`
	Guests   int             `json:"guests"`
	Rooms    []OfferResponse `json:"rooms"`
}
