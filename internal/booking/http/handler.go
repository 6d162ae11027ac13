package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/dates"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/response"
	roomHttp "github.com/nekogravitycat/hotel-booking-backend/internal/room/http"
)

// AdminChecker resolves whether a user has admin rights.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

type Handler struct {
	service booking.Service
	admins  AdminChecker
}

func NewHandler(service booking.Service, admins AdminChecker) *Handler {
	return &Handler{service: service, admins: admins}
}

// actor builds the booking actor for the authenticated user.
func (h *Handler) actor(c *gin.Context) (booking.Actor, error) {
	userID := auth.GetUserID(c)
	isAdmin, err := h.admins.IsAdmin(c.Request.Context(), userID)
	if err != nil {
		return booking.Actor{}, err
	}
	return booking.Actor{UserID: userID, IsAdmin: isAdmin}, nil
}

// parseStay parses a validated check-in/check-out pair.
func parseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := dates.Parse(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	out, err := dates.Parse(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return in, out, nil
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := dates.Parse(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	from, err := optionalDate(req.From)
	if err != nil {
		response.BadRequest(c, "invalid from date", err)
		return
	}
	to, err := optionalDate(req.To)
	if err != nil {
		response.BadRequest(c, "invalid to date", err)
		return
	}
	if from != nil && to != nil && to.Before(*from) {
		response.Error(c, booking.ErrInvalidDateRange)
		return
	}

	actor, err := h.actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	filter := booking.Filter{
		UserID:        req.UserID,
		RoomID:        req.RoomID,
		Status:        booking.Status(req.Status),
		BookingNumber: strings.ToUpper(strings.TrimSpace(req.BookingNumber)),
		From:          from,
		To:            to,
		Page:          req.Page,
		PageSize:      req.PageSize,
		SortBy:        req.SortBy,
		SortOrder:     strings.ToUpper(req.SortOrder),
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(newBookingResponses(bookings), req.Page, req.PageSize, total))
}

// Get accepts either the booking ID or its booking number.
func (h *Handler) Get(c *gin.Context) {
	ref := c.Param("id")

	actor, err := h.actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var b *booking.Booking
	if uuid.Validate(ref) == nil {
		b, err = h.service.GetByID(c.Request.Context(), ref, actor)
	} else {
		b, err = h.service.GetByNumber(c.Request.Context(), ref, actor)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	in, out, err := parseStay(body.CheckIn, body.CheckOut)
	if err != nil {
		response.BadRequest(c, "invalid stay dates", err)
		return
	}

	actor, err := h.actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		UserID:          body.UserID,
		RoomID:          body.RoomID,
		CheckIn:         in,
		CheckOut:        out,
		GuestsCount:     body.GuestsCount,
		SpecialRequests: body.SpecialRequests,
	}, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) ChangeDates(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}

	var body ChangeDatesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	in, out, err := parseStay(body.CheckIn, body.CheckOut)
	if err != nil {
		response.BadRequest(c, "invalid stay dates", err)
		return
	}

	actor, err := h.actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.ChangeDates(c.Request.Context(), uri.ID, in, out, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}

	actor, err := h.actor(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), uri.ID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// adminTransition serves the admin-only status endpoints.
func (h *Handler) adminTransition(apply func(ctx context.Context, id string) (*booking.Booking, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var uri request.ByIDRequest
		if err := c.ShouldBindUri(&uri); err != nil {
			response.BadRequest(c, "invalid booking id", err)
			return
		}

		b, err := apply(c.Request.Context(), uri.ID)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.JSON(http.StatusOK, NewBookingResponse(b))
	}
}

func (h *Handler) Confirm(c *gin.Context)    { h.adminTransition(h.service.Confirm)(c) }
func (h *Handler) Complete(c *gin.Context)   { h.adminTransition(h.service.Complete)(c) }
func (h *Handler) MarkNoShow(c *gin.Context) { h.adminTransition(h.service.MarkNoShow)(c) }

func (h *Handler) RoomAvailability(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid room id", err)
		return
	}

	var q AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	in, out, err := parseStay(q.CheckIn, q.CheckOut)
	if err != nil {
		response.BadRequest(c, "invalid stay dates", err)
		return
	}

	a, err := h.service.CheckAvailability(c.Request.Context(), uri.ID, in, out, "")
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAvailabilityResponse(a))
}

func (h *Handler) Conflicts(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid room id", err)
		return
	}

	var q StayQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	in, out, err := parseStay(q.CheckIn, q.CheckOut)
	if err != nil {
		response.BadRequest(c, "invalid stay dates", err)
		return
	}

	conflicts, err := h.service.Conflicts(c.Request.Context(), uri.ID, in, out, q.ExcludeBookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": newBookingResponses(conflicts)})
}

func (h *Handler) Calendar(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid room id", err)
		return
	}

	var q CalendarQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	start, end, err := parseStay(q.Start, q.End)
	if err != nil {
		response.BadRequest(c, "invalid calendar range", err)
		return
	}

	days, err := h.service.Calendar(c.Request.Context(), uri.ID, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewCalendarResponse(uri.ID, start, end, days))
}

func (h *Handler) Search(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	in, out, err := parseStay(q.CheckIn, q.CheckOut)
	if err != nil {
		response.BadRequest(c, "invalid stay dates", err)
		return
	}

	offers, err := h.service.SearchAvailableRooms(c.Request.Context(), in, out, q.Guests)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]OfferResponse, len(offers))
	for i, o := range offers {
		items[i] = OfferResponse{
			Room:       roomHttp.NewRoomResponse(o.Room),
			Nights:     o.Nights,
			TotalPrice: o.TotalPrice,
		}
	}

	c.JSON(http.StatusOK, SearchResponse{
		CheckIn:  dates.Format(in),
		CheckOut: dates.Format(out),
		Guests:   q.Guests,
		Rooms:    items,
	})
}
