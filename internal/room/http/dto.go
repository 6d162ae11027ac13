package http

import (
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

// ListRoomsRequest defines query parameters for listing rooms.
type ListRoomsRequest struct {
	request.ListParams
	Status      string `form:"status" binding:"omitempty,oneof=active inactive maintenance"`
	RoomType    string `form:"room_type"`
	MinCapacity int    `form:"min_capacity" binding:"omitempty,min=1"`
	SortBy      string `form:"sort_by" binding:"omitempty,oneof=number name capacity price_per_night created_at"`
}

type RoomResponse struct {
	ID            string    `json:"id"`
	Number        string    `json:"number"`
	Name          string    `json:"name"`
	RoomType      string    `json:"room_type"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	Capacity      int       `json:"capacity"`
	PricePerNight float64   `json:"price_per_night"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RoomTag is a brief representation of a room embedded in other responses.
type RoomTag struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Name   string `json:"name"`
}

func NewRoomResponse(r *room.Room) RoomResponse {
	return RoomResponse{
		ID:            r.ID,
		Number:        r.Number,
		Name:          r.Name,
		RoomType:      r.RoomType,
		Description:   r.Description,
		Status:        string(r.Status),
		Capacity:      r.Capacity,
		PricePerNight: r.PricePerNight,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type CreateRoomRequest struct {
	Number        string   `json:"number" binding:"required"`
	Name          string   `json:"name" binding:"required"`
	RoomType      string   `json:"room_type"`
	Description   string   `json:"description"`
	Status        string   `json:"status" binding:"omitempty,oneof=active inactive maintenance"`
	Capacity      int      `json:"capacity" binding:"required,min=1"`
	PricePerNight *float64 `json:"price_per_night" binding:"required,min=0"`
}

type UpdateRoomRequest struct {
	Number        *string  `json:"number" binding:"omitempty,min=1"`
	Name          *string  `json:"name" binding:"omitempty,min=1"`
	RoomType      *string  `json:"room_type"`
	Description   *string  `json:"description"`
	Status        *string  `json:"status" binding:"omitempty,oneof=active inactive maintenance"`
	Capacity      *int     `json:"capacity" binding:"omitempty,min=1"`
	PricePerNight *float64 `json:"price_per_night" binding:"omitempty,min=0"`
}
