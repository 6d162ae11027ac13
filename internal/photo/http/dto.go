package http

import (
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/photo"
)

type PhotoResponse struct {
	ID           string    `json:"id"`
	RoomID       string    `json:"room_id"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	ThumbnailURL *string   `json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewPhotoResponse(p *photo.Photo) PhotoResponse {
	var thumbURL *string
	if p.ThumbnailPath != nil {
		t := photo.ThumbnailURL(p.ID)
		thumbURL = &t
	}
	return PhotoResponse{
		ID:           p.ID,
		RoomID:       p.RoomID,
		Filename:     p.Filename,
		ContentType:  p.ContentType,
		Size:         p.Size,
		URL:          photo.URL(p.ID),
		ThumbnailURL: thumbURL,
		CreatedAt:    p.CreatedAt,
	}
}
