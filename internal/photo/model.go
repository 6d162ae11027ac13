package photo

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "photo not found")
	ErrRoomNotFound      = apperror.New(http.StatusNotFound, "room not found")
	ErrEmptyFile         = apperror.New(http.StatusBadRequest, "uploaded file is empty")
	ErrFileTooLarge      = apperror.New(http.StatusRequestEntityTooLarge, "photo exceeds the 10 MiB limit")
	ErrUnsupportedType   = apperror.New(http.StatusUnsupportedMediaType, "only JPEG, PNG and GIF images are accepted")
	ErrThumbnailNotReady = apperror.New(http.StatusNotFound, "thumbnail not available for this photo")
)

const (
	// MaxUploadBytes caps a single photo upload.
	MaxUploadBytes = 10 << 20
	// ThumbnailSize is the bounding box of generated thumbnails.
	ThumbnailSize = 400
)

// extensions maps the accepted content types to the stored file extension.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Photo is an image attached to a room.
type Photo struct {
	ID            string
	RoomID        string
	UploadedBy    *string
	Filename      string
	StoragePath   string
	ThumbnailPath *string
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// URL returns the public URL serving the photo.
func URL(id string) string {
	return "/v1/photos/" + id
}

// ThumbnailURL returns the public URL serving the photo's thumbnail.
func ThumbnailURL(id string) string {
	return "/v1/photos/" + id + "/thumbnail"
}
