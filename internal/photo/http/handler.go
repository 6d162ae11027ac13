package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
	"github.com/nekogravitycat/hotel-booking-backend/internal/photo"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/response"
)

// formField is the multipart field carrying the image.
const formField = "file"

type Handler struct {
	service photo.Service
}

func NewHandler(service photo.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListByRoom(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid room id", err)
		return
	}

	photos, err := h.service.ListByRoom(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]PhotoResponse, len(photos))
	for i, p := range photos {
		items[i] = NewPhotoResponse(p)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) Upload(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid room id", err)
		return
	}

	// Leave headroom for the multipart envelope around the file.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, photo.MaxUploadBytes+1<<20)

	header, err := c.FormFile(formField)
	if err != nil {
		response.BadRequest(c, formField+" is required", err)
		return
	}

	src, err := header.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer src.Close()

	p, err := h.service.Upload(c.Request.Context(), photo.UploadInput{
		RoomID:     uri.ID,
		UploaderID: auth.GetUserID(c),
		Filename:   header.Filename,
		Size:       header.Size,
		Content:    src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewPhotoResponse(p))
}

func (h *Handler) serve(c *gin.Context, stream io.ReadCloser, contentType, filename string) {
	defer stream.Close()

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "inline; filename=\""+filename+"\"")
	c.Header("Cache-Control", "public, max-age=86400")

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		// Headers are already sent.
		zap.L().Warn("photo stream interrupted", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
}

func (h *Handler) Serve(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid photo id", err)
		return
	}

	stream, p, err := h.service.Open(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.serve(c, stream, p.ContentType, p.Filename)
}

// ServeThumbnail serves the JPEG thumbnail of a photo.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid photo id", err)
		return
	}

	stream, p, err := h.service.OpenThumbnail(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.serve(c, stream, "image/jpeg", p.ID+"_thumb.jpg")
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid photo id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
