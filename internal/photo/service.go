package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

// RoomFinder checks that photos are attached to existing rooms.
type RoomFinder interface {
	GetByID(ctx context.Context, id string) (*room.Room, error)
}

type UploadInput struct {
	RoomID     string
	UploaderID string
	Filename   string
	Size       int64 // declared size; 0 when unknown
	Content    io.Reader
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*Photo, error)
	Get(ctx context.Context, id string) (*Photo, error)
	ListByRoom(ctx context.Context, roomID string) ([]*Photo, error)
	Open(ctx context.Context, id string) (io.ReadCloser, *Photo, error)
	OpenThumbnail(ctx context.Context, id string) (io.ReadCloser, *Photo, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo    Repository
	rooms   RoomFinder
	storage storage.Storage
	imgProc *storage.ImageProcessor
}

func NewService(repo Repository, rooms RoomFinder, store storage.Storage) Service {
	return &service{
		repo:    repo,
		rooms:   rooms,
		storage: store,
		imgProc: storage.NewImageProcessor(),
	}
}

func (s *service) checkRoom(ctx context.Context, roomID string) error {
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		if errors.Is(err, room.ErrNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	return nil
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*Photo, error) {
	if in.Size > MaxUploadBytes {
		return nil, ErrFileTooLarge
	}
	if err := s.checkRoom(ctx, in.RoomID); err != nil {
		return nil, err
	}

	// Read one byte past the limit to detect oversized streams without a declared size.
	content, err := io.ReadAll(io.LimitReader(in.Content, MaxUploadBytes+1))
	if err != nil {
		return nil, apperror.Wrap(err, http.StatusBadRequest, "failed to read uploaded file")
	}
	if len(content) == 0 {
		return nil, ErrEmptyFile
	}
	if len(content) > MaxUploadBytes {
		return nil, ErrFileTooLarge
	}

	// The client's Content-Type header is not trusted; sniff the bytes instead.
	contentType := mimetype.Detect(content).String()
	ext, ok := extensions[contentType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	id := uuid.NewString()
	// Sharded layout: rooms/ab/<uuid>.ext
	dir := fmt.Sprintf("rooms/%s", id[:2])
	storagePath := fmt.Sprintf("%s/%s%s", dir, id, ext)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to save photo to storage: %w", err)
	}

	var thumbnailPath *string
	thumb, err := s.imgProc.GenerateThumbnail(bytes.NewReader(content), ThumbnailSize, ThumbnailSize)
	if err == nil {
		tPath := fmt.Sprintf("%s/%s_thumb.jpg", dir, id)
		if err = s.storage.Save(ctx, tPath, thumb); err == nil {
			thumbnailPath = &tPath
		}
	}
	if err != nil {
		// The original is kept; the photo is served without a thumbnail.
		zap.L().Warn("failed to create photo thumbnail", zap.String("photo_id", id), zap.Error(err))
	}

	var uploadedBy *string
	if in.UploaderID != "" {
		uploadedBy = &in.UploaderID
	}

	p := &Photo{
		ID:            id,
		RoomID:        in.RoomID,
		UploadedBy:    uploadedBy,
		Filename:      cleanFilename(in.Filename, ext),
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		ContentType:   contentType,
		Size:          int64(len(content)),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.removeBlobs(ctx, p)
		return nil, err
	}
	return p, nil
}

// cleanFilename keeps the base name of an uploaded file for Content-Disposition.
func cleanFilename(name, ext string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 {
			return -1
		}
		return r
	}, base)
	if base == "" || base == "." || base == "/" {
		return "photo" + ext
	}
	return base
}

// removeBlobs deletes the stored files of p. Failures leave orphans behind and are only logged.
func (s *service) removeBlobs(ctx context.Context, p *Photo) {
	paths := []string{p.StoragePath}
	if p.ThumbnailPath != nil {
		paths = append(paths, *p.ThumbnailPath)
	}
	for _, path := range paths {
		if err := s.storage.Delete(ctx, path); err != nil {
			zap.L().Warn("failed to delete photo blob", zap.String("photo_id", p.ID), zap.String("path", path), zap.Error(err))
		}
	}
}

func (s *service) Get(ctx context.Context, id string) (*Photo, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByRoom(ctx context.Context, roomID string) ([]*Photo, error) {
	if err := s.checkRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return s.repo.ListByRoom(ctx, roomID)
}

func (s *service) open(ctx context.Context, p *Photo, path string) (io.ReadCloser, *Photo, error) {
	stream, err := s.storage.Get(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to retrieve photo from storage: %w", err)
	}
	return stream, p, nil
}

func (s *service) Open(ctx context.Context, id string) (io.ReadCloser, *Photo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return s.open(ctx, p, p.StoragePath)
}

func (s *service) OpenThumbnail(ctx context.Context, id string) (io.ReadCloser, *Photo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if p.ThumbnailPath == nil {
		return nil, nil, ErrThumbnailNotReady
	}
	return s.open(ctx, p, *p.ThumbnailPath)
}

func (s *service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeBlobs(ctx, p)
	return nil
}
