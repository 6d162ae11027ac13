package photo

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

type memRepo struct {
	photos  map[string]*Photo
	failErr error
}

func (m *memRepo) Create(_ context.Context, p *Photo) error {
	if m.failErr != nil {
		return m.failErr
	}
	cp := *p
	m.photos[p.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Photo, error) {
	p, ok := m.photos[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) ListByRoom(_ context.Context, roomID string) ([]*Photo, error) {
	var out []*Photo
	for _, p := range m.photos {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.photos[id]; !ok {
		return ErrNotFound
	}
	delete(m.photos, id)
	return nil
}

type rooms map[string]*room.Room

func (r rooms) GetByID(_ context.Context, id string) (*room.Room, error) {
	rm, ok := r[id]
	if !ok {
		return nil, room.ErrNotFound
	}
	return rm, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestService(t *testing.T) (*service, *memRepo, storage.Storage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	repo := &memRepo{photos: map[string]*Photo{}}
	svc := NewService(repo, rooms{"room-1": {ID: "room-1"}}, store).(*service)
	return svc, repo, store
}

func TestUploadCreatesThumbnail(t *testing.T) {
	svc, repo, store := newTestService(t)
	ctx := context.Background()
	content := pngBytes(t, 1200, 600)

	p, err := svc.Upload(ctx, UploadInput{
		RoomID:     "room-1",
		UploaderID: "user-1",
		Filename:   `C:\photos\sea "view".png`,
		Size:       int64(len(content)),
		Content:    bytes.NewReader(content),
	})
	require.NoError(t, err)

	assert.Equal(t, "image/png", p.ContentType)
	assert.Equal(t, "sea view.png", p.Filename)
	assert.True(t, strings.HasPrefix(p.StoragePath, "rooms/"+p.ID[:2]+"/"))
	assert.Equal(t, int64(len(content)), p.Size)
	require.NotNil(t, p.ThumbnailPath)
	assert.Contains(t, repo.photos, p.ID)

	rc, _, err := svc.OpenThumbnail(ctx, p.ID)
	require.NoError(t, err)
	defer rc.Close()
	thumb, err := jpeg.Decode(rc)
	require.NoError(t, err)
	assert.Equal(t, ThumbnailSize, thumb.Bounds().Dx())
	assert.Equal(t, ThumbnailSize/2, thumb.Bounds().Dy())

	orig, err := store.Get(ctx, p.StoragePath)
	require.NoError(t, err)
	got, err := io.ReadAll(orig)
	orig.Close()
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestUploadValidation(t *testing.T) {
	ctx := context.Background()
	content := pngBytes(t, 10, 10)

	tests := []struct {
		name    string
		in      UploadInput
		wantErr error
	}{
		{"unknown room", UploadInput{RoomID: "room-x", Content: bytes.NewReader(content)}, ErrRoomNotFound},
		{"empty", UploadInput{RoomID: "room-1", Content: bytes.NewReader(nil)}, ErrEmptyFile},
		{"declared too large", UploadInput{RoomID: "room-1", Size: MaxUploadBytes + 1, Content: bytes.NewReader(content)}, ErrFileTooLarge},
		{"stream too large", UploadInput{RoomID: "room-1", Content: bytes.NewReader(make([]byte, MaxUploadBytes+10))}, ErrFileTooLarge},
		{"not an image", UploadInput{RoomID: "room-1", Filename: "notes.png", Content: strings.NewReader("plain text pretending to be a png")}, ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService(t)
			_, err := svc.Upload(ctx, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, repo.photos)
		})
	}
}

// recordingStore remembers every saved path.
type recordingStore struct {
	storage.Storage
	saved []string
}

func (r *recordingStore) Save(ctx context.Context, path string, content io.Reader) error {
	r.saved = append(r.saved, path)
	return r.Storage.Save(ctx, path, content)
}

func TestUploadRemovesBlobsWhenRecordFails(t *testing.T) {
	svc, repo, store := newTestService(t)
	ctx := context.Background()
	rec := &recordingStore{Storage: store}
	svc.storage = rec
	repo.failErr = ErrRoomNotFound

	content := pngBytes(t, 20, 20)
	_, err := svc.Upload(ctx, UploadInput{RoomID: "room-1", Content: bytes.NewReader(content)})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	require.Len(t, rec.saved, 2, "original and thumbnail")
	for _, path := range rec.saved {
		_, err := store.Get(ctx, path)
		assert.ErrorIs(t, err, storage.ErrNotFound, path)
	}
}

func TestDeletePhoto(t *testing.T) {
	svc, repo, store := newTestService(t)
	ctx := context.Background()

	content := pngBytes(t, 20, 20)
	p, err := svc.Upload(ctx, UploadInput{RoomID: "room-1", Content: bytes.NewReader(content)})
	require.NoError(t, err)
	assert.Equal(t, "photo.png", p.Filename)

	list, err := svc.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.Empty(t, repo.photos)

	_, err = store.Get(ctx, p.StoragePath)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, _, err = svc.Open(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, p.ID), ErrNotFound)
}
