package user

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-booking-backend/internal/auth"
)

type memRepo struct {
	mu    sync.Mutex
	users map[string]*User
	seq   int
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*User{}}
}

func (r *memRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	u.ID = string(rune('a' + r.seq))
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memRepo) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.LastLoginAt = &t
		return nil
	}
	return errors.New("missing user")
}

func (r *memRepo) List(ctx context.Context, filter Filter) ([]*User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (r *memRepo) Update(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func newTestService() (Service, *memRepo) {
	repo := newMemRepo()
	return NewService(repo, auth.NewBcryptPasswordHasherWithCost(4)), repo
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	u, err := svc.Register(ctx, "  Guest@Hotel.Test ", "password123", " Ann ")
	require.NoError(t, err)
	assert.Equal(t, "guest@hotel.test", u.Email)
	require.NotNil(t, u.DisplayName)
	assert.Equal(t, "Ann", *u.DisplayName)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsAdmin)

	_, err = svc.Register(ctx, "guest@hotel.test", "password123", "Again")
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)

	logged, err := svc.Login(ctx, "GUEST@hotel.test", "password123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	assert.NotNil(t, logged.LastLoginAt)

	_, err = svc.Login(ctx, "guest@hotel.test", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@hotel.test", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Register(context.Background(), "  ", "password123", "x")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.Register(context.Background(), "a@b.c", "short", "x")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestInactiveUserCannotLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	u, err := svc.Register(ctx, "staff@hotel.test", "password123", "Staff")
	require.NoError(t, err)

	inactive := false
	_, err = svc.Update(ctx, u.ID, UpdateRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "staff@hotel.test", "password123")
	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestIsAdmin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	u, err := svc.Register(ctx, "manager@hotel.test", "password123", "Manager")
	require.NoError(t, err)

	ok, err := svc.IsAdmin(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	yes := true
	_, err = svc.Update(ctx, u.ID, UpdateRequest{IsAdmin: &yes})
	require.NoError(t, err)

	ok, err = svc.IsAdmin(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsAdmin(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
