package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

// memRepo is an in-memory Repository that enforces the confirmed-overlap constraint like the database.
type memRepo struct {
	bookings map[string]*Booking
	nextID   int
	failNext error
}

func newMemRepo() *memRepo {
	return &memRepo{bookings: map[string]*Booking{}}
}

func (m *memRepo) conflictsWith(b *Booking) bool {
	if b.Status != StatusConfirmed {
		return false
	}
	for _, other := range m.bookings {
		if other.ID != b.ID && other.RoomID == b.RoomID && other.Status == StatusConfirmed &&
			Overlaps(b.CheckIn, b.CheckOut, other.CheckIn, other.CheckOut) {
			return true
		}
	}
	return false
}

func (m *memRepo) Create(_ context.Context, b *Booking) error {
	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}
	for _, other := range m.bookings {
		if other.BookingNumber == b.BookingNumber {
			return errDuplicateNumber
		}
	}
	if m.conflictsWith(b) {
		return ErrRoomUnavailable
	}
	m.nextID++
	b.ID = fmt.Sprintf("booking-%d", m.nextID)
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Booking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memRepo) GetByNumber(ctx context.Context, number string) (*Booking, error) {
	for _, b := range m.bookings {
		if b.BookingNumber == number {
			return m.GetByID(ctx, b.ID)
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) List(_ context.Context, filter Filter) ([]*Booking, int, error) {
	var out []*Booking
	for _, b := range m.bookings {
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sortByCheckIn(out)
	return out, len(out), nil
}

func (m *memRepo) Update(_ context.Context, b *Booking) error {
	if _, ok := m.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	if m.conflictsWith(b) {
		return ErrRoomUnavailable
	}
	cp := *b
	m.bookings[b.ID] = &cp
	return nil
}

func (m *memRepo) ListConfirmed(_ context.Context, roomIDs []string, from, to time.Time) ([]*Booking, error) {
	var out []*Booking
	for _, b := range m.bookings {
		for _, id := range roomIDs {
			if b.RoomID == id && b.Status == StatusConfirmed && Overlaps(from, to, b.CheckIn, b.CheckOut) {
				cp := *b
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

type memRooms map[string]*room.Room

func (m memRooms) GetByID(_ context.Context, id string) (*room.Room, error) {
	rm, ok := m[id]
	if !ok {
		return nil, room.ErrNotFound
	}
	return rm, nil
}

func (m memRooms) ListBookable(_ context.Context, minCapacity int) ([]*room.Room, error) {
	var out []*room.Room
	for _, id := range []string{"room-a", "room-b", "room-c"} {
		if rm, ok := m[id]; ok && rm.Bookable() && rm.Capacity >= minCapacity {
			out = append(out, rm)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	created []string
	changes []string
	err     error
}

func (n *recordingNotifier) BookingCreated(_ context.Context, b *Booking) error {
	n.created = append(n.created, b.BookingNumber)
	return n.err
}

func (n *recordingNotifier) BookingStatusChanged(_ context.Context, b *Booking, from Status) error {
	n.changes = append(n.changes, fmt.Sprintf("%s:%s->%s", b.BookingNumber, from, b.Status))
	return n.err
}

var (
	guest = Actor{UserID: "user-guest"}
	other = Actor{UserID: "user-other"}
	admin = Actor{UserID: "user-admin", IsAdmin: true}
)

type fixture struct {
	svc      *service
	repo     *memRepo
	rooms    memRooms
	notifier *recordingNotifier
}

func newFixture() *fixture {
	repo := newMemRepo()
	rooms := memRooms{
		"room-a": {ID: "room-a", Number: "101", Status: room.StatusActive, Capacity: 2, PricePerNight: 99.99},
		"room-b": {ID: "room-b", Number: "102", Status: room.StatusActive, Capacity: 4, PricePerNight: 180},
		"room-c": {ID: "room-c", Number: "103", Status: room.StatusMaintenance, Capacity: 4, PricePerNight: 80},
	}
	notifier := &recordingNotifier{}

	svc := NewService(repo, rooms, notifier).(*service)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC) }

	seq := 0
	svc.newNumber = func(time.Time) string {
		seq++
		return fmt.Sprintf("BK-TEST-%d", seq)
	}

	return &fixture{svc: svc, repo: repo, rooms: rooms, notifier: notifier}
}

func (f *fixture) book(t *testing.T, actor Actor, roomID string, in, out time.Time) *Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), CreateRequest{
		RoomID: roomID, CheckIn: in, CheckOut: out, GuestsCount: 1,
	}, actor)
	require.NoError(t, err)
	return b
}

func TestCreateBooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b, err := f.svc.Create(ctx, CreateRequest{
		RoomID:          "room-a",
		CheckIn:         day(2024, 6, 10),
		CheckOut:        day(2024, 6, 13),
		GuestsCount:     2,
		SpecialRequests: "  late arrival ",
	}, guest)
	require.NoError(t, err)

	assert.Equal(t, "BK-TEST-1", b.BookingNumber)
	assert.Equal(t, guest.UserID, b.UserID)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, 3, b.Nights())
	assert.Equal(t, 299.97, b.TotalPrice)
	assert.Equal(t, "late arrival", b.SpecialRequests)
	assert.Equal(t, []string{"BK-TEST-1"}, f.notifier.created)

	byAdmin := f.book(t, admin, "room-b", day(2024, 6, 10), day(2024, 6, 11))
	assert.Equal(t, StatusConfirmed, byAdmin.Status, "front desk bookings are confirmed immediately")
}

func TestStayLengthLimit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.svc.CheckAvailability(ctx, "room-a", day(2024, 6, 10), day(2025, 6, 11), "")
	require.NoError(t, err)
	assert.Equal(t, MaxStayNights, a.Nights)
	assert.Equal(t, 36596.34, a.TotalPrice)

	_, err = f.svc.CheckAvailability(ctx, "room-a", day(2024, 6, 10), day(9999, 12, 31), "")
	assert.ErrorIs(t, err, ErrStayTooLong)

	_, err = f.svc.SearchAvailableRooms(ctx, day(2024, 6, 10), day(9999, 12, 31), 1)
	assert.ErrorIs(t, err, ErrStayTooLong)
}

func TestCreateBookingValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRequest
		actor   Actor
		wantErr error
	}{
		{"zero nights", CreateRequest{RoomID: "room-a", CheckIn: day(2024, 6, 10), CheckOut: day(2024, 6, 10), GuestsCount: 1}, guest, ErrInvalidDateRange},
		{"inverted range", CreateRequest{RoomID: "room-a", CheckIn: day(2024, 6, 10), CheckOut: day(2024, 6, 8), GuestsCount: 1}, guest, ErrInvalidDateRange},
		{"stay over a year", CreateRequest{RoomID: "room-a", CheckIn: day(2024, 6, 10), CheckOut: day(2025, 6, 12), GuestsCount: 1}, guest, ErrStayTooLong},
		{"stay to year 9999", CreateRequest{RoomID: "room-a", CheckIn: day(2024, 6, 10), CheckOut: day(9999, 12, 31), GuestsCount: 1}, admin, ErrStayTooLong},
		{"check-in in the past", CreateRequest{RoomID: "room-a", CheckIn: day(2024, 5, 31), CheckOut: day(2024, 6, 2), GuestsCount: 1}, guest, ErrCheckInPast},
		{"no guests", CreateRequest{RoomID: "room-a", CheckIn: day(2024, 6, 10), CheckOut: day(2024, 6, 11)}, guest, ErrInvalidGuests},
		{"over capacity", CreateRequest{RoomID: "room-a", CheckIn: day(2024, 6, 10), CheckOut: day(2024, 6, 11), GuestsCount: 3}, guest, ErrTooManyGuests},
		{"unknown room", CreateRequest{RoomID: "room-x", CheckIn: day(2024, 6, 10), CheckOut: day(2024, 6, 11), GuestsCount: 1}, guest, ErrRoomNotFound},
		{"room under maintenance", CreateRequest{RoomID: "room-c", CheckIn: day(2024, 6, 10), CheckOut: day(2024, 6, 11), GuestsCount: 1}, guest, ErrRoomNotBookable},
		{"booking for someone else", CreateRequest{UserID: "user-other", RoomID: "room-a", CheckIn: day(2024, 6, 10), CheckOut: day(2024, 6, 11), GuestsCount: 1}, guest, ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Create(context.Background(), tt.req, tt.actor)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.repo.bookings)
		})
	}
}

func TestCreateBookingToday(t *testing.T) {
	f := newFixture()
	// The clock reads 15:00 on 2024-06-01; arriving the same day is allowed.
	f.book(t, guest, "room-a", day(2024, 6, 1), day(2024, 6, 2))
}

func TestCreateBookingRejectsConfirmedOverlap(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.book(t, admin, "room-a", day(2024, 6, 10), day(2024, 6, 15))

	_, err := f.svc.Create(ctx, CreateRequest{RoomID: "room-a", CheckIn: day(2024, 6, 12), CheckOut: day(2024, 6, 20), GuestsCount: 1}, guest)
	assert.ErrorIs(t, err, ErrRoomUnavailable)

	// Check-out morning and check-in afternoon share a day, not a night.
	f.book(t, guest, "room-a", day(2024, 6, 15), day(2024, 6, 18))
}

func TestCreateBookingPendingDoesNotBlock(t *testing.T) {
	f := newFixture()

	first := f.book(t, guest, "room-a", day(2024, 6, 10), day(2024, 6, 15))
	second := f.book(t, other, "room-a", day(2024, 6, 12), day(2024, 6, 14))
	assert.Equal(t, StatusPending, first.Status)
	assert.Equal(t, StatusPending, second.Status)

	_, err := f.svc.Confirm(context.Background(), first.ID)
	require.NoError(t, err)

	// Once the first request holds the room, the competing one can no longer be confirmed.
	_, err = f.svc.Confirm(context.Background(), second.ID)
	assert.ErrorIs(t, err, ErrRoomUnavailable)
	assert.Equal(t, []string{"BK-TEST-1:pending->confirmed"}, f.notifier.changes)
}

func TestCreateBookingRetriesDuplicateNumber(t *testing.T) {
	f := newFixture()
	f.repo.failNext = errDuplicateNumber

	b := f.book(t, guest, "room-a", day(2024, 6, 10), day(2024, 6, 11))
	assert.Equal(t, "BK-TEST-2", b.BookingNumber)

	f.svc.newNumber = func(time.Time) string { return "BK-TEST-2" }
	_, err := f.svc.Create(context.Background(), CreateRequest{RoomID: "room-b", CheckIn: day(2024, 6, 10), CheckOut: day(2024, 6, 11), GuestsCount: 1}, guest)
	assert.ErrorIs(t, err, errDuplicateNumber, "gives up after a bounded number of attempts")
}

func TestCreateBookingNotificationFailureIsIgnored(t *testing.T) {
	f := newFixture()
	f.notifier.err = errors.New("discord is down")

	b := f.book(t, guest, "room-a", day(2024, 6, 10), day(2024, 6, 11))
	assert.NotEmpty(t, b.ID)
}

func TestGetAndListRespectOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	mine := f.book(t, guest, "room-a", day(2024, 6, 10), day(2024, 6, 11))
	f.book(t, other, "room-b", day(2024, 6, 10), day(2024, 6, 11))

	_, err := f.svc.GetByID(ctx, mine.ID, other)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.svc.GetByID(ctx, mine.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, mine.BookingNumber, got.BookingNumber)

	got, err = f.svc.GetByNumber(ctx, " bk-test-1 ", guest)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)

	list, total, err := f.svc.List(ctx, Filter{}, guest)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, mine.ID, list[0].ID)

	_, _, err = f.svc.List(ctx, Filter{UserID: other.UserID}, guest)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, total, err = f.svc.List(ctx, Filter{}, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestChangeDates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b := f.book(t, admin, "room-a", day(2024, 6, 10), day(2024, 6, 12))
	f.book(t, admin, "room-a", day(2024, 6, 14), day(2024, 6, 16))

	// Shifting within its own nights must not conflict with itself.
	moved, err := f.svc.ChangeDates(ctx, b.ID, day(2024, 6, 11), day(2024, 6, 14), admin)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 6, 11), moved.CheckIn)
	assert.Equal(t, 299.97, moved.TotalPrice)

	_, err = f.svc.ChangeDates(ctx, b.ID, day(2024, 6, 11), day(2024, 6, 15), admin)
	assert.ErrorIs(t, err, ErrRoomUnavailable)

	_, err = f.svc.ChangeDates(ctx, b.ID, day(2024, 5, 20), day(2024, 6, 12), admin)
	assert.ErrorIs(t, err, ErrCheckInPast)

	_, err = f.svc.ChangeDates(ctx, b.ID, day(2024, 6, 20), day(2024, 6, 22), other)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Cancel(ctx, b.ID, admin)
	require.NoError(t, err)
	_, err = f.svc.ChangeDates(ctx, b.ID, day(2024, 6, 20), day(2024, 6, 22), admin)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestStatusChanges(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b := f.book(t, guest, "room-a", day(2024, 6, 10), day(2024, 6, 12))

	_, err := f.svc.Complete(ctx, b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition, "pending stays cannot be completed")

	_, err = f.svc.Cancel(ctx, b.ID, other)
	assert.ErrorIs(t, err, ErrNotFound)

	confirmedB, err := f.svc.Confirm(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmedB.Status)

	done, err := f.svc.Complete(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)

	_, err = f.svc.Cancel(ctx, b.ID, guest)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	noShow := f.book(t, admin, "room-b", day(2024, 6, 10), day(2024, 6, 12))
	_, err = f.svc.MarkNoShow(ctx, noShow.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"BK-TEST-1:pending->confirmed",
		"BK-TEST-1:confirmed->completed",
		"BK-TEST-2:confirmed->no_show",
	}, f.notifier.changes)
}

func TestCancelReleasesRoom(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b := f.book(t, admin, "room-a", day(2024, 6, 10), day(2024, 6, 12))
	avail, err := f.svc.CheckAvailability(ctx, "room-a", day(2024, 6, 10), day(2024, 6, 12), "")
	require.NoError(t, err)
	assert.False(t, avail.Available)

	_, err = f.svc.Cancel(ctx, b.ID, admin)
	require.NoError(t, err)

	avail, err = f.svc.CheckAvailability(ctx, "room-a", day(2024, 6, 10), day(2024, 6, 12), "")
	require.NoError(t, err)
	assert.True(t, avail.Available)
	assert.Equal(t, 2, avail.Nights)
	assert.Equal(t, 199.98, avail.TotalPrice)
}

func TestCheckAvailabilityExcludingBooking(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b := f.book(t, admin, "room-a", day(2024, 7, 1), day(2024, 7, 5))

	avail, err := f.svc.CheckAvailability(ctx, "room-a", b.CheckIn, b.CheckOut, b.ID)
	require.NoError(t, err)
	assert.True(t, avail.Available)

	_, err = f.svc.CheckAvailability(ctx, "room-a", day(2024, 7, 5), day(2024, 7, 5), "")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	avail, err = f.svc.CheckAvailability(ctx, "room-c", day(2024, 7, 1), day(2024, 7, 2), "")
	require.NoError(t, err)
	assert.False(t, avail.Available, "rooms under maintenance are never available")
}

func TestConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	late := f.book(t, admin, "room-a", day(2024, 6, 20), day(2024, 6, 22))
	early := f.book(t, admin, "room-a", day(2024, 6, 10), day(2024, 6, 12))
	f.book(t, guest, "room-a", day(2024, 6, 12), day(2024, 6, 14)) // pending

	conflicts, err := f.svc.Conflicts(ctx, "room-a", day(2024, 6, 1), day(2024, 6, 30), "")
	require.NoError(t, err)
	require.Len(t, conflicts, 2)
	assert.Equal(t, early.ID, conflicts[0].ID)
	assert.Equal(t, late.ID, conflicts[1].ID)

	_, err = f.svc.Conflicts(ctx, "room-x", day(2024, 6, 1), day(2024, 6, 30), "")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestCalendar(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.book(t, admin, "room-a", day(2024, 6, 10), day(2024, 6, 15))
	// Arrives the day after the window ends, so it must not mark anything inside it.
	f.book(t, admin, "room-a", day(2024, 6, 17), day(2024, 6, 18))

	cal, err := f.svc.Calendar(ctx, "room-a", day(2024, 6, 10), day(2024, 6, 16))
	require.NoError(t, err)
	require.Len(t, cal, 7)
	for i, d := range cal {
		assert.Equal(t, i >= 5, d.Available, d.Date)
	}

	// The last day of the window is included in the query.
	cal, err = f.svc.Calendar(ctx, "room-a", day(2024, 6, 16), day(2024, 6, 17))
	require.NoError(t, err)
	assert.True(t, cal[0].Available)
	assert.False(t, cal[1].Available)

	_, err = f.svc.Calendar(ctx, "room-a", day(2024, 6, 16), day(2024, 6, 15))
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = f.svc.Calendar(ctx, "room-a", day(2024, 1, 1), day(2025, 1, 1))
	assert.ErrorIs(t, err, ErrCalendarTooLong)

	cal, err = f.svc.Calendar(ctx, "room-a", day(2024, 1, 1), day(2024, 12, 31))
	require.NoError(t, err)
	assert.Len(t, cal, MaxCalendarDays)
}

func TestSearchAvailableRooms(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.book(t, admin, "room-a", day(2024, 6, 10), day(2024, 6, 15))

	offers, err := f.svc.SearchAvailableRooms(ctx, day(2024, 6, 12), day(2024, 6, 14), 1)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, "room-b", offers[0].Room.ID)
	assert.Equal(t, 2, offers[0].Nights)
	assert.Equal(t, 360.0, offers[0].TotalPrice)

	offers, err = f.svc.SearchAvailableRooms(ctx, day(2024, 6, 15), day(2024, 6, 16), 1)
	require.NoError(t, err)
	assert.Len(t, offers, 2)

	offers, err = f.svc.SearchAvailableRooms(ctx, day(2024, 6, 15), day(2024, 6, 16), 10)
	require.NoError(t, err)
	assert.Empty(t, offers)

	_, err = f.svc.SearchAvailableRooms(ctx, day(2024, 6, 15), day(2024, 6, 16), 0)
	assert.ErrorIs(t, err, ErrInvalidGuests)
}

func TestGenerateNumber(t *testing.T) {
	n := generateNumber(time.Date(2024, 6, 10, 23, 0, 0, 0, time.UTC))
	assert.Regexp(t, `^BK-20240610-[0-9A-F]{6}$`, n)
}
