package booking

import (
	"cmp"
	"slices"
	"time"

	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/dates"
	"github.com/nekogravitycat/hotel-booking-backend/internal/room"
)

// Overlaps reports whether the half-open ranges [aStart, aEnd) and [bStart, bEnd) intersect.
// A range ending on the day another begins does not overlap it, so a guest may check out
// on the morning a new guest checks in.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// blocks reports whether b holds rm against a new stay.
func blocks(rm *room.Room, b *Booking, excludeBookingID string) bool {
	if b == nil || !b.Occupies() || b.RoomID != rm.ID {
		return false
	}
	return excludeBookingID == "" || b.ID != excludeBookingID
}

// IsAvailable reports whether rm can take a stay over [checkIn, checkOut).
//
// Rooms that are not active are never available. Otherwise the room is free unless a
// confirmed booking of rm, other than excludeBookingID, overlaps the range. bookings is the
// room's existing bookings as read from storage; unrelated or non-confirmed entries are
// ignored. Ordering of checkIn and checkOut is the caller's responsibility.
func IsAvailable(rm *room.Room, checkIn, checkOut time.Time, excludeBookingID string, bookings []*Booking) bool {
	if !rm.Bookable() {
		return false
	}

	in, out := dates.Normalize(checkIn), dates.Normalize(checkOut)
	for _, b := range bookings {
		if blocks(rm, b, excludeBookingID) && Overlaps(in, out, dates.Normalize(b.CheckIn), dates.Normalize(b.CheckOut)) {
			return false
		}
	}
	return true
}

// FindConflicts returns the confirmed bookings of rm, other than excludeBookingID, that
// overlap [checkIn, checkOut), ordered by check-in date. The room's status is not
// considered, so the result is empty exactly when IsAvailable holds for an active room.
func FindConflicts(rm *room.Room, checkIn, checkOut time.Time, excludeBookingID string, bookings []*Booking) []*Booking {
	in, out := dates.Normalize(checkIn), dates.Normalize(checkOut)

	var conflicts []*Booking
	for _, b := range bookings {
		if blocks(rm, b, excludeBookingID) && Overlaps(in, out, dates.Normalize(b.CheckIn), dates.Normalize(b.CheckOut)) {
			conflicts = append(conflicts, b)
		}
	}

	sortByCheckIn(conflicts)
	return conflicts
}

func sortByCheckIn(bookings []*Booking) {
	slices.SortStableFunc(bookings, func(a, b *Booking) int {
		if c := a.CheckIn.Compare(b.CheckIn); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// CalendarDay is the state of one night in a room calendar.
type CalendarDay struct {
	Date      time.Time
	Available bool
	Price     float64
	Booking   *Booking // the confirmed booking holding this night, if any
}

// BuildCalendar lists every day in [start, end] inclusive for rm, in ascending order.
//
// A day is taken when a confirmed booking has check_in <= day < check_out: the night
// starting on that day is sold. The check-out day itself stays free. Every day carries
// the room's flat nightly rate. The result is recomputed from bookings on every call and
// is empty when end is before start.
func BuildCalendar(rm *room.Room, start, end time.Time, bookings []*Booking) []CalendarDay {
	start, end = dates.Normalize(start), dates.Normalize(end)
	if end.Before(start) {
		return []CalendarDay{}
	}

	var occupying []*Booking
	for _, b := range bookings {
		if blocks(rm, b, "") {
			occupying = append(occupying, b)
		}
	}
	sortByCheckIn(occupying)

	days := make([]CalendarDay, 0, dates.Nights(start, end)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := CalendarDay{Date: d, Available: true, Price: rm.PricePerNight}
		for _, b := range occupying {
			if !d.Before(dates.Normalize(b.CheckIn)) && d.Before(dates.Normalize(b.CheckOut)) {
				day.Available = false
				day.Booking = b
				break
			}
		}
		days = append(days, day)
	}
	return days
}
