// Package notify delivers booking lifecycle events to the front desk.
package notify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/dates"
)

// LogNotifier writes events to the structured log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func bookingFields(b *booking.Booking) []zap.Field {
	return []zap.Field{
		zap.String("booking_id", b.ID),
		zap.String("booking_number", b.BookingNumber),
		zap.String("room_id", b.RoomID),
		zap.String("check_in", dates.Format(b.CheckIn)),
		zap.String("check_out", dates.Format(b.CheckOut)),
		zap.String("status", string(b.Status)),
	}
}

func (n *LogNotifier) BookingCreated(_ context.Context, b *booking.Booking) error {
	n.logger.Info("booking created", bookingFields(b)...)
	return nil
}

func (n *LogNotifier) BookingStatusChanged(_ context.Context, b *booking.Booking, from booking.Status) error {
	n.logger.Info("booking status changed", append(bookingFields(b), zap.String("from", string(from)))...)
	return nil
}

// Multi fans events out to every notifier and joins their errors.
type Multi []booking.Notifier

func (m Multi) BookingCreated(ctx context.Context, b *booking.Booking) error {
	var errs []error
	for _, n := range m {
		if err := n.BookingCreated(ctx, b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) BookingStatusChanged(ctx context.Context, b *booking.Booking, from booking.Status) error {
	var errs []error
	for _, n := range m {
		if err := n.BookingStatusChanged(ctx, b, from); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func stay(b *booking.Booking) string {
	return fmt.Sprintf("%s - %s (%d nights)", dates.Format(b.CheckIn), dates.Format(b.CheckOut), b.Nights())
}
