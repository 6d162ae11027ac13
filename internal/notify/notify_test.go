package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
)

func sample() *booking.Booking {
	return &booking.Booking{
		ID:              "b-1",
		BookingNumber:   "BK-20240610-ABCDEF",
		RoomID:          "r-1",
		RoomNumber:      "101",
		RoomName:        "Garden Double",
		UserName:        "Ada",
		CheckIn:         time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:        time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC),
		GuestsCount:     2,
		TotalPrice:      360,
		SpecialRequests: "crib",
		Status:          booking.StatusConfirmed,
	}
}

type fakeSender struct {
	channel  string
	messages []string
	err      error
}

func (f *fakeSender) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channel = channelID
	f.messages = append(f.messages, content)
	return &discordgo.Message{Content: content}, f.err
}

func TestDiscordNotifier(t *testing.T) {
	sender := &fakeSender{}
	n := NewDiscordNotifier(sender, "front-desk")

	require.NoError(t, n.BookingCreated(context.Background(), sample()))
	require.NoError(t, n.BookingStatusChanged(context.Background(), sample(), booking.StatusPending))

	assert.Equal(t, "front-desk", sender.channel)
	require.Len(t, sender.messages, 2)
	assert.Contains(t, sender.messages[0], "BK-20240610-ABCDEF")
	assert.Contains(t, sender.messages[0], "2024-06-10 - 2024-06-13 (3 nights)")
	assert.Contains(t, sender.messages[0], "**Requests:** crib")
	assert.Contains(t, sender.messages[1], "pending → confirmed")
}

func TestDiscordNotifierErrors(t *testing.T) {
	assert.Error(t, NewDiscordNotifier(nil, "c").BookingCreated(context.Background(), sample()))
	assert.Error(t, NewDiscordNotifier(&fakeSender{}, "").BookingCreated(context.Background(), sample()))

	boom := errors.New("rate limited")
	err := NewDiscordNotifier(&fakeSender{err: boom}, "c").BookingCreated(context.Background(), sample())
	assert.ErrorIs(t, err, boom)
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	require.NoError(t, n.BookingStatusChanged(context.Background(), sample(), booking.StatusPending))

	entries := logs.FilterMessage("booking status changed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "BK-20240610-ABCDEF", fields["booking_number"])
	assert.Equal(t, "pending", fields["from"])
	assert.Equal(t, "confirmed", fields["status"])
}

func TestMultiJoinsErrors(t *testing.T) {
	boom := errors.New("rate limited")
	ok := &fakeSender{}
	core, logs := observer.New(zap.InfoLevel)

	m := Multi{
		NewLogNotifier(zap.New(core)),
		NewDiscordNotifier(&fakeSender{err: boom}, "c"),
		NewDiscordNotifier(ok, "c"),
	}

	err := m.BookingCreated(context.Background(), sample())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, ok.messages, 1, "a failing notifier does not stop the others")
	assert.Equal(t, 1, logs.Len())
}
