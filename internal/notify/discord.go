package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/nekogravitycat/hotel-booking-backend/internal/booking"
)

// MessageSender is the part of *discordgo.Session used to post messages.
type MessageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts booking events to a front desk channel.
type DiscordNotifier struct {
	sender    MessageSender
	channelID string
}

func NewDiscordNotifier(sender MessageSender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		sender:    sender,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) send(ctx context.Context, message string) error {
	if n.sender == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	if _, err := n.sender.ChannelMessageSend(n.channelID, message, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}

func (n *DiscordNotifier) BookingCreated(ctx context.Context, b *booking.Booking) error {
	requests := ""
	if b.SpecialRequests != "" {
		requests = fmt.Sprintf("\n**Requests:** %s", b.SpecialRequests)
	}

	message := fmt.Sprintf("🛎️ **New Booking %s**\n**Guest:** %s\n**Room:** %s %s\n**Stay:** %s\n**Guests:** %d\n**Total:** %.2f\n**Status:** %s%s",
		b.BookingNumber,
		b.UserName,
		b.RoomNumber,
		b.RoomName,
		stay(b),
		b.GuestsCount,
		b.TotalPrice,
		b.Status,
		requests,
	)
	return n.send(ctx, message)
}

func (n *DiscordNotifier) BookingStatusChanged(ctx context.Context, b *booking.Booking, from booking.Status) error {
	message := fmt.Sprintf("📋 **Booking %s**: %s → %s\n**Room:** %s\n**Stay:** %s",
		b.BookingNumber,
		from,
		b.Status,
		b.RoomNumber,
		stay(b),
	)
	return n.send(ctx, message)
}
