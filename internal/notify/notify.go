// Package notify delivers domain events to whatever sends the actual emails.
package notify

import (
	"context"
	"time"
)

const (
	EventBookingConfirmation = "booking.confirmation"
	EventBookingAdminNotice  = "booking.admin_notice"
	EventBookingCancelled    = "booking.cancelled"
	EventMessageReceived     = "message.received"
	EventChatMessage         = "chat.message"
)

// Event is one notification. Type doubles as the routing key.
type Event struct {
	Type       string    `json:"type"`
	Recipient  string    `json:"recipient,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Dispatcher hands an event to a delivery channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, e Event) error
}

// BookingPayload carries everything an email template needs about a booking.
type BookingPayload struct {
	BookingID  string  `json:"booking_id"`
	UserID     string  `json:"user_id"`
	UserEmail  string  `json:"user_email"`
	UserName   string  `json:"user_name"`
	CourtID    string  `json:"court_id"`
	CourtName  string  `json:"court_name"`
	Date       string  `json:"booking_date"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	CoachName  *string `json:"coach_name,omitempty"`
	Membership string  `json:"membership_status"`
	Status     string  `json:"status"`
	Notes      *string `json:"notes,omitempty"`
}

// MessagePayload is a contact-form submission.
type MessagePayload struct {
	MessageID string `json:"message_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Body      string `json:"message"`
}

// ChatMessagePayload tells a chat participant about a new message.
type ChatMessagePayload struct {
	ChatID     string `json:"chat_id"`
	MessageID  string `json:"message_id"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Preview    string `json:"preview"`
}
