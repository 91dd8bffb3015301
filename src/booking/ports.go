package booking

import (
	"context"
	"terena/src/types"
)

// PaymentIntent is the handle returned by the external payment processor. The
// engine stores identifiers only, never card data.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

type RefundResult struct {
	ID string `json:"id"`
}

// PaymentGateway is the boundary to the external payment processor. Amounts
// are in minor currency units. Implementations must honor ctx deadlines.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, description string) (*PaymentIntent, error)
	Refund(ctx context.Context, chargeID string, amountMinor *int64) (*RefundResult, error)
}

// Dispatcher publishes booking lifecycle events. Fire-and-forget: the engine
// never consumes a result and delivery failures stay inside the
// implementation.
type Dispatcher interface {
	Publish(eventType string, payload types.JSONB)
}

// Event types understood by the notification workers.
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
	EventBookingExpired   = "booking.expired"
	EventBookingReminder  = "booking.reminder"
)
