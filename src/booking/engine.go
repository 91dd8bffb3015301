package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"terena/src/db"
	"terena/src/models"
	"terena/src/models/scopes"
	"terena/src/types"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const DefaultCurrency = "eur"

// Engine drives bookings through their lifecycle: conflict-checked creation,
// status transitions, payment reconciliation and availability queries. All
// check-then-write sequences run under a per-resource lock so concurrent
// requests for the same venue or booking serialize.
type Engine struct {
	gateway    PaymentGateway
	dispatcher Dispatcher
	cache      *redis.Client

	venueLocks   *keyedMutex
	bookingLocks *keyedMutex
}

func NewEngine(gateway PaymentGateway, dispatcher Dispatcher, cache *redis.Client) *Engine {
	return &Engine{
		gateway:      gateway,
		dispatcher:   dispatcher,
		cache:        cache,
		venueLocks:   newKeyedMutex(),
		bookingLocks: newKeyedMutex(),
	}
}

type CreateParams struct {
	UserID          uint
	VenueID         uint
	CourtID         *uint
	BookingDate     time.Time
	StartTime       time.Time
	EndTime         time.Time
	NumberOfPlayers uint8
	IsGroupBooking  bool
	PaymentMethod   *string
	PaymentIntentID *string
	Notes           *string
}

const defaultCancellationWindowHours = 24

// Create validates the requested interval against every active booking in
// scope, snapshots the venue pricing policy and persists the new booking.
// The venue lock is held across the conflict check and the insert so two
// concurrent requests for overlapping intervals cannot both succeed.
func (e *Engine) Create(ctx context.Context, p CreateParams) (*models.Booking, error) {
	start := p.StartTime.UTC()
	end := p.EndTime.UTC()
	if !end.After(start) {
		return nil, ErrInvalidInterval
	}

	unlock := e.venueLocks.Lock(fmt.Sprintf("venue:%d", p.VenueID))
	defer unlock()

	var booking *models.Booking
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		booking, err = e.createOnce(p, start, end)
		if err != nil && isDuplicateKey(err) {
			log.Printf("Booking number collision on attempt %d, retrying\n", attempt+1)
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}

	e.invalidateSlots(ctx, booking.VenueID, booking.CourtID, booking.BookingDate)
	if booking.Status == types.BOOKING_CONFIRMED {
		e.dispatch(EventBookingConfirmed, eventPayload(booking))
	}
	return booking, nil
}

func (e *Engine) createOnce(p CreateParams, start, end time.Time) (*models.Booking, error) {
	d := db.GetDb()
	now := time.Now().UTC()

	var booking models.Booking
	err := d.Transaction(func(tx *gorm.DB) error {
		var userCount int64
		if err := tx.
			Model(&models.User{}).
			Scopes(scopes.WithID(p.UserID)).
			Count(&userCount).
			Error; err != nil {
			return err
		}
		if userCount == 0 {
			return ErrNotFound
		}

		var venue models.Venue
		if err := tx.
			Model(&models.Venue{}).
			Scopes(scopes.WithID(p.VenueID), scopes.NotDeleted).
			Preload("Discount").
			Preload("CancellationPolicy").
			First(&venue).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if p.CourtID != nil {
			var courtCount int64
			if err := tx.
				Model(&models.Court{}).
				Scopes(scopes.WithID(*p.CourtID), scopes.NotDeleted).
				Where("venue_id = ?", p.VenueID).
				Count(&courtCount).
				Error; err != nil {
				return err
			}
			if courtCount == 0 {
				return ErrNotFound
			}
		}

		var conflicts int64
		if err := tx.
			Model(&models.Booking{}).
			Scopes(
				scopes.ForVenue(p.VenueID),
				scopes.ForCourtScope(p.CourtID),
				scopes.Overlapping(start, end),
				scopes.Active,
				scopes.NotDeleted,
			).
			Count(&conflicts).
			Error; err != nil {
			return err
		}
		if conflicts > 0 {
			return ErrConflict
		}

		duration := decimal.NewFromInt(int64(end.Sub(start) / time.Minute)).
			Div(decimal.NewFromInt(60)).
			Round(2)
		quote := ComputeQuote(duration, venue.PricePerHour, venue.Discount, venue.ServiceFee)

		windowHours := defaultCancellationWindowHours
		if venue.CancellationPolicy != nil && venue.CancellationPolicy.WindowHours > 0 {
			windowHours = venue.CancellationPolicy.WindowHours
		}

		booking = models.Booking{
			BookingNumber:        GenerateBookingNumber(),
			UserID:               p.UserID,
			VenueID:              p.VenueID,
			CourtID:              p.CourtID,
			BookingDate:          p.BookingDate.UTC().Truncate(24 * time.Hour),
			StartTime:            start,
			EndTime:              end,
			Duration:             duration,
			PricePerHour:         venue.PricePerHour,
			SubtotalPrice:        quote.Subtotal,
			DiscountPercentage:   quote.DiscountPercentage,
			DiscountAmount:       quote.DiscountAmount,
			ServiceFee:           quote.ServiceFee,
			TotalPrice:           quote.Total,
			NumberOfPlayers:      p.NumberOfPlayers,
			IsGroupBooking:       p.IsGroupBooking,
			Notes:                p.Notes,
			Status:               types.BOOKING_PENDING,
			PaymentStatus:        types.PAYMENT_PENDING,
			PaymentMethod:        p.PaymentMethod,
			CancellationDeadline: start.Add(-time.Duration(windowHours) * time.Hour),
		}

		if immediateCapture(p) {
			booking.Status = types.BOOKING_CONFIRMED
			booking.ConfirmedAt = &now
			booking.PaymentStatus = types.PAYMENT_PAID
			booking.PaidAt = &now
			booking.PaymentIntentId = p.PaymentIntentID
		}

		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// immediateCapture mirrors the create-time shortcut: a provided payment
// intent or a card payment method means the processor already captured the
// amount, so the booking starts out confirmed and paid.
func immediateCapture(p CreateParams) bool {
	if p.PaymentIntentID != nil && *p.PaymentIntentID != "" {
		return true
	}
	return p.PaymentMethod != nil && strings.EqualFold(*p.PaymentMethod, "card")
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}

// Confirm moves a pending booking to confirmed.
func (e *Engine) Confirm(ctx context.Context, bookingID uint) (*models.Booking, error) {
	return e.transition(ctx, bookingID, types.BOOKING_CONFIRMED, func(b *models.Booking, now time.Time) error {
		if b.Status != types.BOOKING_PENDING {
			return invalidTransition(b.Status, types.BOOKING_CONFIRMED)
		}
		b.Status = types.BOOKING_CONFIRMED
		b.ConfirmedAt = &now
		return nil
	}, EventBookingConfirmed)
}

// Cancel moves a pending or confirmed booking to cancelled and records the
// reason. Completed bookings cannot be cancelled.
func (e *Engine) Cancel(ctx context.Context, bookingID uint, reason string) (*models.Booking, error) {
	b, err := e.transition(ctx, bookingID, types.BOOKING_CANCELLED, func(b *models.Booking, now time.Time) error {
		if b.Status == types.BOOKING_CANCELLED || b.Status == types.BOOKING_COMPLETED {
			return invalidTransition(b.Status, types.BOOKING_CANCELLED)
		}
		b.Status = types.BOOKING_CANCELLED
		b.CancelledAt = &now
		b.CancellationReason = &reason
		return nil
	}, EventBookingCancelled)
	if err != nil {
		return nil, err
	}
	e.invalidateSlots(ctx, b.VenueID, b.CourtID, b.BookingDate)
	return b, nil
}

// Complete moves a confirmed booking to completed.
func (e *Engine) Complete(ctx context.Context, bookingID uint) (*models.Booking, error) {
	return e.transition(ctx, bookingID, types.BOOKING_COMPLETED, func(b *models.Booking, now time.Time) error {
		if b.Status != types.BOOKING_CONFIRMED {
			return invalidTransition(b.Status, types.BOOKING_COMPLETED)
		}
		b.Status = types.BOOKING_COMPLETED
		b.CompletedAt = &now
		return nil
	}, EventBookingCompleted)
}

// Expire marks an abandoned pending booking as expired. Only invoked by an
// explicit trigger, never implicitly.
func (e *Engine) Expire(ctx context.Context, bookingID uint) (*models.Booking, error) {
	b, err := e.transition(ctx, bookingID, types.BOOKING_EXPIRED, func(b *models.Booking, now time.Time) error {
		if b.Status != types.BOOKING_PENDING {
			return invalidTransition(b.Status, types.BOOKING_EXPIRED)
		}
		b.Status = types.BOOKING_EXPIRED
		return nil
	}, EventBookingExpired)
	if err != nil {
		return nil, err
	}
	e.invalidateSlots(ctx, b.VenueID, b.CourtID, b.BookingDate)
	return b, nil
}

// transition loads the booking under its lock, applies the mutation and
// persists it, then dispatches the lifecycle event. A failed guard leaves the
// row untouched.
func (e *Engine) transition(
	ctx context.Context,
	bookingID uint,
	to types.BookingStatus,
	mutate func(b *models.Booking, now time.Time) error,
	eventType string,
) (*models.Booking, error) {
	unlock := e.bookingLocks.Lock(fmt.Sprintf("booking:%d", bookingID))
	defer unlock()

	d := db.GetDb()
	now := time.Now().UTC()

	var booking models.Booking
	err := d.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Booking{}).
			Scopes(scopes.WithID(bookingID), scopes.NotDeleted).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := mutate(&booking, now); err != nil {
			return err
		}
		return tx.Save(&booking).Error
	})
	if err != nil {
		return nil, err
	}

	e.dispatch(eventType, eventPayload(&booking))
	return &booking, nil
}

// ProcessPayment records an externally-reported successful payment.
func (e *Engine) ProcessPayment(ctx context.Context, bookingID uint, transactionID string, paymentMethod *string) (*models.Booking, error) {
	unlock := e.bookingLocks.Lock(fmt.Sprintf("booking:%d", bookingID))
	defer unlock()

	d := db.GetDb()
	now := time.Now().UTC()

	var booking models.Booking
	err := d.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Booking{}).
			Scopes(scopes.WithID(bookingID), scopes.NotDeleted).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if booking.PaymentStatus == types.PAYMENT_PAID {
			return ErrAlreadyPaid
		}
		booking.PaymentStatus = types.PAYMENT_PAID
		booking.TransactionID = &transactionID
		booking.PaidAt = &now
		if paymentMethod != nil {
			booking.PaymentMethod = paymentMethod
		}
		if booking.Status == types.BOOKING_PENDING {
			booking.Status = types.BOOKING_CONFIRMED
			booking.ConfirmedAt = &now
		}
		return tx.Save(&booking).Error
	})
	if err != nil {
		return nil, err
	}
	if booking.Status == types.BOOKING_CONFIRMED && booking.ConfirmedAt != nil && booking.ConfirmedAt.Equal(now) {
		e.dispatch(EventBookingConfirmed, eventPayload(&booking))
	}
	return &booking, nil
}

// chargeReference resolves the external identifier a refund is reconciled
// against. An explicit charge id wins, then the transaction id recorded by
// ProcessPayment, then the payment intent id from a card capture.
func chargeReference(b *models.Booking) *string {
	for _, ref := range []*string{b.ChargeId, b.TransactionID, b.PaymentIntentId} {
		if ref != nil && *ref != "" {
			return ref
		}
	}
	return nil
}

// Refund reconciles a refund with the payment gateway. When the booking
// carries an external payment reference the gateway call happens first and
// local bookkeeping is only written after the gateway confirms; a gateway
// failure aborts the operation with no local mutation.
func (e *Engine) Refund(ctx context.Context, bookingID uint, amount *decimal.Decimal) (*models.Booking, error) {
	unlock := e.bookingLocks.Lock(fmt.Sprintf("booking:%d", bookingID))
	defer unlock()

	d := db.GetDb()

	var booking models.Booking
	if err := d.
		Model(&models.Booking{}).
		Scopes(scopes.WithID(bookingID), scopes.NotDeleted).
		First(&booking).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if booking.PaymentStatus != types.PAYMENT_PAID {
		return nil, ErrNotPaid
	}
	if booking.IsRefunded {
		return nil, ErrAlreadyRefunded
	}

	refundAmount := booking.TotalPrice
	if amount != nil {
		refundAmount = amount.Round(2)
	}
	if !refundAmount.IsPositive() || refundAmount.GreaterThan(booking.TotalPrice) {
		return nil, ErrInvalidAmount
	}

	var refundID *string
	if ref := chargeReference(&booking); ref != nil {
		minor := MinorUnits(refundAmount)
		res, err := e.gateway.Refund(ctx, *ref, &minor)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrGateway, err.Error())
		}
		refundID = &res.ID
	}

	now := time.Now().UTC()
	err := d.Transaction(func(tx *gorm.DB) error {
		booking.IsRefunded = true
		booking.RefundAmount = &refundAmount
		booking.RefundedAt = &now
		booking.RefundId = refundID
		if refundAmount.GreaterThanOrEqual(booking.TotalPrice) {
			booking.PaymentStatus = types.PAYMENT_REFUNDED
		} else {
			booking.PaymentStatus = types.PAYMENT_PARTIALLY_REFUNDED
		}
		return tx.Save(&booking).Error
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CreateIntent asks the payment gateway for a payment intent covering the
// booking total. The intent id is stored only after the gateway succeeds.
func (e *Engine) CreateIntent(ctx context.Context, bookingID uint) (*PaymentIntent, error) {
	unlock := e.bookingLocks.Lock(fmt.Sprintf("booking:%d", bookingID))
	defer unlock()

	d := db.GetDb()

	var booking models.Booking
	if err := d.
		Model(&models.Booking{}).
		Scopes(scopes.WithID(bookingID), scopes.NotDeleted).
		First(&booking).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if booking.PaymentStatus == types.PAYMENT_PAID {
		return nil, ErrAlreadyPaid
	}

	description := fmt.Sprintf("Booking %s", booking.BookingNumber)
	intent, err := e.gateway.CreateIntent(ctx, MinorUnits(booking.TotalPrice), DefaultCurrency, description)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGateway, err.Error())
	}

	err = d.Transaction(func(tx *gorm.DB) error {
		return tx.
			Model(&models.Booking{}).
			Scopes(scopes.WithID(bookingID)).
			Update("payment_intent_id", intent.ID).
			Error
	})
	if err != nil {
		return nil, err
	}
	return intent, nil
}

func (e *Engine) dispatch(eventType string, payload types.JSONB) {
	if e.dispatcher == nil {
		return
	}
	go e.dispatcher.Publish(eventType, payload)
}

func eventPayload(b *models.Booking) types.JSONB {
	payload := types.JSONB{
		"booking_id":     b.ID,
		"booking_number": b.BookingNumber,
		"user_id":        b.UserID,
		"venue_id":       b.VenueID,
		"booking_date":   b.BookingDate.Format("2006-01-02"),
		"time_slot":      fmt.Sprintf("%s - %s", b.StartTime.Format("15:04"), b.EndTime.Format("15:04")),
		"total_price":    b.TotalPrice.StringFixed(2),
		"status":         string(b.Status),
		"created_at":     b.CreatedAt.Format(time.RFC3339),
	}
	if b.CancellationReason != nil {
		payload["reason"] = *b.CancellationReason
	}
	return payload
}
