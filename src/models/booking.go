package models

import (
	"terena/src/types"
	"time"

	"github.com/shopspring/decimal"
)

// Booking is the central aggregate. Money fields are snapshotted from the
// venue at creation and never recomputed from live venue state.
type Booking struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	BookingNumber string `gorm:"uniqueIndex" json:"booking_number"`

	UserID  uint  `json:"user_id,omitempty"`
	VenueID uint  `json:"venue_id,omitempty"`
	CourtID *uint `json:"court_id,omitempty"`

	BookingDate time.Time       `json:"booking_date"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
	Duration    decimal.Decimal `gorm:"type:numeric(6,2)" json:"duration"`

	PricePerHour       decimal.Decimal `gorm:"type:numeric(10,2)" json:"price_per_hour"`
	SubtotalPrice      decimal.Decimal `gorm:"type:numeric(10,2)" json:"subtotal_price"`
	DiscountPercentage decimal.Decimal `gorm:"type:numeric(5,2)" json:"discount_percentage"`
	DiscountAmount     decimal.Decimal `gorm:"type:numeric(10,2)" json:"discount_amount"`
	ServiceFee         decimal.Decimal `gorm:"type:numeric(10,2)" json:"service_fee"`
	TotalPrice         decimal.Decimal `gorm:"type:numeric(10,2)" json:"total_price"`

	NumberOfPlayers uint8   `json:"number_of_players,omitempty"`
	IsGroupBooking  bool    `json:"is_group_booking"`
	Notes           *string `json:"notes,omitempty"`

	Status               types.BookingStatus `gorm:"default:'pending'" json:"status"`
	ConfirmedAt          *time.Time          `json:"confirmed_at,omitempty"`
	CompletedAt          *time.Time          `json:"completed_at,omitempty"`
	CancelledAt          *time.Time          `json:"cancelled_at,omitempty"`
	CancellationReason   *string             `json:"cancellation_reason,omitempty"`
	CancellationDeadline time.Time           `json:"cancellation_deadline"`

	PaymentStatus   types.PaymentStatus `gorm:"default:'pending'" json:"payment_status"`
	PaymentMethod   *string             `json:"payment_method,omitempty"`
	TransactionID   *string             `json:"transaction_id,omitempty"`
	PaymentIntentId *string             `json:"-"`
	ChargeId        *string             `json:"-"`
	RefundId        *string             `json:"-"`
	PaidAt          *time.Time          `json:"paid_at,omitempty"`

	IsRefunded   bool             `gorm:"default:false" json:"is_refunded"`
	RefundAmount *decimal.Decimal `gorm:"type:numeric(10,2)" json:"refund_amount,omitempty"`
	RefundedAt   *time.Time       `json:"refunded_at,omitempty"`

	ReminderSentAt *time.Time `json:"-"`

	IsDeleted bool       `gorm:"default:false" json:"-"`
	DeletedAt *time.Time `json:"-"`

	Venue *Venue `gorm:"foreignKey:venue_id" json:"venue,omitempty"`
	Court *Court `gorm:"foreignKey:court_id" json:"court,omitempty"`
	User  *User  `gorm:"foreignKey:user_id" json:"user,omitempty"`

	types.Timestamps
}
