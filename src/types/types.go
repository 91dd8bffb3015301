package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type Timestamps struct {
	CreatedAt time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("type assertion to []byte failed")
		}
		b = []byte(s)
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Handler func(payload string)

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_COMPLETED BookingStatus = "completed"
	BOOKING_CANCELLED BookingStatus = "cancelled"
	BOOKING_EXPIRED   BookingStatus = "expired"
)

type PaymentStatus string

const (
	PAYMENT_PENDING            PaymentStatus = "pending"
	PAYMENT_PAID               PaymentStatus = "paid"
	PAYMENT_REFUNDED           PaymentStatus = "refunded"
	PAYMENT_PARTIALLY_REFUNDED PaymentStatus = "partially_refunded"
)

type APIEnv string

const (
	Local      APIEnv = "local"
	Test       APIEnv = "test"
	Production APIEnv = "production"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateBookingRequestBody struct {
	VenueID         uint    `json:"venue_id" binding:"required"`
	CourtID         *uint   `json:"court_id,omitempty"`
	BookingDate     string  `json:"booking_date" binding:"required"`
	StartTime       string  `json:"start_time" binding:"required,bookabledate"`
	EndTime         string  `json:"end_time" binding:"required,gtdate=StartTime"`
	NumberOfPlayers uint8   `json:"number_of_players" binding:"required,min=1"`
	IsGroupBooking  bool    `json:"is_group_booking"`
	PaymentMethod   *string `json:"payment_method,omitempty"`
	PaymentIntentID *string `json:"payment_intent_id,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

type CancelBookingRequestBody struct {
	Reason string `json:"reason" binding:"required"`
}

type ProcessPaymentRequestBody struct {
	TransactionID string  `json:"transaction_id" binding:"required"`
	PaymentMethod *string `json:"payment_method,omitempty"`
}

type RefundBookingRequestBody struct {
	Amount *string `json:"amount,omitempty"`
}

type CreatePaymentIntentRequestBody struct {
	BookingID uint `json:"booking_id" binding:"required"`
}

type CreateVenueRequestBody struct {
	Name               string  `json:"name" binding:"required"`
	Location           string  `json:"location"`
	Address            string  `json:"address"`
	SportType          string  `json:"sport_type" binding:"required"`
	SurfaceType        string  `json:"surface_type"`
	PricePerHour       string  `json:"price_per_hour" binding:"required"`
	ServiceFee         *string `json:"service_fee,omitempty"`
	Description        string  `json:"description"`
	ContactPhone       string  `json:"contact_phone"`
	ContactEmail       string  `json:"contact_email"`
	DiscountPercentage *string `json:"discount_percentage,omitempty"`
	DiscountThreshold  *int    `json:"discount_threshold,omitempty"`
	CancellationHours  *int    `json:"cancellation_hours,omitempty"`
	CancellationFeePct *string `json:"cancellation_fee_percentage,omitempty"`

	OperatingHours []OperatingHourInput `json:"operating_hours,omitempty" binding:"omitempty,dive"`
}

// OperatingHourInput is one weekday row of a venue's operating window, with
// times as "HH:MM" labels.
type OperatingHourInput struct {
	Day       string `json:"day" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type CreateCourtRequestBody struct {
	Name        string `json:"name" binding:"required"`
	CourtType   string `json:"court_type"`
	MaxCapacity uint   `json:"max_capacity"`
}

// BookingQueryFilters is the closed filter set accepted by the bookings list
// endpoint. Anything outside of it is rejected at the boundary instead of
// being passed to the ORM as raw column names.
type BookingQueryFilters struct {
	BookingNumber string `form:"booking_number"`
	UserID        *uint  `form:"user_id"`
	VenueID       *uint  `form:"venue_id"`
	CourtID       *uint  `form:"court_id"`
	Status        string `form:"status"`
	PaymentStatus string `form:"payment_status"`
	DateFrom      string `form:"date_from"`
	DateTo        string `form:"date_to"`
	IsRefunded    *bool  `form:"is_refunded"`
	OrderBy       string `form:"order_by"`
	SortDirection string `form:"sort"`
	Page          int    `form:"page"`
	PageSize      int    `form:"page_size"`
}

var bookingSortFields = map[string]string{
	"created_at":   "created_at",
	"booking_date": "booking_date",
	"total_price":  "total_price",
	"status":       "status",
}

// SortColumn resolves the requested order-by key against the allowed set.
func (f *BookingQueryFilters) SortColumn() (string, bool) {
	if f.OrderBy == "" {
		return "created_at", true
	}
	col, ok := bookingSortFields[f.OrderBy]
	return col, ok
}

func (f *BookingQueryFilters) SortDir() (string, bool) {
	switch f.SortDirection {
	case "", "desc":
		return "desc", true
	case "asc":
		return "asc", true
	}
	return "", false
}

type AvailabilityQuery struct {
	Date    string `form:"date" binding:"required"`
	CourtID *uint  `form:"court_id"`
	Start   string `form:"start"`
}

type PagedResult[T any] struct {
	ResultList []T   `json:"data"`
	Count      int64 `json:"count"`
}
