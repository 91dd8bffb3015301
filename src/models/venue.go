package models

import (
	"terena/src/types"
	"time"

	"github.com/shopspring/decimal"
)

type Venue struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	Name         string          `json:"name,omitempty"`
	Location     string          `json:"location,omitempty"`
	Address      string          `json:"address,omitempty"`
	SportType    string          `json:"sport_type,omitempty"`
	SurfaceType  string          `json:"surface_type,omitempty"`
	PricePerHour decimal.Decimal `gorm:"type:numeric(10,2)" json:"price_per_hour"`
	ServiceFee   decimal.Decimal `gorm:"type:numeric(10,2)" json:"service_fee"`
	Description  string          `json:"description,omitempty"`
	ContactPhone string          `json:"contact_phone,omitempty"`
	ContactEmail string          `json:"contact_email,omitempty"`
	IsOpen       bool            `gorm:"default:true" json:"is_open"`

	IsDeleted bool       `gorm:"default:false" json:"-"`
	DeletedAt *time.Time `json:"-"`

	OperatingHours     []OperatingHour     `json:"operating_hours,omitempty"`
	CancellationPolicy *CancellationPolicy `json:"cancellation_policy,omitempty"`
	Discount           *Discount           `json:"discount,omitempty"`
	Courts             []Court             `json:"courts,omitempty"`
	Bookings           []Booking           `json:"-"`

	types.Timestamps
}

type OperatingHour struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	VenueID   uint   `json:"venue_id,omitempty"`
	Day       string `json:"day,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// CancellationPolicy drives the cancellation deadline stamped onto a booking
// at creation: start time minus WindowHours.
type CancellationPolicy struct {
	ID            uint             `gorm:"primarykey" json:"id"`
	VenueID       uint             `json:"venue_id,omitempty"`
	WindowHours   int              `json:"window_hours,omitempty"`
	FeePercentage decimal.Decimal  `gorm:"type:numeric(5,2)" json:"fee_percentage"`
	FlatFee       *decimal.Decimal `gorm:"type:numeric(10,2)" json:"flat_fee,omitempty"`
}

// Discount applies only to bookings of at least MinDurationHours.
type Discount struct {
	ID               uint            `gorm:"primarykey" json:"id"`
	VenueID          uint            `json:"venue_id,omitempty"`
	Percentage       decimal.Decimal `gorm:"type:numeric(5,2)" json:"percentage"`
	MinDurationHours int             `json:"min_duration_hours,omitempty"`
}
