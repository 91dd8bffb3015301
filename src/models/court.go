package models

import (
	"terena/src/types"
	"time"
)

type Court struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	VenueID     uint   `json:"venue_id,omitempty"`
	Name        string `json:"name,omitempty"`
	CourtType   string `json:"court_type,omitempty"`
	MaxCapacity uint   `json:"max_capacity,omitempty"`
	IsAvailable bool   `gorm:"default:true" json:"is_available"`

	IsDeleted bool       `gorm:"default:false" json:"-"`
	DeletedAt *time.Time `json:"-"`

	Venue    *Venue    `gorm:"foreignKey:venue_id" json:"venue,omitempty"`
	Bookings []Booking `json:"-"`

	types.Timestamps
}
