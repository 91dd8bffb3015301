package scopes

import (
	"terena/src/types"
	"time"

	"gorm.io/gorm"
)

func WithID(id uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// Active selects bookings that still occupy their interval. Only a cancelled
// booking frees the slot.
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("status <> ?", types.BOOKING_CANCELLED)
}

func ForVenue(venueID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("venue_id = ?", venueID)
	}
}

// ForCourtScope applies the asymmetric court predicate: a court-less candidate
// contends with every booking at the venue, while a court-specific candidate
// only contends with bookings on that same court.
func ForCourtScope(courtID *uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if courtID == nil {
			return db
		}
		return db.Where("court_id = ?", *courtID)
	}
}

func Overlapping(start, end time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("start_time < ? AND end_time > ?", end, start)
	}
}

func OnDate(date time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		day := date.UTC().Truncate(24 * time.Hour)
		return db.Where("booking_date >= ? AND booking_date < ?", day, day.Add(24*time.Hour))
	}
}
