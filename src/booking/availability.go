package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"terena/src/config"
	"terena/src/db"
	"terena/src/models"
	"terena/src/models/scopes"
	"time"

	"gorm.io/gorm"
)

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching intervals do not conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// FreeSlots enumerates the hourly slots inside the operating window that no
// active booking overlaps, as "HH:00" labels.
func FreeSlots(date time.Time, openHour, closeHour int, bookings []models.Booking) []string {
	day := date.UTC().Truncate(24 * time.Hour)
	slots := make([]string, 0, closeHour-openHour)
	for hour := openHour; hour < closeHour; hour++ {
		slotStart := day.Add(time.Duration(hour) * time.Hour)
		slotEnd := slotStart.Add(time.Hour)
		blocked := false
		for _, b := range bookings {
			if Overlaps(slotStart, slotEnd, b.StartTime, b.EndTime) {
				blocked = true
				break
			}
		}
		if !blocked {
			slots = append(slots, fmt.Sprintf("%02d:00", hour))
		}
	}
	return slots
}

// MaxDurationFrom walks forward hour by hour from the chosen start slot until
// the operating window ends or a booking blocks the hour. Minimum 1.
func MaxDurationFrom(date time.Time, startHour, closeHour int, bookings []models.Booking) int {
	day := date.UTC().Truncate(24 * time.Hour)
	maxDuration := 0
	for hour := startHour; hour < closeHour; hour++ {
		checkStart := day.Add(time.Duration(hour) * time.Hour)
		checkEnd := checkStart.Add(time.Hour)
		blocked := false
		for _, b := range bookings {
			if Overlaps(checkStart, checkEnd, b.StartTime, b.EndTime) {
				blocked = true
				break
			}
		}
		if blocked {
			break
		}
		maxDuration++
	}
	if maxDuration < 1 {
		return 1
	}
	return maxDuration
}

// GetAvailableSlots computes the free hourly slots for a venue (optionally a
// single court) on the given date. Results are cached briefly in redis keyed
// by venue, court scope and day.
func (e *Engine) GetAvailableSlots(ctx context.Context, venueID uint, date time.Time, courtID *uint) ([]string, error) {
	key := slotCacheKey(venueID, courtID, date)
	if cached, ok := e.cachedSlots(ctx, key); ok {
		return cached, nil
	}

	venue, err := e.availabilityVenue(venueID)
	if err != nil {
		return nil, err
	}
	bookings, err := e.activeBookings(venueID, date, courtID)
	if err != nil {
		return nil, err
	}
	openHour, closeHour := operatingWindowFor(venue, date)
	slots := FreeSlots(date, openHour, closeHour, bookings)

	e.storeSlots(ctx, key, slots)
	return slots, nil
}

// GetMaxDurationForSlot returns how many contiguous free hours are bookable
// from the given start slot ("HH:MM").
func (e *Engine) GetMaxDurationForSlot(ctx context.Context, venueID uint, date time.Time, slot string, courtID *uint) (int, error) {
	startHour, err := slotHour(slot)
	if err != nil {
		return 0, err
	}

	venue, err := e.availabilityVenue(venueID)
	if err != nil {
		return 0, err
	}
	bookings, err := e.activeBookings(venueID, date, courtID)
	if err != nil {
		return 0, err
	}
	_, closeHour := operatingWindowFor(venue, date)
	return MaxDurationFrom(date, startHour, closeHour, bookings), nil
}

// slotHour parses an "HH:MM" slot label into its hour component.
func slotHour(slot string) (int, error) {
	parts := strings.Split(slot, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: malformed slot %q", ErrInvalidInterval, slot)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: malformed slot %q", ErrInvalidInterval, slot)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: malformed slot %q", ErrInvalidInterval, slot)
	}
	return hour, nil
}

// operatingWindowFor resolves the bookable window for a venue on a given
// day. An operating-hours row matching the weekday overrides the default
// window; a row that does not parse falls back to it.
func operatingWindowFor(venue *models.Venue, date time.Time) (int, int) {
	weekday := date.UTC().Weekday().String()
	for _, oh := range venue.OperatingHours {
		if !strings.EqualFold(oh.Day, weekday) {
			continue
		}
		openHour, errOpen := slotHour(oh.StartTime)
		closeHour, errClose := slotHour(oh.EndTime)
		if errOpen != nil || errClose != nil || openHour >= closeHour {
			break
		}
		return openHour, closeHour
	}
	return config.OperatingWindow()
}

func (e *Engine) availabilityVenue(venueID uint) (*models.Venue, error) {
	var venue models.Venue
	d := db.GetDb()
	if err := d.
		Model(&models.Venue{}).
		Scopes(scopes.WithID(venueID), scopes.NotDeleted).
		Preload("OperatingHours").
		First(&venue).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &venue, nil
}

func (e *Engine) activeBookings(venueID uint, date time.Time, courtID *uint) ([]models.Booking, error) {
	d := db.GetDb()
	var bookings []models.Booking
	err := d.
		Model(&models.Booking{}).
		Scopes(
			scopes.ForVenue(venueID),
			scopes.ForCourtScope(courtID),
			scopes.OnDate(date),
			scopes.Active,
			scopes.NotDeleted,
		).
		Order("start_time asc").
		Find(&bookings).
		Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

const slotCacheTTL = 30 * time.Second

func slotCacheKey(venueID uint, courtID *uint, date time.Time) string {
	court := "all"
	if courtID != nil {
		court = strconv.FormatUint(uint64(*courtID), 10)
	}
	return fmt.Sprintf("slots:%d:%s:%s", venueID, court, date.UTC().Format(config.DATE_PARSE_FORMAT))
}

func (e *Engine) cachedSlots(ctx context.Context, key string) ([]string, bool) {
	if e.cache == nil {
		return nil, false
	}
	val, err := e.cache.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var slots []string
	if err := json.Unmarshal([]byte(val), &slots); err != nil {
		log.Printf("[cache] Error decoding cached slots for %s: %s\n", key, err.Error())
		return nil, false
	}
	return slots, true
}

func (e *Engine) storeSlots(ctx context.Context, key string, slots []string) {
	if e.cache == nil {
		return
	}
	b, _ := json.Marshal(slots)
	if err := e.cache.Set(ctx, key, string(b), slotCacheTTL).Err(); err != nil {
		log.Printf("[cache] Error caching slots for %s: %s\n", key, err.Error())
	}
}

// invalidateSlots drops the cached slot sets a booking write can affect. Court
// keys other than the written one age out via the TTL.
func (e *Engine) invalidateSlots(ctx context.Context, venueID uint, courtID *uint, date time.Time) {
	if e.cache == nil {
		return
	}
	keys := []string{slotCacheKey(venueID, nil, date)}
	if courtID != nil {
		keys = append(keys, slotCacheKey(venueID, courtID, date))
	}
	if err := e.cache.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[cache] Error invalidating slots for venue %d: %s\n", venueID, err.Error())
	}
}
