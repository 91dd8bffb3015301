package booking

import (
	"context"
	"testing"
	"time"

	"terena/src/models"

	"github.com/stretchr/testify/assert"
)

func day(t *testing.T) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", "2026-09-01")
	assert.NoError(t, err)
	return parsed
}

func bookingAt(t *testing.T, startHour, endHour int) models.Booking {
	t.Helper()
	base := day(t)
	return models.Booking{
		StartTime: base.Add(time.Duration(startHour) * time.Hour),
		EndTime:   base.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestOverlaps(t *testing.T) {
	base := day(t)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     int
		want                           bool
	}{
		{"identical", 10, 12, 10, 12, true},
		{"contained", 10, 14, 11, 12, true},
		{"partial front", 10, 12, 11, 13, true},
		{"partial back", 11, 13, 10, 12, true},
		{"touching end to start", 10, 12, 12, 14, false},
		{"touching start to end", 12, 14, 10, 12, false},
		{"disjoint", 8, 9, 15, 16, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(at(tc.aStart), at(tc.aEnd), at(tc.bStart), at(tc.bEnd))
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFreeSlotsEmptyDay(t *testing.T) {
	slots := FreeSlots(day(t), 8, 22, nil)

	assert.Len(t, slots, 14)
	assert.Equal(t, "08:00", slots[0])
	assert.Equal(t, "21:00", slots[len(slots)-1])
}

func TestFreeSlotsBlockedByBooking(t *testing.T) {
	bookings := []models.Booking{bookingAt(t, 18, 20)}

	slots := FreeSlots(day(t), 8, 22, bookings)

	assert.Len(t, slots, 12)
	assert.NotContains(t, slots, "18:00")
	assert.NotContains(t, slots, "19:00")
	assert.Contains(t, slots, "17:00")
	assert.Contains(t, slots, "20:00")
}

func TestFreeSlotsPartialHourBlocksSlot(t *testing.T) {
	base := day(t)
	bookings := []models.Booking{{
		StartTime: base.Add(10*time.Hour + 30*time.Minute),
		EndTime:   base.Add(11*time.Hour + 30*time.Minute),
	}}

	slots := FreeSlots(day(t), 8, 22, bookings)

	assert.NotContains(t, slots, "10:00")
	assert.NotContains(t, slots, "11:00")
	assert.Contains(t, slots, "09:00")
	assert.Contains(t, slots, "12:00")
}

func TestMaxDurationFrom(t *testing.T) {
	bookings := []models.Booking{bookingAt(t, 18, 20)}

	assert.Equal(t, 3, MaxDurationFrom(day(t), 15, 22, bookings))
	assert.Equal(t, 2, MaxDurationFrom(day(t), 20, 22, bookings))
	assert.Equal(t, 14, MaxDurationFrom(day(t), 8, 22, nil))
}

func TestMaxDurationFromBlockedStartIsStillOne(t *testing.T) {
	bookings := []models.Booking{bookingAt(t, 18, 20)}

	assert.Equal(t, 1, MaxDurationFrom(day(t), 18, 22, bookings))
}

func TestGetMaxDurationForSlotRejectsMalformedLabel(t *testing.T) {
	e := NewEngine(nil, nil, nil)
	for _, slot := range []string{"", "garbage", "18", "25:00", "10:xx", "10:75", "10:00:00"} {
		_, err := e.GetMaxDurationForSlot(context.Background(), 1, day(t), slot, nil)
		assert.ErrorIs(t, err, ErrInvalidInterval, "slot %q", slot)
	}
}

func TestOperatingWindowForVenueOverride(t *testing.T) {
	date := day(t) // a Tuesday

	venue := &models.Venue{OperatingHours: []models.OperatingHour{
		{Day: "Monday", StartTime: "06:00", EndTime: "12:00"},
		{Day: "tuesday", StartTime: "10:00", EndTime: "18:00"},
	}}
	openHour, closeHour := operatingWindowFor(venue, date)
	assert.Equal(t, 10, openHour)
	assert.Equal(t, 18, closeHour)

	openHour, closeHour = operatingWindowFor(&models.Venue{}, date)
	assert.Equal(t, 8, openHour)
	assert.Equal(t, 22, closeHour)

	malformed := &models.Venue{OperatingHours: []models.OperatingHour{
		{Day: "Tuesday", StartTime: "bogus", EndTime: "18:00"},
	}}
	openHour, closeHour = operatingWindowFor(malformed, date)
	assert.Equal(t, 8, openHour)
	assert.Equal(t, 22, closeHour)
}
