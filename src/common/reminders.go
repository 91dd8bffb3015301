package common

import (
	"context"
	"log"
	"time"

	"terena/src/booking"
	"terena/src/db"
	"terena/src/models"
	"terena/src/types"

	"gorm.io/gorm"
)

// ReminderLeadTime is how far ahead of the start time a reminder goes out.
const ReminderLeadTime = 24 * time.Hour

// SendDueReminders finds confirmed bookings starting within the lead time
// that have not been reminded yet, dispatches a reminder event for each and
// marks them so the next sweep skips them.
func SendDueReminders(dispatcher booking.Dispatcher) {
	now := time.Now().UTC()
	var due []models.Booking
	conn := db.GetDb()
	if err := conn.
		Where("status = ?", types.BOOKING_CONFIRMED).
		Where("is_deleted = ?", false).
		Where("reminder_sent_at IS NULL").
		Where("start_time > ? AND start_time <= ?", now, now.Add(ReminderLeadTime)).
		Find(&due).
		Error; err != nil {
		log.Printf("[reminders] Error querying due bookings: %s\n", err.Error())
		return
	}
	for _, bk := range due {
		payload := types.JSONB{
			"booking_id":     bk.ID,
			"booking_number": bk.BookingNumber,
			"user_id":        bk.UserID,
			"venue_id":       bk.VenueID,
			"start_time":     bk.StartTime.Format(time.RFC3339),
		}
		if dispatcher != nil {
			go dispatcher.Publish(booking.EventBookingReminder, payload)
		}
		sentAt := time.Now().UTC()
		if err := conn.Transaction(func(tx *gorm.DB) error {
			return tx.
				Model(&models.Booking{}).
				Where("id = ?", bk.ID).
				Update("reminder_sent_at", sentAt).
				Error
		}); err != nil {
			log.Printf("[reminders] Error marking booking [%d]: %s\n", bk.ID, err.Error())
		}
	}
	if len(due) > 0 {
		log.Printf("[reminders] dispatched %d reminders\n", len(due))
	}
}

// ExpireStalePendings expires pending bookings whose start time has passed
// without payment. Expiry goes through the engine so state guards and
// events stay in one place.
func ExpireStalePendings(engine *booking.Engine) {
	now := time.Now().UTC()
	var ids []uint
	conn := db.GetDb()
	if err := conn.
		Model(&models.Booking{}).
		Where("status = ?", types.BOOKING_PENDING).
		Where("is_deleted = ?", false).
		Where("start_time <= ?", now).
		Pluck("id", &ids).
		Error; err != nil {
		log.Printf("[expiry] Error querying stale bookings: %s\n", err.Error())
		return
	}
	ctx := context.Background()
	for _, id := range ids {
		if _, err := engine.Expire(ctx, id); err != nil {
			log.Printf("[expiry] Error expiring booking [%d]: %s\n", id, err.Error())
		}
	}
	if len(ids) > 0 {
		log.Printf("[expiry] expired %d stale bookings\n", len(ids))
	}
}
