package common

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"terena/src/booking"
	"terena/src/config"
	"terena/src/db"
	"terena/src/lib"
	"terena/src/models"
	"terena/src/notify"
	"terena/src/types"

	sesTypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

type recipient struct {
	Email string
	Name  string
}

func lookupRecipient(bookingId uint) (*recipient, *models.Booking, error) {
	var bk models.Booking
	var user models.User
	conn := db.GetDb()
	if err := conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Preload("Venue").
			Preload("Court").
			First(&bk, bookingId).
			Error; err != nil {
			return err
		}
		if err := tx.First(&user, bk.UserID).Error; err != nil {
			return err
		}
		return nil
	}); err != nil {
		return nil, nil, err
	}
	return &recipient{Email: user.Email, Name: user.Name}, &bk, nil
}

// mailTransport picks the outbound channel for the current environment.
// Deployed environments already talk to AWS for the broker and send through
// SES, everything else uses SMTP.
func mailTransport() string {
	switch types.APIEnv(config.GetAPIEnv()) {
	case types.Test, types.Production:
		return "ses"
	default:
		return "smtp"
	}
}

func sendBookingMail(subject, intro string, bk *models.Booking, to *recipient) {
	venueName := ""
	if bk.Venue != nil {
		venueName = bk.Venue.Name
	}
	courtName := "any court"
	if bk.Court != nil {
		courtName = bk.Court.Name
	}
	senderFrom := os.Getenv("SMTP_FROM")
	body := fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>%s</p>
			<p>Booking number: <b>%s</b></p>
			<p>Venue: %s (%s)</p>
			<p>Date: %s</p>
			<p>Time: %s - %s</p>
			<p>Total: %s</p>
			<p>This is a system-generated message. Do not reply to this email.</p>
			`,
		to.Name,
		intro,
		bk.BookingNumber,
		venueName,
		courtName,
		bk.BookingDate.Format(config.DATE_PARSE_FORMAT),
		bk.StartTime.Format("15:04"),
		bk.EndTime.Format("15:04"),
		bk.TotalPrice.StringFixed(2),
	)

	if mailTransport() == "ses" {
		lib.SESSendMessage(&senderFrom, &sesTypes.Destination{
			ToAddresses: []string{to.Email},
		}, &sesTypes.Message{
			Subject: &sesTypes.Content{Data: &subject},
			Body:    &sesTypes.Body{Html: &sesTypes.Content{Data: &body}},
		})
		return
	}

	input := &lib.SendMailInput{
		Subject:  subject,
		From:     senderFrom,
		FromName: "noreply",
		To:       []string{to.Email},
		Body:     body,
		Html:     true,
	}
	if err := lib.SendMail(input); err != nil {
		log.Printf("[MAILER] error sending email: %s\n", err.Error())
		return
	}
	log.Printf("[MAILER]: an email has been sent to %s\n", to.Email)
}

func handleBookingEvent(queue string, spayload string) {
	if !gjson.Valid(spayload) {
		log.Printf("[%s]: Received invalid json body. Aborting", queue)
		return
	}
	event := gjson.Get(spayload, "event").String()
	bookingId := uint(gjson.Get(spayload, "booking_id").Int())
	if bookingId == 0 {
		log.Printf("[%s]: missing booking_id in payload. Aborting", queue)
		return
	}
	var payload types.JSONB
	if err := json.Unmarshal([]byte(spayload), &payload); err != nil {
		log.Printf("[%s] Error deserializing JSON: %s\n", queue, err.Error())
		return
	}
	to, bk, err := lookupRecipient(bookingId)
	if err != nil {
		log.Printf("[%s] could not load booking [%d]: %s\n", queue, bookingId, err.Error())
		return
	}
	switch event {
	case booking.EventBookingConfirmed:
		go sendBookingMail(
			fmt.Sprintf("Booking Confirmed: %s", bk.BookingNumber),
			"Your booking has been confirmed. See you on the court!",
			bk, to,
		)
	case booking.EventBookingCancelled:
		reason := gjson.Get(spayload, "reason").String()
		intro := "Your booking has been cancelled."
		if reason != "" {
			intro = fmt.Sprintf("Your booking has been cancelled. Reason: %s", reason)
		}
		go sendBookingMail(
			fmt.Sprintf("Booking Cancelled: %s", bk.BookingNumber),
			intro,
			bk, to,
		)
	case booking.EventBookingExpired:
		go sendBookingMail(
			fmt.Sprintf("Booking Expired: %s", bk.BookingNumber),
			"Your booking was not paid in time and has expired.",
			bk, to,
		)
	case booking.EventBookingCompleted:
		go sendBookingMail(
			fmt.Sprintf("Thanks for playing: %s", bk.BookingNumber),
			"Your booking is complete. We hope you had a great game!",
			bk, to,
		)
	case booking.EventBookingReminder:
		go sendBookingMail(
			fmt.Sprintf("Upcoming Booking: %s", bk.BookingNumber),
			"This is a reminder that your booking starts soon.",
			bk, to,
		)
	default:
		log.Printf("[%s]: unknown event %q. Aborting", queue, event)
	}
}

// KafkaBookingEventsConsumer handles booking events in local environments
// where Kafka backs the dispatcher.
func KafkaBookingEventsConsumer() {
	queues := notify.Queues()
	lib.KafkaConsumeTopics("booking_notifications", func(topic string, value []byte) {
		handleBookingEvent(topic, string(value))
	}, queues...)
}

// SQSBookingEventsConsumers starts one long-poll consumer per queue.
func SQSBookingEventsConsumers() {
	for _, queue := range notify.Queues() {
		q := queue
		c := lib.NewSQSConsumer(q, func(payload string) {
			handleBookingEvent(q, payload)
		})
		c.Listen()
	}
}
