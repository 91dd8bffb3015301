package notify

import (
	"encoding/json"
	"log"

	"terena/src/booking"
	"terena/src/config"
	"terena/src/lib"
	"terena/src/types"

	"github.com/google/uuid"
)

// QueueFor maps an event type to the queue or topic its consumers read from.
func QueueFor(eventType string) string {
	switch eventType {
	case booking.EventBookingConfirmed:
		return "booking_confirmations"
	case booking.EventBookingCancelled, booking.EventBookingExpired:
		return "booking_cancellations"
	case booking.EventBookingCompleted:
		return "booking_completions"
	case booking.EventBookingReminder:
		return "booking_reminders"
	default:
		return "booking_events"
	}
}

// Queues lists every queue the dispatchers publish to.
func Queues() []string {
	return []string{
		"booking_confirmations",
		"booking_cancellations",
		"booking_completions",
		"booking_reminders",
	}
}

type KafkaDispatcher struct{}

func (KafkaDispatcher) Publish(eventType string, payload types.JSONB) {
	topic := QueueFor(eventType)
	payload["event"] = eventType
	payload["message_id"] = uuid.NewString()
	if err := lib.KafkaProduceMessage("notify", topic, payload); err != nil {
		log.Printf("[notify] Error publishing %s to %s: %s\n", eventType, topic, err.Error())
	}
}

type SQSDispatcher struct{}

func (SQSDispatcher) Publish(eventType string, payload types.JSONB) {
	queue := QueueFor(eventType)
	payload["event"] = eventType
	payload["message_id"] = uuid.NewString()
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[notify] Error serializing %s payload: %s\n", eventType, err.Error())
		return
	}
	if err := lib.SQSProduceMessage(queue, string(body)); err != nil {
		log.Printf("[notify] Error publishing %s to %s: %s\n", eventType, queue, err.Error())
	}
}

type NoopDispatcher struct{}

func (NoopDispatcher) Publish(eventType string, payload types.JSONB) {
	log.Printf("[notify] drop %s: %v\n", eventType, payload)
}

// NewDispatcher picks a backend for the current environment. Local
// development talks to Kafka, deployed environments use SQS, and an
// unset environment swallows events so tests stay hermetic.
func NewDispatcher() booking.Dispatcher {
	switch types.APIEnv(config.GetAPIEnv()) {
	case types.Local:
		return KafkaDispatcher{}
	case types.Test, types.Production:
		return SQSDispatcher{}
	default:
		return NoopDispatcher{}
	}
}
