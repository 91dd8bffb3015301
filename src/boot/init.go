package boot

import (
	"log"
	"time"

	"terena/src/booking"
	"terena/src/common"
	"terena/src/config"
	"terena/src/db"
	"terena/src/lib"
	"terena/src/models"
	"terena/src/notify"
	"terena/src/types"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Venue{},
		&models.OperatingHour{},
		&models.CancellationPolicy{},
		&models.Discount{},
		&models.Court{},
		&models.Booking{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitBroker provisions the event queues and starts the notification
// consumers appropriate for the current environment.
func InitBroker() {
	switch types.APIEnv(config.GetAPIEnv()) {
	case types.Local:
		go lib.KafkaCreateTopics(notify.Queues()...)
		go common.KafkaBookingEventsConsumer()
	case types.Test, types.Production:
		go common.SQSBookingEventsConsumers()
	default:
		log.Println("[boot] no broker configured, events are dropped")
	}
}

// InitScheduler starts the recurring reminder and expiry sweeps.
func InitScheduler(engine *booking.Engine, dispatcher booking.Dispatcher) {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	if id, err := lib.CreateCronJob(func() {
		common.SendDueReminders(dispatcher)
	}, 15*time.Minute); err != nil {
		log.Printf("Error scheduling reminder sweep: %s\n", err.Error())
	} else {
		log.Printf("Reminder sweep scheduled: %s\n", *id)
	}
	if id, err := lib.CreateCronJob(func() {
		common.ExpireStalePendings(engine)
	}, 5*time.Minute); err != nil {
		log.Printf("Error scheduling expiry sweep: %s\n", err.Error())
	} else {
		log.Printf("Expiry sweep scheduled: %s\n", *id)
	}
	sched.Start()
}

func StopScheduler() {
	lib.StopScheduler()
}
