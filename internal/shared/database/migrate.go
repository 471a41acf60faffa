package database

import (
	"venuebook/internal/audit"
	"venuebook/internal/cancellation"
	"venuebook/internal/outbox"
	"venuebook/internal/reservations"
	"venuebook/internal/slots"
	"venuebook/internal/venues"
	"venuebook/internal/waitlist"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&venues.Venue{},
		&slots.Slot{},
		&reservations.Reservation{},
		&waitlist.Entry{},
		&cancellation.Policy{},
		&cancellation.Cancellation{},
		&cancellation.ModificationRequest{},
		&audit.Entry{},
		&outbox.OutboxMessage{},
	)
	if err != nil {
		return err
	}
	return MigrateConstraints(db)
}
