package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the constraints AutoMigrate cannot express
func MigrateConstraints(db *gorm.DB) error {
	statements := []string{
		// a party holds at most one live queue entry per slot
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_waitlist_live_party_slot
			ON waitlist_entries (party_id, slot_id)
			WHERE status IN ('waiting', 'offer_sent')`,

		`CREATE INDEX IF NOT EXISTS idx_reservations_party_active
			ON reservations (party_id, start_time)
			WHERE status IN ('confirmed', 'pending_pro_validation', 'requested', 'waitlist')`,

		`CREATE INDEX IF NOT EXISTS idx_waitlist_due_offers
			ON waitlist_entries (offer_expires_at)
			WHERE status = 'offer_sent'`,
	}

	checks := []struct {
		table, name, expr string
	}{
		{"reservations", "chk_reservations_party_size", "party_size >= 1"},
		{"reservations", "chk_reservations_amounts", "deposit_amount >= 0 AND total_amount >= 0"},
		{"waitlist_entries", "chk_waitlist_party_size", "party_size >= 1"},
		{"slots", "chk_slots_capacity", "capacity IS NULL OR capacity >= 0"},
		{"cancellation_policies", "chk_policy_penalty", "penalty_percent BETWEEN 0 AND 100"},
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	// Postgres has no ADD CONSTRAINT IF NOT EXISTS
	for _, c := range checks {
		if db.Migrator().HasConstraint(c.table, c.name) {
			continue
		}
		err := db.Exec("ALTER TABLE " + c.table + " ADD CONSTRAINT " + c.name + " CHECK (" + c.expr + ")").Error
		if err != nil {
			return err
		}
	}

	return nil
}
