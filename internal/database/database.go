package database

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"studiobooking/internal/domain"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	log.Println("Using SQLite for local development:", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate creates the schema plus the partial unique index that prevents two
// live bookings on the same date and slot. Both Postgres and SQLite accept
// the partial index syntax.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.TimeSlot{},
		&domain.Extra{},
		&domain.Coupon{},
		&domain.OpeningHours{},
		&domain.CancellationRule{},
		&domain.Booking{},
	); err != nil {
		return err
	}

	return db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_no_double_booking
ON bookings (booking_date, time_slot_id)
WHERE status NOT IN ('cancelled', 'no_show')
`).Error
}
