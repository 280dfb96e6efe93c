// Seed fills an empty database with a usable studio setup: the admin user,
// the default cancellation policy, the daily time slots, a few extras and the
// weekly opening hours. Safe to re-run; existing rows are left alone.
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"studiobooking/internal/cancelfee"
	"studiobooking/internal/config"
	"studiobooking/internal/database"
	"studiobooking/internal/domain"
	"studiobooking/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()

	seedAdmin(ctx, db)
	seedPolicy(ctx, db)
	seedTimeSlots(ctx, db)
	seedExtras(ctx, db)
	seedOpeningHours(ctx, db)

	log.Println("seed done")
}

func seedAdmin(ctx context.Context, db *gorm.DB) {
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD not set, skipping admin user")
		return
	}

	users := repository.NewUserRepository(db)
	if _, err := users.GetByEmail(ctx, email); err == nil {
		log.Printf("admin %s already exists", email)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatalf("admin lookup: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash admin password: %v", err)
	}
	if err := users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Stúdió admin",
		Role:         domain.RoleAdmin,
	}); err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Printf("admin %s created", email)
}

func seedPolicy(ctx context.Context, db *gorm.DB) {
	policies := repository.NewPolicyRepository(db)
	rules, err := policies.GetRules(ctx)
	if err != nil {
		log.Fatalf("load policy: %v", err)
	}
	if len(rules) > 0 {
		return
	}
	if err := policies.ReplaceRules(ctx, cancelfee.DefaultPolicy()); err != nil {
		log.Fatalf("seed policy: %v", err)
	}
	log.Println("default cancellation policy seeded")
}

func seedTimeSlots(ctx context.Context, db *gorm.DB) {
	catalog := repository.NewCatalogRepository(db)
	existing, err := catalog.ListTimeSlots(ctx, false)
	if err != nil {
		log.Fatalf("list time slots: %v", err)
	}
	if len(existing) > 0 {
		return
	}

	slots := []domain.TimeSlot{
		{Name: "Reggeli fotózás", StartTime: "08:00", EndTime: "10:00", Price: 70000, Active: true},
		{Name: "Délelőtti fotózás", StartTime: "10:00", EndTime: "12:00", Price: 90000, Active: true},
		{Name: "Délutáni fotózás", StartTime: "14:00", EndTime: "16:00", Price: 90000, Active: true},
		{Name: "Esti fotózás", StartTime: "17:00", EndTime: "19:00", Price: 110000, Active: true},
	}
	for i := range slots {
		if err := catalog.SaveTimeSlot(ctx, &slots[i]); err != nil {
			log.Fatalf("seed time slot %q: %v", slots[i].Name, err)
		}
	}
	log.Printf("%d time slots seeded", len(slots))
}

func seedExtras(ctx context.Context, db *gorm.DB) {
	catalog := repository.NewCatalogRepository(db)
	existing, err := catalog.ListExtras(ctx, false)
	if err != nil {
		log.Fatalf("list extras: %v", err)
	}
	if len(existing) > 0 {
		return
	}

	extras := []domain.Extra{
		{Name: "Plusz ruhaváltás", Price: 5000, Active: true},
		{Name: "Sminkes", Price: 15000, Active: true},
		{Name: "10 retusált kép", Price: 12000, Active: true},
	}
	for i := range extras {
		if err := catalog.SaveExtra(ctx, &extras[i]); err != nil {
			log.Fatalf("seed extra %q: %v", extras[i].Name, err)
		}
	}
	log.Printf("%d extras seeded", len(extras))
}

func seedOpeningHours(ctx context.Context, db *gorm.DB) {
	catalog := repository.NewCatalogRepository(db)
	existing, err := catalog.ListOpeningHours(ctx)
	if err != nil {
		log.Fatalf("list opening hours: %v", err)
	}
	if len(existing) > 0 {
		return
	}

	for day := 0; day <= 6; day++ {
		h := &domain.OpeningHours{DayOfWeek: day, OpenTime: "08:00", CloseTime: "19:00"}
		// Closed on Sundays.
		if day == 0 {
			h.Closed = true
			h.OpenTime = ""
			h.CloseTime = ""
		}
		if err := catalog.UpsertOpeningHours(ctx, h); err != nil {
			log.Fatalf("seed opening hours day %d: %v", day, err)
		}
	}
	log.Println("opening hours seeded")
}
