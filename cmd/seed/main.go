package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"venuebook/internal/cancellation"
	"venuebook/internal/shared/config"
	"venuebook/internal/shared/database"
	"venuebook/internal/shared/middleware"
	"venuebook/internal/slots"
	"venuebook/internal/venues"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Seeder struct {
	db  *database.DB
	cfg *config.Config
}

func main() {
	fmt.Println("🌱 Starting Venuebook Database Seeder...")

	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, cfg: cfg}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	venueIDs, err := seeder.SeedAll()
	if err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🔑 Development tokens (valid 24h):")
	if err := seeder.PrintTokens(venueIDs); err != nil {
		log.Fatalf("Failed to sign tokens: %v", err)
	}

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates every engine table
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"outbox_messages",
		"audit_entries",
		"modification_requests",
		"cancellations",
		"cancellation_policies",
		"waitlist_entries",
		"reservations",
		"slots",
		"venues",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds venues, their slots and policies. It returns venue ids by key.
func (s *Seeder) SeedAll() (map[string]uuid.UUID, error) {
	ctx := context.Background()

	venueIDs, err := s.SeedVenues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed venues: %w", err)
	}

	if err := s.SeedSlots(ctx, venueIDs); err != nil {
		return nil, fmt.Errorf("failed to seed slots: %w", err)
	}

	if err := s.SeedCancellationPolicies(ctx, venueIDs); err != nil {
		return nil, fmt.Errorf("failed to seed cancellation policies: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return venueIDs, nil
}

func (s *Seeder) SeedVenues(ctx context.Context) (map[string]uuid.UUID, error) {
	fmt.Println("  🏛️  Seeding venues...")

	repo := venues.NewRepository(s.db.PostgreSQL)
	venueIDs := make(map[string]uuid.UUID)

	venuesData := []struct {
		key              string
		name             string
		address          string
		email            string
		requiresApproval bool
	}{
		{"bistro", "Le Petit Bistro", "12 Rue des Martyrs, Paris", "bookings@petitbistro.example", false},
		{"rooftop", "Skyline Rooftop", "1 Harbour Way, Lisbon", "events@skyline.example", true},
		{"hall", "Community Hall", "5 Market Square, Ghent", "", false},
	}

	for _, data := range venuesData {
		venue := &venues.Venue{
			ID:               uuid.New(),
			Name:             data.name,
			Address:          data.address,
			ContactEmail:     data.email,
			RequiresApproval: data.requiresApproval,
		}
		if err := repo.Create(ctx, venue); err != nil {
			return nil, fmt.Errorf("failed to create venue %s: %w", data.name, err)
		}
		venueIDs[data.key] = venue.ID
		fmt.Printf("    ✅ Created venue: %s (approval: %v)\n", venue.Name, venue.RequiresApproval)
	}

	return venueIDs, nil
}

// SeedSlots creates a week of evening slots per venue. The hall has no cap.
func (s *Seeder) SeedSlots(ctx context.Context, venueIDs map[string]uuid.UUID) error {
	fmt.Println("  🕖 Seeding slots...")

	repo := slots.NewRepository(s.db.PostgreSQL)
	capacities := map[string]*int{
		"bistro":  intPtr(4),
		"rooftop": intPtr(40),
		"hall":    nil,
	}

	day := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	count := 0
	for key, venueID := range venueIDs {
		for d := 0; d < 7; d++ {
			for _, hour := range []int{19, 21} {
				start := day.AddDate(0, 0, d).Add(time.Duration(hour) * time.Hour)
				end := start.Add(2 * time.Hour)
				slot := &slots.Slot{
					ID:        uuid.New(),
					VenueID:   venueID,
					StartTime: start,
					EndTime:   &end,
					Capacity:  capacities[key],
					IsActive:  true,
				}
				if err := repo.Create(ctx, slot); err != nil {
					return fmt.Errorf("failed to create slot for %s: %w", key, err)
				}
				count++
			}
		}
	}

	fmt.Printf("    ✅ Created %d slots\n", count)
	return nil
}

func (s *Seeder) SeedCancellationPolicies(ctx context.Context, venueIDs map[string]uuid.UUID) error {
	fmt.Println("  📜 Seeding cancellation policies...")

	repo := cancellation.NewRepository(s.db.PostgreSQL)

	// the hall keeps the configured defaults
	policies := map[string]cancellation.Policy{
		"bistro": {
			CancellationEnabled:       true,
			FreeCancellationHours:     24,
			PenaltyPercent:            50,
			ModificationEnabled:       true,
			ModificationDeadlineHours: 12,
		},
		"rooftop": {
			CancellationEnabled:       true,
			FreeCancellationHours:     72,
			PenaltyPercent:            100,
			ModificationEnabled:       false,
			ModificationDeadlineHours: 0,
		},
	}

	for key, policy := range policies {
		policy.VenueID = venueIDs[key]
		if err := repo.UpsertPolicy(ctx, &policy); err != nil {
			return fmt.Errorf("failed to create policy for %s: %w", key, err)
		}
		fmt.Printf("    ✅ Policy for %s: %dh free, %d%% penalty\n", key, policy.FreeCancellationHours, policy.PenaltyPercent)
	}

	return nil
}

// PrintTokens signs access tokens for a guest, venue staff and an admin so the
// API can be exercised without the identity service
func (s *Seeder) PrintTokens(venueIDs map[string]uuid.UUID) error {
	bistro := venueIDs["bistro"]
	identities := []struct {
		label    string
		identity middleware.Identity
	}{
		{"guest", middleware.Identity{PartyID: uuid.New(), Email: "guest@example.com", Role: middleware.RoleUser}},
		{"guest2", middleware.Identity{PartyID: uuid.New(), Email: "guest2@example.com", Role: middleware.RoleUser}},
		{"bistro staff", middleware.Identity{PartyID: uuid.New(), Email: "staff@petitbistro.example", Role: middleware.RoleVenue, VenueID: &bistro}},
		{"admin", middleware.Identity{PartyID: uuid.New(), Email: "admin@example.com", Role: middleware.RoleAdmin}},
	}

	for _, item := range identities {
		token, err := signAccessToken(s.cfg.JWT.Secret, item.identity, 24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Printf("  %-13s %s\n", item.label+":", token)
	}
	return nil
}

func signAccessToken(secret string, identity middleware.Identity, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": identity.PartyID.String(),
		"email":   identity.Email,
		"role":    identity.Role,
		"type":    "access",
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	if identity.VenueID != nil {
		claims["venue_id"] = identity.VenueID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func intPtr(n int) *int {
	return &n
}
