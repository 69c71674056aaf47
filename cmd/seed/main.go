// Package main provides a tool to seed the database with demo reading data.
//
// This creates test users, a shared journey, and a handful of reading logs
// to exercise progress, streak, and leaderboard views during development.
//
// Usage:
//
//	DB_PATH=~/Khatma/data/db go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/khatmahq/khatma-server/internal/auth"
	"github.com/khatmahq/khatma-server/internal/domain"
	"github.com/khatmahq/khatma-server/internal/id"
	"github.com/khatmahq/khatma-server/internal/service"
	"github.com/khatmahq/khatma-server/internal/store"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/Khatma/data/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	journeys := service.NewJourneyService(s, logger)
	readings := service.NewReadingService(s, logger)

	users := seedUsers(ctx, s)

	journey, err := journeys.CreateJourney(ctx, users[0].ID, service.CreateJourneyRequest{
		Name:        "Family Khatma",
		Description: "Seeded demo journey",
	})
	if err != nil {
		log.Fatalf("Failed to create journey: %v", err)
	}
	fmt.Printf("Created journey %s (%s)\n", journey.Name, journey.ID)

	// Join the remaining users as regular members
	for _, u := range users[1:] {
		member := &domain.JourneyMember{
			JourneyID:   journey.ID,
			UserID:      u.ID,
			DisplayName: u.Name(),
			Role:        domain.RoleMember,
			JoinedAt:    journey.CreatedAt,
		}
		if err := s.AddMember(ctx, member); err != nil {
			log.Fatalf("Failed to add member %s: %v", u.Email, err)
		}
	}

	// A few readings spread across the opening surahs
	seedReadings := []struct {
		userIdx    int
		start, end string
		note       string
	}{
		{0, "1:1", "1:7", "Opening"},
		{1, "2:1", "2:50", ""},
		{2, "2:51", "2:141", ""},
		{0, "2:142", "2:200", "After fajr"},
		{1, "3:1", "3:91", ""},
	}

	for _, r := range seedReadings {
		result, err := readings.LogReading(ctx, journey.ID, users[r.userIdx].ID, service.LogReadingRequest{
			Start:  r.start,
			End:    r.end,
			ReadBy: []string{users[r.userIdx].ID},
			Note:   r.note,
		})
		if err != nil {
			log.Fatalf("Failed to log reading %s-%s: %v", r.start, r.end, err)
		}
		fmt.Printf("Logged %s: %d new verses\n", result.Log.Range.Display(), result.NewlyCompletedCount)
	}

	fmt.Println("Done.")
}

func seedUsers(ctx context.Context, s *store.Store) []*domain.User {
	seeds := []struct {
		email string
		name  string
	}{
		{"amina@example.com", "Amina"},
		{"bilal@example.com", "Bilal"},
		{"yusuf@example.com", "Yusuf"},
	}

	hash, err := auth.HashPassword("password123")
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	users := make([]*domain.User, 0, len(seeds))
	for _, seed := range seeds {
		if existing, err := s.GetUserByEmail(ctx, seed.email); err == nil {
			fmt.Printf("User %s already exists\n", seed.email)
			users = append(users, existing)
			continue
		}

		user := &domain.User{
			Email:        seed.email,
			PasswordHash: hash,
			DisplayName:  seed.name,
		}
		user.ID = id.MustGenerate("user")
		user.InitTimestamps()

		if err := s.CreateUser(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", seed.email, err)
		}
		fmt.Printf("Created user %s\n", seed.email)
		users = append(users, user)
	}
	return users
}
