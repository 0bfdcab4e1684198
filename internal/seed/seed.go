// internal/seed/seed.go
package seed

import (
	"context"
	"log"
	"time"

	"github.com/candidly/candidly-backend/internal/repository"
	"github.com/candidly/candidly-backend/internal/schedule"
	"github.com/candidly/candidly-backend/internal/types"
	"golang.org/x/crypto/bcrypt"
)

// SeedData populates a development database with a realistic scheduling
// scenario: an organizer, a registered invitee, a guest, and a poll with
// partial responses.
func SeedData(repos *repository.Repositories) {
	ctx := context.Background()

	if existing, _ := repos.UserRepo.FindByEmail(ctx, "ana.costa@candidly.app"); existing != nil {
		log.Println("[Seed] Data already exists, skipping...")
		return
	}

	log.Println("[Seed] Creating development data...")

	password, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	// Organizer in Lisbon
	ana := &repository.User{
		Email:     "ana.costa@candidly.app",
		Password:  string(password),
		FirstName: "Ana",
		LastName:  "Costa",
		Timezone:  "Europe/Lisbon",
	}
	repos.UserRepo.Create(ctx, ana)

	// Registered invitee in New York
	marcus := &repository.User{
		Email:     "marcus.reed@candidly.app",
		Password:  string(password),
		FirstName: "Marcus",
		LastName:  "Reed",
		Timezone:  "America/New_York",
	}
	repos.UserRepo.Create(ctx, marcus)

	log.Println("[Seed] Created 2 users: Ana (organizer), Marcus (invitee)")

	// A week-long poll starting next Monday
	now := time.Now().UTC()
	rangeStart := now.AddDate(0, 0, int((8-int(now.Weekday()))%7)+1).Truncate(24 * time.Hour)
	rangeEnd := rangeStart.AddDate(0, 0, 4)

	description := "Quarterly roadmap review with the whole team"
	meeting := &repository.Meeting{
		Title:           "Q4 Roadmap Review",
		Description:     &description,
		DurationMinutes: 60,
		MeetingType:     types.MeetingPoll,
		DateRangeStart:  &rangeStart,
		DateRangeEnd:    &rangeEnd,
		OrganizerID:     ana.ID,
	}

	var slots []repository.TimeSlot
	for _, slot := range schedule.DailySlots(rangeStart, rangeEnd, meeting.DurationMinutes) {
		slots = append(slots, repository.TimeSlot{StartTime: slot.Start, EndTime: slot.End})
	}

	guestName := "Priya Sharma"
	guestEmail := "priya@example.com"
	participants := []*repository.Participant{
		{UserID: &ana.ID, Timezone: ana.Timezone, Status: types.ParticipantResponded},
		{UserID: &marcus.ID, Timezone: marcus.Timezone, Status: types.ParticipantPending},
		{GuestName: &guestName, GuestEmail: &guestEmail, IsGuest: true, Timezone: "Asia/Kolkata", Status: types.ParticipantPending},
	}

	if err := repos.MeetingRepo.CreateWithSlots(ctx, meeting, slots, participants); err != nil {
		log.Printf("[Seed] Failed to create meeting: %v", err)
		return
	}

	// Ana marks the first three days as available
	var rows []repository.Availability
	for i := 0; i < 3; i++ {
		day := rangeStart.AddDate(0, 0, i)
		rows = append(rows, repository.Availability{
			ParticipantID: participants[0].ID,
			StartTime:     day.Add(9 * time.Hour),
			EndTime:       day.Add(17 * time.Hour),
			IsAvailable:   true,
		})
	}
	if err := repos.AvailabilityRepo.ReplaceForParticipant(ctx, participants[0].ID, ana.Timezone, rows, now); err != nil {
		log.Printf("[Seed] Failed to seed availability: %v", err)
	}

	log.Printf("[Seed] Created poll %q (share token %s)", meeting.Title, meeting.ShareToken)
}
