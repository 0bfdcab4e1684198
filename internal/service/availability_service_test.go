package service

import (
	"context"
	"testing"
	"time"

	"github.com/candidly/candidly-backend/internal/types"
)

func TestSubmitViaAccessToken(t *testing.T) {
	svcs, repos := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")
	detail := createPoll(t, svcs, organizer.ID)
	ctx := context.Background()

	guest, err := svcs.Participant.JoinAsGuest(ctx, detail.Meeting.ShareToken, "Priya", "priya@test.com", "Asia/Kolkata")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if guest.Status != types.ParticipantPending {
		t.Fatalf("guest status = %s, want PENDING", guest.Status)
	}

	// 9:00 IST is 3:30 UTC
	local := time.Date(2026, 10, 5, 9, 0, 0, 0, time.UTC)
	p, err := svcs.Availability.Submit(ctx, SubmitInput{
		AccessToken: guest.AccessToken,
		Timezone:    "Asia/Kolkata",
		Intervals: []IntervalInput{
			{StartTime: local, EndTime: local.Add(2 * time.Hour), IsAvailable: true},
		},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if p.Status != types.ParticipantResponded {
		t.Errorf("status = %s, want RESPONDED", p.Status)
	}
	if p.RespondedAt == nil {
		t.Error("respondedAt not set")
	}

	rows, err := repos.AvailabilityRepo.FindByParticipant(ctx, guest.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	wantStart := time.Date(2026, 10, 5, 3, 30, 0, 0, time.UTC)
	if !rows[0].StartTime.Equal(wantStart) {
		t.Errorf("stored start = %v, want %v", rows[0].StartTime, wantStart)
	}
}

func TestSubmitReplacesNotMerges(t *testing.T) {
	svcs, repos := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")
	detail := createPoll(t, svcs, organizer.ID)
	ctx := context.Background()

	guest, err := svcs.Participant.JoinAsGuest(ctx, detail.Meeting.ShareToken, "Guest", "guest@test.com", "UTC")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	day := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	submit := func(intervals []IntervalInput) {
		t.Helper()
		if _, err := svcs.Availability.Submit(ctx, SubmitInput{
			AccessToken: guest.AccessToken,
			Timezone:    "UTC",
			Intervals:   intervals,
		}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	submit([]IntervalInput{
		{StartTime: day.Add(9 * time.Hour), EndTime: day.Add(12 * time.Hour), IsAvailable: true},
		{StartTime: day.Add(14 * time.Hour), EndTime: day.Add(17 * time.Hour), IsAvailable: true},
	})
	submit([]IntervalInput{
		{StartTime: day.Add(10 * time.Hour), EndTime: day.Add(11 * time.Hour), IsAvailable: true},
	})

	rows, err := repos.AvailabilityRepo.FindByParticipant(ctx, guest.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected only the second submission to survive, got %d rows", len(rows))
	}
	if !rows[0].StartTime.Equal(day.Add(10 * time.Hour)) {
		t.Errorf("surviving row start = %v, want %v", rows[0].StartTime, day.Add(10*time.Hour))
	}
}

func TestSubmitValidation(t *testing.T) {
	svcs, _ := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")
	detail := createPoll(t, svcs, organizer.ID)
	ctx := context.Background()

	guest, err := svcs.Participant.JoinAsGuest(ctx, detail.Meeting.ShareToken, "Guest", "guest@test.com", "UTC")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	day := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)

	if _, err := svcs.Availability.Submit(ctx, SubmitInput{
		AccessToken: guest.AccessToken,
		Timezone:    "Not/AZone",
		Intervals:   []IntervalInput{{StartTime: day, EndTime: day.Add(time.Hour), IsAvailable: true}},
	}); err != ErrValidation {
		t.Errorf("bad timezone err = %v, want ErrValidation", err)
	}

	if _, err := svcs.Availability.Submit(ctx, SubmitInput{
		AccessToken: guest.AccessToken,
		Timezone:    "UTC",
		Intervals:   []IntervalInput{{StartTime: day.Add(time.Hour), EndTime: day, IsAvailable: true}},
	}); err != ErrValidation {
		t.Errorf("inverted interval err = %v, want ErrValidation", err)
	}

	if _, err := svcs.Availability.Submit(ctx, SubmitInput{
		AccessToken: guest.AccessToken,
		Timezone:    "UTC",
		Intervals:   []IntervalInput{{StartTime: day, EndTime: day, IsAvailable: true}},
	}); err != ErrValidation {
		t.Errorf("zero-length interval err = %v, want ErrValidation", err)
	}
}

func TestSubmitParticipantResolution(t *testing.T) {
	svcs, _ := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")
	other := registerUser(t, svcs, "other@test.com")
	detail := createPoll(t, svcs, organizer.ID)
	ctx := context.Background()

	organizerParticipant := detail.Participants[0]
	day := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	intervals := []IntervalInput{{StartTime: day, EndTime: day.Add(time.Hour), IsAvailable: true}}

	// Unknown access token
	if _, err := svcs.Availability.Submit(ctx, SubmitInput{
		AccessToken: "not-a-real-token",
		Intervals:   intervals,
	}); err != ErrParticipantNotFound {
		t.Errorf("unknown token err = %v, want ErrParticipantNotFound", err)
	}

	// Participant ID belonging to someone else
	if _, err := svcs.Availability.Submit(ctx, SubmitInput{
		ParticipantID: organizerParticipant.ID,
		UserID:        other.ID,
		Intervals:     intervals,
	}); err != ErrParticipantNotFound {
		t.Errorf("foreign participant err = %v, want ErrParticipantNotFound", err)
	}

	// Participant ID without an authenticated user
	if _, err := svcs.Availability.Submit(ctx, SubmitInput{
		ParticipantID: organizerParticipant.ID,
		Intervals:     intervals,
	}); err != ErrParticipantNotFound {
		t.Errorf("anonymous participant-id err = %v, want ErrParticipantNotFound", err)
	}

	// The owner succeeds
	if _, err := svcs.Availability.Submit(ctx, SubmitInput{
		ParticipantID: organizerParticipant.ID,
		UserID:        organizer.ID,
		Intervals:     intervals,
	}); err != nil {
		t.Errorf("owner submit err = %v", err)
	}
}

func TestSubmitRejectedWhenMeetingNotPending(t *testing.T) {
	svcs, _ := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")
	detail := createPoll(t, svcs, organizer.ID)
	ctx := context.Background()

	guest, err := svcs.Participant.JoinAsGuest(ctx, detail.Meeting.ShareToken, "Guest", "guest@test.com", "UTC")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	when := detail.Slots[0].StartTime
	if _, err := svcs.Meeting.Confirm(ctx, organizer.ID, detail.Meeting.ID, &when); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := svcs.Availability.Submit(ctx, SubmitInput{
		AccessToken: guest.AccessToken,
		Timezone:    "UTC",
		Intervals:   []IntervalInput{{StartTime: when, EndTime: when.Add(time.Hour), IsAvailable: true}},
	}); err != ErrInvalidStateTransition {
		t.Errorf("err = %v, want ErrInvalidStateTransition", err)
	}
}

func TestJoinAsGuestDuplicateEmailReturnsExistingToken(t *testing.T) {
	svcs, _ := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")
	detail := createPoll(t, svcs, organizer.ID)
	ctx := context.Background()

	first, err := svcs.Participant.JoinAsGuest(ctx, detail.Meeting.ShareToken, "Guest", "guest@test.com", "UTC")
	if err != nil {
		t.Fatalf("first join: %v", err)
	}
	second, err := svcs.Participant.JoinAsGuest(ctx, detail.Meeting.ShareToken, "Guest Again", "GUEST@test.com", "UTC")
	if err != ErrAlreadyJoined {
		t.Fatalf("second join err = %v, want ErrAlreadyJoined", err)
	}
	if second == nil {
		t.Fatal("rejoin did not return the existing participant")
	}
	if second.ID != first.ID {
		t.Error("rejoin created a new participant")
	}
	if second.AccessToken != first.AccessToken {
		t.Error("rejoin returned a different access token")
	}
}

func TestJoinAsGuestValidation(t *testing.T) {
	svcs, _ := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")
	detail := createPoll(t, svcs, organizer.ID)
	ctx := context.Background()

	if _, err := svcs.Participant.JoinAsGuest(ctx, detail.Meeting.ShareToken, "", "guest@test.com", "UTC"); err != ErrValidation {
		t.Errorf("empty name err = %v, want ErrValidation", err)
	}
	if _, err := svcs.Participant.JoinAsGuest(ctx, "no-such-token", "Guest", "guest@test.com", "UTC"); err != ErrNotFound {
		t.Errorf("unknown share token err = %v, want ErrNotFound", err)
	}

	if _, err := svcs.Meeting.Cancel(ctx, organizer.ID, detail.Meeting.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svcs.Participant.JoinAsGuest(ctx, detail.Meeting.ShareToken, "Guest", "guest@test.com", "UTC"); err != ErrInvalidStateTransition {
		t.Errorf("join on cancelled meeting err = %v, want ErrInvalidStateTransition", err)
	}
}
