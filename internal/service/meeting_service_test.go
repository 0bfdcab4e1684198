package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/candidly/candidly-backend/internal/config"
	"github.com/candidly/candidly-backend/internal/repository"
	"github.com/candidly/candidly-backend/internal/socket"
	"github.com/candidly/candidly-backend/internal/types"
)

func newTestServices(t *testing.T) (*Services, *repository.Repositories) {
	t.Helper()

	users := newFakeUserRepo()
	participants := newFakeParticipantRepo(users)
	meetings := newFakeMeetingRepo(participants)
	availability := newFakeAvailabilityRepo(participants)

	repos := &repository.Repositories{
		UserRepo:         users,
		MeetingRepo:      meetings,
		ParticipantRepo:  participants,
		AvailabilityRepo: availability,
	}

	hub := socket.NewHub()
	go hub.Run()

	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpiry:          24,
		RefreshExpiry:      7,
		DefaultTimezone:    "UTC",
		DisplaySlotMinutes: 30,
		FrontendURL:        "http://localhost:3000",
	}

	svcs := NewServices(&ServiceDeps{
		Config:      cfg,
		Repos:       repos,
		Broadcaster: socket.NewBroadcaster(hub),
	})
	return svcs, repos
}

func registerUser(t *testing.T, svcs *Services, email string) *repository.User {
	t.Helper()
	user, _, _, err := svcs.Auth.Register(context.Background(), "Test", "User", email, "password123", "America/New_York")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return user
}

func createPoll(t *testing.T, svcs *Services, organizerID string) *MeetingDetail {
	t.Helper()
	start := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 8, 0, 0, 0, 0, time.UTC)
	detail, err := svcs.Meeting.Create(context.Background(), organizerID, CreateMeetingInput{
		Title:           "Team Sync",
		DurationMinutes: 60,
		MeetingType:     types.MeetingPoll,
		Timezone:        "UTC",
		DateRangeStart:  &start,
		DateRangeEnd:    &end,
	})
	if err != nil {
		t.Fatalf("create poll: %v", err)
	}
	return detail
}

func TestCreatePollGeneratesDailySlots(t *testing.T) {
	svcs, _ := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")

	detail := createPoll(t, svcs, organizer.ID)

	// Oct 5 through Oct 8 inclusive: four daily slots
	start := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	if len(detail.Slots) != 4 {
		t.Fatalf("expected 4 slots, got %d", len(detail.Slots))
	}
	for i, slot := range detail.Slots {
		want := start.AddDate(0, 0, i)
		if !slot.StartTime.Equal(want) {
			t.Errorf("slot %d start = %v, want %v", i, slot.StartTime, want)
		}
		if slot.EndTime.Sub(slot.StartTime) != time.Hour {
			t.Errorf("slot %d span = %v, want 1h", i, slot.EndTime.Sub(slot.StartTime))
		}
	}
	if detail.Meeting.Status != types.MeetingPending {
		t.Errorf("new meeting status = %s, want PENDING", detail.Meeting.Status)
	}
	if detail.Meeting.ShareToken == "" {
		t.Error("share token not assigned")
	}
}

func TestCreateFixedMeetingCarriesNoSlots(t *testing.T) {
	svcs, repos := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")

	proposed := time.Date(2026, 10, 5, 14, 0, 0, 0, time.UTC)
	detail, err := svcs.Meeting.Create(context.Background(), organizer.ID, CreateMeetingInput{
		Title:           "Kickoff",
		DurationMinutes: 60,
		MeetingType:     types.MeetingFixed,
		Timezone:        "UTC",
		ProposedTime:    &proposed,
	})
	if err != nil {
		t.Fatalf("create fixed: %v", err)
	}

	// Only polls carry a slot set; a fixed meeting's instant lives in
	// proposed_time alone.
	if len(detail.Slots) != 0 {
		t.Fatalf("fixed meeting persisted %d slots, want none", len(detail.Slots))
	}
	if detail.Meeting.ProposedTime == nil || !detail.Meeting.ProposedTime.Equal(proposed) {
		t.Errorf("proposedTime = %v, want %v", detail.Meeting.ProposedTime, proposed)
	}

	stored, err := repos.MeetingRepo.FindSlots(context.Background(), detail.Meeting.ID)
	if err != nil {
		t.Fatalf("find slots: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("store holds %d slots for a fixed meeting, want none", len(stored))
	}
}

func TestCreateAddsOrganizerAsParticipant(t *testing.T) {
	svcs, _ := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")

	detail := createPoll(t, svcs, organizer.ID)

	if len(detail.Participants) != 1 {
		t.Fatalf("expected 1 participant, got %d", len(detail.Participants))
	}
	p := detail.Participants[0]
	if p.UserID == nil || *p.UserID != organizer.ID {
		t.Error("organizer not linked as participant")
	}
	if p.Status != types.ParticipantResponded {
		t.Errorf("organizer status = %s, want RESPONDED", p.Status)
	}
}

func TestCreateSkipsDuplicateInvitees(t *testing.T) {
	svcs, _ := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")

	start := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 6, 0, 0, 0, 0, time.UTC)
	detail, err := svcs.Meeting.Create(context.Background(), organizer.ID, CreateMeetingInput{
		Title:           "Duped invitees",
		DurationMinutes: 30,
		MeetingType:     types.MeetingPoll,
		DateRangeStart:  &start,
		DateRangeEnd:    &end,
		Invitees: []Invitee{
			{Name: "Guest", Email: "guest@test.com"},
			{Name: "Guest Again", Email: "guest@test.com"},
			{Email: "organizer@test.com"}, // already in, as organizer
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(detail.Participants) != 2 {
		t.Fatalf("expected organizer + 1 guest, got %d participants", len(detail.Participants))
	}
}

func TestCreateValidation(t *testing.T) {
	svcs, _ := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")
	ctx := context.Background()
	start := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 8, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		input CreateMeetingInput
	}{
		{"empty title", CreateMeetingInput{DurationMinutes: 30, MeetingType: types.MeetingPoll, DateRangeStart: &start, DateRangeEnd: &end}},
		{"bad type", CreateMeetingInput{Title: "x", DurationMinutes: 30, MeetingType: "RECURRING", DateRangeStart: &start, DateRangeEnd: &end}},
		{"duration too short", CreateMeetingInput{Title: "x", DurationMinutes: 1, MeetingType: types.MeetingPoll, DateRangeStart: &start, DateRangeEnd: &end}},
		{"duration too long", CreateMeetingInput{Title: "x", DurationMinutes: 481, MeetingType: types.MeetingPoll, DateRangeStart: &start, DateRangeEnd: &end}},
		{"poll without range", CreateMeetingInput{Title: "x", DurationMinutes: 30, MeetingType: types.MeetingPoll}},
		{"fixed without time", CreateMeetingInput{Title: "x", DurationMinutes: 30, MeetingType: types.MeetingFixed}},
		{"inverted range", CreateMeetingInput{Title: "x", DurationMinutes: 30, MeetingType: types.MeetingPoll, DateRangeStart: &end, DateRangeEnd: &start}},
		{"bad timezone", CreateMeetingInput{Title: "x", DurationMinutes: 30, MeetingType: types.MeetingPoll, Timezone: "Mars/Olympus", DateRangeStart: &start, DateRangeEnd: &end}},
	}
	for _, tc := range cases {
		if _, err := svcs.Meeting.Create(ctx, organizer.ID, tc.input); err != ErrValidation {
			t.Errorf("%s: err = %v, want ErrValidation", tc.name, err)
		}
	}
}

func TestConfirmWorkflow(t *testing.T) {
	svcs, _ := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")
	detail := createPoll(t, svcs, organizer.ID)
	ctx := context.Background()

	when := detail.Slots[1].StartTime

	meeting, err := svcs.Meeting.Confirm(ctx, organizer.ID, detail.Meeting.ID, &when)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if meeting.Status != types.MeetingConfirmed {
		t.Errorf("status = %s, want CONFIRMED", meeting.Status)
	}
	if meeting.ConfirmedTime == nil || !meeting.ConfirmedTime.Equal(when) {
		t.Errorf("confirmedTime = %v, want %v", meeting.ConfirmedTime, when)
	}

	// Confirming twice is rejected by the status guard
	if _, err := svcs.Meeting.Confirm(ctx, organizer.ID, detail.Meeting.ID, &when); err != ErrInvalidStateTransition {
		t.Errorf("second confirm err = %v, want ErrInvalidStateTransition", err)
	}

	// So is cancelling a confirmed meeting
	if _, err := svcs.Meeting.Cancel(ctx, organizer.ID, detail.Meeting.ID); err != ErrInvalidStateTransition {
		t.Errorf("cancel after confirm err = %v, want ErrInvalidStateTransition", err)
	}
}

func TestConfirmRejectsNonOrganizer(t *testing.T) {
	svcs, _ := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")
	other := registerUser(t, svcs, "other@test.com")
	detail := createPoll(t, svcs, organizer.ID)

	when := detail.Slots[0].StartTime
	if _, err := svcs.Meeting.Confirm(context.Background(), other.ID, detail.Meeting.ID, &when); err != ErrForbidden {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestConfirmAllowsAnyInstant(t *testing.T) {
	svcs, _ := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")
	detail := createPoll(t, svcs, organizer.ID)

	// The organizer may override the poll entirely; the chosen time is not
	// required to fall inside a candidate slot.
	when := detail.Slots[0].StartTime.AddDate(0, 1, 0)
	meeting, err := svcs.Meeting.Confirm(context.Background(), organizer.ID, detail.Meeting.ID, &when)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if meeting.ConfirmedTime == nil || !meeting.ConfirmedTime.Equal(when) {
		t.Errorf("confirmedTime = %v, want %v", meeting.ConfirmedTime, when)
	}
}

func TestCancelWorkflow(t *testing.T) {
	svcs, _ := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")
	detail := createPoll(t, svcs, organizer.ID)
	ctx := context.Background()

	meeting, err := svcs.Meeting.Cancel(ctx, organizer.ID, detail.Meeting.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if meeting.Status != types.MeetingCancelled {
		t.Errorf("status = %s, want CANCELLED", meeting.Status)
	}
	if meeting.ConfirmedTime != nil {
		t.Error("cancelled meeting must not carry a confirmed time")
	}

	when := detail.Slots[0].StartTime
	if _, err := svcs.Meeting.Confirm(ctx, organizer.ID, detail.Meeting.ID, &when); err != ErrInvalidStateTransition {
		t.Errorf("confirm after cancel err = %v, want ErrInvalidStateTransition", err)
	}
}

func TestExportICSRequiresConfirmation(t *testing.T) {
	svcs, _ := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")
	detail := createPoll(t, svcs, organizer.ID)
	ctx := context.Background()

	if _, _, err := svcs.Meeting.ExportICS(ctx, organizer.ID, detail.Meeting.ID); err != ErrNotConfirmed {
		t.Fatalf("err = %v, want ErrNotConfirmed", err)
	}

	when := detail.Slots[0].StartTime
	if _, err := svcs.Meeting.Confirm(ctx, organizer.ID, detail.Meeting.ID, &when); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	data, filename, err := svcs.Meeting.ExportICS(ctx, organizer.ID, detail.Meeting.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(string(data), "BEGIN:VCALENDAR") {
		t.Error("output is not a VCALENDAR document")
	}
	if !strings.HasSuffix(filename, ".ics") {
		t.Errorf("filename = %q, want .ics suffix", filename)
	}
}

func TestShareViewHeatmapReflectsSubmissions(t *testing.T) {
	svcs, _ := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")
	detail := createPoll(t, svcs, organizer.ID)
	ctx := context.Background()

	view, err := svcs.Meeting.GetShareView(ctx, detail.Meeting.ShareToken)
	if err != nil {
		t.Fatalf("share view: %v", err)
	}
	if len(view.Participants) != 1 {
		t.Fatalf("expected 1 participant on share page, got %d", len(view.Participants))
	}
	if len(view.Heatmap) == 0 {
		t.Fatal("expected a display grid in the share view")
	}

	// A guest joins and submits; the heatmap must reflect it on re-read
	guest, err := svcs.Participant.JoinAsGuest(ctx, detail.Meeting.ShareToken, "Guest", "guest@test.com", "UTC")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	slot := view.Heatmap[0]
	if _, err := svcs.Availability.Submit(ctx, SubmitInput{
		AccessToken: guest.AccessToken,
		Timezone:    "UTC",
		Intervals:   []IntervalInput{{StartTime: slot.Start, EndTime: slot.End, IsAvailable: true}},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	view, err = svcs.Meeting.GetShareView(ctx, detail.Meeting.ShareToken)
	if err != nil {
		t.Fatalf("share view after submit: %v", err)
	}
	if view.Heatmap[0].AvailableCount != 1 {
		t.Errorf("availableCount = %d, want 1", view.Heatmap[0].AvailableCount)
	}
	found := false
	for _, name := range view.Heatmap[0].AvailableNames {
		if name == "Guest" {
			found = true
		}
	}
	if !found {
		t.Error("guest missing from available names")
	}
}

func TestGetDetailAccessControl(t *testing.T) {
	svcs, _ := newTestServices(t)
	organizer := registerUser(t, svcs, "organizer@test.com")
	outsider := registerUser(t, svcs, "outsider@test.com")
	detail := createPoll(t, svcs, organizer.ID)

	if _, err := svcs.Meeting.GetDetail(context.Background(), outsider.ID, detail.Meeting.ID); err != ErrForbidden {
		t.Errorf("outsider err = %v, want ErrForbidden", err)
	}
	if _, err := svcs.Meeting.GetDetail(context.Background(), organizer.ID, detail.Meeting.ID); err != nil {
		t.Errorf("organizer err = %v, want nil", err)
	}
}
