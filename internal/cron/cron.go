package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/candidly/candidly-backend/internal/config"
	"github.com/candidly/candidly-backend/internal/email"
	"github.com/candidly/candidly-backend/internal/repository"
	"github.com/robfig/cron/v3"
)

const (
	// Meetings pending longer than this get their non-responders nudged
	reminderAge = 48 * time.Hour

	// Cancelled meetings are purged after this long
	purgeAge = 30 * 24 * time.Hour
)

// Scheduler handles scheduled background tasks
type Scheduler struct {
	cron            *cron.Cron
	cfg             *config.Config
	meetingRepo     repository.MeetingRepository
	participantRepo repository.ParticipantRepository
	userRepo        repository.UserRepository
	emailSvc        *email.Service
}

// NewScheduler creates a new scheduler
func NewScheduler(
	cfg *config.Config,
	meetingRepo repository.MeetingRepository,
	participantRepo repository.ParticipantRepository,
	userRepo repository.UserRepository,
	emailSvc *email.Service,
) *Scheduler {
	return &Scheduler{
		cron:            cron.New(),
		cfg:             cfg,
		meetingRepo:     meetingRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		emailSvc:        emailSvc,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Run every day at 9 AM - nudge non-responders on stale pending meetings
	s.cron.AddFunc("0 9 * * *", func() {
		log.Println("[Cron] Running response reminder sweep...")
		s.sendResponseReminders()
	})

	// Run every Sunday at midnight - purge old cancelled meetings
	s.cron.AddFunc("0 0 * * 0", func() {
		log.Println("[Cron] Running cancelled meeting cleanup...")
		s.purgeCancelledMeetings()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

// sendResponseReminders emails pending participants of meetings that have
// been waiting on responses for a while
func (s *Scheduler) sendResponseReminders() {
	if s.emailSvc == nil {
		log.Println("[Cron] Email not configured, skipping reminder sweep")
		return
	}

	ctx := context.Background()
	cutoff := time.Now().Add(-reminderAge)

	meetings, err := s.meetingRepo.FindPendingCreatedBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[Cron] Failed to load pending meetings: %v", err)
		return
	}

	sent := 0
	for _, meeting := range meetings {
		pending, err := s.participantRepo.FindPendingByMeeting(ctx, meeting.ID)
		if err != nil {
			log.Printf("[Cron] Failed to load participants for meeting %s: %v", meeting.ID, err)
			continue
		}

		organizerName := "The organizer"
		if organizer, err := s.userRepo.FindByID(ctx, meeting.OrganizerID); err == nil && organizer != nil {
			organizerName = organizer.Name()
		}

		for _, p := range pending {
			addr := ""
			if p.User != nil {
				addr = p.User.Email
			} else if p.GuestEmail != nil {
				addr = *p.GuestEmail
			}
			if addr == "" {
				continue
			}

			data := email.ResponseReminderData{
				MeetingTitle:  meeting.Title,
				OrganizerName: organizerName,
				RespondURL:    fmt.Sprintf("%s/respond/%s", s.cfg.FrontendURL, p.AccessToken),
			}
			if err := s.emailSvc.SendResponseReminder(addr, data); err != nil {
				log.Printf("[Cron] Failed to send reminder to %s: %v", addr, err)
				continue
			}
			sent++
		}
	}

	log.Printf("[Cron] Reminder sweep complete: %d meetings checked, %d reminders sent", len(meetings), sent)
}

// purgeCancelledMeetings removes cancelled meetings past the retention window
func (s *Scheduler) purgeCancelledMeetings() {
	ctx := context.Background()
	cutoff := time.Now().Add(-purgeAge)

	deleted, err := s.meetingRepo.DeleteCancelledBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[Cron] Failed to purge cancelled meetings: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("[Cron] Purged %d cancelled meetings", deleted)
	}
}
