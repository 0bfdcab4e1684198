package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/candidly/candidly-backend/internal/config"
	"github.com/candidly/candidly-backend/internal/db"
	"github.com/candidly/candidly-backend/internal/email"
	"github.com/candidly/candidly-backend/internal/repository"
	"github.com/candidly/candidly-backend/internal/schedule"
	"github.com/candidly/candidly-backend/internal/socket"
	"github.com/candidly/candidly-backend/internal/types"
)

// ============================================
// Participant Service
// ============================================

type ParticipantService interface {
	Invite(ctx context.Context, userID, meetingID string, invitees []Invitee) ([]*repository.Participant, error)
	// JoinAsGuest registers a guest on a public share page. Joining twice
	// with the same email fails with ErrAlreadyJoined but still returns the
	// existing participant and their original access token, so a respond
	// link is recoverable without forking a second identity.
	JoinAsGuest(ctx context.Context, shareToken, name, emailAddr, timezone string) (*repository.Participant, error)
	GetByAccessToken(ctx context.Context, token string) (*repository.Participant, error)
	SendReminders(ctx context.Context, userID, meetingID string) (int, error)
}

type participantService struct {
	meetingRepo     repository.MeetingRepository
	participantRepo repository.ParticipantRepository
	userRepo        repository.UserRepository
	cfg             *config.Config
	emailSvc        *email.Service
	broadcaster     *socket.Broadcaster
	cache           *db.RedisDB
}

func NewParticipantService(
	meetingRepo repository.MeetingRepository,
	participantRepo repository.ParticipantRepository,
	userRepo repository.UserRepository,
	cfg *config.Config,
	emailSvc *email.Service,
	broadcaster *socket.Broadcaster,
	cache *db.RedisDB,
) ParticipantService {
	return &participantService{
		meetingRepo:     meetingRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		cfg:             cfg,
		emailSvc:        emailSvc,
		broadcaster:     broadcaster,
		cache:           cache,
	}
}

func (s *participantService) Invite(ctx context.Context, userID, meetingID string, invitees []Invitee) ([]*repository.Participant, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, ErrNotFound
	}
	if meeting.OrganizerID != userID {
		return nil, ErrForbidden
	}
	if meeting.Status != types.MeetingPending {
		return nil, ErrInvalidStateTransition
	}

	organizer, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var created []*repository.Participant
	for i := range invitees {
		inv := invitees[i]
		if inv.Email == "" {
			continue
		}

		p := &repository.Participant{
			MeetingID:  meetingID,
			GuestEmail: &invitees[i].Email,
			IsGuest:    true,
			Timezone:   s.cfg.DefaultTimezone,
			Status:     types.ParticipantPending,
		}
		if inv.Name != "" {
			p.GuestName = &invitees[i].Name
		}

		if registered, err := s.userRepo.FindByEmail(ctx, inv.Email); err == nil && registered != nil {
			if existing, err := s.participantRepo.FindByMeetingAndUser(ctx, meetingID, registered.ID); err == nil && existing != nil {
				continue
			}
			p.UserID = &registered.ID
			p.IsGuest = false
			p.GuestName = nil
			p.GuestEmail = nil
			p.Timezone = registered.Timezone
		} else {
			if existing, err := s.participantRepo.FindByMeetingAndGuestEmail(ctx, meetingID, inv.Email); err == nil && existing != nil {
				continue
			}
		}

		if err := s.participantRepo.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to add participant: %w", err)
		}
		created = append(created, p)

		s.sendInvite(meeting, organizer, p)
		s.broadcaster.BroadcastParticipantJoined(meeting.ShareToken, map[string]interface{}{
			"participantId": p.ID,
			"name":          p.DisplayName(),
			"status":        p.Status,
		})
	}

	s.invalidateShareCache(meeting.ShareToken)
	return created, nil
}

func (s *participantService) JoinAsGuest(ctx context.Context, shareToken, name, emailAddr, timezone string) (*repository.Participant, error) {
	if name == "" || emailAddr == "" {
		return nil, ErrValidation
	}
	if timezone == "" {
		timezone = s.cfg.DefaultTimezone
	}
	if !schedule.ValidZone(timezone) {
		return nil, ErrValidation
	}

	meeting, err := s.meetingRepo.FindByShareToken(ctx, shareToken)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, ErrNotFound
	}
	if meeting.Status == types.MeetingCancelled {
		return nil, ErrInvalidStateTransition
	}

	if existing, err := s.participantRepo.FindByMeetingAndGuestEmail(ctx, meeting.ID, emailAddr); err == nil && existing != nil {
		return existing, ErrAlreadyJoined
	}

	p := &repository.Participant{
		MeetingID:  meeting.ID,
		GuestName:  &name,
		GuestEmail: &emailAddr,
		IsGuest:    true,
		Timezone:   timezone,
		Status:     types.ParticipantPending,
	}
	if err := s.participantRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to join meeting: %w", err)
	}

	s.invalidateShareCache(meeting.ShareToken)
	s.broadcaster.BroadcastParticipantJoined(meeting.ShareToken, map[string]interface{}{
		"participantId": p.ID,
		"name":          p.DisplayName(),
		"status":        p.Status,
	})
	s.broadcaster.NotifyOrganizer(meeting.OrganizerID, socket.MessageParticipantJoined, map[string]interface{}{
		"meetingId":     meeting.ID,
		"participantId": p.ID,
		"name":          p.DisplayName(),
	})

	return p, nil
}

func (s *participantService) GetByAccessToken(ctx context.Context, token string) (*repository.Participant, error) {
	p, err := s.participantRepo.FindByAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrParticipantNotFound
	}
	return p, nil
}

func (s *participantService) SendReminders(ctx context.Context, userID, meetingID string) (int, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return 0, err
	}
	if meeting == nil {
		return 0, ErrNotFound
	}
	if meeting.OrganizerID != userID {
		return 0, ErrForbidden
	}
	if meeting.Status != types.MeetingPending {
		return 0, ErrInvalidStateTransition
	}

	organizer, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	organizerName := "The organizer"
	if organizer != nil {
		organizerName = organizer.Name()
	}

	pending, err := s.participantRepo.FindPendingByMeeting(ctx, meetingID)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, p := range pending {
		addr := participantEmail(p)
		if addr == "" || s.emailSvc == nil {
			continue
		}
		data := email.ResponseReminderData{
			MeetingTitle:  meeting.Title,
			OrganizerName: organizerName,
			RespondURL:    fmt.Sprintf("%s/respond/%s", s.cfg.FrontendURL, p.AccessToken),
		}
		go func(addr string, data email.ResponseReminderData) {
			if err := s.emailSvc.SendResponseReminder(addr, data); err != nil {
				log.Printf("[Participant] Failed to send reminder to %s: %v", addr, err)
			}
		}(addr, data)
		sent++
	}
	return sent, nil
}

func (s *participantService) sendInvite(meeting *repository.Meeting, organizer *repository.User, p *repository.Participant) {
	if s.emailSvc == nil {
		return
	}
	addr := participantEmail(p)
	if addr == "" {
		return
	}
	organizerName := "The organizer"
	if organizer != nil {
		organizerName = organizer.Name()
	}
	data := email.MeetingInviteData{
		MeetingTitle:  meeting.Title,
		OrganizerName: organizerName,
		Duration:      meeting.DurationMinutes,
		RespondURL:    fmt.Sprintf("%s/respond/%s", s.cfg.FrontendURL, p.AccessToken),
		MeetingURL:    fmt.Sprintf("%s/m/%s", s.cfg.FrontendURL, meeting.ShareToken),
	}
	if meeting.Location != nil {
		data.Location = *meeting.Location
	}
	if meeting.Description != nil {
		data.Description = *meeting.Description
	}
	go func() {
		if err := s.emailSvc.SendMeetingInvite(addr, data); err != nil {
			log.Printf("[Participant] Failed to send invite to %s: %v", addr, err)
		}
	}()
}

func (s *participantService) invalidateShareCache(shareToken string) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.InvalidateCache(ctx, "share:"+shareToken); err != nil {
		log.Printf("[Participant] Failed to invalidate share cache: %v", err)
	}
}
