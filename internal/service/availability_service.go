package service

import (
	"context"
	"log"
	"time"

	"github.com/candidly/candidly-backend/internal/db"
	"github.com/candidly/candidly-backend/internal/repository"
	"github.com/candidly/candidly-backend/internal/schedule"
	"github.com/candidly/candidly-backend/internal/socket"
	"github.com/candidly/candidly-backend/internal/types"
)

// ============================================
// Availability Service
// ============================================

// IntervalInput is one submitted interval, expressed as wall-clock time in
// the submitter's timezone.
type IntervalInput struct {
	StartTime   time.Time
	EndTime     time.Time
	IsAvailable bool
}

// SubmitInput identifies the participant either by access token (guest
// links) or by participant ID plus the authenticated user.
type SubmitInput struct {
	AccessToken   string
	ParticipantID string
	UserID        string
	Timezone      string
	Intervals     []IntervalInput
}

type AvailabilityService interface {
	// Submit replaces the participant's entire availability with the given
	// set. It never merges with a previous submission.
	Submit(ctx context.Context, input SubmitInput) (*repository.Participant, error)
	GetForParticipant(ctx context.Context, participantID string) ([]*repository.Availability, error)
}

type availabilityService struct {
	meetingRepo      repository.MeetingRepository
	participantRepo  repository.ParticipantRepository
	availabilityRepo repository.AvailabilityRepository
	broadcaster      *socket.Broadcaster
	cache            *db.RedisDB
}

func NewAvailabilityService(
	meetingRepo repository.MeetingRepository,
	participantRepo repository.ParticipantRepository,
	availabilityRepo repository.AvailabilityRepository,
	broadcaster *socket.Broadcaster,
	cache *db.RedisDB,
) AvailabilityService {
	return &availabilityService{
		meetingRepo:      meetingRepo,
		participantRepo:  participantRepo,
		availabilityRepo: availabilityRepo,
		broadcaster:      broadcaster,
		cache:            cache,
	}
}

func (s *availabilityService) Submit(ctx context.Context, input SubmitInput) (*repository.Participant, error) {
	participant, err := s.resolveParticipant(ctx, input)
	if err != nil {
		return nil, err
	}

	zone := input.Timezone
	if zone == "" {
		zone = participant.Timezone
	}
	if !schedule.ValidZone(zone) {
		return nil, ErrValidation
	}

	meeting, err := s.meetingRepo.FindByID(ctx, participant.MeetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, ErrNotFound
	}
	if meeting.Status != types.MeetingPending {
		return nil, ErrInvalidStateTransition
	}

	rows := make([]repository.Availability, 0, len(input.Intervals))
	for _, iv := range input.Intervals {
		start, err := schedule.ToUTC(iv.StartTime, zone)
		if err != nil {
			return nil, ErrValidation
		}
		end, err := schedule.ToUTC(iv.EndTime, zone)
		if err != nil {
			return nil, ErrValidation
		}
		if !start.Before(end) {
			return nil, ErrValidation
		}
		rows = append(rows, repository.Availability{
			ParticipantID: participant.ID,
			StartTime:     start,
			EndTime:       end,
			IsAvailable:   iv.IsAvailable,
		})
	}

	respondedAt := time.Now().UTC()
	if err := s.availabilityRepo.ReplaceForParticipant(ctx, participant.ID, zone, rows, respondedAt); err != nil {
		return nil, err
	}

	participant.Status = types.ParticipantResponded
	participant.Timezone = zone
	participant.RespondedAt = &respondedAt

	s.invalidateShareCache(meeting.ShareToken)
	s.broadcaster.BroadcastAvailabilitySubmitted(meeting.ShareToken, participant.ID, participant.DisplayName())
	s.broadcaster.NotifyOrganizer(meeting.OrganizerID, socket.MessageAvailabilitySubmitted, map[string]interface{}{
		"meetingId":     meeting.ID,
		"participantId": participant.ID,
		"name":          participant.DisplayName(),
	})

	return participant, nil
}

func (s *availabilityService) GetForParticipant(ctx context.Context, participantID string) ([]*repository.Availability, error) {
	return s.availabilityRepo.FindByParticipant(ctx, participantID)
}

// resolveParticipant finds the participant the submission belongs to.
// Access tokens are capability grants: holding one is proof enough. A
// participant ID on its own is not; it must belong to the authenticated
// user. Both failure modes look identical to the caller so tokens cannot
// be probed.
func (s *availabilityService) resolveParticipant(ctx context.Context, input SubmitInput) (*repository.Participant, error) {
	if input.AccessToken != "" {
		p, err := s.participantRepo.FindByAccessToken(ctx, input.AccessToken)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrParticipantNotFound
		}
		return p, nil
	}

	if input.ParticipantID == "" || input.UserID == "" {
		return nil, ErrParticipantNotFound
	}
	p, err := s.participantRepo.FindByID(ctx, input.ParticipantID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.UserID == nil || *p.UserID != input.UserID {
		return nil, ErrParticipantNotFound
	}
	return p, nil
}

func (s *availabilityService) invalidateShareCache(shareToken string) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.InvalidateCache(ctx, "share:"+shareToken); err != nil {
		log.Printf("[Availability] Failed to invalidate share cache: %v", err)
	}
}
