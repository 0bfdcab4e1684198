package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/candidly/candidly-backend/internal/config"
	"github.com/candidly/candidly-backend/internal/db"
	"github.com/candidly/candidly-backend/internal/email"
	"github.com/candidly/candidly-backend/internal/ics"
	"github.com/candidly/candidly-backend/internal/repository"
	"github.com/candidly/candidly-backend/internal/schedule"
	"github.com/candidly/candidly-backend/internal/socket"
	"github.com/candidly/candidly-backend/internal/types"
)

// ============================================
// Meeting Service
// ============================================

// Invitee is someone added at creation or invited later by the organizer.
type Invitee struct {
	Name  string
	Email string
}

// CreateMeetingInput carries the organizer's wall-clock times together with
// the timezone they are expressed in. Conversion to UTC happens here, once,
// before anything is persisted.
type CreateMeetingInput struct {
	Title           string
	Description     string
	Location        string
	DurationMinutes int
	MeetingType     string
	Timezone        string
	ProposedTime    *time.Time
	DateRangeStart  *time.Time
	DateRangeEnd    *time.Time
	Invitees        []Invitee
}

// MeetingDetail is the organizer-facing view of a meeting.
type MeetingDetail struct {
	Meeting      *repository.Meeting
	Slots        []*repository.TimeSlot
	Participants []*repository.Participant
}

// ShareParticipant is the subset of a participant safe to show on the
// public share page.
type ShareParticipant struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	IsGuest     bool       `json:"isGuest"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
}

// ShareView is the public share-page payload. It is cacheable as a unit:
// every scheduling write for the meeting drops it, so the heatmap inside is
// never older than the latest submission.
type ShareView struct {
	Meeting      *repository.Meeting    `json:"meeting"`
	Slots        []*repository.TimeSlot `json:"slots"`
	Participants []ShareParticipant     `json:"participants"`
	Heatmap      []schedule.HeatmapSlot `json:"heatmap"`
}

type MeetingService interface {
	Create(ctx context.Context, organizerID string, input CreateMeetingInput) (*MeetingDetail, error)
	ListForUser(ctx context.Context, userID string) ([]*repository.Meeting, error)
	GetDetail(ctx context.Context, userID, meetingID string) (*MeetingDetail, error)
	GetShareView(ctx context.Context, shareToken string) (*ShareView, error)
	Confirm(ctx context.Context, userID, meetingID string, confirmedTime *time.Time) (*repository.Meeting, error)
	Cancel(ctx context.Context, userID, meetingID string) (*repository.Meeting, error)
	ExportICS(ctx context.Context, userID, meetingID string) ([]byte, string, error)
}

type meetingService struct {
	cfg              *config.Config
	meetingRepo      repository.MeetingRepository
	participantRepo  repository.ParticipantRepository
	availabilityRepo repository.AvailabilityRepository
	userRepo         repository.UserRepository
	emailSvc         *email.Service
	broadcaster      *socket.Broadcaster
	cache            *db.RedisDB
}

func NewMeetingService(
	cfg *config.Config,
	meetingRepo repository.MeetingRepository,
	participantRepo repository.ParticipantRepository,
	availabilityRepo repository.AvailabilityRepository,
	userRepo repository.UserRepository,
	emailSvc *email.Service,
	broadcaster *socket.Broadcaster,
	cache *db.RedisDB,
) MeetingService {
	return &meetingService{
		cfg:              cfg,
		meetingRepo:      meetingRepo,
		participantRepo:  participantRepo,
		availabilityRepo: availabilityRepo,
		userRepo:         userRepo,
		emailSvc:         emailSvc,
		broadcaster:      broadcaster,
		cache:            cache,
	}
}

func (s *meetingService) Create(ctx context.Context, organizerID string, input CreateMeetingInput) (*MeetingDetail, error) {
	if input.Title == "" {
		return nil, ErrValidation
	}
	if !types.IsValidMeetingType(input.MeetingType) {
		return nil, ErrValidation
	}
	if !types.IsValidDuration(input.DurationMinutes) {
		return nil, ErrValidation
	}

	zone := input.Timezone
	if zone == "" {
		zone = s.cfg.DefaultTimezone
	}
	if !schedule.ValidZone(zone) {
		return nil, ErrValidation
	}

	meeting := &repository.Meeting{
		Title:           input.Title,
		DurationMinutes: input.DurationMinutes,
		MeetingType:     input.MeetingType,
		OrganizerID:     organizerID,
	}
	if input.Description != "" {
		meeting.Description = &input.Description
	}
	if input.Location != "" {
		meeting.Location = &input.Location
	}

	var slots []repository.TimeSlot

	switch input.MeetingType {
	case types.MeetingFixed:
		if input.ProposedTime == nil {
			return nil, ErrValidation
		}
		proposed, err := schedule.ToUTC(*input.ProposedTime, zone)
		if err != nil {
			return nil, ErrValidation
		}
		// FIXED meetings never carry a slot set; the instant lives in
		// proposed_time alone.
		meeting.ProposedTime = &proposed

	case types.MeetingPoll:
		if input.DateRangeStart == nil || input.DateRangeEnd == nil {
			return nil, ErrValidation
		}
		rangeStart, err := schedule.ToUTC(*input.DateRangeStart, zone)
		if err != nil {
			return nil, ErrValidation
		}
		rangeEnd, err := schedule.ToUTC(*input.DateRangeEnd, zone)
		if err != nil {
			return nil, ErrValidation
		}
		if rangeEnd.Before(rangeStart) {
			return nil, ErrValidation
		}
		meeting.DateRangeStart = &rangeStart
		meeting.DateRangeEnd = &rangeEnd
		for _, slot := range schedule.DailySlots(rangeStart, rangeEnd, input.DurationMinutes) {
			slots = append(slots, repository.TimeSlot{StartTime: slot.Start, EndTime: slot.End})
		}
	}

	organizer, err := s.userRepo.FindByID(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	if organizer == nil {
		return nil, ErrUserNotFound
	}

	// The organizer is a participant from the start so they show up in the
	// grid like everyone else.
	participants := []*repository.Participant{
		{
			UserID:   &organizer.ID,
			Timezone: organizer.Timezone,
			Status:   types.ParticipantResponded,
		},
	}
	for i := range input.Invitees {
		inv := input.Invitees[i]
		if inv.Email == "" {
			continue
		}
		p := &repository.Participant{
			GuestEmail: &input.Invitees[i].Email,
			IsGuest:    true,
			Timezone:   zone,
			Status:     types.ParticipantPending,
		}
		if inv.Name != "" {
			p.GuestName = &input.Invitees[i].Name
		}
		// An invitee who is already a registered user is linked to their
		// account instead of getting a guest row.
		if existing, err := s.userRepo.FindByEmail(ctx, inv.Email); err == nil && existing != nil {
			if existing.ID == organizerID {
				continue
			}
			p.UserID = &existing.ID
			p.IsGuest = false
			p.GuestName = nil
			p.GuestEmail = nil
			p.Timezone = existing.Timezone
		}
		participants = append(participants, p)
	}

	if err := s.meetingRepo.CreateWithSlots(ctx, meeting, slots, participants); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	detail, err := s.loadDetail(ctx, meeting)
	if err != nil {
		return nil, err
	}

	s.sendInvites(meeting, organizer, detail.Participants)

	return detail, nil
}

func (s *meetingService) ListForUser(ctx context.Context, userID string) ([]*repository.Meeting, error) {
	return s.meetingRepo.FindByUser(ctx, userID)
}

func (s *meetingService) GetDetail(ctx context.Context, userID, meetingID string) (*MeetingDetail, error) {
	meeting, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, ErrNotFound
	}

	if meeting.OrganizerID != userID {
		// Registered participants may view the detail too
		p, err := s.participantRepo.FindByMeetingAndUser(ctx, meetingID, userID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrForbidden
		}
	}

	return s.loadDetail(ctx, meeting)
}

func (s *meetingService) loadDetail(ctx context.Context, meeting *repository.Meeting) (*MeetingDetail, error) {
	slots, err := s.meetingRepo.FindSlots(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.FindByMeeting(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}
	return &MeetingDetail{Meeting: meeting, Slots: slots, Participants: participants}, nil
}

func (s *meetingService) GetShareView(ctx context.Context, shareToken string) (*ShareView, error) {
	if s.cache != nil {
		var cached ShareView
		if err := s.cache.GetCache(ctx, "share:"+shareToken, &cached); err == nil {
			return &cached, nil
		}
	}

	meeting, err := s.meetingRepo.FindByShareToken(ctx, shareToken)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, ErrNotFound
	}

	slots, err := s.meetingRepo.FindSlots(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}
	participants, err := s.participantRepo.FindByMeeting(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}

	heatmap, err := s.buildHeatmap(ctx, meeting, participants)
	if err != nil {
		return nil, err
	}

	view := &ShareView{
		Meeting: meeting,
		Slots:   slots,
		Heatmap: heatmap,
	}
	for _, p := range participants {
		view.Participants = append(view.Participants, ShareParticipant{
			ID:          p.ID,
			Name:        p.DisplayName(),
			Status:      p.Status,
			IsGuest:     p.IsGuest,
			RespondedAt: p.RespondedAt,
		})
	}

	if s.cache != nil {
		if err := s.cache.SetCache(ctx, "share:"+shareToken, view, 5*time.Minute); err != nil {
			log.Printf("[Meeting] Failed to cache share view: %v", err)
		}
	}

	return view, nil
}

// buildHeatmap recomputes the overlap for the display grid from the current
// availability rows. Only participants who responded count toward the ratio.
func (s *meetingService) buildHeatmap(ctx context.Context, meeting *repository.Meeting, participants []*repository.Participant) ([]schedule.HeatmapSlot, error) {
	byParticipant, err := s.availabilityRepo.FindByMeeting(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}

	var respondents []schedule.Respondent
	for _, p := range participants {
		if p.Status != types.ParticipantResponded {
			continue
		}
		r := schedule.Respondent{ID: p.ID, Name: p.DisplayName()}
		for _, row := range byParticipant[p.ID] {
			r.Intervals = append(r.Intervals, schedule.Interval{
				Start:     row.StartTime,
				End:       row.EndTime,
				Available: row.IsAvailable,
			})
		}
		respondents = append(respondents, r)
	}

	var grid []schedule.Slot
	if meeting.MeetingType == types.MeetingPoll && meeting.DateRangeStart != nil && meeting.DateRangeEnd != nil {
		size := time.Duration(s.cfg.DisplaySlotMinutes) * time.Minute
		if size <= 0 {
			size = schedule.DefaultDisplaySlotSize
		}
		grid = schedule.DisplaySlots(*meeting.DateRangeStart, *meeting.DateRangeEnd, size)
	} else {
		slots, err := s.meetingRepo.FindSlots(ctx, meeting.ID)
		if err != nil {
			return nil, err
		}
		for _, slot := range slots {
			grid = append(grid, schedule.Slot{Start: slot.StartTime, End: slot.EndTime})
		}
	}

	return schedule.Heatmap(respondents, grid), nil
}

func (s *meetingService) Confirm(ctx context.Context, userID, meetingID string, confirmedTime *time.Time) (*repository.Meeting, error) {
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

	var when time.Time
	switch {
	case confirmedTime != nil:
		when = confirmedTime.UTC()
	case meeting.ProposedTime != nil:
		when = *meeting.ProposedTime
	default:
		return nil, ErrValidation
	}

	// The chosen time is not checked against the candidate slots or the
	// heatmap; the organizer may confirm any instant.
	ok, err := s.meetingRepo.Confirm(ctx, meetingID, when)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidStateTransition
	}

	meeting.Status = types.MeetingConfirmed
	meeting.ConfirmedTime = &when

	s.invalidateShareCache(meeting.ShareToken)
	s.broadcaster.BroadcastMeetingConfirmed(meeting.ShareToken, map[string]interface{}{
		"meetingId":     meeting.ID,
		"confirmedTime": when,
	})
	s.sendConfirmations(ctx, meeting)

	return meeting, nil
}

func (s *meetingService) Cancel(ctx context.Context, userID, meetingID string) (*repository.Meeting, error) {
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

	ok, err := s.meetingRepo.Cancel(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidStateTransition
	}

	meeting.Status = types.MeetingCancelled
	meeting.ConfirmedTime = nil

	s.invalidateShareCache(meeting.ShareToken)
	s.broadcaster.BroadcastMeetingCancelled(meeting.ShareToken, meeting.ID)

	return meeting, nil
}

func (s *meetingService) ExportICS(ctx context.Context, userID, meetingID string) ([]byte, string, error) {
	detail, err := s.GetDetail(ctx, userID, meetingID)
	if err != nil {
		return nil, "", err
	}
	meeting := detail.Meeting

	if meeting.Status != types.MeetingConfirmed || meeting.ConfirmedTime == nil {
		return nil, "", ErrNotConfirmed
	}

	organizer, err := s.userRepo.FindByID(ctx, meeting.OrganizerID)
	if err != nil {
		return nil, "", err
	}

	event := ics.Event{
		Title:    meeting.Title,
		StartUTC: *meeting.ConfirmedTime,
		Duration: time.Duration(meeting.DurationMinutes) * time.Minute,
	}
	if meeting.Description != nil {
		event.Description = *meeting.Description
	}
	if meeting.Location != nil {
		event.Location = *meeting.Location
	}
	if organizer != nil {
		event.OrganizerName = organizer.Name()
		event.OrganizerEmail = organizer.Email
	}

	data, err := ics.Render(event)
	if err != nil {
		return nil, "", err
	}
	return data, ics.Filename(meeting.Title), nil
}

func (s *meetingService) invalidateShareCache(shareToken string) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.InvalidateCache(ctx, "share:"+shareToken); err != nil {
		log.Printf("[Meeting] Failed to invalidate share cache: %v", err)
	}
}

func (s *meetingService) sendInvites(meeting *repository.Meeting, organizer *repository.User, participants []*repository.Participant) {
	if s.emailSvc == nil {
		return
	}
	for _, p := range participants {
		addr := participantEmail(p)
		if addr == "" || addr == organizer.Email {
			continue
		}
		data := email.MeetingInviteData{
			MeetingTitle:  meeting.Title,
			OrganizerName: organizer.Name(),
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
		if meeting.ProposedTime != nil {
			data.ProposedTime = meeting.ProposedTime.Format("Mon, 2 Jan 2006 15:04 MST")
		}
		go func(addr string, data email.MeetingInviteData) {
			if err := s.emailSvc.SendMeetingInvite(addr, data); err != nil {
				log.Printf("[Meeting] Failed to send invite to %s: %v", addr, err)
			}
		}(addr, data)
	}
}

func (s *meetingService) sendConfirmations(ctx context.Context, meeting *repository.Meeting) {
	if s.emailSvc == nil {
		return
	}
	participants, err := s.participantRepo.FindByMeeting(ctx, meeting.ID)
	if err != nil {
		log.Printf("[Meeting] Failed to load participants for confirmation emails: %v", err)
		return
	}
	organizer, _ := s.userRepo.FindByID(ctx, meeting.OrganizerID)
	organizerName := "The organizer"
	if organizer != nil {
		organizerName = organizer.Name()
	}

	for _, p := range participants {
		addr := participantEmail(p)
		if addr == "" {
			continue
		}
		data := email.MeetingConfirmedData{
			MeetingTitle:  meeting.Title,
			OrganizerName: organizerName,
			ConfirmedTime: meeting.ConfirmedTime.Format("Mon, 2 Jan 2006 15:04 MST"),
			MeetingURL:    fmt.Sprintf("%s/m/%s", s.cfg.FrontendURL, meeting.ShareToken),
		}
		if meeting.Location != nil {
			data.Location = *meeting.Location
		}
		go func(addr string, data email.MeetingConfirmedData) {
			if err := s.emailSvc.SendMeetingConfirmed(addr, data); err != nil {
				log.Printf("[Meeting] Failed to send confirmation to %s: %v", addr, err)
			}
		}(addr, data)
	}
}

func participantEmail(p *repository.Participant) string {
	if p.User != nil {
		return p.User.Email
	}
	if p.GuestEmail != nil {
		return *p.GuestEmail
	}
	return ""
}
