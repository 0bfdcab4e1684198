package handlers

import (
	"errors"
	"net/http"

	"github.com/candidly/candidly-backend/internal/models"
	"github.com/candidly/candidly-backend/internal/repository"
	"github.com/candidly/candidly-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Meeting      *MeetingHandler
	Participant  *ParticipantHandler
	Availability *AvailabilityHandler
	Timezone     *TimezoneHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:         &AuthHandler{authService: services.Auth},
		User:         &UserHandler{userService: services.User},
		Meeting:      &MeetingHandler{meetingService: services.Meeting},
		Participant:  &ParticipantHandler{participantService: services.Participant},
		Availability: &AvailabilityHandler{availabilityService: services.Availability},
		Timezone:     &TimezoneHandler{},
	}
}

// ============================================
// Response Mappers
// ============================================

func toUserResponse(u *repository.User) models.UserResponse {
	return models.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Timezone:  u.Timezone,
		CreatedAt: u.CreatedAt,
	}
}

func toMeetingResponse(m *repository.Meeting) models.MeetingResponse {
	return models.MeetingResponse{
		ID:              m.ID,
		Title:           m.Title,
		Description:     m.Description,
		Location:        m.Location,
		DurationMinutes: m.DurationMinutes,
		MeetingType:     m.MeetingType,
		Status:          m.Status,
		ProposedTime:    m.ProposedTime,
		DateRangeStart:  m.DateRangeStart,
		DateRangeEnd:    m.DateRangeEnd,
		ConfirmedTime:   m.ConfirmedTime,
		ShareToken:      m.ShareToken,
		OrganizerID:     m.OrganizerID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toTimeSlotResponse(s *repository.TimeSlot) models.TimeSlotResponse {
	return models.TimeSlotResponse{
		ID:        s.ID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	}
}

func toParticipantResponse(p *repository.Participant) models.ParticipantResponse {
	resp := models.ParticipantResponse{
		ID:          p.ID,
		MeetingID:   p.MeetingID,
		Name:        p.DisplayName(),
		IsGuest:     p.IsGuest,
		Timezone:    p.Timezone,
		Status:      p.Status,
		RespondedAt: p.RespondedAt,
	}
	if p.User != nil {
		resp.Email = p.User.Email
	} else if p.GuestEmail != nil {
		resp.Email = *p.GuestEmail
	}
	return resp
}

func toMeetingDetailResponse(d *service.MeetingDetail) models.MeetingDetailResponse {
	resp := models.MeetingDetailResponse{
		Meeting:      toMeetingResponse(d.Meeting),
		Slots:        make([]models.TimeSlotResponse, len(d.Slots)),
		Participants: make([]models.ParticipantResponse, len(d.Participants)),
	}
	for i, s := range d.Slots {
		resp.Slots[i] = toTimeSlotResponse(s)
	}
	for i, p := range d.Participants {
		resp.Participants[i] = toParticipantResponse(p)
	}
	return resp
}

func toAvailabilityResponse(a *repository.Availability) models.AvailabilityResponse {
	return models.AvailabilityResponse{
		ID:          a.ID,
		StartTime:   a.StartTime,
		EndTime:     a.EndTime,
		IsAvailable: a.IsAvailable,
	}
}

// ============================================
// Error Mapping
// ============================================

// respondError translates service sentinel errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrParticipantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrAlreadyJoined),
		errors.Is(err, service.ErrInvalidStateTransition),
		errors.Is(err, service.ErrNotConfirmed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
