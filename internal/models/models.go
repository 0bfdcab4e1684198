package models

import "time"

// ============================================
// Auth DTOs
// ============================================

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required,min=1"`
	LastName  string `json:"lastName" binding:"required,min=1"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Timezone  string `json:"timezone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// ============================================
// User DTOs
// ============================================

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"createdAt"`
}

type UpdateUserRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Timezone  *string `json:"timezone,omitempty"`
}

// ============================================
// Meeting DTOs
// ============================================

type InviteeRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email" binding:"required,email"`
}

// CreateMeetingRequest carries wall-clock times in the given timezone.
// For FIXED meetings proposedTime is required; for POLL meetings both
// range dates are.
type CreateMeetingRequest struct {
	Title           string           `json:"title" binding:"required,min=1,max=200"`
	Description     string           `json:"description,omitempty"`
	Location        string           `json:"location,omitempty"`
	DurationMinutes int              `json:"durationMinutes" binding:"required,min=5,max=480"`
	MeetingType     string           `json:"meetingType" binding:"required,oneof=FIXED POLL"`
	Timezone        string           `json:"timezone,omitempty"`
	ProposedTime    *time.Time       `json:"proposedTime,omitempty"`
	DateRangeStart  *time.Time       `json:"dateRangeStart,omitempty"`
	DateRangeEnd    *time.Time       `json:"dateRangeEnd,omitempty"`
	Invitees        []InviteeRequest `json:"invitees,omitempty"`
}

type ConfirmMeetingRequest struct {
	ConfirmedTime *time.Time `json:"confirmedTime,omitempty"`
}

type MeetingResponse struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description,omitempty"`
	Location        *string    `json:"location,omitempty"`
	DurationMinutes int        `json:"durationMinutes"`
	MeetingType     string     `json:"meetingType"`
	Status          string     `json:"status"`
	ProposedTime    *time.Time `json:"proposedTime,omitempty"`
	DateRangeStart  *time.Time `json:"dateRangeStart,omitempty"`
	DateRangeEnd    *time.Time `json:"dateRangeEnd,omitempty"`
	ConfirmedTime   *time.Time `json:"confirmedTime,omitempty"`
	ShareToken      string     `json:"shareToken"`
	OrganizerID     string     `json:"organizerId"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type TimeSlotResponse struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type MeetingDetailResponse struct {
	Meeting      MeetingResponse       `json:"meeting"`
	Slots        []TimeSlotResponse    `json:"slots"`
	Participants []ParticipantResponse `json:"participants"`
}

// ============================================
// Participant DTOs
// ============================================

type ParticipantResponse struct {
	ID          string     `json:"id"`
	MeetingID   string     `json:"meetingId"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	IsGuest     bool       `json:"isGuest"`
	Timezone    string     `json:"timezone"`
	Status      string     `json:"status"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
}

type InviteParticipantsRequest struct {
	Invitees []InviteeRequest `json:"invitees" binding:"required,min=1,dive"`
}

type JoinMeetingRequest struct {
	Name     string `json:"name" binding:"required,min=1"`
	Email    string `json:"email" binding:"required,email"`
	Timezone string `json:"timezone,omitempty"`
}

type JoinMeetingResponse struct {
	Participant ParticipantResponse `json:"participant"`
	AccessToken string              `json:"accessToken"`
}

// ============================================
// Availability DTOs
// ============================================

type AvailabilityIntervalRequest struct {
	StartTime   time.Time `json:"startTime" binding:"required"`
	EndTime     time.Time `json:"endTime" binding:"required"`
	IsAvailable bool      `json:"isAvailable"`
}

// SubmitAvailabilityRequest replaces the participant's entire grid.
// Identification is either by accessToken (guest link) or participantId
// with an authenticated session.
type SubmitAvailabilityRequest struct {
	AccessToken   string                        `json:"accessToken,omitempty"`
	ParticipantID string                        `json:"participantId,omitempty"`
	Timezone      string                        `json:"timezone,omitempty"`
	Intervals     []AvailabilityIntervalRequest `json:"intervals" binding:"dive"`
}

type AvailabilityResponse struct {
	ID          string    `json:"id"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	IsAvailable bool      `json:"isAvailable"`
}

// ============================================
// Timezone DTOs
// ============================================

type TimezoneOptionResponse struct {
	Zone   string `json:"zone"`
	City   string `json:"city"`
	Offset string `json:"offset"`
	Group  string `json:"group"`
}
