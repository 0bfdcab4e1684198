package types

// Meeting type values
const (
	MeetingFixed = "FIXED"
	MeetingPoll  = "POLL"
)

// Meeting status values
const (
	MeetingPending   = "PENDING"
	MeetingConfirmed = "CONFIRMED"
	MeetingCancelled = "CANCELLED"
)

// Participant status values
const (
	ParticipantPending     = "PENDING"
	ParticipantResponded   = "RESPONDED"
	ParticipantAvailable   = "AVAILABLE"
	ParticipantUnavailable = "UNAVAILABLE"
)

// Duration bounds in minutes
const (
	MinDurationMinutes = 5
	MaxDurationMinutes = 480
)

var ValidMeetingTypes = []string{MeetingFixed, MeetingPoll}

var ValidMeetingStatuses = []string{
	MeetingPending, MeetingConfirmed, MeetingCancelled,
}

var ValidParticipantStatuses = []string{
	ParticipantPending, ParticipantResponded,
	ParticipantAvailable, ParticipantUnavailable,
}

// Helper functions for validation
func IsValidMeetingType(t string) bool {
	for _, v := range ValidMeetingTypes {
		if v == t {
			return true
		}
	}
	return false
}

func IsValidMeetingStatus(status string) bool {
	for _, v := range ValidMeetingStatuses {
		if v == status {
			return true
		}
	}
	return false
}

func IsValidParticipantStatus(status string) bool {
	for _, v := range ValidParticipantStatuses {
		if v == status {
			return true
		}
	}
	return false
}

func IsValidDuration(minutes int) bool {
	return minutes >= MinDurationMinutes && minutes <= MaxDurationMinutes
}
