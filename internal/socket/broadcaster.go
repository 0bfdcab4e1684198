package socket

import "fmt"

// Broadcaster provides high-level methods for broadcasting scheduling events
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// MeetingRoom returns the room name for a meeting share token
func MeetingRoom(shareToken string) string {
	return fmt.Sprintf("meeting:%s", shareToken)
}

// BroadcastParticipantJoined announces a new participant on the share page
func (b *Broadcaster) BroadcastParticipantJoined(shareToken string, participant map[string]interface{}) {
	b.hub.SendToRoom(MeetingRoom(shareToken), MessageParticipantJoined, participant, "")
}

// BroadcastAvailabilitySubmitted announces that a participant's grid changed.
// Viewers re-fetch the share page to pick up the recomputed overlap.
func (b *Broadcaster) BroadcastAvailabilitySubmitted(shareToken, participantID, displayName string) {
	b.hub.SendToRoom(MeetingRoom(shareToken), MessageAvailabilitySubmitted, map[string]interface{}{
		"participantId": participantID,
		"name":          displayName,
	}, "")
}

// BroadcastMeetingConfirmed announces the final time to everyone on the page
func (b *Broadcaster) BroadcastMeetingConfirmed(shareToken string, meeting map[string]interface{}) {
	b.hub.SendToRoom(MeetingRoom(shareToken), MessageMeetingConfirmed, meeting, "")
}

// BroadcastMeetingCancelled announces cancellation to everyone on the page
func (b *Broadcaster) BroadcastMeetingCancelled(shareToken, meetingID string) {
	b.hub.SendToRoom(MeetingRoom(shareToken), MessageMeetingCancelled, map[string]interface{}{
		"meetingId": meetingID,
	}, "")
}

// NotifyOrganizer sends an event straight to the organizer's own
// connections, so their dashboard updates even when they are not watching
// the share page.
func (b *Broadcaster) NotifyOrganizer(organizerID string, msgType MessageType, payload map[string]interface{}) {
	b.hub.SendToUser(organizerID, msgType, payload)
}
