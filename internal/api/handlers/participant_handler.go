package handlers

import (
	"errors"
	"net/http"

	"github.com/candidly/candidly-backend/internal/api/middleware"
	"github.com/candidly/candidly-backend/internal/models"
	"github.com/candidly/candidly-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Participant Handler
// ============================================

type ParticipantHandler struct {
	participantService service.ParticipantService
}

// Invite adds invitees to a meeting. Organizer only.
func (h *ParticipantHandler) Invite(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.InviteParticipantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invitees := make([]service.Invitee, len(req.Invitees))
	for i, inv := range req.Invitees {
		invitees[i] = service.Invitee{Name: inv.Name, Email: inv.Email}
	}

	created, err := h.participantService.Invite(c.Request.Context(), userID, c.Param("id"), invitees)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]models.ParticipantResponse, len(created))
	for i, p := range created {
		response[i] = toParticipantResponse(p)
	}
	c.JSON(http.StatusCreated, response)
}

// Join registers a guest from the public share page. Joining again with the
// same email is a conflict, but the response still carries the original
// participant and access token so the respond link stays recoverable.
func (h *ParticipantHandler) Join(c *gin.Context) {
	var req models.JoinMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.participantService.JoinAsGuest(
		c.Request.Context(), c.Param("shareToken"), req.Name, req.Email, req.Timezone,
	)
	if errors.Is(err, service.ErrAlreadyJoined) {
		c.JSON(http.StatusConflict, gin.H{
			"error":       "already joined",
			"participant": toParticipantResponse(p),
			"accessToken": p.AccessToken,
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.JoinMeetingResponse{
		Participant: toParticipantResponse(p),
		AccessToken: p.AccessToken,
	})
}

// GetByAccessToken resolves a respond link to its participant
func (h *ParticipantHandler) GetByAccessToken(c *gin.Context) {
	p, err := h.participantService.GetByAccessToken(c.Request.Context(), c.Param("accessToken"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toParticipantResponse(p))
}

// SendReminders emails every participant who has not responded yet
func (h *ParticipantHandler) SendReminders(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	sent, err := h.participantService.SendReminders(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"remindersSent": sent})
}
