package handlers

import (
	"net/http"

	"github.com/candidly/candidly-backend/internal/api/middleware"
	"github.com/candidly/candidly-backend/internal/models"
	"github.com/candidly/candidly-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Availability Handler
// ============================================

type AvailabilityHandler struct {
	availabilityService service.AvailabilityService
}

// Submit replaces a participant's availability grid. The caller identifies
// themselves with either an access token (guest respond link) or a
// participant ID backed by an authenticated session.
func (h *AvailabilityHandler) Submit(c *gin.Context) {
	var req models.SubmitAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.SubmitInput{
		AccessToken:   req.AccessToken,
		ParticipantID: req.ParticipantID,
		UserID:        middleware.GetUserID(c),
		Timezone:      req.Timezone,
	}
	for _, iv := range req.Intervals {
		input.Intervals = append(input.Intervals, service.IntervalInput{
			StartTime:   iv.StartTime,
			EndTime:     iv.EndTime,
			IsAvailable: iv.IsAvailable,
		})
	}

	participant, err := h.availabilityService.Submit(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toParticipantResponse(participant))
}

// GetForToken returns the rows previously submitted through an access token,
// so a returning respondent sees their own grid pre-filled.
func (h *AvailabilityHandler) GetForToken(participantSvc service.ParticipantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := participantSvc.GetByAccessToken(c.Request.Context(), c.Param("accessToken"))
		if err != nil {
			respondError(c, err)
			return
		}

		rows, err := h.availabilityService.GetForParticipant(c.Request.Context(), p.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		response := make([]models.AvailabilityResponse, len(rows))
		for i, a := range rows {
			response[i] = toAvailabilityResponse(a)
		}
		c.JSON(http.StatusOK, gin.H{
			"participant":  toParticipantResponse(p),
			"availability": response,
		})
	}
}
