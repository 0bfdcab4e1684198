package handlers

import (
	"fmt"
	"net/http"

	"github.com/candidly/candidly-backend/internal/api/middleware"
	"github.com/candidly/candidly-backend/internal/models"
	"github.com/candidly/candidly-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Meeting Handler
// ============================================

type MeetingHandler struct {
	meetingService service.MeetingService
}

func (h *MeetingHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.CreateMeetingInput{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		DurationMinutes: req.DurationMinutes,
		MeetingType:     req.MeetingType,
		Timezone:        req.Timezone,
		ProposedTime:    req.ProposedTime,
		DateRangeStart:  req.DateRangeStart,
		DateRangeEnd:    req.DateRangeEnd,
	}
	for _, inv := range req.Invitees {
		input.Invitees = append(input.Invitees, service.Invitee{Name: inv.Name, Email: inv.Email})
	}

	detail, err := h.meetingService.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMeetingDetailResponse(detail))
}

func (h *MeetingHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	meetings, err := h.meetingService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]models.MeetingResponse, len(meetings))
	for i, m := range meetings {
		response[i] = toMeetingResponse(m)
	}
	c.JSON(http.StatusOK, response)
}

func (h *MeetingHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	detail, err := h.meetingService.GetDetail(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMeetingDetailResponse(detail))
}

// GetShareView serves the public share page payload, heatmap included
func (h *MeetingHandler) GetShareView(c *gin.Context) {
	view, err := h.meetingService.GetShareView(c.Request.Context(), c.Param("shareToken"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"meeting":      toMeetingResponse(view.Meeting),
		"slots":        view.Slots,
		"participants": view.Participants,
		"heatmap":      view.Heatmap,
	})
}

func (h *MeetingHandler) Confirm(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.ConfirmMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meeting, err := h.meetingService.Confirm(c.Request.Context(), userID, c.Param("id"), req.ConfirmedTime)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMeetingResponse(meeting))
}

func (h *MeetingHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	meeting, err := h.meetingService.Cancel(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMeetingResponse(meeting))
}

// ExportICS downloads the confirmed meeting as a calendar file
func (h *MeetingHandler) ExportICS(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	data, filename, err := h.meetingService.ExportICS(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}
