package handlers

import (
	"net/http"

	"github.com/candidly/candidly-backend/internal/models"
	"github.com/candidly/candidly-backend/internal/schedule"
	"github.com/gin-gonic/gin"
)

// ============================================
// Timezone Handler
// ============================================

type TimezoneHandler struct{}

// List returns the curated timezone selector options. Offsets are computed
// at request time so the list follows DST.
func (h *TimezoneHandler) List(c *gin.Context) {
	options := schedule.Options()
	response := make([]models.TimezoneOptionResponse, len(options))
	for i, opt := range options {
		response[i] = models.TimezoneOptionResponse{
			Zone:   opt.Value,
			City:   opt.City,
			Offset: opt.Offset,
			Group:  opt.Region,
		}
	}
	c.JSON(http.StatusOK, response)
}
