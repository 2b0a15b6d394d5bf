package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/logger"
	"fintrack/internal/services"
)

// ReminderHandler exposes the loan reminder scan to internal callers.
type ReminderHandler struct {
	reminderService services.ReminderServicer
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminderService services.ReminderServicer) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

// RunReminders godoc
// @Summary     Run payment reminders
// @Description Scan every loan and raise due or overdue reminders not yet sent today
// @Tags        internal
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} map[string]int
// @Failure     401 {object} ErrorResponse
// @Router      /internal/reminders/run [post]
func (h *ReminderHandler) RunReminders(c *gin.Context) {
	reminded, err := h.reminderService.RunReminders(time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	logger.Get().Infow("reminders triggered", "reminded", reminded, "client_ip", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"reminded": reminded})
}
