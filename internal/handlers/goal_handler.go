package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// GoalHandler handles financial goal endpoints.
type GoalHandler struct {
	goalService  services.GoalServicer
	auditService services.AuditServicer
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService services.GoalServicer, auditService services.AuditServicer) *GoalHandler {
	return &GoalHandler{goalService: goalService, auditService: auditService}
}

// CreateGoalRequest represents the request payload for creating a goal
type CreateGoalRequest struct {
	Name          string  `json:"name" binding:"required,max=100"`
	Target        int64   `json:"target" binding:"required,gt=0"`
	CurrentAmount int64   `json:"current_amount" binding:"gte=0"`
	Description   string  `json:"description" binding:"max=500"`
	TargetDate    *string `json:"target_date"`
	Priority      string  `json:"priority" binding:"omitempty,goal_priority"`
	Category      string  `json:"category" binding:"max=100"`
	IsCompleted   bool    `json:"is_completed"`
}

// UpdateGoalRequest represents the request payload for updating a goal
type UpdateGoalRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=100"`
	Target        *int64  `json:"target" binding:"omitempty,gt=0"`
	CurrentAmount *int64  `json:"current_amount" binding:"omitempty,gte=0"`
	Description   *string `json:"description" binding:"omitempty,max=500"`
	TargetDate    *string `json:"target_date"`
	Priority      *string `json:"priority" binding:"omitempty,goal_priority"`
	Category      *string `json:"category" binding:"omitempty,max=100"`
	IsCompleted   *bool   `json:"is_completed"`
}

// CreateGoal handles the creation of a new goal
// @Summary     Create a goal
// @Description Create a savings goal. A goal created at or above its target is completed immediately.
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGoalRequest true "Goal details"
// @Success     201 {object} services.GoalView "Goal created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /goals [post]
func (h *GoalHandler) CreateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	targetDate, err := parseOptionalDate(req.TargetDate, "target_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.CreateGoal(userID, services.GoalInput{
		Name:          req.Name,
		Target:        req.Target,
		CurrentAmount: req.CurrentAmount,
		Description:   req.Description,
		TargetDate:    targetDate,
		Priority:      models.GoalPriority(req.Priority),
		Category:      req.Category,
		IsCompleted:   req.IsCompleted,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_GOAL", "goal", goal.ID, c.ClientIP(),
		map[string]interface{}{"name": goal.Name, "target": goal.Target})

	c.JSON(http.StatusCreated, gin.H{"goal": goal})
}

// GetUserGoals handles listing goals
// @Summary     List goals
// @Description Open goals first, then by priority and target date
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[services.GoalView] "Paginated goals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /goals [get]
func (h *GoalHandler) GetUserGoals(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.goalService.GetUserGoals(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetGoalByID handles the retrieval of a single goal
// @Summary     Get goal by ID
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} services.GoalView
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [get]
func (h *GoalHandler) GetGoalByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	goal, err := h.goalService.GetGoalByID(userID, goalID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// UpdateGoal handles updating a goal
// @Summary     Update goal
// @Description Change goal fields. Reaching the target completes the goal and raises a goal_achieved notification.
// @Tags        goals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Goal ID"
// @Param       request body UpdateGoalRequest true "Fields to change"
// @Success     200 {object} services.GoalView "Updated goal"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [put]
func (h *GoalHandler) UpdateGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	targetDate, err := parseOptionalDate(req.TargetDate, "target_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	update := services.GoalUpdate{
		Name:          req.Name,
		Target:        req.Target,
		CurrentAmount: req.CurrentAmount,
		Description:   req.Description,
		TargetDate:    targetDate,
		Category:      req.Category,
		IsCompleted:   req.IsCompleted,
	}
	if req.Priority != nil {
		p := models.GoalPriority(*req.Priority)
		update.Priority = &p
	}

	goal, err := h.goalService.UpdateGoal(userID, goalID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_GOAL", "goal", goalID, c.ClientIP(),
		map[string]interface{}{"current_amount": goal.CurrentAmount, "is_completed": goal.IsCompleted})

	c.JSON(http.StatusOK, gin.H{"goal": goal})
}

// DeleteGoal handles deleting a goal
// @Summary     Delete goal
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Goal ID"
// @Success     200 {object} MessageResponse
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	goalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.goalService.DeleteGoal(userID, goalID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_GOAL", "goal", goalID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted successfully"})
}

// GetSummary handles goal statistics
// @Summary     Goal statistics
// @Description Counts, amounts, completion rate and priority distribution of the user's goals, with total wealth for comparison
// @Tags        goals
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.GoalSummary
// @Router      /goals/summary [get]
func (h *GoalHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.goalService.GetSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
