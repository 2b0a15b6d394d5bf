package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/finance"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/services"
)

// OperationHandler handles income and expense operations.
type OperationHandler struct {
	operationService services.OperationServicer
	auditService     services.AuditServicer
}

// NewOperationHandler creates a new OperationHandler.
func NewOperationHandler(operationService services.OperationServicer, auditService services.AuditServicer) *OperationHandler {
	return &OperationHandler{operationService: operationService, auditService: auditService}
}

// OperationRequest represents the request payload for creating or replacing an operation
type OperationRequest struct {
	CategoryID  string `json:"category_id" binding:"required,uuid"`
	Type        string `json:"type" binding:"required,operation_type"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Date        string `json:"date"`
	Description string `json:"description" binding:"max=500"`
	Tags        string `json:"tags" binding:"max=255"`
}

// OperationQuery holds the list, summary and export filters
type OperationQuery struct {
	From       string `form:"from"`
	To         string `form:"to"`
	CategoryID string `form:"category_id" binding:"omitempty,uuid"`
	Type       string `form:"type" binding:"omitempty,operation_type"`
	Query      string `form:"q"`
	Tags       string `form:"tags"`
}

func (r *OperationRequest) toInput() (services.OperationInput, error) {
	in := services.OperationInput{
		CategoryID:  r.CategoryID,
		Type:        models.OperationType(r.Type),
		Amount:      r.Amount,
		Description: r.Description,
		Tags:        r.Tags,
	}
	if r.Date != "" {
		date, err := parseDate(r.Date)
		if err != nil {
			return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date, use YYYY-MM-DD")
		}
		in.Date = date
	}
	return in, nil
}

// bindOperationFilter reads the shared operation filters from the query string.
func bindOperationFilter(c *gin.Context) (services.OperationFilter, error) {
	var q OperationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return services.OperationFilter{}, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	from, err := parseOptionalDate(&q.From, "from")
	if err != nil {
		return services.OperationFilter{}, err
	}
	to, err := parseOptionalDate(&q.To, "to")
	if err != nil {
		return services.OperationFilter{}, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return services.OperationFilter{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must not be before from")
	}

	return services.OperationFilter{
		From:       from,
		To:         to,
		CategoryID: q.CategoryID,
		Type:       models.OperationType(q.Type),
		Query:      q.Query,
		Tags:       q.Tags,
	}, nil
}

// CreateOperation handles recording a new operation
// @Summary     Create an operation
// @Description Record an income or expense. The category balance moves by the signed amount.
// @Tags        operations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body OperationRequest true "Operation details"
// @Success     201 {object} models.Operation "Operation created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /operations [post]
func (h *OperationHandler) CreateOperation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req OperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	op, err := h.operationService.CreateOperation(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_OPERATION", "operation", op.ID, c.ClientIP(),
		map[string]interface{}{"category_id": op.CategoryID, "type": op.Type, "amount": op.Amount})

	c.JSON(http.StatusCreated, gin.H{"operation": op})
}

// GetUserOperations handles listing operations
// @Summary     List operations
// @Description Get a paginated, filtered list of operations, newest date first
// @Tags        operations
// @Produce     json
// @Security    BearerAuth
// @Param       from        query string false "From date (YYYY-MM-DD, inclusive)"
// @Param       to          query string false "To date (YYYY-MM-DD, inclusive)"
// @Param       category_id query string false "Category ID"
// @Param       type        query string false "income or expense"
// @Param       q           query string false "Description substring"
// @Param       tags        query string false "Tags substring"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Operation] "Paginated operations"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /operations [get]
func (h *OperationHandler) GetUserOperations(c *gin.Context) {
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
	filter, err := bindOperationFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.operationService.GetUserOperations(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOperationByID handles the retrieval of a single operation
// @Summary     Get operation by ID
// @Tags        operations
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Operation ID"
// @Success     200 {object} models.Operation "Operation details"
// @Failure     400 {object} ErrorResponse "Invalid operation ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Operation not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /operations/{id} [get]
func (h *OperationHandler) GetOperationByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	operationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	op, err := h.operationService.GetOperationByID(userID, operationID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"operation": op})
}

// UpdateOperation handles replacing an operation
// @Summary     Update operation
// @Description Replace every field of an operation. The old effect is reversed and the new one applied.
// @Tags        operations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string           true "Operation ID"
// @Param       request body OperationRequest true "Operation details"
// @Success     200 {object} models.Operation "Updated operation"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Operation or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /operations/{id} [put]
func (h *OperationHandler) UpdateOperation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	operationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req OperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	in, err := req.toInput()
	if err != nil {
		respondWithError(c, err)
		return
	}

	op, err := h.operationService.UpdateOperation(userID, operationID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_OPERATION", "operation", operationID, c.ClientIP(),
		map[string]interface{}{"category_id": op.CategoryID, "type": op.Type, "amount": op.Amount})

	c.JSON(http.StatusOK, gin.H{"operation": op})
}

// DeleteOperation handles deleting an operation
// @Summary     Delete operation
// @Description Delete an operation and reverse its effect on the category balance
// @Tags        operations
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Operation ID"
// @Success     200 {object} MessageResponse "Operation deleted"
// @Failure     400 {object} ErrorResponse "Invalid operation ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Operation not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /operations/{id} [delete]
func (h *OperationHandler) DeleteOperation(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	operationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.operationService.DeleteOperation(userID, operationID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_OPERATION", "operation", operationID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Operation deleted successfully"})
}

// GetSummary handles the totals of filtered operations
// @Summary     Operation summary
// @Description Income, expenses, balance and count of the operations matched by the filters
// @Tags        operations
// @Produce     json
// @Security    BearerAuth
// @Param       from        query string false "From date (YYYY-MM-DD, inclusive)"
// @Param       to          query string false "To date (YYYY-MM-DD, inclusive)"
// @Param       category_id query string false "Category ID"
// @Param       type        query string false "income or expense"
// @Success     200 {object} services.OperationSummary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /operations/summary [get]
func (h *OperationHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := bindOperationFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.operationService.GetSummary(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ExportOperations handles the CSV report
// @Summary     Export operations
// @Description Download the operations matched by the filters as CSV (date,type,category,amount,description,tags)
// @Tags        operations
// @Produce     text/csv
// @Security    BearerAuth
// @Param       from        query string false "From date (YYYY-MM-DD, inclusive)"
// @Param       to          query string false "To date (YYYY-MM-DD, inclusive)"
// @Param       category_id query string false "Category ID"
// @Param       type        query string false "income or expense"
// @Success     200 {file} file "CSV report"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /operations/export [get]
func (h *OperationHandler) ExportOperations(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := bindOperationFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ops, err := h.operationService.ExportOperations(userID, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filename := fmt.Sprintf("operations-%s.csv", time.Now().UTC().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	if err := writeOperationsCSV(csv.NewWriter(c.Writer), ops); err != nil {
		// Headers are already written.
		logger.Get().Errorw("failed to write operations export", "user_id", userID, "error", err)
	}
}

func writeOperationsCSV(w *csv.Writer, ops []models.Operation) error {
	if err := w.Write([]string{"date", "type", "category", "amount", "description", "tags"}); err != nil {
		return err
	}
	for i := range ops {
		op := &ops[i]
		category := ""
		if op.Category != nil {
			category = op.Category.Name
		}
		record := []string{
			op.Date.Format(dateLayout),
			string(op.Type),
			csvText(category),
			finance.Rubles(op.Amount),
			csvText(op.Description),
			csvText(op.Tags),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// csvText quotes free text that a spreadsheet would evaluate as a formula.
func csvText(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}
