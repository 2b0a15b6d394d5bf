package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// SavingsHandler handles savings account endpoints.
type SavingsHandler struct {
	savingsService services.SavingsServicer
	auditService   services.AuditServicer
}

// NewSavingsHandler creates a new SavingsHandler.
func NewSavingsHandler(savingsService services.SavingsServicer, auditService services.AuditServicer) *SavingsHandler {
	return &SavingsHandler{savingsService: savingsService, auditService: auditService}
}

// CreateSavingsRequest represents the request payload for opening a savings account
type CreateSavingsRequest struct {
	Name         string  `json:"name" binding:"required,max=100"`
	Balance      int64   `json:"balance" binding:"gte=0"`
	InterestRate float64 `json:"interest_rate" binding:"gte=0,lte=100"`
}

// UpdateSavingsRequest represents the request payload for updating a savings account
type UpdateSavingsRequest struct {
	Name         *string  `json:"name" binding:"omitempty,min=1,max=100"`
	Balance      *int64   `json:"balance" binding:"omitempty,gte=0"`
	InterestRate *float64 `json:"interest_rate" binding:"omitempty,gte=0,lte=100"`
}

// CreateAccount godoc
// @Summary     Open a savings account
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateSavingsRequest true "Account details"
// @Success     201 {object} models.SavingsAccount
// @Failure     400 {object} ErrorResponse
// @Router      /savings [post]
func (h *SavingsHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSavingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.savingsService.CreateAccount(userID, req.Name, req.Balance, req.InterestRate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_SAVINGS", "savings_account", account.ID, c.ClientIP(),
		map[string]interface{}{"name": account.Name, "balance": account.Balance, "interest_rate": account.InterestRate})

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetUserAccounts godoc
// @Summary     List savings accounts
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.SavingsAccount]
// @Router      /savings [get]
func (h *SavingsHandler) GetUserAccounts(c *gin.Context) {
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

	result, err := h.savingsService.GetUserAccounts(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccountByID godoc
// @Summary     Get savings account by ID
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} models.SavingsAccount
// @Failure     404 {object} ErrorResponse
// @Router      /savings/{id} [get]
func (h *SavingsHandler) GetAccountByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.savingsService.GetAccountByID(userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// UpdateAccount godoc
// @Summary     Update savings account
// @Tags        savings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true "Account ID"
// @Param       request body UpdateSavingsRequest true "Fields to change"
// @Success     200 {object} models.SavingsAccount
// @Failure     400 {object} ErrorResponse
// @Failure     404 {object} ErrorResponse
// @Router      /savings/{id} [put]
func (h *SavingsHandler) UpdateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSavingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	account, err := h.savingsService.UpdateAccount(userID, accountID, req.Name, req.Balance, req.InterestRate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_SAVINGS", "savings_account", accountID, c.ClientIP(),
		map[string]interface{}{"name": account.Name, "balance": account.Balance, "interest_rate": account.InterestRate})

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// DeleteAccount godoc
// @Summary     Close savings account
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} MessageResponse
// @Failure     404 {object} ErrorResponse
// @Router      /savings/{id} [delete]
func (h *SavingsHandler) DeleteAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.savingsService.DeleteAccount(userID, accountID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_SAVINGS", "savings_account", accountID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Savings account deleted successfully"})
}

// GetSummary godoc
// @Summary     Savings totals
// @Description Total balance, average rate and projected monthly interest. key_rate is present when the central bank integration answers.
// @Tags        savings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.SavingsSummary
// @Router      /savings/summary [get]
func (h *SavingsHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.savingsService.GetSummary(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
