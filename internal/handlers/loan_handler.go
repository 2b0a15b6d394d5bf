package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// LoanHandler handles loans, their schedules and payments.
type LoanHandler struct {
	loanService  services.LoanServicer
	auditService services.AuditServicer
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanService services.LoanServicer, auditService services.AuditServicer) *LoanHandler {
	return &LoanHandler{loanService: loanService, auditService: auditService}
}

// CreateLoanRequest represents the request payload for creating a loan
type CreateLoanRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Balance     int64  `json:"balance" binding:"gte=0"`
	Payment     int64  `json:"payment" binding:"required,gt=0"`
	PaymentDate string `json:"payment_date" binding:"required"`
}

// UpdateLoanRequest represents the request payload for updating a loan
type UpdateLoanRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Balance     *int64  `json:"balance" binding:"omitempty,gte=0"`
	Payment     *int64  `json:"payment" binding:"omitempty,gt=0"`
	PaymentDate *string `json:"payment_date"`
}

// RecordPaymentRequest represents a loan repayment. A zero amount pays the regular installment.
type RecordPaymentRequest struct {
	Amount int64 `json:"amount" binding:"gte=0"`
}

// CreateLoan handles the creation of a new loan
// @Summary     Create a loan
// @Description Track a loan with its outstanding balance, monthly payment and next payment date
// @Tags        loans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateLoanRequest true "Loan details"
// @Success     201 {object} services.LoanView "Loan created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /loans [post]
func (h *LoanHandler) CreateLoan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payment_date, use YYYY-MM-DD"))
		return
	}

	loan, err := h.loanService.CreateLoan(userID, services.LoanInput{
		Name:        req.Name,
		Balance:     req.Balance,
		Payment:     req.Payment,
		PaymentDate: paymentDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_LOAN", "loan", loan.ID, c.ClientIP(),
		map[string]interface{}{"name": loan.Name, "balance": loan.Balance, "payment": loan.Payment})

	c.JSON(http.StatusCreated, gin.H{"loan": loan})
}

// GetUserLoans handles listing loans
// @Summary     List loans
// @Description Get a paginated list of loans ordered by the next payment date
// @Tags        loans
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[services.LoanView] "Paginated loans"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /loans [get]
func (h *LoanHandler) GetUserLoans(c *gin.Context) {
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

	result, err := h.loanService.GetUserLoans(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLoanByID handles the retrieval of a single loan
// @Summary     Get loan by ID
// @Tags        loans
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Loan ID"
// @Success     200 {object} services.LoanView "Loan details"
// @Failure     404 {object} ErrorResponse "Loan not found"
// @Router      /loans/{id} [get]
func (h *LoanHandler) GetLoanByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	loan, err := h.loanService.GetLoanByID(userID, loanID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"loan": loan})
}

// UpdateLoan handles updating a loan
// @Summary     Update loan
// @Tags        loans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Loan ID"
// @Param       request body UpdateLoanRequest true "Fields to change"
// @Success     200 {object} services.LoanView "Updated loan"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Loan not found"
// @Router      /loans/{id} [put]
func (h *LoanHandler) UpdateLoan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	paymentDate, err := parseOptionalDate(req.PaymentDate, "payment_date")
	if err != nil {
		respondWithError(c, err)
		return
	}

	loan, err := h.loanService.UpdateLoan(userID, loanID, services.LoanUpdate{
		Name:        req.Name,
		Balance:     req.Balance,
		Payment:     req.Payment,
		PaymentDate: paymentDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_LOAN", "loan", loanID, c.ClientIP(),
		map[string]interface{}{"balance": loan.Balance, "payment": loan.Payment})

	c.JSON(http.StatusOK, gin.H{"loan": loan})
}

// DeleteLoan handles deleting a loan
// @Summary     Delete loan
// @Tags        loans
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Loan ID"
// @Success     200 {object} MessageResponse "Loan deleted"
// @Failure     404 {object} ErrorResponse "Loan not found"
// @Router      /loans/{id} [delete]
func (h *LoanHandler) DeleteLoan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.loanService.DeleteLoan(userID, loanID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_LOAN", "loan", loanID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Loan deleted successfully"})
}

// GetSchedule handles the repayment schedule of a loan
// @Summary     Loan schedule
// @Description Remaining monthly installments starting at the next payment date; the last one carries the remainder
// @Tags        loans
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Loan ID"
// @Success     200 {array} finance.Installment "Installments"
// @Failure     404 {object} ErrorResponse "Loan not found"
// @Router      /loans/{id}/schedule [get]
func (h *LoanHandler) GetSchedule(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	schedule, err := h.loanService.GetSchedule(userID, loanID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

// RecordPayment handles a loan repayment
// @Summary     Record a payment
// @Description Reduce the balance by the amount (default the regular payment) and move the payment date one month ahead
// @Tags        loans
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string               true  "Loan ID"
// @Param       request body RecordPaymentRequest false "Payment amount"
// @Success     200 {object} services.LoanView "Updated loan"
// @Failure     400 {object} ErrorResponse "Invalid input or loan already paid off"
// @Failure     404 {object} ErrorResponse "Loan not found"
// @Router      /loans/{id}/payments [post]
func (h *LoanHandler) RecordPayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	loanID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RecordPaymentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	loan, err := h.loanService.RecordPayment(userID, loanID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "RECORD_LOAN_PAYMENT", "loan", loanID, c.ClientIP(),
		map[string]interface{}{"amount": req.Amount, "balance": loan.Balance})

	c.JSON(http.StatusOK, gin.H{"loan": loan})
}

// GetSummary handles loan totals
// @Summary     Loan totals
// @Tags        loans
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.LoanSummary
// @Router      /loans/summary [get]
func (h *LoanHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.loanService.GetSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
