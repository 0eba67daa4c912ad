package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/dto"
	"github.com/pawnsoft/pawn_ledger_app/internal/middleware"
)

// loanHandler handles HTTP requests for the loan lifecycle and balance reads.
type loanHandler struct {
	loanService    portssvc.LoanSvcFacade
	balanceService portssvc.BalanceSvcFacade
}

func newLoanHandler(loanService portssvc.LoanSvcFacade, balanceService portssvc.BalanceSvcFacade) *loanHandler {
	return &loanHandler{
		loanService:    loanService,
		balanceService: balanceService,
	}
}

func (h *loanHandler) createLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	createReq := dto.CreateLoanRequest{}
	if err := c.ShouldBindJSON(&createReq); err != nil {
		logger.Error("Failed to bind JSON for CreateLoan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	staffUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	loan, err := h.loanService.CreateLoan(c.Request.Context(), createReq, staffUserID)
	if err != nil {
		respondServiceError(c, logger, err, "create loan")
		return
	}

	logger.Info("Loan created", slog.String("loan_id", loan.LoanID), slog.String("display_id", loan.DisplayID))
	c.JSON(http.StatusCreated, dto.ToLoanResponse(loan))
}

func (h *loanHandler) getLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("loanID")
	includeAudit := c.Query("includeAudit") == "true"

	loan, err := h.loanService.GetLoanByID(c.Request.Context(), loanID, includeAudit)
	if err != nil {
		respondServiceError(c, logger, err, "retrieve loan")
		return
	}

	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

func (h *loanHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("loanID")

	var asOf *time.Time
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be RFC3339"})
			return
		}
		asOf = &parsed
	}

	breakdown, err := h.balanceService.CalculateBalance(c.Request.Context(), loanID, asOf)
	if err != nil {
		respondServiceError(c, logger, err, "calculate balance")
		return
	}

	c.JSON(http.StatusOK, dto.ToBalanceResponse(breakdown))
}

func (h *loanHandler) changeStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.ChangeStatusRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	req.LoanID = c.Param("loanID")

	staffUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	loan, err := h.loanService.ChangeStatus(c.Request.Context(), req, staffUserID)
	if err != nil {
		respondServiceError(c, logger, err, "change loan status")
		return
	}

	logger.Info("Loan status changed", slog.String("loan_id", loan.LoanID), slog.String("status", string(loan.Status)))
	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

func (h *loanHandler) setOverdueFee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.SetOverdueFeeRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	req.LoanID = c.Param("loanID")

	staffUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	loan, err := h.loanService.SetOverdueFee(c.Request.Context(), req, staffUserID)
	if err != nil {
		respondServiceError(c, logger, err, "set overdue fee")
		return
	}

	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

func (h *loanHandler) clearOverdueFee(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("loanID")

	staffUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	loan, err := h.loanService.ClearOverdueFee(c.Request.Context(), loanID, staffUserID)
	if err != nil {
		respondServiceError(c, logger, err, "clear overdue fee")
		return
	}

	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

func (h *loanHandler) addManualNote(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.AddManualNoteRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	req.LoanID = c.Param("loanID")

	staffUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	loan, err := h.loanService.AddManualNote(c.Request.Context(), req, staffUserID)
	if err != nil {
		respondServiceError(c, logger, err, "add manual note")
		return
	}

	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

func (h *loanHandler) clearManualNotes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("loanID")

	staffUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	loan, err := h.loanService.ClearManualNotes(c.Request.Context(), loanID, staffUserID)
	if err != nil {
		respondServiceError(c, logger, err, "clear manual notes")
		return
	}

	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// registerLoanRoutes registers loan lifecycle and balance routes.
func registerLoanRoutes(rg *gin.RouterGroup, loanService portssvc.LoanSvcFacade, balanceService portssvc.BalanceSvcFacade) {
	h := newLoanHandler(loanService, balanceService)

	loans := rg.Group("/loans")
	{
		loans.POST("", h.createLoan)
		loans.GET("/:loanID", h.getLoan)
		loans.GET("/:loanID/balance", h.getBalance)
		loans.PUT("/:loanID/status", h.changeStatus)
		loans.PUT("/:loanID/overdue-fee", h.setOverdueFee)
		loans.DELETE("/:loanID/overdue-fee", h.clearOverdueFee)
		loans.POST("/:loanID/notes", h.addManualNote)
		loans.DELETE("/:loanID/notes", h.clearManualNotes)
	}
}
