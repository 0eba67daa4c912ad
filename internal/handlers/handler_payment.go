package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pawnsoft/pawn_ledger_app/internal/core/domain"
	portssvc "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/dto"
	"github.com/pawnsoft/pawn_ledger_app/internal/middleware"
)

// paymentHandler handles HTTP requests for taking and validating payments.
type paymentHandler struct {
	paymentService portssvc.PaymentSvcFacade
}

func newPaymentHandler(paymentService portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{paymentService: paymentService}
}

func (h *paymentHandler) validatePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("loanID")

	req := dto.ProcessPaymentRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	breakdown, err := h.paymentService.ValidatePaymentRequest(c.Request.Context(), loanID, domain.Money(req.Amount))
	if err != nil {
		respondServiceError(c, logger, err, "validate payment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "balance": dto.ToBalanceResponse(breakdown)})
}

func (h *paymentHandler) processPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.ProcessPaymentRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for ProcessPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	req.LoanID = c.Param("loanID")

	staffUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, statusAfter, err := h.paymentService.ProcessPayment(c.Request.Context(), req, staffUserID)
	if err != nil {
		respondServiceError(c, logger, err, "process payment")
		return
	}

	logger.Info("Payment processed",
		slog.String("payment_id", payment.PaymentID),
		slog.String("loan_id", payment.LoanID),
		slog.Int64("amount", payment.PaymentAmount.Int64()),
		slog.String("loan_status", string(statusAfter)))
	c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment, statusAfter))
}

func (h *paymentHandler) processDiscountedPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.DiscountPaymentRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for discounted payment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	req.LoanID = c.Param("loanID")

	staffUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, statusAfter, err := h.paymentService.ProcessPaymentWithDiscount(c.Request.Context(), req, staffUserID)
	if err != nil {
		respondServiceError(c, logger, err, "process discounted payment")
		return
	}

	logger.Info("Discounted payment processed",
		slog.String("payment_id", payment.PaymentID),
		slog.String("loan_id", payment.LoanID),
		slog.Int64("discount", payment.DiscountAmount.Int64()))
	c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment, statusAfter))
}

// registerPaymentRoutes registers payment routes under the loan resource.
func registerPaymentRoutes(rg *gin.RouterGroup, paymentService portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(paymentService)

	loans := rg.Group("/loans/:loanID/payments")
	{
		loans.POST("", h.processPayment)
		loans.POST("/validate", h.validatePayment)
		loans.POST("/discounted", h.processDiscountedPayment)
	}
}
