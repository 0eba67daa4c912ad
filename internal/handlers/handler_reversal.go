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

// reversalHandler handles the same-day undo surface: payment voids, extension
// cancels, and the daily report. The service enforces the admin PIN, the
// reversal window, and the per-loan daily cap.
type reversalHandler struct {
	reversalService portssvc.ReversalSvcFacade
}

func newReversalHandler(reversalService portssvc.ReversalSvcFacade) *reversalHandler {
	return &reversalHandler{reversalService: reversalService}
}

func (h *reversalHandler) reversePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.ReversePaymentRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for ReversePayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	req.PaymentID = c.Param("paymentID")

	staffUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	payment, err := h.reversalService.ReversePayment(c.Request.Context(), req, staffUserID)
	if err != nil {
		respondServiceError(c, logger, err, "reverse payment")
		return
	}

	logger.Info("Payment reversed",
		slog.String("payment_id", payment.PaymentID),
		slog.String("loan_id", payment.LoanID),
		slog.String("reversed_by", staffUserID))
	c.JSON(http.StatusOK, dto.ToPaymentResponse(payment, payment.StatusBefore))
}

func (h *reversalHandler) cancelExtension(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.CancelExtensionRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for CancelExtension", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	req.ExtensionID = c.Param("extensionID")

	staffUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	extension, err := h.reversalService.CancelExtension(c.Request.Context(), req, staffUserID)
	if err != nil {
		respondServiceError(c, logger, err, "cancel extension")
		return
	}

	logger.Info("Extension cancelled",
		slog.String("extension_id", extension.ExtensionID),
		slog.String("loan_id", extension.LoanID),
		slog.String("cancelled_by", staffUserID))
	c.JSON(http.StatusOK, dto.ToExtensionResponse(extension))
}

func (h *reversalHandler) getReversalCount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("loanID")

	count, err := h.reversalService.GetTransactionReversalCount(c.Request.Context(), loanID, time.Now().UTC())
	if err != nil {
		respondServiceError(c, logger, err, "count reversals")
		return
	}

	c.JSON(http.StatusOK, count)
}

func (h *reversalHandler) getDailyReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	day := time.Now().UTC()
	if raw := c.Query("day"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "day must be YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	report, err := h.reversalService.GetDailyReversalReport(c.Request.Context(), day)
	if err != nil {
		respondServiceError(c, logger, err, "build reversal report")
		return
	}

	c.JSON(http.StatusOK, report)
}

// registerReversalRoutes registers the undo surface.
func registerReversalRoutes(rg *gin.RouterGroup, reversalService portssvc.ReversalSvcFacade) {
	h := newReversalHandler(reversalService)

	rg.POST("/payments/:paymentID/void", h.reversePayment)
	rg.POST("/extensions/:extensionID/cancel", h.cancelExtension)
	rg.GET("/loans/:loanID/reversals/count", h.getReversalCount)
	rg.GET("/reversals", h.getDailyReport)
}
