package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/middleware"
)

// consistencyHandler reconciles a customer's denormalized counters against a
// recomputation over their loans.
type consistencyHandler struct {
	consistencyService portssvc.ConsistencySvcFacade
}

func newConsistencyHandler(consistencyService portssvc.ConsistencySvcFacade) *consistencyHandler {
	return &consistencyHandler{consistencyService: consistencyService}
}

func (h *consistencyHandler) validateCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	customerID := c.Param("customerID")

	report, err := h.consistencyService.ValidateCustomer(c.Request.Context(), customerID)
	if err != nil {
		respondServiceError(c, logger, err, "validate customer counters")
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *consistencyHandler) repairCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	customerID := c.Param("customerID")

	staffUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	report, err := h.consistencyService.RepairCustomer(c.Request.Context(), customerID, staffUserID)
	if err != nil {
		respondServiceError(c, logger, err, "repair customer counters")
		return
	}

	if report.Fixed {
		logger.Info("Customer counters repaired",
			slog.String("customer_id", customerID),
			slog.Int("discrepancies", len(report.Discrepancies)))
	}
	c.JSON(http.StatusOK, report)
}

// registerConsistencyRoutes registers the counter reconciliation routes.
func registerConsistencyRoutes(rg *gin.RouterGroup, consistencyService portssvc.ConsistencySvcFacade) {
	h := newConsistencyHandler(consistencyService)

	customers := rg.Group("/customers/:customerID/consistency")
	{
		customers.GET("", h.validateCustomer)
		customers.POST("/repair", h.repairCustomer)
	}
}
