package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/dto"
	"github.com/pawnsoft/pawn_ledger_app/internal/middleware"
)

// extensionHandler handles HTTP requests for maturity extensions.
type extensionHandler struct {
	extensionService portssvc.ExtensionSvcFacade
}

func newExtensionHandler(extensionService portssvc.ExtensionSvcFacade) *extensionHandler {
	return &extensionHandler{extensionService: extensionService}
}

func (h *extensionHandler) checkEligibility(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("loanID")

	months, err := strconv.Atoi(c.DefaultQuery("months", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "months must be an integer"})
		return
	}

	if err := h.extensionService.CheckExtensionEligibility(c.Request.Context(), loanID, months); err != nil {
		respondServiceError(c, logger, err, "check extension eligibility")
		return
	}

	c.JSON(http.StatusOK, gin.H{"eligible": true, "months": months})
}

func (h *extensionHandler) processExtension(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	req := dto.ProcessExtensionRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for ProcessExtension", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	req.LoanID = c.Param("loanID")

	staffUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	extension, err := h.extensionService.ProcessExtension(c.Request.Context(), req, staffUserID)
	if err != nil {
		respondServiceError(c, logger, err, "process extension")
		return
	}

	logger.Info("Extension processed",
		slog.String("extension_id", extension.ExtensionID),
		slog.String("loan_id", extension.LoanID),
		slog.Int("months", extension.ExtensionMonths))
	c.JSON(http.StatusCreated, dto.ToExtensionResponse(extension))
}

// registerExtensionRoutes registers extension routes under the loan resource.
func registerExtensionRoutes(rg *gin.RouterGroup, extensionService portssvc.ExtensionSvcFacade) {
	h := newExtensionHandler(extensionService)

	extensions := rg.Group("/loans/:loanID/extensions")
	{
		extensions.POST("", h.processExtension)
		extensions.GET("/eligibility", h.checkEligibility)
	}
}
