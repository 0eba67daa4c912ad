package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/pawnsoft/pawn_ledger_app/internal/core/ports/services"
	"github.com/pawnsoft/pawn_ledger_app/internal/dto"
	"github.com/pawnsoft/pawn_ledger_app/internal/middleware"
)

// auditHandler serves the read-only audit trail and the one-time legacy
// notes migration.
type auditHandler struct {
	auditService portssvc.AuditSvcFacade
}

func newAuditHandler(auditService portssvc.AuditSvcFacade) *auditHandler {
	return &auditHandler{auditService: auditService}
}

func (h *auditHandler) getAuditTrail(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("loanID")

	entries, err := h.auditService.GetAuditTrail(c.Request.Context(), loanID)
	if err != nil {
		respondServiceError(c, logger, err, "retrieve audit trail")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loanID":  loanID,
		"entries": dto.ToAuditEntryResponses(entries),
	})
}

func (h *auditHandler) migrateLegacyNotes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("loanID")

	staffUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.auditService.MigrateLegacyNotes(c.Request.Context(), loanID, staffUserID)
	if err != nil {
		respondServiceError(c, logger, err, "migrate legacy notes")
		return
	}

	logger.Info("Legacy notes migrated",
		slog.String("loan_id", loanID),
		slog.Int("entries_created", result.EntriesCreated),
		slog.Int("notes_carried", result.NotesCarried))
	c.JSON(http.StatusOK, result)
}

// registerAuditRoutes registers audit trail routes under the loan resource.
func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvcFacade) {
	h := newAuditHandler(auditService)

	rg.GET("/loans/:loanID/audit", h.getAuditTrail)
	rg.POST("/loans/:loanID/audit/migrate-notes", h.migrateLegacyNotes)
}
