package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/openbooks/ledger_posting_app/internal/core/ports/services"
	"github.com/openbooks/ledger_posting_app/internal/dto"
	"github.com/openbooks/ledger_posting_app/internal/middleware"
)

// journalHandler handles HTTP reads of posted journal data.
type journalHandler struct {
	postingService portssvc.PostingSvcFacade
}

func newJournalHandler(postingService portssvc.PostingSvcFacade) *journalHandler {
	return &journalHandler{postingService: postingService}
}

// getEntry retrieves a journal entry with its lines.
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	_, orgID, ok := callerIdentity(c, logger)
	if !ok {
		return
	}

	entry, err := h.postingService.GetEntryByID(c.Request.Context(), orgID, entryID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// listEntries retrieves a token-paginated page of the organization's entries.
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for listEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	_, orgID, ok := callerIdentity(c, logger)
	if !ok {
		return
	}

	page, err := h.postingService.ListEntries(c.Request.Context(), orgID, params)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// registerJournalRoutes registers journal read routes.
func registerJournalRoutes(group *gin.RouterGroup, postingService portssvc.PostingSvcFacade) {
	handler := newJournalHandler(postingService)

	entries := group.Group("/entries")
	{
		entries.GET("", handler.listEntries)
		entries.GET("/:entryID", handler.getEntry)
	}
}
