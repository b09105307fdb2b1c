package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openbooks/ledger_posting_app/internal/apperrors"
	portssvc "github.com/openbooks/ledger_posting_app/internal/core/ports/services"
	"github.com/openbooks/ledger_posting_app/internal/dto"
	"github.com/openbooks/ledger_posting_app/internal/middleware"
)

// postingHandler handles HTTP requests for posting business transactions.
type postingHandler struct {
	postingService portssvc.PostingSvcFacade
}

func newPostingHandler(postingService portssvc.PostingSvcFacade) *postingHandler {
	return &postingHandler{postingService: postingService}
}

// postTransaction accepts one business event and posts its journal entries.
// A linkage failure still returns 201: the entries are durable, and the body
// reports linked=false so the caller can observe the pending back-reference.
func (h *postingHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for postTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, orgID, ok := callerIdentity(c, logger)
	if !ok {
		return
	}

	result, err := h.postingService.PostTransaction(c.Request.Context(), orgID, req, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrLinkage) && result != nil {
			logger.Warn("Transaction posted but linkage pending", slog.String("transaction_id", result.TransactionID))
			c.JSON(http.StatusCreated, result)
			return
		}
		respondWithError(c, logger, err)
		return
	}

	if result.AlreadyPosted {
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// reverseEntry posts a compensating entry for an already posted one.
func (h *postingHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	userID, orgID, ok := callerIdentity(c, logger)
	if !ok {
		return
	}

	reversal, err := h.postingService.ReverseEntry(c.Request.Context(), orgID, entryID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrLinkage) && reversal != nil {
			c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(reversal))
			return
		}
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(reversal))
}

// registerPostingRoutes registers transaction posting routes.
func registerPostingRoutes(group *gin.RouterGroup, postingService portssvc.PostingSvcFacade) {
	handler := newPostingHandler(postingService)

	transactions := group.Group("/transactions")
	{
		transactions.POST("", handler.postTransaction)
	}
	entries := group.Group("/entries")
	{
		entries.POST("/:entryID/reverse", handler.reverseEntry)
	}
}
