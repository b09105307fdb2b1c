package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openbooks/ledger_posting_app/internal/apperrors"
	"github.com/openbooks/ledger_posting_app/internal/middleware"
)

// respondWithError translates service errors into HTTP responses. Typed
// errors are matched by their sentinel so handlers never inspect messages.
func respondWithError(c *gin.Context, logger *slog.Logger, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "violations": verr.Violations})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrMappingNotFound), errors.Is(err, apperrors.ErrUnknownAccount):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrTimeout):
		logger.Error("Request timed out downstream", slog.String("error", err.Error()))
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "operation timed out"})
	default:
		logger.Error("Unhandled service error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// callerIdentity pulls the authenticated user and organization from the
// request context. A missing identity aborts with 401.
func callerIdentity(c *gin.Context, logger *slog.Logger) (userID, orgID string, ok bool) {
	userID, okUser := middleware.GetUserIDFromContext(c)
	orgID, okOrg := middleware.GetOrgIDFromContext(c)
	if !okUser || !okOrg {
		logger.Error("Caller identity missing from context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", false
	}
	return userID, orgID, true
}
