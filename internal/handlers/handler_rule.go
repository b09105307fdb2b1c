package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/openbooks/ledger_posting_app/internal/core/ports/services"
	"github.com/openbooks/ledger_posting_app/internal/dto"
	"github.com/openbooks/ledger_posting_app/internal/middleware"
)

// ruleHandler handles HTTP requests for account mapping rules.
type ruleHandler struct {
	ruleService portssvc.RuleSvcFacade
}

func newRuleHandler(ruleService portssvc.RuleSvcFacade) *ruleHandler {
	return &ruleHandler{ruleService: ruleService}
}

func (h *ruleHandler) createRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createRule", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	userID, orgID, ok := callerIdentity(c, logger)
	if !ok {
		return
	}

	rule, err := h.ruleService.CreateRule(c.Request.Context(), orgID, req, userID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToRuleResponse(*rule))
}

func (h *ruleHandler) listRules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	_, orgID, ok := callerIdentity(c, logger)
	if !ok {
		return
	}

	rules, err := h.ruleService.ListRules(c.Request.Context(), orgID)
	if err != nil {
		respondWithError(c, logger, err)
		return
	}

	responses := make([]dto.RuleResponse, len(rules))
	for i, rule := range rules {
		responses[i] = dto.ToRuleResponse(rule)
	}
	c.JSON(http.StatusOK, gin.H{"rules": responses})
}

// registerRuleRoutes registers mapping rule routes.
func registerRuleRoutes(group *gin.RouterGroup, ruleService portssvc.RuleSvcFacade) {
	handler := newRuleHandler(ruleService)

	rules := group.Group("/rules")
	{
		rules.POST("", handler.createRule)
		rules.GET("", handler.listRules)
	}
}
