package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/andresuchdata/supplyops/backend-go/internal/repository"
	"github.com/andresuchdata/supplyops/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ReplenishmentHandler struct {
	service *service.ReplenishmentService
}

func NewReplenishmentHandler(service *service.ReplenishmentService) *ReplenishmentHandler {
	return &ReplenishmentHandler{service: service}
}

// RunBatch triggers one replenishment batch run for the caller's scope.
func (h *ReplenishmentHandler) RunBatch(c *gin.Context) {
	actor := actorFrom(c)

	scope := strings.TrimSpace(c.Query("scope"))
	if scope == "" {
		scope = actor.OrgID
	}

	result, err := h.service.Run(c.Request.Context(), actor, scope)
	if err != nil {
		if errors.Is(err, domain.ErrScopeMismatch) {
			c.JSON(http.StatusForbidden, gin.H{"error": "scope does not match caller identity"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "batch run failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ReplenishmentHandler) parseFilter(c *gin.Context) repository.PlanFilter {
	filter := repository.PlanFilter{
		OrgID:    actorFrom(c).OrgID,
		Page:     1,
		PageSize: 50,
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}

	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil && size > 0 {
		filter.PageSize = size
	}

	filter.ItemIDs = splitParam(c.Query("item_ids"))
	filter.LocationIDs = splitParam(c.Query("location_ids"))
	filter.Priorities = splitParam(c.Query("priorities"))
	filter.Statuses = splitParam(c.Query("statuses"))

	return filter
}

func (h *ReplenishmentHandler) GetPlans(c *gin.Context) {
	filter := h.parseFilter(c)
	plans, total, err := h.service.ListPlans(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch plans", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plans": plans,
		"total": total,
	})
}

func (h *ReplenishmentHandler) GetSummary(c *gin.Context) {
	summaries, err := h.service.PlanSummary(c.Request.Context(), actorFrom(c).OrgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch summary", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summaries)
}
