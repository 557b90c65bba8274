package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/andresuchdata/supplyops/backend-go/internal/domain"
	"github.com/andresuchdata/supplyops/backend-go/internal/repository"
	"github.com/andresuchdata/supplyops/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ExceptionHandler struct {
	service *service.ExceptionService
}

func NewExceptionHandler(service *service.ExceptionService) *ExceptionHandler {
	return &ExceptionHandler{service: service}
}

type costLineRequest struct {
	CostType      string          `json:"cost_type" binding:"required"`
	PlannedAmount decimal.Decimal `json:"planned_amount"`
	ActualAmount  decimal.Decimal `json:"actual_amount"`
}

func shipmentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shipment id"})
		return 0, false
	}
	return id, true
}

// EvaluateShipment runs every exception rule against one shipment.
func (h *ExceptionHandler) EvaluateShipment(c *gin.Context) {
	id, ok := shipmentID(c)
	if !ok {
		return
	}

	result, err := h.service.EvaluateShipment(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.writeError(c, err, "evaluation failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

// RecordCost upserts a cost line and reruns the shipment-level variance
// check.
func (h *ExceptionHandler) RecordCost(c *gin.Context) {
	id, ok := shipmentID(c)
	if !ok {
		return
	}

	var req costLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cost payload", "details": err.Error()})
		return
	}

	line := domain.CostLine{
		CostType:      req.CostType,
		PlannedAmount: req.PlannedAmount,
		ActualAmount:  req.ActualAmount,
	}

	result, err := h.service.RecordCost(c.Request.Context(), actorFrom(c), id, line)
	if err != nil {
		h.writeError(c, err, "cost update failed")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ExceptionHandler) GetExceptions(c *gin.Context) {
	filter := repository.ExceptionFilter{
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
	if raw := c.Query("shipment_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			filter.ShipmentID = &id
		}
	}
	filter.Types = splitParam(c.Query("types"))
	filter.OnlyOpen = c.DefaultQuery("open", "false") == "true"

	exceptions, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch exceptions", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"exceptions": exceptions,
		"total":      total,
	})
}

// ResolveException closes one exception.
func (h *ExceptionHandler) ResolveException(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exception id"})
		return
	}

	resolved, err := h.service.Resolve(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		h.writeError(c, err, "resolve failed")
		return
	}

	c.JSON(http.StatusOK, resolved)
}

func (h *ExceptionHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrShipmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "shipment not found"})
	case errors.Is(err, domain.ErrExceptionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "exception not found"})
	case errors.Is(err, domain.ErrScopeMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": "scope does not match caller identity"})
	case errors.Is(err, domain.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "exception already resolved"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback, "details": err.Error()})
	}
}
