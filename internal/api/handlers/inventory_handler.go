package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/andresuchdata/stockline/internal/domain"
	"github.com/andresuchdata/stockline/internal/repository"
	"github.com/andresuchdata/stockline/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type InventoryHandler struct {
	service *service.InventoryService
}

func NewInventoryHandler(service *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

type assignSupplierRequest struct {
	SupplierID int64 `json:"supplier_id" binding:"required,gt=0"`
}

type adjustStockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// RecomputePolicy handles POST /articles/:id/policy
func (h *InventoryHandler) RecomputePolicy(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	record, err := h.service.RecomputePolicy(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// GetPolicy handles GET /articles/:id/policy; ?history=true returns every record
func (h *InventoryHandler) GetPolicy(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	if history, _ := strconv.ParseBool(c.Query("history")); history {
		records, err := h.service.PolicyHistory(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		if records == nil {
			records = make([]domain.InventoryPolicyRecord, 0)
		}
		c.JSON(http.StatusOK, gin.H{"data": records})
		return
	}

	record, err := h.service.ActivePolicy(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *InventoryHandler) GetCGI(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	breakdown, err := h.service.ComputeCGI(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, breakdown)
}

func (h *InventoryHandler) GetDemand(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	forecast, err := h.service.DemandStatistics(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}

func (h *InventoryHandler) AssignDefaultSupplier(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	var req assignSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.service.AssignDefaultSupplier(c.Request.Context(), id, req.SupplierID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	article, err := h.service.AdjustStock(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *InventoryHandler) Discontinue(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	article, err := h.service.DiscontinueArticle(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

func (h *InventoryHandler) GetNeedsReorder(c *gin.Context) {
	articles, err := h.service.NeedsReorder(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": articles, "total": len(articles)})
}

func (h *InventoryHandler) GetBelowSafetyStock(c *gin.Context) {
	articles, err := h.service.BelowSafetyStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": articles, "total": len(articles)})
}

func articleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid article id"})
		return 0, false
	}
	return id, true
}

// respondError maps business-rule failures onto HTTP statuses
func respondError(c *gin.Context, err error) {
	if derr, ok := domain.AsError(err); ok {
		status := http.StatusUnprocessableEntity
		if derr.Kind == domain.KindNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": derr})
		return
	}

	if errors.Is(err, repository.ErrConcurrentModification) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
