package handler

import (
	"net/http"

	"github.com/bitfantasy/nimo-oms/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	svc *service.InventoryService
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

func (h *InventoryHandler) List(c *gin.Context) {
	page, size := getPagination(c)
	items, total, err := h.svc.List(c.Query("warehouse_id"), c.Query("product_id"), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"items": items, "total": total, "page": page, "size": size}})
}

// Transactions 库存流水，可按产品或来源订单过滤
func (h *InventoryHandler) Transactions(c *gin.Context) {
	page, size := getPagination(c)
	items, total, err := h.svc.Transactions(c.Query("product_id"), c.Query("reference_id"), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"items": items, "total": total, "page": page, "size": size}})
}
