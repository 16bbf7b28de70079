package handler

import (
	"net/http"
	"strings"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"github.com/bitfantasy/nimo-oms/internal/erp/repository"
	"github.com/bitfantasy/nimo-oms/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	order, err := h.svc.CreateOrder(req, getUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10004, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": order})
}

func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": "订单不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": order})
}

func (h *OrderHandler) List(c *gin.Context) {
	page, size := getPagination(c)
	params := repository.OrderListParams{
		Kind:    entity.OrderKind(c.Query("kind")),
		Status:  entity.OrderStatus(c.Query("status")),
		Keyword: c.Query("keyword"),
		Page:    page,
		Size:    size,
	}
	orders, total, err := h.svc.List(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"items": orders, "total": total, "page": page, "size": size}})
}

// Transition 执行状态流转，目标状态和理由从请求体取
func (h *OrderHandler) Transition(c *gin.Context) {
	var req struct {
		Target string `json:"target" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	target := entity.OrderStatus(strings.ToUpper(req.Target))
	order, err := h.svc.Transition(c.Param("id"), target, getUserID(c), req.Reason)
	if err != nil {
		orderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": order})
}

// SetQuantity 记录行的发货/收货数量
func (h *OrderHandler) SetQuantity(c *gin.Context) {
	var req struct {
		Field    string  `json:"field" binding:"required,oneof=shipped received"`
		Quantity float64 `json:"quantity" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	order, err := h.svc.SetLineQuantity(c.Param("id"), c.Param("lineId"), req.Field, req.Quantity)
	if err != nil {
		orderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": order})
}

// SaveBatches 整体保存某行某模式的批次，合计不符会被拦截
func (h *OrderHandler) SaveBatches(c *gin.Context) {
	var req struct {
		Mode    string               `json:"mode" binding:"required,oneof=ship receive"`
		Batches []service.BatchInput `json:"batches"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	order, err := h.svc.SaveLineBatches(c.Param("id"), c.Param("lineId"), entity.ReconcileMode(req.Mode), req.Batches)
	if err != nil {
		orderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": order})
}

// AddSerials 为某行登记序列号
func (h *OrderHandler) AddSerials(c *gin.Context) {
	var req struct {
		Mode    string   `json:"mode" binding:"required,oneof=ship receive"`
		Serials []string `json:"serials" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	order, err := h.svc.AddSerials(c.Param("id"), c.Param("lineId"), entity.ReconcileMode(req.Mode), req.Serials)
	if err != nil {
		orderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": order})
}

// Timeline 订单流转时间线
func (h *OrderHandler) Timeline(c *gin.Context) {
	events, err := h.svc.Timeline(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": events})
}

// Discrepancies 行收发差异汇总
func (h *OrderHandler) Discrepancies(c *gin.Context) {
	items, err := h.svc.Discrepancies(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": items})
}

// Actions 当前状态允许的动作与可达状态
func (h *OrderHandler) Actions(c *gin.Context) {
	actions, next, err := h.svc.AllowedActions(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{
		"actions":       actions,
		"next_statuses": next,
	}})
}
