package handler

import (
	"net/http"

	"github.com/bitfantasy/nimo-oms/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type CurrencyHandler struct {
	svc *service.CurrencyService
}

func NewCurrencyHandler(svc *service.CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{svc: svc}
}

func (h *CurrencyHandler) Create(c *gin.Context) {
	var req service.CreateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	currency, err := h.svc.Create(req, getUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10004, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": currency})
}

func (h *CurrencyHandler) List(c *gin.Context) {
	currencies, err := h.svc.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": currencies})
}

// GetRate 查询汇率，优先读缓存
func (h *CurrencyHandler) GetRate(c *gin.Context) {
	code := c.Param("code")
	rate, err := h.svc.GetRate(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": gin.H{"code": code, "rate": rate}})
}

// UpdateRate 更新汇率并失效缓存
func (h *CurrencyHandler) UpdateRate(c *gin.Context) {
	var req struct {
		Rate float64 `json:"rate" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	currency, err := h.svc.UpdateRate(c.Request.Context(), c.Param("code"), req.Rate, getUserID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10004, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": currency})
}

func (h *CurrencyHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("code")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10004, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}
