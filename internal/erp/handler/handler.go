package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bitfantasy/nimo-oms/internal/erp/repository"
	"github.com/bitfantasy/nimo-oms/internal/erp/service"
	"github.com/bitfantasy/nimo-oms/internal/workflow"
	"github.com/gin-gonic/gin"
)

// Handlers HTTP处理器集合
type Handlers struct {
	Auth      *AuthHandler
	Order     *OrderHandler
	Product   *ProductHandler
	Supplier  *SupplierHandler
	Warehouse *WarehouseHandler
	Currency  *CurrencyHandler
	Inventory *InventoryHandler
	Report    *ReportHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(services.Auth),
		Order:     NewOrderHandler(services.Order),
		Product:   NewProductHandler(services.Product),
		Supplier:  NewSupplierHandler(services.Supplier),
		Warehouse: NewWarehouseHandler(services.Warehouse),
		Currency:  NewCurrencyHandler(services.Currency),
		Inventory: NewInventoryHandler(services.Inventory),
		Report:    NewReportHandler(services.Report),
	}
}

func getUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func getPagination(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}

// orderError 把工作流/仓储的类型化错误映射成HTTP响应。
// 业务规则违规一律 4xx，只有未识别的错误才是 500。
func orderError(c *gin.Context, err error) {
	var (
		invalidTransition *workflow.InvalidTransitionError
		terminalState     *workflow.TerminalStateError
		stageLocked       *workflow.StageLockedError
		quantityMismatch  *workflow.QuantityMismatchError
		duplicateSerial   *workflow.DuplicateSerialError
	)
	switch {
	case errors.Is(err, repository.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"code": 10005, "message": "订单已被其他操作修改，请刷新后重试"})
	case errors.As(err, &quantityMismatch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"code": 10006, "message": err.Error(),
			"data": gin.H{"expected": quantityMismatch.Expected, "actual": quantityMismatch.Actual}})
	case errors.As(err, &duplicateSerial):
		c.JSON(http.StatusConflict, gin.H{"code": 10007, "message": err.Error()})
	case errors.As(err, &invalidTransition),
		errors.As(err, &terminalState),
		errors.As(err, &stageLocked),
		errors.Is(err, workflow.ErrMissingReason),
		errors.Is(err, workflow.ErrNoLines),
		errors.Is(err, workflow.ErrLineNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"code": 10004, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
	}
}
