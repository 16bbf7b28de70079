package handler

import (
	"net/http"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"github.com/bitfantasy/nimo-oms/internal/erp/service"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// ExportOrders 导出订单台账，format=csv|xlsx，kind 可选过滤
func (h *ReportHandler) ExportOrders(c *gin.Context) {
	kind := entity.OrderKind(c.Query("kind"))
	format := c.DefaultQuery("format", "csv")

	var (
		data        []byte
		filename    string
		contentType string
		err         error
	)
	switch format {
	case "csv":
		data, filename, err = h.svc.ExportOrdersCSV(c.Request.Context(), kind)
		contentType = "text/csv"
	case "xlsx":
		data, filename, err = h.svc.ExportOrdersXLSX(c.Request.Context(), kind)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": "不支持的导出格式: " + format})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
