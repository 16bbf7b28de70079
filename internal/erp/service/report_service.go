package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"github.com/bitfantasy/nimo-oms/internal/erp/repository"
	"github.com/minio/minio-go/v7"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ReportService 订单台账导出：CSV / XLSX，可选归档到对象存储。
// minioClient 为 nil 时只导出不归档。
type ReportService struct {
	orderRepo     *repository.OrderRepository
	warehouseRepo *repository.WarehouseRepository
	minioClient   *minio.Client
	minioBucket   string
	logger        *zap.Logger
}

func NewReportService(or *repository.OrderRepository, wr *repository.WarehouseRepository,
	mc *minio.Client, bucket string, logger *zap.Logger) *ReportService {
	return &ReportService{
		orderRepo:     or,
		warehouseRepo: wr,
		minioClient:   mc,
		minioBucket:   bucket,
		logger:        logger,
	}
}

var registerHeader = []string{"orderNumber", "counterpart", "totalValue", "status", "requestedDate", "expectedDate"}

type registerRow struct {
	OrderNumber   string
	Counterpart   string
	TotalValue    string
	Status        string
	RequestedDate string
	ExpectedDate  string
}

func (s *ReportService) registerRows(kind entity.OrderKind) ([]registerRow, error) {
	orders, err := s.orderRepo.ListAll(kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	warehouseNames := make(map[string]string)
	if warehouses, err := s.warehouseRepo.List(""); err == nil {
		for _, w := range warehouses {
			warehouseNames[w.ID] = w.Name
		}
	}

	rows := make([]registerRow, 0, len(orders))
	for i := range orders {
		order := &orders[i]
		counterpart := ""
		switch {
		case order.Supplier != nil:
			counterpart = order.Supplier.Name
		case order.FromWarehouseID != nil:
			counterpart = warehouseNames[*order.FromWarehouseID]
		}
		expected := ""
		if order.ExpectedAt != nil {
			expected = order.ExpectedAt.Format("2006-01-02")
		}
		rows = append(rows, registerRow{
			OrderNumber:   order.Code,
			Counterpart:   counterpart,
			TotalValue:    fmt.Sprintf("%.2f %s", order.TotalAmount, order.Currency),
			Status:        string(order.Status),
			RequestedDate: order.RequestedAt.Format("2006-01-02"),
			ExpectedDate:  expected,
		})
	}
	return rows, nil
}

// ExportOrdersCSV 导出订单台账为CSV
func (s *ReportService) ExportOrdersCSV(ctx context.Context, kind entity.OrderKind) ([]byte, string, error) {
	rows, err := s.registerRows(kind)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(registerHeader); err != nil {
		return nil, "", err
	}
	for _, row := range rows {
		record := []string{row.OrderNumber, row.Counterpart, row.TotalValue, row.Status, row.RequestedDate, row.ExpectedDate}
		if err := w.Write(record); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("orders-%s.csv", time.Now().Format("20060102-150405"))
	s.archive(ctx, filename, buf.Bytes(), "text/csv")
	return buf.Bytes(), filename, nil
}

// ExportOrdersXLSX 导出订单台账为Excel
func (s *ReportService) ExportOrdersXLSX(ctx context.Context, kind entity.OrderKind) ([]byte, string, error) {
	rows, err := s.registerRows(kind)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Orders"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range registerHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}
	for i, row := range rows {
		values := []string{row.OrderNumber, row.Counterpart, row.TotalValue, row.Status, row.RequestedDate, row.ExpectedDate}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write xlsx: %w", err)
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102-150405"))
	s.archive(ctx, filename, buf.Bytes(), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return buf.Bytes(), filename, nil
}

// archive 归档导出文件到对象存储，失败只记日志
func (s *ReportService) archive(ctx context.Context, filename string, data []byte, contentType string) {
	if s.minioClient == nil {
		return
	}
	objectName := "exports/" + filename
	_, err := s.minioClient.PutObject(ctx, s.minioBucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.logger.Warn("报表归档失败",
			zap.String("object", objectName),
			zap.Error(err))
	}
}
