package service

import (
	"time"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"github.com/bitfantasy/nimo-oms/internal/erp/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryService 库存过账与查询。
// 订单完成时由 OrderService 调用过账，平时只读。
type InventoryService struct {
	inventoryRepo *repository.InventoryRepository
	logger        *zap.Logger
}

func NewInventoryService(ir *repository.InventoryRepository, logger *zap.Logger) *InventoryService {
	return &InventoryService{inventoryRepo: ir, logger: logger}
}

// PostOrderCompletion 订单完成后的库存过账。
// 采购单：各行按收货数量入收货仓；调拨单：调出仓出、调入仓入。
// 过账失败只记日志，不回滚订单状态（订单流转已提交）。
func (s *InventoryService) PostOrderCompletion(order *entity.Order, actor string) {
	for i := range order.Lines {
		line := &order.Lines[i]
		qty := line.Requested
		if line.Received != nil {
			qty = *line.Received
		}
		if qty == 0 {
			continue
		}

		switch order.Kind {
		case entity.KindPurchase:
			if order.ToWarehouseID == nil {
				continue
			}
			s.post(line, *order.ToWarehouseID, entity.TxTypePurchaseIn, qty, order, actor)
		case entity.KindTransfer:
			if order.FromWarehouseID != nil {
				s.post(line, *order.FromWarehouseID, entity.TxTypeTransferOut, -qty, order, actor)
			}
			if order.ToWarehouseID != nil {
				s.post(line, *order.ToWarehouseID, entity.TxTypeTransferIn, qty, order, actor)
			}
		}
	}
}

func (s *InventoryService) post(line *entity.OrderLine, warehouseID, txType string, delta float64, order *entity.Order, actor string) {
	now := time.Now()

	inv, err := s.inventoryRepo.GetByProductAndWarehouse(line.ProductID, warehouseID)
	if err != nil {
		inv = &entity.Inventory{
			ID:          uuid.New().String(),
			ProductID:   line.ProductID,
			SKU:         line.SKU,
			ProductName: line.Name,
			WarehouseID: warehouseID,
			Unit:        line.Unit,
			UnitCost:    line.UnitPrice,
		}
		inv.Quantity = delta
		inv.LastMovedAt = &now
		if err := s.inventoryRepo.Create(inv); err != nil {
			s.logger.Error("库存记录创建失败",
				zap.String("product_id", line.ProductID),
				zap.String("warehouse_id", warehouseID),
				zap.Error(err))
			return
		}
	} else {
		inv.Quantity += delta
		inv.LastMovedAt = &now
		if err := s.inventoryRepo.Update(inv); err != nil {
			s.logger.Error("库存记录更新失败",
				zap.String("inventory_id", inv.ID),
				zap.Error(err))
			return
		}
	}

	refType := "PO"
	if order.Kind == entity.KindTransfer {
		refType = "TO"
	}
	tx := &entity.InventoryTransaction{
		ID:              uuid.New().String(),
		ProductID:       line.ProductID,
		SKU:             line.SKU,
		ProductName:     line.Name,
		WarehouseID:     warehouseID,
		TransactionType: txType,
		Quantity:        delta,
		UnitCost:        line.UnitPrice,
		ReferenceType:   refType,
		ReferenceID:     order.ID,
		ReferenceCode:   order.Code,
		CreatedBy:       actor,
	}
	if err := s.inventoryRepo.CreateTransaction(tx); err != nil {
		s.logger.Error("库存流水写入失败",
			zap.String("order_code", order.Code),
			zap.Error(err))
	}
}

func (s *InventoryService) List(warehouseID, productID string, page, size int) ([]entity.Inventory, int64, error) {
	return s.inventoryRepo.List(warehouseID, productID, page, size)
}

func (s *InventoryService) Transactions(productID, referenceID string, page, size int) ([]entity.InventoryTransaction, int64, error) {
	return s.inventoryRepo.ListTransactions(productID, referenceID, page, size)
}
