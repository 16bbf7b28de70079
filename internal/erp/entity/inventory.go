package entity

import (
	"time"
)

// TransactionType 库存交易类型
const (
	TxTypePurchaseIn  = "PURCHASE_IN"  // 采购入库
	TxTypeTransferIn  = "TRANSFER_IN"  // 调拨入库
	TxTypeTransferOut = "TRANSFER_OUT" // 调拨出库
)

// Inventory 库存记录（产品 × 仓库）
type Inventory struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	ProductID   string     `json:"product_id" gorm:"size:36;not null;index:idx_inv_product_wh"`
	SKU         string     `json:"sku" gorm:"size:64"`
	ProductName string     `json:"product_name" gorm:"size:128"`
	WarehouseID string     `json:"warehouse_id" gorm:"size:36;not null;index:idx_inv_product_wh"`
	Quantity    float64    `json:"quantity" gorm:"type:decimal(12,4);not null;default:0"`
	UnitCost    float64    `json:"unit_cost" gorm:"type:decimal(12,4);default:0"`
	Unit        string     `json:"unit" gorm:"size:20;not null;default:pcs"`
	LastMovedAt *time.Time `json:"last_moved_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Warehouse *Warehouse `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
}

func (Inventory) TableName() string {
	return "oms_inventory"
}

// InventoryTransaction 库存流水，只追加
type InventoryTransaction struct {
	ID              string    `json:"id" gorm:"primaryKey;size:36"`
	ProductID       string    `json:"product_id" gorm:"size:36;not null;index"`
	SKU             string    `json:"sku" gorm:"size:64"`
	ProductName     string    `json:"product_name" gorm:"size:128"`
	WarehouseID     string    `json:"warehouse_id" gorm:"size:36;not null;index"`
	TransactionType string    `json:"transaction_type" gorm:"size:20;not null"`
	Quantity        float64   `json:"quantity" gorm:"type:decimal(12,4);not null"` // 正=入，负=出
	BatchNo         string    `json:"batch_no" gorm:"size:64"`
	UnitCost        float64   `json:"unit_cost" gorm:"type:decimal(12,4);default:0"`
	ReferenceType   string    `json:"reference_type" gorm:"size:20;not null"` // PO, TO
	ReferenceID     string    `json:"reference_id" gorm:"size:36;not null"`
	ReferenceCode   string    `json:"reference_code" gorm:"size:50"`
	CreatedBy       string    `json:"created_by" gorm:"size:64;not null"`
	CreatedAt       time.Time `json:"created_at"`
}

func (InventoryTransaction) TableName() string {
	return "oms_inventory_transactions"
}
