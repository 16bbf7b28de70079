package repository

import (
	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"gorm.io/gorm"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) GetByProductAndWarehouse(productID, warehouseID string) (*entity.Inventory, error) {
	var inv entity.Inventory
	err := r.db.Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InventoryRepository) Create(inv *entity.Inventory) error {
	return r.db.Create(inv).Error
}

func (r *InventoryRepository) Update(inv *entity.Inventory) error {
	return r.db.Save(inv).Error
}

func (r *InventoryRepository) List(warehouseID, productID string, page, size int) ([]entity.Inventory, int64, error) {
	query := r.db.Model(&entity.Inventory{})
	if warehouseID != "" {
		query = query.Where("warehouse_id = ?", warehouseID)
	}
	if productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var items []entity.Inventory
	err := query.Preload("Warehouse").Order("updated_at DESC").
		Offset((page - 1) * size).Limit(size).Find(&items).Error
	return items, total, err
}

func (r *InventoryRepository) CreateTransaction(tx *entity.InventoryTransaction) error {
	return r.db.Create(tx).Error
}

func (r *InventoryRepository) ListTransactions(productID, referenceID string, page, size int) ([]entity.InventoryTransaction, int64, error) {
	query := r.db.Model(&entity.InventoryTransaction{})
	if productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	if referenceID != "" {
		query = query.Where("reference_id = ?", referenceID)
	}
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var txs []entity.InventoryTransaction
	err := query.Order("created_at DESC").
		Offset((page - 1) * size).Limit(size).Find(&txs).Error
	return txs, total, err
}
