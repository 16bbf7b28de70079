package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrVersionConflict 乐观锁冲突：订单在读取后被其他操作修改过
var ErrVersionConflict = errors.New("repository: order version conflict")

// Repositories OMS 仓库集合
type Repositories struct {
	Order     *OrderRepository
	Product   *ProductRepository
	Supplier  *SupplierRepository
	Warehouse *WarehouseRepository
	Currency  *CurrencyRepository
	Inventory *InventoryRepository
	User      *UserRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Order:     NewOrderRepository(db),
		Product:   NewProductRepository(db),
		Supplier:  NewSupplierRepository(db),
		Warehouse: NewWarehouseRepository(db),
		Currency:  NewCurrencyRepository(db),
		Inventory: NewInventoryRepository(db),
		User:      NewUserRepository(db),
	}
}
