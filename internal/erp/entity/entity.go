package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移所有OMS表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 基础数据
		&User{},
		&Supplier{},
		&Warehouse{},
		&Product{},
		&Currency{},

		// 订单与流转
		&Order{},
		&OrderLine{},
		&BatchRecord{},
		&SerialNumber{},
		&WorkflowEvent{},

		// 库存
		&Inventory{},
		&InventoryTransaction{},
	)
}
