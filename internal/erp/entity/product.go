package entity

import (
	"time"
)

// ProductStatus 产品状态
const (
	ProductStatusActive   = "ACTIVE"
	ProductStatusInactive = "INACTIVE"
)

// Product 产品目录条目
type Product struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	SKU         string     `json:"sku" gorm:"size:64;not null;uniqueIndex"`
	Name        string     `json:"name" gorm:"size:128;not null"`
	Category    string     `json:"category" gorm:"size:64"`
	Unit        string     `json:"unit" gorm:"size:20;not null;default:pcs"`
	UnitCost    float64    `json:"unit_cost" gorm:"type:decimal(12,4);default:0"`
	UnitPrice   float64    `json:"unit_price" gorm:"type:decimal(12,4);default:0"`
	Serialized  bool       `json:"serialized" gorm:"default:false"`  // 按序列号管理
	BatchTraced bool       `json:"batch_traced" gorm:"default:false"` // 按批次管理
	Status      string     `json:"status" gorm:"size:20;not null;default:ACTIVE"`
	Description string     `json:"description" gorm:"type:text"`
	CreatedBy   string     `json:"created_by" gorm:"size:64"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at" gorm:"index"`
}

func (Product) TableName() string {
	return "oms_products"
}
