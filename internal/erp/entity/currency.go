package entity

import (
	"time"
)

// Currency 币种及其对基准币种的汇率
// 换算本身由调用方完成，这里只维护汇率数据
type Currency struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	Code      string     `json:"code" gorm:"size:10;not null;uniqueIndex"` // ISO 4217
	Name      string     `json:"name" gorm:"size:64;not null"`
	Symbol    string     `json:"symbol" gorm:"size:8"`
	Rate      float64    `json:"rate" gorm:"type:decimal(16,8);not null;default:1"` // 1 单位本币 = Rate 基准币
	IsBase    bool       `json:"is_base" gorm:"default:false"`
	UpdatedBy string     `json:"updated_by" gorm:"size:64"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`
}

func (Currency) TableName() string {
	return "oms_currencies"
}
