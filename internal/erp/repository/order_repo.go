package repository

import (
	"strings"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(order *entity.Order) error {
	return r.db.Create(order).Error
}

// GetByID 加载完整订单：明细行、批次、序列号、流转事件
func (r *OrderRepository) GetByID(id string) (*entity.Order, error) {
	var order entity.Order
	err := r.db.
		Preload("Supplier").
		Preload("Lines").
		Preload("Lines.Batches").
		Preload("Lines.Serials").
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&order).Error
	return &order, err
}

type OrderListParams struct {
	Kind    entity.OrderKind
	Status  entity.OrderStatus
	Keyword string
	Page    int
	Size    int
}

func (r *OrderRepository) List(params OrderListParams) ([]entity.Order, int64, error) {
	query := r.db.Model(&entity.Order{}).Where("deleted_at IS NULL")
	if params.Kind != "" {
		query = query.Where("kind = ?", params.Kind)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Keyword != "" {
		kw := "%" + strings.ToLower(params.Keyword) + "%"
		query = query.Where("lower(code) LIKE ?", kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var orders []entity.Order
	err := query.Preload("Supplier").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).Find(&orders).Error
	return orders, total, err
}

// ListAll 报表导出用，不分页
func (r *OrderRepository) ListAll(kind entity.OrderKind) ([]entity.Order, error) {
	query := r.db.Model(&entity.Order{}).Where("deleted_at IS NULL")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	var orders []entity.Order
	err := query.Preload("Supplier").Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// UpdateWithVersion 带乐观锁的整单保存。
// 订单行按 id=该单 AND version=读取时版本 更新并把版本加一；
// 没有命中说明订单已被并发修改，返回 ErrVersionConflict，事务整体回滚。
// 新增的流转事件以 DoNothing 冲突策略插入（事件只追加，已有的不动）。
func (r *OrderRepository) UpdateWithVersion(order *entity.Order) error {
	prev := order.Version
	order.Version = prev + 1

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Order{}).
			Where("id = ? AND version = ?", order.ID, prev).
			Select("status", "version", "total_amount", "currency",
				"submitted_by", "submitted_at", "approved_by", "approved_at",
				"rejected_by", "rejected_at", "rejection_reason",
				"cancelled_by", "cancelled_at", "shipped_at", "received_at",
				"expected_at", "notes").
			Updates(order)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}

		for i := range order.Lines {
			if err := tx.Omit("Batches", "Serials").Save(&order.Lines[i]).Error; err != nil {
				return err
			}
		}
		for i := range order.Events {
			ev := order.Events[i]
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ev).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		order.Version = prev
	}
	return err
}

// ReplaceLineBatches 整体替换某行某模式下的批次集合（版本号随之加一）。
// 调用方必须先通过批次合计校验，这里不重复校验。
func (r *OrderRepository) ReplaceLineBatches(orderID string, version int64, lineID string, mode entity.ReconcileMode, batches []entity.BatchRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Order{}).
			Where("id = ? AND version = ?", orderID, version).
			Update("version", version+1)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}
		if err := tx.Where("line_id = ? AND mode = ?", lineID, mode).
			Delete(&entity.BatchRecord{}).Error; err != nil {
			return err
		}
		for i := range batches {
			if err := tx.Create(&batches[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// AppendSerials 追加序列号（版本号随之加一）
func (r *OrderRepository) AppendSerials(orderID string, version int64, serials []entity.SerialNumber) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Order{}).
			Where("id = ? AND version = ?", orderID, version).
			Update("version", version+1)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}
		for i := range serials {
			if err := tx.Create(&serials[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListEvents 按时间升序返回订单的流转事件
func (r *OrderRepository) ListEvents(orderID string) ([]entity.WorkflowEvent, error) {
	var events []entity.WorkflowEvent
	err := r.db.Where("order_id = ?", orderID).Order("created_at ASC").Find(&events).Error
	return events, err
}
