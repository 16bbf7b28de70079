package repository

import (
	"strings"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"gorm.io/gorm"
)

type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) Create(s *entity.Supplier) error {
	return r.db.Create(s).Error
}

func (r *SupplierRepository) GetByID(id string) (*entity.Supplier, error) {
	var s entity.Supplier
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&s).Error
	return &s, err
}

func (r *SupplierRepository) Update(s *entity.Supplier) error {
	return r.db.Save(s).Error
}

func (r *SupplierRepository) Delete(id string) error {
	return r.db.Model(&entity.Supplier{}).Where("id = ?", id).
		Update("deleted_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *SupplierRepository) List(status, keyword string, page, size int) ([]entity.Supplier, int64, error) {
	query := r.db.Model(&entity.Supplier{}).Where("deleted_at IS NULL")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		kw := "%" + strings.ToLower(keyword) + "%"
		query = query.Where("lower(code) LIKE ? OR lower(name) LIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	var suppliers []entity.Supplier
	err := query.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&suppliers).Error
	return suppliers, total, err
}
