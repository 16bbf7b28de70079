package repository

import (
	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"gorm.io/gorm"
)

type CurrencyRepository struct {
	db *gorm.DB
}

func NewCurrencyRepository(db *gorm.DB) *CurrencyRepository {
	return &CurrencyRepository{db: db}
}

func (r *CurrencyRepository) Create(c *entity.Currency) error {
	return r.db.Create(c).Error
}

func (r *CurrencyRepository) GetByCode(code string) (*entity.Currency, error) {
	var c entity.Currency
	err := r.db.Where("code = ? AND deleted_at IS NULL", code).First(&c).Error
	return &c, err
}

func (r *CurrencyRepository) Update(c *entity.Currency) error {
	return r.db.Save(c).Error
}

func (r *CurrencyRepository) Delete(code string) error {
	return r.db.Model(&entity.Currency{}).Where("code = ?", code).
		Update("deleted_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
}

func (r *CurrencyRepository) List() ([]entity.Currency, error) {
	var currencies []entity.Currency
	err := r.db.Where("deleted_at IS NULL").Order("code ASC").Find(&currencies).Error
	return currencies, err
}
