package repository

import (
	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *entity.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id string) (*entity.User, error) {
	var u entity.User
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&u).Error
	return &u, err
}

func (r *UserRepository) GetByUsername(username string) (*entity.User, error) {
	var u entity.User
	err := r.db.Where("username = ? AND deleted_at IS NULL", username).First(&u).Error
	return &u, err
}

func (r *UserRepository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&entity.User{}).Where("deleted_at IS NULL").Count(&total).Error
	return total, err
}
