package service

import (
	"fmt"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"github.com/bitfantasy/nimo-oms/internal/erp/repository"
	"github.com/google/uuid"
)

type WarehouseService struct {
	warehouseRepo *repository.WarehouseRepository
}

func NewWarehouseService(wr *repository.WarehouseRepository) *WarehouseService {
	return &WarehouseService{warehouseRepo: wr}
}

type CreateWarehouseRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Manager string `json:"manager"`
	Notes   string `json:"notes"`
}

func (s *WarehouseService) Create(req CreateWarehouseRequest) (*entity.Warehouse, error) {
	w := &entity.Warehouse{
		ID:      uuid.New().String(),
		Code:    req.Code,
		Name:    req.Name,
		Address: req.Address,
		Manager: req.Manager,
		Status:  entity.WarehouseStatusActive,
		Notes:   req.Notes,
	}
	if err := s.warehouseRepo.Create(w); err != nil {
		return nil, fmt.Errorf("failed to create warehouse: %w", err)
	}
	return w, nil
}

type UpdateWarehouseRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Manager *string `json:"manager"`
	Status  *string `json:"status"`
	Notes   *string `json:"notes"`
}

func (s *WarehouseService) Update(id string, req UpdateWarehouseRequest) (*entity.Warehouse, error) {
	w, err := s.warehouseRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("仓库不存在: %w", err)
	}
	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.Address != nil {
		w.Address = *req.Address
	}
	if req.Manager != nil {
		w.Manager = *req.Manager
	}
	if req.Status != nil {
		w.Status = *req.Status
	}
	if req.Notes != nil {
		w.Notes = *req.Notes
	}
	if err := s.warehouseRepo.Update(w); err != nil {
		return nil, fmt.Errorf("failed to update warehouse: %w", err)
	}
	return w, nil
}

func (s *WarehouseService) GetByID(id string) (*entity.Warehouse, error) {
	return s.warehouseRepo.GetByID(id)
}

func (s *WarehouseService) List(status string) ([]entity.Warehouse, error) {
	return s.warehouseRepo.List(status)
}
