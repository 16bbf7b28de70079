package service

import (
	"fmt"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"github.com/bitfantasy/nimo-oms/internal/erp/repository"
	"github.com/google/uuid"
)

type SupplierService struct {
	supplierRepo *repository.SupplierRepository
}

func NewSupplierService(sr *repository.SupplierRepository) *SupplierService {
	return &SupplierService{supplierRepo: sr}
}

type CreateSupplierRequest struct {
	Code         string `json:"code" binding:"required"`
	Name         string `json:"name" binding:"required"`
	ContactName  string `json:"contact_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	PaymentTerms string `json:"payment_terms"`
	Notes        string `json:"notes"`
}

func (s *SupplierService) Create(req CreateSupplierRequest, userID string) (*entity.Supplier, error) {
	supplier := &entity.Supplier{
		ID:           uuid.New().String(),
		Code:         req.Code,
		Name:         req.Name,
		ContactName:  req.ContactName,
		Phone:        req.Phone,
		Email:        req.Email,
		Address:      req.Address,
		PaymentTerms: req.PaymentTerms,
		Status:       entity.SupplierStatusActive,
		Notes:        req.Notes,
		CreatedBy:    userID,
	}
	if err := s.supplierRepo.Create(supplier); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return supplier, nil
}

type UpdateSupplierRequest struct {
	Name         *string `json:"name"`
	ContactName  *string `json:"contact_name"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	Address      *string `json:"address"`
	PaymentTerms *string `json:"payment_terms"`
	Status       *string `json:"status"`
	Notes        *string `json:"notes"`
}

func (s *SupplierService) Update(id string, req UpdateSupplierRequest) (*entity.Supplier, error) {
	supplier, err := s.supplierRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("供应商不存在: %w", err)
	}
	if req.Name != nil {
		supplier.Name = *req.Name
	}
	if req.ContactName != nil {
		supplier.ContactName = *req.ContactName
	}
	if req.Phone != nil {
		supplier.Phone = *req.Phone
	}
	if req.Email != nil {
		supplier.Email = *req.Email
	}
	if req.Address != nil {
		supplier.Address = *req.Address
	}
	if req.PaymentTerms != nil {
		supplier.PaymentTerms = *req.PaymentTerms
	}
	if req.Status != nil {
		supplier.Status = *req.Status
	}
	if req.Notes != nil {
		supplier.Notes = *req.Notes
	}
	if err := s.supplierRepo.Update(supplier); err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	return supplier, nil
}

func (s *SupplierService) GetByID(id string) (*entity.Supplier, error) {
	return s.supplierRepo.GetByID(id)
}

func (s *SupplierService) List(status, keyword string, page, size int) ([]entity.Supplier, int64, error) {
	return s.supplierRepo.List(status, keyword, page, size)
}

func (s *SupplierService) Delete(id string) error {
	if _, err := s.supplierRepo.GetByID(id); err != nil {
		return fmt.Errorf("供应商不存在: %w", err)
	}
	return s.supplierRepo.Delete(id)
}
