package service

import (
	"fmt"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"github.com/bitfantasy/nimo-oms/internal/erp/repository"
	"github.com/google/uuid"
)

type ProductService struct {
	productRepo *repository.ProductRepository
}

func NewProductService(pr *repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: pr}
}

type CreateProductRequest struct {
	SKU         string  `json:"sku" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Category    string  `json:"category"`
	Unit        string  `json:"unit"`
	UnitCost    float64 `json:"unit_cost"`
	UnitPrice   float64 `json:"unit_price"`
	Serialized  bool    `json:"serialized"`
	BatchTraced bool    `json:"batch_traced"`
	Description string  `json:"description"`
}

func (s *ProductService) Create(req CreateProductRequest, userID string) (*entity.Product, error) {
	if existing, err := s.productRepo.GetBySKU(req.SKU); err == nil && existing != nil {
		return nil, fmt.Errorf("SKU已存在: %s", req.SKU)
	}
	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}
	p := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         req.SKU,
		Name:        req.Name,
		Category:    req.Category,
		Unit:        unit,
		UnitCost:    req.UnitCost,
		UnitPrice:   req.UnitPrice,
		Serialized:  req.Serialized,
		BatchTraced: req.BatchTraced,
		Status:      entity.ProductStatusActive,
		Description: req.Description,
		CreatedBy:   userID,
	}
	if err := s.productRepo.Create(p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Unit        *string  `json:"unit"`
	UnitCost    *float64 `json:"unit_cost"`
	UnitPrice   *float64 `json:"unit_price"`
	Status      *string  `json:"status"`
	Description *string  `json:"description"`
}

func (s *ProductService) Update(id string, req UpdateProductRequest) (*entity.Product, error) {
	p, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("产品不存在: %w", err)
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.UnitCost != nil {
		p.UnitCost = *req.UnitCost
	}
	if req.UnitPrice != nil {
		p.UnitPrice = *req.UnitPrice
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if err := s.productRepo.Update(p); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return p, nil
}

func (s *ProductService) GetByID(id string) (*entity.Product, error) {
	return s.productRepo.GetByID(id)
}

func (s *ProductService) List(params repository.ProductListParams) ([]entity.Product, int64, error) {
	return s.productRepo.List(params)
}

func (s *ProductService) Delete(id string) error {
	if _, err := s.productRepo.GetByID(id); err != nil {
		return fmt.Errorf("产品不存在: %w", err)
	}
	return s.productRepo.Delete(id)
}
