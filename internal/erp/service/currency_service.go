package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"github.com/bitfantasy/nimo-oms/internal/erp/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const currencyRateTTL = 10 * time.Minute

// CurrencyService 币种与汇率维护。
// 汇率查询走 Redis 缓存，更新时失效；换算本身由调用方完成。
type CurrencyService struct {
	currencyRepo *repository.CurrencyRepository
	rdb          *redis.Client
}

func NewCurrencyService(cr *repository.CurrencyRepository, rdb *redis.Client) *CurrencyService {
	return &CurrencyService{currencyRepo: cr, rdb: rdb}
}

func rateKey(code string) string {
	return "oms:currency:rate:" + code
}

type CreateCurrencyRequest struct {
	Code   string  `json:"code" binding:"required"`
	Name   string  `json:"name" binding:"required"`
	Symbol string  `json:"symbol"`
	Rate   float64 `json:"rate" binding:"required,gt=0"`
	IsBase bool    `json:"is_base"`
}

func (s *CurrencyService) Create(req CreateCurrencyRequest, userID string) (*entity.Currency, error) {
	if existing, err := s.currencyRepo.GetByCode(req.Code); err == nil && existing != nil {
		return nil, fmt.Errorf("币种已存在: %s", req.Code)
	}
	c := &entity.Currency{
		ID:        uuid.New().String(),
		Code:      req.Code,
		Name:      req.Name,
		Symbol:    req.Symbol,
		Rate:      req.Rate,
		IsBase:    req.IsBase,
		UpdatedBy: userID,
	}
	if err := s.currencyRepo.Create(c); err != nil {
		return nil, fmt.Errorf("failed to create currency: %w", err)
	}
	return c, nil
}

// UpdateRate 更新汇率并失效缓存
func (s *CurrencyService) UpdateRate(ctx context.Context, code string, rate float64, userID string) (*entity.Currency, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("汇率必须为正数")
	}
	c, err := s.currencyRepo.GetByCode(code)
	if err != nil {
		return nil, fmt.Errorf("币种不存在: %w", err)
	}
	c.Rate = rate
	c.UpdatedBy = userID
	if err := s.currencyRepo.Update(c); err != nil {
		return nil, fmt.Errorf("failed to update currency: %w", err)
	}
	if s.rdb != nil {
		s.rdb.Del(ctx, rateKey(code))
	}
	return c, nil
}

// GetRate 查询汇率，优先读缓存
func (s *CurrencyService) GetRate(ctx context.Context, code string) (float64, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, rateKey(code)).Result(); err == nil {
			if rate, err := strconv.ParseFloat(cached, 64); err == nil {
				return rate, nil
			}
		}
	}
	c, err := s.currencyRepo.GetByCode(code)
	if err != nil {
		return 0, fmt.Errorf("币种不存在: %w", err)
	}
	if s.rdb != nil {
		s.rdb.Set(ctx, rateKey(code), strconv.FormatFloat(c.Rate, 'f', -1, 64), currencyRateTTL)
	}
	return c.Rate, nil
}

func (s *CurrencyService) List() ([]entity.Currency, error) {
	return s.currencyRepo.List()
}

func (s *CurrencyService) Delete(code string) error {
	c, err := s.currencyRepo.GetByCode(code)
	if err != nil {
		return fmt.Errorf("币种不存在: %w", err)
	}
	if c.IsBase {
		return fmt.Errorf("基准币种不允许删除")
	}
	return s.currencyRepo.Delete(code)
}
