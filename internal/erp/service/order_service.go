package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"github.com/bitfantasy/nimo-oms/internal/erp/repository"
	"github.com/bitfantasy/nimo-oms/internal/workflow"
	"github.com/google/uuid"
)

// OrderService 订单服务：加载订单 → 调用工作流引擎 → 带版本校验落库。
// 同一订单的操作用键控互斥锁串行化；不同订单互不影响。
type OrderService struct {
	orderRepo     *repository.OrderRepository
	productRepo   *repository.ProductRepository
	supplierRepo  *repository.SupplierRepository
	warehouseRepo *repository.WarehouseRepository
	inventorySvc  *InventoryService

	locks sync.Map // orderID -> *sync.Mutex
}

func NewOrderService(or *repository.OrderRepository, pr *repository.ProductRepository,
	sr *repository.SupplierRepository, wr *repository.WarehouseRepository,
	inv *InventoryService) *OrderService {
	return &OrderService{
		orderRepo:     or,
		productRepo:   pr,
		supplierRepo:  sr,
		warehouseRepo: wr,
		inventorySvc:  inv,
	}
}

func (s *OrderService) lock(orderID string) func() {
	v, _ := s.locks.LoadOrStore(orderID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type CreateOrderLine struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unit_price"` // 0 则取产品目录价
}

type CreateOrderRequest struct {
	Kind            entity.OrderKind  `json:"kind" binding:"required,oneof=purchase transfer"`
	SupplierID      string            `json:"supplier_id"`
	FromWarehouseID string            `json:"from_warehouse_id"`
	ToWarehouseID   string            `json:"to_warehouse_id"`
	Currency        string            `json:"currency"`
	ExpectedDate    string            `json:"expected_date"` // YYYY-MM-DD
	Notes           string            `json:"notes"`
	Lines           []CreateOrderLine `json:"lines" binding:"required,min=1"`
}

// CreateOrder 建单，初始状态为草稿
func (s *OrderService) CreateOrder(req CreateOrderRequest, userID string) (*entity.Order, error) {
	order := &entity.Order{
		ID:          uuid.New().String(),
		Kind:        req.Kind,
		Status:      entity.StatusDraft,
		Currency:    req.Currency,
		RequestedBy: userID,
		RequestedAt: time.Now(),
		Notes:       req.Notes,
		Version:     1,
	}
	if order.Currency == "" {
		order.Currency = "CNY"
	}

	switch req.Kind {
	case entity.KindPurchase:
		if req.SupplierID == "" {
			return nil, fmt.Errorf("采购订单必须指定供应商")
		}
		if _, err := s.supplierRepo.GetByID(req.SupplierID); err != nil {
			return nil, fmt.Errorf("供应商不存在: %w", err)
		}
		if req.ToWarehouseID != "" {
			if _, err := s.warehouseRepo.GetByID(req.ToWarehouseID); err != nil {
				return nil, fmt.Errorf("收货仓库不存在: %w", err)
			}
			order.ToWarehouseID = &req.ToWarehouseID
		}
		order.SupplierID = &req.SupplierID
		order.Code = genOrderCode("PO")
	case entity.KindTransfer:
		if req.FromWarehouseID == "" || req.ToWarehouseID == "" {
			return nil, fmt.Errorf("调拨订单必须指定调出和调入仓库")
		}
		if req.FromWarehouseID == req.ToWarehouseID {
			return nil, fmt.Errorf("调出和调入仓库不能相同")
		}
		for _, whID := range []string{req.FromWarehouseID, req.ToWarehouseID} {
			if _, err := s.warehouseRepo.GetByID(whID); err != nil {
				return nil, fmt.Errorf("仓库不存在: %w", err)
			}
		}
		order.FromWarehouseID = &req.FromWarehouseID
		order.ToWarehouseID = &req.ToWarehouseID
		order.Code = genOrderCode("TO")
	}

	if req.ExpectedDate != "" {
		if t, err := time.Parse("2006-01-02", req.ExpectedDate); err == nil {
			order.ExpectedAt = &t
		}
	}

	var totalAmount float64
	for _, lineReq := range req.Lines {
		product, err := s.productRepo.GetByID(lineReq.ProductID)
		if err != nil {
			return nil, fmt.Errorf("产品不存在: %w", err)
		}
		unitPrice := lineReq.UnitPrice
		if unitPrice == 0 {
			unitPrice = product.UnitPrice
		}
		amount := lineReq.Quantity * unitPrice
		totalAmount += amount
		order.Lines = append(order.Lines, entity.OrderLine{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: product.ID,
			SKU:       product.SKU,
			Name:      product.Name,
			Unit:      product.Unit,
			UnitPrice: unitPrice,
			Requested: lineReq.Quantity,
			Amount:    amount,
		})
	}
	order.TotalAmount = totalAmount

	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

func (s *OrderService) GetByID(id string) (*entity.Order, error) {
	return s.orderRepo.GetByID(id)
}

func (s *OrderService) List(params repository.OrderListParams) ([]entity.Order, int64, error) {
	return s.orderRepo.List(params)
}

// Transition 执行一次状态流转并持久化。
// 引擎校验失败时订单不落库；版本冲突返回 repository.ErrVersionConflict。
func (s *OrderService) Transition(id string, target entity.OrderStatus, actor, reason string) (*entity.Order, error) {
	unlock := s.lock(id)
	defer unlock()

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("订单不存在: %w", err)
	}

	updated, err := workflow.Transition(order, target, actor, reason)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateWithVersion(updated); err != nil {
		return nil, err
	}

	// 完成时过账库存；流水失败不回滚订单状态
	if updated.Status == entity.StatusCompleted {
		s.inventorySvc.PostOrderCompletion(updated, actor)
	}
	return updated, nil
}

// SetLineQuantity 记录某行的发货/收货数量，阶段之外的修改被引擎拦截
func (s *OrderService) SetLineQuantity(orderID, lineID, field string, qty float64) (*entity.Order, error) {
	unlock := s.lock(orderID)
	defer unlock()

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("订单不存在: %w", err)
	}

	var updated *entity.Order
	switch field {
	case "shipped":
		updated, err = workflow.SetShipped(order, lineID, qty)
	case "received":
		updated, err = workflow.SetReceived(order, lineID, qty)
	default:
		return nil, fmt.Errorf("未知的数量字段: %s", field)
	}
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateWithVersion(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

type BatchInput struct {
	BatchNo      string  `json:"batch_no" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required,gte=0"`
	ProducedDate string  `json:"produced_date"` // YYYY-MM-DD
	ExpiryDate   string  `json:"expiry_date"`
}

// SaveLineBatches 整体保存某行某模式下的批次集合。
// 合计与申报数量不符是硬性拦截：引擎返回 QuantityMismatch，不落库。
func (s *OrderService) SaveLineBatches(orderID, lineID string, mode entity.ReconcileMode, inputs []BatchInput) (*entity.Order, error) {
	unlock := s.lock(orderID)
	defer unlock()

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("订单不存在: %w", err)
	}

	batches := make([]entity.BatchRecord, 0, len(inputs))
	for _, in := range inputs {
		b := entity.BatchRecord{
			BatchNo:  in.BatchNo,
			Quantity: in.Quantity,
		}
		if in.ProducedDate != "" {
			if t, err := time.Parse("2006-01-02", in.ProducedDate); err == nil {
				b.ProducedAt = &t
			}
		}
		if in.ExpiryDate != "" {
			if t, err := time.Parse("2006-01-02", in.ExpiryDate); err == nil {
				b.ExpiresAt = &t
			}
		}
		batches = append(batches, b)
	}

	updated, err := workflow.ReplaceBatches(order, lineID, mode, batches)
	if err != nil {
		return nil, err
	}

	saved := lineBatches(updated, lineID, mode)
	if err := s.orderRepo.ReplaceLineBatches(order.ID, order.Version, lineID, mode, saved); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(orderID)
}

// AddSerials 为某行登记一组序列号，行内重复即整体失败
func (s *OrderService) AddSerials(orderID, lineID string, mode entity.ReconcileMode, serials []string) (*entity.Order, error) {
	unlock := s.lock(orderID)
	defer unlock()

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("订单不存在: %w", err)
	}

	updated := order
	for _, sn := range serials {
		updated, err = workflow.AddSerial(updated, lineID, mode, sn)
		if err != nil {
			return nil, err
		}
	}

	added := newSerials(order, updated, lineID)
	if len(added) == 0 {
		return order, nil
	}
	if err := s.orderRepo.AppendSerials(order.ID, order.Version, added); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(orderID)
}

// Timeline 订单时间线：按时间升序的流转事件
func (s *OrderService) Timeline(orderID string) ([]entity.WorkflowEvent, error) {
	return s.orderRepo.ListEvents(orderID)
}

// LineDiscrepancy 行收发差异，仅提示用
type LineDiscrepancy struct {
	LineID      string   `json:"line_id"`
	SKU         string   `json:"sku"`
	Requested   float64  `json:"requested"`
	Shipped     *float64 `json:"shipped"`
	Received    *float64 `json:"received"`
	Discrepancy bool     `json:"discrepancy"`
}

// Discrepancies 汇总各行收发差异
func (s *OrderService) Discrepancies(orderID string) ([]LineDiscrepancy, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("订单不存在: %w", err)
	}
	out := make([]LineDiscrepancy, 0, len(order.Lines))
	for i := range order.Lines {
		line := &order.Lines[i]
		out = append(out, LineDiscrepancy{
			LineID:      line.ID,
			SKU:         line.SKU,
			Requested:   line.Requested,
			Shipped:     line.Shipped,
			Received:    line.Received,
			Discrepancy: workflow.Discrepancy(line),
		})
	}
	return out, nil
}

// AllowedActions 当前状态允许的动作标记与可达状态，供展示层渲染操作入口
func (s *OrderService) AllowedActions(orderID string) ([]workflow.ActionTag, []entity.OrderStatus, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("订单不存在: %w", err)
	}
	return workflow.AllowedActions(order.Kind, order.Status),
		workflow.NextStatuses(order.Kind, order.Status), nil
}

func genOrderCode(prefix string) string {
	return fmt.Sprintf("%s-%s%04d", prefix, time.Now().Format("20060102"), time.Now().UnixNano()%10000)
}

func lineBatches(order *entity.Order, lineID string, mode entity.ReconcileMode) []entity.BatchRecord {
	for i := range order.Lines {
		if order.Lines[i].ID != lineID {
			continue
		}
		var out []entity.BatchRecord
		for _, b := range order.Lines[i].Batches {
			if b.Mode == mode {
				out = append(out, b)
			}
		}
		return out
	}
	return nil
}

func newSerials(before, after *entity.Order, lineID string) []entity.SerialNumber {
	existing := make(map[string]bool)
	for i := range before.Lines {
		if before.Lines[i].ID == lineID {
			for _, sn := range before.Lines[i].Serials {
				existing[sn.Serial] = true
			}
		}
	}
	var out []entity.SerialNumber
	for i := range after.Lines {
		if after.Lines[i].ID == lineID {
			for _, sn := range after.Lines[i].Serials {
				if !existing[sn.Serial] {
					out = append(out, sn)
				}
			}
		}
	}
	return out
}
