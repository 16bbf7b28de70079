package workflow

import (
	"fmt"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
)

// SetShipped 记录某行的发货数量。
// 仅在发货数量可编辑的阶段（已审批、未发出）允许，其余阶段返回 StageLocked。
func SetShipped(order *entity.Order, lineID string, qty float64) (*entity.Order, error) {
	if !shippedEditable(order) {
		return nil, &StageLockedError{Field: "shipped", Status: order.Status}
	}
	return setLineQty(order, lineID, qty, func(line *entity.OrderLine, v float64) {
		line.Shipped = &v
	})
}

// SetReceived 记录某行的收货数量。
// 采购单在 ORDERED/PARTIALLY_RECEIVED、调拨单在 IN_TRANSIT 阶段允许。
func SetReceived(order *entity.Order, lineID string, qty float64) (*entity.Order, error) {
	if !receivedEditable(order) {
		return nil, &StageLockedError{Field: "received", Status: order.Status}
	}
	return setLineQty(order, lineID, qty, func(line *entity.OrderLine, v float64) {
		line.Received = &v
	})
}

func setLineQty(order *entity.Order, lineID string, qty float64, set func(*entity.OrderLine, float64)) (*entity.Order, error) {
	if qty < 0 {
		return nil, fmt.Errorf("workflow: quantity must not be negative, got %v", qty)
	}
	next := order.Clone()
	line := findLine(next, lineID)
	if line == nil {
		return nil, ErrLineNotFound
	}
	set(line, qty)
	return next, nil
}

// Discrepancy 收发差异标记：已记录收货数量且与发货数量（未发货时与申请数量）不一致。
// 仅用于提示，不拦截任何流转。
func Discrepancy(line *entity.OrderLine) bool {
	if line.Received == nil {
		return false
	}
	expected := line.Requested
	if line.Shipped != nil {
		expected = *line.Shipped
	}
	return *line.Received != expected
}

// LineTotal 行金额 = 数量 × 单价
func LineTotal(line *entity.OrderLine) float64 {
	return line.Requested * line.UnitPrice
}

// OrderTotal 订单金额 = 各行金额之和
func OrderTotal(order *entity.Order) float64 {
	var total float64
	for i := range order.Lines {
		total += LineTotal(&order.Lines[i])
	}
	return total
}

func findLine(order *entity.Order, lineID string) *entity.OrderLine {
	for i := range order.Lines {
		if order.Lines[i].ID == lineID {
			return &order.Lines[i]
		}
	}
	return nil
}
