package workflow

import (
	"strings"
	"time"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"github.com/google/uuid"
)

// Transition 执行一次状态流转。
// 成功时返回修改后的新订单值（深拷贝，输入订单不被触碰），
// 并盖上对应的操作人/时间戳、追加一条流转事件；
// 失败时返回类型化错误，订单保持原样。
func Transition(order *entity.Order, target entity.OrderStatus, actor, reason string) (*entity.Order, error) {
	if IsTerminal(order.Status) {
		return nil, &TerminalStateError{Status: order.Status}
	}
	if !CanTransition(order.Kind, order.Status, target) {
		return nil, &InvalidTransitionError{From: order.Status, To: target}
	}
	if target == entity.StatusRejected && strings.TrimSpace(reason) == "" {
		return nil, ErrMissingReason
	}
	if target == entity.StatusCompleted && len(order.Lines) == 0 {
		// 空订单走到完成态说明上游逻辑有bug
		return nil, ErrNoLines
	}

	next := order.Clone()
	from := next.Status
	now := time.Now()

	next.Status = target
	switch target {
	case entity.StatusSubmitted:
		next.SubmittedBy = actor
		next.SubmittedAt = &now
	case entity.StatusApproved:
		next.ApprovedBy = actor
		next.ApprovedAt = &now
	case entity.StatusRejected:
		next.RejectedBy = actor
		next.RejectedAt = &now
		next.RejectionReason = reason
	case entity.StatusCancelled:
		next.CancelledBy = actor
		next.CancelledAt = &now
	case entity.StatusOrdered, entity.StatusInTransit:
		next.ShippedAt = &now
		defaultShipped(next)
	case entity.StatusCompleted:
		next.ReceivedAt = &now
		defaultReceived(next)
	}

	appendEvent(next, entity.WorkflowEvent{
		ID:         uuid.New().String(),
		OrderID:    next.ID,
		FromStatus: from,
		ToStatus:   target,
		Actor:      actor,
		Reason:     reason,
	})
	return next, nil
}

// defaultShipped 进入发货阶段时，未显式填写的发货数量默认取申请数量
func defaultShipped(order *entity.Order) {
	for i := range order.Lines {
		if order.Lines[i].Shipped == nil {
			qty := order.Lines[i].Requested
			order.Lines[i].Shipped = &qty
		}
	}
}

// defaultReceived 完成时未显式填写的收货数量默认取发货数量
func defaultReceived(order *entity.Order) {
	for i := range order.Lines {
		line := &order.Lines[i]
		if line.Received != nil {
			continue
		}
		qty := line.Requested
		if line.Shipped != nil {
			qty = *line.Shipped
		}
		line.Received = &qty
	}
}
