package workflow

import (
	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
)

// 状态邻接表：合法性集中在这里判定一次，而不是散落在各处的条件判断。
// 采购单与调拨单同构但状态词表不同。
var transitions = map[entity.OrderKind]map[entity.OrderStatus][]entity.OrderStatus{
	entity.KindPurchase: {
		entity.StatusDraft:             {entity.StatusSubmitted, entity.StatusCancelled},
		entity.StatusSubmitted:         {entity.StatusApproved, entity.StatusRejected, entity.StatusCancelled},
		entity.StatusApproved:          {entity.StatusOrdered, entity.StatusCancelled},
		entity.StatusOrdered:           {entity.StatusPartiallyReceived, entity.StatusCompleted, entity.StatusCancelled},
		entity.StatusPartiallyReceived: {entity.StatusCompleted, entity.StatusCancelled},
	},
	entity.KindTransfer: {
		entity.StatusDraft:     {entity.StatusSubmitted, entity.StatusCancelled},
		entity.StatusSubmitted: {entity.StatusApproved, entity.StatusRejected, entity.StatusCancelled},
		entity.StatusApproved:  {entity.StatusInTransit, entity.StatusCancelled},
		entity.StatusInTransit: {entity.StatusCompleted, entity.StatusCancelled},
	},
}

var terminalStatuses = map[entity.OrderStatus]bool{
	entity.StatusCompleted: true,
	entity.StatusRejected:  true,
	entity.StatusCancelled: true,
}

// IsTerminal 终态后不允许任何流转
func IsTerminal(s entity.OrderStatus) bool {
	return terminalStatuses[s]
}

// CanTransition 目标状态是否可从当前状态到达
func CanTransition(kind entity.OrderKind, from, to entity.OrderStatus) bool {
	for _, s := range transitions[kind][from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextStatuses 当前状态的所有合法目标状态
func NextStatuses(kind entity.OrderKind, from entity.OrderStatus) []entity.OrderStatus {
	next := transitions[kind][from]
	out := make([]entity.OrderStatus, len(next))
	copy(out, next)
	return out
}

// ActionTag 展示层动作标记。引擎本身不涉及任何UI概念，
// 展示层按标记决定渲染哪些操作入口。
type ActionTag string

const (
	ActionEdit         ActionTag = "edit"
	ActionSubmit       ActionTag = "submit"
	ActionApprove      ActionTag = "approve"
	ActionReject       ActionTag = "reject"
	ActionShip         ActionTag = "ship"
	ActionReceive      ActionTag = "receive"
	ActionComplete     ActionTag = "complete"
	ActionCancel       ActionTag = "cancel"
	ActionEnterBatches ActionTag = "enter_batches"
	ActionEnterSerials ActionTag = "enter_serials"
)

var capabilities = map[entity.OrderKind]map[entity.OrderStatus][]ActionTag{
	entity.KindPurchase: {
		entity.StatusDraft:             {ActionEdit, ActionSubmit, ActionCancel},
		entity.StatusSubmitted:         {ActionApprove, ActionReject, ActionCancel},
		entity.StatusApproved:          {ActionShip, ActionEnterBatches, ActionEnterSerials, ActionCancel},
		entity.StatusOrdered:           {ActionReceive, ActionComplete, ActionEnterBatches, ActionEnterSerials, ActionCancel},
		entity.StatusPartiallyReceived: {ActionComplete, ActionEnterBatches, ActionEnterSerials, ActionCancel},
	},
	entity.KindTransfer: {
		entity.StatusDraft:     {ActionEdit, ActionSubmit, ActionCancel},
		entity.StatusSubmitted: {ActionApprove, ActionReject, ActionCancel},
		entity.StatusApproved:  {ActionShip, ActionEnterBatches, ActionEnterSerials, ActionCancel},
		entity.StatusInTransit: {ActionComplete, ActionEnterBatches, ActionEnterSerials, ActionCancel},
	},
}

// AllowedActions 当前状态允许的动作标记，终态返回空
func AllowedActions(kind entity.OrderKind, status entity.OrderStatus) []ActionTag {
	tags := capabilities[kind][status]
	out := make([]ActionTag, len(tags))
	copy(out, tags)
	return out
}

// AllStatuses 某一单据类型的全部状态（含终态），用于校验与展示
func AllStatuses(kind entity.OrderKind) []entity.OrderStatus {
	common := []entity.OrderStatus{
		entity.StatusDraft, entity.StatusSubmitted, entity.StatusApproved,
		entity.StatusRejected, entity.StatusCompleted, entity.StatusCancelled,
	}
	if kind == entity.KindPurchase {
		return append(common, entity.StatusOrdered, entity.StatusPartiallyReceived)
	}
	return append(common, entity.StatusInTransit)
}

// shippedEditable 发货数量可编辑的阶段
func shippedEditable(order *entity.Order) bool {
	return order.Status == entity.StatusApproved
}

// receivedEditable 收货数量可编辑的阶段
func receivedEditable(order *entity.Order) bool {
	switch order.Kind {
	case entity.KindPurchase:
		return order.Status == entity.StatusOrdered || order.Status == entity.StatusPartiallyReceived
	case entity.KindTransfer:
		return order.Status == entity.StatusInTransit
	}
	return false
}

// modeEditable 批次/序列号在对应核对模式下的可编辑窗口，
// 与同模式数量字段的可编辑窗口一致
func modeEditable(order *entity.Order, mode entity.ReconcileMode) bool {
	if mode == entity.ModeShip {
		return shippedEditable(order)
	}
	return receivedEditable(order)
}
