package workflow

import (
	"errors"
	"fmt"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
)

// 业务规则错误都是类型化的可恢复错误，引擎不因业务违规 panic。
var (
	// ErrMissingReason 驳回必须给出理由
	ErrMissingReason = errors.New("workflow: rejection requires a non-empty reason")
	// ErrLineNotFound 明细行不存在
	ErrLineNotFound = errors.New("workflow: order line not found")
	// ErrNoLines 空订单到达完成态属于结构性错误（调用方bug）
	ErrNoLines = errors.New("workflow: order has no lines")
)

// InvalidTransitionError 目标状态不在邻接表中
type InvalidTransitionError struct {
	From entity.OrderStatus
	To   entity.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("workflow: invalid transition %s -> %s", e.From, e.To)
}

// TerminalStateError 订单已处于终态
type TerminalStateError struct {
	Status entity.OrderStatus
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("workflow: order is in terminal state %s", e.Status)
}

// StageLockedError 数量字段不在可编辑阶段
type StageLockedError struct {
	Field  string
	Status entity.OrderStatus
}

func (e *StageLockedError) Error() string {
	return fmt.Sprintf("workflow: field %q is locked in status %s", e.Field, e.Status)
}

// QuantityMismatchError 批次数量合计与申报数量不符（唯一的硬性拦截）
type QuantityMismatchError struct {
	Expected float64
	Actual   float64
}

func (e *QuantityMismatchError) Error() string {
	return fmt.Sprintf("workflow: batch quantities sum to %v, expected %v", e.Actual, e.Expected)
}

// DuplicateSerialError 序列号在行内已存在
type DuplicateSerialError struct {
	Serial string
}

func (e *DuplicateSerialError) Error() string {
	return fmt.Sprintf("workflow: serial %q already recorded for this line", e.Serial)
}
