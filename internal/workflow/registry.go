package workflow

import (
	"fmt"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"github.com/google/uuid"
)

// AddBatch 为某行追加一条批次记录。
// 批次号行内唯一，数量不得为负；添加时不设上限，合计校验放在保存前的
// ValidateBatchTotal。只能在该模式的可编辑窗口内操作。
func AddBatch(order *entity.Order, lineID string, batch entity.BatchRecord) (*entity.Order, error) {
	if !modeEditable(order, batch.Mode) {
		return nil, &StageLockedError{Field: "batches", Status: order.Status}
	}
	if batch.Quantity < 0 {
		return nil, fmt.Errorf("workflow: batch quantity must not be negative, got %v", batch.Quantity)
	}
	next := order.Clone()
	line := findLine(next, lineID)
	if line == nil {
		return nil, ErrLineNotFound
	}
	for i := range line.Batches {
		if line.Batches[i].Mode == batch.Mode && line.Batches[i].BatchNo == batch.BatchNo {
			return nil, fmt.Errorf("workflow: batch %q already recorded for this line", batch.BatchNo)
		}
	}
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	batch.LineID = line.ID
	line.Batches = append(line.Batches, batch)
	return next, nil
}

// AddSerial 为某行登记一个序列号。
// 行内重复（大小写敏感精确匹配）返回 DuplicateSerial，集合保持不变；
// 不做跨行、跨单的全局唯一性约束。
func AddSerial(order *entity.Order, lineID string, mode entity.ReconcileMode, serial string) (*entity.Order, error) {
	if !modeEditable(order, mode) {
		return nil, &StageLockedError{Field: "serials", Status: order.Status}
	}
	next := order.Clone()
	line := findLine(next, lineID)
	if line == nil {
		return nil, ErrLineNotFound
	}
	for i := range line.Serials {
		if line.Serials[i].Serial == serial {
			return nil, &DuplicateSerialError{Serial: serial}
		}
	}
	line.Serials = append(line.Serials, entity.SerialNumber{
		ID:     uuid.New().String(),
		LineID: line.ID,
		Mode:   mode,
		Serial: serial,
	})
	return next, nil
}

// ReplaceBatches 用给定集合整体替换某行某模式下的批次，并执行合计校验。
// 这是保存批次集合的入口：合计不符时返回 QuantityMismatch，原订单不变。
func ReplaceBatches(order *entity.Order, lineID string, mode entity.ReconcileMode, batches []entity.BatchRecord) (*entity.Order, error) {
	if !modeEditable(order, mode) {
		return nil, &StageLockedError{Field: "batches", Status: order.Status}
	}
	next := order.Clone()
	line := findLine(next, lineID)
	if line == nil {
		return nil, ErrLineNotFound
	}

	kept := line.Batches[:0]
	for i := range line.Batches {
		if line.Batches[i].Mode != mode {
			kept = append(kept, line.Batches[i])
		}
	}
	line.Batches = kept

	seen := make(map[string]bool, len(batches))
	for _, b := range batches {
		if b.Quantity < 0 {
			return nil, fmt.Errorf("workflow: batch quantity must not be negative, got %v", b.Quantity)
		}
		if seen[b.BatchNo] {
			return nil, fmt.Errorf("workflow: batch %q already recorded for this line", b.BatchNo)
		}
		seen[b.BatchNo] = true
		if b.ID == "" {
			b.ID = uuid.New().String()
		}
		b.LineID = line.ID
		b.Mode = mode
		line.Batches = append(line.Batches, b)
	}

	if err := ValidateBatchTotal(next, lineID, mode); err != nil {
		return nil, err
	}
	return next, nil
}

// ValidateBatchTotal 核对某行批次数量合计与申报数量是否精确相等。
// ship 模式对发货数量、receive 模式对收货数量；多配与少配同样算不符。
// 这是整个流程中唯一的硬性拦截：不通过就不允许保存该行的批次集合。
func ValidateBatchTotal(order *entity.Order, lineID string, mode entity.ReconcileMode) error {
	line := findLine(order, lineID)
	if line == nil {
		return ErrLineNotFound
	}
	expected, err := declaredQty(line, mode)
	if err != nil {
		return err
	}
	var actual float64
	for i := range line.Batches {
		if line.Batches[i].Mode == mode {
			actual += line.Batches[i].Quantity
		}
	}
	if actual != expected {
		return &QuantityMismatchError{Expected: expected, Actual: actual}
	}
	return nil
}

func declaredQty(line *entity.OrderLine, mode entity.ReconcileMode) (float64, error) {
	switch mode {
	case entity.ModeShip:
		if line.Shipped == nil {
			return 0, fmt.Errorf("workflow: shipped quantity not recorded for line %s", line.ID)
		}
		return *line.Shipped, nil
	case entity.ModeReceive:
		if line.Received == nil {
			return 0, fmt.Errorf("workflow: received quantity not recorded for line %s", line.ID)
		}
		return *line.Received, nil
	}
	return 0, fmt.Errorf("workflow: unknown reconcile mode %q", mode)
}
