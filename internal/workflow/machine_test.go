package workflow

import (
	"errors"
	"reflect"
	"testing"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"github.com/google/uuid"
)

func newTestOrder(kind entity.OrderKind, status entity.OrderStatus, requested ...float64) *entity.Order {
	order := &entity.Order{
		ID:          uuid.New().String(),
		Code:        "PO-202601010001",
		Kind:        kind,
		Status:      status,
		Currency:    "CNY",
		RequestedBy: "user-a",
		Version:     1,
	}
	for _, qty := range requested {
		order.Lines = append(order.Lines, entity.OrderLine{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: "prod-001",
			SKU:       "SKU-001",
			Unit:      "pcs",
			UnitPrice: 10,
			Requested: qty,
			Amount:    qty * 10,
		})
	}
	return order
}

func mustTransition(t *testing.T, order *entity.Order, target entity.OrderStatus, actor, reason string) *entity.Order {
	t.Helper()
	next, err := Transition(order, target, actor, reason)
	if err != nil {
		t.Fatalf("transition %s -> %s failed: %v", order.Status, target, err)
	}
	return next
}

// 邻接表完备性：不在表中的 (状态, 目标) 组合一律返回 InvalidTransition，
// 且原订单保持逐字段不变。
func TestTransitionTableCompleteness(t *testing.T) {
	for _, kind := range []entity.OrderKind{entity.KindPurchase, entity.KindTransfer} {
		for _, from := range AllStatuses(kind) {
			if IsTerminal(from) {
				continue
			}
			for _, to := range AllStatuses(kind) {
				if CanTransition(kind, from, to) {
					continue
				}
				order := newTestOrder(kind, from, 10)
				before := order.Clone()

				_, err := Transition(order, to, "user-a", "")
				var invalid *InvalidTransitionError
				if !errors.As(err, &invalid) {
					t.Fatalf("%s: %s -> %s: expected InvalidTransition, got %v", kind, from, to, err)
				}
				if invalid.From != from || invalid.To != to {
					t.Fatalf("error carries wrong states: %+v", invalid)
				}
				if !reflect.DeepEqual(order, before) {
					t.Fatalf("%s: %s -> %s: order mutated on failed transition", kind, from, to)
				}
			}
		}
	}
}

func TestRejectRequiresReason(t *testing.T) {
	order := newTestOrder(entity.KindPurchase, entity.StatusSubmitted, 10)

	for _, reason := range []string{"", "   ", "\t\n"} {
		if _, err := Transition(order, entity.StatusRejected, "approver", reason); !errors.Is(err, ErrMissingReason) {
			t.Fatalf("reason %q: expected ErrMissingReason, got %v", reason, err)
		}
	}

	next := mustTransition(t, order, entity.StatusRejected, "approver", "价格超预算")
	if next.RejectedBy != "approver" || next.RejectedAt == nil {
		t.Fatalf("rejection stamps missing: by=%q at=%v", next.RejectedBy, next.RejectedAt)
	}
	if next.RejectionReason != "价格超预算" {
		t.Fatalf("rejection reason not stored: %q", next.RejectionReason)
	}
	// 原订单不受影响
	if order.Status != entity.StatusSubmitted || order.RejectedAt != nil {
		t.Fatalf("input order mutated")
	}
}

func TestTerminalImmutability(t *testing.T) {
	for _, status := range []entity.OrderStatus{entity.StatusCompleted, entity.StatusRejected, entity.StatusCancelled} {
		order := newTestOrder(entity.KindPurchase, status, 10)
		for _, target := range AllStatuses(entity.KindPurchase) {
			_, err := Transition(order, target, "user-a", "reason")
			var terminal *TerminalStateError
			if !errors.As(err, &terminal) {
				t.Fatalf("%s -> %s: expected TerminalState, got %v", status, target, err)
			}
			if terminal.Status != status {
				t.Fatalf("error carries wrong status: %+v", terminal)
			}
		}
	}
}

// 数量守恒：进入发货阶段时未显式覆盖的行，发货数量默认为申请数量
func TestShippedDefaultsToRequested(t *testing.T) {
	order := newTestOrder(entity.KindPurchase, entity.StatusDraft, 10, 5)
	order = mustTransition(t, order, entity.StatusSubmitted, "user-a", "")
	order = mustTransition(t, order, entity.StatusApproved, "approver", "")

	// 第二行显式改为 3，第一行不动
	order, err := SetShipped(order, order.Lines[1].ID, 3)
	if err != nil {
		t.Fatalf("SetShipped failed: %v", err)
	}

	order = mustTransition(t, order, entity.StatusOrdered, "user-a", "")
	if order.Lines[0].Shipped == nil || *order.Lines[0].Shipped != 10 {
		t.Fatalf("line 0 shipped: want default 10, got %v", order.Lines[0].Shipped)
	}
	if order.Lines[1].Shipped == nil || *order.Lines[1].Shipped != 3 {
		t.Fatalf("line 1 shipped: want explicit 3, got %v", order.Lines[1].Shipped)
	}
	if order.ShippedAt == nil {
		t.Fatalf("ShippedAt not stamped")
	}
}

func TestHistoryMonotonicity(t *testing.T) {
	order := newTestOrder(entity.KindTransfer, entity.StatusDraft, 10)

	steps := []entity.OrderStatus{
		entity.StatusSubmitted, entity.StatusApproved,
		entity.StatusInTransit, entity.StatusCompleted,
	}
	for i, target := range steps {
		order = mustTransition(t, order, target, "user-a", "")
		if got := len(order.Events); got != i+1 {
			t.Fatalf("after %d transitions: %d events", i+1, got)
		}
	}

	events := History(order)
	for i := 1; i < len(events); i++ {
		if !events[i].CreatedAt.After(events[i-1].CreatedAt) {
			t.Fatalf("event %d timestamp not strictly increasing: %v >= %v",
				i, events[i-1].CreatedAt, events[i].CreatedAt)
		}
	}
	if events[0].FromStatus != entity.StatusDraft || events[len(events)-1].ToStatus != entity.StatusCompleted {
		t.Fatalf("timeline endpoints wrong: %+v", events)
	}
}

func TestCancelFromAnyNonTerminal(t *testing.T) {
	for _, status := range []entity.OrderStatus{
		entity.StatusDraft, entity.StatusSubmitted, entity.StatusApproved,
		entity.StatusOrdered, entity.StatusPartiallyReceived,
	} {
		order := newTestOrder(entity.KindPurchase, status, 10)
		next := mustTransition(t, order, entity.StatusCancelled, "user-a", "不再需要")
		if next.CancelledBy != "user-a" || next.CancelledAt == nil {
			t.Fatalf("%s: cancellation stamps missing", status)
		}
	}
}

func TestCompleteEmptyOrderIsStructuralError(t *testing.T) {
	order := newTestOrder(entity.KindTransfer, entity.StatusInTransit)
	if _, err := Transition(order, entity.StatusCompleted, "user-a", ""); !errors.Is(err, ErrNoLines) {
		t.Fatalf("expected ErrNoLines, got %v", err)
	}
}

// 端到端：草稿 → 提交 → 审批（发货默认10）→ 批次 4+6 → 发出 → 完成（收货默认10，无差异）
func TestEndToEndPurchaseFlow(t *testing.T) {
	order := newTestOrder(entity.KindPurchase, entity.StatusDraft, 10)
	lineID := order.Lines[0].ID

	order = mustTransition(t, order, entity.StatusSubmitted, "requester", "")
	order = mustTransition(t, order, entity.StatusApproved, "approver", "")
	if order.Lines[0].Shipped != nil {
		t.Fatalf("shipped should stay unset until explicitly recorded or defaulted")
	}

	order, err := SetShipped(order, lineID, 10)
	if err != nil {
		t.Fatalf("SetShipped: %v", err)
	}

	order, err = AddBatch(order, lineID, entity.BatchRecord{Mode: entity.ModeShip, BatchNo: "B-001", Quantity: 4})
	if err != nil {
		t.Fatalf("AddBatch: %v", err)
	}
	order, err = AddBatch(order, lineID, entity.BatchRecord{Mode: entity.ModeShip, BatchNo: "B-002", Quantity: 6})
	if err != nil {
		t.Fatalf("AddBatch: %v", err)
	}
	if err := ValidateBatchTotal(order, lineID, entity.ModeShip); err != nil {
		t.Fatalf("batch total should balance: %v", err)
	}

	order = mustTransition(t, order, entity.StatusOrdered, "requester", "")
	order = mustTransition(t, order, entity.StatusCompleted, "receiver", "")

	line := &order.Lines[0]
	if line.Received == nil || *line.Received != 10 {
		t.Fatalf("received: want default 10, got %v", line.Received)
	}
	if Discrepancy(line) {
		t.Fatalf("no discrepancy expected for full receipt")
	}
	if order.ReceivedAt == nil {
		t.Fatalf("ReceivedAt not stamped")
	}
	if len(order.Events) != 4 {
		t.Fatalf("expected 4 workflow events, got %d", len(order.Events))
	}
}

// 差异仅提示不拦截：发货10收货8，照样允许完成
func TestDiscrepancyIsAdvisory(t *testing.T) {
	order := newTestOrder(entity.KindPurchase, entity.StatusDraft, 10)
	lineID := order.Lines[0].ID

	order = mustTransition(t, order, entity.StatusSubmitted, "requester", "")
	order = mustTransition(t, order, entity.StatusApproved, "approver", "")
	order = mustTransition(t, order, entity.StatusOrdered, "requester", "")

	order, err := SetReceived(order, lineID, 8)
	if err != nil {
		t.Fatalf("SetReceived: %v", err)
	}
	if !Discrepancy(&order.Lines[0]) {
		t.Fatalf("discrepancy expected with shipped=10 received=8")
	}

	order = mustTransition(t, order, entity.StatusCompleted, "receiver", "")
	if *order.Lines[0].Received != 8 {
		t.Fatalf("explicit received=8 overwritten to %v", *order.Lines[0].Received)
	}
	if !Discrepancy(&order.Lines[0]) {
		t.Fatalf("discrepancy flag lost after completion")
	}
}

func TestAllowedActions(t *testing.T) {
	tags := AllowedActions(entity.KindPurchase, entity.StatusSubmitted)
	want := map[ActionTag]bool{ActionApprove: true, ActionReject: true, ActionCancel: true}
	if len(tags) != len(want) {
		t.Fatalf("unexpected actions for SUBMITTED: %v", tags)
	}
	for _, tag := range tags {
		if !want[tag] {
			t.Fatalf("unexpected action %q", tag)
		}
	}
	if got := AllowedActions(entity.KindPurchase, entity.StatusCompleted); len(got) != 0 {
		t.Fatalf("terminal state should expose no actions, got %v", got)
	}
}
