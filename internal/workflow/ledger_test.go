package workflow

import (
	"errors"
	"testing"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
)

func TestSetShippedStageLocked(t *testing.T) {
	for _, status := range []entity.OrderStatus{
		entity.StatusDraft, entity.StatusSubmitted, entity.StatusOrdered,
		entity.StatusCompleted, entity.StatusCancelled,
	} {
		order := newTestOrder(entity.KindPurchase, status, 10)
		_, err := SetShipped(order, order.Lines[0].ID, 5)
		var locked *StageLockedError
		if !errors.As(err, &locked) {
			t.Fatalf("%s: expected StageLocked, got %v", status, err)
		}
		if locked.Field != "shipped" || locked.Status != status {
			t.Fatalf("error carries wrong context: %+v", locked)
		}
	}

	order := newTestOrder(entity.KindPurchase, entity.StatusApproved, 10)
	next, err := SetShipped(order, order.Lines[0].ID, 5)
	if err != nil {
		t.Fatalf("APPROVED should allow SetShipped: %v", err)
	}
	if *next.Lines[0].Shipped != 5 {
		t.Fatalf("shipped not recorded: %v", next.Lines[0].Shipped)
	}
	if order.Lines[0].Shipped != nil {
		t.Fatalf("input order mutated")
	}
}

func TestSetReceivedStages(t *testing.T) {
	// 采购单：ORDERED 和 PARTIALLY_RECEIVED 可记收货
	for _, status := range []entity.OrderStatus{entity.StatusOrdered, entity.StatusPartiallyReceived} {
		order := newTestOrder(entity.KindPurchase, status, 10)
		if _, err := SetReceived(order, order.Lines[0].ID, 8); err != nil {
			t.Fatalf("%s: expected SetReceived to succeed: %v", status, err)
		}
	}
	// 调拨单：仅 IN_TRANSIT
	order := newTestOrder(entity.KindTransfer, entity.StatusInTransit, 10)
	if _, err := SetReceived(order, order.Lines[0].ID, 8); err != nil {
		t.Fatalf("IN_TRANSIT: expected SetReceived to succeed: %v", err)
	}
	order = newTestOrder(entity.KindTransfer, entity.StatusApproved, 10)
	var locked *StageLockedError
	if _, err := SetReceived(order, order.Lines[0].ID, 8); !errors.As(err, &locked) {
		t.Fatalf("APPROVED transfer: expected StageLocked, got %v", err)
	}
}

func TestSetQuantityValidation(t *testing.T) {
	order := newTestOrder(entity.KindPurchase, entity.StatusApproved, 10)
	if _, err := SetShipped(order, order.Lines[0].ID, -1); err == nil {
		t.Fatalf("negative quantity accepted")
	}
	if _, err := SetShipped(order, "no-such-line", 5); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
}

func TestDiscrepancy(t *testing.T) {
	ten, eight := 10.0, 8.0

	line := &entity.OrderLine{Requested: 10}
	if Discrepancy(line) {
		t.Fatalf("no receipt recorded, no discrepancy")
	}

	line = &entity.OrderLine{Requested: 10, Shipped: &ten, Received: &eight}
	if !Discrepancy(line) {
		t.Fatalf("shipped=10 received=8 should flag discrepancy")
	}

	line = &entity.OrderLine{Requested: 10, Shipped: &ten, Received: &ten}
	if Discrepancy(line) {
		t.Fatalf("full receipt should not flag discrepancy")
	}

	// 未记录发货时与申请数量比较
	line = &entity.OrderLine{Requested: 10, Received: &eight}
	if !Discrepancy(line) {
		t.Fatalf("requested=10 received=8 without shipped should flag discrepancy")
	}
}

func TestTotals(t *testing.T) {
	order := newTestOrder(entity.KindPurchase, entity.StatusDraft, 10, 5)
	order.Lines[0].UnitPrice = 2.5
	order.Lines[1].UnitPrice = 4

	if got := LineTotal(&order.Lines[0]); got != 25 {
		t.Fatalf("line total: want 25, got %v", got)
	}
	if got := OrderTotal(order); got != 45 {
		t.Fatalf("order total: want 45, got %v", got)
	}
}
