package service

import (
	"errors"
	"testing"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
	"github.com/bitfantasy/nimo-oms/internal/erp/repository"
	"github.com/bitfantasy/nimo-oms/internal/workflow"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	// 内存库按连接隔离，限制为单连接
	sqlDB.SetMaxOpenConns(1)
	if err := entity.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	repos     *repository.Repositories
	orders    *OrderService
	supplier  *entity.Supplier
	fromWH    *entity.Warehouse
	toWH      *entity.Warehouse
	product   *entity.Product
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	repos := repository.NewRepositories(db)
	inventorySvc := NewInventoryService(repos.Inventory, zap.NewNop())
	orderSvc := NewOrderService(repos.Order, repos.Product, repos.Supplier, repos.Warehouse, inventorySvc)

	env := &testEnv{
		repos:  repos,
		orders: orderSvc,
		supplier: &entity.Supplier{
			ID: uuid.New().String(), Code: "SUP-001", Name: "测试供应商",
			Status: entity.SupplierStatusActive,
		},
		fromWH: &entity.Warehouse{
			ID: uuid.New().String(), Code: "WH-A", Name: "总仓",
			Status: entity.WarehouseStatusActive,
		},
		toWH: &entity.Warehouse{
			ID: uuid.New().String(), Code: "WH-B", Name: "华东仓",
			Status: entity.WarehouseStatusActive,
		},
		product: &entity.Product{
			ID: uuid.New().String(), SKU: "SKU-001", Name: "测试产品",
			Unit: "pcs", UnitPrice: 25, Status: entity.ProductStatusActive,
		},
	}
	if err := repos.Supplier.Create(env.supplier); err != nil {
		t.Fatalf("seed supplier: %v", err)
	}
	if err := repos.Warehouse.Create(env.fromWH); err != nil {
		t.Fatalf("seed warehouse: %v", err)
	}
	if err := repos.Warehouse.Create(env.toWH); err != nil {
		t.Fatalf("seed warehouse: %v", err)
	}
	if err := repos.Product.Create(env.product); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return env
}

func (e *testEnv) createPurchaseOrder(t *testing.T, qty float64) *entity.Order {
	t.Helper()
	order, err := e.orders.CreateOrder(CreateOrderRequest{
		Kind:          entity.KindPurchase,
		SupplierID:    e.supplier.ID,
		ToWarehouseID: e.toWH.ID,
		Lines: []CreateOrderLine{
			{ProductID: e.product.ID, Quantity: qty},
		},
	}, "buyer")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func (e *testEnv) mustTransition(t *testing.T, id string, target entity.OrderStatus) *entity.Order {
	t.Helper()
	order, err := e.orders.Transition(id, target, "tester", "")
	if err != nil {
		t.Fatalf("transition to %s: %v", target, err)
	}
	return order
}

func TestPurchaseOrderLifecycle(t *testing.T) {
	env := newTestEnv(t)
	order := env.createPurchaseOrder(t, 10)

	if order.Status != entity.StatusDraft {
		t.Fatalf("new order status = %s, want DRAFT", order.Status)
	}
	if order.TotalAmount != 250 {
		t.Fatalf("total amount = %v, want 250", order.TotalAmount)
	}

	env.mustTransition(t, order.ID, entity.StatusSubmitted)
	env.mustTransition(t, order.ID, entity.StatusApproved)

	lineID := order.Lines[0].ID
	if _, err := env.orders.SetLineQuantity(order.ID, lineID, "shipped", 10); err != nil {
		t.Fatalf("set shipped: %v", err)
	}
	if _, err := env.orders.SaveLineBatches(order.ID, lineID, entity.ModeShip, []BatchInput{
		{BatchNo: "B-001", Quantity: 4},
		{BatchNo: "B-002", Quantity: 6},
	}); err != nil {
		t.Fatalf("save ship batches: %v", err)
	}

	env.mustTransition(t, order.ID, entity.StatusOrdered)
	if _, err := env.orders.SetLineQuantity(order.ID, lineID, "received", 10); err != nil {
		t.Fatalf("set received: %v", err)
	}
	if _, err := env.orders.SaveLineBatches(order.ID, lineID, entity.ModeReceive, []BatchInput{
		{BatchNo: "B-001", Quantity: 10},
	}); err != nil {
		t.Fatalf("save receive batches: %v", err)
	}

	final := env.mustTransition(t, order.ID, entity.StatusCompleted)
	if final.Status != entity.StatusCompleted {
		t.Fatalf("final status = %s, want COMPLETED", final.Status)
	}

	// 完成后库存应过账到收货仓
	items, _, err := env.repos.Inventory.List(env.toWH.ID, env.product.ID, 1, 10)
	if err != nil {
		t.Fatalf("list inventory: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 10 {
		t.Fatalf("inventory after completion = %+v, want qty 10", items)
	}

	// 时间线：5次流转，按时间升序
	events, err := env.orders.Timeline(order.ID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("timeline has %d events, want 5", len(events))
	}
	for i := 1; i < len(events); i++ {
		if !events[i].CreatedAt.After(events[i-1].CreatedAt) {
			t.Fatalf("timeline not strictly increasing at %d", i)
		}
	}
	if events[len(events)-1].ToStatus != entity.StatusCompleted {
		t.Fatalf("last event to = %s, want COMPLETED", events[len(events)-1].ToStatus)
	}
}

func TestTransferOrderPostsBothWarehouses(t *testing.T) {
	env := newTestEnv(t)
	order, err := env.orders.CreateOrder(CreateOrderRequest{
		Kind:            entity.KindTransfer,
		FromWarehouseID: env.fromWH.ID,
		ToWarehouseID:   env.toWH.ID,
		Lines: []CreateOrderLine{
			{ProductID: env.product.ID, Quantity: 6},
		},
	}, "mover")
	if err != nil {
		t.Fatalf("create transfer order: %v", err)
	}

	env.mustTransition(t, order.ID, entity.StatusSubmitted)
	env.mustTransition(t, order.ID, entity.StatusApproved)
	env.mustTransition(t, order.ID, entity.StatusInTransit)
	env.mustTransition(t, order.ID, entity.StatusCompleted)

	from, _, err := env.repos.Inventory.List(env.fromWH.ID, env.product.ID, 1, 10)
	if err != nil {
		t.Fatalf("list from inventory: %v", err)
	}
	if len(from) != 1 || from[0].Quantity != -6 {
		t.Fatalf("from warehouse qty = %+v, want -6", from)
	}
	to, _, err := env.repos.Inventory.List(env.toWH.ID, env.product.ID, 1, 10)
	if err != nil {
		t.Fatalf("list to inventory: %v", err)
	}
	if len(to) != 1 || to[0].Quantity != 6 {
		t.Fatalf("to warehouse qty = %+v, want 6", to)
	}

	// 流水应有出、入两条
	txs, _, err := env.repos.Inventory.ListTransactions(env.product.ID, order.ID, 1, 10)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("transaction count = %d, want 2", len(txs))
	}
}

func TestBatchMismatchNotPersisted(t *testing.T) {
	env := newTestEnv(t)
	order := env.createPurchaseOrder(t, 10)
	env.mustTransition(t, order.ID, entity.StatusSubmitted)
	env.mustTransition(t, order.ID, entity.StatusApproved)

	lineID := order.Lines[0].ID
	updated, err := env.orders.SetLineQuantity(order.ID, lineID, "shipped", 10)
	if err != nil {
		t.Fatalf("set shipped: %v", err)
	}
	versionBefore := updated.Version

	_, err = env.orders.SaveLineBatches(order.ID, lineID, entity.ModeShip, []BatchInput{
		{BatchNo: "B-001", Quantity: 3},
		{BatchNo: "B-002", Quantity: 4},
	})
	var mismatch *workflow.QuantityMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected QuantityMismatchError, got %v", err)
	}
	if mismatch.Expected != 10 || mismatch.Actual != 7 {
		t.Fatalf("mismatch = %+v, want expected 10 actual 7", mismatch)
	}

	// 拦截后批次不落库，版本不变
	reloaded, err := env.orders.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n := len(reloaded.Lines[0].Batches); n != 0 {
		t.Fatalf("persisted %d batches after rejected save", n)
	}
	if reloaded.Version != versionBefore {
		t.Fatalf("version changed from %d to %d on rejected save", versionBefore, reloaded.Version)
	}
}

func TestDuplicateSerialRejectedAtomically(t *testing.T) {
	env := newTestEnv(t)
	order := env.createPurchaseOrder(t, 3)
	env.mustTransition(t, order.ID, entity.StatusSubmitted)
	env.mustTransition(t, order.ID, entity.StatusApproved)

	lineID := order.Lines[0].ID
	_, err := env.orders.AddSerials(order.ID, lineID, entity.ModeShip, []string{"SN-1", "SN-2", "SN-1"})
	var dup *workflow.DuplicateSerialError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateSerialError, got %v", err)
	}

	reloaded, err := env.orders.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n := len(reloaded.Lines[0].Serials); n != 0 {
		t.Fatalf("persisted %d serials after rejected batch", n)
	}

	// 合法集合整体成功
	updated, err := env.orders.AddSerials(order.ID, lineID, entity.ModeShip, []string{"SN-1", "SN-2", "SN-3"})
	if err != nil {
		t.Fatalf("add serials: %v", err)
	}
	if n := len(updated.Lines[0].Serials); n != 3 {
		t.Fatalf("serial count = %d, want 3", n)
	}
}

func TestRejectReasonPersisted(t *testing.T) {
	env := newTestEnv(t)
	order := env.createPurchaseOrder(t, 5)
	env.mustTransition(t, order.ID, entity.StatusSubmitted)

	if _, err := env.orders.Transition(order.ID, entity.StatusRejected, "approver", ""); !errors.Is(err, workflow.ErrMissingReason) {
		t.Fatalf("expected ErrMissingReason, got %v", err)
	}

	rejected, err := env.orders.Transition(order.ID, entity.StatusRejected, "approver", "预算超限")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.RejectionReason != "预算超限" {
		t.Fatalf("rejection reason = %q", rejected.RejectionReason)
	}

	events, err := env.orders.Timeline(order.ID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	last := events[len(events)-1]
	if last.ToStatus != entity.StatusRejected || last.Reason != "预算超限" {
		t.Fatalf("last event = %+v", last)
	}

	// 终态后不允许任何流转
	if _, err := env.orders.Transition(order.ID, entity.StatusSubmitted, "buyer", ""); err == nil {
		t.Fatal("expected terminal state error")
	}
}

func TestVersionConflictDetected(t *testing.T) {
	env := newTestEnv(t)
	order := env.createPurchaseOrder(t, 5)

	stale, err := env.repos.Order.GetByID(order.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// 第一次提交占用当前版本号
	env.mustTransition(t, order.ID, entity.StatusSubmitted)

	updated, err := workflow.Transition(stale, entity.StatusCancelled, "other", "")
	if err != nil {
		t.Fatalf("engine transition: %v", err)
	}
	if err := env.repos.Order.UpdateWithVersion(updated); !errors.Is(err, repository.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	// 冲突不落库：订单仍是第一次提交后的状态
	current, err := env.repos.Order.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if current.Status != entity.StatusSubmitted {
		t.Fatalf("status = %s, want SUBMITTED", current.Status)
	}
}

func TestDiscrepancyReportedButNotBlocking(t *testing.T) {
	env := newTestEnv(t)
	order := env.createPurchaseOrder(t, 10)
	env.mustTransition(t, order.ID, entity.StatusSubmitted)
	env.mustTransition(t, order.ID, entity.StatusApproved)

	lineID := order.Lines[0].ID
	if _, err := env.orders.SetLineQuantity(order.ID, lineID, "shipped", 10); err != nil {
		t.Fatalf("set shipped: %v", err)
	}
	env.mustTransition(t, order.ID, entity.StatusOrdered)
	if _, err := env.orders.SetLineQuantity(order.ID, lineID, "received", 8); err != nil {
		t.Fatalf("set received: %v", err)
	}

	// 收发不一致只提示，不拦截完成
	final := env.mustTransition(t, order.ID, entity.StatusCompleted)
	if final.Status != entity.StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", final.Status)
	}

	report, err := env.orders.Discrepancies(order.ID)
	if err != nil {
		t.Fatalf("discrepancies: %v", err)
	}
	if len(report) != 1 || !report[0].Discrepancy {
		t.Fatalf("discrepancy report = %+v, want flagged line", report)
	}

	// 过账按实际收货数量
	items, _, err := env.repos.Inventory.List(env.toWH.ID, env.product.ID, 1, 10)
	if err != nil {
		t.Fatalf("list inventory: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 8 {
		t.Fatalf("inventory qty = %+v, want 8", items)
	}
}

func TestStageLockOutsideWindow(t *testing.T) {
	env := newTestEnv(t)
	order := env.createPurchaseOrder(t, 5)

	// 草稿阶段发货数量不可编辑
	_, err := env.orders.SetLineQuantity(order.ID, order.Lines[0].ID, "shipped", 5)
	var locked *workflow.StageLockedError
	if !errors.As(err, &locked) {
		t.Fatalf("expected StageLockedError, got %v", err)
	}

	// 草稿阶段批次也不可编辑
	_, err = env.orders.SaveLineBatches(order.ID, order.Lines[0].ID, entity.ModeShip, []BatchInput{
		{BatchNo: "B-001", Quantity: 5},
	})
	if !errors.As(err, &locked) {
		t.Fatalf("expected StageLockedError, got %v", err)
	}
}
