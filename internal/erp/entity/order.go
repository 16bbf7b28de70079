package entity

import (
	"time"
)

// OrderKind 单据类型
type OrderKind string

const (
	KindPurchase OrderKind = "purchase" // 采购订单
	KindTransfer OrderKind = "transfer" // 调拨订单
)

// OrderStatus 单据状态
type OrderStatus string

const (
	StatusDraft             OrderStatus = "DRAFT"
	StatusSubmitted         OrderStatus = "SUBMITTED"
	StatusApproved          OrderStatus = "APPROVED"
	StatusRejected          OrderStatus = "REJECTED"
	StatusOrdered           OrderStatus = "ORDERED"            // 仅采购单：已下单发货
	StatusPartiallyReceived OrderStatus = "PARTIALLY_RECEIVED" // 仅采购单
	StatusInTransit         OrderStatus = "IN_TRANSIT"         // 仅调拨单
	StatusCompleted         OrderStatus = "COMPLETED"
	StatusCancelled         OrderStatus = "CANCELLED"
)

// ReconcileMode 批次/序列号核对模式
type ReconcileMode string

const (
	ModeShip    ReconcileMode = "ship"
	ModeReceive ReconcileMode = "receive"
)

// Order 订单（采购/调拨共用一张表，状态词表不同）
type Order struct {
	ID          string      `json:"id" gorm:"primaryKey;size:36"`
	Code        string      `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Kind        OrderKind   `json:"kind" gorm:"size:20;not null;index"`
	Status      OrderStatus `json:"status" gorm:"size:20;not null;default:DRAFT"`
	Currency    string      `json:"currency" gorm:"size:10;not null;default:CNY"`
	TotalAmount float64     `json:"total_amount" gorm:"type:decimal(12,2);default:0"`

	// 乐观锁版本号，每次变更加一
	Version int64 `json:"version" gorm:"not null;default:1"`

	// 采购单：供应商 + 收货仓；调拨单：调出仓 + 调入仓
	SupplierID      *string `json:"supplier_id" gorm:"size:36;index"`
	FromWarehouseID *string `json:"from_warehouse_id" gorm:"size:36"`
	ToWarehouseID   *string `json:"to_warehouse_id" gorm:"size:36"`

	// 工作流时间戳/操作人：每个字段仅由对应的一次流转写入
	RequestedBy     string     `json:"requested_by" gorm:"size:64;not null"`
	RequestedAt     time.Time  `json:"requested_at"`
	SubmittedBy     string     `json:"submitted_by" gorm:"size:64"`
	SubmittedAt     *time.Time `json:"submitted_at"`
	ApprovedBy      string     `json:"approved_by" gorm:"size:64"`
	ApprovedAt      *time.Time `json:"approved_at"`
	RejectedBy      string     `json:"rejected_by" gorm:"size:64"`
	RejectedAt      *time.Time `json:"rejected_at"`
	RejectionReason string     `json:"rejection_reason" gorm:"type:text"`
	CancelledBy     string     `json:"cancelled_by" gorm:"size:64"`
	CancelledAt     *time.Time `json:"cancelled_at"`
	ShippedAt       *time.Time `json:"shipped_at"`
	ReceivedAt      *time.Time `json:"received_at"`

	ExpectedAt *time.Time `json:"expected_at"`
	Notes      string     `json:"notes" gorm:"type:text"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`

	Supplier *Supplier       `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Lines    []OrderLine     `json:"lines,omitempty" gorm:"foreignKey:OrderID"`
	Events   []WorkflowEvent `json:"events,omitempty" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string {
	return "oms_orders"
}

// OrderLine 订单明细行
// Requested 建单即有；Shipped/Received 在对应流转前为 nil（未记录）
type OrderLine struct {
	ID        string  `json:"id" gorm:"primaryKey;size:36"`
	OrderID   string  `json:"order_id" gorm:"size:36;not null;index"`
	ProductID string  `json:"product_id" gorm:"size:36;not null"`
	SKU       string  `json:"sku" gorm:"size:64"`
	Name      string  `json:"name" gorm:"size:128"`
	Unit      string  `json:"unit" gorm:"size:20;not null;default:pcs"`
	UnitPrice float64 `json:"unit_price" gorm:"type:decimal(12,4);not null"`
	Amount    float64 `json:"amount" gorm:"type:decimal(12,2);not null"`

	Requested float64  `json:"requested" gorm:"type:decimal(12,4);not null"`
	Shipped   *float64 `json:"shipped" gorm:"type:decimal(12,4)"`
	Received  *float64 `json:"received" gorm:"type:decimal(12,4)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Batches []BatchRecord  `json:"batches,omitempty" gorm:"foreignKey:LineID"`
	Serials []SerialNumber `json:"serials,omitempty" gorm:"foreignKey:LineID"`
}

func (OrderLine) TableName() string {
	return "oms_order_lines"
}

// BatchRecord 批次记录，批次号行内唯一
type BatchRecord struct {
	ID         string        `json:"id" gorm:"primaryKey;size:36"`
	LineID     string        `json:"line_id" gorm:"size:36;not null;index"`
	Mode       ReconcileMode `json:"mode" gorm:"size:10;not null"`
	BatchNo    string        `json:"batch_no" gorm:"size:64;not null"`
	Quantity   float64       `json:"quantity" gorm:"type:decimal(12,4);not null"`
	ProducedAt *time.Time    `json:"produced_at"`
	ExpiresAt  *time.Time    `json:"expires_at"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (BatchRecord) TableName() string {
	return "oms_batch_records"
}

// SerialNumber 序列号，行内唯一（大小写敏感精确匹配）
type SerialNumber struct {
	ID        string        `json:"id" gorm:"primaryKey;size:36"`
	LineID    string        `json:"line_id" gorm:"size:36;not null;uniqueIndex:idx_line_serial"`
	Mode      ReconcileMode `json:"mode" gorm:"size:10;not null"`
	Serial    string        `json:"serial" gorm:"size:128;not null;uniqueIndex:idx_line_serial"`
	CreatedAt time.Time     `json:"created_at"`
}

func (SerialNumber) TableName() string {
	return "oms_serial_numbers"
}

// WorkflowEvent 流转事件，只追加不修改，构成订单时间线
type WorkflowEvent struct {
	ID         string      `json:"id" gorm:"primaryKey;size:36"`
	OrderID    string      `json:"order_id" gorm:"size:36;not null;index"`
	FromStatus OrderStatus `json:"from_status" gorm:"size:20;not null"`
	ToStatus   OrderStatus `json:"to_status" gorm:"size:20;not null"`
	Actor      string      `json:"actor" gorm:"size:64;not null"`
	Reason     string      `json:"reason" gorm:"type:text"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (WorkflowEvent) TableName() string {
	return "oms_workflow_events"
}

// Clone 深拷贝订单（含明细、批次、序列号、事件）。
// 工作流引擎在克隆上修改并返回新值，失败时原订单不变。
func (o *Order) Clone() *Order {
	cp := *o
	if o.SupplierID != nil {
		v := *o.SupplierID
		cp.SupplierID = &v
	}
	if o.FromWarehouseID != nil {
		v := *o.FromWarehouseID
		cp.FromWarehouseID = &v
	}
	if o.ToWarehouseID != nil {
		v := *o.ToWarehouseID
		cp.ToWarehouseID = &v
	}
	cp.SubmittedAt = cloneTime(o.SubmittedAt)
	cp.ApprovedAt = cloneTime(o.ApprovedAt)
	cp.RejectedAt = cloneTime(o.RejectedAt)
	cp.CancelledAt = cloneTime(o.CancelledAt)
	cp.ShippedAt = cloneTime(o.ShippedAt)
	cp.ReceivedAt = cloneTime(o.ReceivedAt)
	cp.ExpectedAt = cloneTime(o.ExpectedAt)
	cp.DeletedAt = cloneTime(o.DeletedAt)
	cp.Supplier = nil

	if o.Lines != nil {
		cp.Lines = make([]OrderLine, len(o.Lines))
		for i := range o.Lines {
			cp.Lines[i] = o.Lines[i].clone()
		}
	}
	if o.Events != nil {
		cp.Events = make([]WorkflowEvent, len(o.Events))
		copy(cp.Events, o.Events)
	}
	return &cp
}

func (l *OrderLine) clone() OrderLine {
	cp := *l
	cp.Shipped = cloneFloat(l.Shipped)
	cp.Received = cloneFloat(l.Received)
	if l.Batches != nil {
		cp.Batches = make([]BatchRecord, len(l.Batches))
		for i := range l.Batches {
			b := l.Batches[i]
			b.ProducedAt = cloneTime(b.ProducedAt)
			b.ExpiresAt = cloneTime(b.ExpiresAt)
			cp.Batches[i] = b
		}
	}
	if l.Serials != nil {
		cp.Serials = make([]SerialNumber, len(l.Serials))
		copy(cp.Serials, l.Serials)
	}
	return cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
