package workflow

import (
	"sort"
	"time"

	"github.com/bitfantasy/nimo-oms/internal/erp/entity"
)

// appendEvent 向订单时间线追加一条事件。
// 时间戳保持严格递增：同一纳秒内的连续流转向后顺延。
func appendEvent(order *entity.Order, ev entity.WorkflowEvent) {
	ts := time.Now()
	if n := len(order.Events); n > 0 {
		last := order.Events[n-1].CreatedAt
		if !ts.After(last) {
			ts = last.Add(time.Nanosecond)
		}
	}
	ev.CreatedAt = ts
	order.Events = append(order.Events, ev)
}

// History 按时间升序返回订单的全部流转事件副本。
// 事件只追加，不存在修改或删除操作。
func History(order *entity.Order) []entity.WorkflowEvent {
	out := make([]entity.WorkflowEvent, len(order.Events))
	copy(out, order.Events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
