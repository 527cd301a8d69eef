package service

import "dcareport/internal/domain/model"

// DuplicateChecker 重复订单检查器
// 历史表只追加、不去重；这里只负责找出已经存在的 orderId 以便告警
// orderId 为 0（旧格式历史缺失该列）的记录不参与检查
type DuplicateChecker struct {
	seen map[int64]struct{}
}

// NewDuplicateChecker 用已有历史初始化检查器
func NewDuplicateChecker(history []model.Fill) *DuplicateChecker {
	c := &DuplicateChecker{seen: make(map[int64]struct{}, len(history))}
	for _, f := range history {
		if f.OrderID != 0 {
			c.seen[f.OrderID] = struct{}{}
		}
	}
	return c
}

// Check 返回 fills 中已经出现过的 orderId（按出现顺序）
func (c *DuplicateChecker) Check(fills []model.Fill) []int64 {
	var dups []int64
	for _, f := range fills {
		if f.OrderID == 0 {
			continue
		}
		if _, ok := c.seen[f.OrderID]; ok {
			dups = append(dups, f.OrderID)
			continue
		}
		c.seen[f.OrderID] = struct{}{}
	}
	return dups
}
