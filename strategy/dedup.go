package strategy

import (
	"math"

	"github.com/itqwq/tmonitor/model"
)

// Deduplicator 信号去重：
// 同方向已经发出过相同价格且同一天、或者相同时间的信号时拒绝；
// 与同方向上一次信号价格相差小于阈值时拒绝，避免同一个平台反复报警。
type Deduplicator struct {
	threshold float64
	triggered map[model.SideType][]model.TriggeredSignal
	lastPrice map[model.SideType]float64
}

func NewDeduplicator(threshold float64) *Deduplicator {
	return &Deduplicator{
		threshold: threshold,
		triggered: make(map[model.SideType][]model.TriggeredSignal),
		lastPrice: make(map[model.SideType]float64),
	}
}

// Admit 判断 node 能否作为 side 方向的信号发出，通过时记录下来
func (d *Deduplicator) Admit(side model.SideType, node model.ExtremumPoint) bool {
	y, m, day := node.Time.Date()
	for _, s := range d.triggered[side] {
		sy, sm, sd := s.Time.Date()
		sameDay := y == sy && m == sm && day == sd
		if (s.Price == node.Price && sameDay) || s.Time.Equal(node.Time) {
			return false
		}
	}

	if last, ok := d.lastPrice[side]; ok {
		if math.Abs(node.Price-last)/math.Max(last, epsilon) < d.threshold {
			return false
		}
	}

	d.triggered[side] = append(d.triggered[side], model.TriggeredSignal{
		Price: node.Price,
		Time:  node.Time,
		Side:  side,
	})
	d.lastPrice[side] = node.Price
	return true
}
