package strategy

import (
	"time"

	"github.com/itqwq/tmonitor/model"
)

// KDJConfirmer KDJ 高位/低位确认。
//
// 顶部：最近 tolerance 根K线（含当前）中存在一根 K、D 都大于 high，并且在它之前 lookback 根内出现死叉，
// 或者 J 比上一根下降。底部对称：K、D 都小于 low，金叉或 J 上升。
type KDJConfirmer struct {
	high      float64
	low       float64
	tolerance int
	lookback  int
}

func NewKDJConfirmer(cfg model.Config) KDJConfirmer {
	return KDJConfirmer{
		high:      cfg.KDJHigh,
		low:       cfg.KDJLow,
		tolerance: cfg.AlignTolerance,
		lookback:  cfg.CrossLookback,
	}
}

// Depth 确认需要回看的K线数（含当前）
func (c KDJConfirmer) Depth() int {
	return c.tolerance + c.lookback + 2
}

// Confirm 以 history 的最后一根为当前K线判断 side 方向的确认（SELL 为顶部，BUY 为底部），
// 只使用序号不小于 since 的K线作为确认点
func (c KDJConfirmer) Confirm(side model.SideType, history *model.Ring[model.BarState], since int) bool {
	if history.Len() == 0 {
		return false
	}
	current := history.Last(0).Index

	from := current - c.tolerance
	if since > from {
		from = since
	}
	for t := from; t <= current; t++ {
		st, ok := at(history, t)
		if !ok {
			continue
		}

		if side == model.SideTypeSell {
			if st.K > c.high && st.D > c.high {
				if c.cross(history, t, side) {
					return true
				}
				if prev, ok := at(history, t-1); ok && st.J < prev.J {
					return true
				}
			}
			continue
		}

		if st.K < c.low && st.D < c.low {
			if c.cross(history, t, side) {
				return true
			}
			if prev, ok := at(history, t-1); ok && st.J > prev.J {
				return true
			}
		}
	}
	return false
}

// cross 在 [t-lookback+1, t] 内是否出现死叉（卖出）或金叉（买入）
func (c KDJConfirmer) cross(history *model.Ring[model.BarState], t int, side model.SideType) bool {
	from := t - c.lookback + 1
	if from < 1 {
		from = 1
	}
	for u := from; u <= t; u++ {
		prev, ok := at(history, u-1)
		if !ok {
			continue
		}
		cur, ok := at(history, u)
		if !ok {
			continue
		}

		k := model.Series[float64]{prev.K, cur.K}
		d := model.Series[float64]{prev.D, cur.D}
		if side == model.SideTypeSell && k.Crossunder(d) {
			return true
		}
		if side == model.SideTypeBuy && k.Crossover(d) {
			return true
		}
	}
	return false
}

// at 按K线序号取状态，history 最后一根为当前K线
func at(history *model.Ring[model.BarState], index int) (model.BarState, bool) {
	if index < 0 || history.Len() == 0 {
		return model.BarState{}, false
	}
	offset := history.Last(0).Index - index
	if offset < 0 || offset >= history.Len() {
		return model.BarState{}, false
	}
	return history.Last(offset), true
}

// Confirmed 待确认队列中被确认的候选
type Confirmed struct {
	model.PendingConfirmation
	Lag int // 确认K线与极值点之间的K线数
}

// ConfirmFunc 判断当前K线是否确认 side 方向，since 为极值点的序号
type ConfirmFunc func(side model.SideType, since int) bool

// ConfirmationTracker 管理买卖两个方向的待确认队列。
// 每根K线先按入队顺序检查：超过容忍K线数的直接丢弃，即使当前K线满足确认条件；
// 在窗口内且满足条件的出队交给去重；其余继续等待。
type ConfirmationTracker struct {
	tolerance int
	interval  time.Duration
	sell      []model.PendingConfirmation
	buy       []model.PendingConfirmation
}

func NewConfirmationTracker(tolerance int, interval time.Duration) *ConfirmationTracker {
	return &ConfirmationTracker{
		tolerance: tolerance,
		interval:  interval,
	}
}

// Enqueue 加入待确认队列，deadline = 极值点时间 + 容忍K线数 * 周期
func (t *ConfirmationTracker) Enqueue(candidate Candidate) model.PendingConfirmation {
	pending := model.PendingConfirmation{
		Node:      candidate.Node,
		Ref:       candidate.Ref,
		Side:      candidate.Side,
		PriceDiff: candidate.PriceDiff,
		MACDDiff:  candidate.MACDDiff,
		Deadline:  candidate.Node.Time.Add(time.Duration(t.tolerance) * t.interval),
	}

	if candidate.Side == model.SideTypeSell {
		t.sell = append(t.sell, pending)
	} else {
		t.buy = append(t.buy, pending)
	}
	return pending
}

// Flush 用当前K线处理两个队列，先卖后买
func (t *ConfirmationTracker) Flush(current model.BarState, confirm ConfirmFunc) (confirmed []Confirmed, expired []model.PendingConfirmation) {
	var c []Confirmed
	var e []model.PendingConfirmation
	t.sell, c, e = t.consume(t.sell, current, confirm)
	confirmed = append(confirmed, c...)
	expired = append(expired, e...)

	t.buy, c, e = t.consume(t.buy, current, confirm)
	confirmed = append(confirmed, c...)
	expired = append(expired, e...)
	return confirmed, expired
}

func (t *ConfirmationTracker) consume(queue []model.PendingConfirmation, current model.BarState,
	confirm ConfirmFunc) (keep []model.PendingConfirmation, confirmed []Confirmed, expired []model.PendingConfirmation) {

	for _, item := range queue {
		lag := current.Index - item.Node.Index
		switch {
		case lag < 0:
			keep = append(keep, item)
		case lag > t.tolerance:
			expired = append(expired, item)
		case confirm(item.Side, item.Node.Index):
			confirmed = append(confirmed, Confirmed{PendingConfirmation: item, Lag: lag})
		default:
			keep = append(keep, item)
		}
	}
	return keep, confirmed, expired
}

// Len 待确认的候选数量
func (t *ConfirmationTracker) Len(side model.SideType) int {
	if side == model.SideTypeSell {
		return len(t.sell)
	}
	return len(t.buy)
}
