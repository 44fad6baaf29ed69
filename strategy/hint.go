package strategy

import (
	"math"

	"github.com/itqwq/tmonitor/model"
)

type hintMark struct {
	index int
	price float64
	set   bool
}

// HintDetector 弱提示：KDJ 高位且 MACD 减速的高点（或对称的低点），还没形成背离，只记日志。
// 带冷却期和最小价格变动过滤。
type HintDetector struct {
	high, low      float64
	cooldown       int
	minPriceChange float64
	last           map[model.SideType]hintMark
}

func NewHintDetector(cfg model.Config) *HintDetector {
	return &HintDetector{
		high:           cfg.KDJHigh,
		low:            cfg.KDJLow,
		cooldown:       cfg.WeakCooldownBars,
		minPriceChange: cfg.WeakMinPriceChange,
		last:           make(map[model.SideType]hintMark),
	}
}

// Check 判断当前K线是否给出 side 方向的弱提示，extremum 表示当前K线是否为对应方向的极值点
func (h *HintDetector) Check(side model.SideType, st, prev model.BarState, extremum bool) (model.Hint, bool) {
	mark := h.last[side]
	price := st.Close

	if mark.set && st.Index-mark.index < h.cooldown {
		// 冷却期内价格已经穿回均线，不再提示
		if side == model.SideTypeBuy && price > st.EMA5 {
			return model.Hint{}, false
		}
		if side == model.SideTypeSell && price < st.EMA5 {
			return model.Hint{}, false
		}
	}

	if mark.set && math.Abs(price-mark.price)/mark.price < h.minPriceChange && st.Index-mark.index < h.cooldown*2 {
		return model.Hint{}, false
	}

	if !extremum {
		return model.Hint{}, false
	}

	hinted := false
	switch side {
	case model.SideTypeSell:
		hinted = st.K > h.high && st.D > h.high &&
			(st.MACD < prev.MACD || st.DIF <= st.DEA) &&
			st.Close > st.EMA5
	case model.SideTypeBuy:
		hinted = st.K < h.low && st.D < h.low &&
			(st.MACD > prev.MACD || st.DIF >= st.DEA) &&
			st.Close < st.EMA5
	}
	if !hinted {
		return model.Hint{}, false
	}

	h.last[side] = hintMark{index: st.Index, price: price, set: true}
	return model.Hint{
		Symbol: st.Symbol,
		Side:   side,
		Price:  price,
		Time:   st.Time,
	}, true
}
