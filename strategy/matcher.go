package strategy

import (
	"math"

	"github.com/itqwq/tmonitor/model"
)

const epsilon = 1e-6

// Candidate 新极值点与某个历史极值点构成的背离
type Candidate struct {
	Node      model.ExtremumPoint
	Ref       model.ExtremumPoint
	Side      model.SideType
	PriceDiff float64
	MACDDiff  float64
}

// Matcher 价格与 MACD 背离匹配
type Matcher struct {
	priceUp   float64
	priceDown float64
	macd      float64
}

func NewMatcher(cfg model.Config) Matcher {
	return Matcher{
		priceUp:   cfg.PriceUpThreshold,
		priceDown: cfg.PriceDownThreshold,
		macd:      cfg.MacdDivergenceThreshold,
	}
}

// Match 把 node 与同类型的历史极值点逐个比较（从最近的开始），所有满足条件的组合都返回。
// history 按时间正序排列。
//
// 顶背离：价格创新高但 MACD 按比例走低；底背离：价格创新低但 MACD 按比例抬高。
func (m Matcher) Match(node model.ExtremumPoint, history []model.ExtremumPoint) []Candidate {
	var candidates []Candidate
	for i := len(history) - 1; i >= 0; i-- {
		p := history[i]
		if p.Kind != node.Kind {
			continue
		}

		switch node.Kind {
		case model.Peak:
			priceDiff := (node.Price - p.Price) / math.Max(p.Price, epsilon)
			macdDiff := (p.MACD - node.MACD) / math.Max(math.Abs(p.MACD), epsilon)
			if priceDiff > m.priceUp && node.MACD < p.MACD*(1-m.macd) {
				candidates = append(candidates, Candidate{
					Node: node, Ref: p, Side: model.SideTypeSell,
					PriceDiff: priceDiff, MACDDiff: macdDiff,
				})
			}
		case model.Trough:
			priceDiff := (p.Price - node.Price) / math.Max(node.Price, epsilon)
			macdDiff := (node.MACD - p.MACD) / math.Max(math.Abs(p.MACD), epsilon)
			if priceDiff > m.priceDown && node.MACD > p.MACD*(1+m.macd) {
				candidates = append(candidates, Candidate{
					Node: node, Ref: p, Side: model.SideTypeBuy,
					PriceDiff: priceDiff, MACDDiff: macdDiff,
				})
			}
		}
	}
	return candidates
}
