package strategy

import (
	"math"

	"github.com/samber/lo"

	"github.com/itqwq/tmonitor/indicator"
	"github.com/itqwq/tmonitor/model"
)

// 仓位评分需要的最少K线数
const scorePeriod = 31

const (
	weightTrend = 0.4
	weightBB    = 0.3
	weightVol   = 0.2
)

// PositionScore 仓位评分，范围 [-1, 1]。
// 趋势（收盘价与 EMA5、EMA20 的排列）、布林带位置（按方向取正负）、量比三项加权，
// 再乘以 ATR 抑制系数：ATR 占价格 2% 及以上时评分归零。K线不足时返回 0。
func PositionScore(history []model.BarState, side model.SideType) float64 {
	if len(history) < scorePeriod {
		return 0
	}

	closes := lo.Map(history, func(st model.BarState, _ int) float64 { return st.Close })
	highs := lo.Map(history, func(st model.BarState, _ int) float64 { return st.High })
	lows := lo.Map(history, func(st model.BarState, _ int) float64 { return st.Low })
	volumes := lo.Map(history, func(st model.BarState, _ int) float64 { return st.Volume })

	last := len(closes) - 1
	price := closes[last]

	ema5 := history[last].EMA5
	ema20 := indicator.NewEWMA(20)
	for _, value := range closes {
		ema20.Update(value)
	}
	trend := trendOf(price, ema5, ema20.Value())

	upper, middle, _ := indicator.BB(closes, 20, 2, indicator.TypeSMA)
	bb := 0.0
	if upper[last] > middle[last] {
		bb = clip((price-middle[last])/(upper[last]-middle[last]), -1, 1)
	}
	if side == model.SideTypeBuy {
		bb = -bb
	}

	recentVolumes := model.Series[float64](volumes).LastValues(scorePeriod)
	mean := lo.Sum(recentVolumes) / float64(len(recentVolumes))
	ratio := volumes[last] / (mean + 1e-9)
	vol := clip((ratio-1)/(1.5-1), 0, 1)

	trueRange := model.Series[float64](indicator.TRANGE(highs, lows, closes)).LastValues(14)
	atr := lo.Sum(trueRange) / float64(len(trueRange))
	atrFactor := clip(1-atr/(price+1e-9)/0.02, 0, 1)

	score := (weightTrend*trend + weightBB*bb + weightVol*vol) * atrFactor
	return clip(score, -1, 1)
}

// PositionPercent 评分对应的建议仓位
func PositionPercent(score float64) int {
	switch {
	case score <= 0.2:
		return 10
	case score <= 0.5:
		return 60
	default:
		return 100
	}
}

// trendOf 多头排列为 1，空头排列为 -1，其余为 0
func trendOf(price, ema5, ema20 float64) float64 {
	switch {
	case price > ema5 && ema5 > ema20:
		return 1
	case price < ema5 && ema5 < ema20:
		return -1
	}
	return 0
}

func clip(v, lower, upper float64) float64 {
	return math.Min(math.Max(v, lower), upper)
}
