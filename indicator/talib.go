package indicator

import "github.com/markcheno/go-talib"

// 批量指标，基于 go-talib，供仓位评分在历史窗口上使用

type MaType = talib.MaType

const (
	TypeSMA = talib.SMA
)

// BB 布林带，返回上轨、中轨、下轨
func BB(input []float64, period int, deviation float64, maType MaType) ([]float64, []float64, []float64) {
	return talib.BBands(input, period, deviation, deviation, maType)
}

// TRANGE 真实波幅
func TRANGE(high, low, closes []float64) []float64 {
	return talib.TRange(high, low, closes)
}

