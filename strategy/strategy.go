package strategy

import (
	"github.com/itqwq/tmonitor/model"
)

// Strategy 逐根K线处理指标状态。history 为该股票最近的K线状态（含当前K线，最后一根即 state）。
type Strategy interface {
	// WarmupPeriod 开始判断前需要的K线数
	WarmupPeriod() int
	OnBar(state model.BarState, history *model.Ring[model.BarState]) ([]model.Signal, []model.Hint)
}
