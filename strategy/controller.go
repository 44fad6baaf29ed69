package strategy

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/itqwq/tmonitor/indicator"
	"github.com/itqwq/tmonitor/model"
)

// ErrInvalidBar K线数据不可用（NaN、非正价格、最高价低于最低价），该股票的监控无法继续
var ErrInvalidBar = errors.New("invalid bar")

// Controller 单只股票的处理链：指标计算 -> 历史缓存 -> 策略
type Controller struct {
	symbol   string
	engine   *indicator.Engine
	strategy Strategy
	history  *model.Ring[model.BarState]
}

func NewStrategyController(symbol string, cfg model.Config, strategy Strategy) *Controller {
	depth := cfg.MaxHistoryBars
	if s, ok := strategy.(interface{ HistoryDepth() int }); ok && s.HistoryDepth() > depth {
		depth = s.HistoryDepth()
	}

	return &Controller{
		symbol:   symbol,
		engine:   indicator.NewEngine(cfg),
		strategy: strategy,
		history:  model.NewRing[model.BarState](depth),
	}
}

// OnBar 处理一根收盘K线。乱序K线返回 indicator.ErrOutOfOrder 且不改变任何状态；
// 数据异常返回 ErrInvalidBar。
func (c *Controller) OnBar(bar model.Bar) ([]model.Signal, []model.Hint, error) {
	if bar.Symbol == "" {
		bar.Symbol = c.symbol
	}
	if bar.Symbol != c.symbol {
		return nil, nil, fmt.Errorf("%w: symbol %s, expected %s", ErrInvalidBar, bar.Symbol, c.symbol)
	}
	if !bar.Valid() {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidBar, bar)
	}

	if last, ok := c.Last(); ok && !bar.Time.After(last.Time) {
		log.WithField("symbol", c.symbol).Errorf("late bar received: %s", bar)
	}

	state, err := c.engine.Update(bar)
	if err != nil {
		return nil, nil, err
	}
	c.history.Push(state)

	signals, hints := c.strategy.OnBar(state, c.history)
	return signals, hints, nil
}

// Last 最近一根K线的状态
func (c *Controller) Last() (model.BarState, bool) {
	if c.history.Len() == 0 {
		return model.BarState{}, false
	}
	return c.history.Last(0), true
}

// History 缓存中的K线状态，按时间正序
func (c *Controller) History() []model.BarState {
	return c.history.Values()
}

func (c *Controller) Bars() int {
	return c.engine.Bars(c.symbol)
}
