package indicator

import (
	"errors"
	"fmt"
	"time"

	"github.com/itqwq/tmonitor/model"
)

// ErrOutOfOrder K线时间没有严格递增（乱序或重复）
var ErrOutOfOrder = errors.New("bar out of order")

type symbolState struct {
	index    int
	lastTime time.Time

	fast, slow, signal *EWMA
	ema5               *EWMA
	k, d               *EWMA

	kdjRange      *RollingExtreme // KDJ 的 N 周期高低点
	extremumRange *RollingExtreme // 局部极值的 W 周期高低点
}

// Engine 增量计算 MACD、KDJ、EMA5 以及滚动高低点，每只股票一份独立状态，
// 每根K线 O(1)。Engine 本身不加锁，一只股票只能由一个协程驱动。
type Engine struct {
	cfg    model.Config
	states map[string]*symbolState
}

func NewEngine(cfg model.Config) *Engine {
	return &Engine{
		cfg:    cfg,
		states: make(map[string]*symbolState),
	}
}

func (e *Engine) state(symbol string) *symbolState {
	st, ok := e.states[symbol]
	if !ok {
		st = &symbolState{
			index:         -1,
			fast:          NewEWMA(e.cfg.MACDFast),
			slow:          NewEWMA(e.cfg.MACDSlow),
			signal:        NewEWMA(e.cfg.MACDSignal),
			ema5:          NewEWMA(5),
			k:             NewSmoothing(e.cfg.KDJK),
			d:             NewSmoothing(e.cfg.KDJD),
			kdjRange:      NewRollingExtreme(e.cfg.KDJN),
			extremumRange: NewRollingExtreme(e.cfg.ExtremumWindow),
		}
		e.states[symbol] = st
	}
	return st
}

// Update 追加一根K线并返回它的指标状态。时间不大于上一根K线时返回 ErrOutOfOrder，状态保持不变。
func (e *Engine) Update(bar model.Bar) (model.BarState, error) {
	st := e.state(bar.Symbol)
	if st.index >= 0 && !bar.Time.After(st.lastTime) {
		return model.BarState{}, fmt.Errorf("%w: %s at %s, last %s", ErrOutOfOrder, bar.Symbol,
			bar.Time.Format(time.DateTime), st.lastTime.Format(time.DateTime))
	}

	st.index++
	st.lastTime = bar.Time

	dif := st.fast.Update(bar.Close) - st.slow.Update(bar.Close)
	dea := st.signal.Update(dif)

	highN, lowN := st.kdjRange.Update(st.index, bar.High, bar.Low)
	rsv := 0.0
	if highN-lowN != 0 {
		rsv = (bar.Close - lowN) / (highN - lowN) * 100
	}
	k := st.k.Update(rsv)
	d := st.d.Update(k)

	rollingHigh, rollingLow := st.extremumRange.Update(st.index, bar.High, bar.Low)

	return model.BarState{
		Bar:         bar,
		Index:       st.index,
		DIF:         dif,
		DEA:         dea,
		MACD:        2 * (dif - dea),
		K:           k,
		D:           d,
		J:           3*k - 2*d,
		EMA5:        st.ema5.Update(bar.Close),
		RollingHigh: rollingHigh,
		RollingLow:  rollingLow,
	}, nil
}

// Bars 已处理的K线数量
func (e *Engine) Bars(symbol string) int {
	if st, ok := e.states[symbol]; ok {
		return st.index + 1
	}
	return 0
}
