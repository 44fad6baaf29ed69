package strategy

import (
	"time"

	"github.com/itqwq/tmonitor/model"
)

var start = time.Date(2025, 8, 28, 9, 31, 0, 0, time.Local)

func barTime(i int) time.Time {
	return start.Add(time.Duration(i) * time.Minute)
}

// neutral 非极值、KDJ 中性的K线
func neutral(i int) model.BarState {
	return model.BarState{
		Bar: model.Bar{
			Symbol: "600869",
			Time:   barTime(i),
			Open:   9.5,
			High:   9.6,
			Low:    9.4,
			Close:  9.5,
			Volume: 100,
		},
		Index:       i,
		MACD:        0.5,
		K:           50,
		D:           50,
		J:           50,
		EMA5:        9.5,
		RollingHigh: 20,
		RollingLow:  1,
	}
}

func peakAt(i int, price, macd float64) model.BarState {
	st := neutral(i)
	st.High = price
	st.RollingHigh = price
	st.MACD = macd
	return st
}

func troughAt(i int, price, macd float64) model.BarState {
	st := neutral(i)
	st.Low = price
	st.High = price + 0.2
	st.RollingLow = price
	st.MACD = macd
	return st
}

func withKDJ(st model.BarState, k, d float64) model.BarState {
	st.K = k
	st.D = d
	st.J = 3*k - 2*d
	return st
}

func testConfig() model.Config {
	cfg := model.DefaultConfig()
	cfg.ExtremumWindow = 2
	cfg.AlignTolerance = 2
	cfg.CrossLookback = 3
	cfg.MaxHistoryBars = 50
	cfg.Diagnostics = true
	cfg.EnableWeakHints = false
	cfg.EnablePositionScore = false
	return cfg
}

type runner struct {
	strategy *Divergence
	history  *model.Ring[model.BarState]
	signals  []model.Signal
	hints    []model.Hint
}

func newRunner(cfg model.Config) *runner {
	return &runner{
		strategy: NewDivergence(cfg),
		history:  model.NewRing[model.BarState](cfg.MaxHistoryBars),
	}
}

func (r *runner) push(states ...model.BarState) []model.Signal {
	var emitted []model.Signal
	for _, st := range states {
		r.history.Push(st)
		signals, hints := r.strategy.OnBar(st, r.history)
		emitted = append(emitted, signals...)
		r.signals = append(r.signals, signals...)
		r.hints = append(r.hints, hints...)
	}
	return emitted
}
