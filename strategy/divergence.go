package strategy

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/itqwq/tmonitor/model"
)

// Divergence MACD 背离 + KDJ 确认策略，每只股票一个实例。
//
// 每根K线的处理顺序：
//  1. 用当前K线处理待确认队列（过期丢弃、确认出队）
//  2. 弱提示
//  3. 高点：与历史高点匹配顶背离，KDJ 已确认则立即发出，否则入队；然后记录该高点
//  4. 低点：同上，底背离
type Divergence struct {
	cfg model.Config

	detector  ExtremumDetector
	matcher   Matcher
	confirmer KDJConfirmer
	tracker   *ConfirmationTracker
	dedup     *Deduplicator
	hints     *HintDetector

	peaks   *model.Ring[model.ExtremumPoint]
	troughs *model.Ring[model.ExtremumPoint]
}

func NewDivergence(cfg model.Config) *Divergence {
	interval, err := cfg.Interval()
	if err != nil {
		interval = time.Minute
	}

	return &Divergence{
		cfg:       cfg,
		detector:  NewExtremumDetector(cfg.ExtremumWindow),
		matcher:   NewMatcher(cfg),
		confirmer: NewKDJConfirmer(cfg),
		tracker:   NewConfirmationTracker(cfg.AlignTolerance, interval),
		dedup:     NewDeduplicator(cfg.RepeatPriceChangeThreshold),
		hints:     NewHintDetector(cfg),
		peaks:     model.NewRing[model.ExtremumPoint](cfg.MaxPeakLookback),
		troughs:   model.NewRing[model.ExtremumPoint](cfg.MaxPeakLookback),
	}
}

func (d *Divergence) WarmupPeriod() int {
	return d.cfg.ExtremumWindow
}

// HistoryDepth 策略需要保留的最少K线状态数
func (d *Divergence) HistoryDepth() int {
	depth := d.confirmer.Depth()
	if depth < scorePeriod {
		depth = scorePeriod
	}
	return depth
}

// Pending 待确认的候选数量
func (d *Divergence) Pending(side model.SideType) int {
	return d.tracker.Len(side)
}

func (d *Divergence) OnBar(st model.BarState, history *model.Ring[model.BarState]) ([]model.Signal, []model.Hint) {
	if !d.detector.Ready(st) {
		return nil, nil
	}

	var signals []model.Signal
	var hints []model.Hint

	confirmed, expired := d.tracker.Flush(st, func(side model.SideType, since int) bool {
		return d.confirmer.Confirm(side, history, since)
	})
	for _, item := range expired {
		log.WithField("symbol", st.Symbol).Debugf("pending %s at %s expired, deadline %s",
			item.Side, item.Node.Time.Format(time.DateTime), item.Deadline.Format(time.DateTime))
	}
	for _, item := range confirmed {
		if !d.dedup.Admit(item.Side, item.Node) {
			continue
		}
		signal := d.signal(st, history, item.Node, item.Ref, item.Side, item.PriceDiff, item.MACDDiff)
		signal.Time = st.Time
		signal.Path = model.PathPending
		signal.Lag = item.Lag
		if d.cfg.Diagnostics {
			signal.Diagnostic = fmt.Sprintf("path=pending MACD@%s KDJ@%s lag=%d",
				item.Node.Time.Format(time.DateTime), st.Time.Format(time.DateTime), item.Lag)
		}
		signals = append(signals, signal)
	}

	peak, trough := d.detector.Detect(st)

	if d.cfg.EnableWeakHints {
		prev := st
		if p, ok := at(history, st.Index-1); ok {
			prev = p
		}
		if hint, ok := d.hints.Check(model.SideTypeSell, st, prev, peak != nil); ok {
			hints = append(hints, hint)
		}
		if hint, ok := d.hints.Check(model.SideTypeBuy, st, prev, trough != nil); ok {
			hints = append(hints, hint)
		}
	}

	if peak != nil {
		signals = append(signals, d.onExtremum(st, history, *peak, d.peaks)...)
	}
	if trough != nil {
		signals = append(signals, d.onExtremum(st, history, *trough, d.troughs)...)
	}

	return signals, hints
}

func (d *Divergence) onExtremum(st model.BarState, history *model.Ring[model.BarState],
	node model.ExtremumPoint, extrema *model.Ring[model.ExtremumPoint]) []model.Signal {

	var signals []model.Signal
	for _, candidate := range d.matcher.Match(node, extrema.Values()) {
		if !d.confirmer.Confirm(candidate.Side, history, st.Index-d.cfg.AlignTolerance) {
			d.tracker.Enqueue(candidate)
			continue
		}

		if !d.dedup.Admit(candidate.Side, node) {
			continue
		}
		signal := d.signal(st, history, node, candidate.Ref, candidate.Side, candidate.PriceDiff, candidate.MACDDiff)
		signal.Path = model.PathImmediate
		if d.cfg.Diagnostics {
			signal.Diagnostic = fmt.Sprintf("path=immediate MACD@%s->@%s",
				candidate.Ref.Time.Format(time.DateTime), node.Time.Format(time.DateTime))
		}
		signals = append(signals, signal)
	}
	extrema.Push(node)
	return signals
}

// signal 组装信号，KDJ 取确认K线 st 的值，仓位评分基于截至 st 的历史
func (d *Divergence) signal(st model.BarState, history *model.Ring[model.BarState], node, ref model.ExtremumPoint,
	side model.SideType, priceDiff, macdDiff float64) model.Signal {

	signal := model.Signal{
		Symbol:    st.Symbol,
		Side:      side,
		PriceDiff: priceDiff,
		MACDDiff:  macdDiff,
		Price:     node.Price,
		Time:      node.Time,
		NodeTime:  node.Time,
		RefTime:   ref.Time,
		K:         st.K,
		D:         st.D,
		J:         st.J,
	}

	if d.cfg.EnablePositionScore {
		signal.PositionScore = PositionScore(history.Values(), side)
		signal.PositionPct = PositionPercent(signal.PositionScore)
	}
	return signal
}
