package tmonitor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jpillora/backoff"
	"github.com/schollz/progressbar/v3"

	"github.com/itqwq/tmonitor/exchange"
	"github.com/itqwq/tmonitor/indicator"
	"github.com/itqwq/tmonitor/model"
	"github.com/itqwq/tmonitor/notification"
	"github.com/itqwq/tmonitor/service"
	"github.com/itqwq/tmonitor/strategy"
	"github.com/itqwq/tmonitor/tools/log"
)

// 每隔多少次轮询打印一次最新价
const heartbeatTicks = 5

type MonitorState int32

const (
	StateConnecting MonitorState = iota
	StateRunning
	StateStopped
)

func (s MonitorState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Monitor 单只股票的监控循环：拉取K线，按时间顺序送入策略，把信号交给 emit
type Monitor struct {
	symbol     string
	name       string
	cfg        model.Config
	feeder     service.Feeder
	controller *strategy.Controller
	emit       func(model.Signal)
	now        func() time.Time

	replay     bool
	start, end time.Time
	progress   bool

	state atomic.Int32
	ticks int
}

func newMonitor(symbol, name string, cfg model.Config, feeder service.Feeder, emit func(model.Signal)) *Monitor {
	return &Monitor{
		symbol:     symbol,
		name:       name,
		cfg:        cfg,
		feeder:     feeder,
		controller: strategy.NewStrategyController(symbol, cfg, strategy.NewDivergence(cfg)),
		emit:       emit,
		now:        time.Now,
	}
}

func (m *Monitor) State() MonitorState {
	return MonitorState(m.state.Load())
}

func (m *Monitor) label() string {
	if m.name == "" {
		return m.symbol
	}
	return m.name + " " + m.symbol
}

// Run 阻塞直到 ctx 取消、回放结束或遇到无法恢复的数据错误
func (m *Monitor) Run(ctx context.Context) error {
	m.state.Store(int32(StateConnecting))
	defer m.state.Store(int32(StateStopped))

	if m.replay {
		return m.runReplay(ctx)
	}
	return m.runLive(ctx)
}

func (m *Monitor) runLive(ctx context.Context) error {
	log.WithSymbol(m.symbol).Infof("[%s] 开始监控，周期 %s", m.label(), m.cfg.Timeframe)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		if err := m.tick(ctx); err != nil {
			return err
		}
		timer.Reset(m.cfg.PollInterval)
	}
}

// tick 一次轮询：只处理比上一根更新的K线。拉取失败时跳过本次
func (m *Monitor) tick(ctx context.Context) error {
	bars, err := m.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.WithSymbol(m.symbol).WithError(err).Error("fetch bars failed, tick skipped")
		}
		return nil
	}
	m.state.Store(int32(StateRunning))

	for _, bar := range bars {
		if ctx.Err() != nil {
			return nil
		}
		if last, ok := m.controller.Last(); ok && !bar.Time.After(last.Time) {
			continue
		}
		if err := m.process(bar, true); err != nil {
			return err
		}
	}

	m.ticks++
	if last, ok := m.controller.Last(); ok && m.ticks%heartbeatTicks == 0 {
		log.WithSymbol(m.symbol).Infof("[%s] 最新价:%.2f", m.label(), last.Close)
	}
	return nil
}

func (m *Monitor) fetch(ctx context.Context) ([]model.Bar, error) {
	b := &backoff.Backoff{
		Min: m.cfg.RetryBackoff,
		Max: m.cfg.RetryBackoff,
	}

	for attempt := 0; ; attempt++ {
		bars, err := m.feeder.BarsByLimit(ctx, m.symbol, m.cfg.MaxHistoryBars)
		if err == nil {
			return bars, nil
		}
		if attempt >= m.cfg.MaxRetries || ctx.Err() != nil {
			return nil, err
		}

		log.WithSymbol(m.symbol).Warnf("fetch bars failed (%d/%d): %s", attempt+1, m.cfg.MaxRetries, err)
		if err := wait(ctx, b.Duration()); err != nil {
			return nil, err
		}
	}
}

// wait 等待 d，ctx 取消时立即返回并释放定时器
func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (m *Monitor) runReplay(ctx context.Context) error {
	bars, err := m.feeder.BarsByPeriod(ctx, m.symbol, m.start, m.end)
	if err != nil {
		return fmt.Errorf("replay %s: %w", m.symbol, err)
	}
	m.state.Store(int32(StateRunning))

	log.WithSymbol(m.symbol).Infof("[%s] 回放 %d 根K线", m.label(), len(bars))

	var progressBar *progressbar.ProgressBar
	if m.progress {
		progressBar = progressbar.Default(int64(len(bars)))
		defer progressBar.Close()
	}

	for _, bar := range bars {
		if ctx.Err() != nil {
			return nil
		}
		if err := m.process(bar, false); err != nil {
			return err
		}
		if progressBar != nil {
			if err := progressBar.Add(1); err != nil {
				log.Warnf("update progressbar fail: %v", err)
			}
		}
	}
	return nil
}

// process 乱序K线跳过，数据异常返回错误并结束该股票的监控
func (m *Monitor) process(bar model.Bar, live bool) error {
	signals, hints, err := m.controller.OnBar(bar)
	if errors.Is(err, indicator.ErrOutOfOrder) {
		return nil
	}
	if err != nil {
		log.WithSymbol(m.symbol).WithError(err).Error("monitor stopped")
		return fmt.Errorf("%s: %w", m.symbol, err)
	}

	for _, hint := range hints {
		log.WithSymbol(m.symbol).Info(notification.FormatHint(m.name, hint))
	}

	for _, signal := range signals {
		signal.Name = m.name
		if live {
			signal.Historical = m.historical(signal.Time)
		}
		m.emit(signal)
	}
	return nil
}

// historical 实盘启动时补算出的、早于今天的信号
func (m *Monitor) historical(t time.Time) bool {
	today := m.now().In(exchange.Location).Format(time.DateOnly)
	return t.In(exchange.Location).Format(time.DateOnly) < today
}
