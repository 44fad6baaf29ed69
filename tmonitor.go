package tmonitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/StudioSol/set"

	"github.com/itqwq/tmonitor/exchange"
	"github.com/itqwq/tmonitor/feed"
	"github.com/itqwq/tmonitor/model"
	"github.com/itqwq/tmonitor/notification"
	"github.com/itqwq/tmonitor/service"
	"github.com/itqwq/tmonitor/storage"
	"github.com/itqwq/tmonitor/tools/log"
)

const defaultDatabase = "tmonitor.db"

func init() {
	log.Setup(log.InfoLevel)
}

type SignalSubscriber interface {
	OnSignal(model.Signal)
}

// Manager 一个进程监控多只股票，每只股票一个 Monitor 协程，互不共享可变状态
type Manager struct {
	settings model.Settings
	config   model.Config
	feeder   service.Feeder

	storage    storage.Storage
	notifiers  []service.Notifier
	telegram   service.Telegram
	signalFeed *feed.Feed

	symbols  *set.LinkedHashSetString
	names    map[string]string
	monitors map[string]*Monitor
	mu       sync.RWMutex

	signals *model.PriorityQueue
	muted   atomic.Bool

	replay     bool
	start, end time.Time
	progress   bool
	now        func() time.Time
}

type Option func(*Manager)

func NewManager(settings model.Settings, feeder service.Feeder, options ...Option) (*Manager, error) {
	manager := &Manager{
		settings:   settings,
		config:     model.DefaultConfig(),
		feeder:     feeder,
		signalFeed: feed.NewSignalFeed(),
		symbols:    set.NewLinkedHashSetString(),
		names:      make(map[string]string),
		monitors:   make(map[string]*Monitor),
		signals:    model.NewPriorityQueue(nil),
		now:        time.Now,
	}

	for _, symbol := range settings.Symbols {
		if _, err := exchange.MarketOf(symbol); err != nil {
			return nil, err
		}
		manager.symbols.Add(symbol)
	}

	for _, option := range options {
		option(manager)
	}

	if err := manager.config.Validate(); err != nil {
		return nil, err
	}

	var err error
	if manager.storage == nil {
		if manager.replay {
			manager.storage, err = storage.FromMemory()
		} else {
			manager.storage, err = storage.FromFile(defaultDatabase)
		}
		if err != nil {
			return nil, err
		}
	}

	if settings.Telegram.Enabled {
		manager.telegram, err = notification.NewTelegram(manager, settings)
		if err != nil {
			return nil, err
		}
		manager.notifiers = append(manager.notifiers, manager.telegram)
	}

	if settings.Feishu.Enabled {
		manager.notifiers = append(manager.notifiers, notification.NewFeishu(settings.Feishu))
	}

	if settings.Mail.Enabled {
		manager.notifiers = append(manager.notifiers, notification.NewMail(settings.Mail))
	}

	for _, notifier := range manager.notifiers {
		notifier := notifier
		manager.signalFeed.Subscribe(feed.AllSymbols, func(signal model.Signal) {
			if manager.muted.Load() {
				return
			}
			notifier.OnSignal(signal)
		}, false)
	}

	return manager, nil
}

func WithConfig(config model.Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithReplay 回放 [start, end] 的历史K线，不轮询
func WithReplay(start, end time.Time) Option {
	return func(m *Manager) {
		m.replay = true
		m.start = start
		m.end = end
	}
}

// WithProgress 回放时输出进度条
func WithProgress() Option {
	return func(m *Manager) {
		m.progress = true
	}
}

func WithStorage(storage storage.Storage) Option {
	return func(m *Manager) {
		m.storage = storage
	}
}

func WithNotifier(notifier service.Notifier) Option {
	return func(m *Manager) {
		m.notifiers = append(m.notifiers, notifier)
	}
}

func WithLogLevel(level log.Level) Option {
	return func(m *Manager) {
		log.SetLevel(level)
	}
}

func WithSignalSubscription(subscriber SignalSubscriber) Option {
	return func(m *Manager) {
		m.signalFeed.Subscribe(feed.AllSymbols, subscriber.OnSignal, false)
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(m *Manager) {
		m.config.PollInterval = interval
	}
}

// WithNames 股票代码到名称的映射，用于消息展示
func WithNames(names map[string]string) Option {
	return func(m *Manager) {
		for symbol, name := range names {
			m.names[symbol] = name
		}
	}
}

// WithClock 判断历史信号时使用的时钟
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func (m *Manager) emit(signal model.Signal) {
	log.WithSymbol(signal.Symbol).Warn(notification.FormatSignal(signal))

	if err := m.storage.CreateSignal(&signal); err != nil {
		log.WithSymbol(signal.Symbol).WithError(err).Error("couldnt save signal")
	}

	m.signals.Push(signal)
	m.signalFeed.Publish(signal)
}

// Run 启动全部监控并阻塞到它们结束，返回各股票无法恢复的错误
func (m *Manager) Run(ctx context.Context) error {
	m.signalFeed.Start()
	defer m.signalFeed.Stop()

	if m.telegram != nil && !m.replay {
		m.telegram.Start()
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	symbols := make([]string, 0, len(m.settings.Symbols))
	for symbol := range m.symbols.Iter() {
		symbols = append(symbols, symbol)
	}

	for _, symbol := range symbols {
		monitor := newMonitor(symbol, m.names[symbol], m.config, m.feeder, m.emit)
		monitor.now = m.now
		monitor.replay = m.replay
		monitor.start, monitor.end = m.start, m.end
		monitor.progress = m.progress && len(symbols) == 1

		m.mu.Lock()
		m.monitors[symbol] = monitor
		m.mu.Unlock()

		wg.Add(1)
		go func(monitor *Monitor) {
			defer wg.Done()
			if err := monitor.Run(ctx); err != nil {
				for _, notifier := range m.notifiers {
					notifier.OnError(err)
				}
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(monitor)
	}

	wg.Wait()
	return errors.Join(errs...)
}

// Status 各股票监控状态
func (m *Manager) Status() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := make(map[string]string, len(m.monitors))
	for symbol, monitor := range m.monitors {
		status[symbol] = monitor.State().String()
	}
	return status
}

// RecentSignals 最近 limit 条信号，symbol 为空时不过滤
func (m *Manager) RecentSignals(symbol string, limit int) ([]model.Signal, error) {
	var filters []storage.SignalFilter
	if symbol != "" {
		filters = append(filters, storage.WithSymbol(symbol))
	}

	signals, err := m.storage.Signals(filters...)
	if err != nil {
		return nil, fmt.Errorf("recent signals: %w", err)
	}

	if limit > 0 && len(signals) > limit {
		signals = signals[len(signals)-limit:]
	}

	result := make([]model.Signal, 0, len(signals))
	for _, signal := range signals {
		result = append(result, *signal)
	}
	return result, nil
}

func (m *Manager) Mute(muted bool) {
	m.muted.Store(muted)
	log.Infof("notifications muted: %v", muted)
}

// Signals 本次运行发出的全部信号，按时间排序
func (m *Manager) Signals() []model.Signal {
	items := m.signals.Drain()
	signals := make([]model.Signal, 0, len(items))
	for _, item := range items {
		signal := item.(model.Signal)
		signals = append(signals, signal)
		m.signals.Push(signal)
	}
	return signals
}
