package tmonitor

import (
	"bytes"
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/itqwq/tmonitor/exchange"
	"github.com/itqwq/tmonitor/mocks"
	"github.com/itqwq/tmonitor/model"
	"github.com/itqwq/tmonitor/storage"
	"github.com/itqwq/tmonitor/strategy"
)

var testBase = time.Date(2025, 8, 28, 9, 30, 0, 0, exchange.Location)

// syntheticBars 横盘、急涨、回落循环，急涨后段动能衰减，足以产生顶背离
func syntheticBars(symbol string) []model.Bar {
	price := 10.0
	bars := make([]model.Bar, 0, 510)
	add := func(delta float64) {
		open := price
		price += delta
		bars = append(bars, model.Bar{
			Symbol: symbol,
			Time:   testBase.Add(time.Duration(len(bars)) * time.Minute),
			Open:   open,
			Close:  price,
			High:   math.Max(open, price) + 0.005,
			Low:    math.Min(open, price) - 0.005,
			Volume: 1000 + float64(len(bars)%7)*100,
		})
	}

	for cycle := 0; cycle < 6; cycle++ {
		for i := 0; i < 30; i++ {
			if i%2 == 0 {
				add(0.01)
			} else {
				add(-0.01)
			}
		}
		for i := 0; i < 25; i++ {
			add(0.05)
		}
		for i := 0; i < 30; i++ {
			add(-0.03)
		}
	}
	return bars
}

func testConfig() model.Config {
	cfg := model.DefaultConfig()
	cfg.ExtremumWindow = 5
	cfg.PriceUpThreshold = 0.01
	cfg.PriceDownThreshold = 0.01
	cfg.MacdDivergenceThreshold = 0.1
	cfg.RepeatPriceChangeThreshold = 0
	cfg.EnableWeakHints = false
	cfg.PollInterval = time.Millisecond
	cfg.RetryBackoff = time.Millisecond
	cfg.MaxRetries = 1
	return cfg
}

// liveFeeder 每次轮询多放出 step 根K线，全部放完后调用 done
type liveFeeder struct {
	mu        sync.Mutex
	bars      map[string][]model.Bar
	served    map[string]int
	step      int
	failFirst int
	calls     int
	done      func()
}

func (f *liveFeeder) BarsByLimit(_ context.Context, symbol string, limit int) ([]model.Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.calls <= f.failFirst {
		return nil, errors.New("connection reset")
	}

	bars := f.bars[symbol]
	if f.served[symbol] >= len(bars) {
		f.done()
		return nil, context.Canceled
	}

	f.served[symbol] = min(f.served[symbol]+f.step, len(bars))
	end := f.served[symbol]
	return bars[max(0, end-limit):end], nil
}

func (f *liveFeeder) BarsByPeriod(_ context.Context, symbol string, _, _ time.Time) ([]model.Bar, error) {
	return f.bars[symbol], nil
}

type recorder struct {
	mu      sync.Mutex
	signals []model.Signal
}

func (r *recorder) OnSignal(signal model.Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, signal)
}

func withoutIDs(signals []model.Signal) []model.Signal {
	result := make([]model.Signal, len(signals))
	for i, signal := range signals {
		signal.ID = 0
		result[i] = signal
	}
	return result
}

func newMemoryStorage(t *testing.T) storage.Storage {
	repo, err := storage.FromMemory()
	require.NoError(t, err)
	return repo
}

func TestManager_ReplayMatchesLive(t *testing.T) {
	bars := syntheticBars("600869")
	settings := model.Settings{Symbols: []string{"600869"}}

	replayFeeder := &liveFeeder{bars: map[string][]model.Bar{"600869": bars}}
	replayRecorder := &recorder{}
	replay, err := NewManager(settings, replayFeeder,
		WithConfig(testConfig()),
		WithReplay(bars[0].Time, bars[len(bars)-1].Time),
		WithSignalSubscription(replayRecorder),
		WithNames(map[string]string{"600869": "远东股份"}),
	)
	require.NoError(t, err)
	require.NoError(t, replay.Run(context.Background()))

	replaySignals := replay.Signals()
	require.NotEmpty(t, replaySignals)
	require.Len(t, replayRecorder.signals, len(replaySignals))
	for _, signal := range replaySignals {
		require.Equal(t, "远东股份", signal.Name)
		require.False(t, signal.Historical)
		require.Contains(t, []string{model.PathImmediate, model.PathPending}, signal.Path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	liveFeeder := &liveFeeder{
		bars:   map[string][]model.Bar{"600869": bars},
		served: make(map[string]int),
		step:   50,
		done:   cancel,
	}
	notifier := mocks.NewNotifier(t)
	notifier.On("OnSignal", mock.Anything).Return()

	live, err := NewManager(settings, liveFeeder,
		WithConfig(testConfig()),
		WithStorage(newMemoryStorage(t)),
		WithNotifier(notifier),
		WithNames(map[string]string{"600869": "远东股份"}),
		WithClock(func() time.Time { return testBase }),
	)
	require.NoError(t, err)
	require.NoError(t, live.Run(ctx))

	require.Equal(t, withoutIDs(replaySignals), withoutIDs(live.Signals()))
	notifier.AssertNumberOfCalls(t, "OnSignal", len(replaySignals))
	require.Equal(t, map[string]string{"600869": "stopped"}, live.Status())

	recent, err := live.RecentSignals("600869", 2)
	require.NoError(t, err)
	require.Len(t, recent, min(2, len(replaySignals)))
	require.Equal(t, replaySignals[len(replaySignals)-1].Time, recent[len(recent)-1].Time)
}

func TestManager_HistoricalSignals(t *testing.T) {
	bars := syntheticBars("600869")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feeder := &liveFeeder{
		bars:   map[string][]model.Bar{"600869": bars},
		served: make(map[string]int),
		step:   100,
		done:   cancel,
	}
	manager, err := NewManager(model.Settings{Symbols: []string{"600869"}}, feeder,
		WithConfig(testConfig()),
		WithStorage(newMemoryStorage(t)),
		WithClock(func() time.Time { return testBase.AddDate(0, 0, 7) }),
	)
	require.NoError(t, err)
	require.NoError(t, manager.Run(ctx))

	signals := manager.Signals()
	require.NotEmpty(t, signals)
	for _, signal := range signals {
		require.True(t, signal.Historical)
	}
}

func TestManager_FetchFailureSkipsTick(t *testing.T) {
	bars := syntheticBars("600869")[:200]
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MaxRetries 为 1：前两次失败跳过第一次轮询，第三次成功
	feeder := &liveFeeder{
		bars:      map[string][]model.Bar{"600869": bars},
		served:    make(map[string]int),
		step:      200,
		failFirst: 2,
		done:      cancel,
	}
	manager, err := NewManager(model.Settings{Symbols: []string{"600869"}}, feeder,
		WithConfig(testConfig()),
		WithStorage(newMemoryStorage(t)),
	)
	require.NoError(t, err)
	require.NoError(t, manager.Run(ctx))
	require.Equal(t, 200, feeder.served["600869"])
	require.GreaterOrEqual(t, feeder.calls, 4)
}

func TestManager_InvalidBarStopsSymbol(t *testing.T) {
	good := syntheticBars("600869")
	bad := syntheticBars("000001")
	bad[100].Close = math.NaN()

	feeder := &liveFeeder{bars: map[string][]model.Bar{"600869": good, "000001": bad}}
	notifier := mocks.NewNotifier(t)
	notifier.On("OnSignal", mock.Anything).Return()
	notifier.On("OnError", mock.MatchedBy(func(err error) bool {
		return errors.Is(err, strategy.ErrInvalidBar)
	})).Return().Once()

	manager, err := NewManager(model.Settings{Symbols: []string{"600869", "000001", "600869"}}, feeder,
		WithConfig(testConfig()),
		WithReplay(testBase, good[len(good)-1].Time),
		WithNotifier(notifier),
	)
	require.NoError(t, err)

	err = manager.Run(context.Background())
	require.ErrorIs(t, err, strategy.ErrInvalidBar)
	require.Contains(t, err.Error(), "000001")

	status := manager.Status()
	require.Len(t, status, 2)
	require.Equal(t, "stopped", status["000001"])

	// 正常股票的信号不受影响
	signals, err := manager.RecentSignals("600869", 0)
	require.NoError(t, err)
	require.NotEmpty(t, signals)
}

func TestManager_Mute(t *testing.T) {
	bars := syntheticBars("600869")
	feeder := &liveFeeder{bars: map[string][]model.Bar{"600869": bars}}
	notifier := mocks.NewNotifier(t)

	manager, err := NewManager(model.Settings{Symbols: []string{"600869"}}, feeder,
		WithConfig(testConfig()),
		WithReplay(testBase, bars[len(bars)-1].Time),
		WithNotifier(notifier),
	)
	require.NoError(t, err)

	manager.Mute(true)
	require.NoError(t, manager.Run(context.Background()))
	require.NotEmpty(t, manager.Signals())
	notifier.AssertNotCalled(t, "OnSignal", mock.Anything)
}

func TestManager_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	feeder := mocks.NewFeeder(t)
	feeder.On("BarsByLimit", mock.Anything, "600869", 360).Return(syntheticBars("600869")[:50], nil)

	cfg := testConfig()
	cfg.PollInterval = time.Hour
	manager, err := NewManager(model.Settings{Symbols: []string{"600869"}}, feeder,
		WithConfig(cfg),
		WithStorage(newMemoryStorage(t)),
	)
	require.NoError(t, err)

	done := make(chan error)
	go func() {
		done <- manager.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return manager.Status()["600869"] == "running"
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
	require.Equal(t, "stopped", manager.Status()["600869"])
}

func TestMonitor_FetchRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	feeder := mocks.NewFeeder(t)
	feeder.On("BarsByLimit", mock.Anything, "600869", 360).
		Return(nil, exchange.ErrNoData).
		Once()
	time.AfterFunc(20*time.Millisecond, cancel)

	cfg := testConfig()
	cfg.RetryBackoff = time.Hour
	cfg.MaxRetries = 3
	monitor := newMonitor("600869", "", cfg, feeder, func(model.Signal) {})

	start := time.Now()
	_, err := monitor.fetch(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), time.Second)
}

func TestWait(t *testing.T) {
	require.NoError(t, wait(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, wait(ctx, time.Hour), context.Canceled)
}

func TestNewManager_Errors(t *testing.T) {
	feeder := mocks.NewFeeder(t)

	_, err := NewManager(model.Settings{Symbols: []string{"123456"}}, feeder)
	require.ErrorIs(t, err, exchange.ErrInvalidSymbol)

	cfg := testConfig()
	cfg.MACDFast = 0
	_, err = NewManager(model.Settings{Symbols: []string{"600869"}}, feeder, WithConfig(cfg))
	require.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestManager_Summary(t *testing.T) {
	bars := syntheticBars("600869")
	feeder := &liveFeeder{bars: map[string][]model.Bar{"600869": bars}}
	manager, err := NewManager(model.Settings{Symbols: []string{"600869"}}, feeder,
		WithConfig(testConfig()),
		WithReplay(testBase, bars[len(bars)-1].Time),
	)
	require.NoError(t, err)
	require.NoError(t, manager.Run(context.Background()))

	buffer := bytes.NewBuffer(nil)
	require.NoError(t, manager.Summary(context.Background(), buffer, 5))
	require.Contains(t, buffer.String(), "600869")
	require.Contains(t, buffer.String(), "TOTAL")
	require.Contains(t, buffer.String(), "CONFIDENCE INTERVAL")
}
