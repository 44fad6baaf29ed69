package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config 监控参数，创建后只读，所有股票共用同一份
type Config struct {
	// MACD
	MACDFast   int
	MACDSlow   int
	MACDSignal int

	// KDJ
	KDJN          int
	KDJK          int // K 的平滑周期，alpha = 1/KDJK
	KDJD          int // D 的平滑周期，alpha = 1/KDJD
	KDJHigh       float64
	KDJLow        float64
	CrossLookback int // 金叉/死叉回看K线数

	AlignTolerance  int // MACD 背离与 KDJ 确认之间允许的K线数
	ExtremumWindow  int // 局部极值判断窗口 W，同时也是预热K线数
	MaxHistoryBars  int // 每只股票保留的K线数
	MaxPeakLookback int // 保留的历史极值点个数 M

	PriceUpThreshold           float64
	PriceDownThreshold         float64
	MacdDivergenceThreshold    float64
	RepeatPriceChangeThreshold float64

	Diagnostics bool

	Timeframe    string        // K线周期，如 1m、5m
	PollInterval time.Duration // 实盘轮询间隔
	MaxRetries   int
	RetryBackoff time.Duration

	EnableWeakHints    bool
	WeakCooldownBars   int
	WeakMinPriceChange float64

	EnablePositionScore bool
}

// DefaultConfig 默认参数，对应 1 分钟K线
func DefaultConfig() Config {
	return Config{
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,

		KDJN:          9,
		KDJK:          3,
		KDJD:          3,
		KDJHigh:       80,
		KDJLow:        20,
		CrossLookback: 3,

		AlignTolerance:  2,
		ExtremumWindow:  120,
		MaxHistoryBars:  360,
		MaxPeakLookback: 60,

		PriceUpThreshold:           0.02,
		PriceDownThreshold:         0.02,
		MacdDivergenceThreshold:    0.15,
		RepeatPriceChangeThreshold: 0.05,

		Timeframe:    "1m",
		PollInterval: time.Minute,
		MaxRetries:   3,
		RetryBackoff: 2 * time.Second,

		EnableWeakHints:    true,
		WeakCooldownBars:   10,
		WeakMinPriceChange: 0.005,

		EnablePositionScore: true,
	}
}

// Interval 返回 Timeframe 对应的时长
func (c Config) Interval() (time.Duration, error) {
	return str2duration.ParseDuration(c.Timeframe)
}

func (c Config) Validate() error {
	positive := map[string]int{
		"macd fast":         c.MACDFast,
		"macd slow":         c.MACDSlow,
		"macd signal":       c.MACDSignal,
		"kdj n":             c.KDJN,
		"kdj k":             c.KDJK,
		"kdj d":             c.KDJD,
		"cross lookback":    c.CrossLookback,
		"extremum window":   c.ExtremumWindow,
		"max history bars":  c.MaxHistoryBars,
		"max peak lookback": c.MaxPeakLookback,
	}
	for name, value := range positive {
		if value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, name, value)
		}
	}

	if c.AlignTolerance < 0 || c.MaxRetries < 0 || c.WeakCooldownBars < 0 {
		return fmt.Errorf("%w: negative bar count", ErrInvalidConfig)
	}

	for _, value := range []float64{c.PriceUpThreshold, c.PriceDownThreshold, c.MacdDivergenceThreshold,
		c.RepeatPriceChangeThreshold, c.WeakMinPriceChange} {
		if value < 0 {
			return fmt.Errorf("%w: negative threshold %f", ErrInvalidConfig, value)
		}
	}

	if c.KDJLow >= c.KDJHigh {
		return fmt.Errorf("%w: kdj low %.f must be below kdj high %.f", ErrInvalidConfig, c.KDJLow, c.KDJHigh)
	}

	interval, err := c.Interval()
	if err != nil {
		return fmt.Errorf("%w: timeframe %q: %s", ErrInvalidConfig, c.Timeframe, err)
	}
	if interval <= 0 {
		return fmt.Errorf("%w: timeframe %q", ErrInvalidConfig, c.Timeframe)
	}

	return nil
}
