package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/xhit/go-str2duration/v2"

	"github.com/itqwq/tmonitor/model"
)

const (
	sinaHost    = "https://quotes.sina.cn"
	sinaReferer = "https://finance.sina.com.cn"
	sinaMaxBars = 1970
)

type sinaBar struct {
	Day    string `json:"day"`
	Open   string `json:"open"`
	Close  string `json:"close"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Volume string `json:"volume"`
}

// Sina 新浪分钟K线接口，返回 JSONP
type Sina struct {
	host   string
	client *http.Client
	scale  int // K线周期（分钟）
	now    func() time.Time
}

type SinaOption func(*Sina)

func WithSinaHost(host string) SinaOption {
	return func(s *Sina) {
		s.host = strings.TrimSuffix(host, "/")
	}
}

func WithSinaHTTPClient(client *http.Client) SinaOption {
	return func(s *Sina) {
		s.client = client
	}
}

func WithSinaClock(now func() time.Time) SinaOption {
	return func(s *Sina) {
		s.now = now
	}
}

func NewSina(timeframe string, options ...SinaOption) (*Sina, error) {
	scale, err := minutes(timeframe)
	if err != nil {
		return nil, err
	}

	sina := &Sina{
		host:   sinaHost,
		client: defaultClient,
		scale:  scale,
		now:    time.Now,
	}
	for _, option := range options {
		option(sina)
	}
	return sina, nil
}

// minutes 周期换算为分钟数，1d 为 240 分钟（一个交易日）
func minutes(timeframe string) (int, error) {
	duration, err := str2duration.ParseDuration(timeframe)
	if err != nil {
		return 0, fmt.Errorf("invalid timeframe %q: %w", timeframe, err)
	}
	if duration >= 24*time.Hour {
		return 240, nil
	}
	if duration < time.Minute || duration%time.Minute != 0 {
		return 0, fmt.Errorf("invalid timeframe %q", timeframe)
	}
	return int(duration / time.Minute), nil
}

func (s *Sina) url(symbol string, limit int) string {
	return fmt.Sprintf("%s/cn/api/jsonp_v2.php/var__%s_%d/CN_MarketDataService.getKLineData?symbol=%s&scale=%d&ma=no&datalen=%d",
		s.host, symbol, s.scale, symbol, s.scale, limit)
}

// BarsByLimit 最近 limit 根已收盘K线，盘中未走完的K线会被丢弃
func (s *Sina) BarsByLimit(ctx context.Context, symbol string, limit int) ([]model.Bar, error) {
	full, err := FullSymbol(symbol)
	if err != nil {
		return nil, err
	}

	body, err := get(ctx, s.client, s.url(full, limit+1), sinaReferer)
	if err != nil {
		return nil, err
	}

	text := string(body)
	start := strings.Index(text, "(")
	end := strings.LastIndex(text, ")")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("sina %s: invalid jsonp response", symbol)
	}

	var raw []sinaBar
	if err := json.Unmarshal([]byte(text[start+1:end]), &raw); err != nil {
		return nil, fmt.Errorf("sina %s: %w", symbol, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: sina %s", ErrNoData, symbol)
	}

	now := s.now()
	bars := make([]model.Bar, 0, len(raw))
	for _, item := range raw {
		bar, err := item.toBar(Code(symbol))
		if err != nil {
			return nil, fmt.Errorf("sina %s: %w", symbol, err)
		}
		if bar.Time.After(now) {
			continue
		}
		bars = append(bars, bar)
	}

	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

func (s *Sina) BarsByPeriod(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	bars, err := s.BarsByLimit(ctx, symbol, sinaMaxBars)
	if err != nil {
		return nil, err
	}
	return lo.Filter(bars, func(bar model.Bar, _ int) bool {
		return !bar.Time.Before(start) && !bar.Time.After(end)
	}), nil
}

func (b sinaBar) toBar(symbol string) (model.Bar, error) {
	t, err := parseTime(b.Day)
	if err != nil {
		return model.Bar{}, err
	}

	bar := model.Bar{Symbol: symbol, Time: t}
	fields := []struct {
		value  string
		target *float64
	}{
		{b.Open, &bar.Open}, {b.Close, &bar.Close}, {b.High, &bar.High}, {b.Low, &bar.Low}, {b.Volume, &bar.Volume},
	}
	for _, field := range fields {
		if *field.target, err = strconv.ParseFloat(field.value, 64); err != nil {
			return model.Bar{}, err
		}
	}
	return bar, nil
}
