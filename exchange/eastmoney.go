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

	"github.com/itqwq/tmonitor/model"
)

const (
	eastMoneyHost    = "https://push2his.eastmoney.com"
	eastMoneyReferer = "https://quote.eastmoney.com"
	eastMoneyMaxBars = 2000
)

// EastMoney 东方财富K线接口，作为新浪的备用数据源
type EastMoney struct {
	host   string
	client *http.Client
	klt    int
	now    func() time.Time
}

type EastMoneyOption func(*EastMoney)

func WithEastMoneyHost(host string) EastMoneyOption {
	return func(e *EastMoney) {
		e.host = strings.TrimSuffix(host, "/")
	}
}

func WithEastMoneyHTTPClient(client *http.Client) EastMoneyOption {
	return func(e *EastMoney) {
		e.client = client
	}
}

func WithEastMoneyClock(now func() time.Time) EastMoneyOption {
	return func(e *EastMoney) {
		e.now = now
	}
}

func NewEastMoney(timeframe string, options ...EastMoneyOption) (*EastMoney, error) {
	scale, err := minutes(timeframe)
	if err != nil {
		return nil, err
	}

	klt := scale
	if scale == 240 {
		klt = 101 // 日线
	}

	eastMoney := &EastMoney{
		host:   eastMoneyHost,
		client: defaultClient,
		klt:    klt,
		now:    time.Now,
	}
	for _, option := range options {
		option(eastMoney)
	}
	return eastMoney, nil
}

// secid 市场编号.代码，上海为 1，其余为 0
func secid(symbol string) (string, error) {
	market, err := MarketOf(symbol)
	if err != nil {
		return "", err
	}
	if market == MarketSH {
		return "1." + Code(symbol), nil
	}
	return "0." + Code(symbol), nil
}

func (e *EastMoney) BarsByLimit(ctx context.Context, symbol string, limit int) ([]model.Bar, error) {
	id, err := secid(symbol)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/qt/stock/kline/get?secid=%s&fields1=f1,f2,f3,f4,f5,f6&fields2=f51,f52,f53,f54,f55,f56,f57&klt=%d&fqt=1&end=20500101&lmt=%d",
		e.host, id, e.klt, limit+1)
	body, err := get(ctx, e.client, url, eastMoneyReferer)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data *struct {
			Klines []string `json:"klines"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("eastmoney %s: %w", symbol, err)
	}
	if resp.Data == nil || len(resp.Data.Klines) == 0 {
		return nil, fmt.Errorf("%w: eastmoney %s", ErrNoData, symbol)
	}

	now := e.now()
	bars := make([]model.Bar, 0, len(resp.Data.Klines))
	for _, line := range resp.Data.Klines {
		// 时间,开,收,高,低,量,额
		parts := strings.Split(line, ",")
		if len(parts) < 6 {
			return nil, fmt.Errorf("eastmoney %s: invalid kline %q", symbol, line)
		}

		t, err := parseTime(parts[0])
		if err != nil {
			return nil, fmt.Errorf("eastmoney %s: %w", symbol, err)
		}
		if t.After(now) {
			continue
		}

		bar := model.Bar{Symbol: Code(symbol), Time: t}
		for i, target := range []*float64{&bar.Open, &bar.Close, &bar.High, &bar.Low, &bar.Volume} {
			if *target, err = strconv.ParseFloat(parts[i+1], 64); err != nil {
				return nil, fmt.Errorf("eastmoney %s: %w", symbol, err)
			}
		}
		bars = append(bars, bar)
	}

	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

func (e *EastMoney) BarsByPeriod(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	bars, err := e.BarsByLimit(ctx, symbol, eastMoneyMaxBars)
	if err != nil {
		return nil, err
	}
	return lo.Filter(bars, func(bar model.Bar, _ int) bool {
		return !bar.Time.Before(start) && !bar.Time.After(end)
	}), nil
}
