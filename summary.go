package tmonitor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/itqwq/tmonitor/model"
	"github.com/itqwq/tmonitor/tools/metrics"
)

// Summary 统计本次运行的信号：每只股票的买卖次数，以及信号后第 horizon 根K线的方向收益
func (m *Manager) Summary(ctx context.Context, w io.Writer, horizon int) error {
	signals := m.Signals()
	bySymbol := lo.GroupBy(signals, func(signal model.Signal) string {
		return signal.Symbol
	})

	buffer := bytes.NewBuffer(nil)
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Symbol", "Signals", "Buy", "Sell", "Evaluated", "% Win", "Avg Return"})
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

	var (
		total, buys, sells int
		returns            []float64
		returnsBySymbol    = make(map[string][]float64)
	)

	for symbol := range m.symbols.Iter() {
		symbolSignals := bySymbol[symbol]

		var bars []model.Bar
		var err error
		if len(symbolSignals) > 0 {
			if m.replay {
				bars, err = m.feeder.BarsByPeriod(ctx, symbol, m.start, m.end)
			} else {
				bars, err = m.feeder.BarsByLimit(ctx, symbol, m.config.MaxHistoryBars)
			}
			if err != nil {
				return fmt.Errorf("summary %s: %w", symbol, err)
			}
		}

		symbolReturns := metrics.Returns(metrics.ForwardReturns(symbolSignals, bars, horizon))
		returnsBySymbol[symbol] = symbolReturns
		returns = append(returns, symbolReturns...)

		buy := lo.CountBy(symbolSignals, func(signal model.Signal) bool {
			return signal.Side == model.SideTypeBuy
		})
		sell := len(symbolSignals) - buy

		table.Append([]string{
			symbol,
			strconv.Itoa(len(symbolSignals)),
			strconv.Itoa(buy),
			strconv.Itoa(sell),
			strconv.Itoa(len(symbolReturns)),
			fmt.Sprintf("%.1f %%", metrics.WinRate(symbolReturns)*100),
			fmt.Sprintf("%.2f %%", average(symbolReturns)*100),
		})

		total += len(symbolSignals)
		buys += buy
		sells += sell
	}

	table.SetFooter([]string{
		"TOTAL",
		strconv.Itoa(total),
		strconv.Itoa(buys),
		strconv.Itoa(sells),
		strconv.Itoa(len(returns)),
		fmt.Sprintf("%.1f %%", metrics.WinRate(returns)*100),
		fmt.Sprintf("%.2f %%", average(returns)*100),
	})
	table.Render()
	fmt.Fprintln(w, buffer.String())

	if len(returns) == 0 {
		return nil
	}

	fmt.Fprintf(w, "------ RETURN AFTER %d BARS -------\n", horizon)
	returnsPercent := make([]float64, 0, len(returns))
	for _, r := range returns {
		returnsPercent = append(returnsPercent, r*100)
	}
	// 全部收益相同时无法分桶
	if lo.Min(returnsPercent) < lo.Max(returnsPercent) {
		hist := histogram.Hist(15, returnsPercent)
		if err := histogram.Fprint(w, hist, histogram.Linear(10)); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "------ CONFIDENCE INTERVAL (95%) -------")
	for symbol, values := range returnsBySymbol {
		if len(values) == 0 {
			continue
		}
		returnInterval := metrics.Bootstrap(values, metrics.Mean, 10000, 0.95)
		winInterval := metrics.Bootstrap(values, metrics.WinRate, 10000, 0.95)
		fmt.Fprintf(w, "| %s |\n", symbol)
		fmt.Fprintf(w, "RETURN:   %.2f%% (%.2f%% ~ %.2f%%)\n",
			returnInterval.Mean*100, returnInterval.Lower*100, returnInterval.Upper*100)
		fmt.Fprintf(w, "WIN RATE: %.1f%% (%.1f%% ~ %.1f%%)\n",
			winInterval.Mean*100, winInterval.Lower*100, winInterval.Upper*100)
	}
	fmt.Fprintln(w)
	return nil
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return lo.Sum(values) / float64(len(values))
}
