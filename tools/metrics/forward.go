package metrics

import (
	"sort"

	"github.com/itqwq/tmonitor/model"
)

// ForwardReturn 单个信号在 horizon 根K线之后的表现
type ForwardReturn struct {
	Signal model.Signal
	Exit   model.Bar
	Return float64 // 按方向调整：卖出信号价格下跌记为正
}

// ForwardReturns 以信号价格为基准，计算信号所在K线之后第 horizon 根的收盘收益。
// bars 需按时间升序，后续K线不足的信号跳过。
func ForwardReturns(signals []model.Signal, bars []model.Bar, horizon int) []ForwardReturn {
	if horizon <= 0 || len(bars) == 0 {
		return nil
	}

	result := make([]ForwardReturn, 0, len(signals))
	for _, signal := range signals {
		if signal.Price <= 0 {
			continue
		}

		i := sort.Search(len(bars), func(i int) bool {
			return !bars[i].Time.Before(signal.Time)
		})
		if i+horizon >= len(bars) {
			continue
		}

		exit := bars[i+horizon]
		ret := (exit.Close - signal.Price) / signal.Price
		if signal.Side == model.SideTypeSell {
			ret = -ret
		}

		result = append(result, ForwardReturn{Signal: signal, Exit: exit, Return: ret})
	}
	return result
}

// Returns 取出收益序列
func Returns(values []ForwardReturn) []float64 {
	returns := make([]float64, len(values))
	for i, v := range values {
		returns[i] = v.Return
	}
	return returns
}
