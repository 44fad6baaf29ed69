package strategy

import "github.com/itqwq/tmonitor/model"

// ExtremumDetector 局部高点/低点判断：当前K线最高价等于（或追平）最近 W 根K线的最高价即为高点，低点同理。
// 一根K线可以同时是高点和低点。
type ExtremumDetector struct {
	window int
}

func NewExtremumDetector(window int) ExtremumDetector {
	return ExtremumDetector{window: window}
}

// Ready 前 W 根K线用于预热，不参与判断
func (d ExtremumDetector) Ready(st model.BarState) bool {
	return st.Index >= d.window
}

func (d ExtremumDetector) Detect(st model.BarState) (peak, trough *model.ExtremumPoint) {
	if !d.Ready(st) {
		return nil, nil
	}

	if st.High >= st.RollingHigh {
		peak = &model.ExtremumPoint{
			Index: st.Index,
			Time:  st.Time,
			Price: st.High,
			MACD:  st.MACD,
			Kind:  model.Peak,
		}
	}

	if st.Low <= st.RollingLow {
		trough = &model.ExtremumPoint{
			Index: st.Index,
			Time:  st.Time,
			Price: st.Low,
			MACD:  st.MACD,
			Kind:  model.Trough,
		}
	}

	return peak, trough
}
