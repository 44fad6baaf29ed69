package indicator

type point struct {
	index int
	value float64
}

// RollingExtreme 滑动窗口最高/最低值，单调队列实现，每次更新均摊 O(1)。
// 窗口包含当前K线，只看过去，不看未来。
type RollingExtreme struct {
	window int
	highs  []point // 单调递减
	lows   []point // 单调递增
}

func NewRollingExtreme(window int) *RollingExtreme {
	return &RollingExtreme{window: window}
}

// Update 加入第 index 根K线的最高价、最低价，返回窗口内的最高值和最低值
func (r *RollingExtreme) Update(index int, high, low float64) (float64, float64) {
	for len(r.highs) > 0 && r.highs[len(r.highs)-1].value <= high {
		r.highs = r.highs[:len(r.highs)-1]
	}
	r.highs = append(r.highs, point{index: index, value: high})

	for len(r.lows) > 0 && r.lows[len(r.lows)-1].value >= low {
		r.lows = r.lows[:len(r.lows)-1]
	}
	r.lows = append(r.lows, point{index: index, value: low})

	oldest := index - r.window + 1
	for r.highs[0].index < oldest {
		r.highs = r.highs[1:]
	}
	for r.lows[0].index < oldest {
		r.lows = r.lows[1:]
	}

	return r.highs[0].value, r.lows[0].value
}
