package indicator

// EWMA 增量指数移动平均，第一条数据直接作为初始值（等价于 pandas ewm(adjust=False)）
type EWMA struct {
	alpha  float64
	value  float64
	seeded bool
}

// NewEWMA 按周期创建，alpha = 2/(span+1)
func NewEWMA(span int) *EWMA {
	return &EWMA{alpha: 2.0 / float64(span+1)}
}

// NewSmoothing 按平滑系数创建，alpha = 1/period，KDJ 的 K、D 使用这种平滑
func NewSmoothing(period int) *EWMA {
	return &EWMA{alpha: 1.0 / float64(period)}
}

func (e *EWMA) Update(x float64) float64 {
	if !e.seeded {
		e.value = x
		e.seeded = true
		return e.value
	}
	e.value = e.alpha*x + (1-e.alpha)*e.value
	return e.value
}

func (e *EWMA) Value() float64 {
	return e.value
}
