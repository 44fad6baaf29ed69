package model

import (
	"golang.org/x/exp/constraints" // 引入constraints包，提供泛型约束
)

// Series 有序数值序列，最后一个元素为最新值
type Series[T constraints.Ordered] []T

// Last 返回倒数第 position 个值，0 为最新
func (s Series[T]) Last(position int) T {
	return s[len(s)-1-position]
}

func (s Series[T]) LastValues(size int) []T {
	if l := len(s); l > size {
		return s[l-size:] // 如果序列长度大于请求的size，则返回序列的最后size个值
	}
	return s
}

// Crossover 上穿：上一根 s <= ref，当前 s > ref（金叉）
func (s Series[T]) Crossover(ref Series[T]) bool {
	return s.Last(0) > ref.Last(0) && s.Last(1) <= ref.Last(1)
}

// Crossunder 下穿：上一根 s >= ref，当前 s < ref（死叉）
func (s Series[T]) Crossunder(ref Series[T]) bool {
	return s.Last(0) < ref.Last(0) && s.Last(1) >= ref.Last(1)
}
