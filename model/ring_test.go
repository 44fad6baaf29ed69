package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRing(t *testing.T) {
	t.Run("partial", func(t *testing.T) {
		r := NewRing[int](3)
		r.Push(1)
		r.Push(2)
		require.Equal(t, 2, r.Len())
		require.Equal(t, []int{1, 2}, r.Values())
		require.Equal(t, 2, r.Last(0))
		require.Equal(t, 1, r.At(0))
	})

	t.Run("overwrite oldest", func(t *testing.T) {
		r := NewRing[int](3)
		for i := 1; i <= 5; i++ {
			r.Push(i)
		}
		require.Equal(t, 3, r.Len())
		require.Equal(t, 3, r.Cap())
		require.Equal(t, []int{3, 4, 5}, r.Values())
		require.Equal(t, 5, r.Last(0))
		require.Equal(t, 3, r.Last(2))
	})

	t.Run("out of range", func(t *testing.T) {
		r := NewRing[int](2)
		require.Panics(t, func() { r.At(0) })
	})
}
