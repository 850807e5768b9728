package driver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type doubler struct{}

func (doubler) Next(in float64, params float64) float64 { return in * params }

func TestProcessCallsInIncreasingOrder(t *testing.T) {
	var d doubler
	ins := []float64{1, 2, 3, 4}
	params := []float64{2, 2, 2, 2}
	var got []float64
	Process[float64, float64, float64](d, ins, params, func(i int, out float64) {
		got = append(got, out)
		require.Equal(t, i, len(got)-1)
	})
	require.Equal(t, []float64{2, 4, 6, 8}, got)
}

func TestProcessStopsAtShorterSlice(t *testing.T) {
	var d doubler
	ins := []float64{1, 2, 3}
	params := []float64{10, 20}
	n := 0
	Process[float64, float64, float64](d, ins, params, func(i int, out float64) { n++ })
	require.Equal(t, 2, n)
}

func TestProcessIntoWritesInPlace(t *testing.T) {
	var d doubler
	ins := []float64{1, 2, 3}
	params := []float64{3, 3, 3}
	out := make([]float64, 3)
	n := ProcessInto[float64, float64, float64](d, ins, params, out)
	require.Equal(t, 3, n)
	require.Equal(t, []float64{3, 6, 9}, out)
}

func TestConstParams(t *testing.T) {
	c := ConstParams[int]{Value: 7, N: 5}
	require.Equal(t, 5, c.Len())
	for i := 0; i < c.Len(); i++ {
		require.Equal(t, 7, c.At(i))
	}
}
