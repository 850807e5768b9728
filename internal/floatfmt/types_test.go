package floatfmt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestScaleContract(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := Sample(rapid.Float32Range(-1, 0.999).Draw(rt, "s"))
		g := Scalar(rapid.Float32Range(0, 1).Draw(rt, "g"))
		out := Scale(s, g)
		if math.Abs(float64(out)) > math.Abs(float64(s))+1e-6 {
			rt.Fatalf("|scale(s,g)| > |s|: s=%v g=%v out=%v", s, g, out)
		}
	})
}

func TestScaleZeroAndOneExact(t *testing.T) {
	s := Sample(0.42)
	require.Equal(t, Sample(0), Scale(s, 0))
	require.Equal(t, s, Scale(s, 1))
}

func TestNoteToFrequencyMonotonic(t *testing.T) {
	prev := NoteToFrequency(0)
	for n := 1; n <= 127; n++ {
		cur := NoteToFrequency(Note(n))
		require.GreaterOrEqual(t, float64(cur), float64(prev))
		prev = cur
	}
}

func TestNoteToFrequencyA440(t *testing.T) {
	f := NoteToFrequency(69)
	require.InDelta(t, 440.0, float64(f), 0.01)
}

func TestNoteToFrequencyCentsAccuracy(t *testing.T) {
	for n := 0; n <= 127; n++ {
		got := float64(NoteToFrequency(Note(n)))
		want := 440 * math.Pow(2, (float64(n)-69)/12)
		rel := math.Abs(got-want) / want
		require.Less(t, rel, math.Pow(2, -9), "note %d", n)
	}
}

func TestSinPiAgainstMathSin(t *testing.T) {
	for i := -100; i <= 100; i++ {
		x := float32(i) / 100
		got := float64(SinPi(x))
		want := math.Sin(math.Pi * float64(x))
		require.InDelta(t, want, got, 2e-4)
	}
}

func TestSinPiBounded(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.Float32Range(-1, 1).Draw(rt, "x")
		out := SinPi(x)
		if out < -1 || out >= 1 {
			rt.Fatalf("SinPi(%v) = %v out of [-1,1)", x, out)
		}
	})
}

func TestWidenNarrowRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := Sample(rapid.Float32Range(-1, 0.999).Draw(rt, "s"))
		require.Equal(t, s, Narrow(Widen(s)))
	})
}

func TestSaturatingAddClamps(t *testing.T) {
	require.LessOrEqual(t, float32(SaturatingAdd(0.9, 0.9)), float32(1))
	require.GreaterOrEqual(t, float32(SaturatingSub(-0.9, 0.9)), float32(-1))
}
