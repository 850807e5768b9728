package modroute

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatrixDepthClamped(t *testing.T) {
	var m Matrix
	m.SetDepth(SrcEnvAmp, DestFilterCutoff, 5)
	require.Equal(t, 1.0, m.Depth(SrcEnvAmp, DestFilterCutoff))
	m.SetDepth(SrcEnvAmp, DestFilterCutoff, -5)
	require.Equal(t, -1.0, m.Depth(SrcEnvAmp, DestFilterCutoff))
}

func TestMatrixOutOfRangeOrdinalsAreNoOps(t *testing.T) {
	var m Matrix
	m.SetDepth(ModSrc(200), DestFilterCutoff, 1)
	require.Equal(t, 0.0, m.Depth(ModSrc(200), DestFilterCutoff))
}

func TestOffsetSeedScenarioS6(t *testing.T) {
	// S6: EnvA -> osc1 pitch at depth +1, EnvA constant 0.5, base note 69
	// should receive an offset of 0.5 * 64 = 32 semitones (the scenario's
	// "101 semitones" total includes the base note, not produced here).
	var m Matrix
	m.SetDepth(SrcEnvAmp, DestOsc1Pitch, 1)
	var sources [NumSources]float64
	sources[SrcEnvAmp] = 0.5
	offset := m.Offset(DestOsc1Pitch, sources)
	require.InDelta(t, 32.0, offset, 1e-9)
}

func TestOffsetSummationOrderIsSourceAscending(t *testing.T) {
	// Summation order must not affect the result for well-behaved float
	// values, but we verify here that every source ordinal up to NumSources
	// contributes exactly once, ordinal-ascending, by checking the sum
	// equals the naive ordinal loop sum for an arbitrary set of depths.
	var m Matrix
	var sources [NumSources]float64
	want := 0.0
	for s := 0; s < NumSources; s++ {
		depth := float64(s%3-1) * 0.5
		m.SetDepth(ModSrc(s), DestAmpGain, depth)
		sources[s] = float64(s) * 0.1
		want += depth * sources[s] * MaxSwing(DestAmpGain)
	}
	require.InDelta(t, want, m.Offset(DestAmpGain, sources), 1e-9)
}
