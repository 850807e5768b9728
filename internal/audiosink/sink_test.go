package audiosink

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cbegin/synthvoice/internal/fixedfmt"
	"github.com/cbegin/synthvoice/internal/fixedsynth"
)

func TestGateSnapshotReflectsNoteOnOff(t *testing.T) {
	g := NewGate[fixedfmt.Note, fixedfmt.Sample, fixedfmt.Scalar](1, 0)
	n, gateVal, v := g.Snapshot()
	require.Equal(t, fixedfmt.Note(0), n)
	require.Equal(t, fixedfmt.Sample(0), gateVal, "ungated Gate must report gate-low before any NoteOn")
	require.Equal(t, fixedfmt.Scalar(0), v)

	g.NoteOn(fixedfmt.Note(69<<9), 32768)
	n, gateVal, v = g.Snapshot()
	require.Equal(t, fixedfmt.Note(69<<9), n)
	require.Equal(t, fixedfmt.Sample(1), gateVal)
	require.Equal(t, fixedfmt.Scalar(32768), v)

	g.NoteOff()
	n, gateVal, _ = g.Snapshot()
	require.Equal(t, fixedfmt.Note(69<<9), n, "NoteOff must not clear the held note")
	require.Equal(t, fixedfmt.Sample(0), gateVal)
}

func TestVoiceSourceProcessFillsBothChannelsIdentically(t *testing.T) {
	ctx, err := fixedfmt.NewContext(48000)
	require.NoError(t, err)
	voice := fixedsynth.NewVoice(ctx, 1, 2)
	params := fixedsynth.VoiceParams{
		Osc1:         fixedsynth.OscParams{MixSine: 65535},
		OscMixLevel1: 65535,
		AmpGain:      65535,
		EnvAmp:       fixedsynth.EnvParams{Attack: 1, Decay: 1, Sustain: 65535},
	}
	gate := NewGate[fixedfmt.Note, fixedfmt.Sample, fixedfmt.Scalar](1, 0)
	gate.NoteOn(fixedfmt.Note(69<<9), 65535)
	src := NewFixedVoiceSource(voice, params, gate)

	dst := make([]float32, 64)
	src.Process(dst)
	for i := 0; i < len(dst); i += 2 {
		require.Equal(t, dst[i], dst[i+1])
	}
	var nonZero bool
	for _, v := range dst {
		if v != 0 {
			nonZero = true
		}
	}
	require.True(t, nonZero, "a gated sine voice must produce nonzero output")
}
