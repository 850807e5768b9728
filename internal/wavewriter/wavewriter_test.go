package wavewriter

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cbegin/synthvoice/internal/fixedfmt"
	"github.com/cbegin/synthvoice/internal/fixedsynth"
)

func TestEncodeFloat32LEHeader(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1}
	wav := EncodeFloat32LE(samples, 48000, 2)
	require.Equal(t, "RIFF", string(wav[0:4]))
	require.Equal(t, "WAVE", string(wav[8:12]))
	require.Equal(t, "fmt ", string(wav[12:16]))
	require.Equal(t, uint16(3), binary.LittleEndian.Uint16(wav[20:22]), "format tag must be IEEE float")
	require.Equal(t, uint16(2), binary.LittleEndian.Uint16(wav[22:24]))
	require.Equal(t, uint32(48000), binary.LittleEndian.Uint32(wav[24:28]))
	require.Equal(t, uint16(32), binary.LittleEndian.Uint16(wav[34:36]))
	require.Equal(t, "data", string(wav[36:40]))
	require.Equal(t, uint32(len(samples)*4), binary.LittleEndian.Uint32(wav[40:44]))
	require.Equal(t, len(samples)*4+44, len(wav))
	for i, s := range samples {
		got := math.Float32frombits(binary.LittleEndian.Uint32(wav[44+i*4:]))
		require.Equal(t, s, got)
	}
}

func TestRenderProducesDeterministicInterleavedStereo(t *testing.T) {
	ctx, err := fixedfmt.NewContext(48000)
	require.NoError(t, err)
	newVoice := func() *fixedsynth.Voice { return fixedsynth.NewVoice(ctx, 1, 2) }
	params := fixedsynth.VoiceParams{
		Osc1:         fixedsynth.OscParams{MixSine: 65535},
		OscMixLevel1: 65535,
		EnvAmp:       fixedsynth.EnvParams{Attack: 1, Decay: 1, Sustain: 65535},
		AmpGain:      65535,
	}
	render := func() []float32 {
		v := newVoice()
		i := 0
		return Render[fixedsynth.VoiceInput, fixedsynth.VoiceParams, fixedfmt.Sample](
			v, params, 100,
			func() fixedsynth.VoiceInput {
				i++
				return fixedsynth.VoiceInput{Note: fixedfmt.Note(69 << 9), Gate: 1}
			},
			func(s fixedfmt.Sample) float32 { return float32(s) / 32768 },
		)
	}
	a := render()
	b := render()
	require.Equal(t, a, b, "rendering twice from a fresh voice must be bit-identical")
	require.Len(t, a, 200)
	for i := 0; i < len(a); i += 2 {
		require.Equal(t, a[i], a[i+1], "mono voice must duplicate to both channels")
	}
}
