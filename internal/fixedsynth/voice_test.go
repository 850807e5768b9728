package fixedsynth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cbegin/synthvoice/internal/fixedfmt"
	"github.com/cbegin/synthvoice/internal/modroute"
)

func defaultOscParams() OscParams {
	return OscParams{MixSine: 65535}
}

func note69() fixedfmt.Note { return fixedfmt.Note(69 << 9) }

// S1: sine osc, note 69 (440Hz). 440Hz's half-period is 48000/880 = 54.5
// samples; the fixed-point accumulator's coarser phase-increment rounding
// widens the tolerance relative to floatsynth's equivalent test.
func TestSeedS1SineZeroCrossing(t *testing.T) {
	ctx, err := fixedfmt.NewContext(48000)
	require.NoError(t, err)
	var o Osc
	p := defaultOscParams()
	crossing := -1
	prev := fixedfmt.Sample(0)
	for i := 0; i < 200; i++ {
		out := o.Next(ctx, note69(), p, 0, false)
		if i > 0 && prev > 0 && out.Sine <= 0 {
			crossing = i
			break
		}
		prev = out.Sine
	}
	require.NotEqual(t, -1, crossing)
	expected := 48000.0 / 880.0
	require.InDelta(t, expected, float64(crossing), 3)
}

// S2: saw osc, note 69; RMS approx 1/sqrt(3) = 0.5774, within the wider
// tolerance Q1.15 quantization plus polyBLEP rounding introduces.
func TestSeedS2SawRMS(t *testing.T) {
	ctx, err := fixedfmt.NewContext(48000)
	require.NoError(t, err)
	var o Osc
	p := defaultOscParams()
	n := 4000
	var sumSq float64
	for i := 0; i < n; i++ {
		out := o.Next(ctx, note69(), p, 0, false)
		v := float64(out.Saw) / 32768
		sumSq += v * v
	}
	rms := math.Sqrt(sumSq / float64(n))
	require.InDelta(t, 1/math.Sqrt(3), rms, 0.03)
}

// S3: filter cutoff note 69 (440Hz), resonance 0, driven with a 1760Hz
// tone (two octaves above cutoff); expects audible attenuation.
func TestSeedS3FilterAttenuation(t *testing.T) {
	ctx, err := fixedfmt.NewContext(48000)
	require.NoError(t, err)
	var f Filt
	inRMS := 0.1
	amp := inRMS * math.Sqrt2
	n := 48000
	var sumSqIn, sumSqOut float64
	skip := n / 2
	for i := 0; i < n; i++ {
		v := amp * math.Sin(2*math.Pi*1760*float64(i)/48000)
		in := fixedfmt.Sample(clampQ15(v * 32768))
		out := f.Next(ctx, in, FiltParams{Cutoff: note69(), Resonance: 0})
		if i >= skip {
			inF := float64(in) / 32768
			outF := float64(out.Low) / 32768
			sumSqIn += inF * inF
			sumSqOut += outF * outF
		}
	}
	inRMSMeasured := math.Sqrt(sumSqIn / float64(n-skip))
	outRMSMeasured := math.Sqrt(sumSqOut / float64(n-skip))
	dB := 20 * math.Log10(outRMSMeasured/inRMSMeasured)
	require.Less(t, dB, -6.0, "expected audible attenuation two octaves above cutoff")
}

// S4: ADSR A=0.1 D=0.1 S=0.5 R=0.2, same gate schedule as
// floatsynth's TestSeedS4ADSR, adapted to fixedfmt's Q3.13/Q0.16 types and
// the release-phase Open Question resolution documented in DESIGN.md.
func TestSeedS4ADSR(t *testing.T) {
	ctx, err := fixedfmt.NewContext(48000)
	require.NoError(t, err)
	var e Env
	p := EnvParams{
		Attack:  fixedfmt.EnvParam(819),  // round(0.1*8192)
		Decay:   fixedfmt.EnvParam(819),  // round(0.1*8192)
		Release: fixedfmt.EnvParam(1638), // round(0.2*8192)
		Sustain: fixedfmt.Scalar(32768),  // round(0.5*65535)
	}
	sampleRate := 48000
	gateOffSample := int(0.5 * float64(sampleRate))

	var level fixedfmt.Scalar
	for i := 0; i < int(0.71*float64(sampleRate)); i++ {
		gate := fixedfmt.Sample(1)
		if i >= gateOffSample {
			gate = 0
		}
		level = e.Next(ctx, gate, p)
		switch i {
		case int(0.1 * float64(sampleRate)):
			require.InDelta(t, 1.0, float64(level)/65535, 0.03, "t=0.1s")
		case int(0.2 * float64(sampleRate)):
			require.InDelta(t, 0.68, float64(level)/65535, 0.12, "t=0.2s")
		}
	}
	require.InDelta(t, 0.5*math.Exp(-1), float64(level)/65535, 0.08, "t=0.7s, one release tau after gate-off")
}

func TestEnvelopeInstantAttackReleaseInvariant(t *testing.T) {
	ctx, err := fixedfmt.NewContext(48000)
	require.NoError(t, err)
	var e Env
	p := EnvParams{Attack: 0, Decay: fixedfmt.EnvParam(819), Release: 0, Sustain: fixedfmt.Scalar(32768)} // round(0.1*8192), round(0.5*65535)
	level := e.Next(ctx, 1, p)
	require.Equal(t, fixedfmt.Scalar(65535), level)
	level = e.Next(ctx, 0, p)
	require.Equal(t, fixedfmt.Scalar(0), level)
}

// S5: RingMod, a = sin(2pi*440t), b = sin(2pi*110t); the product's spectral
// components at 330Hz/550Hz should show roughly equal power. n=4800 puts
// both tones on exact 10Hz Goertzel bins.
func TestSeedS5RingModSidebands(t *testing.T) {
	sampleRate := 48000.0
	n := 4800
	ring := make([]float64, n)
	for i := 0; i < n; i++ {
		tSec := float64(i) / sampleRate
		a := fixedfmt.Sample(clampQ15(math.Sin(2*math.Pi*440*tSec) * 32768))
		b := fixedfmt.Sample(clampQ15(math.Sin(2*math.Pi*110*tSec) * 32768))
		out := RingMod{}.Next(fixedfmt.Context{}, RingModInput{A: a, B: b}, RingModParams{MixA: 0, MixB: 0, MixRing: 65535})
		ring[i] = float64(out) / 32768
	}
	p330 := goertzelPower(ring, sampleRate, 330)
	p550 := goertzelPower(ring, sampleRate, 550)
	dB := 10 * math.Log10(p330/p550)
	require.InDelta(t, 0, dB, 1.0)
}

func goertzelPower(x []float64, sampleRate, freq float64) float64 {
	n := len(x)
	k := int(0.5 + float64(n)*freq/sampleRate)
	w := 2 * math.Pi * float64(k) / float64(n)
	cw := math.Cos(w)
	coeff := 2 * cw
	var s0, s1, s2 float64
	for _, v := range x {
		s0 = v + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	real := s1 - s2*cw
	imag := s2 * math.Sin(w)
	return real*real + imag*imag
}

// DestOscMixLevel1 must reach the OscMix balance stage (VoiceParams's
// dedicated OscMixLevel1/2 fields), not osc1's own shape weights, the
// fixed-regime counterpart of floatsynth's equivalent test.
func TestDestOscMixLevel1ReachesOscMixNotShapeWeights(t *testing.T) {
	ctx, err := fixedfmt.NewContext(48000)
	require.NoError(t, err)
	baseParams := func(matrix *modroute.Matrix, wheel fixedfmt.Scalar) VoiceParams {
		return VoiceParams{
			Osc1:         OscParams{MixSine: 65535},
			OscMixLevel2: 0,
			OscMixLevel1: 65535,
			EnvAmp:       EnvParams{Sustain: 65535},
			Filt:         FiltParams{Cutoff: fixedfmt.Note(127 << 9), Resonance: 0},
			FiltMix:      FiltMixParams{Low: 65535},
			AmpGain:      65535,
			Matrix:       matrix,
			ModWheel:     wheel,
		}
	}

	render := func(p VoiceParams) float64 {
		v := NewVoice(ctx, 1, 2)
		var sumSq float64
		for i := 0; i < 2000; i++ {
			out := v.Next(VoiceInput{Note: note69(), Gate: 1}, p)
			f := float64(out) / 32768
			sumSq += f * f
		}
		return math.Sqrt(sumSq / 2000)
	}

	unmodulated := render(baseParams(nil, 0))
	require.Greater(t, unmodulated, 0.1, "osc1's sine must reach the output at full OscMixLevel1")

	m := &modroute.Matrix{}
	m.SetDepth(modroute.SrcModWheel, modroute.DestOscMixLevel1, -1)
	silenced := render(baseParams(m, 65535))
	require.Less(t, silenced, 0.01, "DestOscMixLevel1 driven to -MaxSwing must silence osc1 in the mix")
}

func TestOscOutputsBounded(t *testing.T) {
	ctx, err := fixedfmt.NewContext(44100)
	require.NoError(t, err)
	var o Osc
	p := OscParams{MixSaw: 65535, MixSquare: 65535, MixTri: 65535, MixSine: 65535, PulseWidth: fixedfmt.Scalar(19661)} // round(0.3*65535)
	for i := 0; i < 100000; i++ {
		out := o.Next(ctx, note69(), p, 0, false)
		require.LessOrEqual(t, out.Saw, fixedfmt.Sample(32767))
		require.GreaterOrEqual(t, out.Saw, fixedfmt.Sample(-32768))
	}
}

func clampQ15(v float64) int32 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int32(v)
}
