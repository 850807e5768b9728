package floatsynth

import (
	"math"

	"github.com/cbegin/synthvoice/internal/floatfmt"
)

// FiltParams is the state-variable filter's per-sample control pair.
type FiltParams struct {
	Cutoff    floatfmt.Note
	Resonance floatfmt.Scalar
}

// FiltOutputs is the SVF's three simultaneous taps.
type FiltOutputs struct {
	Low, Band, High floatfmt.Sample
}

const maxResonance = 0.9375

// Filt is a 2-pole Chamberlin state-variable filter with soft-saturated
// resonance feedback, per spec 4.3. State is the two integrators lp, bp.
type Filt struct {
	lp, bp float64
}

func (f *Filt) Reset() { f.lp, f.bp = 0, 0 }

// Next computes one sample of all three filter outputs. f is derived from
// cutoff via 2*sin(pi*freq/sampleRate); the float regime has no division-
// or-multiply-width budget to defend so it calls math.Sin directly rather
// than the fixed regime's small-angle/table approximation.
func (f *Filt) Next(ctx floatfmt.Context, input floatfmt.Sample, p FiltParams) FiltOutputs {
	freq := float64(floatfmt.NoteToFrequency(p.Cutoff))
	coeff := 2 * math.Sin(math.Pi*freq*ctx.InvSampleRate())
	if coeff > 2 {
		coeff = 2
	}

	rEff := float64(p.Resonance)
	if rEff > maxResonance {
		rEff = maxResonance
	}
	q := 1 - rEff

	in := float64(input)
	hp := in - f.lp - q*f.bp
	f.bp = f.bp + coeff*hp
	f.lp = f.lp + coeff*f.bp

	f.bp = softClip(f.bp)

	return FiltOutputs{
		Low:  floatfmt.ClampSample(float32(f.lp)),
		Band: floatfmt.ClampSample(float32(f.bp)),
		High: floatfmt.ClampSample(float32(hp)),
	}
}

// softClip is the cubic odd polynomial x - x^3/3, applied to x clamped to
// [-1, 1] so the output stays within [-2/3, 2/3], used to model resonance
// saturation without a hard clip; see DESIGN.md's Open Question resolution
// on the resonance curve.
func softClip(x float64) float64 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	return x - x*x*x/3
}

// ModFiltParams adds the three modulation contributors (already resolved
// to absolute units by the mod matrix) on top of a base FiltParams.
type ModFiltParams struct {
	Base           FiltParams
	EnvAmount      float64 // semitones, envelope-to-cutoff contribution
	LfoAmount      float64 // semitones, LFO-to-cutoff contribution
	VelocityAmount float64 // semitones, velocity-to-cutoff contribution
	MixLow         floatfmt.Scalar
	MixBand        floatfmt.Scalar
	MixHigh        floatfmt.Scalar
}

// ModFilt wraps Filt with cutoff modulation and a 3-way output mix, per
// spec 4.3's ModFilt paragraph.
type ModFilt struct {
	Filt Filt
}

func (m *ModFilt) Reset() { m.Filt.Reset() }

func (m *ModFilt) Next(ctx floatfmt.Context, input floatfmt.Sample, p ModFiltParams) floatfmt.Sample {
	cutoff := floatfmt.Note(float64(p.Base.Cutoff) + p.EnvAmount + p.LfoAmount + p.VelocityAmount)
	out := m.Filt.Next(ctx, input, FiltParams{Cutoff: cutoff, Resonance: p.Base.Resonance})
	return Mixer3(
		[3]floatfmt.Sample{out.Low, out.Band, out.High},
		[3]floatfmt.Scalar{p.MixLow, p.MixBand, p.MixHigh},
	)
}
