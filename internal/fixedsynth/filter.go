package fixedsynth

import "github.com/cbegin/synthvoice/internal/fixedfmt"

// FiltParams is the state-variable filter's per-sample control pair.
type FiltParams struct {
	Cutoff    fixedfmt.Note
	Resonance fixedfmt.Scalar
}

// FiltOutputs is the SVF's three simultaneous taps.
type FiltOutputs struct {
	Low, Band, High fixedfmt.Sample
}

const maxResonanceQ16 = fixedfmt.Scalar(0.9375 * 65536)

// Filt is a 2-pole Chamberlin state-variable filter with soft-saturated
// resonance feedback, the fixed-regime counterpart of floatsynth.Filt.
// State is the two integrators lp, bp, both Samples.
type Filt struct {
	lp, bp fixedfmt.Sample
}

func (f *Filt) Reset() { f.lp, f.bp = 0, 0 }

// Next computes one sample of all three filter outputs. f is derived from
// cutoff via 2*sin(pi*freq/sample_rate) per spec 4.3: for arguments at or
// below pi/4 (cutoff at or below a quarter of the sample rate, the common
// case) a small-angle approximation (sin(x) ~= x) is used directly; above
// that threshold the exact value comes from fixedfmt.SinPi, the same
// table/polynomial the oscillator's sine output uses. Both branches are
// monotonic in cutoff, satisfying spec 4.3's requirement.
func (f *Filt) Next(ctx fixedfmt.Context, input fixedfmt.Sample, p FiltParams) FiltOutputs {
	freq := fixedfmt.NoteToFrequency(p.Cutoff)
	coeffQ16 := filterCoeffQ16(freq, ctx.SampleRate)

	rEff := p.Resonance
	if rEff > maxResonanceQ16 {
		rEff = maxResonanceQ16
	}
	q := fixedfmt.Scalar(65535 - uint16(rEff))

	in := input
	qBp := fixedfmt.Scale(f.bp, q)
	hp := fixedfmt.SaturatingSub(fixedfmt.SaturatingSub(in, f.lp), qBp)
	f.bp = fixedfmt.SaturatingAdd(f.bp, mulCoeffQ16(hp, coeffQ16))
	f.lp = fixedfmt.SaturatingAdd(f.lp, mulCoeffQ16(f.bp, coeffQ16))

	f.bp = softClip(f.bp)

	return FiltOutputs{Low: f.lp, Band: f.bp, High: hp}
}

// quarterNyquistXQ15 is the Q1.15 threshold for freq/sampleRate = 1/4 (the
// pi/4 argument boundary spec 4.3 names), i.e. 0.25*32768.
const quarterNyquistXQ15 = 8192

// smallAngleQ16 approximates round(4*pi * 2^16), the constant that turns a
// Q1.15 x=freq/sampleRate directly into 2*sin(pi*x)'s Q2.16 coefficient
// under the small-angle approximation (2*sin(pi*x) ~= 2*pi*x, and
// coeffQ16 = 2*pi*x*65536 = 4*pi*xQ15 since x = xQ15/32768).
const smallAngleQ16 = 823550

// filterCoeffQ16 computes 2*sin(pi*freq/sampleRate) in Q2.16 fixed point
// (value = raw/65536, legal range [0,2]) without a runtime division: x =
// freq/sampleRate is found the same way phaseIncrement finds a cycle
// fraction, via the precomputed invSampleRateQ30 reciprocal and a single
// widen-then-narrow multiply.
func filterCoeffQ16(freq fixedfmt.Frequency, sampleRate int) uint32 {
	inv := invSampleRateQ30(sampleRate)
	// x = freq/sampleRate in Q1.15: freq_raw*inv/(16*2^30)*2^15 = (freq_raw*inv)>>19.
	wide := uint64(freq) * uint64(inv)
	xQ15 := uint32(wide >> 19)
	if xQ15 > 32767 {
		xQ15 = 32767
	}
	if xQ15 <= quarterNyquistXQ15 {
		return uint32((uint64(xQ15) * smallAngleQ16) >> 16)
	}
	sinVal := fixedfmt.SinPi(fixedfmt.Sample(int16(xQ15)))
	coeff := int32(sinVal) * 4
	if coeff < 0 {
		coeff = 0
	}
	return uint32(coeff)
}

// mulCoeffQ16 multiplies a Sample by a Q2.16 coefficient via one
// widen-then-narrow 64-bit multiply, the same boundary idiom
// fixedfmt.Scale uses for Scalar gains.
func mulCoeffQ16(s fixedfmt.Sample, coeffQ16 uint32) fixedfmt.Sample {
	wide := int64(s) * int64(coeffQ16)
	narrowed := wide >> 16
	return fixedfmt.ClampSample(int32(narrowed))
}

// softClip is the cubic odd polynomial x - x^3/3 from floatsynth.softClip,
// reworked into fixed point: the division by 3 becomes a multiply by the
// Scalar closest to 1/3 (fixedfmt.Scale's only allowed operation). For a
// Sample input the result stays within about [-2/3, 2/3].
func softClip(x fixedfmt.Sample) fixedfmt.Sample {
	x3 := fixedfmt.Multiply(fixedfmt.Multiply(x, x), x)
	x3Over3 := fixedfmt.Scale(x3, fixedfmt.Scalar(21845)) // approx 1/3
	return fixedfmt.SaturatingSub(x, x3Over3)
}

// ModFiltParams adds the three modulation contributors (already resolved
// to Q8.8 semitone offsets by the mod matrix) on top of a base FiltParams.
type ModFiltParams struct {
	Base           FiltParams
	EnvAmount      fixedfmt.SignedNote
	LfoAmount      fixedfmt.SignedNote
	VelocityAmount fixedfmt.SignedNote
	MixLow         fixedfmt.Scalar
	MixBand        fixedfmt.Scalar
	MixHigh        fixedfmt.Scalar
}

// ModFilt wraps Filt with cutoff modulation and a 3-way output mix, per
// spec 4.3's ModFilt paragraph.
type ModFilt struct {
	Filt Filt
}

func (m *ModFilt) Reset() { m.Filt.Reset() }

func (m *ModFilt) Next(ctx fixedfmt.Context, input fixedfmt.Sample, p ModFiltParams) fixedfmt.Sample {
	cutoff := addNoteOffset(p.Base.Cutoff, p.EnvAmount)
	cutoff = addNoteOffset(cutoff, p.LfoAmount)
	cutoff = addNoteOffset(cutoff, p.VelocityAmount)
	out := m.Filt.Next(ctx, input, FiltParams{Cutoff: cutoff, Resonance: p.Base.Resonance})
	return Mixer3(
		[3]fixedfmt.Sample{out.Low, out.Band, out.High},
		[3]fixedfmt.Scalar{p.MixLow, p.MixBand, p.MixHigh},
	)
}
