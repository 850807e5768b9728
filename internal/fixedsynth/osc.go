// Package fixedsynth composes the 16-bit fixed-point numeric regime
// (fixedfmt) into the same oscillator/filter/envelope/LFO/voice-graph
// primitives internal/floatsynth builds for float32, reusing the teacher's
// composition shape while never executing a runtime division or a wider-
// than-one-widen multiply (spec 9).
package fixedsynth

import "github.com/cbegin/synthvoice/internal/fixedfmt"

// OscParams holds one oscillator's per-sample tuning and shape mix, the
// fixed-regime counterpart of floatsynth.OscParams.
type OscParams struct {
	CoarseSemis fixedfmt.SignedNote // Q8.8 tuning offset, semitones
	FineTune    fixedfmt.SignedNote // Q8.8 fine tuning offset, semitones (not cents: DestOsc1Fine/DestOsc2Fine already swing in whole semitones)
	PulseWidth  fixedfmt.Scalar     // duty cycle, clamped to [0.05, 0.95] by the caller
	MixSaw      fixedfmt.Scalar
	MixSquare   fixedfmt.Scalar
	MixTri      fixedfmt.Scalar
	MixSine     fixedfmt.Scalar
}

// OscOutputs is the four simultaneous waveform outputs of one oscillator.
type OscOutputs struct {
	Saw    fixedfmt.Sample
	Square fixedfmt.Sample
	Tri    fixedfmt.Sample
	Sine   fixedfmt.Sample
}

// pulseWidthMin/Max bound PulseWidth to [0.05, 0.95] in Scalar (Q0.16)
// units, matching floatsynth's clamp.
const (
	pulseWidthMinQ16 = fixedfmt.Scalar(3277)  // round(0.05*65536)
	pulseWidthMaxQ16 = fixedfmt.Scalar(62259) // round(0.95*65536)
)

// Osc is a single band-limited oscillator with optional hard sync, built on
// a Q0.32 phase accumulator that wraps by unsigned overflow rather than an
// explicit modular subtraction: the top 16 bits of that accumulator, read
// as a signed Q1.15 value (int16(t16), i.e. phase/pi), are simultaneously
// the naive (pre-correction) sawtooth sample and the Q1.15 input SinPi expects for
// this oscillator's sine output — one accumulator reading serves both, no
// per-sample conversion multiply between them.
type Osc struct {
	phase    uint32 // Q0.32 cycle fraction, [0, 1)
	triAccum fixedfmt.Sample
	synced   bool
}

func (o *Osc) Reset() { o.phase = 0; o.triAccum = 0 }

// Phase returns the raw Q0.32 phase accumulator, for master-oscillator
// wrap detection in SyncedOscs.
func (o *Osc) Phase() uint32 { return o.phase }

// Next advances the oscillator by one sample and computes its four shape
// outputs. note is the note-domain pitch already in Q7.9; syncPhase/syncing
// drive a hard-sync reset exactly like floatsynth.Osc.Next.
func (o *Osc) Next(ctx fixedfmt.Context, note fixedfmt.Note, p OscParams, syncPhase uint32, syncing bool) OscOutputs {
	tuned := addNoteOffset(note, p.CoarseSemis)
	tuned = addNoteOffset(tuned, p.FineTune)
	freq := fixedfmt.NoteToFrequency(tuned)

	incQ32 := phaseIncrement(freq, ctx.SampleRate)

	if syncing {
		o.phase = syncPhase
		o.synced = true
	} else {
		o.phase += incQ32
		o.synced = false
	}

	dt16 := uint16(incQ32 >> 16)
	t16 := uint16(o.phase >> 16)

	// rawSaw is t16 read as signed Q1.15, i.e. phase/pi for a phase that
	// starts at 0 on reset (t16=0 -> 0, t16=32767 -> ~1, t16=32768 -> -1),
	// the fixed-point counterpart of floatsynth's `2*t-1` ramp. Its single
	// discontinuity sits at the accumulator's half cycle (32767 -> 32768),
	// so polyBLEP is evaluated at t16+32768, the fraction measured from that
	// step (floatsynth's t), and subtracted as floatsynth does.
	// floatsynth.Osc.Next feeds this same phase/pi value into SinPi for its
	// sine output, so this one accumulator reading serves both outputs with
	// no separate conversion.
	rawSaw := fixedfmt.Sample(int16(t16))
	sawCorrection := polyBLEP(t16+32768, dt16)
	saw := fixedfmt.SaturatingSub(rawSaw, sawCorrection)
	if o.synced {
		saw = fixedfmt.SaturatingSub(saw, polyBLEP(t16+32768, dt16))
	}

	pw := p.PulseWidth
	if pw < pulseWidthMinQ16 {
		pw = pulseWidthMinQ16
	} else if pw > pulseWidthMaxQ16 {
		pw = pulseWidthMaxQ16
	}
	var square fixedfmt.Sample
	if t16 < uint16(pw) {
		square = 32767
	} else {
		square = -32768
	}
	square = fixedfmt.SaturatingAdd(square, polyBLEP(t16, dt16))
	tSqOff := t16 - uint16(pw)
	square = fixedfmt.SaturatingSub(square, polyBLEP(tSqOff, dt16))

	o.triAccum = integrateSquareToTriangle(square, dt16, o.triAccum)

	sine := fixedfmt.SinPi(rawSaw)

	return OscOutputs{Saw: saw, Square: square, Tri: o.triAccum, Sine: sine}
}

// phaseIncrement converts a Q12.4 frequency to a Q0.32 per-sample phase
// step: freqHz/sampleRate = freq_raw*invSampleRateQ30/(16*2^30), and the
// Q0.32 representation of that ratio is freq_raw*invSampleRateQ30/4 — one
// 64-bit widen (freq_raw, at most 16 bits, times the 15-bit invSampleRateQ30)
// followed by a single narrowing shift, never a runtime division.
func phaseIncrement(freq fixedfmt.Frequency, sampleRate int) uint32 {
	inv := invSampleRateQ30(sampleRate)
	wide := uint64(freq) * uint64(inv)
	return uint32(wide >> 2)
}

func invSampleRateQ30(sampleRate int) uint32 {
	switch sampleRate {
	case 44100:
		return 24348 // round(2^30/44100)
	default:
		return 22370 // round(2^30/48000)
	}
}

// polyBLEP returns the band-limited step correction at a discontinuity
// crossed at phase fraction 0, given current fraction t16 and per-sample
// increment dt16 (both Q0.16 unsigned), scaled into Sample (Q1.15) units.
// 1/dt is found via fixedfmt.Reciprocal rather than a runtime division,
// the same mantissa/exponent technique EnvCoeff uses for 1/tau.
func polyBLEP(t16, dt16 uint16) fixedfmt.Sample {
	if dt16 == 0 {
		return 0
	}
	invDt := fixedfmt.Reciprocal(dt16) >> 14 // approx 1/dt, unscaled integer
	switch {
	case uint32(t16) < uint32(dt16):
		xRatioQ16 := uint64(t16) * uint64(invDt) // (t/dt)*65536
		xQ16 := int64(xRatioQ16) - 65536
		x2Q16 := (xQ16 * xQ16) >> 16
		return fixedfmt.ClampSample(int32(-(x2Q16 >> 1)))
	case uint32(t16) > uint32(65536-int64(dt16)):
		tMinus1Q16 := int64(t16) - 65536
		xRatioQ16 := (tMinus1Q16 * int64(invDt)) + 65536
		x2Q16 := (xRatioQ16 * xRatioQ16) >> 16
		return fixedfmt.ClampSample(int32(x2Q16 >> 1))
	default:
		return 0
	}
}

// integrateSquareToTriangle leaky-integrates a band-limited square into a
// triangle wave: accum = leak*accum + 4dt*square, matching
// floatsynth.integrateSquareToTriangle's form in Q1.15/Q0.16 fixed point.
func integrateSquareToTriangle(square fixedfmt.Sample, dt16 uint16, accum fixedfmt.Sample) fixedfmt.Sample {
	fourDt := int32(dt16) * 4
	if fourDt > 65535 {
		fourDt = 65535
	}
	leak := fixedfmt.Scalar(65535 - fourDt)
	decayed := fixedfmt.Scale(accum, leak)
	driven := fixedfmt.Scale(square, fixedfmt.Scalar(fourDt))
	return fixedfmt.SaturatingAdd(decayed, driven)
}

// addNoteOffset adds a Q8.8 signed semitone offset to a Q7.9 Note,
// converting scale (Q8.8 -> Q7.9 is a single left shift) before the signed
// add, and clamps to Note's legal [0, 128) range (raw 0..65535).
func addNoteOffset(n fixedfmt.Note, off fixedfmt.SignedNote) fixedfmt.Note {
	offQ9 := int32(off) << 1
	sum := int32(n) + offQ9
	return clampNoteQ9(sum)
}

func clampNoteQ9(v int32) fixedfmt.Note {
	const maxNoteQ9 = 128<<9 - 1
	if v < 0 {
		v = 0
	} else if v > maxNoteQ9 {
		v = maxNoteQ9
	}
	return fixedfmt.Note(v)
}
