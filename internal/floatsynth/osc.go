// Package floatsynth composes the float32 numeric regime (floatfmt) into
// the oscillator, filter, envelope, LFO and voice-graph primitives spec'd
// for the engine, the same way internal/fm/engine.go composes its operator
// and envelope primitives into a voice.
package floatsynth

import (
	"math"

	"github.com/cbegin/synthvoice/internal/floatfmt"
)

const twoPi = 2 * math.Pi

// OscParams holds one oscillator's per-sample tuning and shape mix.
type OscParams struct {
	CoarseSemis float32 // tuning offset added in the note domain
	FineCents   float32
	PulseWidth  float32 // square wave duty cycle, clamped to [0.05, 0.95]
	MixSaw      floatfmt.Scalar
	MixSquare   floatfmt.Scalar
	MixTri      floatfmt.Scalar
	MixSine     floatfmt.Scalar
}

// OscOutputs is the four simultaneous waveform outputs of one oscillator,
// before a caller mixes them (MixOsc) or inspects them individually (hard
// sync master detection does not use them; it reads the master's Phase).
type OscOutputs struct {
	Saw    floatfmt.Sample
	Square floatfmt.Sample
	Tri    floatfmt.Sample
	Sine   floatfmt.Sample
}

// Osc is a single band-limited oscillator with optional hard sync.
//
// State is one phase accumulator in [-pi, pi), matching spec 4.2's "phase
// wraps by modular subtraction, never fmod" requirement (4.2, 9).
type Osc struct {
	phase     float64
	prevPhase float64
	triAccum  float64
	synced    bool // true if a sync pulse landed on this sample, for the saw's second polyBLEP correction
}

// Reset returns the oscillator to phase zero.
func (o *Osc) Reset() { o.phase = 0; o.prevPhase = 0 }

// Phase returns the current raw phase in [-pi, pi), for a master oscillator
// whose wrap drives a slave's hard sync.
func (o *Osc) Phase() float64 { return o.phase }

// Next advances the oscillator by one sample and computes its four shape
// outputs. note is the note-domain pitch already summed with modulation;
// fmInput is an additional per-sample frequency-domain offset in Hz (used
// for FM or hard-sync phase reset is handled by syncPhase instead).
func (o *Osc) Next(ctx floatfmt.Context, note floatfmt.Note, p OscParams, fmInputHz float64, syncPhase float64, syncing bool) OscOutputs {
	tunedNote := floatfmt.Note(float64(note) + float64(p.CoarseSemis) + float64(p.FineCents)/100)
	freq := float64(floatfmt.NoteToFrequency(tunedNote)) + fmInputHz
	if freq < 0 {
		freq = 0
	}
	dt := freq * ctx.InvSampleRate()

	o.prevPhase = o.phase
	if syncing {
		o.phase = syncPhase
		o.synced = true
	} else {
		o.phase += twoPi * dt
		o.synced = false
	}
	for o.phase >= math.Pi {
		o.phase -= twoPi
	}
	for o.phase < -math.Pi {
		o.phase += twoPi
	}

	t := (o.phase + math.Pi) / twoPi // normalized [0,1)
	dtNorm := dt

	pw := float64(p.PulseWidth)
	if pw < 0.05 {
		pw = 0.05
	} else if pw > 0.95 {
		pw = 0.95
	}

	saw := 2*t - 1
	saw -= polyBLEP(t, dtNorm)
	if o.synced {
		saw -= polyBLEPSyncCorrection(t, dtNorm)
	}

	var square float64
	tSq := math.Mod(t+0.5, 1)
	if tSq < pw {
		square = 1
	} else {
		square = -1
	}
	square += polyBLEP(tSq, dtNorm)
	tSqOff := math.Mod(tSq-pw+1, 1)
	square -= polyBLEP(tSqOff, dtNorm)

	tri := integrateSquareToTriangle(square, dtNorm, &o.triAccum)

	sine := floatfmt.SinPi(float32(o.phase / math.Pi))

	return OscOutputs{
		Saw:    floatfmt.ClampSample(float32(saw)),
		Square: floatfmt.ClampSample(float32(square)),
		Tri:    floatfmt.ClampSample(float32(tri)),
		Sine:   sine,
	}
}

// polyBLEP returns the band-limited step correction for a discontinuity at
// phase t=0, given the per-sample phase increment dt. Standard two-sided
// polyBLEP (Valimaki/Huovilainen): corrects one sample on either side of
// the discontinuity so the step has no aliasing-producing sharp corner.
func polyBLEP(t, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	if t < dt {
		x := t/dt - 1
		return -x * x
	} else if t > 1-dt {
		x := (t-1)/dt + 1
		return x * x
	}
	return 0
}

// polyBLEPSyncCorrection smooths the extra discontinuity a hard-sync reset
// introduces mid-cycle, applied only on the sample where synced is true.
func polyBLEPSyncCorrection(t, dt float64) float64 {
	return polyBLEP(t, dt)
}

// integrateSquareToTriangle leaky-integrates a band-limited square into a
// triangle wave, the textbook square->triangle relationship, normalizing
// by the phase increment so amplitude stays roughly unity regardless of
// frequency.
func integrateSquareToTriangle(square, dt float64, accum *float64) float64 {
	if dt <= 0 {
		return *accum
	}
	leak := 1 - 4*dt
	if leak < 0 {
		leak = 0
	}
	*accum = leak**accum + 4*dt*square
	return *accum
}
