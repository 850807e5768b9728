package floatsynth

import (
	"math"

	"github.com/cbegin/synthvoice/internal/floatfmt"
)

// LfoWave selects the LFO's waveform shape.
type LfoWave int

const (
	LfoSine LfoWave = iota
	LfoTriangle
	LfoSquare
	LfoSawUp
	LfoSawDown
	LfoSampleHold
)

// LfoParams is one LFO's per-sample configuration.
type LfoParams struct {
	Freq      floatfmt.LfoFreq
	Depth     floatfmt.Scalar
	Wave      LfoWave
	Bipolar   bool // default true; false yields a unipolar [0,1) output
	Retrigger bool // reset phase to 0 on gate-on, instead of free-running
}

// Lfo is a periodic modulation source with its own phase accumulator and a
// 32-bit LFSR for sample-and-hold, Set/Sample/Active/Reset shape grounded
// on internal/lfo/lfo.go, extended with the sine and LFSR-driven S&H
// waveforms spec 4.5 adds beyond the teacher's four.
type Lfo struct {
	phase    float64 // [0,1)
	lfsr     uint32
	shValue  float32
	prevGate bool
}

// NewLfo seeds the sample-and-hold LFSR deterministically; a zero seed
// would never advance (the XOR-shift has no escape from zero) so it is
// replaced with a fixed nonzero default.
func NewLfo(seed uint32) *Lfo {
	if seed == 0 {
		seed = 0x1234ACE1
	}
	return &Lfo{lfsr: seed}
}

func (l *Lfo) Reset() {
	l.phase = 0
	l.shValue = 0
}

// Active reports whether this LFO currently produces nonzero modulation.
func (l *Lfo) Active(p LfoParams) bool {
	return p.Depth != 0 && p.Freq != 0
}

// Next advances the LFO by one sample. gate drives retrigger when
// p.Retrigger is set: phase resets to 0 on the rising edge of gate.
func (l *Lfo) Next(ctx floatfmt.Context, gate floatfmt.Sample, p LfoParams) floatfmt.SignedScalar {
	gateOn := gate > 0
	if p.Retrigger && gateOn && !l.prevGate {
		l.phase = 0
	}
	l.prevGate = gateOn

	if p.Freq == 0 || p.Depth == 0 {
		return 0
	}

	var wave float64
	switch p.Wave {
	case LfoSine:
		wave = float64(floatfmt.SinPi(float32(2*l.phase - 1)))
	case LfoTriangle:
		if l.phase < 0.5 {
			wave = 4*l.phase - 1
		} else {
			wave = 3 - 4*l.phase
		}
	case LfoSquare:
		if l.phase < 0.5 {
			wave = 1
		} else {
			wave = -1
		}
	case LfoSawUp:
		wave = 2*l.phase - 1
	case LfoSawDown:
		wave = 1 - 2*l.phase
	case LfoSampleHold:
		wave = float64(l.shValue)
	}

	prevPhase := l.phase
	l.phase += float64(p.Freq) * ctx.InvSampleRate()
	for l.phase >= 1 {
		l.phase -= 1
	}
	if p.Wave == LfoSampleHold && l.phase < prevPhase {
		l.lfsr = advanceLFSR(l.lfsr)
		l.shValue = lfsrToBipolar(l.lfsr)
	}

	if !p.Bipolar {
		wave = (wave + 1) / 2
	}
	return floatfmt.SignedScalar(wave) * floatfmt.SignedScalar(p.Depth)
}

// advanceLFSR steps a 32-bit maximal-length Fibonacci LFSR (taps at bits
// 32,22,2,1, i.e. the feedback polynomial x^32+x^22+x^2+x+1), deterministic
// given the same seed and call count across runs (spec 5's determinism
// requirement).
func advanceLFSR(x uint32) uint32 {
	bit := ((x >> 0) ^ (x >> 10) ^ (x >> 30) ^ (x >> 31)) & 1
	return (x >> 1) | (bit << 31)
}

func lfsrToBipolar(x uint32) float32 {
	return float32(x)/float32(math.MaxUint32)*2 - 1
}
