package fixedsynth

import "github.com/cbegin/synthvoice/internal/fixedfmt"

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
	Freq      fixedfmt.LfoFreq
	Depth     fixedfmt.Scalar
	Wave      LfoWave
	Bipolar   bool
	Retrigger bool
}

// Lfo is a periodic modulation source with a Q0.32 phase accumulator and a
// 32-bit LFSR for sample-and-hold, the fixed-regime counterpart of
// floatsynth.Lfo.
type Lfo struct {
	phase    uint32
	lfsr     uint32
	shValue  fixedfmt.SignedScalar
	prevGate bool
}

// NewLfo seeds the LFSR deterministically; a zero seed would never advance
// so it is replaced with a fixed nonzero default, same as floatsynth.Lfo.
func NewLfo(seed uint32) *Lfo {
	if seed == 0 {
		seed = 0x1234ACE1
	}
	return &Lfo{lfsr: seed}
}

func (l *Lfo) Reset() { l.phase = 0; l.shValue = 0 }

func (l *Lfo) Active(p LfoParams) bool { return p.Depth != 0 && p.Freq != 0 }

// Next advances the LFO by one sample. LfoFreq is Q7.9 (same layout as
// Note), so its phase increment comes from lfoPhaseIncrement, which reads
// the Q7.9 rate directly, rather than from the oscillator's Q12.4
// phaseIncrement. The selected waveform is scaled by the Q0.16 Depth.
func (l *Lfo) Next(ctx fixedfmt.Context, gate fixedfmt.Sample, p LfoParams) fixedfmt.SignedScalar {
	gateOn := gate > 0
	if p.Retrigger && gateOn && !l.prevGate {
		l.phase = 0
	}
	l.prevGate = gateOn

	if p.Freq == 0 || p.Depth == 0 {
		return 0
	}

	t16 := uint16(l.phase >> 16)
	rawRamp := int32(t16) - 32768 // Q1.15 2*phase-1, same ramp floatsynth.Lfo feeds to SinPi
	var wave fixedfmt.SignedScalar
	switch p.Wave {
	case LfoSine:
		wave = fixedfmt.SignedScalar(fixedfmt.SinPi(fixedfmt.Sample(rawRamp)))
	case LfoTriangle:
		if t16 < 32768 {
			wave = clampSigned(int32(t16)*2 - 32768)
		} else {
			wave = clampSigned(32768 - (int32(t16)-32768)*2)
		}
	case LfoSquare:
		if t16 < 32768 {
			wave = 32767
		} else {
			wave = -32768
		}
	case LfoSawUp:
		wave = clampSigned(rawRamp)
	case LfoSawDown:
		wave = clampSigned(-rawRamp)
	case LfoSampleHold:
		wave = l.shValue
	}

	prevPhase := l.phase
	l.phase += lfoPhaseIncrement(p.Freq, ctx.SampleRate)
	if p.Wave == LfoSampleHold && l.phase < prevPhase {
		l.lfsr = advanceLFSR(l.lfsr)
		l.shValue = lfsrToBipolar(l.lfsr)
	}

	if !p.Bipolar {
		wave = fixedfmt.SignedScalar((int32(wave) + 32768) >> 1)
	}
	return fixedfmt.SignedScalar((int32(wave) * int32(p.Depth)) >> 16)
}

// lfoPhaseIncrement converts a Q7.9 LfoFreq directly to a Q0.32 cycle
// increment, the same invSampleRateQ30 boundary multiply phaseIncrement
// uses for oscillator Frequency: freqHz/sampleRate = rawFreq/512/sampleRate,
// so the Q0.32 result is rawFreq*invSampleRateQ30/(512/2^2) = >>7.
func lfoPhaseIncrement(freq fixedfmt.LfoFreq, sampleRate int) uint32 {
	inv := invSampleRateQ30(sampleRate)
	wide := uint64(freq) * uint64(inv)
	return uint32(wide >> 7)
}

// advanceLFSR steps the same 32-bit Fibonacci LFSR floatsynth.Lfo uses,
// for determinism parity between the two regimes' sample-and-hold output.
func advanceLFSR(x uint32) uint32 {
	bit := ((x >> 0) ^ (x >> 10) ^ (x >> 30) ^ (x >> 31)) & 1
	return (x >> 1) | (bit << 31)
}

func lfsrToBipolar(x uint32) fixedfmt.SignedScalar {
	return clampSigned(int32(x>>16) - 32768)
}

func clampSigned(v int32) fixedfmt.SignedScalar {
	if v < -32768 {
		v = -32768
	} else if v > 32767 {
		v = 32767
	}
	return fixedfmt.SignedScalar(v)
}
