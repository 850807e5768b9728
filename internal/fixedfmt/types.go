// Package fixedfmt is the 16-bit fixed-point numeric regime: Q-format
// integer types and the saturating arithmetic spec 4.1 requires, structured
// to run with no runtime division and no multiply wider than the single
// widen-then-narrow boundary operation (spec 9).
package fixedfmt

import "math/bits"

// Sample is Q1.15: a signed audio value in [-1, 1).
type Sample int16

// USample is Q0.16: an unsigned audio value in [0, 1).
type USample uint16

// WideSample is Q17.15: the widened accumulator used while summing Samples
// before a final saturating narrow.
type WideSample int32

// Scalar is Q0.16: an unsigned gain/depth in [0, 1).
type Scalar uint16

// SignedScalar is Q1.15: a signed gain/depth in [-1, 1).
type SignedScalar int16

// Note is Q7.9: an unsigned MIDI pitch with fractional cents, range [0, 128)
// (the largest raw value, 65535, is note 127.998).
type Note uint16

// SignedNote is Q8.8: a signed pitch offset, +-128 semitones.
type SignedNote int16

// Frequency is Q12.4: an unsigned frequency in Hz, range [0, 4096).
type Frequency uint16

// EnvParam is Q3.13: a time in seconds, range [0, 8).
type EnvParam uint16

// LfoFreq is Q7.9: an LFO rate in Hz, range [0, 128).
type LfoFreq uint16

// Phase is Q4.28: an oscillator phase accumulator, range +-8*pi.
type Phase int32

const (
	sampleMax = int32(1<<15) - 1
	sampleMin = -int32(1 << 15)

	scalarMax = int32(1<<16) - 1

	wideShift = 15 // Sample's fractional bit count
)

func clamp32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Context is the immutable per-run configuration shared by every primitive
// in a fixed-point voice. Construction fails for any sample rate outside
// the two the fixed regime supports (spec 7); the hot path never computes
// 1/sampleRate itself.
type Context struct {
	SampleRate       int
	invSampleRateQ30 int64  // (1<<30)/SampleRate, a Q2.30 reciprocal
	envDtScale       uint16 // (8192/SampleRate)*65536 in Q0.16, feeds EnvCoeff
}

// ErrUnsupportedSampleRate is returned by NewContext for any rate other
// than 44100 or 48000.
type ErrUnsupportedSampleRate struct{ Rate int }

func (e ErrUnsupportedSampleRate) Error() string {
	return "fixedfmt: unsupported sample rate (must be 44100 or 48000)"
}

// NewContext validates the sample rate and precomputes its reciprocal. This
// is the only place in the fixed regime where a division executes; it never
// runs on the hot path.
func NewContext(sampleRate int) (Context, error) {
	if sampleRate != 44100 && sampleRate != 48000 {
		return Context{}, ErrUnsupportedSampleRate{Rate: sampleRate}
	}
	return Context{
		SampleRate:       sampleRate,
		invSampleRateQ30: (int64(1) << 30) / int64(sampleRate),
		envDtScale:       uint16((8192 * 65536) / sampleRate),
	}, nil
}

// InvSampleRateQ30 returns the precomputed Q2.30 reciprocal of the sample
// rate, for primitives that need 1/sampleRate without dividing.
func (c Context) InvSampleRateQ30() int64 { return c.invSampleRateQ30 }

// EnvDtScale returns the precomputed (8192/SampleRate) Q0.16 scale EnvCoeff
// needs, so callers outside this package never compute it themselves.
func (c Context) EnvDtScale() uint16 { return c.envDtScale }

// Scale multiplies a Sample by a Scalar via widen-then-narrow and saturates.
// |Scale(s, g)| <= |s|, Scale(s, 0) = 0 exactly, Scale(s, 1) = s exactly
// (Scalar's max representable value, 0xFFFF, is treated as 1.0).
func Scale(s Sample, g Scalar) Sample {
	if g == Scalar(scalarMax) {
		return s
	}
	wide := int64(s) * int64(g)
	narrowed := wide >> 16
	return Sample(clamp32(int32(narrowed), sampleMin, sampleMax))
}

// ScaleSigned multiplies a Sample by a SignedScalar.
func ScaleSigned(s Sample, g SignedScalar) Sample {
	wide := int64(s) * int64(g)
	narrowed := wide >> 15
	return Sample(clamp32(int32(narrowed), sampleMin, sampleMax))
}

// Widen promotes a Sample to a WideSample ahead of an accumulation.
func Widen(s Sample) WideSample { return WideSample(s) }

// Narrow saturates a WideSample back down to a Sample's legal range.
func Narrow(w WideSample) Sample {
	return Sample(clamp32(int32(w), sampleMin, sampleMax))
}

// Multiply computes a saturating Sample*Sample product via the single
// widen-then-narrow boundary multiply the fixed regime is allowed.
func Multiply(a, b Sample) Sample {
	wide := int64(a) * int64(b)
	narrowed := wide >> wideShift
	return Sample(clamp32(int32(narrowed), sampleMin, sampleMax))
}

// SaturatingAdd adds two Samples and clamps to the legal range.
func SaturatingAdd(a, b Sample) Sample {
	return Sample(clamp32(int32(a)+int32(b), sampleMin, sampleMax))
}

// SaturatingSub subtracts two Samples and clamps to the legal range.
func SaturatingSub(a, b Sample) Sample {
	return Sample(clamp32(int32(a)-int32(b), sampleMin, sampleMax))
}

// ClampSample saturates an arbitrary int32 (already in Q1.15 units) into a
// legal Sample.
func ClampSample(v int32) Sample {
	return Sample(clamp32(v, sampleMin, sampleMax))
}

// SinPi evaluates sin(pi*x) for x in Q1.15 units ([-1,1) representing
// [-pi,pi)) via the same 5-term odd polynomial floatfmt uses. The
// coefficients (up to ~5.17 in magnitude) do not fit Q1.15, so Horner's
// method runs in Q4.12 (sinPiCoeffQ412's format, range +-8) and only the
// final multiply by x narrows back to a Q1.15 Sample; every step is a
// 16-by-16-bit multiply producing a 32-bit intermediate, never a 64-bit
// one.
func SinPi(x Sample) Sample {
	x2 := int32(Multiply(x, x)) // Q1.15
	const coeffFracBits = 12
	poly := int32(sinPiCoeffQ412[4])
	for i := 3; i >= 0; i-- {
		poly = int32((int64(poly)*int64(x2))>>wideShift) + int32(sinPiCoeffQ412[i])
	}
	// poly is Q4.12; x is Q1.15. Product scale is 2^(12+15)=2^27; narrow to
	// Q1.15 (2^15) by shifting right 12.
	product := (int64(poly) * int64(x)) >> coeffFracBits
	return ClampSample(int32(product))
}

// sinPiCoeffQ412 holds the sinPi polynomial coefficients requantized to
// Q4.12 (4 integer bits, range +-8) at package init, since their float
// magnitudes (up to ~5.17) overflow Q1.15's +-1 range.
var sinPiCoeffQ412 [5]int16

func init() {
	coeffs := [5]float64{3.14154402, -5.16665234, 2.54373658, -0.58337909, 0.06476758}
	for i, c := range coeffs {
		sinPiCoeffQ412[i] = int16(c * 4096)
	}
}

// LeadingZeros16 re-exports bits.LeadingZeros16 for callers (envelope
// reciprocal table addressing) that need mantissa/exponent normalization
// without importing math/bits directly.
func LeadingZeros16(x uint16) int { return bits.LeadingZeros16(x) }
