// Package floatfmt is the 32-bit floating-point numeric regime: the set of
// named types and primitive operations spec 4.1 requires, specialized for
// IEEE-754 float32 arithmetic. Every operation here has a structurally
// mirrored counterpart in fixedfmt with the identical correctness contract.
package floatfmt

import "math"

// Sample is a signed audio value in [-1, 1).
type Sample float32

// USample is the unsigned counterpart to Sample, in [0, 1).
type USample float32

// WideSample is the widened result of multiplying two Samples. In the
// float regime widening is a no-op: float32 multiplication cannot overflow
// its own range the way fixed-point multiplication can.
type WideSample = Sample

// Scalar is an unsigned gain/depth in [0, 1).
type Scalar float32

// SignedScalar is a signed gain/depth in [-1, 1).
type SignedScalar float32

// Note is an unsigned MIDI pitch with fractional cents, range [0, 128].
type Note float32

// SignedNote is a signed pitch offset, nominal range +-128 semitones.
type SignedNote float32

// Frequency is an unsigned frequency in Hz.
type Frequency float32

// EnvParam is a time in seconds, range [0, 8].
type EnvParam float32

// LfoFreq is an LFO rate in Hz, range [0, 128].
type LfoFreq float32

// Phase is an oscillator phase accumulator in radians.
type Phase float32

// Context is the immutable per-run configuration shared by every primitive
// in a voice: the sample rate and its precomputed reciprocal, so the hot
// path never divides by it.
type Context struct {
	SampleRate    float64
	invSampleRate float64
}

// NewContext builds a Context for the given sample rate. The float regime
// accepts any positive rate; unlike fixedfmt it has no enumerated set of
// supported rates.
func NewContext(sampleRate float64) Context {
	return Context{SampleRate: sampleRate, invSampleRate: 1 / sampleRate}
}

// InvSampleRate returns the precomputed reciprocal of the sample rate.
func (c Context) InvSampleRate() float64 { return c.invSampleRate }

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Scale multiplies a Sample by a Scalar and saturates to the Sample's legal
// range. |Scale(s, g)| <= |s| for g in [0, 1], Scale(s, 0) = 0 exactly, and
// Scale(s, 1) = s exactly.
func Scale(s Sample, g Scalar) Sample {
	return Sample(clampF(float32(s)*float32(g), -1, 0.99999994))
}

// ScaleSigned multiplies a Sample by a SignedScalar (used by the modulation
// matrix's signed depths and by RingMod's signed mix gains).
func ScaleSigned(s Sample, g SignedScalar) Sample {
	return Sample(clampF(float32(s)*float32(g), -1, 0.99999994))
}

// Widen promotes a Sample to a WideSample ahead of an accumulation, so
// intermediate sums never clip before the final narrow.
func Widen(s Sample) WideSample { return s }

// Narrow saturates a WideSample back down to a Sample's legal range.
func Narrow(w WideSample) Sample {
	return Sample(clampF(float32(w), -1, 0.99999994))
}

// Multiply computes a saturating Sample*Sample product.
func Multiply(a, b Sample) Sample {
	return Sample(clampF(float32(a)*float32(b), -1, 0.99999994))
}

// SaturatingAdd adds two Samples and clamps to the legal range.
func SaturatingAdd(a, b Sample) Sample {
	return Sample(clampF(float32(a)+float32(b), -1, 0.99999994))
}

// SaturatingSub subtracts two Samples and clamps to the legal range.
func SaturatingSub(a, b Sample) Sample {
	return Sample(clampF(float32(a)-float32(b), -1, 0.99999994))
}

// ClampSample saturates an arbitrary float32 into a legal Sample.
func ClampSample(v float32) Sample {
	return Sample(clampF(v, -1, 0.99999994))
}

// NoteToFrequency converts a Note to a Frequency using the reference
// equal-temperament formula. The float regime has no accuracy budget to
// defend (unlike fixedfmt, which must avoid division and wide multiplies)
// so this calls math.Pow directly; it is still allocation-free and branch-
// free, matching the hot-path contract of spec 7.
func NoteToFrequency(n Note) Frequency {
	return Frequency(440 * math.Pow(2, (float64(n)-69)/12))
}

// SinPi evaluates sin(pi*x) via the same 5-term odd polynomial the fixed
// regime uses (see fixedfmt's sinPiCoeffQ412), so both regimes share one
// approximation shape even though the float path could call math.Sin
// directly. x is expected in [-1, 1]; phase wrap is the caller's job.
func SinPi(x float32) Sample {
	x2 := x * x
	poly := sinPiC4
	poly = poly*x2 + sinPiC3
	poly = poly*x2 + sinPiC2
	poly = poly*x2 + sinPiC1
	poly = poly*x2 + sinPiC0
	return ClampSample(poly * x)
}

const (
	sinPiC0 float32 = 3.14154402
	sinPiC1 float32 = -5.16665234
	sinPiC2 float32 = 2.54373658
	sinPiC3 float32 = -0.58337909
	sinPiC4 float32 = 0.06476758
)
