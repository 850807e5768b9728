package fixedsynth

import "github.com/cbegin/synthvoice/internal/fixedfmt"

// Amp is a two-quadrant voltage-controlled amplifier, the fixed-regime
// counterpart of floatsynth.Amp, grounded on the same
// original_source/culsynth/src/devices/amp.rs shape.
type Amp struct{}

func (Amp) Next(_ fixedfmt.Context, signal fixedfmt.Sample, gain fixedfmt.Scalar) fixedfmt.Sample {
	return fixedfmt.Scale(signal, gain)
}

// Mixer4 sums four scaled Samples in the Q17.15 widened domain (sixteen
// extra integer bits of headroom absorb the intermediate overshoot a plain sum
// of up to four full-scale Samples could produce) before a single
// saturating narrow, mirroring floatsynth.Mixer4 and devices/mixer.rs.
func Mixer4(in [4]fixedfmt.Sample, gain [4]fixedfmt.Scalar) fixedfmt.Sample {
	var acc fixedfmt.WideSample
	for i := range in {
		acc += fixedfmt.Widen(fixedfmt.Scale(in[i], gain[i]))
	}
	return fixedfmt.Narrow(acc)
}

// Mixer3 is Mixer4's 3-input sibling.
func Mixer3(in [3]fixedfmt.Sample, gain [3]fixedfmt.Scalar) fixedfmt.Sample {
	var acc fixedfmt.WideSample
	for i := range in {
		acc += fixedfmt.Widen(fixedfmt.Scale(in[i], gain[i]))
	}
	return fixedfmt.Narrow(acc)
}

// RingModInput is the pair of signals a RingMod multiplies.
type RingModInput struct {
	A, B fixedfmt.Sample
}

// RingModParams controls how much of each raw input, plus the multiplied
// result, is mixed into the output.
type RingModParams struct {
	MixA, MixB, MixRing fixedfmt.Scalar
}

// RingMod multiplies two signals via the single widen-then-narrow boundary
// multiply fixedfmt.Multiply performs, then mixes the product back in with
// the originals, grounded on devices/ringmod.rs.
type RingMod struct{}

func (RingMod) Next(_ fixedfmt.Context, in RingModInput, p RingModParams) fixedfmt.Sample {
	ring := fixedfmt.Multiply(in.A, in.B)
	return Mixer3([3]fixedfmt.Sample{in.A, in.B, ring}, [3]fixedfmt.Scalar{p.MixA, p.MixB, p.MixRing})
}
