package floatsynth

import "github.com/cbegin/synthvoice/internal/floatfmt"

// Amp is a two-quadrant voltage-controlled amplifier: out = scale(signal,
// gain), gain in [0,1]. Grounded on original_source/culsynth/src/devices/
// amp.rs's Amp<T> (Device<T> whose Params is a bare Scalar).
type Amp struct{}

func (Amp) Next(_ floatfmt.Context, signal floatfmt.Sample, gain floatfmt.Scalar) floatfmt.Sample {
	return floatfmt.Scale(signal, gain)
}

// Mixer4 sums four scaled Samples in the wide domain before a single
// saturating narrow, the exact shape of culsynth's Mixer<T,N>
// (devices/mixer.rs): zip inputs with gains, widen-accumulate, narrow once.
// The accumulate step is a plain sum — intermediate partials must not clip,
// only the final narrow does, matching fixedsynth.Mixer4's widened acc.
func Mixer4(in [4]floatfmt.Sample, gain [4]floatfmt.Scalar) floatfmt.Sample {
	var acc floatfmt.WideSample
	for i := range in {
		acc += floatfmt.Widen(floatfmt.Scale(in[i], gain[i]))
	}
	return floatfmt.Narrow(acc)
}

// Mixer3 is Mixer4's 3-input sibling, used by RingMod and ModFilt.
func Mixer3(in [3]floatfmt.Sample, gain [3]floatfmt.Scalar) floatfmt.Sample {
	var acc floatfmt.WideSample
	for i := range in {
		acc += floatfmt.Widen(floatfmt.Scale(in[i], gain[i]))
	}
	return floatfmt.Narrow(acc)
}

// RingModInput is the pair of signals a RingMod multiplies.
type RingModInput struct {
	A, B floatfmt.Sample
}

// RingModParams controls how much of each raw input, plus the multiplied
// result, is mixed into the output.
type RingModParams struct {
	MixA, MixB, MixRing floatfmt.Scalar
}

// RingMod multiplies two signals and mixes the product back in with the
// originals, grounded on devices/ringmod.rs's RingMod<T> (a Mixer<T,3> fed
// [a, b, a*b]).
type RingMod struct{}

func (RingMod) Next(_ floatfmt.Context, in RingModInput, p RingModParams) floatfmt.Sample {
	ring := floatfmt.Multiply(in.A, in.B)
	return Mixer3([3]floatfmt.Sample{in.A, in.B, ring}, [3]floatfmt.Scalar{p.MixA, p.MixB, p.MixRing})
}
