package floatsynth

import "github.com/cbegin/synthvoice/internal/floatfmt"

// MixOsc composes one Osc with a 4-way mix of its shape outputs into a
// single Sample, grounded on culsynth's Mixer<T,N> wide-accumulate-then-
// narrow shape (see Mixer in mix.go) applied to an oscillator's own four
// simultaneous waveforms rather than four independent signals.
type MixOsc struct {
	Osc Osc
}

func (m *MixOsc) Reset() { m.Osc.Reset() }

func (m *MixOsc) Next(ctx floatfmt.Context, note floatfmt.Note, p OscParams, fmInputHz, syncPhase float64, syncing bool) floatfmt.Sample {
	out := m.Osc.Next(ctx, note, p, fmInputHz, syncPhase, syncing)
	return Mixer4(
		[4]floatfmt.Sample{out.Saw, out.Square, out.Tri, out.Sine},
		[4]floatfmt.Scalar{p.MixSaw, p.MixSquare, p.MixTri, p.MixSine},
	)
}

// SyncedOscs bundles two oscillators where Osc2 may be hard-synced to
// Osc1: whenever Osc1's phase wraps past pi, Osc2's phase is reset to
// SyncOffset for that sample (spec 4.2's hard-sync paragraph).
type SyncedOscs struct {
	Osc1, Osc2  MixOsc
	SyncEnabled bool
	SyncOffset  float64
}

func (s *SyncedOscs) Reset() {
	s.Osc1.Reset()
	s.Osc2.Reset()
}

// Next renders both oscillators for one sample, detecting Osc1's phase
// wrap from the sign of its phase delta (a forward phase accumulator that
// goes negative only on wrap).
func (s *SyncedOscs) Next(ctx floatfmt.Context, note1, note2 floatfmt.Note, p1, p2 OscParams, fm1, fm2 float64) (floatfmt.Sample, floatfmt.Sample) {
	prevPhase1 := s.Osc1.Osc.phase
	out1 := s.Osc1.Next(ctx, note1, p1, fm1, 0, false)

	syncing := s.SyncEnabled && s.Osc1.Osc.phase < prevPhase1
	out2 := s.Osc2.Next(ctx, note2, p2, fm2, s.SyncOffset, syncing)
	return out1, out2
}
