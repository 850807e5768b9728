package fixedsynth

import "github.com/cbegin/synthvoice/internal/fixedfmt"

// MixOsc composes one Osc with a 4-way mix of its shape outputs into a
// single Sample, the fixed-regime counterpart of floatsynth.MixOsc.
type MixOsc struct {
	Osc Osc
}

func (m *MixOsc) Reset() { m.Osc.Reset() }

func (m *MixOsc) Next(ctx fixedfmt.Context, note fixedfmt.Note, p OscParams, syncPhase uint32, syncing bool) fixedfmt.Sample {
	out := m.Osc.Next(ctx, note, p, syncPhase, syncing)
	return Mixer4(
		[4]fixedfmt.Sample{out.Saw, out.Square, out.Tri, out.Sine},
		[4]fixedfmt.Scalar{p.MixSaw, p.MixSquare, p.MixTri, p.MixSine},
	)
}

// SyncedOscs bundles two oscillators where Osc2 may be hard-synced to
// Osc1, detecting Osc1's Q0.32 phase wrap from unsigned overflow (the
// accumulator goes backwards only on wrap).
type SyncedOscs struct {
	Osc1, Osc2  MixOsc
	SyncEnabled bool
	SyncOffset  uint32
}

func (s *SyncedOscs) Reset() {
	s.Osc1.Reset()
	s.Osc2.Reset()
}

func (s *SyncedOscs) Next(ctx fixedfmt.Context, note1, note2 fixedfmt.Note, p1, p2 OscParams) (fixedfmt.Sample, fixedfmt.Sample) {
	prevPhase1 := s.Osc1.Osc.phase
	out1 := s.Osc1.Next(ctx, note1, p1, 0, false)

	syncing := s.SyncEnabled && s.Osc1.Osc.phase < prevPhase1
	out2 := s.Osc2.Next(ctx, note2, p2, s.SyncOffset, syncing)
	return out1, out2
}
