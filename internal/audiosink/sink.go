// Package audiosink adapts a driver.Primitive-driven voice into the
// ebiten/v2/audio player interface internal/audio/stream.go defines,
// so a floatsynth.Voice or fixedsynth.Voice can drive live speaker output
// the same way the teacher's chiptune engine drove internal/audio.Player.
package audiosink

import (
	"sync"

	"github.com/cbegin/synthvoice/internal/audio"
	"github.com/cbegin/synthvoice/internal/driver"
	"github.com/cbegin/synthvoice/internal/fixedfmt"
	"github.com/cbegin/synthvoice/internal/fixedsynth"
	"github.com/cbegin/synthvoice/internal/floatfmt"
	"github.com/cbegin/synthvoice/internal/floatsynth"
)

// Gate holds the live-controllable note state a VoiceSource reads once per
// sample: a single held note, its gate (on/off), and velocity. Callers set
// these from a UI thread or flag-driven demo loop; VoiceSource reads them
// under its own lock so there is no required synchronization on the
// caller's side beyond calling the setters.
type Gate[Note, Sample, Scalar any] struct {
	mu       sync.Mutex
	note     Note
	gateOn   Sample
	gateOff  Sample
	velocity Scalar
	held     bool
}

// NewGate constructs a Gate; gateOn/gateOff are the regime's Sample
// representations of "gate high" (1) and "gate low" (0), since floatfmt and
// fixedfmt each spell those differently.
func NewGate[Note, Sample, Scalar any](gateOn, gateOff Sample) *Gate[Note, Sample, Scalar] {
	return &Gate[Note, Sample, Scalar]{gateOn: gateOn, gateOff: gateOff}
}

// NoteOn latches a new note, velocity, and gate-high.
func (g *Gate[Note, Sample, Scalar]) NoteOn(note Note, velocity Scalar) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.note, g.velocity, g.held = note, velocity, true
}

// NoteOff drops the gate without changing the held note/velocity, matching
// how a released key still reports its last pitch during release tail.
func (g *Gate[Note, Sample, Scalar]) NoteOff() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.held = false
}

// Snapshot returns the currently-held note, the regime's gate-high or
// gate-low Sample depending on whether a NoteOff has dropped it, and the
// latched velocity — the one piece of Gate state callers outside this
// package need each sample.
func (g *Gate[Note, Sample, Scalar]) Snapshot() (Note, Sample, Scalar) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held {
		return g.note, g.gateOn, g.velocity
	}
	return g.note, g.gateOff, g.velocity
}

// VoiceSource drives one driver.Primitive voice at audio rate and satisfies
// audio.SampleSource, duplicating the mono voice output to both channels of
// the interleaved stereo buffer NewStreamReader expects — the same "one
// voice, two identical channels" shape the teacher's chiptune engine used
// before its own stereo panning was added.
type VoiceSource[In, Params, Out any] struct {
	Voice      driver.Primitive[In, Params, Out]
	Params     Params
	NextInput  func() In
	ToFloat32  func(Out) float32
}

// Process fills dst (interleaved stereo float32, as audio.StreamReader
// expects) by calling Voice.Next once per frame.
func (s *VoiceSource[In, Params, Out]) Process(dst []float32) {
	for i := 0; i+1 < len(dst); i += 2 {
		out := s.Voice.Next(s.NextInput(), s.Params)
		v := s.ToFloat32(out)
		dst[i] = v
		dst[i+1] = v
	}
}

var _ audio.SampleSource = (*VoiceSource[struct{}, struct{}, struct{}])(nil)

// NewFloatVoiceSource wires a floatsynth.Voice and a live Gate into a
// VoiceSource ready to hand to audio.NewPlayer.
func NewFloatVoiceSource(voice *floatsynth.Voice, params floatsynth.VoiceParams, gate *Gate[floatfmt.Note, floatfmt.Sample, floatfmt.Scalar]) *VoiceSource[floatsynth.VoiceInput, floatsynth.VoiceParams, floatfmt.Sample] {
	return &VoiceSource[floatsynth.VoiceInput, floatsynth.VoiceParams, floatfmt.Sample]{
		Voice:  voice,
		Params: params,
		NextInput: func() floatsynth.VoiceInput {
			note, gateVal, vel := gate.Snapshot()
			return floatsynth.VoiceInput{Note: note, Gate: gateVal, Velocity: vel}
		},
		ToFloat32: func(s floatfmt.Sample) float32 { return float32(s) },
	}
}

// NewFixedVoiceSource wires a fixedsynth.Voice and a live Gate into a
// VoiceSource, converting each Q1.15 Sample to float32 the same way
// wavewriter does for offline rendering.
func NewFixedVoiceSource(voice *fixedsynth.Voice, params fixedsynth.VoiceParams, gate *Gate[fixedfmt.Note, fixedfmt.Sample, fixedfmt.Scalar]) *VoiceSource[fixedsynth.VoiceInput, fixedsynth.VoiceParams, fixedfmt.Sample] {
	return &VoiceSource[fixedsynth.VoiceInput, fixedsynth.VoiceParams, fixedfmt.Sample]{
		Voice:  voice,
		Params: params,
		NextInput: func() fixedsynth.VoiceInput {
			note, gateVal, vel := gate.Snapshot()
			return fixedsynth.VoiceInput{Note: note, Gate: gateVal, Velocity: vel}
		},
		ToFloat32: func(s fixedfmt.Sample) float32 { return float32(s) / 32768 },
	}
}
