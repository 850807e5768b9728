// Package audio bridges a driver.Primitive-driven voice to real speaker
// output. A SampleSource here is always an audiosink.VoiceSource: a voice
// runs forever once gated, so unlike the teacher's original stream reader
// there is no finished-source signal to check — Stop is always an explicit
// external call, never something Read discovers on its own.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// SampleSource produces interleaved stereo float32 frames on demand, the
// shape audiosink.VoiceSource.Process fills.
type SampleSource interface {
	Process(dst []float32)
}

// StreamReader adapts a SampleSource to io.Reader by pulling frames just
// ahead of ebiten's own playback buffer and encoding them as little-endian
// IEEE float32, the wire format ctx.NewPlayerF32 expects.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i := 0; i < need; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.buf[i]))
	}
	return frames * 8, nil
}

func (r *StreamReader) Close() error { return nil }

// Player wraps one ebiten audio.Player driving a single voice. Unlike a
// music player there is no track boundary: Play starts the voice gated
// silent (or already gated, per the caller's Gate), and Stop is the only
// way playback ends.
type Player struct {
	player *ebitaudio.Player
	reader *StreamReader
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioContextErr  error
	audioSampleRate  int
)

// sharedAudioContext lazily creates the one ebiten audio.Context a process
// may own; ebiten panics if a second Context is created at a different
// sample rate, so later callers requesting a mismatched rate get an error
// instead of letting that panic surface from inside ebiten.
func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioContextErr != nil {
		return nil, audioContextErr
	}
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// NewPlayer wires one SampleSource (an audiosink.VoiceSource in practice)
// into the shared ebiten audio context.
func NewPlayer(sampleRate int, source SampleSource) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{player: pl, reader: reader}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

// Position returns the current playback position (what the listener actually hears).
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

// Stop halts playback and releases the underlying ebiten player. A voice's
// own release tail must already be in progress (via its Gate) before
// calling Stop, or the sound cuts off abruptly rather than decaying.
func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
