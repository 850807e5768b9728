// Command voicedemo exercises one synthvoice voice end to end: pick a
// numeric regime, a note and patch, then either render the result to a WAV
// file or play it live. Flag layout and file/live mode switch are grounded
// on the teacher's cmd/play_mml/main.go.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cbegin/synthvoice/internal/audiosink"
	"github.com/cbegin/synthvoice/internal/audio"
	"github.com/cbegin/synthvoice/internal/fixedfmt"
	"github.com/cbegin/synthvoice/internal/fixedsynth"
	"github.com/cbegin/synthvoice/internal/floatfmt"
	"github.com/cbegin/synthvoice/internal/floatsynth"
	"github.com/cbegin/synthvoice/internal/wavewriter"
)

func main() {
	var (
		regime     = flag.String("regime", "float", "numeric regime: float|fixed")
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate (fixed regime requires 44100 or 48000)")
		note       = flag.Float64("note", 69, "MIDI note number (69 = A4)")
		velocity   = flag.Float64("velocity", 1.0, "note velocity, 0..1")
		gateSecs   = flag.Float64("gate-seconds", 1.0, "how long the gate stays high before release")
		tailSecs   = flag.Float64("tail-seconds", 1.0, "how long to keep rendering after gate-off")
		volume     = flag.Float64("volume", 0.8, "amp gain, 0..1")
		cutoff     = flag.Float64("cutoff", 69, "filter cutoff, MIDI note number")
		resonance  = flag.Float64("resonance", 0.2, "filter resonance, 0..1")
		wavePath   = flag.String("out", "", "write rendered audio to this WAV path instead of playing live")
		live       = flag.Bool("live", false, "play live instead of rendering to -out")
	)
	flag.Parse()

	if *wavePath == "" && !*live {
		*wavePath = "voicedemo.wav"
	}

	switch *regime {
	case "float":
		runFloat(*sampleRate, *note, *velocity, *gateSecs, *tailSecs, *volume, *cutoff, *resonance, *wavePath, *live)
	case "fixed":
		runFixed(*sampleRate, *note, *velocity, *gateSecs, *tailSecs, *volume, *cutoff, *resonance, *wavePath, *live)
	default:
		log.Fatalf("invalid -regime %q (expected float|fixed)", *regime)
	}
}

func runFloat(sampleRate int, note, velocity, gateSecs, tailSecs, volume, cutoff, resonance float64, wavePath string, live bool) {
	ctx := floatfmt.NewContext(float64(sampleRate))
	params := floatsynth.VoiceParams{
		Osc1:         floatsynth.OscParams{MixSaw: 0.6, MixSquare: 0.2, MixSine: 0.2},
		OscMixLevel1: 1,
		EnvAmp:       floatsynth.EnvParams{Attack: 0.01, Decay: 0.2, Sustain: 0.7, Release: 0.3},
		Filt:         floatsynth.FiltParams{Cutoff: floatfmt.Note(cutoff), Resonance: floatfmt.Scalar(resonance)},
		FiltMix:      floatsynth.FiltMixParams{Low: 1},
		AmpGain:      floatfmt.Scalar(volume),
	}
	gate := audiosink.NewGate[floatfmt.Note, floatfmt.Sample, floatfmt.Scalar](1, 0)
	gate.NoteOn(floatfmt.Note(note), floatfmt.Scalar(velocity))

	if live {
		voice := floatsynth.NewVoice(ctx, 1, 2)
		src := audiosink.NewFloatVoiceSource(voice, params, gate)
		playLive(sampleRate, src, gateSecs, tailSecs, gate.NoteOff)
		return
	}

	voice := floatsynth.NewVoice(ctx, 1, 2)
	samples, frames := renderFloat(voice, params, gate, sampleRate, gateSecs, tailSecs)
	writeWAV(wavePath, samples, sampleRate)
	fmt.Printf("wrote %s (%d frames, float regime)\n", wavePath, frames)
}

func runFixed(sampleRate int, note, velocity, gateSecs, tailSecs, volume, cutoff, resonance float64, wavePath string, live bool) {
	ctx, err := fixedfmt.NewContext(sampleRate)
	if err != nil {
		log.Fatal(err)
	}
	params := fixedsynth.VoiceParams{
		Osc1:         fixedsynth.OscParams{MixSaw: unitScalar(0.6), MixSquare: unitScalar(0.2), MixSine: unitScalar(0.2)},
		OscMixLevel1: unitScalar(1),
		EnvAmp:       fixedsynth.EnvParams{Attack: envSeconds(0.01), Decay: envSeconds(0.2), Sustain: unitScalar(0.7), Release: envSeconds(0.3)},
		Filt:         fixedsynth.FiltParams{Cutoff: fixedfmt.Note(cutoff * 512), Resonance: unitScalar(resonance)},
		FiltMix:      fixedsynth.FiltMixParams{Low: unitScalar(1)},
		AmpGain:      unitScalar(volume),
	}
	gate := audiosink.NewGate[fixedfmt.Note, fixedfmt.Sample, fixedfmt.Scalar](1, 0)
	gate.NoteOn(fixedfmt.Note(note*512), unitScalar(velocity))

	if live {
		voice := fixedsynth.NewVoice(ctx, 1, 2)
		src := audiosink.NewFixedVoiceSource(voice, params, gate)
		playLive(sampleRate, src, gateSecs, tailSecs, gate.NoteOff)
		return
	}

	voice := fixedsynth.NewVoice(ctx, 1, 2)
	samples, frames := renderFixed(voice, params, gate, sampleRate, gateSecs, tailSecs)
	writeWAV(wavePath, samples, sampleRate)
	fmt.Printf("wrote %s (%d frames, fixed regime)\n", wavePath, frames)
}

func renderFloat(voice *floatsynth.Voice, params floatsynth.VoiceParams, gate *audiosink.Gate[floatfmt.Note, floatfmt.Sample, floatfmt.Scalar], sampleRate int, gateSecs, tailSecs float64) ([]float32, int) {
	frames := int(float64(sampleRate) * (gateSecs + tailSecs))
	gateOffFrame := int(float64(sampleRate) * gateSecs)
	i := 0
	samples := wavewriter.Render[floatsynth.VoiceInput, floatsynth.VoiceParams, floatfmt.Sample](
		voice, params, frames,
		func() floatsynth.VoiceInput {
			if i == gateOffFrame {
				gate.NoteOff()
			}
			i++
			n, g, v := gate.Snapshot()
			return floatsynth.VoiceInput{Note: n, Gate: g, Velocity: v}
		},
		func(s floatfmt.Sample) float32 { return float32(s) },
	)
	return samples, frames
}

func renderFixed(voice *fixedsynth.Voice, params fixedsynth.VoiceParams, gate *audiosink.Gate[fixedfmt.Note, fixedfmt.Sample, fixedfmt.Scalar], sampleRate int, gateSecs, tailSecs float64) ([]float32, int) {
	frames := int(float64(sampleRate) * (gateSecs + tailSecs))
	gateOffFrame := int(float64(sampleRate) * gateSecs)
	i := 0
	samples := wavewriter.Render[fixedsynth.VoiceInput, fixedsynth.VoiceParams, fixedfmt.Sample](
		voice, params, frames,
		func() fixedsynth.VoiceInput {
			if i == gateOffFrame {
				gate.NoteOff()
			}
			i++
			n, g, v := gate.Snapshot()
			return fixedsynth.VoiceInput{Note: n, Gate: g, Velocity: v}
		},
		func(s fixedfmt.Sample) float32 { return float32(s) / 32768 },
	)
	return samples, frames
}

func playLive[In, Params, Out any](sampleRate int, src *audiosink.VoiceSource[In, Params, Out], gateSecs, tailSecs float64, noteOff func()) {
	player, err := audio.NewPlayer(sampleRate, src)
	if err != nil {
		log.Fatal(err)
	}
	player.Play()
	time.Sleep(time.Duration(gateSecs * float64(time.Second)))
	noteOff()
	time.Sleep(time.Duration(tailSecs * float64(time.Second)))
	if err := player.Stop(); err != nil {
		log.Fatal(err)
	}
}

func writeWAV(path string, samples []float32, sampleRate int) {
	wav := wavewriter.EncodeFloat32LE(samples, sampleRate, 2)
	if err := os.WriteFile(path, wav, 0o644); err != nil {
		log.Fatal(err)
	}
}

// unitScalar/envSeconds convert CLI float64 flags into the fixed regime's
// Q0.16/Q3.13 units; the float regime's VoiceParams fields take float32-
// backed types that a plain conversion fills, so they need no equivalent
// helper.
func unitScalar(v float64) fixedfmt.Scalar {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return fixedfmt.Scalar(v * 65535)
}

func envSeconds(v float64) fixedfmt.EnvParam {
	if v < 0 {
		v = 0
	} else if v > 8 {
		v = 8
	}
	return fixedfmt.EnvParam(v * 8192)
}
