package fixedsynth

import (
	"github.com/cbegin/synthvoice/internal/fixedfmt"
	"github.com/cbegin/synthvoice/internal/modroute"
)

// VoiceParams composes every sub-primitive's base parameters for one voice,
// the fixed-regime counterpart of floatsynth.VoiceParams.
type VoiceParams struct {
	Osc1, Osc2 OscParams
	// OscMixLevel1/2 are the oscillator-vs-oscillator balance gains the
	// OscMix stage (Mixer4 below) applies, distinct from OscParams.MixSaw's
	// per-oscillator saw/square/tri/sine shape weights: DestOscMixLevel1/2
	// modulate this pair, never the shape weights.
	OscMixLevel1, OscMixLevel2 fixedfmt.Scalar
	SyncEnabled                bool
	SyncOffset                 uint32
	Filt                       FiltParams
	FiltMix                    FiltMixParams
	EnvFilter                  EnvParams
	EnvAmp                     EnvParams
	Lfo1, Lfo2                 LfoParams
	RingMod                    RingModParams
	AmpGain                    fixedfmt.Scalar
	Matrix                     *modroute.Matrix
	ModWheel                   fixedfmt.Scalar
}

// FiltMixParams is the 3-way low/band/high mix gains for ModFilt's output.
type FiltMixParams struct {
	Low, Band, High fixedfmt.Scalar
}

// VoiceInput is the per-sample control input to a voice.
type VoiceInput struct {
	Note      fixedfmt.Note
	Gate      fixedfmt.Sample
	Velocity  fixedfmt.Scalar
	ChannelIn fixedfmt.Sample
}

// VoiceState holds everything a voice mutates while running, the
// fixed-regime counterpart of floatsynth.VoiceState including the same
// one-sample LFO self-modulation lag.
type VoiceState struct {
	Oscs      SyncedOscs
	Filt      ModFilt
	EnvFilter Env
	EnvAmp    Env
	Lfo1      Lfo
	Lfo2      Lfo

	lfoInit  bool
	nextLfo1 LfoParams
	nextLfo2 LfoParams
}

func (s *VoiceState) Reset() {
	s.Oscs.Reset()
	s.Filt.Reset()
	s.EnvFilter.Reset()
	s.EnvAmp.Reset()
	s.Lfo1.Reset()
	s.Lfo2.Reset()
	s.lfoInit = false
}

// Voice is one monophonic instance of the full fixed-point signal graph.
type Voice struct {
	Ctx   fixedfmt.Context
	State VoiceState
}

// NewVoice constructs a Voice with freshly-seeded LFOs.
func NewVoice(ctx fixedfmt.Context, lfo1Seed, lfo2Seed uint32) *Voice {
	v := &Voice{Ctx: ctx}
	v.State.Lfo1 = *NewLfo(lfo1Seed)
	v.State.Lfo2 = *NewLfo(lfo2Seed)
	return v
}

// Next computes one output sample. The modulation matrix itself stays
// float64 (modroute.Matrix is shared across both regimes), so offsets are
// converted into fixed Q-format units at the points they're applied —
// this is a one-time-per-sample conversion, not a hot-path division, the
// same boundary the teacher's NRPN decode crosses between wire units and
// internal state.
func (v *Voice) Next(in VoiceInput, p VoiceParams) fixedfmt.Sample {
	s := &v.State
	ctx := v.Ctx

	runLfo1, runLfo2 := p.Lfo1, p.Lfo2
	if s.lfoInit {
		runLfo1, runLfo2 = s.nextLfo1, s.nextLfo2
	}
	lfo1Val := s.Lfo1.Next(ctx, in.Gate, runLfo1)
	lfo2Val := s.Lfo2.Next(ctx, in.Gate, runLfo2)

	sources := [modroute.NumSources]float64{
		modroute.SrcEnvFilter: float64(s.EnvFilter.Level()) / 65535,
		modroute.SrcEnvAmp:    float64(s.EnvAmp.Level()) / 65535,
		modroute.SrcLFO1:      float64(lfo1Val) / 32768,
		modroute.SrcLFO2:      float64(lfo2Val) / 32768,
		modroute.SrcVelocity:  float64(in.Velocity) / 65535,
		modroute.SrcModWheel:  float64(p.ModWheel) / 65535,
	}

	offset := func(d modroute.ModDest) float64 {
		if p.Matrix == nil {
			return 0
		}
		return p.Matrix.Offset(d, sources)
	}

	osc1 := p.Osc1
	osc1.CoarseSemis += semitoneOffset(offset(modroute.DestOsc1Pitch))
	osc1.FineTune += semitoneOffset(offset(modroute.DestOsc1Fine))
	osc1.PulseWidth = scalarUnitOffset(p.Osc1.PulseWidth, offset(modroute.DestOsc1PulseWidth))
	oscMixLevel1 := scalarOffset(p.OscMixLevel1, offset(modroute.DestOscMixLevel1))

	osc2 := p.Osc2
	osc2.CoarseSemis += semitoneOffset(offset(modroute.DestOsc2Pitch))
	osc2.FineTune += semitoneOffset(offset(modroute.DestOsc2Fine))
	osc2.PulseWidth = scalarUnitOffset(p.Osc2.PulseWidth, offset(modroute.DestOsc2PulseWidth))
	oscMixLevel2 := scalarOffset(p.OscMixLevel2, offset(modroute.DestOscMixLevel2))

	s.nextLfo1 = p.Lfo1
	s.nextLfo1.Freq = fixedfmt.LfoFreq(clampU16(float64(p.Lfo1.Freq) + offset(modroute.DestLFO1Rate)*512))
	s.nextLfo1.Depth = scalarOffset(p.Lfo1.Depth, offset(modroute.DestLFO1Depth))
	s.nextLfo2 = p.Lfo2
	s.nextLfo2.Freq = fixedfmt.LfoFreq(clampU16(float64(p.Lfo2.Freq) + offset(modroute.DestLFO2Rate)*512))
	s.nextLfo2.Depth = scalarOffset(p.Lfo2.Depth, offset(modroute.DestLFO2Depth))
	s.lfoInit = true

	envFilterParams := p.EnvFilter
	envFilterParams.Attack = envParamOffset(envFilterParams.Attack, offset(modroute.DestEnvFilterAttack))
	envFilterParams.Decay = envParamOffset(envFilterParams.Decay, offset(modroute.DestEnvFilterDecay))
	envFilterParams.Release = envParamOffset(envFilterParams.Release, offset(modroute.DestEnvFilterRelease))
	envFilterParams.Sustain = scalarOffset(envFilterParams.Sustain, offset(modroute.DestEnvFilterSustain))

	envAmpParams := p.EnvAmp
	envAmpParams.Attack = envParamOffset(envAmpParams.Attack, offset(modroute.DestEnvAmpAttack))
	envAmpParams.Decay = envParamOffset(envAmpParams.Decay, offset(modroute.DestEnvAmpDecay))
	envAmpParams.Release = envParamOffset(envAmpParams.Release, offset(modroute.DestEnvAmpRelease))
	envAmpParams.Sustain = scalarOffset(envAmpParams.Sustain, offset(modroute.DestEnvAmpSustain))

	s.Oscs.SyncEnabled = p.SyncEnabled
	s.Oscs.SyncOffset = p.SyncOffset
	out1, out2 := s.Oscs.Next(ctx, in.Note, in.Note, osc1, osc2)
	oscMix := Mixer4(
		[4]fixedfmt.Sample{out1, out2, in.ChannelIn, 0},
		[4]fixedfmt.Scalar{oscMixLevel1, oscMixLevel2, fixedfmt.Scalar(65535), 0},
	)

	s.EnvFilter.Next(ctx, in.Gate, envFilterParams)

	filtParams := ModFiltParams{
		Base:           p.Filt,
		EnvAmount:      semitoneOffset(offset(modroute.DestFilterCutoff)),
		LfoAmount:      semitoneOffset(float64(lfo1Val) / 32768 * 12),
		VelocityAmount: semitoneOffset(float64(in.Velocity) / 65535 * 12),
		MixLow:         p.FiltMix.Low,
		MixBand:        p.FiltMix.Band,
		MixHigh:        p.FiltMix.High,
	}
	filtParams.Base.Resonance = scalarOffset(filtParams.Base.Resonance, offset(modroute.DestFilterResonance))
	filtOut := s.Filt.Next(ctx, oscMix, filtParams)

	ringOut := RingMod{}.Next(ctx, RingModInput{A: filtOut, B: out2}, RingModParams{
		MixA:    p.RingMod.MixA,
		MixB:    p.RingMod.MixB,
		MixRing: scalarOffset(p.RingMod.MixRing, offset(modroute.DestRingModMix)),
	})

	ampEnvLevel := s.EnvAmp.Next(ctx, in.Gate, envAmpParams)

	gain := scalarOffset(p.AmpGain, offset(modroute.DestAmpGain))
	gain = scalarMul(gain, ampEnvLevel)
	return Amp{}.Next(ctx, ringOut, gain)
}

func scalarOffset(base fixedfmt.Scalar, offset float64) fixedfmt.Scalar {
	v := float64(base)/65535 + offset
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return fixedfmt.Scalar(v * 65535)
}

// scalarUnitOffset adds a [0,1]-domain offset to a Scalar already clamped
// to the oscillator's [0.05, 0.95] pulse-width legal range; clamping to
// that narrower range happens inside Osc.Next itself.
func scalarUnitOffset(base fixedfmt.Scalar, offset float64) fixedfmt.Scalar {
	return scalarOffset(base, offset)
}

func envParamOffset(base fixedfmt.EnvParam, offset float64) fixedfmt.EnvParam {
	v := float64(base)/8192 + offset
	if v < 0 {
		v = 0
	} else if v > 8 {
		v = 8
	}
	return fixedfmt.EnvParam(v * 8192)
}

// semitoneOffset converts a matrix offset already scaled to semitones
// (DestOsc1Pitch's MaxSwing) into a Q8.8 SignedNote for addition to
// CoarseSemis/FineTune.
func semitoneOffset(semis float64) fixedfmt.SignedNote {
	return fixedfmt.SignedNote(clampI16(semis * 256))
}

func clampI16(v float64) int32 {
	if v < -32768 {
		return -32768
	}
	if v > 32767 {
		return 32767
	}
	return int32(v)
}

func clampU16(v float64) uint32 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint32(v)
}
