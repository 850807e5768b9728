package floatsynth

import (
	"github.com/cbegin/synthvoice/internal/floatfmt"
	"github.com/cbegin/synthvoice/internal/modroute"
)

// VoiceParams composes every sub-primitive's base parameters for one voice,
// before per-sample modulation matrix offsets are applied. Grounded on
// spec 3's VoiceParams entity and internal/fm/engine.go's Params struct
// (the teacher's flat per-voice configuration record).
type VoiceParams struct {
	Osc1, Osc2 OscParams
	// OscMixLevel1/2 are the oscillator-vs-oscillator balance gains the
	// OscMix stage (Mixer4 below) applies, distinct from OscParams.MixSaw's
	// per-oscillator saw/square/tri/sine shape weights: DestOscMixLevel1/2
	// modulate this pair, never the shape weights.
	OscMixLevel1, OscMixLevel2 floatfmt.Scalar
	SyncEnabled                bool
	SyncOffset                 float64
	Filt                       FiltParams
	FiltMix                    FiltMixParams
	EnvFilter                  EnvParams
	EnvAmp                     EnvParams
	Lfo1, Lfo2                 LfoParams
	RingMod                    RingModParams
	AmpGain                    floatfmt.Scalar
	Matrix                     *modroute.Matrix
	ModWheel                   floatfmt.Scalar
}

// FiltMixParams is the 3-way low/band/high mix gains for ModFilt's output.
type FiltMixParams struct {
	Low, Band, High floatfmt.Scalar
}

// VoiceInput is the per-sample control input to a voice: note pitch, gate,
// velocity, and any external FM/channel input, per spec 6's "next(context,
// matrix, voice_input, channel_input, params)" entry point.
type VoiceInput struct {
	Note        floatfmt.Note
	Gate        floatfmt.Sample
	Velocity    floatfmt.Scalar
	ChannelIn   floatfmt.Sample
}

// VoiceState holds everything a voice mutates while running: two
// oscillators (with hard-sync wiring), a filter, two envelopes, two LFOs.
// Embedded directly in Voice rather than heap-allocated, per spec 9's
// no-allocation-in-hot-path rule.
type VoiceState struct {
	Oscs      SyncedOscs
	Filt      ModFilt
	EnvFilter Env
	EnvAmp    Env
	Lfo1      Lfo
	Lfo2      Lfo

	// lfoInit/nextLfo1/nextLfo2 carry the matrix's LFO-rate/depth offsets
	// computed at the end of one sample into the next: an LFO is itself a
	// mod source for the very sample it runs on, so a destination that
	// modulates its own rate or depth can only take effect one sample
	// later, not the same one.
	lfoInit  bool
	nextLfo1 LfoParams
	nextLfo2 LfoParams
}

// Reset returns a voice to its power-on state.
func (s *VoiceState) Reset() {
	s.Oscs.Reset()
	s.Filt.Reset()
	s.EnvFilter.Reset()
	s.EnvAmp.Reset()
	s.Lfo1.Reset()
	s.Lfo2.Reset()
	s.lfoInit = false
}

// Voice is one monophonic instance of the full signal graph (spec 4.7),
// implementing driver.Primitive[VoiceInput, VoiceParams, Sample] so it can
// be driven by internal/driver's streaming glue.
type Voice struct {
	Ctx   floatfmt.Context
	State VoiceState
}

// NewVoice constructs a Voice with freshly-seeded LFOs.
func NewVoice(ctx floatfmt.Context, lfo1Seed, lfo2Seed uint32) *Voice {
	v := &Voice{Ctx: ctx}
	v.State.Lfo1 = *NewLfo(lfo1Seed)
	v.State.Lfo2 = *NewLfo(lfo2Seed)
	return v
}

// Next computes one output sample, implementing spec 4.7's fixed
// per-sample composition: mod sources, matrix offsets, oscillators, filter
// envelope, filter, amp envelope, amp.
func (v *Voice) Next(in VoiceInput, p VoiceParams) floatfmt.Sample {
	s := &v.State
	ctx := v.Ctx

	// Step 1: LFOs run first since their output feeds the matrix as a
	// source for this same sample (spec 4.7 step 1's "compute all
	// mod-source values"). They run with whatever rate/depth the matrix
	// computed for them last sample (or the unmodulated base, on the
	// first sample of a voice's life).
	runLfo1, runLfo2 := p.Lfo1, p.Lfo2
	if s.lfoInit {
		runLfo1, runLfo2 = s.nextLfo1, s.nextLfo2
	}
	lfo1Val := float64(s.Lfo1.Next(ctx, in.Gate, runLfo1))
	lfo2Val := float64(s.Lfo2.Next(ctx, in.Gate, runLfo2))

	sources := [modroute.NumSources]float64{
		modroute.SrcEnvFilter: float64(s.EnvFilter.Level()),
		modroute.SrcEnvAmp:    float64(s.EnvAmp.Level()),
		modroute.SrcLFO1:      lfo1Val,
		modroute.SrcLFO2:      lfo2Val,
		modroute.SrcVelocity:  float64(in.Velocity),
		modroute.SrcModWheel:  float64(p.ModWheel),
	}

	offset := func(d modroute.ModDest) float64 {
		if p.Matrix == nil {
			return 0
		}
		return p.Matrix.Offset(d, sources)
	}

	// Step 2/3: apply matrix offsets to base params.
	osc1 := p.Osc1
	osc1.CoarseSemis += float32(offset(modroute.DestOsc1Pitch))
	osc1.FineCents += float32(offset(modroute.DestOsc1Fine) * 100)
	osc1.PulseWidth = clampF32(osc1.PulseWidth+float32(offset(modroute.DestOsc1PulseWidth)), 0.05, 0.95)
	oscMixLevel1 := scalarOffset(p.OscMixLevel1, offset(modroute.DestOscMixLevel1))

	osc2 := p.Osc2
	osc2.CoarseSemis += float32(offset(modroute.DestOsc2Pitch))
	osc2.FineCents += float32(offset(modroute.DestOsc2Fine) * 100)
	osc2.PulseWidth = clampF32(osc2.PulseWidth+float32(offset(modroute.DestOsc2PulseWidth)), 0.05, 0.95)
	oscMixLevel2 := scalarOffset(p.OscMixLevel2, offset(modroute.DestOscMixLevel2))

	s.nextLfo1 = p.Lfo1
	s.nextLfo1.Freq = floatfmt.LfoFreq(float64(p.Lfo1.Freq) + offset(modroute.DestLFO1Rate))
	s.nextLfo1.Depth = scalarOffset(p.Lfo1.Depth, offset(modroute.DestLFO1Depth))
	s.nextLfo2 = p.Lfo2
	s.nextLfo2.Freq = floatfmt.LfoFreq(float64(p.Lfo2.Freq) + offset(modroute.DestLFO2Rate))
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

	// Step 4: oscillators.
	s.Oscs.SyncEnabled = p.SyncEnabled
	s.Oscs.SyncOffset = p.SyncOffset
	out1, out2 := s.Oscs.Next(ctx, in.Note, in.Note, osc1, osc2, 0, 0)
	oscMix := Mixer4(
		[4]floatfmt.Sample{out1, out2, in.ChannelIn, 0},
		[4]floatfmt.Scalar{oscMixLevel1, oscMixLevel2, floatfmt.Scalar(1), 0},
	)

	// Step 5: filter envelope. Its output feeds the matrix as a source on
	// the *next* sample (read via s.EnvFilter.Level() at the top of the
	// next call), the same one-sample lag the LFOs have on themselves.
	s.EnvFilter.Next(ctx, in.Gate, envFilterParams)

	// Step 6: filter, modulated by envelope/LFO/velocity on cutoff. The
	// matrix's own DestFilterCutoff offset (wired to whichever sources the
	// host routes there) is folded into EnvAmount since ModFilt sums all
	// its cutoff contributors the same way regardless of origin.
	filtParams := ModFiltParams{
		Base:           p.Filt,
		EnvAmount:      offset(modroute.DestFilterCutoff),
		LfoAmount:      lfo1Val * 12,
		VelocityAmount: float64(in.Velocity) * 12,
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

	// Step 7: amp envelope.
	ampEnvLevel := s.EnvAmp.Next(ctx, in.Gate, envAmpParams)

	// Step 8: amp.
	gain := scalarOffset(p.AmpGain, offset(modroute.DestAmpGain))
	gain = floatfmt.Scalar(float64(gain) * float64(ampEnvLevel))
	return Amp{}.Next(ctx, ringOut, gain)
}

func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func scalarOffset(base floatfmt.Scalar, offset float64) floatfmt.Scalar {
	v := float64(base) + offset
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return floatfmt.Scalar(v)
}

func envParamOffset(base floatfmt.EnvParam, offset float64) floatfmt.EnvParam {
	v := float64(base) + offset
	if v < 0 {
		v = 0
	} else if v > 8 {
		v = 8
	}
	return floatfmt.EnvParam(v)
}
