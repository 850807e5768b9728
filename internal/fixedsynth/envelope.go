package fixedsynth

import "github.com/cbegin/synthvoice/internal/fixedfmt"

// EnvParams is one ADSR's per-sample attack/decay/sustain/release targets.
type EnvParams struct {
	Attack, Decay, Release fixedfmt.EnvParam
	Sustain                fixedfmt.Scalar
}

type envStage int

const (
	envIdle envStage = iota
	envAttack
	envDecay
	envSustain
	envRelease
)

// Env is a gate-driven ADSR envelope generator, the fixed-regime
// counterpart of floatsynth.Env: same state-machine shape (grounded on
// internal/fm/engine.go's envState/advanceOpEnv), decay/release stepped by
// fixedfmt.EnvCoeff's per-sample multiplicative coefficient instead of a
// runtime division.
type Env struct {
	stage envStage
	level fixedfmt.Scalar
}

func (e *Env) Reset() { e.stage = envIdle; e.level = 0 }

// Level returns the envelope's current output without advancing state.
func (e *Env) Level() fixedfmt.Scalar { return e.level }

// Next advances the envelope by one sample. Gate-edge transitions are
// processed within the same sample they're observed (the same same-sample
// rule floatsynth.Env.Next documents), so an attack=0/release=0 envelope
// reaches its target within one sample of the gate edge.
func (e *Env) Next(ctx fixedfmt.Context, gate fixedfmt.Sample, p EnvParams) fixedfmt.Scalar {
	gateOn := gate > 0

	switch e.stage {
	case envIdle:
		if gateOn {
			e.stage = envAttack
		}
	case envAttack, envDecay, envSustain:
		if !gateOn {
			e.stage = envRelease
		}
	case envRelease:
		if gateOn {
			e.stage = envAttack
		}
	}

	switch e.stage {
	case envIdle:
	case envAttack:
		if p.Attack == 0 {
			e.level = 65535
			e.stage = envDecay
			break
		}
		// Attack is linear: level += sampleRate_inv/attack, the same dt/tau
		// quantity EnvCoeff's 1-coeff form uses, but added rather than
		// multiplied away from 1.
		step := fixedfmt.EnvCoeff(p.Attack, ctx.EnvDtScale())
		inc := 65535 - uint32(step)
		level := uint32(e.level) + inc
		if level >= 65535 {
			e.level = 65535
			e.stage = envDecay
		} else {
			e.level = fixedfmt.Scalar(level)
		}
	case envDecay:
		sustain := p.Sustain
		if p.Decay == 0 || e.level <= sustain {
			e.level = sustain
			e.stage = envSustain
			break
		}
		coeff := fixedfmt.EnvCoeff(p.Decay, ctx.EnvDtScale())
		delta := e.level - sustain
		e.level = sustain + scalarMul(delta, coeff)
		if e.level <= sustain {
			e.level = sustain
			e.stage = envSustain
		}
	case envSustain:
		e.level = p.Sustain
	case envRelease:
		if p.Release == 0 {
			e.level = 0
			e.stage = envIdle
			break
		}
		coeff := fixedfmt.EnvCoeff(p.Release, ctx.EnvDtScale())
		e.level = scalarMul(e.level, coeff)
		if e.level <= 16 {
			e.level = 0
			e.stage = envIdle
		}
	}
	return e.level
}

// scalarMul multiplies two Q0.16 Scalars via the single widen-then-narrow
// boundary multiply (a uint32 intermediate is wide enough: two 16-bit
// unsigned operands never exceed 2^32-1).
func scalarMul(a, b fixedfmt.Scalar) fixedfmt.Scalar {
	return fixedfmt.Scalar((uint32(a) * uint32(b)) >> 16)
}
