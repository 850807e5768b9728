package floatsynth

import "github.com/cbegin/synthvoice/internal/floatfmt"

// EnvParams is one ADSR's per-sample attack/decay/sustain/release targets.
type EnvParams struct {
	Attack, Decay, Release floatfmt.EnvParam
	Sustain                floatfmt.Scalar
}

type envStage int

const (
	envIdle envStage = iota
	envAttack
	envDecay
	envSustain
	envRelease
)

// Env is a gate-driven ADSR envelope generator, state machine shape
// grounded on internal/fm/engine.go's envState/advanceOpEnv (idle->attack->
// decay->sustain->release), with decay/release stepped by spec 4.4's
// exponential coefficient rather than the teacher's linear step (see
// DESIGN.md's Open Question resolution on the release/S4 discrepancy).
type Env struct {
	stage envStage
	level float32
}

func (e *Env) Reset() { e.stage = envIdle; e.level = 0 }

// Level returns the envelope's current output without advancing state.
func (e *Env) Level() floatfmt.Scalar { return floatfmt.Scalar(e.level) }

// Next advances the envelope by one sample given the current gate level
// (gate > 0 is "on") and returns the new output level. A gate-edge
// transition (idle->attack, attack/decay/sustain->release, release->attack)
// takes effect and is processed within the same sample it is observed, so
// an attack=0/release=0 envelope reaches its target within one sample of
// the gate edge (spec 8 invariant 5), not one sample later.
func (e *Env) Next(ctx floatfmt.Context, gate floatfmt.Sample, p EnvParams) floatfmt.Scalar {
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
		if p.Attack <= 0 {
			e.level = 1
			e.stage = envDecay
			break
		}
		step := float32(ctx.InvSampleRate() / float64(p.Attack))
		e.level += step
		if e.level >= 1 {
			e.level = 1
			e.stage = envDecay
		}
	case envDecay:
		sustain := float32(p.Sustain)
		if p.Decay <= 0 {
			e.level = sustain
			e.stage = envSustain
			break
		}
		coeff := envCoeff(ctx.InvSampleRate(), float64(p.Decay))
		e.level = sustain + (e.level-sustain)*float32(coeff)
		if e.level <= sustain+1e-4 {
			e.level = sustain
			e.stage = envSustain
		}
	case envSustain:
		e.level = float32(p.Sustain)
	case envRelease:
		if p.Release <= 0 {
			e.level = 0
			e.stage = envIdle
			break
		}
		coeff := envCoeff(ctx.InvSampleRate(), float64(p.Release))
		e.level *= float32(coeff)
		if e.level <= 1e-4 {
			e.level = 0
			e.stage = envIdle
		}
	}
	return floatfmt.Scalar(e.level)
}

// envCoeff computes 1 - dt/tau, clamped to [0,1), the float regime's direct
// counterpart to fixedfmt.EnvCoeff (which avoids the division via a
// reciprocal table only because the fixed regime must never divide at
// runtime; the float regime has no such constraint, per spec 9).
func envCoeff(dt, tau float64) float64 {
	if tau <= 0 {
		return 0
	}
	c := 1 - dt/tau
	if c < 0 {
		return 0
	}
	if c >= 1 {
		return 0.9999999
	}
	return c
}
