// Package modroute defines the modulation source/destination vocabulary
// shared by both numeric regimes, the dense routing table that connects
// them, and the MIDI NRPN wire codec an external collaborator uses to
// address that table.
package modroute

import "fmt"

// ModSrc is a modulation source, ordinal-stable for wire encoding.
type ModSrc uint8

const (
	SrcEnvFilter ModSrc = iota
	SrcEnvAmp
	SrcLFO1
	SrcLFO2
	SrcVelocity
	SrcModWheel
	numSources
)

func (s ModSrc) String() string {
	switch s {
	case SrcEnvFilter:
		return "EnvFilter"
	case SrcEnvAmp:
		return "EnvAmp"
	case SrcLFO1:
		return "LFO1"
	case SrcLFO2:
		return "LFO2"
	case SrcVelocity:
		return "Velocity"
	case SrcModWheel:
		return "ModWheel"
	default:
		return fmt.Sprintf("ModSrc(%d)", uint8(s))
	}
}

// ModDest is a modulation destination, ordinal-stable for wire encoding.
type ModDest uint8

const (
	DestOsc1Pitch ModDest = iota
	DestOsc2Pitch
	DestOsc1PulseWidth
	DestOsc2PulseWidth
	DestOscMixLevel1
	DestOscMixLevel2
	DestFilterCutoff
	DestFilterResonance
	DestEnvFilterAttack
	DestEnvFilterDecay
	DestEnvFilterSustain
	DestEnvFilterRelease
	DestEnvAmpAttack
	DestEnvAmpDecay
	DestEnvAmpSustain
	DestEnvAmpRelease
	DestLFO1Rate
	DestLFO1Depth
	DestLFO2Rate
	DestLFO2Depth
	DestRingModMix
	DestAmpGain
	DestOsc1Fine
	DestOsc2Fine
	numDests
)

func (d ModDest) String() string {
	names := [numDests]string{
		"Osc1Pitch", "Osc2Pitch", "Osc1PulseWidth", "Osc2PulseWidth",
		"OscMixLevel1", "OscMixLevel2", "FilterCutoff", "FilterResonance",
		"EnvFilterAttack", "EnvFilterDecay", "EnvFilterSustain", "EnvFilterRelease",
		"EnvAmpAttack", "EnvAmpDecay", "EnvAmpSustain", "EnvAmpRelease",
		"LFO1Rate", "LFO1Depth", "LFO2Rate", "LFO2Depth",
		"RingModMix", "AmpGain", "Osc1Fine", "Osc2Fine",
	}
	if int(d) < len(names) {
		return names[d]
	}
	return fmt.Sprintf("ModDest(%d)", uint8(d))
}

// NumSources and NumDests expose the table dimensions to both regime
// packages without leaking the private sentinel constants.
const (
	NumSources = int(numSources)
	NumDests   = int(numDests)
)

// MaxSwing is the per-destination compile-time domain scale spec 4.8
// requires: a destination's offset is depth*source*MaxSwing(dest), clipped
// to the destination's legal range by the caller applying it.
func MaxSwing(d ModDest) float64 {
	switch d {
	case DestOsc1Pitch, DestOsc2Pitch:
		return 64 // semitones
	case DestOsc1Fine, DestOsc2Fine:
		return 1 // semitone, fine tune trim
	case DestOsc1PulseWidth, DestOsc2PulseWidth:
		return 0.45 // pulse width swings within [0.05, 0.95]
	case DestOscMixLevel1, DestOscMixLevel2:
		return 1
	case DestFilterCutoff:
		return 64 // semitones
	case DestFilterResonance:
		return 1
	case DestEnvFilterAttack, DestEnvFilterDecay, DestEnvFilterRelease,
		DestEnvAmpAttack, DestEnvAmpDecay, DestEnvAmpRelease:
		return 8 // seconds
	case DestEnvFilterSustain, DestEnvAmpSustain:
		return 1
	case DestLFO1Rate, DestLFO2Rate:
		return 32 // Hz
	case DestLFO1Depth, DestLFO2Depth:
		return 1
	case DestRingModMix:
		return 1
	case DestAmpGain:
		return 1
	default:
		return 0
	}
}

// Matrix is a dense |Sources| x |Destinations| table of signed depths in
// [-1, 1], stored as plain float64 so either numeric regime's voice graph
// can read it without a dependency on either fixedfmt or floatfmt.
type Matrix struct {
	depth [NumSources][NumDests]float64
}

// SetDepth stores a signed depth in [-1, 1] for the given source/dest edge.
func (m *Matrix) SetDepth(src ModSrc, dest ModDest, depth float64) {
	if int(src) >= NumSources || int(dest) >= NumDests {
		return
	}
	m.depth[src][dest] = clamp(depth, -1, 1)
}

// Depth returns the stored depth for a source/dest edge, or 0 if either
// ordinal is out of range.
func (m *Matrix) Depth(src ModSrc, dest ModDest) float64 {
	if int(src) >= NumSources || int(dest) >= NumDests {
		return 0
	}
	return m.depth[src][dest]
}

// Offset sums depth*sourceValue*MaxSwing(dest) across all sources routed to
// dest, in ordinal-ascending source order (the reproducibility invariant of
// spec 4.8). sourceValues must be indexed by ModSrc ordinal and have at
// least NumSources entries.
func (m *Matrix) Offset(dest ModDest, sourceValues [NumSources]float64) float64 {
	if int(dest) >= NumDests {
		return 0
	}
	swing := MaxSwing(dest)
	var acc float64
	for s := 0; s < NumSources; s++ {
		acc += m.depth[s][dest] * sourceValues[s] * swing
	}
	return acc
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
