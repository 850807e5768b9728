package modroute

// NRPN wire format (spec 6): a 14-bit address plus a 14-bit data value.
//
//	address = (category << 11) | (aux << 7) | subfield
//	category 0: MIDI CC passthrough — aux unused, subfield = CC number
//	category 1: modulation routing — aux = ModSrc ordinal, subfield = ModDest ordinal
//
// Depth values are 14-bit MIDI unsigned, centered at 0x2000 (signed
// SignedScalar in [-1, 1)).
const (
	nrpnCategoryCC    = 0
	nrpnCategoryRoute = 1

	nrpnAddrMask  = 0x3FFF
	nrpnDataMask  = 0x3FFF
	nrpnDataCenter = 0x2000
)

// Nrpn is a decoded NRPN address: either a CC passthrough or a modulation
// routing edge.
type Nrpn struct {
	IsRouting bool
	CC        uint8
	Src       ModSrc
	Dest      ModDest
}

// EncodeRoutingAddress packs a (ModSrc, ModDest) pair into a 14-bit NRPN
// address. Callers must only pass ordinals within range; out-of-range
// ordinals are masked rather than rejected, matching the hot-path no-failure
// contract of spec 7 (validation happens on decode, not encode).
func EncodeRoutingAddress(src ModSrc, dest ModDest) uint16 {
	return (uint16(nrpnCategoryRoute) << 11) | ((uint16(src) & 0xF) << 7) | (uint16(dest) & 0x7F)
}

// EncodeCCAddress packs a MIDI CC number into a 14-bit NRPN address.
func EncodeCCAddress(cc uint8) uint16 {
	return (uint16(nrpnCategoryCC) << 11) | uint16(cc&0x7F)
}

// DecodeAddress decodes a 14-bit NRPN address. It returns ok=false for an
// unrecognized category or an out-of-range ModSrc/ModDest ordinal — the
// "no such routing" soft failure spec 7 requires, with no side effect.
func DecodeAddress(addr uint16) (Nrpn, bool) {
	addr &= nrpnAddrMask
	category := (addr >> 11) & 0x7
	aux := uint8((addr >> 7) & 0xF)
	subfield := uint8(addr & 0x7F)
	switch category {
	case nrpnCategoryCC:
		return Nrpn{CC: subfield}, true
	case nrpnCategoryRoute:
		src := ModSrc(aux)
		dest := ModDest(subfield)
		if int(src) >= NumSources || int(dest) >= NumDests {
			return Nrpn{}, false
		}
		return Nrpn{IsRouting: true, Src: src, Dest: dest}, true
	default:
		return Nrpn{}, false
	}
}

// EncodeDepth maps a signed depth in [-1, 1] to a 14-bit MIDI value centered
// at 0x2000.
func EncodeDepth(depth float64) uint16 {
	depth = clamp(depth, -1, 1)
	v := int32(nrpnDataCenter) + int32(depth*float64(nrpnDataCenter-1))
	if v < 0 {
		v = 0
	}
	if v > nrpnDataMask {
		v = nrpnDataMask
	}
	return uint16(v)
}

// DecodeDepth maps a 14-bit MIDI value centered at 0x2000 back to a signed
// depth in [-1, 1].
func DecodeDepth(value uint16) float64 {
	value &= nrpnDataMask
	return clamp((float64(value)-nrpnDataCenter)/float64(nrpnDataCenter-1), -1, 1)
}
