package modroute

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeDecodeRoutingRoundTrip(t *testing.T) {
	for src := ModSrc(0); int(src) < NumSources; src++ {
		for dest := ModDest(0); int(dest) < NumDests; dest++ {
			addr := EncodeRoutingAddress(src, dest)
			got, ok := DecodeAddress(addr)
			require.True(t, ok, "src=%v dest=%v", src, dest)
			require.True(t, got.IsRouting)
			require.Equal(t, src, got.Src)
			require.Equal(t, dest, got.Dest)
		}
	}
}

func TestEncodeDecodeCCRoundTrip(t *testing.T) {
	for cc := 0; cc < 128; cc++ {
		addr := EncodeCCAddress(uint8(cc))
		got, ok := DecodeAddress(addr)
		require.True(t, ok)
		require.False(t, got.IsRouting)
		require.Equal(t, uint8(cc), got.CC)
	}
}

func TestDecodeAddressOutOfRangeRouting(t *testing.T) {
	// category 1 with aux beyond numSources is not a legal routing; the
	// decoder must fail softly rather than returning a bogus ModSrc.
	addr := (uint16(nrpnCategoryRoute) << 11) | (uint16(NumSources+1) << 7) | 0
	_, ok := DecodeAddress(addr)
	require.False(t, ok)
}

func TestDepthRoundTripAtCenterAndExtremes(t *testing.T) {
	cases := []float64{-1, -0.5, 0, 0.5, 1}
	for _, d := range cases {
		v := EncodeDepth(d)
		back := DecodeDepth(v)
		require.InDelta(t, d, back, 1.0/float64(nrpnDataCenter-1))
	}
	require.Equal(t, uint16(nrpnDataCenter), EncodeDepth(0))
}

func TestRoutingAddressRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		src := ModSrc(rapid.IntRange(0, NumSources-1).Draw(rt, "src"))
		dest := ModDest(rapid.IntRange(0, NumDests-1).Draw(rt, "dest"))
		addr := EncodeRoutingAddress(src, dest)
		got, ok := DecodeAddress(addr)
		if !ok || !got.IsRouting || got.Src != src || got.Dest != dest {
			rt.Fatalf("round trip failed for src=%v dest=%v: got=%+v ok=%v", src, dest, got, ok)
		}
	})
}

func TestDepthRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := rapid.Float64Range(-1, 1).Draw(rt, "depth")
		back := DecodeDepth(EncodeDepth(d))
		if back < -1.001 || back > 1.001 {
			rt.Fatalf("decoded depth out of range: %v", back)
		}
	})
}
