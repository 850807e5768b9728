package fixedfmt

import "math/bits"

// NoteToFrequency converts a Q7.9 Note to a Q12.4 Frequency using a
// mantissa/exponent decomposition: octaveRatioTable holds one octave of
// 2^(i/192) in Q1.15, and semitoneInOctave/noteOctaveShift locate a note's
// position within that table and its octave offset from A4 (MIDI note 69).
// No runtime division, and the only multiply wider than 16x16 bits is the
// single combined mantissa*7040 widen, narrowed by one combined shift — an
// earlier design that narrowed the mantissa and then separately applied the
// octave shift double-rounded at low notes (~11 cents error); combining
// both into one shift removes that.
func NoteToFrequency(n Note) Frequency {
	ni := int(n >> 9)
	if ni >= len(semitoneInOctave) {
		ni = len(semitoneInOctave) - 1
	}
	frac9 := int32(n & 0x1FF)
	pos := int32(semitoneInOctave[ni])*512 + frac9
	idx := pos >> 5
	rem := pos & 31
	if int(idx) >= len(octaveRatioTable)-1 {
		idx = int32(len(octaveRatioTable) - 2)
	}
	r0 := int32(octaveRatioTable[idx])
	r1 := int32(octaveRatioTable[idx+1])
	mant := r0 + (((r1 - r0) * rem) >> 5)

	wide := int64(7040) * int64(mant)
	shift := int(noteOctaveShift[ni]) - 15
	var result int64
	if shift >= 0 {
		result = wide << uint(shift)
	} else {
		result = wide >> uint(-shift)
	}
	return Frequency(clamp32(int32(result), 0, 65535))
}

// semitoneInOctave maps a 0..128 MIDI-style note index to its offset within
// one octave's worth of the ratio table (0..11), cyclic with period 12 and
// aligned so note 69 (A4) lands on offset 0.
var semitoneInOctave = [129]uint8{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 0, 1, 2, 3, 4, 5, 6,
	7, 8, 9, 10, 11, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10,
	11, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 0, 1, 2,
	3, 4, 5, 6, 7, 8, 9, 10, 11, 0, 1, 2, 3, 4, 5, 6,
	7, 8, 9, 10, 11, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10,
	11, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 0, 1, 2,
	3, 4, 5, 6, 7, 8, 9, 10, 11, 0, 1, 2, 3, 4, 5, 6,
	7, 8, 9, 10, 11, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10,
	11,
}

// noteOctaveShift is the octave offset of a note's semitone-in-octave
// position from A4, i.e. floor((n-69)/12).
var noteOctaveShift = [129]int8{
	-6, -6, -6, -6, -6, -6, -6, -6, -6, -5, -5, -5, -5, -5, -5, -5,
	-5, -5, -5, -5, -5, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4, -4,
	-4, -3, -3, -3, -3, -3, -3, -3, -3, -3, -3, -3, -3, -2, -2, -2,
	-2, -2, -2, -2, -2, -2, -2, -2, -2, -1, -1, -1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 3, 3, 3, 3, 3, 3, 3,
	3, 3, 3, 3, 3, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4,
	4,
}

// octaveRatioTable[i] is round(2^(i/192) * 32768) in Q1.15, for i in
// [0,192]; index 192 is the octave-doubling point (would be 65536,
// clamped to the Q1.15 max).
var octaveRatioTable = [193]uint16{
	32768, 32887, 33005, 33125, 33245, 33365, 33486, 33607, 33728, 33850, 33973, 34095, 34219, 34343, 34467, 34591,
	34716, 34842, 34968, 35095, 35221, 35349, 35477, 35605, 35734, 35863, 35993, 36123, 36254, 36385, 36516, 36648,
	36781, 36914, 37047, 37181, 37316, 37451, 37586, 37722, 37859, 37996, 38133, 38271, 38409, 38548, 38688, 38828,
	38968, 39109, 39250, 39392, 39535, 39678, 39821, 39965, 40110, 40255, 40400, 40547, 40693, 40840, 40988, 41136,
	41285, 41434, 41584, 41735, 41886, 42037, 42189, 42342, 42495, 42649, 42803, 42958, 43113, 43269, 43425, 43582,
	43740, 43898, 44057, 44216, 44376, 44537, 44698, 44859, 45022, 45185, 45348, 45512, 45677, 45842, 46008, 46174,
	46341, 46509, 46677, 46846, 47015, 47185, 47356, 47527, 47699, 47871, 48044, 48218, 48393, 48568, 48743, 48920,
	49097, 49274, 49452, 49631, 49811, 49991, 50172, 50353, 50535, 50718, 50901, 51085, 51270, 51456, 51642, 51829,
	52016, 52204, 52393, 52582, 52773, 52963, 53155, 53347, 53540, 53734, 53928, 54123, 54319, 54515, 54713, 54910,
	55109, 55308, 55508, 55709, 55911, 56113, 56316, 56519, 56724, 56929, 57135, 57341, 57549, 57757, 57966, 58176,
	58386, 58597, 58809, 59022, 59235, 59449, 59664, 59880, 60097, 60314, 60532, 60751, 60971, 61191, 61413, 61635,
	61858, 62081, 62306, 62531, 62757, 62984, 63212, 63441, 63670, 63901, 64132, 64364, 64596, 64830, 65065, 65300,
	65535,
}

// reciprocalMantissaTable[i] = round(32768/(1+i/64)) for i in [0,64],
// addressed via bits.LeadingZeros16-style normalization by the envelope's
// Delta-t/tau computation to avoid a runtime division.
var reciprocalMantissaTable = [65]uint16{
	32768, 32264, 31775, 31301, 30840, 30394, 29959, 29537, 29127, 28728, 28340, 27962, 27594, 27236, 26887, 26546,
	26214, 25891, 25575, 25267, 24966, 24672, 24385, 24105, 23831, 23564, 23302, 23046, 22795, 22550, 22310, 22075,
	21845, 21620, 21400, 21183, 20972, 20764, 20560, 20361, 20165, 19973, 19784, 19600, 19418, 19240, 19065, 18893,
	18725, 18559, 18396, 18236, 18079, 17924, 17772, 17623, 17476, 17332, 17190, 17050, 16913, 16777, 16644, 16513,
	16384,
}

// rawReciprocal approximates round((1<<30)/x) for x in [1, 65535], via
// leading-zero normalization into [32768, 65535] followed by the 65-entry
// mantissa table and linear interpolation — the same exponent/mantissa
// idiom NoteToFrequency uses, reused here so the envelope's per-sample
// exponential coefficient never divides at runtime.
func rawReciprocal(x uint16) uint32 {
	if x == 0 {
		return 1 << 30
	}
	lz := uint(bits.LeadingZeros16(x))
	norm := uint32(x) << lz // now in [32768, 65535]
	frac := (norm - 32768) >> 9
	rem := (norm - 32768) & 511
	r0 := uint32(reciprocalMantissaTable[frac])
	r1 := uint32(reciprocalMantissaTable[frac+1])
	mant := r0 - (((r0 - r1) * rem) >> 9)
	return mant << lz // (1<<30)/x == ((1<<30)/norm) << lz, norm == x<<lz
}

// Reciprocal exposes rawReciprocal to other fixed-regime primitives that
// need 1/x without a runtime division — the oscillator's polyBLEP
// correction and the filter's small-angle coefficient both reuse this
// rather than inventing a second table.
func Reciprocal(x uint16) uint32 { return rawReciprocal(x) }

// EnvCoeff computes the ADSR's per-sample exponential coefficient
// `1 - dt/tau` (spec 4.4), clamped to [0, 1). tau is a Q3.13 EnvParam (the
// decay or release time); envDtScale is Context.envDtScale, precomputed at
// construction as (8192/SampleRate) in Q0.16 so this call never divides. A
// zero tau returns 0, snapping the envelope directly to its target on the
// next sample (the attack-0/release-0 seed scenario in spec 8).
//
// In Q0.16 units dt/tau is 65536/(SampleRate*tauSeconds) = envDtScale/tau
// (tau as its raw Q3.13 value) = envDtScale*recip / 2^30, where
// recip approx= (1<<30)/tau, so ratio is read off with a single >>30,
// rounded to the nearest rather than truncated. Scalar's 16-bit
// granularity (1/65536) puts a floor under how slow a tau this can
// resolve: once tau exceeds roughly 2*65536/SampleRate seconds (~3.0s at
// 44.1kHz, ~2.8s at 48kHz), the true per-sample decrement is under half a
// Scalar LSB and this coefficient rounds to exactly 65535, Scalar's 1.0
// (no decay at all).
// EnvParam's range extends to 8s, so this is a real, accepted ceiling on
// decay/release realism for very slow envelopes, not a bug in the shift.
func EnvCoeff(tau EnvParam, envDtScale uint16) Scalar {
	if tau == 0 {
		return 0
	}
	recip := rawReciprocal(uint16(tau)) // approx (1<<30)/tau
	ratio := ((uint64(envDtScale) * uint64(recip)) + (1 << 29)) >> 30
	if ratio > scalarMaxU {
		ratio = scalarMaxU
	}
	coeff := int64(scalarMaxU) - int64(ratio)
	if coeff < 0 {
		coeff = 0
	}
	return Scalar(coeff)
}

const scalarMaxU = uint64(65535)
