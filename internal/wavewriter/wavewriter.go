// Package wavewriter renders a driver.Primitive voice to a 32-bit-float WAV
// file, the offline counterpart of internal/audiosink's live player.
// Grounded on the teacher's offline.go (EncodeWAVFloat32LE), with the
// render loop itself rebuilt around driver.Primitive instead of the
// teacher's sequencer.
package wavewriter

import (
	"encoding/binary"
	"math"

	"github.com/cbegin/synthvoice/internal/driver"
)

// Render drives voice for frames samples using nextInput to produce each
// sample's control input and toFloat32 to convert its output, interleaving
// the mono result into stereo the way EncodeFloat32LE expects.
func Render[In, Params, Out any](voice driver.Primitive[In, Params, Out], params Params, frames int, nextInput func() In, toFloat32 func(Out) float32) []float32 {
	out := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		v := toFloat32(voice.Next(nextInput(), params))
		out[i*2] = v
		out[i*2+1] = v
	}
	return out
}

// EncodeFloat32LE builds a 44-byte-header canonical WAV file (format tag 3,
// IEEE float samples) around the given interleaved sample buffer — the same
// byte layout as the teacher's EncodeWAVFloat32LE, field for field.
func EncodeFloat32LE(samples []float32, sampleRate, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
