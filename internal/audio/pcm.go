package audio

import "encoding/binary"

// DecodePCM16 converts little-endian signed 16-bit PCM bytes to normalized
// float32 samples by dividing by 32768. The mapping is deterministic; the
// recognizer contract depends on it being bit-exact. A trailing odd byte is
// ignored.
func DecodePCM16(pcm []byte) []float32 {
	sampleCount := len(pcm) / 2
	out := make([]float32, sampleCount)
	for i := 0; i < sampleCount; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		out[i] = float32(s) / 32768.0
	}
	return out
}

// EncodePCM16 converts normalized float32 samples back to little-endian
// signed 16-bit PCM, clamping to the int16 range.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, sample := range samples {
		scaled := sample * 32768.0
		if scaled > 32767 {
			scaled = 32767
		}
		if scaled < -32768 {
			scaled = -32768
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(scaled)))
	}
	return out
}
