package audio

// Level computes the normalized RMS volume of 16-bit little-endian PCM,
// in the range 0..1. Odd trailing bytes are ignored.
func Level(pcm []byte) float64 {
	sampleCount := len(pcm) / 2
	if sampleCount == 0 {
		return 0
	}

	var sum float64
	for i := 0; i+1 < len(pcm); i += 2 {
		sample := int16(pcm[i]) | int16(pcm[i+1])<<8
		sum += float64(sample) * float64(sample)
	}

	rms := sum / float64(sampleCount)
	return rms / (32768.0 * 32768.0)
}
