package audio

import "math"

// PCM output format shared with the oto device: 44.1kHz, interleaved
// stereo, signed 16-bit little-endian.
const (
	sampleRate     = 44100
	channelCount   = 2
	bytesPerSample = 2
)

// tone describes one synthesized segment: a sine at freq held for duration
// seconds with an exponential decay envelope.
type tone struct {
	freq     float64
	duration float64
	volume   float64
	decay    float64
}

// synthesize renders a tone sequence into interleaved stereo PCM. Everything
// the engine plays is generated here, so no sound asset needs to exist on
// the host.
func synthesize(tones ...tone) []byte {
	var out []byte
	for _, t := range tones {
		n := int(float64(sampleRate) * t.duration)
		buf := make([]byte, n*channelCount*bytesPerSample)
		for i := 0; i < n; i++ {
			ts := float64(i) / float64(sampleRate)
			envelope := math.Exp(-ts * t.decay)
			s := int16(math.Sin(2*math.Pi*t.freq*ts) * 32767 * t.volume * envelope)
			off := i * channelCount * bytesPerSample
			// little-endian, duplicated into both channels
			buf[off] = byte(s)
			buf[off+1] = byte(s >> 8)
			buf[off+2] = byte(s)
			buf[off+3] = byte(s >> 8)
		}
		out = append(out, buf...)
	}
	return out
}

// chimePCM is the client one-shot: a short ascending triad.
func chimePCM() []byte {
	return synthesize(
		tone{freq: 880.00, duration: 0.14, volume: 0.45, decay: 14},
		tone{freq: 1108.73, duration: 0.14, volume: 0.45, decay: 14},
		tone{freq: 1318.51, duration: 0.22, volume: 0.50, decay: 9},
	)
}

// sirenPCM is one cycle of the admin alert; the loop reader repeats it until
// the alert is acknowledged.
func sirenPCM() []byte {
	return synthesize(
		tone{freq: 700, duration: 0.3, volume: 1.0, decay: 1.5},
		tone{freq: 920, duration: 0.3, volume: 1.0, decay: 1.5},
	)
}

// clickPCM is the low-latency interaction cue.
func clickPCM() []byte {
	return synthesize(tone{freq: 1200, duration: 0.06, volume: 0.3, decay: 45})
}
