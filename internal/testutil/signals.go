package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-audiofx/dsp/audio"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// SineBuffer builds a mono buffer holding a deterministic sine wave.
func SineBuffer(freqHz float64, sampleRate int, amplitude float64, length int) *audio.Buffer {
	buf, _ := audio.FromMono(DeterministicSine(freqHz, float64(sampleRate), amplitude, length), sampleRate)
	return buf
}

// StereoSineBuffer builds a stereo buffer with independent sine waves per channel.
func StereoSineBuffer(leftHz, rightHz float64, sampleRate int, amplitude float64, length int) *audio.Buffer {
	return &audio.Buffer{
		Data: [][]float64{
			DeterministicSine(leftHz, float64(sampleRate), amplitude, length),
			DeterministicSine(rightHz, float64(sampleRate), amplitude, length),
		},
		SampleRate: sampleRate,
	}
}

// RMS returns the root-mean-square level of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
