// Package dynamics provides the static soft compressor applied by the
// noise reducer's post-processing stage.
package dynamics

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-audiofx/dsp/audio"
)

const (
	// DefaultThreshold is the linear level above which gain reduction starts.
	DefaultThreshold = 0.7
	// DefaultRatio divides the excess over the threshold.
	DefaultRatio = 4.0

	minRatio = 1.0
	maxRatio = 100.0
)

// Compressor is a memoryless soft compressor: samples whose magnitude
// exceeds the threshold have their excess divided by the ratio, sign
// preserved. There is no attack/release envelope; the curve is applied
// per sample, which is the intended "gentle" behavior for evening out
// denoised material before peak normalization.
type Compressor struct {
	threshold float64
	ratio     float64
}

// NewCompressor creates a compressor. threshold must lie in (0, 1],
// ratio in [1, 100].
func NewCompressor(threshold, ratio float64) (*Compressor, error) {
	if threshold <= 0 || threshold > 1 || math.IsNaN(threshold) {
		return nil, fmt.Errorf("%w: compressor threshold must be in (0, 1]: %f",
			audio.ErrInvalidParameter, threshold)
	}
	if ratio < minRatio || ratio > maxRatio || math.IsNaN(ratio) {
		return nil, fmt.Errorf("%w: compressor ratio must be in [%v, %v]: %f",
			audio.ErrInvalidParameter, minRatio, maxRatio, ratio)
	}

	return &Compressor{threshold: threshold, ratio: ratio}, nil
}

// Threshold returns the linear threshold.
func (c *Compressor) Threshold() float64 { return c.threshold }

// Ratio returns the compression ratio.
func (c *Compressor) Ratio() float64 { return c.ratio }

// Process returns a compressed copy of samples.
func (c *Compressor) Process(samples []float64) []float64 {
	out := append([]float64(nil), samples...)

	for i, v := range out {
		mag := math.Abs(v)
		if mag <= c.threshold {
			continue
		}
		compressed := c.threshold + (mag-c.threshold)/c.ratio
		if v < 0 {
			compressed = -compressed
		}
		out[i] = compressed
	}

	return out
}
