// Package interp provides fractional-sample interpolation and
// length-targeted resampling.
package interp

import (
	"fmt"

	"github.com/cwbudde/algo-audiofx/dsp/audio"
)

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}

// ResampleToLength resamples in to exactly outLen samples using cubic
// Hermite interpolation. Edge neighbors are clamped. The ratio of the
// lengths determines the implied rate change; no anti-aliasing filter is
// applied, which is acceptable for the moderate ratios (within two
// octaves) the pitch shifter requests.
func ResampleToLength(in []float64, outLen int) ([]float64, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: resample input is empty", audio.ErrInvalidParameter)
	}
	if outLen <= 0 {
		return nil, fmt.Errorf("%w: resample target length must be positive: %d",
			audio.ErrInvalidParameter, outLen)
	}

	out := make([]float64, outLen)
	if outLen == 1 {
		out[0] = in[0]
		return out, nil
	}

	step := float64(len(in)-1) / float64(outLen-1)
	last := len(in) - 1

	for i := range out {
		pos := float64(i) * step
		i0 := int(pos)
		if i0 >= last {
			out[i] = in[last]
			continue
		}
		frac := pos - float64(i0)

		im1 := max(i0-1, 0)
		i2 := min(i0+2, last)

		out[i] = Hermite4(frac, in[im1], in[i0], in[i0+1], in[i2])
	}

	return out, nil
}
