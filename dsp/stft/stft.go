package stft

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-audiofx/dsp/audio"
	"github.com/cwbudde/algo-audiofx/dsp/window"
)

const normFloor = 1e-12

// Frame is the complex time-frequency representation of one channel of
// audio, together with the analysis parameters needed to invert it.
//
// Bins[t][k] is bin k of analysis frame t; each frame holds
// WindowSize/2+1 bins of the one-sided spectrum. A Frame is owned by the
// component that computed it and is never shared across components.
type Frame struct {
	Bins       [][]complex128
	WindowSize int
	HopSize    int

	// SourceLen is the sample count Synthesize trims (or zero-pads) its
	// output to. Analyze sets it to the input length; callers that
	// modify the frame axis must update it accordingly.
	SourceLen int
}

// NumFrames returns the analysis frame count.
func (f *Frame) NumFrames() int { return len(f.Bins) }

// NumBins returns the one-sided bin count per frame.
func (f *Frame) NumBins() int { return f.WindowSize/2 + 1 }

// Magnitudes returns |Bins[t][k]| for every frame and bin.
func (f *Frame) Magnitudes() [][]float64 {
	out := make([][]float64, len(f.Bins))
	re := make([]float64, f.NumBins())
	im := make([]float64, f.NumBins())

	for t, frame := range f.Bins {
		out[t] = make([]float64, len(frame))
		for k, c := range frame {
			re[k] = real(c)
			im[k] = imag(c)
		}
		vecmath.Magnitude(out[t], re[:len(frame)], im[:len(frame)])
	}

	return out
}

// Powers returns |Bins[t][k]|^2 for every frame and bin.
func (f *Frame) Powers() [][]float64 {
	out := make([][]float64, len(f.Bins))
	re := make([]float64, f.NumBins())
	im := make([]float64, f.NumBins())

	for t, frame := range f.Bins {
		out[t] = make([]float64, len(frame))
		for k, c := range frame {
			re[k] = real(c)
			im[k] = imag(c)
		}
		vecmath.Power(out[t], re[:len(frame)], im[:len(frame)])
	}

	return out
}

func validateParams(windowSize, hopSize int) error {
	if windowSize <= 0 || !isPowerOf2(windowSize) {
		return fmt.Errorf("%w: stft window size must be a positive power of two: %d",
			audio.ErrInvalidParameter, windowSize)
	}
	if hopSize <= 0 || hopSize > windowSize {
		return fmt.Errorf("%w: stft hop size must be in [1, %d]: %d",
			audio.ErrInvalidParameter, windowSize, hopSize)
	}
	return nil
}

// Analyze computes the windowed short-time Fourier transform of samples.
//
// Frames advance by hopSize and are weighted with a periodic Hann window;
// the tail frame is zero-padded. The round trip Synthesize(Analyze(x))
// reconstructs x to within floating-point rounding when windowSize is a
// multiple of hopSize and the frame is not modified in between.
func Analyze(samples []float64, windowSize, hopSize int) (*Frame, error) {
	if err := validateParams(windowSize, hopSize); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: stft input is empty", audio.ErrInvalidParameter)
	}

	plan, err := algofft.NewPlan64(windowSize)
	if err != nil {
		return nil, fmt.Errorf("%w: stft plan size %d: %v", audio.ErrNumericFailure, windowSize, err)
	}

	coeffs := window.Generate(window.TypeHann, windowSize, window.WithPeriodic())
	half := windowSize / 2
	frameCount := 1 + (len(samples)-1)/hopSize

	bins := make([][]complex128, frameCount)
	work := make([]complex128, windowSize)

	for t := range frameCount {
		pos := t * hopSize
		for i := range windowSize {
			x := 0.0
			if idx := pos + i; idx < len(samples) {
				x = samples[idx]
			}
			work[i] = complex(x*coeffs[i], 0)
		}

		if err := plan.Forward(work, work); err != nil {
			return nil, fmt.Errorf("%w: stft forward transform: %v", audio.ErrNumericFailure, err)
		}

		frame := make([]complex128, half+1)
		copy(frame, work[:half+1])
		bins[t] = frame
	}

	return &Frame{
		Bins:       bins,
		WindowSize: windowSize,
		HopSize:    hopSize,
		SourceLen:  len(samples),
	}, nil
}

// Synthesize reconstructs mono samples from a frame via windowed
// overlap-add, normalized by the summed squared window.
func Synthesize(f *Frame) ([]float64, error) {
	if f == nil || len(f.Bins) == 0 {
		return nil, fmt.Errorf("%w: stft synthesize on empty frame", audio.ErrInvalidParameter)
	}
	if err := validateParams(f.WindowSize, f.HopSize); err != nil {
		return nil, err
	}

	half := f.WindowSize / 2
	for t, frame := range f.Bins {
		if len(frame) != half+1 {
			return nil, fmt.Errorf("%w: stft frame %d has %d bins, want %d",
				audio.ErrNumericFailure, t, len(frame), half+1)
		}
	}

	plan, err := algofft.NewPlan64(f.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("%w: stft plan size %d: %v", audio.ErrNumericFailure, f.WindowSize, err)
	}

	coeffs := window.Generate(window.TypeHann, f.WindowSize, window.WithPeriodic())

	outLen := (len(f.Bins)-1)*f.HopSize + f.WindowSize
	output := make([]float64, outLen)
	norm := make([]float64, outLen)

	spectrum := make([]complex128, f.WindowSize)
	timeFrame := make([]complex128, f.WindowSize)

	for t, frame := range f.Bins {
		copy(spectrum, frame)
		// Hermitian mirror for a real-valued inverse transform.
		spectrum[0] = complex(real(frame[0]), 0)
		spectrum[half] = complex(real(frame[half]), 0)
		for k := 1; k < half; k++ {
			v := frame[k]
			spectrum[f.WindowSize-k] = complex(real(v), -imag(v))
		}

		if err := plan.Inverse(timeFrame, spectrum); err != nil {
			return nil, fmt.Errorf("%w: stft inverse transform: %v", audio.ErrNumericFailure, err)
		}

		pos := t * f.HopSize
		for i := range f.WindowSize {
			w := coeffs[i]
			output[pos+i] += real(timeFrame[i]) * w
			norm[pos+i] += w * w
		}
	}

	for i := range output {
		if norm[i] > normFloor {
			output[i] /= norm[i]
		}
	}

	if f.SourceLen > 0 {
		return fitLength(output, f.SourceLen), nil
	}
	return output, nil
}

func fitLength(in []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, in)
	return out
}

func isPowerOf2(v int) bool {
	return v > 0 && v&(v-1) == 0
}
