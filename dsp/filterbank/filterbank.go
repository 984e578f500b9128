// Package filterbank designs and applies the cascaded Butterworth band
// filters used by the equalizer and by the noise reducer's cleanup stage.
//
// Band edges are fixed domain constants: the low band sits below 300 Hz,
// the mid band between 300 Hz and 3 kHz, the high band above 3 kHz. All
// filters are order-4 Butterworth in this design.
package filterbank

import (
	"fmt"

	"github.com/cwbudde/algo-audiofx/dsp/audio"
	"github.com/cwbudde/algo-audiofx/dsp/filter/biquad"
	"github.com/cwbudde/algo-audiofx/dsp/filter/design"
)

// Fixed band split points shared by the 3-band components.
const (
	LowBandEdgeHz  = 300.0
	HighBandEdgeHz = 3000.0

	// DefaultOrder is the Butterworth order used throughout this design.
	DefaultOrder = 4
)

// Band selects the filter response shape.
type Band int

const (
	Lowpass Band = iota
	Highpass
	Bandpass
)

func (b Band) String() string {
	switch b {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	default:
		return "unknown"
	}
}

// Spec is an immutable filter specification derived fresh per call from
// the sample rate and band edges. Cutoffs are stored normalized to the
// Nyquist frequency.
type Spec struct {
	Order      int
	Band       Band
	Cutoffs    [2]float64
	SampleRate float64

	sections []biquad.Coefficients
}

// Design builds a Spec for the given band shape.
//
// cutoffsHz holds one frequency for Lowpass/Highpass and a (low, high)
// pair for Bandpass. Every cutoff must lie strictly between 0 and the
// Nyquist frequency.
func Design(order int, band Band, cutoffsHz []float64, sampleRate float64) (*Spec, error) {
	if order <= 0 {
		return nil, fmt.Errorf("%w: filter order must be positive: %d", audio.ErrInvalidParameter, order)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive: %f", audio.ErrInvalidParameter, sampleRate)
	}

	nyquist := sampleRate / 2
	wantCutoffs := 1
	if band == Bandpass {
		wantCutoffs = 2
	}
	if len(cutoffsHz) != wantCutoffs {
		return nil, fmt.Errorf("%w: %s filter needs %d cutoff(s), got %d",
			audio.ErrInvalidParameter, band, wantCutoffs, len(cutoffsHz))
	}
	for _, f := range cutoffsHz {
		if f <= 0 || f >= nyquist {
			return nil, fmt.Errorf("%w: cutoff %f Hz outside (0, %f)",
				audio.ErrInvalidParameter, f, nyquist)
		}
	}

	spec := &Spec{Order: order, Band: band, SampleRate: sampleRate}

	switch band {
	case Lowpass:
		spec.Cutoffs[0] = cutoffsHz[0] / nyquist
		spec.sections = design.ButterworthLP(cutoffsHz[0], order, sampleRate)
	case Highpass:
		spec.Cutoffs[0] = cutoffsHz[0] / nyquist
		spec.sections = design.ButterworthHP(cutoffsHz[0], order, sampleRate)
	case Bandpass:
		if cutoffsHz[0] >= cutoffsHz[1] {
			return nil, fmt.Errorf("%w: bandpass edges must be increasing: %f >= %f",
				audio.ErrInvalidParameter, cutoffsHz[0], cutoffsHz[1])
		}
		spec.Cutoffs[0] = cutoffsHz[0] / nyquist
		spec.Cutoffs[1] = cutoffsHz[1] / nyquist
		spec.sections = design.ButterworthBP(cutoffsHz[0], cutoffsHz[1], order, sampleRate)
	default:
		return nil, fmt.Errorf("%w: unknown band type %d", audio.ErrInvalidParameter, band)
	}

	return spec, nil
}

// Apply filters samples causally through the cascade and returns a new
// slice. The input is left untouched; a fresh delay line is used per
// call, so a Spec is safe for concurrent use.
func (s *Spec) Apply(samples []float64) []float64 {
	out := append([]float64(nil), samples...)
	biquad.NewChain(s.sections).ProcessBlock(out)
	return out
}

// ApplyZeroPhase filters samples forward and then time-reversed through
// a second fresh cascade, cancelling the filter's phase response. The
// magnitude response is applied twice, which is the intended behavior
// for the cleanup use (steeper effective rolloff, no phase distortion).
func (s *Spec) ApplyZeroPhase(samples []float64) []float64 {
	out := s.Apply(samples)
	reverse(out)
	biquad.NewChain(s.sections).ProcessBlock(out)
	reverse(out)
	return out
}

func reverse(buf []float64) {
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
}
