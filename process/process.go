// Package process is the high-level facade over the DSP packages.
//
// It enforces the conventional parameter ranges a request layer is
// expected to apply, runs the requested transformation, and wraps the
// outcome in a Result carrying a human-readable description. Every
// method is a pure function of its input buffer; on failure no partial
// buffers are returned.
package process

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-audiofx/dsp/audio"
	"github.com/cwbudde/algo-audiofx/dsp/denoise"
	"github.com/cwbudde/algo-audiofx/dsp/eq"
	"github.com/cwbudde/algo-audiofx/dsp/gain"
	"github.com/cwbudde/algo-audiofx/dsp/stereo"
	"github.com/cwbudde/algo-audiofx/dsp/timescale"
)

// Conventional parameter bounds enforced on behalf of callers. The DSP
// packages themselves accept any finite values; the facade narrows them
// to ranges that are meaningful for real program material.
const (
	MaxGainDB     = 24.0
	MaxSemitones  = 24.0
	MinTempoRatio = 0.25
	MaxTempoRatio = 4.0
	MinTargetDBFS = -60.0
	MaxTargetDBFS = 0.0
)

// Result is the outcome of a successful transformation.
//
// Buffers holds one entry for most operations and two (vocals, then
// instrumental) for vocal separation. Description is a short
// human-readable summary of what was applied, suitable for logs or a
// user-facing status line.
type Result struct {
	Buffers     []*audio.Buffer
	Description string
}

// Output returns the single output buffer of a one-output operation.
func (r *Result) Output() *audio.Buffer { return r.Buffers[0] }

// Option configures a Processor.
type Option func(*Processor)

// WithLenientSeparation makes SeparateVocals accept mono input by
// returning the input as the vocal component and silence as the
// instrumental component, instead of failing with
// ErrUnsupportedChannelLayout.
func WithLenientSeparation() Option {
	return func(p *Processor) { p.lenientSeparation = true }
}

// WithDenoiseOptions forwards options to the noise reducer, for callers
// that need non-default gate tunables.
func WithDenoiseOptions(opts ...denoise.Option) Option {
	return func(p *Processor) { p.reducer = denoise.NewReducer(opts...) }
}

// Processor runs the individual transformations. It is stateless apart
// from its configuration and safe for concurrent use.
type Processor struct {
	reducer           *denoise.Reducer
	lenientSeparation bool
}

// New creates a Processor with default settings.
func New(opts ...Option) *Processor {
	p := &Processor{reducer: denoise.NewReducer()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ReduceNoise runs noise reduction at the given strength in [0, 1].
// The aggressive flag selects the multi-pass strategy.
func (p *Processor) ReduceNoise(buf *audio.Buffer, strength float64, aggressive bool) (*Result, error) {
	out, err := p.reducer.Reduce(buf, strength, aggressive)
	if err != nil {
		return nil, err
	}

	strategy := "standard"
	if aggressive {
		strategy = "aggressive"
	}
	return &Result{
		Buffers:     []*audio.Buffer{out},
		Description: fmt.Sprintf("noise reduction (%s, strength %.2f)", strategy, strength),
	}, nil
}

// Equalize applies the 3-band equalizer. Gains are in dB and must lie
// within the conventional +/-24 dB range.
func (p *Processor) Equalize(buf *audio.Buffer, lowGainDB, midGainDB, highGainDB float64) (*Result, error) {
	for _, g := range []float64{lowGainDB, midGainDB, highGainDB} {
		if err := checkRange("equalizer gain", g, -MaxGainDB, MaxGainDB); err != nil {
			return nil, err
		}
	}

	out, err := eq.Apply(buf, lowGainDB, midGainDB, highGainDB)
	if err != nil {
		return nil, err
	}
	return &Result{
		Buffers: []*audio.Buffer{out},
		Description: fmt.Sprintf("equalizer (low %+.1f dB, mid %+.1f dB, high %+.1f dB)",
			lowGainDB, midGainDB, highGainDB),
	}, nil
}

// ShiftPitchTempo applies a pitch shift in semitones followed by a
// tempo change. Semitones must lie within +/-24 and the tempo ratio
// within [0.25, 4].
func (p *Processor) ShiftPitchTempo(buf *audio.Buffer, semitones, tempoRatio float64) (*Result, error) {
	if err := checkRange("semitone shift", semitones, -MaxSemitones, MaxSemitones); err != nil {
		return nil, err
	}
	if err := checkRange("tempo ratio", tempoRatio, MinTempoRatio, MaxTempoRatio); err != nil {
		return nil, err
	}

	out, err := timescale.Shift(buf, semitones, tempoRatio)
	if err != nil {
		return nil, err
	}
	return &Result{
		Buffers:     []*audio.Buffer{out},
		Description: fmt.Sprintf("pitch/tempo shift (%+.1f semitones, tempo x%.2f)", semitones, tempoRatio),
	}, nil
}

// SeparateVocals splits a stereo buffer into a vocal (mid) and an
// instrumental (side) component. Buffers[0] is the vocal component and
// Buffers[1] the instrumental. Mono input fails with
// ErrUnsupportedChannelLayout unless the Processor was built with
// WithLenientSeparation.
func (p *Processor) SeparateVocals(buf *audio.Buffer) (*Result, error) {
	separate := stereo.Separate
	if p.lenientSeparation {
		separate = stereo.SeparateLenient
	}

	vocals, instrumental, err := separate(buf)
	if err != nil {
		return nil, err
	}
	return &Result{
		Buffers:     []*audio.Buffer{vocals, instrumental},
		Description: "vocal separation (mid/side)",
	}, nil
}

// NormalizeVolume normalizes buf to the target dBFS level, which must
// lie in [-60, 0].
func (p *Processor) NormalizeVolume(buf *audio.Buffer, targetDBFS float64) (*Result, error) {
	if err := checkRange("target level", targetDBFS, MinTargetDBFS, MaxTargetDBFS); err != nil {
		return nil, err
	}

	out, err := gain.NormalizeTo(buf, targetDBFS)
	if err != nil {
		return nil, err
	}
	return &Result{
		Buffers:     []*audio.Buffer{out},
		Description: fmt.Sprintf("volume normalization (target %.1f dBFS)", targetDBFS),
	}, nil
}

// AdjustVolume applies a fixed gain in dB within the conventional
// +/-24 dB range.
func (p *Processor) AdjustVolume(buf *audio.Buffer, db float64) (*Result, error) {
	if err := checkRange("volume adjustment", db, -MaxGainDB, MaxGainDB); err != nil {
		return nil, err
	}

	out, err := gain.Adjust(buf, db)
	if err != nil {
		return nil, err
	}
	return &Result{
		Buffers:     []*audio.Buffer{out},
		Description: fmt.Sprintf("volume adjustment (%+.1f dB)", db),
	}, nil
}

func checkRange(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return fmt.Errorf("%w: %s must be in [%g, %g]: %f",
			audio.ErrInvalidParameter, name, lo, hi, v)
	}
	return nil
}
