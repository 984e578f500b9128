package denoise

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-audiofx/dsp/audio"
	"github.com/cwbudde/algo-audiofx/dsp/dynamics"
	"github.com/cwbudde/algo-audiofx/dsp/filterbank"
	"github.com/cwbudde/algo-audiofx/dsp/gain"
	"github.com/cwbudde/algo-audiofx/dsp/stft"
)

const wienerEps = 1e-12

// Reducer attenuates background noise in an audio buffer.
//
// Two strategies are available per call: the standard multi-band
// spectral gate, and an aggressive three-pass chain (spectral
// subtraction, gating at reduced strength, Wiener filtering) for very
// noisy material. Both share a post-processing stage: zero-phase
// high-pass rumble removal, gentle compression, and peak normalization.
type Reducer struct {
	tun Tunables
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithTunables replaces the full tunable set.
func WithTunables(t Tunables) Option {
	return func(r *Reducer) { r.tun = t }
}

// WithGateFloor overrides the minimum gate value applied to bins below
// threshold.
func WithGateFloor(floor float64) Option {
	return func(r *Reducer) {
		if floor > 0 && floor < 1 {
			r.tun.GateFloor = floor
		}
	}
}

// WithGatePercentiles overrides the per-band gate percentiles
// (low, mid, high), in percent.
func WithGatePercentiles(low, mid, high float64) Option {
	return func(r *Reducer) {
		r.tun.GatePercentiles = [3]float64{low, mid, high}
	}
}

// NewReducer creates a Reducer with default tunables.
func NewReducer(opts ...Option) *Reducer {
	r := &Reducer{tun: DefaultTunables()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Tunables returns the active tunable set.
func (r *Reducer) Tunables() Tunables { return r.tun }

// Reduce attenuates noise in buf and returns a new buffer.
//
// strength in [0, 1] scales the attenuation: 0 is near-identity (modulo
// the unconditional post-processing normalization), 1 is maximum.
// aggressive selects the three-pass strategy for very noisy input.
func (r *Reducer) Reduce(buf *audio.Buffer, strength float64, aggressive bool) (*audio.Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if strength < 0 || strength > 1 || math.IsNaN(strength) {
		return nil, fmt.Errorf("%w: noise reduction strength must be in [0, 1]: %f",
			audio.ErrInvalidParameter, strength)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%w: empty buffer", audio.ErrInvalidParameter)
	}

	out := &audio.Buffer{SampleRate: buf.SampleRate, Data: make([][]float64, 0, buf.Channels())}

	for ch, samples := range buf.Data {
		reduced, err := r.reduceChannel(samples, buf.SampleRate, strength, aggressive)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		out.Data = append(out.Data, reduced)
	}

	return out, nil
}

func (r *Reducer) reduceChannel(samples []float64, sampleRate int, strength float64, aggressive bool) ([]float64, error) {
	var (
		x   = samples
		err error
	)

	if aggressive {
		if x, err = r.spectralSubtraction(x, sampleRate, strength); err != nil {
			return nil, err
		}
		if x, err = r.spectralGate(x, sampleRate, strength*0.7); err != nil {
			return nil, err
		}
		if x, err = r.wienerFilter(x); err != nil {
			return nil, err
		}
	} else {
		if x, err = r.spectralGate(x, sampleRate, strength); err != nil {
			return nil, err
		}
	}

	return r.postProcess(x, sampleRate)
}

// spectralGate applies multi-band soft spectral gating. Each of three
// frequency regions gets its own magnitude percentile threshold; bins
// above threshold pass at unity, bins below are attenuated toward the
// gate floor. The binary mask is smoothed with a 3x3 median filter
// before interpolation to avoid per-bin flicker (musical noise).
func (r *Reducer) spectralGate(samples []float64, sampleRate int, strength float64) ([]float64, error) {
	t := r.tun

	frame, err := stft.Analyze(samples, t.GateWindowSize, t.GateHopSize)
	if err != nil {
		return nil, err
	}

	mags := frame.Magnitudes()
	numBins := frame.NumBins()

	lowBins := clampBins(int(t.BandEdgesHz[0]*float64(t.GateWindowSize)/float64(sampleRate)), numBins)
	midBins := clampBins(int(t.BandEdgesHz[1]*float64(t.GateWindowSize)/float64(sampleRate)), numBins)
	if midBins < lowBins {
		midBins = lowBins
	}

	// Higher strength lowers the percentile, gating more bins; higher
	// bands start from a higher percentile since they tend to carry
	// more noise than content.
	lowTh := bandPercentile(mags, 0, lowBins, t.GatePercentiles[0]*(1-strength))
	midTh := bandPercentile(mags, lowBins, midBins, t.GatePercentiles[1]*(1-strength))
	highTh := bandPercentile(mags, midBins, numBins, t.GatePercentiles[2]*(1-strength))

	mask := make([][]float64, len(mags))
	for ti := range mags {
		mask[ti] = make([]float64, numBins)
		for k := range mags[ti] {
			th := highTh
			switch {
			case k < lowBins:
				th = lowTh
			case k < midBins:
				th = midTh
			}
			if mags[ti][k] > th {
				mask[ti][k] = 1
			}
		}
	}

	smooth := medianFilter3x3(mask)

	floor := t.GateFloor
	for ti := range frame.Bins {
		for k := range frame.Bins[ti] {
			g := floor + (1-floor)*smooth[ti][k]
			frame.Bins[ti][k] *= complex(g, 0)
		}
	}

	return stft.Synthesize(frame)
}

// spectralSubtraction estimates a noise magnitude spectrum from the
// leading frames and subtracts strength times that spectrum from every
// frame, flooring each bin at a fraction of its original magnitude so no
// bin goes negative. Phase is kept unchanged.
func (r *Reducer) spectralSubtraction(samples []float64, sampleRate int, strength float64) ([]float64, error) {
	t := r.tun
	hop := t.SubtractionWindowSize / 4

	frame, err := stft.Analyze(samples, t.SubtractionWindowSize, hop)
	if err != nil {
		return nil, err
	}

	noiseFrames := int(t.NoiseEstimateSeconds * float64(sampleRate) / float64(hop))
	if noiseFrames < 1 {
		noiseFrames = 1
	}
	if noiseFrames > frame.NumFrames() {
		noiseFrames = frame.NumFrames()
	}

	mags := frame.Magnitudes()
	numBins := frame.NumBins()

	noise := make([]float64, numBins)
	for ti := range noiseFrames {
		for k := range noise {
			noise[k] += mags[ti][k]
		}
	}
	for k := range noise {
		noise[k] /= float64(noiseFrames)
	}

	for ti := range frame.Bins {
		for k, c := range frame.Bins[ti] {
			mag := mags[ti][k]
			clean := mag - strength*noise[k]
			if minMag := t.SubtractionFloor * mag; clean < minMag {
				clean = minMag
			}
			if mag > wienerEps {
				frame.Bins[ti][k] = c * complex(clean/mag, 0)
			}
		}
	}

	return stft.Synthesize(frame)
}

// wienerFilter estimates a stationary noise power from the quieter
// frames and applies the Wiener gain power/(power+noisePower) per bin,
// floored to avoid over-suppression.
func (r *Reducer) wienerFilter(samples []float64) ([]float64, error) {
	t := r.tun
	hop := t.WienerWindowSize / 4

	frame, err := stft.Analyze(samples, t.WienerWindowSize, hop)
	if err != nil {
		return nil, err
	}

	powers := frame.Powers()

	framePower := make([]float64, len(powers))
	for ti, p := range powers {
		sum := 0.0
		for _, v := range p {
			sum += v
		}
		framePower[ti] = sum / float64(len(p))
	}
	noisePower := percentile(framePower, t.WienerNoisePercentile)

	floor := t.WienerFloor
	for ti := range frame.Bins {
		for k := range frame.Bins[ti] {
			p := powers[ti][k]
			denom := p + noisePower
			g := floor
			if denom > wienerEps {
				g = p / denom
				if g < floor {
					g = floor
				}
			}
			frame.Bins[ti][k] *= complex(g, 0)
		}
	}

	return stft.Synthesize(frame)
}

// postProcess removes low-frequency rumble with a zero-phase high-pass,
// evens out the level with a gentle compressor, and peak-normalizes.
// Normalization changes overall loudness; that is expected behavior, not
// a defect.
func (r *Reducer) postProcess(samples []float64, sampleRate int) ([]float64, error) {
	t := r.tun

	spec, err := filterbank.Design(filterbank.DefaultOrder, filterbank.Highpass,
		[]float64{t.HighPassHz}, float64(sampleRate))
	if err != nil {
		return nil, err
	}
	x := spec.ApplyZeroPhase(samples)

	comp, err := dynamics.NewCompressor(t.CompressorThreshold, t.CompressorRatio)
	if err != nil {
		return nil, err
	}
	x = comp.Process(x)

	return gain.NormalizePeak(x, t.NormalizeTarget), nil
}

func clampBins(n, numBins int) int {
	if n < 0 {
		return 0
	}
	if n > numBins {
		return numBins
	}
	return n
}

// bandPercentile computes the pct-th percentile of all magnitudes whose
// bin index falls in [from, to), across every frame. Returns 0 for an
// empty region, which leaves that region ungated.
func bandPercentile(mags [][]float64, from, to int, pct float64) float64 {
	if from >= to || len(mags) == 0 {
		return 0
	}

	values := make([]float64, 0, len(mags)*(to-from))
	for ti := range mags {
		values = append(values, mags[ti][from:to]...)
	}

	return percentile(values, pct)
}

// percentile returns the pct-th percentile (in percent) of values.
func percentile(values []float64, pct float64) float64 {
	if len(values) == 0 {
		return 0
	}

	p := pct / 100
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// medianFilter3x3 smooths a (frame, bin) matrix with a 3x3 median
// filter, replicating edge values at the borders.
func medianFilter3x3(m [][]float64) [][]float64 {
	rows := len(m)
	if rows == 0 {
		return nil
	}
	cols := len(m[0])

	out := make([][]float64, rows)
	var window [9]float64

	for i := range m {
		out[i] = make([]float64, cols)
		for j := range m[i] {
			n := 0
			for di := -1; di <= 1; di++ {
				ii := clampIndex(i+di, rows)
				for dj := -1; dj <= 1; dj++ {
					window[n] = m[ii][clampIndex(j+dj, cols)]
					n++
				}
			}
			out[i][j] = median9(window)
		}
	}

	return out
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func median9(w [9]float64) float64 {
	// Insertion sort; 9 elements, hot path.
	for i := 1; i < len(w); i++ {
		v := w[i]
		j := i - 1
		for j >= 0 && w[j] > v {
			w[j+1] = w[j]
			j--
		}
		w[j+1] = v
	}
	return w[4]
}
