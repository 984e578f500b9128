// Package timescale changes the tempo and pitch of audio with a
// phase-vocoder running on the short-time Fourier transform.
//
// Tempo changes re-space the analysis frames and propagate bin phases by
// their measured instantaneous frequency, so the pitch of the material is
// preserved. Pitch changes are built on top of that: the signal is
// stretched by the pitch factor and then resampled back to its original
// length, trading the surplus duration for a frequency shift.
package timescale

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-audiofx/dsp/audio"
	"github.com/cwbudde/algo-audiofx/dsp/interp"
	"github.com/cwbudde/algo-audiofx/dsp/stft"
)

// Analysis parameters of the phase vocoder. 75% overlap keeps the
// overlap-add window normalization constant.
const (
	WindowSize = 2048
	HopSize    = 512
)

// SemitonesPerOctave converts between semitone offsets and frequency
// ratios: a shift of s semitones scales frequency by 2^(s/12).
const SemitonesPerOctave = 12.0

// Stretch changes the tempo of buf by ratio without changing pitch.
//
// A ratio above 1 speeds the material up, below 1 slows it down; the
// output holds round(Len/ratio) samples per channel. Channels are
// processed independently.
func Stretch(buf *audio.Buffer, ratio float64) (*audio.Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if err := validateRatio(ratio); err != nil {
		return nil, err
	}

	if ratio == 1 {
		return buf.Clone(), nil
	}

	out := &audio.Buffer{
		Data:       make([][]float64, buf.Channels()),
		SampleRate: buf.SampleRate,
	}
	for ch, samples := range buf.Data {
		stretched, err := stretchChannel(samples, ratio)
		if err != nil {
			return nil, fmt.Errorf("stretch channel %d: %w", ch, err)
		}
		out.Data[ch] = stretched
	}

	return out, nil
}

// PitchShift shifts the pitch of buf by semitones (positive raises it)
// while keeping the duration unchanged.
func PitchShift(buf *audio.Buffer, semitones float64) (*audio.Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(semitones) || math.IsInf(semitones, 0) {
		return nil, fmt.Errorf("%w: semitone offset must be finite: %f",
			audio.ErrInvalidParameter, semitones)
	}

	if semitones == 0 {
		return buf.Clone(), nil
	}

	// Stretch the duration by the pitch factor, then resample back to
	// the source length. The resample replays the stretched material at
	// factor times the rate, which moves every frequency by factor.
	factor := math.Pow(2, semitones/SemitonesPerOctave)
	stretched, err := Stretch(buf, 1/factor)
	if err != nil {
		return nil, err
	}

	out := &audio.Buffer{
		Data:       make([][]float64, buf.Channels()),
		SampleRate: buf.SampleRate,
	}
	for ch, samples := range stretched.Data {
		resampled, err := interp.ResampleToLength(samples, buf.Len())
		if err != nil {
			return nil, fmt.Errorf("pitch shift channel %d: %w", ch, err)
		}
		out.Data[ch] = resampled
	}

	return out, nil
}

// Shift applies a pitch shift of semitones followed by a tempo change of
// tempoRatio. With semitones 0 and tempoRatio 1 the input is returned as
// an unmodified copy.
func Shift(buf *audio.Buffer, semitones, tempoRatio float64) (*audio.Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if err := validateRatio(tempoRatio); err != nil {
		return nil, err
	}
	if math.IsNaN(semitones) || math.IsInf(semitones, 0) {
		return nil, fmt.Errorf("%w: semitone offset must be finite: %f",
			audio.ErrInvalidParameter, semitones)
	}

	if semitones == 0 && tempoRatio == 1 {
		return buf.Clone(), nil
	}

	out := buf
	if semitones != 0 {
		shifted, err := PitchShift(out, semitones)
		if err != nil {
			return nil, err
		}
		out = shifted
	}
	if tempoRatio != 1 {
		stretched, err := Stretch(out, tempoRatio)
		if err != nil {
			return nil, err
		}
		out = stretched
	}

	return out, nil
}

func validateRatio(ratio float64) error {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio <= 0 {
		return fmt.Errorf("%w: tempo ratio must be positive and finite: %f",
			audio.ErrInvalidParameter, ratio)
	}
	return nil
}

// stretchChannel runs the phase vocoder on one channel.
//
// Output frame t reads the analysis frames around position t*ratio:
// magnitudes are interpolated linearly between the two neighbors, while
// phases advance by the instantaneous frequency measured between them.
func stretchChannel(samples []float64, ratio float64) ([]float64, error) {
	f, err := stft.Analyze(samples, WindowSize, HopSize)
	if err != nil {
		return nil, err
	}

	numFrames := f.NumFrames()
	numBins := f.NumBins()

	outFrames := int(float64(numFrames) / ratio)
	if outFrames < 1 {
		outFrames = 1
	}

	// Expected phase advance of bin k over one hop.
	omega := make([]float64, numBins)
	for k := range omega {
		omega[k] = 2 * math.Pi * float64(HopSize) * float64(k) / float64(WindowSize)
	}

	phase := make([]float64, numBins)
	for k := range phase {
		phase[k] = cmplx.Phase(f.Bins[0][k])
	}

	bins := make([][]complex128, outFrames)
	for t := range outFrames {
		pos := float64(t) * ratio
		lo := int(pos)
		if lo > numFrames-1 {
			lo = numFrames - 1
		}
		hi := lo + 1
		if hi > numFrames-1 {
			hi = numFrames - 1
		}
		frac := pos - float64(lo)

		frame := make([]complex128, numBins)
		for k := range numBins {
			m0 := cmplx.Abs(f.Bins[lo][k])
			m1 := cmplx.Abs(f.Bins[hi][k])
			frame[k] = cmplx.Rect(m0+frac*(m1-m0), phase[k])

			// Deviation of the measured advance from the bin center
			// frequency, wrapped into one cycle.
			delta := wrapPhase(cmplx.Phase(f.Bins[hi][k]) - cmplx.Phase(f.Bins[lo][k]) - omega[k])
			phase[k] += omega[k] + delta
		}
		bins[t] = frame
	}

	outLen := int(math.Round(float64(len(samples)) / ratio))
	if outLen < 1 {
		outLen = 1
	}

	return stft.Synthesize(&stft.Frame{
		Bins:       bins,
		WindowSize: WindowSize,
		HopSize:    HopSize,
		SourceLen:  outLen,
	})
}

// wrapPhase maps p into (-pi, pi].
func wrapPhase(p float64) float64 {
	p = math.Mod(p+math.Pi, 2*math.Pi)
	if p <= 0 {
		p += 2 * math.Pi
	}
	return p - math.Pi
}
