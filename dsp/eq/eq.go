// Package eq implements a 3-band parametric equalizer over the fixed
// 300 Hz / 3 kHz band split.
package eq

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-audiofx/dsp/audio"
	"github.com/cwbudde/algo-audiofx/dsp/filterbank"
	"github.com/cwbudde/algo-audiofx/dsp/gain"
)

// Apply returns a copy of buf with independent gain applied to the low
// (below 300 Hz), mid (300 Hz to 3 kHz), and high (above 3 kHz) bands.
//
// For each non-zero gain the band is extracted with a causal order-4
// Butterworth filter, scaled, and its difference to the unscaled band is
// added back to the running signal, so a 0 dB gain is a bit-exact no-op
// for that band. After all bands are applied the result passes a clip
// guard: it is scaled down only when its peak exceeds full scale, which
// preserves the no-op property when nothing clips.
func Apply(buf *audio.Buffer, lowGainDB, midGainDB, highGainDB float64) (*audio.Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	for _, g := range []float64{lowGainDB, midGainDB, highGainDB} {
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return nil, fmt.Errorf("%w: equalizer gain must be finite: %f", audio.ErrInvalidParameter, g)
		}
	}
	if buf.Peak() == 0 {
		return nil, fmt.Errorf("%w: equalizer input has no non-zero samples", audio.ErrDegenerateSignal)
	}

	sampleRate := float64(buf.SampleRate)

	bands := []struct {
		gainDB  float64
		band    filterbank.Band
		cutoffs []float64
	}{
		{lowGainDB, filterbank.Lowpass, []float64{filterbank.LowBandEdgeHz}},
		{highGainDB, filterbank.Highpass, []float64{filterbank.HighBandEdgeHz}},
		{midGainDB, filterbank.Bandpass, []float64{filterbank.LowBandEdgeHz, filterbank.HighBandEdgeHz}},
	}

	out := buf.Clone()

	for _, b := range bands {
		if b.gainDB == 0 {
			continue
		}

		spec, err := filterbank.Design(filterbank.DefaultOrder, b.band, b.cutoffs, sampleRate)
		if err != nil {
			return nil, err
		}

		scale := gain.Db2Lin(b.gainDB) - 1
		for _, ch := range out.Data {
			band := spec.Apply(ch)
			for i := range ch {
				ch[i] += scale * band[i]
			}
		}
	}

	// One common clip-guard scale across channels keeps the stereo
	// balance intact.
	if peak := out.Peak(); peak > 1 {
		scale := 1 / peak
		for _, ch := range out.Data {
			for i := range ch {
				ch[i] *= scale
			}
		}
	}

	return out, nil
}
