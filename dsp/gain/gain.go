// Package gain provides level measurement and gain operations: peak
// normalization, dB conversion, and dBFS-targeted volume adjustment.
package gain

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-audiofx/dsp/audio"
)

// Db2Lin converts a decibel value to a linear factor.
func Db2Lin(db float64) float64 {
	return math.Pow(10, db/20)
}

// Lin2Db converts a linear factor to decibels.
func Lin2Db(lin float64) float64 {
	return 20 * math.Log10(lin)
}

// Peak returns the maximum absolute value of samples.
func Peak(samples []float64) float64 {
	peak := 0.0
	for _, v := range samples {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
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

// NormalizePeak returns samples scaled so their peak hits target.
// A silent input is returned as an unscaled copy.
func NormalizePeak(samples []float64, target float64) []float64 {
	out := append([]float64(nil), samples...)

	peak := Peak(out)
	if peak == 0 {
		return out
	}

	scale := target / peak
	for i := range out {
		out[i] *= scale
	}
	return out
}

// ClipGuard returns samples scaled down to unity peak when the signal
// exceeds full scale, and an unscaled copy otherwise. Signals already
// within full scale pass through bit-identically.
func ClipGuard(samples []float64) []float64 {
	out := append([]float64(nil), samples...)

	peak := Peak(out)
	if peak <= 1 {
		return out
	}

	scale := 1 / peak
	for i := range out {
		out[i] *= scale
	}
	return out
}

// DBFS returns the RMS level of the buffer in decibels relative to full
// scale, across all channels. All-silence input fails with
// ErrDegenerateSignal: its level would be negative infinity.
func DBFS(buf *audio.Buffer) (float64, error) {
	if err := buf.Validate(); err != nil {
		return 0, err
	}

	sum := 0.0
	n := 0
	for _, ch := range buf.Data {
		for _, v := range ch {
			sum += v * v
		}
		n += len(ch)
	}
	if n == 0 || sum == 0 {
		return 0, fmt.Errorf("%w: dBFS of silence is undefined", audio.ErrDegenerateSignal)
	}

	return Lin2Db(math.Sqrt(sum / float64(n))), nil
}

// Adjust returns a copy of the buffer with a fixed gain in dB applied to
// every channel.
func Adjust(buf *audio.Buffer, db float64) (*audio.Buffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(db) || math.IsInf(db, 0) {
		return nil, fmt.Errorf("%w: gain must be finite: %f", audio.ErrInvalidParameter, db)
	}

	out := buf.Clone()
	scale := Db2Lin(db)
	for _, ch := range out.Data {
		for i := range ch {
			ch[i] *= scale
		}
	}
	return out, nil
}

// NormalizeTo returns a copy of the buffer gained so its overall RMS
// level hits targetDBFS.
func NormalizeTo(buf *audio.Buffer, targetDBFS float64) (*audio.Buffer, error) {
	level, err := DBFS(buf)
	if err != nil {
		return nil, err
	}

	return Adjust(buf, targetDBFS-level)
}
