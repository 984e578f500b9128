package design

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-audiofx/dsp/filter/biquad"
)

// responseAt evaluates the cascade magnitude response at freq.
func responseAt(sections []biquad.Coefficients, freq, sampleRate float64) float64 {
	w := 2 * math.Pi * freq / sampleRate
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	h := complex(1, 0)
	for _, s := range sections {
		num := complex(s.B0, 0) + complex(s.B1, 0)*z1 + complex(s.B2, 0)*z2
		den := complex(1, 0) + complex(s.A1, 0)*z1 + complex(s.A2, 0)*z2
		h *= num / den
	}

	return cmplx.Abs(h)
}

func TestButterworthLP_Response(t *testing.T) {
	const sr = 44100.0
	sections := ButterworthLP(1000, 4, sr)

	if len(sections) != 2 {
		t.Fatalf("sections: got %d, want 2", len(sections))
	}

	if g := responseAt(sections, 50, sr); math.Abs(g-1) > 1e-3 {
		t.Fatalf("passband gain at 50 Hz: %v", g)
	}
	if g := responseAt(sections, 1000, sr); math.Abs(g-1/math.Sqrt2) > 1e-2 {
		t.Fatalf("cutoff gain: %v, want ~0.707", g)
	}
	// 4th order: ~24 dB/octave.
	if g := responseAt(sections, 4000, sr); g > 0.01 {
		t.Fatalf("stopband gain at 4 kHz: %v", g)
	}
}

func TestButterworthHP_Response(t *testing.T) {
	const sr = 44100.0
	sections := ButterworthHP(1000, 4, sr)

	if g := responseAt(sections, 10000, sr); math.Abs(g-1) > 1e-3 {
		t.Fatalf("passband gain at 10 kHz: %v", g)
	}
	if g := responseAt(sections, 250, sr); g > 0.01 {
		t.Fatalf("stopband gain at 250 Hz: %v", g)
	}
}

func TestButterworthLP_OddOrder(t *testing.T) {
	const sr = 44100.0
	sections := ButterworthLP(1000, 5, sr)

	if len(sections) != 3 {
		t.Fatalf("sections: got %d, want 3", len(sections))
	}

	last := sections[len(sections)-1]
	if last.B2 != 0 || last.A2 != 0 {
		t.Fatalf("odd-order tail should be first-order: %+v", last)
	}

	if g := responseAt(sections, 50, sr); math.Abs(g-1) > 1e-3 {
		t.Fatalf("passband gain: %v", g)
	}
}

func TestButterworthBP_Response(t *testing.T) {
	const sr = 44100.0
	sections := ButterworthBP(300, 3000, 4, sr)

	if g := responseAt(sections, 1000, sr); math.Abs(g-1) > 0.05 {
		t.Fatalf("passband gain at 1 kHz: %v", g)
	}
	if g := responseAt(sections, 50, sr); g > 0.01 {
		t.Fatalf("low stopband gain at 50 Hz: %v", g)
	}
	if g := responseAt(sections, 12000, sr); g > 0.01 {
		t.Fatalf("high stopband gain at 12 kHz: %v", g)
	}
}

func TestDesign_InvalidInputs(t *testing.T) {
	if got := ButterworthLP(1000, 0, 44100); got != nil {
		t.Fatalf("order 0: got %v, want nil", got)
	}
	if got := ButterworthBP(3000, 300, 4, 44100); got != nil {
		t.Fatalf("inverted band edges: got %v, want nil", got)
	}

	// Out-of-range cutoff yields zeroed coefficients rather than NaN.
	c := Lowpass(30000, 1/math.Sqrt2, 44100)
	if c != (biquad.Coefficients{}) {
		t.Fatalf("cutoff above Nyquist: got %+v, want zero", c)
	}
}
