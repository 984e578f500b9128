package denoise

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-audiofx/dsp/audio"
	"github.com/cwbudde/algo-audiofx/internal/testutil"
)

func TestReduce_InvalidStrength(t *testing.T) {
	r := NewReducer()
	buf := testutil.SineBuffer(440, 44100, 0.5, 4096)

	for _, strength := range []float64{-0.1, 1.1, math.NaN()} {
		if _, err := r.Reduce(buf, strength, false); !errors.Is(err, audio.ErrInvalidParameter) {
			t.Fatalf("strength %v: got %v, want ErrInvalidParameter", strength, err)
		}
	}
}

func TestReduce_InvalidBuffer(t *testing.T) {
	r := NewReducer()

	if _, err := r.Reduce(nil, 0.5, false); !errors.Is(err, audio.ErrInvalidParameter) {
		t.Fatalf("nil buffer: got %v", err)
	}

	empty, _ := audio.New(44100, 1, 0)
	if _, err := r.Reduce(empty, 0.5, false); !errors.Is(err, audio.ErrInvalidParameter) {
		t.Fatalf("empty buffer: got %v", err)
	}
}

func TestReduce_ZeroStrengthNearIdentity(t *testing.T) {
	const sr = 44100
	r := NewReducer()

	// Amplitude stays under the compressor threshold so the only level
	// change is the final normalization to the tunable peak target.
	buf := testutil.SineBuffer(440, sr, 0.3, sr)

	out, err := r.Reduce(buf, 0, false)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}

	if out.Len() != buf.Len() {
		t.Fatalf("length: got %d, want %d", out.Len(), buf.Len())
	}

	// At minimum strength the gate passes essentially all energy; the
	// output RMS therefore matches the input RMS scaled by the peak
	// normalization, within a small tolerance for the gated leakage
	// bins and the 80 Hz cleanup filter.
	inRMS := testutil.RMS(buf.Data[0])
	wantRMS := inRMS * r.Tunables().NormalizeTarget / 0.3
	gotRMS := testutil.RMS(out.Data[0])

	if math.Abs(gotRMS-wantRMS)/wantRMS > 0.02 {
		t.Fatalf("RMS: got %v, want %v within 2%%", gotRMS, wantRMS)
	}
}

func TestReduce_StandardEndToEnd(t *testing.T) {
	const sr = 44100
	r := NewReducer()

	// 1 s, 440 Hz stereo sine, identical channels.
	mono := testutil.DeterministicSine(440, sr, 0.5, sr)
	buf := &audio.Buffer{
		Data:       [][]float64{append([]float64(nil), mono...), append([]float64(nil), mono...)},
		SampleRate: sr,
	}

	out, err := r.Reduce(buf, 0.5, false)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}

	if out.Channels() != 2 {
		t.Fatalf("channels: got %d, want 2", out.Channels())
	}
	if out.Len() != buf.Len() {
		t.Fatalf("length: got %d, want %d", out.Len(), buf.Len())
	}
	if peak := out.Peak(); peak > 0.95+1e-9 {
		t.Fatalf("peak %v above normalization ceiling", peak)
	}
	if peak := out.Peak(); peak == 0 {
		t.Fatal("output is identically zero")
	}
	testutil.RequireFinite(t, out.Data[0])
	testutil.RequireFinite(t, out.Data[1])
}

func TestReduce_AggressiveRemovesMoreNoise(t *testing.T) {
	const sr = 44100

	// Tone plus broadband noise; noise-only lead-in feeds the
	// subtraction pass's noise estimate.
	tone := testutil.DeterministicSine(440, sr, 0.4, sr*2)
	noise := testutil.DeterministicNoise(3, 0.1, sr*2)
	samples := make([]float64, sr*2)
	for i := range samples {
		samples[i] = noise[i]
		if i >= sr {
			samples[i] += tone[i]
		}
	}
	buf, _ := audio.FromMono(samples, sr)

	r := NewReducer()

	standard, err := r.Reduce(buf, 0.8, false)
	if err != nil {
		t.Fatalf("standard: %v", err)
	}
	aggressive, err := r.Reduce(buf, 0.8, true)
	if err != nil {
		t.Fatalf("aggressive: %v", err)
	}

	// Compare residual level in the noise-only region, relative to the
	// tone region, since both outputs are re-normalized.
	ratio := func(b *audio.Buffer) float64 {
		lead := testutil.RMS(b.Data[0][sr/10 : sr-sr/10])
		tonePart := testutil.RMS(b.Data[0][sr+sr/10 : 2*sr-sr/10])
		return lead / tonePart
	}

	if ratio(aggressive) >= ratio(standard) {
		t.Fatalf("aggressive residual ratio %v not below standard %v",
			ratio(aggressive), ratio(standard))
	}
}

func TestReduce_SilenceStaysFinite(t *testing.T) {
	r := NewReducer()
	buf, _ := audio.New(44100, 1, 44100)

	out, err := r.Reduce(buf, 0.5, true)
	if err != nil {
		t.Fatalf("Reduce on silence: %v", err)
	}

	testutil.RequireFinite(t, out.Data[0])
	if peak := out.Peak(); peak != 0 {
		t.Fatalf("silence gained energy: peak %v", peak)
	}
}

func TestReducer_Options(t *testing.T) {
	r := NewReducer(
		WithGateFloor(0.25),
		WithGatePercentiles(10, 20, 30),
	)

	tun := r.Tunables()
	if tun.GateFloor != 0.25 {
		t.Fatalf("GateFloor: got %v, want 0.25", tun.GateFloor)
	}
	if tun.GatePercentiles != [3]float64{10, 20, 30} {
		t.Fatalf("GatePercentiles: got %v", tun.GatePercentiles)
	}

	custom := DefaultTunables()
	custom.NormalizeTarget = 0.5
	r = NewReducer(WithTunables(custom))

	buf := testutil.SineBuffer(440, 44100, 0.3, 44100)
	out, err := r.Reduce(buf, 0.2, false)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	testutil.RequireNear(t, out.Peak(), 0.5, 0.02)
}

func TestMedianFilter3x3(t *testing.T) {
	// A lone spike in a field of zeros is removed; a solid block survives.
	m := [][]float64{
		{0, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 0},
	}
	out := medianFilter3x3(m)
	if out[1][1] != 0 {
		t.Fatalf("isolated spike survived: %v", out[1][1])
	}

	solid := [][]float64{
		{1, 1, 1},
		{1, 1, 1},
		{1, 1, 1},
	}
	out = medianFilter3x3(solid)
	for i := range out {
		for j := range out[i] {
			if out[i][j] != 1 {
				t.Fatalf("solid block eroded at %d,%d", i, j)
			}
		}
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}

	if got := percentile(values, 0); got != 1 {
		t.Fatalf("0th percentile: got %v, want 1", got)
	}
	if got := percentile(values, 100); got != 5 {
		t.Fatalf("100th percentile: got %v, want 5", got)
	}
	mid := percentile(values, 50)
	if mid < 2 || mid > 4 {
		t.Fatalf("50th percentile: got %v, want within [2, 4]", mid)
	}
}
