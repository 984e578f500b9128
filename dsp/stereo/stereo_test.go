package stereo

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-audiofx/dsp/audio"
	"github.com/cwbudde/algo-audiofx/internal/testutil"
)

func TestSeparate_IdenticalChannels(t *testing.T) {
	const sr = 44100
	signal := testutil.DeterministicSine(440, sr, 0.5, 4096)
	buf := &audio.Buffer{
		Data:       [][]float64{signal, append([]float64(nil), signal...)},
		SampleRate: sr,
	}

	mid, side, err := Separate(buf)
	if err != nil {
		t.Fatalf("Separate: %v", err)
	}

	// Perfectly centered content lands entirely in the mid channel.
	testutil.RequireSliceNearlyEqual(t, mid.Data[0], signal, 0)
	for i, v := range side.Data[0] {
		if v != 0 {
			t.Fatalf("side[%d] = %v, want 0 for identical channels", i, v)
		}
	}
}

func TestSeparate_OppositeChannels(t *testing.T) {
	const sr = 44100
	signal := testutil.DeterministicSine(440, sr, 0.5, 4096)
	inverted := make([]float64, len(signal))
	for i, v := range signal {
		inverted[i] = -v
	}
	buf := &audio.Buffer{Data: [][]float64{signal, inverted}, SampleRate: sr}

	mid, side, err := Separate(buf)
	if err != nil {
		t.Fatalf("Separate: %v", err)
	}

	for i, v := range mid.Data[0] {
		if v != 0 {
			t.Fatalf("mid[%d] = %v, want 0 for out-of-phase channels", i, v)
		}
	}
	testutil.RequireSliceNearlyEqual(t, side.Data[0], signal, 0)
}

func TestSeparate_RoundTrip(t *testing.T) {
	buf := testutil.StereoSineBuffer(440, 523.25, 44100, 0.4, 4096)

	mid, side, err := Separate(buf)
	if err != nil {
		t.Fatalf("Separate: %v", err)
	}

	// mid+side reconstructs left, mid-side reconstructs right.
	left := make([]float64, buf.Len())
	right := make([]float64, buf.Len())
	for i := range left {
		left[i] = mid.Data[0][i] + side.Data[0][i]
		right[i] = mid.Data[0][i] - side.Data[0][i]
	}
	testutil.RequireSliceNearlyEqual(t, left, buf.Data[0], 1e-12)
	testutil.RequireSliceNearlyEqual(t, right, buf.Data[1], 1e-12)
}

func TestSeparate_RejectsMono(t *testing.T) {
	buf := testutil.SineBuffer(440, 44100, 0.5, 4096)

	_, _, err := Separate(buf)
	if !errors.Is(err, audio.ErrUnsupportedChannelLayout) {
		t.Fatalf("mono input: got %v, want ErrUnsupportedChannelLayout", err)
	}
}

func TestSeparateLenient_MonoFallback(t *testing.T) {
	buf := testutil.SineBuffer(440, 44100, 0.5, 4096)

	mid, side, err := SeparateLenient(buf)
	if err != nil {
		t.Fatalf("SeparateLenient: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, mid.Data[0], buf.Data[0], 0)
	if side.Len() != buf.Len() {
		t.Fatalf("side length = %d, want %d", side.Len(), buf.Len())
	}
	if side.Peak() != 0 {
		t.Fatalf("side peak = %v, want silence for mono input", side.Peak())
	}
}

func TestSeparate_NilBuffer(t *testing.T) {
	if _, _, err := Separate(nil); !errors.Is(err, audio.ErrInvalidParameter) {
		t.Fatalf("nil buffer: got %v, want ErrInvalidParameter", err)
	}
}
