package gain

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-audiofx/dsp/audio"
	"github.com/cwbudde/algo-audiofx/internal/testutil"
)

func TestDbConversion(t *testing.T) {
	testutil.RequireNear(t, Db2Lin(0), 1, 1e-12)
	testutil.RequireNear(t, Db2Lin(20), 10, 1e-9)
	testutil.RequireNear(t, Db2Lin(-6.0205999), 0.5, 1e-6)
	testutil.RequireNear(t, Lin2Db(Db2Lin(-13.7)), -13.7, 1e-9)
}

func TestNormalizePeak(t *testing.T) {
	samples := testutil.DeterministicSine(440, 44100, 0.3, 4096)

	out := NormalizePeak(samples, 0.95)
	testutil.RequireNear(t, Peak(out), 0.95, 1e-9)

	// Silence passes through.
	silent := NormalizePeak(make([]float64, 128), 0.95)
	if Peak(silent) != 0 {
		t.Fatalf("silence should stay silent, peak %v", Peak(silent))
	}
}

func TestClipGuard(t *testing.T) {
	within := []float64{0.5, -0.9, 0.2}
	out := ClipGuard(within)
	testutil.RequireSliceNearlyEqual(t, out, within, 0)

	over := []float64{0.5, -2.0, 1.5}
	out = ClipGuard(over)
	testutil.RequireNear(t, Peak(out), 1, 1e-12)
	testutil.RequireNear(t, out[0], 0.25, 1e-12)
}

func TestDBFS(t *testing.T) {
	// Full-scale sine: RMS 1/sqrt(2) = -3.01 dBFS.
	buf := testutil.SineBuffer(440, 44100, 1.0, 44100)

	level, err := DBFS(buf)
	if err != nil {
		t.Fatalf("DBFS: %v", err)
	}
	testutil.RequireNear(t, level, -3.0103, 0.01)
}

func TestDBFS_Silence(t *testing.T) {
	buf, err := audio.New(44100, 1, 1024)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := DBFS(buf); !errors.Is(err, audio.ErrDegenerateSignal) {
		t.Fatalf("got %v, want ErrDegenerateSignal", err)
	}
}

func TestAdjust(t *testing.T) {
	buf := testutil.SineBuffer(440, 44100, 0.25, 4096)

	out, err := Adjust(buf, 6.0205999)
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	testutil.RequireNear(t, out.Peak(), 0.5, 1e-6)

	if _, err := Adjust(buf, math.Inf(1)); !errors.Is(err, audio.ErrInvalidParameter) {
		t.Fatalf("infinite gain: got %v, want ErrInvalidParameter", err)
	}
}

func TestNormalizeTo(t *testing.T) {
	buf := testutil.SineBuffer(440, 44100, 0.1, 44100)

	out, err := NormalizeTo(buf, -20)
	if err != nil {
		t.Fatalf("NormalizeTo: %v", err)
	}

	level, err := DBFS(out)
	if err != nil {
		t.Fatalf("DBFS: %v", err)
	}
	testutil.RequireNear(t, level, -20, 0.1)

	// Input untouched.
	testutil.RequireNear(t, buf.Peak(), 0.1, 1e-9)
}
