package denoise

// Tunables holds the empirical constants of the noise reduction chain.
// The defaults reproduce the behavior the chain was tuned with; they are
// exposed as configuration rather than hard constants so the reducer can
// be adapted to material the defaults were not tuned on.
type Tunables struct {
	// GatePercentiles are the base magnitude percentiles (in percent)
	// for the low, mid, and high gate regions. Strength scales them
	// down: the effective percentile is base*(1-strength).
	GatePercentiles [3]float64

	// BandEdgesHz splits the spectrum into the three gate regions.
	BandEdgesHz [2]float64

	// GateFloor is the minimum gate value for bins below threshold;
	// bins are attenuated toward this floor instead of being zeroed.
	GateFloor float64

	// GateWindowSize and GateHopSize are the analysis parameters of the
	// gating pass. The large window trades time resolution for the
	// frequency resolution the per-band thresholds need.
	GateWindowSize int
	GateHopSize    int

	// NoiseEstimateSeconds is the leading span averaged into the noise
	// spectrum for spectral subtraction.
	NoiseEstimateSeconds float64

	// SubtractionFloor keeps each bin at this fraction of its original
	// magnitude after subtraction.
	SubtractionFloor float64

	// SubtractionWindowSize is the analysis window of the subtraction pass.
	SubtractionWindowSize int

	// WienerWindowSize is the analysis window of the Wiener pass.
	WienerWindowSize int

	// WienerNoisePercentile selects the frame-power percentile (in
	// percent) used as the stationary noise power estimate.
	WienerNoisePercentile float64

	// WienerFloor is the minimum Wiener gain.
	WienerFloor float64

	// HighPassHz is the zero-phase rumble cutoff of the post stage.
	HighPassHz float64

	// CompressorThreshold and CompressorRatio shape the post compressor.
	CompressorThreshold float64
	CompressorRatio     float64

	// NormalizeTarget is the peak the post stage normalizes to.
	NormalizeTarget float64
}

// DefaultTunables returns the tuned default constants.
func DefaultTunables() Tunables {
	return Tunables{
		GatePercentiles:       [3]float64{15, 25, 35},
		BandEdgesHz:           [2]float64{1000, 8000},
		GateFloor:             0.1,
		GateWindowSize:        4096,
		GateHopSize:           1024,
		NoiseEstimateSeconds:  0.5,
		SubtractionFloor:      0.1,
		SubtractionWindowSize: 2048,
		WienerWindowSize:      1024,
		WienerNoisePercentile: 20,
		WienerFloor:           0.1,
		HighPassHz:            80,
		CompressorThreshold:   0.7,
		CompressorRatio:       4,
		NormalizeTarget:       0.95,
	}
}
