// Package stft provides short-time Fourier analysis and overlap-add
// synthesis over mono sample slices.
//
// Analysis uses a periodic Hann window. Default parameters across the
// processing packages are a window of 2048 samples with a hop of a
// quarter window; the noise reducer's strategies use their own sizes for
// finer frequency resolution.
package stft
