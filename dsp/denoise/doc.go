// Package denoise reduces background noise via spectral gating, with an
// aggressive multi-pass mode adding spectral subtraction and Wiener
// filtering for very noisy material.
package denoise
