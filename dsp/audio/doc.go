// Package audio defines the sample buffer type and error taxonomy shared
// by all processing packages.
//
// A [Buffer] is planar float64 PCM: one slice per channel, equal sample
// counts across channels, full scale at +/-1.0. Decoding bytes into a
// Buffer and encoding one back out is the responsibility of boundary
// collaborators (see the wavio package); the processing packages consume
// and produce only Buffers and scalar parameters.
package audio
