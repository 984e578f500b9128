// Package stereo provides mid/side decomposition of stereo audio.
package stereo

import (
	"fmt"

	"github.com/cwbudde/algo-audiofx/dsp/audio"
)

// Separate splits a stereo buffer into its mid and side components and
// returns both as mono buffers of the same length and sample rate.
//
// The mid channel (L+R)/2 concentrates center-panned content such as
// lead vocals; the side channel (L-R)/2 holds what differs between the
// channels, typically the instrumental spread. For identical left and
// right channels the side output is exactly zero. Inputs that are not
// two-channel are rejected with ErrUnsupportedChannelLayout; use
// SeparateLenient to accept mono material.
func Separate(buf *audio.Buffer) (mid, side *audio.Buffer, err error) {
	if err := buf.Validate(); err != nil {
		return nil, nil, err
	}
	if buf.Channels() != 2 {
		return nil, nil, fmt.Errorf("%w: mid/side separation needs 2 channels, got %d",
			audio.ErrUnsupportedChannelLayout, buf.Channels())
	}

	left, right := buf.Data[0], buf.Data[1]
	midData := make([]float64, len(left))
	sideData := make([]float64, len(left))
	for i := range left {
		midData[i] = (left[i] + right[i]) / 2
		sideData[i] = (left[i] - right[i]) / 2
	}

	mid = &audio.Buffer{Data: [][]float64{midData}, SampleRate: buf.SampleRate}
	side = &audio.Buffer{Data: [][]float64{sideData}, SampleRate: buf.SampleRate}
	return mid, side, nil
}

// SeparateLenient behaves like Separate but accepts mono input: with one
// channel there is no side information, so the input is returned as the
// mid component and the side component is silence of the same length.
func SeparateLenient(buf *audio.Buffer) (mid, side *audio.Buffer, err error) {
	if err := buf.Validate(); err != nil {
		return nil, nil, err
	}

	if buf.Channels() == 1 {
		mid = buf.Clone()
		side, err = audio.New(buf.SampleRate, 1, buf.Len())
		if err != nil {
			return nil, nil, err
		}
		return mid, side, nil
	}

	return Separate(buf)
}
