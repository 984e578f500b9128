package audio

import "fmt"

// Buffer holds PCM audio as one float64 slice per channel.
//
// The layout is planar (non-interleaved): Data[ch][i] is sample i of
// channel ch. Every channel must hold the same number of samples for the
// lifetime of the buffer. Transformations in this module never mutate a
// Buffer in place; they consume one and produce a new one.
type Buffer struct {
	Data       [][]float64
	SampleRate int
}

// New allocates a zeroed buffer with the given shape.
func New(sampleRate, channels, length int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive: %d", ErrInvalidParameter, sampleRate)
	}
	if channels < 1 {
		return nil, fmt.Errorf("%w: channel count must be >= 1: %d", ErrInvalidParameter, channels)
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative length: %d", ErrInvalidParameter, length)
	}

	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, length)
	}

	return &Buffer{Data: data, SampleRate: sampleRate}, nil
}

// FromMono wraps a single sample slice as a mono buffer.
// The slice is used directly, not copied.
func FromMono(samples []float64, sampleRate int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive: %d", ErrInvalidParameter, sampleRate)
	}

	return &Buffer{Data: [][]float64{samples}, SampleRate: sampleRate}, nil
}

// Validate checks the buffer shape invariants: positive sample rate, at
// least one channel, and identical sample counts across channels.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidParameter)
	}
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive: %d", ErrInvalidParameter, b.SampleRate)
	}
	if len(b.Data) < 1 {
		return fmt.Errorf("%w: buffer has no channels", ErrInvalidParameter)
	}

	n := len(b.Data[0])
	for ch := 1; ch < len(b.Data); ch++ {
		if len(b.Data[ch]) != n {
			return fmt.Errorf("%w: channel %d has %d samples, channel 0 has %d",
				ErrInvalidParameter, ch, len(b.Data[ch]), n)
		}
	}

	return nil
}

// Channels returns the channel count.
func (b *Buffer) Channels() int { return len(b.Data) }

// Len returns the per-channel sample count.
func (b *Buffer) Len() int {
	if len(b.Data) == 0 {
		return 0
	}
	return len(b.Data[0])
}

// Duration returns the buffer duration in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Len()) / float64(b.SampleRate)
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	data := make([][]float64, len(b.Data))
	for ch := range b.Data {
		data[ch] = append([]float64(nil), b.Data[ch]...)
	}
	return &Buffer{Data: data, SampleRate: b.SampleRate}
}

// Peak returns the maximum absolute sample value across all channels.
func (b *Buffer) Peak() float64 {
	peak := 0.0
	for _, ch := range b.Data {
		for _, v := range ch {
			if v < 0 {
				v = -v
			}
			if v > peak {
				peak = v
			}
		}
	}
	return peak
}
