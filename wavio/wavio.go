// Package wavio converts between WAV files and the planar float buffers
// the DSP packages operate on. It is the I/O collaborator the core
// never depends on: decode, process, encode.
package wavio

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-audiofx/dsp/audio"
)

// DefaultBitDepth is the sample resolution written by Encode.
const DefaultBitDepth = 16

// Decode reads a WAV stream into a planar float buffer with samples
// scaled to [-1, 1].
func Decode(r io.ReadSeeker) (*audio.Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV stream", audio.ErrInvalidParameter)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read PCM data: %w", err)
	}
	if pcm.Format == nil || pcm.Format.NumChannels < 1 || pcm.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: WAV stream has no usable format", audio.ErrInvalidParameter)
	}

	channels := pcm.Format.NumChannels
	frames := len(pcm.Data) / channels
	scale := 1.0 / float64(int(1)<<(dec.BitDepth-1))

	buf, err := audio.New(pcm.Format.SampleRate, channels, frames)
	if err != nil {
		return nil, err
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			buf.Data[ch][i] = float64(pcm.Data[i*channels+ch]) * scale
		}
	}

	return buf, nil
}

// DecodeFile reads a WAV file from disk.
func DecodeFile(path string) (*audio.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return buf, nil
}

// Encode writes buf as 16-bit PCM WAV. Samples outside [-1, 1] are
// clamped.
func Encode(w io.WriteSeeker, buf *audio.Buffer) error {
	if err := buf.Validate(); err != nil {
		return err
	}

	channels := buf.Channels()
	frames := buf.Len()
	peak := float64(int(1)<<(DefaultBitDepth-1)) - 1

	data := make([]int, frames*channels)
	for ch, samples := range buf.Data {
		for i, v := range samples {
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			data[i*channels+ch] = int(v * peak)
		}
	}

	enc := wav.NewEncoder(w, buf.SampleRate, DefaultBitDepth, channels, 1)
	pcm := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  buf.SampleRate,
		},
		Data:           data,
		SourceBitDepth: DefaultBitDepth,
	}
	if err := enc.Write(pcm); err != nil {
		return fmt.Errorf("write PCM data: %w", err)
	}
	return enc.Close()
}

// EncodeFile writes buf to a WAV file on disk.
func EncodeFile(path string, buf *audio.Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := Encode(f, buf); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
