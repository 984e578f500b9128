// Command audiofx applies the library's audio transformations to WAV
// files.
//
// Usage:
//
//	audiofx <command> -i in.wav -o out.wav [flags]
//
// Examples:
//
//	audiofx denoise -i noisy.wav -o clean.wav --strength 0.6
//	audiofx denoise -i noisy.wav -o clean.wav --aggressive
//	audiofx eq -i in.wav -o out.wav --low 3 --mid 0 --high -2
//	audiofx pitch -i in.wav -o out.wav --semitones -2
//	audiofx tempo -i in.wav -o out.wav --ratio 1.25
//	audiofx separate -i song.wav --vocals v.wav --instrumental i.wav
//	audiofx volume -i in.wav -o out.wav --gain 6
//	audiofx volume -i in.wav -o out.wav --normalize -16
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-audiofx/dsp/audio"
	"github.com/cwbudde/algo-audiofx/internal/log"
	"github.com/cwbudde/algo-audiofx/process"
	"github.com/cwbudde/algo-audiofx/wavio"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

type appFlags struct {
	input    string
	output   string
	logLevel string
	lenient  bool
}

func newRootCmd() *cobra.Command {
	flags := &appFlags{}

	root := &cobra.Command{
		Use:           "audiofx",
		Short:         "Apply spectral audio transformations to WAV files",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if level, ok := log.ParseLevel(flags.logLevel); ok {
				log.SetLevel(level)
			}
		},
	}

	root.PersistentFlags().StringVarP(&flags.input, "input", "i", "", "input WAV file")
	root.PersistentFlags().StringVarP(&flags.output, "output", "o", "", "output WAV file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newDenoiseCmd(flags),
		newEqCmd(flags),
		newPitchCmd(flags),
		newTempoCmd(flags),
		newSeparateCmd(flags),
		newVolumeCmd(flags),
	)

	return root
}

func newDenoiseCmd(flags *appFlags) *cobra.Command {
	var (
		strength   float64
		aggressive bool
	)

	cmd := &cobra.Command{
		Use:   "denoise",
		Short: "Reduce broadband noise",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(flags, func(p *process.Processor, buf *audio.Buffer) (*process.Result, error) {
				return p.ReduceNoise(buf, strength, aggressive)
			})
		},
	}
	cmd.Flags().Float64Var(&strength, "strength", 0.5, "reduction strength in [0, 1]")
	cmd.Flags().BoolVar(&aggressive, "aggressive", false, "use the multi-pass strategy")
	return cmd
}

func newEqCmd(flags *appFlags) *cobra.Command {
	var low, mid, high float64

	cmd := &cobra.Command{
		Use:   "eq",
		Short: "Apply the 3-band equalizer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(flags, func(p *process.Processor, buf *audio.Buffer) (*process.Result, error) {
				return p.Equalize(buf, low, mid, high)
			})
		},
	}
	cmd.Flags().Float64Var(&low, "low", 0, "low band gain in dB (below 300 Hz)")
	cmd.Flags().Float64Var(&mid, "mid", 0, "mid band gain in dB (300 Hz to 3 kHz)")
	cmd.Flags().Float64Var(&high, "high", 0, "high band gain in dB (above 3 kHz)")
	return cmd
}

func newPitchCmd(flags *appFlags) *cobra.Command {
	var semitones float64

	cmd := &cobra.Command{
		Use:   "pitch",
		Short: "Shift pitch without changing duration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(flags, func(p *process.Processor, buf *audio.Buffer) (*process.Result, error) {
				return p.ShiftPitchTempo(buf, semitones, 1)
			})
		},
	}
	cmd.Flags().Float64Var(&semitones, "semitones", 0, "pitch shift in semitones, +/-24")
	return cmd
}

func newTempoCmd(flags *appFlags) *cobra.Command {
	var ratio float64

	cmd := &cobra.Command{
		Use:   "tempo",
		Short: "Change tempo without changing pitch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(flags, func(p *process.Processor, buf *audio.Buffer) (*process.Result, error) {
				return p.ShiftPitchTempo(buf, 0, ratio)
			})
		},
	}
	cmd.Flags().Float64Var(&ratio, "ratio", 1, "tempo ratio in [0.25, 4], above 1 is faster")
	return cmd
}

func newSeparateCmd(flags *appFlags) *cobra.Command {
	var vocalsPath, instrumentalPath string

	cmd := &cobra.Command{
		Use:   "separate",
		Short: "Split stereo audio into vocal and instrumental components",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.input == "" || vocalsPath == "" || instrumentalPath == "" {
				return fmt.Errorf("separate requires --input, --vocals, and --instrumental")
			}

			buf, err := wavio.DecodeFile(flags.input)
			if err != nil {
				return err
			}
			log.Debugf("decoded %s: %d ch, %d Hz, %.2f s",
				flags.input, buf.Channels(), buf.SampleRate, buf.Duration())

			res, err := newProcessor(flags).SeparateVocals(buf)
			if err != nil {
				return err
			}
			log.Infof("%s", res.Description)

			if err := wavio.EncodeFile(vocalsPath, res.Buffers[0]); err != nil {
				return err
			}
			return wavio.EncodeFile(instrumentalPath, res.Buffers[1])
		},
	}
	cmd.Flags().StringVar(&vocalsPath, "vocals", "", "output WAV file for the vocal component")
	cmd.Flags().StringVar(&instrumentalPath, "instrumental", "", "output WAV file for the instrumental component")
	cmd.Flags().BoolVar(&flags.lenient, "lenient", false, "accept mono input (vocals = input, instrumental = silence)")
	return cmd
}

func newVolumeCmd(flags *appFlags) *cobra.Command {
	var (
		gainDB    float64
		normalize float64
		useGain   bool
		useTarget bool
	)

	cmd := &cobra.Command{
		Use:   "volume",
		Short: "Adjust gain or normalize to a target dBFS level",
		RunE: func(cmd *cobra.Command, args []string) error {
			useGain = cmd.Flags().Changed("gain")
			useTarget = cmd.Flags().Changed("normalize")
			if useGain == useTarget {
				return fmt.Errorf("volume requires exactly one of --gain or --normalize")
			}

			return runSingle(flags, func(p *process.Processor, buf *audio.Buffer) (*process.Result, error) {
				if useGain {
					return p.AdjustVolume(buf, gainDB)
				}
				return p.NormalizeVolume(buf, normalize)
			})
		},
	}
	cmd.Flags().Float64Var(&gainDB, "gain", 0, "gain adjustment in dB, +/-24")
	cmd.Flags().Float64Var(&normalize, "normalize", -16, "target level in dBFS, [-60, 0]")
	return cmd
}

func newProcessor(flags *appFlags) *process.Processor {
	var opts []process.Option
	if flags.lenient {
		opts = append(opts, process.WithLenientSeparation())
	}
	return process.New(opts...)
}

// runSingle handles the decode / transform / encode cycle shared by the
// one-output commands.
func runSingle(flags *appFlags, fn func(*process.Processor, *audio.Buffer) (*process.Result, error)) error {
	if flags.input == "" || flags.output == "" {
		return fmt.Errorf("both --input and --output are required")
	}

	buf, err := wavio.DecodeFile(flags.input)
	if err != nil {
		return err
	}
	log.Debugf("decoded %s: %d ch, %d Hz, %.2f s",
		flags.input, buf.Channels(), buf.SampleRate, buf.Duration())

	res, err := fn(newProcessor(flags), buf)
	if err != nil {
		return err
	}
	log.Infof("%s", res.Description)

	return wavio.EncodeFile(flags.output, res.Output())
}
