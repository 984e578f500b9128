package audio

import "errors"

// Error kinds shared by every processing package. Failure sites wrap one
// of these with fmt.Errorf("...: %w", ...) so callers can classify a
// failure with errors.Is without parsing messages.
var (
	// ErrInvalidParameter indicates an out-of-range or non-finite parameter.
	ErrInvalidParameter = errors.New("audiofx: invalid parameter")

	// ErrUnsupportedChannelLayout indicates a channel layout the operation
	// cannot process (for example mono input to the vocal separator).
	ErrUnsupportedChannelLayout = errors.New("audiofx: unsupported channel layout")

	// ErrDegenerateSignal indicates all-zero or all-silence input that
	// would cause a division by zero in normalization, dBFS, or gain
	// computation.
	ErrDegenerateSignal = errors.New("audiofx: degenerate signal")

	// ErrNumericFailure indicates an unexpected numeric failure such as a
	// transform size mismatch.
	ErrNumericFailure = errors.New("audiofx: numeric failure")
)
