package ft8

import "errors"

// Sentinel errors returned across the package's public API.
var (
	// ErrBufferUnderflow is returned when fewer audio samples are supplied than a
	// full slot requires.
	ErrBufferUnderflow = errors.New("ft8: audio buffer shorter than one slot")

	// ErrConfig is returned when an FT8Config fails validation.
	ErrConfig = errors.New("ft8: invalid configuration")
)
