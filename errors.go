package abstractor

import "errors"

var (
	// ErrUnknownMethod is returned when a method name is outside the
	// supported set.
	ErrUnknownMethod = errors.New("abstractor: unknown extraction method")

	// ErrInvalidConfig is returned for configuration files that cannot be
	// parsed.
	ErrInvalidConfig = errors.New("abstractor: invalid configuration")

	// ErrNoInputs is returned when a batch run finds no PDF files to
	// process.
	ErrNoInputs = errors.New("abstractor: no input files")
)
