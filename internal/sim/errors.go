package sim

import "errors"

// Construction-time errors. A run that starts always reaches a terminal
// status; these are the only failures the package returns.
var (
	// ErrInvalidConfig indicates a configuration value that cannot
	// parameterize a run.
	ErrInvalidConfig = errors.New("sim: invalid configuration")

	// ErrPositionRange indicates an initial or target position outside
	// the configured legal range.
	ErrPositionRange = errors.New("sim: position outside legal range")

	// ErrNilController indicates a driver constructed without a
	// controller.
	ErrNilController = errors.New("sim: nil controller")
)
