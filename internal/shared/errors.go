package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Local state errors
	ErrSourceRead      = fmt.Errorf("failed to read local records")
	ErrParse           = fmt.Errorf("malformed record")
	ErrSnapshotCorrupt = fmt.Errorf("snapshot is corrupt")
	ErrSnapshotWrite   = fmt.Errorf("failed to write snapshot")
	ErrRunLocked       = fmt.Errorf("another run holds the snapshot lock")
	ErrRunNotFound     = fmt.Errorf("run not found")

	// Remote errors
	ErrRemoteAuth      = fmt.Errorf("remote rejected credentials")
	ErrRemoteTransient = fmt.Errorf("transient remote failure")
	ErrRemoteNotFound  = fmt.Errorf("remote resource not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
