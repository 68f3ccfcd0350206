package lifecycle

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple checks.
var (
	ErrStartInProgress = errors.New("node process start already in progress")
	ErrAlreadyRunning  = errors.New("node process already running")
)

// Process names.
const (
	ProcessRelay  = "relay"
	ProcessForger = "forger"
)

// Start stages, in execution order.
const (
	StageConfig        = "config"
	StageLogger        = "logger"
	StageStorage       = "storage"
	StageSyncInit      = "sync-init"
	StageNetworkWarmup = "network-warmup"
	StageSync          = "sync"
	StagePublicAPI     = "public-api"
	StageDelegates     = "delegates"
	StageForging       = "forging"
)

// LifecycleError is returned when a start stage fails. Later stages are
// skipped and nothing started by earlier stages is rolled back.
type LifecycleError struct {
	Process string
	Stage   string
	Err     error
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("%s start failed at %s: %v", e.Process, e.Stage, e.Err)
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}

// IsLifecycleError returns true if err is or wraps a LifecycleError.
func IsLifecycleError(err error) bool {
	var le *LifecycleError
	return errors.As(err, &le)
}

// PreconditionError is returned when an operation needs a handle that does
// not exist, such as stopping a relay that was never started.
type PreconditionError struct {
	Operation string
	Missing   string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("cannot %s: %s not started", e.Operation, e.Missing)
}

// IsPreconditionError returns true if err is or wraps a PreconditionError.
func IsPreconditionError(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
