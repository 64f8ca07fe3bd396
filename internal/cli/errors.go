package cli

import (
	"errors"

	"github.com/vk/nxpost/internal/app"
	"github.com/vk/nxpost/internal/node"
	"github.com/vk/nxpost/internal/postjob"
	"github.com/vk/nxpost/internal/session"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitSession  = 3
	ExitNotFound = 4
	ExitEngine   = 5
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) *ExitError {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// ToExitError classifies err into an exit code with a message meant for
// the operator. An *ExitError anywhere in the chain is returned as is.
func ToExitError(err error) *ExitError {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	switch {
	case errors.Is(err, app.ErrNoSession):
		return &ExitError{Code: ExitSession, Message: "No CAM session given. Pass --session with a snapshot file or directory."}
	case errors.Is(err, session.ErrNoActiveWorkpiece):
		return &ExitError{Code: ExitSession, Message: "No active workpiece. Open a part and try again."}
	case errors.Is(err, session.ErrCAMNotActivated):
		return &ExitError{Code: ExitSession, Message: "CAM is not activated for the workpiece. Create a CAM setup and try again."}
	case errors.Is(err, node.ErrGroupNotFound), errors.Is(err, node.ErrOperationNotFound):
		return &ExitError{Code: ExitNotFound, Message: err.Error()}
	}
	if _, ok := postjob.IsEngineFailure(err); ok {
		return &ExitError{Code: ExitEngine, Message: "Postprocessing failed: " + err.Error()}
	}
	return &ExitError{Code: ExitFailure, Message: err.Error()}
}
