package postjob

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/nxpost/internal/node"
)

// Units selects the unit system of the generated program.
type Units string

const (
	UnitsMetric Units = "metric"
	UnitsInch   Units = "inch"
)

// ParseUnits validates a units name. Empty means metric.
func ParseUnits(s string) (Units, error) {
	switch Units(s) {
	case "", UnitsMetric:
		return UnitsMetric, nil
	case UnitsInch:
		return UnitsInch, nil
	default:
		return "", fmt.Errorf("invalid units %q: must be 'metric' or 'inch'", s)
	}
}

// Job is a single request to convert one target into a machine program.
// It is built per dispatch and not modified after submission.
type Job struct {
	ID             uuid.UUID
	Target         string
	TargetKind     node.Kind
	Postprocessor  string
	OutputPath     string
	EmitListing    bool
	EmitBallCenter bool
	Units          Units
}

// Engine runs post jobs. A zero code means success; any other code is the
// engine's own failure code. A non-nil error means the job could not be
// handed to the engine at all.
type Engine interface {
	Submit(ctx context.Context, job Job) (int, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, job Job) (int, error)

// Submit calls f.
func (f EngineFunc) Submit(ctx context.Context, job Job) (int, error) {
	return f(ctx, job)
}

// EngineFailure reports a non-zero result code from the engine.
type EngineFailure struct {
	Code int
}

func (e *EngineFailure) Error() string {
	return fmt.Sprintf("post engine failed with code %d", e.Code)
}
