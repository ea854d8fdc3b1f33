package model

import (
	"errors"
	"fmt"
)

// ErrComputationAborted signals cooperative cancellation observed at a step
// boundary. Not a fault: the run terminates without writing partial output.
var ErrComputationAborted = errors.New("computation aborted")

// DataPreparationError reports malformed input grids or tables. Fatal,
// surfaced before the simulation loop starts.
type DataPreparationError struct {
	Msg string
}

func (e *DataPreparationError) Error() string {
	return "data preparation: " + e.Msg
}

func dataPrepErrf(format string, args ...interface{}) error {
	return &DataPreparationError{Msg: fmt.Sprintf(format, args...)}
}

// NegativeWaterLevel reports an invariant violation: the infiltration pass was
// invoked with a negative surface water level. This indicates an accounting
// bug upstream in the step loop, not bad input; the run aborts.
type NegativeWaterLevel struct {
	Row, Col int
	H        float64
}

func (e *NegativeWaterLevel) Error() string {
	return fmt.Sprintf("negative water level %g at cell (%d,%d)", e.H, e.Row, e.Col)
}

// ConsistencyError reports that a stream reach resolved to more than one
// distinct accumulated value. A routing bug; the value is never silently
// averaged or picked.
type ConsistencyError struct {
	ReachID int
	Field   string
	Values  []float64
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("reach %d: %d distinct values of %s: %v", e.ReachID, len(e.Values), e.Field, e.Values)
}
