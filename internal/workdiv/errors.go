package workdiv

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every LimitError.
var ErrInvalid = errors.New("invalid launch configuration")

// Violation classifies a LimitError.
type Violation int

// Violation kinds.
const (
	// Exceeded means a value is larger than the device maximum.
	Exceeded Violation = iota
	// NonPositive means an extent component is below 1.
	NonPositive
	// Overflow means a product does not fit in the index type.
	Overflow
)

// Limit names used in LimitError.Limit.
const (
	LimitGridBlockExtent   = "grid block extent"
	LimitGridBlockCount    = "grid block count"
	LimitBlockThreadExtent = "block thread extent"
	LimitBlockThreadCount  = "block thread count"
	LimitThreadElemExtent  = "thread element extent"
	LimitThreadElemCount   = "thread element count"
	LimitGridElemExtent    = "grid element extent"
	LimitSharedMemBytes    = "shared memory bytes"
)

// LimitError reports which launch limit was violated, on which axis and by
// how much. Axis is -1 for scalar limits (counts, byte sizes).
type LimitError struct {
	Violation Violation
	Limit     string
	Axis      int
	Requested uint64
	Max       uint64
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	where := e.Limit
	if e.Axis >= 0 {
		where = fmt.Sprintf("%s axis %d", e.Limit, e.Axis)
	}
	switch e.Violation {
	case NonPositive:
		return fmt.Sprintf("%s: %s is %d, must be at least 1", ErrInvalid, where, e.Requested)
	case Overflow:
		return fmt.Sprintf("%s: %s overflows the index type (max %d)", ErrInvalid, where, e.Max)
	default:
		return fmt.Sprintf("%s: %s is %d, exceeds device maximum %d by %d",
			ErrInvalid, where, e.Requested, e.Max, e.Requested-e.Max)
	}
}

// Unwrap returns ErrInvalid.
func (e *LimitError) Unwrap() error {
	return ErrInvalid
}

// Excess returns by how much the limit was exceeded, or 0.
func (e *LimitError) Excess() uint64 {
	if e.Violation != Exceeded {
		return 0
	}
	return e.Requested - e.Max
}
