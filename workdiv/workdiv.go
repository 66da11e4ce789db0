// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package workdiv describes how a launch divides its grid into blocks,
// threads and per-thread elements.
//
//	props, _ := acc.GetProps[acc.GpuSim[vec.D1, int], vec.D1, int](d)
//	wd, err := workdiv.Suggest(props, vec.Of[vec.D1](n), vec.Of[vec.D1](4), workdiv.Relaxed)
package workdiv

import (
	"github.com/born-ml/accel/dev"
	"github.com/born-ml/accel/internal/workdiv"
	"github.com/born-ml/accel/vec"
)

// WorkDiv is a grid block extent, block thread extent and thread element
// extent of the same dimension.
type WorkDiv[D vec.Dim, I vec.Index] = workdiv.WorkDiv[D, I]

// LimitError names the violated limit, its axis and the amounts.
type LimitError = workdiv.LimitError

// Violation classifies a LimitError.
type Violation = workdiv.Violation

// Violation kinds.
const (
	Exceeded    Violation = workdiv.Exceeded
	NonPositive Violation = workdiv.NonPositive
	Overflow    Violation = workdiv.Overflow
)

// Mode controls how Suggest chooses the block extent.
type Mode = workdiv.Mode

// Suggest modes.
const (
	Relaxed Mode = workdiv.Relaxed
	Exact   Mode = workdiv.Exact
)

// ErrInvalid is wrapped by every LimitError.
var ErrInvalid = workdiv.ErrInvalid

// New returns a work division.
func New[D vec.Dim, I vec.Index](gridBlocks, blockThreads, threadElems vec.Vec[D, I]) WorkDiv[D, I] {
	return workdiv.New(gridBlocks, blockThreads, threadElems)
}

// Validate checks w against props.
func Validate[D vec.Dim, I vec.Index](w WorkDiv[D, I], props dev.Props[D, I]) error {
	return workdiv.Validate(w, props)
}

// Suggest returns a valid work division covering gridElemExtent elements.
func Suggest[D vec.Dim, I vec.Index](props dev.Props[D, I], gridElemExtent, threadElemExtent vec.Vec[D, I], mode Mode) (WorkDiv[D, I], error) {
	return workdiv.Suggest(props, gridElemExtent, threadElemExtent, mode)
}
