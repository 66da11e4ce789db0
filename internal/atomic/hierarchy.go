package atomic

import "fmt"

// Level names the scope of participants an atomic operation must be
// indivisible against.
type Level int

// Levels, from widest to narrowest.
const (
	Grids Level = iota
	Blocks
	Threads
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case Grids:
		return "grids"
	case Blocks:
		return "blocks"
	case Threads:
		return "threads"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Hierarchy is the strategy chosen for each level. A strategy safe at a
// wider level is always safe at a narrower one.
type Hierarchy struct {
	Grids   Strategy
	Blocks  Strategy
	Threads Strategy
}

// At returns the strategy for level l.
func (h Hierarchy) At(l Level) Strategy {
	switch l {
	case Grids:
		return h.Grids
	case Blocks:
		return h.Blocks
	case Threads:
		return h.Threads
	}
	panic(fmt.Sprintf("atomic: unknown level %v", l))
}

// String lists the strategy names per level.
func (h Hierarchy) String() string {
	return fmt.Sprintf("{grids: %s, blocks: %s, threads: %s}", h.Grids.Name(), h.Blocks.Name(), h.Threads.Name())
}
