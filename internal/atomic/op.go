// Package atomic implements atomic read-modify-write operations under three
// strategies: NoOp for execution levels with a single participant, Lock for
// a table of mutexes hashed by address, and Native for hardware
// compare-and-swap on 32 and 64-bit words.
package atomic

import (
	"errors"
	"fmt"
)

// ErrBitwiseFloat is the panic value for And, Or or Xor on a floating-point
// operand.
var ErrBitwiseFloat = errors.New("atomic: bitwise operation on floating-point value")

// Value is the set of operand types atomics accept.
type Value interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64 | ~float32 | ~float64
}

// Op is an atomic read-modify-write operation.
type Op int

// Operations. Each returns the previous value at the address.
const (
	Add  Op = iota // *addr += v
	Sub            // *addr -= v
	Min            // *addr = min(*addr, v)
	Max            // *addr = max(*addr, v)
	Exch           // *addr = v
	Inc            // *addr = *addr >= v ? 0 : *addr+1
	Dec            // *addr = (*addr == 0 || *addr > v) ? v : *addr-1
	And            // *addr &= v
	Or             // *addr |= v
	Xor            // *addr ^= v
)

var opNames = [...]string{"Add", "Sub", "Min", "Max", "Exch", "Inc", "Dec", "And", "Or", "Xor"}

// String returns the operation name.
func (o Op) String() string {
	if o >= 0 && int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Combine returns the value an operation stores given the old value and
// the operand.
func Combine[T Value](op Op, old, v T) T {
	switch op {
	case Add:
		return old + v
	case Sub:
		return old - v
	case Min:
		return min(old, v)
	case Max:
		return max(old, v)
	case Exch:
		return v
	case Inc:
		if old >= v {
			return 0
		}
		return old + 1
	case Dec:
		if old == 0 || old > v {
			return v
		}
		return old - 1
	case And, Or, Xor:
		if isFloat[T]() {
			panic(ErrBitwiseFloat)
		}
		a, b := uint64(old), uint64(v)
		switch op {
		case And:
			return T(a & b)
		case Or:
			return T(a | b)
		default:
			return T(a ^ b)
		}
	}
	panic(fmt.Sprintf("atomic: unknown operation %v", op))
}

func isFloat[T Value]() bool {
	var half T = 1
	half /= 2
	return half != 0
}
