// Package shared implements block shared memory: a dynamic arena sized per
// launch and a static arena that hands out variables in declaration order.
//
// Both arenas are single cache-line aligned allocations. Only pointer-free
// types may live in shared memory.
package shared

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// Alignment is the byte alignment of every arena.
const Alignment = 64

// Sentinel errors.
var (
	// ErrStaticExhausted is the panic value when a declaration does not fit
	// the static arena.
	ErrStaticExhausted = errors.New("shared: static shared memory exhausted")

	// ErrTypeMismatch is the panic value when an id is redeclared with a
	// different type.
	ErrTypeMismatch = errors.New("shared: variable redeclared with a different type")

	// ErrPointerType is the panic value for a type that contains pointers.
	ErrPointerType = errors.New("shared: type contains pointers")
)

// alignedBytes returns a zeroed slice of size bytes whose first element is
// Alignment-aligned.
func alignedBytes(size uintptr) []byte {
	if size == 0 {
		return nil
	}
	buf := make([]byte, size+Alignment-1)
	var offset uintptr
	if mod := uintptr(unsafe.Pointer(&buf[0])) % Alignment; mod != 0 {
		offset = Alignment - mod
	}
	return buf[offset : offset+size : offset+size]
}

// Dyn is the dynamic shared memory of one block.
type Dyn struct {
	buf []byte
}

// NewDyn allocates a dynamic arena of size bytes.
func NewDyn(size uintptr) *Dyn {
	return &Dyn{buf: alignedBytes(size)}
}

// Size returns the arena size in bytes.
func (d *Dyn) Size() uintptr {
	return uintptr(len(d.buf))
}

// Bytes returns the raw arena.
func (d *Dyn) Bytes() []byte {
	return d.buf
}

// Reset zeroes the arena.
func (d *Dyn) Reset() {
	clear(d.buf)
}

// DynSlice views the dynamic arena as a slice of T. Trailing bytes that do
// not fill a whole T are not part of the slice.
func DynSlice[T any](d *Dyn) []T {
	typ := reflect.TypeFor[T]()
	mustBePointerFree(typ)
	size := typ.Size()
	if size == 0 || len(d.buf) == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&d.buf[0])), uintptr(len(d.buf))/size)
}

// St is the static shared memory of one block.
type St struct {
	mu     sync.Mutex
	buf    []byte
	offset uintptr
	vars   map[uint64]variable
}

type variable struct {
	offset uintptr
	typ    reflect.Type
}

// NewSt allocates a static arena of capacity bytes.
func NewSt(capacity uintptr) *St {
	return &St{buf: alignedBytes(capacity), vars: make(map[uint64]variable)}
}

// Capacity returns the arena size in bytes.
func (s *St) Capacity() uintptr {
	return uintptr(len(s.buf))
}

// Used returns the bytes allocated so far, including alignment padding.
func (s *St) Used() uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// Reset drops every declaration and zeroes the arena so it can serve the
// next block.
func (s *St) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.buf[:s.offset])
	clear(s.vars)
	s.offset = 0
}

// Var returns the variable declared under id, allocating it on first use.
// All threads of a block receive the same pointer for the same id.
func Var[T any](s *St, id uint64) *T {
	typ := reflect.TypeFor[T]()

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.vars[id]; ok {
		if v.typ != typ {
			panic(fmt.Errorf("%w: id %d is %v, requested %v", ErrTypeMismatch, id, v.typ, typ))
		}
		return (*T)(unsafe.Pointer(&s.buf[v.offset]))
	}

	mustBePointerFree(typ)
	align := uintptr(typ.Align())
	offset := (s.offset + align - 1) &^ (align - 1)
	end := offset + typ.Size()
	if end > uintptr(len(s.buf)) || (typ.Size() == 0 && offset >= uintptr(len(s.buf))) {
		panic(fmt.Errorf("%w: id %d needs %d bytes at offset %d, capacity %d",
			ErrStaticExhausted, id, typ.Size(), offset, len(s.buf)))
	}
	s.vars[id] = variable{offset: offset, typ: typ}
	s.offset = end
	return (*T)(unsafe.Pointer(&s.buf[offset]))
}

func mustBePointerFree(typ reflect.Type) {
	if hasPointers(typ) {
		panic(fmt.Errorf("%w: %v", ErrPointerType, typ))
	}
}

func hasPointers(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Array:
		return typ.Len() > 0 && hasPointers(typ.Elem())
	case reflect.Struct:
		for i := range typ.NumField() {
			if hasPointers(typ.Field(i).Type) {
				return true
			}
		}
		return false
	case reflect.Pointer, reflect.UnsafePointer, reflect.Slice, reflect.Map,
		reflect.Chan, reflect.Func, reflect.Interface, reflect.String:
		return true
	}
	return false
}
