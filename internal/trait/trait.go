// Package trait maps a (capability, implementing type) pair to the function
// table that implements the capability for that type.
//
// Each capability owns one Registry. A registry may carry a default table
// used by every type without its own registration; an exact registration
// always wins over the default. Registering the same type twice is a
// programming error and panics, so resolution is never ambiguous.
// Backends add registrations for their own types and never touch existing
// ones.
package trait

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrUnsupported is wrapped by UnsupportedError.
var ErrUnsupported = errors.New("unsupported capability")

// UnsupportedError reports a capability that has neither an exact nor a
// default implementation for a type.
type UnsupportedError struct {
	Tag  string
	Type reflect.Type
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s %q for type %v", ErrUnsupported, e.Tag, e.Type)
}

// Unwrap returns ErrUnsupported.
func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

// Registry resolves the function table F of one capability.
type Registry[F any] struct {
	tag string

	mu    sync.RWMutex
	exact map[reflect.Type]F
	def   *F

	cache sync.Map // reflect.Type -> F
}

// New returns an empty registry for the capability named tag.
func New[F any](tag string) *Registry[F] {
	return &Registry[F]{
		tag:   tag,
		exact: make(map[reflect.Type]F),
	}
}

// Tag returns the capability name.
func (r *Registry[F]) Tag() string {
	return r.tag
}

// SetDefault installs the generic implementation. It panics if a default
// is already installed.
func (r *Registry[F]) SetDefault(f F) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.def != nil {
		panic(fmt.Sprintf("trait: default for %q registered twice", r.tag))
	}
	r.def = &f
	r.cache.Clear()
}

// Register installs the implementation for the dynamic type of impl.
// It panics if that type is already registered.
func (r *Registry[F]) Register(impl any, f F) {
	r.RegisterType(reflect.TypeOf(impl), f)
}

// RegisterType installs the implementation for typ.
func (r *Registry[F]) RegisterType(typ reflect.Type, f F) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.exact[typ]; dup {
		panic(fmt.Sprintf("trait: %q for type %v registered twice", r.tag, typ))
	}
	r.exact[typ] = f
	r.cache.Clear()
}

// Resolve returns the implementation for the dynamic type of impl.
func (r *Registry[F]) Resolve(impl any) (F, error) {
	return r.ResolveType(reflect.TypeOf(impl))
}

// ResolveType returns the exact implementation for typ, else the default,
// else an *UnsupportedError.
func (r *Registry[F]) ResolveType(typ reflect.Type) (F, error) {
	if f, ok := r.cache.Load(typ); ok {
		return f.(F), nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.exact[typ]
	if !ok && r.def != nil {
		f, ok = *r.def, true
	}
	if !ok {
		var zero F
		return zero, &UnsupportedError{Tag: r.tag, Type: typ}
	}
	// Register clears the cache under the write lock, so the store must
	// happen under the read lock.
	r.cache.Store(typ, f)
	return f, nil
}

// MustResolve is Resolve that panics on failure.
func (r *Registry[F]) MustResolve(impl any) F {
	f, err := r.Resolve(impl)
	if err != nil {
		panic(err)
	}
	return f
}

// Has reports whether impl resolves, exactly or through the default.
func (r *Registry[F]) Has(impl any) bool {
	_, err := r.Resolve(impl)
	return err == nil
}

// ResolveFor resolves the implementation for the type parameter T.
func ResolveFor[T any, F any](r *Registry[F]) (F, error) {
	return r.ResolveType(reflect.TypeFor[T]())
}
