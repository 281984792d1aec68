// Package deps provides a small reflect-based dependency container
// implementing the filterline Provider contract. It is meant for standalone
// use and tests; real dependency-injection containers plug in through the
// same interface.
package deps

import (
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrNilValue       = errors.New("value must be set")
	ErrNotAFunc       = errors.New("constructor must be a func")
	ErrBadConstructor = errors.New("constructor must return a value, optionally with an error")
	ErrNotRegistered  = errors.New("type is not registered")
	ErrCycle          = errors.New("dependency cycle detected")
)

// Container resolves types from registered values and constructor
// functions. Constructed values are memoized, so every constructor runs at
// most once per container. Safe for concurrent use.
type Container struct {
	mu       sync.Mutex
	values   map[reflect.Type]any
	ctors    map[reflect.Type]reflect.Value
	building map[reflect.Type]bool
}

// New creates an empty container.
func New() *Container {
	return &Container{
		values:   make(map[reflect.Type]any),
		ctors:    make(map[reflect.Type]reflect.Value),
		building: make(map[reflect.Type]bool),
	}
}

// Register stores v under its dynamic type.
func (c *Container) Register(v any) error {
	if v == nil {
		return ErrNilValue
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[reflect.TypeOf(v)] = v

	return nil
}

// RegisterAs stores v under the type T, which is how values get registered
// under an interface they implement.
func RegisterAs[T any](c *Container, v T) error {
	t := reflect.TypeOf((*T)(nil)).Elem()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[t] = v

	return nil
}

// RegisterFunc registers a constructor under its first return type. The
// constructor parameters are resolved transitively when the type is first
// requested.
func (c *Container) RegisterFunc(ctor any) error {
	v := reflect.ValueOf(ctor)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return ErrNotAFunc
	}

	t := v.Type()
	if t.NumOut() == 0 || t.NumOut() > 2 {
		return ErrBadConstructor
	}
	if t.NumOut() == 2 && !t.Out(1).Implements(errorType) {
		return ErrBadConstructor
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctors[t.Out(0)] = v

	return nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Resolve returns an instance assignable to t. It implements the filterline
// Provider contract.
func (c *Container) Resolve(t reflect.Type) (any, error) {
	if t == nil {
		return nil, errors.Wrap(ErrNotRegistered, "nil type")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.resolve(t)
}

// resolve must be called with the container lock held.
func (c *Container) resolve(t reflect.Type) (any, error) {
	if v, ok := c.values[t]; ok {
		return v, nil
	}

	// Interface requests fall back to any assignable registration.
	if t.Kind() == reflect.Interface {
		for vt, v := range c.values {
			if vt.Implements(t) {
				return v, nil
			}
		}
	}

	ctor, ok := c.ctors[t]
	if !ok && t.Kind() == reflect.Interface {
		for out, fn := range c.ctors {
			if out.Implements(t) {
				ctor, ok = fn, true

				break
			}
		}
	}
	if !ok {
		return nil, errors.Wrapf(ErrNotRegistered, "%s", t)
	}

	if c.building[t] {
		return nil, errors.Wrapf(ErrCycle, "%s", t)
	}
	c.building[t] = true
	defer delete(c.building, t)

	ft := ctor.Type()
	args := make([]reflect.Value, ft.NumIn())
	for i := 0; i < ft.NumIn(); i++ {
		dep, err := c.resolve(ft.In(i))
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %d of %s constructor", i, t)
		}
		if dep == nil {
			args[i] = reflect.Zero(ft.In(i))
			continue
		}
		args[i] = reflect.ValueOf(dep)
	}

	out := ctor.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, errors.Wrapf(out[1].Interface().(error), "unable to construct %s", t)
	}

	v := out[0].Interface()
	c.values[ft.Out(0)] = v

	return v, nil
}
