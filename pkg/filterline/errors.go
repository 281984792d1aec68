package filterline

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

var (
	ErrPipelineMustBeSet = errors.New("p must be set")
	ErrTargetMustBeSet   = errors.New("target must be set")
	ErrProviderMustBeSet = errors.New("provider must be set")
	ErrTargetNotCallable = errors.New("target has no invoke function")
	ErrNilDeclaration    = errors.New("declaration must be set")
	ErrNilInstance       = errors.New("literal declaration holds a nil filter")
	ErrNextCalledTwice   = errors.New("next delegate invoked more than once")
	ErrNoCapabilities    = errors.New("filter implements no stage interface")
)

// ConfigError reports an invalid filter declaration or a misuse of the
// pipeline contract. It is fatal and surfaces before or instead of stage
// execution, never through the exception stage.
type ConfigError struct {
	Filter string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Filter == "" {
		return fmt.Sprintf("filter configuration: %v", e.Err)
	}

	return fmt.Sprintf("filter %s configuration: %v", e.Filter, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Cause implements the github.com/pkg/errors causer interface.
func (e *ConfigError) Cause() error { return e.Err }

// DependencyError reports an instantiation-time failure to satisfy a filter
// constructor dependency. It aborts pipeline setup before any stage runs.
type DependencyError struct {
	Filter string
	Type   reflect.Type
	Err    error
}

func (e *DependencyError) Error() string {
	if e.Type == nil {
		return fmt.Sprintf("filter %s dependency: %v", e.Filter, e.Err)
	}

	return fmt.Sprintf("filter %s dependency %s: %v", e.Filter, e.Type, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// Cause implements the github.com/pkg/errors causer interface.
func (e *DependencyError) Cause() error { return e.Err }
