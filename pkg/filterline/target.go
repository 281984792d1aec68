package filterline

import "context"

// InvokeFunc is the callable the pipeline wraps. The pipeline never
// interprets the returned value; rendering belongs to the surrounding
// framework.
type InvokeFunc func(ctx context.Context, args []any) (any, error)

// Target is the resolved invocation descriptor handed in by the external
// dispatch component: the callable, its bound arguments, and the filter
// declarations attached to it at class and method scope. Routing and
// argument binding happen outside the pipeline.
type Target struct {
	Name   string
	Invoke InvokeFunc

	// Args are copied onto the Context at pipeline entry, so one Target can
	// serve concurrent requests.
	Args []any

	// ClassFilters are the declarations of the enclosing group.
	ClassFilters []*Declaration

	// MethodFilters are the declarations attached to the callable itself.
	MethodFilters []*Declaration
}
