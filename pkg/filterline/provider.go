package filterline

import "reflect"

// Provider resolves filter constructor dependencies. The pipeline consumes
// it as an external collaborator: the dispatch layer supplies one per
// request (typically request-scoped). The deps package offers a small
// reflect-based implementation for standalone use.
type Provider interface {
	// Resolve returns an instance assignable to t or an error when the
	// dependency cannot be satisfied.
	Resolve(t reflect.Type) (any, error)
}
