package filterline

import "github.com/filterline/go-filterline/pkg/filterline/model"

// Scope aliases re-exported for registration call sites.
type Scope = model.Scope

const (
	ScopeGlobal = model.ScopeGlobal
	ScopeClass  = model.ScopeClass
	ScopeMethod = model.ScopeMethod
)

type declKind int

const (
	constructorDecl declKind = iota + 1
	factoryDecl
	literalDecl
)

// FactoryFunc produces a filter instance from the dependency provider and
// the literal arguments carried by the declaration.
type FactoryFunc func(p Provider, args ...any) (Filter, error)

// Declaration describes how to obtain a filter instance. Declarations are
// immutable once registered; the scope they are registered at and their
// registration sequence live in the registration record, not here, so one
// declaration can be attached at several scopes.
type Declaration struct {
	kind     declKind
	ctor     any
	factory  FactoryFunc
	args     []any
	instance Filter
	order    int
	reusable bool
}

// DeclarationOption configures a declaration at creation time.
type DeclarationOption func(d *Declaration)

// WithOrder sets the explicit order value. Lower orders run outer: their pre
// phases run earlier and their post phases later. The explicit order takes
// precedence over scope entirely, so a method-scope filter with
// math.MinInt runs outside every default-order global filter. The default
// order is 0.
func WithOrder(order int) DeclarationOption {
	return func(d *Declaration) {
		d.order = order
	}
}

// Reusable marks the instance as eligible for cross-request caching. The
// hint is advisory: a reusable filter must be free of per-request mutable
// state, which is the implementer's obligation, not enforced here.
func Reusable() DeclarationOption {
	return func(d *Declaration) {
		d.reusable = true
	}
}

// NewDeclaration declares a filter built from a constructor function. The
// constructor must be a func whose parameters are resolved from the
// dependency provider and which returns a filter, optionally with an error.
// The constructor shape is checked lazily at instantiation, not here.
func NewDeclaration(ctor any, opts ...DeclarationOption) *Declaration {
	decl := &Declaration{
		kind: constructorDecl,
		ctor: ctor,
	}
	for _, opt := range opts {
		opt(decl)
	}

	return decl
}

// NewFactoryDeclaration declares a filter built by invoking fn with the
// dependency provider and the given literal arguments.
func NewFactoryDeclaration(fn FactoryFunc, args []any, opts ...DeclarationOption) *Declaration {
	decl := &Declaration{
		kind:    factoryDecl,
		factory: fn,
		args:    args,
	}
	for _, opt := range opts {
		opt(decl)
	}

	return decl
}

// NewLiteralDeclaration declares an already-constructed filter instance. The
// instance is returned as-is at instantiation time, no construction happens.
func NewLiteralDeclaration(f Filter, opts ...DeclarationOption) *Declaration {
	decl := &Declaration{
		kind:     literalDecl,
		instance: f,
	}
	for _, opt := range opts {
		opt(decl)
	}

	return decl
}

// Order returns the declared explicit order value.
func (d *Declaration) Order() int {
	return d.order
}

// IsReusable reports whether the declared instance may be cached across
// requests.
func (d *Declaration) IsReusable() bool {
	return d.reusable
}
