package filterline

// Filter is the base for all stage capabilities. A filter instance may
// implement any combination of the stage interfaces below; membership is
// resolved once, when the instance is materialized, never per stage.
type Filter interface{}

// Next runs everything inward from the current stage. A filter receiving a
// Next must invoke it at most once; not invoking it is the short-circuit
// signal. Invoking it twice is a configuration-class misuse and fails with
// ErrNextCalledTwice.
type Next func() error

// AuthorizationFilter runs first and has no post phase. Setting a Result on
// the context terminates the whole pipeline; only filters implementing
// AlwaysRunResult still run. Authorization filters signal "unauthorized" by
// setting a Result, not by returning an error.
type AuthorizationFilter interface {
	Authorize(c *Context) error
}

// ResourceFilter nests around everything from the action stage through the
// result stage. BeforeResource may set a Result to short-circuit: the action
// and result stages are skipped and already-entered AfterResource phases
// unwind, innermost first.
type ResourceFilter interface {
	BeforeResource(c *Context) error
	AfterResource(c *Context) error
}

// AroundResourceFilter is the continuation variant of ResourceFilter.
type AroundResourceFilter interface {
	AroundResource(c *Context, next Next) error
}

// ActionFilter nests around the target invocation only. BeforeAction may
// mutate c.Args or set a Result to skip the target and the remaining inner
// pre phases; entered AfterAction phases still unwind. A fault from the
// target or any action filter is recorded on the context and stays visible
// through the unwinding post phases until cleared.
type ActionFilter interface {
	BeforeAction(c *Context) error
	AfterAction(c *Context) error
}

// AroundActionFilter is the continuation variant of ActionFilter.
type AroundActionFilter interface {
	AroundAction(c *Context, next Next) error
}

// ExceptionFilter runs only when an unhandled fault escapes the action stage
// or the target invocation. It may set a Result and clear c.Err; clearing
// c.Err is the sole signal that suppresses the rethrow.
type ExceptionFilter interface {
	HandleException(c *Context) error
}

// ResultFilter nests around result rendering. It runs only when a Result
// value exists; filters also marked AlwaysRunResult run regardless.
// BeforeResult may set c.Canceled to skip rendering and the remaining inner
// pre phases; AfterResult runs during unwind but must not assume the
// response is still mutable (check c.Flushed).
type ResultFilter interface {
	BeforeResult(c *Context) error
	AfterResult(c *Context) error
}

// AroundResultFilter is the continuation variant of ResultFilter.
type AroundResultFilter interface {
	AroundResult(c *Context, next Next) error
}

// AlwaysRunResult marks a result filter as running even when an earlier
// stage short-circuited or a fault went unrecovered. When no Result was set,
// always-run filters observe a synthesized *FaultResult.
type AlwaysRunResult interface {
	AlwaysRunResult()
}

// Named lets a filter override the name derived from its Go type. The name
// is used by options (drawer, measure) and in error messages.
type Named interface {
	FilterName() string
}

// Renderer writes the final Result to the response. Rendering belongs to the
// surrounding framework; the pipeline only needs to know when it happened so
// result filters can observe c.Flushed.
type Renderer interface {
	Render(c *Context) error
}
