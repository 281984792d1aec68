package filterline

import "context"

// Context is the per-request mutable record threaded through every stage.
// It is exclusively owned by the executing request; filters shared across
// requests must treat their own state as read-only and keep all per-request
// state on the Context.
type Context struct {
	// Args are the target arguments. Action-stage pre phases may mutate them
	// before the target is invoked.
	Args []any

	// Result is the in-progress result value. Setting it from a pre phase
	// short-circuits the remaining inner stages.
	Result any

	// Canceled skips result rendering and the remaining inner result pre
	// phases without replacing the Result.
	Canceled bool

	// Err is the current unhandled fault. Setting it to nil marks the fault
	// handled.
	Err error

	ctx     context.Context
	target  *Target
	flushed bool
}

// Context returns the request context. Cancellation of the request is
// observable here between stages.
func (c *Context) Context() context.Context {
	return c.ctx
}

// Target returns the descriptor of the invocation the pipeline wraps.
func (c *Context) Target() *Target {
	return c.target
}

// Flushed reports whether the Result has already been rendered. Writes after
// flush belong to the transport layer and are not the pipeline's concern;
// result post phases should check this before touching the response.
func (c *Context) Flushed() bool {
	return c.flushed
}

// FaultResult is the synthesized result always-run result filters observe
// when a fault was not recovered and no Result was set.
type FaultResult struct {
	Err error
}
