// Package filterline provides an ordered, short-circuitable request
// processing filter pipeline with pluggable stage semantics and
// dependency-resolved filter instantiation.
//
// A pipeline wraps a target invocation in five fixed stages, nested from the
// outside in: authorization, resource, action, the target itself, then
// result, with an exception stage that cuts across when a fault escapes the
// action stage. Filters declare which stages they participate in by
// implementing the matching interfaces; a single filter may implement
// several. Any pre phase can short-circuit the remaining inner stages by
// setting a Result on the per-request Context, and already-entered post
// phases always unwind, innermost first.
//
// Filters are registered as declarations: a constructor function whose
// parameters are resolved from a dependency provider, a factory invoked with
// the provider and literal arguments, or an already-built instance.
// Execution order comes from the explicit order value first, then the
// registration scope (global, class, method), then registration sequence.
//
// The pipeline itself performs no routing, argument binding, or response
// writing: an external dispatcher hands in a resolved Target and renders the
// returned Result. Options (see the drawer and measure packages) observe
// executions for visualization and timing.
package filterline
