// Package model provides the data structures shared between the filterline
// package and its options. It defines the stage and phase identifiers, the
// per-filter metadata exposed to options, and the option contract itself.
package model
