package model

// StageType identifies one stage of the pipeline.
type StageType string

const (
	StageAuthorization StageType = "authorization"
	StageResource      StageType = "resource"
	StageAction        StageType = "action"
	StageException     StageType = "exception"
	StageResult        StageType = "result"
)

// Phase identifies which side of a stage a filter method ran on. Stages with
// a single method (authorization, exception) report PhasePre.
type Phase string

const (
	PhasePre    Phase = "pre"
	PhasePost   Phase = "post"
	PhaseAround Phase = "around"
)

// Scope is the registration breadth of a filter. It determines the default
// nesting depth: global filters nest outermost, method filters innermost.
type Scope int

const (
	ScopeGlobal Scope = iota + 1
	ScopeClass
	ScopeMethod
)

func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeClass:
		return "class"
	case ScopeMethod:
		return "method"
	}

	return "unknown"
}

// FilterInfo describes one materialized filter instance.
type FilterInfo struct {
	Name   string
	Stages []StageType
	Scope  Scope
	Order  int
}

// Boundary vertices used by options that draw the pipeline.
var (
	StartInfo = &FilterInfo{Name: "start"}
	EndInfo   = &FilterInfo{Name: "end"}
)
