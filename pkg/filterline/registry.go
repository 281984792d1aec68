package filterline

import "github.com/filterline/go-filterline/pkg/filterline/model"

// registration pairs a declaration with the scope it was attached at and its
// registration sequence. Scope and sequence are properties of the
// attachment, not of the declaration, so the same declaration can appear at
// several scopes.
type registration struct {
	decl  *Declaration
	scope Scope
	seq   int
}

// resolve gathers the declarations applicable to a target: process-wide
// globals, the enclosing group's class filters, then the target's own method
// filters. Declarations are deduplicated by identity only, never by
// equivalence of configuration; the first attachment wins.
func (p *Pipeline) resolve(target *Target) []registration {
	p.mu.Lock()
	globals := p.globals
	p.mu.Unlock()

	regs := make([]registration, 0, len(globals)+len(target.ClassFilters)+len(target.MethodFilters))
	seen := make(map[*Declaration]struct{})
	seq := 0

	appendScope := func(decls []*Declaration, scope Scope) {
		for _, decl := range decls {
			if decl == nil {
				continue
			}
			if _, ok := seen[decl]; ok {
				continue
			}
			seen[decl] = struct{}{}
			regs = append(regs, registration{decl: decl, scope: scope, seq: seq})
			seq++
		}
	}

	appendScope(globals, ScopeGlobal)
	appendScope(target.ClassFilters, ScopeClass)
	appendScope(target.MethodFilters, ScopeMethod)

	return regs
}

func (r registration) info(name string, stages []model.StageType) *model.FilterInfo {
	return &model.FilterInfo{
		Name:   name,
		Stages: stages,
		Scope:  r.scope,
		Order:  r.decl.order,
	}
}
