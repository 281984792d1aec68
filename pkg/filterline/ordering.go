package filterline

import "sort"

// sortRegistrations computes the execution order. The primary key is the
// explicit order value (default 0, ascending), the secondary key is scope
// (global < class < method, outer to inner), and remaining ties keep
// registration sequence (stable sort).
//
// The explicit order overriding scope is a first-class capability: a
// method-scope filter declared with a very low order runs outside every
// default-order global filter. Lower orders nest outer, meaning their pre
// phases run earlier and their post phases run later (strict nesting, not
// sequencing).
func sortRegistrations(regs []registration) {
	sort.SliceStable(regs, func(i, j int) bool {
		if regs[i].decl.order != regs[j].decl.order {
			return regs[i].decl.order < regs[j].decl.order
		}

		return regs[i].scope < regs[j].scope
	})
}
