package filterline

import "reflect"

// filterName derives a stable, human-readable name for a filter instance.
// A filter may override it through the Named interface; otherwise the name
// falls back to a "pkg.Type" identifier derived from the Go type with
// pointer indirections stripped.
func filterName(f Filter) string {
	if named, ok := f.(Named); ok {
		if name := named.FilterName(); name != "" {
			return name
		}
	}

	t := reflect.TypeOf(f)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "<nil>"
	}

	return t.String()
}
