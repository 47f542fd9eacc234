// Package registry provides a generic concurrency-safe table of values
// indexed by key.
//
// ncalc uses it for the built-in function table, for the per-option parser
// cache and for the compiled LIKE pattern cache:
//
//	builtins := registry.New[string, Builtin]()
//	builtins.Register("Abs", abs)
//
//	fn, ok := builtins.Get("Abs")
//	if !ok {
//	    _, fn, ok = builtins.Find(func(name string, _ Builtin) bool {
//	        return strings.EqualFold(name, "abs")
//	    })
//	}
//
// # Caches
//
// GetOrCreate builds a missing value at most once per key, even under
// concurrent access. A registry created with NewBounded drops all of its
// entries when it is full and a new key arrives, which keeps caches keyed
// by user input from growing without limit:
//
//	patterns := registry.NewBounded[string, *regexp.Regexp](256)
//	re := patterns.GetOrCreate(pattern, func() *regexp.Regexp {
//	    return compile(pattern)
//	})
//
// Range and Find work on a snapshot, so callbacks may modify the registry.
package registry
