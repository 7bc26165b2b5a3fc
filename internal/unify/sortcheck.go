package unify

import (
	"fmt"

	"github.com/korelang/ksym/internal/kore"
)

// sortChecker threads sort-variable bindings through one unification
// run. Decomposition sites demand exact sort equality; variable and
// domain-value sites only demand subsort compatibility.
type sortChecker struct {
	def      *kore.Definition
	bindings map[string]kore.Sort
}

func newSortChecker(def *kore.Definition) *sortChecker {
	return &sortChecker{def: def, bindings: make(map[string]kore.Sort)}
}

// resolve chases a sort through the current bindings.
func (c *sortChecker) resolve(s kore.Sort) kore.Sort {
	for {
		v, ok := s.(kore.SortVar)
		if !ok {
			return s
		}
		bound, ok := c.bindings[v.Name]
		if !ok {
			return s
		}
		s = bound
	}
}

// bind records a sort-variable binding. A rebinding must agree with the
// first one; when either side still resolves to a free variable, the
// binding is forwarded to that variable instead.
func (c *sortChecker) bind(name string, to kore.Sort) *SortError {
	if existing, ok := c.bindings[name]; ok {
		e, t := c.resolve(existing), c.resolve(to)
		if kore.SortEqual(e, t) {
			return nil
		}
		if ev, ok := e.(kore.SortVar); ok {
			return c.bind(ev.Name, t)
		}
		if tv, ok := t.(kore.SortVar); ok {
			return c.bind(tv.Name, e)
		}
		return &SortError{Reason: InconsistentSortVariable, Var: name, Left: e, Right: t}
	}
	if tv, ok := c.resolve(to).(kore.SortVar); ok && tv.Name == name {
		// Already the same variable through the bindings; recording it
		// would close a resolution cycle.
		return nil
	}
	c.bindings[name] = to
	return nil
}

// exact requires the two sorts to be equal, binding sort variables as
// needed. Used where terms decompose, since argument positions of one
// symbol must agree exactly. Variable identity is checked before
// resolution so a conflicting rebinding is reported against the
// variable, not against whatever it resolved to.
func (c *sortChecker) exact(a, b kore.Sort) *SortError {
	av, aIsVar := a.(kore.SortVar)
	bv, bIsVar := b.(kore.SortVar)
	switch {
	case aIsVar && bIsVar:
		if av.Name == bv.Name {
			return nil
		}
		return c.bind(av.Name, b)
	case aIsVar:
		return c.bind(av.Name, b)
	case bIsVar:
		return c.bind(bv.Name, a)
	}

	aApp, ok := a.(kore.SortApp)
	if !ok {
		panic(fmt.Sprintf("unify: unhandled sort shape %T", a))
	}
	bApp, ok := b.(kore.SortApp)
	if !ok {
		panic(fmt.Sprintf("unify: unhandled sort shape %T", b))
	}
	if aApp.Name != bApp.Name || len(aApp.Args) != len(bApp.Args) {
		return &SortError{Reason: IncompatibleSorts, Left: a, Right: b}
	}
	for i := range aApp.Args {
		if err := c.exact(aApp.Args[i], bApp.Args[i]); err != nil {
			return err
		}
	}
	return nil
}

// compatible requires one sort to be a subsort of the other after
// resolution. Unresolved sort variables are accepted; they stay free.
func (c *sortChecker) compatible(a, b kore.Sort) *SortError {
	a, b = c.resolve(a), c.resolve(b)
	if _, ok := a.(kore.SortVar); ok {
		return nil
	}
	if _, ok := b.(kore.SortVar); ok {
		return nil
	}
	if !c.def.SortsCompatible(a, b) {
		return &SortError{Reason: IncompatibleSorts, Left: a, Right: b}
	}
	return nil
}

// snapshot copies the current bindings for inclusion in a result.
func (c *sortChecker) snapshot() map[string]kore.Sort {
	if len(c.bindings) == 0 {
		return nil
	}
	out := make(map[string]kore.Sort, len(c.bindings))
	for k, v := range c.bindings {
		out[k] = v
	}
	return out
}
