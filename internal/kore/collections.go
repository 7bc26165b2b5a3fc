package kore

import "fmt"

// Internalize rewrites raw symbol applications into the dedicated term
// shapes the engine reasons about: injection applications become
// Injection nodes and builtin collection constructors (unit, element,
// concat chains) become KList, KMap or KSet nodes. Shapes that do not
// fit, such as a list concat with an opaque operand in the middle, are
// left as applications with internalized children.
func Internalize(def *Definition, t Term) Term {
	switch term := t.(type) {
	case Variable, DomainValue:
		return term
	case AndTerm:
		return AndTerm{Left: Internalize(def, term.Left), Right: Internalize(def, term.Right)}
	case Injection:
		return MkInjection(term.From, term.To, Internalize(def, term.Child))
	case KList:
		elems := internalizeAll(def, term.Elems)
		var frame Term
		if term.Frame != nil {
			frame = Internalize(def, term.Frame)
		}
		return KList{CollSort: term.CollSort, Elems: elems, Frame: frame}
	case KMap:
		pairs := make([]KV, len(term.Pairs))
		for i, kv := range term.Pairs {
			pairs[i] = KV{Key: Internalize(def, kv.Key), Value: Internalize(def, kv.Value)}
		}
		var rest Term
		if term.Rest != nil {
			rest = Internalize(def, term.Rest)
		}
		return KMap{CollSort: term.CollSort, Pairs: pairs, Rest: rest}
	case KSet:
		elems := internalizeAll(def, term.Elems)
		var rest Term
		if term.Rest != nil {
			rest = Internalize(def, term.Rest)
		}
		return KSet{CollSort: term.CollSort, Elems: elems, Rest: rest}
	case SymbolApplication:
		return internalizeApp(def, term)
	default:
		panic(fmt.Sprintf("kore: unhandled term shape %T", t))
	}
}

func internalizeAll(def *Definition, ts []Term) []Term {
	out := make([]Term, len(ts))
	for i, t := range ts {
		out[i] = Internalize(def, t)
	}
	return out
}

func internalizeApp(def *Definition, app SymbolApplication) Term {
	args := internalizeAll(def, app.Args)
	app = SymbolApplication{Symbol: app.Symbol, SortParams: app.SortParams, Args: args}

	if app.Symbol.Name == InjectionLabel && len(app.SortParams) == 2 && len(args) == 1 {
		return MkInjection(app.SortParams[0], app.SortParams[1], args[0])
	}

	// Unit, element and concat applications all internalize; the role
	// lookup finds the concat symbol that owns the shape.
	concat, ok := def.CollectionRole(app.Symbol.Name)
	if !ok {
		return app
	}
	switch concat.Collection.Kind {
	case CollectionList:
		return internalizeList(def, app, concat)
	case CollectionMap:
		return internalizeMap(def, app, concat)
	case CollectionSet:
		return internalizeSet(def, app, concat)
	default:
		return app
	}
}

// flattenConcat splits a concat chain into its leaf operands, left to
// right. Nested applications of the same concat symbol are flattened
// through; everything else is a leaf.
func flattenConcat(concat string, t Term) []Term {
	app, ok := t.(SymbolApplication)
	if !ok || app.Symbol.Name != concat {
		return []Term{t}
	}
	var out []Term
	for _, arg := range app.Args {
		out = append(out, flattenConcat(concat, arg)...)
	}
	return out
}

func internalizeList(def *Definition, app SymbolApplication, concat *Symbol) Term {
	spec := concat.Collection
	var elems []Term
	var frame Term
	for _, leaf := range flattenConcat(concat.Name, app) {
		switch part := leaf.(type) {
		case SymbolApplication:
			switch part.Symbol.Name {
			case spec.Unit:
				continue
			case spec.Element:
				if len(part.Args) != 1 {
					return app
				}
				elems = append(elems, part.Args[0])
				continue
			}
		case KList:
			if part.Frame != nil {
				if frame != nil {
					return app
				}
				frame = part.Frame
			}
			elems = append(elems, part.Elems...)
			continue
		}
		// Opaque operand. Lists only support a single trailing frame.
		if frame != nil {
			return app
		}
		frame = leaf
	}
	if frame != nil && !isTrailingOpaque(flattenConcat(concat.Name, app), spec) {
		return app
	}
	return KList{CollSort: concat.ResultSort, Elems: elems, Frame: frame}
}

// isTrailingOpaque reports whether the only opaque leaf of a flattened
// list concat is its final operand.
func isTrailingOpaque(leaves []Term, spec *CollectionSpec) bool {
	for i, leaf := range leaves {
		if app, ok := leaf.(SymbolApplication); ok {
			if app.Symbol.Name == spec.Unit || app.Symbol.Name == spec.Element {
				continue
			}
		}
		if kl, ok := leaf.(KList); ok && kl.Frame == nil {
			continue
		}
		return i == len(leaves)-1
	}
	return true
}

func internalizeMap(def *Definition, app SymbolApplication, concat *Symbol) Term {
	spec := concat.Collection
	var pairs []KV
	var rest Term
	for _, leaf := range flattenConcat(concat.Name, app) {
		switch part := leaf.(type) {
		case SymbolApplication:
			switch part.Symbol.Name {
			case spec.Unit:
				continue
			case spec.Element:
				if len(part.Args) != 2 {
					return app
				}
				pairs = append(pairs, KV{Key: part.Args[0], Value: part.Args[1]})
				continue
			}
		case KMap:
			if part.Rest != nil {
				if rest != nil {
					return app
				}
				rest = part.Rest
			}
			pairs = append(pairs, part.Pairs...)
			continue
		}
		if rest != nil {
			return app
		}
		rest = leaf
	}
	return KMap{CollSort: concat.ResultSort, Pairs: pairs, Rest: rest}
}

// Externalize is the inverse of Internalize: injection nodes become
// inj applications and collection nodes become unit, element and concat
// applications of the sort's collection symbols.
func Externalize(def *Definition, t Term) Term {
	switch term := t.(type) {
	case Variable, DomainValue:
		return term
	case AndTerm:
		return AndTerm{Left: Externalize(def, term.Left), Right: Externalize(def, term.Right)}
	case Injection:
		inj, ok := def.Symbol(InjectionLabel)
		if !ok {
			inj = &Symbol{Name: InjectionLabel, SortVars: []string{"From", "To"}, Kind: SortInjection}
		}
		return SymbolApplication{
			Symbol:     inj,
			SortParams: []Sort{term.From, term.To},
			Args:       []Term{Externalize(def, term.Child)},
		}
	case SymbolApplication:
		args := make([]Term, len(term.Args))
		for i, a := range term.Args {
			args[i] = Externalize(def, a)
		}
		return SymbolApplication{Symbol: term.Symbol, SortParams: term.SortParams, Args: args}
	case KList:
		parts := make([]Term, 0, len(term.Elems)+1)
		concat, unit, element := collectionSymbols(def, term.CollSort)
		for _, e := range term.Elems {
			parts = append(parts, SymbolApplication{Symbol: element, Args: []Term{Externalize(def, e)}})
		}
		if term.Frame != nil {
			parts = append(parts, Externalize(def, term.Frame))
		}
		return foldConcat(concat, unit, parts)
	case KMap:
		parts := make([]Term, 0, len(term.Pairs)+1)
		concat, unit, element := collectionSymbols(def, term.CollSort)
		for _, kv := range term.Pairs {
			parts = append(parts, SymbolApplication{
				Symbol: element,
				Args:   []Term{Externalize(def, kv.Key), Externalize(def, kv.Value)},
			})
		}
		if term.Rest != nil {
			parts = append(parts, Externalize(def, term.Rest))
		}
		return foldConcat(concat, unit, parts)
	case KSet:
		parts := make([]Term, 0, len(term.Elems)+1)
		concat, unit, element := collectionSymbols(def, term.CollSort)
		for _, e := range term.Elems {
			parts = append(parts, SymbolApplication{Symbol: element, Args: []Term{Externalize(def, e)}})
		}
		if term.Rest != nil {
			parts = append(parts, Externalize(def, term.Rest))
		}
		return foldConcat(concat, unit, parts)
	default:
		panic(fmt.Sprintf("kore: unhandled term shape %T", t))
	}
}

func collectionSymbols(def *Definition, collSort Sort) (concat, unit, element *Symbol) {
	app, ok := collSort.(SortApp)
	if !ok {
		panic(fmt.Sprintf("kore: collection sort %v is not concrete", collSort))
	}
	concat, ok = def.CollectionSymbol(app.Name)
	if !ok {
		panic(fmt.Sprintf("kore: no collection symbols declared for sort %q", app.Name))
	}
	return concat, def.MustSymbol(concat.Collection.Unit), def.MustSymbol(concat.Collection.Element)
}

func foldConcat(concat, unit *Symbol, parts []Term) Term {
	if len(parts) == 0 {
		return SymbolApplication{Symbol: unit}
	}
	out := parts[len(parts)-1]
	for i := len(parts) - 2; i >= 0; i-- {
		out = SymbolApplication{Symbol: concat, Args: []Term{parts[i], out}}
	}
	return out
}

func internalizeSet(def *Definition, app SymbolApplication, concat *Symbol) Term {
	spec := concat.Collection
	var elems []Term
	var rest Term
	for _, leaf := range flattenConcat(concat.Name, app) {
		switch part := leaf.(type) {
		case SymbolApplication:
			switch part.Symbol.Name {
			case spec.Unit:
				continue
			case spec.Element:
				if len(part.Args) != 1 {
					return app
				}
				elems = append(elems, part.Args[0])
				continue
			}
		case KSet:
			if part.Rest != nil {
				if rest != nil {
					return app
				}
				rest = part.Rest
			}
			elems = append(elems, part.Elems...)
			continue
		}
		if rest != nil {
			return app
		}
		rest = leaf
	}
	return KSet{CollSort: concat.ResultSort, Elems: elems, Rest: rest}
}
