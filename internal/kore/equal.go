package kore

import "bytes"

// TermEqual reports structural equality of two terms. Symbols are
// compared by name, not by pointer, so terms built against different
// copies of one definition still compare equal.
func TermEqual(a, b Term) bool {
	switch left := a.(type) {
	case SymbolApplication:
		right, ok := b.(SymbolApplication)
		if !ok || left.Symbol.Name != right.Symbol.Name {
			return false
		}
		if len(left.SortParams) != len(right.SortParams) || len(left.Args) != len(right.Args) {
			return false
		}
		for i := range left.SortParams {
			if !SortEqual(left.SortParams[i], right.SortParams[i]) {
				return false
			}
		}
		for i := range left.Args {
			if !TermEqual(left.Args[i], right.Args[i]) {
				return false
			}
		}
		return true
	case Variable:
		right, ok := b.(Variable)
		return ok && left.Name == right.Name && SortEqual(left.VarSort, right.VarSort)
	case DomainValue:
		right, ok := b.(DomainValue)
		return ok && SortEqual(left.ValueSort, right.ValueSort) && bytes.Equal(left.Value, right.Value)
	case AndTerm:
		right, ok := b.(AndTerm)
		return ok && TermEqual(left.Left, right.Left) && TermEqual(left.Right, right.Right)
	case Injection:
		right, ok := b.(Injection)
		return ok && SortEqual(left.From, right.From) && SortEqual(left.To, right.To) &&
			TermEqual(left.Child, right.Child)
	case KList:
		right, ok := b.(KList)
		if !ok || !SortEqual(left.CollSort, right.CollSort) || len(left.Elems) != len(right.Elems) {
			return false
		}
		for i := range left.Elems {
			if !TermEqual(left.Elems[i], right.Elems[i]) {
				return false
			}
		}
		return optTermEqual(left.Frame, right.Frame)
	case KMap:
		right, ok := b.(KMap)
		if !ok || !SortEqual(left.CollSort, right.CollSort) || len(left.Pairs) != len(right.Pairs) {
			return false
		}
		for i := range left.Pairs {
			if !TermEqual(left.Pairs[i].Key, right.Pairs[i].Key) ||
				!TermEqual(left.Pairs[i].Value, right.Pairs[i].Value) {
				return false
			}
		}
		return optTermEqual(left.Rest, right.Rest)
	case KSet:
		right, ok := b.(KSet)
		if !ok || !SortEqual(left.CollSort, right.CollSort) || len(left.Elems) != len(right.Elems) {
			return false
		}
		for i := range left.Elems {
			if !TermEqual(left.Elems[i], right.Elems[i]) {
				return false
			}
		}
		return optTermEqual(left.Rest, right.Rest)
	default:
		return false
	}
}

func optTermEqual(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return TermEqual(a, b)
}
