package kore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestDef builds the small definition the package tests share: a
// numeric tower SortNat <: SortInt, a pair constructor, total and
// partial arithmetic, a polymorphic identity and one builtin collection
// per kind.
func newTestDef(t *testing.T) *Definition {
	t.Helper()
	def := NewDefinition()

	sorts := []SortDecl{
		{Name: "SortInt"},
		{Name: "SortNat"},
		{Name: "SortBool"},
		{Name: "SortPair"},
		{Name: "SortKItem"},
		{Name: "SortList", Hook: "LIST.List"},
		{Name: "SortMap", Hook: "MAP.Map"},
		{Name: "SortSet", Hook: "SET.Set"},
	}
	for _, s := range sorts {
		require.NoError(t, def.AddSort(s))
	}
	require.NoError(t, def.AddSubsort("SortNat", "SortInt"))
	require.NoError(t, def.AddSubsort("SortInt", "SortKItem"))

	intSort := MkSort("SortInt")
	natSort := MkSort("SortNat")
	boolSort := MkSort("SortBool")

	symbols := []*Symbol{
		{Name: "zero", ResultSort: natSort, Kind: Constructor},
		{Name: "succ", ArgSorts: []Sort{natSort}, ResultSort: natSort, Kind: Constructor},
		{Name: "pair", ArgSorts: []Sort{intSort, intSort}, ResultSort: MkSort("SortPair"), Kind: Constructor},
		{Name: "plus", ArgSorts: []Sort{intSort, intSort}, ResultSort: intSort, Kind: TotalFunction},
		{Name: "div", ArgSorts: []Sort{intSort, intSort}, ResultSort: intSort, Kind: PartialFunction},
		{Name: "not", ArgSorts: []Sort{boolSort}, ResultSort: boolSort, Kind: TotalFunction},
		{
			Name: "id", SortVars: []string{"S"},
			ArgSorts: []Sort{SortVar{Name: "S"}}, ResultSort: SortVar{Name: "S"},
			Kind: TotalFunction,
		},
		{
			Name: InjectionLabel, SortVars: []string{"From", "To"},
			ArgSorts: []Sort{SortVar{Name: "From"}}, ResultSort: SortVar{Name: "To"},
			Kind: SortInjection,
		},
		{Name: "unitList", ResultSort: MkSort("SortList"), Kind: TotalFunction},
		{Name: "elemList", ArgSorts: []Sort{intSort}, ResultSort: MkSort("SortList"), Kind: TotalFunction},
		{
			Name: "concatList", ArgSorts: []Sort{MkSort("SortList"), MkSort("SortList")},
			ResultSort: MkSort("SortList"), Kind: TotalFunction, Associative: true,
			Collection: &CollectionSpec{Kind: CollectionList, Unit: "unitList", Element: "elemList"},
		},
		{Name: "unitMap", ResultSort: MkSort("SortMap"), Kind: TotalFunction},
		{Name: "elemMap", ArgSorts: []Sort{intSort, intSort}, ResultSort: MkSort("SortMap"), Kind: TotalFunction},
		{
			Name: "concatMap", ArgSorts: []Sort{MkSort("SortMap"), MkSort("SortMap")},
			ResultSort: MkSort("SortMap"), Kind: PartialFunction, Associative: true,
			Collection: &CollectionSpec{Kind: CollectionMap, Unit: "unitMap", Element: "elemMap"},
		},
		{Name: "unitSet", ResultSort: MkSort("SortSet"), Kind: TotalFunction},
		{Name: "elemSet", ArgSorts: []Sort{intSort}, ResultSort: MkSort("SortSet"), Kind: TotalFunction},
		{
			Name: "concatSet", ArgSorts: []Sort{MkSort("SortSet"), MkSort("SortSet")},
			ResultSort: MkSort("SortSet"), Kind: PartialFunction, Associative: true, Idempotent: true,
			Collection: &CollectionSpec{Kind: CollectionSet, Unit: "unitSet", Element: "elemSet"},
		},
	}
	for _, sym := range symbols {
		require.NoError(t, def.AddSymbol(sym))
	}
	return def
}

func intDV(v string) DomainValue { return DV(MkSort("SortInt"), v) }

func intVar(name string) Variable { return Var(name, MkSort("SortInt")) }
