package ceil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/korelang/ksym/internal/kore"
)

var (
	intSort  = kore.MkSort("SortInt")
	natSort  = kore.MkSort("SortNat")
	pairSort = kore.MkSort("SortPair")
	listSort = kore.MkSort("SortList")
	mapSort  = kore.MkSort("SortMap")
	setSort  = kore.MkSort("SortSet")
)

// newTestDef builds the definition the package tests share: a numeric
// tower with total and partial arithmetic, one constructor pair, and
// builtin collection sorts. Tests add ceil axioms per case.
func newTestDef(t *testing.T) *kore.Definition {
	t.Helper()
	def := kore.NewDefinition()

	sorts := []kore.SortDecl{
		{Name: "SortInt"},
		{Name: "SortNat"},
		{Name: "SortKItem"},
		{Name: "SortPair"},
		{Name: "SortList", Hook: "LIST.List"},
		{Name: "SortMap", Hook: "MAP.Map"},
		{Name: "SortSet", Hook: "SET.Set"},
	}
	for _, s := range sorts {
		require.NoError(t, def.AddSort(s))
	}
	require.NoError(t, def.AddSubsort("SortNat", "SortInt"))
	require.NoError(t, def.AddSubsort("SortInt", "SortKItem"))

	symbols := []*kore.Symbol{
		{Name: "zero", ResultSort: natSort, Kind: kore.Constructor},
		{Name: "succ", ArgSorts: []kore.Sort{natSort}, ResultSort: natSort, Kind: kore.Constructor},
		{Name: "pair", ArgSorts: []kore.Sort{intSort, intSort}, ResultSort: pairSort, Kind: kore.Constructor},
		{Name: "plus", ArgSorts: []kore.Sort{intSort, intSort}, ResultSort: intSort, Kind: kore.TotalFunction},
		{Name: "div", ArgSorts: []kore.Sort{intSort, intSort}, ResultSort: intSort, Kind: kore.PartialFunction},
	}
	for _, sym := range symbols {
		require.NoError(t, def.AddSymbol(sym))
	}
	return def
}

func intDV(v string) kore.DomainValue { return kore.DV(intSort, v) }

func intVar(name string) kore.Variable { return kore.Var(name, intSort) }
