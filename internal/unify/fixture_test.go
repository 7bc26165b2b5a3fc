package unify

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/korelang/ksym/internal/kore"
)

var (
	intSort   = kore.MkSort("SortInt")
	natSort   = kore.MkSort("SortNat")
	boolSort  = kore.MkSort("SortBool")
	kitemSort = kore.MkSort("SortKItem")
	listSort  = kore.MkSort("SortList")
	pairSort  = kore.MkSort("SortPair")
)

func newTestDef(t *testing.T) *kore.Definition {
	t.Helper()
	def := kore.NewDefinition()

	for _, s := range []string{"SortInt", "SortNat", "SortBool", "SortKItem", "SortList", "SortPair"} {
		require.NoError(t, def.AddSort(kore.SortDecl{Name: s}))
	}
	require.NoError(t, def.AddSubsort("SortNat", "SortInt"))
	require.NoError(t, def.AddSubsort("SortInt", "SortKItem"))

	symbols := []*kore.Symbol{
		{Name: "zero", ResultSort: natSort, Kind: kore.Constructor},
		{Name: "succ", ArgSorts: []kore.Sort{natSort}, ResultSort: natSort, Kind: kore.Constructor},
		{Name: "pair", ArgSorts: []kore.Sort{intSort, intSort}, ResultSort: pairSort, Kind: kore.Constructor},
		{Name: "tag", ArgSorts: []kore.Sort{intSort}, ResultSort: pairSort, Kind: kore.Constructor},
		{Name: "plus", ArgSorts: []kore.Sort{intSort, intSort}, ResultSort: intSort, Kind: kore.TotalFunction},
		{Name: "div", ArgSorts: []kore.Sort{intSort, intSort}, ResultSort: intSort, Kind: kore.PartialFunction},
		{
			Name: "both", SortVars: []string{"S"},
			ArgSorts:   []kore.Sort{kore.SortVar{Name: "S"}, kore.SortVar{Name: "S"}},
			ResultSort: pairSort, Kind: kore.Constructor,
		},
		{
			Name:     "duo",
			ArgSorts: []kore.Sort{pairSort, pairSort}, ResultSort: pairSort,
			Kind: kore.Constructor,
		},
	}
	for _, sym := range symbols {
		require.NoError(t, def.AddSymbol(sym))
	}
	return def
}

func intDV(v string) kore.DomainValue { return kore.DV(intSort, v) }

func intVar(name string) kore.Variable { return kore.Var(name, intSort) }
