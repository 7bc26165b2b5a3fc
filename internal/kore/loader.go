package kore

import (
	"encoding/json"
	"fmt"
	"os"
)

// A definition snapshot is a single JSON document declaring the sorts,
// subsorts, symbols and axioms of a compiled definition. Loading is two
// phase: declarations first, then axioms, so axiom patterns can resolve
// every symbol they mention.

const (
	defFormat  = "KORE-DEFINITION"
	defVersion = 1
)

type jsonDefinition struct {
	Format   string           `json:"format"`
	Version  int              `json:"version"`
	Sorts    []jsonSortDecl   `json:"sorts"`
	Subsorts []jsonSubsort    `json:"subsorts,omitempty"`
	Symbols  []jsonSymbolDecl `json:"symbols"`
	Equs     []jsonEquation   `json:"equations,omitempty"`
	Ceils    []jsonCeilAxiom  `json:"ceilAxioms,omitempty"`
}

type jsonSortDecl struct {
	Name string `json:"name"`
	Hook string `json:"hook,omitempty"`
}

type jsonSubsort struct {
	Sub   string `json:"sub"`
	Super string `json:"super"`
}

type jsonSymbolDecl struct {
	Name        string          `json:"name"`
	SortVars    []string        `json:"sortVars,omitempty"`
	ArgSorts    []jsonSort      `json:"argSorts,omitempty"`
	ResultSort  jsonSort        `json:"resultSort"`
	Kind        string          `json:"kind"`
	Idempotent  bool            `json:"idempotent,omitempty"`
	Associative bool            `json:"associative,omitempty"`
	Collection  *jsonCollection `json:"collection,omitempty"`
}

type jsonCollection struct {
	Kind    string `json:"kind"`
	Unit    string `json:"unit"`
	Element string `json:"element"`
}

type jsonEquation struct {
	Label    string    `json:"label"`
	Argument int       `json:"argument,omitempty"`
	Left     jsonNode  `json:"left"`
	Right    jsonNode  `json:"right"`
	Requires *jsonNode `json:"requires,omitempty"`
}

type jsonCeilAxiom struct {
	Label    string    `json:"label"`
	Pattern  jsonNode  `json:"pattern"`
	Requires *jsonNode `json:"requires,omitempty"`
	Result   jsonNode  `json:"result"`
}

func parseSymbolKind(s string) (SymbolKind, error) {
	switch s {
	case "constructor":
		return Constructor, nil
	case "total-function":
		return TotalFunction, nil
	case "partial-function":
		return PartialFunction, nil
	case "sort-injection":
		return SortInjection, nil
	default:
		return 0, fmt.Errorf("kore: unknown symbol kind %q", s)
	}
}

func parseCollectionKind(s string) (CollectionKind, error) {
	switch s {
	case "list":
		return CollectionList, nil
	case "map":
		return CollectionMap, nil
	case "set":
		return CollectionSet, nil
	default:
		return 0, fmt.Errorf("kore: unknown collection kind %q", s)
	}
}

// LoadDefinition parses a definition snapshot.
func LoadDefinition(data []byte) (*Definition, error) {
	var doc jsonDefinition
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("kore: parsing definition: %w", err)
	}
	if doc.Format != defFormat {
		return nil, fmt.Errorf("kore: unexpected definition format %q, want %q", doc.Format, defFormat)
	}
	if doc.Version != defVersion {
		return nil, fmt.Errorf("kore: unsupported definition version %d, want %d", doc.Version, defVersion)
	}

	def := NewDefinition()
	for _, sd := range doc.Sorts {
		if err := def.AddSort(SortDecl{Name: sd.Name, Hook: sd.Hook}); err != nil {
			return nil, err
		}
	}
	for _, ss := range doc.Subsorts {
		if err := def.AddSubsort(ss.Sub, ss.Super); err != nil {
			return nil, err
		}
	}
	for _, jd := range doc.Symbols {
		sym, err := decodeSymbolDecl(def, jd)
		if err != nil {
			return nil, err
		}
		if err := def.AddSymbol(sym); err != nil {
			return nil, err
		}
	}
	for _, je := range doc.Equs {
		eq, err := decodeEquation(def, je)
		if err != nil {
			return nil, err
		}
		if err := def.AddEquation(eq); err != nil {
			return nil, err
		}
	}
	for _, jc := range doc.Ceils {
		ax, err := decodeCeilAxiom(def, jc)
		if err != nil {
			return nil, err
		}
		if err := def.AddCeilAxiom(ax); err != nil {
			return nil, err
		}
	}
	return def, nil
}

// LoadDefinitionFile reads and parses a definition snapshot from disk.
func LoadDefinitionFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("kore: reading definition %s: %w", path, err)
	}
	def, err := LoadDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("kore: loading definition %s: %w", path, err)
	}
	return def, nil
}

func decodeSymbolDecl(def *Definition, jd jsonSymbolDecl) (*Symbol, error) {
	kind, err := parseSymbolKind(jd.Kind)
	if err != nil {
		return nil, fmt.Errorf("kore: symbol %q: %w", jd.Name, err)
	}
	argSorts := make([]Sort, len(jd.ArgSorts))
	for i, js := range jd.ArgSorts {
		s, err := decodeSort(js)
		if err != nil {
			return nil, fmt.Errorf("kore: symbol %q argument sort: %w", jd.Name, err)
		}
		argSorts[i] = s
	}
	resultSort, err := decodeSort(jd.ResultSort)
	if err != nil {
		return nil, fmt.Errorf("kore: symbol %q result sort: %w", jd.Name, err)
	}
	sym := &Symbol{
		Name:        jd.Name,
		SortVars:    jd.SortVars,
		ArgSorts:    argSorts,
		ResultSort:  resultSort,
		Kind:        kind,
		Idempotent:  jd.Idempotent,
		Associative: jd.Associative,
	}
	if jd.Collection != nil {
		collKind, err := parseCollectionKind(jd.Collection.Kind)
		if err != nil {
			return nil, fmt.Errorf("kore: symbol %q: %w", jd.Name, err)
		}
		sym.Collection = &CollectionSpec{
			Kind:    collKind,
			Unit:    jd.Collection.Unit,
			Element: jd.Collection.Element,
		}
	}
	return sym, nil
}

func decodeEquation(def *Definition, je jsonEquation) (*Equation, error) {
	left, err := decodeTermNode(def, je.Left)
	if err != nil {
		return nil, fmt.Errorf("kore: equation %q LHS: %w", je.Label, err)
	}
	right, err := decodeTermNode(def, je.Right)
	if err != nil {
		return nil, fmt.Errorf("kore: equation %q RHS: %w", je.Label, err)
	}
	requires := Predicate(Top{})
	if je.Requires != nil {
		requires, err = decodePredicateNode(def, *je.Requires)
		if err != nil {
			return nil, fmt.Errorf("kore: equation %q requires: %w", je.Label, err)
		}
	}
	return &Equation{
		Label:    je.Label,
		Requires: requires,
		Left:     Internalize(def, left),
		Right:    Internalize(def, right),
		Argument: je.Argument,
	}, nil
}

func decodeCeilAxiom(def *Definition, jc jsonCeilAxiom) (*CeilAxiom, error) {
	pattern, err := decodeTermNode(def, jc.Pattern)
	if err != nil {
		return nil, fmt.Errorf("kore: ceil axiom %q pattern: %w", jc.Label, err)
	}
	requires := Predicate(Top{})
	if jc.Requires != nil {
		requires, err = decodePredicateNode(def, *jc.Requires)
		if err != nil {
			return nil, fmt.Errorf("kore: ceil axiom %q requires: %w", jc.Label, err)
		}
	}
	result, err := decodePredicateNode(def, jc.Result)
	if err != nil {
		return nil, fmt.Errorf("kore: ceil axiom %q result: %w", jc.Label, err)
	}
	return &CeilAxiom{
		Label:    jc.Label,
		Pattern:  Internalize(def, pattern),
		Requires: requires,
		Result:   result,
	}, nil
}
