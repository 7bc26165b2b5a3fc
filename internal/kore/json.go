package kore

import (
	"encoding/json"
	"fmt"
)

// The wire format follows KORE-JSON: every pattern node carries a
// "tag", and the whole document is wrapped in a format/version
// envelope. Symbols are resolved against a Definition on decode, so a
// decoded term is always well formed with respect to the loaded
// definition.

const (
	jsonFormat  = "KORE"
	jsonVersion = 1
)

type jsonEnvelope struct {
	Format  string          `json:"format"`
	Version int             `json:"version"`
	Term    json.RawMessage `json:"term"`
}

type jsonSort struct {
	Tag  string     `json:"tag"`
	Name string     `json:"name"`
	Args []jsonSort `json:"args,omitempty"`
}

type jsonNode struct {
	Tag      string     `json:"tag"`
	Name     string     `json:"name,omitempty"`
	Sort     *jsonSort  `json:"sort,omitempty"`
	Sorts    []jsonSort `json:"sorts,omitempty"`
	Value    string     `json:"value,omitempty"`
	Args     []jsonNode `json:"args,omitempty"`
	Arg      *jsonNode  `json:"arg,omitempty"`
	Patterns []jsonNode `json:"patterns,omitempty"`
	First    *jsonNode  `json:"first,omitempty"`
	Second   *jsonNode  `json:"second,omitempty"`
	Var      string     `json:"var,omitempty"`
	VarSort  *jsonSort  `json:"varSort,omitempty"`
}

func decodeSort(js jsonSort) (Sort, error) {
	switch js.Tag {
	case "SortApp":
		args := make([]Sort, len(js.Args))
		for i, a := range js.Args {
			s, err := decodeSort(a)
			if err != nil {
				return nil, err
			}
			args[i] = s
		}
		return SortApp{Name: js.Name, Args: args}, nil
	case "SortVar":
		return SortVar{Name: js.Name}, nil
	default:
		return nil, fmt.Errorf("kore: unknown sort tag %q", js.Tag)
	}
}

func encodeSort(s Sort) jsonSort {
	switch srt := s.(type) {
	case SortApp:
		args := make([]jsonSort, len(srt.Args))
		for i, a := range srt.Args {
			args[i] = encodeSort(a)
		}
		return jsonSort{Tag: "SortApp", Name: srt.Name, Args: args}
	case SortVar:
		return jsonSort{Tag: "SortVar", Name: srt.Name}
	default:
		panic(fmt.Sprintf("kore: unhandled sort shape %T", s))
	}
}

// DecodeTerm parses a KORE-JSON document into an internalized term.
func DecodeTerm(def *Definition, data []byte) (Term, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("kore: parsing term document: %w", err)
	}
	if err := checkEnvelope(env); err != nil {
		return nil, err
	}
	var node jsonNode
	if err := json.Unmarshal(env.Term, &node); err != nil {
		return nil, fmt.Errorf("kore: parsing term node: %w", err)
	}
	t, err := decodeTermNode(def, node)
	if err != nil {
		return nil, err
	}
	return Internalize(def, t), nil
}

// DecodePredicate parses a KORE-JSON document into a predicate.
func DecodePredicate(def *Definition, data []byte) (Predicate, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("kore: parsing predicate document: %w", err)
	}
	if err := checkEnvelope(env); err != nil {
		return nil, err
	}
	var node jsonNode
	if err := json.Unmarshal(env.Term, &node); err != nil {
		return nil, fmt.Errorf("kore: parsing predicate node: %w", err)
	}
	return decodePredicateNode(def, node)
}

func checkEnvelope(env jsonEnvelope) error {
	if env.Format != jsonFormat {
		return fmt.Errorf("kore: unexpected document format %q, want %q", env.Format, jsonFormat)
	}
	if env.Version != jsonVersion {
		return fmt.Errorf("kore: unsupported document version %d, want %d", env.Version, jsonVersion)
	}
	return nil
}

func decodeTermNode(def *Definition, node jsonNode) (Term, error) {
	switch node.Tag {
	case "EVar":
		if node.Sort == nil {
			return nil, fmt.Errorf("kore: variable %q is missing its sort", node.Name)
		}
		s, err := decodeSort(*node.Sort)
		if err != nil {
			return nil, err
		}
		return Variable{Name: node.Name, VarSort: s}, nil
	case "DV":
		if node.Sort == nil {
			return nil, fmt.Errorf("kore: domain value is missing its sort")
		}
		s, err := decodeSort(*node.Sort)
		if err != nil {
			return nil, err
		}
		return DomainValue{ValueSort: s, Value: []byte(node.Value)}, nil
	case "App":
		sym, ok := def.Symbol(node.Name)
		if !ok {
			return nil, fmt.Errorf("kore: term references undeclared symbol %q", node.Name)
		}
		sorts := make([]Sort, len(node.Sorts))
		for i, js := range node.Sorts {
			s, err := decodeSort(js)
			if err != nil {
				return nil, err
			}
			sorts[i] = s
		}
		args := make([]Term, len(node.Args))
		for i, ja := range node.Args {
			a, err := decodeTermNode(def, ja)
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		if len(args) != len(sym.ArgSorts) {
			return nil, fmt.Errorf("kore: symbol %q applied to %d arguments, declared with %d",
				sym.Name, len(args), len(sym.ArgSorts))
		}
		return SymbolApplication{Symbol: sym, SortParams: sorts, Args: args}, nil
	case "And":
		if len(node.Patterns) < 2 {
			return nil, fmt.Errorf("kore: term conjunction needs at least two patterns, got %d", len(node.Patterns))
		}
		out, err := decodeTermNode(def, node.Patterns[0])
		if err != nil {
			return nil, err
		}
		for _, jp := range node.Patterns[1:] {
			right, err := decodeTermNode(def, jp)
			if err != nil {
				return nil, err
			}
			out = AndTerm{Left: out, Right: right}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("kore: tag %q is not a term pattern", node.Tag)
	}
}

func decodePredicateNode(def *Definition, node jsonNode) (Predicate, error) {
	switch node.Tag {
	case "Top":
		return Top{}, nil
	case "Bottom":
		return Bottom{}, nil
	case "Ceil":
		if node.Arg == nil {
			return nil, fmt.Errorf("kore: ceil is missing its argument")
		}
		t, err := decodeTermNode(def, *node.Arg)
		if err != nil {
			return nil, err
		}
		return Ceil{Of: Internalize(def, t)}, nil
	case "Equals":
		left, right, err := decodeTermPair(def, node)
		if err != nil {
			return nil, err
		}
		return Equals{Left: left, Right: right}, nil
	case "In":
		left, right, err := decodeTermPair(def, node)
		if err != nil {
			return nil, err
		}
		return In{Element: left, Container: right}, nil
	case "Exists", "Forall":
		if node.VarSort == nil || node.Arg == nil {
			return nil, fmt.Errorf("kore: %s is missing its binder or body", node.Tag)
		}
		vs, err := decodeSort(*node.VarSort)
		if err != nil {
			return nil, err
		}
		body, err := decodePredicateNode(def, *node.Arg)
		if err != nil {
			return nil, err
		}
		v := Variable{Name: node.Var, VarSort: vs}
		if node.Tag == "Exists" {
			return Exists{Var: v, Body: body}, nil
		}
		return Forall{Var: v, Body: body}, nil
	case "And", "Or", "Iff", "Implies":
		preds, err := decodePredicateList(def, node)
		if err != nil {
			return nil, err
		}
		return foldBinaryPredicate(node.Tag, preds)
	case "Not":
		if node.Arg == nil {
			return nil, fmt.Errorf("kore: not is missing its argument")
		}
		body, err := decodePredicateNode(def, *node.Arg)
		if err != nil {
			return nil, err
		}
		return Not{Body: body}, nil
	default:
		// A bare boolean-sorted term is accepted as a predicate.
		t, err := decodeTermNode(def, node)
		if err != nil {
			return nil, fmt.Errorf("kore: tag %q is not a predicate pattern", node.Tag)
		}
		return BoolTerm{Term: Internalize(def, t)}, nil
	}
}

func decodeTermPair(def *Definition, node jsonNode) (Term, Term, error) {
	if node.First == nil || node.Second == nil {
		return nil, nil, fmt.Errorf("kore: %s is missing an operand", node.Tag)
	}
	left, err := decodeTermNode(def, *node.First)
	if err != nil {
		return nil, nil, err
	}
	right, err := decodeTermNode(def, *node.Second)
	if err != nil {
		return nil, nil, err
	}
	return Internalize(def, left), Internalize(def, right), nil
}

func decodePredicateList(def *Definition, node jsonNode) ([]Predicate, error) {
	raw := node.Patterns
	if raw == nil && node.First != nil && node.Second != nil {
		raw = []jsonNode{*node.First, *node.Second}
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("kore: %s needs at least two operands, got %d", node.Tag, len(raw))
	}
	preds := make([]Predicate, len(raw))
	for i, jp := range raw {
		p, err := decodePredicateNode(def, jp)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	return preds, nil
}

func foldBinaryPredicate(tag string, preds []Predicate) (Predicate, error) {
	out := preds[0]
	for _, p := range preds[1:] {
		switch tag {
		case "And":
			out = And{Left: out, Right: p}
		case "Or":
			out = Or{Left: out, Right: p}
		case "Iff":
			out = Iff{Left: out, Right: p}
		case "Implies":
			out = Implies{Left: out, Right: p}
		}
	}
	return out, nil
}

// EncodeTerm renders a term as a KORE-JSON document. Internal shapes
// are externalized first so the output round-trips through DecodeTerm.
func EncodeTerm(def *Definition, t Term) ([]byte, error) {
	node := encodeTermNode(Externalize(def, t))
	return marshalEnvelope(node)
}

// EncodePredicate renders a predicate as a KORE-JSON document.
func EncodePredicate(def *Definition, p Predicate) ([]byte, error) {
	node := encodePredicateNode(def, p)
	return marshalEnvelope(node)
}

func marshalEnvelope(node jsonNode) ([]byte, error) {
	raw, err := json.Marshal(node)
	if err != nil {
		return nil, fmt.Errorf("kore: encoding pattern: %w", err)
	}
	return json.Marshal(jsonEnvelope{Format: jsonFormat, Version: jsonVersion, Term: raw})
}

func encodeTermNode(t Term) jsonNode {
	switch term := t.(type) {
	case Variable:
		s := encodeSort(term.VarSort)
		return jsonNode{Tag: "EVar", Name: term.Name, Sort: &s}
	case DomainValue:
		s := encodeSort(term.ValueSort)
		return jsonNode{Tag: "DV", Sort: &s, Value: string(term.Value)}
	case SymbolApplication:
		sorts := make([]jsonSort, len(term.SortParams))
		for i, sp := range term.SortParams {
			sorts[i] = encodeSort(sp)
		}
		args := make([]jsonNode, len(term.Args))
		for i, a := range term.Args {
			args[i] = encodeTermNode(a)
		}
		return jsonNode{Tag: "App", Name: term.Symbol.Name, Sorts: sorts, Args: args}
	case AndTerm:
		return jsonNode{Tag: "And", Patterns: []jsonNode{encodeTermNode(term.Left), encodeTermNode(term.Right)}}
	default:
		panic(fmt.Sprintf("kore: term shape %T must be externalized before encoding", t))
	}
}

func encodePredicateNode(def *Definition, p Predicate) jsonNode {
	switch pred := p.(type) {
	case Top:
		return jsonNode{Tag: "Top"}
	case Bottom:
		return jsonNode{Tag: "Bottom"}
	case Ceil:
		arg := encodeTermNode(Externalize(def, pred.Of))
		return jsonNode{Tag: "Ceil", Arg: &arg}
	case Equals:
		first := encodeTermNode(Externalize(def, pred.Left))
		second := encodeTermNode(Externalize(def, pred.Right))
		return jsonNode{Tag: "Equals", First: &first, Second: &second}
	case In:
		first := encodeTermNode(Externalize(def, pred.Element))
		second := encodeTermNode(Externalize(def, pred.Container))
		return jsonNode{Tag: "In", First: &first, Second: &second}
	case Exists:
		vs := encodeSort(pred.Var.VarSort)
		body := encodePredicateNode(def, pred.Body)
		return jsonNode{Tag: "Exists", Var: pred.Var.Name, VarSort: &vs, Arg: &body}
	case Forall:
		vs := encodeSort(pred.Var.VarSort)
		body := encodePredicateNode(def, pred.Body)
		return jsonNode{Tag: "Forall", Var: pred.Var.Name, VarSort: &vs, Arg: &body}
	case And:
		return jsonNode{Tag: "And", Patterns: []jsonNode{encodePredicateNode(def, pred.Left), encodePredicateNode(def, pred.Right)}}
	case Or:
		return jsonNode{Tag: "Or", Patterns: []jsonNode{encodePredicateNode(def, pred.Left), encodePredicateNode(def, pred.Right)}}
	case Not:
		body := encodePredicateNode(def, pred.Body)
		return jsonNode{Tag: "Not", Arg: &body}
	case Iff:
		return jsonNode{Tag: "Iff", Patterns: []jsonNode{encodePredicateNode(def, pred.Left), encodePredicateNode(def, pred.Right)}}
	case Implies:
		return jsonNode{Tag: "Implies", Patterns: []jsonNode{encodePredicateNode(def, pred.Left), encodePredicateNode(def, pred.Right)}}
	case BoolTerm:
		return encodeTermNode(Externalize(def, pred.Term))
	default:
		panic(fmt.Sprintf("kore: unhandled predicate shape %T", p))
	}
}
