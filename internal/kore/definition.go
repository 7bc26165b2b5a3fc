package kore

import (
	"fmt"

	"github.com/hashicorp/go-set/v2"
)

// InjectionLabel is the distinguished symbol name for sort injections.
const InjectionLabel = "inj"

// SortDecl declares a sort. Hook carries the builtin hook attribute
// ("LIST.List", "MAP.Map", "SET.Set") when the sort is backed by a
// builtin collection.
type SortDecl struct {
	Name string
	Hook string
}

// Equation is a function-definition axiom: Left rewrites to Right when
// Requires holds. Left is a symbol application over the equation's own
// variables; Argument names the argument slot the argument simplifier
// narrows.
type Equation struct {
	Label    string
	Requires Predicate
	Left     Term
	Right    Term
	Argument int
}

// LeftApp returns the LHS as a symbol application.
func (e Equation) LeftApp() (SymbolApplication, bool) {
	app, ok := e.Left.(SymbolApplication)
	return app, ok
}

func (e Equation) String() string {
	s := e.Label + ": " + e.Left.String() + " => " + e.Right.String()
	if e.Requires != nil && !e.Requires.IsTop() {
		s += " requires " + e.Requires.String()
	}
	return s
}

// CeilAxiom is a user definedness axiom: whenever Pattern matches a
// term and Requires holds, the term's definedness is Result.
type CeilAxiom struct {
	Label    string
	Pattern  Term
	Requires Predicate
	Result   Predicate
}

// Definition is the static context all engine operations run against:
// declared sorts with their subsort closure, declared symbols, and the
// axioms indexed by head symbol.
type Definition struct {
	sorts      map[string]SortDecl
	subsorts   map[string]*set.Set[string]
	symbols    map[string]*Symbol
	equations  map[string][]*Equation
	ceilAxioms map[string][]*CeilAxiom

	// collections maps a collection sort name to its concat symbol;
	// collRoles maps each of the collection's unit, element and concat
	// symbol names to that same concat symbol.
	collections map[string]*Symbol
	collRoles   map[string]*Symbol
}

// NewDefinition returns an empty definition.
func NewDefinition() *Definition {
	return &Definition{
		sorts:       make(map[string]SortDecl),
		subsorts:    make(map[string]*set.Set[string]),
		symbols:     make(map[string]*Symbol),
		equations:   make(map[string][]*Equation),
		ceilAxioms:  make(map[string][]*CeilAxiom),
		collections: make(map[string]*Symbol),
		collRoles:   make(map[string]*Symbol),
	}
}

// AddSort declares a sort. Redeclaring a name is an error.
func (d *Definition) AddSort(decl SortDecl) error {
	if _, dup := d.sorts[decl.Name]; dup {
		return fmt.Errorf("kore: sort %q already declared", decl.Name)
	}
	d.sorts[decl.Name] = decl
	return nil
}

// HasSort reports whether the named sort is declared.
func (d *Definition) HasSort(name string) bool {
	_, ok := d.sorts[name]
	return ok
}

// SortHook returns the hook attribute of a declared sort, or "".
func (d *Definition) SortHook(name string) string {
	return d.sorts[name].Hook
}

// AddSubsort records sub <: super and maintains the transitive closure,
// so IsSubsort stays a set lookup.
func (d *Definition) AddSubsort(sub, super string) error {
	if !d.HasSort(sub) {
		return fmt.Errorf("kore: subsort axiom references undeclared sort %q", sub)
	}
	if !d.HasSort(super) {
		return fmt.Errorf("kore: subsort axiom references undeclared sort %q", super)
	}
	d.subsortSet(super).Insert(sub)
	// Everything below sub is also below super.
	if below, ok := d.subsorts[sub]; ok {
		d.subsortSet(super).InsertSet(below)
	}
	// Everything above super now also sits above sub and sub's subsorts.
	for name, below := range d.subsorts {
		if name == super || !below.Contains(super) {
			continue
		}
		below.Insert(sub)
		if subBelow, ok := d.subsorts[sub]; ok {
			below.InsertSet(subBelow)
		}
	}
	return nil
}

func (d *Definition) subsortSet(super string) *set.Set[string] {
	s, ok := d.subsorts[super]
	if !ok {
		s = set.New[string](4)
		d.subsorts[super] = s
	}
	return s
}

// IsSubsort reports whether sub <: super, reflexively.
func (d *Definition) IsSubsort(sub, super Sort) bool {
	if SortEqual(sub, super) {
		return true
	}
	subApp, okSub := sub.(SortApp)
	superApp, okSuper := super.(SortApp)
	if !okSub || !okSuper {
		// Sort variables have no subsort structure.
		return false
	}
	if len(subApp.Args) != 0 || len(superApp.Args) != 0 {
		return false
	}
	below, ok := d.subsorts[superApp.Name]
	return ok && below.Contains(subApp.Name)
}

// SortsCompatible reports whether two sorts can describe the same
// element, i.e. one is a subsort of the other.
func (d *Definition) SortsCompatible(a, b Sort) bool {
	return d.IsSubsort(a, b) || d.IsSubsort(b, a)
}

// AddSymbol declares a symbol. Redeclaring a name is an error.
func (d *Definition) AddSymbol(sym *Symbol) error {
	if sym == nil || sym.Name == "" {
		return fmt.Errorf("kore: symbol declaration missing a name")
	}
	if _, dup := d.symbols[sym.Name]; dup {
		return fmt.Errorf("kore: symbol %q already declared", sym.Name)
	}
	d.symbols[sym.Name] = sym
	if sym.Collection != nil {
		if app, ok := sym.ResultSort.(SortApp); ok {
			d.collections[app.Name] = sym
		}
		d.collRoles[sym.Name] = sym
		d.collRoles[sym.Collection.Unit] = sym
		d.collRoles[sym.Collection.Element] = sym
	}
	return nil
}

// CollectionSymbol returns the concat symbol of the builtin collection
// backing the named sort, if any.
func (d *Definition) CollectionSymbol(sortName string) (*Symbol, bool) {
	sym, ok := d.collections[sortName]
	return sym, ok
}

// CollectionRole returns the concat symbol of the collection a symbol
// name belongs to, whether the name is the unit, the element or the
// concat itself.
func (d *Definition) CollectionRole(symbolName string) (*Symbol, bool) {
	sym, ok := d.collRoles[symbolName]
	return sym, ok
}

// Symbol looks up a declared symbol by name.
func (d *Definition) Symbol(name string) (*Symbol, bool) {
	sym, ok := d.symbols[name]
	return sym, ok
}

// MustSymbol looks up a symbol that the caller knows is declared.
func (d *Definition) MustSymbol(name string) *Symbol {
	sym, ok := d.symbols[name]
	if !ok {
		panic(fmt.Sprintf("kore: symbol %q not declared", name))
	}
	return sym
}

// AddEquation indexes a function-definition axiom under its head
// symbol.
func (d *Definition) AddEquation(eq *Equation) error {
	app, ok := eq.LeftApp()
	if !ok {
		return fmt.Errorf("kore: equation %q LHS is not a symbol application", eq.Label)
	}
	if _, declared := d.symbols[app.Symbol.Name]; !declared {
		return fmt.Errorf("kore: equation %q references undeclared symbol %q", eq.Label, app.Symbol.Name)
	}
	d.equations[app.Symbol.Name] = append(d.equations[app.Symbol.Name], eq)
	return nil
}

// EquationsFor returns the equations whose LHS head is the named
// symbol, in declaration order.
func (d *Definition) EquationsFor(symbolName string) []*Equation {
	return d.equations[symbolName]
}

// AddCeilAxiom indexes a user definedness axiom under the head symbol
// of its pattern.
func (d *Definition) AddCeilAxiom(ax *CeilAxiom) error {
	app, ok := ax.Pattern.(SymbolApplication)
	if !ok {
		return fmt.Errorf("kore: ceil axiom %q pattern is not a symbol application", ax.Label)
	}
	if _, declared := d.symbols[app.Symbol.Name]; !declared {
		return fmt.Errorf("kore: ceil axiom %q references undeclared symbol %q", ax.Label, app.Symbol.Name)
	}
	d.ceilAxioms[app.Symbol.Name] = append(d.ceilAxioms[app.Symbol.Name], ax)
	return nil
}

// CeilAxiomsFor returns the definedness axioms for a head symbol, in
// declaration order.
func (d *Definition) CeilAxiomsFor(symbolName string) []*CeilAxiom {
	return d.ceilAxioms[symbolName]
}

// Stats summarizes the definition for logs.
func (d *Definition) Stats() DefinitionStats {
	stats := DefinitionStats{
		Sorts:   len(d.sorts),
		Symbols: len(d.symbols),
	}
	for _, eqs := range d.equations {
		stats.Equations += len(eqs)
	}
	for _, axs := range d.ceilAxioms {
		stats.CeilAxioms += len(axs)
	}
	return stats
}

// DefinitionStats counts the declarations in a definition.
type DefinitionStats struct {
	Sorts      int
	Symbols    int
	Equations  int
	CeilAxioms int
}
