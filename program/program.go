// Package program defines the Program value (§3.2): the parser's AST plus
// the statement list, inter-statement dependencies, and diagnostics. A
// Program is owned and produced by the (externally specified) parser; this
// package only models it and the handful of read helpers every later pass
// needs (e.g. StatementAt, DependenciesOfTarget).
package program

import (
	"sort"

	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/dson"
)

// StatementType enumerates the statement kinds the core recognizes.
// Extract is a supplemented kind not in the distilled spec's enumeration;
// see SPEC_FULL.md §4.1. It parses and analyzes like Fetch but has no
// task-graph translation (same open-question treatment as ModifyTable in
// the task planner, §4.6 / SPEC_FULL §5).
type StatementType int

const (
	StatementNone StatementType = iota
	StatementSet
	StatementVisualize
	StatementFetch
	StatementLoad
	StatementInput
	StatementSelect
	StatementSelectInto
	StatementCreateTable
	StatementCreateTableAs
	StatementCreateView
	StatementExtract
)

func (t StatementType) String() string {
	switch t {
	case StatementNone:
		return "NONE"
	case StatementSet:
		return "SET"
	case StatementVisualize:
		return "VIZUALIZE"
	case StatementFetch:
		return "FETCH"
	case StatementLoad:
		return "LOAD"
	case StatementInput:
		return "INPUT"
	case StatementSelect:
		return "SELECT"
	case StatementSelectInto:
		return "SELECT_INTO"
	case StatementCreateTable:
		return "CREATE_TABLE"
	case StatementCreateTableAs:
		return "CREATE_TABLE_AS"
	case StatementCreateView:
		return "CREATE_VIEW"
	case StatementExtract:
		return "EXTRACT"
	default:
		return "UNKNOWN"
	}
}

// QualifiedName is a three-part (catalog.schema.relation) name plus an
// optional index suffix, all string views into source text (§3.2).
type QualifiedName struct {
	Catalog    string
	Schema     string
	Relation   string
	IndexValue string
}

// Statement is one top-level statement (§3.2).
type Statement struct {
	StatementType StatementType
	RootNode      int
	Name          QualifiedName
}

// DependencyKind distinguishes table-level from column-level dependencies.
type DependencyKind int

const (
	DependencyTableRef DependencyKind = iota
	DependencyColumnRef
)

// Dependency records that statement Target relies on statement Source,
// discovered via the AST node CausedByNode (§3.2). CausedByNode doubles as
// the "target_node" constant propagation writes input values into (§4.3
// evaluate_input_values).
type Dependency struct {
	Kind         DependencyKind
	Source       int
	Target       int
	CausedByNode int
}

// ParseError is a structural error surfaced by the parser against a node,
// as opposed to an evaluation-time node error (those live on the program
// instance, §3.3 / §7 layer 2).
type ParseError struct {
	NodeID  int
	Message string
}

// Comment and LineBreak record source trivia the renderer and linter may
// need but the core otherwise ignores.
type Comment struct{ Location ast.Location }
type LineBreak struct{ Offset uint32 }

// Diagnostics bundles everything the parser produced alongside the tree
// that isn't structural (§3.2: "diagnostics (errors, linter messages,
// comments, line breaks)"). It carries no linter messages: those are
// produced during statement analysis (§7 layer 3) and live on the
// ProgramInstance.
type Diagnostics struct {
	Errors     []ParseError
	Comments   []Comment
	LineBreaks []LineBreak
}

// Program is the immutable artifact the parser hands to the rest of the
// core.
type Program struct {
	Tree         *ast.Tree
	Statements   []Statement
	Dependencies []Dependency
	Diagnostics  Diagnostics
	Dictionary   *dson.Dictionary
}

func New(tree *ast.Tree) *Program {
	return &Program{
		Tree:       tree,
		Dictionary: dson.NewDictionary(),
	}
}

// StatementAt returns the statement with the given id (its index) and
// whether it exists.
func (p *Program) StatementAt(id int) (Statement, bool) {
	if id < 0 || id >= len(p.Statements) {
		return Statement{}, false
	}
	return p.Statements[id], true
}

// DependenciesOfTarget returns every dependency whose Target is stmtID,
// in source dependency order (the order they were recorded).
func (p *Program) DependenciesOfTarget(stmtID int) []Dependency {
	var out []Dependency
	for _, d := range p.Dependencies {
		if d.Target == stmtID {
			out = append(out, d)
		}
	}
	return out
}

// DependenciesOfSource returns every dependency whose Source is stmtID.
func (p *Program) DependenciesOfSource(stmtID int) []Dependency {
	var out []Dependency
	for _, d := range p.Dependencies {
		if d.Source == stmtID {
			out = append(out, d)
		}
	}
	return out
}

// SortedDynamicKeys exposes the dynamic DSON key table in a stable,
// append-friendly order for wire serialization (§3.2 "a table of dynamic
// dson keys").
func (p *Program) SortedDynamicKeys() []ast.AttributeKey {
	keys := p.Dictionary.DynamicKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
