// Command dashql-analyze is a small end-to-end driver for the analyzer
// façade: it builds a toy program, runs it through parse, instantiate,
// and plan, and prints each step's wire response. It stands in for a
// real client the way the go-mysql-server example's createTestDatabase
// stands in for a real storage backend: no grammar or tokenizer is
// implemented here (that is the parser's job, out of scope per §1/§6.2),
// so the fixture parser below hands back a hand-built Program for any
// input text.
package main

import (
	"fmt"
	"os"

	"github.com/dashql-run/dashql-core/analyzer"
	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/program"
	"github.com/dashql-run/dashql-core/scalar"
	"github.com/dashql-run/dashql-core/wire"
)

const fixtureText = "INPUT country TEXT;\nFETCH weather FROM country;\n"

func stringRefValue(offset, length uint32) int64 {
	return int64(offset)<<32 | int64(length)
}

// fixtureParser ignores the text it is handed and returns the fixture
// program below: an INPUT statement and a FETCH statement that reads the
// input's value through a dependency, the same substitution path
// scenario A exercises.
type fixtureParser struct{}

func (fixtureParser) Parse(text string) (*program.Program, error) {
	tree := &ast.Tree{
		Text: text,
		Nodes: []ast.Node{
			{ // 0: INPUT root
				NodeType:      ast.ObjectDashqlInput,
				Parent:        ast.NoParent,
				ChildrenBegin: 1,
				ChildrenCount: 1,
				Location:      ast.Location{Offset: 0, Length: 19},
			},
			{ // 1: INPUT.NAME
				NodeType:     ast.NodeTypeStringRef,
				AttributeKey: ast.AttrDashqlStatementName,
				Parent:       0,
				Value:        stringRefValue(6, 7),
				Location:     ast.Location{Offset: 6, Length: 7},
			},
			{ // 2: FETCH root
				NodeType:      ast.ObjectDashqlFetch,
				Parent:        ast.NoParent,
				ChildrenBegin: 3,
				ChildrenCount: 1,
				Location:      ast.Location{Offset: 20, Length: 26},
			},
			{ // 3: FETCH.FROM_URI, substituted from the INPUT's value at
				// instantiation time via the dependency below.
				NodeType:     ast.NodeTypeStringRef,
				AttributeKey: ast.AttrDashqlFetchFromURI,
				Parent:       2,
				Value:        stringRefValue(39, 7),
				Location:     ast.Location{Offset: 39, Length: 7},
			},
		},
	}

	p := program.New(tree)
	p.Statements = []program.Statement{
		{StatementType: program.StatementInput, RootNode: 0, Name: program.QualifiedName{Relation: "country"}},
		{StatementType: program.StatementFetch, RootNode: 2, Name: program.QualifiedName{Relation: "weather"}},
	}
	p.Dependencies = []program.Dependency{
		{Kind: program.DependencyTableRef, Source: 0, Target: 1, CausedByNode: 3},
	}
	return p, nil
}

func main() {
	a := analyzer.New(fixtureParser{}, analyzer.DefaultConfig())

	if resp := a.ParseProgram(fixtureText); resp.Status != wire.OK {
		fmt.Fprintln(os.Stderr, "parse_program failed:", resp.Message)
		os.Exit(1)
	}
	fmt.Println("parsed program")

	inputs := map[int]scalar.Scalar{0: scalar.StringVal("DE")}
	resp := a.InstantiateProgram(inputs)
	if resp.Status != wire.OK {
		fmt.Fprintln(os.Stderr, "instantiate_program failed:", resp.Message)
		os.Exit(1)
	}
	fmt.Println(string(resp.Data))

	resp = a.PlanProgram()
	if resp.Status != wire.OK {
		fmt.Fprintln(os.Stderr, "plan_program failed:", resp.Message)
		os.Exit(1)
	}
	fmt.Println(string(resp.Data))
}
