package stmt

import (
	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/dson"
	"github.com/dashql-run/dashql-core/program"
)

// Set is the analyzed form of a SET statement (§4.4): SET carries no
// statically enumerated attributes of its own, just a raw DSON payload
// rendered verbatim.
type Set struct {
	StatementID int
	RootNode    int
}

func ReadSet(stmt program.Statement, stmtID int) Set {
	return Set{StatementID: stmtID, RootNode: stmt.RootNode}
}

// PrintScript renders the SET statement's payload back to DSON text
// (§4.8's print_script contract).
func (s Set) PrintScript(tree *ast.Tree, dict *dson.Dictionary, mode dson.Mode) string {
	return dson.NewWriter(tree, dict, mode).Write(s.RootNode)
}
