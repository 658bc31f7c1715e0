package stmt

import (
	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/matcher"
	"github.com/dashql-run/dashql-core/program"
)

// Extract is the analyzed form of the supplemented EXTRACT statement kind
// (SPEC_FULL §4): it mirrors FETCH's attribute shape (a source uri) but
// additionally names a target relation the result is materialized into.
// It is recognized and analyzed like any other statement kind but, per
// SPEC_FULL's open-question decision, maps to task kind NONE.
type Extract struct {
	StatementID int
	FromURI     string
	Into        program.QualifiedName
}

const (
	extractIDFromURI matcher.MatchingID = iota
	extractIDInto
)

var extractSchema = matcher.Object(ast.ObjectDashqlExtract, matcher.Discard,
	matcher.Attr(ast.AttrDashqlExtractFromURI, matcher.String(extractIDFromURI)),
	matcher.Attr(ast.AttrDashqlExtractInto, matcher.Node(extractIDInto)),
)

// ReadExtract analyzes the EXTRACT statement rooted at stmt.RootNode.
func ReadExtract(tree *ast.Tree, values ValueReader, stmt program.Statement, stmtID int) Extract {
	ix := matcher.Match(tree, stmt.RootNode, extractSchema)
	e := Extract{StatementID: stmtID}
	if m := ix.Get(extractIDFromURI); m.Status == matcher.Matched {
		e.FromURI = m.Data.(string)
	}
	if m := ix.Get(extractIDInto); m.Status == matcher.Matched {
		e.Into = values.ReadQualifiedName(m.NodeID, true)
	}
	return e
}
