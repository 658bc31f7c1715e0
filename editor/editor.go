// Package editor implements the program editor (§4.8): applying a batch
// of statement-scoped edits to a program's source text by re-rendering
// just the touched statements through a substring buffer over the full
// source.
package editor

import (
	"sort"

	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/layout"
	"github.com/dashql-run/dashql-core/program"
	"github.com/dashql-run/dashql-core/substring"
)

// CardPositionUpdate is the one recognized edit variant (§4.8): it
// applies to INPUT and VIZ statements and overwrites the statement's
// specified position.
type CardPositionUpdate struct {
	StatementID int
	Position    layout.CardPosition
}

// Renderer re-renders a single statement back to source text after an
// edit has been applied to its analyzed record. Package instance
// implements this per statement kind so editor never needs to import it
// back (the same ValueReader-style inversion used by package stmt).
type Renderer interface {
	RenderStatement(stmtID int, posUpdate *layout.CardPosition) (ast.Location, string, bool)
}

// Apply applies every edit, grouped by statement id, and returns the new
// full source text. The caller is expected to re-parse and
// re-instantiate the result (§4.8).
func Apply(source string, updates []CardPositionUpdate, r Renderer) string {
	byStatement := make(map[int]*CardPositionUpdate, len(updates))
	for i := range updates {
		u := updates[i]
		byStatement[u.StatementID] = &u
	}

	ids := make([]int, 0, len(byStatement))
	for id := range byStatement {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	type edit struct {
		loc  ast.Location
		text string
	}
	var edits []edit
	for _, id := range ids {
		u := byStatement[id]
		loc, text, ok := r.RenderStatement(id, &u.Position)
		if !ok {
			continue
		}
		edits = append(edits, edit{loc: loc, text: text})
	}

	fullLoc := ast.Location{Offset: 0, Length: uint32(len(source))}
	buf := substring.New(source, fullLoc)
	for _, e := range edits {
		buf.Replace(e.loc, e.text)
	}
	return buf.Finish()
}

// StatementRootLocation returns the source location of stmt's root node,
// the starting point print_script re-renders from (§4.8 step 1).
func StatementRootLocation(tree *ast.Tree, stmt program.Statement) ast.Location {
	return tree.Nodes[stmt.RootNode].Location
}
