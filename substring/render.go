package substring

import "github.com/dashql-run/dashql-core/ast"

// Replacement is one node's interned value substitution, as the script
// literal text that should appear in its place.
type Replacement struct {
	Location ast.Location
	Literal  string
}

// Render renders the statement rooted at rootLoc by starting from its
// source text and applying every replacement that intersects rootLoc
// (§4.7's "statement renderer"). Callers gather replacements by walking
// the node value store and keeping only unions whose representative node
// intersects rootLoc, formatting each via scalar.Scalar.ScriptLiteral.
func Render(source string, rootLoc ast.Location, replacements []Replacement) string {
	buf := New(source, rootLoc)
	for _, r := range replacements {
		if buf.Intersects(r.Location) {
			buf.Replace(r.Location, r.Literal)
		}
	}
	return buf.Finish()
}
