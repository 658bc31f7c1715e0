package instance

import (
	"strconv"

	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/internal/unionfind"
	"github.com/dashql-run/dashql-core/layout"
	"github.com/dashql-run/dashql-core/program"
	"github.com/dashql-run/dashql-core/scalar"
	"github.com/dashql-run/dashql-core/stmt"
	"github.com/dashql-run/dashql-core/substring"
)

// RenderStatementScript implements the general statement renderer (§4.7):
// starting from stmtID's root location, it substitutes every interned
// node value that intersects that location with its script-literal form
// (strings single-quoted, everything else in native form). This is what
// the task planner uses to fill Task.Script for kinds whose translation
// table entry needs rendered script text (CREATE_TABLE, CREATE_VIEW).
func (inst *ProgramInstance) RenderStatementScript(stmtID int) (string, bool) {
	s, found := inst.Program.StatementAt(stmtID)
	if !found {
		return "", false
	}
	rootLoc := inst.Program.Tree.Nodes[s.RootNode].Location

	var reps []substring.Replacement
	inst.NodeValues.IterateValues(func(v unionfind.Value[scalar.Scalar]) {
		n := inst.Program.Tree.Nodes[v.Root]
		if !locationIntersects(rootLoc, n.Location) {
			return
		}
		reps = append(reps, substring.Replacement{Location: n.Location, Literal: v.Data.ScriptLiteral()})
	})
	return substring.Render(inst.Program.Tree.Text, rootLoc, reps), true
}

func locationIntersects(a, b ast.Location) bool {
	lo, hi := a.Offset, a.End()
	begin, end := b.Offset, b.End()
	if begin < lo {
		begin = lo
	}
	if end > hi {
		end = hi
	}
	return end > begin
}

// RenderStatement implements editor.Renderer: it rewrites an existing
// INPUT or VIZ statement's position coordinates in place and re-renders
// the statement's root location through a substring buffer (§4.8 steps
// 2-4). Statements whose position attributes were never written in
// source have no node to overwrite and are left unchanged (ok=false);
// extending the renderer to insert new DSON attributes is out of scope
// here.
func (inst *ProgramInstance) RenderStatement(stmtID int, posUpdate *layout.CardPosition) (ast.Location, string, bool) {
	s, found := inst.Program.StatementAt(stmtID)
	if !found || posUpdate == nil {
		return ast.Location{}, "", false
	}

	var ids stmt.PositionNodeIDs
	switch s.StatementType {
	case program.StatementInput:
		ids = stmt.InputPositionNodeIDs(inst.Program.Tree, s.RootNode)
	case program.StatementVisualize:
		var ok bool
		ids, ok = stmt.VizFirstComponentPositionNodeIDs(inst.Program.Tree, s.RootNode)
		if !ok {
			return ast.Location{}, "", false
		}
	default:
		return ast.Location{}, "", false
	}

	var reps []substring.Replacement
	add := func(nodeID int, v uint32) {
		if nodeID < 0 {
			return
		}
		n := inst.Program.Tree.Nodes[nodeID]
		reps = append(reps, substring.Replacement{Location: n.Location, Literal: strconv.FormatUint(uint64(v), 10)})
	}
	add(ids.Row, posUpdate.Row)
	add(ids.Column, posUpdate.Column)
	add(ids.Width, posUpdate.Width)
	add(ids.Height, posUpdate.Height)
	if len(reps) == 0 {
		return ast.Location{}, "", false
	}

	rootLoc := inst.Program.Tree.Nodes[s.RootNode].Location
	rendered := substring.Render(inst.Program.Tree.Text, rootLoc, reps)
	return rootLoc, rendered, true
}
