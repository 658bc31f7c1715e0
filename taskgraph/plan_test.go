package taskgraph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/instance"
	"github.com/dashql-run/dashql-core/program"
	"github.com/dashql-run/dashql-core/scalar"
	"github.com/dashql-run/dashql-core/stmt"
	"github.com/dashql-run/dashql-core/taskgraph"
)

// childSpec is one object child used by buildTaskProgram: an attribute
// key plus the literal text its STRING_REF child carries.
type childSpec struct {
	Key  ast.AttributeKey
	Text string
}

// stmtSpec describes one synthetic top-level statement for buildTaskProgram.
type stmtSpec struct {
	Type     program.StatementType
	NodeType ast.NodeType
	Children []childSpec
}

// buildTaskProgram lays out a flat AST for specs: each statement is an
// object root with STRING_REF children sorted by attribute key (§3.1's
// sorted-children invariant), concatenating every child's text into one
// source buffer so ast.Tree.StringRefText resolves correctly. This gives
// diff.Compute real structural content to compare (§4.5.1) without
// needing a real parser.
func buildTaskProgram(deps []program.Dependency, specs ...stmtSpec) *program.Program {
	var text strings.Builder
	var nodes []ast.Node
	var stmts []program.Statement

	for _, spec := range specs {
		rootIdx := len(nodes)
		nodes = append(nodes, ast.Node{}) // placeholder, patched below
		childBegin := len(nodes)

		rootOffset := uint32(text.Len())
		for _, c := range spec.Children {
			offset := uint32(text.Len())
			text.WriteString(c.Text)
			nodes = append(nodes, ast.Node{
				NodeType:     ast.NodeTypeStringRef,
				AttributeKey: c.Key,
				Parent:       int32(rootIdx),
				Value:        int64(offset)<<32 | int64(len(c.Text)),
				Location:     ast.Location{Offset: offset, Length: uint32(len(c.Text))},
			})
		}
		rootLen := uint32(text.Len()) - rootOffset

		nodes[rootIdx] = ast.Node{
			NodeType:      spec.NodeType,
			Parent:        ast.NoParent,
			ChildrenBegin: int32(childBegin),
			ChildrenCount: uint32(len(spec.Children)),
			Location:      ast.Location{Offset: rootOffset, Length: rootLen},
		}
		stmts = append(stmts, program.Statement{StatementType: spec.Type, RootNode: rootIdx})
	}

	tree := &ast.Tree{Text: text.String(), Nodes: nodes}
	p := program.New(tree)
	p.Statements = stmts
	p.Dependencies = deps
	return p
}

// newLiveInstance wraps p in an instance with every statement marked
// live, matching a program whose statements all flow from/into INPUT or
// VIZ kinds without needing to actually run liveness analysis.
func newLiveInstance(p *program.Program) *instance.ProgramInstance {
	inst := instance.New(p, stmt.Options{}, nil)
	live := make([]bool, len(p.Statements))
	for i := range live {
		live[i] = true
	}
	inst.StatementsLiveness = live
	return inst
}

func completeAll(g *taskgraph.Graph) {
	for i := range g.Tasks {
		g.Tasks[i].Status = taskgraph.StatusCompleted
	}
}

// --- Property 9: empty previous ---

func TestPlanEmptyPrevious(t *testing.T) {
	p := buildTaskProgram(nil,
		stmtSpec{Type: program.StatementLoad, NodeType: ast.ObjectDashqlLoad, Children: []childSpec{{Key: ast.AttrDashqlDataSource, Text: "weather"}}},
		stmtSpec{Type: program.StatementFetch, NodeType: ast.ObjectDashqlFetch, Children: []childSpec{{Key: ast.AttrDashqlFetchFromURI, Text: "http://x"}}},
	)
	inst := newLiveInstance(p)

	g := taskgraph.Plan(nil, inst, nil, 0)

	require.Len(t, g.Tasks, 2)
	require.Empty(t, g.SetupTasks)
	require.Equal(t, 2, g.NextObjectID)
	for i, task := range g.Tasks {
		require.Equal(t, i, task.ObjectID)
		require.Equal(t, taskgraph.StatusPending, task.Status)
	}
}

// --- Property 10: idempotence ---

func TestPlanIdempotenceOnUnchangedProgram(t *testing.T) {
	p := buildTaskProgram(nil,
		stmtSpec{Type: program.StatementLoad, NodeType: ast.ObjectDashqlLoad, Children: []childSpec{{Key: ast.AttrDashqlDataSource, Text: "weather"}}},
		stmtSpec{Type: program.StatementFetch, NodeType: ast.ObjectDashqlFetch, Children: []childSpec{{Key: ast.AttrDashqlFetchFromURI, Text: "http://x"}}},
	)
	inst := newLiveInstance(p)

	g1 := taskgraph.Plan(nil, inst, nil, 0)
	completeAll(g1)

	g2 := taskgraph.Plan(inst, inst, g1, g1.NextObjectID)

	require.Empty(t, g2.SetupTasks)
	// translation draws a fresh id for every new task before migration
	// hands the previous ids back, so the counter still advances.
	require.Equal(t, g1.NextObjectID+2, g2.NextObjectID)
	require.Len(t, g2.Tasks, 2)
	for i, task := range g2.Tasks {
		require.Equal(t, g1.Tasks[i].ObjectID, task.ObjectID, "object id must survive an unchanged replan")
		require.Equal(t, taskgraph.StatusCompleted, task.Status)
	}
}

// --- Scenario F: migration with a changed middle statement ---

func TestPlanMigrationInvalidatesOnlyChangedStatement(t *testing.T) {
	mkProgram := func(middleValue string) *program.Program {
		return buildTaskProgram(
			[]program.Dependency{
				{Kind: program.DependencyTableRef, Source: 0, Target: 1},
				{Kind: program.DependencyTableRef, Source: 1, Target: 2},
			},
			stmtSpec{Type: program.StatementLoad, NodeType: ast.ObjectDashqlLoad, Children: []childSpec{
				{Key: ast.AttrDashqlDataSource, Text: "weather"},
			}},
			stmtSpec{Type: program.StatementCreateTable, NodeType: ast.ObjectDashqlLoad, Children: []childSpec{
				{Key: 1, Text: "weather_avg"},
				{Key: 2, Text: "weather"},
				{Key: 3, Text: "avg"},
				{Key: 4, Text: middleValue},
			}},
			stmtSpec{Type: program.StatementVisualize, NodeType: ast.ObjectDashqlViz, Children: []childSpec{
				{Key: ast.AttrDashqlVizTarget, Text: "weather_avg"},
			}},
		)
	}

	prevP := mkProgram("1")
	prevInst := newLiveInstance(prevP)
	prevGraph := taskgraph.Plan(nil, prevInst, nil, 0)
	completeAll(prevGraph)
	require.Len(t, prevGraph.Tasks, 3)

	nextP := mkProgram("2")
	nextInst := newLiveInstance(nextP)

	next := taskgraph.Plan(prevInst, nextInst, prevGraph, prevGraph.NextObjectID)

	require.Len(t, next.Tasks, 3)
	require.Equal(t, prevGraph.Tasks[0].ObjectID, next.Tasks[0].ObjectID)
	require.Equal(t, taskgraph.StatusCompleted, next.Tasks[0].Status)
	require.Equal(t, prevGraph.Tasks[2].ObjectID, next.Tasks[2].ObjectID)
	require.Equal(t, taskgraph.StatusCompleted, next.Tasks[2].Status)

	require.Equal(t, taskgraph.StatusPending, next.Tasks[1].Status)
	require.NotEqual(t, prevGraph.Tasks[1].ObjectID, next.Tasks[1].ObjectID)

	require.Len(t, next.SetupTasks, 1)
	require.Equal(t, taskgraph.SetupDropTable, next.SetupTasks[0].Kind)
	require.Equal(t, prevGraph.Tasks[1].ObjectID, next.SetupTasks[0].ObjectID)
}

// --- Property 11: invalidation propagates downstream through CREATE_TABLE/CREATE_VIEW tasks ---

// CREATE_TABLE's policy row propagates (§4.6): when its own upstream
// dependency is invalidated, CREATE_TABLE must also be invalidated even
// though its own statement text is untouched — unlike CREATE_VIZ (below),
// which tolerates a changed dependency (§8 scenario F already covers the
// symmetric case: invalidating CREATE_TABLE itself does not force its own
// LOAD dependency to redo).
func TestPlanInvalidationPropagatesToDependentCreateTable(t *testing.T) {
	mkProgram := func(loadAttrValue string) *program.Program {
		return buildTaskProgram(
			[]program.Dependency{
				{Kind: program.DependencyTableRef, Source: 0, Target: 1},
			},
			stmtSpec{Type: program.StatementLoad, NodeType: ast.ObjectDashqlLoad, Children: []childSpec{
				{Key: 1, Text: "weather"},
				{Key: 2, Text: "csv"},
				{Key: 3, Text: "auto"},
				{Key: 4, Text: loadAttrValue},
			}},
			stmtSpec{Type: program.StatementCreateTable, NodeType: ast.ObjectDashqlLoad, Children: []childSpec{
				{Key: 1, Text: "weather_avg"},
			}},
		)
	}

	prevP := mkProgram("1")
	prevInst := newLiveInstance(prevP)
	prevGraph := taskgraph.Plan(nil, prevInst, nil, 0)
	completeAll(prevGraph)

	nextP := mkProgram("2")
	nextInst := newLiveInstance(nextP)

	next := taskgraph.Plan(prevInst, nextInst, prevGraph, prevGraph.NextObjectID)

	// Statement 0 (LOAD) itself changed: not applicable.
	require.Equal(t, taskgraph.StatusPending, next.Tasks[0].Status)
	require.NotEqual(t, prevGraph.Tasks[0].ObjectID, next.Tasks[0].ObjectID)

	// Statement 1 (CREATE_TABLE) is textually unchanged, but its kind
	// propagates invalidation from an invalid dependency, so it must be
	// rebuilt too even though its own diff op is KEEP.
	require.Equal(t, taskgraph.StatusPending, next.Tasks[1].Status)
	require.NotEqual(t, prevGraph.Tasks[1].ObjectID, next.Tasks[1].ObjectID)

	require.Len(t, next.SetupTasks, 2)
	for _, st := range next.SetupTasks {
		require.Equal(t, taskgraph.SetupDropTable, st.Kind)
	}
}

// CREATE_VIZ does not propagate (§4.6): a VIZ task must stay applicable
// even though the CREATE_TABLE it targets was invalidated and given a
// new object id.
func TestPlanInvalidationDoesNotPropagateToViz(t *testing.T) {
	mkProgram := func(tableAttrValue string) *program.Program {
		return buildTaskProgram(
			[]program.Dependency{
				{Kind: program.DependencyTableRef, Source: 0, Target: 1},
			},
			stmtSpec{Type: program.StatementCreateTable, NodeType: ast.ObjectDashqlLoad, Children: []childSpec{
				{Key: 1, Text: "weather_avg"},
				{Key: 2, Text: "weather"},
				{Key: 3, Text: "avg"},
				{Key: 4, Text: tableAttrValue},
			}},
			stmtSpec{Type: program.StatementVisualize, NodeType: ast.ObjectDashqlViz, Children: []childSpec{
				{Key: ast.AttrDashqlVizTarget, Text: "weather_avg"},
			}},
		)
	}

	prevP := mkProgram("1")
	prevInst := newLiveInstance(prevP)
	prevGraph := taskgraph.Plan(nil, prevInst, nil, 0)
	completeAll(prevGraph)

	nextP := mkProgram("2")
	nextInst := newLiveInstance(nextP)

	next := taskgraph.Plan(prevInst, nextInst, prevGraph, prevGraph.NextObjectID)

	require.Equal(t, taskgraph.StatusPending, next.Tasks[0].Status)
	require.NotEqual(t, prevGraph.Tasks[0].ObjectID, next.Tasks[0].ObjectID)

	// VIZ tolerates its target table being rebuilt under a new object id.
	require.Equal(t, taskgraph.StatusCompleted, next.Tasks[1].Status)
	require.Equal(t, prevGraph.Tasks[1].ObjectID, next.Tasks[1].ObjectID)
}

// --- Condition (e): INPUT applicability depends on the stored value ---

func TestPlanInputApplicabilityTracksInputValue(t *testing.T) {
	p := buildTaskProgram(nil,
		stmtSpec{Type: program.StatementInput, NodeType: ast.ObjectDashqlInput, Children: []childSpec{
			{Key: ast.AttrDashqlStatementName, Text: "country"},
		}},
	)

	prevInst := newLiveInstance(p)
	prevInst.InputValues[0] = scalar.StringVal("DE")
	prevGraph := taskgraph.Plan(nil, prevInst, nil, 0)
	completeAll(prevGraph)

	t.Run("unchanged value stays applicable", func(t *testing.T) {
		nextInst := newLiveInstance(p)
		nextInst.InputValues[0] = scalar.StringVal("DE")
		next := taskgraph.Plan(prevInst, nextInst, prevGraph, prevGraph.NextObjectID)
		require.Equal(t, taskgraph.StatusCompleted, next.Tasks[0].Status)
		require.Equal(t, prevGraph.Tasks[0].ObjectID, next.Tasks[0].ObjectID)
	})

	t.Run("changed value invalidates", func(t *testing.T) {
		nextInst := newLiveInstance(p)
		nextInst.InputValues[0] = scalar.StringVal("FR")
		next := taskgraph.Plan(prevInst, nextInst, prevGraph, prevGraph.NextObjectID)
		require.Equal(t, taskgraph.StatusPending, next.Tasks[0].Status)
		require.NotEqual(t, prevGraph.Tasks[0].ObjectID, next.Tasks[0].ObjectID)

		require.Len(t, next.SetupTasks, 1)
		require.Equal(t, taskgraph.SetupDropInput, next.SetupTasks[0].Kind)
		require.Equal(t, prevGraph.Tasks[0].ObjectID, next.SetupTasks[0].ObjectID)
	})
}
