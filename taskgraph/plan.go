package taskgraph

import (
	"github.com/dashql-run/dashql-core/diff"
	"github.com/dashql-run/dashql-core/instance"
	"github.com/dashql-run/dashql-core/internal/topo"
	"github.com/dashql-run/dashql-core/program"
	"github.com/dashql-run/dashql-core/scalar"
)

// Plan runs the planner phases (§4.6.1) producing next's task graph.
// prev/prevGraph may be nil/zero for a first plan. Condition (e) of the
// applicability check compares prevInst.InputValues and
// nextInst.InputValues, both keyed by INPUT statement id.
func Plan(prevInst, nextInst *instance.ProgramInstance, prevGraph *Graph, nextObjectID int) *Graph {
	var prevProgram *program.Program
	if prevInst != nil {
		prevProgram = prevInst.Program
	}
	ops := diff.Compute(prevProgram, nextInst.Program)

	g := &Graph{NextObjectID: nextObjectID}
	g.Tasks = translateStatements(nextInst, ops, &g.NextObjectID)

	if prevGraph == nil || prevInst == nil {
		return g
	}

	applicable := identifyApplicable(prevInst, nextInst, prevGraph, g, ops)
	migrate(prevGraph, g, ops, applicable)
	compactSetupTasks(g)
	return g
}

// indexOps indexes the diff by source and by target statement id for
// phase lookups.
func indexOps(ops []diff.Op) (bySource, byTarget map[int]diff.Op) {
	bySource = map[int]diff.Op{}
	byTarget = map[int]diff.Op{}
	for _, op := range ops {
		if op.Source >= 0 {
			bySource[op.Source] = op
		}
		if op.Target >= 0 {
			byTarget[op.Target] = op
		}
	}
	return
}

// translateStatements creates one task per statement (§4.6.1 step 2),
// mapping dependencies through the statement->task translation and
// marking dead statements SKIPPED.
func translateStatements(inst *instance.ProgramInstance, ops []diff.Op, nextObjectID *int) []Task {
	p := inst.Program
	taskForStmt := make(map[int]int, len(p.Statements)) // statement id -> task index
	tasks := make([]Task, 0, len(p.Statements))

	for id, s := range p.Statements {
		kind, needsScript, ok := translate(s.StatementType)
		if !ok {
			continue
		}
		status := StatusPending
		if id < len(inst.StatementsLiveness) && !inst.StatementsLiveness[id] {
			status = StatusSkipped
		}
		task := Task{
			ObjectID:      *nextObjectID,
			Kind:          kind,
			Status:        status,
			Statement:     id,
			NameQualified: s.Name,
		}
		if needsScript {
			if script, ok := inst.RenderStatementScript(id); ok {
				task.Script = script
			}
		}
		taskForStmt[id] = len(tasks)
		tasks = append(tasks, task)
		*nextObjectID++
	}

	for _, dep := range p.Dependencies {
		ti, ok := taskForStmt[dep.Target]
		if !ok {
			continue
		}
		si, ok := taskForStmt[dep.Source]
		if !ok {
			continue
		}
		tasks[ti].DependsOn = append(tasks[ti].DependsOn, si)
		tasks[si].RequiredFor = append(tasks[si].RequiredFor, ti)
	}
	return tasks
}

// identifyApplicable runs phase 3 (§4.6.1): traverse the previous graph in
// topological order, testing each previous task against the five
// applicability conditions (a) status COMPLETED, (b) diff KEEP/MOVE,
// (c) every dependency applicable, (d) the dependency object-id set maps
// 1:1 to the new task's dependency set (after mapping through the diff),
// and (e), for INPUT tasks, the stored input value is unchanged.
//
// Condition (c) is gated by the task's own invalidation policy: only a
// task whose kind "propagates" (CREATE_TABLE/CREATE_VIEW/MODIFY_TABLE)
// requires every dependency to still be applicable before it can be
// migrated forward itself. A non-propagating kind (FETCH/INPUT/LOAD/SET/
// CREATE_VIZ/UPDATE_VIZ) tolerates an invalidated dependency — e.g. a
// VIZ need not be redone merely because the table it targets was
// recreated with a new object id (§8 scenario F: changing only the
// middle CREATE_TABLE statement invalidates it, but leaves the
// downstream VIZ task, and the upstream LOAD task, applicable).
func identifyApplicable(prevInst, nextInst *instance.ProgramInstance, prevGraph, nextGraph *Graph, ops []diff.Op) []bool {
	bySource, _ := indexOps(ops)

	order := topo.Sort(prevTaskGraphAdapter{prevGraph})
	applicable := make([]bool, len(prevGraph.Tasks))

	for _, idx := range order {
		t := prevGraph.Tasks[idx]
		if t.Status != StatusCompleted {
			continue
		}
		// t.Statement is a statement id in the PREVIOUS program, so the
		// diff op that concerns it is looked up by Source, not Target
		// (those index the NEXT program's statement ids and only
		// coincide with the previous ids when nothing was inserted,
		// deleted, or reordered ahead of this statement).
		op, ok := bySource[t.Statement]
		if !ok || (op.Code != diff.OpKeep && op.Code != diff.OpMove) {
			continue
		}

		if invalidationPolicy[t.Kind].Propagates {
			ok = true
			for _, dep := range t.DependsOn {
				if !applicable[dep] {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
		}

		if !dependencySetMatches(prevGraph, nextGraph, t, op, bySource) {
			continue
		}

		if t.Kind == KindInput {
			prevVal, prevOk := prevInst.InputValues[t.Statement]
			nextVal, nextOk := nextInst.InputValues[op.Target]
			if prevOk != nextOk || (prevOk && !scalar.Equal(prevVal, nextVal)) {
				continue
			}
		}

		applicable[idx] = true
	}

	return applicable
}

// dependencySetMatches implements condition (d): the previous task's
// dependency statement ids, mapped through the diff, must equal (as a
// set) the new task's actual dependency statement ids. A mismatch (a
// dependency added, removed, or remapped to a different statement)
// invalidates the task even when every individual dependency task is
// itself still applicable.
//
// A dependency that was itself rewritten in place (OpUpdate — same
// statement, changed content) still maps 1:1 to a target statement, so
// it counts as a match here; only a dependency with no surviving
// target (OpDelete, or no op at all) breaks the mapping. Whether that
// rewritten dependency's own invalidation also invalidates t is
// decided separately, by condition (c)'s Propagates gate.
func dependencySetMatches(prevGraph, nextGraph *Graph, t Task, selfOp diff.Op, bySource map[int]diff.Op) bool {
	mapped := make(map[int]bool, len(t.DependsOn))
	for _, depIdx := range t.DependsOn {
		depStmt := prevGraph.Tasks[depIdx].Statement
		op, ok := bySource[depStmt]
		if !ok || (op.Code != diff.OpKeep && op.Code != diff.OpMove && op.Code != diff.OpUpdate) {
			return false
		}
		mapped[op.Target] = true
	}

	newTaskIdx := -1
	for i, nt := range nextGraph.Tasks {
		if nt.Statement == selfOp.Target {
			newTaskIdx = i
			break
		}
	}
	if newTaskIdx < 0 {
		return false
	}
	actual := make(map[int]bool, len(nextGraph.Tasks[newTaskIdx].DependsOn))
	for _, depIdx := range nextGraph.Tasks[newTaskIdx].DependsOn {
		actual[nextGraph.Tasks[depIdx].Statement] = true
	}

	if len(mapped) != len(actual) {
		return false
	}
	for s := range mapped {
		if !actual[s] {
			return false
		}
	}
	return true
}

// prevTaskGraphAdapter exposes a Graph's dependency edges as a
// topo.Graph, so the planner can reuse the same topological traversal as
// the rest of the core.
type prevTaskGraphAdapter struct{ g *Graph }

func (a prevTaskGraphAdapter) Len() int { return len(a.g.Tasks) }
func (a prevTaskGraphAdapter) DependsOn(i int) []int {
	return a.g.Tasks[i].DependsOn
}

// migrate runs phase 4 (§4.6.1): adopt object ids for applicable or
// rewritable tasks, and emit reversed-dependency setup tasks otherwise.
func migrate(prevGraph, next *Graph, ops []diff.Op, applicable []bool) {
	bySource, _ := indexOps(ops)
	newTaskForStmt := make(map[int]int, len(next.Tasks))
	for i, t := range next.Tasks {
		newTaskForStmt[t.Statement] = i
	}

	setupIndexForPrev := make(map[int]int)

	for pi, pt := range prevGraph.Tasks {
		// pt.Statement is a previous-program statement id, so it is
		// looked up by Source (see identifyApplicable).
		op, ok := bySource[pt.Statement]
		if !ok {
			continue
		}
		ni, ok := newTaskForStmt[op.Target]
		if !ok {
			continue
		}

		if applicable[pi] {
			next.Tasks[ni].ObjectID = pt.ObjectID
			next.Tasks[ni].Status = StatusCompleted
			continue
		}

		pol := invalidationPolicy[pt.Kind]
		if pol.Update != KindNone && (op.Code == diff.OpUpdate || op.Code == diff.OpMove || op.Code == diff.OpKeep) {
			next.Tasks[ni].Kind = pol.Update
			next.Tasks[ni].ObjectID = pt.ObjectID
			continue
		}

		if pol.Drop == SetupNone {
			continue
		}
		setupIndexForPrev[pi] = len(next.SetupTasks)
		next.SetupTasks = append(next.SetupTasks, SetupTask{Kind: pol.Drop, ObjectID: pt.ObjectID})
	}

	// Reversed dependencies: if task B depended on task A, DROP(B) must
	// run before DROP(A), i.e. DROP(A).DependsOn includes DROP(B).
	for pi, pt := range prevGraph.Tasks {
		dropIdx, ok := setupIndexForPrev[pi]
		if !ok {
			continue
		}
		for _, dep := range pt.RequiredFor {
			if depDrop, ok := setupIndexForPrev[dep]; ok {
				next.SetupTasks[dropIdx].DependsOn = append(next.SetupTasks[dropIdx].DependsOn, depDrop)
			}
		}
	}
}

// compactSetupTasks removes setup-task slots still at SetupNone (never
// assigned a drop kind) and remaps surviving dependency indices (§4.6.1
// step 5).
func compactSetupTasks(g *Graph) {
	remap := make(map[int]int, len(g.SetupTasks))
	kept := make([]SetupTask, 0, len(g.SetupTasks))
	for i, st := range g.SetupTasks {
		if st.Kind == SetupNone {
			continue
		}
		remap[i] = len(kept)
		kept = append(kept, st)
	}
	for i := range kept {
		var deps []int
		for _, d := range kept[i].DependsOn {
			if nd, ok := remap[d]; ok {
				deps = append(deps, nd)
			}
		}
		kept[i].DependsOn = deps
	}
	g.SetupTasks = kept
}
