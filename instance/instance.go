package instance

import (
	"github.com/dashql-run/dashql-core/layout"
	"github.com/dashql-run/dashql-core/program"
	"github.com/dashql-run/dashql-core/scalar"
	"github.com/dashql-run/dashql-core/stmt"
)

// ProgramInstance is a program bound to a set of input values (§3.3): the
// node value store produced by constant propagation, the analyzed
// per-kind statement records, liveness, and the node/linter diagnostics
// collected along the way. It satisfies stmt.ValueReader so analyzers in
// package stmt never need to import this package back.
type ProgramInstance struct {
	Program *program.Program
	Options stmt.Options

	NodeValues *NodeValueStore

	// InputValues holds the input values the instance was built with,
	// keyed by statement id (§3.3 input_values). The planner's
	// applicability condition (e) compares these across instances for
	// INPUT tasks.
	InputValues map[int]scalar.Scalar

	Inputs   []stmt.Input
	Fetches  []stmt.Fetch
	Loads    []stmt.Load
	Sets     []stmt.Set
	Vizzes   []stmt.Viz
	Extracts []stmt.Extract

	StatementsLiveness []bool

	NodeErrors     []NodeError
	LinterMessages []LinterMessage
}

// New creates an empty instance bound to p and inputs; callers run
// analysis passes (constant propagation, then per-kind statement
// analysis, then liveness) to populate it, mirroring the facade's fixed
// pass order (§4.9).
func New(p *program.Program, opts stmt.Options, inputs map[int]scalar.Scalar) *ProgramInstance {
	if inputs == nil {
		inputs = map[int]scalar.Scalar{}
	}
	return &ProgramInstance{
		Program:     p,
		Options:     opts,
		NodeValues:  NewNodeValueStore(),
		InputValues: inputs,
	}
}

// ReadNodeValue implements stmt.ValueReader.
func (inst *ProgramInstance) ReadNodeValue(nodeID int) scalar.Scalar {
	return ReadNodeValue(inst.NodeValues, inst.Program.Tree, nodeID)
}

// ReadQualifiedName implements stmt.ValueReader.
func (inst *ProgramInstance) ReadQualifiedName(nodeID int, liftGlobal bool) program.QualifiedName {
	return ReadQualifiedName(inst.Program.Tree, nodeID, liftGlobal, inst.Options.GlobalNamespace)
}

// AnalyzeStatements runs the per-kind statement analyzers (§4.4) one kind
// at a time, in the order INPUT, FETCH, SET, LOAD, VIZ, EXTRACT, and in
// program order within each kind. Each analyzed record is appended to its
// kind-specific list and any resulting linter messages to LinterMessages.
// Because the allocator is stateful, every INPUT card is placed before any
// VIZ card regardless of where the statements sit in the script.
// Constant propagation must have already populated NodeValues so that
// attributes like FETCH's url substitute their folded values.
func (inst *ProgramInstance) AnalyzeStatements(alloc layout.Allocator) {
	tree := inst.Program.Tree
	kinds := []program.StatementType{
		program.StatementInput, program.StatementFetch, program.StatementSet,
		program.StatementLoad, program.StatementVisualize, program.StatementExtract,
	}
	order := make([]int, 0, len(inst.Program.Statements))
	for _, kind := range kinds {
		for id, s := range inst.Program.Statements {
			if s.StatementType == kind {
				order = append(order, id)
			}
		}
	}
	for _, id := range order {
		s := inst.Program.Statements[id]
		switch s.StatementType {
		case program.StatementInput:
			inst.Inputs = append(inst.Inputs, stmt.ReadInput(tree, inst, s, id, alloc))
		case program.StatementFetch:
			f := stmt.ReadFetch(tree, inst, s, id)
			inst.Fetches = append(inst.Fetches, f)
			inst.recordLinter(f.Linter)
		case program.StatementLoad:
			inst.Loads = append(inst.Loads, stmt.ReadLoad(tree, inst, s, id, inst.Options))
		case program.StatementSet:
			inst.Sets = append(inst.Sets, stmt.ReadSet(s, id))
		case program.StatementVisualize:
			v := stmt.ReadViz(tree, inst, s, id, alloc)
			inst.Vizzes = append(inst.Vizzes, v)
			inst.recordLinter(v.Linter)
		case program.StatementExtract:
			inst.Extracts = append(inst.Extracts, stmt.ReadExtract(tree, inst, s, id))
		}
	}
}

func (inst *ProgramInstance) recordLinter(msgs []stmt.LinterMessage) {
	for _, m := range msgs {
		inst.LinterMessages = append(inst.LinterMessages, LinterMessage{
			Code:    LinterCode(m.Code),
			NodeID:  m.NodeID,
			Message: m.Message,
		})
	}
}

// ComputeLiveness implements §4.3's liveness pass: seed the worklist with
// every VIZ and INPUT statement id, then repeatedly mark a statement live
// and push its dependencies (§3.2 Dependency.Target -> Source).
func (inst *ProgramInstance) ComputeLiveness() {
	n := len(inst.Program.Statements)
	live := make([]bool, n)
	var worklist []int
	for id, s := range inst.Program.Statements {
		if s.StatementType == program.StatementVisualize || s.StatementType == program.StatementInput {
			worklist = append(worklist, id)
		}
	}
	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if id < 0 || id >= n || live[id] {
			continue
		}
		live[id] = true
		for _, dep := range inst.Program.DependenciesOfTarget(id) {
			if !live[dep.Source] {
				worklist = append(worklist, dep.Source)
			}
		}
	}
	inst.StatementsLiveness = live
}
