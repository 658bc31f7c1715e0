package wire

import (
	"encoding/json"

	"github.com/dashql-run/dashql-core/diff"
	"github.com/dashql-run/dashql-core/instance"
	"github.com/dashql-run/dashql-core/internal/unionfind"
	"github.com/dashql-run/dashql-core/program"
	"github.com/dashql-run/dashql-core/scalar"
	"github.com/dashql-run/dashql-core/taskgraph"
)

// The structs below are the flat, length-prefixed wire shapes of §6.3.
// Spec §1 explicitly leaves "the on-disk serialization format" external
// and unprescribed ("the spec describes the in-memory model and a
// compact wire shape equivalent, but does not prescribe a specific
// format library"); this package's own client is the only consumer, so
// a straightforward encoding/json rendering of these flat records
// satisfies "any binary-schema representation will do" without
// committing to a schema compiler no example repo in the pack uses for
// this kind of artifact.

// NodeRecord is one AST node flattened for the wire (§3.1).
type NodeRecord struct {
	NodeType      uint32 `json:"nodeType"`
	AttributeKey  uint16 `json:"attributeKey"`
	Parent        int32  `json:"parent"`
	ChildrenBegin int32  `json:"childrenBegin"`
	Value         int64  `json:"value"`
	ChildrenCount uint32 `json:"childrenCount"`
	Offset        uint32 `json:"offset"`
	Length        uint32 `json:"length"`
}

// StatementRecord is one Statement flattened for the wire (§3.2).
type StatementRecord struct {
	StatementType string `json:"statementType"`
	RootNode      int    `json:"rootNode"`
	Catalog       string `json:"catalog,omitempty"`
	Schema        string `json:"schema,omitempty"`
	Relation      string `json:"relation,omitempty"`
	IndexValue    string `json:"indexValue,omitempty"`
}

// DependencyRecord is one Dependency flattened for the wire (§3.2).
type DependencyRecord struct {
	Kind         string `json:"kind"`
	Source       int    `json:"source"`
	Target       int    `json:"target"`
	CausedByNode int    `json:"causedByNode"`
}

// ProgramArtifact is the wire shape of a Program (§6.3).
type ProgramArtifact struct {
	Nodes        []NodeRecord       `json:"nodes"`
	Statements   []StatementRecord  `json:"statements"`
	Dependencies []DependencyRecord `json:"dependencies"`
	ParseErrors  []string           `json:"parseErrors,omitempty"`
	DynamicKeys  []string           `json:"dynamicDsonKeys,omitempty"`
}

// PackProgram flattens p into its wire artifact.
func PackProgram(p *program.Program) ProgramArtifact {
	out := ProgramArtifact{
		Nodes:      make([]NodeRecord, len(p.Tree.Nodes)),
		Statements: make([]StatementRecord, len(p.Statements)),
	}
	for i, n := range p.Tree.Nodes {
		out.Nodes[i] = NodeRecord{
			NodeType:      uint32(n.NodeType),
			AttributeKey:  uint16(n.AttributeKey),
			Parent:        n.Parent,
			ChildrenBegin: n.ChildrenBegin,
			Value:         n.Value,
			ChildrenCount: n.ChildrenCount,
			Offset:        n.Location.Offset,
			Length:        n.Location.Length,
		}
	}
	for i, s := range p.Statements {
		out.Statements[i] = StatementRecord{
			StatementType: s.StatementType.String(),
			RootNode:      s.RootNode,
			Catalog:       s.Name.Catalog,
			Schema:        s.Name.Schema,
			Relation:      s.Name.Relation,
			IndexValue:    s.Name.IndexValue,
		}
	}
	for _, d := range p.Dependencies {
		kind := "TABLE_REF"
		if d.Kind == program.DependencyColumnRef {
			kind = "COLUMN_REF"
		}
		out.Dependencies = append(out.Dependencies, DependencyRecord{
			Kind: kind, Source: d.Source, Target: d.Target, CausedByNode: d.CausedByNode,
		})
	}
	for _, e := range p.Diagnostics.Errors {
		out.ParseErrors = append(out.ParseErrors, e.Message)
	}
	for _, k := range p.SortedDynamicKeys() {
		out.DynamicKeys = append(out.DynamicKeys, p.Dictionary.Name(k))
	}
	return out
}

// NodeValueRecord is one evaluated union's representative/value pair
// (§6.3 Annotations "evaluated nodes").
type NodeValueRecord struct {
	NodeID int    `json:"nodeId"`
	Value  string `json:"value"`
}

// LinterRecord is one linter message (§7 layer 3).
type LinterRecord struct {
	Code    string `json:"code"`
	NodeID  int    `json:"nodeId"`
	Message string `json:"message"`
}

// AnnotationsArtifact is the wire shape of a ProgramInstance's analysis
// results (§6.3 "Program Annotations").
type AnnotationsArtifact struct {
	EvaluatedNodes []NodeValueRecord `json:"evaluatedNodes"`
	Liveness       []bool            `json:"liveness"`
	NodeErrors     []LinterRecord    `json:"nodeErrors,omitempty"`
	LinterMessages []LinterRecord    `json:"linterMessages,omitempty"`
	InputCount     int               `json:"inputCount"`
	FetchCount     int               `json:"fetchCount"`
	LoadCount      int               `json:"loadCount"`
	SetCount       int               `json:"setCount"`
	VizCount       int               `json:"vizCount"`
	ExtractCount   int               `json:"extractCount"`
}

// PackAnnotations flattens inst's analysis results into their wire shape.
func PackAnnotations(inst *instance.ProgramInstance) AnnotationsArtifact {
	out := AnnotationsArtifact{
		Liveness:     inst.StatementsLiveness,
		InputCount:   len(inst.Inputs),
		FetchCount:   len(inst.Fetches),
		LoadCount:    len(inst.Loads),
		SetCount:     len(inst.Sets),
		VizCount:     len(inst.Vizzes),
		ExtractCount: len(inst.Extracts),
	}
	inst.NodeValues.IterateValues(func(v unionfind.Value[scalar.Scalar]) {
		out.EvaluatedNodes = append(out.EvaluatedNodes, NodeValueRecord{NodeID: v.Root, Value: v.Data.FormatValue()})
	})
	for _, e := range inst.NodeErrors {
		out.NodeErrors = append(out.NodeErrors, LinterRecord{Code: "NODE_ERROR", NodeID: e.NodeID, Message: e.Err.Error()})
	}
	for _, m := range inst.LinterMessages {
		out.LinterMessages = append(out.LinterMessages, LinterRecord{Code: m.Code.String(), NodeID: m.NodeID, Message: m.Message})
	}
	return out
}

// TaskRecord is one setup or program task flattened for the wire (§3.4).
type TaskRecord struct {
	ObjectID      int    `json:"objectId"`
	Kind          string `json:"kind"`
	Status        string `json:"status"`
	Statement     int    `json:"statement,omitempty"`
	NameQualified string `json:"nameQualified,omitempty"`
	Script        string `json:"script,omitempty"`
	DependsOn     []int  `json:"dependsOn,omitempty"`
	RequiredFor   []int  `json:"requiredFor,omitempty"`
}

// PlanArtifact is the wire shape of a task graph (§6.3 "Plan").
type PlanArtifact struct {
	SetupTasks   []TaskRecord `json:"setupTasks"`
	ProgramTasks []TaskRecord `json:"programTasks"`
	NextObjectID int          `json:"nextObjectId"`
}

func qualifiedNameString(n program.QualifiedName) string {
	switch {
	case n.Catalog != "":
		return n.Catalog + "." + n.Schema + "." + n.Relation
	case n.Schema != "":
		return n.Schema + "." + n.Relation
	default:
		return n.Relation
	}
}

var taskKindNames = [...]string{"NONE", "INPUT", "FETCH", "LOAD", "SET", "CREATE_TABLE", "CREATE_VIEW", "CREATE_VIZ", "UPDATE_VIZ", "MODIFY_TABLE"}
var setupKindNames = [...]string{"NONE", "DROP_TABLE", "DROP_VIEW", "DROP_VIZ", "DROP_INPUT", "DROP_BLOB", "DROP_SET"}
var statusNames = [...]string{"PENDING", "RUNNING", "SKIPPED", "COMPLETED", "FAILED"}

func kindName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return "UNKNOWN"
	}
	return names[i]
}

// PackPlan flattens g into its wire artifact.
func PackPlan(g *taskgraph.Graph) PlanArtifact {
	out := PlanArtifact{NextObjectID: g.NextObjectID}
	for _, t := range g.Tasks {
		out.ProgramTasks = append(out.ProgramTasks, TaskRecord{
			ObjectID:      t.ObjectID,
			Kind:          kindName(taskKindNames[:], int(t.Kind)),
			Status:        kindName(statusNames[:], int(t.Status)),
			Statement:     t.Statement,
			NameQualified: qualifiedNameString(t.NameQualified),
			Script:        t.Script,
			DependsOn:     t.DependsOn,
			RequiredFor:   t.RequiredFor,
		})
	}
	for _, st := range g.SetupTasks {
		out.SetupTasks = append(out.SetupTasks, TaskRecord{
			ObjectID:  st.ObjectID,
			Kind:      kindName(setupKindNames[:], int(st.Kind)),
			Status:    kindName(statusNames[:], int(st.Status)),
			DependsOn: st.DependsOn,
		})
	}
	return out
}

// ProgramReplacementArtifact is the wire shape of edit_program's result
// (§6.3 "ProgramReplacement"): the new source text plus the re-parsed
// Program and Annotations.
type ProgramReplacementArtifact struct {
	Text        string               `json:"text"`
	Program     ProgramArtifact      `json:"program"`
	Annotations AnnotationsArtifact  `json:"annotations"`
}

// MustMarshal is a thin convenience so façade callers can produce a
// Response payload with one call: wire.Ok(wire.MustMarshal(artifact)).
func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// DiffArtifact is the wire shape of a statement diff (§4.5), useful for
// callers that want to inspect a plan's diff independent of the plan
// itself.
type DiffArtifact struct {
	Ops []DiffOpRecord `json:"ops"`
}

type DiffOpRecord struct {
	Code   string `json:"code"`
	Source int    `json:"source,omitempty"`
	Target int    `json:"target,omitempty"`
}

var diffOpNames = [...]string{"DELETE", "INSERT", "KEEP", "MOVE", "UPDATE"}

func PackDiff(ops []diff.Op) DiffArtifact {
	out := DiffArtifact{}
	for _, op := range ops {
		out.Ops = append(out.Ops, DiffOpRecord{Code: kindName(diffOpNames[:], int(op.Code)), Source: op.Source, Target: op.Target})
	}
	return out
}
