// Package taskgraph implements the task planner (§4.6): translating a
// program's statements into a dependency graph of program tasks, then
// migrating as much of a previous task graph's completed work forward as
// the diff between the previous and next program allows.
package taskgraph

import "github.com/dashql-run/dashql-core/program"

// Kind enumerates program task kinds (§4.6).
type Kind int

const (
	KindNone Kind = iota
	KindInput
	KindFetch
	KindLoad
	KindSet
	KindCreateTable
	KindCreateView
	KindCreateViz
	KindUpdateViz
	KindModifyTable
)

// SetupKind enumerates setup (drop) task kinds (§4.6).
type SetupKind int

const (
	SetupNone SetupKind = iota
	SetupDropTable
	SetupDropView
	SetupDropViz
	SetupDropInput
	SetupDropBlob
	SetupDropSet
)

// Status is a task's runtime state.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusSkipped
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusRunning:
		return "RUNNING"
	case StatusSkipped:
		return "SKIPPED"
	case StatusCompleted:
		return "COMPLETED"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// policy captures one row of the §4.6 invalidation policy table.
type policy struct {
	Drop       SetupKind
	Update     Kind
	Propagates bool
}

var invalidationPolicy = map[Kind]policy{
	KindNone:        {SetupNone, KindNone, false},
	KindCreateTable: {SetupDropTable, KindNone, true},
	KindCreateView:  {SetupDropView, KindNone, true},
	KindCreateViz:   {SetupDropViz, KindUpdateViz, false},
	KindFetch:       {SetupDropBlob, KindNone, false},
	KindInput:       {SetupDropInput, KindNone, false},
	KindLoad:        {SetupDropTable, KindNone, false},
	KindModifyTable: {SetupDropTable, KindNone, true},
	KindSet:         {SetupDropSet, KindNone, false},
	KindUpdateViz:   {SetupDropViz, KindUpdateViz, false},
}

// translate maps a statement type to its program task kind and whether
// the task needs the statement's rendered script text (§4.6's table).
// The second bool reports whether the statement type participates in the
// task graph at all (NONE, SELECT, and the not-yet-translated EXTRACT
// kind do not).
func translate(t program.StatementType) (kind Kind, needsScript bool, ok bool) {
	switch t {
	case program.StatementInput:
		return KindInput, false, true
	case program.StatementFetch:
		return KindFetch, false, true
	case program.StatementLoad:
		return KindLoad, false, true
	case program.StatementSet:
		return KindSet, false, true
	case program.StatementSelectInto, program.StatementCreateTable, program.StatementCreateTableAs:
		return KindCreateTable, true, true
	case program.StatementCreateView:
		return KindCreateView, true, true
	case program.StatementVisualize:
		return KindCreateViz, false, true
	default:
		// StatementNone, StatementSelect, StatementExtract (open question,
		// SPEC_FULL §5): not translated.
		return KindNone, false, false
	}
}

// Task is one node of the task graph (§3.4).
type Task struct {
	ObjectID  int
	Kind      Kind
	Status    Status
	Statement int // originating statement id (origin_statement)
	// NameQualified is the task's fully-qualified target name, when the
	// originating statement kind carries one (INPUT, LOAD, VIZ; CREATE_*
	// kinds read it from the statement's own qualified name).
	NameQualified program.QualifiedName
	// Script is the rendered statement text with constants substituted,
	// populated only for kinds whose translation table entry needs it
	// (CREATE_TABLE, CREATE_VIEW — §4.6's table).
	Script      string
	DependsOn   []int
	RequiredFor []int
}

// SetupTask is a drop task emitted during migration (§4.6.1 step 4).
// Freshly emitted setup tasks start PENDING like any other task (§3.4).
// ObjectID identifies the object being dropped: the previous program
// task's object id, so the executor knows which concrete artifact (which
// "version") to tear down.
type SetupTask struct {
	Kind      SetupKind
	Status    Status
	ObjectID  int
	DependsOn []int
}

// Graph is a planned program's task graph plus its setup tasks.
type Graph struct {
	Tasks      []Task
	SetupTasks []SetupTask
	NextObjectID int
}
