// Package analyzer implements the top-level façade described in §4.9: a
// single-threaded, process-wide component exposing the stable in-process
// operations of §4.9/§6.1 (parse, instantiate, edit, plan, update task
// status) over a volatile parse, the current program instance, a
// rotating log of prior instances, and the most recently planned task
// graph. Every operation returns a wire.Response so callers cross the
// in-process API boundary uniformly (§6.1).
package analyzer

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dashql-run/dashql-core/constprop"
	"github.com/dashql-run/dashql-core/diff"
	"github.com/dashql-run/dashql-core/editor"
	"github.com/dashql-run/dashql-core/instance"
	"github.com/dashql-run/dashql-core/layout"
	"github.com/dashql-run/dashql-core/program"
	"github.com/dashql-run/dashql-core/scalar"
	"github.com/dashql-run/dashql-core/stmt"
	"github.com/dashql-run/dashql-core/taskgraph"
	"github.com/dashql-run/dashql-core/wire"
)

// Parser is the external collaborator of §6.2: it turns source text into
// a Program, and is the only piece of the dataflow this module does not
// implement. The grammar and tokenizer that back a real implementation
// are out of scope (spec §1).
type Parser interface {
	Parse(text string) (*program.Program, error)
}

// Config mirrors the teacher's engine Config: a small, doc-commented
// struct of constructor-time options rather than a pile of functional
// options, passed once and read thereafter.
type Config struct {
	// GlobalNamespace fills an empty schema when a qualified name is read
	// with lift-global semantics (§4.2).
	GlobalNamespace string
	// ExtensionLoadMethods maps a bare file extension to the LOAD method
	// it implies when a LOAD statement's method is omitted (§4.4).
	ExtensionLoadMethods map[string]stmt.LoadMethod
	// Registry is the constant-folding function table (§4.3.1). Nil uses
	// constprop.DefaultRegistry().
	Registry constprop.Registry
	// Allocator is the board-space allocator (§4.4.1, §6.2). Nil uses a
	// fresh layout.SequentialAllocator with a 12-column grid.
	Allocator layout.Allocator
	// RotatingLogSize bounds the prior-instance ring (§4.9); must be a
	// power of two. Zero uses the spec-mandated default of 64.
	RotatingLogSize int
	// Logger receives façade lifecycle and recoverable-failure logging.
	// Nil uses logrus.StandardLogger().
	Logger *logrus.Logger
}

// DefaultConfig returns the configuration the façade uses unless the
// caller overrides it.
func DefaultConfig() Config {
	return Config{
		GlobalNamespace:      "global",
		ExtensionLoadMethods: map[string]stmt.LoadMethod{"csv": stmt.LoadMethodJMESPath},
		RotatingLogSize:      64,
	}
}

func (c Config) statementOptions() stmt.Options {
	return stmt.Options{GlobalNamespace: c.GlobalNamespace, ExtensionLoadMethods: c.ExtensionLoadMethods}
}

// Analyzer is the process-wide façade of §4.9. It is not safe for
// concurrent use: the core is single-threaded cooperative (§5), and a
// second operation invoked while one is in progress is undefined, the
// same contract the spec gives the reference implementation.
type Analyzer struct {
	parser Parser
	cfg    Config
	log    *logrus.Entry

	// sessionID identifies this façade instance for external correlation
	// (log fields, Response metadata) only; it is never used as an
	// object/node/statement id, all of which stay small monotonic ints
	// for the union-find and task-graph machinery (§9 design note).
	sessionID uuid.UUID

	text    string
	program *program.Program

	current *instance.ProgramInstance
	history *ring

	planned      *instance.ProgramInstance
	plannedGraph *taskgraph.Graph
}

// New creates a façade bound to parser, using cfg. Zero-valued Registry,
// Allocator, RotatingLogSize and Logger fall back to their defaults;
// GlobalNamespace and ExtensionLoadMethods are used as given, so a zero
// Config does not pick up DefaultConfig()'s values for them.
func New(parser Parser, cfg Config) *Analyzer {
	if cfg.Registry == nil {
		cfg.Registry = constprop.DefaultRegistry()
	}
	if cfg.Allocator == nil {
		cfg.Allocator = layout.NewSequentialAllocator(12)
	}
	if cfg.RotatingLogSize == 0 {
		cfg.RotatingLogSize = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	sessionID := uuid.New()
	return &Analyzer{
		parser:    parser,
		cfg:       cfg,
		log:       cfg.Logger.WithField("session", sessionID),
		sessionID: sessionID,
		history:   newRing(cfg.RotatingLogSize),
	}
}

// SessionID returns the façade instance's correlation id (§9 design
// note): an opaque handle for logs and Response metadata, not a value
// any algorithm compares or orders on.
func (a *Analyzer) SessionID() string { return a.sessionID.String() }

// ParseProgram replaces the volatile text and parsed program (§4.9). A
// parser failure leaves the previous volatile state untouched (§7:
// "Parser failures prevent parse_program from publishing a new volatile
// program").
func (a *Analyzer) ParseProgram(text string) wire.Response {
	a.log.WithField("length", len(text)).Debug("analyzer: parse_program")
	p, err := a.parser.Parse(text)
	if err != nil {
		a.log.WithError(err).Warn("analyzer: parse failed")
		return wire.Err(wire.ErrInvalid.New(err.Error()))
	}
	a.text = text
	a.program = p
	return wire.Ok(wire.MustMarshal(wire.PackProgram(p)))
}

// InstantiateProgram builds a new program instance from the volatile
// parse and inputs, running the fixed pass order of §4.9.1. On success
// the previous current instance is evicted into the rotating log (§4.9).
// A failure leaves the current instance and log untouched (§7).
func (a *Analyzer) InstantiateProgram(inputs map[int]scalar.Scalar) wire.Response {
	if a.program == nil {
		return wire.Err(wire.ErrInvalid.New("no parsed program: call parse_program first"))
	}
	a.log.WithField("statements", len(a.program.Statements)).Debug("analyzer: instantiate_program")

	inst, err := a.instantiate(a.program, inputs)
	if err != nil {
		a.log.WithError(err).Warn("analyzer: instantiation failed")
		return wire.Err(wire.ErrExecution.New(err.Error()))
	}

	if a.current != nil {
		a.history.push(a.current)
	}
	a.current = inst

	payload := wire.ProgramReplacementArtifact{
		Text:        a.text,
		Program:     wire.PackProgram(a.program),
		Annotations: wire.PackAnnotations(inst),
	}
	return wire.Ok(wire.MustMarshal(payload))
}

// instantiate runs §4.9.1's fixed pass order against p and inputs,
// returning the populated instance or the first structural error
// encountered. Node errors and linter messages are not structural: they
// are recorded on the instance and never abort instantiation (§7 layer
// 2/3).
func (a *Analyzer) instantiate(p *program.Program, inputs map[int]scalar.Scalar) (*instance.ProgramInstance, error) {
	inst := instance.New(p, a.cfg.statementOptions(), inputs)

	// 1. evaluate input values; 2. propagate constants.
	constprop.EvaluateInputValues(p, inst.NodeValues, inputs)
	nodeErrs := constprop.Propagate(p.Tree, inst.NodeValues, a.cfg.Registry)
	for _, e := range nodeErrs {
		inst.NodeErrors = append(inst.NodeErrors, instance.NodeError{NodeID: e.NodeID, Err: e.Err})
	}

	// 3-7. analyze INPUT, FETCH, SET, LOAD, VIZ statements (plus EXTRACT,
	// SPEC_FULL §4), one kind after another in that order. The grouping
	// matters for the stateful allocator: INPUT cards are placed before
	// VIZ cards even when a VIZ statement precedes an INPUT in the script.
	inst.AnalyzeStatements(a.cfg.Allocator)

	// 8. identify dead statements.
	inst.ComputeLiveness()

	// 9. compute card positions: folded into AnalyzeStatements above,
	// since each INPUT/VIZ analyzer calls the allocator as it is read
	// (§4.4.1) rather than as a separate sweep.
	return inst, nil
}

// EditProgram applies edits (§4.8), re-parses the result, and
// re-instantiates with the current instance's input values. The caller
// is expected to have already validated the edits' statement ids against
// the current program; out-of-range ids are simply dropped by
// editor.Apply.
func (a *Analyzer) EditProgram(edits []editor.CardPositionUpdate) wire.Response {
	if a.current == nil {
		return wire.Err(wire.ErrInvalid.New("no current instance: call instantiate_program first"))
	}
	newText := editor.Apply(a.text, edits, a.current)

	p, err := a.parser.Parse(newText)
	if err != nil {
		return wire.Err(wire.ErrInvalid.New(errors.Wrap(err, "re-parse after edit").Error()))
	}
	inputs := a.current.InputValues
	inst, err := a.instantiate(p, inputs)
	if err != nil {
		return wire.Err(wire.ErrExecution.New(err.Error()))
	}

	a.text = newText
	a.program = p
	a.history.push(a.current)
	a.current = inst

	payload := wire.ProgramReplacementArtifact{
		Text:        newText,
		Program:     wire.PackProgram(p),
		Annotations: wire.PackAnnotations(inst),
	}
	return wire.Ok(wire.MustMarshal(payload))
}

// PlanProgram runs the planner (§4.6) against the current instance as
// next, and the most recently planned instance/graph as previous. On
// success the façade's planned pointer and graph advance together; a
// planner failure leaves both untouched (§7: "Planner failures leave the
// planned graph unchanged").
func (a *Analyzer) PlanProgram() wire.Response {
	if a.current == nil {
		return wire.Err(wire.ErrInvalid.New("no current instance: call instantiate_program first"))
	}
	nextObjectID := 0
	if a.plannedGraph != nil {
		nextObjectID = a.plannedGraph.NextObjectID
	}
	g := taskgraph.Plan(a.planned, a.current, a.plannedGraph, nextObjectID)

	a.planned = a.current
	a.plannedGraph = g

	return wire.Ok(wire.MustMarshal(wire.PackPlan(g)))
}

// TaskClass selects which of the two task-graph arrays update_task_status
// addresses (§4.9).
type TaskClass int

const (
	ClassSetup TaskClass = iota
	ClassProgram
)

// UpdateTaskStatus overwrites the status field of a setup or program task
// (§4.9). Out-of-range ids are a no-op, matching the spec's "no-op"
// contract rather than raising an error.
func (a *Analyzer) UpdateTaskStatus(class TaskClass, id int, status taskgraph.Status) wire.Response {
	if a.plannedGraph == nil {
		return wire.Err(wire.ErrInvalid.New("no planned graph: call plan_program first"))
	}
	switch class {
	case ClassProgram:
		if id >= 0 && id < len(a.plannedGraph.Tasks) {
			a.plannedGraph.Tasks[id].Status = status
		}
	case ClassSetup:
		if id >= 0 && id < len(a.plannedGraph.SetupTasks) {
			a.plannedGraph.SetupTasks[id].Status = status
		}
	}
	return wire.Ok(nil)
}

// ComputeDiff exposes the program matcher (§4.5) directly, independent of
// planning, for callers that only want to inspect what changed between
// the current instance and the one before it in the rotating log.
func (a *Analyzer) ComputeDiff() wire.Response {
	if a.current == nil {
		return wire.Err(wire.ErrInvalid.New("no current instance"))
	}
	prev, ok := a.history.top()
	var prevProgram *program.Program
	if ok {
		prevProgram = prev.Program
	}
	ops := diff.Compute(prevProgram, a.current.Program)
	return wire.Ok(wire.MustMarshal(wire.PackDiff(ops)))
}

// Reset drops all façade state, as if newly constructed (§9 design note:
// "encapsulate as an owned value; expose reset/get operations").
func (a *Analyzer) Reset() {
	a.text = ""
	a.program = nil
	a.current = nil
	a.planned = nil
	a.plannedGraph = nil
	a.history = newRing(a.cfg.RotatingLogSize)
}
