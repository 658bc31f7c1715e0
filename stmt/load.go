package stmt

import (
	"strings"

	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/matcher"
	"github.com/dashql-run/dashql-core/program"
)

// LoadMethod enumerates OBJECT_DASHQL_LOAD's DASHQL_LOAD_METHOD enum.
type LoadMethod int

const (
	LoadMethodNone LoadMethod = iota
	LoadMethodHTTP
	LoadMethodJMESPath
)

func (m LoadMethod) String() string {
	switch m {
	case LoadMethodHTTP:
		return "HTTP"
	case LoadMethodJMESPath:
		return "JMESPATH"
	default:
		return "NONE"
	}
}

const (
	loadIDMethod matcher.MatchingID = iota
	loadIDDataSource
)

var loadSchema = matcher.Object(ast.ObjectDashqlLoad, matcher.Discard,
	matcher.Attr(ast.AttrDashqlLoadMethod, matcher.Enum(ast.EnumLoadMethod, loadIDMethod)),
	matcher.Attr(ast.AttrDashqlDataSource, matcher.Node(loadIDDataSource)),
)

// Load is the analyzed form of a LOAD statement (§4.4).
type Load struct {
	StatementID int
	Method      LoadMethod
	DataSource  program.QualifiedName
}

// ReadLoad analyzes the LOAD statement rooted at stmt.RootNode. The data
// source is read with default-schema qualification (liftGlobal=true); when
// the method is omitted and the source carries an index value whose file
// extension matches opts.ExtensionLoadMethods, the method is inferred from
// that table.
func ReadLoad(tree *ast.Tree, values ValueReader, stmt program.Statement, stmtID int, opts Options) Load {
	ix := matcher.Match(tree, stmt.RootNode, loadSchema)

	load := Load{StatementID: stmtID}
	if m := ix.Get(loadIDMethod); m.Status == matcher.Matched {
		load.Method = LoadMethod(m.Data.(int64))
	}
	if m := ix.Get(loadIDDataSource); m.Status == matcher.Matched {
		load.DataSource = values.ReadQualifiedName(m.NodeID, true)
	}

	if load.Method == LoadMethodNone && load.DataSource.IndexValue != "" {
		if inferred, ok := inferLoadMethod(load.DataSource.IndexValue, opts.ExtensionLoadMethods); ok {
			load.Method = inferred
		}
	}
	return load
}

func inferLoadMethod(indexValue string, table map[string]LoadMethod) (LoadMethod, bool) {
	idx := trimOption(indexValue)
	dot := strings.LastIndexByte(idx, '.')
	if dot < 0 {
		return LoadMethodNone, false
	}
	ext := strings.ToLower(idx[dot+1:])
	m, ok := table[ext]
	return m, ok
}

func trimOption(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
