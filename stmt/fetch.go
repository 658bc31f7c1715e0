package stmt

import (
	"regexp"
	"strings"

	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/matcher"
	"github.com/dashql-run/dashql-core/program"
)

// FetchMethod enumerates OBJECT_DASHQL_FETCH's DASHQL_FETCH_METHOD enum.
type FetchMethod int

const (
	FetchMethodNone FetchMethod = iota
	FetchMethodHTTP
)

func (m FetchMethod) String() string {
	if m == FetchMethodHTTP {
		return "HTTP"
	}
	return "NONE"
}

var fetchURIIsHTTP = regexp.MustCompile(`^https?://`)

const (
	fetchIDMethod matcher.MatchingID = iota
	fetchIDFromURI
	fetchIDURLOption
)

var fetchSchema = matcher.Object(ast.ObjectDashqlFetch, matcher.Discard,
	// FROM_URI is matched as Node rather than String: it may be a bare
	// STRING_REF or a constant-folded function call (e.g. format(...)),
	// and either way the effective text comes from the node value store,
	// not the node's raw source text.
	matcher.Attr(ast.AttrDashqlFetchFromURI, matcher.Node(fetchIDFromURI)),
	matcher.Attr(ast.AttrDashqlFetchMethod, matcher.Enum(ast.EnumFetchMethod, fetchIDMethod)),
	matcher.Attr(ast.AttrDSONURL, matcher.Node(fetchIDURLOption)),
)

// Fetch is the analyzed form of a FETCH statement (§4.4).
type Fetch struct {
	StatementID int
	Method      FetchMethod
	URL         string
	Linter      []LinterMessage
}

// ReadFetch analyzes the FETCH statement rooted at stmt.RootNode. An
// explicit FROM_URI matching ^https?:// forces the method to HTTP and
// flags any DSON_URL option as redundant; otherwise, a specified method
// without a url option reports the option as missing. Both FROM_URI and
// the url option are read through values so a constant-folded url (e.g.
// format('https://cdn.example.com/%s', global.country)) substitutes its
// evaluated text rather than the node's raw source form (scenario A).
func ReadFetch(tree *ast.Tree, values ValueReader, stmt program.Statement, stmtID int) Fetch {
	ix := matcher.Match(tree, stmt.RootNode, fetchSchema)
	f := Fetch{StatementID: stmtID}

	if m := ix.Get(fetchIDMethod); m.Status == matcher.Matched {
		f.Method = FetchMethod(m.Data.(int64))
		if url := ix.Get(fetchIDURLOption); url.Status == matcher.Matched {
			f.URL = strings.TrimSpace(values.ReadNodeValue(url.NodeID).FormatValue())
		} else {
			f.Linter = append(f.Linter, LinterMessage{
				Code:    KeyMissing,
				NodeID:  m.NodeID,
				Message: "missing option 'url'",
			})
		}
	}

	if uri := ix.Get(fetchIDFromURI); uri.Status == matcher.Matched {
		f.URL = values.ReadNodeValue(uri.NodeID).FormatValue()
		if fetchURIIsHTTP.MatchString(f.URL) {
			f.Method = FetchMethodHTTP
		}
		if url := ix.Get(fetchIDURLOption); url.Status == matcher.Matched {
			f.Linter = append(f.Linter, LinterMessage{
				Code:    KeyRedundant,
				NodeID:  url.NodeID,
				Message: "option 'url' is redundant",
			})
		}
	}
	return f
}
