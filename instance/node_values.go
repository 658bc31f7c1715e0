package instance

import (
	"strings"

	"github.com/dashql-run/dashql-core/ast"
	"github.com/dashql-run/dashql-core/internal/unionfind"
	"github.com/dashql-run/dashql-core/program"
	"github.com/dashql-run/dashql-core/scalar"
)

// NodeValueStore is the sparse union-find over AST node ids described in
// §4.2: every union has a representative root_node_id and a scalar_value.
type NodeValueStore struct {
	uf *unionfind.Store[scalar.Scalar]
}

func NewNodeValueStore() *NodeValueStore {
	return &NodeValueStore{uf: unionfind.New[scalar.Scalar]()}
}

// Insert assigns value to the singleton union containing nodeID. Idempotent
// for the same node id (§4.2).
func (s *NodeValueStore) Insert(nodeID int, value scalar.Scalar) *unionfind.Value[scalar.Scalar] {
	return s.uf.Insert(nodeID, value)
}

// Find performs lazy path compression and returns the effective union
// value for nodeID, or nil if nodeID was never interned.
func (s *NodeValueStore) Find(nodeID int) *unionfind.Value[scalar.Scalar] {
	return s.uf.Find(nodeID)
}

// Merge unions primary with every id in others and assigns value to the
// result.
func (s *NodeValueStore) Merge(primary int, others []int, value scalar.Scalar) *unionfind.Value[scalar.Scalar] {
	return s.uf.Merge(primary, others, value)
}

// IterateValues visits each union exactly once, by representative.
func (s *NodeValueStore) IterateValues(fn func(unionfind.Value[scalar.Scalar])) {
	s.uf.IterateValues(fn)
}

// ReadNodeValue returns the effective scalar for nodeID: the interned
// union value if present, else a literal materialized directly from the
// node (bool/ui32/string-ref), else null (§4.2).
func ReadNodeValue(store *NodeValueStore, tree *ast.Tree, nodeID int) scalar.Scalar {
	if v := store.Find(nodeID); v != nil {
		return v.Data
	}
	if nodeID < 0 || nodeID >= len(tree.Nodes) {
		return scalar.Null()
	}
	n := tree.Nodes[nodeID]
	switch n.NodeType {
	case ast.NodeTypeBool:
		return scalar.BoolVal(n.Value != 0)
	case ast.NodeTypeUI32, ast.NodeTypeUI32Bitmap:
		return scalar.Int64Val(n.Value)
	case ast.NodeTypeStringRef:
		return scalar.StringVal(tree.StringRefText(n))
	default:
		return scalar.Null()
	}
}

// ReadQualifiedName resolves a qualified name from nodeID per §4.2: a
// STRING_REF gives the relation only; an ARRAY of length 1/2/3 gives
// relation / schema.relation / catalog.schema.relation (quote-trimmed);
// an OBJECT_SQL_TABLE_REF with attribute SQL_TABLE_NAME recurses with
// liftGlobal=true. globalNamespace fills an empty schema when liftGlobal
// is set.
func ReadQualifiedName(tree *ast.Tree, nodeID int, liftGlobal bool, globalNamespace string) program.QualifiedName {
	name := readQualifiedNameInner(tree, nodeID, liftGlobal)
	if liftGlobal && name.Schema == "" {
		name.Schema = globalNamespace
	}
	return name
}

func readQualifiedNameInner(tree *ast.Tree, nodeID int, liftGlobal bool) program.QualifiedName {
	if nodeID < 0 || nodeID >= len(tree.Nodes) {
		return program.QualifiedName{}
	}
	n := tree.Nodes[nodeID]
	switch n.NodeType {
	case ast.NodeTypeStringRef:
		return program.QualifiedName{Relation: trimQuotes(tree.StringRefText(n))}

	case ast.NodeTypeArray:
		begin, end := tree.ChildIndices(nodeID)
		parts := make([]string, 0, end-begin)
		for i := begin; i < end; i++ {
			if tree.Nodes[i].NodeType == ast.NodeTypeStringRef {
				parts = append(parts, trimQuotes(tree.StringRefText(tree.Nodes[i])))
			}
		}
		switch len(parts) {
		case 1:
			return program.QualifiedName{Relation: parts[0]}
		case 2:
			return program.QualifiedName{Schema: parts[0], Relation: parts[1]}
		case 3:
			return program.QualifiedName{Catalog: parts[0], Schema: parts[1], Relation: parts[2]}
		default:
			return program.QualifiedName{}
		}

	case ast.ObjectSQLTableRef:
		begin, end := tree.ChildIndices(nodeID)
		for i := begin; i < end; i++ {
			if tree.Nodes[i].AttributeKey == ast.AttrSQLTableName {
				return readQualifiedNameInner(tree, i, true)
			}
		}
		return program.QualifiedName{}

	default:
		return program.QualifiedName{}
	}
}

func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
