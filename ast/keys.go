package ast

// Concrete enum node types (§3.1: "enum types (range ENUM_KEYS_ < t <
// OBJECT_KEYS_)"). Values are offsets from EnumKeysBegin so the taxonomy
// can grow without renumbering everything else.
const (
	EnumInputComponentType NodeType = EnumKeysBegin + 1 + iota
	EnumFetchMethod
	EnumLoadMethod
	EnumVizComponentType
)

// Concrete object node types (§3.1: "object types (t > OBJECT_KEYS_)").
const (
	ObjectDashqlInput NodeType = ObjectKeysBegin + 1 + iota
	ObjectDashqlFetch
	ObjectDashqlLoad
	ObjectDashqlSet
	ObjectDashqlViz
	ObjectDashqlVizComponent
	ObjectDashqlFunctionCall
	ObjectDashqlExtract // supplemented statement kind, see SPEC_FULL §4
	ObjectSQLTableRef
	ObjectDSONPosition
)

// Static (compile-time enumerated) attribute keys. Keys below
// DSONKeysBegin are structural/statement keys; keys at or above it are
// DSON option keys, matching §6.4's "Keys below a reserved threshold are
// statically known."
const (
	AttrDashqlStatementName AttributeKey = 1 + iota
	AttrDashqlInputComponentType
	AttrDashqlInputValueType
	AttrDashqlFetchFromURI
	AttrDashqlFetchMethod
	AttrDashqlLoadMethod
	AttrDashqlDataSource
	AttrDashqlVizTarget
	AttrDashqlVizComponents
	AttrDashqlVizComponentType
	AttrDashqlVizComponentModifiers
	AttrSQLTableName
	AttrSQLFunctionArguments
	AttrSQLFunctionName
	AttrDashqlExtractFromURI
	AttrDashqlExtractInto
)

const (
	AttrDSONPosition AttributeKey = DSONKeysBegin + iota
	AttrDSONPositionRow
	AttrDSONPositionColumn
	AttrDSONPositionWidth
	AttrDSONPositionHeight
	AttrDSONTitle
	AttrDSONURL
	// Flat (non-nested) position coordinates, used when the statement
	// writes row/column/width/height directly instead of inside a nested
	// "position" object (§4.4 INPUT: "nested DSON_POSITION.{...} or flat
	// {...} (nested takes precedence)").
	AttrFlatRow
	AttrFlatColumn
	AttrFlatWidth
	AttrFlatHeight
)
