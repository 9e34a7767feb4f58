package qail

// ExprKind discriminates the tagged variants of Expr (§3).
type ExprKind int

const (
	ExprStar ExprKind = iota
	ExprColumn
	ExprAliased
	ExprAggregate
	ExprLiteral
	ExprBinary
	ExprJSONAccess
	ExprCall
	ExprCase
	ExprSubquery
	ExprCoalesce
	ExprCast
	ExprColumnDef
	ExprWindow
	ExprColumnMod
	ExprSpecialFunc
)

// AggFunc is the closed set of aggregate functions an ExprAggregate may
// name.
type AggFunc string

const (
	AggCount     AggFunc = "count"
	AggSum       AggFunc = "sum"
	AggAvg       AggFunc = "avg"
	AggMin       AggFunc = "min"
	AggMax       AggFunc = "max"
	AggArrayAgg  AggFunc = "array_agg"
	AggStringAgg AggFunc = "string_agg"
	AggJSONAgg   AggFunc = "json_agg"
	AggJSONBAgg  AggFunc = "jsonb_agg"
	AggBoolAnd   AggFunc = "bool_and"
	AggBoolOr    AggFunc = "bool_or"
)

// JSONPathStep is one (key, as_text) hop of a JSON access chain: `->` when
// AsText is false, `->>` when true.
type JSONPathStep struct {
	Key    string
	AsText bool
}

// WhenClause is one WHEN/THEN arm of a CASE expression.
type WhenClause struct {
	When *Condition
	Then Expr
}

// ColumnModKind distinguishes ADD/DROP column facets inside an ALTER TABLE.
type ColumnModKind int

const (
	ColumnModAdd ColumnModKind = iota
	ColumnModDrop
)

// WindowFrame describes the OVER(...) frame clause of a window function.
type WindowFrame struct {
	Mode  string // "ROWS", "RANGE", "GROUPS"
	Start string // e.g. "UNBOUNDED PRECEDING"
	End   string // e.g. "CURRENT ROW"
}

// Expr is a node of a PostgreSQL-shaped expression tree. Child references
// (Left/Right on ExprBinary, Inner on ExprCast) are non-owning borrows: the
// spec requires only that the tree stays acyclic and that children outlive
// their parent, which an ordinary Go pointer into caller-owned memory
// already guarantees without extra bookkeeping (§9).
type Expr struct {
	Kind ExprKind

	// ExprColumn / ExprAliased / ExprColumnDef / ExprColumnMod
	Name  string
	Alias string

	// ExprAggregate
	Agg         AggFunc
	Distinct    bool
	AggColumn   string

	// ExprLiteral
	Literal Value

	// ExprBinary
	Left  *Expr
	Op    Operator
	Right *Expr

	// ExprJSONAccess
	Column string
	Path   []JSONPathStep

	// ExprCall / ExprSpecialFunc
	FuncName string
	Args     []Expr
	Keyword  map[string]Expr // e.g. {"FROM": pos, "FOR": length} for SUBSTRING

	// ExprCase
	WhenClauses []WhenClause
	Else        *Expr

	// ExprSubquery
	SQLFragment string

	// ExprCoalesce reuses Args.

	// ExprCast
	Inner    *Expr
	TypeName string

	// ExprColumnDef
	ColType        string
	IsArray        bool
	NotNull        bool
	PrimaryKey     bool
	Unique         bool
	Default        string
	Check          string
	References     string

	// ExprWindow
	WindowFunc    string
	PartitionBy   []string
	OrderBy       []OrderTerm
	Frame         *WindowFrame

	// ExprColumnMod
	ModKind ColumnModKind
	ColDef  *Expr // for ColumnModAdd
}

// Star returns the `*` select-list expression.
func Star() Expr { return Expr{Kind: ExprStar} }

// Col returns a bare column reference.
func Col(name string) Expr { return Expr{Kind: ExprColumn, Name: name} }

// As returns e aliased to alias.
func As(e Expr, alias string) Expr {
	e2 := e
	e2.Kind = ExprAliased
	e2.Alias = alias
	return e2
}

// AggExpr returns an aggregate-function expression.
func AggExpr(fn AggFunc, column string, distinct bool, alias string) Expr {
	return Expr{Kind: ExprAggregate, Agg: fn, AggColumn: column, Distinct: distinct, Alias: alias}
}

// Lit returns a literal-value expression.
func Lit(v Value) Expr { return Expr{Kind: ExprLiteral, Literal: v} }

// Binary returns `left op right`. The alias is stored on the node;
// renderExprText renders only `left op right` and does not emit it.
func Binary(left Expr, op Operator, right Expr, alias string) Expr {
	l, r := left, right
	return Expr{Kind: ExprBinary, Left: &l, Op: op, Right: &r, Alias: alias}
}

// JSONAccess returns a column's JSON path-access chain.
func JSONAccess(column string, path ...JSONPathStep) Expr {
	return Expr{Kind: ExprJSONAccess, Column: column, Path: path}
}

// Call returns a function-call expression.
func Call(name string, alias string, args ...Expr) Expr {
	return Expr{Kind: ExprCall, FuncName: name, Alias: alias, Args: args}
}

// Case returns a CASE expression.
func Case(elseExpr *Expr, whens ...WhenClause) Expr {
	return Expr{Kind: ExprCase, WhenClauses: whens, Else: elseExpr}
}

// Subquery returns a pre-rendered subquery fragment, parenthesized by the
// encoder at use sites.
func Subquery(sql string) Expr { return Expr{Kind: ExprSubquery, SQLFragment: sql} }

// Coalesce returns COALESCE(args...).
func Coalesce(args ...Expr) Expr { return Expr{Kind: ExprCoalesce, Args: args} }

// Cast returns `expr::typeName`.
func Cast(inner Expr, typeName string) Expr {
	i := inner
	return Expr{Kind: ExprCast, Inner: &i, TypeName: typeName}
}

// ColumnDef returns a DDL column definition.
func ColumnDef(name, colType string, opts ...func(*Expr)) Expr {
	e := Expr{Kind: ExprColumnDef, Name: name, ColType: colType}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// WithNotNull, WithPrimaryKey, WithUnique, WithArray, WithDefault,
// WithCheck, WithReferences are ColumnDef option functions.
func WithNotNull(e *Expr)             { e.NotNull = true }
func WithPrimaryKey(e *Expr)          { e.PrimaryKey = true }
func WithUnique(e *Expr)              { e.Unique = true }
func WithArray(e *Expr)               { e.IsArray = true }
func WithDefault(expr string) func(*Expr) {
	return func(e *Expr) { e.Default = expr }
}
func WithCheck(expr string) func(*Expr) {
	return func(e *Expr) { e.Check = expr }
}
func WithReferences(target string) func(*Expr) {
	return func(e *Expr) { e.References = target }
}

// Window returns a window-function expression.
func Window(fn string, alias string, partitionBy []string, orderBy []OrderTerm, frame *WindowFrame) Expr {
	return Expr{Kind: ExprWindow, WindowFunc: fn, Alias: alias, PartitionBy: partitionBy, OrderBy: orderBy, Frame: frame}
}

// AddColumn returns a column-modification expression for ALTER ... ADD COLUMN.
func AddColumn(def Expr) Expr {
	d := def
	return Expr{Kind: ExprColumnMod, ModKind: ColumnModAdd, ColDef: &d, Name: def.Name}
}

// DropColumn returns a column-modification expression for ALTER ... DROP COLUMN.
func DropColumn(name string) Expr {
	return Expr{Kind: ExprColumnMod, ModKind: ColumnModDrop, Name: name}
}

// SpecialFunc returns a keyword-argument special function call, e.g.
// SUBSTRING(col FROM 2 FOR 5) or EXTRACT(YEAR FROM col). The leading
// operand (col, YEAR) goes in the returned Expr's Args; the renderer emits
// Args before the keyword arguments.
func SpecialFunc(name string, keyword map[string]Expr) Expr {
	return Expr{Kind: ExprSpecialFunc, FuncName: name, Keyword: keyword}
}
