package qail

// CmdKind discriminates the ~35 command shapes QailCmd can hold (§3).
type CmdKind int

const (
	CmdGet CmdKind = iota
	CmdSet
	CmdDel
	CmdAdd
	CmdPut
	CmdMake
	CmdDrop
	CmdMod
	CmdAlter
	CmdAlterDrop
	CmdDropCol
	CmdRenameCol
	CmdTruncate
	CmdIndex
	CmdDropIndex
	CmdOver
	CmdWith
	CmdJSONTable
	CmdGen
	CmdBegin
	CmdCommit
	CmdRollback
	CmdSavepoint
	CmdRelease
	CmdRollbackTo
	CmdListen
	CmdNotify
	CmdUnlisten
	CmdExplain
	CmdExplainAnalyze
	CmdCopyOut
	CmdLockTable
	CmdCreateMaterializedView
	CmdRefreshMaterializedView
	CmdDropMaterializedView
	CmdRaw
)

// LockMode is the row-locking clause a GET may request.
type LockMode int

const (
	LockNone LockMode = iota
	LockUpdate
	LockNoKeyUpdate
	LockShare
	LockKeyShare
)

// GroupMode distinguishes a plain GROUP BY from ROLLUP/CUBE.
type GroupMode int

const (
	GroupSimple GroupMode = iota
	GroupRollup
	GroupCube
)

// SetOpKind is the kind of set operation combining two result sets.
type SetOpKind int

const (
	SetUnion SetOpKind = iota
	SetIntersect
	SetExcept
)

// Overriding selects INSERT's OVERRIDING clause for identity columns.
type Overriding int

const (
	OverridingNone Overriding = iota
	OverridingSystemValue
	OverridingUserValue
)

// JoinKind is the closed set of SQL join types.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinRight
	JoinFull
	JoinCross
)

// JoinClause is one JOIN of a GET command.
type JoinClause struct {
	Kind  JoinKind
	Table string
	Alias string
	On    []WhereClause
}

// OrderTerm is one ORDER BY entry.
type OrderTerm struct {
	Expr       Expr
	Descending bool
	NullsFirst bool
	NullsLast  bool
}

// Assignment is one `column = value` pair of a SET command.
type Assignment struct {
	Column string
	Value  Value
}

// OnConflict describes an INSERT ... ON CONFLICT clause.
type OnConflict struct {
	Columns []string
	DoNothing bool
	Update  []Assignment
}

// CTE is one named WITH entry.
type CTE struct {
	Name    string
	Columns []string
	Query   string // rendered SQL body, itself possibly AST-encoded upstream
}

// TableConstraintKind is the closed set of table-level constraint kinds.
type TableConstraintKind int

const (
	ConstraintUnique TableConstraintKind = iota
	ConstraintPrimaryKey
	ConstraintForeignKey
	ConstraintCheck
)

// TableConstraint is one table-level constraint in a MAKE (CREATE TABLE).
type TableConstraint struct {
	Kind       TableConstraintKind
	Name       string
	Columns    []string
	References string // "other_table(col)" for ConstraintForeignKey
	Expr       string // raw check expression for ConstraintCheck
}

// IndexDef describes a CREATE INDEX command's shape.
type IndexDef struct {
	Name    string
	Table   string
	Columns []string
	Unique  bool
	Method  string // "btree", "gin", "gist", ...
	Where   string // partial index predicate, rendered
}

// SetOperation combines the current command's result with another rendered
// query via UNION/INTERSECT/EXCEPT.
type SetOperation struct {
	Kind  SetOpKind
	All   bool
	Query string
}

// TableSample describes a TABLESAMPLE clause.
type TableSample struct {
	Method  string // "BERNOULLI" or "SYSTEM"
	Percent float64
	Seed    *int64
}

// QailCmd is an immutable command record. Every builder method returns a
// shallow-copied QailCmd with one field changed — cheap because string and
// slice fields are borrows into the caller's arena, never deep-cloned on
// chain (§9).
type QailCmd struct {
	Kind CmdKind

	Table      string
	TableAlias string
	Only       bool

	Columns []Expr

	Where   []WhereClause
	Joins   []JoinClause

	OrderBy   []OrderTerm
	GroupBy   []string
	GroupMode GroupMode
	Having    []WhereClause

	Limit       *int64
	Offset      *int64
	FetchCount  *int64
	WithTies    bool

	Assignments []Assignment
	Returning   []Expr

	Distinct   bool
	DistinctOn []string

	Lock LockMode

	OnConflictClause *OnConflict

	CTEs []CTE

	IndexDefinition *IndexDef

	TableConstraints []TableConstraint

	SetOps []SetOperation

	Savepoint string

	Channel string
	Payload string

	InsertValues []Value
	InsertColumns []string

	RawSQL string

	DefaultValues bool
	Overriding    Overriding

	Sample *TableSample

	// ColumnDefs holds the column definition list for MAKE (CREATE TABLE)
	// and the single column definition for ALTER ... ADD COLUMN.
	ColumnDefs []Expr

	// NewName is the target name for RENAME_COL and similar rename ops;
	// Table2 carries the "from" side of a rename when that differs from
	// Table (e.g. renaming a column uses Table2 for the old column name).
	NewName string
	Table2  string

	// ViewName names the view for the MaterializedView commands.
	ViewName string
}

// Get starts a SELECT (GET) command against table.
func Get(table string) *QailCmd { return &QailCmd{Kind: CmdGet, Table: table} }

// Set starts an UPDATE (SET) command against table.
func Set(table string) *QailCmd { return &QailCmd{Kind: CmdSet, Table: table} }

// Del starts a DELETE command against table.
func Del(table string) *QailCmd { return &QailCmd{Kind: CmdDel, Table: table} }

// Add starts an INSERT (ADD) command against table.
func Add(table string) *QailCmd { return &QailCmd{Kind: CmdAdd, Table: table} }

// Put starts an upsert (PUT, i.e. INSERT ... ON CONFLICT) command.
func Put(table string) *QailCmd { return &QailCmd{Kind: CmdPut, Table: table} }

// Make starts a CREATE TABLE command.
func Make(table string) *QailCmd { return &QailCmd{Kind: CmdMake, Table: table} }

// DropTable starts a DROP TABLE command.
func DropTable(table string) *QailCmd { return &QailCmd{Kind: CmdDrop, Table: table} }

// Raw wraps a pre-rendered SQL fallback command.
func Raw(sql string) *QailCmd { return &QailCmd{Kind: CmdRaw, RawSQL: sql} }

// Begin, Commit, Rollback start transaction-control commands.
func Begin() *QailCmd    { return &QailCmd{Kind: CmdBegin} }
func Commit() *QailCmd   { return &QailCmd{Kind: CmdCommit} }
func Rollback() *QailCmd { return &QailCmd{Kind: CmdRollback} }

// SavepointCmd, ReleaseCmd, RollbackToCmd manage named savepoints.
func SavepointCmd(name string) *QailCmd  { return &QailCmd{Kind: CmdSavepoint, Savepoint: name} }
func ReleaseCmd(name string) *QailCmd    { return &QailCmd{Kind: CmdRelease, Savepoint: name} }
func RollbackToCmd(name string) *QailCmd { return &QailCmd{Kind: CmdRollbackTo, Savepoint: name} }

// Listen, Notify, Unlisten build pub/sub commands.
func Listen(channel string) *QailCmd   { return &QailCmd{Kind: CmdListen, Channel: channel} }
func Unlisten(channel string) *QailCmd { return &QailCmd{Kind: CmdUnlisten, Channel: channel} }
func Notify(channel, payload string) *QailCmd {
	return &QailCmd{Kind: CmdNotify, Channel: channel, Payload: payload}
}

// clone returns a shallow copy of c for a builder method to mutate one field of.
func (c *QailCmd) clone() *QailCmd {
	cp := *c
	return &cp
}

// Column appends one column expression to the select list.
func (c *QailCmd) Column(e Expr) *QailCmd {
	cp := c.clone()
	cp.Columns = append(append([]Expr{}, c.Columns...), e)
	return cp
}

// ColumnNames appends bare column references by name — a convenience over
// repeated Column(Col(name)) calls.
func (c *QailCmd) ColumnNames(names ...string) *QailCmd {
	cp := c.clone()
	cols := append([]Expr{}, c.Columns...)
	for _, n := range names {
		cols = append(cols, Col(n))
	}
	cp.Columns = cols
	return cp
}

// As sets the table alias.
func (c *QailCmd) As(alias string) *QailCmd {
	cp := c.clone()
	cp.TableAlias = alias
	return cp
}

// OnlyTable sets the ONLY flag (excludes inheriting child tables).
func (c *QailCmd) OnlyTable() *QailCmd {
	cp := c.clone()
	cp.Only = true
	return cp
}

// Filter appends a WHERE condition, ANDed to prior clauses.
func (c *QailCmd) Filter(column string, op Operator, value Value) *QailCmd {
	return c.FilterJoin(LogicalAnd, Cond(column, op, value))
}

// FilterOr appends a WHERE condition, ORed to prior clauses.
func (c *QailCmd) FilterOr(column string, op Operator, value Value) *QailCmd {
	return c.FilterJoin(LogicalOr, Cond(column, op, value))
}

// FilterJoin appends a Condition with an explicit join operator.
func (c *QailCmd) FilterJoin(join LogicalOp, cond Condition) *QailCmd {
	cp := c.clone()
	cp.Where = append(append([]WhereClause{}, c.Where...), WhereClause{Cond: cond, Join: join})
	return cp
}

// Join appends a JOIN clause.
func (c *QailCmd) Join(kind JoinKind, table, alias string, on ...WhereClause) *QailCmd {
	cp := c.clone()
	cp.Joins = append(append([]JoinClause{}, c.Joins...), JoinClause{Kind: kind, Table: table, Alias: alias, On: on})
	return cp
}

// OrderByTerm appends an ORDER BY term.
func (c *QailCmd) OrderByTerm(term OrderTerm) *QailCmd {
	cp := c.clone()
	cp.OrderBy = append(append([]OrderTerm{}, c.OrderBy...), term)
	return cp
}

// GroupByCols sets the GROUP BY column list and mode.
func (c *QailCmd) GroupByCols(mode GroupMode, cols ...string) *QailCmd {
	cp := c.clone()
	cp.GroupBy = cols
	cp.GroupMode = mode
	return cp
}

// HavingFilter appends a HAVING condition.
func (c *QailCmd) HavingFilter(join LogicalOp, cond Condition) *QailCmd {
	cp := c.clone()
	cp.Having = append(append([]WhereClause{}, c.Having...), WhereClause{Cond: cond, Join: join})
	return cp
}

// WithLimit sets the LIMIT clause.
func (c *QailCmd) WithLimit(n int64) *QailCmd {
	cp := c.clone()
	cp.Limit = &n
	return cp
}

// WithOffset sets the OFFSET clause.
func (c *QailCmd) WithOffset(n int64) *QailCmd {
	cp := c.clone()
	cp.Offset = &n
	return cp
}

// Fetch sets the FETCH FIRST n [WITH TIES] clause. Per §4.2, FETCH and
// LIMIT are mutually exclusive at render time; FETCH wins when both are
// set (tested explicitly by the encoder, not enforced here).
func (c *QailCmd) Fetch(n int64, withTies bool) *QailCmd {
	cp := c.clone()
	cp.FetchCount = &n
	cp.WithTies = withTies
	return cp
}

// Assign appends a SET assignment.
func (c *QailCmd) Assign(column string, value Value) *QailCmd {
	cp := c.clone()
	cp.Assignments = append(append([]Assignment{}, c.Assignments...), Assignment{Column: column, Value: value})
	return cp
}

// Return appends a RETURNING expression.
func (c *QailCmd) Return(e Expr) *QailCmd {
	cp := c.clone()
	cp.Returning = append(append([]Expr{}, c.Returning...), e)
	return cp
}

// DistinctCmd toggles plain DISTINCT.
func (c *QailCmd) DistinctCmd() *QailCmd {
	cp := c.clone()
	cp.Distinct = true
	return cp
}

// DistinctOnCols sets a DISTINCT ON (cols...) clause.
func (c *QailCmd) DistinctOnCols(cols ...string) *QailCmd {
	cp := c.clone()
	cp.DistinctOn = cols
	return cp
}

// ForLock sets the row-locking mode.
func (c *QailCmd) ForLock(mode LockMode) *QailCmd {
	cp := c.clone()
	cp.Lock = mode
	return cp
}

// WithOnConflict sets the ON CONFLICT clause of an ADD/PUT command.
func (c *QailCmd) WithOnConflict(oc OnConflict) *QailCmd {
	cp := c.clone()
	cp.OnConflictClause = &oc
	return cp
}

// With appends a CTE to the WITH list.
func (c *QailCmd) With(cte CTE) *QailCmd {
	cp := c.clone()
	cp.CTEs = append(append([]CTE{}, c.CTEs...), cte)
	return cp
}

// Values sets the positional insert values for an ADD/PUT command.
func (c *QailCmd) Values(columns []string, values ...Value) *QailCmd {
	cp := c.clone()
	cp.InsertColumns = columns
	cp.InsertValues = values
	return cp
}

// Default marks an ADD/PUT as DEFAULT VALUES.
func (c *QailCmd) Default() *QailCmd {
	cp := c.clone()
	cp.DefaultValues = true
	return cp
}

// OverridingClause sets INSERT's OVERRIDING clause.
func (c *QailCmd) OverridingClause(o Overriding) *QailCmd {
	cp := c.clone()
	cp.Overriding = o
	return cp
}

// SampleClause sets a TABLESAMPLE clause.
func (c *QailCmd) SampleClause(ts TableSample) *QailCmd {
	cp := c.clone()
	cp.Sample = &ts
	return cp
}

// WithColumnDefs sets the column-definition list for MAKE (CREATE TABLE).
func (c *QailCmd) WithColumnDefs(defs ...Expr) *QailCmd {
	cp := c.clone()
	cp.ColumnDefs = defs
	return cp
}

// WithTableConstraints appends table-level constraints for MAKE.
func (c *QailCmd) WithTableConstraints(tcs ...TableConstraint) *QailCmd {
	cp := c.clone()
	cp.TableConstraints = append(append([]TableConstraint{}, c.TableConstraints...), tcs...)
	return cp
}

// AlterAddColumn builds an ALTER ... ADD COLUMN command.
func AlterAddColumn(table string, def Expr) *QailCmd {
	return &QailCmd{Kind: CmdAlter, Table: table, ColumnDefs: []Expr{def}}
}

// AlterDropColumn builds an ALTER ... DROP COLUMN command.
func AlterDropColumn(table, column string) *QailCmd {
	return &QailCmd{Kind: CmdDropCol, Table: table, NewName: column}
}

// RenameColumn builds a RENAME COLUMN command.
func RenameColumn(table, from, to string) *QailCmd {
	return &QailCmd{Kind: CmdRenameCol, Table: table, Table2: from, NewName: to}
}
