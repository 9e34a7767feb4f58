package qail

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/qailsql/qail-go/internal/wire"
)

// paramCollector accumulates the ordered Bind parameters an Extended Query
// plan needs as the command tree is rendered, handing each one back a
// stable $N placeholder. Simple Query rendering never constructs one —
// renderValue falls back to inline literals when params is nil (§4.2).
type paramCollector struct {
	values []Value
}

func (p *paramCollector) bind(v Value) string {
	if v.Kind == ValPositional {
		// A caller-supplied placeholder already names its own slot; honor
		// it instead of allocating a new one.
		return "$" + itoa(v.Placeholder)
	}
	p.values = append(p.values, v)
	return "$" + itoa(len(p.values))
}

func itoa(n int) string { return fmt.Sprintf("%d", n) }

// Plan is the result of encoding one QailCmd: either an Extended Query
// four-message sequence (Parse/Bind/Describe/Execute, Sync appended by the
// caller) or a Simple Query string, never both.
type Plan struct {
	// Simple is true when this command must travel as a Simple Query 'Q'
	// message (transaction control, pub/sub, raw SQL, DDL-only commands).
	Simple bool
	SQL    string // rendered text: the Simple Query body, or the parameterized statement for Extended Query

	// StatementName is a stable, hash-derived name for this SQL: identical
	// parameterized text always yields the same name. Conn.Exec runs a plan
	// as a one-shot through the unnamed statement and does not use it.
	StatementName string
	Params        []Value
}

// encodeCmd renders c into a Plan. This is the single place that decides
// Simple vs. Extended Query mode, per §4.2.
func encodeCmd(c *QailCmd) (*Plan, *Error) {
	if err := validateCmd(c); err != nil {
		return nil, err
	}

	if isSimpleQueryKind(c.Kind) {
		sql, err := renderSimple(c)
		if err != nil {
			return nil, err
		}
		return &Plan{Simple: true, SQL: sql}, nil
	}

	params := &paramCollector{}
	sql, err := renderExtended(c, params)
	if err != nil {
		return nil, err
	}
	return &Plan{
		SQL:           sql,
		StatementName: statementName(sql),
		Params:        params.values,
	}, nil
}

func isSimpleQueryKind(k CmdKind) bool {
	switch k {
	case CmdBegin, CmdCommit, CmdRollback, CmdSavepoint, CmdRelease, CmdRollbackTo,
		CmdListen, CmdUnlisten, CmdNotify, CmdRaw,
		CmdMake, CmdDrop, CmdAlter, CmdAlterDrop, CmdDropCol, CmdRenameCol, CmdTruncate,
		CmdIndex, CmdDropIndex, CmdLockTable,
		CmdCreateMaterializedView, CmdRefreshMaterializedView, CmdDropMaterializedView,
		CmdMod, CmdOver, CmdWith, CmdJSONTable, CmdGen,
		CmdExplain, CmdExplainAnalyze, CmdCopyOut:
		return true
	default:
		return false
	}
}

// statementName derives a stable statement name from the rendered SQL's
// content hash, so identical parameterized text always reuses the same
// prepared statement across calls (§4.2, §4.4). No library in the example
// corpus offers general-purpose hashing, so this uses the standard
// library's crypto/sha256 — documented in DESIGN.md.
func statementName(sql string) string {
	sum := sha256.Sum256([]byte(sql))
	return "qail_" + hex.EncodeToString(sum[:8])
}

func validateCmd(c *QailCmd) *Error {
	for _, wc := range c.Where {
		if err := wc.Cond.validate(); err != nil {
			return err
		}
	}
	for _, wc := range c.Having {
		if err := wc.Cond.validate(); err != nil {
			return err
		}
	}
	for _, j := range c.Joins {
		for _, wc := range j.On {
			if err := wc.Cond.validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// renderSimple renders transaction-control, pub/sub, DDL and raw commands
// as a single Simple Query string with literals escaped inline.
func renderSimple(c *QailCmd) (string, *Error) {
	switch c.Kind {
	case CmdRaw:
		return c.RawSQL, nil
	case CmdBegin:
		return "BEGIN", nil
	case CmdCommit:
		return "COMMIT", nil
	case CmdRollback:
		return "ROLLBACK", nil
	case CmdSavepoint:
		return "SAVEPOINT " + quoteIdent(c.Savepoint), nil
	case CmdRelease:
		return "RELEASE SAVEPOINT " + quoteIdent(c.Savepoint), nil
	case CmdRollbackTo:
		return "ROLLBACK TO SAVEPOINT " + quoteIdent(c.Savepoint), nil
	case CmdListen:
		return "LISTEN " + quoteIdent(c.Channel), nil
	case CmdUnlisten:
		return "UNLISTEN " + quoteIdent(c.Channel), nil
	case CmdNotify:
		return "NOTIFY " + quoteIdent(c.Channel) + ", " + quoteLiteral(c.Payload), nil
	case CmdMake:
		return renderCreateTable(c), nil
	case CmdDrop:
		return "DROP TABLE " + onlyPrefix(c.Only) + quoteIdent(c.Table), nil
	case CmdAlter:
		return renderAlterAdd(c), nil
	case CmdAlterDrop, CmdDropCol:
		return "ALTER TABLE " + quoteIdent(c.Table) + " DROP COLUMN " + quoteIdent(c.NewName), nil
	case CmdRenameCol:
		return "ALTER TABLE " + quoteIdent(c.Table) + " RENAME COLUMN " + quoteIdent(c.Table2) + " TO " + quoteIdent(c.NewName), nil
	case CmdTruncate:
		return "TRUNCATE TABLE " + quoteIdent(c.Table), nil
	case CmdIndex:
		return renderCreateIndex(c), nil
	case CmdDropIndex:
		return "DROP INDEX " + quoteIdent(c.IndexDefinition.Name), nil
	case CmdLockTable:
		return "LOCK TABLE " + quoteIdent(c.Table) + lockModeClause(c.Lock), nil
	case CmdCreateMaterializedView:
		return "CREATE MATERIALIZED VIEW " + quoteIdent(c.ViewName) + " AS " + c.RawSQL, nil
	case CmdRefreshMaterializedView:
		return "REFRESH MATERIALIZED VIEW " + quoteIdent(c.ViewName), nil
	case CmdDropMaterializedView:
		return "DROP MATERIALIZED VIEW " + quoteIdent(c.ViewName), nil
	case CmdMod:
		return renderAlterColumnType(c), nil
	case CmdOver:
		return renderSelect(c, nil), nil
	case CmdWith:
		return renderCTEs(c.CTEs) + c.RawSQL, nil
	case CmdJSONTable:
		return renderJSONTable(c), nil
	case CmdGen:
		return renderGeneratedColumn(c), nil
	case CmdExplain:
		return "EXPLAIN " + c.RawSQL, nil
	case CmdExplainAnalyze:
		return "EXPLAIN ANALYZE " + c.RawSQL, nil
	case CmdCopyOut:
		return "COPY " + quoteIdent(c.Table) + " TO STDOUT", nil
	default:
		return "", newErr("encodeCmd", KindInvalidMessage, fmt.Sprintf("command kind %d is not a Simple Query kind", c.Kind), nil)
	}
}

// renderAlterColumnType renders a generic ALTER COLUMN ... TYPE change
// (CmdMod). The spec names MOD in QailCmd's kind enum without further
// detail; this library resolves it to PostgreSQL's ALTER COLUMN TYPE form,
// the one in-place column modification every dialect variant supports.
func renderAlterColumnType(c *QailCmd) string {
	def := c.ColumnDefs[0]
	s := "ALTER TABLE " + quoteIdent(c.Table) + " ALTER COLUMN " + quoteIdent(def.Name) + " TYPE " + def.ColType
	if def.IsArray {
		s += "[]"
	}
	return s
}

// renderJSONTable renders a JSON_TABLE(...) row source. RawSQL carries the
// already-rendered (json_expr, path_spec COLUMNS (...)) argument list.
func renderJSONTable(c *QailCmd) string {
	alias := c.TableAlias
	if alias == "" {
		alias = "jt"
	}
	return "SELECT * FROM JSON_TABLE(" + c.RawSQL + ") AS " + quoteIdent(alias)
}

// renderGeneratedColumn renders an ALTER TABLE ... ADD COLUMN ... GENERATED
// ALWAYS AS (expr) STORED, keyed off the column definition's Default field
// as the generation expression.
func renderGeneratedColumn(c *QailCmd) string {
	def := c.ColumnDefs[0]
	return "ALTER TABLE " + quoteIdent(c.Table) + " ADD COLUMN " + quoteIdent(def.Name) + " " + def.ColType +
		" GENERATED ALWAYS AS (" + def.Default + ") STORED"
}

func onlyPrefix(only bool) string {
	if only {
		return "ONLY "
	}
	return ""
}

func renderCreateTable(c *QailCmd) string {
	cols := make([]string, 0, len(c.ColumnDefs)+len(c.TableConstraints))
	for _, def := range c.ColumnDefs {
		cols = append(cols, renderColumnDef(def))
	}
	for _, tc := range c.TableConstraints {
		cols = append(cols, renderTableConstraint(tc))
	}
	return "CREATE TABLE " + quoteIdent(c.Table) + " (" + strings.Join(cols, ", ") + ")"
}

func renderTableConstraint(tc TableConstraint) string {
	prefix := ""
	if tc.Name != "" {
		prefix = "CONSTRAINT " + quoteIdent(tc.Name) + " "
	}
	cols := make([]string, len(tc.Columns))
	for i, c := range tc.Columns {
		cols[i] = quoteIdent(c)
	}
	colList := strings.Join(cols, ", ")
	switch tc.Kind {
	case ConstraintUnique:
		return prefix + "UNIQUE (" + colList + ")"
	case ConstraintPrimaryKey:
		return prefix + "PRIMARY KEY (" + colList + ")"
	case ConstraintForeignKey:
		return prefix + "FOREIGN KEY (" + colList + ") REFERENCES " + tc.References
	case ConstraintCheck:
		return prefix + "CHECK (" + tc.Expr + ")"
	default:
		return prefix
	}
}

func renderAlterAdd(c *QailCmd) string {
	def := c.ColumnDefs[0]
	return "ALTER TABLE " + quoteIdent(c.Table) + " ADD COLUMN " + renderColumnDef(def)
}

func renderCreateIndex(c *QailCmd) string {
	idx := c.IndexDefinition
	b := strings.Builder{}
	b.WriteString("CREATE ")
	if idx.Unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX ")
	b.WriteString(quoteIdent(idx.Name))
	b.WriteString(" ON ")
	b.WriteString(quoteIdent(idx.Table))
	if idx.Method != "" {
		b.WriteString(" USING ")
		b.WriteString(idx.Method)
	}
	cols := make([]string, len(idx.Columns))
	for i, c := range idx.Columns {
		cols[i] = quoteIdent(c)
	}
	b.WriteString(" (")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(")")
	if idx.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(idx.Where)
	}
	return b.String()
}

// renderExtended renders GET/SET/DEL/ADD/PUT as a parameterized statement
// for the Parse/Bind/Describe/Execute/Sync path.
func renderExtended(c *QailCmd, params *paramCollector) (string, *Error) {
	switch c.Kind {
	case CmdGet:
		return renderSelect(c, params), nil
	case CmdSet:
		return renderUpdate(c, params), nil
	case CmdDel:
		return renderDelete(c, params), nil
	case CmdAdd, CmdPut:
		return renderInsert(c, params), nil
	default:
		return "", newErr("encodeCmd", KindInvalidMessage, fmt.Sprintf("command kind %d is not an Extended Query kind", c.Kind), nil)
	}
}

func renderCTEs(ctes []CTE) string {
	if len(ctes) == 0 {
		return ""
	}
	parts := make([]string, len(ctes))
	for i, cte := range ctes {
		name := quoteIdent(cte.Name)
		if len(cte.Columns) > 0 {
			cols := make([]string, len(cte.Columns))
			for j, c := range cte.Columns {
				cols[j] = quoteIdent(c)
			}
			name += " (" + strings.Join(cols, ", ") + ")"
		}
		parts[i] = name + " AS (" + cte.Query + ")"
	}
	return "WITH " + strings.Join(parts, ", ") + " "
}

func renderSelect(c *QailCmd, params *paramCollector) string {
	b := strings.Builder{}
	b.WriteString(renderCTEs(c.CTEs))
	b.WriteString("SELECT ")
	if len(c.DistinctOn) > 0 {
		cols := make([]string, len(c.DistinctOn))
		for i, col := range c.DistinctOn {
			cols[i] = quoteIdent(col)
		}
		b.WriteString("DISTINCT ON (")
		b.WriteString(strings.Join(cols, ", "))
		b.WriteString(") ")
	} else if c.Distinct {
		b.WriteString("DISTINCT ")
	}

	cols := c.Columns
	if len(cols) == 0 {
		cols = []Expr{Star()}
	}
	colParts := make([]string, len(cols))
	for i, e := range cols {
		colParts[i] = renderExprText(e, params)
	}
	b.WriteString(strings.Join(colParts, ", "))

	b.WriteString(" FROM ")
	b.WriteString(onlyPrefix(c.Only))
	b.WriteString(quoteIdent(c.Table))
	if c.TableAlias != "" {
		b.WriteString(" AS ")
		b.WriteString(quoteIdent(c.TableAlias))
	}
	b.WriteString(tableSampleClause(c.Sample))

	for _, j := range c.Joins {
		b.WriteString(renderJoin(j, params))
	}

	if w := renderWhere(c.Where, params); w != "" {
		b.WriteString(" WHERE ")
		b.WriteString(w)
	}

	if len(c.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		switch c.GroupMode {
		case GroupRollup:
			b.WriteString("ROLLUP (")
		case GroupCube:
			b.WriteString("CUBE (")
		}
		cols := make([]string, len(c.GroupBy))
		for i, g := range c.GroupBy {
			cols[i] = quoteIdent(g)
		}
		b.WriteString(strings.Join(cols, ", "))
		if c.GroupMode != GroupSimple {
			b.WriteString(")")
		}
	}

	if h := renderWhere(c.Having, params); h != "" {
		b.WriteString(" HAVING ")
		b.WriteString(h)
	}

	for _, so := range c.SetOps {
		b.WriteString(setOpToken(so))
		b.WriteString(so.Query)
	}

	if len(c.OrderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(renderOrderBy(c.OrderBy))
	}

	// FETCH and LIMIT are mutually exclusive; FETCH wins when both are set (§4.2).
	if c.FetchCount != nil {
		b.WriteString(fmt.Sprintf(" FETCH FIRST %d ROWS %s", *c.FetchCount, ties(c.WithTies)))
	} else if c.Limit != nil {
		b.WriteString(fmt.Sprintf(" LIMIT %d", *c.Limit))
	}

	if c.Offset != nil {
		b.WriteString(fmt.Sprintf(" OFFSET %d", *c.Offset))
	}

	b.WriteString(lockModeClause(c.Lock))

	if len(c.Returning) > 0 {
		b.WriteString(renderReturning(c.Returning, params))
	}

	return b.String()
}

func ties(withTies bool) string {
	if withTies {
		return "WITH TIES"
	}
	return "ONLY"
}

func setOpToken(so SetOperation) string {
	kw := "UNION"
	switch so.Kind {
	case SetIntersect:
		kw = "INTERSECT"
	case SetExcept:
		kw = "EXCEPT"
	}
	if so.All {
		kw += " ALL"
	}
	return " " + kw + " "
}

func renderJoin(j JoinClause, params *paramCollector) string {
	b := strings.Builder{}
	switch j.Kind {
	case JoinLeft:
		b.WriteString(" LEFT JOIN ")
	case JoinRight:
		b.WriteString(" RIGHT JOIN ")
	case JoinFull:
		b.WriteString(" FULL JOIN ")
	case JoinCross:
		b.WriteString(" CROSS JOIN ")
	default:
		b.WriteString(" JOIN ")
	}
	b.WriteString(quoteIdent(j.Table))
	if j.Alias != "" {
		b.WriteString(" AS ")
		b.WriteString(quoteIdent(j.Alias))
	}
	if j.Kind != JoinCross && len(j.On) > 0 {
		b.WriteString(" ON ")
		b.WriteString(renderWhere(j.On, params))
	}
	return b.String()
}

func renderReturning(cols []Expr, params *paramCollector) string {
	parts := make([]string, len(cols))
	for i, e := range cols {
		parts[i] = renderExprText(e, params)
	}
	return " RETURNING " + strings.Join(parts, ", ")
}

func renderUpdate(c *QailCmd, params *paramCollector) string {
	b := strings.Builder{}
	b.WriteString(renderCTEs(c.CTEs))
	b.WriteString("UPDATE ")
	b.WriteString(onlyPrefix(c.Only))
	b.WriteString(quoteIdent(c.Table))
	if c.TableAlias != "" {
		b.WriteString(" AS ")
		b.WriteString(quoteIdent(c.TableAlias))
	}
	b.WriteString(" SET ")
	sets := make([]string, len(c.Assignments))
	for i, a := range c.Assignments {
		sets[i] = quoteIdent(a.Column) + " = " + renderValue(a.Value, params)
	}
	b.WriteString(strings.Join(sets, ", "))

	if w := renderWhere(c.Where, params); w != "" {
		b.WriteString(" WHERE ")
		b.WriteString(w)
	}
	if len(c.Returning) > 0 {
		b.WriteString(renderReturning(c.Returning, params))
	}
	return b.String()
}

func renderDelete(c *QailCmd, params *paramCollector) string {
	b := strings.Builder{}
	b.WriteString(renderCTEs(c.CTEs))
	b.WriteString("DELETE FROM ")
	b.WriteString(onlyPrefix(c.Only))
	b.WriteString(quoteIdent(c.Table))
	if w := renderWhere(c.Where, params); w != "" {
		b.WriteString(" WHERE ")
		b.WriteString(w)
	}
	if len(c.Returning) > 0 {
		b.WriteString(renderReturning(c.Returning, params))
	}
	return b.String()
}

func renderInsert(c *QailCmd, params *paramCollector) string {
	b := strings.Builder{}
	b.WriteString(renderCTEs(c.CTEs))
	b.WriteString("INSERT INTO ")
	b.WriteString(quoteIdent(c.Table))

	if len(c.InsertColumns) > 0 {
		cols := make([]string, len(c.InsertColumns))
		for i, col := range c.InsertColumns {
			cols[i] = quoteIdent(col)
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(cols, ", "))
		b.WriteString(")")
	}

	switch c.Overriding {
	case OverridingSystemValue:
		b.WriteString(" OVERRIDING SYSTEM VALUE")
	case OverridingUserValue:
		b.WriteString(" OVERRIDING USER VALUE")
	}

	if c.DefaultValues {
		b.WriteString(" DEFAULT VALUES")
	} else {
		vals := make([]string, len(c.InsertValues))
		for i, v := range c.InsertValues {
			vals[i] = renderValue(v, params)
		}
		b.WriteString(" VALUES (")
		b.WriteString(strings.Join(vals, ", "))
		b.WriteString(")")
	}

	if c.OnConflictClause != nil {
		b.WriteString(renderOnConflict(*c.OnConflictClause, params))
	}

	if len(c.Returning) > 0 {
		b.WriteString(renderReturning(c.Returning, params))
	}
	return b.String()
}

func renderOnConflict(oc OnConflict, params *paramCollector) string {
	b := strings.Builder{}
	b.WriteString(" ON CONFLICT")
	if len(oc.Columns) > 0 {
		cols := make([]string, len(oc.Columns))
		for i, c := range oc.Columns {
			cols[i] = quoteIdent(c)
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(cols, ", "))
		b.WriteString(")")
	}
	if oc.DoNothing || len(oc.Update) == 0 {
		b.WriteString(" DO NOTHING")
		return b.String()
	}
	b.WriteString(" DO UPDATE SET ")
	sets := make([]string, len(oc.Update))
	for i, a := range oc.Update {
		sets[i] = quoteIdent(a.Column) + " = " + renderValue(a.Value, params)
	}
	b.WriteString(strings.Join(sets, ", "))
	return b.String()
}

// valueToWireParam converts a resolved Value into its Bind wire form: text
// format per §4.2, NULL encoded as a nil []byte (the Encoder maps that to
// length -1).
func valueToWireParam(v Value) wire.Param {
	if v.IsNull() {
		return wire.Param{Value: nil}
	}
	return wire.Param{Value: []byte(renderLiteral(plainValue(v)))}
}

// plainValue strips the SQL-literal quoting renderLiteral would otherwise
// add for text/bytea/etc — Bind parameters travel as raw text, not as
// SQL source, so only numeric/bool formatting needs renderLiteral's help
// and everything else is passed through verbatim.
func plainValue(v Value) Value {
	switch v.Kind {
	case ValText, ValColumnRef, ValUUID, ValTimestamp, ValFuncToken, ValNamed:
		return Value{Kind: ValFuncToken, Name: textOf(v)}
	case ValBytes:
		return Value{Kind: ValFuncToken, Name: "\\x" + hex.EncodeToString(v.Bytes)}
	case ValInterval:
		return Value{Kind: ValFuncToken, Name: fmt.Sprintf("%d %s", v.IntervalAmount, pluralUnit(v.IntervalUnit, v.IntervalAmount))}
	default:
		return v
	}
}

func textOf(v Value) string {
	switch v.Kind {
	case ValText:
		return v.Text
	default:
		return v.Name
	}
}
