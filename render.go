package qail

import (
	"fmt"
	"strconv"
	"strings"
)

// render.go is the sole authority on dialect (§4.2): every SQL token this
// library ever emits — operator spelling, literal escaping, clause order —
// is decided here. The wire and connection layers never special-case a
// value or an operator; they hand the encoder a QailCmd and get back text
// plus a parameter list.

// renderLiteral renders v as an inline, SQL-safe literal for Simple Query
// mode (transaction control, DDL, raw SQL) — the Extended Query path never
// inlines a literal into the SQL text, it binds v as a Bind parameter
// instead (see encode.go), whose text valueToWireParam also formats here.
func renderLiteral(v Value) string {
	switch v.Kind {
	case ValNull:
		return "NULL"
	case ValBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	case ValInt:
		return strconv.FormatInt(v.Int, 10)
	case ValFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ValText:
		return quoteLiteral(v.Text)
	case ValBytes:
		return "'\\x" + fmt.Sprintf("%x", v.Bytes) + "'"
	case ValArray:
		parts := make([]string, len(v.Array))
		for i, e := range v.Array {
			parts[i] = renderLiteral(e)
		}
		return "ARRAY[" + strings.Join(parts, ", ") + "]"
	case ValPositional:
		return "$" + strconv.Itoa(v.Placeholder)
	case ValNamed:
		return ":" + v.Name
	case ValFuncToken:
		return v.Name
	case ValColumnRef:
		return quoteIdent(v.Name)
	case ValUUID:
		return quoteLiteral(v.Name)
	case ValInterval:
		return fmt.Sprintf("INTERVAL '%d %s'", v.IntervalAmount, pluralUnit(v.IntervalUnit, v.IntervalAmount))
	case ValTimestamp:
		return quoteLiteral(v.Name)
	default:
		return "NULL"
	}
}

func pluralUnit(u IntervalUnit, n int64) string {
	if n == 1 {
		return string(u)
	}
	return string(u) + "s"
}

// quoteLiteral doubles embedded single quotes per §4.2's escaping rule.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// quoteIdent renders s as a SQL identifier, double-quoting only when it
// actually needs it — mixed case, a reserved word, or a byte outside
// [a-z_][a-z0-9_]* — so a plain lower-case table or column name renders
// bare (§8's end-to-end scenarios require "FROM users", not
// `FROM "users"`). Embedded quotes are doubled when quoting applies.
func quoteIdent(s string) string {
	if !identNeedsQuoting(s) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// identNeedsQuoting reports whether s cannot be emitted as a bare SQL
// identifier: empty, not matching [a-z_][a-z0-9_]*, or a reserved word.
func identNeedsQuoting(s string) bool {
	if s == "" || reservedIdents[strings.ToLower(s)] {
		return true
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		isLower := c >= 'a' && c <= 'z'
		isDigit := c >= '0' && c <= '9'
		if isLower || c == '_' || (i > 0 && isDigit) {
			continue
		}
		return true
	}
	return false
}

// reservedIdents is the set of PostgreSQL reserved keywords this library's
// own rendered SQL is likely to collide with as identifiers; not the full
// PostgreSQL keyword list, just the ones worth guarding against here.
var reservedIdents = map[string]bool{
	"select": true, "from": true, "where": true, "insert": true,
	"update": true, "delete": true, "table": true, "into": true,
	"values": true, "set": true, "order": true, "group": true,
	"having": true, "limit": true, "offset": true, "union": true,
	"all": true, "distinct": true, "as": true, "on": true,
	"join": true, "and": true, "or": true, "not": true, "null": true,
	"true": true, "false": true, "primary": true, "key": true,
	"references": true, "check": true, "default": true, "unique": true,
	"create": true, "drop": true, "alter": true, "column": true,
	"index": true, "view": true, "user": true, "case": true,
	"when": true, "then": true, "else": true, "end": true, "cast": true,
	"array": true, "in": true, "like": true, "between": true,
	"is": true, "returning": true, "with": true, "for": true,
	"to": true, "do": true, "begin": true, "commit": true,
	"rollback": true, "savepoint": true, "release": true,
	"listen": true, "notify": true, "unlisten": true, "explain": true,
	"analyze": true, "lock": true, "grant": true, "revoke": true,
}

// operatorToken maps an Operator to the SQL token(s) render uses on its
// right-hand side. ignoresValue operators and multi-part ones (BETWEEN, IN)
// are handled in renderCondition instead of here.
func operatorToken(op Operator) string {
	switch op {
	case Eq:
		return "="
	case Ne:
		return "<>"
	case Gt:
		return ">"
	case Gte:
		return ">="
	case Lt:
		return "<"
	case Lte:
		return "<="
	case Like:
		return "LIKE"
	case NotLike:
		return "NOT LIKE"
	case ILike:
		return "ILIKE"
	case Contains:
		return "@>"
	case ContainedBy:
		return "<@"
	case Overlaps:
		return "&&"
	case JSONExists:
		return "@?"
	case SimilarTo:
		return "SIMILAR TO"
	case Regex:
		return "~"
	case RegexI:
		return "~*"
	default:
		return "="
	}
}

// renderExprText renders e as SQL, consulting params for every literal
// or bound value it encounters. In Simple Query mode params is nil and
// literals render inline; in Extended Query mode params is non-nil and
// every literal becomes a fresh $N placeholder appended to the encoder's
// parameter list (see encode.go's paramCollector).
func renderExprText(e Expr, params *paramCollector) string {
	switch e.Kind {
	case ExprStar:
		return "*"
	case ExprColumn:
		return quoteIdent(e.Name)
	case ExprAliased:
		inner := e
		inner.Kind = exprBaseKind(e)
		return renderExprText(inner, params) + " AS " + quoteIdent(e.Alias)
	case ExprAggregate:
		arg := "*"
		if e.AggColumn != "" {
			arg = quoteIdent(e.AggColumn)
		}
		if e.Distinct {
			arg = "DISTINCT " + arg
		}
		return string(e.Agg) + "(" + arg + ")"
	case ExprLiteral:
		return renderValue(e.Literal, params)
	case ExprBinary:
		return renderExprText(*e.Left, params) + " " + operatorToken(e.Op) + " " + renderExprText(*e.Right, params)
	case ExprJSONAccess:
		b := strings.Builder{}
		b.WriteString(quoteIdent(e.Column))
		for _, step := range e.Path {
			if step.AsText {
				b.WriteString(" ->> ")
			} else {
				b.WriteString(" -> ")
			}
			b.WriteString(quoteLiteral(step.Key))
		}
		return b.String()
	case ExprCall:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = renderExprText(a, params)
		}
		return e.FuncName + "(" + strings.Join(args, ", ") + ")"
	case ExprCase:
		b := strings.Builder{}
		b.WriteString("CASE")
		for _, w := range e.WhenClauses {
			b.WriteString(" WHEN ")
			b.WriteString(renderCondition(*w.When, params))
			b.WriteString(" THEN ")
			b.WriteString(renderExprText(w.Then, params))
		}
		if e.Else != nil {
			b.WriteString(" ELSE ")
			b.WriteString(renderExprText(*e.Else, params))
		}
		b.WriteString(" END")
		return b.String()
	case ExprSubquery:
		return "(" + e.SQLFragment + ")"
	case ExprCoalesce:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = renderExprText(a, params)
		}
		return "COALESCE(" + strings.Join(args, ", ") + ")"
	case ExprCast:
		return renderExprText(*e.Inner, params) + "::" + e.TypeName
	case ExprColumnDef:
		return renderColumnDef(e)
	case ExprWindow:
		return renderWindow(e, params)
	case ExprColumnMod:
		if e.ModKind == ColumnModAdd {
			return "ADD COLUMN " + renderColumnDef(*e.ColDef)
		}
		return "DROP COLUMN " + quoteIdent(e.Name)
	case ExprSpecialFunc:
		return renderSpecialFunc(e, params)
	default:
		return ""
	}
}

// exprBaseKind recovers the unaliased kind from an ExprAliased node built
// via As() — the original Kind is overwritten, so the renderer treats it as
// a plain column reference whenever Name is set and a literal/call
// otherwise. As() is only ever applied to column, literal, call, aggregate
// and window expressions in practice, so this heuristic is exhaustive for
// the builder surface this package exposes.
func exprBaseKind(e Expr) ExprKind {
	switch {
	case e.Agg != "":
		return ExprAggregate
	case e.FuncName != "" && len(e.Keyword) > 0:
		return ExprSpecialFunc
	case e.FuncName != "":
		return ExprCall
	case e.WindowFunc != "":
		return ExprWindow
	case e.Inner != nil:
		return ExprCast
	case e.Literal.Kind != ValNull || e.Name == "":
		return ExprLiteral
	default:
		return ExprColumn
	}
}

func renderColumnDef(e Expr) string {
	b := strings.Builder{}
	b.WriteString(quoteIdent(e.Name))
	b.WriteString(" ")
	b.WriteString(e.ColType)
	if e.IsArray {
		b.WriteString("[]")
	}
	if e.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if e.Unique {
		b.WriteString(" UNIQUE")
	}
	if e.NotNull {
		b.WriteString(" NOT NULL")
	}
	if e.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(e.Default)
	}
	if e.Check != "" {
		b.WriteString(" CHECK (")
		b.WriteString(e.Check)
		b.WriteString(")")
	}
	if e.References != "" {
		b.WriteString(" REFERENCES ")
		b.WriteString(e.References)
	}
	return b.String()
}

func renderWindow(e Expr, params *paramCollector) string {
	b := strings.Builder{}
	b.WriteString(e.WindowFunc)
	b.WriteString(" OVER (")
	parts := []string{}
	if len(e.PartitionBy) > 0 {
		quoted := make([]string, len(e.PartitionBy))
		for i, c := range e.PartitionBy {
			quoted[i] = quoteIdent(c)
		}
		parts = append(parts, "PARTITION BY "+strings.Join(quoted, ", "))
	}
	if len(e.OrderBy) > 0 {
		parts = append(parts, "ORDER BY "+renderOrderBy(e.OrderBy))
	}
	if e.Frame != nil {
		parts = append(parts, fmt.Sprintf("%s BETWEEN %s AND %s", e.Frame.Mode, e.Frame.Start, e.Frame.End))
	}
	b.WriteString(strings.Join(parts, " "))
	b.WriteString(")")
	return b.String()
}

func renderSpecialFunc(e Expr, params *paramCollector) string {
	b := strings.Builder{}
	b.WriteString(e.FuncName)
	b.WriteString("(")
	first := true
	if len(e.Args) > 0 {
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = renderExprText(a, params)
		}
		b.WriteString(strings.Join(args, ", "))
		first = false
	}
	for _, kw := range specialFuncOrder(e.FuncName) {
		arg, ok := e.Keyword[kw]
		if !ok {
			continue
		}
		if !first {
			b.WriteString(" ")
		}
		b.WriteString(kw)
		b.WriteString(" ")
		b.WriteString(renderExprText(arg, params))
		first = false
	}
	b.WriteString(")")
	return b.String()
}

// specialFuncOrder fixes keyword-argument emission order for the special
// functions this library knows about (SUBSTRING, EXTRACT); unknown function
// names use the same FROM, FOR order. Keywords outside the returned list
// are not emitted.
func specialFuncOrder(name string) []string {
	switch strings.ToUpper(name) {
	case "SUBSTRING":
		return []string{"FROM", "FOR"}
	case "EXTRACT":
		return []string{"FROM"}
	default:
		return []string{"FROM", "FOR"}
	}
}

func renderOrderBy(terms []OrderTerm) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		s := renderExprText(t.Expr, nil)
		if t.Descending {
			s += " DESC"
		} else {
			s += " ASC"
		}
		if t.NullsFirst {
			s += " NULLS FIRST"
		} else if t.NullsLast {
			s += " NULLS LAST"
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}

// renderCondition renders one Condition, consulting params when non-nil.
func renderCondition(c Condition, params *paramCollector) string {
	left := renderExprText(c.leftOperand(), params)

	switch c.Op {
	case IsNull:
		return left + " IS NULL"
	case IsNotNull:
		return left + " IS NOT NULL"
	case In, NotIn:
		elems := c.Value.Array
		parts := make([]string, len(elems))
		for i, v := range elems {
			parts[i] = renderValue(v, params)
		}
		kw := "IN"
		if c.Op == NotIn {
			kw = "NOT IN"
		}
		return left + " " + kw + " (" + strings.Join(parts, ", ") + ")"
	case Between:
		lo := renderValue(c.Value.Array[0], params)
		hi := renderValue(c.Value.Array[1], params)
		return left + " BETWEEN " + lo + " AND " + hi
	default:
		if c.IsArrayUnnest {
			return left + " = ANY(" + renderValue(c.Value, params) + ")"
		}
		return left + " " + operatorToken(c.Op) + " " + renderValue(c.Value, params)
	}
}

// renderValue is the single switch point between inline-literal rendering
// (Simple Query, params == nil) and parameter-binding rendering (Extended
// Query, params != nil).
func renderValue(v Value, params *paramCollector) string {
	if params == nil {
		return renderLiteral(v)
	}
	return params.bind(v)
}

// renderWhere joins a WhereClause list with its per-clause logical
// operators, wrapping the whole thing in parens at the caller's call site
// when it's nested (subqueries render their own parens via ExprSubquery).
func renderWhere(clauses []WhereClause, params *paramCollector) string {
	if len(clauses) == 0 {
		return ""
	}
	b := strings.Builder{}
	for i, wc := range clauses {
		if i > 0 {
			if wc.Join == LogicalOr {
				b.WriteString(" OR ")
			} else {
				b.WriteString(" AND ")
			}
		}
		b.WriteString(renderCondition(wc.Cond, params))
	}
	return b.String()
}

func lockModeClause(m LockMode) string {
	switch m {
	case LockUpdate:
		return " FOR UPDATE"
	case LockNoKeyUpdate:
		return " FOR NO KEY UPDATE"
	case LockShare:
		return " FOR SHARE"
	case LockKeyShare:
		return " FOR KEY SHARE"
	default:
		return ""
	}
}

func tableSampleClause(ts *TableSample) string {
	if ts == nil {
		return ""
	}
	s := fmt.Sprintf(" TABLESAMPLE %s(%g)", ts.Method, ts.Percent)
	if ts.Seed != nil {
		s += fmt.Sprintf(" REPEATABLE(%d)", *ts.Seed)
	}
	return s
}
