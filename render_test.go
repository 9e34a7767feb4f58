package qail

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderLiteral(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"null", Null(), "NULL"},
		{"true", Bool(true), "TRUE"},
		{"false", Bool(false), "FALSE"},
		{"int", Int(42), "42"},
		{"float", Float(3.5), "3.5"},
		{"text", Text("o'brien"), "'o''brien'"},
		{"bytes", Bytes([]byte{0xDE, 0xAD}), "'\\xdead'"},
		{"positional", Positional(3), "$3"},
		{"named", Named("foo"), ":foo"},
		{"func_token", FuncToken("now()"), "now()"},
		{"column_ref", ColumnRef("a"), "a"},
		{"uuid", UUID("abc-123"), "'abc-123'"},
		{"interval_one", Interval(1, UnitDay), "INTERVAL '1 day'"},
		{"interval_many", Interval(3, UnitDay), "INTERVAL '3 days'"},
		{"timestamp", Timestamp("2024-01-01"), "'2024-01-01'"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, renderLiteral(c.v))
		})
	}
}

func TestRenderLiteralArray(t *testing.T) {
	got := renderLiteral(Array(Int(1), Int(2), Int(3)))
	assert.Equal(t, "ARRAY[1, 2, 3]", got)
}

func TestQuoteIdentBareWhenSafe(t *testing.T) {
	assert.Equal(t, "users", quoteIdent("users"))
	assert.Equal(t, "deleted_at", quoteIdent("deleted_at"))
	assert.Equal(t, "a1", quoteIdent("a1"))
}

func TestQuoteIdentDoublesQuotes(t *testing.T) {
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}

func TestQuoteIdentMixedCaseRequiresQuoting(t *testing.T) {
	assert.Equal(t, `"MixedCase"`, quoteIdent("MixedCase"))
}

func TestQuoteIdentReservedWordRequiresQuoting(t *testing.T) {
	assert.Equal(t, `"select"`, quoteIdent("select"))
}

func TestOperatorToken(t *testing.T) {
	assert.Equal(t, "=", operatorToken(Eq))
	assert.Equal(t, "<>", operatorToken(Ne))
	assert.Equal(t, "ILIKE", operatorToken(ILike))
	assert.Equal(t, "@>", operatorToken(Contains))
	assert.Equal(t, "~*", operatorToken(RegexI))
}

func TestRenderConditionIsNullIgnoresValue(t *testing.T) {
	c := Cond("deleted_at", IsNull, Int(999))
	assert.Equal(t, `deleted_at IS NULL`, renderCondition(c, nil))
}

func TestRenderConditionIn(t *testing.T) {
	c := Cond("status", In, Array(Text("a"), Text("b")))
	assert.Equal(t, `status IN ('a', 'b')`, renderCondition(c, nil))
}

func TestRenderConditionBetween(t *testing.T) {
	c := Cond("age", Between, Array(Int(1), Int(10)))
	assert.Equal(t, `age BETWEEN 1 AND 10`, renderCondition(c, nil))
}

func TestRenderConditionArrayUnnest(t *testing.T) {
	c := Condition{Column: "tags", Op: Eq, Value: Array(Text("x")), IsArrayUnnest: true}
	assert.Equal(t, `tags = ANY(ARRAY['x'])`, renderCondition(c, nil))
}

func TestRenderValueParamMode(t *testing.T) {
	params := &paramCollector{}
	got := renderValue(Int(5), params)
	assert.Equal(t, "$1", got)
	got2 := renderValue(Text("x"), params)
	assert.Equal(t, "$2", got2)
	assert.Equal(t, []Value{Int(5), Text("x")}, params.values)
}

func TestParamCollectorHonorsExplicitPositional(t *testing.T) {
	params := &paramCollector{}
	got := params.bind(Positional(7))
	assert.Equal(t, "$7", got)
	assert.Empty(t, params.values, "positional placeholders must not be appended to the bound value list")
}

func TestRenderWindowClause(t *testing.T) {
	e := Window("row_number()", "rn", []string{"dept"}, []OrderTerm{{Expr: Col("salary"), Descending: true}}, nil)
	got := renderExprText(e, nil)
	assert.Equal(t, `row_number() OVER (PARTITION BY dept ORDER BY salary DESC)`, got)
}

func TestRenderSpecialFuncSubstring(t *testing.T) {
	e := SpecialFunc("SUBSTRING", map[string]Expr{
		"FROM": Lit(Int(2)),
		"FOR":  Lit(Int(5)),
	})
	got := renderExprText(e, nil)
	assert.Equal(t, "SUBSTRING(FROM 2 FOR 5)", got)
}

func TestExprAliasedRecoversBaseKind(t *testing.T) {
	e := As(AggExpr(AggCount, "", false, ""), "n")
	got := renderExprText(e, nil)
	assert.Equal(t, `count(*) AS n`, got)
}
