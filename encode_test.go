package qail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCmdSimpleQueryKinds(t *testing.T) {
	cases := []struct {
		name string
		cmd  *QailCmd
		want string
	}{
		{"begin", Begin(), "BEGIN"},
		{"commit", Commit(), "COMMIT"},
		{"rollback", Rollback(), "ROLLBACK"},
		{"savepoint", SavepointCmd("sp1"), `SAVEPOINT sp1`},
		{"listen", Listen("events"), `LISTEN events`},
		{"notify", Notify("events", "hi"), `NOTIFY events, 'hi'`},
		{"raw", Raw("SELECT 1"), "SELECT 1"},
		{"drop_table", DropTable("users"), `DROP TABLE users`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			plan, err := encodeCmd(c.cmd)
			require.Nil(t, err)
			assert.True(t, plan.Simple)
			assert.Equal(t, c.want, plan.SQL)
			assert.Empty(t, plan.Params)
		})
	}
}

func TestEncodeCmdGetProducesParameterizedSQL(t *testing.T) {
	cmd := Get("users").Filter("email", Eq, Text("a@b.com")).WithLimit(10)
	plan, err := encodeCmd(cmd)
	require.Nil(t, err)
	assert.False(t, plan.Simple)
	assert.Equal(t, `SELECT * FROM users WHERE email = $1 LIMIT 10`, plan.SQL)
	assert.Equal(t, []Value{Text("a@b.com")}, plan.Params)
	assert.NotEmpty(t, plan.StatementName)
}

func TestStatementNameIsDeterministic(t *testing.T) {
	sql := `SELECT * FROM users WHERE id = $1`
	assert.Equal(t, statementName(sql), statementName(sql))
	assert.NotEqual(t, statementName(sql), statementName(sql+" "))
}

// §8 end-to-end scenario: "Select with limit". GET always encodes as
// Extended Query (Parse payload carries the parameterized SQL); there is
// no literal-valued parameter here, so the Parse text is also what a
// Simple Query rendering of this command would contain.
func TestScenarioSelectWithLimit(t *testing.T) {
	cmd := Get("users").Column(Col("id")).Column(Col("name")).WithLimit(10)

	plan, err := encodeCmd(cmd)
	require.Nil(t, err)
	assert.False(t, plan.Simple)
	for _, want := range []string{"SELECT", "id", "name", "FROM users", "LIMIT 10"} {
		assert.Contains(t, plan.SQL, want)
	}
	assert.NotEmpty(t, plan.StatementName)
}

// §8 end-to-end scenario: "Update with where".
func TestScenarioUpdateWithWhere(t *testing.T) {
	cmd := Set("users").
		Assign("name", Text("Alice")).
		Filter("id", Eq, Int(7))

	plan, err := encodeCmd(cmd)
	require.Nil(t, err)
	assert.Equal(t, "UPDATE users SET name = $1 WHERE id = $2", plan.SQL)
	assert.Equal(t, []Value{Text("Alice"), Int(7)}, plan.Params)

	// renderExtended with a nil paramCollector inlines literals the same
	// way Simple Query mode would, per §4.2.
	literalSQL, rerr := renderExtended(cmd, nil)
	require.Nil(t, rerr)
	assert.Equal(t, "UPDATE users SET name = 'Alice' WHERE id = 7", literalSQL)
}

// §8 end-to-end scenario: "Insert with returning".
func TestScenarioInsertWithReturning(t *testing.T) {
	cmd := Add("users").
		Values([]string{"name"}, Text("Bob")).
		Return(Col("id"))
	plan, err := encodeCmd(cmd)
	require.Nil(t, err)
	assert.Contains(t, plan.SQL, "INSERT INTO users")
	assert.Contains(t, plan.SQL, "RETURNING id")
}

func TestEncodeCmdInvalidConditionFails(t *testing.T) {
	cmd := Get("users").FilterJoin(LogicalAnd, Cond("id", In, Int(5)))
	_, err := encodeCmd(cmd)
	require.NotNil(t, err)
	assert.Equal(t, KindTypeMismatch, err.Kind)
}

func TestFetchWinsOverLimit(t *testing.T) {
	cmd := Get("users").WithLimit(10).Fetch(5, true)
	plan, err := encodeCmd(cmd)
	require.Nil(t, err)
	assert.Contains(t, plan.SQL, "FETCH FIRST 5 ROWS WITH TIES")
	assert.NotContains(t, plan.SQL, "LIMIT")
}

func TestRenderInsertWithOnConflict(t *testing.T) {
	cmd := Add("users").
		Values([]string{"id", "name"}, Int(1), Text("alice")).
		WithOnConflict(OnConflict{Columns: []string{"id"}, Update: []Assignment{{Column: "name", Value: Text("alice2")}}})
	plan, err := encodeCmd(cmd)
	require.Nil(t, err)
	assert.Equal(t, `INSERT INTO users (id, name) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET name = $3`, plan.SQL)
	assert.Equal(t, []Value{Int(1), Text("alice"), Text("alice2")}, plan.Params)
}

func TestRenderCreateTableWithConstraints(t *testing.T) {
	cmd := Make("users").
		WithColumnDefs(
			ColumnDef("id", "serial", WithPrimaryKey),
			ColumnDef("email", "text", WithNotNull, WithUnique),
		).
		WithTableConstraints(TableConstraint{Kind: ConstraintCheck, Expr: "email <> ''"})
	plan, err := encodeCmd(cmd)
	require.Nil(t, err)
	assert.True(t, plan.Simple)
	assert.Contains(t, plan.SQL, `CREATE TABLE users (`)
	assert.Contains(t, plan.SQL, `id serial PRIMARY KEY`)
	assert.Contains(t, plan.SQL, `email text UNIQUE NOT NULL`)
	assert.Contains(t, plan.SQL, `CHECK (email <> '')`)
}

func TestValueToWireParamNullEncodesAsNilBytes(t *testing.T) {
	p := valueToWireParam(Null())
	assert.Nil(t, p.Value)
}

func TestValueToWireParamTextIsUnquoted(t *testing.T) {
	p := valueToWireParam(Text("o'brien"))
	assert.Equal(t, "o'brien", string(p.Value))
}

func TestValueToWireParamBytesIsHexNoQuotes(t *testing.T) {
	p := valueToWireParam(Bytes([]byte{0xAB, 0xCD}))
	assert.Equal(t, `\xabcd`, string(p.Value))
}

func TestEncodeCmdRenderAlterColumnType(t *testing.T) {
	cmd := &QailCmd{Kind: CmdMod, Table: "users", ColumnDefs: []Expr{ColumnDef("age", "bigint")}}
	plan, err := encodeCmd(cmd)
	require.Nil(t, err)
	assert.Equal(t, `ALTER TABLE users ALTER COLUMN age TYPE bigint`, plan.SQL)
}
