package qail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchemaBasicTable(t *testing.T) {
	src := `
-- a comment
table users (
	id serial primary_key,
	email text not_null unique,
	bio text,
	age int default 0
)
`
	schema, err := ParseSchema(src)
	require.Nil(t, err)
	require.Len(t, schema.Tables, 1)

	tbl := schema.Tables[0]
	assert.Equal(t, "users", tbl.Name)
	require.Len(t, tbl.Columns, 4)

	id := tbl.Columns[0]
	assert.Equal(t, "id", id.Name)
	assert.Equal(t, "serial", id.Type)
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.NotNull, "serial implies NOT NULL")

	email := tbl.Columns[1]
	assert.True(t, email.NotNull)
	assert.True(t, email.Unique)

	age := tbl.Columns[3]
	assert.Equal(t, "0", age.Default)
}

func TestParseSchemaBraceSyntaxAndTypeParams(t *testing.T) {
	src := `table products {
		price numeric(10,2) not_null,
		tags text[]
	}`
	schema, err := ParseSchema(src)
	require.Nil(t, err)
	require.Len(t, schema.Tables, 1)

	price := schema.Tables[0].Columns[0]
	assert.Equal(t, "numeric", price.Type)
	assert.Equal(t, "10,2", price.TypeParams)

	tags := schema.Tables[0].Columns[1]
	assert.True(t, tags.IsArray)
}

func TestParseSchemaReferencesAndCheck(t *testing.T) {
	src := `table orders (
		user_id int references users(id),
		total int check(total >= 0)
	)`
	schema, err := ParseSchema(src)
	require.Nil(t, err)
	cols := schema.Tables[0].Columns
	assert.Equal(t, "users(id)", cols[0].References)
	assert.Equal(t, "total >= 0", cols[1].Check)
}

func TestParseSchemaMultipleTables(t *testing.T) {
	src := `
table a ( id int )
table b ( id int, a_id int references a(id) )
`
	schema, err := ParseSchema(src)
	require.Nil(t, err)
	require.Len(t, schema.Tables, 2)
	assert.Equal(t, "a", schema.Tables[0].Name)
	assert.Equal(t, "b", schema.Tables[1].Name)
}

func TestParseSchemaHashComment(t *testing.T) {
	src := "table t (\n  id int # a trailing comment\n)"
	schema, err := ParseSchema(src)
	require.Nil(t, err)
	require.Len(t, schema.Tables[0].Columns, 1)
	assert.Equal(t, "id", schema.Tables[0].Columns[0].Name)
}

func TestFoldedTableNameCaseInsensitive(t *testing.T) {
	assert.Equal(t, foldedTableName("Users"), foldedTableName("users"))
	assert.Equal(t, foldedTableName("USERS"), foldedTableName("users"))
}
