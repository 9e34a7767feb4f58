package qail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseSchema(t *testing.T, src string) *Schema {
	t.Helper()
	s, err := ParseSchema(src)
	require.Nil(t, err)
	return s
}

func TestDiffCreatesNewTable(t *testing.T) {
	old := mustParseSchema(t, `table a ( id int )`)
	updated := mustParseSchema(t, `
		table a ( id int )
		table b ( id int, name text not_null )
	`)
	cmds := Diff(old, updated)
	require.Len(t, cmds, 1)
	assert.Equal(t, CmdMake, cmds[0].Kind)
	assert.Equal(t, "b", cmds[0].Table)
	assert.Len(t, cmds[0].ColumnDefs, 2)
}

func TestDiffDropsRemovedTable(t *testing.T) {
	old := mustParseSchema(t, `
		table a ( id int )
		table b ( id int )
	`)
	updated := mustParseSchema(t, `table a ( id int )`)
	cmds := Diff(old, updated)
	require.Len(t, cmds, 1)
	assert.Equal(t, CmdDrop, cmds[0].Kind)
	assert.Equal(t, "b", cmds[0].Table)
}

func TestDiffAddsColumn(t *testing.T) {
	old := mustParseSchema(t, `table a ( id int )`)
	updated := mustParseSchema(t, `table a ( id int, name text )`)
	cmds := Diff(old, updated)
	require.Len(t, cmds, 1)
	assert.Equal(t, CmdAlter, cmds[0].Kind)
	assert.Equal(t, "a", cmds[0].Table)
	assert.Equal(t, "name", cmds[0].ColumnDefs[0].Name)
}

func TestDiffDropsRemovedColumn(t *testing.T) {
	old := mustParseSchema(t, `table a ( id int, name text )`)
	updated := mustParseSchema(t, `table a ( id int )`)
	cmds := Diff(old, updated)
	require.Len(t, cmds, 1)
	assert.Equal(t, CmdDropCol, cmds[0].Kind)
	assert.Equal(t, "name", cmds[0].NewName)
}

func TestDiffChangedColumnIsDropThenAdd(t *testing.T) {
	old := mustParseSchema(t, `table a ( id int )`)
	updated := mustParseSchema(t, `table a ( id text )`)
	cmds := Diff(old, updated)
	require.Len(t, cmds, 2)
	assert.Equal(t, CmdDropCol, cmds[0].Kind)
	assert.Equal(t, CmdAlter, cmds[1].Kind)
}

func TestDiffIsPureAndDeterministic(t *testing.T) {
	old := mustParseSchema(t, `table a ( id int )`)
	updated := mustParseSchema(t, `table a ( id int, name text ) table b ( id int )`)
	first := Diff(old, updated)
	second := Diff(old, updated)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Kind, second[i].Kind)
		assert.Equal(t, first[i].Table, second[i].Table)
	}
}

func TestDiffNoopOnIdenticalSchemas(t *testing.T) {
	old := mustParseSchema(t, `table a ( id int not_null, name text )`)
	updated := mustParseSchema(t, `table a ( id int not_null, name text )`)
	assert.Empty(t, Diff(old, updated))
}

func TestDiffCaseInsensitiveTableMatch(t *testing.T) {
	old := mustParseSchema(t, `table Users ( id int )`)
	updated := mustParseSchema(t, `table users ( id int )`)
	assert.Empty(t, Diff(old, updated))
}
