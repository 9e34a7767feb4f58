package qail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qailsql/qail-go/internal/wire"
)

func TestNewRowSetSharesFieldNames(t *testing.T) {
	fields := []wire.FieldDescription{{Name: "id"}, {Name: "name"}}
	dataRows := [][][]byte{
		{[]byte("1"), []byte("alice")},
		{[]byte("2"), nil},
	}
	rows := newRowSet(fields, dataRows)
	require.Len(t, rows, 2)
	assert.Same(t, rows[0].fieldNames, rows[1].fieldNames)

	assert.Equal(t, "id", rows[0].FieldName(0))
	assert.Equal(t, "alice", rows[0].String(1))
	assert.True(t, rows[1].IsNull(1))
	assert.Nil(t, rows[1].GetByName("missing"))
}

func TestRowGetByName(t *testing.T) {
	fields := []wire.FieldDescription{{Name: "id"}, {Name: "name"}}
	dataRows := [][][]byte{{[]byte("7"), []byte("bob")}}
	rows := newRowSet(fields, dataRows)
	assert.Equal(t, "bob", string(rows[0].GetByName("name")))
}

func TestRowInt64Float64Bool(t *testing.T) {
	fields := []wire.FieldDescription{{Name: "n"}, {Name: "f"}, {Name: "b"}}
	dataRows := [][][]byte{{[]byte("42"), []byte("3.5"), []byte("t")}}
	rows := newRowSet(fields, dataRows)

	n, err := rows[0].Int64(0)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	f, err := rows[0].Float64(1)
	require.NoError(t, err)
	assert.Equal(t, 3.5, f)

	b, err := rows[0].Bool(2)
	require.NoError(t, err)
	assert.True(t, b)
}

func TestRowInt64OnNullIsError(t *testing.T) {
	fields := []wire.FieldDescription{{Name: "n"}}
	dataRows := [][][]byte{{nil}}
	rows := newRowSet(fields, dataRows)
	_, err := rows[0].Int64(0)
	assert.Error(t, err)
}

func TestDumpRendersHeaderAndRows(t *testing.T) {
	fields := []wire.FieldDescription{{Name: "id"}, {Name: "name"}}
	dataRows := [][][]byte{{[]byte("1"), []byte("alice")}}
	rows := newRowSet(fields, dataRows)
	out := Dump(rows)
	assert.Contains(t, out, "id")
	assert.Contains(t, out, "alice")
}
