package qail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureMigrationTableRendersExpectedDDL(t *testing.T) {
	cmd := EnsureMigrationTable()
	plan, err := encodeCmd(cmd)
	require.Nil(t, err)
	assert.True(t, plan.Simple)
	assert.Contains(t, plan.SQL, `CREATE TABLE IF NOT EXISTS qail_migrations`)
	assert.Contains(t, plan.SQL, `version TEXT PRIMARY KEY`)
	assert.Contains(t, plan.SQL, `checksum TEXT NOT NULL`)
}

func TestRecordMigrationIsDeterministic(t *testing.T) {
	sql := []string{`CREATE TABLE "a" ("id" int)`}
	cmd1 := RecordMigration("add_a", sql, "2026-07-31T12:00:00Z")
	cmd2 := RecordMigration("add_a", sql, "2026-07-31T12:00:00Z")

	plan1, err := encodeCmd(cmd1)
	require.Nil(t, err)
	plan2, err := encodeCmd(cmd2)
	require.Nil(t, err)

	assert.Equal(t, plan1.Params, plan2.Params)
}

func TestRecordMigrationVersionIsSortable(t *testing.T) {
	early := RecordMigration("a", []string{"x"}, "2026-01-01T00:00:00Z")
	late := RecordMigration("b", []string{"x"}, "2026-07-31T12:00:00Z")

	earlyPlan, err := encodeCmd(early)
	require.Nil(t, err)
	latePlan, err := encodeCmd(late)
	require.Nil(t, err)

	assert.Less(t, earlyPlan.Params[0].Text, latePlan.Params[0].Text)
}

func TestMigrationChecksumDiffersOnContentChange(t *testing.T) {
	a := migrationChecksum("CREATE TABLE a (id int)")
	b := migrationChecksum("CREATE TABLE b (id int)")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, migrationChecksum("CREATE TABLE a (id int)"))
}

func TestMigrationVersionFallsBackOnUnparseableTimestamp(t *testing.T) {
	v := migrationVersion("not-a-real-timestamp")
	assert.NotEmpty(t, v)
}
