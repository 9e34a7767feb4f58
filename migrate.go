package qail

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/jinzhu/now"
)

// MigrationTable is the name of the versioned migration-recording table
// (§6).
const MigrationTable = "qail_migrations"

// EnsureMigrationTable builds the CREATE TABLE IF NOT EXISTS for the
// migration ledger (version, name, checksum, sql_up, applied_at) so a
// caller can run it once before the first migration.
func EnsureMigrationTable() *QailCmd {
	return Raw(
		"CREATE TABLE IF NOT EXISTS " + quoteIdent(MigrationTable) + " (" +
			quoteIdent("version") + " TEXT PRIMARY KEY, " +
			quoteIdent("name") + " TEXT NOT NULL, " +
			quoteIdent("checksum") + " TEXT NOT NULL, " +
			quoteIdent("sql_up") + " TEXT NOT NULL, " +
			quoteIdent("applied_at") + " TIMESTAMP NOT NULL DEFAULT now())",
	)
}

// RecordMigration builds the INSERT that appends one row to the migration
// ledger after a migration has been applied (§4.6 step 4): a deterministic,
// timestamp-derived version string and a content hash of the emitted SQL.
// appliedAt is supplied by the caller (via time.Now().UTC()) rather than
// read internally, since this package's AST layer is pure data with no
// wall-clock dependency of its own.
func RecordMigration(name string, migrationSQL []string, appliedAt string) *QailCmd {
	version := migrationVersion(appliedAt)
	sqlUp := strings.Join(migrationSQL, ";\n")
	checksum := migrationChecksum(sqlUp)

	return Add(MigrationTable).
		Values([]string{"version", "name", "checksum", "sql_up"},
			Text(version), Text(name), Text(checksum), Text(sqlUp))
}

// migrationVersion formats appliedAt (an RFC 3339 timestamp) into the
// same sortable version-string shape jinzhu/now's formatting helpers
// produce for human-edited migration filenames (YYYYMMDDHHMMSS).
func migrationVersion(appliedAt string) string {
	t, err := now.Parse(appliedAt)
	if err != nil {
		return strings.NewReplacer("-", "", ":", "", "T", "", "Z", "", " ", "").Replace(appliedAt)
	}
	return t.Format("20060102150405")
}

func migrationChecksum(sql string) string {
	sum := sha256.Sum256([]byte(sql))
	return hex.EncodeToString(sum[:])
}
