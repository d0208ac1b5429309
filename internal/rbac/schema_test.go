package rbac

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	createTableRe = regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS (\w+) \((.*?)\);`)
	insertRe      = regexp.MustCompile(`INSERT INTO (\w+) \(([^)]+)\)`)
)

// Every column the service writes must exist in the shipped schema. A
// mismatch here means graph writes fail at runtime with undefined-column
// errors that classifyPgError cannot map to a domain error.
func TestGraphWriteColumnsMatchSchema(t *testing.T) {
	schema := readFile(t, filepath.Join("..", "..", "migrations", "0001_init.sql"))
	source := readFile(t, "service.go")

	tables := schemaColumns(t, schema)
	require.Contains(t, tables, "user_roles")
	require.Contains(t, tables, "role_permissions")

	seen := map[string]bool{}
	for _, m := range insertRe.FindAllStringSubmatch(source, -1) {
		table, list := m[1], m[2]
		cols, ok := tables[table]
		require.True(t, ok, "service inserts into table %q missing from schema", table)
		seen[table] = true
		for _, col := range strings.Split(list, ",") {
			col = strings.TrimSpace(col)
			require.Contains(t, cols, col,
				"service inserts column %q into %s, but the schema defines no such column", col, table)
		}
	}

	// The join-table writes are the ones this test exists for; make sure a
	// refactor does not silently move them out of reach of the check.
	require.True(t, seen["user_roles"], "no INSERT INTO user_roles found in service.go")
	require.True(t, seen["role_permissions"], "no INSERT INTO role_permissions found in service.go")
}

// The affected-user set feeding cache invalidation must be read inside the
// same transaction as the graph write. A read issued before the transaction
// misses users assigned while the write is in flight.
func TestAffectedUserReadsRunInsideTransaction(t *testing.T) {
	source := readFile(t, "service.go")

	for _, fn := range []string{"DeleteRole", "ReplacePermissions"} {
		body := funcBody(t, source, fn)
		txStart := strings.Index(body, "db.WithTx(")
		require.GreaterOrEqual(t, txStart, 0, "%s does not use a transaction", fn)
		require.NotContains(t, body[:txStart], "s.pool.Query",
			"%s queries the pool before its transaction", fn)
		read := strings.Index(body, "user_id")
		require.Greater(t, read, txStart, "%s reads affected users outside its transaction", fn)
	}
}

func funcBody(t *testing.T, source, name string) string {
	t.Helper()
	start := strings.Index(source, "func (s *Service) "+name+"(")
	require.GreaterOrEqual(t, start, 0, "function %s not found", name)
	body := source[start:]
	if end := strings.Index(body[1:], "\nfunc "); end >= 0 {
		body = body[:end+1]
	}
	return body
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "read %s", path)
	return string(data)
}

func schemaColumns(t *testing.T, schema string) map[string]map[string]bool {
	t.Helper()
	tables := map[string]map[string]bool{}
	for _, m := range createTableRe.FindAllStringSubmatch(schema, -1) {
		cols := map[string]bool{}
		for _, line := range strings.Split(m[2], "\n") {
			line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ","))
			if line == "" || strings.HasPrefix(line, "PRIMARY KEY") || strings.HasPrefix(line, "CONSTRAINT") {
				continue
			}
			cols[strings.Fields(line)[0]] = true
		}
		tables[m[1]] = cols
	}
	require.NotEmpty(t, tables, "no CREATE TABLE statements parsed from schema")
	return tables
}
