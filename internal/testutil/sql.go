package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	// registers the "sqlite" driver
	_ "modernc.org/sqlite"
)

// householdsDDL mirrors CreateTestDataFrame with WithNulls.
const householdsDDL = `
CREATE TABLE households (
	name     TEXT NOT NULL,
	category TEXT NOT NULL,
	income   INTEGER NOT NULL,
	savings  REAL
);
INSERT INTO households VALUES
	('Alice',   'red',   50, 120.5),
	('Bob',     'blue',  80, NULL),
	('Charlie', 'red',   65, 200),
	('David',   'green', 40, 15.5),
	('Eve',     'blue',  90, NULL),
	('Frank',   'red',   70, 130);
`

// SetupSQLTest opens an in-memory SQLite database seeded with the
// "households" table. The database is closed when the test ends.
//
// Example usage:
//
//	db := testutil.SetupSQLTest(t)
//	df, err := io.NewSQLReader(db, "SELECT * FROM households", nil, nil).ReadContext(ctx)
func SetupSQLTest(tb testing.TB) *sql.DB {
	tb.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(tb, err)
	// each pooled connection would see its own empty in-memory database
	db.SetMaxOpenConns(1)
	tb.Cleanup(func() {
		_ = db.Close()
	})

	_, err = db.Exec(householdsDDL)
	require.NoError(tb, err)
	return db
}
