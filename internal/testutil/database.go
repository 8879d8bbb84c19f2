package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"astryxnodes/internal/infrastructure/mysql"
)

// SetupTestDB connects to the integration database. It expects a MySQL
// database named 'astryx_test' on localhost:3306 and skips the test otherwise.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/astryx_test?parseTime=true&clientFoundRows=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.Ping()
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties the test tables and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"OrderOutbox"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the tables used by the repositories.
func SetupTestTables(t *testing.T, db *sql.DB) {
	if err := mysql.Migrate(context.Background(), db); err != nil {
		t.Logf("failed to create tables: %v", err)
	}
}
