package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// tables in truncation order; CASCADE covers the rest.
var tables = []string{
	"punch_logs",
	"attendances",
	"attendance_policies",
	"branch_transfers",
	"leave_applications",
	"leave_types",
	"devices",
	"employees",
	"departments",
	"branches",
	"refresh_tokens",
	"users",
	"companies",
}

// newTestDB connects to TEST_DATABASE_URL, which must point at a migrated
// database. The test is skipped when the variable is unset.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn, database.PoolOptions{MaxConns: 4, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, truncateAll(context.Background(), db))
	return db
}

func truncateAll(ctx context.Context, db *database.DB) error {
	_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", ")))
	if err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}
