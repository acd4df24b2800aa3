package postgresql_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/cmlabs-hris/office-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	testDB     *database.DB
	testDBErr  error
	testDBOnce sync.Once
)

// openTestDB connects to TEST_DATABASE_URL, migrates it and empties every table.
// Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	testDBOnce.Do(func() {
		testDB, testDBErr = database.NewPostgreSQLDB(dsn)
		if testDBErr == nil {
			testDBErr = testDB.Migrate(context.Background())
		}
	})
	require.NoError(t, testDBErr)

	truncateAll(t)
	t.Cleanup(func() { truncateAll(t) })

	return testDB
}

func truncateAll(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec(context.Background(), "TRUNCATE TABLE leave_requests, attendances, employees, departments CASCADE")
	require.NoError(t, err)
}

func newID(t *testing.T) string {
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id.String()
}

func createDepartment(t *testing.T, ctx context.Context, name string) string {
	id := newID(t)
	_, err := testDB.Exec(ctx, "INSERT INTO departments (id, name) VALUES ($1, $2)", id, name)
	require.NoError(t, err)
	return id
}

func createEmployee(t *testing.T, ctx context.Context, name, role, departmentID, status string) string {
	id := newID(t)
	_, err := testDB.Exec(ctx, `
		INSERT INTO employees (id, full_name, email, role, department_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, name, id+"@office.test", role, departmentID, status)
	require.NoError(t, err)
	return id
}
