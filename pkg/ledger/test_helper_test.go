package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setupTestDB creates a temporary database for testing and returns a Core
// instance. The caller should defer cleanup() to remove the temp file.
func setupTestDB(t *testing.T) (*Core, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "ledger-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	core, err := Open(dbPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to open test db: %v", err)
	}

	cleanup := func() {
		core.Close()
		os.RemoveAll(tmpDir)
	}

	return core, cleanup
}

// testAccount creates a test account with the given ID.
func testAccount(t *testing.T, core *Core, accountID, accountName string) {
	t.Helper()
	err := core.AddAccount(Account{
		AccountID:   accountID,
		AccountName: accountName,
		IsActive:    true,
	})
	if err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
}

// testPosition inserts a position directly and returns its ID.
func testPosition(t *testing.T, core *Core, p Position) string {
	t.Helper()
	id, err := core.AddPosition(p)
	if err != nil {
		t.Fatalf("failed to create test position: %v", err)
	}
	return id
}

// amt builds an Amount from a float literal.
func amt(f float64) Amount {
	return NewAmount(f)
}

// assertAmountEquals fails the test if the amounts differ.
func assertAmountEquals(t *testing.T, got Amount, want float64, msg string) {
	t.Helper()
	if !got.Equal(NewAmount(want).Decimal) {
		t.Errorf("%s: got %s, want %v", msg, got.String(), want)
	}
}

// assertNoError fails the test if err is not nil.
func assertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", msg, err)
	}
}

// assertError fails the test if err is nil.
func assertError(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected error but got nil", msg)
	}
}

// assertValidationError fails unless err is a VALIDATION_ERROR naming field.
func assertValidationError(t *testing.T, err error, field, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected validation error but got nil", msg)
	}
	if !IsErrorCode(err, ErrCodeValidation) {
		t.Fatalf("%s: expected VALIDATION_ERROR, got %v", msg, err)
	}
	if field != "" && !strings.Contains(err.Error(), field) {
		t.Errorf("%s: error does not mention field %q: %v", msg, field, err)
	}
}

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}
