// Package testing provides test utilities for vdba.
package testing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/zoobzio/vdba"
	"github.com/zoobzio/vdba/internal/eval"
	"github.com/zoobzio/vdba/memory"
)

// Accounts is a small table with one column of every scalar type and a
// text set.
var Accounts = vdba.TableDef{
	Schema: "app",
	Name:   "account",
	Columns: []vdba.Column{
		{Name: "id", Type: vdba.TypeSequence, PrimaryKey: true},
		{Name: "name", Type: vdba.TypeText, Unique: true},
		{Name: "age", Type: vdba.TypeInteger, Nullable: true},
		{Name: "balance", Type: vdba.TypeReal, Nullable: true},
		{Name: "active", Type: vdba.TypeBoolean},
		{Name: "tags", Type: vdba.TypeTextSet, Nullable: true},
	},
}

// TestConnection opens a connection on drv that closes when the test ends.
// A nil driver opens an in-memory database.
func TestConnection(t *testing.T, drv vdba.Driver) *vdba.Connection {
	t.Helper()
	if drv == nil {
		drv = memory.New()
	}
	cx, err := vdba.OpenConnection(context.Background(), drv, vdba.Config{
		Database: "test",
		Logger:   zaptest.NewLogger(t),
	})
	if err != nil {
		t.Fatalf("Failed to open connection: %v", err)
	}
	t.Cleanup(func() { _ = cx.Close(context.Background()) })
	return cx
}

// TestDatabase returns an empty in-memory database.
func TestDatabase(t *testing.T) *vdba.Database {
	t.Helper()
	return TestConnection(t, nil).Database()
}

// TestTable creates def in db and inserts rows.
func TestTable(t *testing.T, db *vdba.Database, def vdba.TableDef, rows ...vdba.M) *vdba.Table {
	t.Helper()
	ctx := context.Background()
	if err := db.CreateTable(ctx, def); err != nil {
		t.Fatalf("Failed to create table %s: %v", def.Ref(), err)
	}
	tab, err := db.FindTable(ctx, def.Ref().String())
	if err != nil || tab == nil {
		t.Fatalf("Failed to find table %s: %v", def.Ref(), err)
	}
	if len(rows) > 0 {
		if err := tab.Insert(ctx, rows...); err != nil {
			t.Fatalf("Failed to insert into %s: %v", def.Ref(), err)
		}
	}
	return tab
}

// TestAccounts returns the Accounts table holding three rows.
func TestAccounts(t *testing.T) *vdba.Table {
	t.Helper()
	return TestTable(t, TestDatabase(t), Accounts,
		vdba.M{"name": "ann", "age": 31, "balance": 10.5, "active": true, "tags": []string{"admin", "ops"}},
		vdba.M{"name": "bob", "age": 25, "balance": nil, "active": false, "tags": nil},
		vdba.M{"name": "cid", "age": nil, "balance": 2.25, "active": true, "tags": []string{"ops"}},
	)
}

// AssertRows compares rows in order, ignoring column order.
func AssertRows(t *testing.T, expected []vdba.M, actual []vdba.Row) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Errorf("Row count mismatch: expected %d, got %d\nActual: %v", len(expected), len(actual), actual)
		return
	}
	for i, m := range expected {
		want, err := vdba.RowOf(m)
		if err != nil {
			t.Fatalf("Invalid expected row %d: %v", i, err)
		}
		if !eval.RowEqual(want, actual[i]) {
			t.Errorf("Row %d mismatch:\nExpected: %s\nActual:   %s", i, want, actual[i])
		}
	}
}

// AssertUsage checks that err is a usage error with the given message.
func AssertUsage(t *testing.T, err error, msg string) {
	t.Helper()
	if !errors.Is(err, vdba.ErrUsage) {
		t.Fatalf("Expected usage error %q, got: %v", msg, err)
	}
	if err.Error() != msg {
		t.Errorf("Usage message mismatch:\nExpected: %s\nActual:   %s", msg, err.Error())
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertErrorContains checks that error message contains substring.
func AssertErrorContains(t *testing.T, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error containing %q but got nil", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Errorf("Expected error containing %q, got: %v", substr, err)
	}
}

// AssertPanics verifies that a function panics.
func AssertPanics(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic but function completed normally")
		}
	}()
	fn()
}

// AssertPanicsWithMessage verifies that a function panics with a specific message.
func AssertPanicsWithMessage(t *testing.T, fn func(), substr string) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("Expected panic containing %q but function completed normally", substr)
			return
		}
		var msg string
		switch v := r.(type) {
		case error:
			msg = v.Error()
		case string:
			msg = v
		default:
			t.Errorf("Panic value is not string or error: %T", r)
			return
		}
		if !strings.Contains(msg, substr) {
			t.Errorf("Expected panic containing %q, got: %s", substr, msg)
		}
	}()
	fn()
}
