package render

import (
	"errors"
	"testing"
)

func TestUnsupportedFeatureError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      UnsupportedFeatureError
		expected string
	}{
		{
			name: "without hint",
			err: UnsupportedFeatureError{
				Feature: "CREATE TABLE IF NOT EXISTS",
				Dialect: "mysql",
			},
			expected: "mysql: CREATE TABLE IF NOT EXISTS is not supported",
		},
		{
			name: "with hint",
			err: UnsupportedFeatureError{
				Feature: "$like pushdown",
				Dialect: "sqlite",
				Hint:    "evaluated in process",
			},
			expected: "sqlite: $like pushdown is not supported: evaluated in process",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNewUnsupportedFeatureError(t *testing.T) {
	t.Run("without hint", func(t *testing.T) {
		err := NewUnsupportedFeatureError("mysql", "CREATE TABLE IF NOT EXISTS")
		var ufErr UnsupportedFeatureError
		if !errors.As(err, &ufErr) {
			t.Fatal("expected UnsupportedFeatureError")
		}
		if ufErr.Dialect != "mysql" {
			t.Errorf("Dialect = %q, want %q", ufErr.Dialect, "mysql")
		}
		if ufErr.Feature != "CREATE TABLE IF NOT EXISTS" {
			t.Errorf("Feature = %q, want %q", ufErr.Feature, "CREATE TABLE IF NOT EXISTS")
		}
		if ufErr.Hint != "" {
			t.Errorf("Hint = %q, want empty", ufErr.Hint)
		}
	})

	t.Run("with hint", func(t *testing.T) {
		err := NewUnsupportedFeatureError("sqlite", "$like pushdown", "evaluated in process")
		var ufErr UnsupportedFeatureError
		if !errors.As(err, &ufErr) {
			t.Fatal("expected UnsupportedFeatureError")
		}
		if ufErr.Hint != "evaluated in process" {
			t.Errorf("Hint = %q, want %q", ufErr.Hint, "evaluated in process")
		}
	})
}

func TestUnsupportedFeatureError_Is(t *testing.T) {
	err := NewUnsupportedFeatureError("sqlite", "$like pushdown")
	if !errors.Is(err, ErrUnsupported) {
		t.Error("expected errors.Is(err, ErrUnsupported)")
	}
	if errors.Is(errors.New("other"), ErrUnsupported) {
		t.Error("unrelated error matched ErrUnsupported")
	}
}
