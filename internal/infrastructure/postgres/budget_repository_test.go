package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unique violation", &pq.Error{Code: "23505"}, true},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true},
		{"foreign key violation", &pq.Error{Code: "23503"}, false},
		{"plain error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

// The RESTRICT foreign key on transactions is the race-free guard against
// cascading ledger rows away; both cascade-capable deletes depend on this
// mapping to turn that violation into the in-use error.
func TestIsForeignKeyViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"foreign key violation", &pq.Error{Code: "23503"}, true},
		{"wrapped foreign key violation", fmt.Errorf("delete: %w", &pq.Error{Code: "23503"}), true},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"plain error", errors.New("connection refused"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isForeignKeyViolation(tt.err); got != tt.want {
				t.Errorf("isForeignKeyViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}
