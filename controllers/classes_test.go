package controllers

import (
	"errors"
	"testing"
)

func TestCheckCapacity(t *testing.T) {
	tests := []struct {
		name        string
		enrolled    int64
		maxStudents int
		expectFull  bool
	}{
		{
			name:        "empty class",
			enrolled:    0,
			maxStudents: 10,
			expectFull:  false,
		},
		{
			name:        "one spot left",
			enrolled:    9,
			maxStudents: 10,
			expectFull:  false,
		},
		{
			name:        "at capacity",
			enrolled:    10,
			maxStudents: 10,
			expectFull:  true,
		},
		{
			name:        "over capacity",
			enrolled:    11,
			maxStudents: 10,
			expectFull:  true,
		},
		{
			name:        "zero capacity",
			enrolled:    0,
			maxStudents: 0,
			expectFull:  true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := checkCapacity(tc.enrolled, tc.maxStudents)
			if tc.expectFull {
				if !errors.Is(err, errClassFull) {
					t.Fatalf("expected errClassFull, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
