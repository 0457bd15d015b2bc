package config

import (
	"testing"
	"time"
)

func TestParseDurationShorthand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
	}{
		{
			name:     "days",
			input:    "7d",
			expected: 7 * 24 * time.Hour,
		},
		{
			name:     "weeks",
			input:    "2w",
			expected: 14 * 24 * time.Hour,
		},
		{
			name:     "single day",
			input:    "1d",
			expected: 24 * time.Hour,
		},
		{
			name:     "uppercase with spaces",
			input:    " 3D ",
			expected: 3 * 24 * time.Hour,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseDurationShorthand(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestParseDurationShorthandInvalid(t *testing.T) {
	for _, input := range []string{"", "d", "7x", "abc", "7"} {
		if _, err := parseDurationShorthand(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}
