package controllers

import "testing"

func TestAttendanceRate(t *testing.T) {
	tests := []struct {
		name     string
		present  int64
		total    int64
		expected float64
	}{
		{
			name:     "seven of ten",
			present:  7,
			total:    10,
			expected: 70.00,
		},
		{
			name:     "no rows resolves to zero",
			present:  0,
			total:    0,
			expected: 0,
		},
		{
			name:     "all present",
			present:  12,
			total:    12,
			expected: 100.00,
		},
		{
			name:     "rounds to two decimals",
			present:  1,
			total:    3,
			expected: 33.33,
		},
		{
			name:     "rounds half up",
			present:  2,
			total:    3,
			expected: 66.67,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := attendanceRate(tc.present, tc.total)
			if got != tc.expected {
				t.Fatalf("expected %.2f, got %.2f", tc.expected, got)
			}
		})
	}
}
