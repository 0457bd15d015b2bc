package models

import "testing"

func TestRoleIn(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		allowed  []Role
		expected bool
	}{
		{
			name:     "admin in admin set",
			role:     RoleAdmin,
			allowed:  []Role{RoleAdmin},
			expected: true,
		},
		{
			name:     "employee in admin or employee",
			role:     RoleEmployee,
			allowed:  []Role{RoleAdmin, RoleEmployee},
			expected: true,
		},
		{
			name:     "student not in admin or employee",
			role:     RoleStudent,
			allowed:  []Role{RoleAdmin, RoleEmployee},
			expected: false,
		},
		{
			name:     "empty set",
			role:     RoleAdmin,
			allowed:  nil,
			expected: false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.role.In(tc.allowed...); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleEmployee, RoleStudent} {
		if !r.Valid() {
			t.Fatalf("expected %s to be valid", r)
		}
	}
	for _, r := range []Role{"", "manager", "Admin"} {
		if r.Valid() {
			t.Fatalf("expected %s to be invalid", r)
		}
	}
}
