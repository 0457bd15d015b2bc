package controllers

import (
	"testing"

	"musicschool_go/utils"
)

func TestGenerateMonthlyRequestDueDay(t *testing.T) {
	tests := []struct {
		name    string
		req     GenerateMonthlyRequest
		wantErr bool
	}{
		{
			name: "omitted due day falls back to config",
			req:  GenerateMonthlyRequest{Month: 3, Year: 2024},
		},
		{
			name: "explicit due day",
			req:  GenerateMonthlyRequest{Month: 3, Year: 2024, DueDay: 15},
		},
		{
			name: "last allowed due day",
			req:  GenerateMonthlyRequest{Month: 3, Year: 2024, DueDay: 28},
		},
		{
			name:    "due day past 28",
			req:     GenerateMonthlyRequest{Month: 3, Year: 2024, DueDay: 31},
			wantErr: true,
		},
		{
			name:    "month out of range",
			req:     GenerateMonthlyRequest{Month: 13, Year: 2024},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			err := utils.ValidateStruct(tc.req)
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestUpdatePaymentRequestStatus(t *testing.T) {
	valid := []string{"pending", "paid"}
	for _, status := range valid {
		status := status
		req := UpdatePaymentRequest{Status: &status}
		if err := utils.ValidateStruct(req); err != nil {
			t.Fatalf("unexpected validation error for status %q: %v", status, err)
		}
	}

	bad := "cancelled"
	req := UpdatePaymentRequest{Status: &bad}
	if err := utils.ValidateStruct(req); err == nil {
		t.Fatal("expected validation error for unknown status")
	}
}
