package services

import (
	"testing"

	"tradearea-platform/internal/models"
)

func TestResolveRangeType(t *testing.T) {
	tests := []struct {
		name     string
		req      *models.ExportRequest
		expected string
		wantErr  bool
	}{
		{
			name: "single circle run",
			req: &models.ExportRequest{
				Run: &models.AnalysisRun{RangeParams: models.RangeParams{RangeType: models.RangeTypeCircle}},
			},
			expected: models.RangeTypeCircle,
		},
		{
			name: "single drive-time run",
			req: &models.ExportRequest{
				Run: &models.AnalysisRun{RangeParams: models.RangeParams{RangeType: models.RangeTypeDriveTime}},
			},
			expected: models.RangeTypeDriveTime,
		},
		{
			name: "unset range type defaults to circle",
			req: &models.ExportRequest{
				Run: &models.AnalysisRun{},
			},
			expected: models.RangeTypeCircle,
		},
		{
			name: "both runs take precedence over single run",
			req: &models.ExportRequest{
				Run:       &models.AnalysisRun{},
				Circle:    &models.AnalysisRun{},
				DriveTime: &models.AnalysisRun{},
			},
			expected: models.RangeTypeBoth,
		},
		{
			name:    "no runs at all",
			req:     &models.ExportRequest{},
			wantErr: true,
		},
		{
			name: "circle run alone is not dual mode",
			req: &models.ExportRequest{
				Circle: &models.AnalysisRun{},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveRangeType(tt.req)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
