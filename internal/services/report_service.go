package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"tradearea-platform/internal/export"
	"tradearea-platform/internal/models"
	"tradearea-platform/internal/report"
	"tradearea-platform/pkg/logging"
	"tradearea-platform/pkg/metrics"
)

// ReportService turns analysis results into downloadable artifacts.
type ReportService struct {
	builder *report.Builder
	logger  *logging.StructuredLogger
	mc      *metrics.Collector
	now     func() time.Time
}

// NewReportService creates a new report service.
func NewReportService(logger *logging.StructuredLogger, mc *metrics.Collector) *ReportService {
	return &ReportService{
		builder: report.NewBuilder(logger),
		logger:  logger,
		mc:      mc,
		now:     time.Now,
	}
}

// Artifact is one rendered download: its bytes, filename and content type.
type Artifact struct {
	Data        []byte
	FileName    string
	ContentType string
}

// GenerateWorkbook renders the xlsx artifact for an export request.
func (s *ReportService) GenerateWorkbook(ctx context.Context, req *models.ExportRequest) (*Artifact, error) {
	timer := s.mc.NewTimer(s.mc.ReportBuildDuration.WithLabelValues("xlsx"))
	defer timer.ObserveDuration()

	sheets, rangeType, err := s.buildSheets(ctx, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, sheets); err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	s.mc.RecordReport("xlsx", rangeType, len(sheets))
	s.logger.Info(ctx, "[REPORT_DONE] Workbook generated", logging.Fields{
		"range_type":  rangeType,
		"sheet_count": len(sheets),
		"size_bytes":  buf.Len(),
	})

	basic := req.BasicInfo
	basic.RangeType = rangeType
	return &Artifact{
		Data:        buf.Bytes(),
		FileName:    export.ReportFileName(basic, s.now()),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}, nil
}

// GenerateCSV renders the CSV artifact for an export request.
func (s *ReportService) GenerateCSV(ctx context.Context, req *models.ExportRequest) (*Artifact, error) {
	timer := s.mc.NewTimer(s.mc.ReportBuildDuration.WithLabelValues("csv"))
	defer timer.ObserveDuration()

	rangeType, err := resolveRangeType(req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, req); err != nil {
		return nil, fmt.Errorf("failed to render CSV: %w", err)
	}

	s.mc.RecordReport("csv", rangeType, 1)
	s.logger.Info(ctx, "[REPORT_DONE] CSV generated", logging.Fields{
		"range_type": rangeType,
		"size_bytes": buf.Len(),
	})

	basic := req.BasicInfo
	basic.RangeType = rangeType
	return &Artifact{
		Data:        buf.Bytes(),
		FileName:    export.CSVFileName(basic, s.now()),
		ContentType: "text/csv; charset=utf-8",
	}, nil
}

func (s *ReportService) buildSheets(ctx context.Context, req *models.ExportRequest) ([]report.Sheet, string, error) {
	rangeType, err := resolveRangeType(req)
	if err != nil {
		return nil, "", err
	}

	var sheets []report.Sheet
	if rangeType == models.RangeTypeBoth {
		sheets = s.builder.BuildDualReport(ctx, req.BasicInfo, req.Circle, req.DriveTime)
	} else {
		sheets = s.builder.BuildReport(ctx, req.BasicInfo, req.Run, "")
	}
	if len(sheets) == 0 {
		return nil, "", fmt.Errorf("export request produced no sheets")
	}
	return sheets, rangeType, nil
}

func resolveRangeType(req *models.ExportRequest) (string, error) {
	switch {
	case req.Circle != nil && req.DriveTime != nil:
		return models.RangeTypeBoth, nil
	case req.Run != nil:
		if req.Run.RangeParams.RangeType == models.RangeTypeDriveTime {
			return models.RangeTypeDriveTime, nil
		}
		return models.RangeTypeCircle, nil
	default:
		return "", fmt.Errorf("export request carries no analysis run")
	}
}
