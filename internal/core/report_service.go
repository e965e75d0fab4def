package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"lifenotes-backend-go/internal/db"
	"lifenotes-backend-go/internal/models"
)

type reportService struct {
	reportRepo db.ReportRepository
	lessonRepo db.LessonRepository
	publisher  EventPublisher
	logger     *zap.Logger
}

// NewReportService creates a new ReportService instance. publisher may be nil.
func NewReportService(rr db.ReportRepository, lr db.LessonRepository, publisher EventPublisher, logger *zap.Logger) ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &reportService{reportRepo: rr, lessonRepo: lr, publisher: publisher, logger: logger}
}

// CreateReport stores a report for an existing lesson.
func (s *reportService) CreateReport(ctx context.Context, req models.CreateReportRequest) (*models.Report, error) {
	lessonID := strings.TrimSpace(req.LessonID)
	reason := strings.TrimSpace(req.Reason)
	if lessonID == "" {
		return nil, invalidRequest("lessonId is required")
	}
	if reason == "" {
		return nil, invalidRequest("reason is required")
	}

	if _, err := s.lessonRepo.GetByID(ctx, lessonID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrReportLessonNotFound, lessonID)
		}
		return nil, storeError("lookup reported lesson", err)
	}

	report := &models.Report{
		LessonID:      lessonID,
		ReporterEmail: normalizeEmail(req.ReporterEmail),
		Reason:        reason,
		CreatedAt:     time.Now().UTC(),
	}
	reportID, err := s.reportRepo.Create(ctx, report)
	if err != nil {
		return nil, storeError("create report", err)
	}
	report.ID = reportID
	s.logger.Info("Lesson reported", zap.String("lessonID", lessonID), zap.String("reportID", reportID))

	publishEvent(ctx, s.publisher, s.logger, QueueLessonReported, models.LessonReportedEvent{
		ReportID:      report.ID,
		LessonID:      report.LessonID,
		ReporterEmail: report.ReporterEmail,
		Reason:        report.Reason,
		OccurredAt:    report.CreatedAt,
	})
	return report, nil
}

func (s *reportService) ListReports(ctx context.Context) ([]*models.Report, error) {
	reports, err := s.reportRepo.List(ctx)
	if err != nil {
		return nil, storeError("list reports", err)
	}
	return reports, nil
}
