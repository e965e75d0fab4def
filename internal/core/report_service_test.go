package core

import (
	"context"
	"errors"
	"testing"

	"lifenotes-backend-go/internal/db"
	"lifenotes-backend-go/internal/models"
)

func TestCreateReport(t *testing.T) {
	store := db.NewMemoryStore()
	lessons := NewLessonService(store.Lessons, nil)
	pub := &mockPublisher{}
	reports := NewReportService(store.Reports, store.Lessons, pub, nil)
	ctx := context.Background()

	lesson, _ := lessons.CreateLesson(ctx, models.CreateLessonRequest{Content: "hi", Author: models.Author{Email: "a@x.com"}})

	if _, err := reports.CreateReport(ctx, models.CreateReportRequest{LessonID: lesson.ID}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("missing reason error = %v", err)
	}
	if _, err := reports.CreateReport(ctx, models.CreateReportRequest{LessonID: "missing", Reason: "spam"}); !errors.Is(err, ErrReportLessonNotFound) {
		t.Errorf("missing lesson error = %v", err)
	}

	report, err := reports.CreateReport(ctx, models.CreateReportRequest{
		LessonID:      lesson.ID,
		ReporterEmail: "B@y.com",
		Reason:        " spam ",
	})
	if err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if report.ID == "" || report.Reason != "spam" || report.ReporterEmail != "b@y.com" || report.CreatedAt.IsZero() {
		t.Errorf("report = %+v", report)
	}

	list, err := reports.ListReports(ctx)
	if err != nil || len(list) != 1 || list[0].LessonID != lesson.ID {
		t.Errorf("ListReports = %+v, %v", list, err)
	}

	events := pub.published()
	if len(events) != 1 || events[0].Queue != QueueLessonReported {
		t.Fatalf("published = %+v, want one report event", events)
	}
	if ev, ok := events[0].Payload.(models.LessonReportedEvent); !ok || ev.ReportID != report.ID || ev.Reason != "spam" {
		t.Errorf("event = %+v", events[0].Payload)
	}
}
