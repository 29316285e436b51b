package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gram-vidya/internal/metrics"
	"gram-vidya/internal/models"
	"gram-vidya/internal/repository"

	"github.com/golang/glog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const EventProgressUpdated = "progress.updated"

type UpdateProgressInput struct {
	Status    models.ProgressStatus `json:"status" validate:"omitempty,oneof=not-started in-progress completed"`
	WatchTime *float64              `json:"watchTime" validate:"omitempty,gte=0"`
}

type CourseProgress struct {
	Progress []models.Progress   `json:"progress"`
	Stats    models.ProgressStats `json:"stats"`
}

type ProgressService struct {
	Progress  ProgressStore
	Lessons   LessonStore
	Events    Publisher
	Validator *Validator
	Now       func() time.Time
}

func NewProgressService(progress ProgressStore, lessons LessonStore, events Publisher, v *Validator) *ProgressService {
	return &ProgressService{
		Progress:  progress,
		Lessons:   lessons,
		Events:    events,
		Validator: v,
		Now:       time.Now,
	}
}

// UpdateProgress upserts the (student, lesson) row. An empty status keeps whatever
// is stored, so new rows start as in-progress. Moving back from completed is allowed.
func (s *ProgressService) UpdateProgress(ctx context.Context, student, lesson primitive.ObjectID, in UpdateProgressInput) (*models.Progress, error) {
	if err := s.Validator.Struct(in); err != nil {
		return nil, err
	}

	course, found, err := s.Lessons.CourseOf(ctx, lesson)
	if err != nil {
		return nil, fmt.Errorf("resolve lesson course: %w", err)
	}
	if !found {
		return nil, notFound("Lesson")
	}

	update := models.ProgressUpdate{
		Status:    in.Status,
		WatchTime: in.WatchTime,
		At:        s.Now().UTC(),
	}

	progress, err := s.Progress.Upsert(ctx, student, lesson, course, update)
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost the race to insert the first row; the row exists now.
		glog.V(2).Infof("Progress insert race for student %s lesson %s, retrying", student.Hex(), lesson.Hex())
		progress, err = s.Progress.Upsert(ctx, student, lesson, course, update)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert progress: %w", err)
	}
	metrics.ProgressUpdates.WithLabelValues(string(progress.Status)).Inc()

	if s.Events != nil {
		payload := map[string]interface{}{
			"studentId": student.Hex(),
			"lessonId":  lesson.Hex(),
			"courseId":  course.Hex(),
			"status":    progress.Status,
			"watchTime": progress.WatchTime,
		}
		if err := s.Events.Publish(ctx, EventProgressUpdated, payload); err != nil {
			glog.Warningf("Failed to publish %s: %v", EventProgressUpdated, err)
		}
	}
	return progress, nil
}

// CourseProgress returns the student's rows for the course and how many of the
// course's lessons they have completed.
func (s *ProgressService) CourseProgress(ctx context.Context, student, course primitive.ObjectID) (*CourseProgress, error) {
	rows, err := s.Progress.FindByStudentAndCourse(ctx, student, course)
	if err != nil {
		return nil, fmt.Errorf("load course progress: %w", err)
	}
	total, err := s.Lessons.CountByCourse(ctx, course)
	if err != nil {
		return nil, fmt.Errorf("count course lessons: %w", err)
	}
	stats := models.ProgressStats{Total: total}
	for _, p := range rows {
		if p.Status == models.StatusCompleted {
			stats.Completed++
		}
	}
	stats.Percentage = CompletionPercentage(stats.Completed, stats.Total)
	return &CourseProgress{Progress: rows, Stats: stats}, nil
}

func (s *ProgressService) MyProgress(ctx context.Context, student primitive.ObjectID) ([]models.Progress, error) {
	rows, err := s.Progress.FindByStudent(ctx, student)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return rows, nil
}

// CompletionPercentage is round(completed/total*100), 0 when total is 0.
func CompletionPercentage(completed, total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
