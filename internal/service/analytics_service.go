package service

import (
	"context"
	"fmt"

	"gram-vidya/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

type CourseAnalytics struct {
	CourseID     primitive.ObjectID          `json:"courseId"`
	Title        string                      `json:"title"`
	TotalLessons int64                       `json:"totalLessons"`
	Students     []models.StudentProgressRow `json:"students"`
}

type AnalyticsService struct {
	Courses  CourseStore
	Lessons  LessonStore
	Users    UserStore
	Progress ProgressStore
}

func NewAnalyticsService(courses CourseStore, lessons LessonStore, users UserStore, progress ProgressStore) *AnalyticsService {
	return &AnalyticsService{Courses: courses, Lessons: lessons, Users: users, Progress: progress}
}

// CourseAnalytics builds one completion row per enrolled student, in enrollment order.
// Nothing is cached; every call recomputes from the stores.
func (s *AnalyticsService) CourseAnalytics(ctx context.Context, actor Actor, courseID primitive.ObjectID) (*CourseAnalytics, error) {
	course, err := s.Courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return nil, notFound("Course")
	}
	if !course.OwnedBy(actor.ID, actor.Role) {
		return nil, forbidden("view analytics for this course")
	}

	var (
		total     int64
		completed map[primitive.ObjectID]int64
		users     map[primitive.ObjectID]models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.Lessons.CountByCourse(gctx, courseID)
		if err != nil {
			return fmt.Errorf("count lessons: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		m, err := s.Progress.CountCompletedByStudents(gctx, courseID, course.EnrolledStudents)
		if err != nil {
			return fmt.Errorf("count completed lessons: %w", err)
		}
		completed = m
		return nil
	})
	g.Go(func() error {
		m, err := s.Users.FindByIDs(gctx, course.EnrolledStudents)
		if err != nil {
			return fmt.Errorf("load students: %w", err)
		}
		users = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]models.StudentProgressRow, 0, len(course.EnrolledStudents))
	for _, id := range course.EnrolledStudents {
		u := users[id]
		done := completed[id]
		rows = append(rows, models.StudentProgressRow{
			Student:          models.StudentRef{ID: id, Name: u.Name, Email: u.Email},
			CompletedLessons: done,
			TotalLessons:     total,
			Percentage:       CompletionPercentage(done, total),
		})
	}

	return &CourseAnalytics{
		CourseID:     course.ID,
		Title:        course.Title,
		TotalLessons: total,
		Students:     rows,
	}, nil
}

// SystemAnalytics gathers platform-wide counters for the admin dashboard.
func (s *AnalyticsService) SystemAnalytics(ctx context.Context) (*models.SystemAnalytics, error) {
	var out models.SystemAnalytics
	g, gctx := errgroup.WithContext(ctx)

	count := func(dst *int64, what string, fn func(context.Context) (int64, error)) {
		g.Go(func() error {
			n, err := fn(gctx)
			if err != nil {
				return fmt.Errorf("count %s: %w", what, err)
			}
			*dst = n
			return nil
		})
	}

	count(&out.Users.Total, "users", func(ctx context.Context) (int64, error) {
		return s.Users.CountByRole(ctx, "")
	})
	count(&out.Users.Students, "students", func(ctx context.Context) (int64, error) {
		return s.Users.CountByRole(ctx, models.RoleStudent)
	})
	count(&out.Users.Teachers, "teachers", func(ctx context.Context) (int64, error) {
		return s.Users.CountByRole(ctx, models.RoleTeacher)
	})
	count(&out.Courses.Total, "courses", func(ctx context.Context) (int64, error) {
		return s.Courses.Count(ctx, false)
	})
	count(&out.Courses.Published, "published courses", func(ctx context.Context) (int64, error) {
		return s.Courses.Count(ctx, true)
	})
	count(&out.Enrollments, "enrollments", s.Courses.CountEnrollments)
	count(&out.CompletedLessons, "completed lessons", s.Progress.CountCompleted)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
