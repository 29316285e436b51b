package service

import (
	"context"

	"gram-vidya/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The interfaces below are satisfied by the repository package. Services only see
// the operations they need so tests can swap in memory stores.

type QuizStore interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Quiz, error)
	FindByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Quiz, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type QuizCache interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Quiz, bool)
	Set(ctx context.Context, quiz *models.Quiz)
	Invalidate(ctx context.Context, id primitive.ObjectID)
}

type ResultStore interface {
	Create(ctx context.Context, result *models.QuizResult) error
	FindByQuiz(ctx context.Context, quizID primitive.ObjectID) ([]models.ResultView, error)
}

type CourseStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	Enroll(ctx context.Context, courseID, studentID primitive.ObjectID) (bool, error)
	Count(ctx context.Context, publishedOnly bool) (int64, error)
	CountEnrollments(ctx context.Context) (int64, error)
	SetRating(ctx context.Context, courseID primitive.ObjectID, rating models.CourseRating) error
}

type LessonStore interface {
	CourseOf(ctx context.Context, lessonID primitive.ObjectID) (primitive.ObjectID, bool, error)
	CountByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error)
}

type UserStore interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}

type ProgressStore interface {
	Upsert(ctx context.Context, student, lesson, course primitive.ObjectID, u models.ProgressUpdate) (*models.Progress, error)
	FindByStudentAndCourse(ctx context.Context, student, course primitive.ObjectID) ([]models.Progress, error)
	FindByStudent(ctx context.Context, student primitive.ObjectID) ([]models.Progress, error)
	CountCompletedByStudents(ctx context.Context, course primitive.ObjectID, students []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
	CountCompleted(ctx context.Context) (int64, error)
}

type NotificationStore interface {
	InsertMany(ctx context.Context, notifications []models.Notification) error
	FindLatest(ctx context.Context, user primitive.ObjectID, limit int64) ([]models.Notification, error)
	CountUnread(ctx context.Context, user primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, user, id primitive.ObjectID) (*models.Notification, error)
	Delete(ctx context.Context, user, id primitive.ObjectID) (bool, error)
}

type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	FindThreads(ctx context.Context, course *primitive.ObjectID, limit int64) ([]models.Post, error)
	FindReplies(ctx context.Context, parents []primitive.ObjectID) ([]models.Post, error)
	ToggleLike(ctx context.Context, id, user primitive.ObjectID) (*models.Post, error)
	DeleteThread(ctx context.Context, id primitive.ObjectID) error
}

type ReviewStore interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	FindByCourse(ctx context.Context, course primitive.ObjectID) ([]models.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Rating(ctx context.Context, course primitive.ObjectID) (models.CourseRating, error)
}

// Publisher emits domain events. Failures are logged by callers, never returned to clients.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// Actor is the authenticated caller.
type Actor struct {
	ID   primitive.ObjectID
	Name string
	Role string
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

func (a Actor) IsStudent() bool { return a.Role == models.RoleStudent }
