package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gram-vidya/internal/metrics"
	"gram-vidya/internal/models"

	"github.com/golang/glog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EventQuizCreated   = "quiz.created"
	EventQuizSubmitted = "quiz.submitted"
	EventQuizDeleted   = "quiz.deleted"
)

type QuestionInput struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"min=2,dive,required"`
	CorrectOption *int     `json:"correctOption" validate:"required"`
}

type CreateQuizInput struct {
	Title        string          `json:"title" validate:"required,max=200"`
	Course       string          `json:"course" validate:"required,objectid"`
	Questions    []QuestionInput `json:"questions" validate:"required,min=1,dive"`
	Duration     int             `json:"duration" validate:"gt=0"`
	PassingMarks *float64        `json:"passingMarks" validate:"required,gte=0,lte=100"`
}

// ResultsReport is every attempt on a quiz plus one summary line per student.
type ResultsReport struct {
	Results []models.ResultView     `json:"results"`
	Summary []models.AttemptSummary `json:"summary"`
}

type QuizService struct {
	Quizzes       QuizStore
	Results       ResultStore
	Courses       CourseStore
	Notifications *NotificationService
	Cache         QuizCache
	Events        Publisher
	Validator     *Validator
	Now           func() time.Time
}

func NewQuizService(quizzes QuizStore, results ResultStore, courses CourseStore, notifications *NotificationService, cache QuizCache, events Publisher, v *Validator) *QuizService {
	return &QuizService{
		Quizzes:       quizzes,
		Results:       results,
		Courses:       courses,
		Notifications: notifications,
		Cache:         cache,
		Events:        events,
		Validator:     v,
		Now:           time.Now,
	}
}

// CreateQuiz stores the quiz and notifies every enrolled student. The quiz write and the
// notification fan-out are independent; a failed fan-out is logged and the quiz stays.
func (s *QuizService) CreateQuiz(ctx context.Context, actor Actor, in CreateQuizInput) (*models.Quiz, error) {
	if err := s.Validator.Struct(in); err != nil {
		return nil, err
	}
	courseID, _ := primitive.ObjectIDFromHex(in.Course)

	course, err := s.Courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return nil, notFound("Course")
	}
	if !course.OwnedBy(actor.ID, actor.Role) {
		return nil, forbidden("add quizzes to this course")
	}

	quiz := &models.Quiz{
		ID:           primitive.NewObjectID(),
		Title:        in.Title,
		Course:       courseID,
		Duration:     in.Duration,
		PassingMarks: *in.PassingMarks,
		CreatedBy:    actor.ID,
		CreatedAt:    s.Now().UTC(),
	}
	for _, q := range in.Questions {
		correct := *q.CorrectOption
		quiz.Questions = append(quiz.Questions, models.Question{
			Question:      q.Question,
			Options:       q.Options,
			CorrectOption: &correct,
		})
	}

	if err := s.Quizzes.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	metrics.QuizzesCreated.Inc()

	if len(course.EnrolledStudents) > 0 && s.Notifications != nil {
		msg := "New quiz added to course: " + course.Title
		link := "/course/" + course.ID.Hex()
		if err := s.Notifications.FanOut(ctx, course.EnrolledStudents, msg, link); err != nil {
			glog.Errorf("Quiz %s created but notification fan-out failed: %v", quiz.ID.Hex(), err)
		}
	}

	s.publish(ctx, EventQuizCreated, map[string]interface{}{
		"quizId":    quiz.ID.Hex(),
		"courseId":  courseID.Hex(),
		"createdBy": actor.ID.Hex(),
		"questions": len(quiz.Questions),
	})
	return quiz, nil
}

func (s *QuizService) ListByCourse(ctx context.Context, actor Actor, courseID primitive.ObjectID) ([]models.Quiz, error) {
	quizzes, err := s.Quizzes.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	if actor.IsStudent() {
		for i := range quizzes {
			quizzes[i] = quizzes[i].Redacted()
		}
	}
	return quizzes, nil
}

// GetQuiz returns the quiz. Students get it without the correct options.
func (s *QuizService) GetQuiz(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Quiz, error) {
	quiz, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsStudent() {
		redacted := quiz.Redacted()
		return &redacted, nil
	}
	return quiz, nil
}

// Submit grades the answers and stores the attempt. Every call stores a new result.
func (s *QuizService) Submit(ctx context.Context, actor Actor, id primitive.ObjectID, answers map[int]int) (*Grade, error) {
	quiz, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	grade := GradeQuiz(quiz, answers)
	result := &models.QuizResult{
		ID:             primitive.NewObjectID(),
		Quiz:           quiz.ID,
		Student:        actor.ID,
		Score:          grade.Score,
		TotalQuestions: grade.TotalQuestions,
		Percentage:     grade.Percentage,
		Passed:         grade.Passed,
		AttemptedAt:    s.Now().UTC(),
	}
	if err := s.Results.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}
	metrics.QuizSubmissions.WithLabelValues(strconv.FormatBool(grade.Passed)).Inc()

	s.publish(ctx, EventQuizSubmitted, map[string]interface{}{
		"quizId":     quiz.ID.Hex(),
		"courseId":   quiz.Course.Hex(),
		"studentId":  actor.ID.Hex(),
		"score":      grade.Score,
		"percentage": grade.Percentage,
		"passed":     grade.Passed,
	})
	return &grade, nil
}

// ListResults lists every attempt newest first and summarises attempts per student in
// the order each student first attempted the quiz.
func (s *QuizService) ListResults(ctx context.Context, actor Actor, id primitive.ObjectID) (*ResultsReport, error) {
	quiz, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && quiz.CreatedBy != actor.ID {
		if err := s.requireCourseOwner(ctx, actor, quiz.Course, "view results of this quiz"); err != nil {
			return nil, err
		}
	}

	rows, err := s.Results.FindByQuiz(ctx, quiz.ID)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	return &ResultsReport{Results: rows, Summary: SummarizeAttempts(rows)}, nil
}

// SummarizeAttempts expects rows newest first, as returned by the result store.
func SummarizeAttempts(rows []models.ResultView) []models.AttemptSummary {
	index := make(map[primitive.ObjectID]int)
	summary := []models.AttemptSummary{}
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		pos, seen := index[r.Student.ID]
		if !seen {
			pos = len(summary)
			index[r.Student.ID] = pos
			summary = append(summary, models.AttemptSummary{Student: r.Student})
		}
		sum := &summary[pos]
		sum.Attempts++
		if sum.Attempts == 1 || r.Percentage > sum.BestPercentage {
			sum.BestPercentage = r.Percentage
		}
		sum.LatestPercentage = r.Percentage
		sum.LastAttemptedAt = r.AttemptedAt
		sum.Passed = sum.Passed || r.Passed
	}
	return summary
}

// DeleteQuiz removes the quiz. Stored results are kept.
func (s *QuizService) DeleteQuiz(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	quiz, err := s.Quizzes.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load quiz: %w", err)
	}
	if quiz == nil {
		return notFound("Quiz")
	}
	if !actor.IsAdmin() && quiz.CreatedBy != actor.ID {
		if err := s.requireCourseOwner(ctx, actor, quiz.Course, "delete this quiz"); err != nil {
			return err
		}
	}

	if err := s.Quizzes.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, id)
	}
	s.publish(ctx, EventQuizDeleted, map[string]interface{}{
		"quizId":    id.Hex(),
		"courseId":  quiz.Course.Hex(),
		"deletedBy": actor.ID.Hex(),
	})
	return nil
}

func (s *QuizService) requireCourseOwner(ctx context.Context, actor Actor, courseID primitive.ObjectID, action string) error {
	course, err := s.Courses.FindByID(ctx, courseID)
	if err != nil {
		return fmt.Errorf("load course: %w", err)
	}
	if course == nil || !course.OwnedBy(actor.ID, actor.Role) {
		return forbidden(action)
	}
	return nil
}

func (s *QuizService) load(ctx context.Context, id primitive.ObjectID) (*models.Quiz, error) {
	if s.Cache != nil {
		if quiz, ok := s.Cache.Get(ctx, id); ok {
			metrics.QuizCacheLookups.WithLabelValues("hit").Inc()
			return quiz, nil
		}
		metrics.QuizCacheLookups.WithLabelValues("miss").Inc()
	}

	quiz, err := s.Quizzes.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}
	if quiz == nil {
		return nil, notFound("Quiz")
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, quiz)
	}
	return quiz, nil
}

func (s *QuizService) publish(ctx context.Context, eventType string, payload interface{}) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, eventType, payload); err != nil {
		glog.Warningf("Failed to publish %s: %v", eventType, err)
	}
}

// ParseAnswers converts the JSON answer map ({"0": 2, "1": 0}) into question indices.
// Keys that are not integers are rejected; indices outside the quiz are kept and
// simply never score.
func ParseAnswers(raw map[string]int) (map[int]int, error) {
	answers := make(map[int]int, len(raw))
	for k, v := range raw {
		i, err := strconv.Atoi(k)
		if err != nil {
			return nil, newValidationError("answer key %q is not a question index", k)
		}
		answers[i] = v
	}
	return answers, nil
}
