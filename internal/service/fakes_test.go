package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"gram-vidya/internal/models"
	"gram-vidya/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memQuizStore struct {
	mu      sync.Mutex
	quizzes map[primitive.ObjectID]models.Quiz
	finds   int
}

func newMemQuizStore() *memQuizStore {
	return &memQuizStore{quizzes: map[primitive.ObjectID]models.Quiz{}}
}

func (m *memQuizStore) Create(_ context.Context, q *models.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[q.ID] = *q
	return nil
}

func (m *memQuizStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	q, ok := m.quizzes[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (m *memQuizStore) FindByCourse(_ context.Context, courseID primitive.ObjectID) ([]models.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Quiz{}
	for _, q := range m.quizzes {
		if q.Course == courseID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memQuizStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.quizzes, id)
	return nil
}

type memQuizCache struct {
	items       map[primitive.ObjectID]models.Quiz
	invalidated []primitive.ObjectID
}

func newMemQuizCache() *memQuizCache {
	return &memQuizCache{items: map[primitive.ObjectID]models.Quiz{}}
}

func (c *memQuizCache) Get(_ context.Context, id primitive.ObjectID) (*models.Quiz, bool) {
	q, ok := c.items[id]
	if !ok {
		return nil, false
	}
	return &q, true
}

func (c *memQuizCache) Set(_ context.Context, q *models.Quiz) { c.items[q.ID] = *q }

func (c *memQuizCache) Invalidate(_ context.Context, id primitive.ObjectID) {
	delete(c.items, id)
	c.invalidated = append(c.invalidated, id)
}

type memResultStore struct {
	mu      sync.Mutex
	results []models.QuizResult
	users   map[primitive.ObjectID]models.User
}

func (m *memResultStore) Create(_ context.Context, r *models.QuizResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, *r)
	return nil
}

func (m *memResultStore) FindByQuiz(_ context.Context, quizID primitive.ObjectID) ([]models.ResultView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ResultView{}
	for i := len(m.results) - 1; i >= 0; i-- {
		r := m.results[i]
		if r.Quiz != quizID {
			continue
		}
		u := m.users[r.Student]
		out = append(out, models.ResultView{
			ID:             r.ID,
			Quiz:           r.Quiz,
			Student:        models.StudentRef{ID: r.Student, Name: u.Name, Email: u.Email},
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			Percentage:     r.Percentage,
			Passed:         r.Passed,
			AttemptedAt:    r.AttemptedAt,
		})
	}
	return out, nil
}

type memCourseStore struct {
	mu      sync.Mutex
	courses map[primitive.ObjectID]*models.Course
}

func newMemCourseStore(courses ...models.Course) *memCourseStore {
	m := &memCourseStore{courses: map[primitive.ObjectID]*models.Course{}}
	for i := range courses {
		c := courses[i]
		m.courses[c.ID] = &c
	}
	return m
}

func (m *memCourseStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.EnrolledStudents = append([]primitive.ObjectID(nil), c.EnrolledStudents...)
	return &cp, nil
}

func (m *memCourseStore) Enroll(_ context.Context, courseID, studentID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.courses[courseID]
	if !ok {
		return false, nil
	}
	if !c.IsEnrolled(studentID) {
		c.EnrolledStudents = append(c.EnrolledStudents, studentID)
	}
	return true, nil
}

func (m *memCourseStore) Count(_ context.Context, publishedOnly bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.courses {
		if !publishedOnly || c.IsPublished {
			n++
		}
	}
	return n, nil
}

func (m *memCourseStore) CountEnrollments(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.courses {
		n += int64(len(c.EnrolledStudents))
	}
	return n, nil
}

func (m *memCourseStore) SetRating(_ context.Context, courseID primitive.ObjectID, rating models.CourseRating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.courses[courseID]; ok {
		c.AvgRating = rating.AvgRating
		c.NumReviews = rating.NumReviews
	}
	return nil
}

type memLessonStore struct {
	lessonCourse map[primitive.ObjectID]primitive.ObjectID
	totals       map[primitive.ObjectID]int64
}

func (m *memLessonStore) CourseOf(_ context.Context, lessonID primitive.ObjectID) (primitive.ObjectID, bool, error) {
	c, ok := m.lessonCourse[lessonID]
	return c, ok, nil
}

func (m *memLessonStore) CountByCourse(_ context.Context, courseID primitive.ObjectID) (int64, error) {
	return m.totals[courseID], nil
}

type memUserStore struct {
	users map[primitive.ObjectID]models.User
}

func (m *memUserStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := map[primitive.ObjectID]models.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (m *memUserStore) CountByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range m.users {
		if role == "" || u.Role == role {
			n++
		}
	}
	return n, nil
}

type progressKey struct{ student, lesson primitive.ObjectID }

// memProgressStore mimics the atomic upsert of the mongo repository. duplicates makes
// the next n upserts fail the way a lost insert race does.
type memProgressStore struct {
	mu         sync.Mutex
	rows       map[progressKey]*models.Progress
	duplicates int
	upserts    int
}

func newMemProgressStore() *memProgressStore {
	return &memProgressStore{rows: map[progressKey]*models.Progress{}}
}

func (m *memProgressStore) Upsert(_ context.Context, student, lesson, course primitive.ObjectID, u models.ProgressUpdate) (*models.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if m.duplicates > 0 {
		m.duplicates--
		return nil, errors.Join(repository.ErrDuplicate, errors.New("E11000 duplicate key error"))
	}

	key := progressKey{student, lesson}
	p, ok := m.rows[key]
	if !ok {
		p = &models.Progress{
			ID:        primitive.NewObjectID(),
			Student:   student,
			Lesson:    lesson,
			Course:    course,
			Status:    models.StatusInProgress,
			CreatedAt: u.At,
		}
		m.rows[key] = p
	}
	if u.Status != "" {
		p.Status = u.Status
	}
	if u.WatchTime != nil && *u.WatchTime > 0 {
		p.WatchTime = *u.WatchTime
	}
	if u.Status == models.StatusCompleted {
		at := u.At
		p.CompletedAt = &at
	}
	p.UpdatedAt = u.At
	out := *p
	return &out, nil
}

func (m *memProgressStore) FindByStudentAndCourse(_ context.Context, student, course primitive.ObjectID) ([]models.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Progress{}
	for _, p := range m.rows {
		if p.Student == student && p.Course == course {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProgressStore) FindByStudent(_ context.Context, student primitive.ObjectID) ([]models.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Progress{}
	for _, p := range m.rows {
		if p.Student == student {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memProgressStore) CountCompletedByStudents(_ context.Context, course primitive.ObjectID, students []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := map[primitive.ObjectID]bool{}
	for _, s := range students {
		wanted[s] = true
	}
	out := map[primitive.ObjectID]int64{}
	for _, p := range m.rows {
		if p.Course == course && p.Status == models.StatusCompleted && wanted[p.Student] {
			out[p.Student]++
		}
	}
	return out, nil
}

func (m *memProgressStore) CountCompleted(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.rows {
		if p.Status == models.StatusCompleted {
			n++
		}
	}
	return n, nil
}

func (m *memProgressStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memNotificationStore struct {
	mu    sync.Mutex
	items []models.Notification
	fail  error
}

func (m *memNotificationStore) InsertMany(_ context.Context, ns []models.Notification) error {
	if m.fail != nil {
		return m.fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, ns...)
	return nil
}

func (m *memNotificationStore) FindLatest(_ context.Context, user primitive.ObjectID, limit int64) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Notification{}
	for i := len(m.items) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if m.items[i].User == user {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

func (m *memNotificationStore) CountUnread(_ context.Context, user primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, it := range m.items {
		if it.User == user && !it.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *memNotificationStore) MarkRead(_ context.Context, user, id primitive.ObjectID) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].User == user {
			m.items[i].IsRead = true
			n := m.items[i]
			return &n, nil
		}
	}
	return nil, nil
}

func (m *memNotificationStore) Delete(_ context.Context, user, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].User == user {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type memPostStore struct {
	mu    sync.Mutex
	posts []models.Post
}

func (m *memPostStore) Create(_ context.Context, p *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = append(m.posts, *p)
	return nil
}

func (m *memPostStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

// FindThreads relies on insertion order standing in for createdAt.
func (m *memPostStore) FindThreads(_ context.Context, course *primitive.ObjectID, limit int64) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Post{}
	for i := len(m.posts) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		p := m.posts[i]
		if p.ParentPost != nil {
			continue
		}
		if course != nil && (p.Course == nil || *p.Course != *course) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memPostStore) FindReplies(_ context.Context, parents []primitive.ObjectID) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[primitive.ObjectID]bool{}
	for _, id := range parents {
		want[id] = true
	}
	out := []models.Post{}
	for _, p := range m.posts {
		if p.ParentPost != nil && want[*p.ParentPost] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPostStore) ToggleLike(_ context.Context, id, user primitive.ObjectID) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.posts {
		p := &m.posts[i]
		if p.ID != id {
			continue
		}
		kept := p.Likes[:0:0]
		for _, u := range p.Likes {
			if u != user {
				kept = append(kept, u)
			}
		}
		if len(kept) == len(p.Likes) {
			kept = append(kept, user)
		}
		p.Likes = kept
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memPostStore) DeleteThread(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.posts[:0]
	for _, p := range m.posts {
		if p.ID == id || (p.ParentPost != nil && *p.ParentPost == id) {
			continue
		}
		kept = append(kept, p)
	}
	m.posts = kept
	return nil
}

type memReviewStore struct {
	mu      sync.Mutex
	reviews []models.Review
}

func (m *memReviewStore) Create(_ context.Context, r *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.reviews {
		if existing.Course == r.Course && existing.User == r.User {
			return errors.Join(repository.ErrDuplicate, errors.New("E11000 duplicate key error"))
		}
	}
	m.reviews = append(m.reviews, *r)
	return nil
}

func (m *memReviewStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reviews {
		if r.ID == id {
			cp := r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memReviewStore) FindByCourse(_ context.Context, course primitive.ObjectID) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Review{}
	for i := len(m.reviews) - 1; i >= 0; i-- {
		if m.reviews[i].Course == course {
			out = append(out, m.reviews[i])
		}
	}
	return out, nil
}

func (m *memReviewStore) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.reviews {
		if r.ID == id {
			m.reviews = append(m.reviews[:i], m.reviews[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memReviewStore) Rating(_ context.Context, course primitive.ObjectID) (models.CourseRating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out models.CourseRating
	var sum int
	for _, r := range m.reviews {
		if r.Course == course {
			sum += r.Rating
			out.NumReviews++
		}
	}
	if out.NumReviews > 0 {
		out.AvgRating = float64(sum) / float64(out.NumReviews)
	}
	return out, nil
}

type publishedEvent struct {
	Type    string
	Payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: payload})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }
