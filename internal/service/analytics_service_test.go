package service

import (
	"context"
	"testing"

	"gram-vidya/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCourseAnalyticsEnrollmentOrder(t *testing.T) {
	ctx := context.Background()
	teacher := Actor{ID: primitive.NewObjectID(), Role: models.RoleTeacher}
	first, second, ghost := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	course := models.Course{
		ID:               primitive.NewObjectID(),
		Title:            "Farming Basics",
		Teacher:          teacher.ID,
		EnrolledStudents: []primitive.ObjectID{second, first, ghost},
	}

	lessons := &memLessonStore{
		lessonCourse: map[primitive.ObjectID]primitive.ObjectID{},
		totals:       map[primitive.ObjectID]int64{course.ID: 5},
	}
	var lessonIDs []primitive.ObjectID
	for i := 0; i < 5; i++ {
		id := primitive.NewObjectID()
		lessonIDs = append(lessonIDs, id)
		lessons.lessonCourse[id] = course.ID
	}

	progress := newMemProgressStore()
	progressSvc := NewProgressService(progress, lessons, nil, NewValidator())
	complete := func(student primitive.ObjectID, n int) {
		for _, l := range lessonIDs[:n] {
			_, err := progressSvc.UpdateProgress(ctx, student, l, UpdateProgressInput{Status: models.StatusCompleted})
			require.NoError(t, err)
		}
	}
	complete(second, 3)
	complete(first, 5)
	// in-progress rows do not count
	_, err := progressSvc.UpdateProgress(ctx, ghost, lessonIDs[0], UpdateProgressInput{Status: models.StatusInProgress})
	require.NoError(t, err)

	users := &memUserStore{users: map[primitive.ObjectID]models.User{
		first:  {ID: first, Name: "Meera", Email: "meera@example.com"},
		second: {ID: second, Name: "Ravi", Email: "ravi@example.com"},
	}}

	svc := NewAnalyticsService(newMemCourseStore(course), lessons, users, progress)
	out, err := svc.CourseAnalytics(ctx, teacher, course.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(5), out.TotalLessons)
	require.Len(t, out.Students, 3)

	assert.Equal(t, "Ravi", out.Students[0].Student.Name)
	assert.Equal(t, int64(3), out.Students[0].CompletedLessons)
	assert.Equal(t, 60, out.Students[0].Percentage)

	assert.Equal(t, "Meera", out.Students[1].Student.Name)
	assert.Equal(t, 100, out.Students[1].Percentage)

	assert.Equal(t, ghost, out.Students[2].Student.ID)
	assert.Empty(t, out.Students[2].Student.Name)
	assert.Equal(t, 0, out.Students[2].Percentage)
}

func TestCourseAnalyticsAccess(t *testing.T) {
	ctx := context.Background()
	owner := primitive.NewObjectID()
	course := models.Course{ID: primitive.NewObjectID(), Teacher: owner}
	svc := NewAnalyticsService(
		newMemCourseStore(course),
		&memLessonStore{totals: map[primitive.ObjectID]int64{}},
		&memUserStore{users: map[primitive.ObjectID]models.User{}},
		newMemProgressStore(),
	)

	_, err := svc.CourseAnalytics(ctx, Actor{ID: primitive.NewObjectID(), Role: models.RoleTeacher}, course.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.CourseAnalytics(ctx, Actor{ID: owner, Role: models.RoleTeacher}, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)

	out, err := svc.CourseAnalytics(ctx, Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}, course.ID)
	require.NoError(t, err)
	assert.Empty(t, out.Students)
	assert.Equal(t, int64(0), out.TotalLessons)
}

func TestSystemAnalytics(t *testing.T) {
	ctx := context.Background()
	s1, s2, teacher := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	users := &memUserStore{users: map[primitive.ObjectID]models.User{
		s1:      {ID: s1, Role: models.RoleStudent},
		s2:      {ID: s2, Role: models.RoleStudent},
		teacher: {ID: teacher, Role: models.RoleTeacher},
	}}
	courses := newMemCourseStore(
		models.Course{ID: primitive.NewObjectID(), Teacher: teacher, IsPublished: true, EnrolledStudents: []primitive.ObjectID{s1, s2}},
		models.Course{ID: primitive.NewObjectID(), Teacher: teacher, EnrolledStudents: []primitive.ObjectID{s1}},
	)
	progress := newMemProgressStore()
	_, err := progress.Upsert(ctx, s1, primitive.NewObjectID(), primitive.NewObjectID(), models.ProgressUpdate{Status: models.StatusCompleted})
	require.NoError(t, err)

	svc := NewAnalyticsService(courses, &memLessonStore{}, users, progress)
	out, err := svc.SystemAnalytics(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), out.Users.Total)
	assert.Equal(t, int64(2), out.Users.Students)
	assert.Equal(t, int64(1), out.Users.Teachers)
	assert.Equal(t, int64(2), out.Courses.Total)
	assert.Equal(t, int64(1), out.Courses.Published)
	assert.Equal(t, int64(3), out.Enrollments)
	assert.Equal(t, int64(1), out.CompletedLessons)
}
