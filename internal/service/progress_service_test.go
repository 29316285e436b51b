package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"gram-vidya/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type progressFixture struct {
	svc     *ProgressService
	store   *memProgressStore
	events  *recordingPublisher
	course  primitive.ObjectID
	lessons []primitive.ObjectID
	student primitive.ObjectID
}

func newProgressFixture(lessonCount int) *progressFixture {
	f := &progressFixture{
		store:   newMemProgressStore(),
		events:  &recordingPublisher{},
		course:  primitive.NewObjectID(),
		student: primitive.NewObjectID(),
	}
	lessons := &memLessonStore{
		lessonCourse: map[primitive.ObjectID]primitive.ObjectID{},
		totals:       map[primitive.ObjectID]int64{f.course: int64(lessonCount)},
	}
	for i := 0; i < lessonCount; i++ {
		id := primitive.NewObjectID()
		f.lessons = append(f.lessons, id)
		lessons.lessonCourse[id] = f.course
	}
	f.svc = NewProgressService(f.store, lessons, f.events, NewValidator())
	return f
}

func TestUpdateProgressInProgressThenCompleted(t *testing.T) {
	f := newProgressFixture(3)
	ctx := context.Background()
	lesson := f.lessons[0]

	p, err := f.svc.UpdateProgress(ctx, f.student, lesson, UpdateProgressInput{Status: models.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, p.Status)
	assert.Nil(t, p.CompletedAt)
	assert.Equal(t, f.course, p.Course)

	p, err = f.svc.UpdateProgress(ctx, f.student, lesson, UpdateProgressInput{Status: models.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, p.Status)
	assert.NotNil(t, p.CompletedAt)

	assert.Equal(t, 1, f.store.count())
	assert.Equal(t, []string{EventProgressUpdated, EventProgressUpdated}, f.events.types())
}

func TestUpdateProgressEmptyStatusKeepsStored(t *testing.T) {
	f := newProgressFixture(1)
	ctx := context.Background()
	lesson := f.lessons[0]

	p, err := f.svc.UpdateProgress(ctx, f.student, lesson, UpdateProgressInput{WatchTime: floatPtr(30)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, p.Status, "new rows default to in-progress")
	assert.Equal(t, 30.0, p.WatchTime)

	_, err = f.svc.UpdateProgress(ctx, f.student, lesson, UpdateProgressInput{Status: models.StatusCompleted})
	require.NoError(t, err)

	p, err = f.svc.UpdateProgress(ctx, f.student, lesson, UpdateProgressInput{WatchTime: floatPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, p.Status)
	assert.Equal(t, 30.0, p.WatchTime, "zero watch time does not overwrite")
}

func TestUpdateProgressAllowsMovingBack(t *testing.T) {
	f := newProgressFixture(1)
	ctx := context.Background()

	_, err := f.svc.UpdateProgress(ctx, f.student, f.lessons[0], UpdateProgressInput{Status: models.StatusCompleted})
	require.NoError(t, err)
	p, err := f.svc.UpdateProgress(ctx, f.student, f.lessons[0], UpdateProgressInput{Status: models.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, p.Status)
}

func TestUpdateProgressConcurrentFirstWrites(t *testing.T) {
	f := newProgressFixture(1)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.UpdateProgress(context.Background(), f.student, f.lessons[0], UpdateProgressInput{Status: models.StatusInProgress})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, f.store.count())
}

func TestUpdateProgressRetriesDuplicateKeyOnce(t *testing.T) {
	f := newProgressFixture(1)
	f.store.duplicates = 1

	p, err := f.svc.UpdateProgress(context.Background(), f.student, f.lessons[0], UpdateProgressInput{Status: models.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, p.Status)
	assert.Equal(t, 2, f.store.upserts)

	f.store.duplicates = 2
	_, err = f.svc.UpdateProgress(context.Background(), f.student, f.lessons[0], UpdateProgressInput{})
	assert.Error(t, err, "a second duplicate is not retried again")
}

func TestUpdateProgressErrors(t *testing.T) {
	f := newProgressFixture(1)

	_, err := f.svc.UpdateProgress(context.Background(), f.student, primitive.NewObjectID(), UpdateProgressInput{Status: models.StatusCompleted})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.UpdateProgress(context.Background(), f.student, f.lessons[0], UpdateProgressInput{Status: "done"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	assert.Equal(t, 0, f.store.count())
}

func TestCourseProgressStats(t *testing.T) {
	f := newProgressFixture(5)
	ctx := context.Background()

	for i, lesson := range f.lessons[:4] {
		status := models.StatusInProgress
		if i < 3 {
			status = models.StatusCompleted
		}
		_, err := f.svc.UpdateProgress(ctx, f.student, lesson, UpdateProgressInput{Status: status})
		require.NoError(t, err)
	}

	out, err := f.svc.CourseProgress(ctx, f.student, f.course)
	require.NoError(t, err)
	assert.Len(t, out.Progress, 4)
	assert.Equal(t, models.ProgressStats{Total: 5, Completed: 3, Percentage: 60}, out.Stats)

	other, err := f.svc.CourseProgress(ctx, primitive.NewObjectID(), f.course)
	require.NoError(t, err)
	assert.Empty(t, other.Progress)
	assert.Equal(t, 0, other.Stats.Percentage)
}

func TestMyProgressNewestFirst(t *testing.T) {
	f := newProgressFixture(2)
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	f.svc.Now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	for _, lesson := range f.lessons {
		_, err := f.svc.UpdateProgress(context.Background(), f.student, lesson, UpdateProgressInput{})
		require.NoError(t, err)
	}

	rows, err := f.svc.MyProgress(context.Background(), f.student)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, f.lessons[1], rows[0].Lesson)
}

func TestCompletionPercentage(t *testing.T) {
	tests := []struct {
		completed, total int64
		want             int
	}{
		{0, 0, 0},
		{3, 5, 60},
		{5, 5, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
	}
	for _, tt := range tests {
		if got := CompletionPercentage(tt.completed, tt.total); got != tt.want {
			t.Errorf("CompletionPercentage(%d, %d) = %d, want %d", tt.completed, tt.total, got, tt.want)
		}
	}
}
