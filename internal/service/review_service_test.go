package service

import (
	"context"
	"strings"
	"testing"

	"gram-vidya/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newReviewFixture() (*ReviewService, *memReviewStore, *memCourseStore, models.Course) {
	course := models.Course{ID: primitive.NewObjectID(), Title: "Organic Farming", Teacher: primitive.NewObjectID()}
	reviews := &memReviewStore{}
	courses := newMemCourseStore(course)
	users := &memUserStore{users: map[primitive.ObjectID]models.User{}}
	svc := NewReviewService(reviews, courses, users, &recordingPublisher{}, NewValidator())
	return svc, reviews, courses, course
}

func TestAddReviewOncePerCourse(t *testing.T) {
	svc, _, courses, course := newReviewFixture()
	ctx := context.Background()
	student := Actor{ID: primitive.NewObjectID(), Role: models.RoleStudent}

	review, err := svc.AddReview(ctx, student, course.ID, AddReviewInput{Rating: 4, Comment: "Practical lessons"})
	require.NoError(t, err)
	assert.Equal(t, 4, review.Rating)

	_, err = svc.AddReview(ctx, student, course.ID, AddReviewInput{Rating: 1, Comment: "Changed my mind"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "You have already reviewed this course", verr.Message)

	stored, err := courses.FindByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, stored.AvgRating)
	assert.Equal(t, int64(1), stored.NumReviews)
}

func TestAddReviewRejectsBadInput(t *testing.T) {
	svc, reviews, _, course := newReviewFixture()
	ctx := context.Background()
	student := Actor{ID: primitive.NewObjectID(), Role: models.RoleStudent}

	tests := []struct {
		name string
		in   AddReviewInput
	}{
		{"rating missing", AddReviewInput{Comment: "ok"}},
		{"rating above five", AddReviewInput{Rating: 6, Comment: "ok"}},
		{"comment missing", AddReviewInput{Rating: 3}},
		{"comment too long", AddReviewInput{Rating: 3, Comment: strings.Repeat("a", 501)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddReview(ctx, student, course.ID, tt.in)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}

	_, err := svc.AddReview(ctx, student, primitive.NewObjectID(), AddReviewInput{Rating: 3, Comment: "ok"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, reviews.reviews)
}

func TestRatingRoundsAndFollowsDeletes(t *testing.T) {
	svc, _, courses, course := newReviewFixture()
	ctx := context.Background()

	var ids []primitive.ObjectID
	for _, rating := range []int{5, 4, 4} {
		a := Actor{ID: primitive.NewObjectID(), Role: models.RoleStudent}
		r, err := svc.AddReview(ctx, a, course.ID, AddReviewInput{Rating: rating, Comment: "fine"})
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}

	stored, _ := courses.FindByID(ctx, course.ID)
	assert.Equal(t, 4.3, stored.AvgRating)
	assert.Equal(t, int64(3), stored.NumReviews)

	list, err := svc.CourseReviews(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, list.Reviews, 3)
	assert.Equal(t, ids[2], list.Reviews[0].ID, "newest first")
	assert.Equal(t, 4.3, list.Rating.AvgRating)

	admin := Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	require.NoError(t, svc.DeleteReview(ctx, admin, ids[0]))
	stored, _ = courses.FindByID(ctx, course.ID)
	assert.Equal(t, 4.0, stored.AvgRating)
	assert.Equal(t, int64(2), stored.NumReviews)
}

func TestDeleteReviewOwnership(t *testing.T) {
	svc, _, _, course := newReviewFixture()
	ctx := context.Background()
	author := Actor{ID: primitive.NewObjectID(), Role: models.RoleStudent}
	stranger := Actor{ID: primitive.NewObjectID(), Role: models.RoleTeacher}

	review, err := svc.AddReview(ctx, author, course.ID, AddReviewInput{Rating: 2, Comment: "Too fast"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteReview(ctx, stranger, review.ID), ErrForbidden)
	require.NoError(t, svc.DeleteReview(ctx, author, review.ID))
	assert.ErrorIs(t, svc.DeleteReview(ctx, author, review.ID), ErrNotFound)
}

func TestRoundRating(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{13.0 / 3, 4.3},
		{4.25, 4.3},
		{0, 0},
		{5, 5},
	}
	for _, tt := range tests {
		if got := RoundRating(tt.in); got != tt.want {
			t.Errorf("RoundRating(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
