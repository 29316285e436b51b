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

const EventReviewCreated = "review.created"

type AddReviewInput struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=500"`
}

type CourseReviews struct {
	Reviews []models.ReviewView `json:"reviews"`
	Rating  models.CourseRating `json:"rating"`
}

type ReviewService struct {
	Reviews   ReviewStore
	Courses   CourseStore
	Users     UserStore
	Events    Publisher
	Validator *Validator
	Now       func() time.Time
}

func NewReviewService(reviews ReviewStore, courses CourseStore, users UserStore, events Publisher, v *Validator) *ReviewService {
	return &ReviewService{Reviews: reviews, Courses: courses, Users: users, Events: events, Validator: v, Now: time.Now}
}

// AddReview stores the actor's single review of the course and refreshes the
// course rating.
func (s *ReviewService) AddReview(ctx context.Context, actor Actor, courseID primitive.ObjectID, in AddReviewInput) (*models.Review, error) {
	if err := s.Validator.Struct(in); err != nil {
		return nil, err
	}
	course, err := s.Courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return nil, notFound("Course")
	}

	now := s.Now().UTC()
	review := &models.Review{
		ID:        primitive.NewObjectID(),
		Course:    courseID,
		User:      actor.ID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newValidationError("You have already reviewed this course")
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	metrics.ReviewsCreated.Inc()
	s.refreshRating(ctx, courseID)

	if s.Events != nil {
		payload := map[string]interface{}{
			"reviewId": review.ID.Hex(),
			"courseId": courseID.Hex(),
			"userId":   actor.ID.Hex(),
			"rating":   review.Rating,
		}
		if err := s.Events.Publish(ctx, EventReviewCreated, payload); err != nil {
			glog.Warningf("Failed to publish %s: %v", EventReviewCreated, err)
		}
	}
	return review, nil
}

// CourseReviews lists reviews newest first with the reviewer's name.
func (s *ReviewService) CourseReviews(ctx context.Context, courseID primitive.ObjectID) (*CourseReviews, error) {
	reviews, err := s.Reviews.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	ids := make([]primitive.ObjectID, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.User)
	}
	users, err := s.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load reviewers: %w", err)
	}

	out := &CourseReviews{Reviews: make([]models.ReviewView, 0, len(reviews))}
	var sum int
	for _, r := range reviews {
		u := users[r.User]
		out.Reviews = append(out.Reviews, models.ReviewView{
			ID:        r.ID,
			Course:    r.Course,
			User:      models.Author{ID: r.User, Name: u.Name, Role: u.Role},
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
		sum += r.Rating
	}
	if len(reviews) > 0 {
		out.Rating = models.CourseRating{
			AvgRating:  RoundRating(float64(sum) / float64(len(reviews))),
			NumReviews: int64(len(reviews)),
		}
	}
	return out, nil
}

// DeleteReview removes a review. Only its author or an admin may.
func (s *ReviewService) DeleteReview(ctx context.Context, actor Actor, id primitive.ObjectID) error {
	review, err := s.Reviews.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load review: %w", err)
	}
	if review == nil {
		return notFound("Review")
	}
	if review.User != actor.ID && !actor.IsAdmin() {
		return forbidden("delete this review")
	}
	if err := s.Reviews.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	s.refreshRating(ctx, review.Course)
	return nil
}

// refreshRating recomputes the course aggregate. The review write already
// succeeded, so a failure here is only logged.
func (s *ReviewService) refreshRating(ctx context.Context, courseID primitive.ObjectID) {
	rating, err := s.Reviews.Rating(ctx, courseID)
	if err != nil {
		glog.Errorf("Failed to compute rating for course %s: %v", courseID.Hex(), err)
		return
	}
	rating.AvgRating = RoundRating(rating.AvgRating)
	if err := s.Courses.SetRating(ctx, courseID, rating); err != nil {
		glog.Errorf("Failed to store rating for course %s: %v", courseID.Hex(), err)
	}
}

// RoundRating keeps one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
