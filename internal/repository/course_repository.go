package repository

import (
	"context"
	"errors"

	"gram-vidya/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CourseRepository struct {
	Col *mongo.Collection
}

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{Col: db.Collection("courses")}
}

// FindByID returns nil, nil when the course does not exist.
func (r *CourseRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	var course models.Course
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Enroll appends the student to enrolledStudents unless already present.
// It reports whether the course exists.
func (r *CourseRepository) Enroll(ctx context.Context, courseID, studentID primitive.ObjectID) (bool, error) {
	res, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": courseID},
		bson.M{"$addToSet": bson.M{"enrolledStudents": studentID}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *CourseRepository) Count(ctx context.Context, publishedOnly bool) (int64, error) {
	filter := bson.M{}
	if publishedOnly {
		filter["isPublished"] = true
	}
	return r.Col.CountDocuments(ctx, filter)
}

// CountEnrollments sums the size of every course's enrolledStudents array.
func (r *CourseRepository) CountEnrollments(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"total": bson.M{"$sum": bson.M{
				"$size": bson.M{"$ifNull": bson.A{"$enrolledStudents", bson.A{}}},
			}},
		}}},
	}
	cur, err := r.Col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var out struct {
		Total int64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&out); err != nil {
			return 0, err
		}
	}
	return out.Total, cur.Err()
}

// SetRating stores the review aggregate on the course.
func (r *CourseRepository) SetRating(ctx context.Context, courseID primitive.ObjectID, rating models.CourseRating) error {
	_, err := r.Col.UpdateOne(ctx,
		bson.M{"_id": courseID},
		bson.M{"$set": bson.M{"avgRating": rating.AvgRating, "numReviews": rating.NumReviews}},
	)
	return err
}
