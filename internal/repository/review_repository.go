package repository

import (
	"context"
	"errors"

	"gram-vidya/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReviewRepository struct {
	Col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{Col: db.Collection("reviews")}
}

func (r *ReviewRepository) InitializeIndexes(ctx context.Context) error {
	_, err := r.Col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "course", Value: 1}, {Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "course", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	return err
}

// Create fails with ErrDuplicate when the user already reviewed the course.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	_, err := r.Col.InsertOne(ctx, review)
	return wrapWriteErr(err)
}

// FindByID returns nil, nil when the review does not exist.
func (r *ReviewRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) FindByCourse(ctx context.Context, course primitive.ObjectID) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.Col.Find(ctx, bson.M{"course": course}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	reviews := []models.Review{}
	for cur.Next(ctx) {
		var rv models.Review
		if err := cur.Decode(&rv); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, cur.Err()
}

func (r *ReviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Rating averages every review of the course. A course without reviews rates 0.
func (r *ReviewRepository) Rating(ctx context.Context, course primitive.ObjectID) (models.CourseRating, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"course": course}}},
		{{Key: "$group", Value: bson.M{
			"_id":        "$course",
			"avgRating":  bson.M{"$avg": "$rating"},
			"numReviews": bson.M{"$sum": 1},
		}}},
	}
	var rating models.CourseRating
	cur, err := r.Col.Aggregate(ctx, pipeline)
	if err != nil {
		return rating, err
	}
	defer cur.Close(ctx)
	if cur.Next(ctx) {
		if err := cur.Decode(&rating); err != nil {
			return rating, err
		}
	}
	return rating, cur.Err()
}
