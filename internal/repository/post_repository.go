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

type PostRepository struct {
	Col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{Col: db.Collection("communityposts")}
}

func (r *PostRepository) InitializeIndexes(ctx context.Context) error {
	_, err := r.Col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "parentPost", Value: 1}, {Key: "course", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "parentPost", Value: 1}, {Key: "createdAt", Value: 1}}},
	})
	return err
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	_, err := r.Col.InsertOne(ctx, post)
	return err
}

// FindByID returns nil, nil when the post does not exist.
func (r *PostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindThreads returns top-level posts, newest first, optionally limited to one course.
func (r *PostRepository) FindThreads(ctx context.Context, course *primitive.ObjectID, limit int64) ([]models.Post, error) {
	filter := bson.M{"parentPost": nil}
	if course != nil {
		filter["course"] = *course
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, filter, opts)
}

// FindReplies returns the replies to every listed thread, oldest first.
func (r *PostRepository) FindReplies(ctx context.Context, parents []primitive.ObjectID) ([]models.Post, error) {
	if len(parents) == 0 {
		return []models.Post{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"parentPost": bson.M{"$in": parents}}, opts)
}

func (r *PostRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Post, error) {
	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	posts := []models.Post{}
	for cur.Next(ctx) {
		var p models.Post
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, cur.Err()
}

// ToggleLike adds user to the post's likes, or removes them if already present, in
// a single update. It returns nil, nil when the post does not exist.
func (r *PostRepository) ToggleLike(ctx context.Context, id, user primitive.ObjectID) (*models.Post, error) {
	likes := bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"likes": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{user, likes}},
				bson.M{"$filter": bson.M{
					"input": likes,
					"cond":  bson.M{"$ne": bson.A{"$$this", user}},
				}},
				bson.M{"$concatArrays": bson.A{likes, bson.A{user}}},
			}},
			"updatedAt": "$$NOW",
		}}},
	}

	var post models.Post
	err := r.Col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeleteThread removes the post and every reply to it.
func (r *PostRepository) DeleteThread(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.Col.DeleteMany(ctx, bson.M{"parentPost": id}); err != nil {
		return err
	}
	_, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
