package repository

import (
	"context"
	"fmt"

	"gram-vidya/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProgressRepository struct {
	Col *mongo.Collection
}

func NewProgressRepository(db *mongo.Database) *ProgressRepository {
	return &ProgressRepository{Col: db.Collection("progresses")}
}

// InitializeIndexes creates the (student, lesson) unique index that keeps one row per pair.
func (r *ProgressRepository) InitializeIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "student", Value: 1},
				{Key: "lesson", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "course", Value: 1},
				{Key: "status", Value: 1},
				{Key: "student", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "student", Value: 1},
				{Key: "updatedAt", Value: -1},
			},
		},
	}

	if _, err := r.Col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create progress indexes: %w", err)
	}
	return nil
}

// Upsert applies the update to the (student, lesson) row in one round trip and returns
// the stored document. Two concurrent first writes can still race on the unique index;
// the loser gets ErrDuplicate and may simply call Upsert again.
func (r *ProgressRepository) Upsert(ctx context.Context, student, lesson, course primitive.ObjectID, u models.ProgressUpdate) (*models.Progress, error) {
	set := bson.M{
		"updatedAt": u.At,
	}
	setOnInsert := bson.M{
		"course":    course,
		"createdAt": u.At,
	}

	if u.Status != "" {
		set["status"] = u.Status
	} else {
		setOnInsert["status"] = models.StatusInProgress
	}
	if u.WatchTime != nil && *u.WatchTime > 0 {
		set["watchTime"] = *u.WatchTime
	} else {
		setOnInsert["watchTime"] = 0
	}
	if u.Status == models.StatusCompleted {
		set["completedAt"] = u.At
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var progress models.Progress
	err := r.Col.FindOneAndUpdate(ctx,
		bson.M{"student": student, "lesson": lesson},
		bson.M{"$set": set, "$setOnInsert": setOnInsert},
		opts,
	).Decode(&progress)
	if err != nil {
		return nil, wrapWriteErr(err)
	}
	return &progress, nil
}

func (r *ProgressRepository) FindByStudentAndCourse(ctx context.Context, student, course primitive.ObjectID) ([]models.Progress, error) {
	return r.find(ctx, bson.M{"student": student, "course": course}, options.Find())
}

func (r *ProgressRepository) FindByStudent(ctx context.Context, student primitive.ObjectID) ([]models.Progress, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	return r.find(ctx, bson.M{"student": student}, opts)
}

func (r *ProgressRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Progress, error) {
	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	rows := []models.Progress{}
	for cur.Next(ctx) {
		var p models.Progress
		if err := cur.Decode(&p); err != nil {
			return nil, err
		}
		rows = append(rows, p)
	}
	return rows, cur.Err()
}

// CountCompletedByStudents returns, for each given student, how many lessons of the
// course they have completed. Students with no completed lesson are absent from the map.
func (r *ProgressRepository) CountCompletedByStudents(ctx context.Context, course primitive.ObjectID, students []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	counts := make(map[primitive.ObjectID]int64, len(students))
	if len(students) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"course":  course,
			"status":  models.StatusCompleted,
			"student": bson.M{"$in": students},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$student",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cur, err := r.Col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID    primitive.ObjectID `bson:"_id"`
			Count int64              `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.ID] = row.Count
	}
	return counts, cur.Err()
}

func (r *ProgressRepository) CountCompleted(ctx context.Context) (int64, error) {
	return r.Col.CountDocuments(ctx, bson.M{"status": models.StatusCompleted})
}
