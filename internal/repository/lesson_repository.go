package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// LessonRepository resolves the lesson -> module -> course chain. Lessons and modules
// are written by course management; this side only reads them.
type LessonRepository struct {
	Col     *mongo.Collection
	Modules *mongo.Collection
}

func NewLessonRepository(db *mongo.Database) *LessonRepository {
	return &LessonRepository{
		Col:     db.Collection("lessons"),
		Modules: db.Collection("modules"),
	}
}

// CourseOf returns the course a lesson belongs to. found is false when the lesson
// does not exist or its module is gone.
func (r *LessonRepository) CourseOf(ctx context.Context, lessonID primitive.ObjectID) (course primitive.ObjectID, found bool, err error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": lessonID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "modules",
			"localField":   "module",
			"foreignField": "_id",
			"as":           "module",
		}}},
		{{Key: "$unwind", Value: "$module"}},
		{{Key: "$project", Value: bson.M{"course": "$module.course"}}},
	}

	cur, err := r.Col.Aggregate(ctx, pipeline)
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		return primitive.NilObjectID, false, cur.Err()
	}
	var row struct {
		Course primitive.ObjectID `bson:"course"`
	}
	if err := cur.Decode(&row); err != nil {
		return primitive.NilObjectID, false, err
	}
	return row.Course, true, nil
}

// CountByCourse counts lessons across every module of the course.
func (r *LessonRepository) CountByCourse(ctx context.Context, courseID primitive.ObjectID) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"course": courseID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "lessons",
			"localField":   "_id",
			"foreignField": "module",
			"as":           "lessons",
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": bson.M{"$size": "$lessons"}},
		}}},
	}

	cur, err := r.Modules.Aggregate(ctx, pipeline)
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
