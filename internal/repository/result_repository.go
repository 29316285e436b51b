package repository

import (
	"context"
	"time"

	"gram-vidya/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ResultRepository struct {
	Col *mongo.Collection
}

func NewResultRepository(db *mongo.Database) *ResultRepository {
	return &ResultRepository{Col: db.Collection("quizresults")}
}

func (r *ResultRepository) InitializeIndexes(ctx context.Context) error {
	_, err := r.Col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "quiz", Value: 1}, {Key: "attemptedAt", Value: -1}},
	})
	return err
}

func (r *ResultRepository) Create(ctx context.Context, result *models.QuizResult) error {
	if result.ID.IsZero() {
		result.ID = primitive.NewObjectID()
	}
	_, err := r.Col.InsertOne(ctx, result)
	return err
}

type resultRow struct {
	ID             primitive.ObjectID `bson:"_id"`
	Quiz           primitive.ObjectID `bson:"quiz"`
	Student        primitive.ObjectID `bson:"student"`
	StudentName    string             `bson:"studentName"`
	StudentEmail   string             `bson:"studentEmail"`
	Score          int                `bson:"score"`
	TotalQuestions int                `bson:"totalQuestions"`
	Percentage     float64            `bson:"percentage"`
	Passed         bool               `bson:"passed"`
	AttemptedAt    time.Time          `bson:"attemptedAt"`
}

// FindByQuiz returns every attempt on the quiz, newest first, with the student's
// name and email joined from users.
func (r *ResultRepository) FindByQuiz(ctx context.Context, quizID primitive.ObjectID) ([]models.ResultView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"quiz": quizID}}},
		{{Key: "$sort", Value: bson.D{{Key: "attemptedAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "student",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$user", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$addFields", Value: bson.M{
			"studentName":  "$user.name",
			"studentEmail": "$user.email",
		}}},
		{{Key: "$project", Value: bson.M{"user": 0}}},
	}

	cur, err := r.Col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	results := []models.ResultView{}
	for cur.Next(ctx) {
		var row resultRow
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		results = append(results, models.ResultView{
			ID:             row.ID,
			Quiz:           row.Quiz,
			Student:        models.StudentRef{ID: row.Student, Name: row.StudentName, Email: row.StudentEmail},
			Score:          row.Score,
			TotalQuestions: row.TotalQuestions,
			Percentage:     row.Percentage,
			Passed:         row.Passed,
			AttemptedAt:    row.AttemptedAt,
		})
	}
	return results, cur.Err()
}

