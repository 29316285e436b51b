package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuizResult struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Quiz           primitive.ObjectID `bson:"quiz" json:"quiz"`
	Student        primitive.ObjectID `bson:"student" json:"student"`
	Score          int                `bson:"score" json:"score"`
	TotalQuestions int                `bson:"totalQuestions" json:"totalQuestions"`
	Percentage     float64            `bson:"percentage" json:"percentage"`
	Passed         bool               `bson:"passed" json:"passed"`
	AttemptedAt    time.Time          `bson:"attemptedAt" json:"attemptedAt"`
}

// StudentRef is the populated student shown next to a result.
type StudentRef struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

// ResultView is a QuizResult with the student populated.
type ResultView struct {
	ID             primitive.ObjectID `json:"_id"`
	Quiz           primitive.ObjectID `json:"quiz"`
	Student        StudentRef         `json:"student"`
	Score          int                `json:"score"`
	TotalQuestions int                `json:"totalQuestions"`
	Percentage     float64            `json:"percentage"`
	Passed         bool               `json:"passed"`
	AttemptedAt    time.Time          `json:"attemptedAt"`
}

// AttemptSummary collapses every attempt of one student on one quiz.
type AttemptSummary struct {
	Student          StudentRef `json:"student"`
	Attempts         int        `json:"attempts"`
	BestPercentage   float64    `json:"bestPercentage"`
	LatestPercentage float64    `json:"latestPercentage"`
	Passed           bool       `json:"passed"`
	LastAttemptedAt  time.Time  `json:"lastAttemptedAt"`
}
