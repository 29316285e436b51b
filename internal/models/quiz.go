package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Question struct {
	Question      string   `bson:"question" json:"question"`
	Options       []string `bson:"options" json:"options"`
	CorrectOption *int     `bson:"correctOption,omitempty" json:"correctOption,omitempty"`
}

type Quiz struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title        string             `bson:"title" json:"title"`
	Course       primitive.ObjectID `bson:"course" json:"course"`
	Questions    []Question         `bson:"questions" json:"questions"`
	Duration     int                `bson:"duration" json:"duration"`
	PassingMarks float64            `bson:"passingMarks" json:"passingMarks"`
	CreatedBy    primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// Redacted returns a copy of the quiz without the correct options.
func (q Quiz) Redacted() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		out.Questions[i] = Question{
			Question: question.Question,
			Options:  append([]string(nil), question.Options...),
		}
	}
	return out
}

// CorrectOptionAt returns the stored correct option for question i, or -1 when unset.
func (q Quiz) CorrectOptionAt(i int) int {
	if i < 0 || i >= len(q.Questions) || q.Questions[i].CorrectOption == nil {
		return -1
	}
	return *q.Questions[i].CorrectOption
}
