package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a course rating. A user reviews a course at most once.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Course    primitive.ObjectID `bson:"course" json:"course"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type ReviewView struct {
	ID        primitive.ObjectID `json:"_id"`
	Course    primitive.ObjectID `json:"course"`
	User      Author             `json:"user"`
	Rating    int                `json:"rating"`
	Comment   string             `json:"comment"`
	CreatedAt time.Time          `json:"createdAt"`
}

// CourseRating is denormalised onto the course after every review change.
type CourseRating struct {
	AvgRating  float64 `bson:"avgRating" json:"avgRating"`
	NumReviews int64   `bson:"numReviews" json:"numReviews"`
}
