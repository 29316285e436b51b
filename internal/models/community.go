package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a discussion board message. Top-level posts have no ParentPost;
// replies point at the thread they belong to and inherit its course.
type Post struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	User       primitive.ObjectID   `bson:"user" json:"user"`
	Message    string               `bson:"message" json:"message"`
	Course     *primitive.ObjectID  `bson:"course,omitempty" json:"course,omitempty"`
	ParentPost *primitive.ObjectID  `bson:"parentPost" json:"parentPost"`
	Likes      []primitive.ObjectID `bson:"likes" json:"likes"`
	IsAnswer   bool                 `bson:"isAnswer" json:"isAnswer"`
	CreatedAt  time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time            `bson:"updatedAt" json:"updatedAt"`
}

type Author struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
	Role string             `json:"role"`
}

type PostView struct {
	ID         primitive.ObjectID   `json:"_id"`
	User       Author               `json:"user"`
	Message    string               `json:"message"`
	Course     *primitive.ObjectID  `json:"course,omitempty"`
	ParentPost *primitive.ObjectID  `json:"parentPost"`
	Likes      []primitive.ObjectID `json:"likes"`
	IsAnswer   bool                 `json:"isAnswer"`
	CreatedAt  time.Time            `json:"createdAt"`
	Replies    []PostView           `json:"replies,omitempty"`
}

func (p Post) View(author Author) PostView {
	likes := p.Likes
	if likes == nil {
		likes = []primitive.ObjectID{}
	}
	return PostView{
		ID:         p.ID,
		User:       author,
		Message:    p.Message,
		Course:     p.Course,
		ParentPost: p.ParentPost,
		Likes:      likes,
		IsAnswer:   p.IsAnswer,
		CreatedAt:  p.CreatedAt,
	}
}
