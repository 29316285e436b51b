package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User, Course, Module and Lesson are owned by the course management side of the
// platform. This service only reads them, except for enrollment.

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Course struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title            string               `bson:"title" json:"title"`
	Teacher          primitive.ObjectID   `bson:"teacher" json:"teacher"`
	EnrolledStudents []primitive.ObjectID `bson:"enrolledStudents" json:"enrolledStudents"`
	IsPublished      bool                 `bson:"isPublished" json:"isPublished"`
	AvgRating        float64              `bson:"avgRating" json:"avgRating"`
	NumReviews       int64                `bson:"numReviews" json:"numReviews"`
}

// OwnedBy reports whether the actor may manage the course.
func (c Course) OwnedBy(userID primitive.ObjectID, role string) bool {
	return role == RoleAdmin || c.Teacher == userID
}

func (c Course) IsEnrolled(userID primitive.ObjectID) bool {
	for _, id := range c.EnrolledStudents {
		if id == userID {
			return true
		}
	}
	return false
}

type Module struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title  string             `bson:"title" json:"title"`
	Course primitive.ObjectID `bson:"course" json:"course"`
	Order  int                `bson:"order" json:"order"`
}

type Lesson struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title  string             `bson:"title" json:"title"`
	Module primitive.ObjectID `bson:"module" json:"module"`
	Order  int                `bson:"order" json:"order"`
}

// StudentProgressRow is one line of the teacher-facing course analytics.
type StudentProgressRow struct {
	Student          StudentRef `json:"student"`
	CompletedLessons int64      `json:"completedLessons"`
	TotalLessons     int64      `json:"totalLessons"`
	Percentage       int        `json:"percentage"`
}

type SystemAnalytics struct {
	Users struct {
		Total    int64 `json:"total"`
		Students int64 `json:"students"`
		Teachers int64 `json:"teachers"`
	} `json:"users"`
	Courses struct {
		Total     int64 `json:"total"`
		Published int64 `json:"published"`
	} `json:"courses"`
	Enrollments      int64 `json:"enrollments"`
	CompletedLessons int64 `json:"completedLessons"`
}
