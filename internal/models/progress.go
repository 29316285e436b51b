package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not-started"
	StatusInProgress ProgressStatus = "in-progress"
	StatusCompleted  ProgressStatus = "completed"
)

func (s ProgressStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Progress struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Student     primitive.ObjectID `bson:"student" json:"student"`
	Lesson      primitive.ObjectID `bson:"lesson" json:"lesson"`
	Course      primitive.ObjectID `bson:"course" json:"course"`
	Status      ProgressStatus     `bson:"status" json:"status"`
	WatchTime   float64            `bson:"watchTime" json:"watchTime"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProgressUpdate is the change applied to one (student, lesson) row.
// An empty Status keeps the stored one; a nil WatchTime keeps the stored one.
type ProgressUpdate struct {
	Status    ProgressStatus
	WatchTime *float64
	At        time.Time
}

type ProgressStats struct {
	Total      int64 `json:"total"`
	Completed  int64 `json:"completed"`
	Percentage int   `json:"percentage"`
}
