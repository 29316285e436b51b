package service

import (
	"context"
	"fmt"

	"github.com/golang/glog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const EventCourseEnrolled = "course.enrolled"

type CourseService struct {
	Courses CourseStore
	Events  Publisher
}

func NewCourseService(courses CourseStore, events Publisher) *CourseService {
	return &CourseService{Courses: courses, Events: events}
}

// Enroll adds the actor to the course. Enrolling twice is a no-op.
func (s *CourseService) Enroll(ctx context.Context, actor Actor, courseID primitive.ObjectID) error {
	found, err := s.Courses.Enroll(ctx, courseID, actor.ID)
	if err != nil {
		return fmt.Errorf("enroll: %w", err)
	}
	if !found {
		return notFound("Course")
	}
	if s.Events != nil {
		payload := map[string]interface{}{"courseId": courseID.Hex(), "studentId": actor.ID.Hex()}
		if err := s.Events.Publish(ctx, EventCourseEnrolled, payload); err != nil {
			glog.Warningf("Failed to publish %s: %v", EventCourseEnrolled, err)
		}
	}
	return nil
}
