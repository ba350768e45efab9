package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Progress struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	User             primitive.ObjectID   `bson:"user" json:"user"`
	Course           primitive.ObjectID   `bson:"course" json:"course"`
	CompletedLessons []primitive.ObjectID `bson:"completed_lessons" json:"completedLessons"`
	CreatedAt        time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updated_at" json:"updatedAt"`
}

// CourseSummary carries just enough course data for a caller to compute
// percentage complete from a progress record.
type CourseSummary struct {
	ID      primitive.ObjectID   `json:"id"`
	Title   string               `json:"title"`
	Lessons []primitive.ObjectID `json:"lessons"`
}

// ProgressWithCourse is a progress record joined with its course summary.
type ProgressWithCourse struct {
	Progress
	CourseInfo *CourseSummary `json:"courseInfo"`
}
