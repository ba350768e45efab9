package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleGuest = "guest"
)

type User struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ExternalID       string               `bson:"external_id" json:"externalId"`
	Name             string               `bson:"name" json:"name"`
	Email            string               `bson:"email" json:"email"`
	Role             string               `bson:"role" json:"role"`
	EnrolledCourses  []primitive.ObjectID `bson:"enrolled_courses" json:"enrolledCourses"`
	CompletedCourses []primitive.ObjectID `bson:"completed_courses" json:"completedCourses"`
	CreatedAt        time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time            `bson:"updated_at" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsEnrolled reports membership of courseID in the enrolled set.
func (u *User) IsEnrolled(courseID primitive.ObjectID) bool {
	for _, id := range u.EnrolledCourses {
		if id == courseID {
			return true
		}
	}
	return false
}

func (u *User) HasCompleted(courseID primitive.ObjectID) bool {
	for _, id := range u.CompletedCourses {
		if id == courseID {
			return true
		}
	}
	return false
}
