package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserMembership(t *testing.T) {
	enrolled := primitive.NewObjectID()
	completed := primitive.NewObjectID()
	other := primitive.NewObjectID()

	user := &User{
		Role:             RoleUser,
		EnrolledCourses:  []primitive.ObjectID{enrolled},
		CompletedCourses: []primitive.ObjectID{completed},
	}

	if !user.IsEnrolled(enrolled) {
		t.Error("Expected user to be enrolled")
	}
	if user.IsEnrolled(other) {
		t.Error("Expected user not to be enrolled in an unknown course")
	}
	if !user.HasCompleted(completed) {
		t.Error("Expected user to have completed the course")
	}
	if user.HasCompleted(other) {
		t.Error("Expected user not to have completed an unknown course")
	}
}

func TestUserIsAdmin(t *testing.T) {
	for _, tc := range []struct {
		role  string
		admin bool
	}{
		{RoleAdmin, true},
		{RoleUser, false},
		{RoleGuest, false},
	} {
		user := &User{Role: tc.role}
		if user.IsAdmin() != tc.admin {
			t.Errorf("Role %q: expected IsAdmin=%v", tc.role, tc.admin)
		}
	}
}
