package service

import (
	"context"
	"errors"

	"elearning-service/internal/models"
	"elearning-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserService struct {
	UserRepo   *repository.UserRepository
	CourseRepo *repository.CourseRepository
}

func NewUserService(userRepo *repository.UserRepository, courseRepo *repository.CourseRepository) *UserService {
	return &UserService{UserRepo: userRepo, CourseRepo: courseRepo}
}

// Identity is what the identity provider asserts about the caller.
type Identity struct {
	ExternalID string
	Email      string
	Name       string
	Role       string
}

// Profile is a user with enrolled courses expanded.
type Profile struct {
	models.User
	EnrolledCourseDetails []models.Course `json:"enrolledCourseDetails"`
}

// SyncUser mirrors the external identity into the local user record:
// provisioned on first sight, and updated whenever the provider's name,
// email or role drifts from what is stored.
func (s *UserService) SyncUser(ctx context.Context, identity Identity) (*models.User, error) {
	if identity.ExternalID == "" {
		return nil, ErrMissingIdentity
	}
	if identity.Email == "" {
		return nil, ErrIdentityMissingData
	}
	if identity.Role == "" {
		identity.Role = models.RoleUser
	}
	if identity.Name == "" {
		identity.Name = identity.Email
	}

	user, err := s.UserRepo.FindByExternalID(ctx, identity.ExternalID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if user == nil {
		// The account may predate the external id link.
		user, err = s.UserRepo.FindByEmail(ctx, identity.Email)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
	}

	if user == nil {
		user = &models.User{
			ExternalID: identity.ExternalID,
			Name:       identity.Name,
			Email:      identity.Email,
			Role:       identity.Role,
		}
		if err := s.UserRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	update := bson.M{}
	if user.ExternalID != identity.ExternalID {
		user.ExternalID = identity.ExternalID
		update["external_id"] = identity.ExternalID
	}
	if user.Role != identity.Role {
		user.Role = identity.Role
		update["role"] = identity.Role
	}
	if user.Name != identity.Name {
		user.Name = identity.Name
		update["name"] = identity.Name
	}
	if user.Email != identity.Email {
		user.Email = identity.Email
		update["email"] = identity.Email
	}
	if len(update) > 0 {
		if err := s.UserRepo.Update(ctx, user.ID, update); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*Profile, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	courses, err := s.CourseRepo.FindByIDs(ctx, user.EnrolledCourses)
	if err != nil {
		return nil, err
	}
	return &Profile{User: *user, EnrolledCourseDetails: courses}, nil
}

func (s *UserService) GetEnrolledCourses(ctx context.Context, userID primitive.ObjectID) ([]models.Course, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.CourseRepo.FindByIDs(ctx, user.EnrolledCourses)
}

// CheckEnrollment is a plain membership test against the enrolled set.
func (s *UserService) CheckEnrollment(ctx context.Context, userID, courseID primitive.ObjectID) (bool, error) {
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	return user.IsEnrolled(courseID), nil
}

// Enroll adds the course to the user's enrolled set. Enrolling in a course
// the user already has is a no-op success returning the current profile.
func (s *UserService) Enroll(ctx context.Context, userID, courseID primitive.ObjectID) (*Profile, error) {
	if _, err := s.CourseRepo.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsEnrolled(courseID) {
		if err := s.UserRepo.AddEnrolledCourse(ctx, userID, courseID); err != nil {
			return nil, err
		}
	}
	return s.GetProfile(ctx, userID)
}
