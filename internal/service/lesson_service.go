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

type LessonService struct {
	LessonRepo   *repository.LessonRepository
	CourseRepo   *repository.CourseRepository
	ProgressRepo *repository.ProgressRepository
}

func NewLessonService(
	lessonRepo *repository.LessonRepository,
	courseRepo *repository.CourseRepository,
	progressRepo *repository.ProgressRepository,
) *LessonService {
	return &LessonService{
		LessonRepo:   lessonRepo,
		CourseRepo:   courseRepo,
		ProgressRepo: progressRepo,
	}
}

// CreateLesson inserts the lesson and links it into the owning course's
// lesson list.
func (s *LessonService) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	if _, err := s.CourseRepo.FindByID(ctx, lesson.Course); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrCourseNotFound
		}
		return err
	}
	if err := s.LessonRepo.Create(ctx, lesson); err != nil {
		return err
	}
	return s.CourseRepo.AddLesson(ctx, lesson.Course, lesson.ID)
}

func (s *LessonService) GetLesson(ctx context.Context, id primitive.ObjectID) (*models.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	return lesson, nil
}

func (s *LessonService) UpdateLesson(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Lesson, error) {
	if _, err := s.LessonRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLessonNotFound
		}
		return nil, err
	}
	if err := s.LessonRepo.Update(ctx, id, update); err != nil {
		return nil, err
	}
	return s.LessonRepo.FindByID(ctx, id)
}

// DeleteLesson removes the lesson and scrubs its id from the owning
// course's lesson list and from every progress record, so no dangling
// references survive.
func (s *LessonService) DeleteLesson(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.LessonRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrLessonNotFound
		}
		return err
	}

	if err := s.CourseRepo.PullLesson(ctx, id); err != nil {
		return err
	}
	if err := s.ProgressRepo.PullLessonFromAll(ctx, id); err != nil {
		return err
	}

	deleted, err := s.LessonRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrLessonNotFound
	}
	return nil
}
