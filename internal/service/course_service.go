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

type CourseService struct {
	CourseRepo   *repository.CourseRepository
	LessonRepo   *repository.LessonRepository
	QuizRepo     *repository.QuizRepository
	ResultRepo   *repository.ResultRepository
	ProgressRepo *repository.ProgressRepository
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	quizRepo *repository.QuizRepository,
	resultRepo *repository.ResultRepository,
	progressRepo *repository.ProgressRepository,
) *CourseService {
	return &CourseService{
		CourseRepo:   courseRepo,
		LessonRepo:   lessonRepo,
		QuizRepo:     quizRepo,
		ResultRepo:   resultRepo,
		ProgressRepo: progressRepo,
	}
}

// CourseWithLessons is a course with its lesson documents expanded.
type CourseWithLessons struct {
	models.Course
	LessonDetails []models.Lesson `json:"lessonDetails"`
}

func (s *CourseService) ListCourses(ctx context.Context) ([]CourseWithLessons, error) {
	courses, err := s.CourseRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	expanded := make([]CourseWithLessons, 0, len(courses))
	for _, c := range courses {
		lessons, err := s.LessonRepo.FindByCourse(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		expanded = append(expanded, CourseWithLessons{Course: c, LessonDetails: lessons})
	}
	return expanded, nil
}

func (s *CourseService) GetCourse(ctx context.Context, id primitive.ObjectID) (*CourseWithLessons, error) {
	course, err := s.CourseRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	lessons, err := s.LessonRepo.FindByCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CourseWithLessons{Course: *course, LessonDetails: lessons}, nil
}

func (s *CourseService) CreateCourse(ctx context.Context, course *models.Course) error {
	return s.CourseRepo.Create(ctx, course)
}

func (s *CourseService) UpdateCourse(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Course, error) {
	if _, err := s.CourseRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if err := s.CourseRepo.Update(ctx, id, update); err != nil {
		return nil, err
	}
	return s.CourseRepo.FindByID(ctx, id)
}

// DeleteCourse removes the course and everything hanging off it: lessons,
// the quiz, quiz results and progress records. Dependents are deleted
// before the course itself. The cascade is not transactional; a failure
// partway leaves dependents gone and the course still present, which a
// retry can finish.
func (s *CourseService) DeleteCourse(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.CourseRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrCourseNotFound
		}
		return err
	}

	if err := s.LessonRepo.DeleteByCourse(ctx, id); err != nil {
		return err
	}
	if err := s.QuizRepo.DeleteByCourse(ctx, id); err != nil {
		return err
	}
	if err := s.ResultRepo.DeleteByCourse(ctx, id); err != nil {
		return err
	}
	if err := s.ProgressRepo.DeleteByCourse(ctx, id); err != nil {
		return err
	}

	deleted, err := s.CourseRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrCourseNotFound
	}
	return nil
}
