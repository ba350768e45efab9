package service

import (
	"context"

	"elearning-service/internal/models"
	"elearning-service/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProgressService struct {
	ProgressRepo *repository.ProgressRepository
	CourseRepo   *repository.CourseRepository
}

func NewProgressService(progressRepo *repository.ProgressRepository, courseRepo *repository.CourseRepository) *ProgressService {
	return &ProgressService{ProgressRepo: progressRepo, CourseRepo: courseRepo}
}

// MarkLessonComplete adds the lesson to the user's completed set for the
// course. The upsert is atomic, so two concurrent first completions cannot
// produce duplicate progress records, and re-marking a lesson is a no-op.
func (s *ProgressService) MarkLessonComplete(ctx context.Context, userID, courseID, lessonID primitive.ObjectID) (*models.Progress, error) {
	return s.ProgressRepo.AddCompletedLesson(ctx, userID, courseID, lessonID)
}

// GetProgress returns every progress record for the user, each joined with
// the course title and lesson list so the caller can compute percentage
// complete. Enrollment correlation is left to the caller.
func (s *ProgressService) GetProgress(ctx context.Context, userID primitive.ObjectID) ([]models.ProgressWithCourse, error) {
	records, err := s.ProgressRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	courseIDs := make([]primitive.ObjectID, 0, len(records))
	for _, p := range records {
		courseIDs = append(courseIDs, p.Course)
	}
	courses, err := s.CourseRepo.FindByIDs(ctx, courseIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	joined := make([]models.ProgressWithCourse, 0, len(records))
	for _, p := range records {
		entry := models.ProgressWithCourse{Progress: p}
		if c, ok := byID[p.Course]; ok {
			entry.CourseInfo = &models.CourseSummary{
				ID:      c.ID,
				Title:   c.Title,
				Lessons: c.Lessons,
			}
		}
		joined = append(joined, entry)
	}
	return joined, nil
}
