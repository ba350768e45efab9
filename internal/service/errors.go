package service

import (
	"errors"

	"elearning-service/internal/models"
)

// Sentinel errors for the failure signals handlers translate to HTTP
// statuses: not found, conflict, forbidden and invalid input.
var (
	ErrCourseNotFound = errors.New("course not found")
	ErrLessonNotFound = errors.New("lesson not found")
	ErrQuizNotFound   = errors.New("quiz not found")
	ErrResultNotFound = errors.New("result not found")
	ErrUserNotFound   = errors.New("user not found")

	ErrQuizExists = errors.New("a quiz already exists for this course")

	ErrNoAnswers     = errors.New("no answers submitted")
	ErrMissingFields = errors.New("course and quiz questions are required")

	ErrQuizNotPassed       = errors.New("course is not complete: quiz not passed or taken")
	ErrLessonsIncomplete   = errors.New("course is not complete: all lessons have not been marked complete")
	ErrMissingIdentity     = errors.New("request is missing a resolved identity")
	ErrIdentityMissingData = errors.New("identity is missing an email address")
)

// AlreadySubmittedError carries the conflicting result so the caller can
// recover without re-querying.
type AlreadySubmittedError struct {
	Existing *models.QuizResult
}

func (e *AlreadySubmittedError) Error() string {
	return "quiz already submitted"
}
