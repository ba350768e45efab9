package service

import (
	"context"
	"errors"

	"elearning-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Narrow store views of the repositories the quiz lifecycle touches. The
// concrete repositories satisfy them; tests substitute in-memory fakes to
// drive the attempt state machine without a live database.
type QuizStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Quiz, error)
	FindByCourse(ctx context.Context, courseID primitive.ObjectID) (*models.Quiz, error)
	Create(ctx context.Context, quiz *models.Quiz) error
	Update(ctx context.Context, id primitive.ObjectID, update bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

type ResultStore interface {
	FindByUserAndQuiz(ctx context.Context, userID, quizID primitive.ObjectID) (*models.QuizResult, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.QuizResult, error)
	Create(ctx context.Context, result *models.QuizResult) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByQuiz(ctx context.Context, quizID primitive.ObjectID) error
}

type CourseStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error)
}

type ProgressStore interface {
	FindByUserAndCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*models.Progress, error)
}

type CompletionStore interface {
	AddCompletedCourse(ctx context.Context, userID, courseID primitive.ObjectID) error
}

// QuizService owns quiz storage, answer grading, the one-result-per-user
// invariant with retake-on-fail semantics, and course completion.
type QuizService struct {
	QuizRepo     QuizStore
	ResultRepo   ResultStore
	CourseRepo   CourseStore
	ProgressRepo ProgressStore
	UserRepo     CompletionStore
}

func NewQuizService(
	quizRepo QuizStore,
	resultRepo ResultStore,
	courseRepo CourseStore,
	progressRepo ProgressStore,
	userRepo CompletionStore,
) *QuizService {
	return &QuizService{
		QuizRepo:     quizRepo,
		ResultRepo:   resultRepo,
		CourseRepo:   courseRepo,
		ProgressRepo: progressRepo,
		UserRepo:     userRepo,
	}
}

// QuizView is the quiz payload for a reader. FullQuestions is only set when
// the reader holds a passing result and may review correct answers.
type QuizView struct {
	ID            primitive.ObjectID         `json:"id"`
	Title         string                     `json:"title"`
	Course        primitive.ObjectID         `json:"course"`
	Questions     []models.SanitizedQuestion `json:"questions"`
	FullQuestions []models.Question          `json:"fullQuestions,omitempty"`
}

// Submission is the outcome of grading a quiz submission. The full question
// set is returned for immediate review regardless of pass or fail.
type Submission struct {
	Result          *models.QuizResult `json:"result"`
	ScorePercentage int                `json:"scorePercentage"`
	Passed          bool               `json:"passed"`
	FullQuestions   []models.Question  `json:"fullQuestions"`
}

func (s *QuizService) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	if quiz.Course.IsZero() || len(quiz.Questions) == 0 {
		return ErrMissingFields
	}
	existing, err := s.QuizRepo.FindByCourse(ctx, quiz.Course)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	if existing != nil {
		return ErrQuizExists
	}
	if err := s.QuizRepo.Create(ctx, quiz); err != nil {
		// The unique index on course is the authoritative guard; a
		// concurrent create surfaces here as a duplicate key.
		if mongo.IsDuplicateKeyError(err) {
			return ErrQuizExists
		}
		return err
	}
	return nil
}

func (s *QuizService) UpdateQuiz(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Quiz, error) {
	if _, err := s.QuizRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if err := s.QuizRepo.Update(ctx, id, update); err != nil {
		// Retargeting the quiz at a course that already has one trips
		// the unique course index.
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrQuizExists
		}
		return nil, err
	}
	return s.QuizRepo.FindByID(ctx, id)
}

// DeleteQuiz removes the quiz and cascades to its results.
func (s *QuizService) DeleteQuiz(ctx context.Context, id primitive.ObjectID) error {
	deleted, err := s.QuizRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrQuizNotFound
	}
	return s.ResultRepo.DeleteByQuiz(ctx, id)
}

// GetQuizForCourse looks up the course's quiz and the caller's prior result.
// A failing prior result is deleted on the spot: the read is the transition
// from Attempted(Fail) back to Unattempted, which is what makes a retake
// submission acceptable afterwards. Correct answers are only included when
// a passing result remains.
func (s *QuizService) GetQuizForCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*QuizView, *models.QuizResult, error) {
	quiz, err := s.QuizRepo.FindByCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrQuizNotFound
		}
		return nil, nil, err
	}

	result, err := s.ResultRepo.FindByUserAndQuiz(ctx, userID, quiz.ID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, err
	}
	if result != nil && !result.Passed {
		if err := s.ResultRepo.Delete(ctx, result.ID); err != nil {
			return nil, nil, err
		}
		result = nil
	}

	view := &QuizView{
		ID:        quiz.ID,
		Title:     quiz.Title,
		Course:    quiz.Course,
		Questions: quiz.SanitizedQuestions(),
	}
	if result != nil {
		view.FullQuestions = quiz.Questions
	}
	return view, result, nil
}

// SubmitQuiz grades the answers and persists the result, pass or fail.
// Submission is write-once per attempt: any existing result is a conflict,
// and the retake path must go through GetQuizForCourse first.
func (s *QuizService) SubmitQuiz(ctx context.Context, userID, quizID primitive.ObjectID, answers []models.SubmittedAnswer) (*Submission, error) {
	if len(answers) == 0 {
		return nil, ErrNoAnswers
	}

	quiz, err := s.QuizRepo.FindByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	existing, err := s.ResultRepo.FindByUserAndQuiz(ctx, userID, quizID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if existing != nil {
		return nil, &AlreadySubmittedError{Existing: existing}
	}

	_, scorePercentage, passed := quiz.Score(answers)

	result := &models.QuizResult{
		User:             userID,
		Quiz:             quizID,
		Course:           quiz.Course,
		ScorePercentage:  scorePercentage,
		SubmittedAnswers: answers,
		Passed:           passed,
	}
	if err := s.ResultRepo.Create(ctx, result); err != nil {
		// Two concurrent submissions can both pass the existence check;
		// the unique (user, quiz) index turns the loser into a conflict.
		if mongo.IsDuplicateKeyError(err) {
			winner, findErr := s.ResultRepo.FindByUserAndQuiz(ctx, userID, quizID)
			if findErr != nil {
				return nil, findErr
			}
			return nil, &AlreadySubmittedError{Existing: winner}
		}
		return nil, err
	}

	return &Submission{
		Result:          result,
		ScorePercentage: scorePercentage,
		Passed:          passed,
		FullQuestions:   quiz.Questions,
	}, nil
}

// GetQuizResult returns the caller's result with the full question set for
// review.
func (s *QuizService) GetQuizResult(ctx context.Context, userID, quizID primitive.ObjectID) (*models.QuizResult, []models.Question, error) {
	result, err := s.ResultRepo.FindByUserAndQuiz(ctx, userID, quizID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrResultNotFound
		}
		return nil, nil, err
	}
	quiz, err := s.QuizRepo.FindByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil, ErrQuizNotFound
		}
		return nil, nil, err
	}
	return result, quiz.Questions, nil
}

// GetAllResultsForUser returns the user's results with course titles for
// dashboard summaries. Ordering is the caller's concern; records carry
// timestamps.
func (s *QuizService) GetAllResultsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.QuizResultWithCourse, error) {
	results, err := s.ResultRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	courseIDs := make([]primitive.ObjectID, 0, len(results))
	for _, res := range results {
		courseIDs = append(courseIDs, res.Course)
	}
	courses, err := s.CourseRepo.FindByIDs(ctx, courseIDs)
	if err != nil {
		return nil, err
	}
	titles := make(map[primitive.ObjectID]string, len(courses))
	for _, c := range courses {
		titles[c.ID] = c.Title
	}

	joined := make([]models.QuizResultWithCourse, 0, len(results))
	for _, res := range results {
		joined = append(joined, models.QuizResultWithCourse{
			QuizResult:  res,
			CourseTitle: titles[res.Course],
		})
	}
	return joined, nil
}

// MarkCourseComplete writes the durable completion marker once both
// conditions hold: the course's quiz is passed and every lesson is in the
// user's completed set. The marker is append-only; re-invoking after
// success is a no-op.
func (s *QuizService) MarkCourseComplete(ctx context.Context, userID, courseID primitive.ObjectID) error {
	quiz, err := s.QuizRepo.FindByCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrQuizNotFound
		}
		return err
	}

	result, err := s.ResultRepo.FindByUserAndQuiz(ctx, userID, quiz.ID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	if result == nil || !result.Passed {
		return ErrQuizNotPassed
	}

	course, err := s.CourseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrCourseNotFound
		}
		return err
	}

	progress, err := s.ProgressRepo.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	completedCount := 0
	if progress != nil {
		completedCount = len(progress.CompletedLessons)
	}
	if completedCount < len(course.Lessons) {
		return ErrLessonsIncomplete
	}

	return s.UserRepo.AddCompletedCourse(ctx, userID, courseID)
}
