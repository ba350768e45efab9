package service

import (
	"context"
	"errors"
	"testing"

	"elearning-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func duplicateKeyErr() error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
}

type fakeQuizStore struct {
	quizzes   map[primitive.ObjectID]*models.Quiz
	updateErr error
}

func newFakeQuizStore(quizzes ...*models.Quiz) *fakeQuizStore {
	store := &fakeQuizStore{quizzes: make(map[primitive.ObjectID]*models.Quiz)}
	for _, q := range quizzes {
		store.quizzes[q.ID] = q
	}
	return store
}

func (f *fakeQuizStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Quiz, error) {
	if q, ok := f.quizzes[id]; ok {
		return q, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeQuizStore) FindByCourse(ctx context.Context, courseID primitive.ObjectID) (*models.Quiz, error) {
	for _, q := range f.quizzes {
		if q.Course == courseID {
			return q, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeQuizStore) Create(ctx context.Context, quiz *models.Quiz) error {
	for _, q := range f.quizzes {
		if q.Course == quiz.Course {
			return duplicateKeyErr()
		}
	}
	quiz.ID = primitive.NewObjectID()
	f.quizzes[quiz.ID] = quiz
	return nil
}

func (f *fakeQuizStore) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	return f.updateErr
}

func (f *fakeQuizStore) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	if _, ok := f.quizzes[id]; !ok {
		return 0, nil
	}
	delete(f.quizzes, id)
	return 1, nil
}

type resultKey struct {
	user primitive.ObjectID
	quiz primitive.ObjectID
}

type fakeResultStore struct {
	results map[resultKey]*models.QuizResult
	// raceWinner simulates a concurrent submission that inserts between
	// this caller's existence check and its own insert: invisible to
	// FindByUserAndQuiz until Create has failed with a duplicate key.
	raceWinner  *models.QuizResult
	raceVisible bool
}

func newFakeResultStore(results ...*models.QuizResult) *fakeResultStore {
	store := &fakeResultStore{results: make(map[resultKey]*models.QuizResult)}
	for _, r := range results {
		store.results[resultKey{r.User, r.Quiz}] = r
	}
	return store
}

func (f *fakeResultStore) FindByUserAndQuiz(ctx context.Context, userID, quizID primitive.ObjectID) (*models.QuizResult, error) {
	if r, ok := f.results[resultKey{userID, quizID}]; ok {
		return r, nil
	}
	if f.raceVisible && f.raceWinner != nil && f.raceWinner.User == userID && f.raceWinner.Quiz == quizID {
		return f.raceWinner, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeResultStore) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.QuizResult, error) {
	var out []models.QuizResult
	for _, r := range f.results {
		if r.User == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeResultStore) Create(ctx context.Context, result *models.QuizResult) error {
	if f.raceWinner != nil {
		f.raceVisible = true
		return duplicateKeyErr()
	}
	key := resultKey{result.User, result.Quiz}
	if _, ok := f.results[key]; ok {
		return duplicateKeyErr()
	}
	result.ID = primitive.NewObjectID()
	f.results[key] = result
	return nil
}

func (f *fakeResultStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	for key, r := range f.results {
		if r.ID == id {
			delete(f.results, key)
			return nil
		}
	}
	return nil
}

func (f *fakeResultStore) DeleteByQuiz(ctx context.Context, quizID primitive.ObjectID) error {
	for key, r := range f.results {
		if r.Quiz == quizID {
			delete(f.results, key)
		}
	}
	return nil
}

type fakeCourseStore struct {
	courses map[primitive.ObjectID]*models.Course
}

func newFakeCourseStore(courses ...*models.Course) *fakeCourseStore {
	store := &fakeCourseStore{courses: make(map[primitive.ObjectID]*models.Course)}
	for _, c := range courses {
		store.courses[c.ID] = c
	}
	return store
}

func (f *fakeCourseStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	if c, ok := f.courses[id]; ok {
		return c, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCourseStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error) {
	var out []models.Course
	for _, id := range ids {
		if c, ok := f.courses[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeProgressStore struct {
	records map[resultKey]*models.Progress // keyed by (user, course)
}

func newFakeProgressStore(records ...*models.Progress) *fakeProgressStore {
	store := &fakeProgressStore{records: make(map[resultKey]*models.Progress)}
	for _, p := range records {
		store.records[resultKey{p.User, p.Course}] = p
	}
	return store
}

func (f *fakeProgressStore) FindByUserAndCourse(ctx context.Context, userID, courseID primitive.ObjectID) (*models.Progress, error) {
	if p, ok := f.records[resultKey{userID, courseID}]; ok {
		return p, nil
	}
	return nil, mongo.ErrNoDocuments
}

type fakeCompletionStore struct {
	completed map[primitive.ObjectID][]primitive.ObjectID
}

func newFakeCompletionStore() *fakeCompletionStore {
	return &fakeCompletionStore{completed: make(map[primitive.ObjectID][]primitive.ObjectID)}
}

func (f *fakeCompletionStore) AddCompletedCourse(ctx context.Context, userID, courseID primitive.ObjectID) error {
	for _, id := range f.completed[userID] {
		if id == courseID {
			return nil
		}
	}
	f.completed[userID] = append(f.completed[userID], courseID)
	return nil
}

type quizFixture struct {
	service    *QuizService
	quiz       *models.Quiz
	course     *models.Course
	userID     primitive.ObjectID
	quizzes    *fakeQuizStore
	results    *fakeResultStore
	progress   *fakeProgressStore
	completion *fakeCompletionStore
}

// newQuizFixture builds a service around a course with two lessons and a
// two-question quiz whose correct answers are options 0 and 1.
func newQuizFixture() *quizFixture {
	courseID := primitive.NewObjectID()
	course := &models.Course{
		ID:      courseID,
		Title:   "Basics",
		Lessons: []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()},
	}
	quiz := &models.Quiz{
		ID:     primitive.NewObjectID(),
		Title:  "Basics quiz",
		Course: courseID,
		Questions: []models.Question{
			{QuestionText: "Q1", Options: []string{"a", "b"}, CorrectAnswerIndex: 0},
			{QuestionText: "Q2", Options: []string{"a", "b"}, CorrectAnswerIndex: 1},
		},
	}

	fix := &quizFixture{
		quiz:       quiz,
		course:     course,
		userID:     primitive.NewObjectID(),
		quizzes:    newFakeQuizStore(quiz),
		results:    newFakeResultStore(),
		progress:   newFakeProgressStore(),
		completion: newFakeCompletionStore(),
	}
	fix.service = NewQuizService(fix.quizzes, fix.results, newFakeCourseStore(course), fix.progress, fix.completion)
	return fix
}

func (fix *quizFixture) addResult(passed bool, score int) *models.QuizResult {
	result := &models.QuizResult{
		ID:              primitive.NewObjectID(),
		User:            fix.userID,
		Quiz:            fix.quiz.ID,
		Course:          fix.course.ID,
		ScorePercentage: score,
		Passed:          passed,
	}
	fix.results.results[resultKey{fix.userID, fix.quiz.ID}] = result
	return result
}

func passingAnswers() []models.SubmittedAnswer {
	return []models.SubmittedAnswer{
		{QuestionIndex: 0, SelectedOptionIndex: 0},
		{QuestionIndex: 1, SelectedOptionIndex: 1},
	}
}

func TestGetQuizForCourseUnattempted(t *testing.T) {
	fix := newQuizFixture()

	view, result, err := fix.service.GetQuizForCourse(context.Background(), fix.userID, fix.course.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("Expected no result for an unattempted quiz, got %+v", result)
	}
	if len(view.Questions) != 2 {
		t.Errorf("Expected 2 sanitized questions, got %d", len(view.Questions))
	}
	if view.FullQuestions != nil {
		t.Error("Expected no correct answers for an unattempted quiz")
	}
}

func TestGetQuizForCourseDeletesFailingResult(t *testing.T) {
	fix := newQuizFixture()
	fix.addResult(false, 50)

	view, result, err := fix.service.GetQuizForCourse(context.Background(), fix.userID, fix.course.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("Expected failing result to be treated as absent, got %+v", result)
	}
	if view.FullQuestions != nil {
		t.Error("Expected sanitized payload after a failing result is cleared")
	}
	if _, ok := fix.results.results[resultKey{fix.userID, fix.quiz.ID}]; ok {
		t.Error("Expected the failing result to be deleted on read")
	}

	// The cleared slate must make a resubmission acceptable.
	submission, err := fix.service.SubmitQuiz(context.Background(), fix.userID, fix.quiz.ID, passingAnswers())
	if err != nil {
		t.Fatalf("Expected resubmission after retake read to succeed, got %v", err)
	}
	if !submission.Passed || submission.ScorePercentage != 100 {
		t.Errorf("Expected 100%% pass on resubmission, got %d passed=%v", submission.ScorePercentage, submission.Passed)
	}
}

func TestGetQuizForCoursePassingResultIsKept(t *testing.T) {
	fix := newQuizFixture()
	existing := fix.addResult(true, 100)

	view, result, err := fix.service.GetQuizForCourse(context.Background(), fix.userID, fix.course.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result == nil || result.ID != existing.ID {
		t.Fatalf("Expected the passing result back, got %+v", result)
	}
	if len(view.FullQuestions) != 2 {
		t.Errorf("Expected full questions with correct answers for review, got %d", len(view.FullQuestions))
	}
	if _, ok := fix.results.results[resultKey{fix.userID, fix.quiz.ID}]; !ok {
		t.Error("Expected the passing result to survive the read")
	}
}

func TestGetQuizForCourseMissingQuiz(t *testing.T) {
	fix := newQuizFixture()

	_, _, err := fix.service.GetQuizForCourse(context.Background(), fix.userID, primitive.NewObjectID())
	if !errors.Is(err, ErrQuizNotFound) {
		t.Errorf("Expected ErrQuizNotFound, got %v", err)
	}
}

func TestSubmitQuizValidation(t *testing.T) {
	fix := newQuizFixture()

	if _, err := fix.service.SubmitQuiz(context.Background(), fix.userID, fix.quiz.ID, nil); !errors.Is(err, ErrNoAnswers) {
		t.Errorf("Expected ErrNoAnswers for empty submission, got %v", err)
	}
	if _, err := fix.service.SubmitQuiz(context.Background(), fix.userID, primitive.NewObjectID(), passingAnswers()); !errors.Is(err, ErrQuizNotFound) {
		t.Errorf("Expected ErrQuizNotFound for unknown quiz, got %v", err)
	}
}

func TestSubmitQuizWriteOnceConflict(t *testing.T) {
	fix := newQuizFixture()

	for _, tc := range []struct {
		name   string
		passed bool
	}{
		{"existing failing result", false},
		{"existing passing result", true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			existing := fix.addResult(tc.passed, 50)

			_, err := fix.service.SubmitQuiz(context.Background(), fix.userID, fix.quiz.ID, passingAnswers())
			var already *AlreadySubmittedError
			if !errors.As(err, &already) {
				t.Fatalf("Expected AlreadySubmittedError, got %v", err)
			}
			if already.Existing == nil || already.Existing.ID != existing.ID {
				t.Errorf("Expected the conflicting result attached, got %+v", already.Existing)
			}
			// The prior result must not be overwritten.
			if stored := fix.results.results[resultKey{fix.userID, fix.quiz.ID}]; stored.ID != existing.ID {
				t.Error("Expected the existing result to survive the rejected submission")
			}
		})
	}
}

func TestSubmitQuizConcurrentDuplicate(t *testing.T) {
	fix := newQuizFixture()
	winner := &models.QuizResult{
		ID:     primitive.NewObjectID(),
		User:   fix.userID,
		Quiz:   fix.quiz.ID,
		Course: fix.course.ID,
		Passed: true,
	}
	fix.results.raceWinner = winner

	_, err := fix.service.SubmitQuiz(context.Background(), fix.userID, fix.quiz.ID, passingAnswers())
	var already *AlreadySubmittedError
	if !errors.As(err, &already) {
		t.Fatalf("Expected the duplicate-key loser to get a conflict, got %v", err)
	}
	if already.Existing == nil || already.Existing.ID != winner.ID {
		t.Errorf("Expected the winning result attached to the conflict, got %+v", already.Existing)
	}
}

func TestSubmitQuizPersistsFailingResult(t *testing.T) {
	fix := newQuizFixture()

	submission, err := fix.service.SubmitQuiz(context.Background(), fix.userID, fix.quiz.ID, []models.SubmittedAnswer{
		{QuestionIndex: 0, SelectedOptionIndex: 1},
		{QuestionIndex: 1, SelectedOptionIndex: 1},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if submission.Passed || submission.ScorePercentage != 50 {
		t.Errorf("Expected a failing 50%% result, got %d passed=%v", submission.ScorePercentage, submission.Passed)
	}
	if len(submission.FullQuestions) != 2 {
		t.Error("Expected full questions for review even on a fail")
	}
	if _, ok := fix.results.results[resultKey{fix.userID, fix.quiz.ID}]; !ok {
		t.Error("Expected the failing result to be persisted")
	}
}

func TestMarkCourseComplete(t *testing.T) {
	allLessons := func(fix *quizFixture) *models.Progress {
		return &models.Progress{
			User:             fix.userID,
			Course:           fix.course.ID,
			CompletedLessons: fix.course.Lessons,
		}
	}
	oneLesson := func(fix *quizFixture) *models.Progress {
		return &models.Progress{
			User:             fix.userID,
			Course:           fix.course.ID,
			CompletedLessons: fix.course.Lessons[:1],
		}
	}

	testCases := []struct {
		name      string
		setup     func(fix *quizFixture)
		expectErr error
	}{
		{
			name:      "no result",
			setup:     func(fix *quizFixture) {},
			expectErr: ErrQuizNotPassed,
		},
		{
			name: "failing result",
			setup: func(fix *quizFixture) {
				fix.addResult(false, 50)
			},
			expectErr: ErrQuizNotPassed,
		},
		{
			name: "passed but no progress record",
			setup: func(fix *quizFixture) {
				fix.addResult(true, 100)
			},
			expectErr: ErrLessonsIncomplete,
		},
		{
			name: "passed but lessons incomplete",
			setup: func(fix *quizFixture) {
				fix.addResult(true, 100)
				p := oneLesson(fix)
				fix.progress.records[resultKey{p.User, p.Course}] = p
			},
			expectErr: ErrLessonsIncomplete,
		},
		{
			name: "both conditions met",
			setup: func(fix *quizFixture) {
				fix.addResult(true, 100)
				p := allLessons(fix)
				fix.progress.records[resultKey{p.User, p.Course}] = p
			},
			expectErr: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fix := newQuizFixture()
			tc.setup(fix)

			err := fix.service.MarkCourseComplete(context.Background(), fix.userID, fix.course.ID)
			if !errors.Is(err, tc.expectErr) {
				t.Fatalf("Expected %v, got %v", tc.expectErr, err)
			}

			completed := fix.completion.completed[fix.userID]
			if tc.expectErr == nil {
				if len(completed) != 1 || completed[0] != fix.course.ID {
					t.Errorf("Expected the course recorded once, got %v", completed)
				}
			} else if len(completed) != 0 {
				t.Errorf("Expected no completion marker on failure, got %v", completed)
			}
		})
	}
}

func TestMarkCourseCompleteIdempotent(t *testing.T) {
	fix := newQuizFixture()
	fix.addResult(true, 100)
	p := &models.Progress{
		User:             fix.userID,
		Course:           fix.course.ID,
		CompletedLessons: fix.course.Lessons,
	}
	fix.progress.records[resultKey{p.User, p.Course}] = p

	for i := 0; i < 2; i++ {
		if err := fix.service.MarkCourseComplete(context.Background(), fix.userID, fix.course.ID); err != nil {
			t.Fatalf("Invocation %d: unexpected error %v", i+1, err)
		}
	}
	if completed := fix.completion.completed[fix.userID]; len(completed) != 1 {
		t.Errorf("Expected exactly one completion entry, got %v", completed)
	}
}

func TestMarkCourseCompleteMissingQuiz(t *testing.T) {
	fix := newQuizFixture()

	err := fix.service.MarkCourseComplete(context.Background(), fix.userID, primitive.NewObjectID())
	if !errors.Is(err, ErrQuizNotFound) {
		t.Errorf("Expected ErrQuizNotFound, got %v", err)
	}
}

func TestUpdateQuizCourseConflict(t *testing.T) {
	fix := newQuizFixture()
	fix.quizzes.updateErr = duplicateKeyErr()

	_, err := fix.service.UpdateQuiz(context.Background(), fix.quiz.ID, bson.M{"course": primitive.NewObjectID()})
	if !errors.Is(err, ErrQuizExists) {
		t.Errorf("Expected ErrQuizExists when the unique course index trips, got %v", err)
	}
}

func TestCreateQuizDuplicateCourse(t *testing.T) {
	fix := newQuizFixture()

	err := fix.service.CreateQuiz(context.Background(), &models.Quiz{
		Title:  "Second quiz",
		Course: fix.course.ID,
		Questions: []models.Question{
			{QuestionText: "Q1", Options: []string{"a", "b"}, CorrectAnswerIndex: 0},
		},
	})
	if !errors.Is(err, ErrQuizExists) {
		t.Errorf("Expected ErrQuizExists for the second quiz on a course, got %v", err)
	}
}

func TestDeleteQuizCascadesResults(t *testing.T) {
	fix := newQuizFixture()
	fix.addResult(true, 100)

	if err := fix.service.DeleteQuiz(context.Background(), fix.quiz.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(fix.results.results) != 0 {
		t.Error("Expected results to be cascaded on quiz deletion")
	}
	if err := fix.service.DeleteQuiz(context.Background(), fix.quiz.ID); !errors.Is(err, ErrQuizNotFound) {
		t.Errorf("Expected ErrQuizNotFound on second delete, got %v", err)
	}
}
