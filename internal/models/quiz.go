package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PassingThreshold is the minimum score percentage counted as a pass.
const PassingThreshold = 70

type Question struct {
	QuestionText       string   `bson:"question_text" json:"questionText"`
	Options            []string `bson:"options" json:"options"`
	CorrectAnswerIndex int      `bson:"correct_answer_index" json:"correctAnswerIndex"`
}

// SanitizedQuestion is a question stripped of its correct answer, safe to
// hand to a user who has not passed the quiz yet.
type SanitizedQuestion struct {
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
}

type Quiz struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Course    primitive.ObjectID `bson:"course" json:"course"`
	Questions []Question         `bson:"questions" json:"questions"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

type SubmittedAnswer struct {
	QuestionIndex       int `bson:"question_index" json:"questionIndex"`
	SelectedOptionIndex int `bson:"selected_option_index" json:"selectedOptionIndex"`
}

type QuizResult struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User             primitive.ObjectID `bson:"user" json:"user"`
	Quiz             primitive.ObjectID `bson:"quiz" json:"quiz"`
	Course           primitive.ObjectID `bson:"course" json:"course"`
	ScorePercentage  int                `bson:"score_percentage" json:"scorePercentage"`
	SubmittedAnswers []SubmittedAnswer  `bson:"submitted_answers" json:"submittedAnswers"`
	Passed           bool               `bson:"passed" json:"passed"`
	CreatedAt        time.Time          `bson:"created_at" json:"createdAt"`
}

// QuizResultWithCourse is a result joined with its course title for
// dashboard summaries.
type QuizResultWithCourse struct {
	QuizResult
	CourseTitle string `json:"courseTitle"`
}

// Score grades a submission against the quiz. The percentage is computed
// over the quiz's own question count, so unanswered questions count as
// wrong. Answers pointing at question indices outside the quiz contribute
// nothing.
func (q *Quiz) Score(answers []SubmittedAnswer) (correctCount, scorePercentage int, passed bool) {
	total := len(q.Questions)
	if total == 0 {
		return 0, 0, false
	}
	for _, a := range answers {
		if a.QuestionIndex < 0 || a.QuestionIndex >= total {
			continue
		}
		if a.SelectedOptionIndex == q.Questions[a.QuestionIndex].CorrectAnswerIndex {
			correctCount++
		}
	}
	scorePercentage = int(math.Round(float64(correctCount) / float64(total) * 100))
	passed = scorePercentage >= PassingThreshold
	return correctCount, scorePercentage, passed
}

// SanitizedQuestions returns the question set without correct answer indices.
func (q *Quiz) SanitizedQuestions() []SanitizedQuestion {
	sanitized := make([]SanitizedQuestion, 0, len(q.Questions))
	for _, question := range q.Questions {
		sanitized = append(sanitized, SanitizedQuestion{
			QuestionText: question.QuestionText,
			Options:      question.Options,
		})
	}
	return sanitized
}
