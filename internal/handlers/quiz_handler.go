package handlers

import (
	"context"
	"errors"
	"net/http"

	"elearning-service/internal/middleware"
	"elearning-service/internal/models"
	"elearning-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type QuizHandler struct {
	Service *service.QuizService
}

func NewQuizHandler(s *service.QuizService) *QuizHandler {
	return &QuizHandler{Service: s}
}

type createQuizRequest struct {
	Title     string            `json:"title" binding:"required"`
	Course    string            `json:"course" binding:"required"`
	Questions []models.Question `json:"questions" binding:"required"`
}

func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req createQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Course ID and quiz questions are required."})
		return
	}
	courseID, err := primitive.ObjectIDFromHex(req.Course)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
		return
	}

	quiz := &models.Quiz{
		Title:     req.Title,
		Course:    courseID,
		Questions: req.Questions,
	}
	if err := h.Service.CreateQuiz(context.Background(), quiz); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrQuizExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "A quiz already exists for this course."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Quiz created successfully!", "quiz": quiz})
}

func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz id"})
		return
	}
	var update map[string]interface{}
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	quiz, err := h.Service.UpdateQuiz(context.Background(), id, update)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found."})
		case errors.Is(err, service.ErrQuizExists):
			c.JSON(http.StatusBadRequest, gin.H{"error": "A quiz already exists for this course."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz updated successfully!", "quiz": quiz})
}

func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz id"})
		return
	}
	if err := h.Service.DeleteQuiz(context.Background(), id); err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz and all associated results deleted successfully."})
}

func (h *QuizHandler) GetQuizByCourse(c *gin.Context) {
	user := middleware.CurrentUser(c)
	courseID, err := primitive.ObjectIDFromHex(c.Param("courseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
		return
	}

	quiz, result, err := h.Service.GetQuizForCourse(context.Background(), user.ID, courseID)
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found for this course."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"quiz": quiz, "result": result})
}

type submitQuizRequest struct {
	SubmittedAnswers []models.SubmittedAnswer `json:"submittedAnswers"`
}

func (h *QuizHandler) SubmitQuiz(c *gin.Context) {
	user := middleware.CurrentUser(c)
	quizID, err := primitive.ObjectIDFromHex(c.Param("quizId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz id"})
		return
	}

	var req submitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := h.Service.SubmitQuiz(context.Background(), user.ID, quizID, req.SubmittedAnswers)
	if err != nil {
		var already *service.AlreadySubmittedError
		switch {
		case errors.Is(err, service.ErrNoAnswers):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No answers submitted."})
		case errors.As(err, &already):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Quiz already submitted.", "result": already.Existing})
		case errors.Is(err, service.ErrQuizNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	message := "Quiz submitted successfully. You did not pass."
	if submission.Passed {
		message = "Quiz submitted successfully. You passed!"
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":         message,
		"result":          submission.Result,
		"scorePercentage": submission.ScorePercentage,
		"passed":          submission.Passed,
		"fullQuestions":   submission.FullQuestions,
	})
}

func (h *QuizHandler) GetQuizResult(c *gin.Context) {
	user := middleware.CurrentUser(c)
	quizID, err := primitive.ObjectIDFromHex(c.Param("quizId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quiz id"})
		return
	}

	result, questions, err := h.Service.GetQuizResult(context.Background(), user.ID, quizID)
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) || errors.Is(err, service.ErrQuizNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Result not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "fullQuestions": questions})
}

func (h *QuizHandler) MarkCourseComplete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	courseID, err := primitive.ObjectIDFromHex(c.Param("courseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
		return
	}

	if err := h.Service.MarkCourseComplete(context.Background(), user.ID, courseID); err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Quiz not found for this course."})
		case errors.Is(err, service.ErrCourseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found."})
		case errors.Is(err, service.ErrQuizNotPassed), errors.Is(err, service.ErrLessonsIncomplete):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Course marked as complete!", "completed": true})
}

func (h *QuizHandler) GetAllUserQuizResults(c *gin.Context) {
	user := middleware.CurrentUser(c)

	results, err := h.Service.GetAllResultsForUser(context.Background(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, results)
}
