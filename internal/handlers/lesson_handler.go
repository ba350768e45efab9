package handlers

import (
	"context"
	"errors"
	"net/http"

	"elearning-service/internal/models"
	"elearning-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LessonHandler struct {
	Service *service.LessonService
}

func NewLessonHandler(s *service.LessonService) *LessonHandler {
	return &LessonHandler{Service: s}
}

type createLessonRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content"`
	VideoURL string `json:"vidUrl"`
	CourseID string `json:"courseId" binding:"required"`
}

func (h *LessonHandler) CreateLesson(c *gin.Context) {
	var req createLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	courseID, err := primitive.ObjectIDFromHex(req.CourseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
		return
	}

	lesson := &models.Lesson{
		Title:    req.Title,
		Content:  req.Content,
		VideoURL: req.VideoURL,
		Course:   courseID,
	}
	if err := h.Service.CreateLesson(context.Background(), lesson); err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found to link the lesson."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

func (h *LessonHandler) GetLesson(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lesson id"})
		return
	}
	lesson, err := h.Service.GetLesson(context.Background(), id)
	if err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, lesson)
}

func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lesson id"})
		return
	}
	var update map[string]interface{}
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lesson, err := h.Service.UpdateLesson(context.Background(), id, update)
	if err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lesson updated successfully!", "lesson": lesson})
}

func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lesson id"})
		return
	}
	if err := h.Service.DeleteLesson(context.Background(), id); err != nil {
		if errors.Is(err, service.ErrLessonNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lesson deleted successfully."})
}
