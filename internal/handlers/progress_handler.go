package handlers

import (
	"context"
	"net/http"

	"elearning-service/internal/middleware"
	"elearning-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProgressHandler struct {
	Service *service.ProgressService
}

func NewProgressHandler(s *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{Service: s}
}

type markLessonCompleteRequest struct {
	CourseID string `json:"courseId" binding:"required"`
	LessonID string `json:"lessonId" binding:"required"`
}

func (h *ProgressHandler) MarkLessonComplete(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req markLessonCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	courseID, err := primitive.ObjectIDFromHex(req.CourseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
		return
	}
	lessonID, err := primitive.ObjectIDFromHex(req.LessonID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lesson id"})
		return
	}

	progress, err := h.Service.MarkLessonComplete(context.Background(), user.ID, courseID, lessonID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (h *ProgressHandler) GetProgress(c *gin.Context) {
	user := middleware.CurrentUser(c)

	records, err := h.Service.GetProgress(context.Background(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, records)
}
