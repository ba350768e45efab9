package handlers

import (
	"context"
	"errors"
	"net/http"

	"elearning-service/internal/middleware"
	"elearning-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserHandler struct {
	Service *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{Service: s}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user := middleware.CurrentUser(c)

	profile, err := h.Service.GetProfile(context.Background(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) GetEnrolledCourses(c *gin.Context) {
	user := middleware.CurrentUser(c)

	courses, err := h.Service.GetEnrolledCourses(context.Background(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, courses)
}

func (h *UserHandler) CheckEnrollment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	courseID, err := primitive.ObjectIDFromHex(c.Param("courseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"isEnrolled": false, "error": "Invalid course id"})
		return
	}

	enrolled, err := h.Service.CheckEnrollment(context.Background(), user.ID, courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"isEnrolled": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isEnrolled": enrolled})
}

func (h *UserHandler) Enroll(c *gin.Context) {
	user := middleware.CurrentUser(c)
	courseID, err := primitive.ObjectIDFromHex(c.Param("courseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
		return
	}

	profile, err := h.Service.Enroll(context.Background(), user.ID, courseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found for enrollment."})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, profile)
}
