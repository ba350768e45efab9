package main

import (
	"context"
	"log"
	"time"

	"elearning-service/internal/config"
	"elearning-service/internal/db"
	"elearning-service/internal/event"
	"elearning-service/internal/handlers"
	"elearning-service/internal/middleware"
	"elearning-service/internal/repository"
	"elearning-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()
	if cfg.MongoDB.URI == "" {
		log.Fatal("MONGO_URI is required")
	}
	db.InitMongo(cfg.MongoDB.URI)
	defer db.Disconnect()

	// RabbitMQ event publisher
	var publisher *event.EventPublisher
	if cfg.RabbitMQ.URI != "" && cfg.RabbitMQ.Exchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, domain events will not be published")
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID", "X-User-Email", "X-User-Name", "X-User-Role"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	database := db.Client.Database(cfg.MongoDB.Database)

	// Repositories
	userRepo := repository.NewUserRepository(database)
	courseRepo := repository.NewCourseRepository(database)
	lessonRepo := repository.NewLessonRepository(database)
	quizRepo := repository.NewQuizRepository(database)
	resultRepo := repository.NewResultRepository(database)
	progressRepo := repository.NewProgressRepository(database)
	chatRepo := repository.NewChatRepository(database)

	// Uniqueness constraints back the idempotence and write-once rules.
	ensureIndexes(userRepo, quizRepo, resultRepo, progressRepo)

	// Services
	userService := service.NewUserService(userRepo, courseRepo)
	courseService := service.NewCourseService(courseRepo, lessonRepo, quizRepo, resultRepo, progressRepo)
	lessonService := service.NewLessonService(lessonRepo, courseRepo, progressRepo)
	progressService := service.NewProgressService(progressRepo, courseRepo)
	quizService := service.NewQuizService(quizRepo, resultRepo, courseRepo, progressRepo, userRepo)
	chatService := service.NewChatService(chatRepo)

	// Handlers
	userHandler := handlers.NewUserHandler(userService)
	courseHandler := handlers.NewCourseHandler(courseService)
	lessonHandler := handlers.NewLessonHandler(lessonService)
	progressHandler := handlers.NewProgressHandler(progressService)
	quizHandler := handlers.NewQuizHandler(quizService)
	chatHandler := handlers.NewChatHandler(chatService)

	identity := middleware.Identity(userService)
	admin := middleware.RequireAdmin()

	// Courses: browsing is public, administration is admin-only.
	courses := r.Group("/courses")
	{
		courses.GET("/", courseHandler.ListCourses)
		courses.GET("/:id", courseHandler.GetCourse)
		courses.POST("/", identity, admin, courseHandler.CreateCourse)
		courses.PUT("/:id", identity, admin, courseHandler.UpdateCourse)
		courses.DELETE("/:id", identity, admin, func(c *gin.Context) {
			courseHandler.DeleteCourse(c)
			publisher.Publish("course.deleted", gin.H{"course_id": c.Param("id")})
		})
	}

	lessons := r.Group("/lessons", identity)
	{
		lessons.POST("/", admin, lessonHandler.CreateLesson)
		lessons.GET("/:id", lessonHandler.GetLesson)
		lessons.PUT("/:id", admin, lessonHandler.UpdateLesson)
		lessons.DELETE("/:id", admin, lessonHandler.DeleteLesson)
	}

	progress := r.Group("/progress", identity)
	{
		progress.GET("/", progressHandler.GetProgress)
		progress.POST("/complete", func(c *gin.Context) {
			progressHandler.MarkLessonComplete(c)
			publisher.Publish("lesson.completed", gin.H{
				"user_id":   c.GetHeader("X-User-ID"),
				"timestamp": time.Now(),
			})
		})
	}

	quizzes := r.Group("/quizzes", identity)
	{
		quizzes.POST("/", admin, quizHandler.CreateQuiz)
		quizzes.PUT("/:id", admin, quizHandler.UpdateQuiz)
		quizzes.DELETE("/:id", admin, quizHandler.DeleteQuiz)

		quizzes.GET("/quizresults", quizHandler.GetAllUserQuizResults)
		quizzes.GET("/course/:courseId", quizHandler.GetQuizByCourse)
		quizzes.POST("/:quizId/submit", func(c *gin.Context) {
			quizHandler.SubmitQuiz(c)
			publisher.Publish("quiz.submitted", gin.H{
				"quiz_id":   c.Param("quizId"),
				"user_id":   c.GetHeader("X-User-ID"),
				"timestamp": time.Now(),
			})
		})
		quizzes.GET("/:quizId/result", quizHandler.GetQuizResult)
		quizzes.POST("/complete-course/:courseId", func(c *gin.Context) {
			quizHandler.MarkCourseComplete(c)
			publisher.Publish("course.completed", gin.H{
				"course_id": c.Param("courseId"),
				"user_id":   c.GetHeader("X-User-ID"),
				"timestamp": time.Now(),
			})
		})
	}

	users := r.Group("/users", identity)
	{
		users.GET("/me", userHandler.GetMe)
		users.GET("/me/courses", userHandler.GetEnrolledCourses)
		users.GET("/check-enrollment/:courseId", userHandler.CheckEnrollment)
		users.POST("/enroll/:courseId", func(c *gin.Context) {
			userHandler.Enroll(c)
			publisher.Publish("course.enrolled", gin.H{
				"course_id": c.Param("courseId"),
				"user_id":   c.GetHeader("X-User-ID"),
				"timestamp": time.Now(),
			})
		})
	}

	chats := r.Group("/chat", identity)
	{
		chats.GET("/", chatHandler.ListChats)
		chats.POST("/", chatHandler.CreateChat)
	}

	r.Run(":" + cfg.Server.Port)
}

func ensureIndexes(
	userRepo *repository.UserRepository,
	quizRepo *repository.QuizRepository,
	resultRepo *repository.ResultRepository,
	progressRepo *repository.ProgressRepository,
) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create user indexes: %v", err)
	}
	if err := quizRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create quiz indexes: %v", err)
	}
	if err := resultRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create quiz result indexes: %v", err)
	}
	if err := progressRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create progress indexes: %v", err)
	}
}
