package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/edupath/content-service/internal/config"
	"github.com/edupath/content-service/internal/models"
	"github.com/edupath/content-service/internal/repositories"
	"github.com/edupath/content-service/internal/services"
	"github.com/edupath/content-service/internal/utils"
	"github.com/edupath/content-service/internal/validator"
)

// servedModels names the resources this service exposes, reported by the
// health endpoint.
var servedModels = []string{"subjects", "lessons", "quizzes", "quiz_results", "questions", "progress"}

func init() {
	// Request bodies carrying fields no schema declares are rejected at
	// bind time instead of silently ignored.
	binding.EnableDecoderDisallowUnknownFields = true
}

type HandlerManager struct {
	subjectHandler  *SubjectHandler
	lessonHandler   *LessonHandler
	quizHandler     *QuizHandler
	questionHandler *QuestionHandler
	progressHandler *ProgressHandler
	userHandler     *UserHandler
	authMiddleware  *CasdoorAuthMiddleware

	serviceManager services.ServiceManager
	environment    string
	startedAt      time.Time
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
	environment string,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		subjectHandler:  NewSubjectHandler(serviceManager.Subject(), validator, logger),
		lessonHandler:   NewLessonHandler(serviceManager.Lesson(), validator, logger),
		quizHandler:     NewQuizHandler(serviceManager.Quiz(), serviceManager.Export(), validator, logger),
		questionHandler: NewQuestionHandler(serviceManager.Question(), validator, logger),
		progressHandler: NewProgressHandler(serviceManager.Progress(), validator, logger),
		userHandler:     NewUserHandler(serviceManager.User(), logger),
		authMiddleware:  authMiddleware,
		serviceManager:  serviceManager,
		environment:     environment,
		startedAt:       time.Now(),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Subject routes
		subjects := v1.Group("/subjects")
		{
			// Create/modify - Teachers and Admins only
			subjects.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.subjectHandler.CreateSubject)
			subjects.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.subjectHandler.UpdateSubject)

			// Delete - Admins only
			subjects.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.subjectHandler.DeleteSubject)

			// Reads - all authenticated users
			subjects.GET("", hm.subjectHandler.ListSubjects)
			subjects.GET("/featured", hm.subjectHandler.GetFeaturedSubjects)
			subjects.GET("/:id", hm.subjectHandler.GetSubject)
			subjects.GET("/:id/details", hm.subjectHandler.GetSubjectWithDetails)
			subjects.GET("/:id/lessons", hm.lessonHandler.GetLessonsBySubject)
			subjects.GET("/:id/quizzes", hm.quizHandler.GetQuizzesBySubject)

			// Stats - Teachers and Admins only
			subjects.GET("/stats", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.subjectHandler.GetSubjectStats)
			subjects.POST("/:id/stats/refresh", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.subjectHandler.RefreshSubjectStats)
		}

		// Lesson routes
		lessons := v1.Group("/lessons")
		{
			lessons.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.lessonHandler.CreateLesson)
			lessons.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.lessonHandler.UpdateLesson)
			lessons.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.lessonHandler.DeleteLesson)

			lessons.GET("", hm.lessonHandler.ListLessons)
			lessons.GET("/:id", hm.lessonHandler.GetLesson)
		}

		// Quiz routes
		quizzes := v1.Group("/quizzes")
		{
			quizzes.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.quizHandler.CreateQuiz)
			quizzes.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.quizHandler.UpdateQuiz)
			quizzes.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.quizHandler.DeleteQuiz)

			// Bulk operations - Admins only
			quizzes.PUT("/bulk", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.quizHandler.BulkUpdateQuizzes)

			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/popular", hm.quizHandler.GetPopularQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)
			quizzes.GET("/:id/questions", hm.questionHandler.GetQuestionsByQuiz)

			// Results
			quizzes.POST("/:id/results", hm.quizHandler.SubmitQuizResult)
			quizzes.GET("/:id/results", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.quizHandler.GetQuizResults)
			quizzes.GET("/:id/results/export", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.quizHandler.ExportQuizResults)
			quizzes.GET("/:id/retake-eligibility", hm.quizHandler.GetRetakeEligibility)
			quizzes.GET("/:id/retake-eligibility/:user_id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.quizHandler.GetUserRetakeEligibility)

			// Analytics
			quizzes.POST("/:id/analytics/recalculate", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.quizHandler.RecalculateQuizAnalytics)
		}

		// Question routes
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.questionHandler.CreateQuestion)
			questions.POST("/batch", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.questionHandler.CreateQuestionsBatch)
			questions.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.questionHandler.UpdateQuestion)

			// Destructive and moderation operations - Admins only
			questions.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.questionHandler.DeleteQuestion)
			questions.PUT("/bulk", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.questionHandler.BulkUpdateQuestions)
			questions.POST("/:id/verify", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.questionHandler.VerifyQuestion)

			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
		}

		// Progress routes - learners write their own records
		progress := v1.Group("/progress")
		{
			progress.PUT("", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.progressHandler.UpdateProgress)
			progress.GET("/me", hm.progressHandler.GetMyProgress)
			progress.GET("/lessons/:lesson_id", hm.progressHandler.GetProgressByLesson)
			progress.GET("/users/:user_id", hm.progressHandler.GetUserProgress)
		}

		// User routes (display-safe lookups)
		users := v1.Group("/users")
		{
			users.GET("/search", hm.userHandler.SearchUsers)
			users.GET("/by-email", hm.userHandler.GetUserByEmail)
			users.GET("/:id", hm.userHandler.GetUser)
		}
	}

	// Health check endpoint
	router.GET("/health", hm.healthCheck)

	// Unknown routes get the same error envelope as everything else
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, newErrorResponse("NOT_FOUND", "route not found", nil))
	})
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":      status,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"uptime":      time.Since(hm.startedAt).Round(time.Second).String(),
		"environment": hm.environment,
		"models":      servedModels,
	})
}
