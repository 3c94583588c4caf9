package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pthach/certclimb/config"
	"github.com/pthach/certclimb/database"
	_ "github.com/pthach/certclimb/docs" // Swagger docs - auto-generated
	"github.com/pthach/certclimb/internal/cache"
	adminctrl "github.com/pthach/certclimb/internal/controller/admin"
	userctrl "github.com/pthach/certclimb/internal/controller/user"
	"github.com/pthach/certclimb/internal/logger"
	"github.com/pthach/certclimb/internal/middleware"
	"github.com/pthach/certclimb/internal/model"
	"github.com/pthach/certclimb/internal/repository"
	"github.com/pthach/certclimb/internal/service"
	"github.com/pthach/certclimb/pkg/monitoring"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title CertClimb API
// @version 1.0
// @description Certification exam practice API with a staged level-up quiz flow.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger.Init()
	monitoring.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			cache.NewRedisClient,
			NewGinEngine,
			func(cfg *config.Config) *middleware.JWTAuth {
				return middleware.NewJWTAuth(cfg.JWT.Secret)
			},
		),

		// Repositories Layer
		fx.Provide(
			repository.NewExamRepository,
			repository.NewQuestionRepository,
			repository.NewQuizSessionRepository,
			repository.NewUserAnswerRepository,
			repository.NewUserProgressRepository,
			repository.NewQuizModeRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewAccuracyService,
			service.NewProgressService,
			service.NewLevelUpService,
			service.NewQuizService,
			service.NewQuizModeService,
			service.NewExamService,
			service.NewAdminService,
		),

		// API Controllers Layer
		fx.Provide(
			userctrl.NewLevelUpController,
			userctrl.NewQuizController,
			userctrl.NewExamController,
			adminctrl.NewAdminController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	// Zerolog-backed request logging instead of Gin's default logger.
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())
	r.Use(monitoring.MetricsMiddleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", monitoring.PrometheusHandler())

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	auth *middleware.JWTAuth,
	levelUpCtrl *userctrl.LevelUpController,
	quizCtrl *userctrl.QuizController,
	examCtrl *userctrl.ExamController,
	adminCtrl *adminctrl.AdminController,
) {
	api := router.Group("/api/v1")

	// Public catalog routes
	api.GET("/exams", examCtrl.GetAllExams)
	api.GET("/exams/:exam_id", examCtrl.GetExam)
	api.GET("/quiz-modes", quizCtrl.QuizModes)

	// Authenticated user routes
	authed := api.Group("")
	authed.Use(auth.Middleware())
	{
		levelUpGroup := authed.Group("/levelup")
		levelUpGroup.POST("/attempts", levelUpCtrl.StartAttempt)
		levelUpGroup.GET("/attempts/:attempt_id", levelUpCtrl.GetAttempt)
		levelUpGroup.POST("/attempts/:attempt_id/select", levelUpCtrl.SelectOption)
		levelUpGroup.POST("/attempts/:attempt_id/reveal", levelUpCtrl.RevealAnswer)
		levelUpGroup.POST("/attempts/:attempt_id/next", levelUpCtrl.NextQuestion)
		levelUpGroup.POST("/skip-stage", levelUpCtrl.SkipStage)
		levelUpGroup.POST("/reset", levelUpCtrl.ResetProgress)
		levelUpGroup.GET("/progress", levelUpCtrl.Progress)

		authed.POST("/quizzes", quizCtrl.StartQuiz)
		authed.POST("/quizzes/:session_id/complete", quizCtrl.CompleteQuiz)
		authed.GET("/sessions", quizCtrl.SessionHistory)
		authed.GET("/sessions/:session_id", quizCtrl.SessionDetail)
		authed.GET("/stats", quizCtrl.Stats)
	}

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Use(auth.Middleware(), middleware.RequireAdmin())
	{
		adminGroup.POST("/exams", adminCtrl.CreateExam)
		adminGroup.GET("/exams/:exam_id", adminCtrl.GetExamWithQuestions)
		adminGroup.POST("/exams/:exam_id/questions", adminCtrl.CreateQuestion)
		adminGroup.PUT("/questions/:question_id", adminCtrl.UpdateQuestion)
		adminGroup.DELETE("/questions/:question_id", adminCtrl.DeleteQuestion)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("CertClimb API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Exam{},
		&model.Question{},
		&model.QuestionOption{},
		&model.QuizSession{},
		&model.UserAnswer{},
		&model.UserProgress{},
		&model.QuizMode{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
