package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ldtran/examdesk/config"
	"github.com/ldtran/examdesk/database"
	_ "github.com/ldtran/examdesk/docs" // Swagger docs - auto-generated
	"github.com/ldtran/examdesk/internal/auth"
	"github.com/ldtran/examdesk/internal/bridge"
	"github.com/ldtran/examdesk/internal/controller"
	adminctrl "github.com/ldtran/examdesk/internal/controller/admin"
	"github.com/ldtran/examdesk/internal/controller/middleware"
	studentctrl "github.com/ldtran/examdesk/internal/controller/student"
	"github.com/ldtran/examdesk/internal/logger"
	"github.com/ldtran/examdesk/internal/service"
	"github.com/ldtran/examdesk/internal/session"
	"github.com/ldtran/examdesk/internal/store"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
)

// @title ExamDesk API
// @version 1.0
// @description Test management API: question catalog, test assembly and assignment, timed exam sessions with auto-submit, and long-answer grading.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			NewBridge,
			store.NewRegistry,
			NewSessionManager,
			NewTokenManager,
			NewGinEngine,
		),

		// Services Layer
		fx.Provide(
			service.NewCatalogService,
			service.NewStudentService,
			service.NewTestService,
			service.NewSessionService,
			service.NewGradingService,
			func(reg *store.Registry, br bridge.Bridge, cfg *config.Config) service.SyncService {
				return service.NewSyncService(reg, br, cfg.Store.Backend)
			},
			func(students service.StudentService, tokens *auth.Manager, cfg *config.Config) service.AuthService {
				return service.NewAuthService(students, tokens, cfg.Auth.AdminPassword)
			},
		),

		// API Controllers Layer
		fx.Provide(
			controller.NewAuthController,
			adminctrl.NewCatalogController,
			adminctrl.NewStudentController,
			adminctrl.NewTestController,
			adminctrl.NewGradingController,
			adminctrl.NewSyncController,
			studentctrl.NewSessionController,
		),

		fx.Invoke(Bootstrap),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

// NewBridge selects the persistence backend from config: Postgres by
// default, a local JSON snapshot when STORE_BACKEND=file.
func NewBridge(cfg *config.Config) (bridge.Bridge, error) {
	if cfg.Store.Backend == "file" {
		log.Info().Str("path", cfg.Store.CacheFile).Msg("Using file snapshot backend")
		return bridge.NewFilecache(cfg.Store.CacheFile)
	}
	db, err := database.NewDatabase(cfg)
	if err != nil {
		return nil, err
	}
	pg := bridge.NewPostgres(db)
	if err := pg.Migrate(); err != nil {
		return nil, err
	}
	return pg, nil
}

func NewSessionManager() *session.Manager {
	return session.NewManager(time.Second)
}

func NewTokenManager(cfg *config.Config) (*auth.Manager, error) {
	return auth.NewManager(cfg.Auth.JWTSecret)
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// Bootstrap fills the in-memory registry from the backend before the server
// accepts requests, seeding demo data when the backend is empty.
func Bootstrap(syncSvc service.SyncService) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return syncSvc.Bootstrap(ctx)
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	tokens *auth.Manager,
	authCtrl *controller.AuthController,
	catalogCtrl *adminctrl.CatalogController,
	studentAdminCtrl *adminctrl.StudentController,
	testCtrl *adminctrl.TestController,
	gradingCtrl *adminctrl.GradingController,
	syncCtrl *adminctrl.SyncController,
	sessionCtrl *studentctrl.SessionController,
) {
	api := router.Group("/api/v1")

	api.POST("/auth/login", authCtrl.Login)

	adminAPI := api.Group("/admin")
	adminAPI.Use(middleware.RequireAuth(tokens), middleware.RequireRole(auth.RoleAdmin))
	{
		adminAPI.GET("/questions", catalogCtrl.GetQuestions)
		adminAPI.POST("/questions", catalogCtrl.SaveQuestion)
		adminAPI.GET("/questions/export", catalogCtrl.ExportQuestionsCSV)
		adminAPI.POST("/questions/import", catalogCtrl.ImportQuestionsCSV)
		adminAPI.DELETE("/questions/:id", catalogCtrl.DeleteQuestion)

		adminAPI.GET("/categories", catalogCtrl.GetCategories)
		adminAPI.POST("/categories", catalogCtrl.AddCategory)
		adminAPI.DELETE("/categories/:name", catalogCtrl.DeleteCategory)

		adminAPI.GET("/backup", catalogCtrl.ExportBackup)
		adminAPI.POST("/backup", catalogCtrl.ImportBackup)

		adminAPI.GET("/students", studentAdminCtrl.GetStudents)
		adminAPI.POST("/students", studentAdminCtrl.SaveStudent)
		adminAPI.GET("/students/export", studentAdminCtrl.ExportStudentsCSV)
		adminAPI.POST("/students/import", studentAdminCtrl.ImportStudentsCSV)
		adminAPI.DELETE("/students/:id", studentAdminCtrl.DeleteStudent)
		adminAPI.PUT("/students/:id/rename", studentAdminCtrl.RenameStudent)
		adminAPI.DELETE("/students/:id/submissions", studentAdminCtrl.ClearSubmissions)

		adminAPI.GET("/tests", testCtrl.GetTests)
		adminAPI.POST("/tests", testCtrl.CreateTest)
		adminAPI.GET("/tests/:id", testCtrl.GetTest)
		adminAPI.DELETE("/tests/:id", testCtrl.DeleteTest)
		adminAPI.PUT("/tests/:id/assign", testCtrl.AssignTest)
		adminAPI.GET("/tests/:id/results", testCtrl.GetResults)
		adminAPI.GET("/tests/:id/results/export", testCtrl.ExportResultsCSV)

		adminAPI.GET("/submissions", gradingCtrl.GetSubmissions)
		adminAPI.GET("/submissions/:id", gradingCtrl.GetSubmission)
		adminAPI.PUT("/submissions/:id/grade", gradingCtrl.GradeAnswer)
		adminAPI.GET("/submissions/:id/score", gradingCtrl.GetScore)
		adminAPI.GET("/reviews", gradingCtrl.GetPendingReviews)

		adminAPI.GET("/sync/status", syncCtrl.GetStatus)
		adminAPI.POST("/sync", syncCtrl.ForceSync)
		adminAPI.GET("/counts", syncCtrl.GetCounts)
	}

	studentAPI := api.Group("/student")
	studentAPI.Use(middleware.RequireAuth(tokens), middleware.RequireRole(auth.RoleStudent))
	{
		studentAPI.GET("/tests", sessionCtrl.GetAssignedTests)
		studentAPI.POST("/tests/:id/start", sessionCtrl.StartTest)
		studentAPI.GET("/tests/:id/result", sessionCtrl.GetResult)
		studentAPI.GET("/tests/:id/submission", sessionCtrl.GetSubmission)
		studentAPI.GET("/overview", sessionCtrl.GetOverview)
		studentAPI.GET("/session", sessionCtrl.GetSession)
		studentAPI.DELETE("/session", sessionCtrl.Abandon)
		studentAPI.PUT("/session/answer", sessionCtrl.SetAnswer)
		studentAPI.POST("/session/submit", sessionCtrl.Submit)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("ExamDesk API server starting on port %s", cfg.Server.Port)
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
