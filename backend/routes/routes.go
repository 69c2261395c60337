package routes

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"ibam/backend/config"
	"ibam/backend/controllers"
	"ibam/backend/dashboard"
	"ibam/backend/middleware"
	"ibam/backend/store"
	"ibam/backend/utils"
)

// NewApp builds the fiber app with middleware and every route.
func NewApp(db *gorm.DB, cfg *config.Config, cur config.Curriculum, logger *utils.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "ibam",
		ErrorHandler: newErrorHandler(logger.With("component", "http")),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowCredentials: !strings.Contains(cfg.CORSOrigins, "*"),
	}))
	app.Use(middleware.LoggingMiddleware(logger.With("component", "http")))

	SetupRoutes(app, db, cfg, cur, logger)
	return app
}

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, cur config.Curriculum, logger *utils.Logger) {
	s := store.New(db)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	// Auth routes
	authController := controllers.NewAuthController(s, cfg, logger)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)
	app.Post("/api/auth/logout", authController.Logout)

	authMiddleware := middleware.AuthMiddleware(cfg)

	// Dashboard routes
	loader := dashboard.NewLoader(s, cur, logger)
	dashboardController := controllers.NewDashboardController(loader, s, cfg, cur)
	app.Get("/api/dashboard", dashboardController.GetDashboard)
	app.Get("/api/curriculum", dashboardController.GetCurriculum)

	// User routes
	userController := controllers.NewUserController(s)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)

	// Module routes
	modulesController := controllers.NewModulesController(s, cur, logger)
	app.Get("/api/modules/:id", authMiddleware, modulesController.GetModuleDetails)

	// Progress routes
	progressController := controllers.NewProgressController(s, logger)
	progress := app.Group("/api/progress", authMiddleware)
	progress.Put("/sessions/:id", progressController.RecordSessionProgress)
}

// newErrorHandler hides internal error text from clients; only *fiber.Error
// messages are meant for them.
func newErrorHandler(logger *utils.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return utils.Error(c, fe.Code, fe.Message)
		}
		logger.Error("unhandled error", "path", c.Path(), "error", err)
		return utils.InternalServerError(c, "Internal server error")
	}
}
