package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/yatube/community/internal/middleware"
	"github.com/yatube/community/internal/services"
	"gorm.io/gorm"
)

type Deps struct {
	DB          *gorm.DB
	Events      services.EventPublisher
	PageSize    int
	FrontendURL string
}

// NewApp builds the fiber app around a views engine with the page-aware
// error handler installed.
func NewApp(views fiber.Views) *fiber.App {
	return fiber.New(fiber.Config{
		Views:        views,
		ErrorHandler: ErrorHandler,
		BodyLimit:    1 * 1024 * 1024,
	})
}

// Register mounts every route. Fixed paths come before the /:username
// catch-alls so they are never shadowed by a username.
func Register(app *fiber.App, deps Deps) {
	feed := services.NewFeedService(deps.DB, deps.PageSize)
	posts := services.NewPostService(deps.DB, deps.Events)
	groups := services.NewGroupService(deps.DB)
	accounts := services.NewAccountService(deps.DB)

	pagesHandler := NewPagesHandler(feed, posts, groups)
	authHandler := NewAuthHandler(accounts)
	groupsHandler := NewGroupsHandler(groups)
	authMiddleware := middleware.NewAuthMiddleware(deps.DB)

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(deps.FrontendURL))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", Health)
	app.Get("/api/version", GetVersion)

	authRoutes := app.Group("/auth")
	authRoutes.Get("/login", authHandler.LoginForm)
	authRoutes.Post("/signup", authHandler.Signup)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/logout", authHandler.Logout)

	// Per-route guards; /admin is also a valid username path.
	app.Get("/admin/groups", authMiddleware.RequireAuth, middleware.AdminOnly, groupsHandler.List)
	app.Post("/admin/groups", authMiddleware.RequireAuth, middleware.AdminOnly, groupsHandler.Create)
	app.Delete("/admin/groups/:slug", authMiddleware.RequireAuth, middleware.AdminOnly, groupsHandler.Delete)

	app.Get("/", authMiddleware.OptionalAuth, pagesHandler.Index)
	app.Get("/new", authMiddleware.RequireLogin, pagesHandler.NewForm)
	app.Post("/new", authMiddleware.RequireLogin, pagesHandler.Create)
	app.Get("/group/:slug", authMiddleware.OptionalAuth, pagesHandler.Group)

	app.Get("/:username", authMiddleware.OptionalAuth, pagesHandler.Profile)
	app.Get("/:username/:post_id", authMiddleware.OptionalAuth, pagesHandler.Post)
	app.Get("/:username/:post_id/edit", authMiddleware.OptionalAuth, pagesHandler.EditForm)
	app.Post("/:username/:post_id/edit", authMiddleware.OptionalAuth, pagesHandler.Edit)
}
