package router

import (
	"github.com/gin-gonic/gin"

	"github.com/paperdesk/paperdesk/internal/api/http/handler"
	"github.com/paperdesk/paperdesk/internal/api/http/middleware"
	"github.com/paperdesk/paperdesk/internal/logger"
	"github.com/paperdesk/paperdesk/internal/model"
	"github.com/paperdesk/paperdesk/internal/service"
)

// Router wires services into the HTTP route tree.
type Router struct {
	authService  *service.Auth
	paperService *service.Paper
	tokenService *service.TokenService
	userStore    model.UserStore
	logger       *logger.Logger
}

// New creates a new Router instance.
func New(
	authService *service.Auth,
	paperService *service.Paper,
	tokenService *service.TokenService,
	userStore model.UserStore,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:  authService,
		paperService: paperService,
		tokenService: tokenService,
		userStore:    userStore,
		logger:       logger,
	}
}

// Register builds the gin engine with logging on every route and
// authentication on everything under /api/papers.
func (r *Router) Register() *gin.Engine {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.userStore, r.logger)

	engine := gin.New()
	engine.Use(gin.Recovery(), logging.Handler())

	authHandler := handler.NewAuth(r.authService, r.tokenService, r.logger)
	authGroup := engine.Group("/api/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	paperHandler := handler.NewPaper(r.paperService, r.logger)
	paperGroup := engine.Group("/api/papers", authenticate.Handler())
	{
		paperGroup.GET("/all", paperHandler.All)
		paperGroup.GET("/search", paperHandler.Search)
		paperGroup.POST("/create", paperHandler.Create)
		paperGroup.GET("/author/:username", paperHandler.ByAuthor)
		paperGroup.PUT("/publish/:id", paperHandler.Publish)
		paperGroup.GET("/unpublished", paperHandler.Unpublished)
		paperGroup.GET("/published", paperHandler.Published)
		paperGroup.POST("/manuscript/:id", paperHandler.UploadManuscript)
		paperGroup.GET("/manuscript/:id", paperHandler.DownloadManuscript)
	}

	return engine
}
