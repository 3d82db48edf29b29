package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/ccarlsson/todo-app/internal/auth"
	"github.com/ccarlsson/todo-app/internal/transport/http/handler"
	"github.com/ccarlsson/todo-app/internal/transport/http/middleware"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, taskHandler *handler.TaskHandler, tokens *auth.TokenService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)

	// Protected task routes; the caller identity comes from the verified
	// token's subject claim.
	tasks := r.Group("/tasks", middleware.Auth(tokens))
	tasks.POST("", taskHandler.Create)
	tasks.GET("", taskHandler.List)
	tasks.GET("/:id", taskHandler.GetByID)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	return r
}
