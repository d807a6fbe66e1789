// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"ftpadmin/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler  *handler.UserHandler
	GroupHandler *handler.GroupHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler  *handler.UserHandler
	groupHandler *handler.GroupHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:  params.UserHandler,
		groupHandler: params.GroupHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	userGroup := e.Group("/users")
	{
		userGroup.GET("", r.userHandler.List)
		userGroup.POST("", r.userHandler.Create)
		userGroup.GET("/stats", r.userHandler.Stats)
		userGroup.GET("/password-suggestion", r.userHandler.SuggestPassword)
		userGroup.GET("/:id", r.userHandler.Get)
		userGroup.PUT("/:id", r.userHandler.Update)
		userGroup.DELETE("/:id", r.userHandler.Delete)
	}

	groupGroup := e.Group("/groups")
	{
		groupGroup.GET("", r.groupHandler.List)
		groupGroup.POST("", r.groupHandler.Create)
		groupGroup.GET("/stats", r.groupHandler.Stats)
		groupGroup.GET("/:gid", r.groupHandler.Get)
		groupGroup.PUT("/:gid/gid", r.groupHandler.Renumber)
		groupGroup.DELETE("/:gid", r.groupHandler.Delete)
		groupGroup.POST("/:gid/members", r.groupHandler.AddMember)
		groupGroup.DELETE("/:gid/members/:login", r.groupHandler.RemoveMember)
	}
}
