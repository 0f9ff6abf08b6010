// Package router assembles the gin engine.
package router

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "gym_backend/internal/feature/auth/transport/handler"
	pagehandler "gym_backend/internal/feature/portal/transport/handler"
	"gym_backend/internal/platform/http/handler"
	"gym_backend/internal/platform/http/middleware"
	jwtmw "gym_backend/internal/platform/jwt"
	"gym_backend/internal/shared/ratelimiter"
)

// Deps are the handlers and middleware the router mounts.
type Deps struct {
	Auth        *authhandler.AuthHandler
	Pages       *pagehandler.PageHandler
	Health      *handler.Health
	Tokens      jwtmw.TokenParser
	Sessions    jwtmw.SessionValidator
	Limiter     *ratelimiter.RateLimiter
	Templates   *template.Template
	CORSOrigins []string
	Logger      *slog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(d.Logger))
	r.SetHTMLTemplate(d.Templates)

	// Liveness and dependency checks
	r.GET("/healthz", d.Health.Handle)
	r.HEAD("/healthz", d.Health.Handle)

	// Server-rendered pages, identified by the session cookie
	pages := r.Group("/")
	pages.Use(jwtmw.Identify(d.Tokens, d.Sessions, pagehandler.SessionCookie))
	{
		pages.GET("/", d.Pages.Dashboard)
		pages.GET("/login", d.Pages.LoginPage)
		pages.POST("/login", d.Limiter.Middleware(), d.Pages.Login)
		pages.GET("/register", d.Pages.RegisterPage)
		pages.POST("/register", d.Pages.Register)
		pages.POST("/logout", d.Pages.Logout)
	}

	// JSON API
	api := r.Group("/api/v1")
	if len(d.CORSOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins:  d.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Authorization", "Content-Type"},
			ExposeHeaders: []string{middleware.HeaderRequestID},
		}))
		// Group middleware only runs on matched routes; give preflights one.
		api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}
	api.POST("/signup", d.Auth.Signup)
	api.POST("/login", d.Limiter.Middleware(), d.Auth.Login)

	// Bearer token required
	auth := api.Group("/")
	auth.Use(jwtmw.AuthRequired(d.Tokens, d.Sessions))
	{
		auth.POST("/logout", d.Auth.Logout)
		auth.POST("/logout/all", d.Auth.LogoutAll)
		auth.GET("/me", d.Auth.Me)
		auth.GET("/sessions", d.Auth.Sessions)
	}

	return r
}
