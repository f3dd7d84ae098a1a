package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/eduventure/auth-service/docs"
	"github.com/eduventure/auth-service/internal/api/handler"
	"github.com/eduventure/auth-service/internal/api/middleware"
	"github.com/eduventure/auth-service/internal/core/domain"
	"github.com/eduventure/auth-service/internal/core/ports"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	AuthService    ports.AuthService
	Tokens         middleware.TokenVerifier
	Health         map[string]handler.Pinger
	AllowedOrigins []string
	Log            zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.AllowedOrigins,
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			middleware.HeaderAccessToken,
			middleware.HeaderRefreshToken,
		},
		ExposeHeaders:    []string{middleware.HeaderNewAccessToken},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddleware("auth_http"))

	authHandler := handler.NewAuthHandler(deps.AuthService)
	userHandler := handler.NewUserHandler(deps.AuthService)
	healthHandler := handler.NewHealthHandler(deps.Health)

	// --- Public auth routes ---
	e.POST("/signup", authHandler.Signup)
	e.POST("/validateOtp", authHandler.ValidateOTP)
	e.POST("/resendOtp", authHandler.ResendOTP)
	e.POST("/login", authHandler.Login)
	e.POST("/logout", authHandler.Logout)
	e.POST("/refresh", authHandler.Refresh)

	// --- Protected routes ---
	protected := e.Group("", middleware.Refresh(deps.Tokens, deps.AuthService))
	protected.GET("/user", userHandler.GetUser)
	protected.PUT("/update-username", userHandler.UpdateUsername)
	protected.GET("/dashboard", userHandler.Dashboard, middleware.RBAC(domain.RoleAdmin))

	// --- Operations ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
