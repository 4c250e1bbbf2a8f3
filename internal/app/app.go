package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/chatloop/chat-backend/internal/config"
	"github.com/chatloop/chat-backend/internal/handler"
	"github.com/chatloop/chat-backend/internal/realtime"
	"github.com/chatloop/chat-backend/internal/repository"
	"github.com/chatloop/chat-backend/internal/service"
	"github.com/chatloop/chat-backend/internal/utils"
	"github.com/chatloop/chat-backend/pkg/mailer"
	"github.com/chatloop/chat-backend/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra      Infrastructure
	config     *config.Config
	router     *gin.Engine
	server     *http.Server
	authorizer *realtime.Authorizer
	registry   *realtime.Registry
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	repos := repository.NewRepositories(infra.Postgres())

	codec := utils.NewTokenCodec(
		cfg.JWT.AccessTokenSecret,
		cfg.JWT.RefreshTokenSecret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.Subject,
	)
	hasher := utils.NewPasswordHasher(cfg.Security.PasswordHashIterations)

	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	authService := service.NewAuthService(
		repos.User,
		repos.Role,
		repos.Activity,
		repos.AuthTokenKeys,
		repos.VerificationToken,
		hasher,
		codec,
		cfg.Security.LockoutThreshold,
	)
	emailService := service.NewEmailService(
		repos.User,
		repos.VerificationToken,
		newEmailSender(cfg, infra.Logger()),
		cfg.ClientURL,
		cfg.Security.VerificationTokenTTL.Duration,
	)
	userService := service.NewUserService(repos.User)

	authHandler := handler.NewAuthHandler(authService, emailService, infra.Logger(), cfg.IsProduction())
	userHandler := handler.NewUserHandler(userService, infra.Logger(), cfg.IsProduction())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("chat-backend"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, infra.Logger(), authHandler, userHandler, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:      infra,
		config:     cfg,
		router:     router,
		server:     srv,
		authorizer: realtime.NewAuthorizer(authService),
		registry:   realtime.NewRegistry(),
	}
}

// newEmailSender picks the delivery backend: Postmark when a server
// token is configured in production, otherwise the logging dev sender.
func newEmailSender(cfg *config.Config, logger *zap.Logger) service.EmailSender {
	if cfg.IsProduction() && cfg.SMTP.PostmarkServerToken != "" {
		return mailer.NewPostmark(cfg.SMTP.PostmarkServerToken, cfg.SMTP.SenderEmail)
	}
	return mailer.NewDev(logger)
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// Authorizer exposes the realtime admission check to the socket
// transport layer.
func (a *App) Authorizer() *realtime.Authorizer {
	return a.authorizer
}

// Registry exposes the realtime connection registry.
func (a *App) Registry() *realtime.Registry {
	return a.registry
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	rateLimit := handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey)
	authRequired := handler.AuthMiddleware(authService, logger, cfg.IsProduction())

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", rateLimit, authHandler.Login)
			auth.POST("/signup", rateLimit, authHandler.Signup)
			auth.DELETE("/logout", authRequired, authHandler.Logout)
			auth.PUT("/token-refresh", authHandler.RefreshTokens)
			auth.POST("/verify-account", authHandler.VerifyAccount)
			auth.POST("/verify-email", authHandler.VerifyEmail)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.GET("/verify-verification-token/:token", authHandler.VerifyVerificationToken)
			auth.PUT("/reset-password/:token", authHandler.ResetPassword)
			auth.PUT("/change-password", authRequired, authHandler.ChangePassword)
		}

		user := v1.Group("/user")
		{
			user.PATCH("/username", authRequired, userHandler.UpdateUserName)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
