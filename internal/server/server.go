package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/samber/do"
	"github.com/yz4230/retrigger/internal/config"
	"github.com/yz4230/retrigger/internal/deploy"
	"github.com/yz4230/retrigger/internal/github"
	"github.com/yz4230/retrigger/internal/repository"
	"github.com/yz4230/retrigger/internal/server/routes"
	"github.com/yz4230/retrigger/internal/usecase"
	"gorm.io/gorm"
)

type Config struct {
	App    *config.Config
	Logger zerolog.Logger
	// Trigger replaces the GitHub client as the commit trigger when set.
	Trigger deploy.CommitTrigger
}

type Server struct {
	e        *echo.Echo
	config   *Config
	injector *do.Injector
}

func New(config *Config) *Server {
	e := echo.New()
	e.HidePort = true
	e.HideBanner = true
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogRemoteIP:  true,
		LogMethod:    true,
		LogURI:       true,
		LogUserAgent: true,
		LogStatus:    true,
		LogLatency:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			config.Logger.Info().
				Str("remote_ip", v.RemoteIP).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("user_agent", v.UserAgent).
				Int("status", v.Status).
				Int64("latency_ms", v.Latency.Milliseconds()).
				Msg("handled request")
			return nil
		},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			config.Logger.Error().Err(err).Bytes("stack", stack).Send()
			return err
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: config.App.Server.CORSOrigins,
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, routes.HeaderUserID, routes.HeaderWebhookSecret},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := config.Logger.WithContext(req.Context())
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	})

	s := &Server{e: e, config: config}
	s.init()
	return s
}

func (s *Server) init() {
	s.injector = do.New()
	s.injectDependencies(s.injector)
	s.registerRoutes(s.injector)
}

func (s *Server) injectDependencies(injector *do.Injector) {
	do.ProvideValue(injector, s.config.App)
	do.Provide(injector, func(i *do.Injector) (*gorm.DB, error) {
		return repository.NewSQLiteDB(s.config.App.Database.DSN)
	})
	do.Provide(injector, func(i *do.Injector) (repository.RepoConfigRepository, error) {
		return repository.NewRepoConfigRepository(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(injector, func(i *do.Injector) (repository.GroupRepository, error) {
		return repository.NewGroupRepository(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(injector, func(i *do.Injector) (repository.WebhookRepository, error) {
		return repository.NewWebhookRepository(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(injector, func(i *do.Injector) (repository.DeploymentLogRepository, error) {
		return repository.NewDeploymentLogRepository(do.MustInvoke[*gorm.DB](i)), nil
	})
	do.Provide(injector, func(i *do.Injector) (*github.Client, error) {
		return github.NewClient(s.config.App.GitHub, s.config.Logger), nil
	})
	do.Provide(injector, func(i *do.Injector) (*deploy.Orchestrator, error) {
		trigger := s.config.Trigger
		if trigger == nil {
			trigger = do.MustInvoke[*github.Client](i)
		}
		return deploy.NewOrchestrator(trigger), nil
	})
	do.Provide(injector, usecase.NewTriggerDeploymentUsecase)
	do.Provide(injector, usecase.NewRepoConfigUsecase)
	do.Provide(injector, usecase.NewGroupUsecase)
	do.Provide(injector, usecase.NewDeployGroupUsecase)
	do.Provide(injector, usecase.NewWebhookUsecase)
	do.Provide(injector, usecase.NewTriggerWebhookUsecase)
	do.Provide(injector, usecase.NewHistoryUsecase)
	do.Provide(injector, usecase.NewGitHubUsecase)
}

func (s *Server) registerRoutes(injector *do.Injector) {
	routes.RegisterMisc(injector, s.e)
	routes.RegisterDeploy(injector, s.e)
	routes.RegisterRepoConfigs(injector, s.e)
	routes.RegisterGroups(injector, s.e)
	routes.RegisterWebhooks(injector, s.e)
	routes.RegisterHistory(injector, s.e)
	routes.RegisterGitHub(injector, s.e)
	routes.RegisterAuth(injector, s.e)
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.App.Server.Port)
	s.config.Logger.Info().Str("addr", addr).Msg("starting server")
	return s.e.Start(addr)
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.e.Shutdown(ctx); err != nil {
		return err
	}
	return s.injector.Shutdown()
}
