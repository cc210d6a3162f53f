package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/do"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/usecase"
)

type repoConfigRequest struct {
	FullName         string   `json:"fullName"`
	SelectedBranches []string `json:"selectedBranches"`
	IsActive         *bool    `json:"isActive"`
}

func (r *repoConfigRequest) toEntity(userID string) *entity.RepoConfig {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &entity.RepoConfig{
		UserID:           userID,
		FullName:         r.FullName,
		SelectedBranches: r.SelectedBranches,
		IsActive:         active,
	}
}

func RegisterRepoConfigs(injector *do.Injector, e *echo.Echo) {
	g := e.Group("/api/repo-configs")

	g.GET("", func(c echo.Context) error {
		userID, ok := requireUser(c)
		if !ok {
			return nil
		}
		usecase := do.MustInvoke[usecase.RepoConfigUsecase](injector)
		configs, err := usecase.List(c.Request().Context(), userID, queryBool(c, "active"))
		if err != nil {
			return fail(c, err)
		}

		type response struct {
			Configs []*entity.RepoConfig `json:"configs"`
		}
		result := &response{Configs: make([]*entity.RepoConfig, len(configs))}
		copy(result.Configs, configs)
		return c.JSON(http.StatusOK, result)
	})
	g.POST("", func(c echo.Context) error {
		userID, ok := requireUser(c)
		if !ok {
			return nil
		}
		var req repoConfigRequest
		if err := c.Bind(&req); err != nil {
			return invalidBody(c)
		}
		usecase := do.MustInvoke[usecase.RepoConfigUsecase](injector)
		cfg, err := usecase.Create(c.Request().Context(), req.toEntity(userID))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusCreated, cfg)
	})
	g.GET("/:id", func(c echo.Context) error {
		userID, ok := requireUser(c)
		if !ok {
			return nil
		}
		id, ok := pathID(c)
		if !ok {
			return nil
		}
		usecase := do.MustInvoke[usecase.RepoConfigUsecase](injector)
		cfg, err := usecase.Get(c.Request().Context(), userID, id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, cfg)
	})
	g.PUT("/:id", func(c echo.Context) error {
		userID, ok := requireUser(c)
		if !ok {
			return nil
		}
		id, ok := pathID(c)
		if !ok {
			return nil
		}
		var req repoConfigRequest
		if err := c.Bind(&req); err != nil {
			return invalidBody(c)
		}
		cfg := req.toEntity(userID)
		cfg.ID = id
		usecase := do.MustInvoke[usecase.RepoConfigUsecase](injector)
		updated, err := usecase.Update(c.Request().Context(), cfg)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, updated)
	})
	g.DELETE("/:id", func(c echo.Context) error {
		userID, ok := requireUser(c)
		if !ok {
			return nil
		}
		id, ok := pathID(c)
		if !ok {
			return nil
		}
		usecase := do.MustInvoke[usecase.RepoConfigUsecase](injector)
		if err := usecase.Delete(c.Request().Context(), userID, id); err != nil {
			return fail(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}
