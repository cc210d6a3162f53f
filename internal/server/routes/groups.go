package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/do"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/usecase"
)

type groupRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	RepoConfigIDs []string `json:"repoConfigIds"`
}

type groupDeployRequest struct {
	Message     string `json:"message"`
	Concurrency int    `json:"concurrency"`
	RateLimited bool   `json:"rateLimited"`
}

func RegisterGroups(injector *do.Injector, e *echo.Echo) {
	g := e.Group("/api/groups")

	bindGroup := func(c echo.Context, userID string) (*entity.DeploymentGroup, bool) {
		var req groupRequest
		if err := c.Bind(&req); err != nil {
			_ = invalidBody(c)
			return nil, false
		}
		ids, err := parseIDs(req.RepoConfigIDs)
		if err != nil {
			_ = errorJSON(c, http.StatusBadRequest, CodeInvalidArgument, "invalid config id")
			return nil, false
		}
		return &entity.DeploymentGroup{
			UserID:        userID,
			Name:          req.Name,
			Description:   req.Description,
			RepoConfigIDs: ids,
		}, true
	}

	g.GET("", func(c echo.Context) error {
		userID, ok := requireUser(c)
		if !ok {
			return nil
		}
		usecase := do.MustInvoke[usecase.GroupUsecase](injector)
		groups, err := usecase.List(c.Request().Context(), userID)
		if err != nil {
			return fail(c, err)
		}

		type response struct {
			Groups []*entity.DeploymentGroup `json:"groups"`
		}
		result := &response{Groups: make([]*entity.DeploymentGroup, len(groups))}
		copy(result.Groups, groups)
		return c.JSON(http.StatusOK, result)
	})
	g.POST("", func(c echo.Context) error {
		userID, ok := requireUser(c)
		if !ok {
			return nil
		}
		group, ok := bindGroup(c, userID)
		if !ok {
			return nil
		}
		usecase := do.MustInvoke[usecase.GroupUsecase](injector)
		created, err := usecase.Create(c.Request().Context(), group)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusCreated, created)
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
		usecase := do.MustInvoke[usecase.GroupUsecase](injector)
		group, err := usecase.Get(c.Request().Context(), userID, id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, group)
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
		group, ok := bindGroup(c, userID)
		if !ok {
			return nil
		}
		group.ID = id
		usecase := do.MustInvoke[usecase.GroupUsecase](injector)
		updated, err := usecase.Update(c.Request().Context(), group)
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
		usecase := do.MustInvoke[usecase.GroupUsecase](injector)
		if err := usecase.Delete(c.Request().Context(), userID, id); err != nil {
			return fail(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
	g.POST("/:id/deploy", func(c echo.Context) error {
		token, ok := requireToken(c)
		if !ok {
			return nil
		}
		userID, ok := requireUser(c)
		if !ok {
			return nil
		}
		id, ok := pathID(c)
		if !ok {
			return nil
		}
		var req groupDeployRequest
		if c.Request().ContentLength != 0 {
			if err := c.Bind(&req); err != nil {
				return invalidBody(c)
			}
		}
		input := &usecase.DeployGroupInput{
			UserID:      userID,
			Token:       token,
			GroupID:     id,
			Message:     req.Message,
			Concurrency: req.Concurrency,
			RateLimited: req.RateLimited,
		}
		usecase := do.MustInvoke[usecase.DeployGroupUsecase](injector)
		batch, err := usecase.Execute(c.Request().Context(), input)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, batch)
	})
}
