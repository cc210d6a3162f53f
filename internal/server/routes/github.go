package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/do"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/usecase"
)

func RegisterGitHub(injector *do.Injector, e *echo.Echo) {
	g := e.Group("/api/github")

	g.GET("/repos", func(c echo.Context) error {
		token, ok := requireToken(c)
		if !ok {
			return nil
		}
		usecase := do.MustInvoke[usecase.GitHubUsecase](injector)
		repos, err := usecase.ListRepositories(c.Request().Context(), token, queryBool(c, "refresh"))
		if err != nil {
			return fail(c, err)
		}

		type response struct {
			Repositories []entity.GitHubRepository `json:"repositories"`
		}
		return c.JSON(http.StatusOK, &response{Repositories: repos})
	})
	g.GET("/repos/:owner/:repo/branches", func(c echo.Context) error {
		token, ok := requireToken(c)
		if !ok {
			return nil
		}
		usecase := do.MustInvoke[usecase.GitHubUsecase](injector)
		branches, err := usecase.ListBranches(c.Request().Context(), token, c.Param("owner"), c.Param("repo"), queryBool(c, "refresh"))
		if err != nil {
			return fail(c, err)
		}

		type response struct {
			Branches []entity.GitHubBranch `json:"branches"`
		}
		return c.JSON(http.StatusOK, &response{Branches: branches})
	})
}
