package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/do"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/usecase"
	"github.com/yz4230/retrigger/internal/utils"
)

type deployRequest struct {
	Action      string            `json:"action"`
	ConfigIDs   []string          `json:"configIds"`
	Repos       []deployRepoInput `json:"repos"`
	Owner       string            `json:"owner"`
	Repo        string            `json:"repo"`
	Branches    []string          `json:"branches"`
	Message     string            `json:"message"`
	Concurrency int               `json:"concurrency"`
	RateLimited bool              `json:"rateLimited"`
}

// deployRepoInput accepts either owner+repo or a fullName.
type deployRepoInput struct {
	Owner    string   `json:"owner"`
	Repo     string   `json:"repo"`
	FullName string   `json:"fullName"`
	Branches []string `json:"branches"`
	Message  string   `json:"message"`
}

func (r deployRepoInput) target() entity.DeploymentTarget {
	owner, repo := r.Owner, r.Repo
	if r.FullName != "" {
		owner, repo, _ = utils.SplitFullName(r.FullName)
	}
	return entity.DeploymentTarget{Owner: owner, Repo: repo, Branches: r.Branches, Message: r.Message}
}

func RegisterDeploy(injector *do.Injector, e *echo.Echo) {
	e.POST("/api/deploy", func(c echo.Context) error {
		token, ok := requireToken(c)
		if !ok {
			return nil
		}
		userID, ok := requireUser(c)
		if !ok {
			return nil
		}
		var req deployRequest
		if err := c.Bind(&req); err != nil {
			return invalidBody(c)
		}
		if req.Concurrency < 0 {
			return errorJSON(c, http.StatusBadRequest, CodeInvalidArgument, "concurrency must be positive")
		}
		ids, err := parseIDs(req.ConfigIDs)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, CodeInvalidArgument, "invalid config id")
		}
		repos := make([]entity.DeploymentTarget, len(req.Repos))
		for i, r := range req.Repos {
			repos[i] = r.target()
		}

		input := &usecase.TriggerDeploymentInput{
			UserID:      userID,
			Token:       token,
			Action:      req.Action,
			ConfigIDs:   ids,
			Repos:       repos,
			Owner:       req.Owner,
			Repo:        req.Repo,
			Branches:    req.Branches,
			Message:     req.Message,
			Concurrency: req.Concurrency,
			RateLimited: req.RateLimited,
		}

		usecase := do.MustInvoke[usecase.TriggerDeploymentUsecase](injector)
		out, err := usecase.Execute(c.Request().Context(), input)
		if err != nil {
			return fail(c, err)
		}
		if out.Single != nil {
			return c.JSON(http.StatusOK, out.Single)
		}
		return c.JSON(http.StatusOK, out.Batch)
	})
}
