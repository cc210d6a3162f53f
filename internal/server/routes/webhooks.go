package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/do"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/usecase"
)

type webhookRequest struct {
	Name          string   `json:"name"`
	GroupID       string   `json:"groupId"`
	RepoConfigIDs []string `json:"repoConfigIds"`
}

type webhookTriggerRequest struct {
	Message string `json:"message"`
}

func RegisterWebhooks(injector *do.Injector, e *echo.Echo) {
	g := e.Group("/api/webhooks")

	g.GET("", func(c echo.Context) error {
		userID, ok := requireUser(c)
		if !ok {
			return nil
		}
		usecase := do.MustInvoke[usecase.WebhookUsecase](injector)
		hooks, err := usecase.List(c.Request().Context(), userID)
		if err != nil {
			return fail(c, err)
		}

		type response struct {
			Webhooks []*entity.Webhook `json:"webhooks"`
		}
		result := &response{Webhooks: make([]*entity.Webhook, len(hooks))}
		copy(result.Webhooks, hooks)
		return c.JSON(http.StatusOK, result)
	})
	g.POST("", func(c echo.Context) error {
		userID, ok := requireUser(c)
		if !ok {
			return nil
		}
		var req webhookRequest
		if err := c.Bind(&req); err != nil {
			return invalidBody(c)
		}
		hook := &entity.Webhook{UserID: userID, Name: req.Name}
		if req.GroupID != "" {
			id, err := entity.ParseID(req.GroupID)
			if err != nil {
				return errorJSON(c, http.StatusBadRequest, CodeInvalidArgument, "invalid group id")
			}
			hook.GroupID = id
		}
		ids, err := parseIDs(req.RepoConfigIDs)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, CodeInvalidArgument, "invalid config id")
		}
		hook.RepoConfigIDs = ids

		usecase := do.MustInvoke[usecase.WebhookUsecase](injector)
		created, err := usecase.Create(c.Request().Context(), hook)
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
		usecase := do.MustInvoke[usecase.WebhookUsecase](injector)
		hook, err := usecase.Get(c.Request().Context(), userID, id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, hook)
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
		usecase := do.MustInvoke[usecase.WebhookUsecase](injector)
		if err := usecase.Delete(c.Request().Context(), userID, id); err != nil {
			return fail(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
	g.POST("/:id/trigger", func(c echo.Context) error {
		id, ok := pathID(c)
		if !ok {
			return nil
		}
		token, ok := requireToken(c)
		if !ok {
			return nil
		}
		var req webhookTriggerRequest
		if err := c.Bind(&req); err != nil {
			return invalidBody(c)
		}
		input := &usecase.TriggerWebhookInput{
			WebhookID: id,
			Secret:    c.Request().Header.Get(HeaderWebhookSecret),
			Token:     token,
			Message:   req.Message,
		}
		usecase := do.MustInvoke[usecase.TriggerWebhookUsecase](injector)
		batch, err := usecase.Execute(c.Request().Context(), input)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, batch)
	})
}
