package routes

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/do"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/usecase"
)

func RegisterHistory(injector *do.Injector, e *echo.Echo) {
	g := e.Group("/api/history")

	g.GET("", func(c echo.Context) error {
		userID, ok := requireUser(c)
		if !ok {
			return nil
		}
		filter := entity.DeploymentLogFilter{
			Repo:   c.QueryParam("repo"),
			Status: entity.BranchStatus(c.QueryParam("status")),
		}
		if raw := c.QueryParam("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit <= 0 {
				return errorJSON(c, http.StatusBadRequest, CodeInvalidArgument, "invalid limit")
			}
			filter.Limit = limit
		}
		usecase := do.MustInvoke[usecase.HistoryUsecase](injector)
		logs, err := usecase.List(c.Request().Context(), userID, filter)
		if err != nil {
			return fail(c, err)
		}

		type response struct {
			History []*entity.DeploymentLog `json:"history"`
		}
		result := &response{History: make([]*entity.DeploymentLog, len(logs))}
		copy(result.History, logs)
		return c.JSON(http.StatusOK, result)
	})
	g.GET("/export", func(c echo.Context) error {
		userID, ok := requireUser(c)
		if !ok {
			return nil
		}
		filename := fmt.Sprintf("deployment-history-%s.csv", time.Now().UTC().Format("20060102"))
		res := c.Response()
		res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
		res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
		usecase := do.MustInvoke[usecase.HistoryUsecase](injector)
		if err := usecase.Export(c.Request().Context(), userID, res); err != nil {
			if res.Committed {
				return err
			}
			return fail(c, err)
		}
		return nil
	})
	g.DELETE("", func(c echo.Context) error {
		userID, ok := requireUser(c)
		if !ok {
			return nil
		}
		usecase := do.MustInvoke[usecase.HistoryUsecase](injector)
		n, err := usecase.Clear(c.Request().Context(), userID)
		if err != nil {
			return fail(c, err)
		}

		type response struct {
			Deleted int `json:"deleted"`
		}
		return c.JSON(http.StatusOK, &response{Deleted: n})
	})
}
