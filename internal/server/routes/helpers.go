package routes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/yz4230/retrigger/internal/entity"
	"github.com/yz4230/retrigger/internal/github"
	"github.com/yz4230/retrigger/internal/usecase"
	"github.com/yz4230/retrigger/internal/utils"
)

const (
	HeaderUserID        = "X-User-Id"
	HeaderWebhookSecret = "X-Webhook-Secret"
)

const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeMissingUserID   = "MISSING_USER_ID"
	CodeInvalidBody     = "INVALID_BODY"
	CodeInvalidAction   = "INVALID_ACTION"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeNoConfigs       = "NO_CONFIGS"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeForbidden       = "FORBIDDEN"
	CodeNotImplemented  = "NOT_IMPLEMENTED"
	CodeInternal        = "INTERNAL"
	CodeGitHub          = "GITHUB_ERROR"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func errorJSON(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, &errorResponse{Error: msg, Code: code})
}

// fail maps a use case error to a response. Unknown errors are logged and
// reported without detail.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, entity.ErrUnauthorized):
		return errorJSON(c, http.StatusUnauthorized, CodeUnauthorized, "missing or invalid authorization")
	case errors.Is(err, usecase.ErrInvalidAction):
		return errorJSON(c, http.StatusBadRequest, CodeInvalidAction, "unknown action")
	case errors.Is(err, entity.ErrInvalid):
		return errorJSON(c, http.StatusBadRequest, CodeInvalidArgument, "invalid argument")
	case errors.Is(err, entity.ErrNoConfigs):
		return errorJSON(c, http.StatusNotFound, CodeNoConfigs, "no repository configurations to deploy")
	case errors.Is(err, entity.ErrNotFound):
		return errorJSON(c, http.StatusNotFound, CodeNotFound, "not found")
	case errors.Is(err, entity.ErrConflict):
		return errorJSON(c, http.StatusConflict, CodeConflict, "already exists")
	case errors.Is(err, entity.ErrForbidden):
		return errorJSON(c, http.StatusForbidden, CodeForbidden, "forbidden")
	}
	var apiErr *github.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusUnauthorized:
			return errorJSON(c, http.StatusUnauthorized, CodeUnauthorized, apiErr.Message)
		case apiErr.Status == http.StatusNotFound:
			return errorJSON(c, http.StatusNotFound, CodeNotFound, apiErr.Message)
		case apiErr.Status >= 400 && apiErr.Status < 500:
			return errorJSON(c, apiErr.Status, CodeGitHub, apiErr.Message)
		}
	}
	zerolog.Ctx(c.Request().Context()).Error().Err(err).Str("path", c.Path()).Msg("request failed")
	return errorJSON(c, http.StatusInternalServerError, CodeInternal, "internal error")
}

func invalidBody(c echo.Context) error {
	return errorJSON(c, http.StatusBadRequest, CodeInvalidBody, "invalid request body")
}

// requireToken extracts the bearer token or writes a 401.
func requireToken(c echo.Context) (string, bool) {
	token := utils.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if token == "" {
		_ = errorJSON(c, http.StatusUnauthorized, CodeUnauthorized, "missing bearer token")
		return "", false
	}
	return token, true
}

// requireUser extracts the caller's user id or writes a 400.
func requireUser(c echo.Context) (string, bool) {
	userID := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
	if userID == "" {
		_ = errorJSON(c, http.StatusBadRequest, CodeMissingUserID, "missing user id")
		return "", false
	}
	return userID, true
}

func pathID(c echo.Context) (entity.ID, bool) {
	id, err := entity.ParseID(c.Param("id"))
	if err != nil {
		_ = errorJSON(c, http.StatusBadRequest, CodeInvalidArgument, "invalid id")
		return "", false
	}
	return id, true
}

func parseIDs(raw []string) ([]entity.ID, error) {
	if raw == nil {
		return nil, nil
	}
	ids := make([]entity.ID, len(raw))
	for i, s := range raw {
		id, err := entity.ParseID(s)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func queryBool(c echo.Context, name string) bool {
	b, _ := strconv.ParseBool(c.QueryParam(name))
	return b
}
