package http

import (
	"errors"
	"fmt"
	"net/http"

	"mediaflow/internal/http/middleware"
	apperrors "mediaflow/pkg/errors"

	"github.com/labstack/echo/v4"
)

const (
	jsonKeyError     = "error"
	jsonKeyCode      = "code"
	jsonKeyRequestID = "request_id"
	unknownRequestID = "unknown"
	msgInternalError = "Internal server error"
)

// CustomHTTPErrorHandler renders every error returned by handlers and
// middleware as {"error", "code", "request_id"}. Server errors are logged in
// full and masked for the client.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, code, message := classify(err)

	requestID := middleware.GetRequestID(c)
	if requestID == "" {
		requestID = c.Response().Header().Get(echo.HeaderXRequestID)
	}
	if requestID == "" {
		requestID = unknownRequestID
	}

	if status >= http.StatusInternalServerError {
		c.Logger().Error("internal_server_error",
			"request_id", requestID,
			"status", status,
			"error", err.Error())
		message = msgInternalError
		code = apperrors.CodeInternal
	} else {
		c.Logger().Warn("client_error",
			"request_id", requestID,
			"status", status,
			"code", code,
			"error", err.Error())
	}

	body := map[string]string{
		jsonKeyError:     message,
		jsonKeyCode:      code,
		jsonKeyRequestID: requestID,
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func classify(err error) (int, string, string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Status, appErr.Code, appErr.Message
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, codeForStatus(httpErr.Code), fmt.Sprintf("%v", httpErr.Message)
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, apperrors.CodeNotFound, "Resource not found"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, apperrors.CodeUnauthorized, "Unauthorized"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, apperrors.CodeForbidden, "Forbidden"
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest, apperrors.CodeValidation, "Validation error"
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, apperrors.CodeConflict, "Resource already exists"
	}

	return http.StatusInternalServerError, apperrors.CodeInternal, msgInternalError
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return apperrors.CodeNotFound
	case http.StatusUnauthorized:
		return apperrors.CodeUnauthorized
	case http.StatusForbidden:
		return apperrors.CodeForbidden
	case http.StatusConflict:
		return apperrors.CodeConflict
	case http.StatusTooManyRequests:
		return apperrors.CodeRateLimited
	}
	if status >= http.StatusInternalServerError {
		return apperrors.CodeInternal
	}
	return apperrors.CodeBadRequest
}
