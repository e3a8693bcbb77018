package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/odinbook/backend/internal/apperr"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var kindStatus = map[apperr.Kind]int{
	apperr.KindUnauthenticated:    http.StatusUnauthorized,
	apperr.KindInvalidCredentials: http.StatusUnauthorized,
	apperr.KindConflict:           http.StatusConflict,
	apperr.KindAlreadyAccepted:    http.StatusConflict,
	apperr.KindNotFound:           http.StatusNotFound,
	apperr.KindForbidden:          http.StatusForbidden,
	apperr.KindInvalidInput:       http.StatusBadRequest,
	apperr.KindInvalidTarget:      http.StatusBadRequest,
}

// StatusFor returns the HTTP status an application error kind maps to.
func StatusFor(kind apperr.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HTTPErrorHandler renders handler errors. Application errors map through
// their Kind, echo errors keep their code, and everything else is logged and
// reported as a generic 500.
func HTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := render(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("route", c.Path()),
				zap.Error(err),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.Warn("write error response", zap.Error(writeErr))
		}
	}
}

func render(err error) (int, ErrorBody) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind != apperr.KindInternal {
		return StatusFor(appErr.Kind), ErrorBody{Error: ErrorDetail{Code: appErr.Kind.String(), Message: appErr.Message}}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok && m != "" {
			message = m
		} else if httpErr.Message != nil {
			message = fmt.Sprint(httpErr.Message)
		}
		return httpErr.Code, ErrorBody{Error: ErrorDetail{Code: codeForStatus(httpErr.Code), Message: message}}
	}

	return http.StatusInternalServerError, ErrorBody{Error: ErrorDetail{
		Code:    apperr.KindInternal.String(),
		Message: "Internal Server Error",
	}}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return apperr.KindInvalidInput.String()
	case http.StatusUnauthorized:
		return apperr.KindUnauthenticated.String()
	case http.StatusForbidden:
		return apperr.KindForbidden.String()
	case http.StatusNotFound:
		return apperr.KindNotFound.String()
	case http.StatusConflict:
		return apperr.KindConflict.String()
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	}
	if status >= http.StatusInternalServerError {
		return apperr.KindInternal.String()
	}
	return "error"
}
