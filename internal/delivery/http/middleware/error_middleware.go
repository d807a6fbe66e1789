// Package middleware contains the HTTP middleware for the delivery layer.
package middleware

import (
	"log/slog"
	"net/http"

	domainerrors "ftpadmin/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware error handling middleware
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	// Aggregated validation failures carry their message list.
	var verrs *domainerrors.ValidationErrors
	if errors.As(err, &verrs) {
		_ = c.JSON(verrs.HTTPCode(), domainerrors.Response{
			Success: false,
			Code:    verrs.HTTPCode(),
			Message: verrs.Message(),
			Error: &domainerrors.ErrorInfo{
				Code:    verrs.ErrorCode(),
				Message: verrs.Message(),
				Details: verrs.Problems,
			},
		})

		return
	}

	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			m.logger.Error("Request failed",
				slog.String("path", c.Request().URL.Path),
				slog.String("method", c.Request().Method),
				slog.Any("error", err),
			)
		}

		_ = c.JSON(appErr.HTTPCode(), domainerrors.Response{
			Success: false,
			Code:    appErr.HTTPCode(),
			Message: appErr.Message(),
			Error: &domainerrors.ErrorInfo{
				Code:    appErr.ErrorCode(),
				Message: appErr.Message(),
				Details: appErr.Details(),
			},
		})

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if text, ok := httpErr.Message.(string); ok {
			message = text
		}

		_ = c.JSON(httpErr.Code, domainerrors.Response{
			Success: false,
			Code:    httpErr.Code,
			Message: message,
			Error: &domainerrors.ErrorInfo{
				Code:    "HTTP_ERROR",
				Message: message,
			},
		})

		return
	}

	// Anything else is an internal fault. The detail goes to the log only;
	// the caller gets a generic message.
	m.logger.Error("Unhandled error",
		slog.String("path", c.Request().URL.Path),
		slog.String("method", c.Request().Method),
		slog.Any("error", err),
	)

	_ = c.JSON(http.StatusInternalServerError, domainerrors.Response{
		Success: false,
		Code:    http.StatusInternalServerError,
		Message: "Internal server error.",
		Error: &domainerrors.ErrorInfo{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error.",
		},
	})
}
