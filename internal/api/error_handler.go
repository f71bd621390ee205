package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/nightlights/internal/domain"
	"github.com/ougirez/nightlights/internal/pkg/constants"
	"github.com/ougirez/nightlights/internal/pkg/logger"
)

func httpErrorHandler(err error, c echo.Context) {
	msg := err.Error()
	code := http.StatusInternalServerError

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	}

	for err != nil {
		if ce, ok := err.(*constants.CodedError); ok {
			code = ce.Code()
			break
		}
		err = errors.Unwrap(err)
	}

	if code >= http.StatusInternalServerError {
		logger.Errorf(c.Request().Context(), "%s %s: %s", c.Request().Method, c.Path(), msg)
	}

	if c.Response().Committed {
		return
	}

	_ = c.JSON(code, domain.ErrorResponse{
		Message: msg,
		Code:    code,
	})
}
