package controller

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/nightlights/internal/domain/dto"
	"github.com/ougirez/nightlights/internal/pkg/constants"
)

const adminCookieTTL = 24 * time.Hour

func (c *Controller) LoginAdmin(ctx echo.Context) error {
	var req dto.LoginAdminRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	token, err := c.auth.LoginAdmin(ctx.Request().Context(), req.Secret)
	if err != nil {
		return err
	}

	ctx.SetCookie(&http.Cookie{
		Name:     constants.CookieKeySecretToken,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(adminCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	return ctx.NoContent(http.StatusNoContent)
}
