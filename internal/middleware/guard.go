package middleware

import (
	"net/http"

	"storefront/internal/authz"

	"github.com/labstack/echo/v4"
)

// 未ログイン時の返し方
type AuthFailureMode int

const (
	// 401 JSON（fetchから呼ばれるAPI）
	RespondUnauthorized AuthFailureMode = iota
	// /login へリダイレクト（画面）
	RedirectToLogin
)

func RequireAuthenticated(mode AuthFailureMode) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authz.RequireAuthenticated(GetPrincipal(c)); err != nil {
				if mode == RedirectToLogin {
					return redirectToLogin(c)
				}
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			return next(c)
		}
	}
}

// ロール名が一致しなければ403
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := authz.RequireRole(GetPrincipal(c), role); err != nil {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}
			return next(c)
		}
	}
}
