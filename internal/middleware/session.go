package middleware

import (
	"context"
	"net/http"

	"storefront/internal/domain/model"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	CtxPrincipalKey    = "principal"     // *model.Principal
	CtxSessionTokenKey = "session_token" // string
)

// session.Manager が実装
type SessionLookup interface {
	Lookup(ctx context.Context, token string) (*model.Principal, error)
}

// cookieからセッションを引いてcontextへ入れる。
// 無くても通す（匿名のまま）。拒否は RequireAuthenticated の役目。
func LoadSession(sessions SessionLookup, cookieName string, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			p, err := sessions.Lookup(c.Request().Context(), cookie.Value)
			if err != nil {
				//ストア障害時は匿名扱い
				log.Error().Err(err).Str("path", c.Path()).Msg("session lookup failed")
				return next(c)
			}
			if p == nil {
				return next(c)
			}

			c.Set(CtxPrincipalKey, p)
			c.Set(CtxSessionTokenKey, cookie.Value)
			return next(c)
		}
	}
}

// contextのPrincipal（無ければnil）
func GetPrincipal(c echo.Context) *model.Principal {
	p, ok := c.Get(CtxPrincipalKey).(*model.Principal)
	if !ok {
		return nil
	}
	return p
}

func GetSessionToken(c echo.Context) string {
	token, _ := c.Get(CtxSessionTokenKey).(string)
	return token
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

// 画面遷移用
func redirectToLogin(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/login")
}
