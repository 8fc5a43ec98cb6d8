package handler

import (
	"errors"
	"net/http"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// セッションcookieの設定
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	registerUC *auth.RegisterUserUsecase // 会員登録usecase
	loginUC    *auth.LoginUsecase        // ログインusecase
	logoutUC   *auth.LogoutUsecase
	profileUC  *auth.ProfileUsecase
	cookie     CookieConfig
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	logoutUC *auth.LogoutUsecase,
	profileUC *auth.ProfileUsecase,
	cookie CookieConfig,
) *AuthHandler {
	return &AuthHandler{
		registerUC: registerUC,
		loginUC:    loginUC,
		logoutUC:   logoutUC,
		profileUC:  profileUC,
		cookie:     cookie,
	}
}

// /register のリクエストボディ。
type registerRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

// /login のリクエストボディ。
type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// パスワードは空なら変更なし
type profileRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" form:"password" validate:"omitempty,min=6"`
	Avatar   string `json:"avatar" form:"avatar" validate:"omitempty,max=255"`
}

type profileUpdateResponse struct {
	Message string          `json:"message"`
	User    model.Principal `json:"user"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/register", h.register)
	e.POST("/login", h.login)
	e.POST("/logout", h.logout)

	profile := e.Group("/profile",
		middleware.RequireAuthenticated(middleware.RedirectToLogin),
		middleware.RequireRole(model.RoleNameUser),
	)
	profile.GET("", h.getProfile)
	profile.POST("", h.updateProfile)
}

// POST /register
func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	_, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusCreated, MessageResponse{Message: "registered"})
}

// POST /login
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, side, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return writeAuthError(c, err)
	}

	h.setSessionCookie(c, side.SessionToken, side.ExpiresAt)
	return c.JSON(http.StatusOK, out)
}

// POST /logout（セッションが無くても同じ結果）
func (h *AuthHandler) logout(c echo.Context) error {
	token := middleware.GetSessionToken(c)
	if err := h.logoutUC.Execute(c.Request().Context(), token); err != nil {
		log.Error().Err(err).Msg("logout failed")
	}

	h.clearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, "/login")
}

// GET /profile
func (h *AuthHandler) getProfile(c echo.Context) error {
	p := middleware.GetPrincipal(c)

	out, err := h.profileUC.Get(c.Request().Context(), *p)
	if err != nil {
		return writeAuthError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// POST /profile
func (h *AuthHandler) updateProfile(c echo.Context) error {
	p := middleware.GetPrincipal(c)

	var req profileRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	updated, err := h.profileUC.Update(c.Request().Context(), middleware.GetSessionToken(c), *p, auth.UpdateProfileInput{
		Username: req.Username,
		Password: req.Password,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return writeAuthError(c, err)
	}

	return c.JSON(http.StatusOK, profileUpdateResponse{Message: "profile updated", User: updated})
}

// authのsentinel errorをHTTPへ
func writeAuthError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidUsername), errors.Is(err, auth.ErrPasswordTooShort):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrUsernameTaken):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrDefaultRoleMissing), errors.Is(err, auth.ErrUserGone):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	default:
		return writeError(c, err)
	}
}

// セッションcookieをセット（期限はセッションの絶対期限）
func (h *AuthHandler) setSessionCookie(c echo.Context, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
