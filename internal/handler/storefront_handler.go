package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// / , /home, /catalog（ログイン不要）
type StorefrontHandler struct {
	uc *usecase.StorefrontUsecase
}

// DI
func NewStorefrontHandler(uc *usecase.StorefrontUsecase) *StorefrontHandler {
	return &StorefrontHandler{uc: uc}
}

func (h *StorefrontHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/home")
	})
	e.GET("/home", h.home)
	e.GET("/catalog", h.catalog)
}

func (h *StorefrontHandler) home(c echo.Context) error {
	out := h.uc.Home(c.Request().Context(), middleware.GetPrincipal(c))
	return c.JSON(http.StatusOK, out)
}

func (h *StorefrontHandler) catalog(c echo.Context) error {
	out, err := h.uc.Catalog(c.Request().Context(), middleware.GetPrincipal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
