package server

import (
	"storefront/internal/domain/model"
	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Storefront   *handler.StorefrontHandler
	Auth         *handler.AuthHandler
	Cart         *handler.CartHandler
	AdminUser    *handler.AdminUserHandler
	AdminProduct *handler.AdminProductHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers) {
	h.Storefront.RegisterRoutes(e)
	h.Auth.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e)

	//管理画面はAdministratorのみ
	admin := e.Group("/admin",
		middleware.RequireAuthenticated(middleware.RedirectToLogin),
		middleware.RequireRole(model.RoleNameAdministrator),
	)
	h.AdminUser.RegisterRoutes(admin)
	h.AdminProduct.RegisterRoutes(admin)
}
