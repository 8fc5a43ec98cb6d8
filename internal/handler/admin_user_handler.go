package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin/panel, /admin/users, /admin/roles
type AdminUserHandler struct {
	uc *usecase.AdminUserUsecase
}

// DI
func NewAdminUserHandler(uc *usecase.AdminUserUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

type AdminCreateUserRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
	RoleID   int64  `json:"roleId" form:"roleId" validate:"required,gt=0"`
}

// password/avatar は空なら変更なし
type AdminUpdateUserRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" form:"password" validate:"omitempty,min=6"`
	RoleID   int64  `json:"roleId" form:"roleId" validate:"required,gt=0"`
	Avatar   string `json:"avatar" form:"avatar" validate:"omitempty,max=255"`
}

type AdminPanelResponse struct {
	Users []usecase.UserView `json:"users"`
	Roles []model.Role       `json:"roles"`
}

// admin グループに登録（認証とロールはグループ側）
func (h *AdminUserHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/panel", h.panel)
	admin.GET("/roles", h.listRoles)
	admin.POST("/users", h.createUser)
	admin.GET("/users/:id", h.getUser)
	admin.POST("/users/:id", h.updateUser)
	admin.POST("/users/:id/delete", h.deleteUser)
}

func (h *AdminUserHandler) panel(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.uc.ListUsers(ctx)
	if err != nil {
		return writeError(c, err)
	}
	roles, err := h.uc.ListRoles(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, AdminPanelResponse{Users: users, Roles: roles})
}

func (h *AdminUserHandler) listRoles(c echo.Context) error {
	roles, err := h.uc.ListRoles(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *AdminUserHandler) createUser(c echo.Context) error {
	var req AdminCreateUserRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	admin := middleware.GetPrincipal(c)
	out, err := h.uc.CreateUser(c.Request().Context(), admin.ID, usecase.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		RoleID:   req.RoleID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminUserHandler) getUser(c echo.Context) error {
	id, ok := parseIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetUser(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) updateUser(c echo.Context) error {
	id, ok := parseIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req AdminUpdateUserRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	admin := middleware.GetPrincipal(c)
	out, err := h.uc.UpdateUser(c.Request().Context(), admin.ID, id, usecase.UpdateUserInput{
		Username: req.Username,
		Password: req.Password,
		RoleID:   req.RoleID,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) deleteUser(c echo.Context) error {
	id, ok := parseIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	admin := middleware.GetPrincipal(c)
	if err := h.uc.DeleteUser(c.Request().Context(), admin.ID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "deleted"})
}

// :id を正の int64 に
func parseIDParam(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
