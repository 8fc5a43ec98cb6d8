package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 価格は "12.50" のような文字列でも数値でも受ける
type ProductRequest struct {
	Name        string          `json:"name" form:"name" validate:"required,max=255"`
	Description string          `json:"description" form:"description"`
	Category    string          `json:"category" form:"category" validate:"max=255"`
	Price       decimal.Decimal `json:"price" form:"price"`
	Stock       int64           `json:"stock" form:"stock" validate:"gte=0"`
	Image       string          `json:"image" form:"image" validate:"omitempty,max=255"`
}

func (r ProductRequest) toInput() usecase.ProductInput {
	return usecase.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		Stock:       r.Stock,
		Image:       r.Image,
	}
}

// /admin/products と /admin/audit-logs
type AdminProductHandler struct {
	uc      *usecase.ProductUsecase
	auditUC *usecase.AuditUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase, auditUC *usecase.AuditUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc, auditUC: auditUC}
}

// admin グループに登録
func (h *AdminProductHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/products", h.listProducts)
	admin.POST("/products", h.createProduct)
	admin.GET("/products/:id", h.getProduct)
	admin.POST("/products/:id", h.updateProduct)
	admin.POST("/products/:id/delete", h.deleteProduct)
	admin.GET("/audit-logs", h.listAuditLogs)
}

func (h *AdminProductHandler) listProducts(c echo.Context) error {
	out, err := h.uc.ListProducts(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) getProduct(c echo.Context) error {
	id, ok := parseIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	admin := middleware.GetPrincipal(c)
	out, err := h.uc.AdminCreateProduct(c.Request().Context(), admin.ID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	id, ok := parseIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req ProductRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	admin := middleware.GetPrincipal(c)
	out, err := h.uc.AdminUpdateProduct(c.Request().Context(), admin.ID, id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, ok := parseIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	admin := middleware.GetPrincipal(c)
	if err := h.uc.AdminDeleteProduct(c.Request().Context(), admin.ID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "deleted"})
}

// GET /admin/audit-logs?action=&actor=&resource=&from=&limit=&offset=
func (h *AdminProductHandler) listAuditLogs(c echo.Context) error {
	actor, err := queryInt(c, "actor")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid actor"})
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
	}

	out, err := h.auditUC.List(c.Request().Context(), usecase.ListAuditLogsInput{
		Action:       c.QueryParam("action"),
		ActorUserID:  int64(actor),
		ResourceType: c.QueryParam("resource"),
		From:         c.QueryParam("from"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 未指定は0
func queryInt(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
