package handler

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// CartUsecase が実装（テストで差し替える）
type cartService interface {
	AddItem(ctx context.Context, userID int64, in usecase.AddItemInput) usecase.CartResult
	UpdateQuantity(ctx context.Context, userID int64, in usecase.UpdateItemInput) usecase.CartResult
	RemoveItem(ctx context.Context, userID int64, in usecase.RemoveItemInput) usecase.CartResult
	GetCart(ctx context.Context, userID int64) (usecase.CartView, error)
	CountItems(ctx context.Context, userID int64) (int64, error)
}

// /cartのHTTP
type CartHandler struct {
	uc cartService
}

// DI
func NewCartHandler(uc cartService) *CartHandler {
	return &CartHandler{uc: uc}
}

// 数値でも文字列でも受ける整数（"42" も 42 も可）。空は0。
type flexInt int64

func (v *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*v = 0
		return nil
	}
	return v.UnmarshalParam(string(b))
}

// form / query 用（echo.BindUnmarshaler）
func (v *flexInt) UnmarshalParam(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*v = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*v = flexInt(n)
	return nil
}

// 値の検証はusecase側（メッセージを揃えるため）
type AddCartRequest struct {
	ProductID flexInt `json:"productId" form:"productId"`
}

type UpdateCartItemRequest struct {
	ItemID   flexInt `json:"itemId" form:"itemId"`
	Quantity flexInt `json:"quantity" form:"quantity"`
}

type RemoveCartItemRequest struct {
	ItemID flexInt `json:"itemId" form:"itemId"`
}

type CartCountResponse struct {
	Count int64 `json:"count"`
}

var invalidParams = usecase.CartResult{
	Success: false,
	Message: "invalid parameters",
	Code:    usecase.KindValidation,
}

// /cart 以下を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	api := middleware.RequireAuthenticated(middleware.RespondUnauthorized)

	e.GET("/cart", h.getCart, middleware.RequireAuthenticated(middleware.RedirectToLogin))
	e.GET("/cart/count", h.count, api)
	e.POST("/cart/add", h.addToCart, api)
	e.POST("/cart/update", h.updateItem, api)
	e.POST("/cart/remove", h.removeItem, api)
}

func (h *CartHandler) getCart(c echo.Context) error {
	p := middleware.GetPrincipal(c)

	out, err := h.uc.GetCart(c.Request().Context(), p.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) count(c echo.Context) error {
	p := middleware.GetPrincipal(c)

	n, err := h.uc.CountItems(c.Request().Context(), p.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, CartCountResponse{Count: n})
}

func (h *CartHandler) addToCart(c echo.Context) error {
	p := middleware.GetPrincipal(c)

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, invalidParams)
	}

	res := h.uc.AddItem(c.Request().Context(), p.ID, usecase.AddItemInput{ProductID: int64(req.ProductID)})
	return c.JSON(res.Status(), res)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	p := middleware.GetPrincipal(c)

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, invalidParams)
	}

	res := h.uc.UpdateQuantity(c.Request().Context(), p.ID, usecase.UpdateItemInput{
		ItemID:   int64(req.ItemID),
		Quantity: int64(req.Quantity),
	})
	return c.JSON(res.Status(), res)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	p := middleware.GetPrincipal(c)

	var req RemoveCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, invalidParams)
	}

	res := h.uc.RemoveItem(c.Request().Context(), p.ID, usecase.RemoveItemInput{ItemID: int64(req.ItemID)})
	return c.JSON(res.Status(), res)
}
