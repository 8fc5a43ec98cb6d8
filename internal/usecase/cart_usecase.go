package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	cartOpAdd    = "add"
	cartOpUpdate = "update"
	cartOpRemove = "remove"
)

const (
	msgProductIDRequired = "product id is required"
	msgItemIDRequired    = "item id is required"
	msgInvalidParams     = "invalid parameters"
	msgProductNotFound   = "product not found"
	msgItemNotFound      = "cart item not found"
	msgOutOfStock        = "product is out of stock"
	msgMaxQuantity       = "max quantity reached"
	msgAccessDenied      = "access denied"
	msgCartBusy          = "cart was modified concurrently, please retry"

	msgAdded   = "product added to cart"
	msgUpdated = "quantity updated"
	msgRemoved = "item removed from cart"

	msgAddFailed    = "failed to add item"
	msgUpdateFailed = "failed to update item"
	msgRemoveFailed = "failed to remove item"
)

// カート操作の結果をメトリクスに渡す
type CartMetrics interface {
	CartOperation(operation string, result string)
}

type nopCartMetrics struct{}

func (nopCartMetrics) CartOperation(string, string) {}

// CartUsecase は /cart の業務ロジックです。
// 更新系は1トランザクションでカート行・明細行をロックしてから在庫と所有者を確認する。
type CartUsecase struct {
	tx           repo.TransactionManager
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	metrics      CartMetrics
	log          zerolog.Logger
}

// DI
func NewCartUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	metrics CartMetrics,
	log zerolog.Logger,
) *CartUsecase {
	if metrics == nil {
		metrics = nopCartMetrics{}
	}
	return &CartUsecase{
		tx:           tx,
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		metrics:      metrics,
		log:          log.With().Str("component", "cart").Logger(),
	}
}

// 更新系の戻り値。失敗も error ではなくこの形で返す。
type CartResult struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Code    ErrorKind `json:"code,omitempty"`
}

// 成功は200、失敗は種類ごとのHTTPステータス
func (r CartResult) Status() int {
	if r.Success {
		return http.StatusOK
	}
	return (&AppError{Kind: r.Code}).Status()
}

type AddItemInput struct {
	ProductID int64
}

type UpdateItemInput struct {
	ItemID   int64
	Quantity int64
}

type RemoveItemInput struct {
	ItemID int64
}

type CartItemView struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Image     *string         `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Stock     int64           `json:"stock"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartView struct {
	Items     []CartItemView  `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int64           `json:"item_count"`
}

// 商品を1つ追加（既にあれば数量+1、在庫が上限）
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddItemInput) CartResult {
	err := u.addItem(ctx, userID, in)
	return u.result(cartOpAdd, userID, err, msgAdded, msgAddFailed)
}

// 数量を上書き
func (u *CartUsecase) UpdateQuantity(ctx context.Context, userID int64, in UpdateItemInput) CartResult {
	err := u.updateQuantity(ctx, userID, in)
	return u.result(cartOpUpdate, userID, err, msgUpdated, msgUpdateFailed)
}

// 明細削除
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, in RemoveItemInput) CartResult {
	err := u.removeItem(ctx, userID, in)
	return u.result(cartOpRemove, userID, err, msgRemoved, msgRemoveFailed)
}

func (u *CartUsecase) addItem(ctx context.Context, userID int64, in AddItemInput) error {
	if userID <= 0 {
		return NewAppError(KindUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return NewAppError(KindValidation, msgProductIDRequired)
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//商品と在庫
		p, err := r.Products().FindByID(ctx, in.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewAppError(KindNotFound, msgProductNotFound)
		}
		if err != nil {
			return err
		}
		if p.Stock <= 0 {
			return NewAppError(KindCapacityExceeded, msgOutOfStock)
		}

		//カート取得（無ければ作成）＋行ロック
		cart, err := r.Carts().GetOrCreateByUserID(ctx, userID)
		if err != nil {
			return err
		}

		item, err := r.CartItems().FindByCartAndProductForUpdate(ctx, cart.ID, p.ID)
		switch {
		case err == nil:
			if item.Quantity >= p.Stock {
				return NewAppError(KindCapacityExceeded, msgMaxQuantity)
			}
			return r.CartItems().UpdateQuantity(ctx, item.ID, item.Quantity+1)

		case errors.Is(err, repo.ErrNotFound):
			_, err := r.CartItems().Create(ctx, model.CartItem{
				CartID:    cart.ID,
				ProductID: p.ID,
				Quantity:  1,
			})
			if errors.Is(err, repo.ErrDuplicate) {
				return NewAppError(KindConflict, msgCartBusy)
			}
			return err

		default:
			return err
		}
	})
}

func (u *CartUsecase) updateQuantity(ctx context.Context, userID int64, in UpdateItemInput) error {
	if userID <= 0 {
		return NewAppError(KindUnauthorized, "unauthorized")
	}
	if in.ItemID <= 0 || in.Quantity < 1 {
		return NewAppError(KindValidation, msgInvalidParams)
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := u.lockOwnedItem(ctx, r, userID, in.ItemID)
		if err != nil {
			return err
		}

		//在庫チェック
		p, err := r.Products().FindByID(ctx, item.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewAppError(KindNotFound, msgProductNotFound)
		}
		if err != nil {
			return err
		}
		if in.Quantity > p.Stock {
			return NewAppError(KindCapacityExceeded, fmt.Sprintf("exceeds available stock: %d", p.Stock))
		}

		err = r.CartItems().UpdateQuantity(ctx, item.ID, in.Quantity)
		if errors.Is(err, repo.ErrNotFound) {
			return NewAppError(KindNotFound, msgItemNotFound)
		}
		return err
	})
}

func (u *CartUsecase) removeItem(ctx context.Context, userID int64, in RemoveItemInput) error {
	if userID <= 0 {
		return NewAppError(KindUnauthorized, "unauthorized")
	}
	if in.ItemID <= 0 {
		return NewAppError(KindValidation, msgItemIDRequired)
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := u.lockOwnedItem(ctx, r, userID, in.ItemID)
		if err != nil {
			return err
		}

		err = r.CartItems().DeleteByID(ctx, item.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewAppError(KindNotFound, msgItemNotFound)
		}
		return err
	})
}

// 明細を行ロックして、持ち主が userID か確認する
func (u *CartUsecase) lockOwnedItem(ctx context.Context, r repo.TxRepos, userID int64, itemID int64) (model.CartItem, error) {
	item, err := r.CartItems().FindByIDForUpdate(ctx, itemID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CartItem{}, NewAppError(KindNotFound, msgItemNotFound)
	}
	if err != nil {
		return model.CartItem{}, err
	}

	cart, err := r.Carts().FindByID(ctx, item.CartID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.CartItem{}, NewAppError(KindNotFound, msgItemNotFound)
	}
	if err != nil {
		return model.CartItem{}, err
	}

	if cart.UserID != userID {
		return model.CartItem{}, NewAppError(KindForbidden, msgAccessDenied)
	}
	return item, nil
}

// errorをCartResultに変換。想定外のエラーはログだけ残して汎用メッセージにする。
func (u *CartUsecase) result(op string, userID int64, err error, okMsg string, failMsg string) CartResult {
	if err == nil {
		u.metrics.CartOperation(op, "success")
		return CartResult{Success: true, Message: okMsg}
	}

	if ae, ok := AsAppError(err); ok && ae.Kind != KindInternal {
		u.metrics.CartOperation(op, string(ae.Kind))
		return CartResult{Success: false, Message: ae.Message, Code: ae.Kind}
	}

	u.log.Error().
		Err(err).
		Str("operation", op).
		Int64("user_id", userID).
		Msg("cart mutation failed")
	u.metrics.CartOperation(op, string(KindInternal))
	return CartResult{Success: false, Message: failMsg, Code: KindInternal}
}

// GetCart はカート表示（カートが無ければ作らずに空を返す）。
// 更新とは別トランザクションのスナップショット。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartView, error) {
	if userID <= 0 {
		return CartView{}, NewAppError(KindUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartView{Items: []CartItemView{}, Total: decimal.Zero}, nil
	}
	if err != nil {
		return CartView{}, internalError("failed to load cart", err)
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartView{}, internalError("failed to load cart", err)
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := u.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return CartView{}, internalError("failed to load cart", err)
	}
	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	view := CartView{Items: make([]CartItemView, 0, len(items)), Total: decimal.Zero}
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			//削除済みの商品は表示しない
			continue
		}

		subtotal := p.Price.Mul(decimal.NewFromInt(it.Quantity))
		view.Items = append(view.Items, CartItemView{
			ID:        it.ID,
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			Price:     p.Price,
			Stock:     p.Stock,
			Quantity:  it.Quantity,
			Subtotal:  subtotal,
		})
		view.Total = view.Total.Add(subtotal)
		view.ItemCount += it.Quantity
	}

	return view, nil
}

// バッジ用の数量合計（未ログインは0）
func (u *CartUsecase) CountItems(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, nil
	}
	n, err := u.cartItemRepo.SumQuantityByUserID(ctx, userID)
	if err != nil {
		return 0, internalError("failed to count cart items", err)
	}
	return n, nil
}
