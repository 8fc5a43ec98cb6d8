package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 数量合計（バッジ表示用）
	SumQuantityByUserID(ctx context.Context, userID int64) (int64, error)

	// *ForUpdate はトランザクション内で行ロックを取る
	FindByIDForUpdate(ctx context.Context, cartItemID int64) (model.CartItem, error)
	FindByCartAndProductForUpdate(ctx context.Context, cartID int64, productID int64) (model.CartItem, error)

	Create(ctx context.Context, item model.CartItem) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
}
