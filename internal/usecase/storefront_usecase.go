package usecase

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/rs/zerolog"
)

// /home と /catalog（ログインしていればカート件数とアバターも出す）
type StorefrontUsecase struct {
	productRepo  repo.ProductRepository
	userRepo     repo.UserRepository
	cartItemRepo repo.CartItemRepository
	log          zerolog.Logger
}

// DI
func NewStorefrontUsecase(
	productRepo repo.ProductRepository,
	userRepo repo.UserRepository,
	cartItemRepo repo.CartItemRepository,
	log zerolog.Logger,
) *StorefrontUsecase {
	return &StorefrontUsecase{
		productRepo:  productRepo,
		userRepo:     userRepo,
		cartItemRepo: cartItemRepo,
		log:          log,
	}
}

type HomeView struct {
	User           *model.Principal `json:"user"`
	CartItemsCount int64            `json:"cartItemsCount"`
	Avatar         *string          `json:"avatar"`
}

type CatalogView struct {
	Products       []model.Product  `json:"products"`
	User           *model.Principal `json:"user"`
	CartItemsCount int64            `json:"cartItemsCount"`
	Avatar         *string          `json:"avatar"`
}

func (u *StorefrontUsecase) Home(ctx context.Context, p *model.Principal) HomeView {
	count, avatar := u.badge(ctx, p)
	return HomeView{User: p, CartItemsCount: count, Avatar: avatar}
}

func (u *StorefrontUsecase) Catalog(ctx context.Context, p *model.Principal) (CatalogView, error) {
	products, err := u.productRepo.List(ctx)
	if err != nil {
		return CatalogView{}, internalError("failed to load catalog", err)
	}

	count, avatar := u.badge(ctx, p)
	return CatalogView{
		Products:       products,
		User:           p,
		CartItemsCount: count,
		Avatar:         avatar,
	}, nil
}

// ヘッダー表示用。失敗しても画面は出す（0 / nil）。
func (u *StorefrontUsecase) badge(ctx context.Context, p *model.Principal) (int64, *string) {
	if p.IsAnonymous() {
		return 0, nil
	}

	count, err := u.cartItemRepo.SumQuantityByUserID(ctx, p.ID)
	if err != nil {
		u.log.Warn().Err(err).Int64("user_id", p.ID).Msg("cart count failed")
		count = 0
	}

	var avatar *string
	usr, err := u.userRepo.FindByID(ctx, p.ID)
	switch {
	case err == nil:
		avatar = usr.Avatar
	case errors.Is(err, repo.ErrUserNotFound):
	default:
		u.log.Warn().Err(err).Int64("user_id", p.ID).Msg("avatar lookup failed")
	}

	return count, avatar
}
