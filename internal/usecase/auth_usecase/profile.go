package auth

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

type ProfileOutput struct {
	User           model.Principal `json:"user"`
	Avatar         *string         `json:"avatar"`
	CartItemsCount int64           `json:"cartItemsCount"`
}

// Password が空なら変更しない
type UpdateProfileInput struct {
	Username string
	Password string
	Avatar   string
}

// /profile の表示と更新
type ProfileUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	sessions SessionStore
	carts    CartCounter
}

// DI
func NewProfileUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	sessions SessionStore,
	carts CartCounter,
) *ProfileUsecase {
	return &ProfileUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		sessions: sessions,
		carts:    carts,
	}
}

func (u *ProfileUsecase) Get(ctx context.Context, p model.Principal) (ProfileOutput, error) {
	user, err := u.userRepo.FindByID(ctx, p.ID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ProfileOutput{}, ErrUserGone
	}
	if err != nil {
		return ProfileOutput{}, err
	}

	count, err := u.carts.CountItems(ctx, p.ID)
	if err != nil {
		return ProfileOutput{}, err
	}

	// 表示はセッションの値（ロールはログイン時点のもの）
	return ProfileOutput{
		User:           p,
		Avatar:         user.Avatar,
		CartItemsCount: count,
	}, nil
}

// 更新後、DBから読み直した値でセッションを差し替える
func (u *ProfileUsecase) Update(ctx context.Context, token string, p model.Principal, in UpdateProfileInput) (model.Principal, error) {
	username, err := normalizeUsername(in.Username)
	if err != nil {
		return model.Principal{}, err
	}
	if in.Password != "" && len(in.Password) < minPasswordLen {
		return model.Principal{}, ErrPasswordTooShort
	}

	// 他人が使っているusernameは不可
	other, err := u.userRepo.FindByUsername(ctx, username)
	if err == nil && other != nil && other.ID != p.ID {
		return model.Principal{}, ErrUsernameTaken
	}
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return model.Principal{}, err
	}

	user, err := u.userRepo.FindByID(ctx, p.ID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return model.Principal{}, ErrUserGone
	}
	if err != nil {
		return model.Principal{}, err
	}

	user.Username = username
	if in.Password != "" {
		hashed, err := u.hasher.Hash(in.Password)
		if err != nil {
			return model.Principal{}, err
		}
		user.PasswordHash = hashed
	}
	if avatar := strings.TrimSpace(in.Avatar); avatar != "" {
		user.Avatar = &avatar
	}

	if err := u.userRepo.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return model.Principal{}, ErrUsernameTaken
		case errors.Is(err, repository.ErrUserNotFound):
			return model.Principal{}, ErrUserGone
		default:
			return model.Principal{}, err
		}
	}

	reloaded, err := u.userRepo.FindByID(ctx, p.ID)
	if err != nil {
		return model.Principal{}, err
	}

	principal := reloaded.Principal()
	if err := u.sessions.Refresh(ctx, token, principal); err != nil {
		return model.Principal{}, err
	}
	return principal, nil
}
