package auth

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

// 会員登録の入力
type RegisterUserInput struct {
	Username string
	Password string
}

// 会員登録の出力
type RegisterUserOutput struct {
	User model.Principal `json:"user"`
}

// RegisterUserUsecaseは会員登録の処理。
type RegisterUserUsecase struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	hasher   PasswordHasher
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	hasher PasswordHasher,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo: userRepo,
		roleRepo: roleRepo,
		hasher:   hasher,
	}
}

// 会員登録実行（ロールは常にUser）
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	username, err := normalizeUsername(in.Username)
	if err != nil {
		return out, err
	}
	if len(in.Password) < minPasswordLen {
		return out, ErrPasswordTooShort
	}

	role, err := u.roleRepo.FindByName(ctx, model.RoleNameUser)
	if errors.Is(err, repository.ErrNotFound) {
		return out, ErrDefaultRoleMissing
	}
	if err != nil {
		return out, err
	}

	// username重複チェック
	existing, err := u.userRepo.FindByUsername(ctx, username)
	if err == nil && existing != nil {
		return out, ErrUsernameTaken
	}
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return out, err
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hashed,
		RoleID:       role.ID,
	}

	// DBへ保存（同時登録はユニーク制約で弾かれる）
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return out, ErrUsernameTaken
		}
		return out, err
	}
	user.Role = role

	out.User = user.Principal()
	return out, nil
}
