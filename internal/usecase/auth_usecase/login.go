package auth

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

const (
	redirectAdmin = "/admin/panel"
	redirectHome  = "/home"
)

// handlerからusecaseに渡す入力
type LoginInput struct {
	Username string
	Password string
}

// handlerがJSONにして返す
type LoginOutput struct {
	User       model.Principal `json:"user"`
	RedirectTo string          `json:"redirectTo"`
}

// handlerがCookieに詰めるために必要な値
type LoginSideEffect struct {
	SessionToken string
	ExpiresAt    time.Time
}

type LoginUsecase struct {
	userRepo repository.UserRepository
	verifier PasswordVerifier
	sessions SessionStore
}

func NewLoginUsecase(
	userRepo repository.UserRepository,
	verifier PasswordVerifier,
	sessions SessionStore,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo: userRepo,
		verifier: verifier,
		sessions: sessions,
	}
}

// ログイン処理を実行する
// ロール名はここでセッションにコピーされ、以後リクエスト毎には読み直さない。
func (u *LoginUsecase) Execute(ctx context.Context, in LoginInput) (LoginOutput, LoginSideEffect, error) {
	var out LoginOutput
	var side LoginSideEffect

	if in.Username == "" || in.Password == "" {
		return out, side, ErrInvalidCredentials
	}

	user, err := u.userRepo.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, side, ErrInvalidCredentials
		}
		return out, side, err
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return out, side, ErrInvalidCredentials
	}

	principal := user.Principal()
	token, expiresAt, err := u.sessions.Create(ctx, principal)
	if err != nil {
		return out, side, err
	}

	out.User = principal
	out.RedirectTo = redirectHome
	if principal.Role == model.RoleNameAdministrator {
		out.RedirectTo = redirectAdmin
	}

	side.SessionToken = token
	side.ExpiresAt = expiresAt
	return out, side, nil
}
