package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain/model"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
)

var (
	// 入力が不正
	ErrInvalidUsername  = errors.New("username must be 3 to 50 characters")
	ErrPasswordTooShort = errors.New("password too short")

	// 競合
	ErrUsernameTaken = errors.New("username already exists")

	// 初期ロール（User）が未作成
	ErrDefaultRoleMissing = errors.New("role not found")

	// ユーザー名またはパスワードが違う
	ErrInvalidCredentials = errors.New("invalid username or password")

	// セッションのユーザーが削除済み
	ErrUserGone = errors.New("user no longer exists")
)

// セッションの発行・差し替え・破棄（session.Manager が実装）
type SessionStore interface {
	Create(ctx context.Context, p model.Principal) (token string, expiresAt time.Time, err error)
	Refresh(ctx context.Context, token string, p model.Principal) error
	Invalidate(ctx context.Context, token string) error
}

// バッジ用のカート数量
type CartCounter interface {
	CountItems(ctx context.Context, userID int64) (int64, error)
}

func normalizeUsername(s string) (string, error) {
	username := strings.TrimSpace(s)
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return "", ErrInvalidUsername
	}
	return username, nil
}
