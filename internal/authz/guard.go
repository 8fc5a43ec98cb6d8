// Package authz はリクエストに紐づくPrincipalへの認可チェック。
// どちらもストアに触らない純粋関数。
package authz

import (
	"errors"

	"storefront/internal/domain/model"
)

var (
	// 有効なセッションが無い
	ErrUnauthorized = errors.New("unauthorized")
	// ロールが違う
	ErrForbidden = errors.New("forbidden")
)

// ログイン済みか
func RequireAuthenticated(p *model.Principal) error {
	if p.IsAnonymous() {
		return ErrUnauthorized
	}
	return nil
}

// ロールが一致するか。
// 認証チェックは含まないので、匿名ならそのまま ErrForbidden になる。
func RequireRole(p *model.Principal, expected string) error {
	if p == nil || p.Role != expected {
		return ErrForbidden
	}
	return nil
}
