package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

// セッションの保存・取得・更新・削除
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error)
	// プロフィール更新時にスナップショットを差し替える
	UpdatePrincipal(ctx context.Context, tokenHash string, p model.Principal, now time.Time) error
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	CountActive(ctx context.Context, now time.Time) (int64, error)
}
