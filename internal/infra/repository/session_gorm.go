package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type sessionGormRepository struct {
	db *gorm.DB
}

// GORM実装（SESSION_STORE=postgres のとき使う）
func NewSessionGormRepository(db *gorm.DB) repo.SessionRepository {
	return &sessionGormRepository{db: db}
}

func (r *sessionGormRepository) Create(ctx context.Context, s *model.Session) error {
	if err := r.db.WithContext(ctx).Create(s).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

// token_hashで1件検索します。
func (r *sessionGormRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.Session, error) {
	var s model.Session

	err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&s).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repo.ErrSessionNotFound
		}
		return nil, err
	}

	return &s, nil
}

// プロフィール更新後のユーザー情報で上書き（期限は延ばさない）
func (r *sessionGormRepository) UpdatePrincipal(ctx context.Context, tokenHash string, p model.Principal, now time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("token_hash = ?", tokenHash).
		Updates(map[string]interface{}{
			"user_id":    p.ID,
			"username":   p.Username,
			"role":       p.Role,
			"updated_at": now,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrSessionNotFound
	}
	return nil
}

func (r *sessionGormRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	result := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		Delete(&model.Session{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repo.ErrSessionNotFound
	}

	return nil
}

// 期限切れをまとめて削除
func (r *sessionGormRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&model.Session{})

	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *sessionGormRepository) CountActive(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&model.Session{}).
		Where("expires_at > ?", now).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
