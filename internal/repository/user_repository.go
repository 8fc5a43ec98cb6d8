package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 保存・取得を約束
// 取得系はRoleもまとめて読み込む。
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// username / password / role / avatar の更新
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, userID int64) error
	List(ctx context.Context) ([]model.User, error)
}

type RoleRepository interface {
	FindByID(ctx context.Context, roleID int64) (model.Role, error)
	FindByName(ctx context.Context, name string) (model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
	// 無ければ作る（起動時のロール準備用）
	Ensure(ctx context.Context, name string) (model.Role, error)
}
