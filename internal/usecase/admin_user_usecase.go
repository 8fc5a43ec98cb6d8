package usecase

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/rs/zerolog"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 管理画面（/admin/panel, /admin/users）
type AdminUserUsecase struct {
	userRepo repo.UserRepository
	roleRepo repo.RoleRepository
	hasher   PasswordHasher
	audit    auditTrail
}

// DI
func NewAdminUserUsecase(
	userRepo repo.UserRepository,
	roleRepo repo.RoleRepository,
	hasher PasswordHasher,
	auditRepo repo.AuditLogRepository,
	log zerolog.Logger,
) *AdminUserUsecase {
	return &AdminUserUsecase{
		userRepo: userRepo,
		roleRepo: roleRepo,
		hasher:   hasher,
		audit:    auditTrail{repo: auditRepo, log: log},
	}
}

// パスワードハッシュは返さない
type UserView struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	RoleID   int64   `json:"role_id"`
	RoleName string  `json:"role"`
	Avatar   *string `json:"avatar,omitempty"`
}

func toUserView(u model.User) UserView {
	return UserView{
		ID:       u.ID,
		Username: u.Username,
		RoleID:   u.RoleID,
		RoleName: u.Role.Name,
		Avatar:   u.Avatar,
	}
}

type CreateUserInput struct {
	Username string
	Password string
	RoleID   int64
}

// Password が空なら変更しない。Avatar も同様。
type UpdateUserInput struct {
	Username string
	Password string
	RoleID   int64
	Avatar   string
}

func (u *AdminUserUsecase) ListUsers(ctx context.Context) ([]UserView, error) {
	users, err := u.userRepo.List(ctx)
	if err != nil {
		return nil, internalError("db error", err)
	}

	out := make([]UserView, 0, len(users))
	for _, usr := range users {
		out = append(out, toUserView(usr))
	}
	return out, nil
}

func (u *AdminUserUsecase) ListRoles(ctx context.Context) ([]model.Role, error) {
	roles, err := u.roleRepo.List(ctx)
	if err != nil {
		return nil, internalError("db error", err)
	}
	return roles, nil
}

func (u *AdminUserUsecase) GetUser(ctx context.Context, userID int64) (UserView, error) {
	if userID <= 0 {
		return UserView{}, NewAppError(KindValidation, "invalid user id")
	}

	usr, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return UserView{}, NewAppError(KindNotFound, "user not found")
	}
	if err != nil {
		return UserView{}, internalError("db error", err)
	}
	return toUserView(*usr), nil
}

func (u *AdminUserUsecase) CreateUser(ctx context.Context, adminUserID int64, in CreateUserInput) (UserView, error) {
	username := strings.TrimSpace(in.Username)
	if err := validateUsername(username); err != nil {
		return UserView{}, err
	}
	if len(in.Password) < minPasswordLen {
		return UserView{}, NewAppError(KindValidation, "password too short")
	}

	role, err := u.findRole(ctx, in.RoleID)
	if err != nil {
		return UserView{}, err
	}

	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return UserView{}, internalError("failed to hash password", err)
	}

	usr := &model.User{
		Username:     username,
		PasswordHash: hashed,
		RoleID:       role.ID,
	}
	if err := u.userRepo.Create(ctx, usr); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return UserView{}, NewAppError(KindConflict, "username already exists")
		}
		return UserView{}, internalError("db error", err)
	}
	usr.Role = role

	view := toUserView(*usr)
	u.audit.record(ctx, adminUserID, model.AuditActionCreateUser, model.AuditResourceUser, usr.ID, nil, view)
	return view, nil
}

// 権限変更はログイン中のセッションには反映されない（再ログインまで）
func (u *AdminUserUsecase) UpdateUser(ctx context.Context, adminUserID int64, userID int64, in UpdateUserInput) (UserView, error) {
	if userID <= 0 {
		return UserView{}, NewAppError(KindValidation, "invalid user id")
	}
	username := strings.TrimSpace(in.Username)
	if err := validateUsername(username); err != nil {
		return UserView{}, err
	}
	if in.Password != "" && len(in.Password) < minPasswordLen {
		return UserView{}, NewAppError(KindValidation, "password too short")
	}

	usr, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return UserView{}, NewAppError(KindNotFound, "user not found")
	}
	if err != nil {
		return UserView{}, internalError("db error", err)
	}
	before := toUserView(*usr)

	role, err := u.findRole(ctx, in.RoleID)
	if err != nil {
		return UserView{}, err
	}

	usr.Username = username
	usr.RoleID = role.ID
	usr.Role = role
	if in.Password != "" {
		hashed, err := u.hasher.Hash(in.Password)
		if err != nil {
			return UserView{}, internalError("failed to hash password", err)
		}
		usr.PasswordHash = hashed
	}
	if avatar := strings.TrimSpace(in.Avatar); avatar != "" {
		usr.Avatar = &avatar
	}

	if err := u.userRepo.Update(ctx, usr); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			return UserView{}, NewAppError(KindConflict, "username already exists")
		case errors.Is(err, repo.ErrUserNotFound):
			return UserView{}, NewAppError(KindNotFound, "user not found")
		default:
			return UserView{}, internalError("db error", err)
		}
	}

	after := toUserView(*usr)
	u.audit.record(ctx, adminUserID, model.AuditActionUpdateUser, model.AuditResourceUser, userID, before, after)
	return after, nil
}

// カートは残る（孤立してもよい）
func (u *AdminUserUsecase) DeleteUser(ctx context.Context, adminUserID int64, userID int64) error {
	if userID <= 0 {
		return NewAppError(KindValidation, "invalid user id")
	}

	err := u.userRepo.Delete(ctx, userID)
	if errors.Is(err, repo.ErrUserNotFound) {
		return NewAppError(KindNotFound, "user not found")
	}
	if err != nil {
		return internalError("db error", err)
	}

	u.audit.record(ctx, adminUserID, model.AuditActionDeleteUser, model.AuditResourceUser, userID, nil, nil)
	return nil
}

func (u *AdminUserUsecase) findRole(ctx context.Context, roleID int64) (model.Role, error) {
	if roleID <= 0 {
		return model.Role{}, NewAppError(KindValidation, "role id required")
	}
	role, err := u.roleRepo.FindByID(ctx, roleID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Role{}, NewAppError(KindNotFound, "role not found")
	}
	if err != nil {
		return model.Role{}, internalError("db error", err)
	}
	return role, nil
}

func validateUsername(username string) error {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return NewAppError(KindValidation, "username must be 3 to 50 characters")
	}
	return nil
}
