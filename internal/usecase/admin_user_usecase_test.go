package usecase

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	roleAdmin = model.Role{ID: 1, Name: model.RoleNameAdministrator}
	roleUser  = model.Role{ID: 2, Name: model.RoleNameUser}
)

func newAdminUserUC(users *UserRepoMock, roles *RoleRepoMock, audit *AuditRepoMock) *AdminUserUsecase {
	return NewAdminUserUsecase(users, roles, fakeHasher{}, audit, zerolog.Nop())
}

func TestAdminUserUsecase_ListUsers(t *testing.T) {
	users := new(UserRepoMock)
	users.On("List", mock.Anything).Return([]model.User{
		{ID: 1, Username: "root", PasswordHash: "x", RoleID: 1, Role: roleAdmin},
		{ID: 2, Username: "alice", PasswordHash: "y", RoleID: 2, Role: roleUser},
	}, nil)
	uc := newAdminUserUC(users, new(RoleRepoMock), new(AuditRepoMock))

	out, err := uc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, UserView{ID: 1, Username: "root", RoleID: 1, RoleName: model.RoleNameAdministrator}, out[0])
	assert.Equal(t, model.RoleNameUser, out[1].RoleName)
}

func TestAdminUserUsecase_CreateUser_Success_WritesAudit(t *testing.T) {
	users := new(UserRepoMock)
	roles := new(RoleRepoMock)
	audit := new(AuditRepoMock)

	roles.On("FindByID", mock.Anything, int64(2)).Return(roleUser, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Username == "bob" && isHashOf("secret1")(u.PasswordHash) && u.RoleID == 2
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.User).ID = 10
	}).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 1 && l.Action == model.AuditActionCreateUser &&
			l.ResourceType == model.AuditResourceUser && l.ResourceID == 10
	})).Return(nil)

	uc := newAdminUserUC(users, roles, audit)
	out, err := uc.CreateUser(context.Background(), 1, CreateUserInput{Username: "  bob ", Password: "secret1", RoleID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(10), out.ID)
	assert.Equal(t, model.RoleNameUser, out.RoleName)

	users.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAdminUserUsecase_CreateUser_Validation(t *testing.T) {
	uc := newAdminUserUC(new(UserRepoMock), new(RoleRepoMock), new(AuditRepoMock))
	ctx := context.Background()

	_, err := uc.CreateUser(ctx, 1, CreateUserInput{Username: "ab", Password: "secret1", RoleID: 2})
	assert.True(t, IsKind(err, KindValidation))

	_, err = uc.CreateUser(ctx, 1, CreateUserInput{Username: "bob", Password: "123", RoleID: 2})
	assert.True(t, IsKind(err, KindValidation))

	_, err = uc.CreateUser(ctx, 1, CreateUserInput{Username: "bob", Password: "secret1"})
	assert.True(t, IsKind(err, KindValidation))
}

func TestAdminUserUsecase_CreateUser_UnknownRole(t *testing.T) {
	roles := new(RoleRepoMock)
	roles.On("FindByID", mock.Anything, int64(9)).Return(model.Role{}, repo.ErrNotFound)
	uc := newAdminUserUC(new(UserRepoMock), roles, new(AuditRepoMock))

	_, err := uc.CreateUser(context.Background(), 1, CreateUserInput{Username: "bob", Password: "secret1", RoleID: 9})
	assert.True(t, IsKind(err, KindNotFound))
}

func TestAdminUserUsecase_CreateUser_Duplicate_Conflict(t *testing.T) {
	users := new(UserRepoMock)
	roles := new(RoleRepoMock)
	roles.On("FindByID", mock.Anything, int64(2)).Return(roleUser, nil)
	users.On("Create", mock.Anything, mock.Anything).Return(repo.ErrDuplicate)
	uc := newAdminUserUC(users, roles, new(AuditRepoMock))

	_, err := uc.CreateUser(context.Background(), 1, CreateUserInput{Username: "bob", Password: "secret1", RoleID: 2})
	assert.True(t, IsKind(err, KindConflict))
}

// パスワード空なら既存ハッシュのまま
func TestAdminUserUsecase_UpdateUser_EmptyPasswordKeepsHash(t *testing.T) {
	users := new(UserRepoMock)
	roles := new(RoleRepoMock)
	audit := new(AuditRepoMock)

	users.On("FindByID", mock.Anything, int64(5)).Return(&model.User{
		ID: 5, Username: "alice", PasswordHash: "old-hash", RoleID: 2, Role: roleUser,
	}, nil)
	roles.On("FindByID", mock.Anything, int64(1)).Return(roleAdmin, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Username == "alice2" && u.PasswordHash == "old-hash" && u.RoleID == 1
	})).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateUser && l.ResourceID == 5 && l.BeforeJSON != "" && l.AfterJSON != ""
	})).Return(nil)

	uc := newAdminUserUC(users, roles, audit)
	out, err := uc.UpdateUser(context.Background(), 1, 5, UpdateUserInput{Username: "alice2", RoleID: 1})
	require.NoError(t, err)
	assert.Equal(t, model.RoleNameAdministrator, out.RoleName)

	users.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAdminUserUsecase_UpdateUser_NewPasswordIsHashed(t *testing.T) {
	users := new(UserRepoMock)
	roles := new(RoleRepoMock)
	audit := new(AuditRepoMock)

	users.On("FindByID", mock.Anything, int64(5)).Return(&model.User{ID: 5, Username: "alice", PasswordHash: "old-hash", RoleID: 2}, nil)
	roles.On("FindByID", mock.Anything, int64(2)).Return(roleUser, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return isHashOf("newpass")(u.PasswordHash) && u.Avatar != nil && *u.Avatar == "/img/a.png"
	})).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := newAdminUserUC(users, roles, audit)
	_, err := uc.UpdateUser(context.Background(), 1, 5, UpdateUserInput{
		Username: "alice", Password: "newpass", RoleID: 2, Avatar: "/img/a.png",
	})
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestAdminUserUsecase_UpdateUser_NotFound(t *testing.T) {
	users := new(UserRepoMock)
	users.On("FindByID", mock.Anything, int64(5)).Return(nil, repo.ErrUserNotFound)
	uc := newAdminUserUC(users, new(RoleRepoMock), new(AuditRepoMock))

	_, err := uc.UpdateUser(context.Background(), 1, 5, UpdateUserInput{Username: "alice", RoleID: 2})
	assert.True(t, IsKind(err, KindNotFound))
}

func TestAdminUserUsecase_DeleteUser(t *testing.T) {
	users := new(UserRepoMock)
	audit := new(AuditRepoMock)
	users.On("Delete", mock.Anything, int64(5)).Return(nil)
	users.On("Delete", mock.Anything, int64(6)).Return(repo.ErrUserNotFound)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionDeleteUser && l.ResourceID == 5
	})).Return(nil)
	uc := newAdminUserUC(users, new(RoleRepoMock), audit)
	ctx := context.Background()

	require.NoError(t, uc.DeleteUser(ctx, 1, 5))
	assert.True(t, IsKind(uc.DeleteUser(ctx, 1, 6), KindNotFound))
	audit.AssertNumberOfCalls(t, "Create", 1)
}

// 監査ログの失敗は操作を失敗させない
func TestAdminUserUsecase_AuditFailure_DoesNotFailMutation(t *testing.T) {
	users := new(UserRepoMock)
	audit := new(AuditRepoMock)
	users.On("Delete", mock.Anything, int64(5)).Return(nil)
	audit.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
	uc := newAdminUserUC(users, new(RoleRepoMock), audit)

	assert.NoError(t, uc.DeleteUser(context.Background(), 1, 5))
}

func TestAdminUserUsecase_StorageError_IsInternal(t *testing.T) {
	users := new(UserRepoMock)
	users.On("List", mock.Anything).Return(nil, errors.New("boom"))
	uc := newAdminUserUC(users, new(RoleRepoMock), new(AuditRepoMock))

	_, err := uc.ListUsers(context.Background())
	require.Error(t, err)
	ae, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, KindInternal, ae.Kind)
	assert.Equal(t, 500, ae.Status())
}
