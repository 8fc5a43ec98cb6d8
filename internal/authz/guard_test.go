package authz_test

import (
	"testing"

	"storefront/internal/authz"
	"storefront/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestRequireAuthenticated(t *testing.T) {
	cases := []struct {
		name string
		p    *model.Principal
		want error
	}{
		{name: "nil principal", p: nil, want: authz.ErrUnauthorized},
		{name: "zero id", p: &model.Principal{Username: "ghost", Role: model.RoleNameUser}, want: authz.ErrUnauthorized},
		{name: "logged in", p: &model.Principal{ID: 7, Username: "alice", Role: model.RoleNameUser}, want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, authz.RequireAuthenticated(tc.p))
		})
	}
}

func TestRequireRole(t *testing.T) {
	admin := &model.Principal{ID: 1, Username: "root", Role: model.RoleNameAdministrator}
	user := &model.Principal{ID: 7, Username: "alice", Role: model.RoleNameUser}

	assert.NoError(t, authz.RequireRole(admin, model.RoleNameAdministrator))
	assert.NoError(t, authz.RequireRole(user, model.RoleNameUser))

	assert.ErrorIs(t, authz.RequireRole(user, model.RoleNameAdministrator), authz.ErrForbidden)
	assert.ErrorIs(t, authz.RequireRole(admin, model.RoleNameUser), authz.ErrForbidden)
}

// 匿名でも Unauthorized ではなく Forbidden
func TestRequireRole_AnonymousIsForbidden(t *testing.T) {
	assert.ErrorIs(t, authz.RequireRole(nil, model.RoleNameUser), authz.ErrForbidden)
}

func TestGuards_Composed(t *testing.T) {
	check := func(p *model.Principal) error {
		if err := authz.RequireAuthenticated(p); err != nil {
			return err
		}
		return authz.RequireRole(p, model.RoleNameAdministrator)
	}

	assert.ErrorIs(t, check(nil), authz.ErrUnauthorized)
	assert.ErrorIs(t, check(&model.Principal{ID: 2, Role: model.RoleNameUser}), authz.ErrForbidden)
	assert.NoError(t, check(&model.Principal{ID: 1, Role: model.RoleNameAdministrator}))
}
