package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/session"
	"storefront/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const cookieName = "sid"

type testClock struct{ now time.Time }

func (c testClock) Now() time.Time { return c.now }

type seqIDGen struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGen) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("sess-%d", g.n)
}

func newSessions() *session.Manager {
	clock := testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return session.NewManager(session.NewMemoryRepository(), 24*time.Hour, clock, &seqIDGen{})
}

// ログイン済みのcookie値を作る
func loginAs(t *testing.T, sessions *session.Manager, p model.Principal) string {
	t.Helper()
	token, _, err := sessions.Create(context.Background(), p)
	require.NoError(t, err)
	return token
}

func newEcho(sessions *session.Manager) *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	e.Use(middleware.LoadSession(sessions, cookieName, zerolog.Nop()))
	return e
}

func doJSON(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doForm(e *echo.Echo, path, form, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ユーザーのインメモリ実装（ハンドラ結合テスト用）
type memUserRepo struct {
	mu     sync.Mutex
	users  map[int64]model.User
	roles  map[int64]model.Role
	nextID int64
}

func newMemUserRepo(roles ...model.Role) *memUserRepo {
	r := &memUserRepo{users: map[int64]model.User{}, roles: map[int64]model.Role{}}
	for _, role := range roles {
		r.roles[role.ID] = role
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) withRole(u model.User) *model.User {
	u.Role = r.roles[u.RoleID]
	return &u
}

func (r *memUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return r.withRole(u), nil
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return r.withRole(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) List(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *r.withRole(u))
	}
	return out, nil
}

func (r *memUserRepo) FindRoleByName(name string) (model.Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return model.Role{}, repository.ErrNotFound
}

// RoleRepository（memUserRepoのロールを参照）
type memRoleRepo struct{ users *memUserRepo }

func (r memRoleRepo) FindByID(_ context.Context, id int64) (model.Role, error) {
	role, ok := r.users.roles[id]
	if !ok {
		return model.Role{}, repository.ErrNotFound
	}
	return role, nil
}

func (r memRoleRepo) FindByName(_ context.Context, name string) (model.Role, error) {
	return r.users.FindRoleByName(name)
}

func (r memRoleRepo) List(_ context.Context) ([]model.Role, error) {
	out := make([]model.Role, 0, len(r.users.roles))
	for _, role := range r.users.roles {
		out = append(out, role)
	}
	return out, nil
}

func (r memRoleRepo) Ensure(ctx context.Context, name string) (model.Role, error) {
	return r.FindByName(ctx, name)
}
