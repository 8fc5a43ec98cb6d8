package auth

import "context"

type LogoutUsecase struct {
	sessions SessionStore
}

func NewLogoutUsecase(sessions SessionStore) *LogoutUsecase {
	return &LogoutUsecase{sessions: sessions}
}

// トークンが空・既に無効でもエラーにしない
func (u *LogoutUsecase) Execute(ctx context.Context, token string) error {
	return u.sessions.Invalidate(ctx, token)
}
