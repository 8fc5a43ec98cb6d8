package model

// ログイン中のユーザー（セッションに保存する値）
type Principal struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// 未ログインかどうか
func (p *Principal) IsAnonymous() bool {
	return p == nil || p.ID <= 0
}
