package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ユーザーが見つかりませんを統一
	ErrUserNotFound = errors.New("user not found")

	// ユニーク制約違反（username重複など）
	ErrDuplicate = errors.New("duplicate key")

	ErrSessionNotFound = errors.New("session not found")
)
