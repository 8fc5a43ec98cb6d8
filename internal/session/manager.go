package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

const tokenBytes = 32

// 現在の時間
type Clock interface {
	Now() time.Time
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// Manager はセッションの作成・参照・無効化・期限切れ掃除を受け持つ。
// 保存先は repository.SessionRepository（メモリ or DB）。
type Manager struct {
	repo  repository.SessionRepository
	ttl   time.Duration
	clock Clock
	idGen IDGenerator
}

// DI
func NewManager(repo repository.SessionRepository, ttl time.Duration, clock Clock, idGen IDGenerator) *Manager {
	return &Manager{
		repo:  repo,
		ttl:   ttl,
		clock: clock,
		idGen: idGen,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// ログイン時にセッションを作り、cookieに入れる平文トークンを返す。
func (m *Manager) Create(ctx context.Context, p model.Principal) (string, time.Time, error) {
	if p.IsAnonymous() {
		return "", time.Time{}, fmt.Errorf("session: principal id must be positive")
	}

	token, err := generateSecureToken(tokenBytes)
	if err != nil {
		return "", time.Time{}, err
	}

	now := m.clock.Now()
	s := &model.Session{
		ID:        m.idGen.NewID(),
		TokenHash: hashToken(token),
		UserID:    p.ID,
		Username:  p.Username,
		Role:      p.Role,
		ExpiresAt: now.Add(m.ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.repo.Create(ctx, s); err != nil {
		return "", time.Time{}, err
	}

	return token, s.ExpiresAt, nil
}

// トークンからPrincipalを引く。
// 無い・期限切れは (nil, nil) で匿名扱い。
func (m *Manager) Lookup(ctx context.Context, token string) (*model.Principal, error) {
	if token == "" {
		return nil, nil
	}

	hash := hashToken(token)
	s, err := m.repo.FindByTokenHash(ctx, hash)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if s.Expired(m.clock.Now()) {
		//期限切れはその場で消す
		if err := m.repo.DeleteByTokenHash(ctx, hash); err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
			return nil, err
		}
		return nil, nil
	}

	p := s.Principal()
	return &p, nil
}

// プロフィール更新後にスナップショットを差し替える（期限はそのまま）
func (m *Manager) Refresh(ctx context.Context, token string, p model.Principal) error {
	if token == "" {
		return repository.ErrSessionNotFound
	}
	return m.repo.UpdatePrincipal(ctx, hashToken(token), p, m.clock.Now())
}

// ログアウト。既に無いセッションはエラーにしない。
func (m *Manager) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := m.repo.DeleteByTokenHash(ctx, hashToken(token))
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil
	}
	return err
}

// 期限切れをまとめて削除
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	return m.repo.DeleteExpired(ctx, m.clock.Now())
}

func (m *Manager) ActiveCount(ctx context.Context) (int64, error) {
	return m.repo.CountActive(ctx, m.clock.Now())
}

// Run は ctx が終わるまで interval ごとに Sweep する。
// observe には掃除後の有効セッション数を渡す（メトリクス用、nil可）。
func (m *Manager) Run(ctx context.Context, interval time.Duration, log zerolog.Logger, observe func(active int64)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := m.Sweep(ctx)
			if err != nil {
				log.Error().Err(err).Msg("session sweep failed")
				continue
			}
			if removed > 0 {
				log.Debug().Int64("removed", removed).Msg("expired sessions swept")
			}
			if observe != nil {
				if n, err := m.ActiveCount(ctx); err == nil {
					observe(n)
				}
			}
		}
	}
}

// ランダム文字列を作る。
func generateSecureToken(bytesLen int) (string, error) {
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
