package session

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/repository"
)

// MemoryRepository はプロセス内のセッション保存先（SESSION_STORE=memory）。
// Manager が所有し、サーバーのライフサイクルと一緒に捨てる。
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]model.Session // key: token hash
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]model.Session)}
}

var _ repository.SessionRepository = (*MemoryRepository)(nil)

func (r *MemoryRepository) Create(_ context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.TokenHash]; ok {
		return repository.ErrDuplicate
	}
	r.sessions[s.TokenHash] = *s
	return nil
}

func (r *MemoryRepository) FindByTokenHash(_ context.Context, tokenHash string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[tokenHash]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) UpdatePrincipal(_ context.Context, tokenHash string, p model.Principal, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[tokenHash]
	if !ok {
		return repository.ErrSessionNotFound
	}
	s.UserID = p.ID
	s.Username = p.Username
	s.Role = p.Role
	s.UpdatedAt = now
	r.sessions[tokenHash] = s
	return nil
}

func (r *MemoryRepository) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[tokenHash]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(r.sessions, tokenHash)
	return nil
}

func (r *MemoryRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for k, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, k)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) CountActive(_ context.Context, now time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, s := range r.sessions {
		if !s.Expired(now) {
			n++
		}
	}
	return n, nil
}
