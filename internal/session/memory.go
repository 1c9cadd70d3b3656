package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore はセッションをプロセス内メモリに保存します。
// Redis を用意しないローカル実行とテストのための実装で、契約は RedisStore と同じです。
type MemoryStore struct {
	codec   tokenCodec
	ttl     time.Duration
	nowFunc func() time.Time

	mu       sync.RWMutex
	sessions map[string]Payload
}

// NewMemoryStore は MemoryStore を作成します。
func NewMemoryStore(secret string, ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		codec:    newTokenCodec(secret),
		ttl:      ttl,
		nowFunc:  time.Now,
		sessions: make(map[string]Payload),
	}
}

// Create は新しいトークンを発行してペイロードを保存します。
func (s *MemoryStore) Create(ctx context.Context, payload *Payload, permanent bool) (string, error) {
	id, token := s.codec.issue()

	now := s.nowFunc().UTC()
	payload.Permanent = permanent
	payload.CreatedAt = now
	payload.ExpiresAt = now.Add(s.ttl)

	s.mu.Lock()
	s.sessions[id] = *payload
	s.mu.Unlock()
	return token, nil
}

// Read は保存済みペイロードを取得します。期限切れはその場で削除します。
func (s *MemoryStore) Read(ctx context.Context, token string) (*Payload, error) {
	id, ok := s.codec.verify(token)
	if !ok {
		return nil, nil
	}

	s.mu.RLock()
	payload, found := s.sessions[id]
	s.mu.RUnlock()
	if !found {
		return nil, nil
	}

	if s.nowFunc().After(payload.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, nil
	}
	return &payload, nil
}

// Destroy はトークンに紐づくペイロードを削除します。
func (s *MemoryStore) Destroy(ctx context.Context, token string) error {
	id, ok := s.codec.verify(token)
	if !ok {
		return nil
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// Len は保存中のセッション数を返します。テストでの確認用です。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
