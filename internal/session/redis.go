package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// RedisStore はセッションを Redis に保存します。
// 期限切れの削除は Redis の TTL に任せます。
type RedisStore struct {
	rdb   *redis.Client
	codec tokenCodec
	ttl   time.Duration
}

// NewRedisStore は RedisStore を作成します。
// 非永続セッションも同じ TTL を上限としてサーバー側から消えます。
func NewRedisStore(rdb *redis.Client, secret string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb:   rdb,
		codec: newTokenCodec(secret),
		ttl:   ttl,
	}
}

// Create は新しいトークンを発行してペイロードを保存します。
func (s *RedisStore) Create(ctx context.Context, payload *Payload, permanent bool) (string, error) {
	if payload == nil {
		return "", fmt.Errorf("payload is nil")
	}
	id, token := s.codec.issue()

	now := time.Now().UTC()
	payload.Permanent = permanent
	payload.CreatedAt = now
	payload.ExpiresAt = now.Add(s.ttl)

	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, sessionKey(id), data, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Read は保存済みペイロードを取得します。
// 署名が一致しないトークンはセッションなしとして扱います。
func (s *RedisStore) Read(ctx context.Context, token string) (*Payload, error) {
	id, ok := s.codec.verify(token)
	if !ok {
		return nil, nil
	}
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Destroy はトークンに紐づくペイロードを削除します。
func (s *RedisStore) Destroy(ctx context.Context, token string) error {
	id, ok := s.codec.verify(token)
	if !ok {
		return nil
	}
	return s.rdb.Del(ctx, sessionKey(id)).Err()
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}
