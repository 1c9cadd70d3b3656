// Package session はサーバー側セッションの保存と、クライアントへ渡す
// 不透明トークンの発行・検証を行います。
package session

import (
	"context"
	"time"
)

// Payload は認証済みセッションの内容です。クライアントにはトークンのみを渡し、
// この内容はサーバー側ストアだけが保持します。
type Payload struct {
	UserID     int64     `json:"user_id"`
	UserName   string    `json:"user_name"`
	Email      string    `json:"email,omitempty"`
	AuthStatus bool      `json:"auth_status"`
	Permanent  bool      `json:"permanent"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Store はトークンで指定されるセッションストアの境界です。
type Store interface {
	// Create は新しいトークンを発行してペイロードを保存します。
	// permanent は作成時点から固定期間有効なセッションを示します。
	Create(ctx context.Context, payload *Payload, permanent bool) (string, error)

	// Read は保存済みペイロードを返します。
	// 期限切れ・存在しない・改ざんされたトークンはエラーではなく (nil, nil) として扱います。
	Read(ctx context.Context, token string) (*Payload, error)

	// Destroy はトークンに紐づくペイロードを完全に削除します。
	// 存在しないトークンに対しても成功します。
	Destroy(ctx context.Context, token string) error
}
