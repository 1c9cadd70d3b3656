// Package auth は登録・ログイン・ログアウト・認証状態確認のユースケースと、
// それらを公開する HTTP ハンドラーを提供します。
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/authgate/internal/session"
	"github.com/yourusername/authgate/internal/users"
)

// UserStore は利用者レコードの永続化境界です。
type UserStore interface {
	FindByEmailOrUsername(ctx context.Context, email, userName string) (*users.User, error)
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByID(ctx context.Context, userID int64) (*users.User, error)
	Create(ctx context.Context, userName, email, passwordHash string, createdAt time.Time) (*users.User, error)
}

// PasswordHasher はパスワードのハッシュ化と照合の境界です。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
	VerifyDummy(plaintext string)
}

// Service は2つのストアとハッシュ化を組み合わせて認証ユースケースを実装します。
// セッションは常に明示的なトークンで指定し、リクエスト暗黙のグローバル状態は持ちません。
type Service struct {
	users    UserStore
	sessions session.Store
	hasher   PasswordHasher
	nowFunc  func() time.Time
}

// NewService は Service を作成します。
func NewService(userStore UserStore, sessionStore session.Store, hasher PasswordHasher) *Service {
	return &Service{
		users:    userStore,
		sessions: sessionStore,
		hasher:   hasher,
		nowFunc:  time.Now,
	}
}

// Identity は登録・ログイン・認証確認の成功時にクライアントへ返す情報です。
type Identity struct {
	Token    string
	UserID   int64
	UserName string
}

// Register は新しい利用者を作成し、非永続セッションを開始します。
// 重複チェックはストレージ層の一意制約が最終的な防壁であり、
// 事前チェックは一般的なケースに 409 を返すためのものです。
func (s *Service) Register(ctx context.Context, userName, email, password, confirmPassword string) (*Identity, error) {
	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}

	existing, err := s.users.FindByEmailOrUsername(ctx, email, userName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, userName, email, hash, s.nowFunc())
	if err != nil {
		// 同一IDの同時登録は一意制約違反としてここに現れる
		if errors.Is(err, users.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	token, err := s.sessions.Create(ctx, &session.Payload{
		UserID:     user.UserID,
		UserName:   user.UserName,
		Email:      user.Email,
		AuthStatus: true,
	}, false)
	if err != nil {
		return nil, err
	}

	return &Identity{Token: token, UserID: user.UserID, UserName: user.UserName}, nil
}

// Login は資格情報を検証し、永続セッションを開始します。
// メールアドレス不存在とパスワード不一致は同一のエラーを返します。
func (s *Service) Login(ctx context.Context, email, password string) (*Identity, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// 不存在でも照合コストを消費し、応答時間から存在有無を漏らさない
		s.hasher.VerifyDummy(password)
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, &session.Payload{
		UserID:     user.UserID,
		UserName:   user.UserName,
		Email:      user.Email,
		AuthStatus: true,
	}, true)
	if err != nil {
		return nil, err
	}

	return &Identity{Token: token, UserID: user.UserID, UserName: user.UserName}, nil
}

// CheckAuth はトークンに対応するセッションを検証します。
// 利用者が既に削除されていた場合、セッションを破棄して未認証として報告します。
// 読み取り専用であり、セッションを書き換えません。
func (s *Service) CheckAuth(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	payload, err := s.sessions.Read(ctx, token)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrSessionNotFound
	}

	user, err := s.users.FindByID(ctx, payload.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = s.sessions.Destroy(ctx, token)
		return nil, ErrSessionNotFound
	}

	return &Identity{Token: token, UserID: payload.UserID, UserName: payload.UserName}, nil
}

// Logout はセッションを破棄します。冪等であり、セッションが無くても成功します。
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Destroy(ctx, token)
}
