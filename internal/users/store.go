package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ErrDuplicate は user_name または email の一意制約違反を表します。
var ErrDuplicate = errors.New("user already exists")

// Store は gorm を介して users テーブルを操作します。
// gorm.Config の TranslateError を有効にして接続してください。
// 一意制約違反を gorm.ErrDuplicatedKey として受け取るために必要です。
type Store struct {
	db       *gorm.DB
	caseFold bool
}

// NewStore は Store を作成します。caseFold が true の場合、
// user_name と email は小文字に正規化して保存・検索します。
func NewStore(db *gorm.DB, caseFold bool) *Store {
	return &Store{
		db:       db,
		caseFold: caseFold,
	}
}

// FindByEmailOrUsername は email または user_name のいずれかが一致するレコードを高々1件返します。
// 登録時の重複チェックに使用します。見つからない場合は (nil, nil) を返します。
func (s *Store) FindByEmailOrUsername(ctx context.Context, email, userName string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).
		Where("email = ? OR user_name = ?", s.normalize(email), s.normalize(userName)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail は email の完全一致でレコードを検索します。ログイン時に使用します。
func (s *Store) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).
		Where("email = ?", s.normalize(email)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByID は user_id でレコードを検索します。セッションの再検証に使用します。
func (s *Store) FindByID(ctx context.Context, userID int64) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create は新しい利用者を1件のトランザクションで作成します。
// 一意制約違反は ErrDuplicate として返します。その他の失敗はロールバック後にそのまま返し、
// 部分的なレコードは残りません。
func (s *Store) Create(ctx context.Context, userName, email, passwordHash string, createdAt time.Time) (*User, error) {
	user := &User{
		UserName:     s.normalize(userName),
		Email:        s.normalize(email),
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return user, nil
}

func (s *Store) normalize(value string) string {
	if s.caseFold {
		return strings.ToLower(value)
	}
	return value
}
