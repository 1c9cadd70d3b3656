// Package users は利用者レコードの永続化と検索を提供します。
package users

import "time"

// User は登録済みアカウント1件を表します。
// user_name と email にはストレージ層の一意制約があり、
// 事前チェックと挿入の間の競合はこの制約で防ぎます。
type User struct {
	UserID       int64     `json:"user_id" gorm:"column:user_id;primaryKey"`
	UserName     string    `json:"user_name" gorm:"column:user_name;size:50;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"size:250;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:150;not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName は users テーブル名を返します。
func (User) TableName() string {
	return "users"
}
