package auth

import "errors"

// ハンドラー境界で HTTP ステータスへ変換されるエラー種別です。
// ここに無いエラーはすべて内部エラー (500) として扱われます。
var (
	// ErrPasswordMismatch は password と confirm_password の不一致を表します。
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrUserExists は user_name または email の重複を表します。
	ErrUserExists = errors.New("user with this email or username already exists")

	// ErrInvalidCredentials はログイン失敗を表します。
	// メールアドレス不存在とパスワード不一致を区別しません。
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrSessionNotFound は有効なセッションが無いことを表します。
	ErrSessionNotFound = errors.New("session not found")
)
