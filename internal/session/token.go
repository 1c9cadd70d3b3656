package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// tokenCodec はトークンの発行と検証を行います。
// トークンは "<セッションID>.<署名>" の形式で、署名は秘密鍵による HMAC-SHA256 です。
// 署名により、クライアント側で改ざんされたトークンを検出できます。
type tokenCodec struct {
	secret []byte
}

func newTokenCodec(secret string) tokenCodec {
	return tokenCodec{secret: []byte(secret)}
}

// issue は新しいセッションIDと、それに対応する署名付きトークンを生成します。
func (t tokenCodec) issue() (id string, token string) {
	id = uuid.NewString()
	return id, id + "." + t.sign(id)
}

// verify はトークンの署名を検証し、セッションIDを取り出します。
// 形式不正または署名不一致の場合は ok=false を返します。
func (t tokenCodec) verify(token string) (id string, ok bool) {
	id, sig, found := strings.Cut(token, ".")
	if !found || id == "" {
		return "", false
	}
	expected := t.sign(id)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) != 1 {
		return "", false
	}
	return id, true
}

func (t tokenCodec) sign(id string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}
