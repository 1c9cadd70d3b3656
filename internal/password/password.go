// Package password は平文パスワードの一方向ハッシュ化と照合を提供します。
package password

import "golang.org/x/crypto/bcrypt"

// dummyHash は実在しない利用者の照合に使うダミーのハッシュです。
// メールアドレスの存在有無で応答時間が変わらないようにします。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Hasher は bcrypt によるハッシュ化を行うステートレスなコンポーネントです。
type Hasher struct {
	cost int
}

// NewHasher は既定コストの Hasher を作成します。
func NewHasher() *Hasher {
	return &Hasher{cost: bcrypt.DefaultCost}
}

// Hash は平文からソルト付きハッシュを生成します。
// ソルトは毎回ランダムに生成されるため、同じ平文でも呼び出しごとに異なるハッシュを返します。
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify は平文とハッシュを照合します。不一致はエラーではなく false として返します。
func (h *Hasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// VerifyDummy は照合と同等のCPUコストだけを消費します。結果は常に破棄されます。
func (h *Hasher) VerifyDummy(plaintext string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plaintext))
}
