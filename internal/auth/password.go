package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// パスワードハッシュ方式
const (
	HashSHA256   = "sha256"
	HashArgon2id = "argon2id"
)

// argon2idのパラメータ。ダイジェストをログイン時の検索キーに使うため固定値とする。
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
)

// PasswordHasher はパスワードを決定的なダイジェストに変換する。
// 同じ入力からは常に同じ値を返す。ログインはダイジェストの完全一致で照合する。
type PasswordHasher interface {
	Hash(plain string) string
}

// SHA256Hasher はsha256(平文+ソルト)の16進表現を返す。
// 既存のboard_accountデータと互換の方式。
type SHA256Hasher struct {
	salt string
}

// NewSHA256Hasher はプロセス共通のソルトでSHA256Hasherを生成する。
func NewSHA256Hasher(salt string) *SHA256Hasher {
	return &SHA256Hasher{salt: salt}
}

func (h *SHA256Hasher) Hash(plain string) string {
	sum := sha256.Sum256([]byte(plain + h.salt))
	return hex.EncodeToString(sum[:])
}

// Argon2Hasher はプロセス共通のソルトを使うargon2idハッシャー。
type Argon2Hasher struct {
	salt []byte
}

// NewArgon2Hasher はArgon2Hasherを生成する。
func NewArgon2Hasher(salt string) *Argon2Hasher {
	return &Argon2Hasher{salt: []byte(salt)}
}

func (h *Argon2Hasher) Hash(plain string) string {
	key := argon2.IDKey([]byte(plain), h.salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return hex.EncodeToString(key)
}

// NewPasswordHasher は設定値に対応するPasswordHasherを返す。
func NewPasswordHasher(algorithm, salt string) (PasswordHasher, error) {
	switch algorithm {
	case "", HashSHA256:
		return NewSHA256Hasher(salt), nil
	case HashArgon2id:
		return NewArgon2Hasher(salt), nil
	default:
		return nil, fmt.Errorf("unsupported password hash algorithm: %q", algorithm)
	}
}
