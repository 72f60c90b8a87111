package auth

import (
	"strings"

	"github.com/alexedwards/argon2id"
)

var params = &argon2id.Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash gera o valor de APP_PASSWORD_HASH para a senha da equipe.
func Hash(password string) (string, error) {
	return argon2id.CreateHash(password, params)
}

// Verify compara a senha com o hash; hash malformado conta como senha errada.
func Verify(password, encodedHash string) bool {
	encodedHash = strings.TrimSpace(encodedHash)
	if password == "" || encodedHash == "" {
		return false
	}
	ok, err := argon2id.ComparePasswordAndHash(password, encodedHash)
	return err == nil && ok
}
