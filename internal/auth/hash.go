package auth

import "golang.org/x/crypto/bcrypt"

// Custo 12: acima do default do bcrypt, ainda confortável para o volume de
// logins de um consultório.
const bcryptCost = 12

// HashPassword gera o hash bcrypt que vai em usuarios.senha_hash.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword compara em tempo constante; qualquer erro conta como senha errada.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
