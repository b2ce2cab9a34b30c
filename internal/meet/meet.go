// Package meet gera links de videochamada no formato de código do Google Meet
// (xxx-yyyy-zzz). O link é só um identificador aleatório formatado; não há
// integração com a API do Meet.
package meet

import (
	"crypto/rand"
	"strings"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// NewLink retorna um link completo, ex.: https://meet.google.com/abc-defg-hij
func NewLink() string {
	return "https://meet.google.com/" + NewCode()
}

// NewCode retorna o código no formato xxx-yyyy-zzz.
func NewCode() string {
	var b strings.Builder
	for i, n := range []int{3, 4, 3} {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(randomLetters(n))
	}
	return b.String()
}

func randomLetters(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}
