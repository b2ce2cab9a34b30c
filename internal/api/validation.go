package api

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrEmailInvalido = errors.New("email inválido")
	ErrDataInvalida  = errors.New("data inválida")
)

// emailRegex valida formato de e-mail (uma @ e domínio com ponto).
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !emailRegex.MatchString(email) {
		return ErrEmailInvalido
	}
	return nil
}

// ParseDataHora interpreta o formato do input datetime-local (2006-01-02T15:04),
// no fuso local do servidor.
func ParseDataHora(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation("2006-01-02T15:04", s, time.Local)
	if err != nil {
		return time.Time{}, ErrDataInvalida
	}
	return t, nil
}

// ParseData interpreta uma data simples (2006-01-02) no fuso local.
func ParseData(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, ErrDataInvalida
	}
	return t, nil
}

// formatDateBR converte YYYY-MM-DD em DD/MM/YYYY; retorna "" se inválido.
func formatDateBR(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return ""
	}
	return t.Format("02/01/2006")
}

func strPtrOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
