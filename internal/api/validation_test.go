package api

import (
	"testing"
	"time"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.com", "maria.silva@exemplo.com.br", "x+y@dom.io"}
	for _, e := range valid {
		if err := ValidateEmail(e); err != nil {
			t.Errorf("ValidateEmail(%q) = %v, esperava nil", e, err)
		}
	}
	invalid := []string{"", "semarroba", "a@b", "a @b.com", "a@@b.com"}
	for _, e := range invalid {
		if err := ValidateEmail(e); err == nil {
			t.Errorf("ValidateEmail(%q) = nil, esperava erro", e)
		}
	}
}

func TestParseDataHora(t *testing.T) {
	got, err := ParseDataHora("2026-03-15T09:30")
	if err != nil {
		t.Fatalf("ParseDataHora: %v", err)
	}
	want := time.Date(2026, 3, 15, 9, 30, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("ParseDataHora = %v, esperava %v", got, want)
	}

	for _, s := range []string{"", "2026-03-15", "15/03/2026 09:30", "2026-03-15T09:30:00"} {
		if _, err := ParseDataHora(s); err == nil {
			t.Errorf("ParseDataHora(%q) = nil, esperava erro", s)
		}
	}
}

func TestParseData(t *testing.T) {
	got, err := ParseData(" 2026-03-15 ")
	if err != nil {
		t.Fatalf("ParseData: %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 15 {
		t.Fatalf("ParseData = %v", got)
	}
	if _, err := ParseData("15/03/2026"); err == nil {
		t.Error("ParseData aceitou formato BR")
	}
}

func TestFormatDateBR(t *testing.T) {
	if got := formatDateBR("1990-05-20"); got != "20/05/1990" {
		t.Fatalf("formatDateBR = %q", got)
	}
	if got := formatDateBR("não-é-data"); got != "" {
		t.Fatalf("formatDateBR de inválida = %q, esperava vazio", got)
	}
	if got := formatDateBR(""); got != "" {
		t.Fatalf("formatDateBR de vazia = %q", got)
	}
}

func TestStrPtrOrNil(t *testing.T) {
	if strPtrOrNil("") != nil {
		t.Error("string vazia deveria virar nil")
	}
	if strPtrOrNil("  ") != nil {
		t.Error("só espaços deveria virar nil")
	}
	if p := strPtrOrNil(" x "); p == nil || *p != "x" {
		t.Errorf("strPtrOrNil(\" x \") = %v", p)
	}
}
