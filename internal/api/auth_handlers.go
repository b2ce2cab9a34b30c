package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/auth"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/repo"
)

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// Login valida e-mail/senha e exige conta ativa. Emite o JWT como cookie de
// sessão HttpOnly e também no corpo (para clientes que preferem Bearer).
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	if req.Email == "" || req.Senha == "" {
		fail(w, http.StatusBadRequest, "email e senha são obrigatórios")
		return
	}
	u, err := repo.UsuarioByEmail(r.Context(), h.DB, req.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		h.respondErr(w, r, err)
		return
	}
	if u == nil || err != nil || !u.Ativo || !auth.CheckPassword(u.SenhaHash, req.Senha) {
		// Mensagem única para credencial errada e conta desativada.
		fail(w, http.StatusUnauthorized, "email ou senha inválidos")
		return
	}
	ttl := time.Duration(h.Cfg.TokenTTLHours) * time.Hour
	token, err := auth.BuildJWT(h.Cfg.SecretKey, u.ID.String(), u.Nome, u.Tipo, ttl)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "login efetuado",
		"token":   token,
		"usuario": map[string]string{"id": u.ID.String(), "nome": u.Nome, "tipo": u.Tipo},
	})
}

// Logout limpa o cookie de sessão. O JWT em si não é revogado (expira sozinho).
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	ok(w, "logout efetuado", nil)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id := auth.PsicologoIDFrom(r.Context())
	u, err := repo.UsuarioByID(r.Context(), h.DB, id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":    u.ID.String(),
		"nome":  u.Nome,
		"email": u.Email,
		"tipo":  u.Tipo,
	})
}
