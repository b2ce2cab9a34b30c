package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"gorm.io/gorm"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/agenda"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/cache"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/config"
)

type Handler struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Cache *cache.TTL
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ok responde o envelope de mutação bem-sucedida. extra mescla campos
// adicionais (ex.: id do registro criado).
func ok(w http.ResponseWriter, message string, extra map[string]interface{}) {
	body := map[string]interface{}{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"success": false, "message": message})
}

// respondErr traduz erros de domínio para o envelope HTTP. Falhas de
// persistência vão para o console e viram aviso genérico (nada é reenviado).
func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		fail(w, http.StatusNotFound, "registro não encontrado")
	case errors.Is(err, agenda.ErrDataPassada):
		fail(w, http.StatusBadRequest, "não é possível agendar sessão em data passada")
	case errors.Is(err, agenda.ErrConflito):
		fail(w, http.StatusConflict, "já existe uma sessão agendada neste horário")
	case errors.Is(err, agenda.ErrStatusInvalido):
		fail(w, http.StatusBadRequest, "status de sessão inválido")
	default:
		log.Printf("[api] erro path=%s: %v", r.URL.Path, err)
		fail(w, http.StatusInternalServerError, "erro interno")
	}
}
