package api

import (
	"net/http"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/reminder"
)

// DispararLembretes varre os psicólogos com lembrete habilitado e envia os
// WhatsApps das sessões dentro da janela de antecedência de cada um. É
// acionado por chamada (painel ou cron externo), não há loop em background.
func (h *Handler) DispararLembretes(w http.ResponseWriter, r *http.Request) {
	sender := reminder.DefaultSender(h.Cfg.TwilioAccountSid, h.Cfg.TwilioAuthToken, h.Cfg.TwilioWhatsAppFrom)
	enviados, pulados := reminder.Disparar(r.Context(), h.DB, sender)
	ok(w, "Disparo de lembretes concluído.", map[string]interface{}{
		"enviados": enviados,
		"pulados":  pulados,
	})
}
