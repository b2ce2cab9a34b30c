package api

import (
	"net/http"
	"time"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/auth"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/relatorio"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/repo"
)

type proximaSessaoResp struct {
	ID           string  `json:"id"`
	PacienteID   string  `json:"paciente_id"`
	PacienteNome string  `json:"paciente_nome"`
	DataSessao   string  `json:"data_sessao"`
	Duracao      int     `json:"duracao"`
	LinkMeet     *string `json:"link_meet,omitempty"`
}

// Dashboard reúne os números do topo do painel: sessões de hoje, agenda dos
// próximos 7 dias, acumulado do mês e pacientes ativos.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	ctx := r.Context()
	now := time.Now()

	inicioHoje := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	fimHoje := inicioHoje.AddDate(0, 0, 1).Add(-time.Second)
	sessoesHoje, err := repo.CountSessoesNoPeriodo(ctx, h.DB, psicologoID, inicioHoje, fimHoje)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	proximas, err := repo.ProximasSessoes(ctx, h.DB, psicologoID, now.AddDate(0, 0, 7), 10)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	inicioMes := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	g, err := relatorio.Estatisticas(ctx, h.DB, psicologoID, inicioMes, now)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	proximasOut := make([]proximaSessaoResp, len(proximas))
	for i, s := range proximas {
		proximasOut[i] = proximaSessaoResp{
			ID:           s.ID.String(),
			PacienteID:   s.PacienteID.String(),
			PacienteNome: s.PacienteNome,
			DataSessao:   s.DataSessao.Format("2006-01-02T15:04"),
			Duracao:      s.Duracao,
			LinkMeet:     s.LinkMeet,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessoes_hoje":     sessoesHoje,
		"proximas_sessoes": proximasOut,
		"sessoes_mes":      g.TotalSessoes,
		"receita_mes":      g.ReceitaTotal,
		"pacientes_ativos": g.PacientesAtivos,
	})
}
