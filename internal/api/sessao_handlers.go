package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/agenda"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/auth"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/repo"
)

type sessaoRequest struct {
	PacienteID  string   `json:"paciente_id"`
	DataSessao  string   `json:"data_sessao"` // 2006-01-02T15:04
	Duracao     int      `json:"duracao"`
	Valor       *float64 `json:"valor"`
	Observacoes string   `json:"observacoes"`
}

type sessaoResp struct {
	ID          string   `json:"id"`
	PacienteID  string   `json:"paciente_id"`
	DataSessao  string   `json:"data_sessao"`
	Duracao     int      `json:"duracao"`
	Valor       *float64 `json:"valor,omitempty"`
	Status      string   `json:"status"`
	Observacoes *string  `json:"observacoes,omitempty"`
	LinkMeet    *string  `json:"link_meet,omitempty"`
}

func toSessaoResp(s *repo.Sessao) sessaoResp {
	return sessaoResp{
		ID:          s.ID.String(),
		PacienteID:  s.PacienteID.String(),
		DataSessao:  s.DataSessao.Format("2006-01-02T15:04"),
		Duracao:     s.Duracao,
		Valor:       s.Valor,
		Status:      s.Status,
		Observacoes: s.Observacoes,
		LinkMeet:    s.LinkMeet,
	}
}

// ListSessoes aceita status, paciente, data_inicio e data_fim como query.
// Filtro de data malformado é descartado em silêncio e a listagem segue sem
// ele; várias telas dependem desse comportamento com query strings parciais.
func (h *Handler) ListSessoes(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	q := r.URL.Query()
	var f repo.SessaoFiltro
	if s := q.Get("status"); s != "" && repo.StatusValido(s) {
		f.Status = &s
	}
	if p := q.Get("paciente"); p != "" {
		if pid, err := uuid.Parse(p); err == nil {
			f.PacienteID = &pid
		}
	}
	if d := q.Get("data_inicio"); d != "" {
		if t, err := ParseData(d); err == nil {
			f.DataInicio = &t
		}
	}
	if d := q.Get("data_fim"); d != "" {
		if t, err := ParseData(d); err == nil {
			fim := t.AddDate(0, 0, 1).Add(-time.Second) // fim do dia, inclusivo
			f.DataFim = &fim
		}
	}
	list, err := agenda.Listar(r.Context(), h.DB, psicologoID, f)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	out := make([]sessaoResp, len(list))
	for i := range list {
		out[i] = toSessaoResp(&list[i])
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessoes": out, "total": len(out)})
}

func (h *Handler) CreateSessao(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	var req sessaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	pacienteID, err := uuid.Parse(req.PacienteID)
	if err != nil {
		fail(w, http.StatusBadRequest, "paciente é obrigatório")
		return
	}
	quando, err := ParseDataHora(req.DataSessao)
	if err != nil {
		fail(w, http.StatusBadRequest, "data da sessão inválida")
		return
	}
	id, err := agenda.Criar(r.Context(), h.DB, psicologoID, agenda.Entrada{
		PacienteID:  pacienteID,
		DataSessao:  quando,
		Duracao:     req.Duracao,
		Valor:       req.Valor,
		Observacoes: strPtrOrNil(req.Observacoes),
	})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, "Sessão agendada com sucesso!", map[string]interface{}{"id": id.String()})
}

func (h *Handler) GetSessao(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		fail(w, http.StatusBadRequest, "identificador inválido")
		return
	}
	s, err := agenda.Detalhe(r.Context(), h.DB, psicologoID, id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessaoResp(s))
}

func (h *Handler) UpdateSessao(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		fail(w, http.StatusBadRequest, "identificador inválido")
		return
	}
	var req sessaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	quando, err := ParseDataHora(req.DataSessao)
	if err != nil {
		fail(w, http.StatusBadRequest, "data da sessão inválida")
		return
	}
	err = agenda.Remarcar(r.Context(), h.DB, psicologoID, id, agenda.Entrada{
		DataSessao:  quando,
		Duracao:     req.Duracao,
		Valor:       req.Valor,
		Observacoes: strPtrOrNil(req.Observacoes),
	})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, "Sessão atualizada com sucesso!", nil)
}

func (h *Handler) MarcarRealizada(w http.ResponseWriter, r *http.Request) {
	h.mudarStatus(w, r, repo.StatusRealizada, "Sessão marcada como realizada!")
}

func (h *Handler) MarcarFaltou(w http.ResponseWriter, r *http.Request) {
	h.mudarStatus(w, r, repo.StatusFaltou, "Falta registrada.")
}

func (h *Handler) CancelarSessao(w http.ResponseWriter, r *http.Request) {
	h.mudarStatus(w, r, repo.StatusCancelada, "Sessão cancelada.")
}

// ReagendarSessao reabre a sessão para agendada; remarcações de cancelada e
// falta passam por aqui antes de um eventual edit de horário.
func (h *Handler) ReagendarSessao(w http.ResponseWriter, r *http.Request) {
	h.mudarStatus(w, r, repo.StatusAgendada, "Sessão reagendada.")
}

func (h *Handler) mudarStatus(w http.ResponseWriter, r *http.Request, status, msg string) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		fail(w, http.StatusBadRequest, "identificador inválido")
		return
	}
	if err := agenda.MudarStatus(r.Context(), h.DB, psicologoID, id, status); err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, msg, nil)
}

// MeetQR devolve o link da sessão como PNG de QR code, para o paciente entrar
// na chamada pelo celular.
func (h *Handler) MeetQR(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		fail(w, http.StatusBadRequest, "identificador inválido")
		return
	}
	s, err := agenda.Detalhe(r.Context(), h.DB, psicologoID, id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if s.LinkMeet == nil || *s.LinkMeet == "" {
		fail(w, http.StatusNotFound, "sessão sem link de videochamada")
		return
	}
	png, err := qrcode.Encode(*s.LinkMeet, qrcode.Medium, 256)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
