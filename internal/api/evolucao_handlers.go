package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/auth"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/repo"
)

type evolucaoRequest struct {
	PacienteID          string `json:"paciente_id"`
	DataEvolucao        string `json:"data_evolucao"` // 2006-01-02T15:04, opcional
	Titulo              string `json:"titulo"`
	Descricao           string `json:"descricao"`
	Tipo                string `json:"tipo"`
	Humor               string `json:"humor"`
	Medicamentos        string `json:"medicamentos"`
	ObservacoesPrivadas string `json:"observacoes_privadas"`
}

type evolucaoResp struct {
	ID                  string  `json:"id"`
	PacienteID          string  `json:"paciente_id"`
	DataEvolucao        string  `json:"data_evolucao"`
	Titulo              string  `json:"titulo"`
	Descricao           string  `json:"descricao"`
	Tipo                string  `json:"tipo"`
	Humor               *string `json:"humor,omitempty"`
	Medicamentos        *string `json:"medicamentos,omitempty"`
	ObservacoesPrivadas *string `json:"observacoes_privadas,omitempty"`
}

func toEvolucaoResp(e *repo.Evolucao) evolucaoResp {
	return evolucaoResp{
		ID:                  e.ID.String(),
		PacienteID:          e.PacienteID.String(),
		DataEvolucao:        e.DataEvolucao.Format("2006-01-02T15:04"),
		Titulo:              e.Titulo,
		Descricao:           e.Descricao,
		Tipo:                e.Tipo,
		Humor:               e.Humor,
		Medicamentos:        e.Medicamentos,
		ObservacoesPrivadas: e.ObservacoesPrivadas,
	}
}

// ListEvolucoes aceita ?paciente= para restringir a um prontuário.
func (h *Handler) ListEvolucoes(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	var pacienteID *uuid.UUID
	if p := r.URL.Query().Get("paciente"); p != "" {
		pid, err := uuid.Parse(p)
		if err != nil {
			fail(w, http.StatusBadRequest, "paciente inválido")
			return
		}
		pacienteID = &pid
	}
	list, err := repo.EvolucoesByPsicologo(r.Context(), h.DB, psicologoID, pacienteID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	out := make([]evolucaoResp, len(list))
	for i := range list {
		out[i] = toEvolucaoResp(&list[i])
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"evolucoes": out, "total": len(out)})
}

func (h *Handler) CreateEvolucao(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	var req evolucaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	if req.Titulo == "" || req.Descricao == "" {
		fail(w, http.StatusBadRequest, "título e descrição são obrigatórios")
		return
	}
	pacienteID, err := uuid.Parse(req.PacienteID)
	if err != nil {
		fail(w, http.StatusBadRequest, "paciente é obrigatório")
		return
	}
	// A posse do paciente é checada antes de gravar: evolução de paciente de
	// outro psicólogo devolve 404 como se o paciente não existisse.
	if _, err := repo.PacienteByIDAndPsicologo(r.Context(), h.DB, pacienteID, psicologoID); err != nil {
		h.respondErr(w, r, err)
		return
	}
	e := repo.Evolucao{
		PacienteID:          pacienteID,
		Titulo:              req.Titulo,
		Descricao:           req.Descricao,
		Tipo:                req.Tipo,
		Humor:               strPtrOrNil(req.Humor),
		Medicamentos:        strPtrOrNil(req.Medicamentos),
		ObservacoesPrivadas: strPtrOrNil(req.ObservacoesPrivadas),
	}
	if req.DataEvolucao != "" {
		if t, err := ParseDataHora(req.DataEvolucao); err == nil {
			e.DataEvolucao = t
		}
	}
	id, err := repo.CreateEvolucao(r.Context(), h.DB, &e)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, "Evolução registrada com sucesso!", map[string]interface{}{"id": id.String()})
}

func (h *Handler) GetEvolucao(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		fail(w, http.StatusBadRequest, "identificador inválido")
		return
	}
	e, err := repo.EvolucaoByIDAndPsicologo(r.Context(), h.DB, id, psicologoID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEvolucaoResp(e))
}

func (h *Handler) UpdateEvolucao(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		fail(w, http.StatusBadRequest, "identificador inválido")
		return
	}
	var req evolucaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	if req.Titulo == "" || req.Descricao == "" {
		fail(w, http.StatusBadRequest, "título e descrição são obrigatórios")
		return
	}
	tipo := req.Tipo
	if tipo == "" {
		tipo = "evolucao"
	}
	err = repo.UpdateEvolucao(r.Context(), h.DB, id, psicologoID, &repo.Evolucao{
		Titulo:              req.Titulo,
		Descricao:           req.Descricao,
		Tipo:                tipo,
		Humor:               strPtrOrNil(req.Humor),
		Medicamentos:        strPtrOrNil(req.Medicamentos),
		ObservacoesPrivadas: strPtrOrNil(req.ObservacoesPrivadas),
	})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, "Evolução atualizada com sucesso!", nil)
}

func (h *Handler) DeleteEvolucao(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		fail(w, http.StatusBadRequest, "identificador inválido")
		return
	}
	if err := repo.DeleteEvolucao(r.Context(), h.DB, id, psicologoID); err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, "Evolução excluída.", nil)
}
