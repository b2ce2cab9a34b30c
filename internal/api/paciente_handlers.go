package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/auth"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/repo"
)

type pacienteRequest struct {
	Nome           string `json:"nome"`
	Email          string `json:"email"`
	Telefone       string `json:"telefone"`
	DataNascimento string `json:"data_nascimento"` // YYYY-MM-DD
	Endereco       string `json:"endereco"`
	Observacoes    string `json:"observacoes"`
}

type pacienteResp struct {
	ID             string  `json:"id"`
	Nome           string  `json:"nome"`
	Email          *string `json:"email,omitempty"`
	Telefone       *string `json:"telefone,omitempty"`
	DataNascimento *string `json:"data_nascimento,omitempty"`
	// Mesma data em DD/MM/AAAA, pronta para exibição.
	DataNascimentoBR string  `json:"data_nascimento_br,omitempty"`
	Endereco         *string `json:"endereco,omitempty"`
	Observacoes      *string `json:"observacoes,omitempty"`
	Ativo            bool    `json:"ativo"`
	DataCadastro     string  `json:"data_cadastro"`
}

func toPacienteResp(p *repo.Paciente) pacienteResp {
	out := pacienteResp{
		ID:             p.ID.String(),
		Nome:           p.Nome,
		Email:          p.Email,
		Telefone:       p.Telefone,
		DataNascimento: p.DataNascimento,
		Endereco:       p.Endereco,
		Observacoes:    p.Observacoes,
		Ativo:          p.Ativo,
		DataCadastro:   p.DataCadastro.Format("2006-01-02T15:04:05"),
	}
	if p.DataNascimento != nil {
		out.DataNascimentoBR = formatDateBR(*p.DataNascimento)
	}
	return out
}

func (h *Handler) ListPacientes(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	search := r.URL.Query().Get("search")
	incluirInativos := r.URL.Query().Get("inativos") == "1"
	list, err := repo.PacientesByPsicologo(r.Context(), h.DB, psicologoID, search, !incluirInativos)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	out := make([]pacienteResp, len(list))
	for i := range list {
		out[i] = toPacienteResp(&list[i])
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"pacientes": out, "total": len(out)})
}

// SelectPacientes serve a lista enxuta para dropdowns (/api/pacientes),
// com cache curto invalidado em toda escrita de paciente.
func (h *Handler) SelectPacientes(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	key := "pacientes:" + psicologoID.String()
	if h.Cache != nil {
		if cached := h.Cache.Get(key); cached != nil {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(cached)
			return
		}
	}
	list, err := repo.PacientesByPsicologo(r.Context(), h.DB, psicologoID, "", true)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	type item struct {
		ID       string  `json:"id"`
		Nome     string  `json:"nome"`
		Email    *string `json:"email,omitempty"`
		Telefone *string `json:"telefone,omitempty"`
	}
	out := make([]item, len(list))
	for i := range list {
		out[i] = item{ID: list[i].ID.String(), Nome: list[i].Nome, Email: list[i].Email, Telefone: list[i].Telefone}
	}
	body, err := json.Marshal(out)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if h.Cache != nil {
		h.Cache.Set(key, body)
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func (h *Handler) invalidatePacientes(psicologoID uuid.UUID) {
	if h.Cache != nil {
		h.Cache.Delete("pacientes:" + psicologoID.String())
	}
}

func (h *Handler) CreatePaciente(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	var req pacienteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	if req.Nome == "" {
		fail(w, http.StatusBadRequest, "nome é obrigatório")
		return
	}
	if req.Email != "" {
		if err := ValidateEmail(req.Email); err != nil {
			fail(w, http.StatusBadRequest, "email inválido")
			return
		}
	}
	var nascimento *string
	if req.DataNascimento != "" {
		if _, err := ParseData(req.DataNascimento); err != nil {
			fail(w, http.StatusBadRequest, "data de nascimento inválida")
			return
		}
		nascimento = &req.DataNascimento
	}
	p := repo.Paciente{
		Nome:           req.Nome,
		Email:          strPtrOrNil(req.Email),
		Telefone:       strPtrOrNil(req.Telefone),
		DataNascimento: nascimento,
		Endereco:       strPtrOrNil(req.Endereco),
		Observacoes:    strPtrOrNil(req.Observacoes),
		PsicologoID:    psicologoID,
	}
	id, err := repo.CreatePaciente(r.Context(), h.DB, &p)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.invalidatePacientes(psicologoID)
	ok(w, "Paciente cadastrado com sucesso!", map[string]interface{}{"id": id.String()})
}

// GetPaciente devolve o detalhe do paciente com suas sessões e evoluções
// (linhas do tempo independentes, ambas mais recentes primeiro).
func (h *Handler) GetPaciente(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		fail(w, http.StatusBadRequest, "identificador inválido")
		return
	}
	p, err := repo.PacienteByIDAndPsicologo(r.Context(), h.DB, id, psicologoID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	sessoes, err := repo.ListSessoesByPaciente(r.Context(), h.DB, id, psicologoID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	evolucoes, err := repo.EvolucoesByPsicologo(r.Context(), h.DB, psicologoID, &id)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	sessoesOut := make([]sessaoResp, len(sessoes))
	for i := range sessoes {
		sessoesOut[i] = toSessaoResp(&sessoes[i])
	}
	evolucoesOut := make([]evolucaoResp, len(evolucoes))
	for i := range evolucoes {
		evolucoesOut[i] = toEvolucaoResp(&evolucoes[i])
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"paciente":  toPacienteResp(p),
		"sessoes":   sessoesOut,
		"evolucoes": evolucoesOut,
	})
}

func (h *Handler) UpdatePaciente(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		fail(w, http.StatusBadRequest, "identificador inválido")
		return
	}
	var req pacienteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	if req.Nome == "" {
		fail(w, http.StatusBadRequest, "nome é obrigatório")
		return
	}
	if req.Email != "" {
		if err := ValidateEmail(req.Email); err != nil {
			fail(w, http.StatusBadRequest, "email inválido")
			return
		}
	}
	var nascimento *string
	if req.DataNascimento != "" {
		if _, err := ParseData(req.DataNascimento); err != nil {
			fail(w, http.StatusBadRequest, "data de nascimento inválida")
			return
		}
		nascimento = &req.DataNascimento
	}
	p := repo.Paciente{
		Nome:           req.Nome,
		Email:          strPtrOrNil(req.Email),
		Telefone:       strPtrOrNil(req.Telefone),
		DataNascimento: nascimento,
		Endereco:       strPtrOrNil(req.Endereco),
		Observacoes:    strPtrOrNil(req.Observacoes),
	}
	if err := repo.UpdatePaciente(r.Context(), h.DB, id, psicologoID, &p); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.invalidatePacientes(psicologoID)
	ok(w, "Paciente atualizado com sucesso!", nil)
}

func (h *Handler) AtivarPaciente(w http.ResponseWriter, r *http.Request) {
	h.setPacienteAtivo(w, r, true, "Paciente reativado com sucesso!")
}

func (h *Handler) DesativarPaciente(w http.ResponseWriter, r *http.Request) {
	h.setPacienteAtivo(w, r, false, "Paciente desativado com sucesso!")
}

func (h *Handler) setPacienteAtivo(w http.ResponseWriter, r *http.Request, ativo bool, msg string) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		fail(w, http.StatusBadRequest, "identificador inválido")
		return
	}
	if err := repo.SetPacienteAtivo(r.Context(), h.DB, id, psicologoID, ativo); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.invalidatePacientes(psicologoID)
	ok(w, msg, nil)
}
