package api

import (
	"encoding/json"
	"net/http"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/auth"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/repo"
)

type configuracaoRequest struct {
	CRP                  string   `json:"crp"`
	Especialidade        string   `json:"especialidade"`
	Bio                  string   `json:"bio"`
	DuracaoPadrao        int      `json:"duracao_padrao"`
	ValorPadrao          *float64 `json:"valor_padrao"`
	HorarioInicio        string   `json:"horario_inicio"`
	HorarioFim           string   `json:"horario_fim"`
	DiasAtendimento      string   `json:"dias_atendimento"`
	LembreteAtivado      bool     `json:"lembrete_ativado"`
	AntecedenciaLembrete int      `json:"antecedencia_lembrete"`
}

type configuracaoResp struct {
	CRP                  *string  `json:"crp,omitempty"`
	Especialidade        *string  `json:"especialidade,omitempty"`
	Bio                  *string  `json:"bio,omitempty"`
	DuracaoPadrao        int      `json:"duracao_padrao"`
	ValorPadrao          *float64 `json:"valor_padrao,omitempty"`
	HorarioInicio        string   `json:"horario_inicio"`
	HorarioFim           string   `json:"horario_fim"`
	DiasAtendimento      string   `json:"dias_atendimento"`
	LembreteAtivado      bool     `json:"lembrete_ativado"`
	AntecedenciaLembrete int      `json:"antecedencia_lembrete"`
}

func (h *Handler) GetConfiguracao(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	c, err := repo.ConfiguracaoByPsicologo(r.Context(), h.DB, psicologoID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, configuracaoResp{
		CRP:                  c.CRP,
		Especialidade:        c.Especialidade,
		Bio:                  c.Bio,
		DuracaoPadrao:        c.DuracaoPadrao,
		ValorPadrao:          c.ValorPadrao,
		HorarioInicio:        c.HorarioInicio,
		HorarioFim:           c.HorarioFim,
		DiasAtendimento:      c.DiasAtendimento,
		LembreteAtivado:      c.LembreteAtivado,
		AntecedenciaLembrete: c.AntecedenciaLembrete,
	})
}

func (h *Handler) SaveConfiguracao(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	var req configuracaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	if req.DuracaoPadrao <= 0 {
		req.DuracaoPadrao = 50
	}
	if req.HorarioInicio == "" {
		req.HorarioInicio = "08:00"
	}
	if req.HorarioFim == "" {
		req.HorarioFim = "18:00"
	}
	if req.AntecedenciaLembrete <= 0 {
		req.AntecedenciaLembrete = 24
	}
	err := repo.UpsertConfiguracao(r.Context(), h.DB, &repo.Configuracao{
		PsicologoID:          psicologoID,
		CRP:                  strPtrOrNil(req.CRP),
		Especialidade:        strPtrOrNil(req.Especialidade),
		Bio:                  strPtrOrNil(req.Bio),
		DuracaoPadrao:        req.DuracaoPadrao,
		ValorPadrao:          req.ValorPadrao,
		HorarioInicio:        req.HorarioInicio,
		HorarioFim:           req.HorarioFim,
		DiasAtendimento:      req.DiasAtendimento,
		LembreteAtivado:      req.LembreteAtivado,
		AntecedenciaLembrete: req.AntecedenciaLembrete,
	})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, "Configurações salvas com sucesso!", nil)
}

func (h *Handler) UpdatePerfil(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	var req struct {
		Nome  string `json:"nome"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	if req.Nome == "" {
		fail(w, http.StatusBadRequest, "nome é obrigatório")
		return
	}
	if err := ValidateEmail(req.Email); err != nil {
		fail(w, http.StatusBadRequest, "e-mail inválido")
		return
	}
	if err := repo.UpdateUsuarioPerfil(r.Context(), h.DB, psicologoID, req.Nome, req.Email); err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, "Perfil atualizado com sucesso!", nil)
}

// UpdateSenha exige a senha atual antes de trocar.
func (h *Handler) UpdateSenha(w http.ResponseWriter, r *http.Request) {
	psicologoID := auth.PsicologoIDFrom(r.Context())
	var req struct {
		SenhaAtual string `json:"senha_atual"`
		NovaSenha  string `json:"nova_senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "corpo inválido")
		return
	}
	if len(req.NovaSenha) < 6 {
		fail(w, http.StatusBadRequest, "a nova senha deve ter pelo menos 6 caracteres")
		return
	}
	u, err := repo.UsuarioByID(r.Context(), h.DB, psicologoID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if !auth.CheckPassword(u.SenhaHash, req.SenhaAtual) {
		fail(w, http.StatusBadRequest, "senha atual incorreta")
		return
	}
	hash, err := auth.HashPassword(req.NovaSenha)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	if err := repo.UpdateUsuarioSenha(r.Context(), h.DB, psicologoID, hash); err != nil {
		h.respondErr(w, r, err)
		return
	}
	ok(w, "Senha alterada com sucesso!", nil)
}
