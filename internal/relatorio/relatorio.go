// Package relatorio deriva estatísticas de receita, comparecimento e ranking
// a partir do ledger de sessões e do cadastro de pacientes. Só leitura: cada
// chamada refaz a varredura do período, nada é cacheado.
package relatorio

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/repo"
)

// Geral agrega o período para o painel de relatórios.
type Geral struct {
	TotalPacientes     int64   `json:"total_pacientes"`
	PacientesAtivos    int64   `json:"pacientes_ativos"`
	TotalSessoes       int     `json:"total_sessoes"`
	SessoesAgendadas   int     `json:"sessoes_agendadas"`
	SessoesRealizadas  int     `json:"sessoes_realizadas"`
	SessoesCanceladas  int     `json:"sessoes_canceladas"`
	SessoesFaltou      int     `json:"sessoes_faltou"`
	ReceitaTotal       float64 `json:"receita_total"`
	ReceitaPendente    float64 `json:"receita_pendente"`
	ValorMedioSessao   float64 `json:"valor_medio_sessao"`
	TaxaComparecimento float64 `json:"taxa_comparecimento"`
}

// Estatisticas computa o agregado geral do período [de, ate].
func Estatisticas(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, de, ate time.Time) (*Geral, error) {
	total, err := repo.PacientesCountByPsicologo(ctx, db, psicologoID, false)
	if err != nil {
		return nil, err
	}
	ativos, err := repo.PacientesCountByPsicologo(ctx, db, psicologoID, true)
	if err != nil {
		return nil, err
	}
	sessoes, err := repo.ListSessoes(ctx, db, psicologoID, repo.SessaoFiltro{DataInicio: &de, DataFim: &ate})
	if err != nil {
		return nil, err
	}
	g := &Geral{TotalPacientes: total, PacientesAtivos: ativos, TotalSessoes: len(sessoes)}
	for _, s := range sessoes {
		switch s.Status {
		case repo.StatusAgendada:
			g.SessoesAgendadas++
			if s.Valor != nil {
				g.ReceitaPendente += *s.Valor
			}
		case repo.StatusRealizada:
			g.SessoesRealizadas++
			if s.Valor != nil {
				g.ReceitaTotal += *s.Valor
			}
		case repo.StatusCancelada:
			g.SessoesCanceladas++
		case repo.StatusFaltou:
			g.SessoesFaltou++
		}
	}
	if g.SessoesRealizadas > 0 {
		g.ValorMedioSessao = g.ReceitaTotal / float64(g.SessoesRealizadas)
	}
	if g.TotalSessoes > 0 {
		g.TaxaComparecimento = float64(g.SessoesRealizadas) / float64(g.TotalSessoes) * 100
	}
	return g, nil
}

// PontoMensal é um ponto de série por mês calendário.
type PontoMensal struct {
	Label string  `json:"label"` // MM/AAAA
	Valor float64 `json:"valor"`
}

// ReceitaMensal devolve a receita realizada dos últimos meses (mês corrente
// incluído), do mais antigo para o mais recente. Meses sem sessão valem zero.
func ReceitaMensal(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, meses int) ([]PontoMensal, error) {
	if meses <= 0 {
		meses = 6
	}
	now := time.Now()
	inicio := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(meses - 1), 0)
	status := repo.StatusRealizada
	sessoes, err := repo.ListSessoes(ctx, db, psicologoID, repo.SessaoFiltro{Status: &status, DataInicio: &inicio})
	if err != nil {
		return nil, err
	}
	porMes := make(map[string]float64)
	for _, s := range sessoes {
		if s.Valor == nil {
			continue
		}
		porMes[s.DataSessao.Format("01/2006")] += *s.Valor
	}
	serie := make([]PontoMensal, 0, meses)
	for i := 0; i < meses; i++ {
		m := inicio.AddDate(0, i, 0)
		label := m.Format("01/2006")
		serie = append(serie, PontoMensal{Label: label, Valor: porMes[label]})
	}
	return serie, nil
}

// SessoesMensal conta sessões (qualquer status) por mês calendário.
func SessoesMensal(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, meses int) ([]PontoMensal, error) {
	if meses <= 0 {
		meses = 6
	}
	now := time.Now()
	inicio := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(meses - 1), 0)
	sessoes, err := repo.ListSessoes(ctx, db, psicologoID, repo.SessaoFiltro{DataInicio: &inicio})
	if err != nil {
		return nil, err
	}
	porMes := make(map[string]float64)
	for _, s := range sessoes {
		porMes[s.DataSessao.Format("01/2006")]++
	}
	serie := make([]PontoMensal, 0, meses)
	for i := 0; i < meses; i++ {
		label := inicio.AddDate(0, i, 0).Format("01/2006")
		serie = append(serie, PontoMensal{Label: label, Valor: porMes[label]})
	}
	return serie, nil
}

// PorStatus conta sessões por status na janela de dias mais recente.
func PorStatus(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, janelaDias int) (map[string]int, error) {
	if janelaDias <= 0 {
		janelaDias = 30
	}
	de := time.Now().AddDate(0, 0, -janelaDias)
	sessoes, err := repo.ListSessoes(ctx, db, psicologoID, repo.SessaoFiltro{DataInicio: &de})
	if err != nil {
		return nil, err
	}
	out := map[string]int{
		repo.StatusAgendada:  0,
		repo.StatusRealizada: 0,
		repo.StatusCancelada: 0,
		repo.StatusFaltou:    0,
	}
	for _, s := range sessoes {
		out[s.Status]++
	}
	return out, nil
}

// PacienteRanking anota o paciente com contagem e receita de sessões realizadas.
type PacienteRanking struct {
	PacienteID uuid.UUID `json:"paciente_id"`
	Nome       string    `json:"nome"`
	Sessoes    int       `json:"sessoes"`
	Receita    float64   `json:"receita"`
}

// TopPacientes ranqueia por número de sessões realizadas (desc) na janela.
func TopPacientes(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, janelaDias, limit int) ([]PacienteRanking, error) {
	if janelaDias <= 0 {
		janelaDias = 90
	}
	if limit <= 0 {
		limit = 5
	}
	de := time.Now().AddDate(0, 0, -janelaDias)
	sessoes, err := repo.ListSessoesComPaciente(ctx, db, psicologoID, de, time.Now())
	if err != nil {
		return nil, err
	}
	porPaciente := make(map[uuid.UUID]*PacienteRanking)
	for _, s := range sessoes {
		if s.Status != repo.StatusRealizada {
			continue
		}
		r, ok := porPaciente[s.PacienteID]
		if !ok {
			r = &PacienteRanking{PacienteID: s.PacienteID, Nome: s.PacienteNome}
			porPaciente[s.PacienteID] = r
		}
		r.Sessoes++
		if s.Valor != nil {
			r.Receita += *s.Valor
		}
	}
	ranking := make([]PacienteRanking, 0, len(porPaciente))
	for _, r := range porPaciente {
		ranking = append(ranking, *r)
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Sessoes != ranking[j].Sessoes {
			return ranking[i].Sessoes > ranking[j].Sessoes
		}
		return ranking[i].Nome < ranking[j].Nome
	})
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking, nil
}

// ComparecimentoMensal devolve a taxa de comparecimento (realizadas/total*100)
// por mês calendário, do mais antigo para o mais recente.
func ComparecimentoMensal(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, meses int) ([]PontoMensal, error) {
	if meses <= 0 {
		meses = 6
	}
	now := time.Now()
	inicio := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(meses - 1), 0)
	sessoes, err := repo.ListSessoes(ctx, db, psicologoID, repo.SessaoFiltro{DataInicio: &inicio})
	if err != nil {
		return nil, err
	}
	type par struct{ total, realizadas int }
	porMes := make(map[string]*par)
	for _, s := range sessoes {
		label := s.DataSessao.Format("01/2006")
		p, ok := porMes[label]
		if !ok {
			p = &par{}
			porMes[label] = p
		}
		p.total++
		if s.Status == repo.StatusRealizada {
			p.realizadas++
		}
	}
	serie := make([]PontoMensal, 0, meses)
	for i := 0; i < meses; i++ {
		label := inicio.AddDate(0, i, 0).Format("01/2006")
		var taxa float64
		if p := porMes[label]; p != nil && p.total > 0 {
			taxa = float64(p.realizadas) / float64(p.total) * 100
		}
		serie = append(serie, PontoMensal{Label: label, Valor: taxa})
	}
	return serie, nil
}
