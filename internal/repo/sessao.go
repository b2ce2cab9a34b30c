package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func SessaoByIDAndPsicologo(ctx context.Context, db *gorm.DB, id, psicologoID uuid.UUID) (*Sessao, error) {
	var s Sessao
	err := db.WithContext(ctx).Where("id = ? AND psicologo_id = ?", id, psicologoID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func CreateSessao(ctx context.Context, db *gorm.DB, s *Sessao) (uuid.UUID, error) {
	s.ID = uuid.New()
	now := time.Now()
	s.DataCriacao = now
	s.DataAtualizacao = now
	if s.Status == "" {
		s.Status = StatusAgendada
	}
	if s.Duracao <= 0 {
		s.Duracao = 50
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return uuid.Nil, err
	}
	return s.ID, nil
}

func UpdateSessao(ctx context.Context, db *gorm.DB, id, psicologoID uuid.UUID, dataSessao time.Time, duracao int, valor *float64, observacoes *string) error {
	result := db.WithContext(ctx).Model(&Sessao{}).
		Where("id = ? AND psicologo_id = ?", id, psicologoID).
		Updates(map[string]interface{}{
			"data_sessao":      dataSessao,
			"duracao":          duracao,
			"valor":            valor,
			"observacoes":      observacoes,
			"data_atualizacao": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateSessaoStatus sobrescreve o status sem tabela de transição: qualquer
// status pode ser aplicado a partir de qualquer estado, inclusive repetido.
func UpdateSessaoStatus(ctx context.Context, db *gorm.DB, id, psicologoID uuid.UUID, status string) error {
	result := db.WithContext(ctx).Model(&Sessao{}).
		Where("id = ? AND psicologo_id = ?", id, psicologoID).
		Updates(map[string]interface{}{
			"status":           status,
			"data_atualizacao": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ExisteConflito verifica se já há sessão agendada do psicólogo no exato
// timestamp (igualdade, não sobreposição de intervalo). excludeID pula a
// própria sessão em edições.
func ExisteConflito(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, dataSessao time.Time, excludeID *uuid.UUID) (bool, error) {
	q := db.WithContext(ctx).Model(&Sessao{}).
		Where("psicologo_id = ? AND data_sessao = ? AND status = ?", psicologoID, dataSessao, StatusAgendada)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// SessaoFiltro restringe a listagem. Campos nil não filtram; datas malformadas
// nunca chegam aqui (o handler as descarta em silêncio).
type SessaoFiltro struct {
	Status     *string
	PacienteID *uuid.UUID
	DataInicio *time.Time
	DataFim    *time.Time
}

func ListSessoes(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, f SessaoFiltro) ([]Sessao, error) {
	q := db.WithContext(ctx).Where("psicologo_id = ?", psicologoID)
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.PacienteID != nil {
		q = q.Where("paciente_id = ?", *f.PacienteID)
	}
	if f.DataInicio != nil {
		q = q.Where("data_sessao >= ?", *f.DataInicio)
	}
	if f.DataFim != nil {
		q = q.Where("data_sessao <= ?", *f.DataFim)
	}
	var list []Sessao
	err := q.Order("data_sessao DESC").Find(&list).Error
	return list, err
}

func ListSessoesByPaciente(ctx context.Context, db *gorm.DB, pacienteID, psicologoID uuid.UUID) ([]Sessao, error) {
	var list []Sessao
	err := db.WithContext(ctx).
		Where("paciente_id = ? AND psicologo_id = ?", pacienteID, psicologoID).
		Order("data_sessao DESC").Find(&list).Error
	return list, err
}

// SessaoComPaciente carrega a sessão com o nome do paciente (listagens e relatórios).
type SessaoComPaciente struct {
	Sessao
	PacienteNome string
}

func ListSessoesComPaciente(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, de, ate time.Time) ([]SessaoComPaciente, error) {
	var list []SessaoComPaciente
	err := db.WithContext(ctx).Table("sessoes").
		Select("sessoes.*, pacientes.nome AS paciente_nome").
		Joins("JOIN pacientes ON pacientes.id = sessoes.paciente_id").
		Where("sessoes.psicologo_id = ? AND sessoes.data_sessao >= ? AND sessoes.data_sessao <= ?", psicologoID, de, ate).
		Order("sessoes.data_sessao DESC").
		Scan(&list).Error
	return list, err
}

// ProximasSessoes lista as sessões agendadas de agora até o horizonte dado.
func ProximasSessoes(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, ate time.Time, limit int) ([]SessaoComPaciente, error) {
	q := db.WithContext(ctx).Table("sessoes").
		Select("sessoes.*, pacientes.nome AS paciente_nome").
		Joins("JOIN pacientes ON pacientes.id = sessoes.paciente_id").
		Where("sessoes.psicologo_id = ? AND sessoes.status = ? AND sessoes.data_sessao >= ? AND sessoes.data_sessao <= ?",
			psicologoID, StatusAgendada, time.Now(), ate).
		Order("sessoes.data_sessao")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var list []SessaoComPaciente
	err := q.Scan(&list).Error
	return list, err
}

func CountSessoesNoPeriodo(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, de, ate time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&Sessao{}).
		Where("psicologo_id = ? AND data_sessao >= ? AND data_sessao <= ?", psicologoID, de, ate).
		Count(&n).Error
	return n, err
}

// LembreteRow reúne o necessário para enviar um lembrete de sessão.
type LembreteRow struct {
	SessaoID     uuid.UUID
	PacienteID   uuid.UUID
	PacienteNome string
	Telefone     string
	DataSessao   time.Time
}

// ListSessoesParaLembrete retorna sessões agendadas do psicólogo dentro da
// janela, com telefone do paciente. Pacientes sem telefone ficam de fora.
func ListSessoesParaLembrete(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, de, ate time.Time) ([]LembreteRow, error) {
	var list []LembreteRow
	err := db.WithContext(ctx).Table("sessoes").
		Select("sessoes.id AS sessao_id, pacientes.id AS paciente_id, pacientes.nome AS paciente_nome, pacientes.telefone AS telefone, sessoes.data_sessao AS data_sessao").
		Joins("JOIN pacientes ON pacientes.id = sessoes.paciente_id").
		Where("sessoes.psicologo_id = ? AND sessoes.status = ? AND sessoes.data_sessao >= ? AND sessoes.data_sessao <= ?",
			psicologoID, StatusAgendada, de, ate).
		Where("pacientes.telefone IS NOT NULL AND TRIM(pacientes.telefone) <> ''").
		Order("sessoes.data_sessao").
		Scan(&list).Error
	return list, err
}
