package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConfiguracaoByPsicologo retorna a configuração do psicólogo, ou defaults
// quando nunca houve save (a linha só nasce no primeiro upsert).
func ConfiguracaoByPsicologo(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID) (*Configuracao, error) {
	var c Configuracao
	err := db.WithContext(ctx).Where("psicologo_id = ?", psicologoID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Configuracao{
			PsicologoID:          psicologoID,
			DuracaoPadrao:        50,
			HorarioInicio:        "08:00",
			HorarioFim:           "18:00",
			AntecedenciaLembrete: 24,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertConfiguracao cria ou atualiza em uma chamada. O Assign recebe um map
// com todas as colunas: com struct o gorm pula campos zerados e desligar o
// lembrete (ou limpar crp/bio) nunca chegaria ao banco.
func UpsertConfiguracao(ctx context.Context, db *gorm.DB, c *Configuracao) error {
	return db.WithContext(ctx).
		Where("psicologo_id = ?", c.PsicologoID).
		Assign(map[string]interface{}{
			"crp":                   c.CRP,
			"especialidade":         c.Especialidade,
			"bio":                   c.Bio,
			"duracao_padrao":        c.DuracaoPadrao,
			"valor_padrao":          c.ValorPadrao,
			"horario_inicio":        c.HorarioInicio,
			"horario_fim":           c.HorarioFim,
			"dias_atendimento":      c.DiasAtendimento,
			"lembrete_ativado":      c.LembreteAtivado,
			"antecedencia_lembrete": c.AntecedenciaLembrete,
		}).
		FirstOrCreate(c).Error
}

// ListConfiguracoesComLembrete retorna as configurações com lembrete habilitado.
func ListConfiguracoesComLembrete(ctx context.Context, db *gorm.DB) ([]Configuracao, error) {
	var list []Configuracao
	err := db.WithContext(ctx).Where("lembrete_ativado = ?", true).Find(&list).Error
	return list, err
}
