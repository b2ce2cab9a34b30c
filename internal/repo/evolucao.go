package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Evoluções não têm psicologo_id próprio: o escopo passa pelo paciente dono.

func EvolucoesByPsicologo(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, pacienteID *uuid.UUID) ([]Evolucao, error) {
	q := db.WithContext(ctx).Table("evolucoes").
		Select("evolucoes.*").
		Joins("JOIN pacientes ON pacientes.id = evolucoes.paciente_id").
		Where("pacientes.psicologo_id = ?", psicologoID)
	if pacienteID != nil {
		q = q.Where("evolucoes.paciente_id = ?", *pacienteID)
	}
	var list []Evolucao
	err := q.Order("evolucoes.data_evolucao DESC").Scan(&list).Error
	return list, err
}

func EvolucaoByIDAndPsicologo(ctx context.Context, db *gorm.DB, id, psicologoID uuid.UUID) (*Evolucao, error) {
	var e Evolucao
	err := db.WithContext(ctx).Table("evolucoes").
		Select("evolucoes.*").
		Joins("JOIN pacientes ON pacientes.id = evolucoes.paciente_id").
		Where("evolucoes.id = ? AND pacientes.psicologo_id = ?", id, psicologoID).
		Scan(&e).Error
	if err != nil {
		return nil, err
	}
	if e.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func CreateEvolucao(ctx context.Context, db *gorm.DB, e *Evolucao) (uuid.UUID, error) {
	e.ID = uuid.New()
	if e.DataEvolucao.IsZero() {
		e.DataEvolucao = time.Now()
	}
	if e.Tipo == "" {
		e.Tipo = "evolucao"
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return uuid.Nil, err
	}
	return e.ID, nil
}

func UpdateEvolucao(ctx context.Context, db *gorm.DB, id, psicologoID uuid.UUID, e *Evolucao) error {
	// Confirma a posse antes de alterar; evoluções não carregam psicologo_id.
	if _, err := EvolucaoByIDAndPsicologo(ctx, db, id, psicologoID); err != nil {
		return err
	}
	return db.WithContext(ctx).Model(&Evolucao{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"titulo":               e.Titulo,
			"descricao":            e.Descricao,
			"tipo":                 e.Tipo,
			"humor":                e.Humor,
			"medicamentos":         e.Medicamentos,
			"observacoes_privadas": e.ObservacoesPrivadas,
		}).Error
}

// DeleteEvolucao remove de vez; a revisão final do produto permite exclusão.
func DeleteEvolucao(ctx context.Context, db *gorm.DB, id, psicologoID uuid.UUID) error {
	if _, err := EvolucaoByIDAndPsicologo(ctx, db, id, psicologoID); err != nil {
		return err
	}
	return db.WithContext(ctx).Where("id = ?", id).Delete(&Evolucao{}).Error
}
