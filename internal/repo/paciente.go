package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Toda consulta de paciente recebe o psicologoID do chamador e o aplica aqui.
// Nenhuma função deste arquivo devolve dados de outro psicólogo.

func PacientesByPsicologo(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, search string, somenteAtivos bool) ([]Paciente, error) {
	q := db.WithContext(ctx).Where("psicologo_id = ?", psicologoID)
	if somenteAtivos {
		q = q.Where("ativo = ?", true)
	}
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(nome) LIKE ? OR LOWER(COALESCE(email, '')) LIKE ?", like, like)
	}
	var list []Paciente
	err := q.Order("nome").Find(&list).Error
	return list, err
}

func PacientesCountByPsicologo(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, somenteAtivos bool) (int64, error) {
	q := db.WithContext(ctx).Model(&Paciente{}).Where("psicologo_id = ?", psicologoID)
	if somenteAtivos {
		q = q.Where("ativo = ?", true)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

func PacienteByIDAndPsicologo(ctx context.Context, db *gorm.DB, id, psicologoID uuid.UUID) (*Paciente, error) {
	var p Paciente
	err := db.WithContext(ctx).Where("id = ? AND psicologo_id = ?", id, psicologoID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func CreatePaciente(ctx context.Context, db *gorm.DB, p *Paciente) (uuid.UUID, error) {
	p.ID = uuid.New()
	p.Ativo = true
	p.DataCadastro = time.Now()
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

func UpdatePaciente(ctx context.Context, db *gorm.DB, id, psicologoID uuid.UUID, p *Paciente) error {
	result := db.WithContext(ctx).Model(&Paciente{}).
		Where("id = ? AND psicologo_id = ?", id, psicologoID).
		Updates(map[string]interface{}{
			"nome":            p.Nome,
			"email":           p.Email,
			"telefone":        p.Telefone,
			"data_nascimento": p.DataNascimento,
			"endereco":        p.Endereco,
			"observacoes":     p.Observacoes,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetPacienteAtivo ativa/desativa o paciente (soft delete; nunca há hard delete).
func SetPacienteAtivo(ctx context.Context, db *gorm.DB, id, psicologoID uuid.UUID, ativo bool) error {
	result := db.WithContext(ctx).Model(&Paciente{}).
		Where("id = ? AND psicologo_id = ?", id, psicologoID).
		Update("ativo", ativo)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
