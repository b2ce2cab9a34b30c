package repo

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status de sessão. O conjunto segue o schema final: "faltou" marca não comparecimento.
const (
	StatusAgendada  = "agendada"
	StatusRealizada = "realizada"
	StatusCancelada = "cancelada"
	StatusFaltou    = "faltou"
)

// StatusValido reporta se s é um dos quatro status conhecidos.
func StatusValido(s string) bool {
	switch s {
	case StatusAgendada, StatusRealizada, StatusCancelada, StatusFaltou:
		return true
	}
	return false
}

type Usuario struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid"`
	Nome        string    `gorm:"size:100;not null"`
	Email       string    `gorm:"size:120;uniqueIndex;not null"`
	SenhaHash   string    `gorm:"size:255;not null"`
	Tipo        string    `gorm:"size:20;not null;default:psicologo"`
	Ativo       bool      `gorm:"default:true"`
	DataCriacao time.Time `gorm:"column:data_criacao"`
}

func (Usuario) TableName() string { return "usuarios" }

type Paciente struct {
	ID             uuid.UUID `gorm:"primaryKey;type:uuid"`
	Nome           string    `gorm:"size:100;not null"`
	Email          *string   `gorm:"size:120"`
	Telefone       *string   `gorm:"size:20"`
	DataNascimento *string   `gorm:"column:data_nascimento;type:date"`
	Endereco       *string
	Observacoes    *string
	Ativo          bool      `gorm:"default:true"`
	DataCadastro   time.Time `gorm:"column:data_cadastro"`
	PsicologoID    uuid.UUID `gorm:"column:psicologo_id;type:uuid;not null;index"`
}

func (Paciente) TableName() string { return "pacientes" }

type Sessao struct {
	ID              uuid.UUID `gorm:"primaryKey;type:uuid"`
	PacienteID      uuid.UUID `gorm:"column:paciente_id;type:uuid;not null;index"`
	PsicologoID     uuid.UUID `gorm:"column:psicologo_id;type:uuid;not null;index"`
	DataSessao      time.Time `gorm:"column:data_sessao;not null"`
	Duracao         int       `gorm:"default:50"`
	Valor           *float64  `gorm:"type:decimal(10,2)"`
	Status          string    `gorm:"size:20;not null;default:agendada"`
	Observacoes     *string
	LinkMeet        *string   `gorm:"column:link_meet;size:120"`
	DataCriacao     time.Time `gorm:"column:data_criacao"`
	DataAtualizacao time.Time `gorm:"column:data_atualizacao"`
}

func (Sessao) TableName() string { return "sessoes" }

type Evolucao struct {
	ID                  uuid.UUID `gorm:"primaryKey;type:uuid"`
	PacienteID          uuid.UUID `gorm:"column:paciente_id;type:uuid;not null;index"`
	DataEvolucao        time.Time `gorm:"column:data_evolucao"`
	Titulo              string    `gorm:"size:200;not null"`
	Descricao           string    `gorm:"not null"`
	Tipo                string    `gorm:"size:50;default:evolucao"`
	Humor               *string   `gorm:"size:50"`
	Medicamentos        *string
	ObservacoesPrivadas *string `gorm:"column:observacoes_privadas"`
}

func (Evolucao) TableName() string { return "evolucoes" }

// Configuracao é 1:1 com o psicólogo; criada de forma preguiçosa no primeiro save.
type Configuracao struct {
	PsicologoID           uuid.UUID `gorm:"primaryKey;column:psicologo_id;type:uuid"`
	CRP                   *string   `gorm:"column:crp;size:20"`
	Especialidade         *string   `gorm:"size:100"`
	Bio                   *string
	DuracaoPadrao         int      `gorm:"column:duracao_padrao;default:50"`
	ValorPadrao           *float64 `gorm:"column:valor_padrao;type:decimal(10,2)"`
	HorarioInicio         string   `gorm:"column:horario_inicio;size:5;default:08:00"`
	HorarioFim            string   `gorm:"column:horario_fim;size:5;default:18:00"`
	DiasAtendimento       string   `gorm:"column:dias_atendimento;size:60"`
	LembreteAtivado       bool     `gorm:"column:lembrete_ativado;default:false"`
	AntecedenciaLembrete  int      `gorm:"column:antecedencia_lembrete;default:24"`
}

func (Configuracao) TableName() string { return "configuracoes" }

// AutoMigrate cria o schema no fallback sqlite (sem DATABASE_URL) e nos testes.
// No postgres o schema vem de migrations/*.sql; aqui o índice parcial de conflito
// de agenda é criado à mão porque tag de struct não expressa índice parcial.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Usuario{}, &Paciente{}, &Sessao{}, &Evolucao{}, &Configuracao{}); err != nil {
		return err
	}
	return db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uq_sessoes_agendada_slot
		ON sessoes (psicologo_id, data_sessao) WHERE status = 'agendada'
	`).Error
}
