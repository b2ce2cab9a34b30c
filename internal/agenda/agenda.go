// Package agenda é o núcleo do ledger de sessões: criação, remarcação,
// transição de status e listagem, sempre com a identidade do psicólogo
// passada explicitamente (nunca lida de estado ambiente).
package agenda

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/meet"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/repo"
)

var (
	// ErrDataPassada: data da sessão anterior ao momento da criação/edição.
	ErrDataPassada = errors.New("data da sessão no passado")
	// ErrConflito: já existe sessão agendada do psicólogo no mesmo timestamp exato.
	ErrConflito = errors.New("conflito de horário")
	// ErrStatusInvalido: status fora de {agendada, realizada, cancelada, faltou}.
	ErrStatusInvalido = errors.New("status inválido")
)

// Entrada reúne os campos mutáveis de uma sessão.
type Entrada struct {
	PacienteID  uuid.UUID
	DataSessao  time.Time
	Duracao     int
	Valor       *float64
	Observacoes *string
}

// Criar agenda uma sessão. Valida posse do paciente, data futura e a ausência
// de outra sessão agendada no exato timestamp. O check de conflito é
// read-then-write; o índice parcial único em (psicologo_id, data_sessao)
// segura a corrida e também vira ErrConflito.
func Criar(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, in Entrada) (uuid.UUID, error) {
	if _, err := repo.PacienteByIDAndPsicologo(ctx, db, in.PacienteID, psicologoID); err != nil {
		return uuid.Nil, err
	}
	if in.DataSessao.Before(time.Now()) {
		return uuid.Nil, ErrDataPassada
	}
	conflito, err := repo.ExisteConflito(ctx, db, psicologoID, in.DataSessao, nil)
	if err != nil {
		return uuid.Nil, err
	}
	if conflito {
		return uuid.Nil, ErrConflito
	}
	link := meet.NewLink()
	id, err := repo.CreateSessao(ctx, db, &repo.Sessao{
		PacienteID:  in.PacienteID,
		PsicologoID: psicologoID,
		DataSessao:  in.DataSessao,
		Duracao:     in.Duracao,
		Valor:       in.Valor,
		Status:      repo.StatusAgendada,
		Observacoes: in.Observacoes,
		LinkMeet:    &link,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return uuid.Nil, ErrConflito
	}
	return id, err
}

// Remarcar aplica as mesmas validações de Criar, com o check de conflito
// excluindo a própria sessão (editar para o próprio horário é permitido).
func Remarcar(ctx context.Context, db *gorm.DB, psicologoID, sessaoID uuid.UUID, in Entrada) error {
	if _, err := repo.SessaoByIDAndPsicologo(ctx, db, sessaoID, psicologoID); err != nil {
		return err
	}
	if in.DataSessao.Before(time.Now()) {
		return ErrDataPassada
	}
	conflito, err := repo.ExisteConflito(ctx, db, psicologoID, in.DataSessao, &sessaoID)
	if err != nil {
		return err
	}
	if conflito {
		return ErrConflito
	}
	if in.Duracao <= 0 {
		in.Duracao = 50
	}
	err = repo.UpdateSessao(ctx, db, sessaoID, psicologoID, in.DataSessao, in.Duracao, in.Valor, in.Observacoes)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflito
	}
	return err
}

// MudarStatus sobrescreve o status incondicionalmente: não há tabela de
// transição e reaplicar o mesmo status é idempotente. Reabrir para agendada
// pode esbarrar no índice parcial se o horário foi reocupado.
func MudarStatus(ctx context.Context, db *gorm.DB, psicologoID, sessaoID uuid.UUID, status string) error {
	if !repo.StatusValido(status) {
		return ErrStatusInvalido
	}
	err := repo.UpdateSessaoStatus(ctx, db, sessaoID, psicologoID, status)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConflito
	}
	return err
}

// Listar devolve as sessões do psicólogo, mais recentes primeiro.
func Listar(ctx context.Context, db *gorm.DB, psicologoID uuid.UUID, f repo.SessaoFiltro) ([]repo.Sessao, error) {
	return repo.ListSessoes(ctx, db, psicologoID, f)
}

// Detalhe retorna a sessão, ou gorm.ErrRecordNotFound quando não existe ou
// pertence a outro psicólogo.
func Detalhe(ctx context.Context, db *gorm.DB, psicologoID, sessaoID uuid.UUID) (*repo.Sessao, error) {
	return repo.SessaoByIDAndPsicologo(ctx, db, sessaoID, psicologoID)
}
