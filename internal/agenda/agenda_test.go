package agenda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/repo"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/testutil"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.OpenDB(t)
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrar: %v", err)
	}
	return db
}

func novoPsicologo(t *testing.T, db *gorm.DB, email string) uuid.UUID {
	t.Helper()
	id, err := repo.CreateUsuario(context.Background(), db, "Dra. Teste", email, "hash", "psicologo")
	if err != nil {
		t.Fatalf("criar usuário: %v", err)
	}
	return id
}

func novoPaciente(t *testing.T, db *gorm.DB, psicologoID uuid.UUID, nome string) uuid.UUID {
	t.Helper()
	id, err := repo.CreatePaciente(context.Background(), db, &repo.Paciente{Nome: nome, PsicologoID: psicologoID})
	if err != nil {
		t.Fatalf("criar paciente: %v", err)
	}
	return id
}

func amanha9h() time.Time {
	n := time.Now().AddDate(0, 0, 1)
	return time.Date(n.Year(), n.Month(), n.Day(), 9, 0, 0, 0, n.Location())
}

func TestCriarRejeitaDataPassada(t *testing.T) {
	db := setupDB(t)
	psi := novoPsicologo(t, db, "a@x.com")
	pac := novoPaciente(t, db, psi, "Maria")

	_, err := Criar(context.Background(), db, psi, Entrada{
		PacienteID: pac,
		DataSessao: time.Now().Add(-time.Hour),
	})
	if !errors.Is(err, ErrDataPassada) {
		t.Fatalf("esperava ErrDataPassada, veio %v", err)
	}
}

func TestCriarRejeitaPacienteDeOutroPsicologo(t *testing.T) {
	db := setupDB(t)
	psi1 := novoPsicologo(t, db, "a@x.com")
	psi2 := novoPsicologo(t, db, "b@x.com")
	pacDe1 := novoPaciente(t, db, psi1, "Maria")

	_, err := Criar(context.Background(), db, psi2, Entrada{
		PacienteID: pacDe1,
		DataSessao: amanha9h(),
	})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("esperava ErrRecordNotFound, veio %v", err)
	}
}

func TestCriarConflitoMesmoHorarioExato(t *testing.T) {
	db := setupDB(t)
	psi := novoPsicologo(t, db, "a@x.com")
	pac := novoPaciente(t, db, psi, "Maria")
	quando := amanha9h()

	if _, err := Criar(context.Background(), db, psi, Entrada{PacienteID: pac, DataSessao: quando}); err != nil {
		t.Fatalf("primeira criação: %v", err)
	}
	_, err := Criar(context.Background(), db, psi, Entrada{PacienteID: pac, DataSessao: quando})
	if !errors.Is(err, ErrConflito) {
		t.Fatalf("esperava ErrConflito, veio %v", err)
	}

	// Um minuto depois não conflita: a checagem é de igualdade exata.
	if _, err := Criar(context.Background(), db, psi, Entrada{PacienteID: pac, DataSessao: quando.Add(time.Minute)}); err != nil {
		t.Fatalf("criação em T+1min: %v", err)
	}
}

func TestCriarMesmoHorarioPsicologosDiferentes(t *testing.T) {
	db := setupDB(t)
	psi1 := novoPsicologo(t, db, "a@x.com")
	psi2 := novoPsicologo(t, db, "b@x.com")
	pac1 := novoPaciente(t, db, psi1, "Maria")
	pac2 := novoPaciente(t, db, psi2, "João")
	quando := amanha9h()

	if _, err := Criar(context.Background(), db, psi1, Entrada{PacienteID: pac1, DataSessao: quando}); err != nil {
		t.Fatalf("psicólogo 1: %v", err)
	}
	if _, err := Criar(context.Background(), db, psi2, Entrada{PacienteID: pac2, DataSessao: quando}); err != nil {
		t.Fatalf("psicólogo 2 no mesmo horário: %v", err)
	}
}

func TestRemarcarExcluiAPropriaSessaoDoConflito(t *testing.T) {
	db := setupDB(t)
	psi := novoPsicologo(t, db, "a@x.com")
	pac := novoPaciente(t, db, psi, "Maria")
	quando := amanha9h()

	id, err := Criar(context.Background(), db, psi, Entrada{PacienteID: pac, DataSessao: quando})
	if err != nil {
		t.Fatalf("criar: %v", err)
	}

	// Editar mantendo o próprio horário não conflita consigo mesma.
	if err := Remarcar(context.Background(), db, psi, id, Entrada{DataSessao: quando, Duracao: 60}); err != nil {
		t.Fatalf("remarcar para o próprio horário: %v", err)
	}

	outra, err := Criar(context.Background(), db, psi, Entrada{PacienteID: pac, DataSessao: quando.Add(time.Hour)})
	if err != nil {
		t.Fatalf("segunda sessão: %v", err)
	}
	err = Remarcar(context.Background(), db, psi, outra, Entrada{DataSessao: quando})
	if !errors.Is(err, ErrConflito) {
		t.Fatalf("esperava ErrConflito ao remarcar para horário ocupado, veio %v", err)
	}
}

func TestRemarcarSessaoDeOutroPsicologo(t *testing.T) {
	db := setupDB(t)
	psi1 := novoPsicologo(t, db, "a@x.com")
	psi2 := novoPsicologo(t, db, "b@x.com")
	pac := novoPaciente(t, db, psi1, "Maria")

	id, err := Criar(context.Background(), db, psi1, Entrada{PacienteID: pac, DataSessao: amanha9h()})
	if err != nil {
		t.Fatalf("criar: %v", err)
	}
	err = Remarcar(context.Background(), db, psi2, id, Entrada{DataSessao: amanha9h().Add(time.Hour)})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("esperava ErrRecordNotFound, veio %v", err)
	}
}

func TestMudarStatusIdempotente(t *testing.T) {
	db := setupDB(t)
	psi := novoPsicologo(t, db, "a@x.com")
	pac := novoPaciente(t, db, psi, "Maria")

	id, err := Criar(context.Background(), db, psi, Entrada{PacienteID: pac, DataSessao: amanha9h()})
	if err != nil {
		t.Fatalf("criar: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := MudarStatus(context.Background(), db, psi, id, repo.StatusRealizada); err != nil {
			t.Fatalf("mudar status (aplicação %d): %v", i+1, err)
		}
	}
	s, err := Detalhe(context.Background(), db, psi, id)
	if err != nil {
		t.Fatalf("detalhe: %v", err)
	}
	if s.Status != repo.StatusRealizada {
		t.Fatalf("status = %q, esperava realizada", s.Status)
	}
}

func TestMudarStatusInvalido(t *testing.T) {
	db := setupDB(t)
	psi := novoPsicologo(t, db, "a@x.com")
	err := MudarStatus(context.Background(), db, psi, uuid.New(), "pendente")
	if !errors.Is(err, ErrStatusInvalido) {
		t.Fatalf("esperava ErrStatusInvalido, veio %v", err)
	}
}

func TestMudarStatusSessaoInexistente(t *testing.T) {
	db := setupDB(t)
	psi := novoPsicologo(t, db, "a@x.com")
	err := MudarStatus(context.Background(), db, psi, uuid.New(), repo.StatusCancelada)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("esperava ErrRecordNotFound, veio %v", err)
	}
}

func TestCriarGeraLinkMeet(t *testing.T) {
	db := setupDB(t)
	psi := novoPsicologo(t, db, "a@x.com")
	pac := novoPaciente(t, db, psi, "Maria")

	id, err := Criar(context.Background(), db, psi, Entrada{PacienteID: pac, DataSessao: amanha9h()})
	if err != nil {
		t.Fatalf("criar: %v", err)
	}
	s, err := Detalhe(context.Background(), db, psi, id)
	if err != nil {
		t.Fatalf("detalhe: %v", err)
	}
	if s.LinkMeet == nil || *s.LinkMeet == "" {
		t.Fatal("sessão criada sem link de videochamada")
	}
	if s.Status != repo.StatusAgendada {
		t.Fatalf("status inicial = %q, esperava agendada", s.Status)
	}
	if s.Duracao != 50 {
		t.Fatalf("duração default = %d, esperava 50", s.Duracao)
	}
}

func TestListarFiltros(t *testing.T) {
	db := setupDB(t)
	psi := novoPsicologo(t, db, "a@x.com")
	pac := novoPaciente(t, db, psi, "Maria")
	outro := novoPaciente(t, db, psi, "João")

	base := amanha9h()
	ids := make([]uuid.UUID, 0, 3)
	for i, p := range []uuid.UUID{pac, pac, outro} {
		id, err := Criar(context.Background(), db, psi, Entrada{PacienteID: p, DataSessao: base.Add(time.Duration(i) * time.Hour)})
		if err != nil {
			t.Fatalf("criar %d: %v", i, err)
		}
		ids = append(ids, id)
	}
	if err := MudarStatus(context.Background(), db, psi, ids[0], repo.StatusRealizada); err != nil {
		t.Fatalf("mudar status: %v", err)
	}

	status := repo.StatusAgendada
	list, err := Listar(context.Background(), db, psi, repo.SessaoFiltro{Status: &status})
	if err != nil {
		t.Fatalf("listar por status: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("agendadas = %d, esperava 2", len(list))
	}

	list, err = Listar(context.Background(), db, psi, repo.SessaoFiltro{PacienteID: &outro})
	if err != nil {
		t.Fatalf("listar por paciente: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("sessões do João = %d, esperava 1", len(list))
	}

	// Ordenação: mais recente primeiro.
	list, err = Listar(context.Background(), db, psi, repo.SessaoFiltro{})
	if err != nil {
		t.Fatalf("listar: %v", err)
	}
	for i := 1; i < len(list); i++ {
		if list[i].DataSessao.After(list[i-1].DataSessao) {
			t.Fatal("listagem fora de ordem decrescente")
		}
	}
}
