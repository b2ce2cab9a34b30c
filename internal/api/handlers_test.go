package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/auth"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/cache"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/config"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/middleware"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/repo"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/testutil"
)

type testEnv struct {
	h      *Handler
	router http.Handler
	db     *gorm.DB
	cfg    *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.OpenDB(t)
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrar: %v", err)
	}
	cfg := &config.Config{
		SecretKey:         []byte("chave-de-teste-com-32-caracteres!!"),
		TokenTTLHours:     1,
		RequestTimeoutSec: 5,
	}
	h := &Handler{DB: db, Cfg: cfg, Cache: cache.New(time.Minute)}

	r := mux.NewRouter()
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.Logout).Methods(http.MethodGet)

	protected := r.NewRoute().Subrouter()
	protected.Use(middleware.RequireAuthMiddleware(cfg.SecretKey))
	protected.HandleFunc("/api/me", h.Me).Methods(http.MethodGet)
	protected.HandleFunc("/api/dashboard", h.Dashboard).Methods(http.MethodGet)
	protected.HandleFunc("/pacientes", h.ListPacientes).Methods(http.MethodGet)
	protected.HandleFunc("/pacientes/novo", h.CreatePaciente).Methods(http.MethodPost)
	protected.HandleFunc("/api/pacientes", h.SelectPacientes).Methods(http.MethodGet)
	protected.HandleFunc("/pacientes/{id}", h.GetPaciente).Methods(http.MethodGet)
	protected.HandleFunc("/pacientes/{id}/editar", h.UpdatePaciente).Methods(http.MethodPost)
	protected.HandleFunc("/pacientes/{id}/desativar", h.DesativarPaciente).Methods(http.MethodPost)
	protected.HandleFunc("/sessoes", h.ListSessoes).Methods(http.MethodGet)
	protected.HandleFunc("/sessoes/nova", h.CreateSessao).Methods(http.MethodPost)
	protected.HandleFunc("/sessoes/{id}", h.GetSessao).Methods(http.MethodGet)
	protected.HandleFunc("/sessoes/{id}/editar", h.UpdateSessao).Methods(http.MethodPost)
	protected.HandleFunc("/sessoes/{id}/marcar-realizada", h.MarcarRealizada).Methods(http.MethodPost)
	protected.HandleFunc("/evolucoes", h.ListEvolucoes).Methods(http.MethodGet)
	protected.HandleFunc("/evolucoes/nova", h.CreateEvolucao).Methods(http.MethodPost)
	protected.HandleFunc("/configuracoes", h.GetConfiguracao).Methods(http.MethodGet)
	protected.HandleFunc("/configuracoes", h.SaveConfiguracao).Methods(http.MethodPost)
	protected.HandleFunc("/relatorios", h.Relatorios).Methods(http.MethodGet)
	protected.HandleFunc("/api/relatorios/receita-mensal", h.ChartReceitaMensal).Methods(http.MethodGet)

	return &testEnv{h: h, router: r, db: db, cfg: cfg}
}

// registra um psicólogo direto no banco e devolve id + token válido.
func (e *testEnv) novoPsicologoLogado(t *testing.T, email, senha string) (uuid.UUID, string) {
	t.Helper()
	hash, err := auth.HashPassword(senha)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	id, err := repo.CreateUsuario(context.Background(), e.db, "Dra. Ana", email, hash, auth.TipoPsicologo)
	if err != nil {
		t.Fatalf("criar usuário: %v", err)
	}
	token, err := auth.BuildJWT(e.cfg.SecretKey, id.String(), "Dra. Ana", auth.TipoPsicologo, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return id, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

func TestLoginFluxo(t *testing.T) {
	e := newTestEnv(t)
	e.novoPsicologoLogado(t, "ana@x.com", "Secreta123")

	w := e.do(t, http.MethodPost, "/login", "", map[string]string{"email": "ana@x.com", "senha": "Secreta123"})
	if w.Code != http.StatusOK {
		t.Fatalf("login ok: status %d body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["success"] != true || body["token"] == "" {
		t.Fatalf("resposta de login incompleta: %v", body)
	}
	temCookie := false
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName && c.Value != "" && c.HttpOnly {
			temCookie = true
		}
	}
	if !temCookie {
		t.Fatal("login não setou o cookie de sessão HttpOnly")
	}

	w = e.do(t, http.MethodPost, "/login", "", map[string]string{"email": "ana@x.com", "senha": "errada"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("senha errada: status %d", w.Code)
	}
	if body := decodeBody(t, w); body["success"] != false {
		t.Fatalf("envelope de falha: %v", body)
	}
}

func TestLoginContaDesativada(t *testing.T) {
	e := newTestEnv(t)
	id, _ := e.novoPsicologoLogado(t, "ana@x.com", "Secreta123")
	if err := repo.DeactivateUsuario(context.Background(), e.db, id); err != nil {
		t.Fatalf("desativar: %v", err)
	}
	w := e.do(t, http.MethodPost, "/login", "", map[string]string{"email": "ana@x.com", "senha": "Secreta123"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("conta desativada: status %d, esperava 401", w.Code)
	}
	// Mesma mensagem de credencial inválida: não vaza que a conta existe.
	if body := decodeBody(t, w); body["message"] != "email ou senha inválidos" {
		t.Fatalf("mensagem = %v", body["message"])
	}
}

func TestRotasExigemAutenticacao(t *testing.T) {
	e := newTestEnv(t)
	for _, path := range []string{"/pacientes", "/sessoes", "/evolucoes", "/configuracoes", "/relatorios", "/api/me"} {
		w := e.do(t, http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s sem token: status %d, esperava 401", path, w.Code)
		}
	}
}

func TestCriarEListarPacientes(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.novoPsicologoLogado(t, "ana@x.com", "Secreta123")

	w := e.do(t, http.MethodPost, "/pacientes/novo", token, map[string]string{
		"nome":     "Maria Silva",
		"telefone": "+5511999990000",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("criar paciente: status %d body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["success"] != true || body["message"] == "" || body["id"] == "" {
		t.Fatalf("envelope de criação: %v", body)
	}

	// Nome é obrigatório.
	w = e.do(t, http.MethodPost, "/pacientes/novo", token, map[string]string{"telefone": "11 99999-0000"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("paciente sem nome: status %d, esperava 400", w.Code)
	}

	w = e.do(t, http.MethodGet, "/pacientes?search=maria", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("listar: status %d", w.Code)
	}
	list := decodeBody(t, w)
	if total, _ := list["total"].(float64); total != 1 {
		t.Fatalf("total = %v, esperava 1", list["total"])
	}
}

func TestPacienteDeOutroPsicologoDevolve404(t *testing.T) {
	e := newTestEnv(t)
	_, token1 := e.novoPsicologoLogado(t, "a@x.com", "Secreta123")
	_, token2 := e.novoPsicologoLogado(t, "b@x.com", "Secreta123")

	w := e.do(t, http.MethodPost, "/pacientes/novo", token1, map[string]string{"nome": "Maria"})
	id := decodeBody(t, w)["id"].(string)

	w = e.do(t, http.MethodGet, "/pacientes/"+id, token2, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("detalhe alheio: status %d, esperava 404", w.Code)
	}
	w = e.do(t, http.MethodPost, "/pacientes/"+id+"/desativar", token2, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("desativar alheio: status %d, esperava 404", w.Code)
	}
}

func proximoDiaUtil9h() string {
	return time.Now().AddDate(0, 0, 1).Format("2006-01-02") + "T09:00"
}

func TestAgendarSessaoViaHTTP(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.novoPsicologoLogado(t, "ana@x.com", "Secreta123")
	w := e.do(t, http.MethodPost, "/pacientes/novo", token, map[string]string{"nome": "Maria"})
	pacID := decodeBody(t, w)["id"].(string)

	quando := proximoDiaUtil9h()
	w = e.do(t, http.MethodPost, "/sessoes/nova", token, map[string]interface{}{
		"paciente_id": pacID,
		"data_sessao": quando,
		"valor":       150.00,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("agendar: status %d body %s", w.Code, w.Body.String())
	}

	// Mesmo horário exato conflita com 409.
	w = e.do(t, http.MethodPost, "/sessoes/nova", token, map[string]interface{}{
		"paciente_id": pacID,
		"data_sessao": quando,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("conflito: status %d, esperava 409", w.Code)
	}

	// Data no passado é rejeitada com 400.
	w = e.do(t, http.MethodPost, "/sessoes/nova", token, map[string]interface{}{
		"paciente_id": pacID,
		"data_sessao": "2020-01-01T09:00",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("data passada: status %d, esperava 400", w.Code)
	}

	// Data malformada no corpo é erro (diferente do filtro de listagem).
	w = e.do(t, http.MethodPost, "/sessoes/nova", token, map[string]interface{}{
		"paciente_id": pacID,
		"data_sessao": "amanhã de manhã",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("data inválida: status %d, esperava 400", w.Code)
	}
}

func TestFiltroDeDataMalformadoEhIgnorado(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.novoPsicologoLogado(t, "ana@x.com", "Secreta123")
	w := e.do(t, http.MethodPost, "/pacientes/novo", token, map[string]string{"nome": "Maria"})
	pacID := decodeBody(t, w)["id"].(string)
	w = e.do(t, http.MethodPost, "/sessoes/nova", token, map[string]interface{}{
		"paciente_id": pacID,
		"data_sessao": proximoDiaUtil9h(),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("agendar: %d", w.Code)
	}

	// data_inicio ilegível não derruba a listagem nem filtra nada.
	w = e.do(t, http.MethodGet, "/sessoes?data_inicio=ontem&status=agendada", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("listar com filtro quebrado: status %d", w.Code)
	}
	if total, _ := decodeBody(t, w)["total"].(float64); total != 1 {
		t.Fatalf("total = %v, esperava 1", total)
	}
}

func TestMarcarRealizadaEnvelope(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.novoPsicologoLogado(t, "ana@x.com", "Secreta123")
	w := e.do(t, http.MethodPost, "/pacientes/novo", token, map[string]string{"nome": "Maria"})
	pacID := decodeBody(t, w)["id"].(string)
	w = e.do(t, http.MethodPost, "/sessoes/nova", token, map[string]interface{}{
		"paciente_id": pacID,
		"data_sessao": proximoDiaUtil9h(),
	})
	sessaoID := decodeBody(t, w)["id"].(string)

	w = e.do(t, http.MethodPost, fmt.Sprintf("/sessoes/%s/marcar-realizada", sessaoID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("marcar realizada: status %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["success"] != true || body["message"] == "" {
		t.Fatalf("envelope: %v", body)
	}

	w = e.do(t, http.MethodGet, "/sessoes/"+sessaoID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("detalhe: %d", w.Code)
	}
	if decodeBody(t, w)["status"] != "realizada" {
		t.Fatal("status não mudou para realizada")
	}
}

func TestEvolucaoExigeTituloEDescricao(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.novoPsicologoLogado(t, "ana@x.com", "Secreta123")
	w := e.do(t, http.MethodPost, "/pacientes/novo", token, map[string]string{"nome": "Maria"})
	pacID := decodeBody(t, w)["id"].(string)

	w = e.do(t, http.MethodPost, "/evolucoes/nova", token, map[string]string{
		"paciente_id": pacID,
		"titulo":      "Primeira sessão",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("evolução sem descrição: status %d, esperava 400", w.Code)
	}

	w = e.do(t, http.MethodPost, "/evolucoes/nova", token, map[string]string{
		"paciente_id": pacID,
		"titulo":      "Primeira sessão",
		"descricao":   "Paciente apresentou boa adesão.",
		"humor":       "estável",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("criar evolução: status %d body %s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodGet, "/evolucoes?paciente="+pacID, token, nil)
	if total, _ := decodeBody(t, w)["total"].(float64); total != 1 {
		t.Fatalf("total evoluções = %v", total)
	}
}

func TestConfiguracaoDefaultsEUpsert(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.novoPsicologoLogado(t, "ana@x.com", "Secreta123")

	w := e.do(t, http.MethodGet, "/configuracoes", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get config: %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["duracao_padrao"].(float64) != 50 || body["horario_inicio"] != "08:00" {
		t.Fatalf("defaults errados: %v", body)
	}

	w = e.do(t, http.MethodPost, "/configuracoes", token, map[string]interface{}{
		"crp":              "06/12345",
		"duracao_padrao":   60,
		"lembrete_ativado": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("salvar config: %d body %s", w.Code, w.Body.String())
	}

	w = e.do(t, http.MethodGet, "/configuracoes", token, nil)
	body = decodeBody(t, w)
	if body["crp"] != "06/12345" || body["duracao_padrao"].(float64) != 60 || body["lembrete_ativado"] != true {
		t.Fatalf("config após upsert: %v", body)
	}
}

func TestSelectPacientesUsaCache(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.novoPsicologoLogado(t, "ana@x.com", "Secreta123")
	e.do(t, http.MethodPost, "/pacientes/novo", token, map[string]string{"nome": "Maria"})

	w := e.do(t, http.MethodGet, "/api/pacientes", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("select: %d", w.Code)
	}
	primeira := w.Body.String()

	// Segunda leitura vem do cache e é idêntica.
	w = e.do(t, http.MethodGet, "/api/pacientes", token, nil)
	if w.Body.String() != primeira {
		t.Fatal("resposta cacheada divergiu")
	}

	// Escrita invalida: o novo paciente aparece na leitura seguinte.
	e.do(t, http.MethodPost, "/pacientes/novo", token, map[string]string{"nome": "João"})
	w = e.do(t, http.MethodGet, "/api/pacientes", token, nil)
	if w.Body.String() == primeira {
		t.Fatal("cache não foi invalidado após criação")
	}
}

func TestRelatorioGeralViaHTTP(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.novoPsicologoLogado(t, "ana@x.com", "Secreta123")

	w := e.do(t, http.MethodGet, "/relatorios", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("relatórios: %d", w.Code)
	}
	body := decodeBody(t, w)
	if _, ok := body["geral"]; !ok {
		t.Fatalf("resposta sem bloco geral: %v", body)
	}

	w = e.do(t, http.MethodGet, "/api/relatorios/receita-mensal?meses=3", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("chart: %d", w.Code)
	}
	chart := decodeBody(t, w)
	labels, _ := chart["labels"].([]interface{})
	data, _ := chart["data"].([]interface{})
	if len(labels) != 3 || len(data) != 3 {
		t.Fatalf("chart com %d labels e %d pontos, esperava 3", len(labels), len(data))
	}
}
