package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/api"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/auth"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/cache"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/config"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/middleware"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/migrate"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/repo"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/seed"
)

func main() {
	cfg := config.Load()

	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}
	var db *gorm.DB
	var err error
	if cfg.DatabaseURL != "" {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
		if err != nil {
			log.Fatalf("conexão postgres: %v", err)
		}
		if err := migrate.Run(context.Background(), db, "migrations"); err != nil {
			log.Fatalf("migrations: %v", err)
		}
	} else {
		// Sem DATABASE_URL o sistema roda sobre um arquivo sqlite local.
		log.Printf("DATABASE_URL vazio, usando sqlite em %s", cfg.SQLitePath)
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
		if err != nil {
			log.Fatalf("abrir sqlite: %v", err)
		}
		if err := repo.AutoMigrate(db); err != nil {
			log.Fatalf("migrar sqlite: %v", err)
		}
	}
	if err := seed.Run(context.Background(), db); err != nil {
		log.Printf("seed (ignorado se já aplicado): %v", err)
	}

	h := &api.Handler{DB: db, Cfg: cfg, Cache: cache.New(30 * time.Second)}

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(r.Context()) != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.Logout).Methods(http.MethodGet)

	protected := r.NewRoute().Subrouter()
	protected.Use(middleware.RequireAuthMiddleware(cfg.SecretKey))

	protected.HandleFunc("/api/me", h.Me).Methods(http.MethodGet)
	protected.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet)
	protected.HandleFunc("/api/dashboard", h.Dashboard).Methods(http.MethodGet)

	protected.HandleFunc("/pacientes", h.ListPacientes).Methods(http.MethodGet)
	protected.HandleFunc("/pacientes/novo", h.CreatePaciente).Methods(http.MethodPost)
	protected.HandleFunc("/api/pacientes", h.SelectPacientes).Methods(http.MethodGet)
	protected.HandleFunc("/pacientes/{id}", h.GetPaciente).Methods(http.MethodGet)
	protected.HandleFunc("/pacientes/{id}/editar", h.GetPaciente).Methods(http.MethodGet)
	protected.HandleFunc("/pacientes/{id}/editar", h.UpdatePaciente).Methods(http.MethodPost)
	protected.HandleFunc("/pacientes/{id}/ativar", h.AtivarPaciente).Methods(http.MethodPost)
	protected.HandleFunc("/pacientes/{id}/desativar", h.DesativarPaciente).Methods(http.MethodPost)

	protected.HandleFunc("/sessoes", h.ListSessoes).Methods(http.MethodGet)
	protected.HandleFunc("/sessoes/nova", h.CreateSessao).Methods(http.MethodPost)
	protected.HandleFunc("/sessoes/{id}", h.GetSessao).Methods(http.MethodGet)
	protected.HandleFunc("/sessoes/{id}/editar", h.GetSessao).Methods(http.MethodGet)
	protected.HandleFunc("/sessoes/{id}/editar", h.UpdateSessao).Methods(http.MethodPost)
	protected.HandleFunc("/sessoes/{id}/marcar-realizada", h.MarcarRealizada).Methods(http.MethodPost)
	protected.HandleFunc("/sessoes/{id}/marcar-faltou", h.MarcarFaltou).Methods(http.MethodPost)
	protected.HandleFunc("/sessoes/{id}/cancelar", h.CancelarSessao).Methods(http.MethodPost)
	protected.HandleFunc("/sessoes/{id}/reagendar", h.ReagendarSessao).Methods(http.MethodPost)
	protected.HandleFunc("/sessoes/{id}/meet-qr", h.MeetQR).Methods(http.MethodGet)

	protected.HandleFunc("/evolucoes", h.ListEvolucoes).Methods(http.MethodGet)
	protected.HandleFunc("/evolucoes/nova", h.CreateEvolucao).Methods(http.MethodPost)
	protected.HandleFunc("/evolucoes/{id}", h.GetEvolucao).Methods(http.MethodGet)
	protected.HandleFunc("/evolucoes/{id}/editar", h.GetEvolucao).Methods(http.MethodGet)
	protected.HandleFunc("/evolucoes/{id}/editar", h.UpdateEvolucao).Methods(http.MethodPost)
	protected.HandleFunc("/evolucoes/{id}/excluir", h.DeleteEvolucao).Methods(http.MethodPost)

	protected.HandleFunc("/configuracoes", h.GetConfiguracao).Methods(http.MethodGet)
	protected.HandleFunc("/configuracoes", h.SaveConfiguracao).Methods(http.MethodPost)
	protected.HandleFunc("/configuracoes/perfil", h.UpdatePerfil).Methods(http.MethodPost)
	protected.HandleFunc("/configuracoes/senha", h.UpdateSenha).Methods(http.MethodPost)

	protected.HandleFunc("/relatorios", h.Relatorios).Methods(http.MethodGet)
	protected.HandleFunc("/relatorios/financeiro", h.RelatorioFinanceiro).Methods(http.MethodGet)
	protected.HandleFunc("/relatorios/financeiro/pdf", h.RelatorioFinanceiroPDF).Methods(http.MethodGet)
	protected.HandleFunc("/api/relatorios/receita-mensal", h.ChartReceitaMensal).Methods(http.MethodGet)
	protected.HandleFunc("/api/relatorios/sessoes-mensal", h.ChartSessoesMensal).Methods(http.MethodGet)
	protected.HandleFunc("/api/relatorios/por-status", h.ChartPorStatus).Methods(http.MethodGet)
	protected.HandleFunc("/api/relatorios/top-pacientes", h.ChartTopPacientes).Methods(http.MethodGet)
	protected.HandleFunc("/api/relatorios/comparecimento", h.ChartComparecimento).Methods(http.MethodGet)

	protected.Handle("/api/lembretes/disparar",
		middleware.RequireTipo(auth.TipoAdmin)(http.HandlerFunc(h.DispararLembretes))).Methods(http.MethodPost)

	chain := middleware.Recover(middleware.RequestID(middleware.Timeout(cfg.RequestTimeoutSec)(middleware.CORS(cfg.CORSOrigins)(r))))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      chain,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("mindcarepro listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("mindcarepro stopped")
}
