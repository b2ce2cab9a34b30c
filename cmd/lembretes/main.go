// Disparo único de lembretes de sessão, pensado para rodar via cron. Usa o
// mesmo banco do backend; sem DATABASE_URL cai no arquivo sqlite local.
package main

import (
	"context"
	"log"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/flavioricci-terser/mindcarepro-sistema/internal/config"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/reminder"
	"github.com/flavioricci-terser/mindcarepro-sistema/internal/repo"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	var db *gorm.DB
	var err error
	if cfg.DatabaseURL != "" {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
	}
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("db.DB: %v", err)
	}
	defer func() { _ = sqlDB.Close() }()
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Fatalf("ping: %v", err)
	}
	if cfg.DatabaseURL == "" {
		if err := repo.AutoMigrate(db); err != nil {
			log.Fatalf("migrar sqlite: %v", err)
		}
	}
	// No postgres o schema é aplicado pelo backend; aqui só consumimos.

	sender := reminder.DefaultSender(cfg.TwilioAccountSid, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom)
	if sender == nil {
		log.Printf("[lembrete] Twilio não configurado; sessões elegíveis serão apenas contadas")
	}
	enviados, pulados := reminder.Disparar(ctx, db, sender)
	log.Printf("[lembrete] done: enviados=%d pulados=%d", enviados, pulados)
}
