package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DatabaseURL       string
	SQLitePath        string
	SecretKey         []byte
	CORSOrigins       []string
	RequestTimeoutSec int
	TokenTTLHours     int
	// WhatsApp (Twilio) para lembretes de sessão
	TwilioAccountSid   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
}

// Load lê a configuração do ambiente. Um arquivo .env na raiz é carregado se existir.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env não carregado: %v", err)
	}
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	secret := os.Getenv("SECRET_KEY")
	if len(secret) < 32 {
		// Default inseguro, apenas para desenvolvimento local.
		secret = "mindcarepro-secret-key-dev-32chars!!"
	}
	cors := os.Getenv("CORS_ORIGINS")
	if cors == "" {
		cors = "http://localhost:5173"
	}
	var origins []string
	for _, o := range strings.Split(cors, ",") {
		if t := strings.TrimSpace(o); t != "" {
			origins = append(origins, t)
		}
	}
	return &Config{
		Port:               port,
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SQLitePath:         getEnv("SQLITE_PATH", "mindcarepro.db"),
		SecretKey:          []byte(secret),
		CORSOrigins:        origins,
		RequestTimeoutSec:  getEnvInt("REQUEST_TIMEOUT_SECONDS", 30),
		TokenTTLHours:      getEnvInt("TOKEN_TTL_HOURS", 12),
		TwilioAccountSid:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom: os.Getenv("TWILIO_WHATSAPP_FROM"),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getEnvInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}
