package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	DBDSN           string
	RedisURL        string
	JWTSecret       string
	PasswordHash    string
	SessionTTL      time.Duration
	AllowOrigins    []string
	Location        *time.Location
	AutoMigrate     bool
	DemandasCache   time.Duration
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
	Notas           NotasConfig
	IA              IAConfig
	Alertas         AlertasConfig
	Log             LogConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// NotasConfig controla o salvamento automático das anotações.
type NotasConfig struct {
	Debounce  time.Duration
	SavedHold time.Duration
}

// IAConfig descreve o provedor de sugestões de texto.
type IAConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Enabled indica se há chave configurada.
func (c IAConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// AlertasConfig controla o aviso periódico de demandas atrasadas.
type AlertasConfig struct {
	Enabled         bool
	Interval        time.Duration
	SlackWebhookURL string
}

// LogConfig define nível e arquivo opcional com rotação.
type LogConfig struct {
	Level      string
	Console    bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	port, err := parseIntEnv("PORT", 8080)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	cfg.PasswordHash = strings.TrimSpace(getEnv("APP_PASSWORD_HASH", ""))
	if cfg.PasswordHash == "" {
		return nil, errors.New("APP_PASSWORD_HASH obrigatório (gere com demandasctl hashpass)")
	}

	if cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", 12*time.Hour); err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(getEnv("ALLOW_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "America/Sao_Paulo"))
	if err != nil {
		return nil, errors.New("TIMEZONE inválido")
	}
	cfg.Location = loc

	cfg.AutoMigrate = parseBoolEnv("AUTO_MIGRATE", false)

	if cfg.DemandasCache, err = parseDurationEnv("DEMANDAS_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 5, Burst: 10}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 20, Burst: 60}

	if cfg.Notas.Debounce, err = parseDurationEnv("NOTE_DEBOUNCE", 1500*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.Notas.SavedHold, err = parseDurationEnv("NOTE_SAVED_HOLD", 2*time.Second); err != nil {
		return nil, err
	}

	cfg.IA = IAConfig{
		APIKey:  strings.TrimSpace(getEnv("OPENAI_API_KEY", "")),
		BaseURL: strings.TrimRight(getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"), "/"),
		Model:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
	}
	if cfg.IA.Timeout, err = parseDurationEnv("OPENAI_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	cfg.Alertas.Enabled = parseBoolEnv("ALERTAS_ENABLED", false)
	cfg.Alertas.SlackWebhookURL = strings.TrimSpace(getEnv("SLACK_WEBHOOK_URL", ""))
	if cfg.Alertas.Interval, err = parseDurationEnv("ALERTAS_INTERVAL", time.Hour); err != nil {
		return nil, err
	}

	cfg.Log = LogConfig{
		Level:   getEnv("LOG_LEVEL", "info"),
		Console: parseBoolEnv("LOG_CONSOLE", true),
		File:    strings.TrimSpace(getEnv("LOG_FILE", "")),
	}
	if cfg.Log.MaxSizeMB, err = parseIntEnv("LOG_MAX_SIZE_MB", 100); err != nil {
		return nil, errors.New("LOG_MAX_SIZE_MB inválido")
	}
	if cfg.Log.MaxBackups, err = parseIntEnv("LOG_MAX_BACKUPS", 3); err != nil {
		return nil, errors.New("LOG_MAX_BACKUPS inválido")
	}
	if cfg.Log.MaxAgeDays, err = parseIntEnv("LOG_MAX_AGE_DAYS", 30); err != nil {
		return nil, errors.New("LOG_MAX_AGE_DAYS inválido")
	}

	return cfg, nil
}

// LoadLog lê apenas as opções de log, usado pelas ferramentas de linha de comando.
func LoadLog() LogConfig {
	_ = godotenv.Load()
	return LogConfig{
		Level:   getEnv("LOG_LEVEL", "info"),
		Console: true,
		File:    strings.TrimSpace(getEnv("LOG_FILE", "")),
	}
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur < 0 {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

func parseIntEnv(key string, def int) (int, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	return strconv.Atoi(val)
}

func parseBoolEnv(key string, def bool) bool {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return b
}
