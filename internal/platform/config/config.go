package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"nursery-care-log/internal/platform/logger"
)

type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StorePostgres StoreKind = "postgres"
	StoreSQLite   StoreKind = "sqlite"
)

// Config agrupa la configuración del servicio y de los clientes.
// Todo sale de variables de entorno; un valor inválido cae al default.
type Config struct {
	Port string

	Store      StoreKind
	DBDSN      string // postgres
	SQLitePath string

	JWTSecret string // vacío = modo dev (X-Debug-User-ID)

	LogLevel  logger.Level
	LogFormat logger.Format
	AppName   string

	// Cliente de la API de acciones.
	ActionsAPIURL   string
	ActionsAPIToken string
	HTTPTimeout     time.Duration

	HistoricWindowSize        int
	AllowConcurrentActivities bool
	DisplayLocation           *time.Location
}

func Default() Config {
	return Config{
		Port:                      "8080",
		Store:                     StoreMemory,
		SQLitePath:                "actions.db",
		LogLevel:                  logger.Info,
		LogFormat:                 logger.FormatText,
		AppName:                   "nursery-care-log",
		HTTPTimeout:               10 * time.Second,
		HistoricWindowSize:        20,
		AllowConcurrentActivities: true,
		DisplayLocation:           time.Local,
	}
}

// Load lee el entorno del proceso.
func Load() Config {
	return LoadFrom(os.Getenv)
}

// LoadFrom permite inyectar el lookup (tests).
func LoadFrom(getenv func(string) string) Config {
	c := Default()
	get := func(k string) string { return strings.TrimSpace(getenv(k)) }

	if v := get("PORT"); v != "" {
		c.Port = v
	}

	switch StoreKind(strings.ToLower(get("STORE"))) {
	case StorePostgres:
		c.Store = StorePostgres
	case StoreSQLite:
		c.Store = StoreSQLite
	}
	c.DBDSN = get("DB_DSN")
	// Compatibilidad: DB_DSN sin STORE explícito => postgres.
	if c.DBDSN != "" && get("STORE") == "" {
		c.Store = StorePostgres
	}
	if v := get("SQLITE_PATH"); v != "" {
		c.SQLitePath = v
	}

	c.JWTSecret = get("JWT_SECRET")

	c.LogLevel = logger.ParseLevel(get("LOG_LEVEL"))
	c.LogFormat = logger.ParseFormat(get("LOG_FORMAT"))
	if v := get("APP_NAME"); v != "" {
		c.AppName = v
	}

	c.ActionsAPIURL = get("ACTIONS_API_URL")
	c.ActionsAPIToken = get("ACTIONS_API_TOKEN")
	if d, err := time.ParseDuration(get("HTTP_TIMEOUT")); err == nil && d > 0 {
		c.HTTPTimeout = d
	}

	if n, err := strconv.Atoi(get("HISTORIC_WINDOW_SIZE")); err == nil && n > 0 && n <= 500 {
		c.HistoricWindowSize = n
	}
	if b, err := strconv.ParseBool(get("ALLOW_CONCURRENT_ACTIVITIES")); err == nil {
		c.AllowConcurrentActivities = b
	}
	if v := get("DISPLAY_TZ"); v != "" {
		if loc, err := time.LoadLocation(v); err == nil {
			c.DisplayLocation = loc
		}
	}
	return c
}

// Logger construye el logger de la aplicación.
func (c Config) Logger() logger.Logger {
	return logger.New(logger.Options{
		Level:  c.LogLevel,
		Format: c.LogFormat,
		App:    c.AppName,
	})
}
