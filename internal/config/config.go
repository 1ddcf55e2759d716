package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// SecureCookies marks the session cookie Secure (HTTPS only).
	SecureCookies bool
}

type JWTConfig struct {
	SecretKey   string
	ExpiryHours int
}

type Argon2Config struct {
	Time       int
	Memory     int
	Threads    int
	KeyLength  int
	SaltLength int
}

// DashboardConfig controls the invoice listing and the search box.
type DashboardConfig struct {
	InvoicesPath   string
	LoginPath      string
	HomePath       string
	ItemsPerPage   int
	SearchDebounce time.Duration
	ViewCacheTTL   time.Duration
	AvatarDir      string
}

type Config struct {
	Server    ServerConfig
	JWT       JWTConfig
	Argon2    Argon2Config
	Dashboard DashboardConfig
}

// Load reads .env (when present) and the process environment into viper and
// returns the typed application config. Database and Redis settings stay in
// viper and are read by the database package.
func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("server.secure_cookies", "SECURE_COOKIES")

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("database.ssl_mode", "DATABASE_SSL_MODE")

	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")

	viper.BindEnv("jwt.secret_key", "JWT_SECRET_KEY")
	viper.BindEnv("jwt.expiry_hours", "JWT_EXPIRY_HOURS")
	viper.BindEnv("argon2.time", "ARGON2_TIME")
	viper.BindEnv("argon2.memory", "ARGON2_MEMORY")
	viper.BindEnv("argon2.threads", "ARGON2_THREADS")
	viper.BindEnv("argon2.key_length", "ARGON2_KEY_LENGTH")
	viper.BindEnv("argon2.salt_length", "ARGON2_SALT_LENGTH")

	viper.BindEnv("dashboard.items_per_page", "DASHBOARD_ITEMS_PER_PAGE")
	viper.BindEnv("dashboard.search_debounce", "DASHBOARD_SEARCH_DEBOUNCE")
	viper.BindEnv("dashboard.view_cache_ttl", "DASHBOARD_VIEW_CACHE_TTL")
	viper.BindEnv("dashboard.avatar_dir", "DASHBOARD_AVATAR_DIR")

	SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	return FromViper()
}

// SetDefaults registers every default value. Tests call it directly so that
// FromViper works without a .env file.
func SetDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Second)
	viper.SetDefault("server.idle_timeout", 60*time.Second)
	viper.SetDefault("server.secure_cookies", false)

	viper.SetDefault("jwt.secret_key", "change-me")
	viper.SetDefault("jwt.expiry_hours", 24)

	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)

	viper.SetDefault("dashboard.invoices_path", "/dashboard/invoices")
	viper.SetDefault("dashboard.login_path", "/login")
	viper.SetDefault("dashboard.home_path", "/dashboard")
	viper.SetDefault("dashboard.items_per_page", 6)
	viper.SetDefault("dashboard.search_debounce", 500*time.Millisecond)
	viper.SetDefault("dashboard.view_cache_ttl", 10*time.Minute)
	viper.SetDefault("dashboard.avatar_dir", "./public/customers")
}

func FromViper() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          viper.GetString("server.port"),
			ReadTimeout:   viper.GetDuration("server.read_timeout"),
			WriteTimeout:  viper.GetDuration("server.write_timeout"),
			IdleTimeout:   viper.GetDuration("server.idle_timeout"),
			SecureCookies: viper.GetBool("server.secure_cookies"),
		},
		JWT: JWTConfig{
			SecretKey:   viper.GetString("jwt.secret_key"),
			ExpiryHours: viper.GetInt("jwt.expiry_hours"),
		},
		Argon2: Argon2Config{
			Time:       viper.GetInt("argon2.time"),
			Memory:     viper.GetInt("argon2.memory"),
			Threads:    viper.GetInt("argon2.threads"),
			KeyLength:  viper.GetInt("argon2.key_length"),
			SaltLength: viper.GetInt("argon2.salt_length"),
		},
		Dashboard: DashboardConfig{
			InvoicesPath:   viper.GetString("dashboard.invoices_path"),
			LoginPath:      viper.GetString("dashboard.login_path"),
			HomePath:       viper.GetString("dashboard.home_path"),
			ItemsPerPage:   viper.GetInt("dashboard.items_per_page"),
			SearchDebounce: viper.GetDuration("dashboard.search_debounce"),
			ViewCacheTTL:   viper.GetDuration("dashboard.view_cache_ttl"),
			AvatarDir:      viper.GetString("dashboard.avatar_dir"),
		},
	}
}

// ClientConfig is what dashctl needs. It is read straight from the
// environment since the CLI runs outside the server's working directory.
type ClientConfig struct {
	BaseURL        string
	Token          string
	SearchDebounce time.Duration
	RequestTimeout time.Duration
}

func LoadClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        getEnv("DASHCTL_BASE_URL", "http://localhost:8080"),
		Token:          getEnv("DASHCTL_TOKEN", ""),
		SearchDebounce: getEnvAsDuration("DASHCTL_SEARCH_DEBOUNCE", 500*time.Millisecond),
		RequestTimeout: time.Duration(getEnvAsInt("DASHCTL_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
