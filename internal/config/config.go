package config

import (
	"bytes"
	"fmt"
	"net"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2333
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "luminpress"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
	defaultRedisHost  = "localhost"
	defaultRedisPort  = 6379

	defaultAIEndpoint = "https://api.groq.com/openai/v1"
	defaultAIModel    = "llama-3.3-70b-versatile"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	// APIToken guards admin routes. Empty disables all admin endpoints.
	APIToken    string            `yaml:"api_token"`
	AI          AIConfig          `yaml:"ai"`
	Translation TranslationConfig `yaml:"translation"`
}

type DatabaseRuntimeConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Charset  string `yaml:"charset"`
	Loc      string `yaml:"loc"`
}

type RedisRuntimeConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AIConfig points at an OpenAI-compatible chat-completion provider (Groq by default).
type AIConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

// TranslationConfig exposes the pipeline's timing knobs. The defaults mirror
// the platform's historical behavior; there are no per-article overrides.
type TranslationConfig struct {
	BatchSize           int `yaml:"batch_size"`
	BatchDelayMS        int `yaml:"batch_delay_ms"`
	StalenessWindowHrs  int `yaml:"staleness_window_hours"`
	RecentWindowMinutes int `yaml:"recent_window_minutes"`
	RetryDelayMinutes   int `yaml:"retry_delay_minutes"`
	JobRetentionDays    int `yaml:"job_retention_days"`
}

func (t TranslationConfig) BatchDelay() time.Duration {
	return time.Duration(t.BatchDelayMS) * time.Millisecond
}

func (t TranslationConfig) StalenessWindow() time.Duration {
	return time.Duration(t.StalenessWindowHrs) * time.Hour
}

func (t TranslationConfig) RecentWindow() time.Duration {
	return time.Duration(t.RecentWindowMinutes) * time.Minute
}

func (t TranslationConfig) RetryDelay() time.Duration {
	return time.Duration(t.RetryDelayMinutes) * time.Minute
}

func (t TranslationConfig) JobRetention() time.Duration {
	return time.Duration(t.JobRetentionDays) * 24 * time.Hour
}

// Load reads and validates the YAML config at path.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg := defaultAppConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	normalize(&cfg)
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	if cfg.Database.Port < 1 || cfg.Database.Port > 65535 {
		return nil, fmt.Errorf("invalid database.port %d in %q, expected 1-65535", cfg.Database.Port, path)
	}
	if cfg.Redis.Port < 1 || cfg.Redis.Port > 65535 {
		return nil, fmt.Errorf("invalid redis.port %d in %q, expected 1-65535", cfg.Redis.Port, path)
	}
	if cfg.Redis.DB < 0 {
		return nil, fmt.Errorf("invalid redis.db %d in %q, expected >= 0", cfg.Redis.DB, path)
	}

	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			Host:     defaultDBHost,
			Port:     defaultDBPort,
			User:     defaultDBUser,
			Password: defaultDBPassword,
			Name:     defaultDBName,
			Charset:  defaultDBCharset,
			Loc:      defaultDBLoc,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
		},
		AI: AIConfig{
			Endpoint: defaultAIEndpoint,
			Model:    defaultAIModel,
		},
		Translation: TranslationConfig{
			BatchSize:           2,
			BatchDelayMS:        1000,
			StalenessWindowHrs:  24,
			RecentWindowMinutes: 60,
			RetryDelayMinutes:   5,
			JobRetentionDays:    7,
		},
	}
}

func normalize(cfg *AppConfig) {
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	cfg.APIToken = strings.TrimSpace(cfg.APIToken)

	cfg.AI.APIKey = strings.TrimSpace(cfg.AI.APIKey)
	cfg.AI.Endpoint = strings.TrimRight(strings.TrimSpace(cfg.AI.Endpoint), "/")
	if cfg.AI.Endpoint == "" {
		cfg.AI.Endpoint = defaultAIEndpoint
	}
	cfg.AI.Model = strings.TrimSpace(cfg.AI.Model)
	if cfg.AI.Model == "" {
		cfg.AI.Model = defaultAIModel
	}

	t := &cfg.Translation
	if t.BatchSize < 1 {
		t.BatchSize = 2
	}
	if t.BatchDelayMS < 0 {
		t.BatchDelayMS = 1000
	}
	if t.StalenessWindowHrs < 1 {
		t.StalenessWindowHrs = 24
	}
	if t.RecentWindowMinutes < 1 {
		t.RecentWindowMinutes = 60
	}
	if t.RetryDelayMinutes < 1 {
		t.RetryDelayMinutes = 5
	}
	if t.JobRetentionDays < 1 {
		t.JobRetentionDays = 7
	}

	out := make([]string, 0, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	cfg.AllowedOrigins = out
}

// DSNValue builds the MySQL DSN from discrete fields unless an explicit DSN is set.
func (c DatabaseRuntimeConfig) DSNValue() string {
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultDBHost
	}
	port := c.Port
	if port == 0 {
		port = defaultDBPort
	}
	user := strings.TrimSpace(c.User)
	if user == "" {
		user = defaultDBUser
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = defaultDBName
	}
	charset := strings.TrimSpace(c.Charset)
	if charset == "" {
		charset = defaultDBCharset
	}
	loc := strings.TrimSpace(c.Loc)
	if loc == "" {
		loc = defaultDBLoc
	}

	params := neturl.Values{}
	params.Set("charset", charset)
	params.Set("parseTime", "true")
	params.Set("loc", loc)

	auth := user
	if c.Password != "" {
		auth += ":" + c.Password
	}

	return fmt.Sprintf("%s@tcp(%s)/%s?%s",
		auth, net.JoinHostPort(host, strconv.Itoa(port)), name, params.Encode())
}

// URLValue builds the redis URL from discrete fields unless an explicit URL is set.
func (c RedisRuntimeConfig) URLValue() string {
	raw := strings.TrimSpace(c.URL)
	if raw != "" {
		if strings.HasPrefix(raw, "redis://") || strings.HasPrefix(raw, "rediss://") {
			return raw
		}
		return "redis://" + raw
	}

	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultRedisHost
	}
	port := c.Port
	if port == 0 {
		port = defaultRedisPort
	}

	u := &neturl.URL{
		Scheme: "redis",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + strconv.Itoa(c.DB),
	}
	if c.Password != "" {
		u.User = neturl.UserPassword("", c.Password)
	}
	return u.String()
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}
