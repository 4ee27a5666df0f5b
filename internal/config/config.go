package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultPollInterval = 5 * time.Minute
	DefaultHTTPPort     = 8080
	DefaultSnapshotTTL  = 15 * time.Minute
	DefaultCooldown     = 15 * time.Minute
	DefaultAuthHeader   = "x-api-key"
)

// Config is the top-level monitor configuration.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`
	Server  ServerConfig  `yaml:"server"`
}

// MonitorConfig holds the polling side: which facilities to watch and where
// their raw metrics live.
type MonitorConfig struct {
	// PollInterval controls how often each facility is polled.
	PollInterval time.Duration `yaml:"poll_interval"`

	// CatalogPath is an optional facility threshold catalog YAML file.
	// Empty means the builtin table ships with the binary.
	CatalogPath string `yaml:"catalog_path"`

	// CookieFile is where the SSO session cookies are persisted between runs.
	// Empty disables cookie persistence.
	CookieFile string `yaml:"cookie_file"`

	// Auth is the shared authentication block for all dashboard sources.
	Auth SourceAuth `yaml:"auth"`

	// TLS holds dial options applied to every source client.
	TLS TLSConfig `yaml:"tls"`

	// Facilities lists the fulfillment centers to monitor.
	Facilities []Facility `yaml:"facilities"`
}

// Facility describes one monitored fulfillment center and its upstream
// endpoints. Endpoints left empty simply skip that observation; each fetch
// degrades independently.
type Facility struct {
	// ID is the facility short code, e.g. "GRU5". Must exist in the
	// threshold catalog for capacity validation to run.
	ID string `yaml:"id"`

	// MetricsURL is a Prometheus-text-format exporter endpoint. When set it
	// is preferred over the page-scraping endpoints below.
	MetricsURL string `yaml:"metrics_url"`

	// CPTURL is the CPT risk dashboard page (utilization-by-deadline tables).
	CPTURL string `yaml:"cpt_url"`

	// WIPURL is the work-in-progress rollup page.
	WIPURL string `yaml:"wip_url"`

	// ThroughputURL is the planned/override throughput page.
	ThroughputURL string `yaml:"throughput_url"`

	// ProcessingURL is the process-path rollup report (pick/pack totals).
	ProcessingURL string `yaml:"processing_url"`

	// BufferURL is the sortation buffer status page; BufferQueue selects the
	// destination row, e.g. "pkMULTIZONE" or "pkMULTISMALL".
	BufferURL   string `yaml:"buffer_url"`
	BufferQueue string `yaml:"buffer_queue"`
}

// SourceAuth specifies how the monitor authenticates to the upstream
// dashboards. Secrets are resolved from the environment, never stored in the
// file.
type SourceAuth struct {
	// Mode is one of: cookie | apikey | bearer | basic | mtls | none.
	Mode string `yaml:"mode"`

	// API key fields, used when Mode == "apikey".
	Header string `yaml:"header"`
	KeyEnv string `yaml:"key_env"`

	// Bearer token fields, used when Mode == "bearer".
	TokenEnv string `yaml:"token_env"`

	// Basic auth fields, used when Mode == "basic".
	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"password_env"`

	// mTLS fields, used when Mode == "mtls".
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`
}

// Key returns the API key value resolved from the environment.
func (a SourceAuth) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Token returns the bearer token value resolved from the environment.
func (a SourceAuth) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Password returns the basic-auth password resolved from the environment.
func (a SourceAuth) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// TLSConfig holds source TLS dial options.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	// Only use this for internal CAs in development environments.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// ServerConfig holds the presentation-side settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket hub listen on.
	HTTPPort int `yaml:"http_port"`

	// Auth configures REST API authentication.
	Auth ServerAuthConfig `yaml:"auth"`

	// Snapshot controls in-memory facility status retention.
	Snapshot SnapshotConfig `yaml:"snapshot"`

	// Alerts holds webhook delivery configuration.
	Alerts AlertsConfig `yaml:"alerts"`
}

// ServerAuthConfig configures REST API authentication.
type ServerAuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the environment variable holding the expected API key.
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header carrying the key (default "x-api-key").
	Header string `yaml:"header"`
}

// Key returns the server API key resolved from the environment.
func (a ServerAuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name or the default.
func (a ServerAuthConfig) EffectiveHeader() string {
	if a.Header == "" {
		return DefaultAuthHeader
	}
	return a.Header
}

// SnapshotConfig controls facility status retention.
type SnapshotConfig struct {
	// TTL is how long a facility status remains live without an update.
	TTL time.Duration `yaml:"ttl"`
}

// AlertsConfig holds webhook targets and the re-fire cooldown.
type AlertsConfig struct {
	// Cooldown suppresses re-fires per risk key for this duration.
	Cooldown time.Duration `yaml:"cooldown"`

	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | http.
	Type string `yaml:"type"`

	// URLEnv is the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Monitor: MonitorConfig{
			PollInterval: DefaultPollInterval,
		},
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			Snapshot: SnapshotConfig{TTL: DefaultSnapshotTTL},
			Alerts:   AlertsConfig{Cooldown: DefaultCooldown},
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Monitor.PollInterval <= 0 {
		return fmt.Errorf("monitor.poll_interval must be positive")
	}
	if len(cfg.Monitor.Facilities) == 0 {
		return fmt.Errorf("at least one facility is required")
	}

	switch cfg.Monitor.Auth.Mode {
	case "cookie", "apikey", "bearer", "basic", "mtls", "none", "":
	default:
		return fmt.Errorf("monitor.auth: unknown mode %q", cfg.Monitor.Auth.Mode)
	}

	seen := make(map[string]bool, len(cfg.Monitor.Facilities))
	for i, fc := range cfg.Monitor.Facilities {
		if fc.ID == "" {
			return fmt.Errorf("facilities[%d]: id is required", i)
		}
		if seen[fc.ID] {
			return fmt.Errorf("facilities[%d]: duplicate id %q", i, fc.ID)
		}
		seen[fc.ID] = true
	}

	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth: unknown mode %q", cfg.Server.Auth.Mode)
	}
	if cfg.Server.Snapshot.TTL <= 0 {
		return fmt.Errorf("server.snapshot.ttl must be positive")
	}

	for i, wh := range cfg.Server.Alerts.Webhooks {
		switch wh.Type {
		case "teams", "slack", "http":
		default:
			return fmt.Errorf("server.alerts.webhooks[%d]: unknown type %q", i, wh.Type)
		}
	}

	return nil
}
