package configs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sbilibin2017/gophaproxy/internal/configs/address"
	"github.com/sbilibin2017/gophaproxy/internal/models"
)

// Validation errors.
var (
	ErrNoSources           = errors.New("at least one stats uri is required")
	ErrNoName              = errors.New("instance name is required")
	ErrNoProxy             = errors.New("proxy name is required")
	ErrInvalidPollInterval = errors.New("poll interval must be positive")
)

// AgentConfig holds configuration parameters for the agent.
type AgentConfig struct {
	URI           string `yaml:"uri"`            // Comma-separated stats page URLs
	Name          string `yaml:"name"`           // Instance label
	Proxy         string `yaml:"proxy"`          // pxname to select
	ProxyType     string `yaml:"proxy_type"`     // FRONTEND, BACKEND or empty for any
	User          string `yaml:"user"`           // Stats page basic auth user
	Password      string `yaml:"password"`       // Stats page basic auth password
	PollInterval  int    `yaml:"poll_interval"`  // Poll interval in seconds
	Address       string `yaml:"address"`        // Metrics server, empty disables pushing
	Key           string `yaml:"key"`            // HMAC key for pushed and served payloads
	Listen        string `yaml:"listen"`         // Status server address, empty disables it
	TrustedSubnet string `yaml:"trusted_subnet"` // CIDR allowed to query the status server
	DatabaseDSN   string `yaml:"database_dsn"`   // Snapshot history database
	SnapshotFile  string `yaml:"snapshot_file"`  // Snapshot JSONL log
	MigrationsDir string `yaml:"migrations_dir"` // goose SQL directory, empty uses the built-in set
	Retention     int    `yaml:"retention"`      // History retention in hours, 0 keeps everything
	LogLevel      string `yaml:"log_level"`      // zap level
	ConfigFile    string `yaml:"-"`              // YAML file the rest may come from
}

// AgentConfigOpt defines a function type for applying configuration options to AgentConfig.
type AgentConfigOpt func(*AgentConfig) error

// NewAgentConfig creates a new AgentConfig with the given options applied.
// Returns error if any option fails.
func NewAgentConfig(opts ...AgentConfigOpt) (*AgentConfig, error) {
	cfg := &AgentConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Validate checks the settings a poll cycle cannot run without.
func (c *AgentConfig) Validate() error {
	sources, err := c.Sources()
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return ErrNoSources
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrNoName
	}
	if strings.TrimSpace(c.Proxy) == "" {
		return ErrNoProxy
	}
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	return nil
}

// Sources splits URI on commas, trims each entry and drops empty ones.
// Entries without a scheme default to http.
func (c *AgentConfig) Sources() ([]models.Source, error) {
	var sources []models.Source
	for _, raw := range strings.Split(c.URI, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		addr, err := address.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("stats uri %q: %w", raw, err)
		}
		sources = append(sources, models.Source(addr.String()))
	}
	return sources, nil
}

// RetentionWindow returns Retention as a duration.
func (c *AgentConfig) RetentionWindow() time.Duration {
	return time.Duration(c.Retention) * time.Hour
}

// PollEvery returns PollInterval as a duration.
func (c *AgentConfig) PollEvery() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

func firstNonEmpty(values []string) (string, bool) {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}

func stringOpt(set func(*AgentConfig, string), values []string) AgentConfigOpt {
	return func(cfg *AgentConfig) error {
		if v, ok := firstNonEmpty(values); ok {
			set(cfg, v)
		}
		return nil
	}
}

// WithURI sets URI to the first non-empty string in uris.
func WithURI(uris ...string) AgentConfigOpt {
	return stringOpt(func(c *AgentConfig, v string) { c.URI = v }, uris)
}

// WithName sets Name to the first non-empty string in names.
func WithName(names ...string) AgentConfigOpt {
	return stringOpt(func(c *AgentConfig, v string) { c.Name = v }, names)
}

// WithProxy sets Proxy to the first non-empty string in proxies.
func WithProxy(proxies ...string) AgentConfigOpt {
	return stringOpt(func(c *AgentConfig, v string) { c.Proxy = v }, proxies)
}

// WithProxyType sets ProxyType to the first non-empty string in types.
func WithProxyType(types ...string) AgentConfigOpt {
	return stringOpt(func(c *AgentConfig, v string) { c.ProxyType = v }, types)
}

// WithUser sets User to the first non-empty string in users.
func WithUser(users ...string) AgentConfigOpt {
	return stringOpt(func(c *AgentConfig, v string) { c.User = v }, users)
}

// WithPassword sets Password to the first non-empty string in passwords.
func WithPassword(passwords ...string) AgentConfigOpt {
	return stringOpt(func(c *AgentConfig, v string) { c.Password = v }, passwords)
}

// WithAddress sets Address to the first non-empty string in addrs.
func WithAddress(addrs ...string) AgentConfigOpt {
	return stringOpt(func(c *AgentConfig, v string) { c.Address = v }, addrs)
}

// WithKey sets Key to the first non-empty string in keys.
func WithKey(keys ...string) AgentConfigOpt {
	return stringOpt(func(c *AgentConfig, v string) { c.Key = v }, keys)
}

// WithListen sets Listen to the first non-empty string in addrs.
func WithListen(addrs ...string) AgentConfigOpt {
	return stringOpt(func(c *AgentConfig, v string) { c.Listen = v }, addrs)
}

// WithTrustedSubnet sets TrustedSubnet to the first non-empty string in subnets.
func WithTrustedSubnet(subnets ...string) AgentConfigOpt {
	return stringOpt(func(c *AgentConfig, v string) { c.TrustedSubnet = v }, subnets)
}

// WithDatabaseDSN sets DatabaseDSN to the first non-empty string in dsns.
func WithDatabaseDSN(dsns ...string) AgentConfigOpt {
	return stringOpt(func(c *AgentConfig, v string) { c.DatabaseDSN = v }, dsns)
}

// WithSnapshotFile sets SnapshotFile to the first non-empty string in paths.
func WithSnapshotFile(paths ...string) AgentConfigOpt {
	return stringOpt(func(c *AgentConfig, v string) { c.SnapshotFile = v }, paths)
}

// WithMigrationsDir sets MigrationsDir to the first non-empty string in dirs.
func WithMigrationsDir(dirs ...string) AgentConfigOpt {
	return stringOpt(func(c *AgentConfig, v string) { c.MigrationsDir = v }, dirs)
}

// WithLogLevel sets LogLevel to the first non-empty string in levels.
func WithLogLevel(levels ...string) AgentConfigOpt {
	return stringOpt(func(c *AgentConfig, v string) { c.LogLevel = v }, levels)
}

// WithConfigFile sets ConfigFile to the first non-empty string in paths.
func WithConfigFile(paths ...string) AgentConfigOpt {
	return stringOpt(func(c *AgentConfig, v string) { c.ConfigFile = v }, paths)
}

// WithPollInterval returns an AgentConfigOpt that sets the PollInterval field to
// the first positive int in intervals.
func WithPollInterval(intervals ...int) AgentConfigOpt {
	return func(cfg *AgentConfig) error {
		for _, interval := range intervals {
			if interval > 0 {
				cfg.PollInterval = interval
				break
			}
		}
		return nil
	}
}

// WithRetention sets Retention to the first positive int in hours.
func WithRetention(hours ...int) AgentConfigOpt {
	return func(cfg *AgentConfig) error {
		for _, h := range hours {
			if h > 0 {
				cfg.Retention = h
				break
			}
		}
		return nil
	}
}
