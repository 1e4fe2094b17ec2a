package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/sbilibin2017/gophaproxy/internal/configs"
)

// Defaults used when neither env, flags nor the config file set a value.
const (
	defaultPollInterval = 10
	defaultLogLevel     = "info"
)

var (
	uri           string
	name          string
	proxy         string
	proxyType     string
	user          string
	password      string
	pollInterval  int
	addr          string
	key           string
	listen        string
	trustedSubnet string
	databaseDSN   string
	snapshotFile  string
	migrationsDir string
	retention     int
	logLevel      string
	configFile    string
)

func init() {
	registerFlags(pflag.CommandLine)
}

// registerFlags binds the agent flags to fs. Every default is empty so a
// config file value can sit between flags and built-in defaults.
func registerFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&uri, "uri", "u", "", "comma-separated HAProxy stats CSV URLs")
	fs.StringVarP(&name, "name", "n", "", "instance name")
	fs.StringVarP(&proxy, "proxy", "x", "", "proxy name (pxname) to monitor")
	fs.StringVarP(&proxyType, "proxy-type", "t", "", "FRONTEND or BACKEND, empty for any")
	fs.StringVar(&user, "user", "", "stats page basic auth user")
	fs.StringVar(&password, "password", "", "stats page basic auth password")
	fs.IntVarP(&pollInterval, "poll-interval", "p", 0, "poll interval in seconds")
	fs.StringVarP(&addr, "address", "a", "", "metrics server URL, empty disables pushing")
	fs.StringVarP(&key, "key", "k", "", "key for SHA256 hashing")
	fs.StringVarP(&listen, "listen", "l", "", "status server address, empty disables it")
	fs.StringVarP(&trustedSubnet, "trusted-subnet", "s", "", "CIDR allowed to query the status server")
	fs.StringVarP(&databaseDSN, "database-dsn", "d", "", "snapshot history DSN (PostgreSQL or SQLite path)")
	fs.StringVarP(&snapshotFile, "snapshot-file", "f", "", "snapshot JSONL log path")
	fs.StringVar(&migrationsDir, "migrations-dir", "", "goose migrations directory, empty uses the built-in set")
	fs.IntVarP(&retention, "retention", "r", 0, "history retention in hours, 0 keeps everything")
	fs.StringVar(&logLevel, "log-level", "", "log level")
	fs.StringVarP(&configFile, "config", "c", "", "path to YAML config file")
}

func parseFlags() (*configs.AgentConfig, error) {
	pflag.Parse()

	if len(pflag.Args()) > 0 {
		return nil, errors.New("unknown flags or arguments are provided")
	}

	return buildConfig()
}

// buildConfig merges env > flags > config file > defaults and validates the result.
func buildConfig() (*configs.AgentConfig, error) {
	path := os.Getenv("CONFIG")
	if path == "" {
		path = configFile
	}

	file, err := configs.LoadFile(path)
	if err != nil {
		return nil, err
	}

	envPoll, err := envInt("POLL_INTERVAL")
	if err != nil {
		return nil, err
	}
	envRetention, err := envInt("RETENTION")
	if err != nil {
		return nil, err
	}

	cfg, err := configs.NewAgentConfig(
		configs.WithURI(os.Getenv("URI"), uri, file.URI),
		configs.WithName(os.Getenv("NAME"), name, file.Name),
		configs.WithProxy(os.Getenv("PROXY"), proxy, file.Proxy),
		configs.WithProxyType(os.Getenv("PROXY_TYPE"), proxyType, file.ProxyType),
		configs.WithUser(os.Getenv("STATS_USER"), user, file.User),
		configs.WithPassword(os.Getenv("STATS_PASSWORD"), password, file.Password),
		configs.WithPollInterval(envPoll, pollInterval, file.PollInterval, defaultPollInterval),
		configs.WithAddress(os.Getenv("ADDRESS"), addr, file.Address),
		configs.WithKey(os.Getenv("KEY"), key, file.Key),
		configs.WithListen(os.Getenv("LISTEN"), listen, file.Listen),
		configs.WithTrustedSubnet(os.Getenv("TRUSTED_SUBNET"), trustedSubnet, file.TrustedSubnet),
		configs.WithDatabaseDSN(os.Getenv("DATABASE_DSN"), databaseDSN, file.DatabaseDSN),
		configs.WithSnapshotFile(os.Getenv("SNAPSHOT_FILE"), snapshotFile, file.SnapshotFile),
		configs.WithMigrationsDir(os.Getenv("MIGRATIONS_DIR"), migrationsDir, file.MigrationsDir),
		configs.WithRetention(envRetention, retention, file.Retention),
		configs.WithLogLevel(os.Getenv("LOG_LEVEL"), logLevel, file.LogLevel, defaultLogLevel),
		configs.WithConfigFile(path),
	)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envInt(name string) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", name)
	}
	return v, nil
}
