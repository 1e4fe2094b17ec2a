package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gophaproxy/internal/configs"
)

// resetFlags resets the pflag.CommandLine to avoid test pollution.
func resetFlags(t *testing.T, args ...string) {
	t.Helper()

	pflag.CommandLine = pflag.NewFlagSet("test", pflag.ContinueOnError)
	registerFlags(pflag.CommandLine)
	require.NoError(t, pflag.CommandLine.Parse(args))
}

func TestBuildConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "agent.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
uri: http://file-lb/;csv
name: file-name
proxy: file-proxy
poll_interval: 45
listen: ":9200"
`), 0o600))

	tests := []struct {
		name   string
		args   []string
		env    map[string]string
		want   func(*testing.T, *configs.AgentConfig)
		errIs  error
		hasErr bool
	}{
		{
			name: "flags with defaults",
			args: []string{"-u", "http://lb1/;csv, http://lb2/;csv", "-n", "edge", "-x", "web", "-t", "backend"},
			want: func(t *testing.T, cfg *configs.AgentConfig) {
				assert.Equal(t, "http://lb1/;csv, http://lb2/;csv", cfg.URI)
				assert.Equal(t, "edge", cfg.Name)
				assert.Equal(t, "web", cfg.Proxy)
				assert.Equal(t, "backend", cfg.ProxyType)
				assert.Equal(t, defaultPollInterval, cfg.PollInterval)
				assert.Equal(t, defaultLogLevel, cfg.LogLevel)
				assert.Empty(t, cfg.Listen)
				assert.Empty(t, cfg.MigrationsDir)
			},
		},
		{
			name: "env beats flags",
			args: []string{"-u", "http://flag/;csv", "-n", "flag-name", "-x", "web", "-p", "5"},
			env:  map[string]string{"NAME": "env-name", "POLL_INTERVAL": "7", "STATS_USER": "admin"},
			want: func(t *testing.T, cfg *configs.AgentConfig) {
				assert.Equal(t, "http://flag/;csv", cfg.URI)
				assert.Equal(t, "env-name", cfg.Name)
				assert.Equal(t, 7, cfg.PollInterval)
				assert.Equal(t, "admin", cfg.User)
			},
		},
		{
			name: "flags beat file, file beats defaults",
			args: []string{"-c", cfgPath, "-n", "flag-name"},
			want: func(t *testing.T, cfg *configs.AgentConfig) {
				assert.Equal(t, "http://file-lb/;csv", cfg.URI)
				assert.Equal(t, "flag-name", cfg.Name)
				assert.Equal(t, "file-proxy", cfg.Proxy)
				assert.Equal(t, 45, cfg.PollInterval)
				assert.Equal(t, ":9200", cfg.Listen)
				assert.Equal(t, cfgPath, cfg.ConfigFile)
			},
		},
		{
			name: "config path from env",
			env:  map[string]string{"CONFIG": cfgPath},
			want: func(t *testing.T, cfg *configs.AgentConfig) {
				assert.Equal(t, "file-name", cfg.Name)
			},
		},
		{
			name: "migrations dir from env",
			args: []string{"-u", "http://lb/;csv", "-n", "edge", "-x", "web", "--migrations-dir", "flag-dir"},
			env:  map[string]string{"MIGRATIONS_DIR": "/opt/migrations"},
			want: func(t *testing.T, cfg *configs.AgentConfig) {
				assert.Equal(t, "/opt/migrations", cfg.MigrationsDir)
			},
		},
		{
			name:  "missing uri",
			args:  []string{"-n", "edge", "-x", "web"},
			errIs: configs.ErrNoSources,
		},
		{
			name:  "missing proxy",
			args:  []string{"-u", "http://lb/;csv", "-n", "edge"},
			errIs: configs.ErrNoProxy,
		},
		{
			name:   "bad poll interval env",
			args:   []string{"-u", "http://lb/;csv", "-n", "edge", "-x", "web"},
			env:    map[string]string{"POLL_INTERVAL": "soon"},
			hasErr: true,
		},
		{
			name:   "missing config file",
			args:   []string{"-c", filepath.Join(dir, "absent.yaml")},
			hasErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"URI", "NAME", "PROXY", "POLL_INTERVAL", "STATS_USER", "CONFIG", "MIGRATIONS_DIR"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			resetFlags(t, tt.args...)

			cfg, err := buildConfig()
			switch {
			case tt.errIs != nil:
				assert.ErrorIs(t, err, tt.errIs)
			case tt.hasErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				tt.want(t, cfg)
			}
		})
	}
}
