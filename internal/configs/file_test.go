package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty path", func(t *testing.T) {
		cfg, err := LoadFile("")
		require.NoError(t, err)
		assert.Equal(t, &AgentConfig{}, cfg)
	})

	t.Run("full file", func(t *testing.T) {
		path := filepath.Join(dir, "agent.yaml")
		writeConfig(t, path, `
uri: http://lb1:8404/;csv, http://lb2:8404/;csv
name: edge
proxy: web
proxy_type: BACKEND
user: admin
password: s3cret
poll_interval: 20
address: http://metrics:8080
listen: ":9101"
trusted_subnet: 10.0.0.0/8
database_dsn: file:history.db
snapshot_file: snapshots.jsonl
retention: 72
log_level: warn
`)

		cfg, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, &AgentConfig{
			URI:           "http://lb1:8404/;csv, http://lb2:8404/;csv",
			Name:          "edge",
			Proxy:         "web",
			ProxyType:     "BACKEND",
			User:          "admin",
			Password:      "s3cret",
			PollInterval:  20,
			Address:       "http://metrics:8080",
			Listen:        ":9101",
			TrustedSubnet: "10.0.0.0/8",
			DatabaseDSN:   "file:history.db",
			SnapshotFile:  "snapshots.jsonl",
			Retention:     72,
			LogLevel:      "warn",
			ConfigFile:    path,
		}, cfg)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "absent.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		writeConfig(t, path, "poll_interval: [not an int\n")

		_, err := LoadFile(path)
		assert.Error(t, err)
	})
}
