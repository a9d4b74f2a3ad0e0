package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 9000
  cors_origins: [https://app.example.com]
database:
  driver: sqlite3
  uri: file:test.db
auth:
  access_token_secret: from-file
  refresh_token_secret: refresh-from-file
  access_token_expiry: 15m
`)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("AUTH_ACCESS_TOKEN_SECRET", "from-env")
	t.Setenv("AWS_S3_BUCKET", "videos")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.Auth.AccessTokenSecret)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenExpiry)
	assert.Equal(t, 240*time.Hour, cfg.Auth.RefreshTokenExpiry)
	assert.True(t, cfg.MediaEnabled())
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_WithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("AUTH_ACCESS_TOKEN_SECRET", "a-secret")
	t.Setenv("AUTH_REFRESH_TOKEN_SECRET", "another-secret")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "mongo", cfg.Database.Driver)
	assert.Equal(t, "videotube", cfg.Database.Name)
	assert.False(t, cfg.MediaEnabled())
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing secrets": `
database: {driver: sqlite3, uri: ":memory:"}
`,
		"unknown driver": `
database: {driver: oracle, uri: x}
auth: {access_token_secret: a, refresh_token_secret: b}
`,
		"same secrets": `
auth: {access_token_secret: same, refresh_token_secret: same}
`,
		"bad port": `
server: {port: 70000}
auth: {access_token_secret: a, refresh_token_secret: b}
`,
		"bad log format": `
log: {format: xml}
auth: {access_token_secret: a, refresh_token_secret: b}
`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
