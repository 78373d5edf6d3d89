package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_CONFIG", writeFile(t, "empty.json", "{}"))

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "session_token", cfg.Session.CookieName)
	assert.Equal(t, "logged", cfg.Session.LoggedCookieName)
	assert.Equal(t, 10, cfg.Password.Cost)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.False(t, cfg.IsProd())
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "config.json", `{"server": {"address": ":9090"}, "env": "production",`+
		` "validation": {"usernamePattern": "^[a-z]+$"},`+
		` "middleware": {"cors": {"maxAge": "1h"}},`+
		` "database": {"driver": "memory"}}`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.True(t, cfg.IsProd())
	assert.Equal(t, "^[a-z]+$", cfg.Validation.UsernamePattern)
	assert.Equal(t, time.Hour, cfg.Middleware.CORS.MaxAge)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	// 未出现在文件中的字段保留默认值
	assert.Equal(t, Default().Validation.EmailPattern, cfg.Validation.EmailPattern)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "password:\n  cost: 12\nlog:\n  level: debug\n")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Password.Cost)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), nil)
	require.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.json", `{"server": {"address": ":9090"}}`)
	t.Setenv("SERVER_ADDR", ":7070")
	t.Setenv("DB_PASS", "s3cret")
	t.Setenv("USER_ID_REGEXP", "^[1-9][0-9]*$")
	t.Setenv("SESSION_ALGORITHM", "hs 512")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "^[1-9][0-9]*$", cfg.Validation.UserIDPattern)
	assert.Equal(t, "HS512", cfg.Session.SigningMethod)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	path := writeFile(t, "config.json", "{}")
	t.Setenv("SERVER_ADDR", ":7070")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("addr", ":8080", "")
	fs.String("env", "development", "")
	require.NoError(t, fs.Parse([]string{"--addr", ":6060"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.Server.Address)
	// 未显式设置的参数不覆盖
	assert.Equal(t, "development", cfg.Env)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "sqlite"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Password.HashConcurrency = 0
	require.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "root:root@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local", cfg.DSN())

	cfg.Database.UseUnixSock = true
	cfg.Database.Host = "/var/run/mysqld/mysqld.sock"
	assert.Equal(t, "root:root@unix(/var/run/mysqld/mysqld.sock)/app?charset=utf8mb4&parseTime=True&loc=Local", cfg.DSN())
}
