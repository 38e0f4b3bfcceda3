package config

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

const testYAML = `
env:
  env: test
  serviceName: devconnect
  log:
    level: debug
http:
  port: 8080
store:
  driver: mongo
mongo:
  uri: mongodb://localhost:27017
  database: devconnect
auth:
  secret: ""
  tokenBackend: server
  gate:
    loginPath: /login
rateLimit:
  enabled: true
  requestsPerWindow: 5
  window: 30s
  redis:
    addr: ""
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))

	return dir
}

func TestLoadWithEnv_OverlaysEnvironment(t *testing.T) {
	dir := writeConfig(t, testYAML)
	t.Chdir(dir)
	t.Setenv("AUTH_SECRET", testSecret)
	t.Setenv("RATELIMIT_REDIS_ADDR", "localhost:6379")

	cfg, err := LoadWithEnv[Config]("config")
	require.NoError(t, err)
	cfg.applyDefaults()

	assert.Equal(t, testSecret, cfg.Auth.Secret)
	assert.Equal(t, "localhost:6379", cfg.RateLimit.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 5, cfg.RateLimit.RequestsPerWindow)
	assert.Equal(t, []string{"/dashboard", "/profile", "/jobs"}, cfg.Auth.Gate.ProtectedPrefixes)
	assert.Equal(t, "auth-token", cfg.Auth.Cookie.Name)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("config")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestApplyDefaults_LegacySecretEnv(t *testing.T) {
	t.Setenv(legacySecretEnv, testSecret)

	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, testSecret, cfg.Auth.Secret)
	assert.Equal(t, TokenBackendServer, cfg.Auth.TokenBackend)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{
			Store: &StoreConfig{Driver: StoreDriverMongo},
			Mongo: &MongoConfig{URI: "mongodb://localhost", Database: "devconnect"},
			Auth:  &AuthConfig{Secret: testSecret},
		}
		cfg.applyDefaults()

		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.Secret = "  " }, wantErr: "auth.secret is required"},
		{name: "short secret", mutate: func(c *Config) { c.Auth.Secret = "short" }, wantErr: "at least"},
		{name: "unknown backend", mutate: func(c *Config) { c.Auth.TokenBackend = "rsa" }, wantErr: "tokenBackend"},
		{name: "bad same site", mutate: func(c *Config) { c.Auth.Cookie.SameSite = "sometimes" }, wantErr: "sameSite"},
		{name: "relative login path", mutate: func(c *Config) { c.Auth.Gate.LoginPath = "login" }, wantErr: "loginPath"},
		{name: "postgres without section", mutate: func(c *Config) { c.Store.Driver = StoreDriverPostgres }, wantErr: "postgres section"},
		{name: "mongo without uri", mutate: func(c *Config) { c.Mongo.URI = "" }, wantErr: "mongo.uri"},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "bolt" }, wantErr: "store.driver"},
		{name: "trusted proxies", mutate: func(c *Config) { c.HTTP.TrustedProxies = []string{"10.0.0.0/8", "192.0.2.7", "::1"} }},
		{name: "bad trusted proxy", mutate: func(c *Config) { c.HTTP.TrustedProxies = []string{"lb.internal"} }, wantErr: "trustedProxies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	networks, err := ParseTrustedProxies([]string{" 10.0.0.0/8 ", "192.0.2.7", "2001:db8::1"})
	require.NoError(t, err)
	require.Len(t, networks, 3)

	assert.True(t, networks[0].Contains(net.ParseIP("10.1.2.3")))
	assert.True(t, networks[1].Contains(net.ParseIP("192.0.2.7")))
	assert.False(t, networks[1].Contains(net.ParseIP("192.0.2.8")))
	assert.True(t, networks[2].Contains(net.ParseIP("2001:db8::1")))
	assert.False(t, networks[2].Contains(net.ParseIP("2001:db8::2")))

	networks, err = ParseTrustedProxies(nil)
	require.NoError(t, err)
	assert.Empty(t, networks)
}
