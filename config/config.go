package config

import (
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"

	// MinSecretLength is the shortest signing secret accepted. HS256 keys shorter
	// than the digest size are rejected by the edge token backend.
	MinSecretLength = 32

	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"

	TokenBackendServer = "server"
	TokenBackendEdge   = "edge"

	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = time.Minute

	legacySecretEnv = "JWT_SECRET"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int      `json:"port" yaml:"port"`
		MaxRequestBodySize string   `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		AllowOrigins       []string `json:"allowOrigins" yaml:"allowOrigins"`
		TrustedProxies     []string `json:"trustedProxies" yaml:"trustedProxies"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Store selects the identity store backend
	Store *StoreConfig `json:"store" yaml:"store"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	Mongo *MongoConfig `json:"mongo" yaml:"mongo"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	// RateLimit configuration for the credential endpoints
	RateLimit *RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`

	// QRCode configuration for profile share codes
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`

	// PubSub configuration for identity events
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// StoreConfig defines which persistence backend holds identities
type StoreConfig struct {
	// Driver is "postgres" or "mongo"
	Driver string `json:"driver" yaml:"driver"`

	// Migrate runs the embedded SQL migrations on startup (postgres only)
	Migrate bool `json:"migrate" yaml:"migrate"`
}

// MongoConfig defines the document store connection
type MongoConfig struct {
	URI      string        `json:"uri" yaml:"uri"`
	Database string        `json:"database" yaml:"database"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	// Secret signs and verifies every credential token
	Secret string `json:"secret" yaml:"secret"`

	// TokenBackend picks the implementation used to issue tokens: "server" or "edge"
	TokenBackend string `json:"tokenBackend" yaml:"tokenBackend"`

	Cookie CookieConfig `json:"cookie" yaml:"cookie"`
	Gate   GateConfig   `json:"gate" yaml:"gate"`
}

// CookieConfig defines how the token cookie is read and, optionally, written
type CookieConfig struct {
	Name      string `json:"name" yaml:"name"`
	ServerSet bool   `json:"serverSet" yaml:"serverSet"`
	Secure    bool   `json:"secure" yaml:"secure"`
	SameSite  string `json:"sameSite" yaml:"sameSite"`
}

// GateConfig defines the protected path prefixes and where denied browsers are sent
type GateConfig struct {
	LoginPath         string   `json:"loginPath" yaml:"loginPath"`
	ProtectedPrefixes []string `json:"protectedPrefixes" yaml:"protectedPrefixes"`
}

// RateLimitConfig defines the fixed window applied to login and registration
type RateLimitConfig struct {
	Enabled           bool          `json:"enabled" yaml:"enabled"`
	RequestsPerWindow int           `json:"requestsPerWindow" yaml:"requestsPerWindow"`
	Window            time.Duration `json:"window" yaml:"window"`
	Redis             RedisConfig   `json:"redis" yaml:"redis"`
}

// RedisConfig defines the shared limiter store. An empty Addr keeps counters in process.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
	BaseURL              string `json:"baseUrl" yaml:"baseUrl"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// AUTH_SECRET -> auth.secret, RATELIMIT_REDIS_ADDR -> rateLimit.redis.addr
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

// New loads config.yaml, overlays the environment (including an optional .env file),
// applies defaults and validates the result. A missing signing secret is fatal.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env failed")
	}

	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if cfg.Postgres != nil {
		// POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, ...
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if cfg.Store == nil {
		cfg.Store = &StoreConfig{}
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = StoreDriverPostgres
	}

	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}
	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = os.Getenv(legacySecretEnv)
	}
	if cfg.Auth.TokenBackend == "" {
		cfg.Auth.TokenBackend = TokenBackendServer
	}
	if cfg.Auth.Cookie.Name == "" {
		cfg.Auth.Cookie.Name = "auth-token"
	}
	if cfg.Auth.Cookie.SameSite == "" {
		cfg.Auth.Cookie.SameSite = "lax"
	}
	if cfg.Auth.Gate.LoginPath == "" {
		cfg.Auth.Gate.LoginPath = "/login"
	}
	if len(cfg.Auth.Gate.ProtectedPrefixes) == 0 {
		cfg.Auth.Gate.ProtectedPrefixes = []string{"/dashboard", "/profile", "/jobs"}
	}

	if cfg.RateLimit != nil {
		if cfg.RateLimit.RequestsPerWindow <= 0 {
			cfg.RateLimit.RequestsPerWindow = DefaultRateLimitRequests
		}
		if cfg.RateLimit.Window <= 0 {
			cfg.RateLimit.Window = DefaultRateLimitWindow
		}
	}

	if cfg.Mongo != nil && cfg.Mongo.Timeout <= 0 {
		cfg.Mongo.Timeout = 10 * time.Second
	}
}

// Validate rejects configurations the service must not start with.
func (cfg *Config) Validate() error {
	if cfg.Auth == nil || strings.TrimSpace(cfg.Auth.Secret) == "" {
		return errors.New("auth.secret is required (AUTH_SECRET or JWT_SECRET)")
	}
	if len(cfg.Auth.Secret) < MinSecretLength {
		return errors.Errorf("auth.secret must be at least %d bytes", MinSecretLength)
	}

	switch cfg.Auth.TokenBackend {
	case TokenBackendServer, TokenBackendEdge:
	default:
		return errors.Errorf("unknown auth.tokenBackend: %s", cfg.Auth.TokenBackend)
	}

	switch strings.ToLower(cfg.Auth.Cookie.SameSite) {
	case "lax", "strict", "none":
	default:
		return errors.Errorf("unknown auth.cookie.sameSite: %s", cfg.Auth.Cookie.SameSite)
	}

	if !strings.HasPrefix(cfg.Auth.Gate.LoginPath, "/") {
		return errors.Errorf("auth.gate.loginPath must be an absolute path: %q", cfg.Auth.Gate.LoginPath)
	}

	if _, err := ParseTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return err
	}

	if cfg.Store != nil {
		switch cfg.Store.Driver {
		case StoreDriverPostgres:
			if cfg.Postgres == nil {
				return errors.New("postgres section is required for the postgres store")
			}
		case StoreDriverMongo:
			if cfg.Mongo == nil || cfg.Mongo.URI == "" || cfg.Mongo.Database == "" {
				return errors.New("mongo.uri and mongo.database are required for the mongo store")
			}
		default:
			return errors.Errorf("unknown store.driver: %s", cfg.Store.Driver)
		}
	}

	return nil
}

// ParseTrustedProxies turns http.trustedProxies entries, CIDRs or bare IPs,
// into networks whose X-Forwarded-For headers may name the client.
func ParseTrustedProxies(entries []string) ([]*net.IPNet, error) {
	networks := make([]*net.IPNet, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if ip := net.ParseIP(entry); ip != nil {
			bits := 8 * net.IPv6len
			if ip.To4() != nil {
				ip, bits = ip.To4(), 8*net.IPv4len
			}
			networks = append(networks, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})

			continue
		}

		_, network, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, errors.Errorf("http.trustedProxies: %q is neither an IP nor a CIDR", entry)
		}
		networks = append(networks, network)
	}

	return networks, nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Environment variable format: POSTGRES_REPLICAS_{index}_{field}
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
