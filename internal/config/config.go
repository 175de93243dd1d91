package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinRequestTimeout leaves room for a full station load (30s) inside one
// search request.
const MinRequestTimeout = 35 * time.Second

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout, >= MinRequestTimeout

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Assistant
	UserAgent      string // sent to the station directory
	DefaultLang    string // assistant language, ex: "en-us"
	DefaultCountry string // ISO country code, ex: "US"
	IconPath       string // skill_icon of every result
	VocabFile      string // optional vocabulary YAML, empty = embedded defaults
	Languages      []string
	MaxResults     int

	// Mirrors
	SRVName         string        // DNS SRV record listing the mirrors
	DNSServer       string        // optional "host:port", empty = system resolver
	DNSTimeout      time.Duration // per SRV query
	SeedHosts       []string      // fallback mirrors when discovery fails
	RefreshInterval time.Duration // periodic station reload, 0 = disabled
	MirrorTTL       time.Duration // how long a discovered mirror list is shared via Redis

	// Redis (optional, empty address = disabled)
	RedisAddr           string
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisMaxWait        time.Duration // max wait between retries
	RedisPingTimeout    time.Duration // timeout for each ping attempt
	RedisPoolSize       int
	RedisConnectTimeout time.Duration // total time to retry connecting
	RedisRetryInterval  time.Duration // initial wait between retries, doubles

	// Access
	RateBurst    int      // search burst per client IP
	RatePerMin   int      // search refill per client IP per minute
	AllowedHosts []string // optional, restrict /search to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers

	MetricsEnabled bool // expose /metrics
}

// LoadDotenv reads KEY=VALUE files into the environment without overriding
// variables already set. Missing files are ignored.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the configuration from AIRWAVE_* environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ListenPort:      getenv("AIRWAVE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("AIRWAVE_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("AIRWAVE_REQUEST_TIMEOUT", 40*time.Second),

		LogLevel:  getenv("AIRWAVE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("AIRWAVE_PRETTY_LOG", false),

		UserAgent:      getenv("AIRWAVE_USER_AGENT", "airwave/skill-internet_radio"),
		DefaultLang:    strings.ToLower(getenv("AIRWAVE_LANG", "en-us")),
		DefaultCountry: strings.ToUpper(getenv("AIRWAVE_COUNTRY", "US")),
		IconPath:       getenv("AIRWAVE_ICON_PATH", "ui/radio-solid.svg"),
		VocabFile:      getenv("AIRWAVE_VOCAB_FILE", ""),
		Languages:      splitAndTrim(getenv("AIRWAVE_LANGUAGES", "")),
		MaxResults:     getenvInt("AIRWAVE_MAX_RESULTS", 50),

		SRVName:         getenv("AIRWAVE_SRV_NAME", "_api._tcp.radio-browser.info"),
		DNSServer:       getenv("AIRWAVE_DNS_SERVER", ""),
		DNSTimeout:      mustDuration("AIRWAVE_DNS_TIMEOUT", 3*time.Second),
		SeedHosts:       splitAndTrim(getenv("AIRWAVE_SEED_HOSTS", "https://de1.api.radio-browser.info,https://nl1.api.radio-browser.info,https://at1.api.radio-browser.info")),
		RefreshInterval: mustDuration("AIRWAVE_REFRESH_INTERVAL", 24*time.Hour),
		MirrorTTL:       mustDuration("AIRWAVE_MIRROR_TTL", 6*time.Hour),

		RedisAddr:           getenv("AIRWAVE_REDIS_ADDR", ""),
		RedisUser:           getenv("AIRWAVE_REDIS_USERNAME", ""),
		RedisPassword:       getenv("AIRWAVE_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("AIRWAVE_REDIS_DB", 0),
		RedisDT:             mustDuration("AIRWAVE_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("AIRWAVE_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("AIRWAVE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("AIRWAVE_REDIS_MAX_WAIT", 5*time.Second),
		RedisPingTimeout:    mustDuration("AIRWAVE_REDIS_PING_TIMEOUT", 2*time.Second),
		RedisPoolSize:       getenvInt("AIRWAVE_REDIS_POOL_SIZE", 4),
		RedisConnectTimeout: mustDuration("AIRWAVE_REDIS_CONNECT_TIMEOUT", 10*time.Second),
		RedisRetryInterval:  mustDuration("AIRWAVE_REDIS_RETRY_INTERVAL", time.Second),

		RateBurst:    getenvInt("AIRWAVE_RATE_BURST", 20),
		RatePerMin:   getenvInt("AIRWAVE_RATE_PER_MIN", 60),
		AllowedHosts: splitAndTrim(getenv("AIRWAVE_ALLOWED_HOSTS", "")),
		AllowedCIDRS: splitAndTrim(getenv("AIRWAVE_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("AIRWAVE_TRUST_PROXY", false),

		MetricsEnabled: mustBool("AIRWAVE_METRICS", true),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfgCopy.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.RequestTimeout < MinRequestTimeout {
		errs = append(errs, fmt.Errorf("AIRWAVE_REQUEST_TIMEOUT must be >= %v, got %v", MinRequestTimeout, c.RequestTimeout))
	}
	if c.MaxResults < 1 {
		errs = append(errs, fmt.Errorf("AIRWAVE_MAX_RESULTS must be > 0, got %d", c.MaxResults))
	}
	if c.SRVName == "" && len(c.SeedHosts) == 0 {
		errs = append(errs, errors.New("either AIRWAVE_SRV_NAME or AIRWAVE_SEED_HOSTS must be set"))
	}
	for _, h := range c.SeedHosts {
		if !strings.HasPrefix(h, "http://") && !strings.HasPrefix(h, "https://") {
			errs = append(errs, fmt.Errorf("seed host %q must include a scheme", h))
		}
	}
	return errors.Join(errs...)
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
