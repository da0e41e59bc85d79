// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
//
// Config struct'ı tüm ayarları tek bir yerde toplar; her yerde ayrı ayrı
// os.Getenv() çağırmak yerine tek bir Config nesnesi taşınır.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/akinalp/wordless/pkg/jwks"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
// Her alt bölüm tek bir concern'ü temsil eder.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Identity  IdentityConfig
	Broadcast BroadcastConfig
	Reaction  ReactionConfig
	RateLimit RateLimitConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string // CORS, virgülle ayrılmış liste
}

// DatabaseConfig, SQLite database ayarları (emote satırları + profiller).
type DatabaseConfig struct {
	Path string // SQLite dosya yolu (ör: ./data/wordless.db)
}

// RedisConfig, connection registry ve reaction store ayarları.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string // tüm key'ler "<prefix>:" ile başlar
}

// IdentityConfig, access token doğrulama ayarları.
//
// JWKSURL boşsa Cognito region + user pool ID'den türetilir.
type IdentityConfig struct {
	JWKSURL           string
	CognitoRegion     string
	CognitoUserPoolID string
	FetchTimeout      time.Duration // JWKS indirme üst süresi
	CacheTTL          time.Duration // 0 = key set süreç boyunca yenilenmez
	VerifySignature   bool          // false = sadece decode + kid kontrolü
}

// BroadcastConfig, fanout süreleri.
type BroadcastConfig struct {
	DeliveryTimeout time.Duration // tek bir bağlantıya teslim üst süresi
	CleanupTimeout  time.Duration // gone bağlantının registry'den silinme üst süresi
}

// ReactionConfig, reaction store yazma ayarları.
type ReactionConfig struct {
	MaxRetries int // CompareAndSwap çakışmasında deneme sayısı
}

// RateLimitConfig, connect (IP bazlı) ve emote (subject bazlı) limitleri.
// Max değeri 0 olan limiter devre dışıdır.
type RateLimitConfig struct {
	ConnectAttempts int
	ConnectWindow   time.Duration
	EmoteMax        int
	EmoteWindow     time.Duration
	EmoteCooldown   time.Duration
}

// Load, environment variable'lardan Config oluşturur.
// envFile varsa önce onu yükler; dosya yoksa sessizce devam eder.
// Zaten tanımlı environment variable'lar dosyadaki değerle ezilmez.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var errs []error
	intVar := func(key string, fallback int) int {
		v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return v
	}
	durationVar := func(key string, fallback time.Duration) time.Duration {
		v, err := time.ParseDuration(getEnv(key, fallback.String()))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return v
	}
	boolVar := func(key string, fallback bool) bool {
		v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return v
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           intVar("SERVER_PORT", 9090),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/wordless.db"),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        intVar("REDIS_DB", 0),
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "wordless"),
		},
		Identity: IdentityConfig{
			JWKSURL:           getEnv("IDENTITY_JWKS_URL", ""),
			CognitoRegion:     getEnv("COGNITO_REGION", ""),
			CognitoUserPoolID: getEnv("COGNITO_USER_POOL_ID", ""),
			FetchTimeout:      durationVar("JWKS_FETCH_TIMEOUT", 3*time.Second),
			CacheTTL:          durationVar("JWKS_CACHE_TTL", 0),
			VerifySignature:   boolVar("JWT_VERIFY_SIGNATURE", false),
		},
		Broadcast: BroadcastConfig{
			DeliveryTimeout: durationVar("BROADCAST_DELIVERY_TIMEOUT", 3*time.Second),
			CleanupTimeout:  durationVar("STALE_CLEANUP_TIMEOUT", 5*time.Second),
		},
		Reaction: ReactionConfig{
			MaxRetries: intVar("REACTION_MAX_RETRIES", 5),
		},
		RateLimit: RateLimitConfig{
			ConnectAttempts: intVar("CONNECT_RATE_LIMIT", 20),
			ConnectWindow:   durationVar("CONNECT_RATE_WINDOW", time.Minute),
			EmoteMax:        intVar("EMOTE_RATE_LIMIT", 5),
			EmoteWindow:     durationVar("EMOTE_RATE_WINDOW", 10*time.Second),
			EmoteCooldown:   durationVar("EMOTE_RATE_COOLDOWN", 30*time.Second),
		},
	}

	if cfg.Identity.KeySetURL() == "" {
		errs = append(errs, errors.New("IDENTITY_JWKS_URL or COGNITO_REGION + COGNITO_USER_POOL_ID is required"))
	}
	if cfg.Broadcast.DeliveryTimeout <= 0 || cfg.Broadcast.CleanupTimeout <= 0 {
		errs = append(errs, errors.New("broadcast timeouts must be positive"))
	}
	if cfg.Identity.FetchTimeout <= 0 {
		errs = append(errs, errors.New("JWKS_FETCH_TIMEOUT must be positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:9090").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KeySetURL, JWKS adresini döner. Açık URL Cognito ayarlarından önceliklidir.
func (c *IdentityConfig) KeySetURL() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	if c.CognitoRegion != "" && c.CognitoUserPoolID != "" {
		return jwks.CognitoURL(c.CognitoRegion, c.CognitoUserPoolID)
	}
	return ""
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
