package config

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

type Config struct {
	Port        string
	Storage     string
	DatabaseURL string
	MongoURI    string
	MongoDB     string
	LogLevel    string
	Auth        Auth
	RateLimits  RateLimits
}

type Auth struct {
	JWTSecret   string
	TokenTTL    time.Duration
	BcryptCost  int
	HashWorkers int
}

type RateLimits struct {
	LoginPerMinute int
	RedisAddr      string
	// TrustedProxies: адреса и подсети, от которых принимается X-Forwarded-For.
	TrustedProxies []netip.Prefix
}

// LoadEnv подгружает .env, если он есть. Отсутствие файла не ошибка для
// запуска: переменные могут прийти из окружения.
func LoadEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil {
		return fmt.Errorf(".env file not loaded: %w", err)
	}
	return nil
}

// GetEnv возвращает обязательную переменную окружения.
func GetEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("environment variable %s is not set", key)
	}
	return value, nil
}

// Load читает конфигурацию из окружения. Нечисловые значения числовых
// переменных и нераспознанные адреса прокси считаются ошибкой конфигурации.
func Load() (Config, error) {
	secret, err := GetEnv("JWT_SECRET")
	if err != nil {
		return Config{}, err
	}

	p := &parser{}
	cfg := Config{
		Port:        envString("PORT", "8080"),
		Storage:     envString("STORAGE", StorageMemory),
		DatabaseURL: envString("DATABASE_URL", ""),
		MongoURI:    envString("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     envString("MONGO_DB", "postery"),
		LogLevel:    envString("LOG_LEVEL", "info"),
		Auth: Auth{
			JWTSecret:   secret,
			TokenTTL:    p.duration("TOKEN_TTL", 72*time.Hour),
			BcryptCost:  p.integer("BCRYPT_COST", 10),
			HashWorkers: p.integer("HASH_WORKERS", runtime.NumCPU()),
		},
		RateLimits: RateLimits{
			LoginPerMinute: p.integer("LOGIN_RATE_PER_MIN", 20),
			RedisAddr:      envString("REDIS_ADDR", ""),
			TrustedProxies: p.prefixes("TRUSTED_PROXIES"),
		},
	}
	if p.err != nil {
		return Config{}, p.err
	}

	return cfg, nil
}

// PostgresDSN возвращает DATABASE_URL или собирает DSN из DB_* переменных.
func (c Config) PostgresDSN() (string, error) {
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}

	keys := []string{"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_PORT"}
	values := make(map[string]string, len(keys))
	for _, key := range keys {
		v, err := GetEnv(key)
		if err != nil {
			return "", err
		}
		values[key] = v
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(values["DB_USER"], values["DB_PASSWORD"]),
		Host:     values["DB_HOST"] + ":" + values["DB_PORT"],
		Path:     "/" + values["DB_NAME"],
		RawQuery: "sslmode=" + url.QueryEscape(envString("DB_SSLMODE", "disable")),
	}
	return dsn.String(), nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parser копит ошибки разбора, чтобы сообщить обо всех переменных сразу.
type parser struct {
	err error
}

func (p *parser) fail(key, value string, err error) {
	p.err = errors.Join(p.err, fmt.Errorf("invalid %s=%q: %w", key, value, err))
}

func (p *parser) integer(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	if n < 0 {
		p.fail(key, v, errors.New("must not be negative"))
		return def
	}
	return n
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	if d <= 0 {
		p.fail(key, v, errors.New("must be positive"))
		return def
	}
	return d
}

// prefixes разбирает список через запятую: отдельные IP или CIDR.
func (p *parser) prefixes(key string) []netip.Prefix {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}

	var result []netip.Prefix
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "/") {
			prefix, err := netip.ParsePrefix(item)
			if err != nil {
				p.fail(key, item, err)
				continue
			}
			result = append(result, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			p.fail(key, item, err)
			continue
		}
		addr = addr.Unmap()
		result = append(result, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return result
}
