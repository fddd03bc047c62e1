package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	EnvProduction  = "production"
	EnvTest        = "test"
	EnvDevelopment = "development"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Configはアプリ全体の設定
type Config struct {
	AppEnv string // production/test/development
	Port   string // サーバーポート（8080）

	DBDriver  string // postgres / sqlite
	SQLiteDSN string // DBDriver=sqliteの時だけ使う

	DatabaseURL      string // あれば最優先
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     int
	PostgresSSLMode  string

	JWTSecret string // JWT署名シークレット

	CORSOrigin      string // フロントURL
	StorageDir      string // 画像などの保存先（STORAGE_DIR/public を /storage で公開）
	OpenAPISpecPath string
	LogLevel        string
	RateLimitRPS    int // 0で無効

	KafkaBrokers   []string // 空ならイベントは送らない
	KafkaItemTopic string

	SeedAdminEmail string // 設定されていれば起動時にADMINユーザーを用意する
}

// APP_ENVに応じて読み込む.envファイルを決める
func EnvFile(appEnv string) string {
	switch appEnv {
	case EnvProduction:
		return ".env"
	case EnvTest:
		return ".env.test"
	default:
		return ".env.development"
	}
}

// Loadは環境ファイルを読み込んでから環境変数を組み立てる
func Load() (Config, error) {
	appEnv := getenv("APP_ENV", EnvDevelopment)

	// ファイルが無いのはエラーにしない（コンテナではenvだけで渡す）
	if path := EnvFile(appEnv); fileExists(path) {
		if err := godotenv.Overload(path); err != nil {
			return Config{}, errors.Wrapf(err, "load %s", path)
		}
	}

	return FromEnv(appEnv)
}

// FromEnvは現在の環境変数からConfigを作る
func FromEnv(appEnv string) (Config, error) {
	pgPort, err := atoiDefault("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	rps, err := atoiDefault("RATE_LIMIT_RPS", 20)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv: appEnv,
		Port:   getenv("PORT", "8080"),

		DBDriver:  getenv("DB_DRIVER", DriverPostgres),
		SQLiteDSN: getenv("SQLITE_DSN", "ecapi.db?_pragma=foreign_keys(1)"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "app"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		CORSOrigin:      getenv("CORS_ORIGIN", "http://localhost:5173"),
		StorageDir:      getenv("STORAGE_DIR", "storage"),
		OpenAPISpecPath: getenv("OPENAPI_SPEC_PATH", "docs/openapi.yaml"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		RateLimitRPS:    rps,

		KafkaBrokers:   csv(os.Getenv("KAFKA_BROKERS")),
		KafkaItemTopic: getenv("KAFKA_ITEM_TOPIC", "item_events"),

		SeedAdminEmail: strings.TrimSpace(os.Getenv("SEED_ADMIN_EMAIL")),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if strings.TrimPrefix(cfg.Port, ":") == "" {
		return Config{}, errors.New("PORT is required")
	}
	if cfg.DBDriver != DriverPostgres && cfg.DBDriver != DriverSQLite {
		return Config{}, errors.Errorf("DB_DRIVER must be %s or %s", DriverPostgres, DriverSQLite)
	}
	if cfg.RateLimitRPS < 0 {
		return Config{}, errors.New("RATE_LIMIT_RPS must be >= 0")
	}

	return cfg, nil
}

// DATABASE_URLがあればそれを、無ければPOSTGRES_*から組み立てる
func (c Config) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

// ":8080" 形式のlisten address
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c Config) IsTest() bool {
	return c.AppEnv == EnvTest
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "%s must be number", key)
	}
	return i, nil
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
