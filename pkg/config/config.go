package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Auth       AuthConfig
	AI         AIConfig
	Storage    StorageConfig
	Queue      QueueConfig
	Generation GenerationConfig
	Logger     LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

// AuthConfig selects how bearer tokens are verified. "local" tokens are
// issued by this service; "hosted" tokens come from an external identity
// provider and are checked against its RSA public key.
type AuthConfig struct {
	Strategy        string
	HostedIssuer    string
	HostedAudience  string
	HostedPublicKey string // PEM, inline or read from HostedKeyFile
	HostedKeyFile   string
}

type AIConfig struct {
	Provider  string
	MaxTokens int
	GigaChat  GigaChatConfig
	Vertex    VertexConfig
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

type VertexConfig struct {
	ProjectID string
	Region    string
	Model     string
}

type StorageConfig struct {
	Driver    string
	LocalDir  string
	GCSBucket string
}

type QueueConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Name          string
	PollTimeout   time.Duration
	// ConsumerID names this process's in-flight list. Recover only reclaims
	// that list, so it must be stable across restarts and unique per replica
	// running the worker.
	ConsumerID string
}

type GenerationConfig struct {
	// WorkerEnabled may be set on several replicas as long as each has its
	// own Queue.ConsumerID.
	WorkerEnabled bool
	Concurrency   int
	JobTimeout    time.Duration
	StuckAfter    time.Duration
	SweepInterval time.Duration
}

const (
	AuthStrategyLocal  = "local"
	AuthStrategyHosted = "hosted"

	AIProviderGigaChat = "gigachat"
	AIProviderVertex   = "vertex"

	StorageDriverLocal = "local"
	StorageDriverGCS   = "gcs"
)

func Load() (*Config, error) {
	// .env is optional; plain environment variables work the same way (Docker/K8s)
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getSeconds("SERVER_READ_TIMEOUT", 30),
			WriteTimeout: getSeconds("SERVER_WRITE_TIMEOUT", 30),
			CORSOrigins:  getEnv("CORS_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "docuai"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getInt("DB_MAX_CONNS", 10),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(getInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
			RefreshExp: time.Duration(getInt("JWT_REFRESH_EXPIRATION_HOURS", 168)) * time.Hour,
		},
		Auth: AuthConfig{
			Strategy:        strings.ToLower(getEnv("AUTH_STRATEGY", AuthStrategyLocal)),
			HostedIssuer:    getEnv("AUTH_HOSTED_ISSUER", ""),
			HostedAudience:  getEnv("AUTH_HOSTED_AUDIENCE", ""),
			HostedPublicKey: getEnv("AUTH_HOSTED_PUBLIC_KEY", ""),
			HostedKeyFile:   getEnv("AUTH_HOSTED_PUBLIC_KEY_FILE", ""),
		},
		AI: AIConfig{
			Provider:  strings.ToLower(getEnv("AI_PROVIDER", AIProviderGigaChat)),
			MaxTokens: getInt("AI_MAX_TOKENS", 4096),
			GigaChat: GigaChatConfig{
				APIKey:             getEnv("GIGACHAT_API_KEY", ""),
				Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
				Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
				InsecureSkipVerify: getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "false") == "true",
			},
			Vertex: VertexConfig{
				ProjectID: getEnv("VERTEX_PROJECT_ID", ""),
				Region:    getEnv("VERTEX_AI_REGION", "us-central1"),
				Model:     getEnv("VERTEX_MODEL", "gemini-1.5-pro"),
			},
		},
		Storage: StorageConfig{
			Driver:    strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverLocal)),
			LocalDir:  getEnv("STORAGE_LOCAL_DIR", "uploads"),
			GCSBucket: getEnv("STORAGE_GCS_BUCKET", ""),
		},
		Queue: QueueConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getInt("REDIS_DB", 0),
			Name:          getEnv("QUEUE_NAME", "docuai:generation"),
			PollTimeout:   getSeconds("QUEUE_POLL_TIMEOUT", 5),
			ConsumerID:    getEnv("QUEUE_CONSUMER_ID", hostname()),
		},
		Generation: GenerationConfig{
			WorkerEnabled: getEnv("WORKER_ENABLED", "true") == "true",
			Concurrency:   getInt("WORKER_CONCURRENCY", 4),
			JobTimeout:    getDuration("GENERATION_JOB_TIMEOUT", 3*time.Minute),
			StuckAfter:    getDuration("GENERATION_STUCK_AFTER", 15*time.Minute),
			SweepInterval: getDuration("GENERATION_SWEEP_INTERVAL", time.Minute),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.Auth.HostedPublicKey == "" && cfg.Auth.HostedKeyFile != "" {
		pem, err := os.ReadFile(cfg.Auth.HostedKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read hosted auth public key: %w", err)
		}
		cfg.Auth.HostedPublicKey = string(pem)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Auth.Strategy {
	case AuthStrategyLocal:
	case AuthStrategyHosted:
		if c.Auth.HostedPublicKey == "" {
			return fmt.Errorf("AUTH_STRATEGY=hosted requires AUTH_HOSTED_PUBLIC_KEY or AUTH_HOSTED_PUBLIC_KEY_FILE")
		}
	default:
		return fmt.Errorf("unknown AUTH_STRATEGY %q", c.Auth.Strategy)
	}

	switch c.AI.Provider {
	case AIProviderGigaChat, AIProviderVertex:
	default:
		return fmt.Errorf("unknown AI_PROVIDER %q", c.AI.Provider)
	}

	switch c.Storage.Driver {
	case StorageDriverLocal:
	case StorageDriverGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("STORAGE_DRIVER=gcs requires STORAGE_GCS_BUCKET")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Generation.Concurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be at least 1")
	}
	return nil
}

// DSN builds the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "local"
	}
	return name
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getSeconds(key string, defaultValue int) time.Duration {
	return time.Duration(getInt(key, defaultValue)) * time.Second
}

// getDuration accepts Go duration strings ("90s", "15m").
func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}
