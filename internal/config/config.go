package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envStorageBackend        = "STORAGE_BACKEND"
	envStorageBucket         = "STORAGE_BUCKET"
	envAWSRegion             = "REGION"
	envAWSAccessKeyID        = "AWS_ACCESS_KEY_ID"
	envAWSSecretAccessKey    = "AWS_SECRET_ACCESS_KEY"
	envS3Endpoint            = "S3_ENDPOINT"
	envMinioEndpoint         = "MINIO_ENDPOINT"
	envMinioAccessKey        = "MINIO_ACCESS_KEY"
	envMinioSecretKey        = "MINIO_SECRET_KEY"
	envMinioUseSSL           = "MINIO_USE_SSL"
	envSignedURLTTL          = "SIGNED_URL_TTL"
	envSessionSecret         = "SESSION_SECRET"
	envSessionExpiry         = "SESSION_EXPIRY_MINUTES"
	envAppURL                = "APP_URL"
	envMaxUploadSize         = "MAX_UPLOAD_SIZE"
	envCORSAllowedOrigins    = "CORS_ALLOWED_ORIGINS"
	envRedisURL              = "REDIS_URL"
)

const (
	BackendS3    = "s3"
	BackendMinio = "minio"
)

const (
	defaultServerPort          = "8080"
	defaultServerReadTimeout   = 30 * time.Second
	defaultServerWriteTimeout  = 5 * time.Minute
	defaultServerShutdown      = 10 * time.Second
	defaultDBHost              = "localhost"
	defaultDBPort              = 5432
	defaultDBName              = "mediaflow"
	defaultDBUser              = "mediaflow_app"
	defaultDBSSLMode           = "disable"
	defaultDBMaxConns          = 25
	defaultDBMinConns          = 5
	defaultStorageBackend      = BackendS3
	defaultStorageBucket       = "mediaflow"
	defaultSignedURLTTL        = time.Hour
	defaultSessionExpiry       = 24 * time.Hour
	defaultAppURL              = "http://localhost:3000"
	defaultMaxUploadSize       = int64(50 * 1024 * 1024)
	minSessionSecretLength     = 32
	minUniqueCharsInSecret     = 16
	minRepeatedCharThreshold   = 4
	maxRepeatedChars           = 2
	corsOriginSeparator        = ","
	errPortRequiredFmt         = "PORT must be set"
	errDBPasswordRequiredFmt   = "DB_PASSWORD must be set"
	errRegionRequiredFmt       = "REGION must be set"
	errAWSAccessKeyRequiredFmt = "AWS_ACCESS_KEY_ID must be set"
	errAWSSecretKeyRequiredFmt = "AWS_SECRET_ACCESS_KEY must be set"
	errMinioEndpointFmt        = "MINIO_ENDPOINT must be set when STORAGE_BACKEND=minio"
	errMinioCredentialsFmt     = "MINIO_ACCESS_KEY and MINIO_SECRET_KEY must be set when STORAGE_BACKEND=minio"
	errUnknownBackendFmt       = "STORAGE_BACKEND must be %q or %q, got %q"
	errSecretRequiredFmt       = "SESSION_SECRET must be set"
	errSecretMinLengthFmt      = "SESSION_SECRET must be at least %d characters"
	errSecretLowEntropyFmt     = "SESSION_SECRET has insufficient entropy (appears non-random). Use a cryptographically secure random string."
	errMaxUploadSizeFmt        = "MAX_UPLOAD_SIZE must be positive"
	errInvalidConfigurationFmt = "invalid configuration: %w"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Session  SessionConfig
	App      AppConfig
	Redis    RedisConfig
}

type ServerConfig struct {
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

type StorageConfig struct {
	Backend      string
	Bucket       string
	SignedURLTTL time.Duration
	AWS          AWSConfig
	Minio        MinioConfig
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

type SessionConfig struct {
	Secret         string
	ExpiryDuration time.Duration
}

type AppConfig struct {
	BaseURL       string
	MaxUploadSize int64
}

// RedisConfig is optional; an empty URL disables the signed URL cache.
type RedisConfig struct {
	URL string
}

func Load() (*Config, error) {
	backend := strings.ToLower(getEnv(envStorageBackend, defaultStorageBackend))

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv(envPort, defaultServerPort),
			ReadTimeout:        getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:       getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout:    getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
			CORSAllowedOrigins: getListEnv(envCORSAllowedOrigins),
		},
		Database: DatabaseConfig{
			Host:     getEnv(envDBHost, defaultDBHost),
			Port:     getIntEnv(envDBPort, defaultDBPort),
			Database: getEnv(envDBName, defaultDBName),
			User:     getEnv(envDBUser, defaultDBUser),
			Password: os.Getenv(envDBPassword),
			SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
			MaxConns: getIntEnv(envDBMaxConns, defaultDBMaxConns),
			MinConns: getIntEnv(envDBMinConns, defaultDBMinConns),
		},
		Storage: StorageConfig{
			Backend:      backend,
			Bucket:       getEnv(envStorageBucket, defaultStorageBucket),
			SignedURLTTL: getDurationEnv(envSignedURLTTL, defaultSignedURLTTL),
			AWS: AWSConfig{
				Region:          os.Getenv(envAWSRegion),
				AccessKeyID:     os.Getenv(envAWSAccessKeyID),
				SecretAccessKey: os.Getenv(envAWSSecretAccessKey),
				Endpoint:        os.Getenv(envS3Endpoint),
			},
			Minio: MinioConfig{
				Endpoint:  os.Getenv(envMinioEndpoint),
				AccessKey: os.Getenv(envMinioAccessKey),
				SecretKey: os.Getenv(envMinioSecretKey),
				UseSSL:    getBoolEnv(envMinioUseSSL, false),
			},
		},
		Session: SessionConfig{
			Secret:         os.Getenv(envSessionSecret),
			ExpiryDuration: getDurationEnv(envSessionExpiry, defaultSessionExpiry),
		},
		App: AppConfig{
			BaseURL:       strings.TrimRight(getEnv(envAppURL, defaultAppURL), "/"),
			MaxUploadSize: getInt64Env(envMaxUploadSize, defaultMaxUploadSize),
		},
		Redis: RedisConfig{
			URL: os.Getenv(envRedisURL),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf(errPortRequiredFmt)
	}

	if c.Database.Password == "" {
		return fmt.Errorf(errDBPasswordRequiredFmt)
	}

	if err := c.Storage.validate(); err != nil {
		return err
	}

	if c.Session.Secret == "" {
		return fmt.Errorf(errSecretRequiredFmt)
	}

	if len(c.Session.Secret) < minSessionSecretLength {
		return fmt.Errorf(errSecretMinLengthFmt, minSessionSecretLength)
	}

	if !hasMinimumEntropy(c.Session.Secret) {
		return fmt.Errorf(errSecretLowEntropyFmt)
	}

	if c.App.MaxUploadSize <= 0 {
		return fmt.Errorf(errMaxUploadSizeFmt)
	}

	return nil
}

func (s *StorageConfig) validate() error {
	switch s.Backend {
	case BackendS3:
		if s.AWS.Region == "" {
			return fmt.Errorf(errRegionRequiredFmt)
		}
		if s.AWS.AccessKeyID == "" {
			return fmt.Errorf(errAWSAccessKeyRequiredFmt)
		}
		if s.AWS.SecretAccessKey == "" {
			return fmt.Errorf(errAWSSecretKeyRequiredFmt)
		}
	case BackendMinio:
		if s.Minio.Endpoint == "" {
			return fmt.Errorf(errMinioEndpointFmt)
		}
		if s.Minio.AccessKey == "" || s.Minio.SecretKey == "" {
			return fmt.Errorf(errMinioCredentialsFmt)
		}
	default:
		return fmt.Errorf(errUnknownBackendFmt, BackendS3, BackendMinio, s.Backend)
	}
	return nil
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minSessionSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	uniqueChars := len(charCounts)
	if uniqueChars < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(value, corsOriginSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
